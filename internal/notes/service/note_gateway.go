package service

import (
	"context"
	"sort"

	"github.com/AlibekovAA/notes/internal/common/constants"
	"github.com/AlibekovAA/notes/internal/common/logger"
	"github.com/AlibekovAA/notes/internal/docstore"
	"github.com/AlibekovAA/notes/internal/notes/domain"
)

const (
	fieldTitle     = "title"
	fieldContent   = "content"
	fieldOwnerID   = constants.NoteOwnerField
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

type NoteGateway struct {
	store docstore.Store
	log   *logger.Logger
}

func NewNoteGateway(store docstore.Store, log *logger.Logger) *NoteGateway {
	return &NoteGateway{store: store, log: log}
}

func (g *NoteGateway) Create(ctx context.Context, ownerID, title, content string) (string, error) {
	id, err := g.store.Add(ctx, constants.NotesCollection, docstore.Fields{
		fieldTitle:     title,
		fieldContent:   content,
		fieldOwnerID:   ownerID,
		fieldCreatedAt: docstore.ServerTimestamp(),
		fieldUpdatedAt: docstore.ServerTimestamp(),
	})
	if err != nil {
		g.log.WithFields(ctx, logger.Fields{"user_id": ownerID, "action": "note_create_failed"}).Errorf("create note failed: %v", err)
		return "", newStoreError("create", err)
	}
	return id, nil
}

// ListByOwner returns the owner's notes, newest first. Ties are broken by id
// and notes without a creation time come last.
func (g *NoteGateway) ListByOwner(ctx context.Context, ownerID string) ([]domain.Note, error) {
	docs, err := g.store.Query(ctx, constants.NotesCollection, docstore.Equal(fieldOwnerID, ownerID))
	if err != nil {
		g.log.WithFields(ctx, logger.Fields{"user_id": ownerID, "action": "note_list_failed"}).Errorf("list notes failed: %v", err)
		return nil, newStoreError("list", err)
	}

	notes := make([]domain.Note, 0, len(docs))
	for _, doc := range docs {
		notes = append(notes, noteFromDocument(doc, ownerID))
	}
	SortNotes(notes)

	if g.log.ShouldLog(logger.DEBUG) {
		g.log.WithFields(ctx, logger.Fields{"user_id": ownerID, "count": len(notes)}).Debug("notes listed")
	}
	return notes, nil
}

func (g *NoteGateway) Update(ctx context.Context, id string, update domain.Update) error {
	if update.IsEmpty() {
		return ErrEmptyUpdate
	}
	fields := docstore.Fields{fieldUpdatedAt: docstore.ServerTimestamp()}
	if update.Title != nil {
		fields[fieldTitle] = *update.Title
	}
	if update.Content != nil {
		fields[fieldContent] = *update.Content
	}

	if err := g.store.Merge(ctx, constants.NotesCollection, id, fields); err != nil {
		g.log.WithFields(ctx, logger.Fields{"note_id": id, "action": "note_update_failed"}).Errorf("update note failed: %v", err)
		return newStoreError("update", err)
	}
	return nil
}

// Delete succeeds when the note is already gone.
func (g *NoteGateway) Delete(ctx context.Context, id string) error {
	if err := g.store.Remove(ctx, constants.NotesCollection, id); err != nil {
		g.log.WithFields(ctx, logger.Fields{"note_id": id, "action": "note_delete_failed"}).Errorf("delete note failed: %v", err)
		return newStoreError("delete", err)
	}
	return nil
}

func noteFromDocument(doc docstore.Document, queriedOwner string) domain.Note {
	title, ok := docstore.StringField(doc.Fields, fieldTitle)
	if !ok || title == "" {
		title = constants.UntitledNoteTitle
	}
	content, _ := docstore.StringField(doc.Fields, fieldContent)
	owner, ok := docstore.StringField(doc.Fields, fieldOwnerID)
	if !ok || owner == "" {
		owner = queriedOwner
	}

	return domain.Note{
		ID:        doc.ID,
		Title:     title,
		Content:   content,
		OwnerID:   owner,
		CreatedAt: docstore.TimeField(doc.Fields, fieldCreatedAt),
		UpdatedAt: docstore.TimeField(doc.Fields, fieldUpdatedAt),
	}
}

// SortNotes orders notes by creation time, newest first.
func SortNotes(notes []domain.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i].CreatedAt, notes[j].CreatedAt
		switch {
		case a == nil && b == nil:
			return notes[i].ID < notes[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		}
		return notes[i].ID < notes[j].ID
	})
}
