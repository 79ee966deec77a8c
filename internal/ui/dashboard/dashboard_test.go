package dashboard

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/notes/internal/common/logger"
	notedomain "github.com/AlibekovAA/notes/internal/notes/domain"
	"github.com/AlibekovAA/notes/internal/session"
	"github.com/AlibekovAA/notes/internal/ui/form"
	userdomain "github.com/AlibekovAA/notes/internal/user/domain"
)

type memoryNotes struct {
	mu        sync.Mutex
	notes     []notedomain.Note
	next      int
	listCalls int

	createErr error
	listErr   error
	updateErr error
	deleteErr error
}

func (m *memoryNotes) Create(ctx context.Context, ownerID, title, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	m.next++
	id := "n" + strconv.Itoa(m.next)
	m.notes = append(m.notes, notedomain.Note{ID: id, OwnerID: ownerID, Title: title, Content: content})
	return id, nil
}

func (m *memoryNotes) ListByOwner(ctx context.Context, ownerID string) ([]notedomain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []notedomain.Note
	for _, n := range m.notes {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memoryNotes) Update(ctx context.Context, id string, update notedomain.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.notes {
		if m.notes[i].ID == id {
			if update.Title != nil {
				m.notes[i].Title = *update.Title
			}
			if update.Content != nil {
				m.notes[i].Content = *update.Content
			}
		}
	}
	return nil
}

func (m *memoryNotes) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.notes[:0]
	for _, n := range m.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	m.notes = kept
	return nil
}

type fixedConfirmer struct {
	answer bool
	asked  int
}

func (c *fixedConfirmer) Confirm(ctx context.Context, prompt string) bool {
	c.asked++
	return c.answer
}

func newController(notes NoteService, confirm Confirmer) *Controller {
	sess := session.Session{User: userdomain.User{ID: "u1", Email: "a@x.com"}}
	return New(sess, notes, confirm, logger.NewWithWriter(io.Discard, "test", "info"))
}

func TestController_MountLoadsOwnNotes(t *testing.T) {
	notes := &memoryNotes{notes: []notedomain.Note{
		{ID: "a", OwnerID: "u1", Title: "mine"},
		{ID: "b", OwnerID: "u2", Title: "theirs"},
	}}
	c := newController(notes, &fixedConfirmer{})

	var seen []Status
	c.OnChange(func(s State) { seen = append(seen, s.Status) })

	require.NoError(t, c.Mount(context.Background()))

	state := c.State()
	assert.Equal(t, Loaded, state.Status)
	require.Len(t, state.Notes, 1)
	assert.Equal(t, "mine", state.Notes[0].Title)
	assert.Equal(t, []Status{Loading, Loaded}, seen)
}

func TestController_LoadFailureKeepsPreviousList(t *testing.T) {
	notes := &memoryNotes{notes: []notedomain.Note{{ID: "a", OwnerID: "u1", Title: "mine"}}}
	c := newController(notes, &fixedConfirmer{})
	require.NoError(t, c.Mount(context.Background()))

	notes.listErr = errors.New("offline")
	require.Error(t, c.Reload(context.Background()))

	state := c.State()
	assert.Equal(t, Error, state.Status)
	assert.Equal(t, "failed to load notes: offline", state.Err)
	assert.Len(t, state.Notes, 1)
}

func TestController_SubmitCreateReloads(t *testing.T) {
	notes := &memoryNotes{}
	c := newController(notes, &fixedConfirmer{})
	require.NoError(t, c.Mount(context.Background()))

	require.NoError(t, c.SubmitCreate(context.Background(), form.Payload{Title: "Shopping", Content: "milk"}))

	state := c.State()
	assert.Equal(t, Loaded, state.Status)
	assert.False(t, state.FormSubmitting)
	require.Len(t, state.Notes, 1)
	assert.Equal(t, "Shopping", state.Notes[0].Title)
	assert.Equal(t, 2, notes.listCalls)
}

func TestController_SubmitCreateFailure(t *testing.T) {
	notes := &memoryNotes{createErr: errors.New("quota exceeded")}
	c := newController(notes, &fixedConfirmer{})
	require.NoError(t, c.Mount(context.Background()))

	err := c.SubmitCreate(context.Background(), form.Payload{Title: "t", Content: "c"})
	require.Error(t, err)

	state := c.State()
	assert.Equal(t, Error, state.Status)
	assert.Equal(t, "failed to create note: quota exceeded", state.Err)
	assert.False(t, state.FormSubmitting)
	assert.Equal(t, 1, notes.listCalls)
}

func TestController_CreateFormIntegration(t *testing.T) {
	notes := &memoryNotes{createErr: errors.New("down")}
	c := newController(notes, &fixedConfirmer{})
	f := form.New(nil, c.SubmitCreate, nil)
	f.SetTitle("Shopping")
	f.SetContent("milk")

	require.Error(t, f.Submit(context.Background()))
	assert.Equal(t, "Shopping", f.Title())

	notes.createErr = nil
	require.NoError(t, f.Submit(context.Background()))
	assert.Empty(t, f.Title())
}

func TestController_SubmitUpdate(t *testing.T) {
	notes := &memoryNotes{notes: []notedomain.Note{{ID: "a", OwnerID: "u1", Title: "old", Content: "body"}}}
	c := newController(notes, &fixedConfirmer{})
	require.NoError(t, c.Mount(context.Background()))

	assert.ErrorIs(t, c.SubmitUpdate(context.Background(), form.Payload{Title: "x", Content: "y"}), ErrNotEditing)

	c.BeginEdit(c.State().Notes[0])
	require.NotNil(t, c.State().Editing)

	require.NoError(t, c.SubmitUpdate(context.Background(), form.Payload{Title: "new", Content: "body"}))

	state := c.State()
	assert.Nil(t, state.Editing)
	assert.Equal(t, "new", state.Notes[0].Title)
	assert.Equal(t, "body", state.Notes[0].Content)
}

func TestController_SubmitUpdateFailureKeepsEditing(t *testing.T) {
	notes := &memoryNotes{notes: []notedomain.Note{{ID: "a", OwnerID: "u1", Title: "old", Content: "body"}}}
	c := newController(notes, &fixedConfirmer{})
	require.NoError(t, c.Mount(context.Background()))
	c.BeginEdit(c.State().Notes[0])

	notes.updateErr = errors.New("permission denied")
	require.Error(t, c.SubmitUpdate(context.Background(), form.Payload{Title: "new", Content: "body"}))

	state := c.State()
	require.NotNil(t, state.Editing)
	assert.Equal(t, "a", state.Editing.ID)
	assert.Equal(t, "failed to update note: permission denied", state.Err)

	c.CancelEdit()
	assert.Nil(t, c.State().Editing)
}

func TestController_RequestDeleteDeclined(t *testing.T) {
	notes := &memoryNotes{notes: []notedomain.Note{{ID: "a", OwnerID: "u1"}}}
	confirm := &fixedConfirmer{answer: false}
	c := newController(notes, confirm)
	require.NoError(t, c.Mount(context.Background()))
	before := c.State()

	require.NoError(t, c.RequestDelete(context.Background(), "a"))

	assert.Equal(t, 1, confirm.asked)
	assert.Equal(t, before, c.State())
	assert.Equal(t, 1, notes.listCalls)
}

func TestController_RequestDeleteConfirmed(t *testing.T) {
	notes := &memoryNotes{notes: []notedomain.Note{{ID: "a", OwnerID: "u1"}}}
	c := newController(notes, &fixedConfirmer{answer: true})
	require.NoError(t, c.Mount(context.Background()))

	require.NoError(t, c.RequestDelete(context.Background(), "a"))

	state := c.State()
	assert.Equal(t, Loaded, state.Status)
	assert.Empty(t, state.Notes)
	assert.False(t, state.Deleting)
}

func TestController_RequestDeleteFailureStillReloads(t *testing.T) {
	notes := &memoryNotes{notes: []notedomain.Note{{ID: "a", OwnerID: "u1"}}, deleteErr: errors.New("unavailable")}
	c := newController(notes, &fixedConfirmer{answer: true})
	require.NoError(t, c.Mount(context.Background()))

	require.Error(t, c.RequestDelete(context.Background(), "a"))

	state := c.State()
	assert.Equal(t, 2, notes.listCalls)
	assert.Equal(t, Error, state.Status)
	assert.Equal(t, "failed to delete note: unavailable", state.Err)
	assert.Len(t, state.Notes, 1)
}

func TestState_Busy(t *testing.T) {
	assert.False(t, State{Status: Loaded}.Busy())
	assert.True(t, State{Status: Loading}.Busy())
	assert.True(t, State{Status: Loaded, FormSubmitting: true}.Busy())
	assert.True(t, State{Status: Loaded, Deleting: true}.Busy())
}
