// Package dashboard sequences note loading and mutations for one session.
// Every successful mutation is followed by a full reload of the list.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AlibekovAA/notes/internal/common/logger"
	notedomain "github.com/AlibekovAA/notes/internal/notes/domain"
	"github.com/AlibekovAA/notes/internal/session"
	"github.com/AlibekovAA/notes/internal/ui/form"
)

type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	}
	return "unknown"
}

var ErrNotEditing = errors.New("no note is being edited")

// NoteService is the subset of the note gateway the dashboard drives.
type NoteService interface {
	Create(ctx context.Context, ownerID, title, content string) (string, error)
	ListByOwner(ctx context.Context, ownerID string) ([]notedomain.Note, error)
	Update(ctx context.Context, id string, update notedomain.Update) error
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type State struct {
	Status         Status
	Notes          []notedomain.Note
	Err            string
	Editing        *notedomain.Note
	FormSubmitting bool
	Deleting       bool
}

// Busy reports whether a command is in flight. Views use it to refuse input.
func (s State) Busy() bool {
	return s.Status == Loading || s.FormSubmitting || s.Deleting
}

type Controller struct {
	session session.Session
	notes   NoteService
	confirm Confirmer
	log     *logger.Logger

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

func New(sess session.Session, notes NoteService, confirm Confirmer, log *logger.Logger) *Controller {
	return &Controller{
		session:   sess,
		notes:     notes,
		confirm:   confirm,
		log:       log,
		listeners: make(map[int]func(State)),
	}
}

func (c *Controller) Session() session.Session {
	return c.session
}

// State returns a snapshot safe to read without further locking.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() State {
	s := c.state
	s.Notes = append([]notedomain.Note(nil), c.state.Notes...)
	if c.state.Editing != nil {
		editing := *c.state.Editing
		s.Editing = &editing
	}
	return s
}

// OnChange registers fn to be called after every state change.
func (c *Controller) OnChange(fn func(State)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// update applies fn under the lock and notifies listeners after releasing it.
func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	snapshot := c.snapshot()
	listeners := make([]func(State), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

func (c *Controller) Mount(ctx context.Context) error {
	return c.Reload(ctx)
}

// Reload replaces the note list with a fresh read. On failure the previous
// list is kept and the status becomes Error.
func (c *Controller) Reload(ctx context.Context) error {
	c.update(func(s *State) {
		s.Status = Loading
		s.Err = ""
	})

	notes, err := c.notes.ListByOwner(ctx, c.session.User.ID)
	if err != nil {
		c.fail(ctx, "failed to load notes", err)
		return err
	}

	c.update(func(s *State) {
		s.Status = Loaded
		s.Notes = notes
	})
	return nil
}

// SubmitCreate is the create-mode form's submit handler.
func (c *Controller) SubmitCreate(ctx context.Context, payload form.Payload) error {
	c.update(func(s *State) {
		s.FormSubmitting = true
		s.Err = ""
	})

	_, err := c.notes.Create(ctx, c.session.User.ID, payload.Title, payload.Content)
	c.update(func(s *State) { s.FormSubmitting = false })
	if err != nil {
		c.fail(ctx, "failed to create note", err)
		return err
	}

	_ = c.Reload(ctx)
	return nil
}

// SubmitUpdate saves the note being edited. On failure editing stays active.
func (c *Controller) SubmitUpdate(ctx context.Context, payload form.Payload) error {
	c.mu.Lock()
	editing := c.state.Editing
	c.mu.Unlock()
	if editing == nil {
		return ErrNotEditing
	}

	c.update(func(s *State) {
		s.FormSubmitting = true
		s.Err = ""
	})

	err := c.notes.Update(ctx, editing.ID, notedomain.Update{
		Title:   &payload.Title,
		Content: &payload.Content,
	})
	c.update(func(s *State) { s.FormSubmitting = false })
	if err != nil {
		c.fail(ctx, "failed to update note", err)
		return err
	}

	c.update(func(s *State) { s.Editing = nil })
	_ = c.Reload(ctx)
	return nil
}

// RequestDelete asks for confirmation, deletes and reloads. The reload runs
// even when the delete fails; the delete error then replaces the list status.
func (c *Controller) RequestDelete(ctx context.Context, id string) error {
	if !c.confirm.Confirm(ctx, "Delete this note?") {
		return nil
	}

	c.update(func(s *State) {
		s.Deleting = true
		s.Err = ""
	})
	err := c.notes.Delete(ctx, id)
	c.update(func(s *State) { s.Deleting = false })

	_ = c.Reload(ctx)
	if err != nil {
		c.fail(ctx, "failed to delete note", err)
		return err
	}
	return nil
}

func (c *Controller) BeginEdit(note notedomain.Note) {
	c.update(func(s *State) { s.Editing = &note })
}

func (c *Controller) CancelEdit() {
	c.update(func(s *State) { s.Editing = nil })
}

func (c *Controller) fail(ctx context.Context, prefix string, err error) {
	msg := fmt.Sprintf("%s: %s", prefix, err.Error())
	c.log.WithFields(ctx, logger.Fields{
		"user_id": c.session.User.ID,
		"action":  "dashboard_error",
	}).Warn(msg)
	c.update(func(s *State) {
		s.Status = Error
		s.Err = msg
	})
}
