// Package form holds the note editor used for both creating and editing.
package form

import (
	"context"
	"strings"
	"sync"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	notedomain "github.com/AlibekovAA/notes/internal/notes/domain"
)

// Payload is what the form hands to its owner on submit.
type Payload struct {
	Title   string
	Content string
}

type SubmitFunc func(ctx context.Context, payload Payload) error

type NoteForm struct {
	mu       sync.Mutex
	title    string
	content  string
	editing  bool
	onSubmit SubmitFunc
	onCancel func()
}

// New builds a form. A non-nil initial note puts the form in edit mode with
// its fields pre-filled. onCancel may be nil.
func New(initial *notedomain.Note, onSubmit SubmitFunc, onCancel func()) *NoteForm {
	f := &NoteForm{onSubmit: onSubmit, onCancel: onCancel}
	if initial != nil {
		f.title = initial.Title
		f.content = initial.Content
		f.editing = true
	}
	return f
}

func (f *NoteForm) SetTitle(title string) {
	f.mu.Lock()
	f.title = title
	f.mu.Unlock()
}

func (f *NoteForm) SetContent(content string) {
	f.mu.Lock()
	f.content = content
	f.mu.Unlock()
}

func (f *NoteForm) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

func (f *NoteForm) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

func (f *NoteForm) EditMode() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editing
}

// Submit checks that neither field is blank and hands the values to onSubmit
// as typed. A create-mode form clears itself only when onSubmit succeeds.
func (f *NoteForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	payload := Payload{Title: f.title, Content: f.content}
	editing := f.editing
	f.mu.Unlock()

	if strings.TrimSpace(payload.Title) == "" {
		return commonerrors.NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(payload.Content) == "" {
		return commonerrors.NewValidationError("content", "content is required")
	}

	if err := f.onSubmit(ctx, payload); err != nil {
		return err
	}

	if !editing {
		f.mu.Lock()
		f.title = ""
		f.content = ""
		f.mu.Unlock()
	}
	return nil
}

func (f *NoteForm) Cancel() {
	if f.onCancel != nil {
		f.onCancel()
	}
}
