package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	notedomain "github.com/AlibekovAA/notes/internal/notes/domain"
)

func TestNoteForm_BlankFieldsNeverSubmit(t *testing.T) {
	testCases := []struct {
		name    string
		title   string
		content string
		field   string
	}{
		{"empty title", "", "body", "title"},
		{"whitespace title", "   \t", "body", "title"},
		{"empty content", "title", "", "content"},
		{"whitespace content", "title", "\n  ", "content"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			f := New(nil, func(ctx context.Context, p Payload) error {
				called = true
				return nil
			}, nil)
			f.SetTitle(tc.title)
			f.SetContent(tc.content)

			err := f.Submit(context.Background())

			ve, ok := commonerrors.AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, ve.Field)
			assert.False(t, called)
		})
	}
}

func TestNoteForm_SubmitsValuesAsTypedAndClears(t *testing.T) {
	var got Payload
	f := New(nil, func(ctx context.Context, p Payload) error {
		got = p
		return nil
	}, nil)
	f.SetTitle("  Shopping ")
	f.SetContent("milk, eggs")

	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, Payload{Title: "  Shopping ", Content: "milk, eggs"}, got)
	assert.Empty(t, f.Title())
	assert.Empty(t, f.Content())
}

func TestNoteForm_CreateModeKeepsFieldsOnFailure(t *testing.T) {
	f := New(nil, func(ctx context.Context, p Payload) error {
		return errors.New("backend down")
	}, nil)
	f.SetTitle("Shopping")
	f.SetContent("milk")

	assert.EqualError(t, f.Submit(context.Background()), "backend down")
	assert.Equal(t, "Shopping", f.Title())
	assert.Equal(t, "milk", f.Content())
}

func TestNoteForm_EditModePrefillsAndPersists(t *testing.T) {
	note := &notedomain.Note{ID: "n1", Title: "Old", Content: "body"}
	cancelled := false
	f := New(note, func(ctx context.Context, p Payload) error { return nil }, func() { cancelled = true })

	assert.True(t, f.EditMode())
	assert.Equal(t, "Old", f.Title())

	f.SetTitle("New")
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "New", f.Title())
	assert.Equal(t, "body", f.Content())

	f.Cancel()
	assert.True(t, cancelled)
}
