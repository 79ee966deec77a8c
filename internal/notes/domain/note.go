package domain

import "time"

// Note is one user-owned text note. ID is empty until the note is stored.
type Note struct {
	ID        string
	Title     string
	Content   string
	OwnerID   string
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// Update carries the fields to change; nil fields are left as they are.
// The owner and id of a note cannot be changed.
type Update struct {
	Title   *string
	Content *string
}

func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Content == nil
}
