package domain

import "time"

// User is the application's view of an authenticated account. CreatedAt is
// nil when the creation time is not known to the caller.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   *time.Time
}

// Name is the display name, falling back to the email address.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
