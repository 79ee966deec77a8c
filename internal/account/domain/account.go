package domain

import "time"

type ID string

// Account is a provider-side identity. DisplayName is optional.
type Account struct {
	ID           ID
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// Public is the account as returned over the API.
type Public struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a Account) Public() Public {
	return Public{
		ID:          string(a.ID),
		Email:       a.Email,
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt,
	}
}
