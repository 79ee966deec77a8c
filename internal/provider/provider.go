// Package provider describes the authentication provider the notes client
// signs in against.
package provider

import "context"

// Identity is the provider's view of a signed-in account.
type Identity struct {
	AccountID   string
	Email       string
	DisplayName string
}

type ProfileUpdate struct {
	DisplayName string
}

type AuthProvider interface {
	RegisterWithPassword(ctx context.Context, email, password string) (Identity, error)
	LoginWithPassword(ctx context.Context, email, password string) (Identity, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, accountID string, update ProfileUpdate) error
	// ObserveSession calls fn with the current session right away and again on
	// every change. A nil identity means signed out.
	ObserveSession(fn func(*Identity)) (cancel func())
}
