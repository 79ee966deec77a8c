// Package session turns provider session changes into application users.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/AlibekovAA/notes/internal/provider"
	userdomain "github.com/AlibekovAA/notes/internal/user/domain"
)

// Session is the signed-in user handed to the dashboard.
type Session struct {
	User userdomain.User
}

type Observer struct {
	provider provider.AuthProvider
}

func NewObserver(p provider.AuthProvider) *Observer {
	return &Observer{provider: p}
}

// Subscribe delivers the current user once the provider knows it, then again
// on every session change.
// After cancel returns no further callbacks are made.
func (o *Observer) Subscribe(fn func(*userdomain.User)) (cancel func()) {
	var cancelled atomic.Bool
	var mu sync.Mutex

	stop := o.provider.ObserveSession(func(identity *provider.Identity) {
		mu.Lock()
		defer mu.Unlock()
		if cancelled.Load() {
			return
		}
		fn(ToUser(identity))
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelled.Store(true)
			stop()
		})
	}
}

// ToUser maps a provider identity. CreatedAt is left nil since the provider
// does not know the profile's creation time.
func ToUser(identity *provider.Identity) *userdomain.User {
	if identity == nil {
		return nil
	}
	return &userdomain.User{
		ID:          identity.AccountID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	}
}
