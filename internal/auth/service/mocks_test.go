package service

import (
	"context"

	"github.com/AlibekovAA/notes/internal/docstore"
	"github.com/AlibekovAA/notes/internal/provider"
)

type mockProvider struct {
	registerFunc      func(ctx context.Context, email, password string) (provider.Identity, error)
	loginFunc         func(ctx context.Context, email, password string) (provider.Identity, error)
	logoutFunc        func(ctx context.Context) error
	updateProfileFunc func(ctx context.Context, accountID string, update provider.ProfileUpdate) error
}

func (m *mockProvider) RegisterWithPassword(ctx context.Context, email, password string) (provider.Identity, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, email, password)
	}
	return provider.Identity{AccountID: "uid-1", Email: email}, nil
}

func (m *mockProvider) LoginWithPassword(ctx context.Context, email, password string) (provider.Identity, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return provider.Identity{AccountID: "uid-1", Email: email}, nil
}

func (m *mockProvider) Logout(ctx context.Context) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx)
	}
	return nil
}

func (m *mockProvider) UpdateProfile(ctx context.Context, accountID string, update provider.ProfileUpdate) error {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, accountID, update)
	}
	return nil
}

func (m *mockProvider) ObserveSession(fn func(*provider.Identity)) func() {
	fn(nil)
	return func() {}
}

// failingStore wraps a real store and lets individual operations fail.
type failingStore struct {
	docstore.Store
	putErr error
	getErr error
}

func (s *failingStore) Put(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.Store.Put(ctx, collection, id, fields)
}

func (s *failingStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if s.getErr != nil {
		return docstore.Document{}, s.getErr
	}
	return s.Store.Get(ctx, collection, id)
}
