package service

import (
	"context"
	"strconv"
	"time"

	"github.com/AlibekovAA/notes/internal/account/domain"
	"github.com/AlibekovAA/notes/internal/account/repository"
)

type mockAccountRepo struct {
	createFunc            func(ctx context.Context, account domain.Account) error
	findByEmailFunc       func(ctx context.Context, email string) (domain.Account, error)
	findByIDFunc          func(ctx context.Context, id domain.ID) (domain.Account, error)
	updateDisplayNameFunc func(ctx context.Context, id domain.ID, displayName string) error
}

func (m *mockAccountRepo) Create(ctx context.Context, account domain.Account) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, account)
	}
	return nil
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return domain.Account{}, repository.ErrAccountNotFound
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id domain.ID) (domain.Account, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Account{}, repository.ErrAccountNotFound
}

func (m *mockAccountRepo) UpdateDisplayName(ctx context.Context, id domain.ID, displayName string) error {
	if m.updateDisplayNameFunc != nil {
		return m.updateDisplayNameFunc(ctx, id, displayName)
	}
	return nil
}

type mockRevokedTokenRepo struct {
	revokeFunc        func(ctx context.Context, jti string, userID string, expiresAt time.Time) error
	isRevokedFunc     func(ctx context.Context, jti string) (bool, error)
	deleteExpiredFunc func(ctx context.Context) (int64, error)
}

func (m *mockRevokedTokenRepo) Revoke(ctx context.Context, jti string, userID string, expiresAt time.Time) error {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, jti, userID, expiresAt)
	}
	return nil
}

func (m *mockRevokedTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.isRevokedFunc != nil {
		return m.isRevokedFunc(ctx, jti)
	}
	return false, nil
}

func (m *mockRevokedTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash != "hashed:"+password {
		return ErrInvalidCredentials
	}
	return nil
}

type sequenceIDGenerator struct {
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.next++
	return "id-" + strconv.Itoa(g.next), nil
}
