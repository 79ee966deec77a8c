package service

import (
	"context"
	"errors"

	"github.com/AlibekovAA/notes/internal/auth/service/mapper"
	"github.com/AlibekovAA/notes/internal/common/clock"
	"github.com/AlibekovAA/notes/internal/common/constants"
	"github.com/AlibekovAA/notes/internal/common/logger"
	"github.com/AlibekovAA/notes/internal/docstore"
	"github.com/AlibekovAA/notes/internal/provider"
	userdomain "github.com/AlibekovAA/notes/internal/user/domain"
)

// AuthGateway signs users in against the provider and keeps a profile copy in
// the document store.
//
// Register does not roll back the provider account when the profile write
// fails; Login recreates a missing profile.
type AuthGateway struct {
	provider provider.AuthProvider
	store    docstore.Store
	clock    clock.Clock
	log      *logger.Logger
}

func NewAuthGateway(p provider.AuthProvider, store docstore.Store, clk clock.Clock, log *logger.Logger) *AuthGateway {
	return &AuthGateway{
		provider: p,
		store:    store,
		clock:    clk,
		log:      log,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

func (g *AuthGateway) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	identity, err := g.provider.RegisterWithPassword(ctx, input.Email, input.Password)
	if err != nil {
		g.log.WithFields(ctx, logger.Fields{"action": "register_failed"}).Warnf("register failed: %v", err)
		return userdomain.User{}, newAuthError("register", err)
	}

	if input.DisplayName != "" {
		err := g.provider.UpdateProfile(ctx, identity.AccountID, provider.ProfileUpdate{DisplayName: input.DisplayName})
		if err != nil {
			g.log.WithFields(ctx, logger.Fields{
				"user_id": identity.AccountID,
				"action":  "register_update_profile_failed",
			}).Errorf("register: failed to set display name: %v", err)
			return userdomain.User{}, newAuthError("register", err)
		}
	}

	profile := mapper.ProfileFields(identity.AccountID, identity.Email, input.DisplayName)
	if err := g.store.Put(ctx, constants.ProfilesCollection, identity.AccountID, profile); err != nil {
		g.log.WithFields(ctx, logger.Fields{
			"user_id": identity.AccountID,
			"action":  "register_profile_write_failed",
		}).Errorf("register: account created but profile write failed: %v", err)
		return userdomain.User{}, newAuthError("register", err)
	}

	g.log.WithFields(ctx, logger.Fields{
		"user_id": identity.AccountID,
		"action":  "register_success",
	}).Info("registered")

	return mapper.NewUser(identity.AccountID, identity.Email, input.DisplayName, g.clock.Now()), nil
}

func (g *AuthGateway) Login(ctx context.Context, email, password string) (userdomain.User, error) {
	identity, err := g.provider.LoginWithPassword(ctx, email, password)
	if err != nil {
		g.log.WithFields(ctx, logger.Fields{"action": "login_failed"}).Warnf("login failed: %v", err)
		return userdomain.User{}, newAuthError("login", err)
	}

	doc, err := g.store.Get(ctx, constants.ProfilesCollection, identity.AccountID)
	switch {
	case err == nil:
		return mapper.UserFromProfile(identity.AccountID, identity.Email, doc.Fields), nil
	case !errors.Is(err, docstore.ErrNotFound):
		g.log.WithFields(ctx, logger.Fields{
			"user_id": identity.AccountID,
			"action":  "login_profile_read_failed",
		}).Errorf("login: failed to read profile: %v", err)
		return userdomain.User{}, newAuthError("login", err)
	}

	profile := mapper.ProfileFields(identity.AccountID, identity.Email, identity.DisplayName)
	if err := g.store.Put(ctx, constants.ProfilesCollection, identity.AccountID, profile); err != nil {
		g.log.WithFields(ctx, logger.Fields{
			"user_id": identity.AccountID,
			"action":  "login_profile_create_failed",
		}).Errorf("login: failed to create missing profile: %v", err)
		return userdomain.User{}, newAuthError("login", err)
	}

	g.log.WithFields(ctx, logger.Fields{
		"user_id": identity.AccountID,
		"action":  "login_profile_created",
	}).Info("created missing profile on login")

	return mapper.NewUser(identity.AccountID, identity.Email, identity.DisplayName, g.clock.Now()), nil
}

func (g *AuthGateway) Logout(ctx context.Context) error {
	if err := g.provider.Logout(ctx); err != nil {
		g.log.WithFields(ctx, logger.Fields{"action": "logout_failed"}).Errorf("logout failed: %v", err)
		return newAuthError("logout", err)
	}
	return nil
}
