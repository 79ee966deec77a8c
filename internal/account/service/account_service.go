package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/notes/internal/account/domain"
	"github.com/AlibekovAA/notes/internal/account/repository"
	"github.com/AlibekovAA/notes/internal/common/clock"
	"github.com/AlibekovAA/notes/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/notes/internal/common/crypto"
	"github.com/AlibekovAA/notes/internal/common/jwtverify"
	"github.com/AlibekovAA/notes/internal/common/logger"
)

var (
	emailRule    = fmt.Sprintf("required,email,max=%d", constants.EmailMaxLength)
	passwordRule = fmt.Sprintf("required,min=%d", constants.PasswordMinLength)
)

type AccountService struct {
	repo             repository.Repository
	revokedTokenRepo repository.RevokedTokenRepository
	hasher           commoncrypto.PasswordHasher
	idGenerator      commoncrypto.IDGenerator
	issuer           *TokenIssuer
	clock            clock.Clock
	validate         *validator.Validate
	log              *logger.Logger
}

func NewAccountService(
	repo repository.Repository,
	revokedTokenRepo repository.RevokedTokenRepository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	issuer *TokenIssuer,
	clk clock.Clock,
	log *logger.Logger,
) *AccountService {
	return &AccountService{
		repo:             repo,
		revokedTokenRepo: revokedTokenRepo,
		hasher:           hasher,
		idGenerator:      idGenerator,
		issuer:           issuer,
		clock:            clk,
		validate:         validator.New(),
		log:              log,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type Result struct {
	Account domain.Account
	Token   string
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (Result, error) {
	email := normalizeEmail(input.Email)

	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "register_attempt",
	}).Info("register attempt")

	if err := s.validateCredentials(email, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return Result{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return Result{}, newInternalError("HASH_FAILED", "failed to hash password", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return Result{}, newInternalError("ID_GENERATION_FAILED", "failed to generate account id", err)
	}

	account := domain.Account{
		ID:           domain.ID(id),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "register_email_taken",
			}).Warn("register failed: email already in use")
			return Result{}, ErrEmailTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_create_failed",
		}).Errorf("register failed: %v", err)
		return Result{}, newInternalError("DB_ERROR", "failed to create account", err)
	}

	token, _, err := s.issuer.Issue(account)
	if err != nil {
		return Result{}, newInternalError("TOKEN_ISSUE_FAILED", "failed to issue session token", err)
	}

	incrementAccountsRegistered()
	s.log.WithFields(ctx, logger.Fields{
		"email":   email,
		"user_id": string(account.ID),
		"action":  "register_success",
	}).Info("register success")

	return Result{Account: account, Token: token}, nil
}

func (s *AccountService) Login(ctx context.Context, input LoginInput) (Result, error) {
	email := normalizeEmail(input.Email)

	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "login_attempt",
	}).Info("login attempt")

	if err := s.validateEmail(email); err != nil {
		recordLogin("invalid")
		return Result{}, err
	}
	if input.Password == "" {
		recordLogin("invalid")
		return Result{}, ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "login_account_not_found",
			}).Warn("login failed: not found")
			recordLogin("rejected")
			return Result{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		recordLogin("error")
		return Result{}, newInternalError("DB_ERROR", "failed to fetch account", err)
	}

	if err := s.hasher.Compare(account.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "login_invalid_password",
		}).Warn("login failed: invalid password")
		recordLogin("rejected")
		return Result{}, ErrInvalidCredentials
	}

	token, _, err := s.issuer.Issue(account)
	if err != nil {
		recordLogin("error")
		return Result{}, newInternalError("TOKEN_ISSUE_FAILED", "failed to issue session token", err)
	}

	recordLogin("success")
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(account.ID),
		"action":  "login_success",
	}).Info("login success")

	return Result{Account: account, Token: token}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AccountService) Logout(ctx context.Context, claims jwtverify.Claims) error {
	if claims.JTI == "" {
		return nil
	}

	expiresAt := claims.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.clock.Now().Add(constants.DefaultSessionTTL)
	}

	if err := s.revokedTokenRepo.Revoke(ctx, claims.JTI, claims.UserID, expiresAt); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": claims.UserID,
			"action":  "logout_revoke_failed",
		}).Errorf("logout failed: %v", err)
		return newInternalError("DB_ERROR", "failed to revoke session", err)
	}

	incrementSessionTokensRevoked()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": claims.UserID,
		"action":  "logout_success",
	}).Info("session revoked")
	return nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) > constants.DisplayNameMaxLen {
		return ErrDisplayNameTooLong
	}

	if err := s.repo.UpdateDisplayName(ctx, domain.ID(userID), displayName); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return err
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "update_profile_failed",
		}).Errorf("update profile failed: %v", err)
		return newInternalError("DB_ERROR", "failed to update profile", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "update_profile_success",
	}).Debug("profile updated")
	return nil
}

func (s *AccountService) Me(ctx context.Context, userID string) (domain.Account, error) {
	account, err := s.repo.FindByID(ctx, domain.ID(userID))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domain.Account{}, err
		}
		return domain.Account{}, newInternalError("DB_ERROR", "failed to fetch account", err)
	}
	return account, nil
}

// IsRevoked lets the service act as the jwt middleware's revocation checker.
func (s *AccountService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revokedTokenRepo.IsRevoked(ctx, jti)
}

func (s *AccountService) validateCredentials(email, password string) error {
	if err := s.validateEmail(email); err != nil {
		return err
	}
	if len(password) > constants.PasswordMaxLength {
		return ErrWeakPassword
	}
	if err := s.validate.Var(password, passwordRule); err != nil {
		return ErrWeakPassword
	}
	return nil
}

func (s *AccountService) validateEmail(email string) error {
	if err := s.validate.Var(email, emailRule); err != nil {
		return ErrInvalidEmail.WithCause(err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
