package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid email or password",
	)

	ErrInvalidEmail = commonerrors.NewDomainError(
		"INVALID_EMAIL",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"email address is badly formatted",
	)

	ErrWeakPassword = commonerrors.NewDomainError(
		"WEAK_PASSWORD",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"password should be at least 6 characters",
	)

	ErrDisplayNameTooLong = commonerrors.NewDomainError(
		"DISPLAY_NAME_TOO_LONG",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"display name is too long",
	)

	ErrEmailTaken = commonerrors.ErrEmailAlreadyInUse

)

func newInternalError(code, message string, cause error) commonerrors.DomainError {
	err := commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}
