package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AlibekovAA/notes/internal/account/domain"
	"github.com/AlibekovAA/notes/internal/account/service"
	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	commonhttp "github.com/AlibekovAA/notes/internal/common/http"
	"github.com/AlibekovAA/notes/internal/common/jwtverify"
	"github.com/AlibekovAA/notes/internal/common/logger"
)

const (
	registerPath = "/api/accounts/register"
	loginPath    = "/api/accounts/login"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	DisplayName string `json:"displayName" validate:"max=100"`
}

type sessionResponse struct {
	Account domain.Public `json:"account"`
	Token   string        `json:"token"`
}

type Handler struct {
	accounts *service.AccountService
	log      *logger.Logger
	errors   *commonhttp.ErrorHandler
	limiter  *commonhttp.StrictRateLimiter
	timeout  time.Duration
}

// NewHandler builds the account routes. limiter may be nil.
func NewHandler(accounts *service.AccountService, limiter *commonhttp.StrictRateLimiter, log *logger.Logger, timeout time.Duration) *Handler {
	return &Handler{
		accounts: accounts,
		log:      log,
		errors:   commonhttp.NewErrorHandler(log),
		limiter:  limiter,
		timeout:  timeout,
	}
}

func (h *Handler) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	timeout := commonhttp.WithTimeout(h.timeout)

	r.Handle(registerPath, h.limited(registerPath, timeout(http.HandlerFunc(h.register)))).Methods(http.MethodPost)
	r.Handle(loginPath, h.limited(loginPath, timeout(http.HandlerFunc(h.login)))).Methods(http.MethodPost)

	sub := r.PathPrefix("/api/accounts").Subrouter()
	sub.Use(auth)
	sub.Use(mux.MiddlewareFunc(timeout))
	sub.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	sub.HandleFunc("/profile", h.updateProfile).Methods(http.MethodPatch)
	sub.HandleFunc("/me", h.me).Methods(http.MethodGet)
}

func (h *Handler) limited(path string, next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return h.limiter.MiddlewareForPath(path)(next)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	result, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, sessionResponse{Account: result.Account.Public(), Token: result.Token})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{Account: result.Account.Public(), Token: result.Token})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrInvalidToken)
		return
	}

	if err := h.accounts.Logout(r.Context(), claims); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteNoContent(w)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrInvalidToken)
		return
	}

	var req profileRequest
	if err := commonhttp.DecodeAndValidate(r, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	if err := h.accounts.UpdateProfile(r.Context(), claims.UserID, req.DisplayName); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteNoContent(w)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrInvalidToken)
		return
	}

	account, err := h.accounts.Me(r.Context(), claims.UserID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, account.Public())
}
