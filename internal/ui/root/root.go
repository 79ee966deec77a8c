// Package root switches between the signed-out forms and the dashboard as the
// provider session changes.
package root

import (
	"context"
	"fmt"
	"strings"
	"sync"

	authservice "github.com/AlibekovAA/notes/internal/auth/service"
	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	"github.com/AlibekovAA/notes/internal/common/logger"
	"github.com/AlibekovAA/notes/internal/session"
	"github.com/AlibekovAA/notes/internal/ui/dashboard"
	userdomain "github.com/AlibekovAA/notes/internal/user/domain"
)

type View int

const (
	Initializing View = iota
	LoginView
	RegisterView
	DashboardView
)

func (v View) String() string {
	switch v {
	case Initializing:
		return "initializing"
	case LoginView:
		return "login"
	case RegisterView:
		return "register"
	case DashboardView:
		return "dashboard"
	}
	return "unknown"
}

// SessionSource delivers the current user, or nil when signed out.
type SessionSource interface {
	Subscribe(fn func(*userdomain.User)) (cancel func())
}

type Authenticator interface {
	Register(ctx context.Context, input authservice.RegisterInput) (userdomain.User, error)
	Login(ctx context.Context, email, password string) (userdomain.User, error)
	Logout(ctx context.Context) error
}

// RegisterForm is the raw registration input, including the confirmation.
type RegisterForm struct {
	DisplayName string
	Email       string
	Password    string
	Confirm     string
}

type State struct {
	View       View
	User       *userdomain.User
	Dashboard  *dashboard.Controller
	Err        string
	Submitting bool
}

type Controller struct {
	sessions SessionSource
	auth     Authenticator
	notes    dashboard.NoteService
	confirm  dashboard.Confirmer
	log      *logger.Logger

	mu        sync.Mutex
	state     State
	ctx       context.Context
	cancel    func()
	listeners map[int]func(State)
	nextID    int
}

func New(sessions SessionSource, auth Authenticator, notes dashboard.NoteService, confirm dashboard.Confirmer, log *logger.Logger) *Controller {
	return &Controller{
		sessions:  sessions,
		auth:      auth,
		notes:     notes,
		confirm:   confirm,
		log:       log,
		ctx:       context.Background(),
		listeners: make(map[int]func(State)),
	}
}

// Start subscribes to session changes. ctx is used to mount dashboards.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	c.ctx = ctx
	c.mu.Unlock()

	cancel := c.sessions.Subscribe(c.onSession)

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
}

func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() State {
	s := c.state
	if c.state.User != nil {
		u := *c.state.User
		s.User = &u
	}
	return s
}

func (c *Controller) OnChange(fn func(State)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	snapshot := c.snapshot()
	listeners := make([]func(State), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// onSession builds a fresh dashboard whenever the signed-in account changes
// and drops it on sign-out.
func (c *Controller) onSession(user *userdomain.User) {
	var mount *dashboard.Controller
	var ctx context.Context

	c.update(func(s *State) {
		ctx = c.ctx
		if user == nil {
			s.User = nil
			s.Dashboard = nil
			s.View = LoginView
			return
		}

		u := *user
		if s.Dashboard == nil || s.Dashboard.Session().User.ID != u.ID {
			s.Dashboard = dashboard.New(session.Session{User: u}, c.notes, c.confirm, c.log)
			mount = s.Dashboard
		}
		s.User = &u
		s.View = DashboardView
		s.Err = ""
	})

	if mount != nil {
		c.log.WithFields(ctx, logger.Fields{
			"user_id": user.ID,
			"action":  "session_started",
		}).Info("mounting dashboard")
		_ = mount.Mount(ctx)
	}
}

// ToggleView switches between the login and register forms.
func (c *Controller) ToggleView() {
	c.update(func(s *State) {
		switch s.View {
		case LoginView:
			s.View = RegisterView
		case RegisterView:
			s.View = LoginView
		}
		s.Err = ""
	})
}

func (c *Controller) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return c.reject(commonerrors.NewValidationError("email", "email is required"))
	}
	if password == "" {
		return c.reject(commonerrors.NewValidationError("password", "password is required"))
	}

	c.update(func(s *State) {
		s.Submitting = true
		s.Err = ""
	})
	user, err := c.auth.Login(ctx, email, password)
	c.finishSignIn(ctx, user, err, "failed to sign in")
	return err
}

func (c *Controller) Register(ctx context.Context, form RegisterForm) error {
	if err := validateRegisterForm(&form); err != nil {
		return c.reject(err)
	}

	c.update(func(s *State) {
		s.Submitting = true
		s.Err = ""
	})
	user, err := c.auth.Register(ctx, authservice.RegisterInput{
		Email:       form.Email,
		Password:    form.Password,
		DisplayName: form.DisplayName,
	})
	c.finishSignIn(ctx, user, err, "failed to register")
	return err
}

func validateRegisterForm(form *RegisterForm) error {
	form.DisplayName = strings.TrimSpace(form.DisplayName)
	form.Email = strings.TrimSpace(form.Email)

	switch {
	case form.Email == "":
		return commonerrors.NewValidationError("email", "email is required")
	case form.Password == "":
		return commonerrors.NewValidationError("password", "password is required")
	case form.Password != form.Confirm:
		return commonerrors.NewValidationError("confirm", "passwords do not match")
	}
	return nil
}

// finishSignIn records the gateway's user, which carries the profile fields the
// session callback does not know about.
func (c *Controller) finishSignIn(ctx context.Context, user userdomain.User, err error, prefix string) {
	if err != nil {
		msg := fmt.Sprintf("%s: %s", prefix, err.Error())
		c.log.WithFields(ctx, logger.Fields{"action": "sign_in_failed"}).Warn(msg)
		c.update(func(s *State) {
			s.Submitting = false
			s.Err = msg
		})
		return
	}

	c.update(func(s *State) {
		s.Submitting = false
		if s.User != nil && s.User.ID == user.ID {
			u := user
			s.User = &u
		}
	})
}

// Logout signs out. Session state only changes through the session callback,
// so a failed logout leaves the dashboard in place.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.auth.Logout(ctx); err != nil {
		msg := fmt.Sprintf("failed to sign out: %s", err.Error())
		c.log.WithFields(ctx, logger.Fields{"action": "logout_failed"}).Error(msg)
		c.update(func(s *State) { s.Err = msg })
		return err
	}
	return nil
}

func (c *Controller) reject(err error) error {
	c.update(func(s *State) { s.Err = err.Error() })
	return err
}
