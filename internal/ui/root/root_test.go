package root

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authservice "github.com/AlibekovAA/notes/internal/auth/service"
	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	"github.com/AlibekovAA/notes/internal/common/logger"
	notedomain "github.com/AlibekovAA/notes/internal/notes/domain"
	"github.com/AlibekovAA/notes/internal/ui/dashboard"
	userdomain "github.com/AlibekovAA/notes/internal/user/domain"
)

type fakeSessions struct {
	mu        sync.Mutex
	listener  func(*userdomain.User)
	initial   *userdomain.User
	cancelled bool
}

func (f *fakeSessions) Subscribe(fn func(*userdomain.User)) func() {
	f.mu.Lock()
	f.listener = fn
	initial := f.initial
	f.mu.Unlock()
	fn(initial)
	return func() {
		f.mu.Lock()
		f.cancelled = true
		f.listener = nil
		f.mu.Unlock()
	}
}

func (f *fakeSessions) deliver(u *userdomain.User) {
	f.mu.Lock()
	fn := f.listener
	f.mu.Unlock()
	if fn != nil {
		fn(u)
	}
}

type mockAuth struct {
	RegisterFunc func(ctx context.Context, input authservice.RegisterInput) (userdomain.User, error)
	LoginFunc    func(ctx context.Context, email, password string) (userdomain.User, error)
	LogoutFunc   func(ctx context.Context) error
}

func (m *mockAuth) Register(ctx context.Context, input authservice.RegisterInput) (userdomain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	return userdomain.User{}, errors.New("unexpected register")
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (userdomain.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return userdomain.User{}, errors.New("unexpected login")
}

func (m *mockAuth) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

type stubNotes struct {
	mu    sync.Mutex
	lists []string
}

func (s *stubNotes) Create(ctx context.Context, ownerID, title, content string) (string, error) {
	return "n1", nil
}

func (s *stubNotes) ListByOwner(ctx context.Context, ownerID string) ([]notedomain.Note, error) {
	s.mu.Lock()
	s.lists = append(s.lists, ownerID)
	s.mu.Unlock()
	return []notedomain.Note{{ID: "n1", OwnerID: ownerID, Title: "hello"}}, nil
}

func (s *stubNotes) Update(ctx context.Context, id string, update notedomain.Update) error {
	return nil
}

func (s *stubNotes) Delete(ctx context.Context, id string) error {
	return nil
}

type noConfirm struct{}

func (noConfirm) Confirm(ctx context.Context, prompt string) bool { return false }

var _ dashboard.Confirmer = noConfirm{}

func newTestController(sessions *fakeSessions, auth *mockAuth, notes *stubNotes) *Controller {
	return New(sessions, auth, notes, noConfirm{}, logger.NewWithWriter(io.Discard, "test", "info"))
}

func TestController_InitializingUntilFirstCallback(t *testing.T) {
	c := newTestController(&fakeSessions{}, &mockAuth{}, &stubNotes{})
	assert.Equal(t, Initializing, c.State().View)

	c.Start(context.Background())
	defer c.Stop()

	assert.Equal(t, LoginView, c.State().View)
	assert.Nil(t, c.State().Dashboard)
}

func TestController_RestoredSessionMountsDashboard(t *testing.T) {
	sessions := &fakeSessions{initial: &userdomain.User{ID: "u1", Email: "a@x.com"}}
	notes := &stubNotes{}
	c := newTestController(sessions, &mockAuth{}, notes)

	c.Start(context.Background())
	defer c.Stop()

	state := c.State()
	assert.Equal(t, DashboardView, state.View)
	require.NotNil(t, state.Dashboard)
	assert.Equal(t, dashboard.Loaded, state.Dashboard.State().Status)
	assert.Equal(t, []string{"u1"}, notes.lists)
}

func TestController_LoginSwitchesToDashboard(t *testing.T) {
	sessions := &fakeSessions{}
	created := userdomain.User{ID: "u1", Email: "a@x.com", DisplayName: "Ana"}
	auth := &mockAuth{
		LoginFunc: func(ctx context.Context, email, password string) (userdomain.User, error) {
			assert.Equal(t, "a@x.com", email)
			sessions.deliver(&userdomain.User{ID: "u1", Email: "a@x.com"})
			return created, nil
		},
	}
	c := newTestController(sessions, auth, &stubNotes{})
	c.Start(context.Background())
	defer c.Stop()

	require.NoError(t, c.Login(context.Background(), " a@x.com ", "pw123456"))

	state := c.State()
	assert.Equal(t, DashboardView, state.View)
	require.NotNil(t, state.User)
	assert.Equal(t, "Ana", state.User.DisplayName)
	assert.False(t, state.Submitting)
	assert.Empty(t, state.Err)
}

func TestController_LoginValidation(t *testing.T) {
	auth := &mockAuth{}
	c := newTestController(&fakeSessions{}, auth, &stubNotes{})
	c.Start(context.Background())
	defer c.Stop()

	err := c.Login(context.Background(), "", "pw")
	verr, ok := commonerrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "email", verr.Field)

	err = c.Login(context.Background(), "a@x.com", "")
	verr, ok = commonerrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "password", verr.Field)
}

func TestController_LoginFailureSurfacesMessage(t *testing.T) {
	auth := &mockAuth{
		LoginFunc: func(ctx context.Context, email, password string) (userdomain.User, error) {
			return userdomain.User{}, errors.New("invalid email or password")
		},
	}
	c := newTestController(&fakeSessions{}, auth, &stubNotes{})
	c.Start(context.Background())
	defer c.Stop()

	require.Error(t, c.Login(context.Background(), "a@x.com", "bad"))

	state := c.State()
	assert.Equal(t, LoginView, state.View)
	assert.Equal(t, "failed to sign in: invalid email or password", state.Err)
	assert.False(t, state.Submitting)
}

func TestController_RegisterRejectsMismatchBeforeBackend(t *testing.T) {
	called := false
	auth := &mockAuth{
		RegisterFunc: func(ctx context.Context, input authservice.RegisterInput) (userdomain.User, error) {
			called = true
			return userdomain.User{}, nil
		},
	}
	c := newTestController(&fakeSessions{}, auth, &stubNotes{})
	c.Start(context.Background())
	defer c.Stop()
	c.ToggleView()
	assert.Equal(t, RegisterView, c.State().View)

	err := c.Register(context.Background(), RegisterForm{Email: "a@x.com", Password: "pw123456", Confirm: "pw123457"})
	verr, ok := commonerrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "passwords do not match", verr.Message)
	assert.Equal(t, "passwords do not match", c.State().Err)

	err = c.Register(context.Background(), RegisterForm{Password: "pw", Confirm: "pw"})
	_, ok = commonerrors.AsValidationError(err)
	assert.True(t, ok)
	assert.False(t, called)
}

func TestController_RegisterPassesTrimmedInput(t *testing.T) {
	sessions := &fakeSessions{}
	var got authservice.RegisterInput
	auth := &mockAuth{
		RegisterFunc: func(ctx context.Context, input authservice.RegisterInput) (userdomain.User, error) {
			got = input
			sessions.deliver(&userdomain.User{ID: "u9", Email: input.Email})
			return userdomain.User{ID: "u9", Email: input.Email, DisplayName: input.DisplayName}, nil
		},
	}
	c := newTestController(sessions, auth, &stubNotes{})
	c.Start(context.Background())
	defer c.Stop()

	err := c.Register(context.Background(), RegisterForm{
		DisplayName: " Ana ",
		Email:       "a@x.com",
		Password:    "pw123456",
		Confirm:     "pw123456",
	})
	require.NoError(t, err)
	assert.Equal(t, authservice.RegisterInput{Email: "a@x.com", Password: "pw123456", DisplayName: "Ana"}, got)
	assert.Equal(t, DashboardView, c.State().View)
	assert.Equal(t, "Ana", c.State().User.DisplayName)
}

func TestController_SignOutDropsDashboard(t *testing.T) {
	sessions := &fakeSessions{initial: &userdomain.User{ID: "u1"}}
	auth := &mockAuth{
		LogoutFunc: func(ctx context.Context) error {
			sessions.deliver(nil)
			return nil
		},
	}
	c := newTestController(sessions, auth, &stubNotes{})
	c.Start(context.Background())
	defer c.Stop()
	require.NotNil(t, c.State().Dashboard)

	require.NoError(t, c.Logout(context.Background()))

	state := c.State()
	assert.Equal(t, LoginView, state.View)
	assert.Nil(t, state.Dashboard)
	assert.Nil(t, state.User)
}

func TestController_LogoutFailureKeepsSession(t *testing.T) {
	sessions := &fakeSessions{initial: &userdomain.User{ID: "u1"}}
	auth := &mockAuth{
		LogoutFunc: func(ctx context.Context) error { return errors.New("network down") },
	}
	c := newTestController(sessions, auth, &stubNotes{})
	c.Start(context.Background())
	defer c.Stop()

	require.Error(t, c.Logout(context.Background()))

	state := c.State()
	assert.Equal(t, DashboardView, state.View)
	assert.NotNil(t, state.Dashboard)
	assert.Equal(t, "failed to sign out: network down", state.Err)
}

func TestController_NewAccountGetsFreshDashboard(t *testing.T) {
	sessions := &fakeSessions{initial: &userdomain.User{ID: "u1"}}
	notes := &stubNotes{}
	c := newTestController(sessions, &mockAuth{}, notes)
	c.Start(context.Background())
	defer c.Stop()

	first := c.State().Dashboard
	sessions.deliver(&userdomain.User{ID: "u1", DisplayName: "renamed"})
	assert.Same(t, first, c.State().Dashboard)

	sessions.deliver(&userdomain.User{ID: "u2"})
	second := c.State().Dashboard
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, "u2", second.Session().User.ID)
	assert.Equal(t, []string{"u1", "u2"}, notes.lists)
}

func TestController_StopCancelsSubscription(t *testing.T) {
	sessions := &fakeSessions{}
	c := newTestController(sessions, &mockAuth{}, &stubNotes{})
	c.Start(context.Background())
	c.Stop()

	assert.True(t, sessions.cancelled)
	sessions.deliver(&userdomain.User{ID: "u1"})
	assert.Equal(t, LoginView, c.State().View)
}
