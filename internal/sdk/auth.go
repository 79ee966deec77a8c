package sdk

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AlibekovAA/notes/internal/common/logger"
	"github.com/AlibekovAA/notes/internal/provider"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountPayload struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type sessionPayload struct {
	Account accountPayload `json:"account"`
	Token   string         `json:"token"`
}

func (a accountPayload) identity() provider.Identity {
	return provider.Identity{
		AccountID:   a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}

func (c *Client) RegisterWithPassword(ctx context.Context, email, password string) (provider.Identity, error) {
	return c.signIn(ctx, "/api/accounts/register", "register", email, password)
}

func (c *Client) LoginWithPassword(ctx context.Context, email, password string) (provider.Identity, error) {
	return c.signIn(ctx, "/api/accounts/login", "login", email, password)
}

func (c *Client) signIn(ctx context.Context, path, op, email, password string) (provider.Identity, error) {
	var out sessionPayload
	resp, err := c.request(ctx, false).
		SetBody(credentialsRequest{Email: email, Password: password}).
		SetResult(&out).
		Post(path)
	if err := c.check(resp, err, op); err != nil {
		return provider.Identity{}, err
	}

	identity := out.Account.identity()
	c.setSession(out.Token, &identity)
	return identity, nil
}

// Logout revokes the token on the backend and then drops the local session.
// On failure the session is left as it was.
func (c *Client) Logout(ctx context.Context) error {
	if c.currentToken() == "" {
		return nil
	}

	resp, err := c.request(ctx, true).Post("/api/accounts/logout")
	if err := c.check(resp, err, "logout"); err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
			return err
		}
	}

	c.setSession("", nil)
	return nil
}

// UpdateProfile changes the display name of the signed-in account.
func (c *Client) UpdateProfile(ctx context.Context, accountID string, update provider.ProfileUpdate) error {
	resp, err := c.request(ctx, true).
		SetBody(map[string]string{"displayName": update.DisplayName}).
		Patch("/api/accounts/profile")
	if err := c.checkSession(ctx, resp, err, "update_profile"); err != nil {
		return err
	}

	c.mu.Lock()
	if c.identity != nil && c.identity.AccountID == accountID {
		updated := *c.identity
		updated.DisplayName = update.DisplayName
		c.identity = &updated
	}
	c.mu.Unlock()
	c.persist()
	return nil
}

// Restore resumes the session saved in the session file, if the backend
// still accepts its token. Observers are notified either way.
func (c *Client) Restore(ctx context.Context) error {
	if c.sessions == nil {
		c.notify(nil)
		return nil
	}

	stored, err := c.sessions.Load()
	if err != nil || stored.Token == "" {
		c.notify(nil)
		return err
	}

	var out accountPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(stored.Token).
		SetError(&errorEnvelope{}).
		SetResult(&out).
		Get("/api/accounts/me")
	if err := c.check(resp, err, "restore"); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			c.log.WithFields(ctx, logger.Fields{"action": "session_restore"}).Info("saved session expired")
			if err := c.sessions.Clear(); err != nil {
				c.log.WithFields(ctx, logger.Fields{"action": "session_persist"}).Warnf("failed to clear session: %v", err)
			}
			c.notify(nil)
			return nil
		}
		c.notify(nil)
		return err
	}

	identity := out.identity()
	c.setSession(stored.Token, &identity)
	return nil
}

// ObserveSession registers fn. Once the session is known, after Restore or a
// sign-in, fn is first called with the current session. Listeners run
// synchronously on the goroutine that changed the session.
func (c *Client) ObserveSession(fn func(*provider.Identity)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	current := copyIdentity(c.identity)
	resolved := c.resolved
	c.mu.Unlock()

	if resolved {
		fn(current)
	}

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) setSession(token string, identity *provider.Identity) {
	c.mu.Lock()
	c.token = token
	c.identity = copyIdentity(identity)
	c.mu.Unlock()

	c.persist()
	c.notify(identity)
}

func (c *Client) persist() {
	if c.sessions == nil {
		return
	}

	c.mu.RLock()
	token := c.token
	identity := copyIdentity(c.identity)
	c.mu.RUnlock()

	var err error
	if token == "" || identity == nil {
		err = c.sessions.Clear()
	} else {
		err = c.sessions.Save(StoredSession{
			Token:       token,
			AccountID:   identity.AccountID,
			Email:       identity.Email,
			DisplayName: identity.DisplayName,
		})
	}
	if err != nil {
		c.log.WithFields(context.Background(), logger.Fields{"action": "session_persist"}).Warnf("failed to persist session: %v", err)
	}
}

func (c *Client) notify(identity *provider.Identity) {
	c.mu.Lock()
	c.resolved = true
	listeners := make([]func(*provider.Identity), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(copyIdentity(identity))
	}
}

func copyIdentity(identity *provider.Identity) *provider.Identity {
	if identity == nil {
		return nil
	}
	cp := *identity
	return &cp
}

var _ provider.AuthProvider = (*Client)(nil)
