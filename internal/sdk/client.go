// Package sdk is the HTTP client for the notes backend. A single Client acts
// as both the authentication provider and the document store of the app.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/AlibekovAA/notes/internal/common/logger"
	"github.com/AlibekovAA/notes/internal/provider"
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Code    string
	Message string
	TraceID string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

type codedError interface {
	Code() string
}

// Is matches backend domain errors by code, so errors.Is(err,
// docstore.ErrNotFound) holds for a DOCUMENT_NOT_FOUND response.
func (e *APIError) Is(target error) bool {
	coded, ok := target.(codedError)
	return ok && e.Code != "" && coded.Code() == e.Code
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id"`
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Sessions persists the token between runs. Optional.
	Sessions *SessionFile
}

type Client struct {
	http     *resty.Client
	sessions *SessionFile
	log      *logger.Logger

	mu        sync.RWMutex
	token     string
	identity  *provider.Identity
	resolved  bool
	listeners map[int]func(*provider.Identity)
	nextID    int
}

func New(cfg Config, log *logger.Logger) *Client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}

	return &Client{
		http:      c,
		sessions:  cfg.Sessions,
		log:       log,
		listeners: make(map[int]func(*provider.Identity)),
	}
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context, authenticated bool) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&errorEnvelope{})
	if authenticated {
		if token := c.currentToken(); token != "" {
			req.SetAuthToken(token)
		}
	}
	return req
}

// check converts transport failures and error envelopes into errors.
func (c *Client) check(resp *resty.Response, err error, op string) error {
	if err != nil {
		c.log.WithFields(context.Background(), logger.Fields{"action": op}).Debugf("request failed: %v", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode()}
	if env, ok := resp.Error().(*errorEnvelope); ok && env != nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Message
		apiErr.TraceID = env.TraceID
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}

	c.log.WithFields(context.Background(), logger.Fields{
		"action":   op,
		"status":   apiErr.Status,
		"code":     apiErr.Code,
		"trace_id": apiErr.TraceID,
	}).Debug("backend returned error")
	return apiErr
}

// checkSession is check for calls made with the session token. A 401 means the
// backend no longer accepts that token, so the session is signed out.
func (c *Client) checkSession(ctx context.Context, resp *resty.Response, err error, op string) error {
	err = c.check(resp, err, op)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}
	if resp == nil || resp.Request == nil || resp.Request.Token == "" {
		return err
	}

	c.mu.Lock()
	if c.token != resp.Request.Token {
		c.mu.Unlock()
		return err
	}
	c.token = ""
	c.identity = nil
	c.mu.Unlock()

	c.log.WithFields(ctx, logger.Fields{"action": op, "code": apiErr.Code}).Info("session token rejected, signing out")
	c.persist()
	c.notify(nil)
	return err
}
