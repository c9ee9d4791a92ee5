// Package client talks to the Symvora backend over HTTP.
//
// A Client is both the account collaborator (account.Service) and the
// diagnosis collaborator (diagnosis.Diagnoser) of the flow controller.
// After a successful sign-up or login it keeps the returned access token,
// persists it through a TokenStore and sends it as a Bearer header on every
// request, using an oauth2 static token source as the transport.
//
// API error bodies ({"error": "...", "message": "..."}) are turned back into
// *apperror.AppError values so callers can use errors.Is on the usual kinds.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/symvora/internal/apperror"
	"github.com/sakif/symvora/internal/model"
)

// DefaultTimeout bounds a single request. It is a little longer than the
// backend's own diagnosis timeout so that the server reports the failure.
const DefaultTimeout = 35 * time.Second

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	base    *http.Client
	tokens  TokenStore
	logger  *slog.Logger

	mu     sync.RWMutex
	token  string
	authed *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (timeouts, proxies,
// httptest servers).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.base = hc }
}

// WithTokenStore makes the session survive restarts.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    &http.Client{Timeout: DefaultTimeout},
		tokens:  &memoryTokens{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.authed = c.base
	return c
}

// authResponse is the body of signup and login responses.
type authResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// errorResponse mirrors handler.ErrorResponse.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// =========================================================================
// ACCOUNT
// =========================================================================

func (c *Client) SignUp(ctx context.Context, name, email, password string) (*model.User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.authenticate(ctx, "/api/auth/signup", body)
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "/api/auth/login", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*model.User, error) {
	var resp authResponse
	if err := c.send(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, apperror.Upstream("Server returned no token", nil)
	}

	c.setToken(resp.Token)
	if err := c.tokens.Save(resp.Token); err != nil {
		// The session still works for this run.
		c.logger.Warn("could not persist session", slog.String("error", err.Error()))
	}
	return &resp.User, nil
}

// LoadCurrentUser restores the session saved by a previous run. A missing,
// expired or revoked token means "no session" rather than an error.
func (c *Client) LoadCurrentUser(ctx context.Context) (*model.User, error) {
	token, err := c.tokens.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	c.setToken(token)

	var user model.User
	err = c.send(ctx, http.MethodGet, "/api/me", nil, &user)
	if errors.Is(err, apperror.ErrUnauthorized) || errors.Is(err, apperror.ErrNotFound) {
		c.logger.Info("saved session is no longer valid")
		c.forget()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfileName(ctx context.Context, name string) error {
	return c.send(ctx, http.MethodPut, "/api/me/name", map[string]string{"name": name}, nil)
}

func (c *Client) UpdatePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.send(ctx, http.MethodPut, "/api/me/password", body, nil)
}

// Logout forgets the local token even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	err := c.send(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.forget()
	return err
}

func (c *Client) forget() {
	c.setToken("")
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn("could not clear saved session", slog.String("error", err.Error()))
	}
}

// =========================================================================
// DIAGNOSIS
// =========================================================================

// Diagnose asks the backend to analyze symptoms.
func (c *Client) Diagnose(ctx context.Context, symptoms string) (string, error) {
	var resp struct {
		Result string `json:"result"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/analyze", map[string]string{"symptoms": symptoms}, &resp); err != nil {
		return "", err
	}
	return resp.Result, nil
}

// =========================================================================
// TRANSPORT
// =========================================================================

// setToken swaps the HTTP client used for requests. An empty token means
// unauthenticated requests.
func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	if token == "" {
		c.authed = c.base
		return
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	c.authed = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

// HasToken reports whether requests are currently sent with a token.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *Client) httpClient() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authed
}

// send performs one JSON request. in may be nil for an empty body; out may
// be nil when the response body is not needed.
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build %s: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperror.Upstream("Could not reach the server", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Upstream("Unexpected response from the server", err)
	}
	return nil
}

// decodeError rebuilds an AppError from an API error response.
func decodeError(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	msg := body.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	kind := kindOf(body.Error, resp.StatusCode)
	if kind == apperror.ErrValidation && body.Field != "" {
		return apperror.ValidationFailed(body.Field, msg)
	}
	return apperror.New(kind, msg)
}

func kindOf(code string, status int) error {
	switch code {
	case "validation_error":
		return apperror.ErrValidation
	case "not_found":
		return apperror.ErrNotFound
	case "forbidden":
		return apperror.ErrForbidden
	case "conflict":
		return apperror.ErrConflict
	case "unauthorized":
		return apperror.ErrUnauthorized
	case "upstream_error":
		return apperror.ErrUpstream
	}

	switch status {
	case http.StatusBadRequest:
		return apperror.ErrValidation
	case http.StatusUnauthorized:
		return apperror.ErrUnauthorized
	case http.StatusForbidden:
		return apperror.ErrForbidden
	case http.StatusNotFound:
		return apperror.ErrNotFound
	case http.StatusConflict:
		return apperror.ErrConflict
	default:
		return apperror.ErrUpstream
	}
}
