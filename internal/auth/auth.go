// Package auth verifies bearer tokens against the hosted identity service and
// exposes the authenticated user through the request context.
package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrUnauthorized is returned for missing, malformed, or rejected credentials.
var ErrUnauthorized = errors.New("unauthorized")

// User is the authenticated principal attached to a request.
type User struct {
	ID    uuid.UUID
	Email string
}

// Verifier resolves a bearer token to a user.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// Client verifies tokens by calling the identity provider's user endpoint.
// The provider validates the JWT; we only relay it.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Config holds identity provider connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a verifier against the given provider.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Verify calls GET /auth/v1/user with the caller's token. Any non-200 answer
// maps to ErrUnauthorized.
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build auth request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call auth service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
		return nil, ErrUnauthorized
	}

	var body struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode auth response")
	}
	id, err := uuid.Parse(body.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parse user id")
	}
	return &User{ID: id, Email: body.Email}, nil
}
