package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cinetracks/models"
)

var (
	// ErrInvalidCredentials indicates the auth service rejected the login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnavailable wraps transport failures and unexpected statuses.
	ErrUnavailable = errors.New("auth service unavailable")
)

// Client authenticates against the auth service. Token storage and refresh
// stay inside the service; this client only yields the session identity.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an auth client. baseURL points at the service root,
// e.g. "http://localhost:8081/api".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type userResponse struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	IsGuest     bool   `json:"isGuest,omitempty"`
}

// Login authenticates with username and password.
func (c *Client) Login(ctx context.Context, username, password string) (models.Session, error) {
	payload := map[string]string{"username": username, "password": password}
	return c.sessionPost(ctx, "/auth/login", payload, false)
}

// Register creates a new account and returns its session.
func (c *Client) Register(ctx context.Context, username, email, password string) (models.Session, error) {
	payload := map[string]string{"username": username, "email": email, "password": password}
	return c.sessionPost(ctx, "/auth/register", payload, false)
}

// Guest obtains a temporary guest identity. Guests may browse but never
// persist watchlist state.
func (c *Client) Guest(ctx context.Context) (models.Session, error) {
	return c.sessionPost(ctx, "/auth/guest", map[string]string{}, true)
}

func (c *Client) sessionPost(ctx context.Context, path string, payload map[string]string, guest bool) (models.Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return models.Session{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return models.Session{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return models.Session{}, ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return models.Session{}, fmt.Errorf("%w: %s - %s", ErrUnavailable, resp.Status, strings.TrimSpace(string(respBody)))
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.Session{}, fmt.Errorf("decode response: %w", err)
	}

	return models.Session{
		Owner:       user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		IsGuest:     guest || user.IsGuest,
	}, nil
}
