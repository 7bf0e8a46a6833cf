package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinetracks/models"
)

var (
	// ErrUnavailable wraps transport failures and unexpected statuses from
	// the watchlist service. Callers may retry.
	ErrUnavailable = errors.New("watchlist store unavailable")
	// ErrConflict indicates the store no longer has the row the request
	// referenced, e.g. it was deleted from another session. Callers should
	// refetch rather than retry blindly.
	ErrConflict = errors.New("watchlist store conflict")
)

// Client talks to the watchlist service over its REST contract. One row
// per (username, title) pair, with movies and tvshows in separate
// namespaces.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a watchlist store client. baseURL points at the
// service root, e.g. "http://localhost:8083/api".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// UpdateRequest carries a partial update; nil fields are left untouched
// by the store.
type UpdateRequest struct {
	Status         *models.WatchStatus `json:"status,omitempty"`
	CurrentSeason  *int                `json:"currentSeason,omitempty"`
	CurrentEpisode *int                `json:"currentEpisode,omitempty"`
}

type createRequest struct {
	Username       string             `json:"username"`
	TitleID        string             `json:"titleId"`
	Status         models.WatchStatus `json:"status"`
	CurrentSeason  *int               `json:"currentSeason,omitempty"`
	CurrentEpisode *int               `json:"currentEpisode,omitempty"`
}

// List returns every watchlist row of the given kind for the user.
func (c *Client) List(ctx context.Context, kind models.Kind, username string) ([]models.WatchlistItem, error) {
	endpoint := fmt.Sprintf("%s/watchlist/%s/%s", c.baseURL, kind, url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var items []models.WatchlistItem
	if err := c.do(req, &items); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Kind = kind
	}
	return items, nil
}

// Create persists a new row and returns it with the store-assigned ID and
// timestamps filled in.
func (c *Client) Create(ctx context.Context, item models.WatchlistItem) (models.WatchlistItem, error) {
	endpoint := fmt.Sprintf("%s/watchlist/%s", c.baseURL, item.Kind)

	payload := createRequest{
		Username: item.Owner,
		TitleID:  item.TitleID,
		Status:   item.Status,
	}
	if item.IsShow() {
		season, episode := item.CurrentSeason, item.CurrentEpisode
		payload.CurrentSeason = &season
		payload.CurrentEpisode = &episode
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var created models.WatchlistItem
	if err := c.do(req, &created); err != nil {
		return models.WatchlistItem{}, err
	}
	created.Kind = item.Kind
	return created, nil
}

// Update applies a partial update to an existing row.
func (c *Client) Update(ctx context.Context, kind models.Kind, username, titleID string, update UpdateRequest) (models.WatchlistItem, error) {
	endpoint := fmt.Sprintf("%s/watchlist/%s/%s/%s", c.baseURL, kind, url.PathEscape(username), url.PathEscape(titleID))

	body, err := json.Marshal(update)
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var updated models.WatchlistItem
	if err := c.do(req, &updated); err != nil {
		return models.WatchlistItem{}, err
	}
	updated.Kind = kind
	return updated, nil
}

// Delete removes a row. Deleting a row that is already gone reports
// ErrConflict.
func (c *Client) Delete(ctx context.Context, kind models.Kind, username, titleID string) error {
	endpoint := fmt.Sprintf("%s/watchlist/%s/%s/%s", c.baseURL, kind, url.PathEscape(username), url.PathEscape(titleID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: %s", ErrConflict, resp.Status)
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s - %s", ErrUnavailable, resp.Status, strings.TrimSpace(string(respBody)))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
