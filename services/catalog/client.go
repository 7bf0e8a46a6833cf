package catalog

import (
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
	// ErrNotFound indicates the catalog has no title with the given ID.
	ErrNotFound = errors.New("title not found in catalog")
	// ErrUnavailable wraps transport failures and unexpected statuses.
	ErrUnavailable = errors.New("catalog unavailable")
)

// Client reads title metadata from the catalog service. Consumed
// read-only; the watchlist core uses it to bound season and episode
// numbers.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a catalog client. baseURL points at the service root,
// e.g. "http://localhost:8082/api".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Movie fetches detailed metadata for one movie.
func (c *Client) Movie(ctx context.Context, id string) (models.MovieDetail, error) {
	var detail models.MovieDetail
	if err := c.get(ctx, fmt.Sprintf("%s/catalog/movies/%s", c.baseURL, url.PathEscape(id)), &detail); err != nil {
		return models.MovieDetail{}, err
	}
	return detail, nil
}

// TvShow fetches detailed metadata for one show, including its season
// list with per-season episode counts.
func (c *Client) TvShow(ctx context.Context, id string) (models.TvShowDetail, error) {
	var detail models.TvShowDetail
	if err := c.get(ctx, fmt.Sprintf("%s/catalog/tvshows/%s", c.baseURL, url.PathEscape(id)), &detail); err != nil {
		return models.TvShowDetail{}, err
	}
	return detail, nil
}

// SeasonCount returns the number of seasons the catalog knows for a show.
// The second return is false when the catalog has no usable answer, in
// which case callers must not enforce an upper bound.
func (c *Client) SeasonCount(ctx context.Context, showID string) (int, bool) {
	detail, err := c.TvShow(ctx, showID)
	if err != nil || detail.NumberOfSeasons <= 0 {
		return 0, false
	}
	return detail.NumberOfSeasons, true
}

// EpisodeCount returns the number of episodes in one season of a show,
// with false when the catalog cannot say.
func (c *Client) EpisodeCount(ctx context.Context, showID string, season int) (int, bool) {
	detail, err := c.TvShow(ctx, showID)
	if err != nil {
		return 0, false
	}
	return detail.EpisodeCount(season)
}

func (c *Client) get(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s - %s", ErrUnavailable, resp.Status, strings.TrimSpace(string(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
