package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) (*http.Response, error) {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}, nil
}

const showBody = `{
	"id": 42,
	"name": "Example Show",
	"number_of_seasons": 3,
	"number_of_episodes": 24,
	"seasons": [
		{"id": 1, "season_number": 1, "episode_count": 10},
		{"id": 2, "season_number": 2, "episode_count": 8},
		{"id": 3, "season_number": 3, "episode_count": 6}
	]
}`

func newTestClient(transport roundTripFunc) *Client {
	c := NewClient("http://catalog.local/api", time.Second)
	c.httpClient = &http.Client{Transport: transport}
	return c
}

func TestTvShowDecodesSeasonList(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/catalog/tvshows/42" {
			t.Fatalf("unexpected request path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, showBody)
	})

	detail, err := client.TvShow(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.NumberOfSeasons != 3 {
		t.Fatalf("expected 3 seasons, got %d", detail.NumberOfSeasons)
	}
	if count, ok := detail.EpisodeCount(2); !ok || count != 8 {
		t.Fatalf("expected 8 episodes in season 2, got %d (known=%v)", count, ok)
	}
	if _, ok := detail.EpisodeCount(4); ok {
		t.Fatalf("season 4 must be unknown")
	}
}

func TestSeasonCount(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, showBody)
	})

	count, known := client.SeasonCount(context.Background(), "42")
	if !known || count != 3 {
		t.Fatalf("expected 3 known seasons, got %d (known=%v)", count, known)
	}
}

func TestSeasonCountUnknownWhenCatalogFails(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, "boom")
	})

	if _, known := client.SeasonCount(context.Background(), "42"); known {
		t.Fatalf("season count must be unknown when the catalog is down")
	}
}

func TestEpisodeCount(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, showBody)
	})

	if count, known := client.EpisodeCount(context.Background(), "42", 1); !known || count != 10 {
		t.Fatalf("expected 10 episodes in season 1, got %d (known=%v)", count, known)
	}
}

func TestMovieNotFound(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, "")
	})

	if _, err := client.Movie(context.Background(), "m-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
