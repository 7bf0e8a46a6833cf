package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetracks/models"
)

func TestListDecodesRowsAndTagsKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/watchlist/tvshows/alice", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":7,"username":"alice","titleId":"tv-42","status":"CURRENTLY_WATCHING","currentSeason":2,"currentEpisode":4,"createdAt":1700000000000,"updatedAt":1700000001000}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api", 5*time.Second)
	items, err := client.List(context.Background(), models.KindShow, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, int64(7), item.ID)
	assert.Equal(t, "alice", item.Owner)
	assert.Equal(t, "tv-42", item.TitleID)
	assert.Equal(t, models.KindShow, item.Kind)
	assert.Equal(t, models.StatusCurrentlyWatching, item.Status)
	assert.Equal(t, 2, item.CurrentSeason)
	assert.Equal(t, 4, item.CurrentEpisode)
}

func TestCreateSendsShowPosition(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/watchlist/tvshows", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id": 11, "username": "alice", "titleId": "tv-42",
			"status": "PLAN_TO_WATCH", "currentSeason": 1, "currentEpisode": 0,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api", 5*time.Second)
	created, err := client.Create(context.Background(), models.WatchlistItem{
		Owner:         "alice",
		TitleID:       "tv-42",
		Kind:          models.KindShow,
		Status:        models.StatusPlanToWatch,
		CurrentSeason: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", received["username"])
	assert.Equal(t, "tv-42", received["titleId"])
	assert.Equal(t, "PLAN_TO_WATCH", received["status"])
	assert.Equal(t, float64(1), received["currentSeason"])
	assert.Equal(t, float64(0), received["currentEpisode"])

	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, models.KindShow, created.Kind)
}

func TestCreateOmitsPositionForMovies(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/watchlist/movies", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]any{"id": 3, "username": "alice", "titleId": "m-9", "status": "COMPLETED"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api", 5*time.Second)
	_, err := client.Create(context.Background(), models.WatchlistItem{
		Owner: "alice", TitleID: "m-9", Kind: models.KindMovie, Status: models.StatusCompleted,
	})
	require.NoError(t, err)

	_, hasSeason := received["currentSeason"]
	_, hasEpisode := received["currentEpisode"]
	assert.False(t, hasSeason, "movie create must not carry a season")
	assert.False(t, hasEpisode, "movie create must not carry an episode")
}

func TestUpdateSendsPartialBody(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/watchlist/tvshows/alice/tv-42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]any{
			"id": 7, "username": "alice", "titleId": "tv-42",
			"status": "CURRENTLY_WATCHING", "currentSeason": 2, "currentEpisode": 1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api", 5*time.Second)
	status := models.StatusCurrentlyWatching
	season, episode := 2, 1
	updated, err := client.Update(context.Background(), models.KindShow, "alice", "tv-42", UpdateRequest{
		Status:         &status,
		CurrentSeason:  &season,
		CurrentEpisode: &episode,
	})
	require.NoError(t, err)

	assert.Equal(t, "CURRENTLY_WATCHING", received["status"])
	assert.Equal(t, float64(2), received["currentSeason"])
	assert.Equal(t, float64(1), received["currentEpisode"])
	assert.Equal(t, 2, updated.CurrentSeason)
}

func TestDeleteStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"no content", http.StatusNoContent, func(t *testing.T, err error) {
			require.NoError(t, err)
		}},
		{"gone row", http.StatusNotFound, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrConflict)
		}},
		{"conflict", http.StatusConflict, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrConflict)
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrUnavailable)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodDelete, r.Method)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			client := NewClient(srv.URL+"/api", 5*time.Second)
			tc.check(t, client.Delete(context.Background(), models.KindMovie, "alice", "m-1"))
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL+"/api", time.Second)
	_, err := client.List(context.Background(), models.KindMovie, "alice")
	require.ErrorIs(t, err, ErrUnavailable)
}
