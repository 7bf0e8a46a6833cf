package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinetracks/models"
	"cinetracks/services/session"
	"cinetracks/services/watchlist"
)

type sessionProvider interface {
	Controller() (*watchlist.Controller, error)
}

var _ sessionProvider = (*session.Manager)(nil)

// EpisodeSource answers how many episodes a show's season has, used to
// bound the episode counter. *catalog.Client satisfies it.
type EpisodeSource interface {
	EpisodeCount(ctx context.Context, showID string, season int) (int, bool)
}

// WatchlistHandler exposes the sync controller's operations over HTTP.
// Every mutation returns the post-commit item; failures leave the local
// collection exactly as it was before the call.
type WatchlistHandler struct {
	Sessions sessionProvider
	Episodes EpisodeSource
}

func NewWatchlistHandler(sessions sessionProvider, episodes EpisodeSource) *WatchlistHandler {
	return &WatchlistHandler{Sessions: sessions, Episodes: episodes}
}

// List returns the session's full collection, both kinds merged.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ctrl.Items())
}

// Add creates a new watchlist entry.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w)
	if !ok {
		return
	}

	kind, ok := requireKind(w, r)
	if !ok {
		return
	}

	var payload struct {
		TitleID        string             `json:"titleId"`
		Status         models.WatchStatus `json:"status"`
		CurrentSeason  int                `json:"currentSeason"`
		CurrentEpisode int                `json:"currentEpisode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Status == "" {
		payload.Status = models.StatusPlanToWatch
	}

	item, err := ctrl.AddItem(r.Context(), kind, strings.TrimSpace(payload.TitleID), payload.Status, payload.CurrentSeason, payload.CurrentEpisode)
	if err != nil {
		writeWatchlistError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// ChangeStatus moves an existing entry to a new status.
func (h *WatchlistHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w)
	if !ok {
		return
	}

	kind, ok := requireKind(w, r)
	if !ok {
		return
	}
	titleID := mux.Vars(r)["titleId"]

	var payload struct {
		Status models.WatchStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	item, err := ctrl.ChangeStatus(r.Context(), kind, titleID, payload.Status)
	if err != nil {
		writeWatchlistError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// ChangeSeason repositions a show at a new season, episode counter reset
// to 1.
func (h *WatchlistHandler) ChangeSeason(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w)
	if !ok {
		return
	}

	titleID := mux.Vars(r)["titleId"]

	var payload struct {
		Season int `json:"season"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	item, err := ctrl.ChangeSeason(r.Context(), titleID, payload.Season)
	if err != nil {
		writeWatchlistError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// AdjustEpisode bumps a show's episode counter by a delta, clamped to the
// catalog's episode count for the current season when known.
func (h *WatchlistHandler) AdjustEpisode(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w)
	if !ok {
		return
	}

	titleID := mux.Vars(r)["titleId"]

	var payload struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Delta == 0 {
		http.Error(w, "delta is required", http.StatusBadRequest)
		return
	}

	maxEpisodes := -1
	if h.Episodes != nil {
		if item, found := ctrl.Get(models.KindShow, titleID); found {
			if count, known := h.Episodes.EpisodeCount(r.Context(), titleID, item.CurrentSeason); known {
				maxEpisodes = count
			}
		}
	}

	item, err := ctrl.AdjustEpisode(r.Context(), titleID, payload.Delta, maxEpisodes)
	if err != nil {
		writeWatchlistError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// Remove deletes an entry.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w)
	if !ok {
		return
	}

	kind, ok := requireKind(w, r)
	if !ok {
		return
	}
	titleID := mux.Vars(r)["titleId"]

	if err := ctrl.RemoveItem(r.Context(), kind, titleID); err != nil {
		writeWatchlistError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchlistHandler) controller(w http.ResponseWriter) (*watchlist.Controller, bool) {
	ctrl, err := h.Sessions.Controller()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrNoSession) {
			status = http.StatusUnauthorized
		}
		http.Error(w, err.Error(), status)
		return nil, false
	}
	return ctrl, true
}

func requireKind(w http.ResponseWriter, r *http.Request) (models.Kind, bool) {
	kind := models.Kind(mux.Vars(r)["kind"])
	if !kind.Valid() {
		http.Error(w, "kind must be movies or tvshows", http.StatusBadRequest)
		return "", false
	}
	return kind, true
}

func writeWatchlistError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, watchlist.ErrGuestNotAllowed):
		status = http.StatusForbidden
	case errors.Is(err, watchlist.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, watchlist.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, watchlist.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, watchlist.ErrStoreUnavailable):
		status = http.StatusBadGateway
	}
	http.Error(w, err.Error(), status)
}
