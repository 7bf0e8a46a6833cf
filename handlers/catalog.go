package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"cinetracks/models"
	"cinetracks/services/catalog"
)

type catalogService interface {
	Movie(ctx context.Context, id string) (models.MovieDetail, error)
	TvShow(ctx context.Context, id string) (models.TvShowDetail, error)
}

var _ catalogService = (*catalog.Client)(nil)

// CatalogHandler passes title metadata through to the presentation layer.
type CatalogHandler struct {
	Catalog catalogService
}

func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: svc}
}

// Movie returns detailed metadata for one movie.
func (h *CatalogHandler) Movie(w http.ResponseWriter, r *http.Request) {
	id, ok := requireTitleID(w, r)
	if !ok {
		return
	}

	detail, err := h.Catalog.Movie(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

// TvShow returns detailed metadata for one show, including the season
// list the progress controls bind to.
func (h *CatalogHandler) TvShow(w http.ResponseWriter, r *http.Request) {
	id, ok := requireTitleID(w, r)
	if !ok {
		return
	}

	detail, err := h.Catalog.TvShow(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

func requireTitleID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil || strings.TrimSpace(id) == "" {
		http.Error(w, "title id is required", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func writeCatalogError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrUnavailable):
		status = http.StatusBadGateway
	}
	http.Error(w, err.Error(), status)
}
