package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinetracks/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter wires every API route. Paths mirror the proxy rewrites the
// web frontend used, so the presentation layer keeps its surface.
func NewRouter(sessions *handlers.SessionHandler, watchlist *handlers.WatchlistHandler, catalog *handlers.CatalogHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	apiRouter := r.PathPrefix("/api").Subrouter()

	// Session lifecycle
	apiRouter.HandleFunc("/auth/login", sessions.Login).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/auth/register", sessions.Register).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/auth/guest", sessions.Guest).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/auth/logout", sessions.Logout).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/auth/user", sessions.Current).Methods(http.MethodGet, http.MethodOptions)

	// Watchlist operations
	apiRouter.HandleFunc("/watchlist", watchlist.List).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/watchlist/{kind}", watchlist.Add).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/watchlist/{kind}/{titleId}/status", watchlist.ChangeStatus).Methods(http.MethodPut, http.MethodOptions)
	apiRouter.HandleFunc("/watchlist/tvshows/{titleId}/season", watchlist.ChangeSeason).Methods(http.MethodPut, http.MethodOptions)
	apiRouter.HandleFunc("/watchlist/tvshows/{titleId}/episode", watchlist.AdjustEpisode).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/watchlist/{kind}/{titleId}", watchlist.Remove).Methods(http.MethodDelete, http.MethodOptions)

	// Catalog passthrough
	apiRouter.HandleFunc("/catalog/movies/{id}", catalog.Movie).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/catalog/tvshows/{id}", catalog.TvShow).Methods(http.MethodGet, http.MethodOptions)

	return r
}
