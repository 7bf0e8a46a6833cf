package models

// WatchStatus enumerates the lifecycle states of a watchlist entry.
// Values travel verbatim over the wire.
type WatchStatus string

const (
	StatusPlanToWatch       WatchStatus = "PLAN_TO_WATCH"
	StatusCurrentlyWatching WatchStatus = "CURRENTLY_WATCHING"
	StatusCompleted         WatchStatus = "COMPLETED"
)

// Valid reports whether the status is one of the three known values.
func (s WatchStatus) Valid() bool {
	switch s {
	case StatusPlanToWatch, StatusCurrentlyWatching, StatusCompleted:
		return true
	}
	return false
}

// Kind discriminates movie and show entries; each kind lives in its own
// store namespace.
type Kind string

const (
	KindMovie Kind = "movies"
	KindShow  Kind = "tvshows"
)

// Valid reports whether the kind names a known store namespace.
func (k Kind) Valid() bool {
	return k == KindMovie || k == KindShow
}

// WatchlistItem ties one user to one title with a watch status and, for
// shows, a season/episode position. ID and the timestamps are assigned by
// the store and treated as opaque; ID is zero until the item is persisted.
type WatchlistItem struct {
	ID             int64       `json:"id,omitempty"`
	Owner          string      `json:"username"`
	TitleID        string      `json:"titleId"`
	Kind           Kind        `json:"kind"`
	Status         WatchStatus `json:"status"`
	CurrentSeason  int         `json:"currentSeason,omitempty"`
	CurrentEpisode int         `json:"currentEpisode,omitempty"`
	CreatedAt      int64       `json:"createdAt,omitempty"`
	UpdatedAt      int64       `json:"updatedAt,omitempty"`
}

// Key returns a stable identifier combining kind and title ID. Each
// (owner, kind, titleId) triple maps to at most one item.
func (w WatchlistItem) Key() string {
	return string(w.Kind) + ":" + w.TitleID
}

// IsShow reports whether the item carries season/episode progress.
func (w WatchlistItem) IsShow() bool {
	return w.Kind == KindShow
}

// Persisted reports whether the store has assigned an ID yet.
func (w WatchlistItem) Persisted() bool {
	return w.ID != 0
}
