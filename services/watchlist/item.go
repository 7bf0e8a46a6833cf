package watchlist

import (
	"errors"
	"fmt"

	"cinetracks/models"
)

var (
	// ErrGuestNotAllowed rejects mutations from guest sessions before any
	// network call is made.
	ErrGuestNotAllowed = errors.New("guest sessions cannot modify the watchlist")
	// ErrNotFound means the referenced item is not in the local collection.
	ErrNotFound = errors.New("watchlist item not found")
	// ErrInvalidArgument flags malformed input to a model transformation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreUnavailable means the store call failed and the local state
	// was rolled back. Retryable.
	ErrStoreUnavailable = errors.New("watchlist store unavailable")
	// ErrConflict means the store rejected the operation because the row no
	// longer exists server-side. Rolled back like ErrStoreUnavailable, but
	// the caller should refetch instead of retrying.
	ErrConflict = errors.New("watchlist conflict")
)

// Pure item transformations. No I/O; each returns a modified copy and
// leaves the input untouched.

// WithStatus returns a copy of the item with the given status.
func WithStatus(item models.WatchlistItem, status models.WatchStatus) models.WatchlistItem {
	item.Status = status
	return item
}

// WithSeason returns a copy positioned at the given season with the
// episode counter reset to resetEpisodeTo. The episode reset keeps the
// item from carrying an episode number that belongs to the old season.
func WithSeason(item models.WatchlistItem, season, resetEpisodeTo int) (models.WatchlistItem, error) {
	if season < 1 {
		return item, fmt.Errorf("%w: season %d, must be >= 1", ErrInvalidArgument, season)
	}
	if resetEpisodeTo < 0 {
		resetEpisodeTo = 0
	}
	item.CurrentSeason = season
	item.CurrentEpisode = resetEpisodeTo
	return item, nil
}

// WithEpisodeDelta returns a copy with the episode counter moved by delta,
// saturating at 0 and at maxEpisodes. A negative maxEpisodes means the
// season length is unknown and only the lower bound applies. Never fails;
// this models a human clicking +/- buttons.
func WithEpisodeDelta(item models.WatchlistItem, delta, maxEpisodes int) models.WatchlistItem {
	episode := item.CurrentEpisode + delta
	if episode < 0 {
		episode = 0
	}
	if maxEpisodes >= 0 && episode > maxEpisodes {
		episode = maxEpisodes
	}
	item.CurrentEpisode = episode
	return item
}
