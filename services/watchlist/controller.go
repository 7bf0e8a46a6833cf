package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"cinetracks/models"
	"cinetracks/services/store"
)

// Store is the slice of the watchlist service the controller needs.
// *store.Client satisfies it.
type Store interface {
	List(ctx context.Context, kind models.Kind, username string) ([]models.WatchlistItem, error)
	Create(ctx context.Context, item models.WatchlistItem) (models.WatchlistItem, error)
	Update(ctx context.Context, kind models.Kind, username, titleID string, update store.UpdateRequest) (models.WatchlistItem, error)
	Delete(ctx context.Context, kind models.Kind, username, titleID string) error
}

// SeasonSource answers how many seasons the catalog knows for a show.
// *catalog.Client satisfies it. A false second return means the catalog
// has no data and no upper bound is enforced.
type SeasonSource interface {
	SeasonCount(ctx context.Context, showID string) (int, bool)
}

// Controller owns the authoritative in-memory collection of one session's
// watchlist and sequences every UI intent into an optimistic local
// mutation, a store call, and a commit or rollback. Consumers read
// snapshots and never mutate items directly.
//
// Mutations on the same (kind, titleId) run strictly in submission order;
// different items proceed concurrently. An operation either fully commits
// or restores the exact pre-operation state before its error surfaces.
type Controller struct {
	session models.Session
	store   Store
	seasons SeasonSource
	logger  *slog.Logger

	mu    sync.RWMutex
	items map[string]models.WatchlistItem

	qmu   sync.Mutex
	tails map[string]chan struct{}
}

// NewController creates a controller for one session. seasons may be nil,
// in which case season numbers are only bounded below.
func NewController(session models.Session, st Store, seasons SeasonSource, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		session: session,
		store:   st,
		seasons: seasons,
		logger:  logger.With("owner", session.Owner),
		items:   make(map[string]models.WatchlistItem),
		tails:   make(map[string]chan struct{}),
	}
}

// Session returns the identity this controller acts for.
func (c *Controller) Session() models.Session {
	return c.session
}

// Items returns a snapshot of the collection sorted by creation time,
// newest first, with ties broken by key.
func (c *Controller) Items() []models.WatchlistItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]models.WatchlistItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt == items[j].CreatedAt {
			return items[i].Key() < items[j].Key()
		}
		return items[i].CreatedAt > items[j].CreatedAt
	})

	return items
}

// Get returns one item from the local collection.
func (c *Controller) Get(kind models.Kind, titleID string) (models.WatchlistItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[itemKey(kind, titleID)]
	return item, ok
}

// Refresh replaces the local collection with the store's rows for both
// kinds, fetched concurrently. Guests have no persisted rows; for them
// this is a no-op.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.session.CanPersist() {
		return nil
	}

	var lists [2][]models.WatchlistItem
	p := pool.New().WithErrors()
	for i, kind := range []models.Kind{models.KindMovie, models.KindShow} {
		p.Go(func() error {
			items, err := c.store.List(ctx, kind, c.session.Owner)
			if err != nil {
				return err
			}
			lists[i] = items
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return classifyStoreErr(err)
	}

	merged := make(map[string]models.WatchlistItem)
	for _, list := range lists {
		for _, item := range list {
			item.Owner = c.session.Owner
			if item.IsShow() && item.CurrentSeason < 1 {
				item.CurrentSeason = 1
			}
			merged[item.Key()] = item
		}
	}

	c.mu.Lock()
	c.items = merged
	c.mu.Unlock()

	c.logger.Debug("watchlist refreshed", "items", len(merged))
	return nil
}

// AddItem creates a new entry. Season and episode apply to shows only;
// values below the defaults (season 1, episode 0) are lifted to them. On
// success the store-assigned ID and timestamps are merged into the local
// item.
func (c *Controller) AddItem(ctx context.Context, kind models.Kind, titleID string, status models.WatchStatus, season, episode int) (models.WatchlistItem, error) {
	if !c.session.CanPersist() {
		return models.WatchlistItem{}, ErrGuestNotAllowed
	}
	if !kind.Valid() {
		return models.WatchlistItem{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidArgument, kind)
	}
	if !status.Valid() {
		return models.WatchlistItem{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}
	if titleID == "" {
		return models.WatchlistItem{}, fmt.Errorf("%w: title id is required", ErrInvalidArgument)
	}

	key := itemKey(kind, titleID)
	release := c.enqueue(key)
	defer release()

	item := models.WatchlistItem{
		Owner:   c.session.Owner,
		TitleID: titleID,
		Kind:    kind,
		Status:  status,
	}
	if kind == models.KindShow {
		if season < 1 {
			season = 1
		}
		if episode < 0 {
			episode = 0
		}
		item.CurrentSeason = season
		item.CurrentEpisode = episode
	}

	c.mu.Lock()
	if _, exists := c.items[key]; exists {
		c.mu.Unlock()
		return models.WatchlistItem{}, fmt.Errorf("%w: %s already on watchlist", ErrInvalidArgument, titleID)
	}
	c.items[key] = item
	c.mu.Unlock()

	opID := shortOpID()
	c.logger.Debug("watchlist add", "op", opID, "key", key, "status", status)

	created, err := c.store.Create(ctx, item)
	if err != nil {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		c.logger.Warn("watchlist add rolled back", "op", opID, "key", key, "error", err)
		return models.WatchlistItem{}, classifyStoreErr(err)
	}

	created.Owner = c.session.Owner
	created.Kind = kind

	c.mu.Lock()
	// The item may have been removed while the create was in flight; do
	// not resurrect it from a stale response.
	if _, present := c.items[key]; present {
		c.items[key] = created
	}
	c.mu.Unlock()

	return created, nil
}

// ChangeStatus moves an existing item to a new status. Any status may
// follow any status.
func (c *Controller) ChangeStatus(ctx context.Context, kind models.Kind, titleID string, status models.WatchStatus) (models.WatchlistItem, error) {
	if !c.session.CanPersist() {
		return models.WatchlistItem{}, ErrGuestNotAllowed
	}
	if !status.Valid() {
		return models.WatchlistItem{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}

	return c.mutate(ctx, "status", kind, titleID, func(item models.WatchlistItem) (models.WatchlistItem, store.UpdateRequest, error) {
		next := WithStatus(item, status)
		return next, updateFor(next), nil
	})
}

// ChangeSeason positions a show at the given season with the episode
// counter reset to 1. The catalog's season count, when known, is a hard
// upper bound.
func (c *Controller) ChangeSeason(ctx context.Context, titleID string, season int) (models.WatchlistItem, error) {
	if !c.session.CanPersist() {
		return models.WatchlistItem{}, ErrGuestNotAllowed
	}
	if season < 1 {
		return models.WatchlistItem{}, fmt.Errorf("%w: season %d, must be >= 1", ErrInvalidArgument, season)
	}
	if c.seasons != nil {
		if count, known := c.seasons.SeasonCount(ctx, titleID); known && season > count {
			return models.WatchlistItem{}, fmt.Errorf("%w: season %d beyond known %d", ErrInvalidArgument, season, count)
		}
	}

	return c.mutate(ctx, "season", models.KindShow, titleID, func(item models.WatchlistItem) (models.WatchlistItem, store.UpdateRequest, error) {
		next, err := WithSeason(item, season, 1)
		if err != nil {
			return item, store.UpdateRequest{}, err
		}
		return next, updateFor(next), nil
	})
}

// AdjustEpisode moves a show's episode counter by delta, clamped to
// [0, maxEpisodes]. Pass a negative maxEpisodes when the season length is
// unknown. Rapid calls on the same item queue behind each other, so no
// two requests for one item overlap and no update is lost.
func (c *Controller) AdjustEpisode(ctx context.Context, titleID string, delta, maxEpisodes int) (models.WatchlistItem, error) {
	if !c.session.CanPersist() {
		return models.WatchlistItem{}, ErrGuestNotAllowed
	}

	return c.mutate(ctx, "episode", models.KindShow, titleID, func(item models.WatchlistItem) (models.WatchlistItem, store.UpdateRequest, error) {
		next := WithEpisodeDelta(item, delta, maxEpisodes)
		return next, updateFor(next), nil
	})
}

// RemoveItem deletes an entry. The removal is optimistic; on store
// failure the exact pre-removal item, ID and timestamps included, is
// restored.
func (c *Controller) RemoveItem(ctx context.Context, kind models.Kind, titleID string) error {
	if !c.session.CanPersist() {
		return ErrGuestNotAllowed
	}

	key := itemKey(kind, titleID)
	release := c.enqueue(key)
	defer release()

	c.mu.Lock()
	snapshot, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(c.items, key)
	c.mu.Unlock()

	opID := shortOpID()
	c.logger.Debug("watchlist remove", "op", opID, "key", key)

	if err := c.store.Delete(ctx, kind, c.session.Owner, titleID); err != nil {
		c.mu.Lock()
		c.items[key] = snapshot
		c.mu.Unlock()
		c.logger.Warn("watchlist remove rolled back", "op", opID, "key", key, "error", err)
		return classifyStoreErr(err)
	}

	return nil
}

// mutate runs one serialized optimistic update against an existing item:
// transform locally, send the update, then merge the store's row on
// success or restore the snapshot on failure.
func (c *Controller) mutate(ctx context.Context, op string, kind models.Kind, titleID string, transform func(models.WatchlistItem) (models.WatchlistItem, store.UpdateRequest, error)) (models.WatchlistItem, error) {
	key := itemKey(kind, titleID)
	release := c.enqueue(key)
	defer release()

	c.mu.Lock()
	snapshot, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return models.WatchlistItem{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	next, update, err := transform(snapshot)
	if err != nil {
		c.mu.Unlock()
		return models.WatchlistItem{}, err
	}
	c.items[key] = next
	c.mu.Unlock()

	opID := shortOpID()
	c.logger.Debug("watchlist update", "op", opID, "kind", op, "key", key)

	updated, err := c.store.Update(ctx, kind, c.session.Owner, titleID, update)
	if err != nil {
		c.mu.Lock()
		// Skip the restore if the item vanished while the call was in
		// flight; rolling back would resurrect it.
		if _, present := c.items[key]; present {
			c.items[key] = snapshot
		}
		c.mu.Unlock()
		c.logger.Warn("watchlist update rolled back", "op", opID, "kind", op, "key", key, "error", err)
		return models.WatchlistItem{}, classifyStoreErr(err)
	}

	updated.Owner = c.session.Owner
	updated.Kind = kind

	c.mu.Lock()
	if _, present := c.items[key]; present {
		c.items[key] = updated
	}
	c.mu.Unlock()

	return updated, nil
}

// enqueue claims this goroutine's turn in the item's FIFO wait-chain and
// returns the release to call once the operation has settled.
func (c *Controller) enqueue(key string) func() {
	done := make(chan struct{})

	c.qmu.Lock()
	prev := c.tails[key]
	c.tails[key] = done
	c.qmu.Unlock()

	if prev != nil {
		<-prev
	}

	return func() {
		close(done)
		c.qmu.Lock()
		if c.tails[key] == done {
			delete(c.tails, key)
		}
		c.qmu.Unlock()
	}
}

// updateFor builds the full-position update payload for an item. Status
// always travels; season/episode only for shows.
func updateFor(item models.WatchlistItem) store.UpdateRequest {
	status := item.Status
	update := store.UpdateRequest{Status: &status}
	if item.IsShow() {
		season, episode := item.CurrentSeason, item.CurrentEpisode
		update.CurrentSeason = &season
		update.CurrentEpisode = &episode
	}
	return update
}

func classifyStoreErr(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func itemKey(kind models.Kind, titleID string) string {
	return string(kind) + ":" + titleID
}

func shortOpID() string {
	return uuid.NewString()[:8]
}
