package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"cinetracks/models"
	"cinetracks/services/auth"
	"cinetracks/services/watchlist"
)

// ErrNoSession is returned when an operation needs an active session and
// none has been established yet.
var ErrNoSession = errors.New("no active session")

// Authenticator is the slice of the auth service the manager needs.
// *auth.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (models.Session, error)
	Register(ctx context.Context, username, email, password string) (models.Session, error)
	Guest(ctx context.Context) (models.Session, error)
}

// Manager holds the single active session and the watchlist controller
// bound to it. Logging in replaces both; logging out clears them.
type Manager struct {
	auth    Authenticator
	store   watchlist.Store
	seasons watchlist.SeasonSource
	logger  *slog.Logger

	mu         sync.RWMutex
	session    models.Session
	controller *watchlist.Controller
}

func NewManager(authc Authenticator, st watchlist.Store, seasons watchlist.SeasonSource, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{auth: authc, store: st, seasons: seasons, logger: logger}
}

// Login authenticates and hydrates the new session's watchlist from the
// store. A failed hydration does not fail the login; the collection stays
// empty until the next refresh.
func (m *Manager) Login(ctx context.Context, username, password string) (models.Session, error) {
	sess, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return models.Session{}, err
	}
	return m.activate(ctx, sess), nil
}

// Register creates an account and activates its session.
func (m *Manager) Register(ctx context.Context, username, email, password string) (models.Session, error) {
	sess, err := m.auth.Register(ctx, username, email, password)
	if err != nil {
		return models.Session{}, err
	}
	return m.activate(ctx, sess), nil
}

// Guest activates a guest session. When the auth service cannot be
// reached a local guest identity is minted instead, since guests never
// touch the backend anyway.
func (m *Manager) Guest(ctx context.Context) (models.Session, error) {
	sess, err := m.auth.Guest(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return models.Session{}, err
		}
		m.logger.Warn("guest login fell back to local identity", "error", err)
		sess = models.Session{Owner: "guest_" + uuid.NewString()[:8], IsGuest: true}
	}
	sess.IsGuest = true
	return m.activate(ctx, sess), nil
}

// Logout drops the active session and its collection.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.session = models.Session{}
	m.controller = nil
	m.mu.Unlock()
}

// Current returns the active session, if any.
func (m *Manager) Current() (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.session.Owner != ""
}

// Controller returns the watchlist controller for the active session.
func (m *Manager) Controller() (*watchlist.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.controller == nil {
		return nil, ErrNoSession
	}
	return m.controller, nil
}

func (m *Manager) activate(ctx context.Context, sess models.Session) models.Session {
	ctrl := watchlist.NewController(sess, m.store, m.seasons, m.logger)

	if sess.CanPersist() {
		err := retry.Do(
			func() error { return ctrl.Refresh(ctx) },
			retry.Context(ctx),
			retry.Attempts(3),
			retry.Delay(500*time.Millisecond),
			retry.RetryIf(func(err error) bool {
				return errors.Is(err, watchlist.ErrStoreUnavailable)
			}),
		)
		if err != nil {
			m.logger.Warn("watchlist hydration failed", "owner", sess.Owner, "error", err)
		}
	}

	m.mu.Lock()
	m.session = sess
	m.controller = ctrl
	m.mu.Unlock()

	m.logger.Info("session activated", "owner", sess.Owner, "guest", sess.IsGuest)
	return sess
}
