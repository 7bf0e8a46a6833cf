package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cinetracks/models"
	"cinetracks/services/auth"
	"cinetracks/services/store"
)

type fakeAuth struct {
	loginErr error
	guestErr error
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (models.Session, error) {
	if f.loginErr != nil {
		return models.Session{}, f.loginErr
	}
	return models.Session{Owner: username}, nil
}

func (f *fakeAuth) Register(ctx context.Context, username, email, password string) (models.Session, error) {
	return models.Session{Owner: username, Email: email}, nil
}

func (f *fakeAuth) Guest(ctx context.Context) (models.Session, error) {
	if f.guestErr != nil {
		return models.Session{}, f.guestErr
	}
	return models.Session{Owner: "guest_1a2b3c4d", IsGuest: true}, nil
}

// listStore serves canned rows and can fail the first N list calls to
// exercise the hydration retry.
type listStore struct {
	mu        sync.Mutex
	rows      []models.WatchlistItem
	failFirst int
	listCalls int
}

func (s *listStore) List(ctx context.Context, kind models.Kind, username string) ([]models.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.failFirst > 0 {
		s.failFirst--
		return nil, store.ErrUnavailable
	}
	var out []models.WatchlistItem
	for _, row := range s.rows {
		if row.Kind == kind {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *listStore) Create(ctx context.Context, item models.WatchlistItem) (models.WatchlistItem, error) {
	return item, nil
}

func (s *listStore) Update(ctx context.Context, kind models.Kind, username, titleID string, update store.UpdateRequest) (models.WatchlistItem, error) {
	return models.WatchlistItem{}, store.ErrUnavailable
}

func (s *listStore) Delete(ctx context.Context, kind models.Kind, username, titleID string) error {
	return nil
}

func TestLoginHydratesWatchlist(t *testing.T) {
	st := &listStore{rows: []models.WatchlistItem{
		{ID: 1, Owner: "alice", TitleID: "m-1", Kind: models.KindMovie, Status: models.StatusCompleted},
	}}
	m := NewManager(&fakeAuth{}, st, nil, nil)

	sess, err := m.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.Owner != "alice" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	ctrl, err := m.Controller()
	if err != nil {
		t.Fatalf("controller missing after login: %v", err)
	}
	if len(ctrl.Items()) != 1 {
		t.Fatalf("expected hydrated collection, got %d items", len(ctrl.Items()))
	}
}

func TestLoginRetriesHydration(t *testing.T) {
	st := &listStore{failFirst: 2, rows: []models.WatchlistItem{
		{ID: 1, Owner: "alice", TitleID: "m-1", Kind: models.KindMovie, Status: models.StatusCompleted},
	}}
	m := NewManager(&fakeAuth{}, st, nil, nil)

	if _, err := m.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	ctrl, err := m.Controller()
	if err != nil {
		t.Fatalf("controller missing: %v", err)
	}
	if len(ctrl.Items()) != 1 {
		t.Fatalf("expected hydration to succeed after retries, got %d items", len(ctrl.Items()))
	}
}

func TestLoginFailurePropagates(t *testing.T) {
	m := NewManager(&fakeAuth{loginErr: auth.ErrInvalidCredentials}, &listStore{}, nil, nil)

	if _, err := m.Login(context.Background(), "alice", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := m.Controller(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("failed login must not activate a session")
	}
}

func TestGuestFallsBackToLocalIdentity(t *testing.T) {
	m := NewManager(&fakeAuth{guestErr: auth.ErrUnavailable}, &listStore{}, nil, nil)

	sess, err := m.Guest(context.Background())
	if err != nil {
		t.Fatalf("guest activation failed: %v", err)
	}
	if !sess.IsGuest {
		t.Fatalf("expected guest session, got %+v", sess)
	}
	if !strings.HasPrefix(sess.Owner, "guest_") {
		t.Fatalf("expected generated guest identity, got %q", sess.Owner)
	}

	ctrl, err := m.Controller()
	if err != nil {
		t.Fatalf("guest session needs a controller too: %v", err)
	}
	if err := ctrl.RemoveItem(context.Background(), models.KindMovie, "m-1"); err == nil {
		t.Fatalf("guest controller must refuse mutations")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	st := &listStore{}
	m := NewManager(&fakeAuth{}, st, nil, nil)

	if _, err := m.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	m.Logout()

	if _, ok := m.Current(); ok {
		t.Fatalf("session still present after logout")
	}
	if _, err := m.Controller(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("controller still present after logout")
	}
}
