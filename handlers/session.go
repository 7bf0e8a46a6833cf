package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cinetracks/models"
	"cinetracks/services/auth"
	"cinetracks/services/session"
)

type sessionManager interface {
	Login(ctx context.Context, username, password string) (models.Session, error)
	Register(ctx context.Context, username, email, password string) (models.Session, error)
	Guest(ctx context.Context) (models.Session, error)
	Logout()
	Current() (models.Session, bool)
}

var _ sessionManager = (*session.Manager)(nil)

// SessionHandler manages the login/guest/logout lifecycle.
type SessionHandler struct {
	Sessions sessionManager
}

func NewSessionHandler(sessions sessionManager) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	sess, err := h.Sessions.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess)
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	sess, err := h.Sessions.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sess)
}

func (h *SessionHandler) Guest(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Guest(r.Context())
	if err != nil {
		writeAuthError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Current returns the active session identity, 401 when none exists.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Sessions.Current()
	if !ok {
		http.Error(w, "no active session", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess)
}

func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrUnavailable):
		status = http.StatusBadGateway
	}
	http.Error(w, err.Error(), status)
}
