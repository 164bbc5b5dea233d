// ABOUTME: Session Store: the single writer of authentication state
// ABOUTME: Persists every change to the durable slot before returning

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrEmptyToken is returned by Login when no token is given
var ErrEmptyToken = errors.New("token is required")

// Session is the client-held identity and credential
type Session struct {
	FullName   string `json:"fullName,omitempty"`
	Email      string `json:"email,omitempty"`
	Token      string `json:"token,omitempty"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

// envelope is the persisted layout of the slot
type envelope struct {
	State   Session `json:"state"`
	Version int     `json:"version"`
}

// Store holds the current session. Only Login, Logout and ExpireToken mutate
// it; every mutation rewrites the slot while the lock is held, so readers
// never observe a state that is not yet persisted.
type Store struct {
	mu       sync.RWMutex
	slot     Slot
	state    Session
	hydrated bool
}

// NewStore creates an empty, not yet hydrated store
func NewStore(slot Slot) *Store {
	return &Store{slot: slot}
}

// Rehydrate loads the persisted session. A missing slot yields an empty
// session; a corrupt one is logged, cleared and treated as empty.
func (s *Store) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.slot.Load(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		s.state = Session{}
		s.hydrated = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("Discarding unreadable session", "error", err)
		s.state = Session{}
		s.hydrated = true
		return s.slot.Clear(ctx)
	}

	state := env.State
	// Enforce the invariant on whatever was stored
	state.IsLoggedIn = state.Token != ""
	if !state.IsLoggedIn {
		state = Session{}
	}

	s.state = state
	s.hydrated = true
	slog.Debug("Session rehydrated", "logged_in", state.IsLoggedIn)
	return nil
}

// Hydrated reports whether Rehydrate has completed
func (s *Store) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Login records a successful login or signup. The token is trusted as-is.
func (s *Store) Login(ctx context.Context, fullName, email, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := Session{
		FullName:   fullName,
		Email:      email,
		Token:      token,
		IsLoggedIn: true,
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.state = next
	s.hydrated = true
	return nil
}

// Logout clears the session and the slot. Calling it twice is harmless.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

// ExpireToken clears the session only if token is still the current token.
// It reports whether this call dropped the session, which lets concurrent
// observers of the same 401 agree on a single forced logout. The result is
// true even when the slot could not be cleared; the error reports that.
func (s *Store) ExpireToken(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" || s.state.Token != token {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the current bearer token, or "" when logged out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// IsLoggedIn reports whether a token is held
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoggedIn
}

func (s *Store) clearLocked(ctx context.Context) error {
	// In-memory state is cleared even if the slot cannot be; a stale slot is
	// reported to the caller but must never keep the user logged in here.
	s.state = Session{}
	if err := s.slot.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, state Session) error {
	data, err := json.Marshal(envelope{State: state})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
