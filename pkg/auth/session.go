// Package auth holds OAuth credentials and drives the interactive authorization flow.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/harrisonrobin/dayplan/pkg/storage"
)

const (
	KeyAccessToken  = "google_access_token"
	KeyRefreshToken = "google_refresh_token"
)

// Session is the credential holder of the calendar integration. The in-memory
// access token is authoritative; the persisted copy survives restarts.
type Session struct {
	store          storage.Store
	persistRefresh bool

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewSession creates an empty session backed by store. When persistRefresh is
// false the refresh token is only kept in memory.
func NewSession(store storage.Store, persistRefresh bool) *Session {
	return &Session{store: store, persistRefresh: persistRefresh}
}

// AccessToken returns the in-memory token, promoting the persisted one when memory is empty.
// It returns "" when no token is available.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessToken != "" {
		return s.accessToken, nil
	}

	access, err := s.load(ctx, KeyAccessToken)
	if err != nil || access == "" {
		return "", err
	}
	s.accessToken = access
	if s.refreshToken == "" && s.persistRefresh {
		refresh, err := s.load(ctx, KeyRefreshToken)
		if err != nil {
			return access, err
		}
		s.refreshToken = refresh
	}
	return s.accessToken, nil
}

// RefreshToken returns the refresh token, loading the persisted one when memory is empty.
func (s *Session) RefreshToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshToken != "" || !s.persistRefresh {
		return s.refreshToken, nil
	}
	refresh, err := s.load(ctx, KeyRefreshToken)
	if err != nil {
		return "", err
	}
	s.refreshToken = refresh
	return refresh, nil
}

// Set stores a fresh token pair. An empty refresh token keeps the current one.
func (s *Session) Set(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	if refresh != "" {
		s.refreshToken = refresh
	}

	if err := s.store.Set(ctx, KeyAccessToken, []byte(access)); err != nil {
		return err
	}
	if refresh != "" && s.persistRefresh {
		return s.store.Set(ctx, KeyRefreshToken, []byte(refresh))
	}
	return nil
}

// Clear forgets both tokens. Memory is always cleared, even if the store fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""

	return errors.Join(
		s.store.Delete(ctx, KeyAccessToken),
		s.store.Delete(ctx, KeyRefreshToken),
	)
}

func (s *Session) load(ctx context.Context, key string) (string, error) {
	b, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(b), nil
}
