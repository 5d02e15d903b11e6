package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/harrisonrobin/dayplan/pkg/storage"
)

func TestSessionPromotesPersistedTokens(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	if err := store.Set(ctx, KeyAccessToken, []byte("access-1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, KeyRefreshToken, []byte("refresh-1")); err != nil {
		t.Fatal(err)
	}

	s := NewSession(store, true)
	access, err := s.AccessToken(ctx)
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if access != "access-1" {
		t.Errorf("AccessToken() = %q, want access-1", access)
	}
	refresh, err := s.RefreshToken(ctx)
	if err != nil || refresh != "refresh-1" {
		t.Errorf("RefreshToken() = %q, %v, want refresh-1", refresh, err)
	}
}

func TestSessionEmptyStore(t *testing.T) {
	s := NewSession(storage.NewMemory(), true)
	access, err := s.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if access != "" {
		t.Errorf("AccessToken() = %q, want empty", access)
	}
}

func TestSessionSetKeepsRefreshWhenEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	s := NewSession(store, true)

	if err := s.Set(ctx, "a1", "r1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "a2", ""); err != nil {
		t.Fatal(err)
	}

	if refresh, _ := s.RefreshToken(ctx); refresh != "r1" {
		t.Errorf("RefreshToken() = %q, want r1", refresh)
	}
	b, err := store.Get(ctx, KeyAccessToken)
	if err != nil || string(b) != "a2" {
		t.Errorf("persisted access token = %q, %v, want a2", b, err)
	}
}

func TestSessionWithoutRefreshPersistence(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	s := NewSession(store, false)

	if err := s.Set(ctx, "a1", "r1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, KeyRefreshToken); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("refresh token persisted, Get() error = %v", err)
	}

	restarted := NewSession(store, false)
	if refresh, _ := restarted.RefreshToken(ctx); refresh != "" {
		t.Errorf("RefreshToken() after restart = %q, want empty", refresh)
	}
}

func TestSessionClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	s := NewSession(store, true)
	if err := s.Set(ctx, "a1", "r1"); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if access, _ := s.AccessToken(ctx); access != "" {
		t.Errorf("AccessToken() after Clear = %q", access)
	}
	if refresh, _ := s.RefreshToken(ctx); refresh != "" {
		t.Errorf("RefreshToken() after Clear = %q", refresh)
	}
	for _, key := range []string{KeyAccessToken, KeyRefreshToken} {
		if _, err := store.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("%s still persisted: %v", key, err)
		}
	}
}
