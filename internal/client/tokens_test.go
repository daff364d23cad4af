package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryStoreExpiresTokens(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	if err := s.SetTokens("access", "refresh"); err != nil {
		t.Fatalf("set tokens: %v", err)
	}

	now = now.Add(AccessTokenTTL)
	got := s.Tokens()
	if got.AccessToken != "" || got.RefreshToken != "refresh" {
		t.Fatalf("expected only access token expired, got %+v", got)
	}

	now = now.Add(RefreshTokenTTL)
	if got = s.Tokens(); got.RefreshToken != "" {
		t.Fatalf("expected refresh token expired, got %+v", got)
	}
}

func TestFileStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")

	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("open empty store: %v", err)
	}
	if got := s.Tokens(); got.AccessToken != "" || got.RefreshToken != "" {
		t.Fatalf("expected empty store, got %+v", got)
	}
	if err = s.SetTokens("access", "refresh"); err != nil {
		t.Fatalf("set tokens: %v", err)
	}

	reopened, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if got := reopened.Tokens(); got.AccessToken != "access" || got.RefreshToken != "refresh" {
		t.Fatalf("tokens not persisted: %+v", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 token file, got %o", perm)
	}

	if err = reopened.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err = os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected token file removed, got %v", err)
	}
	if err = reopened.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestOpenFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := OpenFileStore(path); err == nil {
		t.Fatal("expected decode error")
	}
}
