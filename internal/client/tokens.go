package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Tokens is the credential pair a client presents. Expired tokens are
// reported as empty strings.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// TokenStore persists the access/refresh pair between requests. It must be
// safe for concurrent use.
type TokenStore interface {
	Tokens() Tokens
	SetTokens(accessToken, refreshToken string) error
	Clear() error
}

type storedToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t storedToken) valueAt(now time.Time) string {
	if t.Value == "" || !now.Before(t.ExpiresAt) {
		return ""
	}
	return t.Value
}

type tokenState struct {
	AccessToken  storedToken `json:"access_token"`
	RefreshToken storedToken `json:"refresh_token"`
}

// MemoryStore keeps tokens in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	state tokenState
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	return Tokens{
		AccessToken:  s.state.AccessToken.valueAt(now),
		RefreshToken: s.state.RefreshToken.valueAt(now),
	}
}

func (s *MemoryStore) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(accessToken, refreshToken)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = tokenState{}
	return nil
}

func (s *MemoryStore) set(accessToken, refreshToken string) {
	now := s.now()
	s.state = tokenState{
		AccessToken:  storedToken{Value: accessToken, ExpiresAt: now.Add(AccessTokenTTL)},
		RefreshToken: storedToken{Value: refreshToken, ExpiresAt: now.Add(RefreshTokenTTL)},
	}
}

// FileStore is a MemoryStore mirrored to a JSON file, so a session survives
// restarts of the terminal client.
type FileStore struct {
	MemoryStore
	path string
}

// OpenFileStore loads tokens from path. A missing file yields an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		MemoryStore: MemoryStore{now: time.Now},
		path:        path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err = json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return s, nil
}

func (s *FileStore) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(accessToken, refreshToken)
	return s.save()
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = tokenState{}
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}
