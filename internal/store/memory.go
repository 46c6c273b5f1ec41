// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used in tests and when no DB_PATH is configured.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type memUser struct {
	user     User
	settings Settings
	stats    WordleStats
	chain    []string // oldest first
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex
	users  map[string]*memUser // keyed by User.ID
	names  map[string]string   // lower(username) → ID
	tokens map[string]RefreshToken
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		users:  make(map[string]*memUser),
		names:  make(map[string]string),
		tokens: make(map[string]RefreshToken),
	}
}

func (m *memory) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(username)
	if _, ok := m.names[key]; ok {
		return nil, ErrUsernameTaken
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	m.users[u.ID] = &memUser{user: u, settings: DefaultSettings()}
	m.names[key] = u.ID
	return &u, nil
}

func (m *memory) UserByName(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.names[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id].user
	return &u, nil
}

func (m *memory) UserByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mu, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := mu.user
	return &u, nil
}

func (m *memory) Settings(ctx context.Context, userID string) (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mu, ok := m.users[userID]
	if !ok {
		return Settings{}, ErrNotFound
	}
	return mu.settings, nil
}

func (m *memory) SaveSettings(ctx context.Context, userID string, s Settings) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mu, ok := m.users[userID]
	if !ok {
		return Settings{}, ErrNotFound
	}
	mu.settings = s
	return s, nil
}

func (m *memory) WordleStats(ctx context.Context, userID string) (WordleStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mu, ok := m.users[userID]
	if !ok {
		return WordleStats{}, ErrNotFound
	}
	return mu.stats, nil
}

func (m *memory) RecordWordleResult(ctx context.Context, userID string, won bool) (WordleStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mu, ok := m.users[userID]
	if !ok {
		return WordleStats{}, ErrNotFound
	}
	mu.stats.Apply(won)
	return mu.stats, nil
}

func (m *memory) AddRefreshToken(ctx context.Context, t RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.JTI] = t
	return nil
}

func (m *memory) RefreshTokenActive(ctx context.Context, jti, userID string, now time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[jti]
	if !ok {
		return false, nil
	}
	return t.UserID == userID && !t.Revoked && now.Before(t.ExpiresAt), nil
}

func (m *memory) RevokeRefreshToken(ctx context.Context, jti string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[jti]; ok {
		t.Revoked = true
		m.tokens[jti] = t
	}
	return nil
}

func (m *memory) AddChainWord(ctx context.Context, userID, word string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mu, ok := m.users[userID]
	if !ok {
		return false, ErrNotFound
	}
	if lo.Contains(mu.chain, word) {
		return false, nil
	}
	mu.chain = append(mu.chain, word)
	return true, nil
}

func (m *memory) ChainWords(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mu, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return lo.Reverse(append([]string(nil), mu.chain...)), nil
}

func (m *memory) ClearChain(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mu, ok := m.users[userID]; ok {
		mu.chain = nil
	}
	return nil
}

func (m *memory) Close() error { return nil }
