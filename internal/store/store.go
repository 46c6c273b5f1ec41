// internal/store/store.go
//
// Persistence interface for the reference backend plus the row types it
// exchanges. Two implementations live in this package:
//   - memory.go: map-based, for tests and throwaway dev servers.
//   - sqlite.go: durable, migrations embedded in the assets package.

package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown users or tokens.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned by CreateUser on a case-insensitive clash.
	ErrUsernameTaken = errors.New("username taken")
)

// Themes and languages accepted by SaveSettings.
var (
	Themes    = []string{"amber", "sapphire", "arctic"}
	Languages = []string{"en", "de"}
)

// User is a registered account.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Settings are the per-user game preferences.
type Settings struct {
	RandomWordLang string `json:"random_word_lang"`
	Theme          string `json:"theme"`
}

// DefaultSettings are assigned to new users.
func DefaultSettings() Settings { return Settings{RandomWordLang: "en", Theme: "amber"} }

// WordleStats are the per-user Wordle counters.
type WordleStats struct {
	Played    int `json:"played"`
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	WinStreak int `json:"win_streak"`
}

// Apply counts one finished round: a win extends the streak, a loss resets it.
func (s *WordleStats) Apply(won bool) {
	s.Played++
	if won {
		s.Wins++
		s.WinStreak++
		return
	}
	s.Losses++
	s.WinStreak = 0
}

// RefreshToken is an issued refresh JWT, tracked by its jti.
type RefreshToken struct {
	JTI       string
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
}

// Store defines the persistence interface.
// Implementations may be backed by memory or SQLite.
type Store interface {
	// CreateUser inserts a user with default settings and zeroed stats.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	// UserByName looks a user up case-insensitively.
	UserByName(ctx context.Context, username string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)

	Settings(ctx context.Context, userID string) (Settings, error)
	SaveSettings(ctx context.Context, userID string, s Settings) (Settings, error)

	WordleStats(ctx context.Context, userID string) (WordleStats, error)
	// RecordWordleResult applies one result atomically and returns the new counters.
	RecordWordleResult(ctx context.Context, userID string, won bool) (WordleStats, error)

	AddRefreshToken(ctx context.Context, t RefreshToken) error
	// RefreshTokenActive reports whether jti belongs to userID, is not revoked
	// and has not expired at now.
	RefreshTokenActive(ctx context.Context, jti, userID string, now time.Time) (bool, error)
	RevokeRefreshToken(ctx context.Context, jti string) error

	// AddChainWord records word for userID. It returns false when the word
	// was already used in the current chain.
	AddChainWord(ctx context.Context, userID, word string) (bool, error)
	// ChainWords lists the user's chain, newest first.
	ChainWords(ctx context.Context, userID string) ([]string, error)
	ClearChain(ctx context.Context, userID string) error

	Close() error
}
