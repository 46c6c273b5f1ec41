// internal/store/sqlite.go
//
// SQLite implementation of the Store interface.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).
//   - Users, settings, Wordle counters, refresh tokens and chain history.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/vocabgames/assets"
)

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at dsn and migrates it.
// dsn ":memory:" gives a private in-memory database.
func OpenSQLite(dsn string) (Store, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// openDB ensures the parent directory exists, then configures busy timeout,
// WAL journaling and foreign keys.
func openDB(dsn string) (*sql.DB, error) {
	memory := dsn == ":memory:"
	if !memory {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if memory {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies *.sql files from fsys in lexical order, each inside its own
// transaction, skipping files already recorded in _migrations.
func migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/* ------------------------------- users ---------------------------------- */

func (s *sqliteStore) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	d := DefaultSettings()
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at, random_word_lang, theme)
		 VALUES (?,?,?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339), d.RandomWordLang, d.Theme)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *sqliteStore) UserByName(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at
	                                  FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

func (s *sqliteStore) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at
	                                  FROM users WHERE id=?`, id)
	return scanUser(row)
}

// scanUser converts a *sql.Row into a User.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

/* ------------------------------ settings -------------------------------- */

func (s *sqliteStore) Settings(ctx context.Context, userID string) (Settings, error) {
	var out Settings
	err := s.db.QueryRowContext(ctx, `SELECT random_word_lang, theme FROM users WHERE id=?`, userID).
		Scan(&out.RandomWordLang, &out.Theme)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	return out, err
}

func (s *sqliteStore) SaveSettings(ctx context.Context, userID string, in Settings) (Settings, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET random_word_lang=?, theme=? WHERE id=?`,
		in.RandomWordLang, in.Theme, userID)
	if err != nil {
		return Settings{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Settings{}, ErrNotFound
	}
	return in, nil
}

/* ------------------------------- stats ---------------------------------- */

func (s *sqliteStore) WordleStats(ctx context.Context, userID string) (WordleStats, error) {
	return s.statsQ(ctx, s.db, userID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqliteStore) statsQ(ctx context.Context, q queryRower, userID string) (WordleStats, error) {
	var st WordleStats
	err := q.QueryRowContext(ctx, `SELECT played, wins, losses, win_streak FROM users WHERE id=?`, userID).
		Scan(&st.Played, &st.Wins, &st.Losses, &st.WinStreak)
	if errors.Is(err, sql.ErrNoRows) {
		return WordleStats{}, ErrNotFound
	}
	return st, err
}

// RecordWordleResult reads, applies and writes the counters in one transaction.
func (s *sqliteStore) RecordWordleResult(ctx context.Context, userID string, won bool) (WordleStats, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return WordleStats{}, err
	}
	defer func() { _ = tx.Rollback() }()

	st, err := s.statsQ(ctx, tx, userID)
	if err != nil {
		return WordleStats{}, err
	}
	st.Apply(won)
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET played=?, wins=?, losses=?, win_streak=? WHERE id=?`,
		st.Played, st.Wins, st.Losses, st.WinStreak, userID); err != nil {
		return WordleStats{}, err
	}
	if err := tx.Commit(); err != nil {
		return WordleStats{}, err
	}
	return st, nil
}

/* --------------------------- refresh tokens ----------------------------- */

func (s *sqliteStore) AddRefreshToken(ctx context.Context, t RefreshToken) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (jti, user_id, expires_at, revoked) VALUES (?,?,?,0)`,
		t.JTI, t.UserID, t.ExpiresAt.UTC().Format(time.RFC3339))
	return err
}

func (s *sqliteStore) RefreshTokenActive(ctx context.Context, jti, userID string, now time.Time) (bool, error) {
	var owner, expires string
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT user_id, expires_at, revoked FROM refresh_tokens WHERE jti=?`, jti).
		Scan(&owner, &expires, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	exp, err := time.Parse(time.RFC3339, expires)
	if err != nil {
		return false, fmt.Errorf("parse expires_at: %w", err)
	}
	return owner == userID && !revoked && now.Before(exp), nil
}

func (s *sqliteStore) RevokeRefreshToken(ctx context.Context, jti string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked=1 WHERE jti=?`, jti)
	return err
}

/* ---------------------------- chain history ----------------------------- */

func (s *sqliteStore) AddChainWord(ctx context.Context, userID, word string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO word_chain (user_id, used_word) VALUES (?, ?)`, userID, word)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *sqliteStore) ChainWords(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT used_word FROM word_chain WHERE user_id=? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ClearChain(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM word_chain WHERE user_id=?`, userID)
	return err
}

func (s *sqliteStore) Close() error { return s.db.Close() }
