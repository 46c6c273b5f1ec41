// internal/session/session.go
//
// Session is the one place the front end keeps "who is playing and how":
// the current user, the secret-word language and the colour theme.
// Controllers and commands receive it explicitly instead of reading globals.
//
// Notes:
//   - Reads go through accessor methods guarded by an RWMutex.
//   - Preference changes are saved remotely when a user is logged in and
//     kept locally otherwise.

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/robalobadob/vocabgames/internal/apiclient"
)

// Supported preference values.
var (
	Languages = []string{"en", "de"}
	Themes    = []string{"amber", "sapphire", "arctic"}
)

// ErrUnsupported is returned for a language or theme outside the lists above.
var ErrUnsupported = errors.New("session: unsupported value")

// Backend is the subset of the API client a session needs.
type Backend interface {
	Me(ctx context.Context) (apiclient.User, error)
	Settings(ctx context.Context) (apiclient.Settings, error)
	SaveSettings(ctx context.Context, s apiclient.Settings) (apiclient.Settings, error)
}

// Session holds the current user and preferences.
type Session struct {
	api Backend
	log zerolog.Logger

	mu       sync.RWMutex
	user     *apiclient.User
	settings apiclient.Settings
}

// New returns an anonymous session with the given defaults.
// Unsupported defaults fall back to "en" / "amber".
func New(api Backend, defaults apiclient.Settings, log zerolog.Logger) *Session {
	if !lo.Contains(Languages, defaults.RandomWordLang) {
		defaults.RandomWordLang = Languages[0]
	}
	if !lo.Contains(Themes, defaults.Theme) {
		defaults.Theme = Themes[0]
	}
	return &Session{api: api, log: log, settings: defaults}
}

// Bootstrap asks the backend who is logged in and loads their settings.
// A 401 leaves the session anonymous and is not an error.
func (s *Session) Bootstrap(ctx context.Context) error {
	u, err := s.api.Me(ctx)
	if apiclient.IsUnauthorized(err) {
		s.Clear()
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: current user: %w", err)
	}
	st, err := s.api.Settings(ctx)
	if err != nil {
		return fmt.Errorf("session: settings: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	if lo.Contains(Languages, st.RandomWordLang) {
		s.settings.RandomWordLang = st.RandomWordLang
	}
	if lo.Contains(Themes, st.Theme) {
		s.settings.Theme = st.Theme
	}
	s.mu.Unlock()

	s.log.Debug().Str("user", u.ID).Str("lang", st.RandomWordLang).Msg("session ready")
	return nil
}

// Clear forgets the user (after logout). Preferences stay.
func (s *Session) Clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// User returns the current user and whether one is logged in.
func (s *Session) User() (apiclient.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return apiclient.User{}, false
	}
	return *s.user, true
}

// LoggedIn reports whether a user is attached.
func (s *Session) LoggedIn() bool {
	_, ok := s.User()
	return ok
}

// Language is the secret-word language.
func (s *Session) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.RandomWordLang
}

// Theme is the colour theme.
func (s *Session) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Theme
}

// Settings returns a copy of both preferences.
func (s *Session) Settings() apiclient.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetLanguage changes the secret-word language.
func (s *Session) SetLanguage(ctx context.Context, lang string) error {
	if !lo.Contains(Languages, lang) {
		return fmt.Errorf("%w: language %q", ErrUnsupported, lang)
	}
	next := s.Settings()
	next.RandomWordLang = lang
	return s.apply(ctx, next)
}

// SetTheme changes the colour theme.
func (s *Session) SetTheme(ctx context.Context, theme string) error {
	if !lo.Contains(Themes, theme) {
		return fmt.Errorf("%w: theme %q", ErrUnsupported, theme)
	}
	next := s.Settings()
	next.Theme = theme
	return s.apply(ctx, next)
}

// apply stores next remotely when logged in, then locally.
// On a remote failure nothing changes.
func (s *Session) apply(ctx context.Context, next apiclient.Settings) error {
	if s.LoggedIn() {
		saved, err := s.api.SaveSettings(ctx, next)
		if err != nil {
			return fmt.Errorf("session: save settings: %w", err)
		}
		next = saved
	}
	s.mu.Lock()
	s.settings = next
	s.mu.Unlock()
	return nil
}
