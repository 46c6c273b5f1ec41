package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/vocabgames/internal/apiclient"
)

type fakeBackend struct {
	user     *apiclient.User
	settings apiclient.Settings
	meErr    error
	saveErr  error
	saves    int
}

func (f *fakeBackend) Me(context.Context) (apiclient.User, error) {
	if f.meErr != nil {
		return apiclient.User{}, f.meErr
	}
	if f.user == nil {
		return apiclient.User{}, &apiclient.Error{Status: http.StatusUnauthorized, Message: "Missing access token"}
	}
	return *f.user, nil
}

func (f *fakeBackend) Settings(context.Context) (apiclient.Settings, error) {
	return f.settings, nil
}

func (f *fakeBackend) SaveSettings(_ context.Context, s apiclient.Settings) (apiclient.Settings, error) {
	f.saves++
	if f.saveErr != nil {
		return apiclient.Settings{}, f.saveErr
	}
	f.settings = s
	return s, nil
}

func TestNewFallsBackToSupportedDefaults(t *testing.T) {
	s := New(&fakeBackend{}, apiclient.Settings{RandomWordLang: "fr", Theme: "neon"}, zerolog.Nop())
	assert.Equal(t, "en", s.Language())
	assert.Equal(t, "amber", s.Theme())
	assert.False(t, s.LoggedIn())
}

func TestBootstrapAnonymous(t *testing.T) {
	s := New(&fakeBackend{}, apiclient.Settings{RandomWordLang: "de"}, zerolog.Nop())
	require.NoError(t, s.Bootstrap(context.Background()))
	assert.False(t, s.LoggedIn())
	assert.Equal(t, "de", s.Language())
}

func TestBootstrapLoggedIn(t *testing.T) {
	be := &fakeBackend{
		user:     &apiclient.User{ID: "u1", Username: "ann"},
		settings: apiclient.Settings{RandomWordLang: "de", Theme: "arctic"},
	}
	s := New(be, apiclient.Settings{}, zerolog.Nop())
	require.NoError(t, s.Bootstrap(context.Background()))

	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "de", s.Language())
	assert.Equal(t, "arctic", s.Theme())

	s.Clear()
	assert.False(t, s.LoggedIn())
	assert.Equal(t, "de", s.Language())
}

func TestBootstrapNetworkError(t *testing.T) {
	boom := errors.New("connection refused")
	s := New(&fakeBackend{meErr: boom}, apiclient.Settings{}, zerolog.Nop())
	err := s.Bootstrap(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSetLanguageLocalWhenAnonymous(t *testing.T) {
	be := &fakeBackend{}
	s := New(be, apiclient.Settings{}, zerolog.Nop())

	require.NoError(t, s.SetLanguage(context.Background(), "de"))
	assert.Equal(t, "de", s.Language())
	assert.Zero(t, be.saves)

	err := s.SetLanguage(context.Background(), "fr")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, "de", s.Language())
}

func TestSetThemeSavesRemotely(t *testing.T) {
	be := &fakeBackend{user: &apiclient.User{ID: "u1"}, settings: apiclient.Settings{RandomWordLang: "en", Theme: "amber"}}
	s := New(be, apiclient.Settings{}, zerolog.Nop())
	require.NoError(t, s.Bootstrap(context.Background()))

	require.NoError(t, s.SetTheme(context.Background(), "sapphire"))
	assert.Equal(t, "sapphire", s.Theme())
	assert.Equal(t, 1, be.saves)
	assert.Equal(t, "sapphire", be.settings.Theme)

	be.saveErr = errors.New("offline")
	err := s.SetTheme(context.Background(), "arctic")
	assert.Error(t, err)
	assert.Equal(t, "sapphire", s.Theme())
}
