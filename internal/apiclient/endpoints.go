// internal/apiclient/endpoints.go
//
// Typed wrappers for every backend route the games use.

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/robalobadob/vocabgames/internal/game"
)

// ChainRejected is the add-word status meaning "not accepted".
// The backend sends it as a string, not a boolean.
const ChainRejected = "False"

// User is the current account as reported by /user/me.
type User struct {
	ID       string `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// Settings are the per-user preferences.
type Settings struct {
	RandomWordLang string `json:"random_word_lang"`
	Theme          string `json:"theme"`
}

// Stats are the per-user Wordle counters.
type Stats struct {
	Played    int `json:"played"`
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	WinStreak int `json:"win_streak"`
}

// ChainVerdict is the add-word answer.
type ChainVerdict struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// Rejected reports whether the backend refused the word.
func (v ChainVerdict) Rejected() bool { return v.Status == ChainRejected }

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.doWith(ctx, http.MethodPost, "/user/register", credentials{username, password}, nil, csrfAccess, false)
}

// Login opens a session; the cookies land in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.doWith(ctx, http.MethodPost, "/user/login", credentials{username, password}, nil, csrfAccess, false)
}

// Logout revokes the refresh token and clears the session cookies.
func (c *Client) Logout(ctx context.Context) error {
	return c.doWith(ctx, http.MethodPost, "/user/logout", nil, nil, csrfRefresh, true)
}

// Me returns the current user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/user/me", nil, &u)
	return u, err
}

// Settings returns the user's preferences.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var s Settings
	err := c.do(ctx, http.MethodGet, "/user/settings", nil, &s)
	return s, err
}

// SaveSettings stores both preferences and returns what the backend kept.
func (c *Client) SaveSettings(ctx context.Context, s Settings) (Settings, error) {
	var out Settings
	err := c.do(ctx, http.MethodPut, "/user/settings", s, &out)
	return out, err
}

// SecretWord fetches a random secret of length letters in lang.
func (c *Client) SecretWord(ctx context.Context, lang string, length int) (string, error) {
	var w string
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/wordle_random_word/%s_%d", url.PathEscape(lang), length), nil, &w); err != nil {
		return "", err
	}
	w = strings.TrimSpace(w)
	if w == "" {
		return "", fmt.Errorf("apiclient: empty secret word for %s_%d", lang, length)
	}
	return w, nil
}

type checkReq struct {
	Guess  string `json:"guess"`
	Target string `json:"target"`
}

type checkRes struct {
	Status string `json:"status"`
	game.Verdict
}

// Check asks the oracle to judge guess against target.
func (c *Client) Check(ctx context.Context, guess, target string) (game.Verdict, error) {
	var res checkRes
	if err := c.do(ctx, http.MethodPost, "/wordle/check", checkReq{Guess: guess, Target: target}, &res); err != nil {
		return game.Verdict{}, err
	}
	return res.Verdict, nil
}

// Stats returns the user's Wordle counters.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.do(ctx, http.MethodGet, "/wordle/stats", nil, &s)
	return s, err
}

// ReportResult records one finished round.
func (c *Client) ReportResult(ctx context.Context, won bool) (Stats, error) {
	result := "loss"
	if won {
		result = "win"
	}
	var s Stats
	err := c.do(ctx, http.MethodPost, "/wordle/stats/result", map[string]string{"result": result}, &s)
	return s, err
}

// AddChainWord submits the player's word to the chain.
// A rejection is a normal answer (Rejected() == true), not an error.
func (c *Client) AddChainWord(ctx context.Context, word string) (ChainVerdict, error) {
	var v ChainVerdict
	err := c.do(ctx, http.MethodGet, "/word_chain/add/"+url.PathEscape(word), nil, &v)
	return v, err
}

// BotMove asks the bot to answer word. An empty reply means it concedes.
func (c *Client) BotMove(ctx context.Context, word string) (string, error) {
	var res struct {
		Word string `json:"word"`
	}
	if err := c.do(ctx, http.MethodPost, "/word_chain/bot", map[string]string{"word": word}, &res); err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Word), nil
}

// ClearChain deletes the user's chain history.
func (c *Client) ClearChain(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/word_chain/history", nil, nil)
}
