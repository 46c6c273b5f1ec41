package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/vocabgames/internal/store"
	"github.com/robalobadob/vocabgames/internal/words"
)

func TestMain(m *testing.M) {
	if err := words.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// testClient is a cookie-aware client bound to one test server.
type testClient struct {
	t    *testing.T
	base *url.URL
	http *http.Client
}

func newTestServer(t *testing.T, opts Options) *testClient {
	t.Helper()
	if opts.JWTSecret == nil {
		opts.JWTSecret = []byte("test-secret")
	}
	ts := httptest.NewServer(New(store.NewMemoryStore(), opts).Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	return &testClient{t: t, base: u, http: &http.Client{Jar: jar}}
}

func (c *testClient) cookie(name string) string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// do sends a request; csrfCookie names the cookie echoed in X-CSRF-TOKEN.
func (c *testClient) do(method, path string, body any, csrfCookie string) (int, map[string]any) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base.String()+path, rd)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if csrfCookie != "" {
		req.Header.Set(csrfHeader, c.cookie(csrfCookie))
	}
	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 {
		var s any
		require.NoError(c.t, json.Unmarshal(raw, &s))
		out["value"] = s
	}
	return res.StatusCode, out
}

func (c *testClient) login(username string) {
	c.t.Helper()
	code, _ := c.do(http.MethodPost, "/user/register", credentialsReq{Username: username, Password: "password123"}, "")
	require.Equal(c.t, http.StatusCreated, code)
	code, _ = c.do(http.MethodPost, "/user/login", credentialsReq{Username: username, Password: "password123"}, "")
	require.Equal(c.t, http.StatusOK, code)
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, Options{})
	code, body := c.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
}

func TestSecretWord(t *testing.T) {
	c := newTestServer(t, Options{})
	for _, n := range []int{5, 6, 7} {
		code, body := c.do(http.MethodGet, "/wordle_random_word/de_"+strconv.Itoa(n), nil, "")
		require.Equal(t, http.StatusOK, code)
		w, ok := body["value"].(string)
		require.True(t, ok)
		assert.Equal(t, n, utf8.RuneCountInString(w))
	}

	code, _ := c.do(http.MethodGet, "/wordle_random_word/en_x", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = c.do(http.MethodGet, "/wordle_random_word/en5", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, body := c.do(http.MethodGet, "/wordle_random_word/en_42", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["detail"], "42")
}

func TestCheck(t *testing.T) {
	c := newTestServer(t, Options{})

	code, body := c.do(http.MethodPost, "/wordle/check", checkReq{Guess: "lolly", Target: "hello"}, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["is_complete"])
	tiles := body["tiles"].([]any)
	require.Len(t, tiles, 5)
	assert.Equal(t, map[string]any{"letter": "L", "status": "correct"}, tiles[2])

	code, body = c.do(http.MethodPost, "/wordle/check", checkReq{Guess: "crane", Target: "crane"}, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["is_complete"])

	code, body = c.do(http.MethodPost, "/wordle/check", checkReq{Guess: "cr4ne", Target: "crane"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Only letters are allowed.", body["detail"])

	code, body = c.do(http.MethodPost, "/wordle/check", checkReq{Guess: "", Target: ""}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Len(t, body["detail"], 2)
}

func TestAuthFlow(t *testing.T) {
	c := newTestServer(t, Options{})

	code, _ := c.do(http.MethodGet, "/user/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	c.login("alice")
	assert.NotEmpty(t, c.cookie(accessCookie))
	assert.NotEmpty(t, c.cookie(csrfAccessCookie))
	assert.NotEmpty(t, c.cookie(csrfRefreshCookie))

	code, body := c.do(http.MethodGet, "/user/me", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["user_id"])

	// Duplicate registration, any case.
	code, _ = c.do(http.MethodPost, "/user/register", credentialsReq{Username: "ALICE", Password: "password123"}, "")
	assert.Equal(t, http.StatusConflict, code)

	code, _ = c.do(http.MethodPost, "/user/login", credentialsReq{Username: "alice", Password: "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCSRFRequiredOnMutations(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("bob")

	code, body := c.do(http.MethodPost, "/wordle/stats/result", resultReq{Result: "win"}, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "CSRF token mismatch", body["detail"])

	code, _ = c.do(http.MethodPost, "/wordle/stats/result", resultReq{Result: "win"}, csrfRefreshCookie)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = c.do(http.MethodPost, "/wordle/stats/result", resultReq{Result: "win"}, csrfAccessCookie)
	assert.Equal(t, http.StatusOK, code)
}

func TestRefreshRotatesToken(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("carol")

	oldRefresh := c.cookie(refreshCookie)
	oldCSRF := c.cookie(csrfRefreshCookie)

	code, _ := c.do(http.MethodPost, "/user/refresh", nil, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = c.do(http.MethodPost, "/user/refresh", nil, csrfRefreshCookie)
	require.Equal(t, http.StatusOK, code)
	assert.NotEqual(t, oldRefresh, c.cookie(refreshCookie))

	// Replaying the rotated refresh token fails.
	req, err := http.NewRequest(http.MethodPost, c.base.String()+"/user/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: refreshCookie, Value: oldRefresh})
	req.AddCookie(&http.Cookie{Name: csrfRefreshCookie, Value: oldCSRF})
	req.Header.Set(csrfHeader, oldCSRF)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	code, _ = c.do(http.MethodGet, "/user/me", nil, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestExpiredAccessToken(t *testing.T) {
	var offset atomic.Int64
	clock := func() time.Time { return time.Now().Add(time.Duration(offset.Load())) }
	c := newTestServer(t, Options{Now: clock, AccessTTL: time.Minute})
	c.login("dave")

	offset.Store(int64(2 * time.Minute))
	code, _ := c.do(http.MethodGet, "/user/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = c.do(http.MethodPost, "/user/refresh", nil, csrfRefreshCookie)
	require.Equal(t, http.StatusOK, code)
}

func TestLogout(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("erin")

	code, _ := c.do(http.MethodPost, "/user/logout", nil, csrfRefreshCookie)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, c.cookie(accessCookie))
	assert.Empty(t, c.cookie(refreshCookie))

	code, _ = c.do(http.MethodGet, "/user/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSettings(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("frank")

	code, body := c.do(http.MethodGet, "/user/settings", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "en", body["random_word_lang"])
	assert.Equal(t, "amber", body["theme"])

	code, body = c.do(http.MethodPut, "/user/settings", store.Settings{RandomWordLang: "fr", Theme: "neon"}, csrfAccessCookie)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Len(t, body["detail"], 2)

	code, body = c.do(http.MethodPut, "/user/settings", store.Settings{RandomWordLang: "de", Theme: "arctic"}, csrfAccessCookie)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "de", body["random_word_lang"])
	assert.Equal(t, "arctic", body["theme"])
}

func TestStats(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("grace")

	for _, r := range []string{"win", "win", "loss", "win"} {
		code, _ := c.do(http.MethodPost, "/wordle/stats/result", resultReq{Result: r}, csrfAccessCookie)
		require.Equal(t, http.StatusOK, code)
	}
	code, body := c.do(http.MethodGet, "/wordle/stats", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 4, body["played"])
	assert.EqualValues(t, 3, body["wins"])
	assert.EqualValues(t, 1, body["losses"])
	assert.EqualValues(t, 1, body["win_streak"])

	code, _ = c.do(http.MethodPost, "/wordle/stats/result", resultReq{Result: "draw"}, csrfAccessCookie)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestWordChain(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("heidi")

	code, body := c.do(http.MethodGet, "/word_chain/add/qqqzz", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, chainRejected, body["status"])
	assert.Equal(t, "Word not found in dictionary.", body["comment"])

	code, body = c.do(http.MethodGet, "/word_chain/add/crane", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, chainAccepted, body["status"])

	code, body = c.do(http.MethodGet, "/word_chain/add/apple", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, chainRejected, body["status"])
	assert.Equal(t, "Word must start with 'e'.", body["comment"])

	code, body = c.do(http.MethodPost, "/word_chain/bot", botReq{Word: "crane"}, csrfAccessCookie)
	require.Equal(t, http.StatusOK, code)
	bot, _ := body["word"].(string)
	require.NotEmpty(t, bot)
	assert.True(t, strings.HasPrefix(bot, "e"))
	assert.NotEqual(t, "crane", bot)

	// The bot's word is now part of the chain.
	code, body = c.do(http.MethodGet, "/word_chain/add/"+bot, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, chainRejected, body["status"])

	code, _ = c.do(http.MethodDelete, "/word_chain/history", nil, csrfAccessCookie)
	require.Equal(t, http.StatusOK, code)

	code, body = c.do(http.MethodGet, "/word_chain/add/crane", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, chainAccepted, body["status"])
}

func TestWordChainRequiresSession(t *testing.T) {
	c := newTestServer(t, Options{})
	code, body := c.do(http.MethodGet, "/word_chain/add/crane", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, body["detail"])
}

func TestRateLimit(t *testing.T) {
	c := newTestServer(t, Options{RateLimitRPS: 1, RateLimitBurst: 2})
	var codes []int
	for i := 0; i < 4; i++ {
		code, _ := c.do(http.MethodGet, "/health", nil, "")
		codes = append(codes, code)
	}
	assert.Contains(t, codes, http.StatusTooManyRequests)
	assert.Equal(t, http.StatusOK, codes[0])
}

func TestValidateSignup(t *testing.T) {
	assert.NoError(t, validateSignup("user_1", "password1"))
	assert.Error(t, validateSignup("ab", "password1"))
	assert.Error(t, validateSignup("bad name", "password1"))
	assert.Error(t, validateSignup("user_1", "short"))
}
