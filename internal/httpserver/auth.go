// internal/httpserver/auth.go
//
// Cookie-based JWT sessions for the reference backend.
//   - Login sets access_token_cookie / refresh_token_cookie (HttpOnly) and the
//     readable csrf_access_token / csrf_refresh_token cookies.
//   - Mutating requests must echo the matching CSRF cookie in X-CSRF-TOKEN
//     (double submit); the value is also bound into the JWT.
//   - Refresh tokens are single use: /user/refresh revokes the presented jti
//     and issues a new pair.

package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/vocabgames/internal/store"
)

const (
	accessCookie      = "access_token_cookie"
	refreshCookie     = "refresh_token_cookie"
	csrfAccessCookie  = "csrf_access_token"
	csrfRefreshCookie = "csrf_refresh_token"
	csrfHeader        = "X-CSRF-TOKEN"

	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// tokenClaims are the JWT claims for both token kinds.
type tokenClaims struct {
	Type string `json:"type"`
	CSRF string `json:"csrf"`
	jwt.RegisteredClaims
}

// ctxUserKey is the context key type for the authenticated user id.
type ctxUserKey struct{}

// ctxClaimsKey carries the verified refresh claims to refresh/logout.
type ctxClaimsKey struct{}

func userID(ctx context.Context) string {
	id, _ := ctx.Value(ctxUserKey{}).(string)
	return id
}

// ------------------------------- routes ------------------------------------

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if !decodeBody(w, r, &body) {
		return
	}
	username := normalizeUsername(body.Username)
	if err := validateSignup(username, body.Password); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	h, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "hash_failed")
		return
	}
	u, err := s.store.CreateUser(r.Context(), username, string(h))
	if errors.Is(err, store.ErrUsernameTaken) {
		writeDetail(w, http.StatusConflict, "Username taken")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("create user")
		writeDetail(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": u.ID, "username": u.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if !decodeBody(w, r, &body) {
		return
	}
	u, err := s.store.UserByName(r.Context(), normalizeUsername(body.Username))
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(body.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err := s.issueTokens(r.Context(), w, u.ID); err != nil {
		log.Error().Err(err).Str("user", u.ID).Msg("issue tokens")
		writeDetail(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.UserByID(r.Context(), userID(r.Context()))
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "User no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": u.ID, "username": u.Username})
}

// handleRefresh rotates the refresh token and issues a new access token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	claims, _ := r.Context().Value(ctxClaimsKey{}).(*tokenClaims)
	if claims == nil || claims.ID == "" {
		writeDetail(w, http.StatusBadRequest, "Token missing identifier")
		return
	}
	active, err := s.store.RefreshTokenActive(r.Context(), claims.ID, claims.Subject, s.opts.Now())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !active {
		writeDetail(w, http.StatusUnauthorized, "Refresh token revoked or expired")
		return
	}
	if err := s.store.RevokeRefreshToken(r.Context(), claims.ID); err != nil {
		log.Warn().Err(err).Str("jti", claims.ID).Msg("revoke refresh token")
	}
	if err := s.issueTokens(r.Context(), w, claims.Subject); err != nil {
		writeDetail(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if claims, _ := r.Context().Value(ctxClaimsKey{}).(*tokenClaims); claims != nil && claims.ID != "" {
		if err := s.store.RevokeRefreshToken(r.Context(), claims.ID); err != nil {
			log.Warn().Err(err).Str("jti", claims.ID).Msg("revoke on logout")
		}
	}
	s.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---------------------------- middleware -----------------------------------

// requireAccess enforces a valid access JWT and, for mutating methods, the
// CSRF double submit. The user id goes into the request context.
func (s *Server) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.verifyCookie(w, r, accessCookie, tokenAccess)
		if !ok {
			return
		}
		if mutating(r.Method) && !csrfMatches(r, csrfAccessCookie, claims.CSRF) {
			writeDetail(w, http.StatusForbidden, "CSRF token mismatch")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRefresh is requireAccess for the refresh cookie; CSRF is always checked.
func (s *Server) requireRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.verifyCookie(w, r, refreshCookie, tokenRefresh)
		if !ok {
			return
		}
		if !csrfMatches(r, csrfRefreshCookie, claims.CSRF) {
			writeDetail(w, http.StatusForbidden, "CSRF token mismatch")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, claims.Subject)
		ctx = context.WithValue(ctx, ctxClaimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verifyCookie parses and validates the JWT stored in cookie name.
// It writes the 401 itself and reports ok=false on any failure.
func (s *Server) verifyCookie(w http.ResponseWriter, r *http.Request, name, kind string) (*tokenClaims, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		writeDetail(w, http.StatusUnauthorized, "Missing "+kind+" token")
		return nil, false
	}
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.opts.Now))
	if err != nil || !token.Valid || claims.Type != kind || claims.Subject == "" {
		writeDetail(w, http.StatusUnauthorized, "Invalid "+kind+" token")
		return nil, false
	}
	return claims, true
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// csrfMatches requires header == cookie == the value bound in the token.
func csrfMatches(r *http.Request, cookieName, bound string) bool {
	h := r.Header.Get(csrfHeader)
	c, err := r.Cookie(cookieName)
	return err == nil && h != "" && h == c.Value && h == bound
}

// --------------------------- tokens & cookies ------------------------------

// issueTokens signs a fresh access/refresh pair, records the refresh jti and
// sets all four cookies.
func (s *Server) issueTokens(ctx context.Context, w http.ResponseWriter, uid string) error {
	now := s.opts.Now()

	accessCSRF := randomToken()
	access, err := s.sign(uid, tokenAccess, accessCSRF, uuid.NewString(), now, now.Add(s.opts.AccessTTL))
	if err != nil {
		return err
	}

	refreshCSRF := randomToken()
	jti := uuid.NewString()
	refreshExp := now.Add(s.opts.RefreshTTL)
	refresh, err := s.sign(uid, tokenRefresh, refreshCSRF, jti, now, refreshExp)
	if err != nil {
		return err
	}
	if err := s.store.AddRefreshToken(ctx, store.RefreshToken{JTI: jti, UserID: uid, ExpiresAt: refreshExp}); err != nil {
		return err
	}

	s.setCookie(w, accessCookie, access, true, now.Add(s.opts.AccessTTL))
	s.setCookie(w, csrfAccessCookie, accessCSRF, false, now.Add(s.opts.AccessTTL))
	s.setCookie(w, refreshCookie, refresh, true, refreshExp)
	s.setCookie(w, csrfRefreshCookie, refreshCSRF, false, refreshExp)
	return nil
}

// sign creates an HS256 JWT.
func (s *Server) sign(sub, kind, csrf, jti string, iat, exp time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Type: kind,
		CSRF: csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	return t.SignedString(s.opts.JWTSecret)
}

// setCookie writes a cookie with the shared security attributes.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, httpOnly bool, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.CookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   s.opts.CookieSecure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// clearAuthCookies deletes all session cookies.
func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookie, refreshCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", HttpOnly: true, Secure: s.opts.CookieSecure, MaxAge: -1})
	}
	for _, name := range []string{csrfAccessCookie, csrfRefreshCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", Secure: s.opts.CookieSecure, MaxAge: -1})
	}
}

// randomToken creates a 22-char URL-safe, crypto-random value (no padding).
func randomToken() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// normalizeUsername trims whitespace.
func normalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// validateSignup enforces basic username/password rules.
func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3–24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return errors.New("password must be 8–72 chars")
	}
	return nil
}
