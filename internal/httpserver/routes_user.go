// internal/httpserver/routes_user.go
//
// Session and settings routes under /user:
//   - POST /user/register  → create an account
//   - POST /user/login     → set JWT + CSRF cookies
//   - GET  /user/me        → {"user_id": ...}
//   - POST /user/refresh   → rotate the refresh token (refresh cookie + CSRF)
//   - POST /user/logout    → revoke refresh token, clear cookies
//   - GET  /user/settings  → {random_word_lang, theme}
//   - PUT  /user/settings  → validate and store both fields

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/vocabgames/internal/store"
)

// mountUser registers all /user routes.
func (s *Server) mountUser() {
	s.r.Route("/user", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireRefresh)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAccess)
			r.Get("/me", s.handleMe)
			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handlePutSettings)
		})
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Settings(r.Context(), userID(r.Context()))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var body store.Settings
	if !decodeBody(w, r, &body) {
		return
	}
	var errs []fieldError
	if !lo.Contains(store.Languages, body.RandomWordLang) {
		errs = append(errs, fieldError{
			Loc:  []string{"body", "random_word_lang"},
			Msg:  "Unsupported language",
			Type: "value_error",
		})
	}
	if !lo.Contains(store.Themes, body.Theme) {
		errs = append(errs, fieldError{
			Loc:  []string{"body", "theme"},
			Msg:  "Unsupported theme",
			Type: "value_error",
		})
	}
	if len(errs) > 0 {
		writeValidation(w, errs...)
		return
	}
	saved, err := s.store.SaveSettings(r.Context(), userID(r.Context()), body)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// storeError maps store failures to a detail response.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	log.Error().Err(err).Msg("store")
	writeDetail(w, http.StatusInternalServerError, "db_error")
}
