// internal/httpserver/routes_wordle.go
//
// Wordle oracle and statistics routes:
//   - GET  /wordle_random_word/{lang}_{length} → secret word as a JSON string
//   - POST /wordle/check                       → judge {guess, target}
//   - GET  /wordle/stats                       → per-user counters (auth)
//   - POST /wordle/stats/result                → record "win" | "loss" (auth)
//
// The oracle is stateless: the client holds the secret and sends it back with
// every guess, so check needs no session.

package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/vocabgames/internal/game"
	"github.com/robalobadob/vocabgames/internal/words"
)

// mountWordle registers the oracle and /wordle routes.
func (s *Server) mountWordle() {
	s.r.Get("/wordle_random_word/{variant}", s.handleSecretWord)

	s.r.Route("/wordle", func(r chi.Router) {
		r.Post("/check", s.handleCheck)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAccess)
			r.Get("/stats", s.handleGetStats)
			r.Post("/stats/result", s.handleRecordResult)
		})
	})
}

// parseVariant splits "{lang}_{length}", e.g. "de_6".
func parseVariant(variant string) (lang string, n int, err error) {
	i := strings.LastIndexByte(variant, '_')
	if i <= 0 || i == len(variant)-1 {
		return "", 0, errors.New("expected {lang}_{length}")
	}
	n, err = strconv.Atoi(variant[i+1:])
	if err != nil || n <= 0 {
		return "", 0, errors.New("length must be a positive number")
	}
	return words.Lang(variant[:i]), n, nil
}

func (s *Server) handleSecretWord(w http.ResponseWriter, r *http.Request) {
	lang, n, err := parseVariant(chi.URLParam(r, "variant"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	secret, err := words.RandomSecret(lang, n)
	if errors.Is(err, words.ErrNoWords) {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("No %s words with %d letters.", lang, n))
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "random_failed")
		return
	}
	writeJSON(w, http.StatusOK, secret)
}

// checkReq is the request payload for /wordle/check.
type checkReq struct {
	Guess  string `json:"guess"`
	Target string `json:"target"`
}

// checkRes is the response payload for /wordle/check.
type checkRes struct {
	Status string `json:"status"`
	game.Verdict
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var body checkReq
	if !decodeBody(w, r, &body) {
		return
	}
	var errs []fieldError
	if strings.TrimSpace(body.Guess) == "" {
		errs = append(errs, fieldError{Loc: []string{"body", "guess"}, Msg: "Field required", Type: "missing"})
	}
	if strings.TrimSpace(body.Target) == "" {
		errs = append(errs, fieldError{Loc: []string{"body", "target"}, Msg: "Field required", Type: "missing"})
	}
	if len(errs) > 0 {
		writeValidation(w, errs...)
		return
	}

	v, err := game.Evaluate(body.Guess, body.Target)
	if errors.Is(err, game.ErrNotLetters) {
		writeDetail(w, http.StatusBadRequest, "Only letters are allowed.")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "check_failed")
		return
	}
	writeJSON(w, http.StatusOK, checkRes{Status: "ok", Verdict: v})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.WordleStats(r.Context(), userID(r.Context()))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// resultReq is the request payload for /wordle/stats/result.
type resultReq struct {
	Result string `json:"result"`
}

func (s *Server) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	var body resultReq
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Result != "win" && body.Result != "loss" {
		writeValidation(w, fieldError{
			Loc:  []string{"body", "result"},
			Msg:  "Input should be 'win' or 'loss'",
			Type: "literal_error",
		})
		return
	}
	st, err := s.store.RecordWordleResult(r.Context(), userID(r.Context()), body.Result == "win")
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
