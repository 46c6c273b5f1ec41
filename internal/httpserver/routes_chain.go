// internal/httpserver/routes_chain.go
//
// Word-chain routes (all require a session):
//   - GET    /word_chain/add/{word} → {status: "True"|"False", comment}
//   - POST   /word_chain/bot        → {word}; "" means the bot concedes
//   - DELETE /word_chain/history    → clear the user's chain
//
// Rules:
//   - The word must be in the dictionary of the user's random_word_lang.
//   - It must start with the last letter of the newest chain word.
//   - A word can be used once per chain (player and bot share the history).
//   - Rejections are 200 responses with status "False"; the client treats
//     them as an expected outcome, not an error.

package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/vocabgames/internal/words"
)

const (
	chainAccepted = "True"
	chainRejected = "False"
)

// chainAddRes is the response payload for /word_chain/add/{word}.
type chainAddRes struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// botReq / botRes are the payloads for /word_chain/bot.
type botReq struct {
	Word string `json:"word"`
}

type botRes struct {
	Word string `json:"word"`
}

// mountChain registers all /word_chain routes.
func (s *Server) mountChain() {
	s.r.Route("/word_chain", func(r chi.Router) {
		r.Use(s.requireAccess)
		r.Get("/add/{word}", s.handleChainAdd)
		r.Post("/bot", s.handleChainBot)
		r.Delete("/history", s.handleChainClear)
	})
}

// chainLang is the dictionary used for the user's chain.
func (s *Server) chainLang(r *http.Request) string {
	st, err := s.store.Settings(r.Context(), userID(r.Context()))
	if err != nil {
		return words.DefaultLang
	}
	return words.Lang(st.RandomWordLang)
}

func (s *Server) handleChainAdd(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	word := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "word")))
	lang := s.chainLang(r)

	if !words.IsWord(lang, word) {
		writeJSON(w, http.StatusOK, chainAddRes{Status: chainRejected, Comment: "Word not found in dictionary."})
		return
	}

	used, err := s.store.ChainWords(r.Context(), uid)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if len(used) > 0 {
		want := lastLetter(used[0])
		if first, _ := utf8.DecodeRuneInString(word); first != want {
			writeJSON(w, http.StatusOK, chainAddRes{
				Status:  chainRejected,
				Comment: fmt.Sprintf("Word must start with '%c'.", want),
			})
			return
		}
	}

	added, err := s.store.AddChainWord(r.Context(), uid, word)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if !added {
		writeJSON(w, http.StatusOK, chainAddRes{Status: chainRejected, Comment: "Word already used."})
		return
	}
	writeJSON(w, http.StatusOK, chainAddRes{Status: chainAccepted, Comment: "Word accepted."})
}

// handleChainBot answers with an unused dictionary word that starts with the
// last letter of the player's word, or concedes with "".
func (s *Server) handleChainBot(w http.ResponseWriter, r *http.Request) {
	var body botReq
	if !decodeBody(w, r, &body) {
		return
	}
	word := strings.ToLower(strings.TrimSpace(body.Word))
	if word == "" {
		writeValidation(w, fieldError{Loc: []string{"body", "word"}, Msg: "Field required", Type: "missing"})
		return
	}
	uid := userID(r.Context())

	used, err := s.store.ChainWords(r.Context(), uid)
	if err != nil {
		s.storeError(w, err)
		return
	}
	candidates := lo.Filter(words.Candidates(s.chainLang(r), lastLetter(word)), func(c string, _ int) bool {
		return c != word && !lo.Contains(used, c)
	})

	for len(candidates) > 0 {
		pick := lo.Sample(candidates)
		added, err := s.store.AddChainWord(r.Context(), uid, pick)
		if err != nil {
			s.storeError(w, err)
			return
		}
		if added {
			writeJSON(w, http.StatusOK, botRes{Word: pick})
			return
		}
		candidates = lo.Without(candidates, pick)
	}
	log.Debug().Str("user", uid).Str("after", word).Msg("bot concedes")
	writeJSON(w, http.StatusOK, botRes{Word: ""})
}

func (s *Server) handleChainClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearChain(r.Context(), userID(r.Context())); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// lastLetter returns the final rune of w.
func lastLetter(w string) rune {
	r, _ := utf8.DecodeLastRuneInString(w)
	return r
}
