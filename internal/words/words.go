// internal/words/words.go
//
// Provides word pool management for the reference backend.
//
// Responsibilities:
//   - Load one pool per language from WORDS_DIR or fall back to the embedded lists.
//   - Index pools by length (secret words) and keep a set for dictionary checks.
//   - Supply RandomSecret, IsWord, Candidates and Stats.
//
// Word pools:
//   - "en": English, "de": German. Unknown languages resolve to "en".
//   - Words are lower-cased; only alphabetic entries are kept (umlauts included).
//   - Length is measured in letters (runes), not bytes.
//
// Environment variables:
//   WORDS_DIR=/path/to/dir   (expects en.txt and/or de.txt)
//
// Initialization runs once (sync.Once).

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/vocabgames/assets"
)

// DefaultLang is used for unknown or empty language codes.
const DefaultLang = "en"

// ErrNoWords is returned when a pool has no word of the requested length.
var ErrNoWords = errors.New("words: no word of requested length")

var supported = []string{"en", "de"}

// pool is one language's dictionary.
type pool struct {
	set   map[string]struct{}
	byLen map[int][]string
}

var (
	initOnce   sync.Once
	pools      map[string]*pool
	initialErr error
)

// Init loads word pools exactly once.
// Returns an error if any supported language ends up empty.
func Init() error {
	initOnce.Do(func() {
		pools = make(map[string]*pool, len(supported))
		dir := os.Getenv("WORDS_DIR")
		for _, lang := range supported {
			list, err := load(dir, lang)
			if err != nil {
				initialErr = fmt.Errorf("words: load %s: %w", lang, err)
				return
			}
			p := build(list)
			if len(p.set) == 0 {
				initialErr = fmt.Errorf("words: %s pool is empty", lang)
				return
			}
			pools[lang] = p
			log.Debug().Str("lang", lang).Int("words", len(p.set)).Msg("word pool loaded")
		}
	})
	return initialErr
}

// load reads dir/<lang>.txt when dir is set and the file exists,
// otherwise the embedded list.
func load(dir, lang string) ([]string, error) {
	if dir != "" {
		f, err := os.Open(filepath.Join(dir, lang+".txt"))
		switch {
		case err == nil:
			defer f.Close()
			return assets.ReadLines(f)
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}
	return assets.WordList(lang)
}

// build keeps alphabetic words and indexes them by letter count.
func build(list []string) *pool {
	p := &pool{set: make(map[string]struct{}, len(list)), byLen: make(map[int][]string)}
	for _, w := range lo.Uniq(list) {
		if !isAlpha(w) {
			continue
		}
		p.set[w] = struct{}{}
		n := utf8.RuneCountInString(w)
		p.byLen[n] = append(p.byLen[n], w)
	}
	return p
}

// isAlpha reports whether s is non-empty and all letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Lang maps an arbitrary language code to a supported one.
func Lang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lo.Contains(supported, lang) {
		return lang
	}
	return DefaultLang
}

// Languages returns the supported language codes.
func Languages() []string { return append([]string(nil), supported...) }

func get(lang string) *pool {
	if pools == nil {
		return nil
	}
	return pools[Lang(lang)]
}

// RandomSecret returns a cryptographically random word of n letters.
func RandomSecret(lang string, n int) (string, error) {
	p := get(lang)
	if p == nil || len(p.byLen[n]) == 0 {
		return "", ErrNoWords
	}
	list := p.byLen[n]
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return "", err
	}
	return list[nBig.Int64()], nil
}

// IsWord reports whether w is in the dictionary for lang.
func IsWord(lang, w string) bool {
	p := get(lang)
	if p == nil {
		return false
	}
	_, ok := p.set[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// Candidates returns every dictionary word starting with first, sorted.
func Candidates(lang string, first rune) []string {
	p := get(lang)
	if p == nil {
		return nil
	}
	first = unicode.ToLower(first)
	out := make([]string, 0, 16)
	for w := range p.set {
		if r, _ := utf8.DecodeRuneInString(w); r == first {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// Lengths returns the secret-word lengths available for lang, ascending.
func Lengths(lang string) []int {
	p := get(lang)
	if p == nil {
		return nil
	}
	out := lo.Keys(p.byLen)
	sort.Ints(out)
	return out
}

// Stats returns the dictionary size per language.
func Stats() map[string]int {
	out := make(map[string]int, len(pools))
	for lang, p := range pools {
		out[lang] = len(p.set)
	}
	return out
}
