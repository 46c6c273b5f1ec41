package wordle

import (
	"strings"

	"github.com/samber/lo"
)

// KeyBackspace is the erase key in a layout row.
const KeyBackspace = "⌫"

var layouts = map[string][][]string{
	"en": {
		{"Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P"},
		{"A", "S", "D", "F", "G", "H", "J", "K", "L"},
		{"Z", "X", "C", "V", "B", "N", "M", KeyBackspace},
	},
	"de": {
		{"Q", "W", "E", "R", "T", "Z", "U", "I", "O", "P", "Ü"},
		{"A", "S", "D", "F", "G", "H", "J", "K", "L", "Ö", "Ä"},
		{"Y", "X", "C", "V", "B", "N", "M", KeyBackspace},
	},
}

// Layout returns the on-screen keyboard rows for lang (en QWERTY, de QWERTZ).
// Unknown languages get the English layout.
func Layout(lang string) [][]string {
	l, ok := layouts[lang]
	if !ok {
		l = layouts["en"]
	}
	return lo.Map(l, func(row []string, _ int) []string { return append([]string(nil), row...) })
}

// alphabet is the set of letter keys for lang.
func alphabet(lang string) map[rune]struct{} {
	set := make(map[rune]struct{}, 32)
	for _, row := range Layout(lang) {
		for _, k := range row {
			if k == KeyBackspace {
				continue
			}
			set[[]rune(k)[0]] = struct{}{}
		}
	}
	return set
}

// normalizeLetter upper-cases r and reports whether it is on lang's keyboard.
func normalizeLetter(alpha map[rune]struct{}, r rune) (rune, bool) {
	up := []rune(strings.ToUpper(string(r)))
	if len(up) != 1 {
		return 0, false
	}
	_, ok := alpha[up[0]]
	return up[0], ok
}
