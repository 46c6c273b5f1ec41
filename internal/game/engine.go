// internal/game/engine.go
//
// Guess judging for the Wordle oracle.
// Responsibilities:
//   - Normalize guess/target (trim, lowercase) and reject non-letters.
//   - Score guesses using the classic two-pass Wordle algorithm.
//   - Report completion when guess and target are identical.
//
// Notes:
//   - Works on runes so German umlauts and ß count as single letters.
//   - The target never leaves the oracle except through the secret-word route.

package game

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNotLetters is returned when guess or target contains anything but letters.
var ErrNotLetters = errors.New("only letters are allowed")

const (
	msgComplete  = "You guessed the word!"
	msgKeepGoing = "Keep trying."
)

// Evaluate judges guess against target and returns the per-letter tiles.
// Tiles carry upper-cased letters. When guess and target differ in length the
// extra guess letters are misses and is_complete is false.
func Evaluate(guess, target string) (Verdict, error) {
	g := []rune(normalize(guess))
	t := []rune(normalize(target))
	if len(g) == 0 || len(t) == 0 || !isAlpha(g) || !isAlpha(t) {
		return Verdict{}, ErrNotLetters
	}

	statuses := score(t, g)
	tiles := make([]Tile, len(g))
	for i, r := range g {
		tiles[i] = Tile{Letter: strings.ToUpper(string(r)), Status: statuses[i]}
	}

	complete := string(g) == string(t)
	msg := msgKeepGoing
	if complete {
		msg = msgComplete
	}
	return Verdict{Tiles: tiles, IsComplete: complete, Message: msg}, nil
}

// score implements the standard Wordle two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count remaining (non-correct) answer letters.
//
// Pass 2:
//   - For each other guess letter: if there is remaining count for that letter,
//     mark present and decrement the count; otherwise mark miss.
//
// This keeps repeated letters in both answer and guess honest. Only the
// overlapping positions are scored: answer letters past the end of the guess
// are never counted and guess letters past the end of the answer are misses.
func score(answer, guess []rune) []Status {
	res := make([]Status, len(guess))
	counts := make(map[rune]int, len(answer))

	for i, r := range guess {
		if i < len(answer) && r == answer[i] {
			res[i] = StatusCorrect
		} else if i < len(answer) {
			counts[answer[i]]++
		}
	}

	for i, r := range guess {
		if res[i] == StatusCorrect {
			continue
		}
		if i < len(answer) && counts[r] > 0 {
			res[i] = StatusPresent
			counts[r]--
		} else {
			res[i] = StatusMiss
		}
	}
	return res
}

// AllCorrect returns true if every tile is correct.
func AllCorrect(tiles []Tile) bool {
	for _, t := range tiles {
		if t.Status != StatusCorrect {
			return false
		}
	}
	return len(tiles) > 0
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// isAlpha checks that every rune is a letter.
func isAlpha(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
