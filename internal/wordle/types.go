// internal/wordle/types.go
//
// Round states, errors and the read-only snapshot handed to renderers.

package wordle

import (
	"errors"
	"fmt"

	"github.com/robalobadob/vocabgames/internal/game"
)

// MaxAttempts is the number of guesses per round.
const MaxAttempts = 6

// Lengths are the supported word lengths.
var Lengths = []int{5, 6, 7}

// State is the round lifecycle.
type State int

const (
	Idle State = iota
	AwaitingSecret
	Guessing
	Blocked // secret could not be fetched; only Start leaves it
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingSecret:
		return "awaiting-secret"
	case Guessing:
		return "guessing"
	case Blocked:
		return "blocked"
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether the round is over (Won or Lost).
func (s State) Terminal() bool { return s == Won || s == Lost }

var (
	// ErrBusy is returned while a Start or Submit is in flight.
	ErrBusy = errors.New("wordle: request in flight")
	// ErrNotActive is returned when no round accepts guesses.
	ErrNotActive = errors.New("wordle: no active round")
	// ErrRoundOver is returned by Submit after Won or Lost.
	ErrRoundOver = errors.New("wordle: round is over")
	// ErrStale is returned when the round changed while a request was in flight;
	// the response has been discarded.
	ErrStale = errors.New("wordle: stale response discarded")
	// ErrInvalidLength is returned by Start for an unsupported word length.
	ErrInvalidLength = errors.New("wordle: unsupported word length")
	// ErrInvalidLetter is returned by SetGuess for characters outside the layout.
	ErrInvalidLetter = errors.New("wordle: letter not on keyboard")
	// ErrGuessTooLong is returned by SetGuess when the guess exceeds the word length.
	ErrGuessTooLong = errors.New("wordle: guess longer than word")
)

// IncompleteGuessError is returned by Submit when letters are missing.
// No request is made.
type IncompleteGuessError struct {
	Missing int
}

func (e *IncompleteGuessError) Error() string { return needMore(e.Missing) }

// Row is one submitted guess with its feedback.
type Row struct {
	Guess string
	Tiles []game.Tile
}

// Snapshot is a copy of the round state.
type Snapshot struct {
	State       State
	Lang        string
	WordLength  int
	Attempt     int
	MaxAttempts int
	Rows        []Row
	Guess       string
	Message     string
	Busy        bool
	// Secret is set only once the round is Lost.
	Secret string
}

// Board returns MaxAttempts rows of WordLength cells: submitted rows with
// their feedback, the row being typed (no status) and blanks.
func (s Snapshot) Board() [][]game.Tile {
	board := make([][]game.Tile, s.MaxAttempts)
	for i := range board {
		board[i] = make([]game.Tile, s.WordLength)
	}
	for i, row := range s.Rows {
		if i >= len(board) {
			break
		}
		copy(board[i], row.Tiles)
	}
	if s.State == Guessing && len(s.Rows) < len(board) {
		for i, r := range []rune(s.Guess) {
			if i < s.WordLength {
				board[len(s.Rows)][i] = game.Tile{Letter: string(r)}
			}
		}
	}
	return board
}
