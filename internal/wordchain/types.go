// internal/wordchain/types.go
//
// Duel states, errors, the move log and the snapshot handed to renderers.

package wordchain

import (
	"errors"
	"fmt"
	"unicode"
)

const (
	// TurnSeconds is the time a player has for one word.
	TurnSeconds = 15
	// DangerSeconds marks the last seconds of a turn.
	DangerSeconds = 5
	// LogLimit caps the move log.
	LogLimit = 16
)

// State is the duel lifecycle.
type State int

const (
	Idle State = iota
	PlayerTurn
	BotTurn
	Forfeited // the player ran out of time
	Conceded  // the bot had no reply; the player wins
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PlayerTurn:
		return "player-turn"
	case BotTurn:
		return "bot-turn"
	case Forfeited:
		return "forfeited"
	case Conceded:
		return "conceded"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether the duel is over.
func (s State) Terminal() bool { return s == Forfeited || s == Conceded }

var (
	// ErrBusy is returned while a word is being checked or the bot is thinking.
	ErrBusy = errors.New("wordchain: request in flight")
	// ErrNotActive is returned before Start.
	ErrNotActive = errors.New("wordchain: no active duel")
	// ErrMatchOver is returned after a forfeit or concession.
	ErrMatchOver = errors.New("wordchain: duel is over")
	// ErrStale is returned when the duel was reset while a request was in
	// flight; the response has been discarded.
	ErrStale = errors.New("wordchain: stale response discarded")
	// ErrEmptyWord is returned for blank input.
	ErrEmptyWord = errors.New("wordchain: empty word")
	// ErrTooShort is returned for one-letter input.
	ErrTooShort = errors.New("wordchain: word shorter than two letters")
)

// WrongLetterError is returned when the word does not start with the letter
// the chain requires. No request is made.
type WrongLetterError struct {
	Want rune
}

func (e *WrongLetterError) Error() string {
	return fmt.Sprintf("Word must start with “%c”.", unicode.ToUpper(e.Want))
}

// RejectedWordError is returned when the backend refuses the word.
// The turn is not consumed.
type RejectedWordError struct {
	Comment string
}

func (e *RejectedWordError) Error() string {
	if e.Comment == "" {
		return "Word rejected."
	}
	return e.Comment
}

// Author says who played a move.
type Author string

const (
	Player Author = "You"
	Bot    Author = "Bot"
)

// Move is one accepted word.
type Move struct {
	Author Author
	Word   string
}

// Snapshot is a copy of the duel state.
type Snapshot struct {
	State State
	// RequiredLetter is 0 until the first word has been played.
	RequiredLetter rune
	WordCount      int
	TimeLeft       int
	Log            []Move // newest first
	Message        string
	Busy           bool
}

// Danger reports whether the countdown is in its last seconds.
func (s Snapshot) Danger() bool {
	return s.State == PlayerTurn && s.TimeLeft <= DangerSeconds
}
