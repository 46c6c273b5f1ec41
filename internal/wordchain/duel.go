// internal/wordchain/duel.go
//
// Word-chain duel controller.
// Responsibilities:
//   - Start a duel (best-effort clear of the server history) and hand the
//     first turn to the player.
//   - Check the player's word locally (not empty, two letters, chain letter),
//     then with the backend; "False" is a rejection, not a failure.
//   - Ask the bot for a reply; an empty reply means the bot concedes.
//   - Run a one-second countdown during the player's turn; at zero the
//     player forfeits.
//
// Concurrency:
//   - State lives behind one mutex that is never held across a network call.
//   - Each player turn gets a generation number; a countdown goroutine exits
//     as soon as the generation moves on, so at most one timer ticks.
//   - Reset/Close bump the epoch; responses for an older epoch are dropped.
//   - A forfeit that lands while the word is being checked wins.
//   - Observers (WithNotify) are called outside the lock and must not call
//     Close.

package wordchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/robalobadob/vocabgames/internal/apiclient"
)

// Backend is the word-chain part of the API.
type Backend interface {
	ClearChain(ctx context.Context) error
	AddChainWord(ctx context.Context, word string) (apiclient.ChainVerdict, error)
	BotMove(ctx context.Context, word string) (string, error)
}

// User-facing messages.
const (
	msgFirstWord  = "Type any starting word to begin the chain."
	msgEmpty      = "Enter a word before sending."
	msgTooShort   = "Use at least two letters."
	msgChecking   = "Checking word…"
	msgThinking   = "Bot is thinking…"
	msgYourTurn   = "Your turn — follow the highlighted letter."
	msgConceded   = "Bot surrendered. Streak is yours!"
	msgTimeUp     = "Time's up! Restart the duel to try again."
	msgMoveFailed = "Unable to play this word."
)

// Option configures a Duel.
type Option func(*Duel)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(d *Duel) { d.clock = c }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Duel) { d.log = l }
}

// WithNotify registers an observer called with a snapshot after every state
// change and every tick.
func WithNotify(fn func(Snapshot)) Option {
	return func(d *Duel) { d.notify = fn }
}

// Duel is the word-chain controller. The zero value is not usable; call New.
type Duel struct {
	api    Backend
	clock  Clock
	log    zerolog.Logger
	notify func(Snapshot)

	timers sync.WaitGroup

	mu        sync.Mutex
	epoch     string
	turn      uint64
	timerStop chan struct{}
	state     State
	busy      bool
	required  rune
	count     int
	timeLeft  int
	moves     []Move
	message   string
}

// New returns an Idle duel.
func New(api Backend, opts ...Option) *Duel {
	d := &Duel{
		api:   api,
		clock: RealClock{},
		log:   zerolog.Nop(),
		epoch: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start begins a new duel. Clearing the server-side history is best effort:
// a failure is logged and the duel starts anyway.
func (d *Duel) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return ErrBusy
	}
	d.stopTimerLocked()
	ep := uuid.NewString()
	d.epoch = ep
	d.busy = true
	d.state = Idle
	d.resetLocked()
	d.mu.Unlock()

	if err := d.api.ClearChain(ctx); err != nil {
		d.log.Warn().Err(err).Msg("failed to clear word chain history")
	}

	d.mu.Lock()
	if d.epoch != ep {
		d.mu.Unlock()
		return ErrStale
	}
	d.busy = false
	d.state = PlayerTurn
	d.message = msgFirstWord
	d.startTimerLocked()
	snap := d.snapshotLocked()
	d.mu.Unlock()

	d.log.Debug().Str("duel", ep).Msg("duel started")
	d.emit(snap)
	return nil
}

// Submit plays the player's word and, once accepted, the bot's reply.
//
// Local checks (no request): empty input, fewer than two letters, wrong
// first letter. A backend rejection returns *RejectedWordError and keeps the
// turn. If the bot request fails, the player's word stays accepted, the turn
// goes back to the player with a fresh timer and the error is returned.
func (d *Duel) Submit(ctx context.Context, input string) error {
	d.mu.Lock()
	switch {
	case d.state.Terminal():
		d.mu.Unlock()
		return ErrMatchOver
	case d.busy || d.state == BotTurn:
		d.mu.Unlock()
		return ErrBusy
	case d.state != PlayerTurn:
		d.mu.Unlock()
		return ErrNotActive
	}

	word := strings.ToLower(strings.TrimSpace(input))
	if err := d.checkLocally(word); err != nil {
		d.message = localMessage(err)
		snap := d.snapshotLocked()
		d.mu.Unlock()
		d.emit(snap)
		return err
	}

	ep := d.epoch
	d.busy = true
	d.message = msgChecking
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.emit(snap)

	verdict, err := d.api.AddChainWord(ctx, word)

	d.mu.Lock()
	if d.epoch != ep {
		d.mu.Unlock()
		return ErrStale
	}
	d.busy = false
	if d.state != PlayerTurn {
		// The countdown ran out while the word was being checked.
		d.mu.Unlock()
		return ErrMatchOver
	}
	switch {
	case err != nil:
		d.message = failureMessage(err)
		snap = d.snapshotLocked()
		d.mu.Unlock()
		d.emit(snap)
		return fmt.Errorf("wordchain: add word: %w", err)
	case verdict.Rejected():
		rej := &RejectedWordError{Comment: verdict.Comment}
		d.message = rej.Error()
		snap = d.snapshotLocked()
		d.mu.Unlock()
		d.emit(snap)
		return rej
	}

	d.pushLocked(Player, word)
	d.count++
	d.required = lastLetter(word)
	d.stopTimerLocked()
	d.state = BotTurn
	d.busy = true
	d.message = msgThinking
	snap = d.snapshotLocked()
	d.mu.Unlock()
	d.emit(snap)

	reply, err := d.api.BotMove(ctx, word)

	d.mu.Lock()
	if d.epoch != ep {
		d.mu.Unlock()
		return ErrStale
	}
	d.busy = false
	switch {
	case err != nil:
		d.state = PlayerTurn
		d.message = failureMessage(err)
		d.startTimerLocked()
		snap = d.snapshotLocked()
		d.mu.Unlock()
		d.log.Warn().Err(err).Str("word", word).Msg("bot move failed")
		d.emit(snap)
		return fmt.Errorf("wordchain: bot move: %w", err)
	case reply == "":
		d.state = Conceded
		d.message = msgConceded
		snap = d.snapshotLocked()
		d.mu.Unlock()
		d.log.Info().Str("duel", ep).Int("words", snap.WordCount).Msg("bot conceded")
		d.emit(snap)
		return nil
	}

	reply = strings.ToLower(reply)
	d.pushLocked(Bot, reply)
	d.required = lastLetter(reply)
	d.state = PlayerTurn
	d.message = msgYourTurn
	d.startTimerLocked()
	snap = d.snapshotLocked()
	d.mu.Unlock()
	d.emit(snap)
	return nil
}

// checkLocally applies the rules that need no request.
func (d *Duel) checkLocally(word string) error {
	if word == "" {
		return ErrEmptyWord
	}
	if utf8.RuneCountInString(word) < 2 {
		return ErrTooShort
	}
	if d.required != 0 {
		if first, _ := utf8.DecodeRuneInString(word); first != d.required {
			return &WrongLetterError{Want: d.required}
		}
	}
	return nil
}

func localMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyWord):
		return msgEmpty
	case errors.Is(err, ErrTooShort):
		return msgTooShort
	}
	return err.Error()
}

// failureMessage prefers the backend's own detail.
func failureMessage(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgMoveFailed
}

// Reset stops the countdown and returns to Idle. In-flight responses are
// discarded.
func (d *Duel) Reset() {
	d.mu.Lock()
	d.stopTimerLocked()
	d.epoch = uuid.NewString()
	d.state = Idle
	d.busy = false
	d.resetLocked()
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.emit(snap)
}

// Close resets the duel and waits for the countdown goroutine to exit.
func (d *Duel) Close() {
	d.Reset()
	d.timers.Wait()
}

// Snapshot returns a copy of the duel for rendering.
func (d *Duel) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Duel) snapshotLocked() Snapshot {
	return Snapshot{
		State:          d.state,
		RequiredLetter: d.required,
		WordCount:      d.count,
		TimeLeft:       d.timeLeft,
		Log:            append([]Move(nil), d.moves...),
		Message:        d.message,
		Busy:           d.busy,
	}
}

func (d *Duel) resetLocked() {
	d.required = 0
	d.count = 0
	d.timeLeft = TurnSeconds
	d.moves = nil
	d.message = ""
}

// pushLocked prepends a move and trims the log to LogLimit.
func (d *Duel) pushLocked(a Author, word string) {
	d.moves = append([]Move{{Author: a, Word: word}}, d.moves...)
	if len(d.moves) > LogLimit {
		d.moves = lo.Subset(d.moves, 0, LogLimit)
	}
}

func (d *Duel) emit(s Snapshot) {
	if d.notify != nil {
		d.notify(s)
	}
}

// ------------------------------- countdown ---------------------------------

// startTimerLocked gives the player a full turn and starts ticking.
func (d *Duel) startTimerLocked() {
	d.stopTimerLocked()
	d.timeLeft = TurnSeconds
	stop := make(chan struct{})
	d.timerStop = stop
	gen := d.turn
	t := d.clock.NewTicker(time.Second)
	d.timers.Add(1)
	go d.countdown(gen, t, stop)
}

// stopTimerLocked ends the current turn's countdown, if any.
func (d *Duel) stopTimerLocked() {
	d.turn++
	if d.timerStop != nil {
		close(d.timerStop)
		d.timerStop = nil
	}
}

func (d *Duel) countdown(gen uint64, t Ticker, stop <-chan struct{}) {
	defer d.timers.Done()
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
		}

		d.mu.Lock()
		if d.turn != gen || d.state != PlayerTurn {
			d.mu.Unlock()
			return
		}
		d.timeLeft--
		expired := d.timeLeft <= 0
		if expired {
			d.timeLeft = 0
			d.state = Forfeited
			d.message = msgTimeUp
			d.turn++
			d.timerStop = nil
		}
		snap := d.snapshotLocked()
		d.mu.Unlock()

		d.emit(snap)
		if expired {
			d.log.Info().Int("words", snap.WordCount).Msg("player ran out of time")
			return
		}
	}
}

// lastLetter returns the final rune of w, lower-cased.
func lastLetter(w string) rune {
	r, _ := utf8.DecodeLastRuneInString(w)
	return unicode.ToLower(r)
}
