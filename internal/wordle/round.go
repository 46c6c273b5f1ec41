// internal/wordle/round.go
//
// Wordle round controller.
// Responsibilities:
//   - Fetch the secret for the chosen language and length (Start).
//   - Collect letters into the current row (Type, Backspace, SetGuess).
//   - Send full rows to the oracle and apply the verdict (Submit):
//     win on is_complete, loss after MaxAttempts, otherwise next row.
//   - Report the outcome to the statistics endpoint in the background.
//
// Concurrency:
//   - One request at a time; overlapping Start/Submit get ErrBusy.
//   - The mutex is never held across a network call.
//   - Each round has an epoch id. A response for an older epoch (the round was
//     restarted or closed meanwhile) is dropped with ErrStale.
//
// The secret is kept only to send it back to the oracle; guesses are never
// compared with it locally.

package wordle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/robalobadob/vocabgames/internal/apiclient"
	"github.com/robalobadob/vocabgames/internal/game"
)

// Oracle supplies secrets and judges guesses.
type Oracle interface {
	SecretWord(ctx context.Context, lang string, length int) (string, error)
	Check(ctx context.Context, guess, target string) (game.Verdict, error)
}

// StatsReporter records finished rounds.
type StatsReporter interface {
	ReportResult(ctx context.Context, won bool) (apiclient.Stats, error)
}

// Preferences provides the secret-word language at round start.
type Preferences interface {
	Language() string
}

// User-facing messages.
const (
	msgFetchFailed = "Failed to fetch the word. Please try again."
	msgSending     = "Sending the word for validation..."
	msgWon         = "You guessed the word!"
	msgKeepTrying  = "Keep trying."
	msgCheckFailed = "Could not validate the word."
)

func msgLength(n int) string { return fmt.Sprintf("The word must be %d letters long.", n) }

func msgLost(secret string) string {
	return fmt.Sprintf("No attempts left. The word was: %s.", strings.ToUpper(secret))
}

func needMore(n int) string {
	if n == 1 {
		return "Need 1 more letter."
	}
	return fmt.Sprintf("Need %d more letters.", n)
}

// Option configures a Round.
type Option func(*Round)

// WithStats enables outcome reporting. Without it nothing is reported.
func WithStats(r StatsReporter) Option {
	return func(rd *Round) { rd.stats = r }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(rd *Round) { rd.log = l }
}

// WithReportTimeout bounds each background statistics call (default 10s).
func WithReportTimeout(d time.Duration) Option {
	return func(rd *Round) { rd.reportTimeout = d }
}

// Round is the Wordle round controller. The zero value is not usable; call New.
type Round struct {
	oracle        Oracle
	prefs         Preferences
	stats         StatsReporter
	log           zerolog.Logger
	reportTimeout time.Duration

	reports sync.WaitGroup

	mu      sync.Mutex
	epoch   string
	state   State
	busy    bool
	lang    string
	length  int
	alpha   map[rune]struct{}
	attempt int
	guess   []rune
	rows    []Row
	secret  string
	message string
}

// New returns an Idle round controller.
func New(oracle Oracle, prefs Preferences, opts ...Option) *Round {
	r := &Round{
		oracle:        oracle,
		prefs:         prefs,
		log:           zerolog.Nop(),
		reportTimeout: 10 * time.Second,
		epoch:         uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins a new round of length letters ("play again" uses it too).
// On success the round is Guessing at attempt 0; if the secret cannot be
// fetched it is Blocked until the next Start.
func (r *Round) Start(ctx context.Context, length int) error {
	if !lo.Contains(Lengths, length) {
		return fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return ErrBusy
	}
	ep := uuid.NewString()
	r.epoch = ep
	r.busy = true
	r.state = AwaitingSecret
	r.lang = r.prefs.Language()
	r.length = length
	r.alpha = alphabet(r.lang)
	r.attempt = 0
	r.guess = nil
	r.rows = nil
	r.secret = ""
	r.message = ""
	lang := r.lang
	r.mu.Unlock()

	secret, err := r.oracle.SecretWord(ctx, lang, length)
	if err == nil && utf8.RuneCountInString(secret) != length {
		err = fmt.Errorf("secret %q has %d letters, want %d", secret, utf8.RuneCountInString(secret), length)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != ep {
		return ErrStale
	}
	r.busy = false
	if err != nil {
		r.state = Blocked
		r.message = msgFetchFailed
		r.log.Warn().Err(err).Str("lang", lang).Int("length", length).Msg("secret word fetch failed")
		return fmt.Errorf("wordle: fetch secret: %w", err)
	}
	r.secret = strings.ToLower(secret)
	r.state = Guessing
	r.message = msgLength(length)
	r.log.Debug().Str("round", ep).Str("lang", lang).Int("length", length).Msg("round started")
	return nil
}

// Type appends one letter to the current row. It reports whether the letter
// was taken: input is ignored when the row is full, the round is not
// accepting guesses, a request is in flight or ch is not on the keyboard.
func (r *Round) Type(ch rune) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Guessing || r.busy || len(r.guess) >= r.length {
		return false
	}
	up, ok := normalizeLetter(r.alpha, ch)
	if !ok {
		return false
	}
	r.guess = append(r.guess, up)
	return true
}

// Backspace removes the last letter of the current row.
func (r *Round) Backspace() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Guessing || r.busy || len(r.guess) == 0 {
		return false
	}
	r.guess = r.guess[:len(r.guess)-1]
	return true
}

// SetGuess replaces the current row with s (used for typed lines).
// Whitespace is trimmed; s may be shorter than the word.
func (r *Round) SetGuess(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Guessing {
		return ErrNotActive
	}
	if r.busy {
		return ErrBusy
	}
	in := []rune(strings.TrimSpace(s))
	if len(in) > r.length {
		return fmt.Errorf("%w: %d > %d", ErrGuessTooLong, len(in), r.length)
	}
	out := make([]rune, 0, len(in))
	for _, ch := range in {
		up, ok := normalizeLetter(r.alpha, ch)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidLetter, ch)
		}
		out = append(out, up)
	}
	r.guess = out
	return nil
}

// Submit sends the current row to the oracle.
//   - Short row: *IncompleteGuessError, no request.
//   - Network failure: error returned, attempt unchanged, row kept.
//   - is_complete: Won.
//   - Last attempt used: Lost, the message reveals the secret.
//   - Otherwise: next attempt with an empty row.
func (r *Round) Submit(ctx context.Context) error {
	r.mu.Lock()
	switch {
	case r.busy:
		r.mu.Unlock()
		return ErrBusy
	case r.state.Terminal():
		r.mu.Unlock()
		return ErrRoundOver
	case r.state != Guessing:
		r.mu.Unlock()
		return ErrNotActive
	}
	if missing := r.length - len(r.guess); missing > 0 {
		r.message = needMore(missing)
		r.mu.Unlock()
		return &IncompleteGuessError{Missing: missing}
	}
	ep := r.epoch
	guess := strings.ToLower(string(r.guess))
	secret := r.secret
	r.busy = true
	r.message = msgSending
	r.mu.Unlock()

	v, err := r.oracle.Check(ctx, guess, secret)
	if err == nil && len(v.Tiles) != utf8.RuneCountInString(guess) {
		err = fmt.Errorf("verdict has %d tiles for %d letters", len(v.Tiles), utf8.RuneCountInString(guess))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != ep {
		return ErrStale
	}
	r.busy = false
	if err != nil {
		r.message = msgCheckFailed
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			r.message = apiErr.Message
		}
		return fmt.Errorf("wordle: check guess: %w", err)
	}

	r.rows = append(r.rows, Row{Guess: strings.ToUpper(guess), Tiles: append([]game.Tile(nil), v.Tiles...)})
	r.guess = nil

	switch {
	case v.IsComplete:
		r.state = Won
		r.message = lo.Ternary(v.Message != "", v.Message, msgWon)
		r.report(ep, true)
	case r.attempt == MaxAttempts-1:
		r.state = Lost
		r.message = msgLost(r.secret)
		r.report(ep, false)
	default:
		r.attempt++
		r.message = lo.Ternary(v.Message != "", v.Message, msgKeepTrying)
	}
	return nil
}

// report sends the outcome in the background. Failures are only logged.
// Called with r.mu held.
func (r *Round) report(ep string, won bool) {
	r.log.Info().Str("round", ep).Bool("won", won).Int("attempts", len(r.rows)).Msg("round finished")
	if r.stats == nil {
		return
	}
	r.reports.Add(1)
	go func() {
		defer r.reports.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.reportTimeout)
		defer cancel()
		if _, err := r.stats.ReportResult(ctx, won); err != nil {
			r.log.Warn().Err(err).Str("round", ep).Bool("won", won).Msg("failed to report result")
		}
	}()
}

// Wait blocks until all background statistics reports have finished.
func (r *Round) Wait() { r.reports.Wait() }

// Close abandons the round: state goes back to Idle and any in-flight
// response will be discarded.
func (r *Round) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch = uuid.NewString()
	r.state = Idle
	r.busy = false
	r.attempt = 0
	r.guess = nil
	r.rows = nil
	r.secret = ""
	r.message = ""
}

// State returns the current state.
func (r *Round) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Snapshot returns a copy of the round for rendering.
func (r *Round) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		State:       r.state,
		Lang:        r.lang,
		WordLength:  r.length,
		Attempt:     r.attempt,
		MaxAttempts: MaxAttempts,
		Rows:        make([]Row, len(r.rows)),
		Guess:       string(r.guess),
		Message:     r.message,
		Busy:        r.busy,
	}
	for i, row := range r.rows {
		s.Rows[i] = Row{Guess: row.Guess, Tiles: append([]game.Tile(nil), row.Tiles...)}
	}
	if r.state == Lost {
		s.Secret = r.secret
	}
	return s
}
