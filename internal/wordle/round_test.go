package wordle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/robalobadob/vocabgames/internal/apiclient"
	"github.com/robalobadob/vocabgames/internal/game"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type lang string

func (l lang) Language() string { return string(l) }

// fakeOracle judges with the real engine unless told otherwise.
type fakeOracle struct {
	mu        sync.Mutex
	secret    string
	secretErr error
	checkErrs []error
	never     bool // never report is_complete
	checks    []string
	langs     []string

	entered chan struct{}
	release chan struct{}
}

func (f *fakeOracle) SecretWord(_ context.Context, l string, n int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.langs = append(f.langs, l)
	if f.secretErr != nil {
		return "", f.secretErr
	}
	if f.secret != "" {
		return f.secret, nil
	}
	return strings.Repeat("a", n), nil
}

func (f *fakeOracle) Check(_ context.Context, guess, target string) (game.Verdict, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, guess)
	if len(f.checkErrs) > 0 {
		err := f.checkErrs[0]
		f.checkErrs = f.checkErrs[1:]
		if err != nil {
			return game.Verdict{}, err
		}
	}
	v, err := game.Evaluate(guess, target)
	if f.never {
		v.IsComplete = false
	}
	return v, err
}

func (f *fakeOracle) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checks)
}

type fakeStats struct {
	mu      sync.Mutex
	results []bool
	err     error
}

func (f *fakeStats) ReportResult(_ context.Context, won bool) (apiclient.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, won)
	return apiclient.Stats{}, f.err
}

func (f *fakeStats) reported() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.results...)
}

func guess(t *testing.T, r *Round, word string) error {
	t.Helper()
	require.NoError(t, r.SetGuess(word))
	return r.Submit(context.Background())
}

func TestStartBuildsBoardForEveryLength(t *testing.T) {
	for _, n := range Lengths {
		r := New(&fakeOracle{}, lang("en"))
		require.NoError(t, r.Start(context.Background(), n))

		s := r.Snapshot()
		assert.Equal(t, Guessing, s.State)
		assert.Equal(t, 0, s.Attempt)
		assert.Equal(t, "The word must be "+string(rune('0'+n))+" letters long.", s.Message)

		board := s.Board()
		require.Len(t, board, MaxAttempts)
		for _, row := range board {
			assert.Len(t, row, n)
		}
	}
}

func TestStartRejectsUnsupportedLength(t *testing.T) {
	o := &fakeOracle{}
	r := New(o, lang("en"))
	err := r.Start(context.Background(), 4)
	assert.ErrorIs(t, err, ErrInvalidLength)
	assert.Equal(t, Idle, r.State())
	assert.Empty(t, o.langs)
}

func TestStartUsesSessionLanguage(t *testing.T) {
	o := &fakeOracle{}
	r := New(o, lang("de"))
	require.NoError(t, r.Start(context.Background(), 6))
	assert.Equal(t, []string{"de"}, o.langs)
	assert.Equal(t, "de", r.Snapshot().Lang)
}

func TestSecretFetchFailureBlocks(t *testing.T) {
	o := &fakeOracle{secretErr: errors.New("connection refused")}
	r := New(o, lang("en"))

	err := r.Start(context.Background(), 5)
	require.Error(t, err)
	s := r.Snapshot()
	assert.Equal(t, Blocked, s.State)
	assert.Equal(t, "Failed to fetch the word. Please try again.", s.Message)

	assert.False(t, r.Type('a'))
	assert.ErrorIs(t, r.Submit(context.Background()), ErrNotActive)
	assert.Zero(t, o.checkCount())

	o.mu.Lock()
	o.secretErr = nil
	o.mu.Unlock()
	require.NoError(t, r.Start(context.Background(), 5))
	assert.Equal(t, Guessing, r.State())
}

func TestSecretOfWrongLengthBlocks(t *testing.T) {
	r := New(&fakeOracle{secret: "cat"}, lang("en"))
	assert.Error(t, r.Start(context.Background(), 5))
	assert.Equal(t, Blocked, r.State())
}

func TestShortGuessMakesNoRequest(t *testing.T) {
	o := &fakeOracle{secret: "crane"}
	r := New(o, lang("en"))
	require.NoError(t, r.Start(context.Background(), 5))

	require.NoError(t, r.SetGuess("cra"))
	err := r.Submit(context.Background())
	var inc *IncompleteGuessError
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, 2, inc.Missing)
	assert.Equal(t, "Need 2 more letters.", r.Snapshot().Message)

	require.True(t, r.Type('n'))
	err = r.Submit(context.Background())
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, "Need 1 more letter.", r.Snapshot().Message)

	assert.Zero(t, o.checkCount())
	assert.Equal(t, 0, r.Snapshot().Attempt)
	assert.Equal(t, "CRAN", r.Snapshot().Guess)
}

func TestCraneScenario(t *testing.T) {
	o := &fakeOracle{secret: "crane"}
	st := &fakeStats{}
	r := New(o, lang("en"), WithStats(st))
	require.NoError(t, r.Start(context.Background(), 5))

	require.NoError(t, guess(t, r, "SLATE"))
	assert.Equal(t, 1, r.Snapshot().Attempt)
	assert.Equal(t, "Keep trying.", r.Snapshot().Message)
	require.NoError(t, guess(t, r, "CRATE"))
	require.NoError(t, guess(t, r, "CRANE"))
	r.Wait()

	s := r.Snapshot()
	assert.Equal(t, Won, s.State)
	assert.Equal(t, "You guessed the word!", s.Message)
	assert.Equal(t, 3, o.checkCount())
	assert.Equal(t, []bool{true}, st.reported())
	require.Len(t, s.Rows, 3)
	assert.Equal(t, "CRANE", s.Rows[2].Guess)
	assert.True(t, game.AllCorrect(s.Rows[2].Tiles))
	assert.Empty(t, s.Secret)

	assert.ErrorIs(t, r.Submit(context.Background()), ErrRoundOver)
	assert.False(t, r.Type('c'))
	r.Wait()
	assert.Len(t, st.reported(), 1)
}

func TestWinOnLastAttempt(t *testing.T) {
	o := &fakeOracle{secret: "crane"}
	st := &fakeStats{}
	r := New(o, lang("en"), WithStats(st))
	require.NoError(t, r.Start(context.Background(), 5))

	for i := 0; i < MaxAttempts-1; i++ {
		require.NoError(t, guess(t, r, "slate"))
	}
	assert.Equal(t, MaxAttempts-1, r.Snapshot().Attempt)
	require.NoError(t, guess(t, r, "crane"))
	r.Wait()

	assert.Equal(t, Won, r.State())
	assert.Equal(t, []bool{true}, st.reported())
}

func TestLossAfterMaxAttempts(t *testing.T) {
	o := &fakeOracle{secret: "crane", never: true}
	st := &fakeStats{}
	r := New(o, lang("en"), WithStats(st))
	require.NoError(t, r.Start(context.Background(), 5))

	for i := 0; i < MaxAttempts; i++ {
		require.NoError(t, guess(t, r, "crane"))
	}
	r.Wait()

	s := r.Snapshot()
	assert.Equal(t, Lost, s.State)
	assert.Equal(t, "No attempts left. The word was: CRANE.", s.Message)
	assert.Equal(t, "crane", s.Secret)
	assert.Equal(t, MaxAttempts-1, s.Attempt)
	assert.Len(t, s.Rows, MaxAttempts)
	assert.Equal(t, []bool{false}, st.reported())
	assert.ErrorIs(t, r.Submit(context.Background()), ErrRoundOver)
}

func TestCheckFailureKeepsAttempt(t *testing.T) {
	o := &fakeOracle{
		secret:    "crane",
		checkErrs: []error{errors.New("timeout"), &apiclient.Error{Status: 502, Message: "HTTP 502 Bad Gateway"}},
	}
	r := New(o, lang("en"))
	require.NoError(t, r.Start(context.Background(), 5))

	err := guess(t, r, "slate")
	require.Error(t, err)
	s := r.Snapshot()
	assert.Equal(t, Guessing, s.State)
	assert.Equal(t, 0, s.Attempt)
	assert.Equal(t, "SLATE", s.Guess)
	assert.Equal(t, "Could not validate the word.", s.Message)
	assert.False(t, s.Busy)

	err = r.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, 502, apiclient.StatusOf(err))
	assert.Equal(t, "HTTP 502 Bad Gateway", r.Snapshot().Message)

	require.NoError(t, r.Submit(context.Background()))
	assert.Equal(t, 1, r.Snapshot().Attempt)
	assert.Equal(t, []string{"slate", "slate", "slate"}, o.checks)
}

func TestStatsFailureIsOnlyLogged(t *testing.T) {
	st := &fakeStats{err: errors.New("offline")}
	r := New(&fakeOracle{secret: "crane"}, lang("en"), WithStats(st))
	require.NoError(t, r.Start(context.Background(), 5))
	require.NoError(t, guess(t, r, "crane"))
	r.Wait()
	assert.Equal(t, Won, r.State())
	assert.Len(t, st.reported(), 1)
}

func TestBusyRejectsOverlappingCalls(t *testing.T) {
	o := &fakeOracle{secret: "crane", entered: make(chan struct{}), release: make(chan struct{})}
	r := New(o, lang("en"))
	require.NoError(t, r.Start(context.Background(), 5))
	require.NoError(t, r.SetGuess("slate"))

	done := make(chan error, 1)
	go func() { done <- r.Submit(context.Background()) }()
	<-o.entered

	s := r.Snapshot()
	assert.True(t, s.Busy)
	assert.Equal(t, "Sending the word for validation...", s.Message)
	assert.ErrorIs(t, r.Submit(context.Background()), ErrBusy)
	assert.ErrorIs(t, r.Start(context.Background(), 5), ErrBusy)
	assert.ErrorIs(t, r.SetGuess("crane"), ErrBusy)
	assert.False(t, r.Backspace())

	close(o.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, r.Snapshot().Attempt)
}

func TestCloseDiscardsInFlightResponse(t *testing.T) {
	o := &fakeOracle{secret: "crane", entered: make(chan struct{}), release: make(chan struct{})}
	st := &fakeStats{}
	r := New(o, lang("en"), WithStats(st))
	require.NoError(t, r.Start(context.Background(), 5))
	require.NoError(t, r.SetGuess("crane"))

	done := make(chan error, 1)
	go func() { done <- r.Submit(context.Background()) }()
	<-o.entered
	r.Close()
	close(o.release)

	assert.ErrorIs(t, <-done, ErrStale)
	r.Wait()
	s := r.Snapshot()
	assert.Equal(t, Idle, s.State)
	assert.Empty(t, s.Rows)
	assert.Empty(t, st.reported())
}

func TestAgainResetsRound(t *testing.T) {
	r := New(&fakeOracle{secret: "crane"}, lang("en"))
	require.NoError(t, r.Start(context.Background(), 5))
	require.NoError(t, guess(t, r, "slate"))
	require.NoError(t, guess(t, r, "crane"))
	require.Equal(t, Won, r.State())

	require.NoError(t, r.Start(context.Background(), 5))
	s := r.Snapshot()
	assert.Equal(t, Guessing, s.State)
	assert.Equal(t, 0, s.Attempt)
	assert.Empty(t, s.Rows)
	assert.Empty(t, s.Guess)
}

func TestTypeAndBackspace(t *testing.T) {
	r := New(&fakeOracle{}, lang("en"))
	assert.False(t, r.Type('a'), "idle round ignores input")

	require.NoError(t, r.Start(context.Background(), 5))
	assert.True(t, r.Type('c'))
	assert.False(t, r.Type('1'))
	assert.False(t, r.Type('ü'), "not on the English keyboard")
	for _, ch := range "rane" {
		require.True(t, r.Type(ch))
	}
	assert.False(t, r.Type('s'), "row is full")
	assert.Equal(t, "CRANE", r.Snapshot().Guess)

	assert.True(t, r.Backspace())
	assert.Equal(t, "CRAN", r.Snapshot().Guess)
	board := r.Snapshot().Board()
	assert.Equal(t, "N", board[0][3].Letter)
	assert.Equal(t, game.Status(""), board[0][3].Status)
	assert.Equal(t, "", board[0][4].Letter)
}

func TestGermanKeyboard(t *testing.T) {
	r := New(&fakeOracle{}, lang("de"))
	require.NoError(t, r.Start(context.Background(), 5))
	assert.True(t, r.Type('ü'))
	assert.Equal(t, "Ü", r.Snapshot().Guess)
	require.NoError(t, r.SetGuess("flöte"))
	assert.Equal(t, "FLÖTE", r.Snapshot().Guess)
}

func TestSetGuessValidation(t *testing.T) {
	r := New(&fakeOracle{}, lang("en"))
	assert.ErrorIs(t, r.SetGuess("crane"), ErrNotActive)

	require.NoError(t, r.Start(context.Background(), 5))
	assert.ErrorIs(t, r.SetGuess("cranes"), ErrGuessTooLong)
	assert.ErrorIs(t, r.SetGuess("cr4ne"), ErrInvalidLetter)
	require.NoError(t, r.SetGuess("  crane "))
	assert.Equal(t, "CRANE", r.Snapshot().Guess)
}

func TestLayout(t *testing.T) {
	en := Layout("en")
	require.Len(t, en, 3)
	assert.Equal(t, "Q", en[0][0])
	assert.Equal(t, KeyBackspace, en[2][len(en[2])-1])

	de := Layout("de")
	assert.Contains(t, de[0], "Ü")
	assert.Contains(t, de[1], "Ö")
	assert.Contains(t, de[1], "Ä")
	assert.Equal(t, "Z", de[0][5])

	assert.Equal(t, en, Layout("xx"))

	// Callers get copies.
	de[0][0] = "!"
	assert.Equal(t, "Q", Layout("de")[0][0])
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "guessing", Guessing.String())
	assert.Equal(t, "State(42)", State(42).String())
	assert.True(t, Lost.Terminal())
	assert.False(t, Blocked.Terminal())
}
