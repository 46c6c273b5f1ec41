package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statuses(tiles []Tile) []Status {
	out := make([]Status, len(tiles))
	for i, t := range tiles {
		out[i] = t.Status
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		target string
		want   []Status
	}{
		{
			name:   "exact match",
			guess:  "crane",
			target: "crane",
			want:   []Status{StatusCorrect, StatusCorrect, StatusCorrect, StatusCorrect, StatusCorrect},
		},
		{
			name:   "shared tail",
			guess:  "slate",
			target: "crane",
			want:   []Status{StatusMiss, StatusMiss, StatusCorrect, StatusMiss, StatusCorrect},
		},
		{
			name:   "repeated guess letter only counted once",
			guess:  "speed",
			target: "abide",
			want:   []Status{StatusMiss, StatusMiss, StatusPresent, StatusMiss, StatusPresent},
		},
		{
			name:   "correct consumes before present",
			guess:  "lolly",
			target: "hello",
			want:   []Status{StatusMiss, StatusPresent, StatusCorrect, StatusCorrect, StatusMiss},
		},
		{
			name:   "umlauts are single letters",
			guess:  "flöte",
			target: "flöte",
			want:   []Status{StatusCorrect, StatusCorrect, StatusCorrect, StatusCorrect, StatusCorrect},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Evaluate(tc.guess, tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.want, statuses(v.Tiles))
			assert.Equal(t, tc.guess == tc.target, v.IsComplete)
		})
	}
}

func TestEvaluateUppercasesLettersAndNormalizesInput(t *testing.T) {
	v, err := Evaluate("  CrAtE ", "CRANE")
	require.NoError(t, err)
	require.Len(t, v.Tiles, 5)
	assert.Equal(t, "C", v.Tiles[0].Letter)
	assert.Equal(t, "E", v.Tiles[4].Letter)
	assert.False(t, v.IsComplete)
	assert.Equal(t, "Keep trying.", v.Message)

	v, err = Evaluate("crane", "CRANE")
	require.NoError(t, err)
	assert.True(t, v.IsComplete)
	assert.Equal(t, "You guessed the word!", v.Message)
	assert.True(t, AllCorrect(v.Tiles))
}

func TestEvaluateRejectsNonLetters(t *testing.T) {
	_, err := Evaluate("cr4ne", "crane")
	assert.ErrorIs(t, err, ErrNotLetters)

	_, err = Evaluate("", "crane")
	assert.ErrorIs(t, err, ErrNotLetters)
}

func TestEvaluateLengthMismatch(t *testing.T) {
	v, err := Evaluate("cranes", "crane")
	require.NoError(t, err)
	require.Len(t, v.Tiles, 6)
	assert.Equal(t, StatusMiss, v.Tiles[5].Status)
	assert.False(t, v.IsComplete)

	v, err = Evaluate("xab", "ab")
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusMiss, StatusPresent, StatusMiss}, statuses(v.Tiles))

	v, err = Evaluate("ab", "xyb")
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusMiss, StatusMiss}, statuses(v.Tiles))
	assert.False(t, v.IsComplete)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusCorrect.Valid())
	assert.True(t, StatusPresent.Valid())
	assert.True(t, StatusMiss.Valid())
	assert.False(t, Status("absent").Valid())
	assert.False(t, AllCorrect(nil))
}
