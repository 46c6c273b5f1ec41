// internal/game/types.go
//
// Core type definitions for guess judging.
// Defines:
//   - Status: per-letter result of a guess (correct/present/miss).
//   - Tile: one judged letter.
//   - Verdict: the full judgement for one guess.

package game

// Status represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the answer at this position.
//   - "present": letter exists in the answer but at a different position.
//   - "miss":    letter does not occur (or all its occurrences are used up).
type Status string

const (
	StatusCorrect Status = "correct"
	StatusPresent Status = "present"
	StatusMiss    Status = "miss"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusCorrect, StatusPresent, StatusMiss:
		return true
	}
	return false
}

// Tile is the judgement for one letter, in guess order.
type Tile struct {
	Letter string `json:"letter"`
	Status Status `json:"status"`
}

// Verdict is what the oracle returns for a guess.
type Verdict struct {
	Tiles      []Tile `json:"tiles"`
	IsComplete bool   `json:"is_complete"`
	Message    string `json:"message"`
}
