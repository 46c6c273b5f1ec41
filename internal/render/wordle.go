package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/robalobadob/vocabgames/internal/apiclient"
	"github.com/robalobadob/vocabgames/internal/game"
	"github.com/robalobadob/vocabgames/internal/wordle"
)

func tileStyle(th Theme, st game.Status) lipgloss.Style {
	bg := th.Empty
	switch st {
	case game.StatusCorrect:
		bg = th.Correct
	case game.StatusPresent:
		bg = th.Present
	case game.StatusMiss:
		bg = th.Miss
	}
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(th.Text).
		Bold(true).
		Width(3).
		Align(lipgloss.Center)
}

// Board draws the MaxAttempts x WordLength grid.
func Board(s wordle.Snapshot, th Theme) string {
	rows := lo.Map(s.Board(), func(row []game.Tile, _ int) string {
		cells := lo.Map(row, func(t game.Tile, _ int) string {
			letter := t.Letter
			if letter == "" {
				letter = "·"
			}
			return tileStyle(th, t.Status).Render(letter)
		})
		return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	})
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// KeyStatuses folds all feedback into the best status seen per letter:
// correct beats present beats miss.
func KeyStatuses(rows []wordle.Row) map[string]game.Status {
	rank := map[game.Status]int{game.StatusMiss: 1, game.StatusPresent: 2, game.StatusCorrect: 3}
	out := make(map[string]game.Status)
	for _, row := range rows {
		for _, t := range row.Tiles {
			if rank[t.Status] > rank[out[t.Letter]] {
				out[t.Letter] = t.Status
			}
		}
	}
	return out
}

// Keyboard draws the on-screen keyboard for the round's language with keys
// coloured by KeyStatuses.
func Keyboard(s wordle.Snapshot, th Theme) string {
	known := KeyStatuses(s.Rows)
	lines := lo.Map(wordle.Layout(s.Lang), func(row []string, _ int) string {
		keys := lo.Map(row, func(k string, _ int) string {
			return tileStyle(th, known[k]).Render(k)
		})
		return strings.Join(keys, " ")
	})
	return strings.Join(lines, "\n")
}

// Wordle draws the whole round: header, board, keyboard and status line.
func Wordle(s wordle.Snapshot, th Theme) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(th.Accent).
		Render(fmt.Sprintf("WORDLE  %s · %d letters · attempt %d/%d",
			strings.ToUpper(s.Lang), s.WordLength, min(s.Attempt+1, s.MaxAttempts), s.MaxAttempts))
	parts := []string{header, "", Board(s, th), "", Keyboard(s, th)}
	if s.Message != "" {
		parts = append(parts, "", s.Message)
	}
	return strings.Join(parts, "\n")
}

// Stats draws the Wordle counters.
func Stats(st apiclient.Stats, th Theme) string {
	label := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
	rate := 0
	if st.Played > 0 {
		rate = st.Wins * 100 / st.Played
	}
	return strings.Join([]string{
		label.Render("Played") + fmt.Sprintf("  %d", st.Played),
		label.Render("Wins") + fmt.Sprintf("    %d (%d%%)", st.Wins, rate),
		label.Render("Losses") + fmt.Sprintf("  %d", st.Losses),
		label.Render("Streak") + fmt.Sprintf("  %d", st.WinStreak),
	}, "\n")
}
