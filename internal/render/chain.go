package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/robalobadob/vocabgames/internal/wordchain"
)

// TimerBar renders left/total as a bar of width cells.
func TimerBar(left, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	left = max(0, min(left, total))
	filled := left * width / total
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Chain draws the duel: counter, required letter, timer and move log.
func Chain(s wordchain.Snapshot, th Theme) string {
	accent := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)

	next := "any"
	if s.RequiredLetter != 0 {
		next = accent.Render(string(unicode.ToUpper(s.RequiredLetter)))
	}
	lines := []string{
		accent.Render("WORD CHAIN") + fmt.Sprintf("  words: %d  next letter: %s", s.WordCount, next),
	}

	if s.State == wordchain.PlayerTurn {
		timer := lipgloss.NewStyle().Foreground(th.Correct)
		if s.Danger() {
			timer = lipgloss.NewStyle().Foreground(th.Danger).Bold(true)
		}
		lines = append(lines, timer.Render(fmt.Sprintf("%s %2ds", TimerBar(s.TimeLeft, wordchain.TurnSeconds, 30), s.TimeLeft)))
	}

	if len(s.Log) == 0 {
		lines = append(lines, "", "No words yet.")
	} else {
		lines = append(lines, "")
		lines = append(lines, lo.Map(s.Log, func(m wordchain.Move, _ int) string {
			who := lipgloss.NewStyle().Width(4).Foreground(th.Miss).Render(string(m.Author))
			if m.Author == wordchain.Player {
				who = lipgloss.NewStyle().Width(4).Foreground(th.Accent).Render(string(m.Author))
			}
			return who + " " + m.Word
		})...)
	}

	if s.Message != "" {
		lines = append(lines, "", s.Message)
	}
	return strings.Join(lines, "\n")
}
