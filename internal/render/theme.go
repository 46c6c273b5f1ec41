// Package render turns round and duel snapshots into terminal text.
// It never reads state from anywhere but the snapshot it is given.
package render

import "github.com/charmbracelet/lipgloss"

// Theme is the palette for one of the selectable colour themes.
type Theme struct {
	Name    string
	Correct lipgloss.Color
	Present lipgloss.Color
	Miss    lipgloss.Color
	Empty   lipgloss.Color
	Accent  lipgloss.Color
	Danger  lipgloss.Color
	Text    lipgloss.Color
}

var themes = map[string]Theme{
	"amber": {
		Name:    "amber",
		Correct: lipgloss.Color("#6aaa64"),
		Present: lipgloss.Color("#e0a82e"),
		Miss:    lipgloss.Color("#5a5a5a"),
		Empty:   lipgloss.Color("#3a3a3c"),
		Accent:  lipgloss.Color("#ffb000"),
		Danger:  lipgloss.Color("#e53935"),
		Text:    lipgloss.Color("#ffffff"),
	},
	"sapphire": {
		Name:    "sapphire",
		Correct: lipgloss.Color("#2e7d32"),
		Present: lipgloss.Color("#1e88e5"),
		Miss:    lipgloss.Color("#37474f"),
		Empty:   lipgloss.Color("#263238"),
		Accent:  lipgloss.Color("#4fc3f7"),
		Danger:  lipgloss.Color("#ef5350"),
		Text:    lipgloss.Color("#ffffff"),
	},
	"arctic": {
		Name:    "arctic",
		Correct: lipgloss.Color("#00897b"),
		Present: lipgloss.Color("#80deea"),
		Miss:    lipgloss.Color("#90a4ae"),
		Empty:   lipgloss.Color("#cfd8dc"),
		Accent:  lipgloss.Color("#0277bd"),
		Danger:  lipgloss.Color("#c62828"),
		Text:    lipgloss.Color("#102027"),
	},
}

// ThemeFor returns the named theme, or amber.
func ThemeFor(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["amber"]
}
