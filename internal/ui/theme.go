package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
)

// Theme bundles palette, symbols and borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error lipgloss.Style
	Priority                             map[model.Priority]lipgloss.Style
	Border                               lipgloss.Border
	BorderColor                          lipgloss.TerminalColor
	SymOK, SymFail                       string
	BarFull, BarEmpty                    string
}

var current = themeFor("classic")

// SetTheme switches the active theme; unknown names fall back to classic.
func SetTheme(name string) { current = themeFor(name) }

// Current exposes what renderers need.
func Current() Theme { return current }

func themeFor(name string) Theme {
	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
			Muted:   lipgloss.NewStyle().Faint(true),
			Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Priority: map[model.Priority]lipgloss.Style{
				model.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
				model.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
				model.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
			},
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("13"),
			SymOK:       "✔", SymFail: "✖",
			BarFull: "█", BarEmpty: "░",
		}
	case "mono":
		plain := lipgloss.NewStyle()
		return Theme{
			Title: plain, Muted: plain, Accent: plain, Success: plain, Error: plain,
			Priority: map[model.Priority]lipgloss.Style{
				model.PriorityLow: plain, model.PriorityMedium: plain, model.PriorityHigh: plain,
			},
			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.NoColor{},
			SymOK:       "ok", SymFail: "error:",
			BarFull: "#", BarEmpty: "-",
		}
	default: // classic
		return Theme{
			Title:   lipgloss.NewStyle().Bold(true),
			Muted:   lipgloss.NewStyle().Faint(true),
			Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Priority: map[model.Priority]lipgloss.Style{
				model.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
				model.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
				model.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			},
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("8"),
			SymOK:       "✔", SymFail: "✖",
			BarFull: "█", BarEmpty: "░",
		}
	}
}

// PriorityStyle returns the style for p, or Muted for unknown values.
func (t Theme) PriorityStyle(p model.Priority) lipgloss.Style {
	if s, ok := t.Priority[p]; ok {
		return s
	}
	return t.Muted
}
