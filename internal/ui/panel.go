package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
)

// OK prints a success line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymOK+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Render(t.SymFail+" "+msg))
}

// Bar renders a fixed-width bar for n out of total.
func Bar(n, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(n) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	t := Current()
	return strings.Repeat(t.BarFull, filled) + strings.Repeat(t.BarEmpty, width-filled)
}

// PanelString draws a framed box around lines using the current theme.
func PanelString(lines []string) string {
	t := Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// Panel prints PanelString(lines).
func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, PanelString(lines))
}

// Row styles one rendered item row by its priority.
// The text of the row is exactly model.FormatRow.
func Row(it model.Item, v model.Vocabulary) string {
	return Current().PriorityStyle(it.Priority).Render(model.FormatRow(it, v))
}

// ListLines builds the panel body for a list: header, rows and a
// per-priority summary.
func ListLines(l model.List, v model.Vocabulary) []string {
	t := Current()
	lines := []string{
		fmt.Sprintf("%s  %s %d", t.Title.Render("Lista"), t.Accent.Render("Total"), l.Len()),
		t.Muted.Render(string(l.ID)),
		"",
	}
	if l.Len() == 0 {
		lines = append(lines, t.Muted.Render("no items"))
	}
	for _, it := range l.Items {
		lines = append(lines, Row(it, v))
	}
	lines = append(lines, "")
	lines = append(lines, Summary(l, v)...)
	return lines
}

// Summary renders one bar per priority, highest first.
func Summary(l model.List, v model.Vocabulary) []string {
	t := Current()
	counts := l.Counts()
	out := make([]string, 0, len(model.Priorities))
	for i := len(model.Priorities) - 1; i >= 0; i-- {
		p := model.Priorities[i]
		out = append(out, fmt.Sprintf("%-6s %s %d",
			t.PriorityStyle(p).Render(p.Label(v)),
			t.Muted.Render(Bar(counts[p], l.Len(), 20)),
			counts[p],
		))
	}
	return out
}
