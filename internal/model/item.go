package model

import (
	"fmt"
	"strings"
)

// Item is a single entry of a list. Items are immutable once appended;
// Position is the 1-based insertion rank within the owning list.
type Item struct {
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// Row renders the item the way list views show it.
func (i Item) Row(v Vocabulary) string {
	return FormatRow(i, v)
}

// FormatRow renders "{position} - {text} - prioridade {label}".
func FormatRow(it Item, v Vocabulary) string {
	return fmt.Sprintf("%d - %s - prioridade %s", it.Position, it.Text, it.Priority.Label(v))
}

// NormalizeText trims the submitted text and rejects blank input.
func NormalizeText(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return t, nil
}

// Draft is a validated submission that has not been positioned yet.
type Draft struct {
	Text     string
	Priority Priority
}

// NewDraft validates raw text and priority input.
// Text is checked first so an empty submission reports the text field.
func NewDraft(text, priority string) (Draft, error) {
	t, err := NormalizeText(text)
	if err != nil {
		return Draft{}, err
	}
	p, err := ParsePriority(priority)
	if err != nil {
		return Draft{}, err
	}
	return Draft{Text: t, Priority: p}, nil
}
