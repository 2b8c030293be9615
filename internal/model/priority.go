package model

import "strings"

// Priority is the three-tier importance tag of an item.
// The canonical (stored) form is the English word.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Vocabulary selects the words used to label priorities.
type Vocabulary string

const (
	VocabularyPortuguese Vocabulary = "pt"
	VocabularyEnglish    Vocabulary = "en"
)

var labels = map[Vocabulary]map[Priority]string{
	VocabularyPortuguese: {PriorityLow: "baixa", PriorityMedium: "média", PriorityHigh: "alta"},
	VocabularyEnglish:    {PriorityLow: "low", PriorityMedium: "medium", PriorityHigh: "high"},
}

var aliases = map[string]Priority{
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"high":   PriorityHigh,
	"baixa":  PriorityLow,
	"média":  PriorityMedium,
	"media":  PriorityMedium,
	"alta":   PriorityHigh,
}

// ParsePriority accepts either vocabulary, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if p, ok := aliases[key]; ok {
		return p, nil
	}
	return "", &ValidationError{Field: "priority", Reason: "must be one of low, medium, high (baixa, média, alta)", Value: s}
}

// IsValid reports whether p is one of the canonical priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Label returns the word for p in vocabulary v. Unknown vocabularies
// fall back to Portuguese.
func (p Priority) Label(v Vocabulary) string {
	words, ok := labels[v]
	if !ok {
		words = labels[VocabularyPortuguese]
	}
	if l, ok := words[p]; ok {
		return l
	}
	return string(p)
}

// Next cycles low -> medium -> high -> low.
func (p Priority) Next() Priority {
	for i, q := range Priorities {
		if q == p {
			return Priorities[(i+1)%len(Priorities)]
		}
	}
	return PriorityLow
}

func (p Priority) String() string { return string(p) }

// ParseVocabulary maps a locale setting to a Vocabulary.
func ParseVocabulary(s string) (Vocabulary, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pt", "pt-br", "pt_br", "":
		return VocabularyPortuguese, true
	case "en", "en-us", "en_us":
		return VocabularyEnglish, true
	}
	return "", false
}
