// Package model holds the domain types for priority to-do lists.
// It has no knowledge of storage or presentation.
package model

import "github.com/google/uuid"

// ListID is the opaque token that addresses a list.
type ListID string

func (id ListID) String() string { return string(id) }

// IsValid reports whether id has the shape of an issued token.
// It says nothing about whether the list exists.
func (id ListID) IsValid() bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(string(id))
	return err == nil
}

// List is a snapshot of one list and its items in insertion order.
type List struct {
	ID    ListID `json:"id"`
	Items []Item `json:"items"`
}

// Len returns the number of items.
func (l List) Len() int { return len(l.Items) }

// Rows renders every item in order.
func (l List) Rows(v Vocabulary) []string {
	out := make([]string, 0, len(l.Items))
	for _, it := range l.Items {
		out = append(out, it.Row(v))
	}
	return out
}

// Counts tallies items per priority.
func (l List) Counts() map[Priority]int {
	c := make(map[Priority]int, len(Priorities))
	for _, it := range l.Items {
		c[it.Priority]++
	}
	return c
}

// Clone returns a deep copy so callers cannot alias stored state.
func (l List) Clone() List {
	items := make([]Item, len(l.Items))
	copy(items, l.Items)
	return List{ID: l.ID, Items: items}
}
