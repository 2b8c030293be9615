package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"low", PriorityLow},
		{"medium", PriorityMedium},
		{"high", PriorityHigh},
		{"baixa", PriorityLow},
		{"média", PriorityMedium},
		{"media", PriorityMedium},
		{"alta", PriorityHigh},
		{"  HIGH ", PriorityHigh},
		{"Alta", PriorityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParsePriority_Invalid(t *testing.T) {
	for _, in := range []string{"", "urgent", "3", "altíssima"} {
		_, err := ParsePriority(in)
		require.Error(t, err, "input %q", in)
		require.True(t, IsValidation(err))
	}
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "alta", PriorityHigh.Label(VocabularyPortuguese))
	assert.Equal(t, "média", PriorityMedium.Label(VocabularyPortuguese))
	assert.Equal(t, "baixa", PriorityLow.Label(VocabularyPortuguese))
	assert.Equal(t, "high", PriorityHigh.Label(VocabularyEnglish))
	assert.Equal(t, "baixa", PriorityLow.Label(Vocabulary("xx")))
}

func TestPriorityNext(t *testing.T) {
	assert.Equal(t, PriorityMedium, PriorityLow.Next())
	assert.Equal(t, PriorityHigh, PriorityMedium.Next())
	assert.Equal(t, PriorityLow, PriorityHigh.Next())
	assert.Equal(t, PriorityLow, Priority("bogus").Next())
}

func TestFormatRow(t *testing.T) {
	it := Item{Position: 1, Text: "Comprar anzol", Priority: PriorityHigh}
	require.Equal(t, "1 - Comprar anzol - prioridade alta", FormatRow(it, VocabularyPortuguese))
	require.Equal(t, "1 - Comprar anzol - prioridade high", it.Row(VocabularyEnglish))
}

func TestNewDraft(t *testing.T) {
	d, err := NewDraft("  Comprar leite  ", "baixa")
	require.NoError(t, err)
	require.Equal(t, Draft{Text: "Comprar leite", Priority: PriorityLow}, d)

	_, err = NewDraft("   ", "alta")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "text", ve.Field)

	_, err = NewDraft("x", "nope")
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "priority", ve.Field)
}

func TestListIDIsValid(t *testing.T) {
	assert.False(t, ListID("").IsValid())
	assert.False(t, ListID("123").IsValid())
	assert.True(t, ListID("6ba7b810-9dad-41d1-80b4-00c04fd430c8").IsValid())
}

func TestListCloneDoesNotAlias(t *testing.T) {
	l := List{ID: "a", Items: []Item{{Position: 1, Text: "x", Priority: PriorityLow}}}
	c := l.Clone()
	c.Items[0].Text = "changed"
	require.Equal(t, "x", l.Items[0].Text)
}

func TestListCountsAndRows(t *testing.T) {
	l := List{ID: "a", Items: []Item{
		{Position: 1, Text: "Comprar anzol", Priority: PriorityHigh},
		{Position: 2, Text: "Comprar cola instantânea", Priority: PriorityLow},
	}}
	require.Equal(t, []string{
		"1 - Comprar anzol - prioridade alta",
		"2 - Comprar cola instantânea - prioridade baixa",
	}, l.Rows(VocabularyPortuguese))
	c := l.Counts()
	require.Equal(t, 1, c[PriorityHigh])
	require.Equal(t, 1, c[PriorityLow])
	require.Equal(t, 0, c[PriorityMedium])
}

func TestErrorHelpers(t *testing.T) {
	nf := fmt.Errorf("wrapped: %w", &NotFoundError{ID: "abc"})
	require.True(t, IsNotFound(nf))
	require.False(t, IsValidation(nf))
	require.Contains(t, nf.Error(), "list not found: abc")
}
