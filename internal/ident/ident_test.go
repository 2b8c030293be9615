package ident

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
)

func TestUUID_NextIsValidAndUnique(t *testing.T) {
	g := UUID{}
	seen := make(map[model.ListID]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := g.Next()
		require.True(t, id.IsValid(), "generated id %q should parse", id)
		_, dup := seen[id]
		require.False(t, dup, "id %q issued twice", id)
		seen[id] = struct{}{}
	}
}

func TestFunc(t *testing.T) {
	n := 0
	g := Func(func() model.ListID {
		n++
		return model.ListID([]string{"a", "b"}[n-1])
	})
	require.Equal(t, model.ListID("a"), g.Next())
	require.Equal(t, model.ListID("b"), g.Next())
}
