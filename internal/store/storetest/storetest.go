// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// Factory opens a fresh, empty store for one test.
type Factory func(t *testing.T) store.Store

func newID() model.ListID { return model.ListID(uuid.NewString()) }

func draft(t testing.TB, text, priority string) model.Draft {
	t.Helper()
	d, err := model.NewDraft(text, priority)
	require.NoError(t, err)
	return d
}

// Run executes the shared suite against the backend built by open.
func Run(t *testing.T, open Factory) {
	t.Run("CreateThenGetEmpty", func(t *testing.T) { testCreateThenGetEmpty(t, open(t)) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, open(t)) })
	t.Run("GetUnknown", func(t *testing.T) { testGetUnknown(t, open(t)) })
	t.Run("AppendUnknown", func(t *testing.T) { testAppendUnknown(t, open(t)) })
	t.Run("AppendKeepsOrder", func(t *testing.T) { testAppendKeepsOrder(t, open(t)) })
	t.Run("ListsAreIsolated", func(t *testing.T) { testListsAreIsolated(t, open(t)) })
	t.Run("ReadIsIdempotent", func(t *testing.T) { testReadIsIdempotent(t, open(t)) })
	t.Run("SnapshotsDoNotAlias", func(t *testing.T) { testSnapshotsDoNotAlias(t, open(t)) })
	t.Run("ConcurrentAppendsSameList", func(t *testing.T) { testConcurrentAppendsSameList(t, open(t)) })
	t.Run("ConcurrentAppendsDifferentLists", func(t *testing.T) { testConcurrentAppendsDifferentLists(t, open(t)) })
	t.Run("OrderingProperty", func(t *testing.T) { testOrderingProperty(t, open) })
}

func testCreateThenGetEmpty(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := newID()
	require.NoError(t, s.Create(ctx, id))

	l, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, l.ID)
	require.Empty(t, l.Items)
}

func testCreateDuplicate(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := newID()
	require.NoError(t, s.Create(ctx, id))
	_, err := s.Append(ctx, id, draft(t, "Comprar anzol", "alta"))
	require.NoError(t, err)

	err = s.Create(ctx, id)
	require.ErrorIs(t, err, store.ErrDuplicateID)

	l, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, l.Items, 1, "a rejected Create must not reset the list")
}

func testGetUnknown(t *testing.T, s store.Store) {
	_, err := s.Get(context.Background(), newID())
	require.True(t, model.IsNotFound(err), "expected NotFoundError, got %v", err)
}

func testAppendUnknown(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := newID()
	_, err := s.Append(ctx, id, draft(t, "x", "low"))
	require.True(t, model.IsNotFound(err), "expected NotFoundError, got %v", err)

	_, err = s.Get(ctx, id)
	require.True(t, model.IsNotFound(err), "append to unknown id must not create it")
}

func testAppendKeepsOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := newID()
	require.NoError(t, s.Create(ctx, id))

	it, err := s.Append(ctx, id, draft(t, "Comprar anzol", "high"))
	require.NoError(t, err)
	require.Equal(t, 1, it.Position)

	it, err = s.Append(ctx, id, draft(t, "Comprar cola instantânea", "low"))
	require.NoError(t, err)
	require.Equal(t, 2, it.Position)

	l, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{
		"1 - Comprar anzol - prioridade alta",
		"2 - Comprar cola instantânea - prioridade baixa",
	}, l.Rows(model.VocabularyPortuguese))
}

func testListsAreIsolated(t *testing.T, s store.Store) {
	ctx := context.Background()
	edith, francis := newID(), newID()
	require.NoError(t, s.Create(ctx, edith))
	require.NoError(t, s.Create(ctx, francis))

	_, err := s.Append(ctx, edith, draft(t, "Comprar anzol", "alta"))
	require.NoError(t, err)
	_, err = s.Append(ctx, francis, draft(t, "Comprar leite", "baixa"))
	require.NoError(t, err)
	_, err = s.Append(ctx, edith, draft(t, "Comprar cola instantânea", "baixa"))
	require.NoError(t, err)

	e, err := s.Get(ctx, edith)
	require.NoError(t, err)
	f, err := s.Get(ctx, francis)
	require.NoError(t, err)

	require.Equal(t, []string{"1 - Comprar leite - prioridade baixa"}, f.Rows(model.VocabularyPortuguese))
	for _, it := range e.Items {
		require.NotEqual(t, "Comprar leite", it.Text)
	}
	require.Len(t, e.Items, 2)
}

func testReadIsIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := newID()
	require.NoError(t, s.Create(ctx, id))
	for i := 0; i < 3; i++ {
		_, err := s.Append(ctx, id, draft(t, fmt.Sprintf("item %d", i), "medium"))
		require.NoError(t, err)
	}
	a, err := s.Get(ctx, id)
	require.NoError(t, err)
	b, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func testSnapshotsDoNotAlias(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := newID()
	require.NoError(t, s.Create(ctx, id))
	_, err := s.Append(ctx, id, draft(t, "original", "low"))
	require.NoError(t, err)

	l, err := s.Get(ctx, id)
	require.NoError(t, err)
	l.Items[0].Text = "mutated"

	again, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "original", again.Items[0].Text)
}

func testConcurrentAppendsSameList(t *testing.T, s store.Store) {
	ctx := context.Background()
	id := newID()
	require.NoError(t, s.Create(ctx, id))

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := model.Draft{Text: fmt.Sprintf("item %d", i), Priority: model.PriorityMedium}
			if _, err := s.Append(ctx, id, d); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	l, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, l.Items, n)
	seen := make(map[string]bool, n)
	for i, it := range l.Items {
		require.Equal(t, i+1, it.Position, "positions must be gap-free and ordered")
		require.False(t, seen[it.Text], "item %q stored twice", it.Text)
		seen[it.Text] = true
	}
}

func testConcurrentAppendsDifferentLists(t *testing.T, s store.Store) {
	ctx := context.Background()
	const lists, perList = 5, 10
	ids := make([]model.ListID, lists)
	for i := range ids {
		ids[i] = newID()
		require.NoError(t, s.Create(ctx, ids[i]))
	}

	var wg sync.WaitGroup
	for li, id := range ids {
		wg.Add(1)
		go func(li int, id model.ListID) {
			defer wg.Done()
			for j := 0; j < perList; j++ {
				d := model.Draft{Text: fmt.Sprintf("list %d item %d", li, j), Priority: model.PriorityLow}
				if _, err := s.Append(ctx, id, d); err != nil {
					t.Errorf("append: %v", err)
					return
				}
			}
		}(li, id)
	}
	wg.Wait()

	for li, id := range ids {
		l, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.Len(t, l.Items, perList)
		for j, it := range l.Items {
			require.Equal(t, fmt.Sprintf("list %d item %d", li, j), it.Text)
			require.Equal(t, j+1, it.Position)
		}
	}
}

// testOrderingProperty checks that any sequence of appends spread over
// several lists reads back per list, in order, with nothing leaking across.
func testOrderingProperty(t *testing.T, open Factory) {
	rapid.Check(t, func(r *rapid.T) {
		ctx := context.Background()
		s := open(t)
		numLists := rapid.IntRange(1, 4).Draw(r, "numLists")
		ids := make([]model.ListID, numLists)
		for i := range ids {
			ids[i] = newID()
			if err := s.Create(ctx, ids[i]); err != nil {
				r.Fatalf("create: %v", err)
			}
		}

		want := make(map[model.ListID][]model.Draft, numLists)
		ops := rapid.IntRange(0, 20).Draw(r, "ops")
		for i := 0; i < ops; i++ {
			target := ids[rapid.IntRange(0, numLists-1).Draw(r, "target")]
			d := model.Draft{
				Text:     rapid.StringMatching(`[a-zA-Z][a-zA-Z0-9 ]{0,15}`).Draw(r, "text"),
				Priority: rapid.SampledFrom(model.Priorities).Draw(r, "priority"),
			}
			d.Text = fmt.Sprintf("%s#%d", d.Text, i)
			if _, err := s.Append(ctx, target, d); err != nil {
				r.Fatalf("append: %v", err)
			}
			want[target] = append(want[target], d)
		}

		for _, id := range ids {
			l, err := s.Get(ctx, id)
			if err != nil {
				r.Fatalf("get: %v", err)
			}
			if len(l.Items) != len(want[id]) {
				r.Fatalf("list %s: got %d items, want %d", id, len(l.Items), len(want[id]))
			}
			for i, it := range l.Items {
				w := want[id][i]
				if it.Position != i+1 || it.Text != w.Text || it.Priority != w.Priority {
					r.Fatalf("list %s item %d: got %+v, want %+v at position %d", id, i, it, w, i+1)
				}
			}
		}
	})
}
