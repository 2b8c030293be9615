package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Makepad-fr/tada/internal/cachemanager"
	"github.com/Makepad-fr/tada/internal/ident"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/memstore"
)

const pt = model.VocabularyPortuguese

func newRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r := New(memstore.New(), opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func newCachedRegistry(t *testing.T) *Registry {
	c := cachemanager.NewInMemoryCacheManager[model.ListID, model.List]("lists", time.Minute, time.Minute)
	return newRegistry(t, WithCache(c, time.Minute))
}

// registries runs fn against a plain and a cached registry.
func registries(t *testing.T, fn func(t *testing.T, r *Registry)) {
	t.Run("plain", func(t *testing.T) { fn(t, newRegistry(t)) })
	t.Run("cached", func(t *testing.T) { fn(t, newCachedRegistry(t)) })
}

// A new list keeps its first item, then a second one, rendered in order.
func TestRegistry_NewListThenAppend(t *testing.T) {
	registries(t, func(t *testing.T, r *Registry) {
		ctx := context.Background()

		l, err := r.CreateList(ctx)
		require.NoError(t, err)
		require.True(t, l.ID.IsValid())
		require.Empty(t, l.Items)

		l, err = r.AddItem(ctx, l.ID, "Comprar anzol", "high")
		require.NoError(t, err)
		rows, err := r.View(ctx, l.ID, pt)
		require.NoError(t, err)
		require.Equal(t, []string{"1 - Comprar anzol - prioridade alta"}, rows)

		_, err = r.AddItem(ctx, l.ID, "Comprar cola instantânea", "low")
		require.NoError(t, err)
		rows, err = r.View(ctx, l.ID, pt)
		require.NoError(t, err)
		require.Equal(t, []string{
			"1 - Comprar anzol - prioridade alta",
			"2 - Comprar cola instantânea - prioridade baixa",
		}, rows)
	})
}

// A second list gets its own id and never shows the first list's items.
func TestRegistry_SecondListIsIsolated(t *testing.T) {
	registries(t, func(t *testing.T, r *Registry) {
		ctx := context.Background()

		edith, err := r.StartList(ctx, "Comprar anzol", "alta")
		require.NoError(t, err)
		_, err = r.AddItem(ctx, edith.ID, "Comprar cola instantânea", "baixa")
		require.NoError(t, err)

		francis, err := r.StartList(ctx, "Comprar leite", "baixa")
		require.NoError(t, err)
		require.NotEqual(t, edith.ID, francis.ID)

		rows, err := r.View(ctx, francis.ID, pt)
		require.NoError(t, err)
		require.Equal(t, []string{"1 - Comprar leite - prioridade baixa"}, rows)

		rows, err = r.View(ctx, edith.ID, pt)
		require.NoError(t, err)
		for _, row := range rows {
			assert.NotContains(t, row, "Comprar leite")
		}
		rows, err = r.View(ctx, francis.ID, pt)
		require.NoError(t, err)
		for _, row := range rows {
			assert.NotContains(t, row, "Comprar anzol")
		}
	})
}

// Blank text is rejected and leaves the list unchanged.
func TestRegistry_EmptyTextRejected(t *testing.T) {
	registries(t, func(t *testing.T, r *Registry) {
		ctx := context.Background()
		l, err := r.StartList(ctx, "Comprar anzol", "alta")
		require.NoError(t, err)

		for _, text := range []string{"", "   ", "\t\n"} {
			_, err = r.AddItem(ctx, l.ID, text, "alta")
			require.True(t, model.IsValidation(err), "text %q: expected ValidationError, got %v", text, err)
		}
		_, err = r.AddItem(ctx, l.ID, "Comprar leite", "urgente")
		require.True(t, model.IsValidation(err))

		got, err := r.GetList(ctx, l.ID)
		require.NoError(t, err)
		require.Equal(t, l, got)
	})
}

// Ids that were never issued are not found for reads and writes.
func TestRegistry_UnknownList(t *testing.T) {
	registries(t, func(t *testing.T, r *Registry) {
		ctx := context.Background()
		unknown := ident.UUID{}.Next()

		_, err := r.GetList(ctx, unknown)
		var nf *model.NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, unknown, nf.ID)

		_, err = r.View(ctx, unknown, pt)
		require.True(t, model.IsNotFound(err))

		_, err = r.AddItem(ctx, unknown, "Comprar leite", "baixa")
		require.True(t, model.IsNotFound(err))

		_, err = r.GetList(ctx, unknown)
		require.True(t, model.IsNotFound(err), "append to unknown id must not create it")

		_, loaded := r.locks.Load(unknown)
		require.False(t, loaded, "probing unknown ids must not retain locks")
	})
}

func TestRegistry_StartListValidatesBeforeCreating(t *testing.T) {
	ctx := context.Background()
	var issued []model.ListID
	gen := ident.Func(func() model.ListID {
		id := ident.UUID{}.Next()
		issued = append(issued, id)
		return id
	})
	r := newRegistry(t, WithGenerator(gen))

	_, err := r.StartList(ctx, "  ", "alta")
	require.True(t, model.IsValidation(err))
	_, err = r.StartList(ctx, "Comprar leite", "")
	require.True(t, model.IsValidation(err))
	require.Empty(t, issued, "no id may be issued for a rejected submission")
}

func TestRegistry_RetriesOnIDCollision(t *testing.T) {
	ctx := context.Background()
	ids := []model.ListID{"a", "a", "a", "b"}
	n := 0
	gen := ident.Func(func() model.ListID {
		id := ids[n]
		n++
		return id
	})
	r := newRegistry(t, WithGenerator(gen))

	first, err := r.CreateList(ctx)
	require.NoError(t, err)
	require.Equal(t, model.ListID("a"), first.ID)

	second, err := r.CreateList(ctx)
	require.NoError(t, err)
	require.Equal(t, model.ListID("b"), second.ID)
	require.Equal(t, 4, n)
}

func TestRegistry_IDExhausted(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, WithGenerator(ident.Func(func() model.ListID { return "same" })))

	_, err := r.CreateList(ctx)
	require.NoError(t, err)
	_, err = r.CreateList(ctx)
	require.ErrorIs(t, err, ErrIDExhausted)
}

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) Append(context.Context, model.ListID, model.Draft) (model.Item, error) {
	return model.Item{}, f.err
}

func TestRegistry_StoreErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	r := New(failingStore{Store: memstore.New(), err: boom})

	l, err := r.CreateList(ctx)
	require.NoError(t, err)
	_, err = r.AddItem(ctx, l.ID, "Comprar anzol", "alta")
	require.ErrorIs(t, err, boom)
	require.False(t, model.IsNotFound(err))
	require.False(t, model.IsValidation(err))
}

func TestRegistry_ReturnedListsDoNotAliasCache(t *testing.T) {
	ctx := context.Background()
	r := newCachedRegistry(t)

	l, err := r.StartList(ctx, "Comprar anzol", "alta")
	require.NoError(t, err)
	l.Items[0].Text = "mutated"

	got, err := r.GetList(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, "Comprar anzol", got.Items[0].Text)
	got.Items[0].Text = "mutated again"

	again, err := r.GetList(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, "Comprar anzol", again.Items[0].Text)
}

func TestRegistry_ResubmissionAppendsAgain(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t)
	l, err := r.StartList(ctx, "Comprar anzol", "alta")
	require.NoError(t, err)
	l, err = r.AddItem(ctx, l.ID, "Comprar anzol", "alta")
	require.NoError(t, err)
	require.Equal(t, []string{
		"1 - Comprar anzol - prioridade alta",
		"2 - Comprar anzol - prioridade alta",
	}, l.Rows(pt))
}

func TestRegistry_ConcurrentSubmissions(t *testing.T) {
	registries(t, func(t *testing.T, r *Registry) {
		ctx := context.Background()
		a, err := r.CreateList(ctx)
		require.NoError(t, err)
		b, err := r.CreateList(ctx)
		require.NoError(t, err)

		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(3)
			go func(i int) {
				defer wg.Done()
				if _, err := r.AddItem(ctx, a.ID, fmt.Sprintf("a%d", i), "low"); err != nil {
					t.Errorf("add to a: %v", err)
				}
			}(i)
			go func(i int) {
				defer wg.Done()
				if _, err := r.AddItem(ctx, b.ID, fmt.Sprintf("b%d", i), "high"); err != nil {
					t.Errorf("add to b: %v", err)
				}
			}(i)
			go func() {
				defer wg.Done()
				l, err := r.GetList(ctx, a.ID)
				if err != nil {
					t.Errorf("read a: %v", err)
					return
				}
				for j, it := range l.Items {
					if it.Position != j+1 || it.Text == "" {
						t.Errorf("read observed partial state: %+v", l.Items)
						return
					}
				}
			}()
		}
		wg.Wait()

		for _, id := range []model.ListID{a.ID, b.ID} {
			l, err := r.GetList(ctx, id)
			require.NoError(t, err)
			require.Len(t, l.Items, n)
			for j, it := range l.Items {
				require.Equal(t, j+1, it.Position)
				require.Equal(t, id == a.ID, it.Text[0] == 'a', "item %q leaked across lists", it.Text)
			}
		}
	})
}

func TestRegistry_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		r := New(memstore.New(), WithCache(
			cachemanager.NewInMemoryCacheManager[model.ListID, model.List]("lists", time.Minute, time.Minute),
			time.Minute,
		))

		numLists := rapid.IntRange(1, 5).Draw(rt, "numLists")
		ids := make([]model.ListID, 0, numLists)
		seen := map[model.ListID]bool{}
		for i := 0; i < numLists; i++ {
			l, err := r.CreateList(ctx)
			if err != nil {
				rt.Fatalf("create: %v", err)
			}
			if seen[l.ID] {
				rt.Fatalf("uniqueness violated: %s issued twice", l.ID)
			}
			seen[l.ID] = true
			ids = append(ids, l.ID)
		}

		want := map[model.ListID][]string{}
		ops := rapid.IntRange(0, 30).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			idx := rapid.IntRange(0, numLists-1).Draw(rt, "list")
			text := fmt.Sprintf("%s-%d", rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "text"), i)
			p := rapid.SampledFrom(model.Priorities).Draw(rt, "priority")
			if _, err := r.AddItem(ctx, ids[idx], text, string(p)); err != nil {
				rt.Fatalf("add: %v", err)
			}
			pos := len(want[ids[idx]]) + 1
			want[ids[idx]] = append(want[ids[idx]], model.FormatRow(model.Item{Position: pos, Text: text, Priority: p}, pt))

			// Interleave reads so cached snapshots are exercised.
			if rapid.Bool().Draw(rt, "read") {
				if _, err := r.GetList(ctx, ids[rapid.IntRange(0, numLists-1).Draw(rt, "readList")]); err != nil {
					rt.Fatalf("get: %v", err)
				}
			}
		}

		for _, id := range ids {
			first, err := r.View(ctx, id, pt)
			if err != nil {
				rt.Fatalf("view: %v", err)
			}
			second, err := r.View(ctx, id, pt)
			if err != nil {
				rt.Fatalf("view: %v", err)
			}
			if fmt.Sprint(first) != fmt.Sprint(second) {
				rt.Fatalf("reads differ without writes: %v vs %v", first, second)
			}
			if fmt.Sprint(first) != fmt.Sprint(want[id]) {
				rt.Fatalf("list %s: got %v, want %v", id, first, want[id])
			}
		}
	})
}

// flakyReloadStore fails Get once armed, after appends went through.
type flakyReloadStore struct {
	store.Store
	armed atomic.Bool
}

func (f *flakyReloadStore) Get(ctx context.Context, id model.ListID) (model.List, error) {
	if f.armed.Load() {
		return model.List{}, errors.New("read timeout")
	}
	return f.Store.Get(ctx, id)
}

func TestRegistry_ReloadFailureAfterAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("first item of a new list", func(t *testing.T) {
		s := &flakyReloadStore{Store: memstore.New()}
		s.armed.Store(true)
		r := New(s)

		l, err := r.StartList(ctx, "Comprar anzol", "alta")
		require.NoError(t, err)
		require.Equal(t, []string{"1 - Comprar anzol - prioridade alta"}, l.Rows(pt))

		s.armed.Store(false)
		got, err := r.GetList(ctx, l.ID)
		require.NoError(t, err)
		require.Equal(t, l, got)
	})

	t.Run("cached snapshot is extended", func(t *testing.T) {
		s := &flakyReloadStore{Store: memstore.New()}
		c := cachemanager.NewInMemoryCacheManager[model.ListID, model.List]("lists", time.Minute, time.Minute)
		r := New(s, WithCache(c, time.Minute))

		l, err := r.StartList(ctx, "Comprar anzol", "alta")
		require.NoError(t, err)

		s.armed.Store(true)
		l, err = r.AddItem(ctx, l.ID, "Comprar cola instantânea", "baixa")
		require.NoError(t, err)
		require.Equal(t, []string{
			"1 - Comprar anzol - prioridade alta",
			"2 - Comprar cola instantânea - prioridade baixa",
		}, l.Rows(pt))
	})

	t.Run("no snapshot reports the stored item", func(t *testing.T) {
		s := &flakyReloadStore{Store: memstore.New()}
		r := New(s)

		l, err := r.StartList(ctx, "Comprar anzol", "alta")
		require.NoError(t, err)
		_, err = r.GetList(ctx, l.ID)
		require.NoError(t, err)

		s.armed.Store(true)
		_, err = r.AddItem(ctx, l.ID, "Comprar cola instantânea", "baixa")
		var stored *ItemStoredError
		require.ErrorAs(t, err, &stored)
		assert.Equal(t, 2, stored.Item.Position)
		assert.Contains(t, err.Error(), "stored")

		s.armed.Store(false)
		got, err := r.GetList(ctx, l.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 2, "the item is persisted exactly once")
	})
}
