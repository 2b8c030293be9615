// Package registry creates lists, appends items to them and serves reads.
//
// Every operation on a list runs under that list's lock: writes take it
// exclusively, reads share it. Lists never share a lock, so submissions to
// different lists proceed in parallel. A read-through cache of list
// snapshots sits in front of the store; it is filled under the read lock
// and replaced under the write lock, so it never serves a stale list.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Makepad-fr/tada/internal/cachemanager"
	"github.com/Makepad-fr/tada/internal/ident"
	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// maxIDAttempts bounds retries when a generated id collides.
const maxIDAttempts = 5

// ErrIDExhausted is returned when no fresh id could be allocated.
var ErrIDExhausted = errors.New("could not allocate a unique list id")

// ItemStoredError reports an append that was persisted but whose list
// could not be read back. Retrying would add the item a second time.
type ItemStoredError struct {
	ListID model.ListID
	Item   model.Item
	Err    error
}

func (e *ItemStoredError) Error() string {
	return fmt.Sprintf("item %d stored in list %s, but reloading the list failed: %v", e.Item.Position, e.ListID, e.Err)
}

func (e *ItemStoredError) Unwrap() error { return e.Err }

// Registry owns lists, keyed by id.
type Registry struct {
	store    store.Store
	ids      ident.Generator
	cache    cachemanager.CacheManager[model.ListID, model.List]
	cacheTTL time.Duration
	locks    sync.Map // model.ListID -> *sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithGenerator overrides the id generator.
func WithGenerator(g ident.Generator) Option {
	return func(r *Registry) { r.ids = g }
}

// WithCache enables the snapshot cache with the given entry ttl.
func WithCache(c cachemanager.CacheManager[model.ListID, model.List], ttl time.Duration) Option {
	return func(r *Registry) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// New returns a registry over s.
func New(s store.Store, opts ...Option) *Registry {
	r := &Registry{store: s, ids: ident.Default}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) lock(id model.ListID) *sync.RWMutex {
	mu, _ := r.locks.LoadOrStore(id, &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}

// knownLock returns id's lock, first checking that the list exists when
// no lock has been handed out yet. Probing unknown ids leaves nothing behind.
func (r *Registry) knownLock(ctx context.Context, id model.ListID) (*sync.RWMutex, error) {
	if mu, ok := r.locks.Load(id); ok {
		return mu.(*sync.RWMutex), nil
	}
	if _, err := r.store.Get(ctx, id); err != nil {
		if model.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	return r.lock(id), nil
}

// CreateList allocates a new empty list under a never-issued id.
func (r *Registry) CreateList(ctx context.Context) (model.List, error) {
	id, err := r.allocate(ctx)
	if err != nil {
		return model.List{}, err
	}
	l := model.List{ID: id, Items: []model.Item{}}
	r.remember(ctx, l)
	return l.Clone(), nil
}

// allocate creates a store entry for a fresh id, retrying on collisions.
func (r *Registry) allocate(ctx context.Context) (model.ListID, error) {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id := r.ids.Next()
		err := r.store.Create(ctx, id)
		if err == nil {
			log.Info(log.CatRegistry, "list created", "list", id)
			return id, nil
		}
		if !errors.Is(err, store.ErrDuplicateID) {
			return "", fmt.Errorf("create list: %w", err)
		}
		log.Warn(log.CatRegistry, "generated id already taken", "list", id, "attempt", attempt)
	}
	return "", ErrIDExhausted
}

// GetList returns a snapshot of the list, or *model.NotFoundError.
func (r *Registry) GetList(ctx context.Context, id model.ListID) (model.List, error) {
	mu, err := r.knownLock(ctx, id)
	if err != nil {
		return model.List{}, err
	}
	mu.RLock()
	defer mu.RUnlock()

	if r.cache != nil {
		if l, ok := r.cache.GetWithRefresh(ctx, id, r.cacheTTL); ok {
			return l.Clone(), nil
		}
	}
	l, err := r.store.Get(ctx, id)
	if err != nil {
		if model.IsNotFound(err) {
			return model.List{}, err
		}
		return model.List{}, fmt.Errorf("get list: %w", err)
	}
	r.remember(ctx, l)
	return l, nil
}

// AddItem validates the submission and appends it to list id.
// On any error the list is left unchanged.
func (r *Registry) AddItem(ctx context.Context, id model.ListID, text, priority string) (model.List, error) {
	d, err := model.NewDraft(text, priority)
	if err != nil {
		return model.List{}, err
	}
	mu, err := r.knownLock(ctx, id)
	if err != nil {
		return model.List{}, err
	}
	mu.Lock()
	defer mu.Unlock()
	return r.appendLocked(ctx, id, d, r.cached(ctx, id))
}

// appendLocked must be called with id's write lock held. prev, when known,
// is the list before the append; it stands in if the reload fails.
func (r *Registry) appendLocked(ctx context.Context, id model.ListID, d model.Draft, prev *model.List) (model.List, error) {
	it, err := r.store.Append(ctx, id, d)
	if err != nil {
		r.forget(ctx, id)
		if model.IsNotFound(err) {
			return model.List{}, err
		}
		log.ErrorErr(log.CatRegistry, "append failed", err, "list", id)
		return model.List{}, fmt.Errorf("add item: %w", err)
	}
	log.Debug(log.CatRegistry, "item appended", "list", id, "position", it.Position, "priority", it.Priority)

	l, err := r.store.Get(ctx, id)
	if err != nil {
		r.forget(ctx, id)
		if prev != nil && prev.Len() == it.Position-1 {
			l = prev.Clone()
			l.Items = append(l.Items, it)
			log.Warn(log.CatRegistry, "reload after append failed, extended previous snapshot", "list", id, "error", err.Error())
			r.remember(ctx, l)
			return l.Clone(), nil
		}
		log.ErrorErr(log.CatRegistry, "reload after append failed", err, "list", id, "position", it.Position)
		return model.List{}, &ItemStoredError{ListID: id, Item: it, Err: err}
	}
	r.remember(ctx, l)
	return l, nil
}

// StartList creates a list holding one first item. Validation happens
// before anything is created, so a rejected submission leaves no list behind.
func (r *Registry) StartList(ctx context.Context, text, priority string) (model.List, error) {
	d, err := model.NewDraft(text, priority)
	if err != nil {
		return model.List{}, err
	}
	id, err := r.allocate(ctx)
	if err != nil {
		return model.List{}, err
	}
	mu := r.lock(id)
	mu.Lock()
	defer mu.Unlock()
	l, err := r.appendLocked(ctx, id, d, &model.List{ID: id, Items: []model.Item{}})
	if err != nil {
		log.ErrorErr(log.CatRegistry, "first item not stored, list left empty", err, "list", id)
		return model.List{}, err
	}
	return l, nil
}

// View returns the rendered rows of list id in order.
func (r *Registry) View(ctx context.Context, id model.ListID, v model.Vocabulary) ([]string, error) {
	l, err := r.GetList(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.Rows(v), nil
}

// Close closes the underlying store.
func (r *Registry) Close() error {
	if r.cache != nil {
		_ = r.cache.Flush(context.Background())
	}
	return r.store.Close()
}

func (r *Registry) remember(ctx context.Context, l model.List) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, l.ID, l.Clone(), r.cacheTTL)
}

// cached returns the cached snapshot of id, or nil.
func (r *Registry) cached(ctx context.Context, id model.ListID) *model.List {
	if r.cache == nil {
		return nil
	}
	l, ok := r.cache.Get(ctx, id)
	if !ok {
		return nil
	}
	return &l
}

func (r *Registry) forget(ctx context.Context, id model.ListID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, id)
}
