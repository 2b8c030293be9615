// Package memstore keeps lists in process memory. Nothing survives a restart.
package memstore

import (
	"context"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

type list struct {
	mu    sync.RWMutex
	items []model.Item
}

// Store is an in-memory store.Store. The map lock only guards membership;
// each list has its own lock so different lists never contend.
type Store struct {
	mu    sync.RWMutex
	lists map[model.ListID]*list
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{lists: make(map[model.ListID]*list)}
}

func (s *Store) lookup(id model.ListID) (*list, error) {
	s.mu.RLock()
	l, ok := s.lists[id]
	s.mu.RUnlock()
	if !ok {
		return nil, &model.NotFoundError{ID: id}
	}
	return l, nil
}

func (s *Store) Create(_ context.Context, id model.ListID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[id]; ok {
		return store.ErrDuplicateID
	}
	s.lists[id] = &list{}
	return nil
}

func (s *Store) Append(_ context.Context, id model.ListID, d model.Draft) (model.Item, error) {
	l, err := s.lookup(id)
	if err != nil {
		return model.Item{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	it := model.Item{Position: len(l.items) + 1, Text: d.Text, Priority: d.Priority}
	l.items = append(l.items, it)
	return it, nil
}

func (s *Store) Get(_ context.Context, id model.ListID) (model.List, error) {
	l, err := s.lookup(id)
	if err != nil {
		return model.List{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return model.List{ID: id, Items: l.items}.Clone(), nil
}

func (s *Store) Close() error { return nil }
