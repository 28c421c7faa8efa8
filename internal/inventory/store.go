package inventory

import (
	"sync"

	"github.com/minchain/minchain-p2p/internal/chain"
)

// Store holds one kind of object keyed by its id. Items are never replaced or removed.
type Store[V any] struct {
	items map[chain.ObjectID]V
	mu    sync.RWMutex
}

// NewStore creates an empty Store
func NewStore[V any]() *Store[V] {
	return &Store[V]{
		items: make(map[chain.ObjectID]V),
	}
}

// Contains checks whether or not the store contains an item with the given ID
func (store *Store[V]) Contains(id chain.ObjectID) bool {
	store.mu.RLock()
	defer store.mu.RUnlock()

	_, ok := store.items[id]
	return ok
}

// Get returns the item with the given ID
func (store *Store[V]) Get(id chain.ObjectID) (V, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	item, ok := store.items[id]
	return item, ok
}

// InsertIfAbsent adds the item unless one with the same ID is present.
// It returns true if this call inserted the item.
func (store *Store[V]) InsertIfAbsent(id chain.ObjectID, item V) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.items[id]; ok {
		return false
	}

	store.items[id] = item
	return true
}

// Len returns the number of items in the store
func (store *Store[V]) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return len(store.items)
}
