package utils

import (
	"iter"
	"sync"
)

// OrderedSet is a thread-safe map that remembers the order in which keys were first inserted.
// Overwriting a key updates its value in place, so the key keeps its original position.
type OrderedSet[K comparable, V any] struct {
	itemPos map[K]int // position of the item in the list
	keys    []K
	items   []V
	lock    sync.RWMutex
}

func NewOrderedSet[K comparable, V any]() *OrderedSet[K, V] {
	return &OrderedSet[K, V]{
		itemPos: make(map[K]int),
	}
}

func (o *OrderedSet[K, V]) Put(key K, value V) {
	o.lock.Lock()
	defer o.lock.Unlock()

	if pos, exists := o.itemPos[key]; exists {
		o.items[pos] = value
		return
	}

	o.itemPos[key] = len(o.items)
	o.keys = append(o.keys, key)
	o.items = append(o.items, value)
}

func (o *OrderedSet[K, V]) Get(key K) (V, bool) {
	o.lock.RLock()
	defer o.lock.RUnlock()

	if pos, ok := o.itemPos[key]; ok {
		return o.items[pos], true
	}
	var zero V
	return zero, false
}

func (o *OrderedSet[K, V]) Size() int {
	o.lock.RLock()
	defer o.lock.RUnlock()

	return len(o.items)
}

// All iterates over a snapshot of the set in insertion order. Writes made while
// iterating are not observed.
func (o *OrderedSet[K, V]) All() iter.Seq2[K, V] {
	o.lock.RLock()
	keys := make([]K, len(o.keys))
	copy(keys, o.keys)
	values := make([]V, len(o.items))
	copy(values, o.items)
	o.lock.RUnlock()

	return func(yield func(K, V) bool) {
		for i, k := range keys {
			if !yield(k, values[i]) {
				return
			}
		}
	}
}

// Clone returns an independent copy. Values are copied shallowly.
func (o *OrderedSet[K, V]) Clone() *OrderedSet[K, V] {
	o.lock.RLock()
	defer o.lock.RUnlock()

	clone := &OrderedSet[K, V]{
		itemPos: make(map[K]int, len(o.itemPos)),
		keys:    make([]K, len(o.keys)),
		items:   make([]V, len(o.items)),
	}
	for k, pos := range o.itemPos {
		clone.itemPos[k] = pos
	}
	copy(clone.keys, o.keys)
	copy(clone.items, o.items)
	return clone
}
