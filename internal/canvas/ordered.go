package canvas

import (
	"iter"
	"slices"
)

// orderedMap is a string-keyed map that iterates in insertion order. Hit
// testing and drawing depend on that order.
type orderedMap[V any] struct {
	keys  []string
	items map[string]V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{items: make(map[string]V)}
}

func (m *orderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.items[key]
	return v, ok
}

func (m *orderedMap[V]) Has(key string) bool {
	_, ok := m.items[key]
	return ok
}

// Set stores v under key. A new key goes to the end; an existing key keeps
// its place.
func (m *orderedMap[V]) Set(key string, v V) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = v
}

func (m *orderedMap[V]) Delete(key string) bool {
	if _, ok := m.items[key]; !ok {
		return false
	}
	delete(m.items, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	return true
}

func (m *orderedMap[V]) Len() int {
	return len(m.keys)
}

func (m *orderedMap[V]) Keys() []string {
	return slices.Clone(m.keys)
}

// Values yields entries in insertion order. The map must not be modified
// while iterating.
func (m *orderedMap[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, k := range m.keys {
			if !yield(m.items[k]) {
				return
			}
		}
	}
}

func (m *orderedMap[V]) Reset() {
	m.keys = nil
	m.items = make(map[string]V)
}
