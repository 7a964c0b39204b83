package backing

import (
	"iter"
	"slices"

	golock "github.com/viney-shih/go-lock"

	"github.com/mplewis/layerkv"
)

// Memory keeps entries in a map and enumerates ids in insertion order. It is
// safe for concurrent use.
type Memory[I comparable, D any] struct {
	mu    *golock.CASMutex
	order []I
	data  map[I]D
}

// NewMemory creates an empty in-memory backing.
func NewMemory[I comparable, D any]() *Memory[I, D] {
	return &Memory[I, D]{mu: golock.NewCASMutex(), data: map[I]D{}}
}

// Get returns the data stored at id.
func (m *Memory[I, D]) Get(id I) (D, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.data[id]
	if !ok {
		return d, layerkv.NotFound(id)
	}
	return d, nil
}

// Set stores data at id. Overwriting keeps the id's original position.
func (m *Memory[I, D]) Set(id I, data D) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		m.order = append(m.order, id)
	}
	m.data[id] = data
	return nil
}

// Delete removes id.
func (m *Memory[I, D]) Delete(id I) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return layerkv.NotFound(id)
	}
	delete(m.data, id)
	if i := slices.Index(m.order, id); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	return nil
}

// Keys yields the ids present when the sequence starts, oldest first.
func (m *Memory[I, D]) Keys() iter.Seq2[I, error] {
	return func(yield func(I, error) bool) {
		m.mu.RLock()
		ids := slices.Clone(m.order)
		m.mu.RUnlock()
		for _, id := range ids {
			if !yield(id, nil) {
				return
			}
		}
	}
}

// Contains reports whether id is present.
func (m *Memory[I, D]) Contains(id I) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[id]
	return ok, nil
}

// Count returns the number of ids.
func (m *Memory[I, D]) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data), nil
}
