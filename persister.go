package layerkv

import (
	"errors"
	"iter"
)

// Minimal is the smallest surface a backend needs to expose. Complete turns
// it into a full Persister.
type Minimal[I, D any] interface {
	// Get returns the data stored at id, or ErrNotFound.
	Get(id I) (D, error)
	// Set creates or overwrites the data stored at id.
	Set(id I, data D) error
	// Delete removes the data stored at id, or returns ErrNotFound.
	Delete(id I) error
	// Keys enumerates every id currently held. Each call starts a fresh
	// sequence. A non-nil error ends the sequence.
	Keys() iter.Seq2[I, error]
}

// Container is implemented by backends with a membership check cheaper than a lookup.
type Container[I any] interface {
	Contains(id I) (bool, error)
}

// Counter is implemented by backends that can count ids without enumerating them.
type Counter interface {
	Count() (int, error)
}

// Persister is the contract a backend satisfies to be wrapped by a Store.
// A Store is itself a Persister over its public keys and objects.
type Persister[I, D any] interface {
	Minimal[I, D]
	Container[I]
	Counter
}

// Complete returns m as a Persister. Contains and Count come from m when it
// implements Container or Counter; otherwise the O(n) fallbacks ContainsByGet
// and CountKeys are used.
func Complete[I, D any](m Minimal[I, D]) Persister[I, D] {
	if p, ok := m.(Persister[I, D]); ok {
		return p
	}
	return completed[I, D]{m}
}

type completed[I, D any] struct {
	Minimal[I, D]
}

func (c completed[I, D]) Contains(id I) (bool, error) {
	if ct, ok := c.Minimal.(Container[I]); ok {
		return ct.Contains(id)
	}
	return ContainsByGet(c.Minimal, id)
}

func (c completed[I, D]) Count() (int, error) {
	if ct, ok := c.Minimal.(Counter); ok {
		return ct.Count()
	}
	return CountKeys(c.Minimal.Keys())
}

// ContainsByGet reports membership by performing a lookup and treating
// ErrNotFound as absence. Other errors are returned.
func ContainsByGet[I, D any](m Minimal[I, D], id I) (bool, error) {
	_, err := m.Get(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountKeys exhausts seq and returns the number of ids it produced.
func CountKeys[I any](seq iter.Seq2[I, error]) (int, error) {
	n := 0
	for _, err := range seq {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// ReadOnly wraps p so that Set and Delete fail with ErrUnsupported.
func ReadOnly[I, D any](p Persister[I, D]) Persister[I, D] {
	return readOnly[I, D]{p}
}

type readOnly[I, D any] struct {
	Persister[I, D]
}

func (r readOnly[I, D]) Set(I, D) error { return Unsupported("set on read-only persister") }
func (r readOnly[I, D]) Delete(I) error { return Unsupported("delete on read-only persister") }

// NoDelete wraps p so that Delete fails with ErrUnsupported.
func NoDelete[I, D any](p Persister[I, D]) Persister[I, D] {
	return noDelete[I, D]{p}
}

type noDelete[I, D any] struct {
	Persister[I, D]
}

func (n noDelete[I, D]) Delete(I) error { return Unsupported("delete disabled") }
