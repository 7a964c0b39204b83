package layerkv

import "errors"

// Entry is a handle on a single key of a Persister or Store.
type Entry[K, V any] struct {
	m   Minimal[K, V]
	key K
}

// At returns a handle on key in m. Nothing is read until Get is called.
func At[K, V any](m Minimal[K, V], key K) Entry[K, V] {
	return Entry[K, V]{m: m, key: key}
}

// Key returns the entry's key.
func (e Entry[K, V]) Key() K {
	return e.key
}

// Get returns the entry's value and whether it exists. A missing key is not an error.
func (e Entry[K, V]) Get() (v V, found bool, err error) {
	v, err = e.m.Get(e.key)
	if errors.Is(err, ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, true, err
	}
	return v, true, nil
}

// Set sets the entry's value.
func (e Entry[K, V]) Set(v V) error {
	return e.m.Set(e.key, v)
}

// Del deletes the entry. Deleting a missing entry is not an error.
func (e Entry[K, V]) Del() error {
	err := e.m.Delete(e.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
