package layerkv

import (
	"errors"
	"iter"

	"github.com/hashicorp/go-multierror"
)

// Conveniences built only on Get, Set, Delete and Keys. They work the same
// over any Persister or Store.

// Item is a key paired with its object.
type Item[K, V any] struct {
	Key   K
	Value V
}

// Values yields the object stored at every key of m.
func Values[K, V any](m Minimal[K, V]) iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		for item, err := range Items(m) {
			if !yield(item.Value, err) || err != nil {
				return
			}
		}
	}
}

// Items yields every key of m with its object. A failed lookup is yielded
// once and ends the sequence.
func Items[K, V any](m Minimal[K, V]) iter.Seq2[Item[K, V], error] {
	return func(yield func(Item[K, V], error) bool) {
		for key, err := range m.Keys() {
			if err != nil {
				yield(Item[K, V]{}, err)
				return
			}
			v, err := m.Get(key)
			if err != nil {
				yield(Item[K, V]{Key: key}, err)
				return
			}
			if !yield(Item[K, V]{Key: key, Value: v}, nil) {
				return
			}
		}
	}
}

// GetOr returns the object at key, or def when m reports ErrNotFound. Every
// other error, including ErrKeyValidation, is returned.
func GetOr[K, V any](m Minimal[K, V], key K, def V) (V, error) {
	v, err := m.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	return v, err
}

// CollectKeys materializes the keys of m.
func CollectKeys[K, V any](m Minimal[K, V]) ([]K, error) {
	var keys []K
	for key, err := range m.Keys() {
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Snapshot materializes m into a map.
func Snapshot[K comparable, V any](m Minimal[K, V]) (map[K]V, error) {
	out := map[K]V{}
	for item, err := range Items(m) {
		if err != nil {
			return nil, err
		}
		out[item.Key] = item.Value
	}
	return out, nil
}

// SetMany stores every entry. It attempts all of them and returns the
// combined failures.
func SetMany[K comparable, V any](m Minimal[K, V], entries map[K]V) error {
	var result *multierror.Error
	for key, v := range entries {
		if err := m.Set(key, v); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Clear deletes every key of m. Keys are collected before the first delete.
// Keys that disappear in between are ignored; other failures are combined.
func Clear[K, V any](m Minimal[K, V]) error {
	keys, err := CollectKeys(m)
	if err != nil {
		return err
	}
	var result *multierror.Error
	for _, key := range keys {
		if err := m.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Pop returns the object at key and deletes it.
func Pop[K, V any](m Minimal[K, V], key K) (V, error) {
	v, err := m.Get(key)
	if err != nil {
		return v, err
	}
	if err := m.Delete(key); err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

// SetDefault returns the object at key. When key is absent it stores def and
// returns it.
func SetDefault[K, V any](m Minimal[K, V], key K, def V) (V, error) {
	v, err := m.Get(key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return v, err
	}
	if err := m.Set(key, def); err != nil {
		var zero V
		return zero, err
	}
	return def, nil
}
