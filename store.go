package layerkv

import (
	"errors"
	"iter"

	"github.com/mplewis/layerkv/internal/logging"
)

var logger = logging.For("store")

// Store presents keys of type K and objects of type V over a Persister of ids
// I and data D. It owns no data: every call is translated through its key and
// value transforms and delegated to the inner Persister.
//
// A Store is itself a Persister[K, V], so it can be the inner of another Store.
// Writes pass through the outermost layer first; reads are decoded by the
// innermost layer first.
type Store[K, V, I, D any] struct {
	inner  Persister[I, D]
	keys   KeyTransform[K, I]
	values ValueTransform[V, D]
}

// New builds a Store over inner. A nil transform behaves as the identity.
func New[K, V, I, D any](inner Persister[I, D], keys KeyTransform[K, I], values ValueTransform[V, D]) *Store[K, V, I, D] {
	if keys == nil {
		keys = KeyFuncs[K, I]{}
	}
	if values == nil {
		values = ValueFuncs[V, D]{}
	}
	return &Store[K, V, I, D]{inner: inner, keys: keys, values: values}
}

// Wrap builds a Store that passes keys and values through unchanged.
func Wrap[I, D any](inner Persister[I, D]) *Store[I, D, I, D] {
	return New[I, D, I, D](inner, Identity[I]{}, Identity[D]{})
}

// WrapKeys builds a Store that only transforms keys.
func WrapKeys[K, I, D any](inner Persister[I, D], keys KeyTransform[K, I]) *Store[K, D, I, D] {
	return New[K, D, I, D](inner, keys, Identity[D]{})
}

// WrapValues builds a Store that only transforms values.
func WrapValues[V, I, D any](inner Persister[I, D], values ValueTransform[V, D]) *Store[I, V, I, D] {
	return New[I, V, I, D](inner, Identity[I]{}, values)
}

// Inner returns the Persister this Store delegates to.
func (s *Store[K, V, I, D]) Inner() Persister[I, D] {
	return s.inner
}

// Get returns the object stored at key. Key and value transform errors are
// returned unchanged, as is ErrNotFound from the inner Persister.
func (s *Store[K, V, I, D]) Get(key K) (V, error) {
	var zero V
	id, err := s.keys.EncodeKey(key)
	if err != nil {
		return zero, err
	}
	data, err := s.inner.Get(id)
	if err != nil {
		return zero, err
	}
	return s.values.DecodeValue(data)
}

// Set stores obj at key, replacing whatever was there.
func (s *Store[K, V, I, D]) Set(key K, obj V) error {
	id, err := s.keys.EncodeKey(key)
	if err != nil {
		return err
	}
	data, err := s.values.EncodeValue(obj)
	if err != nil {
		return err
	}
	return s.inner.Set(id, data)
}

// Delete removes key, or returns ErrNotFound.
func (s *Store[K, V, I, D]) Delete(key K) error {
	id, err := s.keys.EncodeKey(key)
	if err != nil {
		return err
	}
	return s.inner.Delete(id)
}

// Keys yields the key of every inner id the key transform accepts. Ids that
// fail with ErrKeyValidation are skipped; any other error is yielded once and
// ends the sequence.
func (s *Store[K, V, I, D]) Keys() iter.Seq2[K, error] {
	return func(yield func(K, error) bool) {
		var zero K
		for id, err := range s.inner.Keys() {
			if err != nil {
				yield(zero, err)
				return
			}
			key, err := s.keys.DecodeKey(id)
			if errors.Is(err, ErrKeyValidation) {
				logger.Debug("skipping id outside key space", "id", id, "err", err)
				continue
			}
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(key, nil) {
				return
			}
		}
	}
}

// Contains reports whether key is present. A key the key transform cannot
// encode, for any reason, is reported as absent rather than as an error.
// Errors from the inner Persister are returned.
func (s *Store[K, V, I, D]) Contains(key K) (bool, error) {
	id, err := s.keys.EncodeKey(key)
	if err != nil {
		logger.Debug("key cannot be encoded, not contained", "err", err)
		return false, nil
	}
	return s.inner.Contains(id)
}

// Count returns the number of keys Keys would yield. When the key transform
// filters nothing this is the inner count; otherwise it is an O(n) scan.
func (s *Store[K, V, I, D]) Count() (int, error) {
	if u, ok := s.keys.(Unfiltered); ok && u.Unfiltered() {
		return s.inner.Count()
	}
	return CountKeys(s.Keys())
}

// Values yields the object stored at every key.
func (s *Store[K, V, I, D]) Values() iter.Seq2[V, error] {
	return Values[K, V](s)
}

// Items yields every key with its object.
func (s *Store[K, V, I, D]) Items() iter.Seq2[Item[K, V], error] {
	return Items[K, V](s)
}

// GetOr returns the object at key, or def when key is absent.
func (s *Store[K, V, I, D]) GetOr(key K, def V) (V, error) {
	return GetOr[K, V](s, key, def)
}
