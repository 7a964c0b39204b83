package layerkv

import "fmt"

// KeyTransform maps public keys to the ids a Persister expects and back.
// For every key accepted by EncodeKey, DecodeKey(EncodeKey(key)) == key.
type KeyTransform[K, I any] interface {
	// EncodeKey returns the id for key. It may fail with ErrKeyValidation when
	// key cannot be represented.
	EncodeKey(key K) (I, error)
	// DecodeKey returns the key for id. It must fail with ErrKeyValidation when
	// id does not have the expected structure.
	DecodeKey(id I) (K, error)
}

// ValueTransform maps public objects to the data a Persister stores and back.
type ValueTransform[V, D any] interface {
	// EncodeValue serializes obj. Failures wrap ErrSerialization.
	EncodeValue(obj V) (D, error)
	// DecodeValue deserializes data. Failures wrap ErrDeserialization.
	DecodeValue(data D) (V, error)
}

// Unfiltered is implemented by key transforms whose DecodeKey accepts every id.
// A Store over such a transform counts by asking its inner Persister.
type Unfiltered interface {
	Unfiltered() bool
}

// Identity is the transform under which keys and ids, or objects and data,
// coincide. It satisfies both KeyTransform[T, T] and ValueTransform[T, T].
type Identity[T any] struct{}

func (Identity[T]) EncodeKey(key T) (T, error)   { return key, nil }
func (Identity[T]) DecodeKey(id T) (T, error)    { return id, nil }
func (Identity[T]) EncodeValue(obj T) (T, error) { return obj, nil }
func (Identity[T]) DecodeValue(data T) (T, error) {
	return data, nil
}
func (Identity[T]) Unfiltered() bool { return true }

// KeyFuncs builds a KeyTransform from plain functions. A nil side behaves as
// the identity, which only succeeds when K and I are the same type.
type KeyFuncs[K, I any] struct {
	Encode func(key K) (I, error)
	Decode func(id I) (K, error)
}

func (f KeyFuncs[K, I]) EncodeKey(key K) (I, error) {
	if f.Encode == nil {
		return convert[K, I](key, ErrKeyValidation)
	}
	return f.Encode(key)
}

func (f KeyFuncs[K, I]) DecodeKey(id I) (K, error) {
	if f.Decode == nil {
		return convert[I, K](id, ErrKeyValidation)
	}
	return f.Decode(id)
}

// ValueFuncs builds a ValueTransform from plain functions. Leaving one side
// nil gives a write-only or read-only transform; the nil side is the identity.
type ValueFuncs[V, D any] struct {
	Encode func(obj V) (D, error)
	Decode func(data D) (V, error)
}

func (f ValueFuncs[V, D]) EncodeValue(obj V) (D, error) {
	if f.Encode == nil {
		return convert[V, D](obj, ErrSerialization)
	}
	return f.Encode(obj)
}

func (f ValueFuncs[V, D]) DecodeValue(data D) (V, error) {
	if f.Decode == nil {
		return convert[D, V](data, ErrDeserialization)
	}
	return f.Decode(data)
}

func convert[From, To any](v From, kind error) (To, error) {
	out, ok := any(v).(To)
	if !ok {
		var zero To
		return zero, fmt.Errorf("%w: no identity conversion from %T to %T", kind, v, zero)
	}
	return out, nil
}
