package keys

import "github.com/mplewis/layerkv"

// ChainTransform applies outer then inner when encoding, and inner then outer
// when decoding.
type ChainTransform[K, M, I any] struct {
	outer layerkv.KeyTransform[K, M]
	inner layerkv.KeyTransform[M, I]
}

// Chain composes two key transforms into one.
func Chain[K, M, I any](outer layerkv.KeyTransform[K, M], inner layerkv.KeyTransform[M, I]) ChainTransform[K, M, I] {
	return ChainTransform[K, M, I]{outer: outer, inner: inner}
}

func (c ChainTransform[K, M, I]) EncodeKey(key K) (I, error) {
	m, err := c.outer.EncodeKey(key)
	if err != nil {
		var zero I
		return zero, err
	}
	return c.inner.EncodeKey(m)
}

func (c ChainTransform[K, M, I]) DecodeKey(id I) (K, error) {
	m, err := c.inner.DecodeKey(id)
	if err != nil {
		var zero K
		return zero, err
	}
	return c.outer.DecodeKey(m)
}

// Unfiltered is true only when both halves are.
func (c ChainTransform[K, M, I]) Unfiltered() bool {
	return unfiltered(c.outer) && unfiltered(c.inner)
}

func unfiltered(t any) bool {
	u, ok := t.(layerkv.Unfiltered)
	return ok && u.Unfiltered()
}
