package backing

import (
	"iter"

	"github.com/thoas/go-funk"

	"github.com/mplewis/layerkv"
	"github.com/mplewis/layerkv/keys"
)

// ExplicitKeys is a read-only Persister over a fixed collection of ids. The
// data stored at each id is the id itself, so it is mainly useful for
// listing and membership.
type ExplicitKeys struct {
	ids []string
}

// NewExplicitKeys creates a backing over ids. Duplicates are dropped; the
// first occurrence keeps its position.
func NewExplicitKeys(ids []string) *ExplicitKeys {
	return &ExplicitKeys{ids: funk.UniqString(ids)}
}

// ExplicitKeysRelative wraps the ids in a Store that strips their longest
// common prefix, e.g. /root/of/foo and /root/for/alice become of/foo and for/alice.
func ExplicitKeysRelative(ids []string) *layerkv.Store[string, string, string, string] {
	return layerkv.WrapKeys[string, string, string](NewExplicitKeys(ids), keys.Prefix(keys.MaxCommonPrefix(ids)))
}

// Get returns id when it is one of the ids.
func (e *ExplicitKeys) Get(id string) (string, error) {
	if !funk.ContainsString(e.ids, id) {
		return "", layerkv.NotFound(id)
	}
	return id, nil
}

// Set always fails; the collection is fixed.
func (e *ExplicitKeys) Set(string, string) error {
	return layerkv.Unsupported("set on explicit keys")
}

// Delete always fails; the collection is fixed.
func (e *ExplicitKeys) Delete(string) error {
	return layerkv.Unsupported("delete on explicit keys")
}

// Keys yields the ids in the order given.
func (e *ExplicitKeys) Keys() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, id := range e.ids {
			if !yield(id, nil) {
				return
			}
		}
	}
}

// Contains reports whether id is one of the ids.
func (e *ExplicitKeys) Contains(id string) (bool, error) {
	return funk.ContainsString(e.ids, id), nil
}

// Count returns the number of distinct ids.
func (e *ExplicitKeys) Count() (int, error) {
	return len(e.ids), nil
}
