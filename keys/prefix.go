// Package keys provides key transforms for layerkv stores.
package keys

import (
	"strings"

	"github.com/mplewis/layerkv"
)

// PrefixTransform relativizes ids under a fixed prefix. Ids without the
// prefix are rejected, so a prefixed Store sees only its own entries.
type PrefixTransform struct {
	prefix string
}

// Prefix returns a transform that stores key as prefix+key.
func Prefix(prefix string) PrefixTransform {
	return PrefixTransform{prefix: prefix}
}

// Prefix returns the configured prefix.
func (p PrefixTransform) Prefix() string {
	return p.prefix
}

func (p PrefixTransform) EncodeKey(key string) (string, error) {
	return p.prefix + key, nil
}

func (p PrefixTransform) DecodeKey(id string) (string, error) {
	if !strings.HasPrefix(id, p.prefix) {
		return "", layerkv.InvalidKey(id, "missing prefix "+p.prefix)
	}
	return id[len(p.prefix):], nil
}

// Unfiltered reports true for the empty prefix.
func (p PrefixTransform) Unfiltered() bool {
	return p.prefix == ""
}

// SuffixTransform appends a fixed suffix, typically a file extension.
type SuffixTransform struct {
	suffix string
}

// Suffix returns a transform that stores key as key+suffix.
func Suffix(suffix string) SuffixTransform {
	return SuffixTransform{suffix: suffix}
}

func (s SuffixTransform) EncodeKey(key string) (string, error) {
	return key + s.suffix, nil
}

func (s SuffixTransform) DecodeKey(id string) (string, error) {
	if !strings.HasSuffix(id, s.suffix) {
		return "", layerkv.InvalidKey(id, "missing suffix "+s.suffix)
	}
	return id[:len(id)-len(s.suffix)], nil
}

func (s SuffixTransform) Unfiltered() bool {
	return s.suffix == ""
}

// MaxCommonPrefix returns the longest prefix shared by every id.
func MaxCommonPrefix(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	prefix := ids[0]
	for _, id := range ids[1:] {
		n := 0
		for n < len(prefix) && n < len(id) && prefix[n] == id[n] {
			n++
		}
		prefix = prefix[:n]
		if prefix == "" {
			break
		}
	}
	return prefix
}
