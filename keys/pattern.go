package keys

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mplewis/layerkv"
)

// PatternTransform is a prefix relativization that also requires the
// relative key to match a regular expression, in both directions. Ids under
// the prefix that do not match are hidden from the Store.
type PatternTransform struct {
	prefix string
	re     *regexp.Regexp
}

// Pattern compiles expr, anchored at both ends, and returns a transform
// storing key as prefix+key.
func Pattern(prefix, expr string) (PatternTransform, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return PatternTransform{}, fmt.Errorf("compiling key pattern: %w", err)
	}
	return PatternTransform{prefix: prefix, re: re}, nil
}

// MustPattern is like Pattern but panics on an invalid expression.
func MustPattern(prefix, expr string) PatternTransform {
	p, err := Pattern(prefix, expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p PatternTransform) EncodeKey(key string) (string, error) {
	if !p.re.MatchString(key) {
		return "", layerkv.InvalidKey(key, "does not match "+p.re.String())
	}
	return p.prefix + key, nil
}

func (p PatternTransform) DecodeKey(id string) (string, error) {
	key, ok := strings.CutPrefix(id, p.prefix)
	if !ok {
		return "", layerkv.InvalidKey(id, "missing prefix "+p.prefix)
	}
	if !p.re.MatchString(key) {
		return "", layerkv.InvalidKey(id, "does not match "+p.re.String())
	}
	return key, nil
}

// Match returns the submatches of the relative key, or nil when it does not match.
func (p PatternTransform) Match(key string) []string {
	return p.re.FindStringSubmatch(key)
}
