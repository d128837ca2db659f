// Package pattern compiles wildcard filter strings into matchers for
// fully-qualified type and module names.
//
// A pattern is a comma-separated list of alternatives. Within an alternative,
// `*` matches any sequence of characters and every other character is
// literal. Matching is anchored at both ends and case-sensitive; a name
// matches the pattern when it fully matches at least one alternative.
package pattern

import (
	"regexp"
	"strings"
)

// Matcher tests names against a compiled pattern. A nil Matcher matches
// everything, which is how "no filter" is represented.
type Matcher struct {
	re *regexp.Regexp
}

// Compile builds a Matcher from a wildcard pattern. An empty pattern yields
// a nil Matcher (no filter).
func Compile(p string) (*Matcher, error) {
	if p == "" {
		return nil, nil
	}
	segments := strings.Split(p, ",")
	alts := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		alts = append(alts, segmentToRegexp(seg))
	}
	if len(alts) == 0 {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + strings.Join(alts, "|") + ")$")
	if err != nil {
		return nil, err
	}
	return &Matcher{re: re}, nil
}

// segmentToRegexp quotes one alternative, keeping only `*` as a
// metacharacter.
func segmentToRegexp(seg string) string {
	parts := strings.Split(seg, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, ".*")
}

// Match reports whether name fully matches at least one alternative.
func (m *Matcher) Match(name string) bool {
	if m == nil {
		return true
	}
	return m.re.MatchString(name)
}
