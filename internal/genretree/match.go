package genretree

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Suffixes that mark a genre mention outside of brackets, e.g.
// "Some Title (Techno Remix)" or "Deep House Set".
const suffixes = `(?:(?:re)?mix|bootleg|set|music)`

// compilePattern builds the matcher over all genre names. Longer names come
// first in the alternation so the most specific genre wins for overlapping
// names.
func compilePattern(genres map[string]struct{}) (*regexp.Regexp, error) {
	if len(genres) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(genres))
	for g := range genres {
		if g != "" {
			names = append(names, g)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for i, n := range names {
		names[i] = regexp.QuoteMeta(n)
	}
	alt := strings.Join(names, "|")

	expr := fmt.Sprintf(`(?i)(?:[\[(](%[1]s)[\])]|(%[1]s)\s*%[2]s(?:\W|$))`, alt, suffixes)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling genre pattern: %w", err)
	}
	return re, nil
}

// Match finds a genre mentioned in text, either in brackets or followed by a
// marker word like "remix", and returns its canonical form. It returns "" if
// no genre is mentioned.
func (t *Tree) Match(text string) string {
	if t.pattern == nil {
		return ""
	}
	m := t.pattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	genre := m[1]
	if genre == "" {
		genre = m[2]
	}
	return t.Canonicalize(genre)
}
