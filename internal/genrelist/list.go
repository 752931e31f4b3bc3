// Package genrelist handles the separator-joined genre lists stored in the
// genre field of library items.
package genrelist

import "strings"

// DefaultSeparator joins genres when no separator is configured.
const DefaultSeparator = ", "

// List is an ordered genre list without duplicates. The first entry is the
// primary genre.
type List []string

// Parse splits s on sep. Empty strings yield an empty list.
func Parse(s, sep string) List {
	if s == "" {
		return List{}
	}
	if sep == "" {
		sep = DefaultSeparator
	}
	return New(strings.Split(s, sep)...)
}

// New builds a normalized list from genres: lowercased, trimmed, without
// empty entries or duplicates.
func New(genres ...string) List {
	l := make(List, 0, len(genres))
	for _, g := range genres {
		l = l.Append(g)
	}
	return l
}

// Normalize lowercases and trims a single genre name.
func Normalize(genre string) string {
	return strings.ToLower(strings.TrimSpace(genre))
}

// Contains reports whether genre is in l.
func (l List) Contains(genre string) bool {
	genre = Normalize(genre)
	for _, g := range l {
		if g == genre {
			return true
		}
	}
	return false
}

// Append returns l with genre added at the end unless already present.
func (l List) Append(genre string) List {
	genre = Normalize(genre)
	if genre == "" || l.Contains(genre) {
		return l
	}
	return append(l, genre)
}

// Prepend returns a new list with genre first, removing any existing
// occurrence of it.
func (l List) Prepend(genre string) List {
	genre = Normalize(genre)
	if genre == "" {
		return l
	}
	r := make(List, 0, len(l)+1)
	r = append(r, genre)
	for _, g := range l {
		if g != genre {
			r = append(r, g)
		}
	}
	return r
}

// Primary returns the first genre, or "" for an empty list.
func (l List) Primary() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

func (l List) Join(sep string) string {
	if sep == "" {
		sep = DefaultSeparator
	}
	return strings.Join(l, sep)
}

// Format normalizes a separator-joined genre string.
func Format(s, sep string) string {
	return Parse(s, sep).Join(sep)
}
