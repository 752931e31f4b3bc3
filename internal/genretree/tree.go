// Package genretree indexes a nested genre taxonomy and matches genre
// mentions in free text against it.
//
// A taxonomy node is a genre name, a mapping from a parent genre to its
// child nodes, or a list of nodes:
//
//	- electronic:
//	    - house:
//	        - deep house
//	    - techno
//	- rock
package genretree

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Tree is immutable once built and safe for concurrent use.
type Tree struct {
	parentOf  map[string]string
	genres    map[string]struct{}
	whitelist map[string]struct{}
	pattern   *regexp.Regexp
}

type edge struct {
	genre  string
	parent string
}

// New indexes the taxonomy. Whitelisted genres are the canonical labels
// Canonicalize and Match resolve to.
func New(taxonomy any, whitelist []string) (*Tree, error) {
	edges, err := walk(taxonomy, "")
	if err != nil {
		return nil, err
	}

	t := &Tree{
		parentOf:  make(map[string]string, len(edges)),
		genres:    make(map[string]struct{}, len(edges)),
		whitelist: make(map[string]struct{}, len(whitelist)),
	}
	for _, e := range edges {
		t.genres[e.genre] = struct{}{}
		if e.parent == "" {
			delete(t.parentOf, e.genre)
		} else {
			t.parentOf[e.genre] = e.parent
		}
	}
	for _, g := range whitelist {
		if g = normalize(g); g != "" {
			t.whitelist[g] = struct{}{}
		}
	}

	t.pattern, err = compilePattern(t.genres)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// walk returns the (genre, parent) pairs of node in document order.
func walk(node any, parent string) ([]edge, error) {
	switch n := node.(type) {
	case string:
		return []edge{{genre: normalize(n), parent: parent}}, nil
	case []any:
		var edges []edge
		for _, child := range n {
			e, err := walk(child, parent)
			if err != nil {
				return nil, err
			}
			edges = append(edges, e...)
		}
		return edges, nil
	case map[string]any:
		return walkMapping(n, parent)
	case map[any]any:
		m := make(map[string]any, len(n))
		for k, v := range n {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("genre tree: mapping key %v (%T) is not a genre name", k, k)
			}
			m[key] = v
		}
		return walkMapping(m, parent)
	default:
		return nil, fmt.Errorf("genre tree: unexpected node %v (%T) below %q", node, node, parent)
	}
}

func walkMapping(m map[string]any, parent string) ([]edge, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var edges []edge
	for _, k := range keys {
		genre := normalize(k)
		edges = append(edges, edge{genre: genre, parent: parent})
		if m[k] == nil {
			continue
		}
		e, err := walk(m[k], genre)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e...)
	}
	return edges, nil
}

func normalize(genre string) string {
	return strings.ToLower(strings.TrimSpace(genre))
}

// Len returns the number of known genres.
func (t *Tree) Len() int {
	return len(t.genres)
}

func (t *Tree) Contains(genre string) bool {
	_, ok := t.genres[normalize(genre)]
	return ok
}

// Whitelisted reports whether genre is a canonical label.
func (t *Tree) Whitelisted(genre string) bool {
	_, ok := t.whitelist[normalize(genre)]
	return ok
}

// Parents returns genre followed by its ancestors up to the root.
func (t *Tree) Parents(genre string) []string {
	genre = normalize(genre)
	chain := []string{genre}
	seen := map[string]bool{genre: true}
	for {
		p, ok := t.parentOf[genre]
		if !ok || seen[p] {
			return chain
		}
		chain = append(chain, p)
		seen[p] = true
		genre = p
	}
}

// IsGenre reports whether genre is ancestor or one of its descendants.
func (t *Tree) IsGenre(genre, ancestor string) bool {
	ancestor = normalize(ancestor)
	for _, g := range t.Parents(genre) {
		if g == ancestor {
			return true
		}
	}
	return false
}

// Canonicalize returns the closest whitelisted genre in the parent chain of
// genre. If no ancestor is whitelisted the root of the chain is returned.
func (t *Tree) Canonicalize(genre string) string {
	chain := t.Parents(genre)
	for _, g := range chain {
		if t.Whitelisted(g) {
			return g
		}
	}
	return chain[len(chain)-1]
}
