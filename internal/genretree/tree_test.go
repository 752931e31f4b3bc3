package genretree

import (
	"reflect"
	"testing"
)

func nestedTree() []any {
	return []any{
		map[string]any{
			"fancy genre": []any{
				"sub genre 1",
				map[string]any{
					"sub genre 2": []any{
						"sub sub genre",
					},
				},
			},
		},
	}
}

func TestParents(t *testing.T) {
	tree, err := New(nestedTree(), []string{"fancy genre", "sub genre 1", "sub genre 2", "sub sub genre"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"sub genre", "sub genre 1", []string{"sub genre 1", "fancy genre"}},
		{"sub genre key", "sub genre 2", []string{"sub genre 2", "fancy genre"}},
		{"sub sub genre", "Sub Sub Genre", []string{"sub sub genre", "sub genre 2", "fancy genre"}},
		{"root", "fancy genre", []string{"fancy genre"}},
		{"unknown", "polka", []string{"polka"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tree.Parents(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Parents(%q) = %v, want %v", tc.input, got, tc.expected)
			}
			if _, ok := tree.parentOf[got[len(got)-1]]; ok {
				t.Errorf("Parents(%q) ends at %q which has a parent", tc.input, got[len(got)-1])
			}
		})
	}
}

func TestIsGenre(t *testing.T) {
	tree, err := New(nestedTree(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	testCases := []struct {
		name     string
		genre    string
		parent   string
		expected bool
	}{
		{"child", "sub sub genre", "fancy genre", true},
		{"child2", "sub sub genre", "sub genre 2", true},
		{"sibling", "sub sub genre", "sub genre 1", false},
		{"itself", "fancy genre", "fancy genre", true},
		{"case insensitive", "Sub Sub Genre", "FANCY genre", true},
		{"parent is not child", "fancy genre", "sub genre 2", false},
	}

	for _, tc := range testCases {
		if got := tree.IsGenre(tc.genre, tc.parent); got != tc.expected {
			t.Errorf("%s: IsGenre(%q, %q) = %v, want %v", tc.name, tc.genre, tc.parent, got, tc.expected)
		}
	}
}

func TestContains(t *testing.T) {
	tree, err := New(nestedTree(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	for _, g := range []string{"fancy genre", "Sub Genre 1", "sub genre 2", "SUB SUB GENRE"} {
		if !tree.Contains(g) {
			t.Errorf("Contains(%q) = false, want true", g)
		}
	}
	if tree.Contains("sub genre") {
		t.Errorf("Contains(%q) = true, want false", "sub genre")
	}
	if tree.Len() != 4 {
		t.Errorf("Len() = %d, want 4", tree.Len())
	}
}

func TestCanonicalize(t *testing.T) {
	tree, err := New(map[string]any{"rock": []any{"hard rock"}}, []string{"rock"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := tree.Canonicalize("hard rock"); got != "rock" {
		t.Errorf("Canonicalize(%q) = %q, want %q", "hard rock", got, "rock")
	}
	if got := tree.Parents("hard rock"); !reflect.DeepEqual(got, []string{"hard rock", "rock"}) {
		t.Errorf("Parents(%q) = %v", "hard rock", got)
	}

	// Nothing whitelisted: fall back to the root.
	tree, err = New(nestedTree(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := tree.Canonicalize("sub sub genre"); got != "fancy genre" {
		t.Errorf("Canonicalize(%q) = %q, want %q", "sub sub genre", got, "fancy genre")
	}
}

func TestParentsTerminatesOnCycle(t *testing.T) {
	// "a" is listed below its own child.
	tree, err := New(map[string]any{
		"a": []any{map[string]any{"b": []any{"a"}}},
	}, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := tree.Parents("a"); len(got) != 2 {
		t.Errorf("Parents(%q) = %v, want two entries", "a", got)
	}
	if got := tree.Canonicalize("a"); got == "" {
		t.Errorf("Canonicalize(%q) returned an empty genre", "a")
	}
}

func TestNewRejectsMalformedNodes(t *testing.T) {
	testCases := []any{
		42,
		[]any{"rock", 3.5},
		map[string]any{"rock": []any{true}},
		map[any]any{1: []any{"one"}},
	}
	for _, tc := range testCases {
		if _, err := New(tc, nil); err == nil {
			t.Errorf("New(%v) should have errored", tc)
		}
	}
}

func TestNewAcceptsEmptyChildren(t *testing.T) {
	tree, err := New(map[string]any{"rock": nil}, []string{"rock"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !tree.Contains("rock") {
		t.Errorf("Contains(%q) = false, want true", "rock")
	}
}
