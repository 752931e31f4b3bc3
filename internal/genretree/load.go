package genretree

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed data/genres-tree.yaml
var defaultTree []byte

// Load reads the taxonomy YAML at treePath and the whitelist at
// whitelistPath. An empty treePath selects the built-in taxonomy; the
// whitelist is required.
func Load(treePath, whitelistPath string) (*Tree, error) {
	data := defaultTree
	if treePath != "" {
		var err error
		data, err = os.ReadFile(treePath)
		if err != nil {
			return nil, fmt.Errorf("reading genre tree: %w", err)
		}
	}
	taxonomy, err := ParseTaxonomy(data)
	if err != nil {
		return nil, err
	}

	if whitelistPath == "" {
		return nil, fmt.Errorf("no genre whitelist configured")
	}
	f, err := os.Open(whitelistPath)
	if err != nil {
		return nil, fmt.Errorf("opening genre whitelist: %w", err)
	}
	defer f.Close()
	whitelist, err := ReadWhitelist(f)
	if err != nil {
		return nil, err
	}

	t, err := New(taxonomy, whitelist)
	if err != nil {
		return nil, fmt.Errorf("building genre tree: %w", err)
	}
	return t, nil
}

// ParseTaxonomy decodes a YAML genre tree into the generic node structure
// accepted by New.
func ParseTaxonomy(data []byte) (any, error) {
	var taxonomy any
	if err := yaml.Unmarshal(data, &taxonomy); err != nil {
		return nil, fmt.Errorf("parsing genre tree: %w", err)
	}
	if taxonomy == nil {
		return nil, fmt.Errorf("parsing genre tree: empty document")
	}
	return taxonomy, nil
}

// ReadWhitelist reads one genre per line, lowercased. Blank lines are skipped.
func ReadWhitelist(r io.Reader) ([]string, error) {
	var genres []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		g := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if g != "" {
			genres = append(genres, g)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading genre whitelist: %w", err)
	}
	return genres, nil
}
