package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ademuri/autogenre/internal/autogenre"
	"github.com/ademuri/autogenre/internal/store"
)

const testLibrary = `
- artist: Artist A
  album: Album A
  title: Song (Techno Remix)
  path: /music/a/1.flac
- artist: Artist A
  album: Album A
  title: Intro [Techno]
  path: /music/a/2.flac
- artist: Artist A
  album: Album A
  title: Outro
  path: /music/a/3.flac
- artist: Artist B
  album: Album B
  title: Handpicked
  genre: polka
  genre_source: manual
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func setupLibrary(t *testing.T) AutogenreConfig {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "library.db")
	if err := importItems(io.Discard, dbPath, writeFile(t, dir, "items.yaml", testLibrary)); err != nil {
		t.Fatalf("importItems() error: %v", err)
	}

	resolver := autogenre.DefaultConfig()
	resolver.UseLastFm = false
	resolver.UseAcoustic = false
	return AutogenreConfig{
		DbPath:        dbPath,
		WhitelistPath: writeFile(t, dir, "whitelist.txt", "electronic\ntechno\nrock\n"),
		Resolver:      resolver,
	}
}

func libraryItems(t *testing.T, dbPath string) []autogenre.Item {
	t.Helper()
	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error: %v", err)
	}
	defer db.Close()
	items, err := db.Items(store.Query{})
	if err != nil {
		t.Fatalf("Items() error: %v", err)
	}
	return items
}

func TestRunAutogenreFromTitle(t *testing.T) {
	config := setupLibrary(t)

	var out bytes.Buffer
	if err := runAutogenre(context.Background(), &out, config, nil); err != nil {
		t.Fatalf("runAutogenre() error: %v", err)
	}
	if !strings.Contains(out.String(), "Selected 3 items") {
		t.Errorf("unexpected output: %s", out.String())
	}

	items := libraryItems(t, config.DbPath)
	expected := []struct {
		genre  string
		source autogenre.Source
	}{
		{"techno", autogenre.SourceTitle},
		{"techno", autogenre.SourceTitle},
		{"", autogenre.SourceNone},
		{"polka", "manual"},
	}
	for i, e := range expected {
		if items[i].Genre != e.genre || items[i].GenreSource != e.source {
			t.Errorf("item %q: genre %q (%q), want %q (%q)",
				items[i].Title, items[i].Genre, items[i].GenreSource, e.genre, e.source)
		}
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		t.Fatalf("store.New() error: %v", err)
	}
	defer db.Close()
	albums, err := db.Albums(store.ParseQuery([]string{"album:Album A"}))
	if err != nil {
		t.Fatalf("Albums() error: %v", err)
	}
	if len(albums) != 1 || albums[0].Genre != "techno" || albums[0].GenreSource != autogenre.SourceTitle {
		t.Errorf("album genre not aggregated: %+v", albums)
	}

	// A second run changes nothing.
	out.Reset()
	if err := runAutogenre(context.Background(), &out, config, nil); err != nil {
		t.Fatalf("runAutogenre() error: %v", err)
	}
	if !strings.Contains(out.String(), "Updated 0 items and 0 albums") {
		t.Errorf("second run output: %s", out.String())
	}
}

func TestRunAutogenrePretend(t *testing.T) {
	config := setupLibrary(t)
	config.Resolver.Pretend = true

	var out bytes.Buffer
	if err := runAutogenre(context.Background(), &out, config, nil); err != nil {
		t.Fatalf("runAutogenre() error: %v", err)
	}
	if !strings.Contains(out.String(), "Would update 2 items") {
		t.Errorf("unexpected output: %s", out.String())
	}
	for _, item := range libraryItems(t, config.DbPath) {
		if item.GenreSource == autogenre.SourceTitle {
			t.Errorf("pretend run wrote genre of %q", item.Title)
		}
	}
}

func TestRunAutogenreExplicitGenre(t *testing.T) {
	config := setupLibrary(t)
	genre := "Rock"
	config.Resolver.ExplicitGenre = &genre

	if err := runAutogenre(context.Background(), io.Discard, config, nil); err == nil {
		t.Errorf("runAutogenre() should require a selector with an explicit genre")
	}

	if err := runAutogenre(context.Background(), io.Discard, config, []string{"title:Outro"}); err != nil {
		t.Fatalf("runAutogenre() error: %v", err)
	}
	items := libraryItems(t, config.DbPath)
	if items[2].Genre != "rock" || items[2].GenreSource != autogenre.SourceUser {
		t.Errorf("explicit genre not assigned: %+v", items[2])
	}

	// Genres of unknown origin are kept even with an explicit genre.
	if err := runAutogenre(context.Background(), io.Discard, config, []string{"title:Handpicked"}); err != nil {
		t.Fatalf("runAutogenre() error: %v", err)
	}
	items = libraryItems(t, config.DbPath)
	if items[3].Genre != "polka" {
		t.Errorf("manual genre overwritten: %+v", items[3])
	}

	unknown := "polka"
	config.Resolver.ExplicitGenre = &unknown
	if err := runAutogenre(context.Background(), io.Discard, config, []string{"title:Outro"}); err == nil {
		t.Errorf("runAutogenre() should reject a genre outside the tree")
	}
}

func TestRunAutogenreRequiresCredentials(t *testing.T) {
	config := setupLibrary(t)
	config.Resolver.UseLastFm = true
	if err := runAutogenre(context.Background(), io.Discard, config, nil); err == nil {
		t.Errorf("runAutogenre() should require last.fm credentials")
	}

	config = setupLibrary(t)
	config.WhitelistPath = ""
	if err := runAutogenre(context.Background(), io.Discard, config, nil); err == nil {
		t.Errorf("runAutogenre() should require a whitelist")
	}
}

func TestAutogenreRequiresSelectorWithGenre(t *testing.T) {
	autogenreCmd.Flags().Set("genre", "rock")
	defer func() {
		autogenreCmd.Flags().Set("genre", "")
		autogenreCmd.Flags().Lookup("genre").Changed = false
	}()

	err := autogenreCmd.PreRunE(autogenreCmd, []string{})
	if err == nil {
		t.Error("Expected error when selector is missing, got nil")
	}

	err = autogenreCmd.PreRunE(autogenreCmd, []string{"artist:someone"})
	if err != nil {
		t.Errorf("Expected nil when selector is set, got %v", err)
	}
}

func TestPrintItemsAndAlbums(t *testing.T) {
	config := setupLibrary(t)
	if err := runAutogenre(context.Background(), io.Discard, config, nil); err != nil {
		t.Fatalf("runAutogenre() error: %v", err)
	}

	var out bytes.Buffer
	if err := printItems(&out, config.DbPath, []string{"artist:Artist A"}); err != nil {
		t.Fatalf("printItems() error: %v", err)
	}
	if !strings.Contains(out.String(), "Intro [Techno]") || strings.Contains(out.String(), "Handpicked") {
		t.Errorf("unexpected items table:\n%s", out.String())
	}

	out.Reset()
	if err := printAlbums(&out, config.DbPath, nil); err != nil {
		t.Fatalf("printAlbums() error: %v", err)
	}
	if !strings.Contains(out.String(), "techno") {
		t.Errorf("unexpected albums table:\n%s", out.String())
	}
}

func TestImportItemsRejectsMalformedYaml(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.yaml", "artist: [unclosed")
	if err := importItems(io.Discard, filepath.Join(dir, "library.db"), path); err == nil {
		t.Errorf("importItems(malformed) succeeded, want error")
	}
	if err := importItems(io.Discard, filepath.Join(dir, "library.db"), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("importItems(missing file) succeeded, want error")
	}
}
