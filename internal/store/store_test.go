package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ademuri/autogenre/internal/autogenre"
	"github.com/ademuri/autogenre/internal/essentia"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}

	return store
}

var testItems = []ItemImport{
	{Artist: "Artist A", Album: "Album A", Title: "Track 1", Path: "/music/a1.flac"},
	{Artist: "Artist A", Album: "Album A", Title: "Track 2 (Techno Remix)", Path: "/music/a2.flac"},
	{Artist: "Artist B", AlbumArtist: "Various", Album: "Compilation", Title: "Track 3", Genre: "polka", GenreSource: "manual"},
}

func TestAddItems(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	ids, err := s.AddItems(testItems)
	if err != nil {
		t.Fatalf("AddItems failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("AddItems returned %d ids, want 3", len(ids))
	}

	items, err := s.Items(Query{})
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	// Ordered by album artist.
	if items[0].AlbumArtist != "Artist A" || items[2].AlbumArtist != "Various" {
		t.Errorf("unexpected order: %+v", items)
	}
	if items[0].AlbumID != items[1].AlbumID {
		t.Errorf("items of the same album have different album ids")
	}
	if items[2].GenreSource != "manual" || items[2].Genre != "polka" {
		t.Errorf("imported genre not stored: %+v", items[2])
	}
	if items[0].Acoustic != nil {
		t.Errorf("new item has acoustic features")
	}

	albums, err := s.Albums(Query{})
	if err != nil {
		t.Fatalf("Albums failed: %v", err)
	}
	if len(albums) != 2 || albums[0].Items != 2 {
		t.Errorf("unexpected albums: %+v", albums)
	}
}

func TestItemsQuery(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()
	if _, err := s.AddItems(testItems); err != nil {
		t.Fatalf("AddItems failed: %v", err)
	}

	testCases := []struct {
		args     []string
		expected int
	}{
		{[]string{}, 3},
		{[]string{"remix"}, 1},
		{[]string{"artist:Artist A"}, 2},
		{[]string{"artist:Artist A", "title:Track 1"}, 1},
		{[]string{"albumartist:various"}, 1},
		{[]string{"genre_source:manual"}, 1},
		{[]string{"nothing matches"}, 0},
	}
	for _, tc := range testCases {
		items, err := s.Items(ParseQuery(tc.args))
		if err != nil {
			t.Fatalf("Items(%v) error: %v", tc.args, err)
		}
		if len(items) != tc.expected {
			t.Errorf("Items(%v) returned %d items, want %d", tc.args, len(items), tc.expected)
		}
	}

	if _, err := s.Items(ParseQuery([]string{"bitrate:320"})); err == nil {
		t.Errorf("Items() should reject unknown fields")
	}
}

func TestSaveGenre(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()
	ids, err := s.AddItems(testItems[:1])
	if err != nil {
		t.Fatalf("AddItems failed: %v", err)
	}

	item, err := s.Item(ids[0])
	if err != nil {
		t.Fatalf("Item failed: %v", err)
	}
	item.Genre = "techno, electronic"
	item.GenrePrimary = "techno"
	item.GenreSource = autogenre.SourceTitle
	item.Acoustic = &essentia.Features{
		Prediction: essentia.Prediction{Rosamerica: "dan", RosamericaProbability: 0.7, Electronic: "techno", ElectronicProbability: 0.9},
		BPM:        130,
	}
	if err := s.SaveGenre(&item); err != nil {
		t.Fatalf("SaveGenre failed: %v", err)
	}
	if err := s.SaveAcoustic(&item); err != nil {
		t.Fatalf("SaveAcoustic failed: %v", err)
	}

	got, err := s.Item(ids[0])
	if err != nil {
		t.Fatalf("Item failed: %v", err)
	}
	if got.Genre != item.Genre || got.GenrePrimary != "techno" || got.GenreSource != autogenre.SourceTitle {
		t.Errorf("genre not saved: %+v", got)
	}
	if got.Acoustic == nil || *got.Acoustic != *item.Acoustic {
		t.Errorf("acoustic features not saved: %+v", got.Acoustic)
	}
}

func TestSaveAlbumGenre(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()
	if _, err := s.AddItems(testItems); err != nil {
		t.Fatalf("AddItems failed: %v", err)
	}
	albums, err := s.Albums(ParseQuery([]string{"album:Album A"}))
	if err != nil || len(albums) != 1 {
		t.Fatalf("Albums() = %v, %v", albums, err)
	}

	genre := autogenre.AlbumResult{Genre: "rock", Primary: "rock", Source: autogenre.SourceLastFm}
	if err := s.SaveAlbumGenre(albums[0].ID, genre); err != nil {
		t.Fatalf("SaveAlbumGenre failed: %v", err)
	}
	albums, err = s.Albums(ParseQuery([]string{"genre:rock"}))
	if err != nil {
		t.Fatalf("Albums failed: %v", err)
	}
	if len(albums) != 1 || albums[0].GenreSource != autogenre.SourceLastFm {
		t.Errorf("album genre not saved: %+v", albums)
	}

	items, err := s.AlbumItems(albums[0].ID)
	if err != nil {
		t.Fatalf("AlbumItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("AlbumItems returned %d items, want 2", len(items))
	}
}

func TestEnsureSchemaUpgradesOldLibrary(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(createTablesQuery); err != nil {
		t.Fatalf("creating old schema: %v", err)
	}
	if _, err := db.Exec("INSERT INTO Item (title, genre) VALUES ('Old', 'jazz')"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}
	defer s.Close()

	items, err := s.Items(Query{})
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if len(items) != 1 || items[0].Genre != "jazz" || items[0].GenreSource != autogenre.SourceNone {
		t.Errorf("unexpected items after upgrade: %+v", items)
	}

	// Opening twice is fine.
	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("second New(%s) error: %v", dbPath, err)
	}
	s2.Close()
}
