package store

import (
	"database/sql"
	"fmt"

	"github.com/ademuri/autogenre/internal/autogenre"
)

// ItemImport describes an item to add to the library.
type ItemImport struct {
	Path        string `yaml:"path"`
	Artist      string `yaml:"artist"`
	AlbumArtist string `yaml:"albumartist"`
	Album       string `yaml:"album"`
	Title       string `yaml:"title"`
	Genre       string `yaml:"genre"`
	GenreSource string `yaml:"genre_source"`
}

// AddItems inserts a batch of items transactionally and returns their ids.
func (s *Store) AddItems(items []ItemImport) ([]int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		albumArtist := item.AlbumArtist
		if albumArtist == "" {
			albumArtist = item.Artist
		}
		albumID, err := createAlbum(tx, albumArtist, item.Album)
		if err != nil {
			return nil, err
		}
		res, err := tx.Exec(`
			INSERT INTO Item (album_id, path, artist, albumartist, album, title, genre, genre_source)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			albumID, item.Path, item.Artist, albumArtist, item.Album, item.Title, item.Genre, item.GenreSource)
		if err != nil {
			return nil, fmt.Errorf("inserting item %q: %w", item.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("getting item id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return ids, nil
}

func createAlbum(tx *sql.Tx, albumArtist, name string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM Album WHERE albumartist = ? AND name = ?", albumArtist, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("checking album %q: %w", name, err)
	}

	res, err := tx.Exec("INSERT INTO Album (albumartist, name) VALUES (?, ?)", albumArtist, name)
	if err != nil {
		return 0, fmt.Errorf("inserting album %q for %q: %w", name, albumArtist, err)
	}
	return res.LastInsertId()
}

// SaveGenre writes the genre fields of item.
func (s *Store) SaveGenre(item *autogenre.Item) error {
	_, err := s.db.Exec(
		"UPDATE Item SET genre = ?, genre_primary = ?, genre_source = ? WHERE id = ?",
		item.Genre, item.GenrePrimary, string(item.GenreSource), item.ID)
	if err != nil {
		return fmt.Errorf("saving genre of item %d: %w", item.ID, err)
	}
	return nil
}

// SaveAcoustic writes the acoustic features of item. Items without
// features are left unchanged.
func (s *Store) SaveAcoustic(item *autogenre.Item) error {
	a := item.Acoustic
	if a == nil {
		return nil
	}
	_, err := s.db.Exec(`
		UPDATE Item SET
		  genre_rosamerica = ?, genre_rosamerica_probability = ?,
		  genre_electronic = ?, genre_electronic_probability = ?,
		  bpm = ?
		WHERE id = ?`,
		a.Rosamerica, a.RosamericaProbability,
		a.Electronic, a.ElectronicProbability,
		a.BPM, item.ID)
	if err != nil {
		return fmt.Errorf("saving acoustic features of item %d: %w", item.ID, err)
	}
	return nil
}

// SaveAlbumGenre writes the aggregated genre of an album.
func (s *Store) SaveAlbumGenre(albumID int64, genre autogenre.AlbumResult) error {
	_, err := s.db.Exec(
		"UPDATE Album SET genre = ?, genre_primary = ?, genre_source = ? WHERE id = ?",
		genre.Genre, genre.Primary, string(genre.Source), albumID)
	if err != nil {
		return fmt.Errorf("saving genre of album %d: %w", albumID, err)
	}
	return nil
}
