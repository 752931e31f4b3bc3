package store

import (
	"database/sql"
	"fmt"

	"github.com/ademuri/autogenre/internal/autogenre"
	"github.com/ademuri/autogenre/internal/essentia"
)

const itemColumns = `
	id, COALESCE(album_id, 0), path, artist, albumartist, album, title,
	genre, genre_primary, genre_source,
	genre_rosamerica, genre_rosamerica_probability,
	genre_electronic, genre_electronic_probability, bpm`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (autogenre.Item, error) {
	var item autogenre.Item
	var source string
	var rosamerica, electronic sql.NullString
	var rosamericaProb, electronicProb, bpm sql.NullFloat64
	err := row.Scan(
		&item.ID, &item.AlbumID, &item.Path, &item.Artist, &item.AlbumArtist, &item.Album, &item.Title,
		&item.Genre, &item.GenrePrimary, &source,
		&rosamerica, &rosamericaProb, &electronic, &electronicProb, &bpm)
	if err != nil {
		return item, err
	}
	item.GenreSource = autogenre.Source(source)

	// bpm is only set once the item was analyzed.
	if bpm.Valid {
		item.Acoustic = &essentia.Features{
			Prediction: essentia.Prediction{
				Rosamerica:            rosamerica.String,
				RosamericaProbability: rosamericaProb.Float64,
				Electronic:            electronic.String,
				ElectronicProbability: electronicProb.Float64,
			},
			BPM: bpm.Float64,
		}
	}
	return item, nil
}

// Items returns the items matching q ordered by album artist.
func (s *Store) Items(q Query) ([]autogenre.Item, error) {
	where, params, err := q.where(itemFields, []string{"artist", "album", "title"})
	if err != nil {
		return nil, err
	}
	query := "SELECT " + itemColumns + " FROM Item WHERE " + where + " ORDER BY albumartist, album, id"
	return s.queryItems(query, params...)
}

// AlbumItems returns the items of an album.
func (s *Store) AlbumItems(albumID int64) ([]autogenre.Item, error) {
	query := "SELECT " + itemColumns + " FROM Item WHERE album_id = ? ORDER BY id"
	return s.queryItems(query, albumID)
}

// Item returns the item with the given id.
func (s *Store) Item(id int64) (autogenre.Item, error) {
	row := s.db.QueryRow("SELECT "+itemColumns+" FROM Item WHERE id = ?", id)
	item, err := scanItem(row)
	if err != nil {
		return item, fmt.Errorf("getting item %d: %w", id, err)
	}
	return item, nil
}

func (s *Store) queryItems(query string, params ...interface{}) ([]autogenre.Item, error) {
	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []autogenre.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type Album struct {
	ID           int64
	AlbumArtist  string
	Name         string
	Genre        string
	GenrePrimary string
	GenreSource  autogenre.Source
	Items        int
}

// Albums returns the albums matching q.
func (s *Store) Albums(q Query) ([]Album, error) {
	where, params, err := q.where(albumFields, []string{"albumartist", "name"})
	if err != nil {
		return nil, err
	}
	query := `
		SELECT a.id, a.albumartist, a.name, a.genre, a.genre_primary, a.genre_source,
		  (SELECT COUNT(*) FROM Item i WHERE i.album_id = a.id)
		FROM Album a
		WHERE ` + where + `
		ORDER BY a.albumartist, a.name`
	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying albums: %w", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		var a Album
		var source string
		if err := rows.Scan(&a.ID, &a.AlbumArtist, &a.Name, &a.Genre, &a.GenrePrimary, &source, &a.Items); err != nil {
			return nil, fmt.Errorf("scanning album: %w", err)
		}
		a.GenreSource = autogenre.Source(source)
		albums = append(albums, a)
	}
	return albums, rows.Err()
}
