package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the music library: items grouped into albums.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const createTablesQuery = `
CREATE TABLE IF NOT EXISTS Album (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  albumartist TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  UNIQUE (albumartist, name)
);

CREATE TABLE IF NOT EXISTS Item (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  album_id INTEGER,
  path TEXT NOT NULL DEFAULT '',
  artist TEXT NOT NULL DEFAULT '',
  albumartist TEXT NOT NULL DEFAULT '',
  album TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  genre TEXT NOT NULL DEFAULT '',
  FOREIGN KEY (album_id) REFERENCES Album(id)
);
`

func createTables(db *sql.DB) error {
	if _, err := db.Exec(createTablesQuery); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

// ensureSchema adds the columns managed by autogenre to libraries created
// before they existed.
func ensureSchema(db *sql.DB) error {
	columns := []struct {
		table   string
		column  string
		typeDef string
	}{
		{"Item", "genre_primary", "TEXT NOT NULL DEFAULT ''"},
		{"Item", "genre_source", "TEXT NOT NULL DEFAULT ''"},
		{"Item", "genre_rosamerica", "TEXT"},
		{"Item", "genre_rosamerica_probability", "REAL"},
		{"Item", "genre_electronic", "TEXT"},
		{"Item", "genre_electronic_probability", "REAL"},
		{"Item", "bpm", "REAL"},
		{"Album", "genre", "TEXT NOT NULL DEFAULT ''"},
		{"Album", "genre_primary", "TEXT NOT NULL DEFAULT ''"},
		{"Album", "genre_source", "TEXT NOT NULL DEFAULT ''"},
	}
	for _, c := range columns {
		if err := addColumnIfNotExists(db, c.table, c.column, c.typeDef); err != nil {
			return err
		}
	}
	return nil
}

func addColumnIfNotExists(db *sql.DB, table, column, typeDef string) error {
	exists, err := columnExists(db, table, column)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if !exists {
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typeDef)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", table, column, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, tableName string, columnName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dfltValue interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	return false, rows.Err()
}
