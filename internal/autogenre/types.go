// Package autogenre decides the genre of library items from last.fm tags,
// genre mentions in titles and Essentia's acoustic genre models, and
// aggregates item genres into album genres.
package autogenre

import (
	"context"
	"fmt"
	"strings"

	"github.com/ademuri/autogenre/internal/essentia"
)

// Source records which step produced an item's genre.
type Source string

const (
	SourceNone     Source = ""
	SourceUser     Source = "user"
	SourceLastFm   Source = "lastfm"
	SourceTitle    Source = "title"
	SourceEssentia Source = "essentia"
	// SourceAlbum is only reported for title fixes derived from the album
	// name. Items store SourceTitle in that case.
	SourceAlbum Source = "album"
)

// Managed reports whether genres from s may be re-evaluated.
func (s Source) Managed() bool {
	switch s {
	case SourceUser, SourceLastFm, SourceTitle, SourceEssentia:
		return true
	}
	return false
}

// Granularity is the specificity of a last.fm lookup.
type Granularity string

const (
	GranularityTrack  Granularity = "track"
	GranularityAlbum  Granularity = "album"
	GranularityArtist Granularity = "artist"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case GranularityTrack, GranularityAlbum, GranularityArtist:
		return g, nil
	}
	return "", fmt.Errorf("invalid lookup granularity %q, expected track, album or artist", s)
}

// Item is the part of a library item the resolver reads and writes.
type Item struct {
	ID          int64
	AlbumID     int64
	Path        string
	Artist      string
	AlbumArtist string
	Album       string
	Title       string

	Genre        string
	GenrePrimary string
	GenreSource  Source

	// Acoustic is nil until the item has been analyzed.
	Acoustic *essentia.Features
}

func (i *Item) String() string {
	return fmt.Sprintf("%s - %s - %s", i.Artist, i.Album, i.Title)
}

// Lookup queries a metadata service for the genre of an item. It returns an
// empty genre if the service knows none. detail describes what the genre
// was derived from.
type Lookup interface {
	Genre(ctx context.Context, item *Item, granularity Granularity) (genre, detail string, err error)
}

// Analyzer fills in item.Acoustic.
type Analyzer interface {
	Analyze(ctx context.Context, item *Item) error
}

// FeatureExtractor is implemented by *essentia.Extractor.
type FeatureExtractor interface {
	Extract(ctx context.Context, path string) (*essentia.Features, error)
}

type extractorAnalyzer struct {
	extractor FeatureExtractor
}

// NewAnalyzer analyzes items by extracting features from their audio file.
func NewAnalyzer(x FeatureExtractor) Analyzer {
	return extractorAnalyzer{extractor: x}
}

func (a extractorAnalyzer) Analyze(ctx context.Context, item *Item) error {
	f, err := a.extractor.Extract(ctx, item.Path)
	if err != nil {
		return err
	}
	item.Acoustic = f
	return nil
}
