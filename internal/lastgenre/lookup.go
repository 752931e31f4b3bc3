// Package lastgenre looks up item genres from last.fm tags, keeping only
// tags known to the genre tree.
package lastgenre

import (
	"context"

	"github.com/ademuri/autogenre/internal/autogenre"
	"github.com/ademuri/autogenre/internal/genrelist"
	"github.com/ademuri/autogenre/internal/genretree"
)

type Tag struct {
	Name  string
	Count int
}

// TagSource provides the top tags of tracks, albums and artists.
type TagSource interface {
	TrackTags(ctx context.Context, artist, track string) ([]Tag, error)
	AlbumTags(ctx context.Context, artist, album string) ([]Tag, error)
	ArtistTags(ctx context.Context, artist string) ([]Tag, error)
}

type Options struct {
	// Count is the maximum number of genres returned.
	Count int
	// MinWeight drops tags with a lower last.fm weight.
	MinWeight int
	// Canonical accepts any genre of the tree and replaces it with its
	// canonical form. Otherwise only whitelisted tags are accepted.
	Canonical bool
	Separator string
}

func DefaultOptions() Options {
	return Options{
		Count:     1,
		MinWeight: 10,
		Separator: genrelist.DefaultSeparator,
	}
}

// Lookup implements autogenre.Lookup.
type Lookup struct {
	tags TagSource
	tree *genretree.Tree
	opts Options
}

func New(tags TagSource, tree *genretree.Tree, opts Options) *Lookup {
	if opts.Count <= 0 {
		opts.Count = 1
	}
	return &Lookup{tags: tags, tree: tree, opts: opts}
}

// Genre tries the requested granularity first and falls back to coarser
// ones: track, then album, then artist.
func (l *Lookup) Genre(ctx context.Context, item *autogenre.Item, granularity autogenre.Granularity) (string, string, error) {
	albumArtist := item.AlbumArtist
	if albumArtist == "" {
		albumArtist = item.Artist
	}

	type level struct {
		granularity autogenre.Granularity
		fetch       func() ([]Tag, error)
	}
	levels := []level{
		{autogenre.GranularityTrack, func() ([]Tag, error) {
			if item.Title == "" {
				return nil, nil
			}
			return l.tags.TrackTags(ctx, item.Artist, item.Title)
		}},
		{autogenre.GranularityAlbum, func() ([]Tag, error) {
			if item.Album == "" {
				return nil, nil
			}
			return l.tags.AlbumTags(ctx, albumArtist, item.Album)
		}},
		{autogenre.GranularityArtist, func() ([]Tag, error) {
			return l.tags.ArtistTags(ctx, item.Artist)
		}},
	}

	started := false
	for _, lvl := range levels {
		if lvl.granularity == granularity {
			started = true
		}
		if !started {
			continue
		}
		tags, err := lvl.fetch()
		if err != nil {
			return "", "", err
		}
		if genres := l.filter(tags); len(genres) > 0 {
			return genres.Join(l.opts.Separator), string(lvl.granularity), nil
		}
	}
	return "", "", nil
}

// filter keeps the heaviest tags that are genres.
func (l *Lookup) filter(tags []Tag) genrelist.List {
	genres := genrelist.List{}
	for _, t := range tags {
		if len(genres) >= l.opts.Count {
			break
		}
		if t.Count < l.opts.MinWeight {
			continue
		}
		name := genrelist.Normalize(t.Name)
		switch {
		case l.opts.Canonical && l.tree.Contains(name):
			genres = genres.Append(l.tree.Canonicalize(name))
		case l.tree.Whitelisted(name):
			genres = genres.Append(name)
		}
	}
	return genres
}
