package autogenre

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/ademuri/autogenre/internal/essentia"
	"github.com/ademuri/autogenre/internal/genrelist"
	"github.com/ademuri/autogenre/internal/genretree"
)

// Remixes are looked up by track: the album or artist genre usually belongs
// to the original recording.
var remixPattern = regexp.MustCompile(`(?i)^.+\W(remix|bootleg|remake)`)

// Result is the outcome of resolving one item.
type Result struct {
	Genre   string
	Primary string
	Source  Source

	// Changed is set when the result differs from the stored values and
	// should be written back.
	Changed bool
	// Skipped is set for items that were not eligible.
	Skipped bool
	// Analyzed is set when the item's acoustic features were extracted
	// during resolution.
	Analyzed bool
}

// Apply copies the result into item.
func (r Result) Apply(item *Item) {
	item.Genre = r.Genre
	item.GenrePrimary = r.Primary
	item.GenreSource = r.Source
}

type Resolver struct {
	tree     *genretree.Tree
	lookup   Lookup
	analyzer Analyzer
	config   Config
	out      io.Writer
}

// NewResolver validates config against tree. lookup and analyzer may be nil
// if the corresponding source is disabled. Progress is reported to out.
func NewResolver(tree *genretree.Tree, lookup Lookup, analyzer Analyzer, config Config, out io.Writer) (*Resolver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if g := config.ExplicitGenre; g != nil && *g != "" {
		for _, genre := range genrelist.Parse(*g, config.separator()) {
			if !tree.Contains(genre) {
				return nil, fmt.Errorf("provided genre %q is not registered within genre tree", genre)
			}
		}
	}
	if config.UseLastFm && lookup == nil {
		return nil, fmt.Errorf("last.fm lookups enabled without a lookup client")
	}
	if config.UseAcoustic && analyzer == nil {
		return nil, fmt.Errorf("acoustic analysis enabled without an analyzer")
	}
	if out == nil {
		out = io.Discard
	}
	return &Resolver{
		tree:     tree,
		lookup:   lookup,
		analyzer: analyzer,
		config:   config,
		out:      out,
	}, nil
}

// Resolve computes the genre of item. It does not modify the genre fields
// of item, but may set item.Acoustic. Failing sources are reported and
// skipped; only context errors are returned.
func (r *Resolver) Resolve(ctx context.Context, item *Item) (Result, error) {
	explicit := r.config.ExplicitGenre != nil
	all := r.config.All || explicit
	force := r.config.Force || explicit

	res := Result{Genre: item.Genre, Primary: item.GenrePrimary, Source: item.GenreSource}
	if !Eligible(item, all, force) {
		res.Skipped = true
		return res, nil
	}

	sep := r.config.separator()
	genres := genrelist.Parse(item.Genre, sep)
	source := item.GenreSource

	if explicit {
		genres = genrelist.Parse(*r.config.ExplicitGenre, sep)
		source = SourceUser
		if len(genres) == 0 {
			source = SourceNone
		}
		fmt.Fprintf(r.out, "[autogenre] Setting genre '%s' for item: %s\n", genres.Join(sep), item)
	} else {
		if source == SourceUser && item.GenrePrimary != "" && len(genres) == 0 {
			genres = genrelist.New(item.GenrePrimary)
		}
		if source != SourceUser || len(genres) == 0 {
			var err error
			genres, source, err = r.detect(ctx, item, genres, source, &res)
			if err != nil {
				return res, err
			}
		}
	}

	if r.config.IncludeParentGenres && len(genres) > 0 {
		for _, g := range r.tree.Parents(genres.Primary()) {
			genres = genres.Append(g)
		}
	}

	res.Genre = genres.Join(sep)
	res.Primary = genres.Primary()
	res.Source = source
	if len(genres) == 0 && !explicit {
		// Nothing found: keep what is stored.
		res.Genre, res.Primary, res.Source = item.Genre, item.GenrePrimary, item.GenreSource
		return res, nil
	}
	res.Changed = res.Genre != item.Genre || res.Primary != item.GenrePrimary || res.Source != item.GenreSource
	return res, nil
}

func (r *Resolver) detect(ctx context.Context, item *Item, genres genrelist.List, source Source, res *Result) (genrelist.List, Source, error) {
	sep := r.config.separator()

	if r.config.UseLastFm {
		genre, err := r.lastFmGenre(ctx, item)
		if err != nil {
			return nil, source, err
		}
		genres = genrelist.Parse(genre, sep)
		if len(genres) > 0 {
			source = SourceLastFm
		}
	}

	if r.config.UseTitleMatch {
		if genre, from := r.matchGenre(item); genre != "" {
			genres = genres.Prepend(genre)
			source = SourceTitle
			fmt.Fprintf(r.out, "[autogenre] Fixed genre '%s' based on %s of item: %s\n", genres.Join(sep), from, item)
		}
	}

	if r.config.UseAcoustic && len(genres) == 0 {
		acoustic, err := r.essentiaGenre(ctx, item, res)
		if err != nil {
			return nil, source, err
		}
		if len(acoustic) > 0 {
			genres = acoustic
			source = SourceEssentia
		}
	}

	return genres, source, nil
}

func (r *Resolver) lastFmGenre(ctx context.Context, item *Item) (string, error) {
	granularity := r.config.Granularity
	if remixPattern.MatchString(item.Title) && granularity != GranularityTrack {
		granularity = GranularityTrack
	}

	genre, detail, err := r.lookup.Genre(ctx, item, granularity)
	if err != nil {
		if isContextErr(err) {
			return "", fmt.Errorf("last.fm lookup for %s: %w", item, err)
		}
		fmt.Fprintf(r.out, "[autogenre] last.fm lookup failed for item: %s: %v\n", item, err)
		return "", nil
	}
	if genre != "" {
		fmt.Fprintf(r.out, "[autogenre] Got last.fm genre '%s' based on %s for item: %s\n", genre, detail, item)
	}
	return genre, nil
}

// matchGenre looks for a genre in the title, then in the album name.
func (r *Resolver) matchGenre(item *Item) (string, Source) {
	if g := r.tree.Match(item.Title); g != "" {
		return g, SourceTitle
	}
	if item.Album != "" {
		if g := r.tree.Match(item.Album); g != "" {
			return g, SourceAlbum
		}
	}
	return "", SourceNone
}

func (r *Resolver) essentiaGenre(ctx context.Context, item *Item, res *Result) (genrelist.List, error) {
	if item.Acoustic == nil {
		fmt.Fprintf(r.out, "[autogenre] Analyzing item using essentia: %s\n", item)
		if err := r.analyzer.Analyze(ctx, item); err != nil {
			if isContextErr(err) {
				return nil, fmt.Errorf("analyzing %s: %w", item, err)
			}
			fmt.Fprintf(r.out, "[autogenre] Essentia analysis failed for item: %s: %v\n", item, err)
			return nil, nil
		}
		res.Analyzed = item.Acoustic != nil
	}
	if !item.Acoustic.HasGenre() {
		return nil, nil
	}

	genres := essentia.Classify(item.Acoustic.Prediction, r.config.Thresholds)
	if len(genres) > 0 {
		fmt.Fprintf(r.out, "[autogenre] Got essentia genre '%s' for item: %s\n", genres.Join(r.config.separator()), item)
	}
	return genres, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
