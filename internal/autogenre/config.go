package autogenre

import (
	"fmt"

	"github.com/ademuri/autogenre/internal/essentia"
	"github.com/ademuri/autogenre/internal/genrelist"
)

// Config selects the sources the resolver consults and which items it may
// change.
type Config struct {
	// Pretend computes changes without writing them back.
	Pretend bool
	// Force re-evaluates items that already have a genre from a managed
	// source.
	Force bool
	// All also re-evaluates items whose genre has no recorded source.
	All bool

	UseLastFm           bool
	UseAcoustic         bool
	UseTitleMatch       bool
	IncludeParentGenres bool

	// ExplicitGenre, when set, is assigned to every selected item. It
	// implies Force and All. An empty value clears the genre.
	ExplicitGenre *string

	// Granularity of last.fm lookups for items that are not remixes.
	Granularity Granularity
	Separator   string
	Thresholds  essentia.Thresholds
}

func DefaultConfig() Config {
	return Config{
		UseLastFm:     true,
		UseAcoustic:   true,
		UseTitleMatch: true,
		Granularity:   GranularityAlbum,
		Separator:     genrelist.DefaultSeparator,
		Thresholds:    essentia.DefaultThresholds,
	}
}

func (c Config) Validate() error {
	if _, err := ParseGranularity(string(c.Granularity)); err != nil {
		return err
	}
	thresholds := map[string]float64{
		"genre_electronic_strong":  c.Thresholds.ElectronicStrong,
		"genre_rosamerica_strong":  c.Thresholds.RosamericaStrong,
		"genre_electronic_prepend": c.Thresholds.ElectronicPrepend,
		"genre_electronic_append":  c.Thresholds.ElectronicAppend,
	}
	for name, v := range thresholds {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
		}
	}
	return nil
}

func (c Config) separator() string {
	if c.Separator == "" {
		return genrelist.DefaultSeparator
	}
	return c.Separator
}

// Eligible reports whether the genre of item may be changed. Items with a
// genre from an unknown source are never overwritten.
func Eligible(item *Item, all, force bool) bool {
	empty := item.Genre == ""
	src := item.GenreSource
	return (empty || src.Managed() || (src == SourceNone && all)) && (empty || force)
}
