package lastgenre

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

// last.fm error code for unknown artists, albums and tracks.
const errCodeInvalidParameters = 6

// Client fetches top tags from the last.fm API. Requests are paced to one
// per second and retried on server errors.
type Client struct {
	api     *lastfm.Api
	limiter *rate.Limiter
}

func NewClient(apiKey, secret string) *Client {
	api := lastfm.New(apiKey, secret)
	api.SetUserAgent("autogenre/1.0")
	return &Client{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(1*time.Second), 1),
	}
}

func (c *Client) TrackTags(ctx context.Context, artist, track string) ([]Tag, error) {
	var tags []Tag
	err := c.do(ctx, func() error {
		res, err := c.api.Track.GetTopTags(lastfm.P{
			"artist":      artist,
			"track":       track,
			"autocorrect": 1,
		})
		if err != nil {
			return err
		}
		tags = tags[:0]
		for _, t := range res.Tags {
			tags = append(tags, Tag{Name: t.Name, Count: parseCount(fmt.Sprint(t.Count))})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching tags for track %s - %s: %w", artist, track, err)
	}
	return tags, nil
}

func (c *Client) AlbumTags(ctx context.Context, artist, album string) ([]Tag, error) {
	var tags []Tag
	err := c.do(ctx, func() error {
		res, err := c.api.Album.GetTopTags(lastfm.P{
			"artist":      artist,
			"album":       album,
			"autocorrect": 1,
		})
		if err != nil {
			return err
		}
		tags = tags[:0]
		for _, t := range res.Tags {
			tags = append(tags, Tag{Name: t.Name, Count: parseCount(t.Count)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching tags for album %s - %s: %w", artist, album, err)
	}
	return tags, nil
}

func (c *Client) ArtistTags(ctx context.Context, artist string) ([]Tag, error) {
	var tags []Tag
	err := c.do(ctx, func() error {
		res, err := c.api.Artist.GetTopTags(lastfm.P{
			"artist":      artist,
			"autocorrect": 1,
		})
		if err != nil {
			return err
		}
		tags = tags[:0]
		for _, t := range res.Tags {
			tags = append(tags, Tag{Name: t.Name, Count: parseCount(t.Count)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching tags for artist %s: %w", artist, err)
	}
	return tags, nil
}

// do waits for the rate limiter and runs fn, retrying 5xx errors. Unknown
// entities yield no tags instead of an error.
func (c *Client) do(ctx context.Context, fn func() error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := retry.Do(
		fn,
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var lerr *lastfm.LastfmError
			if errors.As(err, &lerr) && lerr.Code/100 == 5 {
				fmt.Printf("last.fm errored, retrying: %v\n", lerr)
				return true
			}
			return false
		}),
	)
	var lerr *lastfm.LastfmError
	if errors.As(err, &lerr) && lerr.Code == errCodeInvalidParameters {
		return nil
	}
	return err
}

func parseCount(s string) int {
	c, _ := strconv.Atoi(s)
	return c
}
