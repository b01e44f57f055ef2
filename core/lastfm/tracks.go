package lastfm

import (
	"context"
	"net/url"
	"strconv"

	"vintagefm/model"
)

type artistName struct {
	Name string `json:"name"`
}

type image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// imageSizes ranks the size labels Last.fm uses, smallest first.
var imageSizes = map[string]int{
	"small":      1,
	"medium":     2,
	"large":      3,
	"extralarge": 4,
	"mega":       5,
}

// largestImage picks the biggest non-empty artwork URL. Unknown size labels
// rank below the known ones; ties go to the later entry.
func largestImage(images []image) string {
	best, bestRank := "", -1
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		if rank := imageSizes[img.Size]; rank >= bestRank {
			best, bestRank = img.URL, rank
		}
	}
	return best
}

// TopTracks returns up to limit of the most popular tracks for tag, in the
// order Last.fm returned them. Entries without a title or artist are dropped.
func (c *Client) TopTracks(ctx context.Context, tag string, limit int) ([]model.TrackRef, error) {
	var result struct {
		Tracks struct {
			Track []struct {
				Name   string     `json:"name"`
				Artist artistName `json:"artist"`
			} `json:"track"`
		} `json:"tracks"`
	}

	params := url.Values{}
	params.Set("tag", tag)
	params.Set("limit", strconv.Itoa(limit))
	if err := c.get(ctx, "tag.gettoptracks", params, &result); err != nil {
		return nil, err
	}

	refs := make([]model.TrackRef, 0, len(result.Tracks.Track))
	for _, t := range result.Tracks.Track {
		if t.Name == "" || t.Artist.Name == "" {
			continue
		}
		refs = append(refs, model.RemoteRef(t.Name, t.Artist.Name))
		if limit > 0 && len(refs) == limit {
			break
		}
	}
	return refs, nil
}

// TrackInfo looks up display metadata for a title and artist.
func (c *Client) TrackInfo(ctx context.Context, title, artist string) (*model.TrackInfo, error) {
	var result struct {
		Track struct {
			Name   string     `json:"name"`
			Artist artistName `json:"artist"`
			Album  struct {
				Title string  `json:"title"`
				Image []image `json:"image"`
			} `json:"album"`
		} `json:"track"`
	}

	params := url.Values{}
	params.Set("artist", artist)
	params.Set("track", title)
	if err := c.get(ctx, "track.getInfo", params, &result); err != nil {
		return nil, err
	}

	info := &model.TrackInfo{
		Title:  result.Track.Name,
		Artist: result.Track.Artist.Name,
		Album:  result.Track.Album.Title,
		Image:  largestImage(result.Track.Album.Image),
	}
	if info.Title == "" {
		info.Title = title
	}
	if info.Artist == "" {
		info.Artist = artist
	}
	return info, nil
}
