package lastfm

import (
	"context"
	"errors"

	"vintagefm/logger"
	"vintagefm/model"
)

// Recommender adapts Client to the playlist builder: failures are logged and
// degrade to no recommendations.
type Recommender struct {
	client *Client
}

// NewRecommender wraps client.
func NewRecommender(client *Client) *Recommender {
	return &Recommender{client: client}
}

// Recommend returns up to limit tracks for genre, or nil on any failure.
func (r *Recommender) Recommend(ctx context.Context, genre string, limit int) []model.TrackRef {
	if limit <= 0 {
		return nil
	}
	refs, err := r.client.TopTracks(ctx, genre, limit)
	if err != nil {
		if !errors.Is(err, ErrDisabled) {
			logger.Warn("recommendation fetch failed",
				logger.String("genre", genre),
				logger.Int("limit", limit),
				logger.ErrorField(err))
		}
		return nil
	}
	logger.Debug("recommendations fetched", logger.String("genre", genre), logger.Int("count", len(refs)))
	return refs
}

// Lookup adapts Client to the now-playing resolver.
type Lookup struct {
	client *Client
}

// NewLookup wraps client.
func NewLookup(client *Client) *Lookup {
	return &Lookup{client: client}
}

// TrackInfo returns display metadata, or nil when the lookup fails or the
// artist is unknown.
func (l *Lookup) TrackInfo(ctx context.Context, title, artist string) *model.TrackInfo {
	if artist == "" {
		return nil
	}
	info, err := l.client.TrackInfo(ctx, title, artist)
	if err != nil {
		if !errors.Is(err, ErrDisabled) {
			logger.Warn("track info fetch failed",
				logger.String("title", title),
				logger.String("artist", artist),
				logger.ErrorField(err))
		}
		return nil
	}
	return info
}
