package station

import (
	"context"

	"vintagefm/logger"
	"vintagefm/model"
)

// Catalog lists the local files a playlist is drawn from.
type Catalog interface {
	Files() []string
}

// Recommender supplies externally recommended tracks. Implementations fail
// soft and return nil on error.
type Recommender interface {
	Recommend(ctx context.Context, genre string, limit int) []model.TrackRef
}

// Builder assembles playlists: the catalog in a fresh random order followed
// by recommendations in the order received.
type Builder struct {
	catalog     Catalog
	recommender Recommender
	genre       string
	limit       int
	rng         Random
}

// NewBuilder creates a builder. recommender may be nil.
func NewBuilder(catalog Catalog, recommender Recommender, genre string, limit int, rng Random) *Builder {
	if rng == nil {
		rng = DefaultRandom()
	}
	return &Builder{
		catalog:     catalog,
		recommender: recommender,
		genre:       genre,
		limit:       limit,
		rng:         rng,
	}
}

// Build returns a new playlist. Each call reshuffles independently.
func (b *Builder) Build(ctx context.Context) model.Playlist {
	files := b.catalog.Files()
	b.rng.Shuffle(len(files), func(i, j int) {
		files[i], files[j] = files[j], files[i]
	})

	var recs []model.TrackRef
	if b.recommender != nil {
		recs = b.recommender.Recommend(ctx, b.genre, b.limit)
	}

	playlist := make(model.Playlist, 0, len(files)+len(recs))
	for _, f := range files {
		playlist = append(playlist, model.LocalRef(f))
	}
	playlist = append(playlist, recs...)

	logger.Info("playlist built",
		logger.Int("local", len(files)),
		logger.Int("recommended", len(recs)),
		logger.String("genre", b.genre))
	return playlist
}
