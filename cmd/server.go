package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vintagefm/cache"
	"vintagefm/config"
	"vintagefm/core/announcer"
	"vintagefm/core/catalog"
	"vintagefm/core/lastfm"
	"vintagefm/core/station"
	"vintagefm/core/tts"
	"vintagefm/logger"
	"vintagefm/server"
	"vintagefm/storage"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Vintage FM server",
	Long:  `Start the HTTP server that serves the stream, now-playing metadata and the station page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Minio.PullOnStart {
		pullCatalog(ctx, cfg)
	}

	cat := catalog.Scan(cfg.Station.MusicDir, cfg.Station.AudioExtensions)
	logger.Info("catalog scanned",
		logger.String("dir", cfg.Station.MusicDir),
		logger.Strings("extensions", cfg.Station.AudioExtensions),
		logger.Int("files", cat.Len()),
		logger.Bool("watch", cfg.Station.WatchCatalog))

	var drift server.DriftReporter
	if cfg.Station.WatchCatalog {
		watcher := catalog.NewWatcher(cat, cfg.Station.AudioExtensions)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn("catalog watcher unavailable", logger.ErrorField(err))
			}
		}()
		drift = watcher
	}

	lfm := lastfm.NewClient(cfg.LastFM.APIKey)
	lfm.SetBaseURL(cfg.LastFM.BaseURL)
	lfm.SetTimeout(cfg.LastFM.Timeout)
	if !lfm.Enabled() {
		logger.Warn("LASTFM_API_KEY not set, playing the local catalog only")
	}

	host := newAnnouncer(cfg)

	rng := station.DefaultRandom()
	builder := station.NewBuilder(cat, lastfm.NewRecommender(lfm), cfg.Station.Genre, cfg.Station.RecommendLimit, rng)
	st := station.New(builder)
	st.Start(ctx)
	logger.Info("station on air",
		logger.String("genre", cfg.Station.Genre),
		logger.Float64("intro_probability", cfg.Station.IntroProbability),
		logger.Duration("track_pause", cfg.Station.TrackPause))

	engine := station.NewEngine(st, station.NewNowPlayingState(), lastfm.NewLookup(lfm), host, rng, station.EngineConfig{
		ChunkSize:        cfg.Station.ChunkSize,
		IntroProbability: cfg.Station.IntroProbability,
		TrackPause:       cfg.Station.TrackPause,
		IdleWait:         cfg.Station.IdleWait,
	})

	return server.New(cfg, engine, cat.Len(), drift).Run(ctx)
}

// newAnnouncer builds the host voice, with the Redis clip cache when enabled.
func newAnnouncer(cfg *config.Config) *announcer.Announcer {
	voice := tts.NewClient(cfg.Voice.APIKey, cfg.Voice.VoiceID)
	voice.SetBaseURL(cfg.Voice.BaseURL)
	voice.SetModel(cfg.Voice.ModelID)
	voice.SetTimeout(cfg.Voice.Timeout)
	if !voice.Enabled() {
		logger.Warn("ELEVENLABS_API_KEY not set, the host will be text only")
	}

	opts := []announcer.Option{announcer.WithTimeout(cfg.Voice.Timeout)}
	if cfg.Redis.Enabled {
		client, err := cache.ConnectRedis(cfg.Redis)
		if err != nil {
			logger.Warn("speech cache disabled", logger.ErrorField(err))
		} else {
			logger.Info("speech cache enabled",
				logger.String("addr", client.Options().Addr),
				logger.Duration("ttl", cfg.Redis.TTL))
			opts = append(opts, announcer.WithCache(cache.NewSpeechCache(client, cfg.Redis.TTL)))
		}
	}
	return announcer.New(voice, opts...)
}

// pullCatalog seeds the music directory from the bucket. Failures leave
// whatever is already on disk.
func pullCatalog(ctx context.Context, cfg *config.Config) {
	if !cfg.MinioEnabled() {
		logger.Warn("MINIO_PULL_ON_START set without MinIO credentials")
		return
	}
	bucket, err := storage.NewCatalogBucket(cfg.Minio, cfg.Station.AudioExtensions)
	if err != nil {
		logger.Warn("failed to pull music", logger.ErrorField(err))
		return
	}

	pullCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()
	if _, err := bucket.Pull(pullCtx, cfg.Station.MusicDir); err != nil {
		logger.Warn("failed to pull music", logger.ErrorField(err))
	}
}
