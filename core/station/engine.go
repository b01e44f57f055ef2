package station

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"vintagefm/core/announcer"
	"vintagefm/core/catalog"
	"vintagefm/logger"
	"vintagefm/model"
)

// Lookup resolves display metadata for a recommended track. It returns nil
// when nothing better than the bare title and artist is known.
type Lookup interface {
	TrackInfo(ctx context.Context, title, artist string) *model.TrackInfo
}

// Speaker renders announcer lines. An empty result means silence.
type Speaker interface {
	Speak(ctx context.Context, text string) []byte
}

// EngineConfig tunes the streaming loop.
type EngineConfig struct {
	ChunkSize        int
	IntroProbability float64
	TrackPause       time.Duration
	IdleWait         time.Duration
}

// DefaultEngineConfig matches the station's on-air pacing.
var DefaultEngineConfig = EngineConfig{
	ChunkSize:        1024,
	IntroProbability: 0.3,
	TrackPause:       time.Second,
	IdleWait:         5 * time.Second,
}

// Engine generates the audio stream each listener receives.
type Engine struct {
	station    *Station
	nowPlaying *NowPlayingState
	lookup     Lookup
	speaker    Speaker
	rng        Random
	listeners  *Registry
	exists     func(path string) bool
	cfg        EngineConfig
}

// NewEngine wires the loop to its collaborators. lookup and speaker may be nil.
func NewEngine(st *Station, np *NowPlayingState, lookup Lookup, speaker Speaker, rng Random, cfg EngineConfig) *Engine {
	if rng == nil {
		rng = DefaultRandom()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultEngineConfig.ChunkSize
	}
	if cfg.IdleWait <= 0 {
		cfg.IdleWait = DefaultEngineConfig.IdleWait
	}
	return &Engine{
		station:    st,
		nowPlaying: np,
		lookup:     lookup,
		speaker:    speaker,
		rng:        rng,
		listeners:  NewRegistry(),
		exists:     catalog.FileExists,
		cfg:        cfg,
	}
}

// Station returns the shared station.
func (e *Engine) Station() *Station {
	return e.station
}

// NowPlaying returns the shared now-playing state.
func (e *Engine) NowPlaying() *NowPlayingState {
	return e.nowPlaying
}

// Listeners returns the registry of connected listeners.
func (e *Engine) Listeners() *Registry {
	return e.listeners
}

// Stream writes the station to w until ctx is done or a write fails. It
// never returns nil: the error is ctx.Err() or the write error.
func (e *Engine) Stream(ctx context.Context, w io.Writer, client string) error {
	l := e.listeners.Join(client)
	defer e.listeners.Leave(l.ID)

	logger.Info("listener connected", logger.String("listener", l.ID), logger.String("client", client))
	start := time.Now()

	err := e.run(ctx, w)

	logger.Info("listener disconnected",
		logger.String("listener", l.ID),
		logger.Duration("duration", time.Since(start)),
		logger.ErrorField(err))
	return err
}

func (e *Engine) run(ctx context.Context, w io.Writer) error {
	var cursor Cursor
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ref, gen, ok := e.station.Next(ctx, &cursor)
		if !ok {
			logger.Debug("playlist empty, waiting", logger.Duration("wait", e.cfg.IdleWait))
			if err := sleep(ctx, e.cfg.IdleWait); err != nil {
				return err
			}
			continue
		}

		if err := e.play(ctx, w, ref, gen); err != nil {
			return err
		}
	}
}

// play emits one entry: pre-announcement, audio, outro, pause.
func (e *Engine) play(ctx context.Context, w io.Writer, ref model.TrackRef, gen uint64) error {
	track, file := e.resolve(ref)
	if file != nil {
		defer file.Close()
	}

	e.publish(ctx, track)

	if err := e.announceBefore(ctx, w, track); err != nil {
		return err
	}

	if file != nil {
		interrupted, err := e.emitFile(ctx, w, file, gen)
		if err != nil {
			return err
		}
		if interrupted {
			logger.Debug("track interrupted by skip", logger.String("track", track.Title))
			return nil
		}
	}

	if err := e.announce(ctx, w, announcer.OutroLine(e.rng.IntN)); err != nil {
		return err
	}
	return sleep(ctx, e.cfg.TrackPause)
}

// resolve classifies ref by checking the filesystem now, not at build time.
// A local entry that cannot be opened is announced only.
func (e *Engine) resolve(ref model.TrackRef) (model.ResolvedTrack, *os.File) {
	track := model.Classify(ref, e.exists)
	if track.Kind != model.KindLocal {
		if ref.Path != "" {
			logger.Warn("catalog file missing, announcing only", logger.String("path", ref.Path))
		}
		return track, nil
	}

	f, err := os.Open(ref.Path)
	if err != nil {
		logger.Warn("failed to open track, announcing only", logger.String("path", ref.Path), logger.ErrorField(err))
		track.Kind = model.KindRemote
		return track, nil
	}
	return track, f
}

func (e *Engine) publish(ctx context.Context, track model.ResolvedTrack) {
	if track.Kind == model.KindLocal {
		e.nowPlaying.Set(model.NowPlayingFromLocal(track.Title))
		return
	}

	var info *model.TrackInfo
	if e.lookup != nil && track.Artist != "" {
		info = e.lookup.TrackInfo(ctx, track.Title, track.Artist)
	}
	e.nowPlaying.Set(model.NowPlayingFromRemote(track.Title, track.Artist, info))
}

func (e *Engine) announceBefore(ctx context.Context, w io.Writer, track model.ResolvedTrack) error {
	if track.Kind == model.KindRemote {
		return e.announce(ctx, w, announcer.UpNextLine(track))
	}
	if e.rng.Float64() < e.cfg.IntroProbability {
		return e.announce(ctx, w, announcer.IntroLine)
	}
	return nil
}

func (e *Engine) announce(ctx context.Context, w io.Writer, text string) error {
	if e.speaker == nil {
		return nil
	}
	audio := e.speaker.Speak(ctx, text)
	if len(audio) == 0 {
		return nil
	}
	if _, err := w.Write(audio); err != nil {
		return fmt.Errorf("write announcement: %w", err)
	}
	return nil
}

// emitFile copies f to w chunk by chunk. It stops early, reporting
// interrupted, when a skip replaces generation gen. Read errors end the
// track but not the stream.
func (e *Engine) emitFile(ctx context.Context, w io.Writer, f *os.File, gen uint64) (interrupted bool, err error) {
	buf := make([]byte, e.cfg.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if e.station.Skipped(gen) {
			return true, nil
		}

		n, readErr := f.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return false, fmt.Errorf("write audio: %w", err)
			}
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				logger.Warn("failed to read track", logger.String("path", f.Name()), logger.ErrorField(readErr))
			}
			return false, nil
		}
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
