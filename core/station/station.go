package station

import (
	"context"
	"sync"
	"sync/atomic"

	"vintagefm/logger"
	"vintagefm/model"
)

// Cursor is one listener's position in the shared playlist. The zero value
// starts at the beginning of whatever playlist is current.
type Cursor struct {
	gen uint64
	pos int
}

// Status summarizes the shared playlist.
type Status struct {
	Playlist   int    `json:"playlist"`
	Generation uint64 `json:"generation"`
}

// Station owns the shared playlist. Every rebuild installs a new snapshot
// under a new generation number; listeners holding an older generation move
// to the start of the new snapshot at their next entry.
type Station struct {
	builder *Builder

	// buildMu serializes rebuilds so a pass is only rebuilt once.
	buildMu sync.Mutex

	mu         sync.Mutex
	playlist   model.Playlist
	generation uint64

	skipGen atomic.Uint64
}

// New creates a station drawing playlists from builder.
func New(builder *Builder) *Station {
	return &Station{builder: builder}
}

// Start builds the first playlist.
func (s *Station) Start(ctx context.Context) {
	s.rebuild(ctx, 0, false)
}

// Skip discards the current playlist and installs a new one. Listeners
// streaming an older generation are interrupted at their next chunk.
func (s *Station) Skip(ctx context.Context) uint64 {
	gen := s.rebuild(ctx, 0, true)
	logger.Info("skip requested", logger.Uint64("generation", gen))
	return gen
}

// Skipped reports whether a skip happened after generation gen was built.
func (s *Station) Skipped(gen uint64) bool {
	return s.skipGen.Load() > gen
}

// Next returns the entry at c and advances it. A cursor from an older
// generation restarts at the beginning of the current snapshot. At the end
// of a pass the playlist is rebuilt, once per generation however many
// listeners reach the end. ok is false when even a fresh playlist is empty.
func (s *Station) Next(ctx context.Context, c *Cursor) (ref model.TrackRef, gen uint64, ok bool) {
	s.mu.Lock()
	current := s.generation
	s.mu.Unlock()
	if current == 0 {
		s.rebuild(ctx, 0, false)
	}

	for attempt := 0; attempt < 2; attempt++ {
		s.mu.Lock()
		if c.gen != s.generation {
			c.gen, c.pos = s.generation, 0
		}
		if c.pos < len(s.playlist) {
			ref = s.playlist[c.pos]
			c.pos++
			gen = c.gen
			s.mu.Unlock()
			return ref, gen, true
		}
		exhausted := c.gen
		s.mu.Unlock()

		if attempt == 0 {
			s.rebuild(ctx, exhausted, false)
		}
	}
	return model.TrackRef{}, c.gen, false
}

// rebuild installs a fresh playlist. Unless force is set, it does nothing
// when the generation has already moved past seen.
func (s *Station) rebuild(ctx context.Context, seen uint64, force bool) uint64 {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	s.mu.Lock()
	current := s.generation
	s.mu.Unlock()
	if !force && current != seen {
		return current
	}

	// The shared playlist must not depend on the listener that triggered it.
	playlist := s.builder.Build(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.playlist = playlist
	s.generation++
	gen := s.generation
	s.mu.Unlock()
	if force {
		s.skipGen.Store(gen)
	}

	logger.Debug("playlist installed", logger.Uint64("generation", gen), logger.Int("entries", len(playlist)))
	return gen
}

// Snapshot returns a copy of the current playlist and its generation.
func (s *Station) Snapshot() (model.Playlist, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(model.Playlist, len(s.playlist))
	copy(out, s.playlist)
	return out, s.generation
}

// Status reports the size and generation of the current playlist.
func (s *Station) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Playlist: len(s.playlist), Generation: s.generation}
}
