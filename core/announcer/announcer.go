package announcer

import (
	"context"
	"time"

	"vintagefm/logger"
)

// Synthesizer turns text into audio. Voice identifies the rendered voice so
// cached clips are never shared between voices.
type Synthesizer interface {
	Enabled() bool
	Voice() string
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ClipCache stores synthesized clips. Misses return nil.
type ClipCache interface {
	Get(ctx context.Context, voice, text string) []byte
	Set(ctx context.Context, voice, text string, audio []byte)
}

const defaultTimeout = 20 * time.Second

// Announcer produces the host's spoken segments.
type Announcer struct {
	synth   Synthesizer
	cache   ClipCache
	timeout time.Duration
}

// Option configures an Announcer.
type Option func(*Announcer)

// WithCache reuses clips across plays and restarts.
func WithCache(c ClipCache) Option {
	return func(a *Announcer) { a.cache = c }
}

// WithTimeout bounds a single synthesis call.
func WithTimeout(d time.Duration) Option {
	return func(a *Announcer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// New creates an announcer speaking through synth, which may be nil.
func New(synth Synthesizer, opts ...Option) *Announcer {
	a := &Announcer{synth: synth, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Speak renders text. It returns nil when synthesis is unavailable or fails,
// and never waits longer than the configured timeout.
func (a *Announcer) Speak(ctx context.Context, text string) []byte {
	if a == nil || a.synth == nil || !a.synth.Enabled() {
		logger.Info("host (text only)", logger.String("text", text))
		return nil
	}

	voice := a.synth.Voice()
	if a.cache != nil {
		if audio := a.cache.Get(ctx, voice, text); len(audio) > 0 {
			return audio
		}
	}

	speakCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	audio, err := a.synth.Synthesize(speakCtx, text)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("speech synthesis failed",
				logger.String("text", text),
				logger.Duration("elapsed", time.Since(start)),
				logger.ErrorField(err))
		}
		return nil
	}
	logger.Debug("announcement synthesized",
		logger.String("text", text),
		logger.Int("bytes", len(audio)),
		logger.Duration("elapsed", time.Since(start)))

	if a.cache != nil {
		a.cache.Set(ctx, voice, text, audio)
	}
	return audio
}
