package station

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"vintagefm/core/announcer"
	"vintagefm/core/catalog"
	"vintagefm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sayingSpeaker renders every line as a recognizable marker.
type sayingSpeaker struct{}

func (sayingSpeaker) Speak(_ context.Context, text string) []byte {
	return []byte("[say:" + text + "]")
}

type fakeLookup struct {
	info *model.TrackInfo
}

func (f fakeLookup) TrackInfo(context.Context, string, string) *model.TrackInfo {
	return f.info
}

// recorder keeps each Write as a separate segment and lets a test react to it.
type recorder struct {
	mu      sync.Mutex
	segs    []string
	onWrite func(segs []string)
}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	r.segs = append(r.segs, string(p))
	segs := append([]string(nil), r.segs...)
	r.mu.Unlock()
	if r.onWrite != nil {
		r.onWrite(segs)
	}
	return len(p), nil
}

func (r *recorder) segments() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.segs...)
}

func said(seg string) (string, bool) {
	if !strings.HasPrefix(seg, "[say:") {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(seg, "[say:"), "]"), true
}

func countOutros(segs []string) int {
	n := 0
	for _, s := range segs {
		if text, ok := said(s); ok && announcer.IsOutro(text) {
			n++
		}
	}
	return n
}

var quietConfig = EngineConfig{
	ChunkSize:        4,
	IntroProbability: 0,
	TrackPause:       0,
	IdleWait:         10 * time.Millisecond,
}

func newTestEngine(t *testing.T, c *catalog.Catalog, recs []model.TrackRef, speaker Speaker, cfg EngineConfig) *Engine {
	t.Helper()
	rng := NewRandom(7, 8)
	st := New(NewBuilder(c, &fakeRecommender{refs: recs}, "jazz", 5, rng))
	return NewEngine(st, NewNowPlayingState(), fakeLookup{}, speaker, rng, cfg)
}

func TestStreamEndToEnd(t *testing.T) {
	c := testCatalog(t, map[string]string{"a.mp3": "AAAAAA", "b.mp3": "BBBBBB"})
	e := newTestEngine(t, c, []model.TrackRef{model.RemoteRef("X", "Y")}, sayingSpeaker{}, quietConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{onWrite: func(segs []string) {
		if countOutros(segs) >= 3 {
			cancel()
		}
	}}

	err := e.Stream(ctx, rec, "test")
	require.ErrorIs(t, err, context.Canceled)

	segs := rec.segments()
	idx := -1
	for i, s := range segs {
		if text, ok := said(s); ok && text == "Up next, X - Y." {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0, "segments: %q", segs)
	require.Less(t, idx+1, len(segs))

	outro, ok := said(segs[idx+1])
	require.True(t, ok, "raw audio followed the remote announcement: %q", segs[idx+1])
	assert.True(t, announcer.IsOutro(outro))

	before := strings.Join(segs[:idx], "")
	assert.Contains(t, before, "AAAAAA")
	assert.Contains(t, before, "BBBBBB")
	assert.Equal(t, 2, countOutros(segs[:idx]))
	assert.Zero(t, e.Listeners().Count())
}

func TestStreamPublishesNowPlaying(t *testing.T) {
	c := testCatalog(t, map[string]string{"a.mp3": "AAAA"})
	e := newTestEngine(t, c, nil, sayingSpeaker{}, quietConfig)

	assert.Equal(t, model.NowPlaying{}, e.NowPlaying().Get())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var seen model.NowPlaying
	rec := &recorder{onWrite: func(segs []string) {
		if segs[len(segs)-1] == "AAAA" {
			seen = e.NowPlaying().Get()
			assert.Equal(t, 1, e.Listeners().Count())
			cancel()
		}
	}}

	require.ErrorIs(t, e.Stream(ctx, rec, "test"), context.Canceled)
	assert.Equal(t, model.NowPlayingFromLocal("a.mp3"), seen)
	assert.Nil(t, seen.Artist)
	assert.Nil(t, seen.Album)
	assert.Nil(t, seen.Image)
}

func TestStreamRemoteUsesLookup(t *testing.T) {
	rng := NewRandom(1, 1)
	st := New(NewBuilder(catalog.New("", nil), &fakeRecommender{refs: []model.TrackRef{model.RemoteRef("X", "Y")}}, "jazz", 5, rng))
	info := &model.TrackInfo{Title: "X", Artist: "Y", Album: "Z", Image: "http://img/mega.png"}
	e := NewEngine(st, NewNowPlayingState(), fakeLookup{info: info}, sayingSpeaker{}, rng, quietConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{onWrite: func([]string) { cancel() }}

	require.ErrorIs(t, e.Stream(ctx, rec, "test"), context.Canceled)
	assert.Equal(t, model.NowPlayingFromRemote("X", "Y", info), e.NowPlaying().Get())
}

func TestStreamDeletedFileIsAnnounced(t *testing.T) {
	c := testCatalog(t, map[string]string{"a.mp3": "AAAA"})
	e := newTestEngine(t, c, nil, sayingSpeaker{}, quietConfig)
	e.Station().Start(context.Background())

	require.NoError(t, os.Remove(filepath.Join(c.Dir(), "a.mp3")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{onWrite: func(segs []string) {
		if countOutros(segs) >= 1 {
			cancel()
		}
	}}

	require.ErrorIs(t, e.Stream(ctx, rec, "test"), context.Canceled)

	segs := rec.segments()
	require.Len(t, segs, 2)
	assert.Equal(t, "[say:Up next, a.mp3.]", segs[0])
	text, _ := said(segs[1])
	assert.True(t, announcer.IsOutro(text))

	np := e.NowPlaying().Get()
	assert.Equal(t, "a.mp3", model.Value(np.Title))
	assert.Nil(t, np.Artist)
	assert.Equal(t, model.SourceRemote, model.Value(np.Source))
}

func TestStreamLocalIntro(t *testing.T) {
	tests := []struct {
		name        string
		probability float64
		intro       bool
	}{
		{name: "always", probability: 1, intro: true},
		{name: "never", probability: 0, intro: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCatalog(t, map[string]string{"a.mp3": "AAAA"})
			cfg := quietConfig
			cfg.IntroProbability = tt.probability
			e := newTestEngine(t, c, nil, sayingSpeaker{}, cfg)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			rec := &recorder{onWrite: func(segs []string) {
				if countOutros(segs) >= 1 {
					cancel()
				}
			}}

			require.ErrorIs(t, e.Stream(ctx, rec, "test"), context.Canceled)

			segs := rec.segments()
			want := []string{"AAAA"}
			if tt.intro {
				want = append([]string{"[say:" + announcer.IntroLine + "]"}, want...)
			}
			require.Len(t, segs, len(want)+1, "segments: %q", segs)
			assert.Equal(t, want, segs[:len(want)])

			outro, ok := said(segs[len(want)])
			require.True(t, ok)
			assert.True(t, announcer.IsOutro(outro))
		})
	}
}

type failingSynth struct{}

func (failingSynth) Enabled() bool { return true }
func (failingSynth) Voice() string { return "v" }
func (failingSynth) Synthesize(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, errors.New("synthesis timed out")
}

func TestStreamSurvivesSynthesisFailure(t *testing.T) {
	c := testCatalog(t, map[string]string{"a.mp3": "AAAA"})
	speaker := announcer.New(failingSynth{}, announcer.WithTimeout(20*time.Millisecond))
	cfg := quietConfig
	cfg.IntroProbability = 1
	e := newTestEngine(t, c, []model.TrackRef{model.RemoteRef("X", "Y")}, speaker, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rec := &recorder{onWrite: func(segs []string) {
		if len(segs) >= 2 {
			cancel()
		}
	}}

	start := time.Now()
	require.ErrorIs(t, e.Stream(ctx, rec, "test"), context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []string{"AAAA", "AAAA"}, rec.segments())
}

func TestSkipInterruptsLocalTrack(t *testing.T) {
	c := testCatalog(t, map[string]string{"a.mp3": "0123456789abcdef"})
	e := newTestEngine(t, c, nil, sayingSpeaker{}, quietConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	skipped := false
	rec := &recorder{onWrite: func(segs []string) {
		if !skipped {
			skipped = true
			e.Station().Skip(context.Background())
		}
		if countOutros(segs) >= 1 {
			cancel()
		}
	}}

	require.ErrorIs(t, e.Stream(ctx, rec, "test"), context.Canceled)

	segs := rec.segments()
	require.Len(t, segs, 6)
	assert.Equal(t, []string{"0123", "0123", "4567", "89ab", "cdef"}, segs[:5])
	assert.Equal(t, uint64(2), e.Station().Status().Generation)
}

func TestStreamEmptyPlaylistWaits(t *testing.T) {
	rec := &fakeRecommender{}
	rng := NewRandom(1, 1)
	st := New(NewBuilder(catalog.New("", nil), rec, "jazz", 5, rng))
	cfg := quietConfig
	cfg.IdleWait = 20 * time.Millisecond
	e := NewEngine(st, NewNowPlayingState(), nil, sayingSpeaker{}, rng, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := e.Stream(ctx, &recorder{}, "test")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.LessOrEqual(t, rec.calls.Load(), int32(25))
	assert.Equal(t, model.NowPlaying{}, e.NowPlaying().Get())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStreamStopsOnWriteError(t *testing.T) {
	c := testCatalog(t, map[string]string{"a.mp3": "AAAA"})
	e := newTestEngine(t, c, nil, sayingSpeaker{}, quietConfig)

	err := e.Stream(context.Background(), brokenWriter{}, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Zero(t, e.Listeners().Count())
}
