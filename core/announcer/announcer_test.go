package announcer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vintagefm/model"

	"github.com/stretchr/testify/assert"
)

type fakeSynth struct {
	enabled bool
	delay   time.Duration
	err     error

	mu    sync.Mutex
	calls []string
}

func (f *fakeSynth) Enabled() bool { return f.enabled }
func (f *fakeSynth) Voice() string { return "test-voice" }

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("<" + text + ">"), nil
}

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, voice, text string) []byte { return m[voice+"|"+text] }
func (m mapCache) Set(_ context.Context, voice, text string, audio []byte) {
	m[voice+"|"+text] = audio
}

func TestUpNextLine(t *testing.T) {
	remote := model.Classify(model.RemoteRef("X", "Y"), nil)
	assert.Equal(t, "Up next, X - Y.", UpNextLine(remote))

	gone := model.Classify(model.LocalRef("/music/a.mp3"), func(string) bool { return false })
	assert.Equal(t, "Up next, a.mp3.", UpNextLine(gone))
}

func TestOutroLine(t *testing.T) {
	for i := range OutroLines {
		line := OutroLine(func(n int) int {
			assert.Equal(t, len(OutroLines), n)
			return i
		})
		assert.Equal(t, OutroLines[i], line)
		assert.True(t, IsOutro(line))
	}
	assert.False(t, IsOutro(IntroLine))
}

func TestSpeak(t *testing.T) {
	synth := &fakeSynth{enabled: true}
	a := New(synth)

	assert.Equal(t, []byte("<hello>"), a.Speak(context.Background(), "hello"))
	assert.Equal(t, []string{"hello"}, synth.calls)
}

func TestSpeakDisabled(t *testing.T) {
	synth := &fakeSynth{enabled: false}
	assert.Nil(t, New(synth).Speak(context.Background(), "hello"))
	assert.Empty(t, synth.calls)

	assert.Nil(t, New(nil).Speak(context.Background(), "hello"))
}

func TestSpeakFailure(t *testing.T) {
	synth := &fakeSynth{enabled: true, err: errors.New("quota exceeded")}
	assert.Nil(t, New(synth).Speak(context.Background(), "hello"))
}

func TestSpeakTimeout(t *testing.T) {
	synth := &fakeSynth{enabled: true, delay: time.Minute}
	a := New(synth, WithTimeout(50*time.Millisecond))

	start := time.Now()
	assert.Nil(t, a.Speak(context.Background(), "hello"))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSpeakUsesCache(t *testing.T) {
	synth := &fakeSynth{enabled: true}
	cache := mapCache{}
	a := New(synth, WithCache(cache))

	first := a.Speak(context.Background(), "hello")
	second := a.Speak(context.Background(), "hello")

	assert.Equal(t, first, second)
	assert.Len(t, synth.calls, 1)
	assert.Equal(t, first, cache["test-voice|hello"])
}

func TestSpeakFailureIsNotCached(t *testing.T) {
	synth := &fakeSynth{enabled: true, err: errors.New("boom")}
	cache := mapCache{}
	New(synth, WithCache(cache)).Speak(context.Background(), "hello")
	assert.Empty(t, cache)
}
