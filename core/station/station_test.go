package station

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"vintagefm/core/catalog"
	"vintagefm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecommender struct {
	refs  []model.TrackRef
	calls atomic.Int32
}

func (f *fakeRecommender) Recommend(_ context.Context, _ string, limit int) []model.TrackRef {
	f.calls.Add(1)
	if limit < len(f.refs) {
		return f.refs[:limit]
	}
	return f.refs
}

func testCatalog(t *testing.T, files map[string]string) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return catalog.Scan(dir, nil)
}

func TestBuildMembershipAndOrder(t *testing.T) {
	files := make([]string, 8)
	for i := range files {
		files[i] = fmt.Sprintf("/music/%02d.mp3", i)
	}
	cat := catalog.New("/music", files)
	recs := []model.TrackRef{model.RemoteRef("X", "Y"), model.RemoteRef("Z", "W")}

	for seed := uint64(0); seed < 20; seed++ {
		b := NewBuilder(cat, &fakeRecommender{refs: recs}, "jazz", 5, NewRandom(seed, seed+1))
		playlist := b.Build(context.Background())

		require.Len(t, playlist, len(files)+len(recs))

		local := playlist[:len(files)].LocalPaths()
		sort.Strings(local)
		assert.Equal(t, files, local)
		assert.Equal(t, recs, []model.TrackRef(playlist[len(files):]))
	}
}

func TestBuildReshuffles(t *testing.T) {
	files := make([]string, 10)
	for i := range files {
		files[i] = fmt.Sprintf("%d.mp3", i)
	}
	b := NewBuilder(catalog.New("", files), nil, "", 0, NewRandom(1, 2))

	first := b.Build(context.Background())
	different := false
	for i := 0; i < 10 && !different; i++ {
		different = fmt.Sprint(first) != fmt.Sprint(b.Build(context.Background()))
	}
	assert.True(t, different)
}

func TestBuildEmpty(t *testing.T) {
	b := NewBuilder(catalog.New("", nil), &fakeRecommender{}, "jazz", 5, NewRandom(1, 1))
	assert.Empty(t, b.Build(context.Background()))
}

func TestEndToEndPlaylist(t *testing.T) {
	c := testCatalog(t, map[string]string{"a.mp3": "A", "b.mp3": "B"})
	b := NewBuilder(c, &fakeRecommender{refs: []model.TrackRef{model.RemoteRef("X", "Y")}}, "jazz", 5, NewRandom(3, 4))

	playlist := b.Build(context.Background())
	require.Len(t, playlist, 3)
	assert.ElementsMatch(t, []string{"a.mp3", "b.mp3"}, []string{
		filepath.Base(playlist[0].Path),
		filepath.Base(playlist[1].Path),
	})
	assert.Equal(t, model.RemoteRef("X", "Y"), playlist[2])
}

func TestStationNextWalksAndRebuilds(t *testing.T) {
	rec := &fakeRecommender{refs: []model.TrackRef{model.RemoteRef("X", "Y")}}
	st := New(NewBuilder(catalog.New("", []string{"a.mp3"}), rec, "jazz", 5, NewRandom(1, 1)))
	ctx := context.Background()

	var c Cursor
	ref, gen, ok := st.Next(ctx, &c)
	require.True(t, ok)
	assert.Equal(t, "a.mp3", ref.Path)
	assert.Equal(t, uint64(1), gen)

	ref, _, ok = st.Next(ctx, &c)
	require.True(t, ok)
	assert.Equal(t, "X", ref.Title)

	ref, gen, ok = st.Next(ctx, &c)
	require.True(t, ok)
	assert.Equal(t, "a.mp3", ref.Path)
	assert.Equal(t, uint64(2), gen)
	assert.Equal(t, int32(2), rec.calls.Load())
}

func TestStationRebuildsOncePerPass(t *testing.T) {
	rec := &fakeRecommender{}
	st := New(NewBuilder(catalog.New("", []string{"a.mp3", "b.mp3"}), rec, "jazz", 5, NewRandom(1, 1)))
	ctx := context.Background()
	st.Start(ctx)

	cursors := make([]Cursor, 5)
	for i := range cursors {
		for j := 0; j < 2; j++ {
			_, _, ok := st.Next(ctx, &cursors[i])
			require.True(t, ok)
		}
	}
	require.Equal(t, int32(1), rec.calls.Load())

	var wg sync.WaitGroup
	for i := range cursors {
		wg.Add(1)
		go func(c *Cursor) {
			defer wg.Done()
			_, gen, ok := st.Next(ctx, c)
			assert.True(t, ok)
			assert.Equal(t, uint64(2), gen)
		}(&cursors[i])
	}
	wg.Wait()

	assert.Equal(t, int32(2), rec.calls.Load())
	assert.Equal(t, uint64(2), st.Status().Generation)
}

func TestRepeatedSkipsLeaveNoStaleCursor(t *testing.T) {
	files := []string{"a.mp3", "b.mp3", "c.mp3", "d.mp3"}
	st := New(NewBuilder(catalog.New("", files), nil, "", 0, NewRandom(5, 6)))
	ctx := context.Background()
	st.Start(ctx)

	var c Cursor
	_, first, _ := st.Next(ctx, &c)
	_, _, _ = st.Next(ctx, &c)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Skip(ctx)
		}()
	}
	wg.Wait()

	assert.True(t, st.Skipped(first))

	playlist, gen := st.Snapshot()
	assert.Equal(t, first+10, gen)

	ref, got, ok := st.Next(ctx, &c)
	require.True(t, ok)
	assert.Equal(t, gen, got)
	assert.Equal(t, gen, c.gen)
	assert.Equal(t, playlist[0], ref)
	assert.False(t, st.Skipped(got))
}

func TestStationEmptyPlaylist(t *testing.T) {
	rec := &fakeRecommender{}
	st := New(NewBuilder(catalog.New("", nil), rec, "jazz", 5, NewRandom(1, 1)))

	var c Cursor
	_, _, ok := st.Next(context.Background(), &c)
	assert.False(t, ok)
	assert.Equal(t, int32(2), rec.calls.Load(), "initial build plus one retry")
}

func TestNowPlayingAtomic(t *testing.T) {
	s := NewNowPlayingState()
	np, version := s.Snapshot()
	assert.Equal(t, model.NowPlaying{}, np)
	assert.Zero(t, version)

	records := []model.NowPlaying{
		model.NowPlayingFromLocal("a.mp3"),
		model.NowPlayingFromRemote("X", "Y", &model.TrackInfo{Album: "Album", Image: "http://img"}),
	}

	s.Set(records[0])

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ctx.Err() == nil; i++ {
			s.Set(records[i%2])
		}
	}()

	for i := 0; i < 10000; i++ {
		got := s.Get()
		switch model.Value(got.Title) {
		case "a.mp3":
			assert.Nil(t, got.Artist)
			assert.Nil(t, got.Album)
			assert.Equal(t, model.SourceLocal, model.Value(got.Source))
		case "X":
			assert.Equal(t, "Y", model.Value(got.Artist))
			assert.Equal(t, "Album", model.Value(got.Album))
			assert.Equal(t, model.SourceRemote, model.Value(got.Source))
		default:
			t.Errorf("unexpected record %+v", got)
		}
	}
	cancel()
	wg.Wait()

	_, version = s.Snapshot()
	assert.NotZero(t, version)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.Join("1.2.3.4")
	b := r.Join("5.6.7.8")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Count())

	r.Leave(a.ID)
	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, "5.6.7.8", list[0].Client)
}
