package station

import (
	"sync"

	"vintagefm/model"
)

// NowPlayingState holds the single shared now-playing record. Set replaces
// the whole record, so readers see either the old or the new one.
type NowPlayingState struct {
	mu      sync.RWMutex
	current model.NowPlaying
	version uint64
}

// NewNowPlayingState returns a state whose fields are all null.
func NewNowPlayingState() *NowPlayingState {
	return &NowPlayingState{}
}

// Set publishes np.
func (s *NowPlayingState) Set(np model.NowPlaying) {
	s.mu.Lock()
	s.current = np
	s.version++
	s.mu.Unlock()
}

// Get returns the latest record.
func (s *NowPlayingState) Get() model.NowPlaying {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Snapshot returns the latest record with its version. The version grows on
// every Set, so watchers can tell whether anything changed.
func (s *NowPlayingState) Snapshot() (model.NowPlaying, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.version
}
