package station

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Listener describes one connected stream.
type Listener struct {
	ID     string    `json:"id"`
	Client string    `json:"client"`
	Since  time.Time `json:"since"`
}

// Registry tracks connected listeners.
type Registry struct {
	mu        sync.RWMutex
	listeners map[string]Listener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{listeners: make(map[string]Listener)}
}

// Join registers a listener and returns its id.
func (r *Registry) Join(client string) Listener {
	l := Listener{ID: uuid.New().String(), Client: client, Since: time.Now()}
	r.mu.Lock()
	r.listeners[l.ID] = l
	r.mu.Unlock()
	return l
}

// Leave removes a listener.
func (r *Registry) Leave(id string) {
	r.mu.Lock()
	delete(r.listeners, id)
	r.mu.Unlock()
}

// Count returns the number of connected listeners.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// List returns the connected listeners, longest connected first.
func (r *Registry) List() []Listener {
	r.mu.RLock()
	out := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		out = append(out, l)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Since.Before(out[j].Since) })
	return out
}
