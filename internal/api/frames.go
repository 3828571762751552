package api

import (
	"sync"

	"salaryviz/internal/view"
)

// FrameStore is the renderer behind the HTTP API: it keeps the latest
// frame of every view for clients to fetch.
type FrameStore struct {
	mu      sync.RWMutex
	frames  map[string]view.Frame
	version map[string]int
}

func NewFrameStore() *FrameStore {
	return &FrameStore{
		frames:  make(map[string]view.Frame),
		version: make(map[string]int),
	}
}

// Draw implements view.Renderer.
func (s *FrameStore) Draw(f view.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[f.ViewName()] = f
	s.version[f.ViewName()]++
	return nil
}

// Get returns the latest frame of a view and how many times it has been
// drawn.
func (s *FrameStore) Get(name string) (view.Frame, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.frames[name]
	return f, s.version[name], ok
}
