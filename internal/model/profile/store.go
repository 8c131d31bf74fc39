package profile

import "sync"

// Store exposes preference persistence for HTTP handlers and the chat
// service.
type Store interface {
	Get(callerID string) (Preferences, bool)
	Put(callerID string, prefs Preferences)
}

// MemoryStore implements Store with an in-memory map, suitable for MVP.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Preferences
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Preferences)}
}

// Get looks up the stored preferences for a caller.
func (s *MemoryStore) Get(callerID string) (Preferences, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.items[callerID]
	return prefs, ok
}

// Put replaces the stored preferences for a caller.
func (s *MemoryStore) Put(callerID string, prefs Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[callerID] = prefs
}
