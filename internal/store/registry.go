// Package store holds the client's in-memory state: the session registry,
// the active conversation log and the active attachment set. Each store is
// owned by the sync orchestrator; refreshes are full replacements, never
// partial merges.
package store

import (
	"sync"

	"github.com/glokal-ai/docchat/internal/model"
	"github.com/glokal-ai/docchat/pkg/metrics"
)

// SessionRegistry holds the list of known sessions.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions []model.Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{}
}

// Replace swaps in a freshly fetched snapshot. Overlapping refreshes are
// last-write-wins; the registry is read-mostly display state.
func (r *SessionRegistry) Replace(sessions []model.Session) {
	r.mu.Lock()
	r.sessions = append([]model.Session(nil), sessions...)
	r.mu.Unlock()

	metrics.SessionsKnown.Set(float64(len(sessions)))
}

// List returns a copy of the known sessions.
func (r *SessionRegistry) List() []model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Session(nil), r.sessions...)
}

// Get looks up a session by id.
func (r *SessionRegistry) Get(id string) (model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return model.Session{}, false
}

// Len returns the number of known sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
