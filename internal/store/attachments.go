package store

import (
	"sync"

	"github.com/glokal-ai/docchat/internal/model"
	"github.com/glokal-ai/docchat/pkg/metrics"
)

// AttachmentSet holds the ingested content units for the active session.
// Whether messaging is allowed derives from it and from nothing else.
type AttachmentSet struct {
	mu    sync.RWMutex
	items []model.Attachment
}

// NewAttachmentSet creates an empty set.
func NewAttachmentSet() *AttachmentSet {
	return &AttachmentSet{}
}

// Replace swaps in a freshly fetched snapshot.
func (s *AttachmentSet) Replace(items []model.Attachment) {
	s.mu.Lock()
	s.items = append([]model.Attachment(nil), items...)
	s.mu.Unlock()

	metrics.AttachmentsActive.Set(float64(len(items)))
}

// Clear empties the set.
func (s *AttachmentSet) Clear() {
	s.Replace(nil)
}

// List returns a copy of the attachments.
func (s *AttachmentSet) List() []model.Attachment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Attachment(nil), s.items...)
}

// Count returns the number of attachments.
func (s *AttachmentSet) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// InputEnabled reports whether the message input is allowed. It is a pure
// function of the set and is never stored independently.
func (s *AttachmentSet) InputEnabled() bool {
	return s.Count() > 0
}
