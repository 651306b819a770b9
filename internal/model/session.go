// Package model defines data structures for the document chat client.
package model

import (
	"time"
)

// Session is one entry in the session registry.
type Session struct {
	ID          string    `json:"session_id"`
	Title       string    `json:"title"`
	LastUpdated time.Time `json:"last_updated"`
}

// ListSessionsResponse is the backend response for listing sessions.
type ListSessionsResponse struct {
	Sessions []SessionRecord `json:"sessions"`
}

// SessionRecord is a session as the backend serializes it. The timestamp
// arrives as an ISO-8601 string and is parsed on conversion.
type SessionRecord struct {
	SessionID   string `json:"session_id"`
	Title       string `json:"title"`
	LastUpdated string `json:"last_updated"`
}

// Session converts a wire record into a Session. An unparseable timestamp
// yields the zero time rather than an error; the registry is display state.
func (r SessionRecord) Session() Session {
	ts, _ := time.Parse(time.RFC3339, r.LastUpdated)
	return Session{
		ID:          r.SessionID,
		Title:       r.Title,
		LastUpdated: ts,
	}
}

// GenerateSessionResponse is the backend response for creating a session.
type GenerateSessionResponse struct {
	SessionID string `json:"session_id"`
}
