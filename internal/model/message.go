package model

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderSystem Sender = "system"
)

// MaxRegenerations is the per-message cap on additional alternative
// responses. The backend enforces the same limit.
const MaxRegenerations = 3

// Message is one entry in the conversation log. Text always holds the
// displayed content; for bot messages with alternatives it mirrors
// Alternatives[ActiveIndex].
type Message struct {
	ID      string `json:"id"`
	Sender  Sender `json:"sender"`
	Text    string `json:"text"`
	IsError bool   `json:"is_error,omitempty"`

	// Branching state, bot messages only. Alternatives stays empty until
	// the first regeneration seeds it with the original response.
	Alternatives      []string `json:"alternatives,omitempty"`
	ActiveIndex       int      `json:"active_index,omitempty"`
	RegenerationCount int      `json:"regeneration_count,omitempty"`
}

// HasAlternatives reports whether the message carries more than one
// response variant.
func (m *Message) HasAlternatives() bool {
	return len(m.Alternatives) > 1
}

// CanRegenerate reports whether another regeneration is permitted.
func (m *Message) CanRegenerate() bool {
	return m.Sender == SenderBot && m.RegenerationCount < MaxRegenerations
}

// ChatRequest is the payload for sending or regenerating a message.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the backend response for a chat turn. Exactly one of
// Response and Error is populated on a 2xx reply.
type ChatResponse struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BackendError returns the backend-reported failure, if any.
func (r *ChatResponse) BackendError() string { return r.Error }

// RegenerateResponse is the backend response for a regeneration. The
// server-reported count is authoritative.
type RegenerateResponse struct {
	Response          string `json:"response"`
	Error             string `json:"error,omitempty"`
	AlternativesCount int    `json:"alternatives_count,omitempty"`
	RegenerationCount int    `json:"regeneration_count"`
}

// BackendError returns the backend-reported failure, if any.
func (r *RegenerateResponse) BackendError() string { return r.Error }

// HistoryRecord is one message as stored by the backend.
type HistoryRecord struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Content      string   `json:"content"`
	Alternatives []string `json:"alternatives,omitempty"`
	ActiveIndex  int      `json:"active_index,omitempty"`

	RegenerationCount int `json:"regeneration_count,omitempty"`
}

// ChatHistoryResponse is the backend response for a history fetch.
type ChatHistoryResponse struct {
	History   []HistoryRecord `json:"history"`
	SessionID string          `json:"session_id,omitempty"`
}

// historyTypeHuman is the backend's discriminator for user-authored
// records; everything else maps to the bot sender.
const historyTypeHuman = "HumanMessage"

// Message converts a history record into a log Message, clamping
// ActiveIndex into range so the display invariant holds even against a
// malformed snapshot.
func (r HistoryRecord) Message() Message {
	sender := SenderBot
	if r.Type == historyTypeHuman {
		sender = SenderUser
	}

	idx := r.ActiveIndex
	if idx < 0 {
		idx = 0
	}
	if n := len(r.Alternatives); n > 0 && idx >= n {
		idx = n - 1
	}

	text := r.Content
	if len(r.Alternatives) > 0 {
		text = r.Alternatives[idx]
	}

	return Message{
		ID:                r.ID,
		Sender:            sender,
		Text:              text,
		Alternatives:      r.Alternatives,
		ActiveIndex:       idx,
		RegenerationCount: r.RegenerationCount,
	}
}

// SelectAlternativeRequest is the payload for persisting an alternative
// choice server-side.
type SelectAlternativeRequest struct {
	SessionID        string `json:"session_id"`
	MessageID        string `json:"message_id"`
	AlternativeIndex int    `json:"alternative_index"`
}
