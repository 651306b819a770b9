package store

import (
	"sync"

	"github.com/glokal-ai/docchat/internal/model"
	"github.com/glokal-ai/docchat/pkg/metrics"
)

// ConversationLog is the ordered message sequence for the active session.
// It is fully replaced on session switch, never merged.
type ConversationLog struct {
	mu       sync.RWMutex
	messages []model.Message
}

// NewConversationLog creates an empty log.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{}
}

// Replace swaps in a full history snapshot.
func (l *ConversationLog) Replace(messages []model.Message) {
	l.mu.Lock()
	l.messages = append([]model.Message(nil), messages...)
	l.mu.Unlock()
}

// Clear empties the log.
func (l *ConversationLog) Clear() {
	l.Replace(nil)
}

// Append adds a message and returns its index.
func (l *ConversationLog) Append(msg model.Message) int {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	idx := len(l.messages) - 1
	l.mu.Unlock()

	metrics.RecordMessage(string(msg.Sender))
	return idx
}

// Messages returns a copy of the log.
func (l *ConversationLog) Messages() []model.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Message(nil), l.messages...)
}

// Message returns the message at index.
func (l *ConversationLog) Message(index int) (model.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.messages) {
		return model.Message{}, false
	}
	return l.messages[index], true
}

// Len returns the number of messages.
func (l *ConversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Navigate moves the active alternative of the message at index by
// direction (-1 or +1), wrapping circularly. It reports whether anything
// changed; messages with fewer than two alternatives are left alone.
func (l *ConversationLog) Navigate(index, direction int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.messages) {
		return false
	}
	msg := &l.messages[index]
	n := len(msg.Alternatives)
	if n < 2 {
		return false
	}

	next := msg.ActiveIndex + direction
	if next < 0 {
		next = n - 1
	} else if next >= n {
		next = 0
	}

	msg.ActiveIndex = next
	msg.Text = msg.Alternatives[next]
	return true
}

// ApplyRegeneration records a new alternative for the bot message at
// index. The first regeneration seeds the alternatives with the currently
// displayed text; count comes from the server and is taken as-is.
func (l *ConversationLog) ApplyRegeneration(index int, text string, count int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.messages) {
		return false
	}
	msg := &l.messages[index]
	if msg.Sender != model.SenderBot {
		return false
	}

	if len(msg.Alternatives) == 0 {
		msg.Alternatives = []string{msg.Text}
		msg.ActiveIndex = 0
	}
	msg.Alternatives = append(msg.Alternatives, text)
	msg.ActiveIndex = len(msg.Alternatives) - 1
	msg.Text = text
	msg.RegenerationCount = count
	return true
}
