package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glokal-ai/docchat/internal/model"
)

// Fallback shown when the send round-trip itself fails.
const genericSendError = "An error occurred. Please try again later."

// SendMessage appends the user's message optimistically, sends it to the
// backend and appends the reply. The optimistic append is never rolled
// back: a failed turn leaves the user message in place and appends an
// error-flagged bot message instead, preserving an honest transcript of
// what was attempted.
//
// The returned message is the appended reply. A non-nil error is always a
// local validation failure rejected before any network call.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, ErrEmptyMessage
	}
	if !o.attachments.InputEnabled() {
		return model.Message{}, ErrInputDisabled
	}

	sessionID, gen := o.currentGeneration()
	if sessionID == "" {
		return model.Message{}, ErrNoActiveSession
	}

	firstExchange := o.log.Len() == 0

	userMsg := model.Message{
		ID:     uuid.NewString(),
		Sender: model.SenderUser,
		Text:   text,
	}
	o.log.Append(userMsg)

	resp, err := o.backend.Chat(ctx, sessionID, text)

	var reply model.Message
	switch {
	case err != nil:
		o.logger.Warn("send failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		reply = model.Message{
			ID:      uuid.NewString(),
			Sender:  model.SenderBot,
			Text:    genericSendError,
			IsError: true,
		}
	case resp.Error != "":
		reply = model.Message{
			ID:      uuid.NewString(),
			Sender:  model.SenderBot,
			Text:    resp.Error,
			IsError: true,
		}
	default:
		reply = model.Message{
			ID:     uuid.NewString(),
			Sender: model.SenderBot,
			Text:   resp.Response,
		}
	}

	applied := o.applyIfCurrent(gen, "chat", func() {
		o.log.Append(reply)
	})

	// The backend titles the session from its first message; give it a
	// moment, then pick the title up.
	if applied && firstExchange && !reply.IsError {
		o.scheduleRefresh()
	}

	return reply, nil
}

// appendSystem adds a system notice to the log if the generation is still
// current.
func (o *Orchestrator) appendSystem(gen uint64, operation, text string, isError bool) {
	o.applyIfCurrent(gen, operation, func() {
		o.log.Append(model.Message{
			ID:      uuid.NewString(),
			Sender:  model.SenderSystem,
			Text:    text,
			IsError: isError,
		})
	})
}
