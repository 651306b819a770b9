package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/glokal-ai/docchat/internal/model"
	"github.com/glokal-ai/docchat/pkg/metrics"
)

// Regenerate requests another response for the bot message at index.
//
// The target must be a bot message immediately preceded by a user message
// and under the regeneration cap; violations are rejected locally with no
// network call. At most one regeneration per index is in flight at a
// time; different indices proceed independently.
//
// On success the new text joins the message's alternatives, with the
// server-reported count taken as authoritative so a retried request can
// never double-count. On failure nothing in the transcript changes; the
// error is returned (and logged) as the out-of-band report.
func (o *Orchestrator) Regenerate(ctx context.Context, index int) error {
	target, ok := o.log.Message(index)
	if !ok || target.Sender != model.SenderBot {
		return ErrNotRegenerable
	}
	prev, ok := o.log.Message(index - 1)
	if !ok || prev.Sender != model.SenderUser {
		return ErrNotRegenerable
	}
	if target.RegenerationCount >= model.MaxRegenerations {
		metrics.RecordRegeneration("limit_reached")
		return ErrRegenerationLimit
	}

	sessionID, gen := o.currentGeneration()
	if sessionID == "" {
		return ErrNoActiveSession
	}

	if !o.beginRegeneration(index, gen) {
		return ErrRegenerationBusy
	}
	defer o.endRegeneration(index, gen)

	resp, err := o.backend.Regenerate(ctx, sessionID, prev.Text)
	if err != nil {
		metrics.RecordRegeneration("failure")
		o.logger.Warn("regeneration failed",
			zap.String("session_id", sessionID),
			zap.Int("message_index", index),
			zap.Error(err),
		)
		return err
	}

	applied := o.applyIfCurrent(gen, "regenerate", func() {
		o.log.ApplyRegeneration(index, resp.Response, resp.RegenerationCount)
	})
	if !applied {
		metrics.RecordRegeneration("stale")
		return nil
	}

	metrics.RecordRegeneration("success")
	return nil
}

// Regenerating reports whether a regeneration is in flight for index.
func (o *Orchestrator) Regenerating(index int) bool {
	o.regenMu.Lock()
	defer o.regenMu.Unlock()
	_, busy := o.regenerating[index]
	return busy
}

// beginRegeneration claims index for gen. The claim records its
// generation: a regeneration still in flight when the session switches
// must not be able to release a claim the new session took at the same
// index.
func (o *Orchestrator) beginRegeneration(index int, gen uint64) bool {
	o.regenMu.Lock()
	defer o.regenMu.Unlock()
	if _, busy := o.regenerating[index]; busy {
		return false
	}
	o.regenerating[index] = gen
	return true
}

func (o *Orchestrator) endRegeneration(index int, gen uint64) {
	o.regenMu.Lock()
	if o.regenerating[index] == gen {
		delete(o.regenerating, index)
	}
	o.regenMu.Unlock()
}
