// Package service coordinates backend round-trips and reconciles their
// results into the client's in-memory stores.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glokal-ai/docchat/internal/model"
	"github.com/glokal-ai/docchat/internal/store"
	"github.com/glokal-ai/docchat/pkg/logger"
	"github.com/glokal-ai/docchat/pkg/metrics"
)

// Backend is the answering service contract the orchestrator consumes.
// *api.Client satisfies it.
type Backend interface {
	ListSessions(ctx context.Context) ([]model.Session, error)
	GenerateSession(ctx context.Context) (string, error)
	Chat(ctx context.Context, sessionID, message string) (*model.ChatResponse, error)
	Regenerate(ctx context.Context, sessionID, message string) (*model.RegenerateResponse, error)
	ChatHistory(ctx context.Context, sessionID string) ([]model.HistoryRecord, error)
	Upload(ctx context.Context, sessionID string, files []model.FileUpload) (*model.UploadResponse, error)
	AddWebLinks(ctx context.Context, sessionID string, urls []string) (*model.AddWebLinksResponse, error)
	ListFiles(ctx context.Context, sessionID string) ([]model.FileRecord, error)
	DeleteFile(ctx context.Context, sessionID, filename string) (*model.DeleteFileResponse, error)
	UpdateSessionTitle(ctx context.Context, sessionID, newTitle string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// Confirmer gates destructive operations behind an external yes/no
// decision. Declining aborts before any network call.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Orchestrator owns the client state and is the only writer to it. Every
// mutating completion handler revalidates the generation token captured
// at request start before applying, so late responses for a session that
// is no longer active are discarded instead of corrupting the stores.
type Orchestrator struct {
	backend      Backend
	registry     *store.SessionRegistry
	log          *store.ConversationLog
	attachments  *store.AttachmentSet
	logger       *logger.Logger
	confirm      Confirmer
	refreshDelay time.Duration

	mu            sync.Mutex
	activeSession string
	generation    uint64

	// regenerating maps a claimed message index to the generation that
	// claimed it, so a stale regeneration finishing after a session
	// switch cannot release a claim the new session holds.
	regenMu      sync.Mutex
	regenerating map[int]uint64

	wg sync.WaitGroup
}

// New creates an orchestrator around empty stores.
func New(backend Backend, confirm Confirmer, refreshDelay time.Duration, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		backend:      backend,
		registry:     store.NewSessionRegistry(),
		log:          store.NewConversationLog(),
		attachments:  store.NewAttachmentSet(),
		logger:       log,
		confirm:      confirm,
		refreshDelay: refreshDelay,
		regenerating: make(map[int]uint64),
	}
}

// Wait blocks until all background loads and refreshes have settled.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// ActiveSession returns the id of the active session.
func (o *Orchestrator) ActiveSession() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeSession
}

// Sessions returns the registry snapshot.
func (o *Orchestrator) Sessions() []model.Session {
	return o.registry.List()
}

// Messages returns the conversation log snapshot.
func (o *Orchestrator) Messages() []model.Message {
	return o.log.Messages()
}

// Attachments returns the attachment snapshot for the active session.
func (o *Orchestrator) Attachments() []model.Attachment {
	return o.attachments.List()
}

// InputEnabled reports whether sending messages is currently allowed.
func (o *Orchestrator) InputEnabled() bool {
	return o.attachments.InputEnabled()
}

// Navigate moves the active alternative of the message at index by
// direction (-1 or +1), wrapping circularly. Pure local state; no
// network call.
func (o *Orchestrator) Navigate(index, direction int) bool {
	return o.log.Navigate(index, direction)
}

// RefreshSessions replaces the registry with the backend's current list.
// Failure leaves the prior list untouched and is logged, never surfaced
// as a chat error. Safe to call concurrently; last write wins.
func (o *Orchestrator) RefreshSessions(ctx context.Context) {
	sessions, err := o.backend.ListSessions(ctx)
	if err != nil {
		o.logger.Warn("failed to refresh sessions", zap.Error(err))
		return
	}
	o.registry.Replace(sessions)
}

// CreateSession asks the backend for a fresh session and makes it active,
// clearing the conversation log and attachment set. A delayed registry
// refresh is scheduled so the backend's persistence can catch up; the
// refresh is advisory only.
func (o *Orchestrator) CreateSession(ctx context.Context) (string, error) {
	id, err := o.backend.GenerateSession(ctx)
	if err != nil {
		return "", err
	}

	o.activate(id)
	o.logger.WithSession(id).Info("session created")
	o.scheduleRefresh()
	return id, nil
}

// SwitchSession makes the given session active. The previous session's
// log and attachments are discarded immediately; history and attachments
// for the new session load in the background and are dropped if another
// switch happens first.
func (o *Orchestrator) SwitchSession(ctx context.Context, sessionID string) {
	gen := o.activate(sessionID)

	o.spawn(func() { o.loadHistory(ctx, gen, sessionID) })
	o.spawn(func() { o.refreshAttachments(ctx, gen, sessionID) })
}

// RenameSession sends a new title for the session. The title is trimmed;
// an empty result is rejected locally. On failure the caller keeps its
// edit state, so nothing typed is lost.
func (o *Orchestrator) RenameSession(ctx context.Context, sessionID, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return ErrEmptyTitle
	}
	if err := o.backend.UpdateSessionTitle(ctx, sessionID, newTitle); err != nil {
		return err
	}
	o.RefreshSessions(ctx)
	return nil
}

// DeleteSession removes a session after confirmation. Deleting the active
// session atomically falls back to creating a fresh one.
func (o *Orchestrator) DeleteSession(ctx context.Context, sessionID string) error {
	if !o.confirm.Confirm("Are you sure you want to delete this session?") {
		return ErrConfirmationDeclined
	}
	if err := o.backend.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	o.RefreshSessions(ctx)

	if o.ActiveSession() == sessionID {
		if _, err := o.CreateSession(ctx); err != nil {
			return err
		}
	}
	return nil
}

// activate swaps the active session, invalidating all in-flight work for
// the previous one, and clears the per-session stores before anything
// from the new session can arrive.
func (o *Orchestrator) activate(sessionID string) uint64 {
	o.mu.Lock()
	o.activeSession = sessionID
	o.generation++
	gen := o.generation
	o.mu.Unlock()

	o.log.Clear()
	o.attachments.Clear()

	o.regenMu.Lock()
	o.regenerating = make(map[int]uint64)
	o.regenMu.Unlock()

	return gen
}

// applyIfCurrent runs apply only when gen still matches the active
// generation. Late responses for a stale session are counted and dropped.
func (o *Orchestrator) applyIfCurrent(gen uint64, operation string, apply func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		metrics.RecordStaleDrop(operation)
		o.logger.Debug("dropping stale response", zap.String("operation", operation))
		return false
	}
	apply()
	return true
}

// currentGeneration returns the active session id and its generation for
// capture at request start.
func (o *Orchestrator) currentGeneration() (string, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeSession, o.generation
}

func (o *Orchestrator) loadHistory(ctx context.Context, gen uint64, sessionID string) {
	records, err := o.backend.ChatHistory(ctx, sessionID)
	if err != nil {
		// An empty log, not an error banner.
		o.logger.WithSession(sessionID).Warn("failed to fetch chat history", zap.Error(err))
		return
	}

	messages := make([]model.Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, rec.Message())
	}

	o.applyIfCurrent(gen, "chat_history", func() {
		o.log.Replace(messages)
	})
}

// scheduleRefresh refreshes the registry after the configured delay.
// Fire-and-forget; overlapping refreshes are idempotent full replaces.
func (o *Orchestrator) scheduleRefresh() {
	o.wg.Add(1)
	time.AfterFunc(o.refreshDelay, func() {
		defer o.wg.Done()
		o.RefreshSessions(context.Background())
	})
}

func (o *Orchestrator) spawn(fn func()) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		fn()
	}()
}
