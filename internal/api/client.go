// Package api implements the HTTP client for the answering backend.
//
// The backend is the sole source of durable truth: sessions, chat history
// and ingested documents all live behind this contract. Every method is a
// single request/response round-trip; retries and staleness handling are
// the orchestrator's concern.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/glokal-ai/docchat/internal/model"
	"github.com/glokal-ai/docchat/pkg/logger"
	"github.com/glokal-ai/docchat/pkg/metrics"
)

const tracerName = "github.com/glokal-ai/docchat/internal/api"

// Client talks to the backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
	tracer     trace.Tracer
}

// New creates a backend client.
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
}

// ListSessions fetches all known sessions.
func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	var resp model.ListSessionsResponse
	if err := c.do(ctx, "list_sessions", http.MethodGet, "/sessions", nil, nil, &resp); err != nil {
		return nil, err
	}
	sessions := make([]model.Session, 0, len(resp.Sessions))
	for _, rec := range resp.Sessions {
		sessions = append(sessions, rec.Session())
	}
	return sessions, nil
}

// GenerateSession asks the backend for a fresh session id.
func (c *Client) GenerateSession(ctx context.Context) (string, error) {
	var resp model.GenerateSessionResponse
	if err := c.do(ctx, "generate_session", http.MethodGet, "/generate_session", nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("backend returned empty session id")
	}
	return resp.SessionID, nil
}

// Chat sends a user message. A backend-reported failure arrives in the
// response's Error field with a nil error; a non-nil error means the
// round-trip itself failed.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*model.ChatResponse, error) {
	var resp model.ChatResponse
	req := model.ChatRequest{SessionID: sessionID, Message: message}
	if err := c.do(ctx, "chat", http.MethodPost, "/chat", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Regenerate requests another response for a previously answered message.
func (c *Client) Regenerate(ctx context.Context, sessionID, message string) (*model.RegenerateResponse, error) {
	var resp model.RegenerateResponse
	req := model.ChatRequest{SessionID: sessionID, Message: message}
	if err := c.do(ctx, "regenerate", http.MethodPost, "/regenerate", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("regenerate rejected: %s", resp.Error)
	}
	if resp.Response == "" {
		return nil, fmt.Errorf("regenerate returned empty response")
	}
	return &resp, nil
}

// ChatHistory fetches the stored message history for a session.
func (c *Client) ChatHistory(ctx context.Context, sessionID string) ([]model.HistoryRecord, error) {
	q := url.Values{"session_id": {sessionID}}
	var resp model.ChatHistoryResponse
	if err := c.do(ctx, "chat_history", http.MethodGet, "/chat_history", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// UpdateSessionTitle renames a session.
func (c *Client) UpdateSessionTitle(ctx context.Context, sessionID, newTitle string) error {
	q := url.Values{
		"session_id": {sessionID},
		"new_title":  {newTitle},
	}
	return c.do(ctx, "update_session_title", http.MethodPut, "/update_session_title", q, nil, nil)
}

// DeleteSession removes a session and all its server-side state.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	q := url.Values{"session_id": {sessionID}}
	return c.do(ctx, "delete_session", http.MethodDelete, "/delete_session", q, nil, nil)
}

// SelectAlternative persists an alternative choice server-side. Local
// navigation does not depend on it; this exists for clients that want the
// backend snapshot to follow the user's pick.
func (c *Client) SelectAlternative(ctx context.Context, sessionID, messageID string, index int) error {
	req := model.SelectAlternativeRequest{
		SessionID:        sessionID,
		MessageID:        messageID,
		AlternativeIndex: index,
	}
	return c.do(ctx, "select_alternative", http.MethodPost, "/select_alternative", nil, req, nil)
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil, nil)
}

// apiError is a non-2xx reply whose body did not carry a decodable
// backend failure.
type apiError struct {
	Operation string
	Status    int
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: backend returned status %d", e.Operation, e.Status)
}

// failureCarrier is implemented by response payloads that can hold the
// backend's own failure field. Only these may absorb a non-2xx reply;
// every other payload type decodes to a zero value on such bodies
// (FastAPI serves {"detail": ...}) and must fail instead.
type failureCarrier interface {
	BackendError() string
}

// do performs one round-trip. A 2xx reply is decoded into out when out is
// non-nil. A non-2xx reply is surfaced through out only when out carries
// a backend failure field and the body populated it; otherwise do fails
// with an apiError.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "backend."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer span.End()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("%s: failed to encode request: %w", operation, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: failed to build request: %w", operation, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordRequest(operation, "transport_error", duration)
		c.logger.Warn("backend request failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return fmt.Errorf("%s: request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	metrics.RecordRequest(operation, strconv.Itoa(resp.StatusCode), duration)
	c.logger.Debug("backend request completed",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode),
		zap.Float64("duration_sec", duration),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				span.SetStatus(codes.Error, err.Error())
				return fmt.Errorf("%s: failed to decode response: %w", operation, err)
			}
		}
		return nil
	}

	// Non-2xx. The caller inspects the payload's error field when the
	// body actually populated one; anything else is a failed request.
	if fc, carries := out.(failureCarrier); carries {
		if err := json.NewDecoder(resp.Body).Decode(out); err == nil && fc.BackendError() != "" {
			return nil
		}
	}
	span.SetStatus(codes.Error, "backend error")
	return &apiError{Operation: operation, Status: resp.StatusCode}
}
