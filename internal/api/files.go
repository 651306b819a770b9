package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/glokal-ai/docchat/internal/model"
	"github.com/glokal-ai/docchat/pkg/metrics"
)

// Upload sends files as a multipart form. Partial success is normal: the
// response names both accepted and rejected files.
func (c *Client) Upload(ctx context.Context, sessionID string, files []model.FileUpload) (*model.UploadResponse, error) {
	const operation = "upload"

	ctx, span := c.tracer.Start(ctx, "backend."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("upload.files", len(files))),
	)
	defer span.End()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("session_id", sessionID); err != nil {
		return nil, fmt.Errorf("%s: failed to write form field: %w", operation, err)
	}
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create form file: %w", operation, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("%s: failed to write %q: %w", operation, f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s: failed to finalize form: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", operation, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

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
		return nil, fmt.Errorf("%s: request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	metrics.RecordRequest(operation, strconv.Itoa(resp.StatusCode), duration)

	var out model.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s: failed to decode response: %w", operation, err)
	}
	return &out, nil
}

// AddWebLinks asks the backend to scrape and ingest the given URLs.
func (c *Client) AddWebLinks(ctx context.Context, sessionID string, urls []string) (*model.AddWebLinksResponse, error) {
	req := model.AddWebLinksRequest{SessionID: sessionID, URLs: urls}
	var resp model.AddWebLinksResponse
	if err := c.do(ctx, "add_web_links", http.MethodPost, "/add_web_links", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFiles fetches the attachments ingested for a session.
func (c *Client) ListFiles(ctx context.Context, sessionID string) ([]model.FileRecord, error) {
	q := url.Values{"session_id": {sessionID}}
	var resp model.ListFilesResponse
	if err := c.do(ctx, "uploaded_files", http.MethodGet, "/uploaded_files", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// DeleteFile removes one attachment.
func (c *Client) DeleteFile(ctx context.Context, sessionID, filename string) (*model.DeleteFileResponse, error) {
	req := model.DeleteFileRequest{SessionID: sessionID, Filename: filename}
	var resp model.DeleteFileResponse
	if err := c.do(ctx, "delete_file", http.MethodDelete, "/delete_file", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
