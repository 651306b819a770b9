package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/glokal-ai/docchat/internal/model"
)

// Upload sends the given files to the backend and reconciles the result.
// An empty input is a no-op. On partial success the attachment list is
// still refreshed for the accepted subset, and the rejected names surface
// as a system notice in the transcript; successes are reported only
// through the returned response.
func (o *Orchestrator) Upload(ctx context.Context, files []model.FileUpload) (*model.UploadResponse, error) {
	if len(files) == 0 {
		return &model.UploadResponse{}, nil
	}

	sessionID, gen := o.currentGeneration()
	if sessionID == "" {
		return nil, ErrNoActiveSession
	}

	resp, err := o.backend.Upload(ctx, sessionID, files)
	if err != nil {
		o.logger.Warn("upload failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		o.appendSystem(gen, "upload", "Failed to upload files. Please try again.", true)
		return nil, err
	}

	if resp.Success {
		o.refreshAttachments(ctx, gen, sessionID)
	}
	if !resp.Success || len(resp.FailedFiles) > 0 {
		failed := "some files"
		if len(resp.FailedFiles) > 0 {
			failed = strings.Join(resp.FailedFiles, ", ")
		}
		o.appendSystem(gen, "upload", "Failed to upload "+failed, true)
	}
	return resp, nil
}

// AddWebLinks validates the given URLs locally, sends the valid ones for
// scraping and reconciles the result. With zero valid URLs the operation
// is rejected before any network call.
func (o *Orchestrator) AddWebLinks(ctx context.Context, urls []string) (*model.AddWebLinksResponse, error) {
	valid := make([]string, 0, len(urls))
	for _, raw := range urls {
		if u, ok := normalizeURL(raw); ok {
			valid = append(valid, u)
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoValidURLs
	}

	sessionID, gen := o.currentGeneration()
	if sessionID == "" {
		return nil, ErrNoActiveSession
	}

	resp, err := o.backend.AddWebLinks(ctx, sessionID, valid)
	if err != nil {
		o.logger.Warn("web link ingest failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		o.appendSystem(gen, "add_web_links", "Failed to add web links. Please try again.", true)
		return nil, err
	}

	if resp.Success {
		o.refreshAttachments(ctx, gen, sessionID)
	}
	if len(resp.FailedURLs) > 0 {
		o.appendSystem(gen, "add_web_links",
			"Failed to scrape "+strings.Join(resp.FailedURLs, ", "), true)
	}
	return resp, nil
}

// DeleteAttachment removes one attachment after confirmation. A
// backend-reported failure surfaces as a transcript notice including any
// server-provided reason.
func (o *Orchestrator) DeleteAttachment(ctx context.Context, name string) (*model.DeleteFileResponse, error) {
	if !o.confirm.Confirm(fmt.Sprintf("Are you sure you want to delete %q?", name)) {
		return nil, ErrConfirmationDeclined
	}

	sessionID, gen := o.currentGeneration()
	if sessionID == "" {
		return nil, ErrNoActiveSession
	}

	resp, err := o.backend.DeleteFile(ctx, sessionID, name)
	if err != nil {
		o.logger.Warn("attachment delete failed",
			zap.String("session_id", sessionID),
			zap.String("name", name),
			zap.Error(err),
		)
		o.appendSystem(gen, "delete_file",
			fmt.Sprintf("Failed to delete %q. Please try again.", name), true)
		return nil, err
	}

	if !resp.Success {
		notice := fmt.Sprintf("Failed to delete %q.", name)
		if resp.Error != "" {
			notice += " " + resp.Error
		}
		o.appendSystem(gen, "delete_file", notice, true)
		return resp, nil
	}

	o.refreshAttachments(ctx, gen, sessionID)
	return resp, nil
}

// refreshAttachments reloads the attachment list for sessionID, applying
// only while gen is still current.
func (o *Orchestrator) refreshAttachments(ctx context.Context, gen uint64, sessionID string) {
	records, err := o.backend.ListFiles(ctx, sessionID)
	if err != nil {
		o.logger.Warn("failed to refresh attachments",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}

	items := make([]model.Attachment, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.Attachment())
	}
	o.applyIfCurrent(gen, "uploaded_files", func() {
		o.attachments.Replace(items)
	})
}

// normalizeURL accepts absolute http(s) URLs, defaulting schemeless input
// to https the way the scraper does. Anything without a dotted host is
// rejected.
func normalizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		if strings.Contains(raw, "://") {
			return "", false
		}
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
		return "", false
	}
	return raw, true
}
