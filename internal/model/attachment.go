package model

import (
	"time"
)

// AttachmentKind distinguishes uploaded files from scraped web pages.
type AttachmentKind string

const (
	AttachmentFile    AttachmentKind = "file"
	AttachmentWebpage AttachmentKind = "webpage"
)

// ProcessingStatus describes how far ingestion has taken an attachment.
type ProcessingStatus string

const (
	StatusRaw          ProcessingStatus = "raw"
	StatusOCRProcessed ProcessingStatus = "ocr_processed"
)

// Attachment is one ingested content unit belonging to a session.
type Attachment struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Kind        AttachmentKind   `json:"kind"`
	SizeBytes   int64            `json:"size_bytes"`
	SourceURL   string           `json:"source_url,omitempty"`
	Status      ProcessingStatus `json:"status"`
	IsImage     bool             `json:"is_image,omitempty"`
	ModifiedAt  time.Time        `json:"modified_at"`
}

// UploadResponse is the backend response for a multipart upload.
type UploadResponse struct {
	Success       bool     `json:"success"`
	UploadedFiles []string `json:"uploaded_files,omitempty"`
	FailedFiles   []string `json:"failed_files,omitempty"`
}

// AddWebLinksRequest is the payload for ingesting web pages.
type AddWebLinksRequest struct {
	SessionID string   `json:"session_id"`
	URLs      []string `json:"urls"`
}

// ScrapedURL describes one successfully scraped page.
type ScrapedURL struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// AddWebLinksResponse is the backend response for a web-link ingest.
type AddWebLinksResponse struct {
	Success     bool         `json:"success"`
	ScrapedURLs []ScrapedURL `json:"scraped_urls,omitempty"`
	FailedURLs  []string     `json:"failed_urls,omitempty"`
}

// FileRecord is an attachment as the backend lists it.
type FileRecord struct {
	Name         string  `json:"name"`
	DisplayName  string  `json:"display_name"`
	OriginalURL  string  `json:"original_url,omitempty"`
	Type         string  `json:"type"`
	Size         int64   `json:"size"`
	HumanSize    string  `json:"human_size,omitempty"`
	Modified     float64 `json:"modified"`
	ModifiedISO  string  `json:"modified_iso,omitempty"`
	Extension    string  `json:"extension,omitempty"`
	IsImage      bool    `json:"is_image"`
	OCRProcessed bool    `json:"ocr_processed"`
}

// ListFilesResponse is the backend response for listing attachments.
type ListFilesResponse struct {
	Files []FileRecord `json:"files"`
}

// Attachment converts a wire record into an Attachment.
func (r FileRecord) Attachment() Attachment {
	kind := AttachmentFile
	if r.Type == string(AttachmentWebpage) {
		kind = AttachmentWebpage
	}
	status := StatusRaw
	if r.OCRProcessed {
		status = StatusOCRProcessed
	}
	sec := int64(r.Modified)
	nsec := int64((r.Modified - float64(sec)) * 1e9)
	return Attachment{
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Kind:        kind,
		SizeBytes:   r.Size,
		SourceURL:   r.OriginalURL,
		Status:      status,
		IsImage:     r.IsImage,
		ModifiedAt:  time.Unix(sec, nsec),
	}
}

// DeleteFileRequest is the payload for deleting an attachment.
type DeleteFileRequest struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
}

// DeleteFileResponse is the backend response for an attachment delete.
type DeleteFileResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BackendError returns the backend-reported failure, if any.
func (r *DeleteFileResponse) BackendError() string { return r.Error }

// FileUpload is one in-memory file handed to the upload operation.
type FileUpload struct {
	Name    string
	Content []byte
}
