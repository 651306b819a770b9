package service

import (
	"errors"
)

// Validation failures are rejected locally before any network call.
var (
	ErrEmptyMessage         = errors.New("message is empty")
	ErrInputDisabled        = errors.New("message input is disabled until a document is attached")
	ErrEmptyTitle           = errors.New("title cannot be empty")
	ErrNoValidURLs          = errors.New("no valid URLs provided")
	ErrNoActiveSession      = errors.New("no active session")
	ErrRegenerationLimit    = errors.New("maximum regeneration limit reached for this response")
	ErrRegenerationBusy     = errors.New("a regeneration is already in flight for this message")
	ErrNotRegenerable       = errors.New("message is not a regenerable bot response")
	ErrConfirmationDeclined = errors.New("confirmation declined")
)
