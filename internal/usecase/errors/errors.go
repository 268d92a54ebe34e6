package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrInternalError = errors.New("internal server error")
)

// Record errors
var (
	ErrRecordingNotFound     = errors.New("recording not found")
	ErrTranscriptionNotFound = errors.New("transcription not found")
	ErrMediaUnavailable      = errors.New("recording media url unavailable")
)

// Contact errors
var (
	ErrContactNotFound    = errors.New("contact not found")
	ErrActionItemNotFound = errors.New("action item not found")
)

// Export errors
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrArchiveDisabled   = errors.New("export archiving is disabled")
)

// Processing errors
var (
	ErrAnalyticsPanicked = errors.New("analytics panicked")
	ErrNotProcessed      = errors.New("transcription is not processed")
)
