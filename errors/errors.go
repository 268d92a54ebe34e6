package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an application error class in API responses
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_PERMISSION_DENIED ErrorCode = 1003
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1004
	ErrorCode_TOO_MANY_REQUESTS ErrorCode = 1005

	ErrorCode_AUTH_INVALID_SIGNATURE ErrorCode = 2001

	ErrorCode_RECORDING_NOT_FOUND     ErrorCode = 3001
	ErrorCode_TRANSCRIPTION_NOT_FOUND ErrorCode = 3002
	ErrorCode_CONTACT_NOT_FOUND       ErrorCode = 3003
	ErrorCode_ACTION_ITEM_NOT_FOUND   ErrorCode = 3004

	ErrorCode_EXPORT_UNSUPPORTED_FORMAT ErrorCode = 4001
	ErrorCode_EXPORT_ARCHIVE_FAILED     ErrorCode = 4002
	ErrorCode_EXPORT_ARCHIVE_DISABLED   ErrorCode = 4003
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                   "HTTP_OK",
	ErrorCode_INTERNAL:                  "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:          "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                 "NOT_FOUND",
	ErrorCode_PERMISSION_DENIED:         "PERMISSION_DENIED",
	ErrorCode_INVALID_PAYLOAD:           "INVALID_PAYLOAD",
	ErrorCode_TOO_MANY_REQUESTS:         "TOO_MANY_REQUESTS",
	ErrorCode_AUTH_INVALID_SIGNATURE:    "AUTH_INVALID_SIGNATURE",
	ErrorCode_RECORDING_NOT_FOUND:       "RECORDING_NOT_FOUND",
	ErrorCode_TRANSCRIPTION_NOT_FOUND:   "TRANSCRIPTION_NOT_FOUND",
	ErrorCode_CONTACT_NOT_FOUND:         "CONTACT_NOT_FOUND",
	ErrorCode_ACTION_ITEM_NOT_FOUND:     "ACTION_ITEM_NOT_FOUND",
	ErrorCode_EXPORT_UNSUPPORTED_FORMAT: "EXPORT_UNSUPPORTED_FORMAT",
	ErrorCode_EXPORT_ARCHIVE_FAILED:     "EXPORT_ARCHIVE_FAILED",
	ErrorCode_EXPORT_ARCHIVE_DISABLED:   "EXPORT_ARCHIVE_DISABLED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_%d", int(c))
}

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrPermissionDenied(action string) AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_PERMISSION_DENIED,
		Message:  fmt.Sprintf("Permission denied: %s", action),
	}
}

func ErrTooManyRequests() AppError {
	return AppError{
		HTTPCode: http.StatusTooManyRequests,
		Code:     ErrorCode_TOO_MANY_REQUESTS,
		Message:  "Too many requests",
	}
}

// Authentication Errors
func ErrInvalidSignature() AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_AUTH_INVALID_SIGNATURE,
		Message:  "Invalid Twilio signature",
	}
}

// Call data Errors
func ErrRecordingNotFound(recordingSid string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_RECORDING_NOT_FOUND,
		Message:  "Recording not found",
	}.WithDetail("recording_sid", recordingSid)
}

func ErrTranscriptionNotFound(transcriptionSid string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_TRANSCRIPTION_NOT_FOUND,
		Message:  "Transcription not found",
	}.WithDetail("transcription_sid", transcriptionSid)
}

func ErrContactNotFound(phoneKey string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_CONTACT_NOT_FOUND,
		Message:  "Contact not found",
	}.WithDetail("phone_number", phoneKey)
}

func ErrActionItemNotFound(actionItemID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_ACTION_ITEM_NOT_FOUND,
		Message:  "Action item not found",
	}.WithDetail("action_item_id", actionItemID)
}

// Export Errors
func ErrUnsupportedExportFormat(format string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_EXPORT_UNSUPPORTED_FORMAT,
		Message:  "Unsupported export format",
	}.WithDetail("format", format)
}

func ErrExportArchiveFailed(format string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_EXPORT_ARCHIVE_FAILED,
		Message:  "Failed to archive export",
	}.WithDetail("format", format)
}

func ErrExportArchiveDisabled() AppError {
	return AppError{
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_EXPORT_ARCHIVE_DISABLED,
		Message:  "Export archiving is not configured",
	}
}

// Custom Errors
func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}
