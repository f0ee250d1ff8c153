package errors

import (
	stderrors "errors"
	"fmt"
)

// Pipeline errors
var (
	// ErrDecode means the audio container or codec is unsupported or corrupt
	ErrDecode = New("audio decode failed")
	// ErrAudioMissing means the blob store has no audio for a job that exists
	ErrAudioMissing = New("audio file not found in storage")
	// ErrSummaryFailed is logged when summarization falls back; it never fails a job
	ErrSummaryFailed = New("summary generation failed")

	ErrJobNotFound       = New("job not found")
	ErrJobAlreadyRunning = New("job already running")
)

// Configuration and credential errors
var (
	ErrMissingAPIKey = New("API key is required")
	ErrInvalidAPIKey = New("invalid API key format")
	ErrInvalidConfig = New("invalid configuration")
)

// Storage errors
var (
	ErrQueryFailed  = New("query failed")
	ErrScanFailed   = New("scan failed")
	ErrInsertFailed = New("insert failed")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// Kind attaches a sentinel to a concrete cause so that errors.Is matches
// the sentinel while the message still carries the detail.
func Kind(sentinel *Error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &Error{message: sentinel.message, cause: cause}
}

// ChunkTranscriptionFailedError is returned when every attempt for one chunk failed
type ChunkTranscriptionFailedError struct {
	Index    int
	Attempts int
	Cause    error
}

func (e *ChunkTranscriptionFailedError) Error() string {
	return fmt.Sprintf("failed to transcribe chunk %d after %d attempts: %v", e.Index, e.Attempts, e.Cause)
}

func (e *ChunkTranscriptionFailedError) Unwrap() error {
	return e.Cause
}

// AsChunkFailure extracts the failing chunk index, if err is a chunk failure
func AsChunkFailure(err error) (int, bool) {
	var cf *ChunkTranscriptionFailedError
	if stderrors.As(err, &cf) {
		return cf.Index, true
	}
	return 0, false
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Newf("%s is required", field)
}

// InvalidFormat returns an error for invalid format
func InvalidFormat(field string, expected string) error {
	return Newf("%s format invalid: expected %s", field, expected)
}

// TooShort returns an error for values that are too short
func TooShort(field string, minLength int) error {
	return Newf("%s too short (minimum %d characters)", field, minLength)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier string) error {
	return Wrapf(ErrJobNotFound, "%s %s", itemType, identifier)
}
