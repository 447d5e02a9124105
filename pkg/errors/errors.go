// Package errors defines the error taxonomy shared across index construction,
// dictionary codecs, and query evaluation, together with the exit-code mapping
// used by the CLI.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction marks an I/O failure while writing or reading a
	// temporary run or the final index. Fatal for the build; no partial
	// index is published.
	ErrConstruction = errors.New("index construction failed")
	// ErrCorruptIndex marks a segment or sidecar whose bytes fail
	// structural validation (bad magic, checksum mismatch, truncated
	// region).
	ErrCorruptIndex = errors.New("corrupt index file")
	// ErrCodecMismatch marks a dictionary decode attempted with a codec
	// other than the one that produced the bytes.
	ErrCodecMismatch = errors.New("dictionary codec mismatch")
	// ErrQuerySyntax marks a malformed boolean expression, reported before
	// any index access.
	ErrQuerySyntax = errors.New("query syntax error")
	// ErrInvalidInput marks bad caller-supplied parameters.
	ErrInvalidInput = errors.New("invalid input")
)

// AppError attaches a human-readable message to one of the sentinel errors
// above while remaining matchable with errors.Is.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel error with a message.
func New(sentinel error, message string) *AppError {
	return &AppError{Err: sentinel, Message: message}
}

// Newf wraps a sentinel error with a formatted message.
func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error to a process exit code for the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrQuerySyntax), errors.Is(err, ErrInvalidInput):
		return 2
	case errors.Is(err, ErrCodecMismatch), errors.Is(err, ErrCorruptIndex):
		return 3
	case errors.Is(err, ErrConstruction):
		return 4
	default:
		return 1
	}
}
