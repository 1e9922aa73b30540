package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by services and translated to HTTP statuses by the
// handlers layer.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrStorage      = errors.New("storage failure")
)

func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

func Conflict(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrConflict)
}

func Validation(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

// ExternalProcessError reports a child process that started but did not
// produce a usable result. Stderr is carried verbatim so the API can
// surface the underlying tool's diagnostics.
type ExternalProcessError struct {
	Strategy string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalProcessError) Error() string {
	msg := fmt.Sprintf("external process failed (strategy=%s, exit=%d)", e.Strategy, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ExternalProcessError) Unwrap() error { return e.Err }

// InvalidOutputError reports a child process that exited zero but whose
// stdout could not be decoded into the expected result.
type InvalidOutputError struct {
	RawOutput string
	Err       error
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("invalid process output: %v", e.Err)
}

func (e *InvalidOutputError) Unwrap() error { return e.Err }
