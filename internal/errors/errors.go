// Package errors provides centralized error definitions and error handling utilities
// for clawteam. It defines the sentinel errors of the coordination store, a typed
// error carrying team and task context, and the classification used to build the
// structured error results returned by every command.
//
// # Error Kinds
//
// Every error surfaced to a caller maps to exactly one [Kind]:
//   - KindNotFound: the team, task or message does not exist
//   - KindAlreadyActive: an active team with the same name already exists
//   - KindInvalidStatus: a task status outside the five-value enum
//   - KindInvalidInput: a request failed validation (empty title, bad name)
//   - KindIOFailure: reading or writing a document failed, or the team lock timed out
//   - KindInternal: anything else
//
// # Usage
//
//	err := errors.NewCoordinationError("claim task", errors.ErrTaskNotFound).
//		WithTeam("alpha").
//		WithTask("T007")
//
//	if errors.Is(err, errors.ErrNotFound) { ... }
//	kind := errors.KindOf(err) // errors.KindNotFound
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for caller mistakes such as unknown ids or bad input.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// ErrNotFound is the root of every "does not exist" error.
var ErrNotFound = New("not found")

// Resource-specific not-found errors. Each wraps ErrNotFound.
var (
	// ErrTeamNotFound indicates that no team document exists for a name.
	ErrTeamNotFound = fmt.Errorf("team %w", ErrNotFound)
	// ErrTaskNotFound indicates that a task id is absent from a team's board.
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)
	// ErrMessageNotFound indicates that a message id is absent from a team's log.
	ErrMessageNotFound = fmt.Errorf("message %w", ErrNotFound)
)

// Coordination sentinel errors
var (
	// ErrAlreadyActive indicates that an active team with the same name exists.
	ErrAlreadyActive = New("team already exists and is active")
	// ErrInvalidStatus indicates a task status outside the known set.
	ErrInvalidStatus = New("invalid status")
	// ErrInvalidInput indicates that request validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrIOFailure indicates that a document could not be read or written.
	ErrIOFailure = New("i/o failure")
	// ErrLockTimeout indicates that the per-team lock could not be acquired in time.
	ErrLockTimeout = fmt.Errorf("team lock timed out: %w", ErrIOFailure)
)

// -----------------------------------------------------------------------------
// Kinds
// -----------------------------------------------------------------------------

// Kind is the stable, machine-readable category of an error.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindAlreadyActive Kind = "already_active"
	KindInvalidStatus Kind = "invalid_status"
	KindInvalidInput  Kind = "invalid_input"
	KindIOFailure     Kind = "io_failure"
	KindInternal      Kind = "internal"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// KindOf classifies err. A nil error has an empty kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrNotFound):
		return KindNotFound
	case Is(err, ErrAlreadyActive):
		return KindAlreadyActive
	case Is(err, ErrInvalidStatus):
		return KindInvalidStatus
	case Is(err, ErrInvalidInput):
		return KindInvalidInput
	case Is(err, ErrIOFailure):
		return KindIOFailure
	default:
		return KindInternal
	}
}

// -----------------------------------------------------------------------------
// CoordinationError
// -----------------------------------------------------------------------------

// CoordinationError is returned by registry, task board and message log
// operations. It records which operation failed and on which team and task.
//
// Example:
//
//	err := errors.NewCoordinationError("update task", errors.ErrInvalidStatus).
//		WithTeam("alpha").WithTask("T001")
//	fmt.Println(err) // "coordination error [team=alpha, task=T001]: update task: invalid status"
type CoordinationError struct {
	Op       string
	TeamName string
	TaskID   string
	cause    error
	severity Severity
}

// NewCoordinationError creates a CoordinationError for op wrapping cause.
// Severity defaults to warning for caller mistakes and error for I/O failures.
func NewCoordinationError(op string, cause error) *CoordinationError {
	sev := SeverityWarning
	if KindOf(cause) == KindIOFailure || KindOf(cause) == KindInternal {
		sev = SeverityError
	}
	return &CoordinationError{
		Op:       op,
		cause:    cause,
		severity: sev,
	}
}

// WithTeam adds a team name to the error context.
func (e *CoordinationError) WithTeam(name string) *CoordinationError {
	e.TeamName = name
	return e
}

// WithTask adds a task id to the error context.
func (e *CoordinationError) WithTask(id string) *CoordinationError {
	e.TaskID = id
	return e
}

// Error returns the formatted error message.
func (e *CoordinationError) Error() string {
	var parts []string
	if e.TeamName != "" {
		parts = append(parts, fmt.Sprintf("team=%s", e.TeamName))
	}
	if e.TaskID != "" {
		parts = append(parts, fmt.Sprintf("task=%s", e.TaskID))
	}

	prefix := "coordination error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("coordination error [%s]", strings.Join(parts, ", "))
	}

	msg := e.Op
	if e.cause != nil {
		if msg != "" {
			msg = fmt.Sprintf("%s: %v", msg, e.cause)
		} else {
			msg = e.cause.Error()
		}
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Unwrap returns the underlying error.
func (e *CoordinationError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *CoordinationError) Is(target error) bool {
	_, ok := target.(*CoordinationError)
	return ok
}

// Severity returns the error severity.
func (e *CoordinationError) Severity() Severity {
	return e.severity
}

// Kind returns the classification of the wrapped cause.
func (e *CoordinationError) Kind() Kind {
	return KindOf(e.cause)
}

// -----------------------------------------------------------------------------
// ValidationError
// -----------------------------------------------------------------------------

// ValidationError describes a single invalid request field. It always
// matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error [field=%s]: %s (got: %v)", e.Field, e.Message, e.Value)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return target == ErrInvalidInput
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// GetSeverity returns the severity level of the error. Errors without their
// own severity are warnings unless they are I/O or internal failures.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var coordErr *CoordinationError
	if As(err, &coordErr) {
		return coordErr.Severity()
	}
	var validation *ValidationError
	if As(err, &validation) {
		return SeverityWarning
	}
	switch KindOf(err) {
	case KindIOFailure, KindInternal:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IOFailure wraps a low-level storage error so that it classifies as KindIOFailure
// while keeping the original error in the chain.
func IOFailure(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), Join(ErrIOFailure, err))
}
