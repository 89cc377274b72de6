// Package errors provides the error taxonomy of the headline pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfiguration         ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeEmptyInput            ErrorCode = "EMPTY_INPUT"
	ErrCodeNotFoundFallback      ErrorCode = "NOT_FOUND_FALLBACK"
	ErrCodeTransientRemote       ErrorCode = "TRANSIENT_REMOTE_ERROR"
	ErrCodePermanentRemote       ErrorCode = "PERMANENT_REMOTE_ERROR"
	ErrCodeWorkerShutdownTimeout ErrorCode = "WORKER_SHUTDOWN_TIMEOUT"
	ErrCodeWorkerAlreadyRunning  ErrorCode = "WORKER_ALREADY_RUNNING"
	ErrCodeWorkerNotRunning      ErrorCode = "WORKER_NOT_RUNNING"
	ErrCodeTaskDecodeFailed      ErrorCode = "TASK_DECODE_FAILED"
	ErrCodePersistenceFailed     ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeInvalidTemplate       ErrorCode = "INVALID_TEMPLATE"
)

// Sentinels. StandardError.Is matches them by code, so both
// errors.Is(err, ErrNoTemplates) and a code comparison work.
var (
	ErrNoTemplates     = stderrors.New(string(ErrCodeConfiguration))
	ErrEmptyInput      = stderrors.New(string(ErrCodeEmptyInput))
	ErrAlreadyRunning  = stderrors.New(string(ErrCodeWorkerAlreadyRunning))
	ErrNotRunning      = stderrors.New(string(ErrCodeWorkerNotRunning))
	ErrShutdownTimeout = stderrors.New(string(ErrCodeWorkerShutdownTimeout))
)

var sentinelByCode = map[ErrorCode]error{
	ErrCodeConfiguration:         ErrNoTemplates,
	ErrCodeEmptyInput:            ErrEmptyInput,
	ErrCodeWorkerAlreadyRunning:  ErrAlreadyRunning,
	ErrCodeWorkerNotRunning:      ErrNotRunning,
	ErrCodeWorkerShutdownTimeout: ErrShutdownTimeout,
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is reports whether target is the sentinel registered for e.Code.
func (e *StandardError) Is(target error) bool {
	if s, ok := sentinelByCode[e.Code]; ok && s == target {
		return true
	}
	if t, ok := target.(*StandardError); ok {
		return t.Code == e.Code
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewNoTemplatesError reports an empty template store at selection time.
func NewNoTemplatesError() *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   "No templates available",
		Details:   "template store is empty and no fallback set was loaded",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyInputError reports an attempt to load nothing into an empty store.
func NewEmptyInputError(what string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyInput,
		Message:   "Empty input",
		Details:   what,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTemplateError reports a template rejected at load time.
func NewInvalidTemplateError(index int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTemplate,
		Message:   "Template failed validation",
		Details:   fmt.Sprintf("index: %d, error: %v", index, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTransientRemoteError marks a retryable enhancement failure.
func NewTransientRemoteError(statusCode int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransientRemote,
		Message:   "Transient failure from enhancement endpoint",
		Details:   remoteDetails(statusCode, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"statusCode": statusCode},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPermanentRemoteError marks a non-retryable enhancement failure.
func NewPermanentRemoteError(statusCode int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePermanentRemote,
		Message:   "Permanent failure from enhancement endpoint",
		Details:   remoteDetails(statusCode, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"statusCode": statusCode},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewWorkerStateError reports an invalid start/stop transition.
func NewWorkerStateError(code ErrorCode, state string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   "Invalid worker state transition",
		Details:   fmt.Sprintf("state: %s", state),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewShutdownTimeoutError reports a loop that ignored the stop signal.
func NewShutdownTimeoutError(grace time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkerShutdownTimeout,
		Message:   "Worker loop did not exit within grace period",
		Details:   fmt.Sprintf("grace: %s", grace),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaskDecodeError reports a task payload that could not be parsed.
func NewTaskDecodeError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaskDecodeFailed,
		Message:   "Task payload could not be decoded",
		Details:   fmt.Sprintf("source: %s, error: %v", source, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPersistenceError wraps a repository failure; these are retryable.
func NewPersistenceError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Persistence operation failed",
		Details:   fmt.Sprintf("op: %s, error: %v", op, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func remoteDetails(statusCode int, err error) string {
	if err != nil {
		return fmt.Sprintf("status: %d, error: %v", statusCode, err)
	}
	return fmt.Sprintf("status: %d", statusCode)
}

// ==========================
// 3. Helpers
// ==========================

// IsRetryable reports whether err is a StandardError flagged retryable.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the error code, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeConfiguration, ErrCodeEmptyInput, ErrCodeInvalidTemplate:
		return "configuration"
	case ErrCodeNotFoundFallback:
		return "fallback"
	case ErrCodeTransientRemote, ErrCodePermanentRemote:
		return "remote"
	case ErrCodeWorkerShutdownTimeout, ErrCodeWorkerAlreadyRunning, ErrCodeWorkerNotRunning:
		return "worker"
	case ErrCodeTaskDecodeFailed, ErrCodePersistenceFailed:
		return "task"
	default:
		return "unknown"
	}
}

// Is and As re-export the standard helpers so callers need one import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }
