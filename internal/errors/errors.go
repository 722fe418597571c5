package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/scheduler"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Scheduling errors (SCHED-001 to SCHED-099)
	ErrCodeCycleDetected        ErrorCode = "SCHED-001"
	ErrCodeInvalidConfiguration ErrorCode = "SCHED-002"

	// Request errors (REQ-001 to REQ-099)
	ErrCodeInvalidRequest ErrorCode = "REQ-001"

	// Project store errors (PROJECT-001 to PROJECT-099)
	ErrCodeProjectNotFound ErrorCode = "PROJECT-001"
	ErrCodeTaskNotFound    ErrorCode = "PROJECT-002"
	ErrCodeProjectInvalid  ErrorCode = "PROJECT-003"

	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeUnauthorized ErrorCode = "AUTH-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL-001"
)

// TaskplanError represents an enhanced error with code, suggestions, and documentation
type TaskplanError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *TaskplanError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			fmt.Fprintf(&b, "\n  • %s", suggestion)
		}
	}

	if e.DocsURL != "" {
		fmt.Fprintf(&b, "\n\nDocumentation: %s", e.DocsURL)
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *TaskplanError) Unwrap() error {
	return e.Cause
}

// New creates a new TaskplanError
func New(code ErrorCode, message string) *TaskplanError {
	return &TaskplanError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new TaskplanError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *TaskplanError {
	return &TaskplanError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *TaskplanError) WithSuggestion(suggestion string) *TaskplanError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *TaskplanError) WithSuggestions(suggestions ...string) *TaskplanError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *TaskplanError) WithDocs(url string) *TaskplanError {
	e.DocsURL = url
	return e
}

// As returns the first TaskplanError in err's chain.
func As(err error) (*TaskplanError, bool) {
	var te *TaskplanError
	if stderrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// CodeOf returns the code of the first TaskplanError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if te, ok := As(err); ok {
		return te.Code
	}
	return ""
}

// Category returns the prefix of a code, such as "SCHED" for "SCHED-001".
func (c ErrorCode) Category() string {
	s := string(c)
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}

// FromScheduler translates scheduler failures into coded errors.
// Errors that are not scheduler errors are returned unchanged.
func FromScheduler(err error) error {
	if err == nil {
		return nil
	}

	var cycle *scheduler.CycleError
	if stderrors.As(err, &cycle) {
		return NewCycleError(cycle)
	}

	var cfg *scheduler.ConfigError
	if stderrors.As(err, &cfg) {
		return Wrap(ErrCodeInvalidConfiguration, "invalid scheduling configuration", cfg).
			WithSuggestion("Set dailyWorkHours to a value greater than 0 and at most 24")
	}

	return err
}

// HTTPStatus maps an error to the status code an API handler should return.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeCycleDetected, ErrCodeInvalidConfiguration, ErrCodeInvalidRequest,
		ErrCodeProjectInvalid, ErrCodeFileUnmarshal:
		return http.StatusBadRequest
	case ErrCodeProjectNotFound, ErrCodeTaskNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors for frequently used errors

// NewCycleError creates a dependency cycle error
func NewCycleError(cycle *scheduler.CycleError) *TaskplanError {
	e := Wrap(ErrCodeCycleDetected, "circular dependency detected involving task: "+cycle.Title, cycle).
		WithSuggestion("Remove one of the dependencies along the reported path")
	if len(cycle.Path) > 0 {
		e.WithSuggestion("Path: " + strings.Join(cycle.Path, " -> "))
	}
	return e
}

// NewInvalidRequestError creates a request validation error listing every problem found
func NewInvalidRequestError(problems []string) *TaskplanError {
	msg := "invalid schedule request"
	if len(problems) == 1 {
		msg = "invalid schedule request: " + problems[0]
	}
	return New(ErrCodeInvalidRequest, msg).WithSuggestions(problems...)
}

// NewProjectNotFoundError creates a project not found error
func NewProjectNotFoundError(id string) *TaskplanError {
	return New(ErrCodeProjectNotFound, fmt.Sprintf("project not found: %s", id)).
		WithSuggestion("List your projects with GET /api/v1/projects")
}

// NewTaskNotFoundError creates a task not found error
func NewTaskNotFoundError(id string) *TaskplanError {
	return New(ErrCodeTaskNotFound, fmt.Sprintf("task not found: %s", id))
}

// NewProjectInvalidError creates a project or task input error
func NewProjectInvalidError(details string) *TaskplanError {
	return New(ErrCodeProjectInvalid, details)
}

// NewUnauthorizedError creates an authentication error
func NewUnauthorizedError(reason string) *TaskplanError {
	return New(ErrCodeUnauthorized, reason).
		WithSuggestion("Send 'Authorization: Bearer <api-key>'")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *TaskplanError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *TaskplanError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

// NewConfigInvalidError creates a configuration file error
func NewConfigInvalidError(details string, cause error) *TaskplanError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details), cause).
		WithSuggestion("Check ~/.taskplan/config.yaml or the file passed with --config").
		WithSuggestion("Environment overrides use the TASKPLAN_ prefix")
}
