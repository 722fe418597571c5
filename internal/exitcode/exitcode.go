package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates an unreadable or invalid configuration
	ConfigError = 3

	// NotFound indicates a referenced project or task does not exist
	NotFound = 4

	// AuthError indicates an authentication or authorization failure
	AuthError = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// ValidationFailed indicates the input was rejected, including dependency cycles
	ValidationFailed = 7

	// IOError indicates a file could not be read, parsed or written
	IOError = 8

	// Interrupted indicates the user cancelled with SIGINT or SIGTERM
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Coded errors map by category; anything else falls back to message matching.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if code := errors.CodeOf(err); code != "" {
		if exit, ok := fromCode(code); ok {
			return exit
		}
	}

	errMsg := strings.ToLower(err.Error())

	// Dependency cycles surfaced without a code
	if strings.Contains(errMsg, "circular dependency") {
		return ValidationFailed
	}

	// Authentication errors
	if strings.Contains(errMsg, "authentication") || strings.Contains(errMsg, "unauthorized") {
		return AuthError
	}
	if strings.Contains(errMsg, "api key") {
		return AuthError
	}

	// Network errors
	if strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection refused") {
		return NetworkError
	}
	if strings.Contains(errMsg, "address already in use") {
		return NetworkError
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "unknown flag") {
		return UsageError
	}

	return GeneralError
}

func fromCode(code errors.ErrorCode) (int, bool) {
	switch code.Category() {
	case "SCHED", "REQ":
		return ValidationFailed, true
	case "AUTH":
		return AuthError, true
	case "IO":
		return IOError, true
	case "CONFIG":
		return ConfigError, true
	}

	switch code {
	case errors.ErrCodeProjectNotFound, errors.ErrCodeTaskNotFound:
		return NotFound, true
	case errors.ErrCodeProjectInvalid:
		return ValidationFailed, true
	}
	return 0, false
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConfigError:
		return "Configuration error"
	case NotFound:
		return "Project or task not found"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case ValidationFailed:
		return "Validation failed"
	case IOError:
		return "File I/O error"
	case Interrupted:
		return "Interrupted by user"
	default:
		return "Unknown error"
	}
}
