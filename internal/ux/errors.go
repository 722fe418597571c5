package ux

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// ErrorWithSuggestion attaches a recovery hint to an error.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
}

func (e *ErrorWithSuggestion) Unwrap() error { return e.Err }

// NewErrorWithSuggestion returns nil when err is nil.
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{Err: err, Suggestion: suggestion}
}

// hint pairs message fragments from the OS or network stack with the advice
// shown for them. The first matching entry wins.
type hint struct {
	fragments []string
	advice    string
}

var hints = []hint{
	{[]string{"no such file or directory"}, "Check the path passed with --in, or run from the directory holding taskplan.yaml"},
	{[]string{"permission denied"}, "Check file permissions and ensure you have access to the required files/directories"},
	{[]string{"address already in use"}, "Another process is using the port; pick a different one with --port"},
	{[]string{"connection refused", "no route to host"}, "Check your network connection and that the collector endpoint is reachable"},
	{[]string{"unknown format"}, "Supported output formats are text, json and yaml"},
}

// EnhanceError adds a suggestion to errors that do not carry a code.
// Coded errors already list their own suggestions and are returned as is.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}

	msg := err.Error()
	for _, h := range hints {
		for _, f := range h.fragments {
			if strings.Contains(msg, f) {
				return NewErrorWithSuggestion(err, h.advice)
			}
		}
	}
	return err
}
