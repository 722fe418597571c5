package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format represents the output format for logs
type Format int

const (
	// FormatJSON outputs logs in JSON format
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format
	FormatText
)

// String returns the string representation of the format
func (f Format) String() string {
	if f == FormatText {
		return "text"
	}
	return "json"
}

// ParseFormat parses a string into a Format, defaulting to JSON
func ParseFormat(s string) Format {
	f, err := LookupFormat(s)
	if err != nil {
		return FormatJSON
	}
	return f
}

// LookupFormat parses "text" (or "console") and "json", in any case.
func LookupFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "console":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format %q (supported: text, json)", s)
	}
}

// Output represents where logs should be written
type Output struct {
	writer io.Writer
}

// Writer returns the underlying io.Writer
func (o Output) Writer() io.Writer {
	if o.writer == nil {
		return os.Stderr
	}
	return o.writer
}

// NewOutput creates an Output from an io.Writer
func NewOutput(w io.Writer) Output {
	return Output{writer: w}
}

// OutputStderr creates an Output that writes to stderr
func OutputStderr() Output {
	return Output{writer: os.Stderr}
}

// OutputDiscard creates an Output that drops everything
func OutputDiscard() Output {
	return Output{writer: io.Discard}
}

// Config holds configuration for the logger
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output format (JSON or Text)
	Format Format

	// Output is where logs should be written. Stdout is left to command output.
	Output Output

	// AddSource includes source file and line number in logs
	AddSource bool

	// ServiceName is attached to every entry when set
	ServiceName string

	// ServiceVersion is attached alongside ServiceName
	ServiceVersion string
}

// DefaultConfig logs at INFO level in JSON format to stderr
func DefaultConfig() Config {
	return Config{
		Level:          LevelInfo,
		Format:         FormatJSON,
		Output:         OutputStderr(),
		ServiceName:    "taskplan",
		ServiceVersion: "dev",
	}
}

// FromStrings builds a config from the textual level and format used by flags and config files
func FromStrings(level, format, version string) Config {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	cfg.Format = ParseFormat(format)
	cfg.AddSource = cfg.Level == LevelDebug
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg
}
