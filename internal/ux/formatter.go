package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskplan/internal/plan"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// Format writes the given data to the output writer
	Format(data any) error
}

// FormatterOptions contains configuration for formatters
type FormatterOptions struct {
	// Writer is where output is written (defaults to os.Stdout)
	Writer io.Writer
	// NoColor disables colored output for text formatters
	NoColor bool
	// Compact enables compact output (no indentation for JSON)
	Compact bool
}

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// NewFormatter creates a formatter based on the format string
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{}
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch format {
	case FormatJSON:
		return &JSONFormatter{opts: opts}, nil
	case FormatYAML:
		return &YAMLFormatter{opts: opts}, nil
	case FormatText, "":
		styles := DefaultStyles()
		if opts.NoColor {
			styles = PlainStyles()
		}
		return &TextFormatter{opts: opts, styles: styles}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	opts *FormatterOptions
}

func (f *JSONFormatter) Format(data any) error {
	encoder := json.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	opts *FormatterOptions
}

func (f *YAMLFormatter) Format(data any) error {
	encoder := yaml.NewEncoder(f.opts.Writer)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

// TextFormatter renders schedules and validation results for humans.
// Other values must be strings or implement fmt.Stringer.
type TextFormatter struct {
	opts   *FormatterOptions
	styles Styles
}

func (f *TextFormatter) Format(data any) error {
	var out string
	switch v := data.(type) {
	case *plan.ScheduleResponse:
		out = RenderSchedule(v, f.styles)
	case *plan.ValidationResponse:
		out = RenderValidation(v, f.styles)
	case string:
		out = v
	case fmt.Stringer:
		out = v.String()
	default:
		return fmt.Errorf("text formatter cannot render %T; use --format json or yaml", data)
	}
	_, err := fmt.Fprintln(f.opts.Writer, out)
	return err
}

var _ Formatter = (*JSONFormatter)(nil)
var _ Formatter = (*YAMLFormatter)(nil)
var _ Formatter = (*TextFormatter)(nil)
