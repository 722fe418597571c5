package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// Format selects the encoding of request and response documents
type Format string

// Supported document formats
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension, defaulting to JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadRequest reads a ScheduleRequest from a JSON or YAML file.
// The request is not validated; callers decide how strict to be.
func LoadRequest(path string) (*ScheduleRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", path), err)
	}

	format := FormatFromPath(path)
	req, err := DecodeRequest(bytes.NewReader(data), format)
	if err != nil {
		return nil, errors.NewFileUnmarshalError(path, strings.ToUpper(string(format)), err)
	}
	return req, nil
}

// DecodeRequest decodes a ScheduleRequest from r.
// Unknown JSON fields are rejected.
func DecodeRequest(r io.Reader, format Format) (*ScheduleRequest, error) {
	var req ScheduleRequest

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&req); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml request: %w", err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return nil, fmt.Errorf("decode json request: %w", err)
		}
	}

	return &req, nil
}

// Encode writes v to w in the given format
func Encode(w io.Writer, v interface{}, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// SaveResponse writes a ScheduleResponse to path, picking the format from the extension
func SaveResponse(resp *ScheduleResponse, path string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, resp, FormatFromPath(path)); err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "failed to encode schedule", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create %s", dir), err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", path), err)
	}

	return nil
}
