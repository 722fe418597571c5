package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// errorResponse is the JSON body of every error.
type errorResponse struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONWithETag writes v with an ETag computed over the encoded body.
func writeJSONWithETag(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	body = append(body, '\n')

	sum := blake3.Sum256(body)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", fmt.Sprintf(`"%x"`, sum))
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// writeError maps err to a status and a coded body. Failures without a
// client-facing code are logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.CodeOf(err)

	s.deps.Metrics.RecordError(string(code), "server")

	if status == http.StatusInternalServerError {
		s.deps.Logger.WithContext(r.Context()).WithError(err).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
		)
		writeJSON(w, status, errorResponse{
			Message: "internal server error",
			Code:    string(errors.ErrCodeInternal),
		})
		return
	}

	body := errorResponse{Message: err.Error(), Code: string(code)}
	if te, ok := errors.As(err); ok {
		body.Message = te.Message
		if te.Code == errors.ErrCodeInvalidRequest && len(te.Suggestions) > 1 {
			body.Details = te.Suggestions
		}
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON body into v, rejecting unknown fields and
// trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.Is(err, io.EOF):
			return badBody("request body is empty")
		case stderrors.As(err, &tooLarge):
			return badBody(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		default:
			return badBody(fmt.Sprintf("malformed JSON: %v", err))
		}
	}
	if dec.More() {
		return badBody("request body must contain a single JSON object")
	}
	return nil
}

func badBody(detail string) error {
	return errors.New(errors.ErrCodeInvalidRequest, "invalid request body: "+detail)
}
