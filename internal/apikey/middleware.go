package apikey

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

type ctxKey struct{}

// Middleware guards handlers with bearer API keys.
type Middleware struct {
	auth Authenticator
}

// NewMiddleware returns middleware that resolves keys through auth.
func NewMiddleware(auth Authenticator) *Middleware {
	return &Middleware{auth: auth}
}

// bearerToken extracts the secret from an "Authorization: Bearer <key>"
// header. On failure it returns the reason shown to the client.
func bearerToken(header string) (token, problem string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", "invalid authorization format"
	}
	if token = strings.TrimSpace(rest); token == "" {
		return "", "missing API key"
	}
	return token, ""
}

// RequireAPIKey rejects requests without a valid key with 401. The resolved
// key is available downstream through GetAPIKeyFromContext.
func (m *Middleware) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret, problem := bearerToken(r.Header.Get("Authorization"))
		if problem != "" {
			unauthorized(w, problem)
			return
		}

		key, err := m.auth.Authenticate(r.Context(), secret)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(SetAPIKeyInContext(r.Context(), key)))
	})
}

// RequireScopes answers 403 unless the key from RequireAPIKey holds every
// one of scopes.
//
//	mux.Handle("POST /api/v1/projects",
//	    mw.RequireAPIKey(mw.RequireScopes([]string{apikey.ScopeWrite}, h)))
func (m *Middleware) RequireScopes(scopes []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := GetAPIKeyFromContext(r.Context())
		switch {
		case key == nil:
			writeError(w, http.StatusForbidden, "API key required")
			return
		case !hasAll(key, scopes):
			writeError(w, http.StatusForbidden, "insufficient scopes")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasAll(key *APIKey, scopes []string) bool {
	for _, s := range scopes {
		if !key.HasScope(s) {
			return false
		}
	}
	return true
}

// SetAPIKeyInContext returns ctx carrying key.
func SetAPIKeyInContext(ctx context.Context, key *APIKey) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

// GetAPIKeyFromContext returns the authenticated key, or nil.
func GetAPIKeyFromContext(ctx context.Context) *APIKey {
	key, _ := ctx.Value(ctxKey{}).(*APIKey)
	return key
}

// OwnerFromContext returns the owner of the authenticated key, or "".
func OwnerFromContext(ctx context.Context) string {
	if key := GetAPIKeyFromContext(ctx); key != nil {
		return key.OwnerID
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}{message, string(errors.ErrCodeUnauthorized)})
}
