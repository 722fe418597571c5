package apikey

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SecretPrefix starts every generated secret.
const SecretPrefix = "tp_"

// lookupPrefixLen is how many leading characters of a secret are kept in
// clear text to narrow the bcrypt comparisons on each request. Keys
// without a prefix are compared on every request.
const lookupPrefixLen = 10

// Standard scopes.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// ErrInvalidKey is returned for any secret that does not authenticate.
var ErrInvalidKey = stderrors.New("invalid API key")

// APIKey represents an API key with its metadata.
type APIKey struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name,omitempty"`
	Prefix     string    `json:"prefix,omitempty"`
	Scopes     []string  `json:"scopes"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at,omitempty"`

	hash []byte
}

// HasScope reports whether the key grants scope.
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Authenticator resolves a presented secret to its key.
type Authenticator interface {
	Authenticate(ctx context.Context, secret string) (*APIKey, error)
}

// Registry holds bcrypt hashes of API keys and the owners they belong to.
// It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	keys []*APIKey
	cost int
	now  func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBcryptCost sets the cost used when hashing new secrets.
func WithBcryptCost(cost int) RegistryOption {
	return func(r *Registry) { r.cost = cost }
}

// WithRegistryClock overrides the clock used for timestamps.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		cost: bcrypt.DefaultCost,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register hashes secret and adds it for owner.
func (r *Registry) Register(owner, secret string, scopes ...string) (*APIKey, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}
	if secret == "" {
		return nil, fmt.Errorf("secret is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), r.cost)
	if err != nil {
		return nil, fmt.Errorf("hash API key: %w", err)
	}
	return r.add(owner, hash, LookupPrefix(secret), scopes), nil
}

// AddHashed adds a key whose bcrypt hash was produced elsewhere, such as in
// configuration. prefix is the LookupPrefix of the secret, or "" if unknown.
func (r *Registry) AddHashed(owner, prefix, hash string, scopes ...string) (*APIKey, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}
	if prefix != "" && LookupPrefix(prefix) != prefix {
		return nil, fmt.Errorf("invalid lookup prefix %q for owner %s: want %s followed by %d characters",
			prefix, owner, SecretPrefix, lookupPrefixLen-len(SecretPrefix))
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid bcrypt hash for owner %s: %w", owner, err)
	}
	return r.add(owner, []byte(hash), prefix, scopes), nil
}

func (r *Registry) add(owner string, hash []byte, prefix string, scopes []string) *APIKey {
	if len(scopes) == 0 {
		scopes = []string{ScopeRead, ScopeWrite}
	}
	key := &APIKey{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Prefix:    prefix,
		Scopes:    scopes,
		CreatedAt: r.now(),
		hash:      hash,
	}

	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()

	return key
}

// Authenticate returns a copy of the key matching secret.
func (r *Registry) Authenticate(_ context.Context, secret string) (*APIKey, error) {
	prefix := LookupPrefix(secret)

	// Compare against copies so the slow bcrypt work runs without the lock.
	r.mu.RLock()
	var candidates []APIKey
	for _, k := range r.keys {
		if k.Prefix == "" || k.Prefix == prefix {
			candidates = append(candidates, *k)
		}
	}
	r.mu.RUnlock()

	for _, c := range candidates {
		if bcrypt.CompareHashAndPassword(c.hash, []byte(secret)) != nil {
			continue
		}
		return r.touch(c.ID), nil
	}
	return nil, ErrInvalidKey
}

// touch records a use of the key with id and returns a copy of it.
func (r *Registry) touch(id string) *APIKey {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k.ID == id {
			k.LastUsedAt = now
			out := *k
			return &out
		}
	}
	return nil
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// Generate returns a new random secret carrying SecretPrefix.
func Generate() (string, error) {
	s, err := generateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate API key: %w", err)
	}
	return SecretPrefix + s, nil
}

// HashSecret returns the bcrypt hash to place in configuration for secret.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash API key: %w", err)
	}
	return string(hash), nil
}

// LookupPrefix returns the clear-text prefix stored next to the hash of
// secret, or "" for secrets not produced by Generate.
func LookupPrefix(secret string) string {
	if !strings.HasPrefix(secret, SecretPrefix) || len(secret) < lookupPrefixLen {
		return ""
	}
	return secret[:lookupPrefixLen]
}

// generateRandomString generates a cryptographically secure random string.
func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
