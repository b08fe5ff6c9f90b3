package utils

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"
)

var tokens struct {
	sync.RWMutex
	list []string
}

var (
	// ErrInvalidAPIKey signals that the provided bearer token is not known.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrMissingAPIKey signals that a protected route was called without a bearer token.
	ErrMissingAPIKey = errors.New("missing or malformed api key")
)

// LoadTokensFromList replaces the set of accepted inbound bearer tokens.
// An empty list disables inbound authentication.
func LoadTokensFromList(list []string) {
	cleaned := make([]string, 0, len(list))
	for _, t := range list {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	tokens.Lock()
	tokens.list = cleaned
	tokens.Unlock()
}

// AuthEnabled reports whether at least one inbound token is configured.
func AuthEnabled() bool {
	tokens.RLock()
	defer tokens.RUnlock()
	return len(tokens.list) > 0
}

// ValidateToken checks the token against the configured set in constant time.
func ValidateToken(token string) bool {
	tokens.RLock()
	defer tokens.RUnlock()
	ok := false
	for _, t := range tokens.list {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			ok = true
		}
	}
	return ok
}
