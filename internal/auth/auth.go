// Package auth validates credentials presented on inbound gateway
// messages against the durable credential store.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/ban2lab/longanicore-gateway/internal/store"
)

// Authentication method names, reported in the connection log.
const (
	MethodGlobalKey = "Global API Key"
	MethodOriginKey = "Origin-Specific Key"
)

// CredentialSource is the read-side of the credential store the
// validator depends on. Narrowed to an interface so tests can inject
// failing or canned stores.
type CredentialSource interface {
	OriginKey(origin string) (string, error)
	HasGlobalKey(key string) (bool, error)
}

// Result reports an authentication decision.
type Result struct {
	Authenticated bool
	Method        string
}

// Validator checks inbound credentials. It is read-only with respect
// to the store and safe for concurrent use.
type Validator struct {
	creds CredentialSource
}

// NewValidator creates a validator over the given credential source.
func NewValidator(creds CredentialSource) *Validator {
	return &Validator{creds: creds}
}

// Authenticate checks the supplied credentials in strict priority order:
//
//  1. A supplied global key that exists in the global key set.
//  2. A supplied origin key that exactly matches the key registered for
//     the caller's actual connection origin (never a caller-supplied
//     origin value).
//
// A storage read failure is a hard error for the whole attempt, not a
// fall-through to the next method: the caller must log it and abort
// without responding, so a broken store cannot be probed for key
// validity.
func (v *Validator) Authenticate(origin, originKey, globalKey string) (Result, error) {
	if globalKey != "" {
		ok, err := v.creds.HasGlobalKey(globalKey)
		if err != nil {
			return Result{}, fmt.Errorf("global key lookup: %w", err)
		}
		if ok {
			return Result{Authenticated: true, Method: MethodGlobalKey}, nil
		}
	}

	if originKey != "" {
		expected, err := v.creds.OriginKey(origin)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return Result{}, fmt.Errorf("origin key lookup: %w", err)
		}
		if err == nil && expected != "" && secureEqual(originKey, expected) {
			return Result{Authenticated: true, Method: MethodOriginKey}, nil
		}
	}

	return Result{Authenticated: false}, nil
}

// secureEqual compares keys in constant time to prevent timing attacks.
func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
