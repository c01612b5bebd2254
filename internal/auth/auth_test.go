package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ban2lab/longanicore-gateway/internal/store"
)

// fakeCreds is a canned credential source; setting failGlobal or
// failOrigin simulates a storage read failure.
type fakeCreds struct {
	originKeys map[string]string
	globalKeys map[string]bool
	failGlobal bool
	failOrigin bool
}

func (f *fakeCreds) OriginKey(origin string) (string, error) {
	if f.failOrigin {
		return "", errors.New("disk on fire")
	}
	key, ok := f.originKeys[origin]
	if !ok {
		return "", store.ErrNotFound
	}
	return key, nil
}

func (f *fakeCreds) HasGlobalKey(key string) (bool, error) {
	if f.failGlobal {
		return false, errors.New("disk on fire")
	}
	return f.globalKeys[key], nil
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{
		originKeys: map[string]string{"https://x.test": "origin-key-1"},
		globalKeys: map[string]bool{"global-key-1": true},
	}
}

func TestAuthenticateGlobalKeyAnyOrigin(t *testing.T) {
	v := NewValidator(newFakeCreds())

	for _, origin := range []string{"https://x.test", "https://unknown.test", ""} {
		res, err := v.Authenticate(origin, "", "global-key-1")
		require.NoError(t, err)
		assert.True(t, res.Authenticated, "origin %q", origin)
		assert.Equal(t, MethodGlobalKey, res.Method)
	}
}

func TestAuthenticateOriginKey(t *testing.T) {
	v := NewValidator(newFakeCreds())

	res, err := v.Authenticate("https://x.test", "origin-key-1", "")
	require.NoError(t, err)
	assert.True(t, res.Authenticated)
	assert.Equal(t, MethodOriginKey, res.Method)
}

func TestAuthenticateOriginKeyBoundToActualOrigin(t *testing.T) {
	v := NewValidator(newFakeCreds())

	// The right key from the wrong origin must fail: lookup keys on
	// the connection origin, never on anything the caller supplies.
	res, err := v.Authenticate("https://evil.test", "origin-key-1", "")
	require.NoError(t, err)
	assert.False(t, res.Authenticated)
}

func TestAuthenticateMismatchedOriginKey(t *testing.T) {
	v := NewValidator(newFakeCreds())

	res, err := v.Authenticate("https://x.test", "wrong-key", "")
	require.NoError(t, err)
	assert.False(t, res.Authenticated)
}

func TestAuthenticateInvalidGlobalKeyFallsThroughToOrigin(t *testing.T) {
	v := NewValidator(newFakeCreds())

	// Global key is checked first; when it does not match, a valid
	// origin key still authenticates.
	res, err := v.Authenticate("https://x.test", "origin-key-1", "not-a-global-key")
	require.NoError(t, err)
	assert.True(t, res.Authenticated)
	assert.Equal(t, MethodOriginKey, res.Method)
}

func TestAuthenticateGlobalKeyTakesPriority(t *testing.T) {
	v := NewValidator(newFakeCreds())

	res, err := v.Authenticate("https://x.test", "origin-key-1", "global-key-1")
	require.NoError(t, err)
	assert.True(t, res.Authenticated)
	assert.Equal(t, MethodGlobalKey, res.Method)
}

func TestAuthenticateNoCredentials(t *testing.T) {
	v := NewValidator(newFakeCreds())

	res, err := v.Authenticate("https://x.test", "", "")
	require.NoError(t, err)
	assert.False(t, res.Authenticated)
}

func TestAuthenticateStorageFailureIsHardError(t *testing.T) {
	creds := newFakeCreds()
	creds.failGlobal = true
	v := NewValidator(creds)

	// A read failure must not degrade into "invalid credentials" or
	// fall through to the next method.
	_, err := v.Authenticate("https://x.test", "origin-key-1", "global-key-1")
	assert.Error(t, err)

	creds = newFakeCreds()
	creds.failOrigin = true
	v = NewValidator(creds)

	_, err = v.Authenticate("https://x.test", "origin-key-1", "")
	assert.Error(t, err)
}
