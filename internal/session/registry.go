// Package session tracks the single active voice session.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ban2lab/longanicore-gateway/internal/metrics"
)

// ErrSessionActive is returned by Reserve while a session is active or
// being started. Starts are rejected outright, never queued.
var ErrSessionActive = errors.New("a voice session is already active; stop the current session before starting a new one")

// ErrNoActiveSession is returned by Stop when no session exists at all.
var ErrNoActiveSession = errors.New("no active voice session to stop")

// Registry holds at most one active session system-wide. The slot is
// reserved synchronously before the streaming collaborator is dialed,
// which closes the race where two concurrent starts could both pass an
// availability check.
type Registry struct {
	mu   sync.Mutex
	id   string
	stop func()
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Reserve claims the session slot and mints a fresh opaque session id.
// The reservation must be completed with Bind or rolled back with
// Release; until then any further Reserve fails with ErrSessionActive.
func (r *Registry) Reserve() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.id != "" {
		return "", ErrSessionActive
	}
	r.id = "session-" + uuid.NewString()
	metrics.ActiveVoiceSessions.Set(1)
	return r.id, nil
}

// Bind attaches the stop handle to a reserved session.
func (r *Registry) Bind(id string, stop func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == id {
		r.stop = stop
	}
}

// Release clears the slot if it still holds id. Used both to roll back
// a failed start and to clear a session the collaborator reported dead.
// It reports whether the slot was actually cleared.
func (r *Registry) Release(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id != id {
		return false
	}
	r.clearLocked()
	return true
}

// Stop validates id against the active session and, on a match, clears
// the slot and returns the session's stop handle. The slot is cleared
// before the caller runs the handle or emits the closed event, so a
// new start cannot collide with a closing session.
//
// The errors are distinct: a missing id is ErrNoActiveSession, while a
// supplied id that matches nothing is reported as not found by name,
// whether or not a session is currently active.
func (r *Registry) Stop(id string) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		return nil, ErrNoActiveSession
	}
	if r.id != id {
		return nil, fmt.Errorf("no active voice session found with ID: %s", id)
	}

	stop := r.stop
	r.clearLocked()
	if stop == nil {
		stop = func() {}
	}
	return stop, nil
}

// ActiveID returns the current session id, or empty when absent.
func (r *Registry) ActiveID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

func (r *Registry) clearLocked() {
	r.id = ""
	r.stop = nil
	metrics.ActiveVoiceSessions.Set(0)
}
