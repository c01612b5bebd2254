// Package connlog keeps a bounded, ordered audit trail of gateway
// connection attempts for the owner's observability view.
package connlog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ban2lab/longanicore-gateway/internal/metrics"
)

// MaxEntries bounds the in-memory log; the oldest entries are dropped
// silently once the cap is reached.
const MaxEntries = 100

// Attempt outcomes.
const (
	StatusSuccess = "Success"
	StatusFailure = "Failure"
)

// Entry is one recorded connection attempt.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Origin    string    `json:"origin"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
}

// Log is an append-only, newest-first buffer of connection attempts.
// Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// New creates an empty connection log.
func New() *Log {
	return &Log{}
}

// Append records an attempt. Appending never fails; the gateway treats
// logging and responding as independent actions.
func (l *Log) Append(origin, status, reason string) {
	entry := Entry{
		ID:        "log-" + uuid.NewString(),
		Timestamp: time.Now(),
		Origin:    origin,
		Status:    status,
		Reason:    reason,
	}

	metrics.ConnectionAttemptsTotal.WithLabelValues(status).Inc()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
}

// Entries returns a snapshot of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
