package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveMintsUniqueIDs(t *testing.T) {
	r := New()

	id, err := r.Reserve()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, r.ActiveID())

	require.True(t, r.Release(id))

	id2, err := r.Reserve()
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestReserveRejectsWhileActive(t *testing.T) {
	r := New()

	id, err := r.Reserve()
	require.NoError(t, err)

	// A second start is rejected outright even before Bind completes.
	_, err = r.Reserve()
	assert.ErrorIs(t, err, ErrSessionActive)

	r.Bind(id, func() {})
	_, err = r.Reserve()
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestStopClearsSlotBeforeReturningHandle(t *testing.T) {
	r := New()

	id, err := r.Reserve()
	require.NoError(t, err)

	stopped := false
	r.Bind(id, func() { stopped = true })

	stop, err := r.Stop(id)
	require.NoError(t, err)

	// The slot is free before the handle runs: a new session can start
	// while the old one is still tearing down.
	assert.Empty(t, r.ActiveID())
	_, err = r.Reserve()
	assert.NoError(t, err)

	stop()
	assert.True(t, stopped)
}

func TestStopWithNoSession(t *testing.T) {
	r := New()

	// A supplied id that matches nothing is reported by name, even when
	// no session exists at all.
	_, err := r.Stop("session-whatever")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoActiveSession)
	assert.Contains(t, err.Error(), "session-whatever")

	// Only a missing id means "nothing to stop".
	_, err = r.Stop("")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestStopWithMismatchedID(t *testing.T) {
	r := New()

	id, err := r.Reserve()
	require.NoError(t, err)
	r.Bind(id, func() {})

	_, err = r.Stop("session-other")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoActiveSession)
	assert.Contains(t, err.Error(), "session-other")

	// The mismatch must not disturb the live session.
	assert.Equal(t, id, r.ActiveID())
}

func TestStopWithEmptyID(t *testing.T) {
	r := New()

	id, err := r.Reserve()
	require.NoError(t, err)
	r.Bind(id, func() {})

	_, err = r.Stop("")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Equal(t, id, r.ActiveID())
}

func TestReleaseIgnoresStaleID(t *testing.T) {
	r := New()

	id, err := r.Reserve()
	require.NoError(t, err)

	// A stale release (e.g. a late error callback from a session that
	// was already stopped) must not clear a newer reservation.
	assert.False(t, r.Release("session-stale"))
	assert.Equal(t, id, r.ActiveID())

	assert.True(t, r.Release(id))
	assert.False(t, r.Release(id), "second release of the same id is a no-op")
}

func TestStopWithoutBindReturnsNoopHandle(t *testing.T) {
	r := New()

	id, err := r.Reserve()
	require.NoError(t, err)

	stop, err := r.Stop(id)
	require.NoError(t, err)
	require.NotNil(t, stop)
	assert.NotPanics(t, stop)
}
