package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func TestTripsAfterMaxFailures(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 3, Cooldown: time.Minute})

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errUpstream })
		assert.ErrorIs(t, err, errUpstream)
	}

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 3, Cooldown: time.Minute})

	require.Error(t, cb.Execute(func() error { return errUpstream }))
	require.Error(t, cb.Execute(func() error { return errUpstream }))
	require.NoError(t, cb.Execute(func() error { return nil }))

	// The two earlier failures no longer count toward the trip threshold.
	require.Error(t, cb.Execute(func() error { return errUpstream }))
	require.Error(t, cb.Execute(func() error { return errUpstream }))
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestProbesAfterCooldown(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errUpstream }))
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)

	time.Sleep(20 * time.Millisecond)

	// One probe is allowed through; success closes the breaker.
	called := false
	require.NoError(t, cb.Execute(func() error { called = true; return nil }))
	assert.True(t, called)
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 1, Cooldown: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errUpstream }))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errUpstream }))
	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)
}

func TestDefaultSettings(t *testing.T) {
	cb := New(Settings{Name: "test"})
	assert.Equal(t, 5, cb.maxFailures)
	assert.Equal(t, 30*time.Second, cb.cooldown)
}
