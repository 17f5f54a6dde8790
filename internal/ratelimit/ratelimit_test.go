package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(p Policy) (*Limiter, *time.Time) {
	l := New(p)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowWithinWindow(t *testing.T) {
	l, _ := newTestLimiter(Policy{Window: time.Minute, MaxAttempts: 3})

	require.True(t, l.Allow("checkout_attempt"))
	require.True(t, l.Allow("checkout_attempt"))
	require.True(t, l.Allow("checkout_attempt"))
	require.False(t, l.Allow("checkout_attempt"))

	wait := l.TimeUntilReset("checkout_attempt")
	require.Greater(t, wait, time.Duration(0))
	require.LessOrEqual(t, wait, time.Minute)
}

func TestWindowSlides(t *testing.T) {
	l, now := newTestLimiter(Policy{Window: time.Minute, MaxAttempts: 2})

	require.True(t, l.Allow("login_attempt"))
	*now = now.Add(30 * time.Second)
	require.True(t, l.Allow("login_attempt"))
	require.False(t, l.Allow("login_attempt"))

	// the first attempt expires, the second is still inside the window
	*now = now.Add(31 * time.Second)
	require.True(t, l.Allow("login_attempt"))
	require.False(t, l.Allow("login_attempt"))
}

func TestDeniedCallRecordsNothing(t *testing.T) {
	l, now := newTestLimiter(Policy{Window: time.Minute, MaxAttempts: 1})

	require.True(t, l.Allow("k"))
	for i := 0; i < 10; i++ {
		require.False(t, l.Allow("k"))
	}

	*now = now.Add(time.Minute + time.Second)
	require.True(t, l.Allow("k"))
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter(Policy{Window: time.Minute, MaxAttempts: 1})

	require.True(t, l.Allow("login_attempt"))
	require.False(t, l.Allow("login_attempt"))

	l.Reset("login_attempt")
	require.True(t, l.Allow("login_attempt"))
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(Policy{Window: time.Minute, MaxAttempts: 1})

	require.True(t, l.Allow("login_attempt"))
	require.False(t, l.Allow("login_attempt"))
	require.True(t, l.Allow("checkout_attempt"))
}

func TestTimeUntilResetWhenAllowed(t *testing.T) {
	l, now := newTestLimiter(Policy{Window: time.Minute, MaxAttempts: 2})

	require.Equal(t, time.Duration(0), l.TimeUntilReset("k"))
	require.True(t, l.Allow("k"))
	require.Equal(t, time.Duration(0), l.TimeUntilReset("k"))

	require.True(t, l.Allow("k"))
	require.Equal(t, time.Minute, l.TimeUntilReset("k"))

	*now = now.Add(40 * time.Second)
	require.Equal(t, 20*time.Second, l.TimeUntilReset("k"))

	*now = now.Add(21 * time.Second)
	require.Equal(t, time.Duration(0), l.TimeUntilReset("k"))
}

func TestDefaults(t *testing.T) {
	l := New(Policy{})
	require.Equal(t, 5, l.policy.MaxAttempts)
	require.Equal(t, time.Minute, l.policy.Window)
}
