package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeFiresInDueOrder(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))
	var fired []string

	fake.Every(2*time.Second, func(time.Time) { fired = append(fired, "slow") })
	fake.Every(time.Second, func(time.Time) { fired = append(fired, "fast") })

	fake.Advance(2 * time.Second)

	require.Equal(t, []string{"fast", "slow", "fast"}, fired)
	require.Equal(t, time.Unix(2, 0), fake.Now())
}

func TestFakeStopCancelsFutureFires(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))
	count := 0
	timer := fake.Every(time.Second, func(time.Time) { count++ })

	fake.Advance(3 * time.Second)
	timer.Stop()
	fake.Advance(3 * time.Second)

	require.Equal(t, 3, count)
	require.Zero(t, fake.Active())
}

func TestFakeTimerArmedInsideCallback(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))
	inner := 0
	var outer Timer
	outer = fake.Every(time.Second, func(time.Time) {
		outer.Stop()
		fake.Every(time.Second, func(time.Time) { inner++ })
	})

	fake.Advance(4 * time.Second)

	require.Equal(t, 3, inner)
	require.Equal(t, 1, fake.Active())
}

func TestFakeSetSkipsWithoutFiring(t *testing.T) {
	fake := NewFake(time.Unix(0, 0))
	count := 0
	fake.Every(time.Second, func(time.Time) { count++ })

	fake.Set(time.Unix(100, 0))
	require.Zero(t, count)

	fake.Advance(time.Second)
	require.Equal(t, 1, count)
}
