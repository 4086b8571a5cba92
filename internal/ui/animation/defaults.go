package animation

import "time"

// DefaultConfig returns calm pacing for a thirty second countdown.
func DefaultConfig() Config {
	return Config{
		IntroDuration: 2 * time.Second,
		HoldDuration: Range{
			Min: 1500 * time.Millisecond,
			Max: 2 * time.Second,
		},
		BlinkHold: Range{
			Min: time.Second,
			Max: 3 * time.Second,
		},
		PauseDuration: Range{
			Min: 500 * time.Millisecond,
			Max: 800 * time.Millisecond,
		},
	}
}
