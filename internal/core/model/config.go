package model

import "time"

// Phase identifies one timed segment of a cycle.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// Valid reports whether phase is a known phase.
func (phase Phase) Valid() bool {
	return phase == PhaseFocus || phase == PhaseBreak
}

// ReminderConfig defines the two periodic reminders.
type ReminderConfig struct {
	BreakInterval time.Duration
	EyeInterval   time.Duration
	EyeCountdown  time.Duration
}

// TimerConfig contains runtime settings for the session controller.
type TimerConfig struct {
	FocusDuration time.Duration
	BreakDuration time.Duration
	TickInterval  time.Duration

	Reminders    ReminderConfig
	HistoryLimit int

	IdlePauseAfter    time.Duration
	IdleCheckInterval time.Duration
}

// DefaultTimerConfig returns the standard two-hour focus, thirty-minute break cadence.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		FocusDuration: 2 * time.Hour,
		BreakDuration: 30 * time.Minute,
		TickInterval:  time.Second,
		Reminders: ReminderConfig{
			BreakInterval: 2 * time.Hour,
			EyeInterval:   30 * time.Minute,
			EyeCountdown:  30 * time.Second,
		},
		HistoryLimit:      20,
		IdleCheckInterval: 5 * time.Second,
	}
}

// DurationFor returns the configured length of phase.
func (config TimerConfig) DurationFor(phase Phase) time.Duration {
	if phase == PhaseBreak {
		return config.BreakDuration
	}
	return config.FocusDuration
}
