package session

import (
	"errors"
	"fmt"
	"time"

	"studyforest/internal/core/model"
)

// ErrInvalidSession marks a persisted session that breaks its invariants.
var ErrInvalidSession = errors.New("invalid session")

// Session is the active cycle. It is absent while idle. StartTimestamp is
// moved forward on resume so it stays usable for recovery; PhaseStartedAt keeps
// the moment the phase actually began.
type Session struct {
	Phase           model.Phase `json:"phase"`
	StartTimestamp  int64       `json:"startTimestamp"`
	TotalDurationMs int64       `json:"totalDurationMs"`
	RemainingMs     int64       `json:"remainingMs"`
	IsPaused        bool        `json:"isPaused"`
	PhaseStartedAt  int64       `json:"phaseStartedAt,omitempty"`
}

// Validate checks 0 <= remaining <= total and a known phase.
func (session Session) Validate() error {
	if !session.Phase.Valid() {
		return fmt.Errorf("%w: phase %q", ErrInvalidSession, session.Phase)
	}
	if session.TotalDurationMs <= 0 {
		return fmt.Errorf("%w: total %d", ErrInvalidSession, session.TotalDurationMs)
	}
	if session.RemainingMs < 0 || session.RemainingMs > session.TotalDurationMs {
		return fmt.Errorf("%w: remaining %d of %d", ErrInvalidSession, session.RemainingMs, session.TotalDurationMs)
	}
	if session.StartTimestamp <= 0 {
		return fmt.Errorf("%w: start %d", ErrInvalidSession, session.StartTimestamp)
	}
	return nil
}

// Remaining returns the remaining time as a duration.
func (session Session) Remaining() time.Duration {
	return time.Duration(session.RemainingMs) * time.Millisecond
}

// Total returns the phase length as a duration.
func (session Session) Total() time.Duration {
	return time.Duration(session.TotalDurationMs) * time.Millisecond
}

// Start returns the effective start of the phase.
func (session Session) Start() time.Time {
	return time.UnixMilli(session.StartTimestamp)
}

// StartedAt returns when the phase began, ignoring pauses. Records written
// before phaseStartedAt existed fall back to the effective start.
func (session Session) StartedAt() time.Time {
	if session.PhaseStartedAt <= 0 {
		return session.Start()
	}
	return time.UnixMilli(session.PhaseStartedAt)
}

// Progress returns the elapsed fraction of the phase in [0, 1].
func (session Session) Progress() float64 {
	if session.TotalDurationMs <= 0 {
		return 1
	}
	progress := float64(session.TotalDurationMs-session.RemainingMs) / float64(session.TotalDurationMs)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (session Session) state() State {
	switch {
	case session.Phase == model.PhaseFocus && session.IsPaused:
		return StateFocusPaused
	case session.Phase == model.PhaseFocus:
		return StateFocusRunning
	case session.IsPaused:
		return StateBreakPaused
	default:
		return StateBreakRunning
	}
}

func newSession(phase model.Phase, start time.Time, total time.Duration) *Session {
	return &Session{
		Phase:           phase,
		StartTimestamp:  start.UnixMilli(),
		TotalDurationMs: total.Milliseconds(),
		RemainingMs:     total.Milliseconds(),
		PhaseStartedAt:  start.UnixMilli(),
	}
}

// FormatClock renders a countdown as HH:MM:SS.
func FormatClock(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int64(remaining / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
