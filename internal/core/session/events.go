package session

import (
	"time"

	"studyforest/internal/core/history"
	"studyforest/internal/core/model"
)

// State represents the controller's current mode.
type State string

const (
	StateIdle         State = "idle"
	StateFocusRunning State = "focus_running"
	StateFocusPaused  State = "focus_paused"
	StateBreakRunning State = "break_running"
	StateBreakPaused  State = "break_paused"
)

// Active reports whether a cycle is in progress.
func (state State) Active() bool {
	return state != StateIdle && state != ""
}

// Paused reports whether the countdown is frozen.
func (state State) Paused() bool {
	return state == StateFocusPaused || state == StateBreakPaused
}

// EventType defines the type of controller event.
type EventType string

const (
	EventStateChange       EventType = "state_change"
	EventProgress          EventType = "progress"
	EventPhaseComplete     EventType = "phase_complete"
	EventBreakReminder     EventType = "break_reminder"
	EventEyeReminder       EventType = "eye_reminder"
	EventEyeReminderClosed EventType = "eye_reminder_closed"
	EventHistoryChanged    EventType = "history_changed"
	EventForestChanged     EventType = "forest_changed"
	EventIdlePause         EventType = "idle_pause"
	EventIdleError         EventType = "idle_error"
)

// Event represents a controller update for observers.
type Event struct {
	Type      EventType
	State     State
	Phase     model.Phase
	Remaining time.Duration
	Progress  float64
	Entry     *history.Entry
	Plant     *history.Plant
	Message   string
	At        time.Time
}
