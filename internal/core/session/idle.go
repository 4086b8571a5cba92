package session

import (
	"errors"
	"time"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// SetIdleChecker injects an idle checker. A running session is paused once the
// user has been idle for the configured threshold.
func (controller *Controller) SetIdleChecker(checker IdleChecker) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.idleChecker = checker
	controller.lastIdleCheck = time.Time{}
}

func (controller *Controller) handleIdleCheckLocked(now time.Time) {
	if controller.config.IdlePauseAfter <= 0 || controller.idleChecker == nil {
		return
	}
	if !controller.lastIdleCheck.IsZero() && now.Sub(controller.lastIdleCheck) < controller.config.IdleCheckInterval {
		return
	}
	controller.lastIdleCheck = now

	idleDuration, err := controller.idleChecker.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			controller.idleChecker = nil
		}
		controller.emitLocked(Event{
			Type:    EventIdleError,
			State:   controller.stateLocked(),
			Message: err.Error(),
			At:      now,
		})
		return
	}
	if idleDuration < controller.config.IdlePauseAfter {
		return
	}
	controller.pauseLocked(now)
	controller.emitLocked(Event{
		Type:    EventIdlePause,
		State:   controller.stateLocked(),
		Message: "paused after " + idleDuration.Round(time.Second).String() + " idle",
		At:      now,
	})
}
