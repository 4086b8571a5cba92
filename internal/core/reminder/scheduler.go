package reminder

import (
	"sync"
	"time"

	"studyforest/internal/core/clock"
	"studyforest/internal/core/model"
)

// State is the global eye-reminder record persisted across sessions.
// EyeRemainingMs is set only while the run is suspended.
type State struct {
	LastFiredAt    int64 `json:"lastFiredAt"`
	Dismissed      bool  `json:"dismissed"`
	EyeRemainingMs int64 `json:"eyeRemainingMs,omitempty"`
}

// Status is a read-only view of the scheduler for display.
type Status struct {
	Running      bool
	BreakNextIn  time.Duration
	EyeNextIn    time.Duration
	BreakVisible bool
	EyeVisible   bool
	EyeCountdown time.Duration
	State        State
}

// Callbacks receive reminder notifications. They run with the scheduler's
// locker held and must not call back into the scheduler's owner.
type Callbacks struct {
	OnBreakReminder func(now time.Time)
	OnEyeReminder   func(now time.Time)
	OnEyeClosed     func(now time.Time, auto bool)
	OnStateChange   func(state State)
}

type alarm struct {
	period    time.Duration
	remaining time.Duration
	timer     clock.Timer
}

// Scheduler runs the break reminder and the eye-strain reminder. Each alarm owns
// its own per-second timer so the two stay independent and may coincide.
type Scheduler struct {
	locker    sync.Locker
	clock     clock.Clock
	config    model.ReminderConfig
	step      time.Duration
	callbacks Callbacks

	state        State
	breakAlarm   alarm
	eyeAlarm     alarm
	countdown    clock.Timer
	eyeCountdown time.Duration
	breakVisible bool
	eyeVisible   bool
	started      bool
	running      bool
}

// New creates a scheduler. Timer callbacks acquire locker and exported methods
// expect the caller to already hold it.
func New(config model.ReminderConfig, source clock.Clock, locker sync.Locker, callbacks Callbacks) *Scheduler {
	if locker == nil {
		locker = &sync.Mutex{}
	}
	return &Scheduler{
		locker:    locker,
		clock:     source,
		config:    config,
		step:      time.Second,
		callbacks: callbacks,
		breakAlarm: alarm{
			period:    config.BreakInterval,
			remaining: config.BreakInterval,
		},
		eyeAlarm: alarm{
			period:    config.EyeInterval,
			remaining: config.EyeInterval,
		},
	}
}

// Restore seeds the persisted reminder record without arming anything.
func (scheduler *Scheduler) Restore(state State) {
	scheduler.state = state
}

// State returns the current reminder record.
func (scheduler *Scheduler) State() State {
	return scheduler.state
}

// Start begins a fresh run: both alarms get a full period and the eye reminder
// is anchored at now.
func (scheduler *Scheduler) Start(now time.Time) {
	scheduler.Stop()
	scheduler.breakAlarm.remaining = scheduler.breakAlarm.period
	scheduler.eyeAlarm.remaining = scheduler.eyeAlarm.period
	scheduler.state.LastFiredAt = now.UnixMilli()
	scheduler.state.EyeRemainingMs = 0
	scheduler.started = true
	scheduler.notifyStateLocked()
	scheduler.armLocked()
}

// Recover prepares a run interrupted by a restart. A run saved while suspended
// keeps its frozen eye countdown. Otherwise the eye alarm continues from the
// persisted lastFiredAt when it is within one period of now. The alarms stay
// suspended until Resume.
func (scheduler *Scheduler) Recover(now time.Time) {
	scheduler.Stop()
	scheduler.breakAlarm.remaining = scheduler.breakAlarm.period
	scheduler.eyeAlarm.remaining = scheduler.eyeAlarm.period
	frozen := time.Duration(scheduler.state.EyeRemainingMs) * time.Millisecond
	if frozen > 0 && frozen <= scheduler.eyeAlarm.period {
		scheduler.eyeAlarm.remaining = frozen
	} else if scheduler.state.LastFiredAt > 0 {
		elapsed := now.Sub(time.UnixMilli(scheduler.state.LastFiredAt))
		if elapsed >= 0 && elapsed < scheduler.eyeAlarm.period {
			scheduler.eyeAlarm.remaining = scheduler.eyeAlarm.period - elapsed
		}
	}
	scheduler.started = true
}

// Suspend cancels the timers but keeps the time left until each next fire. The
// eye countdown is written to the record so a restart does not count the
// suspended time against it.
func (scheduler *Scheduler) Suspend() {
	if !scheduler.running {
		return
	}
	scheduler.running = false
	scheduler.cancelLocked()
	scheduler.state.EyeRemainingMs = scheduler.eyeAlarm.remaining.Milliseconds()
	scheduler.notifyStateLocked()
}

// Resume re-arms the timers of a suspended run. lastFiredAt moves forward by
// the suspended time so it again reflects the next eye fire.
func (scheduler *Scheduler) Resume(now time.Time) {
	if !scheduler.started || scheduler.running {
		return
	}
	elapsed := scheduler.eyeAlarm.period - scheduler.eyeAlarm.remaining
	scheduler.state.LastFiredAt = now.Add(-elapsed).UnixMilli()
	scheduler.state.EyeRemainingMs = 0
	scheduler.notifyStateLocked()
	scheduler.armLocked()
}

// Stop ends the run, cancels every timer and hides open notifications.
func (scheduler *Scheduler) Stop() {
	scheduler.cancelLocked()
	scheduler.running = false
	scheduler.started = false
	scheduler.breakVisible = false
	scheduler.eyeVisible = false
	scheduler.eyeCountdown = 0
}

// DismissEye closes the eye notification and marks it dismissed. The next
// periodic fire is unaffected.
func (scheduler *Scheduler) DismissEye(now time.Time) {
	if scheduler.state.Dismissed && !scheduler.eyeVisible {
		return
	}
	wasVisible := scheduler.eyeVisible
	scheduler.closeEyeLocked()
	scheduler.state.Dismissed = true
	scheduler.notifyStateLocked()
	if wasVisible && scheduler.callbacks.OnEyeClosed != nil {
		scheduler.callbacks.OnEyeClosed(now, false)
	}
}

// DismissBreak closes the break notification.
func (scheduler *Scheduler) DismissBreak() {
	scheduler.breakVisible = false
}

// Status reports the countdowns.
func (scheduler *Scheduler) Status() Status {
	return Status{
		Running:      scheduler.running,
		BreakNextIn:  scheduler.breakAlarm.remaining,
		EyeNextIn:    scheduler.eyeAlarm.remaining,
		BreakVisible: scheduler.breakVisible,
		EyeVisible:   scheduler.eyeVisible,
		EyeCountdown: scheduler.eyeCountdown,
		State:        scheduler.state,
	}
}

func (scheduler *Scheduler) armLocked() {
	scheduler.running = true
	scheduler.armAlarmLocked(&scheduler.breakAlarm, scheduler.fireBreakLocked)
	scheduler.armAlarmLocked(&scheduler.eyeAlarm, scheduler.fireEyeLocked)
	if scheduler.eyeVisible && scheduler.eyeCountdown > 0 {
		scheduler.armCountdownLocked()
	}
}

func (scheduler *Scheduler) armAlarmLocked(target *alarm, fire func(time.Time)) {
	if target.timer != nil {
		target.timer.Stop()
	}
	var timer clock.Timer
	timer = scheduler.clock.Every(scheduler.step, func(now time.Time) {
		scheduler.locker.Lock()
		defer scheduler.locker.Unlock()
		if target.timer != timer || !scheduler.running {
			return
		}
		target.remaining -= scheduler.step
		if target.remaining <= 0 {
			target.remaining = target.period
			fire(now)
		}
	})
	target.timer = timer
}

func (scheduler *Scheduler) armCountdownLocked() {
	if scheduler.countdown != nil {
		scheduler.countdown.Stop()
	}
	var timer clock.Timer
	timer = scheduler.clock.Every(scheduler.step, func(now time.Time) {
		scheduler.locker.Lock()
		defer scheduler.locker.Unlock()
		if scheduler.countdown != timer || !scheduler.running {
			return
		}
		scheduler.eyeCountdown -= scheduler.step
		if scheduler.eyeCountdown > 0 {
			return
		}
		scheduler.closeEyeLocked()
		if scheduler.callbacks.OnEyeClosed != nil {
			scheduler.callbacks.OnEyeClosed(now, true)
		}
	})
	scheduler.countdown = timer
}

func (scheduler *Scheduler) fireBreakLocked(now time.Time) {
	scheduler.breakVisible = true
	if scheduler.callbacks.OnBreakReminder != nil {
		scheduler.callbacks.OnBreakReminder(now)
	}
}

func (scheduler *Scheduler) fireEyeLocked(now time.Time) {
	scheduler.state = State{LastFiredAt: now.UnixMilli(), Dismissed: false}
	scheduler.eyeVisible = true
	scheduler.eyeCountdown = scheduler.config.EyeCountdown
	scheduler.armCountdownLocked()
	scheduler.notifyStateLocked()
	if scheduler.callbacks.OnEyeReminder != nil {
		scheduler.callbacks.OnEyeReminder(now)
	}
}

func (scheduler *Scheduler) closeEyeLocked() {
	scheduler.eyeVisible = false
	scheduler.eyeCountdown = 0
	if scheduler.countdown != nil {
		scheduler.countdown.Stop()
		scheduler.countdown = nil
	}
}

func (scheduler *Scheduler) cancelLocked() {
	for _, target := range []*alarm{&scheduler.breakAlarm, &scheduler.eyeAlarm} {
		if target.timer != nil {
			target.timer.Stop()
			target.timer = nil
		}
	}
	if scheduler.countdown != nil {
		scheduler.countdown.Stop()
		scheduler.countdown = nil
	}
}

func (scheduler *Scheduler) notifyStateLocked() {
	if scheduler.callbacks.OnStateChange != nil {
		scheduler.callbacks.OnStateChange(scheduler.state)
	}
}
