package session

import (
	"log"
	mathrand "math/rand"
	"sync"
	"time"

	"studyforest/internal/alert"
	"studyforest/internal/core/clock"
	"studyforest/internal/core/history"
	"studyforest/internal/core/model"
	"studyforest/internal/core/reminder"
	"studyforest/internal/storage"
)

// Replicator mirrors a persisted document to peers. Push must not block.
type Replicator interface {
	Push(key string, value []byte)
}

// Playback is the optional media widget that follows the countdown.
type Playback interface {
	Start()
	Pause()
	Unload()
}

// Deps are the collaborators of a Controller. Nil members fall back to the
// system clock, an in-memory store, and no side channels.
type Deps struct {
	Clock      clock.Clock
	Store      storage.Store
	Alerter    alert.Alerter
	Replicator Replicator
	Playback   Playback
	Rand       *mathrand.Rand
	NewID      func(time.Time) string
}

// Snapshot is a read-only projection of the controller for display.
type Snapshot struct {
	State     State
	Phase     model.Phase
	Remaining time.Duration
	Total     time.Duration
	Progress  float64
	Session   *Session
	Reminders reminder.Status
	History   []history.Entry
	Forest    []history.Plant
}

// Clock renders the remaining time as HH:MM:SS.
func (snapshot Snapshot) Clock() string {
	return FormatClock(snapshot.Remaining)
}

// Controller owns the focus/break cycle, the reminders, the history ledger and
// the forest. All mutations are serialized by one mutex shared with the
// reminder scheduler's timers.
type Controller struct {
	mu         sync.Mutex
	config     model.TimerConfig
	clock      clock.Clock
	store      storage.Store
	alerter    alert.Alerter
	replicator Replicator
	playback   Playback
	newID      func(time.Time) string

	session   *Session
	ledger    *history.Ledger
	forest    *history.Forest
	reminders *reminder.Scheduler
	tick      clock.Timer

	idleChecker   IdleChecker
	lastIdleCheck time.Time
	events        []chan Event
	disposed      bool
}

// New loads persisted state once and reconciles an interrupted session before
// any timer is armed.
func New(config model.TimerConfig, deps Deps) *Controller {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = 5 * time.Second
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Store == nil {
		deps.Store = storage.NewMemory()
	}
	if deps.NewID == nil {
		deps.NewID = history.NewID
	}

	controller := &Controller{
		config:     config,
		clock:      deps.Clock,
		store:      deps.Store,
		alerter:    deps.Alerter,
		replicator: deps.Replicator,
		playback:   deps.Playback,
		newID:      deps.NewID,
	}

	entries, _ := storage.LoadDocument[[]history.Entry](deps.Store, storage.KeySessionHistory, nil)
	plants, _ := storage.LoadDocument[[]history.Plant](deps.Store, storage.KeyForest, nil)
	reminderState, _ := storage.LoadDocument[reminder.State](deps.Store, storage.KeyReminderState, nil)
	current, hasSession := storage.LoadDocument(deps.Store, storage.KeyCurrentSession, Session.Validate)

	controller.ledger = history.NewLedger(config.HistoryLimit, entries)
	controller.forest = history.NewForest(plants, deps.Rand)
	controller.reminders = reminder.New(config.Reminders, deps.Clock, &controller.mu, reminder.Callbacks{
		OnBreakReminder: controller.onBreakReminderLocked,
		OnEyeReminder:   controller.onEyeReminderLocked,
		OnEyeClosed:     controller.onEyeClosedLocked,
		OnStateChange:   controller.onReminderStateLocked,
	})
	controller.reminders.Restore(reminderState)

	controller.mu.Lock()
	defer controller.mu.Unlock()
	if hasSession {
		controller.session = &current
		controller.recoverLocked(controller.clock.Now())
	}
	return controller
}

// Subscribe registers a new observer channel. Slow observers miss events.
func (controller *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.disposed {
		close(ch)
		return ch
	}
	controller.events = append(controller.events, ch)
	return ch
}

// StartFocus begins a new cycle, replacing any active one.
func (controller *Controller) StartFocus() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.disposed {
		return
	}
	now := controller.clock.Now()
	if controller.session != nil {
		controller.stopLocked(now)
	}

	controller.session = newSession(model.PhaseFocus, now, controller.config.FocusDuration)
	controller.lastIdleCheck = time.Time{}
	controller.reminders.Start(now)
	controller.armTickLocked()
	controller.saveSessionLocked()
	controller.guard("playback start", controller.playbackStart)
	controller.emitStateLocked(now)
}

// Pause freezes the countdown and the reminders.
func (controller *Controller) Pause() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.disposed {
		return
	}
	controller.pauseLocked(controller.clock.Now())
}

// Resume continues a paused cycle from the frozen remaining time.
func (controller *Controller) Resume() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.disposed || controller.session == nil || !controller.session.IsPaused {
		return
	}
	now := controller.clock.Now()
	session := controller.session
	session.IsPaused = false
	session.StartTimestamp = now.UnixMilli() - (session.TotalDurationMs - session.RemainingMs)
	controller.lastIdleCheck = time.Time{}
	controller.armTickLocked()
	controller.reminders.Resume(now)
	controller.saveSessionLocked()
	controller.guard("playback start", controller.playbackStart)
	controller.emitStateLocked(now)
}

// Stop ends the cycle without recording the unfinished phase.
func (controller *Controller) Stop() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.disposed {
		return
	}
	controller.stopLocked(controller.clock.Now())
}

// DismissEyeReminder closes the eye-strain notification.
func (controller *Controller) DismissEyeReminder() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.disposed {
		return
	}
	controller.reminders.DismissEye(controller.clock.Now())
}

// DismissBreakReminder closes the break notification.
func (controller *Controller) DismissBreakReminder() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.disposed {
		return
	}
	controller.reminders.DismissBreak()
	controller.emitStateLocked(controller.clock.Now())
}

// ClearHistory empties the history ledger.
func (controller *Controller) ClearHistory() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.disposed {
		return
	}
	controller.ledger.Clear()
	controller.saveLocked(storage.KeySessionHistory, controller.ledger.Entries(), true)
	controller.emitLocked(Event{Type: EventHistoryChanged, State: controller.stateLocked(), At: controller.clock.Now()})
}

// ClearForest removes every plant.
func (controller *Controller) ClearForest() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.disposed {
		return
	}
	controller.forest.Clear()
	controller.saveLocked(storage.KeyForest, controller.forest.Entries(), true)
	controller.emitLocked(Event{Type: EventForestChanged, State: controller.stateLocked(), At: controller.clock.Now()})
}

// Snapshot returns the current state for display.
func (controller *Controller) Snapshot() Snapshot {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	snapshot := Snapshot{
		State:     controller.stateLocked(),
		Reminders: controller.reminders.Status(),
		History:   controller.ledger.Entries(),
		Forest:    controller.forest.Entries(),
	}
	if controller.session != nil {
		current := *controller.session
		snapshot.Session = &current
		snapshot.Phase = current.Phase
		snapshot.Remaining = current.Remaining()
		snapshot.Total = current.Total()
		snapshot.Progress = current.Progress()
	}
	return snapshot
}

// Dispose cancels every timer and closes observers. The persisted session is
// kept so the next process can recover it.
func (controller *Controller) Dispose() {
	controller.mu.Lock()
	if controller.disposed {
		controller.mu.Unlock()
		return
	}
	controller.disposed = true
	controller.cancelTickLocked()
	controller.reminders.Stop()
	controller.guard("playback unload", func() {
		if controller.playback != nil {
			controller.playback.Unload()
		}
	})
	events := controller.events
	controller.events = nil
	controller.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (controller *Controller) pauseLocked(now time.Time) {
	if controller.session == nil || controller.session.IsPaused {
		return
	}
	controller.session.IsPaused = true
	controller.cancelTickLocked()
	controller.reminders.Suspend()
	controller.saveSessionLocked()
	controller.guard("playback pause", func() {
		if controller.playback != nil {
			controller.playback.Pause()
		}
	})
	controller.emitStateLocked(now)
}

func (controller *Controller) stopLocked(now time.Time) {
	controller.cancelTickLocked()
	controller.reminders.Stop()
	if controller.session == nil {
		return
	}
	controller.session = nil
	controller.saveSessionLocked()
	controller.guard("playback pause", func() {
		if controller.playback != nil {
			controller.playback.Pause()
		}
	})
	controller.emitStateLocked(now)
}

// recoverLocked reconciles a persisted session with the wall clock. Phases that
// ended while the process was not running are finalized in order.
func (controller *Controller) recoverLocked(now time.Time) {
	for controller.session != nil {
		session := controller.session
		if session.IsPaused {
			controller.reminders.Recover(now)
			controller.emitStateLocked(now)
			return
		}

		remaining := session.TotalDurationMs - (now.UnixMilli() - session.StartTimestamp)
		if remaining > session.TotalDurationMs {
			remaining = session.TotalDurationMs
		}
		if remaining > 0 {
			session.RemainingMs = remaining
			controller.reminders.Recover(now)
			controller.reminders.Resume(now)
			controller.armTickLocked()
			controller.saveSessionLocked()
			controller.emitStateLocked(now)
			return
		}

		session.RemainingMs = 0
		controller.completePhaseLocked(session.Start().Add(session.Total()))
	}
	controller.reminders.Stop()
	controller.cancelTickLocked()
}

func (controller *Controller) armTickLocked() {
	controller.cancelTickLocked()
	var timer clock.Timer
	timer = controller.clock.Every(controller.config.TickInterval, func(now time.Time) {
		controller.mu.Lock()
		defer controller.mu.Unlock()
		if controller.tick != timer || controller.disposed {
			return
		}
		controller.tickLocked(now)
	})
	controller.tick = timer
}

func (controller *Controller) cancelTickLocked() {
	if controller.tick != nil {
		controller.tick.Stop()
		controller.tick = nil
	}
}

func (controller *Controller) tickLocked(now time.Time) {
	session := controller.session
	if session == nil || session.IsPaused {
		return
	}
	session.RemainingMs -= controller.config.TickInterval.Milliseconds()
	if session.RemainingMs <= 0 {
		session.RemainingMs = 0
		controller.completePhaseLocked(now)
		return
	}
	controller.saveSessionLocked()
	controller.emitLocked(Event{
		Type:      EventProgress,
		State:     session.state(),
		Phase:     session.Phase,
		Remaining: session.Remaining(),
		Progress:  session.Progress(),
		At:        now,
	})
	controller.handleIdleCheckLocked(now)
}

// completePhaseLocked finalizes the current phase as ending at end and moves
// to the next one.
func (controller *Controller) completePhaseLocked(end time.Time) {
	finished := *controller.session
	id := controller.newID(end)
	entry := history.NewEntry(id, finished.Phase, finished.StartedAt(), end.Local(), finished.Total())
	controller.ledger.Record(entry)
	controller.saveLocked(storage.KeySessionHistory, controller.ledger.Entries(), true)

	if finished.Phase == model.PhaseFocus {
		plant := controller.forest.Plant(id, end)
		controller.saveLocked(storage.KeyForest, controller.forest.Entries(), true)
		controller.emitLocked(Event{Type: EventForestChanged, Phase: finished.Phase, Plant: &plant, At: end})
	}
	alert.Play(controller.alerter)

	if finished.Phase == model.PhaseFocus {
		controller.session = newSession(model.PhaseBreak, end, controller.config.BreakDuration)
	} else {
		controller.session = nil
		controller.cancelTickLocked()
		controller.reminders.Stop()
	}
	controller.saveSessionLocked()

	state := controller.stateLocked()
	controller.emitLocked(Event{
		Type:  EventPhaseComplete,
		State: state,
		Phase: finished.Phase,
		Entry: &entry,
		At:    end,
	})
	controller.emitLocked(Event{Type: EventHistoryChanged, State: state, Entry: &entry, At: end})
	controller.emitStateLocked(end)
}

func (controller *Controller) onBreakReminderLocked(now time.Time) {
	alert.Play(controller.alerter)
	controller.emitLocked(Event{
		Type:    EventBreakReminder,
		State:   controller.stateLocked(),
		Message: "Time for a break",
		At:      now,
	})
}

func (controller *Controller) onEyeReminderLocked(now time.Time) {
	alert.Play(controller.alerter)
	controller.emitLocked(Event{
		Type:      EventEyeReminder,
		State:     controller.stateLocked(),
		Remaining: controller.config.Reminders.EyeCountdown,
		Message:   "Look 20 feet away for a moment",
		At:        now,
	})
}

func (controller *Controller) onEyeClosedLocked(now time.Time, auto bool) {
	message := "dismissed"
	if auto {
		message = "auto"
	}
	controller.emitLocked(Event{
		Type:    EventEyeReminderClosed,
		State:   controller.stateLocked(),
		Message: message,
		At:      now,
	})
}

func (controller *Controller) onReminderStateLocked(state reminder.State) {
	controller.saveLocked(storage.KeyReminderState, state, true)
}

func (controller *Controller) stateLocked() State {
	if controller.session == nil {
		return StateIdle
	}
	return controller.session.state()
}

func (controller *Controller) saveSessionLocked() {
	controller.saveLocked(storage.KeyCurrentSession, controller.session, false)
}

// saveLocked writes value under key. Failures are logged; the in-memory
// transition stands.
func (controller *Controller) saveLocked(key string, value any, replicate bool) {
	payload, err := storage.EncodeDocument(value)
	if err != nil {
		log.Printf("save %s: %v", key, err)
		return
	}
	if err := controller.store.Save(key, payload); err != nil {
		log.Printf("save %s: %v", key, err)
	}
	if replicate && controller.replicator != nil {
		controller.guard("replicate "+key, func() {
			controller.replicator.Push(key, payload)
		})
	}
}

func (controller *Controller) playbackStart() {
	if controller.playback != nil {
		controller.playback.Start()
	}
}

func (controller *Controller) guard(name string, fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("%s: %v", name, recovered)
		}
	}()
	fn()
}

func (controller *Controller) emitStateLocked(now time.Time) {
	event := Event{Type: EventStateChange, State: controller.stateLocked(), At: now}
	if controller.session != nil {
		event.Phase = controller.session.Phase
		event.Remaining = controller.session.Remaining()
		event.Progress = controller.session.Progress()
	}
	controller.emitLocked(event)
}

func (controller *Controller) emitLocked(event Event) {
	for _, ch := range controller.events {
		select {
		case ch <- event:
		default:
		}
	}
}
