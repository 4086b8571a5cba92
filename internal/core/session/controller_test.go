package session

import (
	"errors"
	"fmt"
	mathrand "math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyforest/internal/alert"
	"studyforest/internal/core/clock"
	"studyforest/internal/core/history"
	"studyforest/internal/core/model"
	"studyforest/internal/core/reminder"
	"studyforest/internal/storage"
)

var epoch = time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)

type harness struct {
	fake   *clock.Fake
	store  *storage.Memory
	alerts int
	ids    int
	pushed *recordingReplicator
}

type recordingReplicator struct {
	mu   sync.Mutex
	keys map[string]int
}

func (replicator *recordingReplicator) Push(key string, _ []byte) {
	replicator.mu.Lock()
	defer replicator.mu.Unlock()
	replicator.keys[key]++
}

func (replicator *recordingReplicator) count(key string) int {
	replicator.mu.Lock()
	defer replicator.mu.Unlock()
	return replicator.keys[key]
}

func newHarness() *harness {
	return &harness{
		fake:   clock.NewFake(epoch),
		store:  storage.NewMemory(),
		pushed: &recordingReplicator{keys: make(map[string]int)},
	}
}

func (h *harness) open(t *testing.T, config model.TimerConfig) *Controller {
	t.Helper()
	controller := New(config, Deps{
		Clock:      h.fake,
		Store:      h.store,
		Alerter:    alert.Func(func() { h.alerts++ }),
		Replicator: h.pushed,
		Rand:       mathrand.New(mathrand.NewSource(1)),
		NewID: func(time.Time) string {
			h.ids++
			return fmt.Sprintf("id-%03d", h.ids)
		},
	})
	t.Cleanup(controller.Dispose)
	return controller
}

func TestTicksDecreaseRemainingByExactlyOneSecond(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	controller.StartFocus()

	total := (2 * time.Hour).Milliseconds()
	for i := int64(1); i <= 120; i++ {
		h.fake.Advance(time.Second)
		snapshot := controller.Snapshot()
		require.Equal(t, StateFocusRunning, snapshot.State)
		require.Equal(t, total-i*1000, snapshot.Session.RemainingMs)
		require.GreaterOrEqual(t, snapshot.Session.RemainingMs, int64(0))
	}
}

func TestFocusCompletesIntoBreak(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	controller.StartFocus()

	h.fake.Advance(7200*time.Second - time.Second)
	snapshot := controller.Snapshot()
	require.Equal(t, StateFocusRunning, snapshot.State)
	require.Equal(t, time.Second, snapshot.Remaining)
	require.Empty(t, snapshot.History)

	h.fake.Advance(time.Second)
	snapshot = controller.Snapshot()
	require.Equal(t, StateBreakRunning, snapshot.State)
	require.Equal(t, int64(1800000), snapshot.Session.TotalDurationMs)
	require.Equal(t, int64(1800000), snapshot.Session.RemainingMs)
	require.Len(t, snapshot.History, 1)
	assert.Equal(t, model.PhaseFocus, snapshot.History[0].Phase)
	assert.Equal(t, "2h 0m", snapshot.History[0].DurationLabel)
	assert.Equal(t, clockLabel(epoch), snapshot.History[0].StartTimeLabel)
	assert.Equal(t, clockLabel(epoch.Add(2*time.Hour)), snapshot.History[0].EndTimeLabel)
	require.Len(t, snapshot.Forest, 1)
	assert.Equal(t, snapshot.History[0].ID, snapshot.Forest[0].ID)
}

func TestBreakCompletesToIdle(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	controller.StartFocus()

	h.fake.Advance(2*time.Hour + 30*time.Minute)

	snapshot := controller.Snapshot()
	require.Equal(t, StateIdle, snapshot.State)
	require.Nil(t, snapshot.Session)
	require.Len(t, snapshot.History, 2)
	assert.Equal(t, model.PhaseBreak, snapshot.History[0].Phase)
	assert.Equal(t, "0h 30m", snapshot.History[0].DurationLabel)
	require.Len(t, snapshot.Forest, 1)
	require.Zero(t, h.fake.Active())

	_, ok := storage.LoadDocument[Session](h.store, storage.KeyCurrentSession, nil)
	require.False(t, ok)
}

func TestForestGrowsOnlyForFocusPhases(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())

	for cycle := 0; cycle < 3; cycle++ {
		controller.StartFocus()
		h.fake.Advance(2*time.Hour + 30*time.Minute)
	}
	controller.StartFocus()
	h.fake.Advance(2 * time.Hour)

	snapshot := controller.Snapshot()
	require.Len(t, snapshot.History, 7)
	require.Len(t, snapshot.Forest, 4)
	for _, plant := range snapshot.Forest {
		assert.Contains(t, history.Catalogue, history.Species{Kind: plant.Kind, Name: plant.Species})
	}
}

func TestStopDiscardsUnfinishedPhase(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	controller.StartFocus()

	h.fake.Advance(100 * time.Second)
	controller.Stop()

	snapshot := controller.Snapshot()
	require.Equal(t, StateIdle, snapshot.State)
	require.Empty(t, snapshot.History)
	require.Empty(t, snapshot.Forest)
	require.Zero(t, h.fake.Active())

	h.fake.Advance(3 * time.Hour)
	require.Empty(t, controller.Snapshot().History)
}

func TestPauseThenResumeKeepsRemaining(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	controller.StartFocus()
	h.fake.Advance(10 * time.Second)

	controller.Pause()
	paused := controller.Snapshot()
	require.Equal(t, StateFocusPaused, paused.State)
	require.Zero(t, h.fake.Active())

	controller.Pause()
	h.fake.Advance(time.Hour)
	require.Equal(t, paused.Remaining, controller.Snapshot().Remaining)

	controller.Resume()
	resumed := controller.Snapshot()
	require.Equal(t, StateFocusRunning, resumed.State)
	require.Equal(t, paused.Remaining, resumed.Remaining)
	require.Equal(t, h.fake.Now().UnixMilli()-10000, resumed.Session.StartTimestamp)

	h.fake.Advance(time.Second)
	require.Equal(t, paused.Remaining-time.Second, controller.Snapshot().Remaining)
}

func TestPausedFocusRecordsItsRealStartTime(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	controller.StartFocus()
	h.fake.Advance(30 * time.Minute)
	controller.Pause()
	h.fake.Advance(time.Hour)
	controller.Resume()

	h.fake.Advance(90 * time.Minute)

	snapshot := controller.Snapshot()
	require.Equal(t, StateBreakRunning, snapshot.State)
	require.Len(t, snapshot.History, 1)
	assert.Equal(t, clockLabel(epoch), snapshot.History[0].StartTimeLabel)
	assert.Equal(t, clockLabel(epoch.Add(3*time.Hour)), snapshot.History[0].EndTimeLabel)
	assert.Equal(t, epoch.Add(3*time.Hour).UnixMilli(), snapshot.Session.PhaseStartedAt)
}

func TestReloadPausedSessionKeepsEyeReminderCountdown(t *testing.T) {
	h := newHarness()
	first := h.open(t, model.DefaultTimerConfig())
	first.StartFocus()
	h.fake.Advance(20 * time.Minute)
	first.Pause()
	first.Dispose()

	h.fake.Set(epoch.Add(35 * time.Minute))
	second := h.open(t, model.DefaultTimerConfig())
	require.Equal(t, 10*time.Minute, second.Snapshot().Reminders.EyeNextIn)

	second.Resume()
	h.fake.Advance(10*time.Minute - time.Second)
	require.False(t, second.Snapshot().Reminders.EyeVisible)
	h.fake.Advance(time.Second)
	require.True(t, second.Snapshot().Reminders.EyeVisible)
}

func TestResumeAndPauseWithoutSessionAreNoOps(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())

	controller.Resume()
	controller.Pause()
	controller.Stop()

	require.Equal(t, StateIdle, controller.Snapshot().State)
	require.Zero(t, h.fake.Active())
}

func TestStartFocusReplacesActiveSession(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	controller.StartFocus()
	h.fake.Advance(10 * time.Minute)

	controller.StartFocus()

	snapshot := controller.Snapshot()
	require.Equal(t, StateFocusRunning, snapshot.State)
	require.Equal(t, 2*time.Hour, snapshot.Remaining)
	require.Empty(t, snapshot.History)
	require.Equal(t, 3, h.fake.Active())
}

func TestReloadAfterGapFinalizesFocus(t *testing.T) {
	h := newHarness()
	first := h.open(t, model.DefaultTimerConfig())
	first.StartFocus()
	first.Dispose()

	h.fake.Set(epoch.Add(2*time.Hour + 5*time.Second))
	second := h.open(t, model.DefaultTimerConfig())

	snapshot := second.Snapshot()
	require.Equal(t, StateBreakRunning, snapshot.State)
	require.Len(t, snapshot.History, 1)
	assert.Equal(t, model.PhaseFocus, snapshot.History[0].Phase)
	assert.Equal(t, clockLabel(epoch.Add(2*time.Hour)), snapshot.History[0].EndTimeLabel)
	require.Len(t, snapshot.Forest, 1)
	require.Equal(t, 30*time.Minute-5*time.Second, snapshot.Remaining)
	require.Equal(t, epoch.Add(2*time.Hour).UnixMilli(), snapshot.Session.StartTimestamp)
	require.Equal(t, 1, h.alerts)

	h.fake.Advance(30*time.Minute - 5*time.Second)
	require.Equal(t, StateIdle, second.Snapshot().State)
}

func TestReloadContinuesFromAbsoluteTimestamps(t *testing.T) {
	h := newHarness()
	first := h.open(t, model.DefaultTimerConfig())
	first.StartFocus()
	h.fake.Advance(time.Minute)
	first.Dispose()

	h.fake.Set(epoch.Add(11 * time.Minute))
	second := h.open(t, model.DefaultTimerConfig())

	snapshot := second.Snapshot()
	require.Equal(t, StateFocusRunning, snapshot.State)
	require.Equal(t, 2*time.Hour-11*time.Minute, snapshot.Remaining)
	require.Empty(t, snapshot.History)

	h.fake.Advance(time.Second)
	require.Equal(t, 2*time.Hour-11*time.Minute-time.Second, second.Snapshot().Remaining)
}

func TestReloadAfterWholeCycleEndsIdle(t *testing.T) {
	h := newHarness()
	first := h.open(t, model.DefaultTimerConfig())
	first.StartFocus()
	first.Dispose()

	h.fake.Set(epoch.Add(5 * time.Hour))
	second := h.open(t, model.DefaultTimerConfig())

	snapshot := second.Snapshot()
	require.Equal(t, StateIdle, snapshot.State)
	require.Len(t, snapshot.History, 2)
	assert.Equal(t, clockLabel(epoch.Add(150*time.Minute)), snapshot.History[0].EndTimeLabel)
	require.Len(t, snapshot.Forest, 1)
	require.Zero(t, h.fake.Active())
}

func TestReloadKeepsPausedSession(t *testing.T) {
	h := newHarness()
	first := h.open(t, model.DefaultTimerConfig())
	first.StartFocus()
	h.fake.Advance(30 * time.Second)
	first.Pause()
	first.Dispose()

	h.fake.Set(epoch.Add(6 * time.Hour))
	second := h.open(t, model.DefaultTimerConfig())

	snapshot := second.Snapshot()
	require.Equal(t, StateFocusPaused, snapshot.State)
	require.Equal(t, 2*time.Hour-30*time.Second, snapshot.Remaining)
	require.Zero(t, h.fake.Active())

	second.Resume()
	require.Equal(t, 3, h.fake.Active())
}

func TestCorruptStoreLoadsAsIdle(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.store.Save(storage.KeyCurrentSession, []byte("{not json")))
	require.NoError(t, h.store.Save(storage.KeySessionHistory, []byte(`[{"id":`)))
	require.NoError(t, h.store.Save(storage.KeyForest, []byte(`"oak"`)))
	require.NoError(t, h.store.Save(storage.KeyReminderState, []byte(`[]`)))

	controller := h.open(t, model.DefaultTimerConfig())

	snapshot := controller.Snapshot()
	require.Equal(t, StateIdle, snapshot.State)
	require.Empty(t, snapshot.History)
	require.Empty(t, snapshot.Forest)
	require.Equal(t, reminder.State{}, snapshot.Reminders.State)
}

func TestInvalidSessionLoadsAsIdle(t *testing.T) {
	h := newHarness()
	invalid := Session{Phase: model.PhaseFocus, StartTimestamp: epoch.UnixMilli(), TotalDurationMs: 1000, RemainingMs: 5000}
	require.NoError(t, storage.SaveDocument(h.store, storage.KeyCurrentSession, invalid))

	controller := h.open(t, model.DefaultTimerConfig())
	require.Equal(t, StateIdle, controller.Snapshot().State)
}

type panickingReplicator struct{}

func (panickingReplicator) Push(string, []byte) { panic("peer offline") }

type panickingPlayback struct{}

func (panickingPlayback) Start()  { panic("no widget") }
func (panickingPlayback) Pause()  { panic("no widget") }
func (panickingPlayback) Unload() { panic("no widget") }

func TestCapabilityFailuresDoNotAbortTransitions(t *testing.T) {
	fake := clock.NewFake(epoch)
	controller := New(model.DefaultTimerConfig(), Deps{
		Clock:      fake,
		Store:      storage.NewMemory(),
		Alerter:    alert.Func(func() { panic("speaker missing") }),
		Replicator: panickingReplicator{},
		Playback:   panickingPlayback{},
	})
	defer controller.Dispose()

	require.NotPanics(t, controller.StartFocus)
	require.NotPanics(t, func() { fake.Advance(2 * time.Hour) })

	snapshot := controller.Snapshot()
	require.Equal(t, StateBreakRunning, snapshot.State)
	require.Len(t, snapshot.History, 1)

	require.NotPanics(t, controller.Pause)
	require.Equal(t, StateBreakPaused, controller.Snapshot().State)
}

type failingStore struct{ storage.Store }

func (failingStore) Save(string, []byte) error { return errors.New("disk full") }

func TestStoreWriteFailureKeepsTransition(t *testing.T) {
	fake := clock.NewFake(epoch)
	controller := New(model.DefaultTimerConfig(), Deps{Clock: fake, Store: failingStore{storage.NewMemory()}})
	defer controller.Dispose()

	controller.StartFocus()
	fake.Advance(time.Second)

	require.Equal(t, 2*time.Hour-time.Second, controller.Snapshot().Remaining)
}

func TestEyeReminderDismissalIsClearedByNextFire(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	events := controller.Subscribe(8192)
	controller.StartFocus()

	h.fake.Advance(30 * time.Minute)
	require.True(t, controller.Snapshot().Reminders.EyeVisible)
	require.True(t, drainUntil(events, EventEyeReminder))

	controller.DismissEyeReminder()
	require.True(t, controller.Snapshot().Reminders.State.Dismissed)
	stored, ok := storage.LoadDocument[reminder.State](h.store, storage.KeyReminderState, nil)
	require.True(t, ok)
	require.True(t, stored.Dismissed)

	h.fake.Advance(30 * time.Minute)
	snapshot := controller.Snapshot()
	require.False(t, snapshot.Reminders.State.Dismissed)
	require.Equal(t, h.fake.Now().UnixMilli(), snapshot.Reminders.State.LastFiredAt)
}

func TestBreakReminderSpansPhaseTransition(t *testing.T) {
	h := newHarness()
	config := model.DefaultTimerConfig()
	config.FocusDuration = 90 * time.Minute
	config.BreakDuration = time.Hour
	controller := h.open(t, config)
	events := controller.Subscribe(16384)
	controller.StartFocus()

	h.fake.Advance(2 * time.Hour)

	snapshot := controller.Snapshot()
	require.Equal(t, StateBreakRunning, snapshot.State)
	require.True(t, snapshot.Reminders.BreakVisible)
	require.True(t, drainUntil(events, EventBreakReminder))

	controller.DismissBreakReminder()
	require.False(t, controller.Snapshot().Reminders.BreakVisible)
}

func TestReplicatesHistoryForestAndReminderState(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	controller.StartFocus()
	h.fake.Advance(2 * time.Hour)

	assert.Equal(t, 1, h.pushed.count(storage.KeySessionHistory))
	assert.Equal(t, 1, h.pushed.count(storage.KeyForest))
	assert.Positive(t, h.pushed.count(storage.KeyReminderState))
	assert.Zero(t, h.pushed.count(storage.KeyCurrentSession))

	controller.ClearHistory()
	controller.ClearForest()
	assert.Equal(t, 2, h.pushed.count(storage.KeySessionHistory))
	assert.Empty(t, controller.Snapshot().History)
	assert.Empty(t, controller.Snapshot().Forest)
}

func TestSubscribeReceivesStateChanges(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	events := controller.Subscribe(4)

	controller.StartFocus()

	event := <-events
	require.Equal(t, EventStateChange, event.Type)
	require.Equal(t, StateFocusRunning, event.State)
	require.Equal(t, 2*time.Hour, event.Remaining)
}

func TestDisposeCancelsTimersAndClosesObservers(t *testing.T) {
	h := newHarness()
	controller := h.open(t, model.DefaultTimerConfig())
	events := controller.Subscribe(1)
	controller.StartFocus()

	controller.Dispose()
	controller.Dispose()

	require.Zero(t, h.fake.Active())
	for range events {
	}
	controller.StartFocus()
	require.Zero(t, h.fake.Active())

	_, ok := storage.LoadDocument(h.store, storage.KeyCurrentSession, Session.Validate)
	require.True(t, ok)
}

type stubIdle struct {
	idle time.Duration
	err  error
}

func (stub *stubIdle) IdleDuration() (time.Duration, error) {
	return stub.idle, stub.err
}

func TestIdleCheckerPausesRunningSession(t *testing.T) {
	h := newHarness()
	config := model.DefaultTimerConfig()
	config.IdlePauseAfter = 5 * time.Minute
	controller := h.open(t, config)
	checker := &stubIdle{idle: time.Minute}
	controller.SetIdleChecker(checker)
	controller.StartFocus()

	h.fake.Advance(10 * time.Second)
	require.Equal(t, StateFocusRunning, controller.Snapshot().State)

	checker.idle = 6 * time.Minute
	h.fake.Advance(5 * time.Second)
	require.Equal(t, StateFocusPaused, controller.Snapshot().State)
}

func TestUnsupportedIdleCheckerIsDropped(t *testing.T) {
	h := newHarness()
	config := model.DefaultTimerConfig()
	config.IdlePauseAfter = time.Minute
	controller := h.open(t, config)
	checker := &stubIdle{err: ErrIdleUnsupported}
	controller.SetIdleChecker(checker)
	controller.StartFocus()

	h.fake.Advance(time.Second)
	checker.err = nil
	checker.idle = time.Hour
	h.fake.Advance(time.Minute)

	require.Equal(t, StateFocusRunning, controller.Snapshot().State)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "02:00:00", FormatClock(2*time.Hour))
	assert.Equal(t, "00:29:59", FormatClock(29*time.Minute+59*time.Second+900*time.Millisecond))
	assert.Equal(t, "00:00:00", FormatClock(-time.Second))
}

func clockLabel(at time.Time) string {
	return at.Local().Format("15:04")
}

func drainUntil(events <-chan Event, eventType EventType) bool {
	for {
		select {
		case event := <-events:
			if event.Type == eventType {
				return true
			}
		default:
			return false
		}
	}
}
