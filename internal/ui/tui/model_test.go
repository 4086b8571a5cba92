package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyforest/internal/core/history"
	"studyforest/internal/core/model"
	"studyforest/internal/core/session"
)

type fakeController struct {
	snapshot session.Snapshot
	calls    []string
}

func (controller *fakeController) Snapshot() session.Snapshot { return controller.snapshot }
func (controller *fakeController) StartFocus() {
	controller.calls = append(controller.calls, "start")
	controller.snapshot.State = session.StateFocusRunning
}
func (controller *fakeController) Pause() {
	controller.calls = append(controller.calls, "pause")
	controller.snapshot.State = session.StateFocusPaused
}
func (controller *fakeController) Resume() {
	controller.calls = append(controller.calls, "resume")
	controller.snapshot.State = session.StateFocusRunning
}
func (controller *fakeController) Stop()                 { controller.calls = append(controller.calls, "stop") }
func (controller *fakeController) DismissEyeReminder()   { controller.calls = append(controller.calls, "eye") }
func (controller *fakeController) DismissBreakReminder() { controller.calls = append(controller.calls, "break") }
func (controller *fakeController) ClearHistory()         { controller.calls = append(controller.calls, "clear") }

func press(t *testing.T, m Model, key string) Model {
	t.Helper()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestKeysDriveController(t *testing.T) {
	controller := &fakeController{}
	m := NewModel(controller, nil)

	m = press(t, m, "s")
	m = press(t, m, "p")
	m = press(t, m, "p")
	m = press(t, m, "x")
	m = press(t, m, "d")
	m = press(t, m, "b")
	m = press(t, m, "c")

	require.Equal(t, []string{"start", "pause", "resume", "stop", "eye", "break", "clear"}, controller.calls)
	assert.Equal(t, session.StateFocusRunning, m.snapshot.State)
}

func TestQuitKey(t *testing.T) {
	m := NewModel(&fakeController{}, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEventRefreshesSnapshotAndShowsNotice(t *testing.T) {
	controller := &fakeController{}
	events := make(chan session.Event, 1)
	m := NewModel(controller, events)

	controller.snapshot = session.Snapshot{State: session.StateBreakRunning, Remaining: 5 * time.Minute}
	next, cmd := m.Update(eventMsg{Type: session.EventEyeReminder})
	m = next.(Model)

	require.NotNil(t, cmd)
	assert.Equal(t, session.StateBreakRunning, m.snapshot.State)
	assert.Contains(t, m.View(), "Look away")
	assert.Contains(t, m.View(), "00:05:00")

	close(events)
	assert.Equal(t, eventsClosedMsg{}, cmd())
}

func TestViewListsHistoryAndForest(t *testing.T) {
	controller := &fakeController{snapshot: session.Snapshot{
		History: []history.Entry{{Phase: model.PhaseFocus, StartTimeLabel: "09:00", EndTimeLabel: "11:00", DurationLabel: "2h 0m"}},
		Forest:  []history.Plant{{Kind: history.KindTree, Species: "Oak Tree"}, {Kind: history.KindFlower, Species: "Rose"}},
	}}
	view := NewModel(controller, nil).View()

	assert.Contains(t, view, "Ready to focus")
	assert.Contains(t, view, "09:00-11:00")
	assert.Contains(t, view, "2 plants")
}

func TestNoticeForPhaseComplete(t *testing.T) {
	entry := history.Entry{Phase: model.PhaseFocus, DurationLabel: "25m"}
	assert.Equal(t, "Finished focus of 25m", noticeFor(session.Event{Type: session.EventPhaseComplete, Entry: &entry}))
	assert.Empty(t, noticeFor(session.Event{Type: session.EventProgress}))
}

func TestProgressBarClamps(t *testing.T) {
	assert.NotPanics(t, func() { progressBar(2, 10) })
	assert.NotPanics(t, func() { progressBar(-1, 10) })
}
