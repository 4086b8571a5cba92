package tui

import (
	"fmt"
	"strings"

	"studyforest/internal/core/session"
	"studyforest/internal/ui/format"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller is the part of the session controller the terminal shell drives.
type Controller interface {
	Snapshot() session.Snapshot
	StartFocus()
	Pause()
	Resume()
	Stop()
	DismissEyeReminder()
	DismissBreakReminder()
	ClearHistory()
}

const (
	progressWidth = 30
	historyRows   = 8
)

type eventMsg session.Event

type eventsClosedMsg struct{}

// Model is the Bubble Tea model of the terminal shell.
type Model struct {
	controller Controller
	events     <-chan session.Event
	snapshot   session.Snapshot
	notice     string
}

// NewModel creates a model that renders controller and follows events.
func NewModel(controller Controller, events <-chan session.Event) Model {
	return Model{
		controller: controller,
		events:     events,
		snapshot:   controller.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan session.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.snapshot = m.controller.Snapshot()
		if notice := noticeFor(session.Event(msg)); notice != "" {
			m.notice = notice
		}
		return m, waitForEvent(m.events)
	case eventsClosedMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		m.controller.StartFocus()
	case "p", " ":
		if m.snapshot.State.Paused() {
			m.controller.Resume()
		} else {
			m.controller.Pause()
		}
	case "x":
		m.controller.Stop()
	case "d":
		m.controller.DismissEyeReminder()
		m.notice = ""
	case "b":
		m.controller.DismissBreakReminder()
		m.notice = ""
	case "c":
		m.controller.ClearHistory()
	default:
		return m, nil
	}
	m.snapshot = m.controller.Snapshot()
	return m, nil
}

func noticeFor(event session.Event) string {
	switch event.Type {
	case session.EventEyeReminder:
		return "Look away from the screen for a moment (d to dismiss)"
	case session.EventBreakReminder:
		return "You have been at it a while, take a break (b to dismiss)"
	case session.EventPhaseComplete:
		if event.Entry != nil {
			return fmt.Sprintf("Finished %s of %s", event.Entry.Phase, event.Entry.DurationLabel)
		}
	case session.EventForestChanged:
		if event.Plant != nil {
			return fmt.Sprintf("A %s was planted in your forest", event.Plant.Species)
		}
	case session.EventIdlePause:
		return "Paused while you were away"
	case session.EventIdleError:
		return event.Message
	}
	return ""
}

func (m Model) View() string {
	snapshot := m.snapshot

	clock := clockStyle
	if snapshot.State.Paused() {
		clock = pausedStyle
	}
	timer := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(format.PhaseTitle(snapshot.State)),
		clock.Render(snapshot.Clock()),
		progressBar(snapshot.Progress, progressWidth),
		mutedStyle.Render(format.ReminderLine(snapshot)),
	)

	var historyLines []string
	for i, entry := range snapshot.History {
		if i == historyRows {
			historyLines = append(historyLines, mutedStyle.Render(fmt.Sprintf("… %d more", len(snapshot.History)-historyRows)))
			break
		}
		historyLines = append(historyLines, format.HistoryLine(entry))
	}
	if len(historyLines) == 0 {
		historyLines = append(historyLines, mutedStyle.Render("No completed phases yet"))
	}

	var forest strings.Builder
	for _, plant := range snapshot.Forest {
		forest.WriteString(format.Glyph(plant.Kind))
	}
	forestLine := fmt.Sprintf("%d plants %s", len(snapshot.Forest), forest.String())

	sections := []string{
		paneStyle.Render(timer),
		paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			append([]string{titleStyle.Render("History")}, historyLines...)...)),
		paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Forest"), forestLine)),
	}
	if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}
	sections = append(sections, mutedStyle.Render("s start · p pause/resume · x stop · d/b dismiss · c clear · q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func progressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	return clockStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}
