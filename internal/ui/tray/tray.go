package tray

import (
	"fmt"
	"log"

	"studyforest/internal/core/session"
	"studyforest/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStartFocus    func()
	OnTogglePause   func()
	OnStop          func()
	OnDismiss       func()
	OnShowDashboard func()
	OnPreferences   func()
	OnQuit          func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	startItem   *fyne.MenuItem
	pauseItem   *fyne.MenuItem
	stopItem    *fyne.MenuItem
	dismissItem *fyne.MenuItem
	callbacks   Callbacks
	state       session.State
	statusLabel string
	icon        string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		state:     session.StateIdle,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true
	manager.startItem = fyne.NewMenuItem("Start focus", run(&manager.callbacks.OnStartFocus))
	manager.pauseItem = fyne.NewMenuItem("Pause", run(&manager.callbacks.OnTogglePause))
	manager.stopItem = fyne.NewMenuItem("Stop", run(&manager.callbacks.OnStop))
	manager.dismissItem = fyne.NewMenuItem("Dismiss reminders", run(&manager.callbacks.OnDismiss))

	manager.SetState(session.StateIdle)
	return manager
}

func run(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}

// SetStatus updates the status label, typically the remaining time.
func (manager *Manager) SetStatus(status string) {
	if manager.statusLabel == status {
		return
	}
	manager.statusLabel = status
	manager.refreshMenu()
}

// SetState switches the menu items and tray icon to match state.
func (manager *Manager) SetState(state session.State) {
	manager.state = state
	manager.startItem.Disabled = false
	manager.pauseItem.Disabled = !state.Active()
	manager.stopItem.Disabled = !state.Active()
	if state.Paused() {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}
	if state.Active() {
		manager.startItem.Label = "Restart focus"
	} else {
		manager.startItem.Label = "Start focus"
	}
	manager.setIcon(iconFor(state))
	manager.refreshMenu()
}

// StatusLine renders the status row for state and label.
func StatusLine(state session.State, label string) string {
	text := describe(state)
	if label != "" && state.Active() {
		text = fmt.Sprintf("%s %s", text, label)
	}
	return "Status: " + text
}

func describe(state session.State) string {
	switch state {
	case session.StateFocusRunning:
		return "focusing"
	case session.StateFocusPaused:
		return "focus paused"
	case session.StateBreakRunning:
		return "on a break"
	case session.StateBreakPaused:
		return "break paused"
	default:
		return "idle"
	}
}

func iconFor(state session.State) string {
	switch {
	case state.Paused():
		return resources.LogoPaused
	case state == session.StateFocusRunning:
		return resources.LogoFocus
	case state == session.StateBreakRunning:
		return resources.LogoBreak
	default:
		return resources.LogoIdle
	}
}

func (manager *Manager) setIcon(name string) {
	if manager.app == nil || manager.icon == name {
		return
	}
	icon, err := resources.Logo(name)
	if err != nil {
		log.Printf("tray icon: %v", err)
		return
	}
	manager.icon = name
	manager.app.SetSystemTrayIcon(icon)
}

func (manager *Manager) refreshMenu() {
	manager.statusItem.Label = StatusLine(manager.state, manager.statusLabel)
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Study Forest",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		manager.pauseItem,
		manager.stopItem,
		manager.dismissItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show forest", run(&manager.callbacks.OnShowDashboard)),
		fyne.NewMenuItem("Preferences", run(&manager.callbacks.OnPreferences)),
		fyne.NewMenuItem("Quit", run(&manager.callbacks.OnQuit)),
	))
}
