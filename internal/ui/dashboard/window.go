package dashboard

import (
	"fmt"

	"studyforest/internal/core/session"
	"studyforest/internal/ui/format"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Controls are the controller operations the dashboard buttons trigger.
type Controls interface {
	StartFocus()
	Pause()
	Resume()
	Stop()
	ClearHistory()
	ClearForest()
}

// Window shows the countdown, the session history and the forest. Its
// methods must run on the Fyne thread.
type Window struct {
	window   fyne.Window
	controls Controls
	snapshot session.Snapshot

	phaseLabel *widget.Label
	clockLabel *widget.Label
	progress   *widget.ProgressBar
	pauseBtn   *widget.Button
	stopBtn    *widget.Button
	reminders  *widget.Label
	ambience   *widget.Label
	history    *widget.List
	forest     *widget.List
	forestHead *widget.Label
}

// New creates the dashboard window, hidden.
func New(app fyne.App, controls Controls) *Window {
	dash := &Window{
		window:     app.NewWindow("Study Forest"),
		controls:   controls,
		phaseLabel: widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		clockLabel: widget.NewLabelWithStyle("00:00:00", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true, Bold: true}),
		progress:   widget.NewProgressBar(),
		reminders:  widget.NewLabel(""),
		ambience:   widget.NewLabel(""),
		forestHead: widget.NewLabel(""),
	}

	startBtn := widget.NewButton("Start focus", controls.StartFocus)
	dash.pauseBtn = widget.NewButton("Pause", dash.togglePause)
	dash.stopBtn = widget.NewButton("Stop", controls.Stop)

	dash.history = widget.NewList(
		func() int { return len(dash.snapshot.History) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, object fyne.CanvasObject) {
			if id < len(dash.snapshot.History) {
				object.(*widget.Label).SetText(format.HistoryLine(dash.snapshot.History[id]))
			}
		},
	)
	dash.forest = widget.NewList(
		func() int { return len(dash.snapshot.Forest) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, object fyne.CanvasObject) {
			plants := dash.snapshot.Forest
			if id < len(plants) {
				// Newest first.
				object.(*widget.Label).SetText(format.PlantLine(plants[len(plants)-1-id]))
			}
		},
	)

	timer := container.NewVBox(
		dash.phaseLabel,
		dash.clockLabel,
		dash.progress,
		container.NewGridWithColumns(3, startBtn, dash.pauseBtn, dash.stopBtn),
		dash.reminders,
		dash.ambience,
	)
	tabs := container.NewAppTabs(
		container.NewTabItem("History", container.NewBorder(nil,
			widget.NewButton("Clear history", controls.ClearHistory), nil, nil, dash.history)),
		container.NewTabItem("Forest", container.NewBorder(dash.forestHead,
			widget.NewButton("Clear forest", controls.ClearForest), nil, nil, dash.forest)),
	)

	dash.window.SetContent(container.NewBorder(timer, nil, nil, nil, tabs))
	dash.window.Resize(fyne.NewSize(420, 560))
	dash.window.SetCloseIntercept(dash.window.Hide)
	return dash
}

// Show displays the dashboard.
func (dash *Window) Show() {
	dash.window.Show()
	dash.window.RequestFocus()
}

// Update renders snapshot.
func (dash *Window) Update(snapshot session.Snapshot) {
	historyChanged := len(snapshot.History) != len(dash.snapshot.History) ||
		(len(snapshot.History) > 0 && snapshot.History[0].ID != dash.snapshot.History[0].ID)
	forestChanged := len(snapshot.Forest) != len(dash.snapshot.Forest)
	dash.snapshot = snapshot

	dash.phaseLabel.SetText(format.PhaseTitle(snapshot.State))
	dash.clockLabel.SetText(snapshot.Clock())
	dash.progress.SetValue(snapshot.Progress)
	if snapshot.State.Paused() {
		dash.pauseBtn.SetText("Resume")
	} else {
		dash.pauseBtn.SetText("Pause")
	}
	if snapshot.State.Active() {
		dash.pauseBtn.Enable()
		dash.stopBtn.Enable()
	} else {
		dash.pauseBtn.Disable()
		dash.stopBtn.Disable()
	}
	dash.reminders.SetText(format.ReminderLine(snapshot))
	dash.forestHead.SetText(fmt.Sprintf("%d plants grown", len(snapshot.Forest)))

	if historyChanged {
		dash.history.Refresh()
	}
	if forestChanged {
		dash.forest.Refresh()
	}
}

// SetAmbience shows the ambience track position, in seconds.
func (dash *Window) SetAmbience(positionSeconds float64, volume int) {
	dash.ambience.SetText(format.AmbienceLine(positionSeconds, volume))
}

func (dash *Window) togglePause() {
	if dash.snapshot.State.Paused() {
		dash.controls.Resume()
		return
	}
	dash.controls.Pause()
}
