package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"studyforest/internal/config"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	settings    config.Settings
	onSave      func(config.Settings)
	focus       *widget.Entry
	rest        *widget.Entry
	breakEvery  *widget.Entry
	eyeEvery    *widget.Entry
	eyeSeconds  *widget.Entry
	idleMinutes *widget.Entry
	syncCheck   *widget.Check
	syncPath    *widget.Entry
	spaceID     *widget.Entry
	opacity     *widget.Slider
	status      *widget.Label
}

// form holds the raw text of the editable fields.
type form struct {
	focusMinutes string
	breakMinutes string
	breakEvery   string
	eyeEvery     string
	eyeSeconds   string
	idleMinutes  string
	syncEnabled  bool
	syncPath     string
	spaceID      string
	opacity      float64
}

// New creates a preferences window.
func New(app fyne.App, settings config.Settings, onSave func(config.Settings)) *Window {
	window := app.NewWindow("Study Forest Settings")

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		focus:       widget.NewEntry(),
		rest:        widget.NewEntry(),
		breakEvery:  widget.NewEntry(),
		eyeEvery:    widget.NewEntry(),
		eyeSeconds:  widget.NewEntry(),
		idleMinutes: widget.NewEntry(),
		syncCheck:   widget.NewCheck("Share history and forest through a synced folder", nil),
		syncPath:    widget.NewEntry(),
		spaceID:     widget.NewEntry(),
		opacity:     widget.NewSlider(0.5, 1),
		status:      widget.NewLabel(""),
	}
	prefs.opacity.Step = 0.01
	prefs.syncPath.SetPlaceHolder("/path/to/synced/studyforest.db")
	prefs.spaceID.SetPlaceHolder("leave empty to use this device's space")
	prefs.UpdateSettings(settings)

	timer := container.NewVBox(
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Focus for"), prefs.focus, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Break for"), prefs.rest, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Pause when idle for"), prefs.idleMinutes, widget.NewLabel("min (0 = never)")),
	)
	reminders := container.NewVBox(
		widget.NewLabelWithStyle("Reminders", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Break reminder every"), prefs.breakEvery, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Eye reminder every"), prefs.eyeEvery, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Eye reminder closes after"), prefs.eyeSeconds, widget.NewLabel("sec")),
		widget.NewLabel("Reminder opacity"),
		prefs.opacity,
	)
	sync := container.NewVBox(
		widget.NewLabelWithStyle("Sync", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.syncCheck,
		prefs.syncPath,
		prefs.spaceID,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), prefs.status, cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, container.NewVBox(timer, reminders, sync)))
	window.Resize(fyne.NewSize(460, 520))
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings config.Settings) {
	prefs.settings = settings
	prefs.focus.SetText(minutes(settings.FocusDuration))
	prefs.rest.SetText(minutes(settings.BreakDuration))
	prefs.breakEvery.SetText(minutes(settings.BreakReminderInterval))
	prefs.eyeEvery.SetText(minutes(settings.EyeReminderInterval))
	prefs.eyeSeconds.SetText(strconv.Itoa(int(settings.EyeCountdown.Seconds())))
	prefs.idleMinutes.SetText(minutes(settings.IdlePauseAfter))
	prefs.syncCheck.SetChecked(settings.SyncEnabled)
	prefs.syncPath.SetText(settings.SyncPath)
	prefs.spaceID.SetText(settings.SpaceID)
	prefs.opacity.Value = settings.OverlayOpacity
	prefs.opacity.Refresh()
	prefs.status.SetText("")
}

func (prefs *Window) handleSave() {
	settings, err := apply(prefs.settings, form{
		focusMinutes: prefs.focus.Text,
		breakMinutes: prefs.rest.Text,
		breakEvery:   prefs.breakEvery.Text,
		eyeEvery:     prefs.eyeEvery.Text,
		eyeSeconds:   prefs.eyeSeconds.Text,
		idleMinutes:  prefs.idleMinutes.Text,
		syncEnabled:  prefs.syncCheck.Checked,
		syncPath:     prefs.syncPath.Text,
		spaceID:      prefs.spaceID.Text,
		opacity:      prefs.opacity.Value,
	})
	if err != nil {
		prefs.status.SetText(err.Error())
		return
	}

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

// apply copies the parsed form onto settings. Fields that do not parse keep
// their previous value; the result must still validate.
func apply(settings config.Settings, values form) (config.Settings, error) {
	if value, ok := parsePositiveInt(values.focusMinutes); ok {
		settings.FocusDuration = time.Duration(value) * time.Minute
	}
	if value, ok := parsePositiveInt(values.breakMinutes); ok {
		settings.BreakDuration = time.Duration(value) * time.Minute
	}
	if value, ok := parsePositiveInt(values.breakEvery); ok {
		settings.BreakReminderInterval = time.Duration(value) * time.Minute
	}
	if value, ok := parsePositiveInt(values.eyeEvery); ok {
		settings.EyeReminderInterval = time.Duration(value) * time.Minute
	}
	if value, ok := parsePositiveInt(values.eyeSeconds); ok {
		settings.EyeCountdown = time.Duration(value) * time.Second
	}
	if strings.TrimSpace(values.idleMinutes) == "0" {
		settings.IdlePauseAfter = 0
	} else if value, ok := parsePositiveInt(values.idleMinutes); ok {
		settings.IdlePauseAfter = time.Duration(value) * time.Minute
	}

	settings.SyncEnabled = values.syncEnabled
	settings.SyncPath = strings.TrimSpace(values.syncPath)
	settings.SpaceID = strings.TrimSpace(values.spaceID)
	settings.OverlayOpacity = values.opacity

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

func minutes(value time.Duration) string {
	return fmt.Sprintf("%d", int(value.Minutes()))
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
