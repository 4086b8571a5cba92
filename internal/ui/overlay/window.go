package overlay

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"studyforest/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity float64
}

// Alpha converts the configured opacity to an 8-bit alpha.
func (config Config) Alpha() uint8 {
	opacity := config.Opacity
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}

// Kind tells which reminder the window is showing.
type Kind int

const (
	KindEye Kind = iota
	KindBreak
)

// Window is the small undecorated reminder window. Its exported methods must
// run on the Fyne thread.
type Window struct {
	window        fyne.Window
	config        Config
	kind          Kind
	visible       bool
	background    *canvas.Rectangle
	titleLabel    *canvas.Text
	messageLabel  *canvas.Text
	cueLabel      *canvas.Text
	timerLabel    *canvas.Text
	dismissButton *widget.Button
	engine        *animation.Engine
	onDismiss     func(Kind)
}

const (
	overlayWidthFraction  = float32(0.22)
	overlayHeightFraction = float32(0.2)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

var (
	textColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	timerColor = color.NRGBA{R: 126, G: 211, B: 146, A: 255}
)

// New creates the reminder window, hidden.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("Study Forest")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	overlay := &Window{
		window:        window,
		config:        config,
		background:    canvas.NewRectangle(color.NRGBA{R: 16, G: 40, B: 28, A: config.Alpha()}),
		titleLabel:    newText("", 20, true),
		messageLabel:  newText("", 14, false),
		cueLabel:      newText("", 17, true),
		timerLabel:    newText("", 16, true),
		dismissButton: widget.NewButton("Dismiss", nil),
	}
	overlay.timerLabel.Color = timerColor
	overlay.dismissButton.OnTapped = func() {
		if overlay.onDismiss != nil {
			overlay.onDismiss(overlay.kind)
		}
	}
	overlay.engine = animation.New(animation.DefaultConfig(), func(cue string) {
		fyne.Do(func() { overlay.setCue(cue) })
	})

	text := container.NewVBox(overlay.titleLabel, overlay.messageLabel, overlay.cueLabel, overlay.timerLabel)
	content := container.NewBorder(nil, container.NewHBox(overlay.dismissButton), nil, nil, container.NewPadded(text))
	window.SetContent(container.NewStack(overlay.background, content))
	return overlay
}

func newText(value string, size float32, bold bool) *canvas.Text {
	text := canvas.NewText(value, textColor)
	text.Alignment = fyne.TextAlignLeading
	text.TextStyle = fyne.TextStyle{Bold: bold}
	text.TextSize = size
	return text
}

// SetOnDismiss sets the handler of the Dismiss button.
func (overlay *Window) SetOnDismiss(handler func(Kind)) {
	overlay.onDismiss = handler
}

// ShowEye shows the eye-strain reminder with its auto-dismiss countdown and
// plays the next exercise of the rotation.
func (overlay *Window) ShowEye(countdown time.Duration) {
	overlay.kind = KindEye
	exercise := overlay.engine.NextExercise()
	overlay.titleLabel.Text = "Rest your eyes"
	overlay.messageLabel.Text = "Follow the cue below"
	overlay.setCountdown(countdown)
	overlay.show()

	overlay.engine.StartExercise(context.Background(), animation.ExerciseSpec{Type: exercise, Duration: countdown})
}

// ShowBreak shows the break reminder. It has no countdown.
func (overlay *Window) ShowBreak(message string) {
	overlay.engine.Stop()
	overlay.kind = KindBreak
	overlay.titleLabel.Text = "Time for a break"
	overlay.messageLabel.Text = message
	overlay.setCue("Stand up, stretch and drink some water")
	overlay.timerLabel.Text = ""
	overlay.timerLabel.Refresh()
	overlay.show()
}

// SetCountdown updates the auto-dismiss countdown of the eye reminder.
func (overlay *Window) SetCountdown(remaining time.Duration) {
	if !overlay.visible || overlay.kind != KindEye {
		return
	}
	overlay.setCountdown(remaining)
}

// Hide closes the window if it shows kind.
func (overlay *Window) Hide(kind Kind) {
	if overlay.kind != kind {
		return
	}
	overlay.HideAll()
}

// HideAll closes the window and stops the cues.
func (overlay *Window) HideAll() {
	overlay.engine.Stop()
	overlay.visible = false
	overlay.window.Hide()
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{R: 16, G: 40, B: 28, A: config.Alpha()}
	canvas.Refresh(overlay.background)
	overlay.applyNativeOpacity(config.Alpha())
}

func (overlay *Window) show() {
	overlay.titleLabel.Refresh()
	overlay.messageLabel.Refresh()
	overlay.visible = true
	overlay.resizeToScreenFraction()
	overlay.window.Show()
	overlay.window.RequestFocus()
	overlay.applyNativeOpacity(overlay.config.Alpha())
}

func (overlay *Window) setCue(cue string) {
	overlay.cueLabel.Text = cue
	overlay.cueLabel.Refresh()
}

func (overlay *Window) setCountdown(remaining time.Duration) {
	overlay.timerLabel.Text = "closes in " + formatCountdown(remaining)
	overlay.timerLabel.Refresh()
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

func formatCountdown(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int((value + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
