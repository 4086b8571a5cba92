package main

import (
	"errors"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"studyforest/internal/alert"
	"studyforest/internal/config"
	"studyforest/internal/core/session"
	"studyforest/internal/platform"
	"studyforest/internal/playback"
	"studyforest/internal/ui/dashboard"
	"studyforest/internal/ui/overlay"
	"studyforest/internal/ui/preferences"
	"studyforest/internal/ui/tray"
	"studyforest/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const breakReminderMessage = "You have been at the screen for a while."

func runDesktop(c *cli.Context) error {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if activateErr := platform.Activate(appName); activateErr != nil {
				log.Printf("activate running instance: %v", activateErr)
			}
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	return withRuntime(c, func(rt *runtime) error {
		return runShell(rt, guard)
	})
}

// shell wires the controller to the tray, the reminder overlay, the dashboard
// and the preferences window.
type shell struct {
	rt         *runtime
	fyneApp    fyne.App
	controller *session.Controller
	track      *playback.Track
	tray       *tray.Manager
	overlay    *overlay.Window
	dashboard  *dashboard.Window
	prefs      *preferences.Window
}

func runShell(rt *runtime, guard *platform.InstanceGuard) error {
	fyneApp := app.NewWithID("com.studyforest.app")
	fyneApp.SetIcon(resources.MustLogo(resources.LogoIdle))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return cli.Exit("system tray unsupported on this platform; try `studyforest tui`", 1)
	}

	trayWindow := fyneApp.NewWindow("Study Forest")
	trayWindow.SetContent(widget.NewLabel("Study Forest is running in the system tray."))
	trayWindow.SetCloseIntercept(trayWindow.Hide)
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	track := playback.NewTrack(nil, ambienceTrack)
	keeper := playback.NewKeeper(track, rt.store)
	notify := alert.Func(func() {
		fyne.Do(func() {
			fyneApp.SendNotification(fyne.NewNotification("Study Forest", "Time is up"))
		})
	})
	controller := rt.newController(alert.Multi{alert.NewBell(os.Stdout), notify}, keeper)
	if rt.settings.IdlePauseAfter > 0 {
		controller.SetIdleChecker(platform.NewIdleChecker())
	}

	sh := &shell{
		rt:         rt,
		fyneApp:    fyneApp,
		controller: controller,
		track:      track,
		overlay:    overlay.New(fyneApp, overlay.Config{Opacity: rt.settings.OverlayOpacity}),
		dashboard:  dashboard.New(fyneApp, controller),
	}
	sh.prefs = preferences.New(fyneApp, rt.settings, sh.applySettings)
	sh.overlay.SetOnDismiss(sh.dismiss)
	sh.tray = tray.New(desktopApp, tray.Callbacks{
		OnStartFocus:  controller.StartFocus,
		OnTogglePause: sh.togglePause,
		OnStop:        controller.Stop,
		OnDismiss: func() {
			sh.dismiss(overlay.KindEye)
			sh.dismiss(overlay.KindBreak)
		},
		OnShowDashboard: sh.dashboard.Show,
		OnPreferences:   sh.prefs.Show,
		OnQuit:          fyneApp.Quit,
	})

	events := controller.Subscribe(64)
	go sh.follow(events)
	guard.Serve(func() {
		fyne.Do(sh.dashboard.Show)
	})

	snapshot := controller.Snapshot()
	sh.tray.SetState(snapshot.State)
	sh.dashboard.Update(snapshot)
	sh.dashboard.Show()

	fyneApp.Run()
	controller.Dispose()
	return nil
}

func (sh *shell) follow(events <-chan session.Event) {
	for event := range events {
		snapshot := sh.controller.Snapshot()
		position, _ := sh.track.CurrentPositionSeconds()
		volume := sh.track.Volume()
		fyne.Do(func() {
			sh.handle(event, snapshot)
			sh.dashboard.SetAmbience(position, volume)
		})
	}
}

func (sh *shell) handle(event session.Event, snapshot session.Snapshot) {
	switch event.Type {
	case session.EventStateChange:
		sh.tray.SetState(event.State)
		if !event.State.Active() {
			sh.overlay.HideAll()
		}
	case session.EventProgress:
		sh.tray.SetStatus(session.FormatClock(event.Remaining))
		sh.overlay.SetCountdown(snapshot.Reminders.EyeCountdown)
	case session.EventEyeReminder:
		sh.overlay.ShowEye(sh.rt.settings.EyeCountdown)
	case session.EventEyeReminderClosed:
		sh.overlay.Hide(overlay.KindEye)
	case session.EventBreakReminder:
		sh.overlay.ShowBreak(breakReminderMessage)
	case session.EventIdlePause:
		sh.tray.SetState(event.State)
	case session.EventIdleError:
		log.Printf("idle detection: %s", event.Message)
	}
	sh.dashboard.Update(snapshot)
}

func (sh *shell) togglePause() {
	if sh.controller.Snapshot().State.Paused() {
		sh.controller.Resume()
		return
	}
	sh.controller.Pause()
}

func (sh *shell) dismiss(kind overlay.Kind) {
	if kind == overlay.KindEye {
		sh.controller.DismissEyeReminder()
	} else {
		sh.controller.DismissBreakReminder()
	}
	sh.overlay.Hide(kind)
}

// applySettings saves preferences. The overlay picks them up at once; timer
// durations apply from the next launch.
func (sh *shell) applySettings(settings config.Settings) {
	if err := sh.rt.saveSettings(settings); err != nil {
		log.Printf("save settings: %v", err)
		return
	}
	sh.overlay.UpdateConfig(overlay.Config{Opacity: settings.OverlayOpacity})
	sh.fyneApp.SendNotification(fyne.NewNotification("Study Forest", "Settings saved. Timer changes apply after a restart."))
}
