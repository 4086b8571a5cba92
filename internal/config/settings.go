package config

import (
	"errors"
	"fmt"
	"time"

	"studyforest/internal/core/model"
)

// ErrInvalid indicates settings that cannot drive the timer.
var ErrInvalid = errors.New("invalid settings")

// Settings defines editable user preferences.
type Settings struct {
	FocusDuration         time.Duration
	BreakDuration         time.Duration
	BreakReminderInterval time.Duration
	EyeReminderInterval   time.Duration
	EyeCountdown          time.Duration
	HistoryLimit          int
	IdlePauseAfter        time.Duration

	DataDir     string
	SyncEnabled bool
	SyncPath    string
	SpaceID     string

	OverlayOpacity float64
}

// DefaultSettings returns default settings for Study Forest.
func DefaultSettings() Settings {
	timer := model.DefaultTimerConfig()
	return Settings{
		FocusDuration:         timer.FocusDuration,
		BreakDuration:         timer.BreakDuration,
		BreakReminderInterval: timer.Reminders.BreakInterval,
		EyeReminderInterval:   timer.Reminders.EyeInterval,
		EyeCountdown:          timer.Reminders.EyeCountdown,
		HistoryLimit:          timer.HistoryLimit,
		OverlayOpacity:        0.85,
	}
}

// Validate checks the durations and limits the controller depends on.
func (settings Settings) Validate() error {
	switch {
	case settings.FocusDuration <= 0:
		return fmt.Errorf("%w: focus duration must be positive", ErrInvalid)
	case settings.BreakDuration <= 0:
		return fmt.Errorf("%w: break duration must be positive", ErrInvalid)
	case settings.BreakReminderInterval <= 0 || settings.EyeReminderInterval <= 0:
		return fmt.Errorf("%w: reminder intervals must be positive", ErrInvalid)
	case settings.EyeCountdown <= 0:
		return fmt.Errorf("%w: eye countdown must be positive", ErrInvalid)
	case settings.HistoryLimit <= 0:
		return fmt.Errorf("%w: history limit must be positive", ErrInvalid)
	case settings.SyncEnabled && settings.SyncPath == "":
		return fmt.Errorf("%w: sync enabled without a sync path", ErrInvalid)
	}
	return nil
}

// TimerConfig converts settings to the controller configuration.
func (settings Settings) TimerConfig() model.TimerConfig {
	config := model.DefaultTimerConfig()
	config.FocusDuration = settings.FocusDuration
	config.BreakDuration = settings.BreakDuration
	config.Reminders = model.ReminderConfig{
		BreakInterval: settings.BreakReminderInterval,
		EyeInterval:   settings.EyeReminderInterval,
		EyeCountdown:  settings.EyeCountdown,
	}
	config.HistoryLimit = settings.HistoryLimit
	config.IdlePauseAfter = settings.IdlePauseAfter
	return config
}
