package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"studyforest/internal/config"
)

const (
	settingsFileName = "settings.yaml"
	dataFileName     = "studyforest.db"
)

type yamlSettings struct {
	FocusMinutes         int          `yaml:"focus_minutes"`
	BreakMinutes         int          `yaml:"break_minutes"`
	BreakReminderMinutes int          `yaml:"break_reminder_minutes"`
	EyeReminderMinutes   int          `yaml:"eye_reminder_minutes"`
	EyeCountdownSeconds  int          `yaml:"eye_countdown_seconds"`
	HistoryLimit         int          `yaml:"history_limit"`
	IdlePauseMinutes     int          `yaml:"idle_pause_minutes"`
	DataDir              string       `yaml:"data_dir,omitempty"`
	OverlayOpacity       float64      `yaml:"overlay_opacity"`
	Sync                 yamlSyncPart `yaml:"sync"`
}

type yamlSyncPart struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
	SpaceID string `yaml:"space_id,omitempty"`
}

// LoadSettings reads user preferences from YAML.
// If the settings file does not exist, default settings are returned.
func LoadSettings(appName string) (config.Settings, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return config.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads user preferences from a specific YAML file.
func LoadSettingsFile(configPath string) (config.Settings, error) {
	settings := config.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings config.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes user preferences to a specific YAML file.
func SaveSettingsFile(configPath string, settings config.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		FocusMinutes:         int(settings.FocusDuration / time.Minute),
		BreakMinutes:         int(settings.BreakDuration / time.Minute),
		BreakReminderMinutes: int(settings.BreakReminderInterval / time.Minute),
		EyeReminderMinutes:   int(settings.EyeReminderInterval / time.Minute),
		EyeCountdownSeconds:  int(settings.EyeCountdown / time.Second),
		HistoryLimit:         settings.HistoryLimit,
		IdlePauseMinutes:     int(settings.IdlePauseAfter / time.Minute),
		DataDir:              settings.DataDir,
		OverlayOpacity:       settings.OverlayOpacity,
		Sync: yamlSyncPart{
			Enabled: settings.SyncEnabled,
			Path:    settings.SyncPath,
			SpaceID: settings.SpaceID,
		},
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// DataPath returns the document database location for settings.
func DataPath(appName string, settings config.Settings) (string, error) {
	if settings.DataDir != "" {
		return filepath.Join(settings.DataDir, dataFileName), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, dataFileName), nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *config.Settings, fileData yamlSettings) {
	if fileData.FocusMinutes > 0 {
		settings.FocusDuration = time.Duration(fileData.FocusMinutes) * time.Minute
	}
	if fileData.BreakMinutes > 0 {
		settings.BreakDuration = time.Duration(fileData.BreakMinutes) * time.Minute
	}
	if fileData.BreakReminderMinutes > 0 {
		settings.BreakReminderInterval = time.Duration(fileData.BreakReminderMinutes) * time.Minute
	}
	if fileData.EyeReminderMinutes > 0 {
		settings.EyeReminderInterval = time.Duration(fileData.EyeReminderMinutes) * time.Minute
	}
	if fileData.EyeCountdownSeconds > 0 {
		settings.EyeCountdown = time.Duration(fileData.EyeCountdownSeconds) * time.Second
	}
	if fileData.HistoryLimit > 0 {
		settings.HistoryLimit = fileData.HistoryLimit
	}
	if fileData.IdlePauseMinutes > 0 {
		settings.IdlePauseAfter = time.Duration(fileData.IdlePauseMinutes) * time.Minute
	}
	if fileData.OverlayOpacity >= 0.7 && fileData.OverlayOpacity <= 0.95 {
		settings.OverlayOpacity = fileData.OverlayOpacity
	}

	settings.DataDir = fileData.DataDir
	settings.SyncEnabled = fileData.Sync.Enabled
	settings.SyncPath = fileData.Sync.Path
	settings.SpaceID = fileData.Sync.SpaceID
}
