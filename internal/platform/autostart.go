package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoAppName indicates an autostart entry without a name.
var ErrNoAppName = errors.New("app name is empty")

// Autostart registers the application to launch at login.
type Autostart struct {
	appName string
}

// NewAutostart returns the login-item manager for appName.
func NewAutostart(appName string) *Autostart {
	return &Autostart{appName: strings.TrimSpace(appName)}
}

// Enable registers execPath, replacing any previous entry.
func (autostart *Autostart) Enable(execPath string) error {
	if autostart.appName == "" {
		return fmt.Errorf("enable autostart: %w", ErrNoAppName)
	}
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}
	return autostart.enable(execPath)
}

// Disable removes the entry. Removing a missing entry is not an error.
func (autostart *Autostart) Disable() error {
	if autostart.appName == "" {
		return fmt.Errorf("disable autostart: %w", ErrNoAppName)
	}
	return autostart.disable()
}

// Enabled reports whether an entry is registered.
func (autostart *Autostart) Enabled() (bool, error) {
	if autostart.appName == "" {
		return false, fmt.Errorf("autostart status: %w", ErrNoAppName)
	}
	return autostart.enabled()
}

// ConfigDir returns the OS-standard configuration directory.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}
	return fallbackConfigDir(homeDir), nil
}

func slug(appName string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(appName)), " ", "-")
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
