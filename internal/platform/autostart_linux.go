//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (autostart *Autostart) enable(execPath string) error {
	path, err := autostart.desktopEntryPath()
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(desktopEntry(autostart.appName, execPath)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

func (autostart *Autostart) disable() error {
	path, err := autostart.desktopEntryPath()
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (autostart *Autostart) enabled() (bool, error) {
	path, err := autostart.desktopEntryPath()
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return fileExists(path)
}

func (autostart *Autostart) desktopEntryPath() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", slug(autostart.appName)+".desktop"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

// desktopEntry launches the desktop shell; the tray lives in that mode.
func desktopEntry(appName, execPath string) string {
	execLine := execPath
	if strings.Contains(execLine, " ") && !strings.HasPrefix(execLine, `"`) {
		execLine = `"` + execLine + `"`
	}
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Focus timer with eye-strain reminders
Exec=%s desktop
X-GNOME-Autostart-enabled=true
Terminal=false
`, appName, execLine)
}
