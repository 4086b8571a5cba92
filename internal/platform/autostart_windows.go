//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (autostart *Autostart) enable(execPath string) error {
	command := fmt.Sprintf(`"%s" desktop`, strings.Trim(execPath, `"`))
	return reg("enable autostart", "add", registryRunKey, "/v", autostart.appName, "/t", "REG_SZ", "/d", command, "/f")
}

func (autostart *Autostart) disable() error {
	enabled, err := autostart.enabled()
	if err != nil || !enabled {
		return err
	}
	return reg("disable autostart", "delete", registryRunKey, "/v", autostart.appName, "/f")
}

func (autostart *Autostart) enabled() (bool, error) {
	err := exec.Command("reg", "query", registryRunKey, "/v", autostart.appName).Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("autostart status: %w", err)
}

func reg(operation string, args ...string) error {
	output, err := exec.Command("reg", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: reg %s failed: %w: %s", operation, args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}
