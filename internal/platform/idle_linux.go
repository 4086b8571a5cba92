package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"studyforest/internal/core/session"
)

type xprintidleChecker struct {
	path string
}

type unsupportedIdleChecker struct{}

func newIdleChecker() session.IdleChecker {
	if strings.EqualFold(os.Getenv("XDG_SESSION_TYPE"), "wayland") {
		return unsupportedIdleChecker{}
	}
	path, err := exec.LookPath("xprintidle")
	if err != nil {
		return unsupportedIdleChecker{}
	}
	return &xprintidleChecker{path: path}
}

func (checker *xprintidleChecker) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(checker.path).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	return parseIdleMillis(string(output))
}

func (unsupportedIdleChecker) IdleDuration() (time.Duration, error) {
	return 0, session.ErrIdleUnsupported
}

func parseIdleMillis(value string) (time.Duration, error) {
	idleMillis, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}
