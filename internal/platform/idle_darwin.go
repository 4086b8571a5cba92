package platform

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"studyforest/internal/core/session"
)

var hidIdlePattern = regexp.MustCompile(`"HIDIdleTime" = (\d+)`)

type ioregIdleChecker struct {
	path string
}

func newIdleChecker() session.IdleChecker {
	path, err := exec.LookPath("ioreg")
	if err != nil {
		return unsupportedIdleChecker{}
	}
	return &ioregIdleChecker{path: path}
}

// IdleDuration reads HIDIdleTime, reported in nanoseconds.
func (checker *ioregIdleChecker) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(checker.path, "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		return 0, fmt.Errorf("ioreg: %w", err)
	}
	match := hidIdlePattern.FindSubmatch(output)
	if match == nil {
		return 0, session.ErrIdleUnsupported
	}
	nanos, err := strconv.ParseInt(string(match[1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse HIDIdleTime: %w", err)
	}
	return time.Duration(nanos), nil
}

type unsupportedIdleChecker struct{}

func (unsupportedIdleChecker) IdleDuration() (time.Duration, error) {
	return 0, session.ErrIdleUnsupported
}
