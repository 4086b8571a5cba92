package platform

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"studyforest/internal/core/session"
)

var (
	user32           = syscall.NewLazyDLL("user32.dll")
	kernel32         = syscall.NewLazyDLL("kernel32.dll")
	getLastInputInfo = user32.NewProc("GetLastInputInfo")
	getTickCount64   = kernel32.NewProc("GetTickCount64")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

type lastInputChecker struct{}

func newIdleChecker() session.IdleChecker {
	if err := getLastInputInfo.Find(); err != nil {
		return unsupportedIdleChecker{}
	}
	return lastInputChecker{}
}

func (lastInputChecker) IdleDuration() (time.Duration, error) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	result, _, err := getLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if result == 0 {
		return 0, fmt.Errorf("get last input info: %w", err)
	}

	tickResult, _, tickErr := getTickCount64.Call()
	if tickResult == 0 && tickErr != nil {
		return 0, fmt.Errorf("get tick count: %w", tickErr)
	}

	// dwTime wraps every 49.7 days; compare in the same 32-bit space.
	idleMillis := uint32(tickResult) - info.dwTime
	return time.Duration(idleMillis) * time.Millisecond, nil
}

type unsupportedIdleChecker struct{}

func (unsupportedIdleChecker) IdleDuration() (time.Duration, error) {
	return 0, session.ErrIdleUnsupported
}
