//go:build windows

package overlay

import (
	"syscall"

	"fyne.io/fyne/v2/driver"
)

// Index of the extended style slot for Get/SetWindowLongPtrW, as the unsigned
// form of GWL_EXSTYLE (-20).
const exStyleIndex = ^uintptr(19)

const layeredAlphaFlag uintptr = 0x2

var (
	user32            = syscall.NewLazyDLL("user32.dll")
	getWindowLongPtr  = user32.NewProc("GetWindowLongPtrW")
	setWindowLongPtr  = user32.NewProc("SetWindowLongPtrW")
	setLayeredAttribs = user32.NewProc("SetLayeredWindowAttributes")
)

// applyNativeOpacity carries the overlay opacity setting to the whole eye and
// break reminder window. The GL canvas alone cannot show the desktop through
// its text and buttons.
func (overlay *Window) applyNativeOpacity(alpha uint8) {
	native, ok := overlay.window.(driver.NativeWindow)
	if !ok {
		return
	}
	native.RunNative(func(context any) {
		if hwnd, ok := reminderHWND(context); ok {
			setReminderAlpha(hwnd, alpha)
		}
	})
}

func setReminderAlpha(hwnd uintptr, alpha uint8) {
	current, _, _ := getWindowLongPtr.Call(hwnd, exStyleIndex)
	if style, changed := layeredStyle(current); changed {
		setWindowLongPtr.Call(hwnd, exStyleIndex, style)
	}
	setLayeredAttribs.Call(hwnd, 0, uintptr(alpha), layeredAlphaFlag)
}
