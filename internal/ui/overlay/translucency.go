package overlay

import "fyne.io/fyne/v2/driver"

// exStyleLayered is the extended window style bit that lets the window
// manager blend the reminder window with the desktop behind it.
const exStyleLayered uintptr = 0x00080000

// reminderHWND extracts the Win32 handle of the reminder window from the
// context handed to driver.NativeWindow.RunNative. Other platforms report
// false.
func reminderHWND(context any) (uintptr, bool) {
	switch value := context.(type) {
	case driver.WindowsWindowContext:
		return value.HWND, value.HWND != 0
	case *driver.WindowsWindowContext:
		if value == nil {
			return 0, false
		}
		return value.HWND, value.HWND != 0
	}
	return 0, false
}

// layeredStyle adds the layered bit to an extended style and reports whether
// the window needs its style rewritten.
func layeredStyle(style uintptr) (uintptr, bool) {
	if style&exStyleLayered != 0 {
		return style, false
	}
	return style | exStyleLayered, true
}
