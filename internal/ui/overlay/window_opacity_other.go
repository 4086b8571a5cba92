//go:build !windows

package overlay

// applyNativeOpacity is a no-op where the canvas background carries the alpha.
func (overlay *Window) applyNativeOpacity(uint8) {}
