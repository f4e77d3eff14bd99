//go:build js

package hal

import "xrscene/xr"

// newXRRuntime prefers the page's WebXR device and falls back to the
// emulator when navigator.xr is missing.
func newXRRuntime(l Logger, modes []xr.SessionMode) xr.Runtime {
	rt, err := xr.NewBrowserRuntime()
	if err != nil {
		l.WriteLineString("hal: xr: " + err.Error() + ", using emulated runtime")
		return xr.NewEmulator(modes...)
	}
	l.WriteLineString("hal: xr: navigator.xr")
	return rt
}
