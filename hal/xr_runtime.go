//go:build !js

package hal

import "xrscene/xr"

func newXRRuntime(l Logger, modes []xr.SessionMode) xr.Runtime {
	l.WriteLineString("hal: xr: emulated runtime")
	return xr.NewEmulator(modes...)
}
