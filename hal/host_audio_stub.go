//go:build !cgo && !js

package hal

import "xrscene/engine"

// newHostAudio is silent when the Ebiten audio backend is unavailable.
func newHostAudio(l Logger) engine.AudioBackend {
	l.WriteLineString("hal: audio: requires cgo, sounds are silent")
	return engine.NullAudio{}
}
