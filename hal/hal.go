package hal

import (
	"errors"
	"io/fs"
	"time"

	"xrscene/engine"
	"xrscene/xr"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotImplemented = errors.New("not implemented")
	// ErrNoSurface is returned by Surface for an unknown id.
	ErrNoSurface = errors.New("hal: no such surface")
)

// HostConfig describes the host the scene runs on.
type HostConfig struct {
	// Canvas is the surface id; empty means "renderCanvas".
	Canvas string
	// Width and Height are the initial surface size.
	Width, Height int
	// AssetDir is the directory holding the assets/ tree. Empty means the
	// working directory.
	AssetDir string
	// NoAudio replaces the audio device with a silent backend.
	NoAudio bool
	// XRModes lists the session modes the emulated runtime grants.
	XRModes []xr.SessionMode
}

// HAL provides the only contact point between the scene and the outside world.
type HAL interface {
	Logger() Logger
	// Surface returns the render surface with the given id.
	Surface(id string) (engine.Surface, error)
	Assets() fs.FS
	Audio() engine.AudioBackend
	// Clock is the frame clock.
	Clock() func() time.Time
	// Gamepad is the primary controller, released when none is connected.
	Gamepad() *Gamepad
	XR() xr.Runtime
}
