package hal

import (
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"xrscene/engine"
	"xrscene/xr"
)

const defaultCanvas = "renderCanvas"

type hostHAL struct {
	logger  *hostLogger
	surface *hostSurface
	assets  fs.FS
	aud     engine.AudioBackend
	t       *hostTime
	pad     *Gamepad
	xr      xr.Runtime
}

// New returns a host HAL implementation with a real-time clock.
func New(cfg HostConfig) HAL {
	return newHost(cfg, newHostTime())
}

func newHost(cfg HostConfig, t *hostTime) *hostHAL {
	logger := &hostLogger{w: os.Stdout}
	if cfg.Canvas == "" {
		cfg.Canvas = defaultCanvas
	}
	dir := cfg.AssetDir
	if dir == "" {
		dir = "."
	}
	h := &hostHAL{
		logger:  logger,
		surface: newHostSurface(cfg.Canvas, cfg.Width, cfg.Height),
		assets:  os.DirFS(dir),
		t:       t,
		pad:     &Gamepad{},
		xr:      newXRRuntime(logger, cfg.XRModes),
	}
	if cfg.NoAudio {
		h.aud = engine.NullAudio{}
	} else {
		h.aud = newHostAudio(logger)
	}
	return h
}

func (h *hostHAL) Logger() Logger             { return h.logger }
func (h *hostHAL) Assets() fs.FS              { return h.assets }
func (h *hostHAL) Audio() engine.AudioBackend { return h.aud }
func (h *hostHAL) Clock() func() time.Time    { return h.t.Now }
func (h *hostHAL) Gamepad() *Gamepad          { return h.pad }
func (h *hostHAL) XR() xr.Runtime             { return h.xr }

func (h *hostHAL) Surface(id string) (engine.Surface, error) {
	if id == "" {
		id = defaultCanvas
	}
	if id != h.surface.id {
		return nil, fmt.Errorf("%w: %q", ErrNoSurface, id)
	}
	return h.surface, nil
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
