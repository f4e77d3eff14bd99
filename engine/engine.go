package engine

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"sync"
	"time"
)

var (
	// ErrNoSurface is returned by New when the surface is missing.
	ErrNoSurface = errors.New("engine: no render surface")
	// ErrDisposed is returned by operations on a disposed engine or scene.
	ErrDisposed = errors.New("engine: disposed")
)

// Options configures an Engine.
type Options struct {
	// Assets resolves relative asset paths such as "assets/models/h2o.glb".
	Assets fs.FS
	// Audio plays sounds. Nil selects a backend that never produces output.
	Audio AudioBackend
	// Logger receives diagnostics. Nil discards them.
	Logger Logger
	// Now is the frame clock. Nil selects time.Now.
	Now func() time.Time
	// HardwareScalingLevel divides the surface size to get the render size.
	// Zero means 1.
	HardwareScalingLevel float32
}

// Engine owns a surface, its frame buffer and the render loop.
type Engine struct {
	surface Surface
	assets  fs.FS
	audio   AudioBackend
	logger  Logger
	now     func() time.Time

	// mu serializes frames and scene mutation.
	mu sync.Mutex

	taskMu sync.Mutex
	tasks  []func()

	renderFns []func()
	scenes    []*Scene
	window    EventTarget

	scaling  float32
	frame    *image.RGBA
	renderer *Renderer

	lastFrame time.Time
	delta     time.Duration
	frames    uint64
	disposed  bool

	// OnResize is notified after every Resize with the new render size.
	OnResize Observable[image.Point]
	// OnEndFrame is notified after each frame that ran the render loop.
	OnEndFrame Observable[uint64]
}

// New creates an engine bound to surface.
func New(surface Surface, opts Options) (*Engine, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	e := &Engine{
		surface:  surface,
		assets:   opts.Assets,
		audio:    opts.Audio,
		logger:   opts.Logger,
		now:      opts.Now,
		scaling:  opts.HardwareScalingLevel,
		renderer: NewRenderer(),
	}
	if e.assets == nil {
		e.assets = emptyFS{}
	}
	if e.audio == nil {
		e.audio = NullAudio{}
	}
	if e.logger == nil {
		e.logger = nopLogger{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.scaling <= 0 {
		e.scaling = 1
	}
	e.Resize()
	return e, nil
}

func (e *Engine) Surface() Surface     { return e.surface }
func (e *Engine) Assets() fs.FS        { return e.assets }
func (e *Engine) Audio() AudioBackend  { return e.audio }
func (e *Engine) Logger() Logger       { return e.logger }
func (e *Engine) Window() *EventTarget { return &e.window }

// Logf writes a formatted "engine: ..." diagnostic line.
func (e *Engine) Logf(format string, args ...any) {
	e.logger.WriteLineString("engine: " + fmt.Sprintf(format, args...))
}

// RenderSize returns the size of the frame buffer.
func (e *Engine) RenderSize() (w, h int) {
	if e.frame == nil {
		return 0, 0
	}
	b := e.frame.Bounds()
	return b.Dx(), b.Dy()
}

// FrameBuffer returns the image scenes render into.
func (e *Engine) FrameBuffer() *image.RGBA { return e.frame }

// SetHardwareScalingLevel sets the ratio of surface pixels per rendered pixel
// and resizes the frame buffer.
func (e *Engine) SetHardwareScalingLevel(level float32) {
	if level <= 0 {
		level = 1
	}
	e.scaling = level
	e.Resize()
}

// HardwareScalingLevel returns the current scaling level.
func (e *Engine) HardwareScalingLevel() float32 { return e.scaling }

// Resize synchronizes the frame buffer with the surface's client size.
// It must run on the frame goroutine or inside Do.
func (e *Engine) Resize() {
	cw, ch := e.surface.ClientSize()
	w := int(math.Ceil(float64(float32(cw) / e.scaling)))
	h := int(math.Ceil(float64(float32(ch) / e.scaling)))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if e.frame == nil || e.frame.Bounds().Dx() != w || e.frame.Bounds().Dy() != h {
		e.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	e.OnResize.Notify(image.Pt(w, h))
}

// RunRenderLoop registers fn to be called once per frame.
func (e *Engine) RunRenderLoop(fn func()) {
	if fn == nil {
		return
	}
	e.renderFns = append(e.renderFns, fn)
}

// StopRenderLoop removes every render loop callback.
func (e *Engine) StopRenderLoop() {
	e.renderFns = nil
}

// RenderLoopCount returns the number of registered render loop callbacks.
func (e *Engine) RenderLoopCount() int { return len(e.renderFns) }

// Post queues fn to run at the start of the next frame. It is safe to call
// from any goroutine.
func (e *Engine) Post(fn func()) {
	e.taskMu.Lock()
	e.tasks = append(e.tasks, fn)
	e.taskMu.Unlock()
}

// Do runs fn with the frame lock held.
func (e *Engine) Do(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// RunPending runs queued tasks without rendering.
func (e *Engine) RunPending() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runTasks()
}

// Frame advances the engine by one frame: surface events are dispatched to
// window listeners, queued tasks run, then every render loop callback runs
// and the frame buffer is presented.
func (e *Engine) Frame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrDisposed
	}

	now := e.now()
	if !e.lastFrame.IsZero() {
		e.delta = now.Sub(e.lastFrame)
	}
	e.lastFrame = now

	e.drainEvents()
	e.runTasks()

	if len(e.renderFns) == 0 {
		return nil
	}
	for _, fn := range e.renderFns {
		fn()
	}
	e.frames++
	e.OnEndFrame.Notify(e.frames)
	return e.surface.Present(e.frame)
}

// DeltaTime is the time between the last two frames.
func (e *Engine) DeltaTime() time.Duration { return e.delta }

// FrameCount is the number of frames that ran the render loop.
func (e *Engine) FrameCount() uint64 { return e.frames }

// Scenes returns the scenes created on e that are not disposed.
func (e *Engine) Scenes() []*Scene { return append([]*Scene(nil), e.scenes...) }

// Dispose disposes every scene and stops the render loop.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.scenes) > 0 {
		e.scenes[len(e.scenes)-1].Dispose()
	}
	e.renderFns = nil
	e.disposed = true
}

func (e *Engine) drainEvents() {
	ch := e.surface.Events()
	if ch == nil {
		return
	}
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			e.window.Dispatch(ev)
		default:
			return
		}
	}
}

func (e *Engine) runTasks() {
	for {
		e.taskMu.Lock()
		tasks := e.tasks
		e.tasks = nil
		e.taskMu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, fn := range tasks {
			fn()
		}
	}
}

func (e *Engine) removeScene(s *Scene) {
	for i, cur := range e.scenes {
		if cur == s {
			e.scenes = append(e.scenes[:i], e.scenes[i+1:]...)
			return
		}
	}
}

type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
