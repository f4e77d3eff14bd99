package hal

import (
	"image"
	"sync"

	"xrscene/engine"
)

// hostSurface is the render target of a host window. The engine presents
// into it from the frame goroutine; the window copies it out in Draw.
type hostSurface struct {
	id string

	mu     sync.Mutex
	width  int
	height int
	front  *image.RGBA
	frames uint64

	events chan engine.Event
}

func newHostSurface(id string, width, height int) *hostSurface {
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}
	return &hostSurface{
		id:     id,
		width:  width,
		height: height,
		events: make(chan engine.Event, 256),
	}
}

func (s *hostSurface) ID() string { return s.id }

func (s *hostSurface) ClientSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *hostSurface) Events() <-chan engine.Event { return s.events }

func (s *hostSurface) Present(frame *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.front == nil || s.front.Bounds() != frame.Bounds() {
		s.front = image.NewRGBA(frame.Bounds())
	}
	copy(s.front.Pix, frame.Pix)
	s.frames++
	return nil
}

// resize records a new client size and queues a resize event. It reports
// whether the size changed.
func (s *hostSurface) resize(w, h int) bool {
	s.mu.Lock()
	if w == s.width && h == s.height {
		s.mu.Unlock()
		return false
	}
	s.width, s.height = w, h
	s.mu.Unlock()
	s.emit(engine.Event{Type: engine.EventResize, Width: w, Height: h})
	return true
}

// emit queues e, dropping it when the engine is not keeping up.
func (s *hostSurface) emit(e engine.Event) {
	select {
	case s.events <- e:
	default:
	}
}

// snapshot copies the last presented frame into dst, reallocating it when
// the size changed. It returns nil before the first Present.
func (s *hostSurface) snapshot(dst *image.RGBA) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.front == nil {
		return nil
	}
	if dst == nil || dst.Bounds() != s.front.Bounds() {
		dst = image.NewRGBA(s.front.Bounds())
	}
	copy(dst.Pix, s.front.Pix)
	return dst
}

func (s *hostSurface) presented() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
