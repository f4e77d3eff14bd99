package engine

import (
	"image"
	"io"
)

// Surface is the output the engine renders to, the equivalent of a page
// canvas. Hosts implement it.
type Surface interface {
	// ID identifies the surface, e.g. "renderCanvas".
	ID() string
	// ClientSize is the displayed size in pixels.
	ClientSize() (w, h int)
	// Events delivers input and resize events. It may return nil.
	Events() <-chan Event
	// Present receives a finished frame. The image is reused by the
	// engine after Present returns.
	Present(frame *image.RGBA) error
}

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

type nopLogger struct{}

func (nopLogger) WriteLineString(string) {}
func (nopLogger) WriteLineBytes([]byte)  {}

// WriterLogger adapts an io.Writer to Logger.
type WriterLogger struct {
	W io.Writer
}

func (l WriterLogger) WriteLineString(s string) { io.WriteString(l.W, s+"\n") }

func (l WriterLogger) WriteLineBytes(b []byte) {
	l.W.Write(b)
	l.W.Write([]byte{'\n'})
}
