package app

import (
	"errors"
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"xrscene/engine"
)

// ErrPanic is returned by a step that recovered from a panic.
var ErrPanic = errors.New("app: panic")

// recoverStep turns a panic in the step into ErrPanic, after logging it and
// painting it over the last frame.
func (s *system) recoverStep(err *error) {
	r := recover()
	if r == nil {
		return
	}
	stack := debug.Stack()
	lines := []string{"xrscene panic:", fmt.Sprintf("panic: %v", r)}
	s.logf("panic: %v", r)
	for _, line := range strings.Split(string(stack), "\n") {
		if line == "" {
			continue
		}
		s.h.Logger().WriteLineString(line)
		lines = append(lines, line)
	}
	s.paintPanic(lines)
	*err = fmt.Errorf("%w: %v", ErrPanic, r)
}

func (s *system) paintPanic(lines []string) {
	frame := s.eng.FrameBuffer()
	if frame == nil {
		return
	}
	d := engine.NewImageDisplay(frame)
	maxW, maxH := d.Size()
	d.FillRectangle(0, 0, maxW, maxH, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	font := &proggy.TinySZ8pt7b
	fontHeight, fontOffset := int16(10), int16(6)
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outboxWidth)
	if fontWidth <= 0 {
		return
	}
	cols := maxW / fontWidth
	if cols <= 0 {
		cols = 1
	}

	fg := color.RGBA{A: 255}
	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 && y+fontHeight <= maxH {
			chunk, rest := takeRunes(line, cols)
			drawTextLine(d, font, fontWidth, fontOffset, 0, y, chunk, fg)
			y += fontHeight
			line = strings.TrimLeft(rest, " ")
		}
		if y+fontHeight > maxH {
			break
		}
	}
	_ = s.eng.Surface().Present(frame)
}

func drawTextLine(
	d *engine.ImageDisplay,
	font tinyfont.Fonter,
	fontWidth, fontOffset int16,
	x0, y0 int16,
	s string,
	fg color.RGBA,
) {
	var drawX = x0
	for _, r := range s {
		tinyfont.DrawChar(d, font, drawX, y0+fontOffset, r, fg)
		drawX += fontWidth
	}
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
