package hal

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"xrscene/bindings"
	"xrscene/engine"
)

func TestSurfaceResizeEmitsOncePerChange(t *testing.T) {
	s := newHostSurface("renderCanvas", 64, 48)
	if s.resize(64, 48) {
		t.Fatal("unchanged size reported as resize")
	}
	if !s.resize(80, 60) || !s.resize(100, 60) {
		t.Fatal("size change not reported")
	}
	for _, want := range []int{80, 100} {
		select {
		case e := <-s.Events():
			if e.Type != engine.EventResize || e.Width != want {
				t.Fatalf("event=%+v, want width %d", e, want)
			}
		default:
			t.Fatal("missing resize event")
		}
	}
	select {
	case e := <-s.Events():
		t.Fatalf("unexpected event %+v", e)
	default:
	}
	if w, h := s.ClientSize(); w != 100 || h != 60 {
		t.Fatalf("client size %dx%d", w, h)
	}
}

func TestSurfacePresentSnapshot(t *testing.T) {
	s := newHostSurface("renderCanvas", 4, 4)
	if s.snapshot(nil) != nil {
		t.Fatal("snapshot before first present")
	}
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	frame.SetRGBA(1, 2, color.RGBA{R: 9, A: 255})
	if err := s.Present(frame); err != nil {
		t.Fatal(err)
	}
	frame.SetRGBA(1, 2, color.RGBA{})
	got := s.snapshot(nil)
	if got.RGBAAt(1, 2).R != 9 || s.presented() != 1 {
		t.Fatal("present did not copy the frame")
	}
}

func TestHostSurfaceLookup(t *testing.T) {
	h := newHost(HostConfig{Width: 8, Height: 8, NoAudio: true}, newFixedTime(time.Millisecond))
	if _, err := h.Surface("renderCanvas"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Surface(""); err != nil {
		t.Fatalf("default surface: %v", err)
	}
	if _, err := h.Surface("missing"); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("err=%v", err)
	}
	if _, ok := h.Audio().(engine.NullAudio); !ok {
		t.Fatal("NoAudio did not select the silent backend")
	}
}

func TestFixedTime(t *testing.T) {
	c := newFixedTime(10 * time.Millisecond)
	t0 := c.Now()
	c.step(3)
	if d := c.Now().Sub(t0); d != 30*time.Millisecond {
		t.Fatalf("advanced %v", d)
	}
}

func TestSniffAudio(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want audioFormat
	}{
		{"a.bin", []byte("ID3\x04"), formatMP3},
		{"a.bin", []byte{0xFF, 0xFB, 0x90}, formatMP3},
		{"a.bin", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), formatWAV},
		{"a.bin", []byte("OggS\x00"), formatVorbis},
		{"assets/sounds/test.mp3", []byte{0, 0}, formatMP3},
		{"x.OGG", nil, formatVorbis},
		{"x.txt", []byte("hello"), formatUnknown},
	}
	for _, c := range cases {
		if got := sniffAudio(c.name, c.data); got != c.want {
			t.Fatalf("sniffAudio(%q)=%v, want %v", c.name, got, c.want)
		}
	}
}

func TestGamepadDisconnectReleases(t *testing.T) {
	var g Gamepad
	g.SetConnected(true)
	g.Set(bindings.Grip, true)
	if !g.Button(bindings.Grip) || !g.Connected() {
		t.Fatal("grip not pressed")
	}
	g.SetConnected(false)
	if g.Button(bindings.Grip) {
		t.Fatal("grip still pressed after disconnect")
	}
	if g.Button(bindings.ButtonType(200)) {
		t.Fatal("unknown button pressed")
	}
}

func TestRunHeadlessTicks(t *testing.T) {
	steps := 0
	var clock func() time.Time
	var start time.Time
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		clock = h.Clock()
		start = clock()
		return func() error {
			steps++
			return nil
		}
	}, HeadlessConfig{Hz: 1000, Ticks: 3, StepBudget: 2, Host: HostConfig{NoAudio: true}})
	if err != nil {
		t.Fatal(err)
	}
	if steps != 6 {
		t.Fatalf("steps=%d, want 6", steps)
	}
	if d := clock().Sub(start); d != 6*time.Millisecond {
		t.Fatalf("clock advanced %v", d)
	}
}

func TestRunHeadlessStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error { return boom }
	}, HeadlessConfig{Hz: 1000, Host: HostConfig{NoAudio: true}})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}
