package app

import (
	"context"
	"fmt"

	"xrscene/bindings"
	"xrscene/composer"
	"xrscene/engine"
	"xrscene/hal"
	"xrscene/xr"
)

type system struct {
	h     hal.HAL
	eng   *engine.Engine
	comp  *composer.App
	binds bindings.Set

	// exp is set on the frame goroutine once the scene is composed. Its
	// controllers can appear at any time, so they are bound as they show up.
	exp   *xr.DefaultExperience
	bound map[*xr.InputSource]bool

	// scene resolves once the XR scene is composed and rendering.
	scene *engine.Future[*composer.Composition]
}

type Config struct {
	// Canvas is the surface id; empty means "renderCanvas".
	Canvas               string
	HardwareScalingLevel float32
	Composer             composer.Config
	AuthoringData        composer.AuthoringData
}

// New boots the engine on the HAL's surface, starts composing the XR scene
// in the background and returns the per-tick step. The render loop starts
// only once the scene and its XR session are ready.
func New(h hal.HAL, cfg Config) (step func() error, err error) {
	s, err := newSystem(h, cfg)
	if err != nil {
		return nil, err
	}
	return s.step, nil
}

func newSystem(h hal.HAL, cfg Config) (*system, error) {
	if cfg.Canvas == "" {
		cfg.Canvas = composer.DefaultCanvas
	}
	surface, err := h.Surface(cfg.Canvas)
	if err == nil && surface == nil {
		err = engine.ErrNoSurface
	}
	if err != nil {
		h.Logger().WriteLineString("app: engine init: " + err.Error())
		return nil, fmt.Errorf("app: engine init: %w", err)
	}
	eng, err := engine.New(surface, engine.Options{
		Assets:               h.Assets(),
		Audio:                h.Audio(),
		Logger:               h.Logger(),
		Now:                  h.Clock(),
		HardwareScalingLevel: cfg.HardwareScalingLevel,
	})
	if err != nil {
		h.Logger().WriteLineString("app: engine init: " + err.Error())
		return nil, fmt.Errorf("app: engine init: %w", err)
	}

	s := &system{
		h:     h,
		eng:   eng,
		comp:  composer.New(eng, surface, h.XR(), cfg.Composer),
		scene: engine.NewFuture[*composer.Composition](),
	}
	if pad := h.Gamepad(); pad != nil {
		s.bindController("gamepad", pad)
	}

	go s.compose(cfg.Canvas, cfg.AuthoringData)
	return s, nil
}

func (s *system) logf(format string, args ...any) {
	s.h.Logger().WriteLineString("app: " + fmt.Sprintf(format, args...))
}

func (s *system) compose(canvas string, data composer.AuthoringData) {
	c, err := s.comp.CreateXRScene(context.Background(), canvas, data)
	if err != nil {
		s.logf("create scene: %v", err)
		s.scene.Reject(err)
		return
	}
	s.eng.Post(func() {
		s.eng.RunRenderLoop(c.Scene.Render)
		s.eng.Window().AddEventListener(engine.EventResize, func(engine.Event) {
			s.eng.Resize()
		})
		s.exp = c.Experience
		s.logf("render loop started (%s)", c.Scene)
		s.scene.Resolve(c)
	})
}

// bindController ticks grip and thumbstick bindings for c every step.
func (s *system) bindController(label string, c bindings.Controller) {
	if c == nil {
		return
	}
	grip, thumb := bindings.NewGrip(c), bindings.NewThumb(c)
	for _, b := range []*bindings.ButtonBinding{grip, thumb} {
		name := b.Name
		b.ValueChanged.Add(func(v bool) {
			s.logf("%s %s: %v", label, name, v)
		})
	}
	s.binds.Add(grip, thumb)
}

// bindInputSources binds every XR controller not seen before.
func (s *system) bindInputSources() {
	if s.exp == nil {
		return
	}
	for _, src := range s.exp.InputSources() {
		if s.bound[src] {
			continue
		}
		if s.bound == nil {
			s.bound = make(map[*xr.InputSource]bool)
		}
		s.bound[src] = true
		s.bindController(src.Handedness, src)
	}
}

func (s *system) step() (err error) {
	defer s.recoverStep(&err)
	s.bindInputSources()
	s.binds.Update()
	return s.eng.Frame()
}
