package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AnimationType is the data type an animation interpolates.
type AnimationType uint8

const (
	AnimationTypeFloat AnimationType = iota
	AnimationTypeVector3
)

// LoopMode selects what happens when an animation reaches its last frame.
type LoopMode uint8

const (
	// LoopRelative restarts, offset by the delta between first and last key.
	LoopRelative LoopMode = iota
	// LoopCycle restarts from the first frame.
	LoopCycle
	// LoopConstant holds the last value.
	LoopConstant
)

var ErrUnknownProperty = errors.New("engine: unknown animation property")

// AnimationKey is a keyframe. Float animations use Value.X.
type AnimationKey struct {
	Frame float32
	Value Vec3
}

// Animation interpolates one property of a mesh between keyframes.
//
// FrameRate is in frames per second and may be negative, which plays the
// keys backwards.
type Animation struct {
	Name      string
	Property  string // "rotation", "position", "scaling" or a component such as "rotation.y"
	FrameRate float32
	Type      AnimationType
	LoopMode  LoopMode

	keys []AnimationKey
}

func NewAnimation(name, property string, frameRate float32, typ AnimationType, loop LoopMode) *Animation {
	return &Animation{Name: name, Property: property, FrameRate: frameRate, Type: typ, LoopMode: loop}
}

// SetKeys replaces the keyframes. They are kept sorted by frame.
func (a *Animation) SetKeys(keys []AnimationKey) {
	a.keys = append(a.keys[:0], keys...)
	sort.SliceStable(a.keys, func(i, j int) bool { return a.keys[i].Frame < a.keys[j].Frame })
}

// Keys returns a copy of the keyframes.
func (a *Animation) Keys() []AnimationKey { return append([]AnimationKey(nil), a.keys...) }

// ValueAt interpolates the keys linearly at frame, clamping outside them.
func (a *Animation) ValueAt(frame float32) Vec3 {
	n := len(a.keys)
	switch {
	case n == 0:
		return Vec3{}
	case frame <= a.keys[0].Frame:
		return a.keys[0].Value
	case frame >= a.keys[n-1].Frame:
		return a.keys[n-1].Value
	}
	i := sort.Search(n, func(i int) bool { return a.keys[i].Frame >= frame })
	k0, k1 := a.keys[i-1], a.keys[i]
	span := k1.Frame - k0.Frame
	if span == 0 {
		return k1.Value
	}
	return Lerp(k0.Value, k1.Value, (frame-k0.Frame)/span)
}

func (a *Animation) apply(m *Mesh, v Vec3) error {
	base, comp, _ := strings.Cut(a.Property, ".")
	if a.Type == AnimationTypeVector3 && comp == "" {
		if !m.SetProperty(base, v) {
			return fmt.Errorf("%w: %q", ErrUnknownProperty, a.Property)
		}
		return nil
	}
	cur, ok := m.Property(base)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, a.Property)
	}
	switch comp {
	case "x":
		cur.X = v.X
	case "y":
		cur.Y = v.X
	case "z":
		cur.Z = v.X
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProperty, a.Property)
	}
	m.SetProperty(base, cur)
	return nil
}

// Animatable is a running set of animations on one target.
type Animatable struct {
	Target *Mesh

	from, to float32
	loop     bool
	running  []*runningAnimation
	stopped  bool

	// OnEnd is notified once when a non-looping animatable finishes or the
	// animatable is stopped.
	OnEnd Observable[*Animatable]
}

type runningAnimation struct {
	anim   *Animation
	frame  float32
	cycles int
	done   bool
}

// BeginAnimation plays target.Animations over frames from..to. With loop
// set the animations repeat according to their LoopMode.
func (s *Scene) BeginAnimation(target *Mesh, from, to float32, loop bool) *Animatable {
	a := &Animatable{Target: target, from: from, to: to, loop: loop}
	if target == nil {
		a.stopped = true
		return a
	}
	for _, anim := range target.Animations {
		r := &runningAnimation{anim: anim, frame: from}
		if anim.FrameRate < 0 {
			r.frame = to
		}
		a.running = append(a.running, r)
		a.applyOne(r)
	}
	s.animatables = append(s.animatables, a)
	return a
}

// Frame returns the current frame of the first animation.
func (a *Animatable) Frame() float32 {
	if len(a.running) == 0 {
		return a.from
	}
	return a.running[0].frame
}

// IsRunning reports whether the animatable still advances.
func (a *Animatable) IsRunning() bool { return !a.stopped }

// Stop halts every animation, leaving the target at its current values.
func (a *Animatable) Stop() {
	if a.stopped {
		return
	}
	a.stopped = true
	a.OnEnd.Notify(a)
}

// advance moves every animation dt seconds forward.
func (a *Animatable) advance(dt float32) {
	if a.stopped {
		return
	}
	span := a.to - a.from
	finished := true
	for _, r := range a.running {
		if r.done {
			continue
		}
		r.frame += r.anim.FrameRate * dt
		loop := a.loop && r.anim.LoopMode != LoopConstant && span > 0
		switch {
		case r.frame > a.to:
			if loop {
				for r.frame > a.to {
					r.frame -= span
					r.cycles++
				}
			} else {
				r.frame = a.to
				r.done = true
			}
		case r.frame < a.from:
			if loop {
				for r.frame < a.from {
					r.frame += span
					r.cycles--
				}
			} else {
				r.frame = a.from
				r.done = true
			}
		}
		a.applyOne(r)
		if !r.done {
			finished = false
		}
	}
	if finished {
		a.Stop()
	}
}

func (a *Animatable) applyOne(r *runningAnimation) {
	v := r.anim.ValueAt(r.frame)
	if r.anim.LoopMode == LoopRelative && r.cycles != 0 && len(r.anim.keys) > 1 {
		delta := r.anim.ValueAt(a.to).Sub(r.anim.ValueAt(a.from))
		v = v.Add(delta.Mul(float32(r.cycles)))
	}
	if err := r.anim.apply(a.Target, v); err != nil {
		r.done = true
		if s := a.Target.Scene(); s != nil {
			s.engine.Logf("animation %s: %v", r.anim.Name, err)
		}
	}
}

func (s *Scene) animate(dt float32) {
	if dt <= 0 || len(s.animatables) == 0 {
		return
	}
	live := s.animatables[:0]
	for _, a := range s.animatables {
		a.advance(dt)
		if a.IsRunning() {
			live = append(live, a)
		}
	}
	clear(s.animatables[len(live):])
	s.animatables = live
}

func (s *Scene) stopAnimationsOf(m *Mesh) {
	live := s.animatables[:0]
	for _, a := range s.animatables {
		if a.Target == m {
			a.Stop()
			continue
		}
		live = append(live, a)
	}
	clear(s.animatables[len(live):])
	s.animatables = live
}
