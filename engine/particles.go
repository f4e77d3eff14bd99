package engine

import "math/rand"

type particle struct {
	pos      Vec3
	dir      Vec3
	color    Color4
	color0   Color4
	size     float32
	age      float32
	lifeTime float32
}

// ParticleSystem emits camera-facing sprites from a box around Emitter.
// Sprites are blended additively.
//
// Ages and velocities are scaled by UpdateSpeed per 1/60 s, so a particle
// with LifeTime 1 and the default UpdateSpeed lives for 100 frames at 60 Hz.
type ParticleSystem struct {
	Name            string
	ParticleTexture *Texture

	Emitter    Vec3
	MinEmitBox Vec3
	MaxEmitBox Vec3
	Direction1 Vec3
	Direction2 Vec3

	MinLifeTime, MaxLifeTime   float32
	MinSize, MaxSize           float32
	MinEmitPower, MaxEmitPower float32
	EmitRate                   float32

	Color1, Color2, ColorDead Color4
	Gravity                   Vec3
	UpdateSpeed               float32

	// TargetStopDuration stops emission after that many seconds. Zero
	// emits until Stop.
	TargetStopDuration float32

	capacity  int
	particles []particle
	started   bool
	excess    float32
	elapsed   float32
	rng       *rand.Rand
}

// NewParticleSystem creates a stopped system holding up to capacity live
// particles.
func NewParticleSystem(name string, capacity int, s *Scene) *ParticleSystem {
	if capacity < 0 {
		capacity = 0
	}
	ps := &ParticleSystem{
		Name:         name,
		MinEmitBox:   V3(-0.5, -0.5, -0.5),
		MaxEmitBox:   V3(0.5, 0.5, 0.5),
		Direction1:   V3(0, 1, 0),
		Direction2:   V3(0, 1, 0),
		MinLifeTime:  1,
		MaxLifeTime:  1,
		MinSize:      1,
		MaxSize:      1,
		MinEmitPower: 1,
		MaxEmitPower: 1,
		EmitRate:     10,
		Color1:       NewColor4(1, 1, 1, 1),
		Color2:       NewColor4(1, 1, 1, 1),
		ColorDead:    NewColor4(0, 0, 0, 1),
		UpdateSpeed:  0.01,
		capacity:     capacity,
		rng:          rand.New(rand.NewSource(1)),
	}
	s.particleSystems = append(s.particleSystems, ps)
	return ps
}

// Capacity is the maximum number of live particles.
func (ps *ParticleSystem) Capacity() int { return ps.capacity }

// ActiveCount is the number of live particles.
func (ps *ParticleSystem) ActiveCount() int { return len(ps.particles) }

// Start begins emission.
func (ps *ParticleSystem) Start() {
	ps.started = true
	ps.elapsed = 0
}

// Stop ends emission. Live particles finish their lifetime.
func (ps *ParticleSystem) Stop() { ps.started = false }

// IsStarted reports whether the system is emitting.
func (ps *ParticleSystem) IsStarted() bool { return ps.started }

// Reset removes every live particle.
func (ps *ParticleSystem) Reset() {
	ps.particles = ps.particles[:0]
	ps.excess = 0
}

// Seed makes emission reproducible.
func (ps *ParticleSystem) Seed(seed int64) { ps.rng = rand.New(rand.NewSource(seed)) }

func (ps *ParticleSystem) update(dt float32) {
	if dt <= 0 {
		return
	}
	step := ps.UpdateSpeed * dt * 60

	live := ps.particles[:0]
	for _, p := range ps.particles {
		p.age += step
		if p.age >= p.lifeTime {
			continue
		}
		p.dir = p.dir.Add(ps.Gravity.Mul(step))
		p.pos = p.pos.Add(p.dir.Mul(step))
		p.color = p.color0.Lerp(ps.ColorDead, p.age/p.lifeTime)
		live = append(live, p)
	}
	ps.particles = live

	if !ps.started {
		return
	}
	ps.elapsed += dt
	if ps.TargetStopDuration > 0 && ps.elapsed >= ps.TargetStopDuration {
		ps.Stop()
		return
	}
	ps.excess += ps.EmitRate * step
	n := int(ps.excess)
	ps.excess -= float32(n)
	for i := 0; i < n && len(ps.particles) < ps.capacity; i++ {
		ps.particles = append(ps.particles, ps.emit())
	}
}

func (ps *ParticleSystem) emit() particle {
	r := func(lo, hi float32) float32 { return lo + (hi-lo)*ps.rng.Float32() }
	off := V3(
		r(ps.MinEmitBox.X, ps.MaxEmitBox.X),
		r(ps.MinEmitBox.Y, ps.MaxEmitBox.Y),
		r(ps.MinEmitBox.Z, ps.MaxEmitBox.Z),
	)
	dir := V3(
		r(ps.Direction1.X, ps.Direction2.X),
		r(ps.Direction1.Y, ps.Direction2.Y),
		r(ps.Direction1.Z, ps.Direction2.Z),
	)
	c := ps.Color1.Lerp(ps.Color2, ps.rng.Float32())
	life := r(ps.MinLifeTime, ps.MaxLifeTime)
	if life <= 0 {
		life = 1
	}
	return particle{
		pos:      ps.Emitter.Add(off),
		dir:      dir.Mul(r(ps.MinEmitPower, ps.MaxEmitPower)),
		color:    c,
		color0:   c,
		size:     r(ps.MinSize, ps.MaxSize),
		lifeTime: life,
	}
}
