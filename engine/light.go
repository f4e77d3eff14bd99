package engine

// LightKind distinguishes the supported light sources.
type LightKind uint8

const (
	// LightHemispheric is an ambient light: full intensity on faces turned
	// towards Direction, GroundColor on faces turned away.
	LightHemispheric LightKind = iota
	// LightPoint emits from Position in every direction.
	LightPoint
)

// Light is a light source. Lights add up; there are no interactions
// between them.
type Light struct {
	Node

	Kind      LightKind
	Direction Vec3 // hemispheric only

	Intensity   float32
	Diffuse     Color3
	GroundColor Color3 // hemispheric only
	Range       float32 // point only; zero means unbounded
}

// NewHemisphericLight creates an ambient light whose sky side faces
// direction.
func NewHemisphericLight(name string, direction Vec3, s *Scene) *Light {
	l := &Light{
		Kind:      LightHemispheric,
		Direction: direction,
		Intensity: 1,
		Diffuse:   NewColor3(1, 1, 1),
	}
	l.init(name, s)
	s.lights = append(s.lights, l)
	return l
}

// NewPointLight creates a point light at position.
func NewPointLight(name string, position Vec3, s *Scene) *Light {
	l := &Light{
		Kind:      LightPoint,
		Intensity: 1,
		Diffuse:   NewColor3(1, 1, 1),
	}
	l.init(name, s)
	l.Position = position
	s.lights = append(s.lights, l)
	return l
}

// contribution returns the light reaching a surface at p with normal n.
func (l *Light) contribution(p, n Vec3) Color3 {
	if !l.IsEnabled() || l.Intensity <= 0 {
		return Color3{}
	}
	switch l.Kind {
	case LightPoint:
		lp := l.AbsolutePosition()
		d := lp.Sub(p)
		dist := Len(d)
		if l.Range > 0 && dist > l.Range {
			return Color3{}
		}
		ndl := Dot(n, Normalize(d))
		if ndl <= 0 {
			return Color3{}
		}
		att := float32(1)
		if l.Range > 0 {
			att = Clamp01(1 - dist/l.Range)
		}
		return l.Diffuse.Scale(ndl * l.Intensity * att)
	default:
		dir := Normalize(l.Direction)
		t := Dot(n, dir)*0.5 + 0.5
		sky := l.Diffuse.Scale(t)
		ground := l.GroundColor.Scale(1 - t)
		return sky.Add(ground).Scale(l.Intensity)
	}
}
