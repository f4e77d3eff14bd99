package engine

import "math"

// Camera is a free-look camera. Rotation.X is pitch, Rotation.Y is yaw.
// With zero rotation it looks down +Z.
type Camera struct {
	Node

	FOV  float32 // vertical, radians
	MinZ float32
	MaxZ float32

	// Speed is the distance moved per keyboard frame step.
	Speed float32
	// AngularSensibility divides pointer deltas into radians.
	AngularSensibility float32

	keysDown  map[string]bool
	dragging  bool
	lastX     int
	lastY     int
	listeners []*Listener
	attached  Surface
}

// NewUniversalCamera creates a camera at position and adds it to s. The
// first camera becomes the scene's active camera.
func NewUniversalCamera(name string, position Vec3, s *Scene) *Camera {
	c := &Camera{
		FOV:                0.8,
		MinZ:               1,
		MaxZ:               10000,
		Speed:              2,
		AngularSensibility: 2000,
		keysDown:           make(map[string]bool),
	}
	c.init(name, s)
	c.Position = position
	s.cameras = append(s.cameras, c)
	if s.ActiveCamera == nil {
		s.ActiveCamera = c
	}
	return c
}

// Forward is the world-space viewing direction.
func (c *Camera) Forward() Vec3 {
	return Normalize(TransformDir(Mat4RotationYawPitchRoll(c.Rotation), V3(0, 0, 1)))
}

// SetTarget rotates c to look at p.
func (c *Camera) SetTarget(p Vec3) {
	d := Normalize(p.Sub(c.Position))
	if d == (Vec3{}) {
		return
	}
	c.Rotation.Y = float32(math.Atan2(float64(d.X), float64(d.Z)))
	c.Rotation.X = float32(-math.Asin(float64(clampF32(d.Y, -1, 1))))
	c.Rotation.Z = 0
}

// View returns the view matrix for the camera's world pose.
func (c *Camera) View() Mat4 {
	return viewFromPose(c.AbsolutePosition(), c.Rotation)
}

// Projection returns the projection matrix for aspect = width / height.
func (c *Camera) Projection(aspect float32) Mat4 {
	fov := c.FOV
	if fov == 0 {
		fov = 0.8
	}
	near, far := c.MinZ, c.MaxZ
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = near + 1000
	}
	return Mat4PerspectiveLH(fov, aspect, near, far)
}

func viewFromPose(pos, rot Vec3) Mat4 {
	m := Mat4RotationYawPitchRoll(rot)
	fwd := TransformDir(m, V3(0, 0, 1))
	up := TransformDir(m, V3(0, 1, 0))
	return Mat4LookAtLH(pos, pos.Add(fwd), up)
}

// AttachControl lets keyboard arrows move the camera and pointer drags
// rotate it. The surface must be the one the scene's engine renders to.
func (c *Camera) AttachControl(surface Surface, noPreventDefault bool) {
	_ = noPreventDefault
	if c.attached != nil || c.scene == nil {
		return
	}
	c.attached = surface
	win := c.scene.engine.Window()
	c.listeners = append(c.listeners,
		win.AddEventListener(EventKeyDown, func(e Event) { c.keysDown[e.Key] = true }),
		win.AddEventListener(EventKeyUp, func(e Event) { delete(c.keysDown, e.Key) }),
		win.AddEventListener(EventPointerDown, func(e Event) {
			c.dragging = true
			c.lastX, c.lastY = e.X, e.Y
		}),
		win.AddEventListener(EventPointerUp, func(Event) { c.dragging = false }),
		win.AddEventListener(EventPointerMove, func(e Event) {
			if !c.dragging {
				return
			}
			c.Rotate(float32(e.X-c.lastX)/c.AngularSensibility*float32(math.Pi),
				float32(e.Y-c.lastY)/c.AngularSensibility*float32(math.Pi))
			c.lastX, c.lastY = e.X, e.Y
		}),
	)
}

// DetachControl removes the input listeners installed by AttachControl.
func (c *Camera) DetachControl() {
	for _, l := range c.listeners {
		l.Remove()
	}
	c.listeners = nil
	c.attached = nil
	c.dragging = false
	clear(c.keysDown)
}

// IsAttached reports whether AttachControl is in effect.
func (c *Camera) IsAttached() bool { return c.attached != nil }

// Rotate adds yaw and pitch, clamping pitch short of straight up/down.
func (c *Camera) Rotate(deltaYaw, deltaPitch float32) {
	c.Rotation.Y += deltaYaw
	c.Rotation.X = clampF32(c.Rotation.X+deltaPitch, -math.Pi/2+0.01, math.Pi/2-0.01)
}

// Move translates the camera along its forward and right axes.
func (c *Camera) Move(forward, right float32) {
	m := Mat4RotationYawPitchRoll(c.Rotation)
	f := TransformDir(m, V3(0, 0, 1))
	r := TransformDir(m, V3(1, 0, 0))
	c.Position = c.Position.Add(f.Mul(forward)).Add(r.Mul(right))
}

// update applies held keys. dt is in seconds.
func (c *Camera) update(dt float32) {
	if len(c.keysDown) == 0 {
		return
	}
	step := c.Speed * dt
	if c.keysDown["ArrowUp"] {
		c.Move(step, 0)
	}
	if c.keysDown["ArrowDown"] {
		c.Move(-step, 0)
	}
	if c.keysDown["ArrowLeft"] {
		c.Move(0, -step)
	}
	if c.keysDown["ArrowRight"] {
		c.Move(0, step)
	}
}

// Pose is a world-space viewer position and Euler rotation.
type Pose struct {
	Position Vec3
	Rotation Vec3
}

// ViewProvider overrides the active camera's pose, e.g. with an XR viewer.
type ViewProvider interface {
	ViewerPose() (Pose, bool)
}
