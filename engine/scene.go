package engine

import (
	"fmt"
	"math"
)

// Scene is the root container of everything rendered for one view.
type Scene struct {
	engine *Engine

	ActiveCamera *Camera
	ClearColor   Color3

	cameras         []*Camera
	lights          []*Light
	meshes          []*Mesh
	transforms      []*TransformNode
	textures        []*Texture
	cubeTextures    []*CubeTexture
	particleSystems []*ParticleSystem
	sounds          []*Sound
	animatables     []*Animatable

	viewProvider ViewProvider
	debugLayer   *DebugLayer
	listeners    []*Listener
	renderCount  uint64
	disposed     bool

	// OnBeforeRender is notified at the start of Render.
	OnBeforeRender Observable[*Scene]
	// OnAfterRender is notified after the frame buffer is complete.
	OnAfterRender Observable[*Scene]
	// OnDispose is notified once, when the scene is disposed.
	OnDispose Observable[*Scene]
	// OnPointer is notified for every pointer down, up and move on the
	// engine's surface, with the picked mesh if any.
	OnPointer Observable[PointerInfo]
}

// NewScene creates an empty scene on e.
func NewScene(e *Engine) *Scene {
	s := &Scene{
		engine:     e,
		ClearColor: NewColor3(0.2, 0.2, 0.3),
	}
	s.debugLayer = newDebugLayer(s)
	win := e.Window()
	for _, typ := range []EventType{EventPointerDown, EventPointerUp, EventPointerMove} {
		s.listeners = append(s.listeners, win.AddEventListener(typ, s.onPointerEvent))
	}
	e.scenes = append(e.scenes, s)
	return s
}

// Engine returns the engine s renders on.
func (s *Scene) Engine() *Engine { return s.engine }

func (s *Scene) Cameras() []*Camera         { return append([]*Camera(nil), s.cameras...) }
func (s *Scene) Lights() []*Light           { return append([]*Light(nil), s.lights...) }
func (s *Scene) Meshes() []*Mesh            { return append([]*Mesh(nil), s.meshes...) }
func (s *Scene) Textures() []*Texture       { return append([]*Texture(nil), s.textures...) }
func (s *Scene) Sounds() []*Sound           { return append([]*Sound(nil), s.sounds...) }
func (s *Scene) Animatables() []*Animatable { return append([]*Animatable(nil), s.animatables...) }

func (s *Scene) ParticleSystems() []*ParticleSystem {
	return append([]*ParticleSystem(nil), s.particleSystems...)
}

// MeshByName returns the first mesh called name.
func (s *Scene) MeshByName(name string) *Mesh {
	for _, m := range s.meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// MeshesByName returns every mesh called name.
func (s *Scene) MeshesByName(name string) []*Mesh {
	var out []*Mesh
	for _, m := range s.meshes {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// LightByName returns the first light called name.
func (s *Scene) LightByName(name string) *Light {
	for _, l := range s.lights {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// CameraByName returns the first camera called name.
func (s *Scene) CameraByName(name string) *Camera {
	for _, c := range s.cameras {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// SoundByName returns the first sound called name.
func (s *Scene) SoundByName(name string) *Sound {
	for _, snd := range s.sounds {
		if snd.Name == name {
			return snd
		}
	}
	return nil
}

// ParticleSystemByName returns the first particle system called name.
func (s *Scene) ParticleSystemByName(name string) *ParticleSystem {
	for _, ps := range s.particleSystems {
		if ps.Name == name {
			return ps
		}
	}
	return nil
}

// Skyboxes returns the meshes drawn as background cube maps.
func (s *Scene) Skyboxes() []*Mesh {
	var out []*Mesh
	for _, m := range s.meshes {
		if m.Material.isSkybox() {
			out = append(out, m)
		}
	}
	return out
}

func (s *Scene) skybox() *Mesh {
	for _, m := range s.meshes {
		if m.Material.isSkybox() && m.IsEnabled() {
			return m
		}
	}
	return nil
}

// DebugLayer returns the scene inspector overlay.
func (s *Scene) DebugLayer() *DebugLayer { return s.debugLayer }

// SetViewProvider replaces the active camera's pose with p's while p
// reports a pose. A nil p restores the camera.
func (s *Scene) SetViewProvider(p ViewProvider) { s.viewProvider = p }

// ViewProvider returns the installed view provider.
func (s *Scene) ViewProvider() ViewProvider { return s.viewProvider }

// RenderCount is the number of completed Render calls.
func (s *Scene) RenderCount() uint64 { return s.renderCount }

// IsDisposed reports whether Dispose has run.
func (s *Scene) IsDisposed() bool { return s.disposed }

// Render advances animations, particles and camera input by the engine's
// frame delta and draws the scene into the engine frame buffer.
func (s *Scene) Render() {
	if s.disposed {
		return
	}
	dt := float32(s.engine.DeltaTime().Seconds())
	if dt > 0.25 {
		dt = 0.25
	}
	s.OnBeforeRender.Notify(s)

	if s.ActiveCamera != nil {
		s.ActiveCamera.update(dt)
	}
	s.animate(dt)
	for _, ps := range s.particleSystems {
		ps.update(dt)
	}

	frame := s.engine.frame
	if frame != nil && s.ActiveCamera != nil {
		w, h := s.engine.RenderSize()
		vs := newViewState(s.ActiveCamera, s.viewerPose(), w, h)
		s.engine.renderer.render(RGBATarget{Img: frame}, s, vs)
	}
	if s.debugLayer.IsVisible() && frame != nil {
		s.debugLayer.draw(frame)
	}

	s.renderCount++
	s.OnAfterRender.Notify(s)
}

func (s *Scene) viewerPose() *Pose {
	if s.viewProvider == nil {
		return nil
	}
	p, ok := s.viewProvider.ViewerPose()
	if !ok {
		return nil
	}
	return &p
}

// Pick casts a ray through render pixel (x, y) and returns the closest
// pickable mesh hit.
func (s *Scene) Pick(x, y int) PointerInfo {
	info := PointerInfo{X: x, Y: y}
	if s.ActiveCamera == nil {
		return info
	}
	w, h := s.engine.RenderSize()
	if w <= 0 || h <= 0 {
		return info
	}
	vs := newViewState(s.ActiveCamera, s.viewerPose(), w, h)
	origin, dir := vs.eye, vs.ray(x, y, w, h)

	best := float32(math.MaxFloat32)
	for _, m := range s.meshes {
		if !m.IsPickable || !m.IsEnabled() || m.Material.isSkybox() {
			continue
		}
		if d, u, v, ok := m.intersect(origin, dir); ok && d < best {
			best = d
			info.Hit = true
			info.Mesh = m
			info.Distance = d
			info.U, info.V = u, v
			info.PickedPoint = origin.Add(dir.Mul(d))
		}
	}
	return info
}

func (s *Scene) onPointerEvent(e Event) {
	if s.disposed {
		return
	}
	scale := s.engine.HardwareScalingLevel()
	x := int(float32(e.X) / scale)
	y := int(float32(e.Y) / scale)
	info := s.Pick(x, y)
	info.Type = e.Type
	info.Button = e.Button
	if info.Mesh != nil {
		info.Mesh.OnPointer.Notify(info)
	}
	s.OnPointer.Notify(info)
}

// Dispose stops sounds and animations, disposes meshes, releases window
// listeners and removes s from its engine. It must run on the frame
// goroutine or inside Engine.Do.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.OnDispose.Notify(s)

	for _, l := range s.listeners {
		l.Remove()
	}
	s.listeners = nil
	for _, c := range s.cameras {
		c.DetachControl()
	}
	for _, snd := range s.sounds {
		snd.Dispose()
	}
	for _, ps := range s.particleSystems {
		ps.Stop()
	}
	for _, a := range s.animatables {
		a.Stop()
	}
	s.debugLayer.Hide()
	for len(s.meshes) > 0 {
		s.meshes[len(s.meshes)-1].Dispose()
	}

	s.cameras = nil
	s.ActiveCamera = nil
	s.lights = nil
	s.transforms = nil
	s.textures = nil
	s.cubeTextures = nil
	s.particleSystems = nil
	s.sounds = nil
	s.animatables = nil
	s.viewProvider = nil

	s.OnBeforeRender.Clear()
	s.OnAfterRender.Clear()
	s.OnPointer.Clear()
	s.OnDispose.Clear()
	s.engine.removeScene(s)
}

func (s *Scene) String() string {
	return fmt.Sprintf("scene(cameras=%d lights=%d meshes=%d particles=%d sounds=%d)",
		len(s.cameras), len(s.lights), len(s.meshes), len(s.particleSystems), len(s.sounds))
}
