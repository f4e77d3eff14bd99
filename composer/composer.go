// Package composer furnishes the demo scene: camera, lights, props, an
// imported model, ambient music and a greeting text plane, then presents it
// through an XR session.
package composer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"xrscene/engine"
	"xrscene/gui"
	"xrscene/meshes"
	"xrscene/xr"
)

// Asset locations, relative to the engine's asset filesystem.
const (
	ModelRoot     = "assets/models/"
	ModelFile     = "h2o.glb"
	SkyboxRoot    = "assets/textures/skybox"
	FlareTexture  = "assets/textures/flare.png"
	MusicFile     = "assets/sounds/test.mp3"
	DefaultCanvas = "renderCanvas"
)

var (
	ErrUnknownSurface = errors.New("composer: unknown surface")
	ErrModelDisabled  = errors.New("composer: model import disabled")
)

// AuthoringData carries upstream authoring records keyed by data type. It
// is accepted and currently ignored.
type AuthoringData map[string]map[string]any

// Config switches the optional parts of the scene. The zero value builds
// the full scene in immersive-vr.
type Config struct {
	SessionMode xr.SessionMode

	NoParticles bool
	NoAudio     bool
	NoModel     bool

	// PointLight adds a warm point light at the origin.
	PointLight bool
	// Sparks tunes the particle system into a small spark fountain.
	Sparks bool

	// Alert shows a message to the user. Nil logs it.
	Alert func(msg string)
}

// App builds scenes on one engine and surface.
type App struct {
	eng     *engine.Engine
	surface engine.Surface
	rt      xr.Runtime
	cfg     Config
}

// New returns an App that builds scenes on eng, drawn to surface and
// presented through rt.
func New(eng *engine.Engine, surface engine.Surface, rt xr.Runtime, cfg Config) *App {
	if cfg.SessionMode == "" {
		cfg.SessionMode = xr.ImmersiveVR
	}
	return &App{eng: eng, surface: surface, rt: rt, cfg: cfg}
}

// Composition is a furnished scene in XR. Model resolves separately, once
// the imported asset has been placed and animated.
type Composition struct {
	Scene      *engine.Scene
	Camera     *engine.Camera
	Particles  *engine.ParticleSystem
	Music      *engine.Sound
	Text       *meshes.TextPlane
	Model      *engine.Future[*engine.Mesh]
	Experience *xr.DefaultExperience
}

func (a *App) logf(format string, args ...any) {
	a.eng.Logger().WriteLineString("composer: " + fmt.Sprintf(format, args...))
}

func (a *App) alert(msg string) {
	if a.cfg.Alert != nil {
		a.cfg.Alert(msg)
		return
	}
	a.logf("%s", strings.ReplaceAll(msg, "\n", " "))
}

// CreateXRScene builds a scene for canvasID and waits for the XR
// experience. If the mode is unsupported or the session cannot be created
// the scene is disposed and the error returned. On runtimes that grant
// sessions only from a user gesture the composition is returned NotInXR
// and the next pointer press enters XR. It blocks, so it must not run on
// the frame goroutine.
func (a *App) CreateXRScene(ctx context.Context, canvasID string, authoringData AuthoringData) (*Composition, error) {
	if canvasID == "" {
		canvasID = DefaultCanvas
	}
	if a.surface == nil || a.surface.ID() != canvasID {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurface, canvasID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &Composition{}
	a.eng.Do(func() {
		s := engine.NewScene(a.eng)
		c.Scene = s
		c.Camera = a.createCamera(s)
		a.createLights(s)
		a.addInspectorShortcut(s)

		sphere := engine.CreateSphere("sphere", engine.SphereOptions{Diameter: 1.3}, s)
		sphere.Position.Y = 1
		sphere.Position.Z = 5
		a.createSkybox(s)
		if !a.cfg.NoParticles {
			c.Particles = a.createParticles(s)
		}

		if a.cfg.NoModel {
			c.Model = engine.NewFuture[*engine.Mesh]()
			c.Model.Reject(ErrModelDisabled)
		} else {
			c.Model = a.loadModel(ctx, s)
		}
		if !a.cfg.NoAudio {
			c.Music = engine.NewSound("music", MusicFile, s, nil, engine.SoundOptions{Loop: true, Autoplay: true})
		}
		c.Text = a.createText(s)
	})

	exp, err := xr.CreateDefaultExperience(ctx, c.Scene, a.rt, xr.ExperienceOptions{
		UIOptions: xr.UIOptions{SessionMode: a.cfg.SessionMode},
	})
	if err != nil {
		a.logf("xr experience: %v", err)
		a.eng.Do(c.Scene.Dispose)
		return nil, fmt.Errorf("composer: create xr experience: %w", err)
	}
	c.Experience = exp
	if exp.NeedsUserActivation() {
		a.eng.Do(func() { a.addEnterXROnGesture(ctx, c.Scene, exp) })
		a.logf("scene ready, press to enter %s", exp.Mode())
		return c, nil
	}
	a.logf("scene ready in %s", exp.Mode())
	return c, nil
}

// addEnterXROnGesture requests the session on every pointer press made
// outside XR, for as long as s lives.
func (a *App) addEnterXROnGesture(ctx context.Context, s *engine.Scene, exp *xr.DefaultExperience) {
	l := a.eng.Window().AddEventListener(engine.EventPointerDown, func(engine.Event) {
		if exp.State() != xr.NotInXR {
			return
		}
		go func() {
			if err := exp.EnterXR(ctx); err != nil && !errors.Is(err, xr.ErrSessionActive) {
				a.logf("enter xr: %v", err)
			}
		}()
	})
	s.OnDispose.AddOnce(func(*engine.Scene) { l.Remove() })
}

func (a *App) createCamera(s *engine.Scene) *engine.Camera {
	cam := engine.NewUniversalCamera("uniCamera", engine.V3(0, 0, -5), s)
	cam.AttachControl(a.surface, true)
	return cam
}

func (a *App) createLights(s *engine.Scene) {
	hemi := engine.NewHemisphericLight("hemiLight", engine.V3(0, 1, 0), s)
	hemi.Intensity = 1
	hemi.Diffuse = engine.NewColor3(1, 0.9, 0.8)

	if a.cfg.PointLight {
		pl := engine.NewPointLight("pointLight", engine.Zero(), s)
		pl.Intensity = 0.5
		pl.Diffuse = engine.NewColor3(1, 0.9, 0.5)
	}
}

// addInspectorShortcut toggles the debug layer on Ctrl+Alt+i for as long
// as s lives.
func (a *App) addInspectorShortcut(s *engine.Scene) {
	l := a.eng.Window().AddEventListener(engine.EventKeyDown, func(e engine.Event) {
		if e.Ctrl && e.Alt && e.Key == "i" {
			s.DebugLayer().Toggle()
		}
	})
	s.OnDispose.AddOnce(func(*engine.Scene) { l.Remove() })
}

func (a *App) createSkybox(s *engine.Scene) *engine.Mesh {
	box := engine.CreateBox("skybox", engine.BoxOptions{Size: 1000}, s)
	mat := engine.NewStandardMaterial("skybox-mat")
	mat.BackFaceCulling = false
	mat.ReflectionTexture = engine.NewCubeTexture(SkyboxRoot, s)
	mat.ReflectionTexture.CoordinatesMode = engine.SkyboxMode
	mat.DiffuseColor = engine.NewColor3(0, 0, 0)
	mat.SpecularColor = engine.NewColor3(0, 0, 0)
	box.Material = mat
	return box
}

func (a *App) createParticles(s *engine.Scene) *engine.ParticleSystem {
	ps := engine.NewParticleSystem("particleSystem", 5000, s)
	ps.ParticleTexture = engine.NewTexture(FlareTexture, s)
	if a.cfg.Sparks {
		ps.Emitter = engine.Zero()
		ps.MinEmitBox = engine.Zero()
		ps.MaxEmitBox = engine.Zero()
		ps.Color1 = engine.NewColor4(1, 1, 1, 1)
		ps.Color2 = engine.NewColor4(0, 0, 0, 0)
		ps.MinSize, ps.MaxSize = 0.01, 0.05
		ps.MinLifeTime, ps.MaxLifeTime = 0.5, 0.5
		ps.EmitRate = 50
		ps.Direction1 = engine.V3(-1, 0, 1)
		ps.Direction2 = engine.V3(1, 0, -1)
		ps.MinEmitPower, ps.MaxEmitPower = 0.2, 0.3
		ps.UpdateSpeed = 0.01
		ps.Gravity = engine.V3(0, -9.81, 0)
	}
	ps.Start()
	return ps
}

// loadModel imports the water molecule and, once it is in the scene, places
// it and starts its spin.
func (a *App) loadModel(ctx context.Context, s *engine.Scene) *engine.Future[*engine.Mesh] {
	out := engine.NewFuture[*engine.Mesh]()
	imp := engine.ImportMeshAsync(ctx, s, ModelRoot, ModelFile)
	go func() {
		res, err := imp.Wait(ctx)
		a.eng.Post(func() {
			if err == nil && s.IsDisposed() {
				err = engine.ErrDisposed
			}
			root := res.Root()
			if err == nil && root == nil {
				err = errors.New("empty import")
			}
			if err != nil {
				a.logf("model: %v", err)
				out.Reject(fmt.Errorf("composer: model: %w", err))
				return
			}
			root.Name = "h2oRoot"
			root.ID = "h2oRoot"
			root.Position.Y = -1
			root.Rotation = engine.V3(0, 0, math.Pi)
			root.Scaling.SetAll(1.5)
			a.createAnimation(s, root)
			out.Resolve(root)
		})
	}()
	return out
}

func (a *App) createAnimation(s *engine.Scene, model *engine.Mesh) *engine.Animatable {
	anim := engine.NewAnimation("rotationAnimation", "rotation", -10,
		engine.AnimationTypeVector3, engine.LoopCycle)
	anim.SetKeys([]engine.AnimationKey{
		{Frame: 0, Value: engine.V3(0, 0, 0)},
		{Frame: 30, Value: engine.V3(0, 2*math.Pi, 0)},
	})
	model.Animations = []*engine.Animation{anim}
	return s.BeginAnimation(model, 0, 30, true)
}

func (a *App) createText(s *engine.Scene) *meshes.TextPlane {
	tp := meshes.NewTextPlane("hello", 4, 3, 0, 0, 5, "GOOD DAY", "white", "purple", 500, s)
	tp.Plane.Name = "hello plane"
	tp.Plane.ID = "hello plane"
	tp.Text.Name = "hello"

	tp.Text.OnPointerUp.Add(func(v gui.Vector2WithInfo) {
		a.alert(fmt.Sprintf("Hello Text up at:\nx: %v\ny: %v", v.X, v.Y))
	})
	tp.Text.OnPointerDown.Add(func(gui.Vector2WithInfo) {
		a.alert("Hello Text down")
	})
	return tp
}
