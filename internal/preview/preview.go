// Package preview is the standalone layer view application: a window showing
// a generated print, driven by keyboard playback controls.
package preview

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/layerview/internal/config"
	"github.com/Faultbox/layerview/internal/engine/camera"
	"github.com/Faultbox/layerview/internal/engine/framebuffer"
	"github.com/Faultbox/layerview/internal/engine/input"
	"github.com/Faultbox/layerview/internal/engine/mesh"
	"github.com/Faultbox/layerview/internal/engine/renderer"
	"github.com/Faultbox/layerview/internal/engine/scene"
	"github.com/Faultbox/layerview/internal/engine/shader"
	"github.com/Faultbox/layerview/internal/engine/shader/glsl"
	"github.com/Faultbox/layerview/internal/engine/window"
	"github.com/Faultbox/layerview/internal/layer"
	"github.com/Faultbox/layerview/internal/logger"
	"github.com/Faultbox/layerview/internal/simulation"
	"github.com/Faultbox/layerview/pkg/math"
)

// App is the preview instance.
type App struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	target   *framebuffer.Framebuffer
	shaders  *shader.Library

	scene    *scene.Scene
	orbit    *camera.Orbit
	playback *Playback
	pass     *simulation.Pass

	// cameras whose aspect follows the window
	cameraNames []string

	log *zap.Logger
}

// New opens the window, creates the GL resources and builds the demo scene.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Named("preview"),
	}
	a.log.Info("initializing preview",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The GL context must exist before the renderer loads function pointers.
	a.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.target, err = framebuffer.New(int32(cfg.Window.Width), int32(cfg.Window.Height))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create framebuffer: %w", err)
	}

	a.shaders = shader.NewLibrary(shaderFS(cfg.LayerView.ShaderDir))
	a.input = input.New()

	if err := a.buildScene(); err != nil {
		a.Close()
		return nil, err
	}

	a.log.Info("preview initialized", zap.Stringer("tier", a.pass.Tier()))
	return a, nil
}

func shaderFS(dir string) fs.FS {
	if dir == "" {
		return glsl.FS
	}
	return os.DirFS(dir)
}

// capabilities maps configuration and the GL context onto shader tier inputs.
func capabilities(lv config.LayerViewConfig, caps renderer.Capabilities) simulation.Capabilities {
	return simulation.Capabilities{
		Compatibility:  lv.CompatibilityMode,
		GeometryShader: lv.ConstrainedShaders && caps.GeometryShader,
		HighTier:       lv.HighTier,
		HighTierShader: lv.HighTier,
	}
}

// passOptions builds the pass options from configuration.
func passOptions(cfg *config.Config, caps renderer.Capabilities) simulation.Options {
	opts := simulation.DefaultOptions()
	lv := cfg.LayerView

	opts.Capabilities = capabilities(lv, caps)
	opts.Max3DElements = lv.Max3DElements
	opts.Resolution = lv.Resolution
	opts.TrailDistance = lv.TrailDistance
	opts.Elevation = lv.Elevation
	if lv.DefaultCamera != "" {
		opts.DefaultCamera = lv.DefaultCamera
	}
	if lv.FollowCamera != "" {
		opts.FollowCamera = lv.FollowCamera
	}
	opts.StartsColor = cfg.Theme.Starts
	opts.NozzleColor = cfg.Theme.Nozzle
	opts.DisabledColor = cfg.Theme.ModelUnslicable
	opts.DisabledAltColor = cfg.Theme.ModelUnslicableAlt
	return opts
}

func (a *App) buildScene() error {
	demo := DefaultDemoPrint()
	data, err := demo.Build()
	if err != nil {
		return fmt.Errorf("build demo print: %w", err)
	}

	opts := passOptions(a.cfg, a.renderer.Capabilities())

	cam := camera.New(opts.DefaultCamera)
	cam.Aspect = a.window.Aspect()
	a.scene = scene.New(cam)
	a.orbit = camera.NewOrbit(demo.Center())
	a.orbit.Distance = 80
	a.orbit.Apply(cam)

	a.scene.Add(newPrintNode(data))
	a.scene.Add(newBuildPlate())
	a.scene.Add(scene.NewNozzle("nozzle", mesh.Nozzle(6, 2)))

	a.playback = NewPlayback(data, a.cfg.LayerView.PathsPerSecond)
	a.playback.SetDisplayLineDetails(a.cfg.LayerView.DisplayLineDetails)
	a.playback.OnPathInfo(a.showPathInfo)

	a.pass = simulation.New(simulation.Deps{
		Scene:    a.scene,
		View:     a.playback,
		Shaders:  a.shaders,
		Drawer:   a.renderer,
		Target:   a.target,
		Keyboard: a.input,
		Listener: a.playback,
	}, opts)
	a.scene.OnChanged(a.pass.OnSceneChanged)
	a.cameraNames = []string{opts.DefaultCamera, opts.FollowCamera}
	return nil
}

func newPrintNode(data *layer.Data) *scene.MeshNode {
	n := scene.NewMesh("print", data)
	n.SetLayerData(data)
	return n
}

// newBuildPlate is a thin slab under the print, drawn as a tool handle.
func newBuildPlate() *scene.ToolHandleNode {
	plate := mesh.Box(math.Vec3{X: -10, Y: -1, Z: -10}, math.Vec3{X: 30, Y: 0, Z: 30})
	return scene.NewToolHandle("build_plate", plate)
}

func (a *App) showPathInfo(info string) {
	title := a.cfg.Window.Title
	if info != "" {
		title += " | " + info
	}
	a.window.SetTitle(title)
}

// Run starts the main loop.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		for _, event := range a.input.Events() {
			a.handleEvent(event)
		}

		a.playback.Update(dt)

		if err := a.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (a *App) handleEvent(event input.Event) {
	switch event.Type {
	case input.EventWindowResize:
		a.renderer.Resize(event.Width, event.Height)
		a.target.Resize(int32(event.Width), int32(event.Height))
		for _, name := range a.cameraNames {
			if cam := a.scene.Cameras().Find(name); cam != nil {
				cam.Aspect = a.window.Aspect()
			}
		}

	case input.EventKeyDown:
		switch event.Key {
		case sdl.SCANCODE_ESCAPE:
			a.running = false
		case sdl.SCANCODE_UP:
			a.playback.StepLayer(1)
		case sdl.SCANCODE_DOWN:
			a.playback.StepLayer(-1)
		case sdl.SCANCODE_RIGHT:
			a.playback.StepPath(1)
		case sdl.SCANCODE_LEFT:
			a.playback.StepPath(-1)
		case sdl.SCANCODE_SPACE:
			a.playback.Toggle()
		case sdl.SCANCODE_T:
			a.playback.ToggleTravelMoves()
		case sdl.SCANCODE_V:
			a.playback.CycleViewType()
		}

	case input.EventMouseMove:
		if a.input.Dragging() {
			a.orbit.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
		}

	case input.EventMouseWheel:
		a.orbit.HandleZoom(event.Wheel)
	}
}

func (a *App) render() error {
	if cam := a.scene.Cameras().Find(a.cameraNames[0]); cam != nil {
		a.orbit.Apply(cam)
	}

	a.renderer.Begin()
	if err := a.pass.Render(); err != nil {
		return err
	}
	w, h := a.window.GetSize()
	a.target.BlitToScreen(int32(w), int32(h))
	a.renderer.End()
	return nil
}

// Close releases GL resources and the window.
func (a *App) Close() {
	a.log.Info("closing preview")

	if a.shaders != nil {
		a.shaders.Destroy()
	}
	if a.target != nil {
		a.target.Destroy()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
