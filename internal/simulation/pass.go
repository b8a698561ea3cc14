package simulation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/layerview/internal/engine/renderer"
	"github.com/Faultbox/layerview/internal/engine/scene"
	"github.com/Faultbox/layerview/internal/engine/shader"
	"github.com/Faultbox/layerview/internal/layer"
	"github.com/Faultbox/layerview/internal/logger"
	"github.com/Faultbox/layerview/pkg/math"
)

// Options configures a Pass.
type Options struct {
	Capabilities Capabilities

	// Max3DElements overrides the 2D fallback threshold. Nil selects the
	// tier default.
	Max3DElements *int
	// Resolution overrides the 2D fallback detail level.
	Resolution *int

	TrailDistance float32 // mm
	Elevation     float32 // mm

	DefaultCamera string
	FollowCamera  string

	StartsColor      [4]float32
	NozzleColor      [4]float32
	DisabledColor    [4]float32
	DisabledAltColor [4]float32
}

// DefaultOptions returns options for a standard desktop device.
func DefaultOptions() Options {
	return Options{
		TrailDistance:    5,
		Elevation:        1,
		DefaultCamera:    "3d",
		FollowCamera:     "nozzle_cam",
		StartsColor:      [4]float32{1, 1, 1, 1},
		NozzleColor:      [4]float32{0.64, 0.64, 0.64, 0.3},
		DisabledColor:    [4]float32{0.48, 0.48, 0.48, 1},
		DisabledAltColor: [4]float32{0.67, 0.67, 0.67, 1},
	}
}

// Deps are the collaborators of a Pass. Keyboard and Listener are optional.
type Deps struct {
	Scene    Scene
	View     View
	Shaders  ShaderProvider
	Drawer   renderer.Drawer
	Target   Target
	Keyboard Keyboard
	Listener PathInfoListener
}

// Pass renders sliced layers once per frame. It is not safe for concurrent use.
type Pass struct {
	deps  Deps
	opts  Options
	tier  Tier
	names ShaderNames

	max3D      int
	resolution *int

	initialized bool
	primary     shader.Program
	shadow      shader.Program
	flat        shader.Program
	toolHandle  shader.Program
	nozzle      shader.Program
	disabled    shader.Program

	sw       switchState
	follow   follower
	pathInfo string

	log *zap.Logger
}

// New creates a pass. Shaders are created on the first Render.
func New(deps Deps, opts Options) *Pass {
	log := logger.Named("simulation")

	p := &Pass{
		deps:       deps,
		opts:       opts,
		tier:       SelectTier(opts.Capabilities),
		names:      ShadersFor(opts.Capabilities),
		max3D:      Max3DElements(opts.Max3DElements, opts.Capabilities),
		resolution: ResolutionOverride(opts.Resolution, opts.Capabilities),
		sw:         newSwitchState(),
		follow: follower{
			defaultName: opts.DefaultCamera,
			followName:  opts.FollowCamera,
			trail:       opts.TrailDistance,
			elevation:   opts.Elevation,
			log:         log,
		},
		log: log,
	}

	fields := []zap.Field{
		zap.Stringer("tier", p.tier),
		zap.String("primary", p.names.Primary),
		zap.String("shadow", p.names.Shadow),
		zap.Int("max_3d_elements", p.max3D),
	}
	if p.resolution != nil {
		fields = append(fields, zap.Int("resolution", *p.resolution))
	}
	log.Debug("layer view pass created", fields...)

	return p
}

// Tier returns the selected shader tier.
func (p *Pass) Tier() Tier { return p.tier }

// Variant returns the layer shader variant used last.
func (p *Pass) Variant() Variant { return p.sw.current }

// SwitchingLayers reports whether the user is moving across layers rather
// than stepping through paths.
func (p *Pass) SwitchingLayers() bool { return p.sw.switching }

// CurrentPathInfo returns the description published by the last frame.
func (p *Pass) CurrentPathInfo() string { return p.pathInfo }

// OnSceneChanged resets the switching state when layer data changed so the
// next frame draws at full brightness.
func (p *Pass) OnSceneChanged(n scene.Node) {
	d, ok := n.(scene.Decorated)
	if !ok || d.Decorations().LayerData == nil {
		return
	}
	p.sw.reset()
}

func (p *Pass) ensureShaders() error {
	if p.initialized {
		return nil
	}

	var err error
	load := func(name string) shader.Program {
		if err != nil {
			return nil
		}
		var prog shader.Program
		prog, err = p.deps.Shaders.Program(name)
		if err != nil {
			err = fmt.Errorf("layer view shader %q: %w", name, err)
		}
		return prog
	}

	p.primary = load(p.names.Primary)
	p.shadow = load(p.names.Shadow)
	if p.names.Flat != "" {
		p.flat = load(p.names.Flat)
	}
	p.toolHandle = load(ShaderToolHandle)
	p.nozzle = load(ShaderNozzle)
	p.disabled = load(ShaderDisabled)
	if err != nil {
		return err
	}

	defaults := defaultUniforms()
	defaults.apply(p.primary, false)
	defaults.apply(p.shadow, true)
	if p.flat != nil {
		defaults.apply(p.flat, false)
	}

	p.nozzle.SetVec4(UniformColor, p.opts.NozzleColor)

	p.disabled.SetVec4(UniformDiffuseColor1, p.opts.DisabledColor)
	p.disabled.SetVec4(UniformDiffuseColor2, p.opts.DisabledAltColor)
	p.disabled.SetFloat(UniformWidth, 50)
	p.disabled.SetFloat(UniformOpacity, 0.6)

	p.initialized = true
	p.log.Debug("layer view shaders created", zap.Stringer("tier", p.tier))
	return nil
}

// layerPrograms returns the layer variants that exist for the tier.
func (p *Pass) layerPrograms() map[Variant]shader.Program {
	progs := map[Variant]shader.Program{Primary: p.primary, Shadow: p.shadow}
	if p.flat != nil {
		progs[Flat] = p.flat
	}
	return progs
}

func (p *Pass) program(v Variant) shader.Program {
	switch v {
	case Shadow:
		return p.shadow
	case Flat:
		if p.flat != nil {
			return p.flat
		}
	}
	return p.primary
}

// syncUniforms pushes the view state to every layer variant so switching
// variants mid-session never shows stale values.
func (p *Pass) syncUniforms(st State) {
	set := uniformsFrom(st)
	extruder := activeExtruder(st.ActiveExtruder)

	for v, prog := range p.layerPrograms() {
		prog.SetFloat(UniformActiveExtruder, extruder)
		if !p.opts.Capabilities.Compatibility {
			prog.SetVec4(UniformStartsColor, p.opts.StartsColor)
		}
		set.apply(prog, v == Shadow)
	}
}

func (p *Pass) resolutionFor(s Scene) int32 {
	if p.resolution != nil {
		return int32(*p.resolution)
	}
	return int32(ResolutionFor(s.Cameras().Active()))
}

// frame is the per-frame scratch state of Render.
type frame struct {
	state  State
	ride   bool
	head   *math.Vec3
	nozzle scene.Nozzle
}

// Render draws one frame.
func (p *Pass) Render() error {
	if err := p.ensureShaders(); err != nil {
		return err
	}

	f := frame{}
	if p.deps.View != nil {
		f.state = p.deps.View.State()
		p.syncUniforms(f.state)
	}
	st := &f.state

	p.deps.Target.Bind()
	defer p.deps.Target.Release()

	cams := p.deps.Scene.Cameras()

	toolHandles := renderer.NewBatch(p.toolHandle, renderer.Overlay)
	toolHandles.BackfaceCull = true
	disabled := renderer.NewBatch(p.disabled, renderer.Solid)

	f.ride = p.sw.oldPath != st.CurrentPath && p.deps.Keyboard != nil && p.deps.Keyboard.FollowModifierHeld()
	if !f.ride {
		p.follow.restore(cams)
	}

	p.pathInfo = ""

	var err error
	scene.Walk(p.deps.Scene.Root(), func(n scene.Node) bool {
		switch node := n.(type) {
		case scene.ToolHandle:
			toolHandles.Add(node.SolidMesh(), node.WorldTransform())

		case scene.Nozzle:
			// Drawn separately once the head position is known.
			f.nozzle = node
			node.SetVisible(false)

		case scene.Decorated:
			d := node.Decorations()
			m := node.MeshData()
			switch {
			case d.OutsideBuildArea && m != nil && node.Visible() && !d.NonPrinting:
				disabled.Add(m, node.WorldTransform())
			case (m != nil || d.BlockSlicing) && node.Visible():
				if d.LayerData == nil {
					return true
				}
				if err = p.renderNode(&f, node, d.LayerData); err != nil {
					return false
				}
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	if !p.sw.switching && !p.opts.Capabilities.Compatibility && st.Activity && f.nozzle != nil {
		if f.head != nil && !f.ride {
			f.nozzle.SetVisible(true)
			f.nozzle.SetPosition(*f.head)
			b := renderer.NewBatch(p.nozzle, renderer.Transparent)
			b.Add(f.nozzle.NozzleMesh(), f.nozzle.WorldTransform())
			if err := b.Render(p.deps.Drawer, cams.Active()); err != nil {
				return fmt.Errorf("render nozzle: %w", err)
			}
		}
	}

	if p.deps.Listener != nil {
		p.deps.Listener.CurrentPathInfoChanged(p.pathInfo)
	}

	if err := disabled.Render(p.deps.Drawer, cams.Active()); err != nil {
		return fmt.Errorf("render disabled meshes: %w", err)
	}
	// Tool handles go last so they draw on top of the layers.
	if err := toolHandles.Render(p.deps.Drawer, cams.Active()); err != nil {
		return fmt.Errorf("render tool handles: %w", err)
	}

	return nil
}

// renderNode draws the layers of one node: everything below the current
// layer, the current layer up to the current path, then the view's
// unranged current layer meshes.
func (p *Pass) renderNode(f *frame, node scene.Decorated, data *layer.Data) error {
	st := &f.state
	cams := p.deps.Scene.Cameras()
	transform := node.WorldTransform()

	if rangedRendering(*st, p.opts.Capabilities.Compatibility) {
		r := SelectRanges(data.ElementCounts(), st.CurrentLayer, st.CurrentPath, st.MinimumLayer, data.TotalElements())

		var trail *math.Vec3
		if l, ok := data.Layer(st.CurrentLayer); ok {
			origin := node.WorldPosition()
			if h, ok := LocateHead(l, st.CurrentPath, origin); ok {
				head := h.Position
				f.head = &head
				if st.DisplayLineDetails && h.HasSegment {
					p.pathInfo = DescribeSegment(h.Segment)
				}
				if prev, ok := h.Previous(origin); ok && f.ride {
					pos := trailPosition(head, prev, p.opts.TrailDistance)
					trail = &pos
				}
			}
		}

		p.sw.advance(st.CurrentLayer, st.CurrentPath, st.Running)

		if f.ride && trail != nil {
			if err := p.follow.ride(cams, *f.head, *trail); err != nil {
				return fmt.Errorf("follow nozzle: %w", err)
			}
			// Shadows only matter for depth-style colour schemes.
			if st.ViewType == MaterialColor {
				p.sw.current = Primary
			}
		}

		p.sw.current = selectFlat(p.sw.current, flatInput{
			hasFlat:  p.flat != nil,
			elements: r.End - r.Start,
			max:      p.max3D,
		})
		current := p.program(p.sw.current)
		if p.sw.current == Flat {
			current.SetInt(UniformResolution, p.resolutionFor(p.deps.Scene))
		}

		data.UpdatePrevLineTypes()

		constrained := p.tier == TierConstrained
		if !constrained || p.sw.current != Shadow || f.ride {
			below := renderer.NewBatch(current, renderer.Solid).WithRange(r.Start, r.End)
			below.Mode = renderer.Lines
			below.BackfaceCull = !constrained || p.sw.current == Shadow
			below.Add(data, transform)
			if err := below.Render(p.deps.Drawer, cams.Active()); err != nil {
				return fmt.Errorf("render layers: %w", err)
			}
		}

		currentLayer := renderer.NewBatch(p.primary, renderer.Solid).WithRange(r.CurrentStart, r.CurrentEnd)
		currentLayer.Mode = renderer.Lines
		currentLayer.Add(data, transform)
		if err := currentLayer.Render(p.deps.Drawer, cams.Active()); err != nil {
			return fmt.Errorf("render current layer: %w", err)
		}

		p.sw.commit(st.CurrentLayer, st.CurrentPath)
	}

	unranged := renderer.NewBatch(p.primary, renderer.Solid)
	unranged.Add(st.CurrentLayerMesh, transform)
	unranged.Add(st.CurrentLayerJumps, transform)
	if err := unranged.Render(p.deps.Drawer, cams.Active()); err != nil {
		return fmt.Errorf("render current layer meshes: %w", err)
	}
	return nil
}
