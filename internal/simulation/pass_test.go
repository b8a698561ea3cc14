package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/layerview/internal/engine/camera"
	"github.com/Faultbox/layerview/internal/engine/mesh"
	"github.com/Faultbox/layerview/internal/engine/renderer"
	"github.com/Faultbox/layerview/internal/engine/scene"
	"github.com/Faultbox/layerview/internal/layer"
	"github.com/Faultbox/layerview/pkg/math"
)

type fixture struct {
	scene   *scene.Scene
	view    *fakeView
	keys    *fakeKeyboard
	shaders *fakeShaders
	j       *journal
	pass    *Pass

	data    *layer.Data
	print   *scene.MeshNode
	outside *scene.MeshNode
	nozzle  *scene.NozzleNode
	handle  *scene.ToolHandleNode
}

// newFixture builds a scene with a tool handle, an out-of-area mesh, a
// sliced print (layer 0: 24 elements, layer 1: 4, layer 2: 6) and a nozzle.
func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	data, err := layer.NewData([]layer.Layer{
		*threePolygons(),
		{Number: 1, Polygons: []layer.Polygon{polyline(3, 0, 0.4, layer.OuterWallType)}},
		{Number: 2, Polygons: []layer.Polygon{polyline(4, 0, 0.6, layer.OuterWallType)}},
	})
	require.NoError(t, err)
	require.Equal(t, 34, data.TotalElements())

	box := mesh.Box(math.Vec3{}, math.Vec3{X: 10, Y: 10, Z: 10})

	f := &fixture{
		scene:   scene.New(camera.New("3d")),
		view:    &fakeView{state: baseState()},
		keys:    &fakeKeyboard{},
		shaders: newFakeShaders(),
		j:       &journal{},
		data:    data,
		print:   scene.NewMesh("print", box),
		outside: scene.NewMesh("outside", box),
		nozzle:  scene.NewNozzle("nozzle", mesh.Nozzle(2, 0.5)),
		handle:  scene.NewToolHandle("handle", box),
	}
	f.print.SetLayerData(data)
	f.outside.SetDecorations(scene.Decorations{OutsideBuildArea: true})

	f.scene.Add(f.handle)
	f.scene.Add(f.outside)
	f.scene.Add(f.print)
	f.scene.Add(f.nozzle)

	f.pass = New(Deps{
		Scene:    f.scene,
		View:     f.view,
		Shaders:  f.shaders,
		Drawer:   f.j,
		Target:   f.j,
		Keyboard: f.keys,
		Listener: f.j,
	}, opts)
	return f
}

func baseState() State {
	return State{
		ExtruderOpacity: math.Filled(1),
		ShowHelpers:     true,
		ShowSkin:        true,
		ShowInfill:      true,
		ShowStarts:      true,
		Feedrate:        Bounds{Min: 30, Max: 30},
		Thickness:       Bounds{Min: 0.2, Max: 0.6},
		LineWidth:       Bounds{Min: 0.4, Max: 0.4},
		FlowRate:        Bounds{Min: 0, Max: 2.4},
		Activity:        true,
		ActiveExtruder:  -1,
	}
}

func (f *fixture) render(t *testing.T) {
	t.Helper()
	f.j.reset()
	require.NoError(t, f.pass.Render())
}

func TestRenderOrder(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.view.state.CurrentPath = 3

	f.render(t)

	assert.Equal(t, []string{
		"bind",
		"draw layers3d_shadow", // layers below the current one
		"draw layers3d",        // current layer up to the path
		"draw color",           // nozzle
		"path info",
		"draw striped",    // out of build area
		"draw toolhandle", // always last
		"release",
	}, f.j.entries)

	below := f.j.drawsOf(ShaderLayers3DShadow)[0]
	assert.Equal(t, renderer.Lines, below.mode)
	assert.True(t, below.cull)
	assert.Equal(t, renderer.Range{Start: 0, End: 0}, *below.rng)

	current := f.j.drawsOf(ShaderLayers3D)[0]
	assert.Equal(t, renderer.Range{Start: 0, End: 6}, *current.rng)

	handle := f.j.drawsOf(ShaderToolHandle)[0]
	assert.Equal(t, renderer.Overlay, handle.typ)
	assert.True(t, handle.cull)

	nozzle := f.j.drawsOf(ShaderNozzle)[0]
	assert.Equal(t, renderer.Transparent, nozzle.typ)
	assert.True(t, f.nozzle.Visible())
	assert.Equal(t, math.Vec3{X: 3, Y: 0.2, Z: 2}, f.nozzle.Position())
}

func TestShadersCreatedOnce(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	f.render(t)
	f.render(t)

	assert.ElementsMatch(t, []string{
		ShaderLayers3D, ShaderLayers3DShadow, ShaderToolHandle, ShaderNozzle, ShaderDisabled,
	}, f.shaders.created)
	assert.Equal(t, TierStandard, f.pass.Tier())
}

func TestShaderErrorPropagates(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.shaders.fail = ShaderDisabled

	err := f.pass.Render()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ShaderDisabled)
	assert.Empty(t, f.j.entries)
}

func TestPathInfoPublishedOncePerFrame(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.view.state.DisplayLineDetails = true
	f.view.state.CurrentPath = 3

	f.render(t)
	want := "Outer wall;x=2, y=2, z=0.200;x=3, y=2, z=0.200;1;30;2.400;0.400;0.200"
	assert.Equal(t, []string{want}, f.j.infos)
	assert.Equal(t, want, f.pass.CurrentPathInfo())

	// Same state: identical description.
	f.render(t)
	assert.Equal(t, []string{want, want}, f.j.infos)

	// The first point of a layer has no arriving line.
	f.view.state.CurrentPath = 0
	f.render(t)
	assert.Equal(t, "", f.j.infos[2])

	f.view.state.CurrentPath = 3
	f.view.state.DisplayLineDetails = false
	f.render(t)
	assert.Equal(t, "", f.j.infos[3])
	assert.Len(t, f.j.infos, 4)
}

func TestLayerChangeRestoresPrimary(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	f.view.state.CurrentPath = 3
	f.render(t)
	assert.Equal(t, Shadow, f.pass.Variant())
	assert.False(t, f.pass.SwitchingLayers())

	f.view.state.CurrentLayer = 1
	f.render(t)
	assert.Equal(t, Primary, f.pass.Variant())
	assert.True(t, f.pass.SwitchingLayers())
	assert.Empty(t, f.j.drawsOf(ShaderNozzle), "nozzle hidden while switching layers")

	below := f.j.drawsOf(ShaderLayers3D)
	require.Len(t, below, 2)
	assert.Equal(t, renderer.Range{Start: 0, End: 24}, *below[0].rng)
	assert.Equal(t, renderer.Range{Start: 24, End: 30}, *below[1].rng)
}

func TestLayerChangeWhileRunningKeepsShadow(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	f.view.state.CurrentPath = 3
	f.render(t)

	f.view.state.Running = true
	f.view.state.CurrentLayer = 1
	f.view.state.CurrentPath = 1
	f.render(t)
	assert.Equal(t, Shadow, f.pass.Variant())
	assert.False(t, f.pass.SwitchingLayers())
}

func TestMinimumLayer(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.view.state.CurrentLayer = 2
	f.view.state.MinimumLayer = 1

	f.render(t)

	below := f.j.drawsOf(ShaderLayers3D)
	require.Len(t, below, 2)
	assert.Equal(t, renderer.Range{Start: 24, End: 28}, *below[0].rng)
	assert.Equal(t, renderer.Range{Start: 28, End: 28}, *below[1].rng)
}

func TestUniformsSynchronized(t *testing.T) {
	opts := DefaultOptions()
	opts.StartsColor = [4]float32{0.1, 0.2, 0.3, 1}
	f := newFixture(t, opts)
	f.view.state.ShowTravelMoves = true

	f.render(t)

	for _, name := range []string{ShaderLayers3D, ShaderLayers3DShadow} {
		p := f.shaders.programs[name]
		assert.Equal(t, float32(30.01), p.floats[UniformMaxFeedrate], name)
		assert.Equal(t, float32(30), p.floats[UniformMinFeedrate], name)
		assert.Equal(t, float32(0), p.floats[UniformActiveExtruder], name)
		assert.Equal(t, opts.StartsColor, p.vecs[UniformStartsColor], name)
		assert.Equal(t, int32(MaterialColor), p.ints[UniformLayerViewType], name)
	}
	assert.Equal(t, int32(1), f.shaders.programs[ShaderLayers3D].ints[UniformShowTravelMoves])
	assert.NotContains(t, f.shaders.programs[ShaderLayers3DShadow].ints, UniformShowTravelMoves)

	nozzle := f.shaders.programs[ShaderNozzle]
	assert.Equal(t, opts.NozzleColor, nozzle.vecs[UniformColor])

	striped := f.shaders.programs[ShaderDisabled]
	assert.Equal(t, opts.DisabledColor, striped.vecs[UniformDiffuseColor1])
	assert.Equal(t, opts.DisabledAltColor, striped.vecs[UniformDiffuseColor2])
	assert.Equal(t, float32(50), striped.floats[UniformWidth])
	assert.Equal(t, float32(0.6), striped.floats[UniformOpacity])
}

func TestCompatibilityMode(t *testing.T) {
	opts := DefaultOptions()
	opts.Capabilities.Compatibility = true
	f := newFixture(t, opts)
	f.view.state.CurrentPath = 3

	f.render(t)

	assert.Equal(t, TierCompatibility, f.pass.Tier())
	assert.Contains(t, f.shaders.created, ShaderLayers)
	assert.Contains(t, f.shaders.created, ShaderLayersShadow)
	assert.NotContains(t, f.shaders.programs[ShaderLayers].vecs, UniformStartsColor)
	assert.NotEmpty(t, f.j.drawsOf(ShaderLayers))
	assert.Empty(t, f.j.drawsOf(ShaderNozzle), "no nozzle in compatibility mode")

	// Top layers only: no ranged batches, just the view's layer meshes.
	f.view.state.OnlyShowTopLayers = true
	f.view.state.CurrentLayerMesh = mesh.Box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})
	f.render(t)

	layers := f.j.drawsOf(ShaderLayers)
	require.Len(t, layers, 1)
	assert.Nil(t, layers[0].rng)
	assert.Empty(t, f.j.drawsOf(ShaderLayersShadow))
}

func TestNoLayerSelected(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.view.state.CurrentLayer = -1
	f.view.state.CurrentLayerMesh = mesh.Box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})
	f.view.state.CurrentLayerJumps = mesh.Box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})

	f.render(t)

	layers := f.j.drawsOf(ShaderLayers3D)
	require.Len(t, layers, 1)
	assert.Nil(t, layers[0].rng)
	assert.Equal(t, 2, layers[0].items)
	assert.Empty(t, f.j.drawsOf(ShaderNozzle))
}

func TestConstrainedFlatFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.Capabilities.GeometryShader = true
	opts.Max3DElements = intPtr(1)
	f := newFixture(t, opts)
	f.view.state.CurrentLayer = 2

	f.render(t)

	assert.Equal(t, TierConstrained, f.pass.Tier())
	assert.Equal(t, Flat, f.pass.Variant())

	flat := f.j.drawsOf(ShaderConstrained2D)
	require.Len(t, flat, 1)
	assert.False(t, flat[0].cull)
	assert.Equal(t, renderer.Range{Start: 0, End: 28}, *flat[0].rng)
	// The default camera sits more than 200mm from the origin.
	assert.Equal(t, int32(0), f.shaders.programs[ShaderConstrained2D].ints[UniformResolution])

	current := f.j.drawsOf(ShaderConstrained3D)
	require.Len(t, current, 1)
	assert.Equal(t, renderer.Range{Start: 28, End: 28}, *current[0].rng)
}

func TestConstrainedResolutionOverride(t *testing.T) {
	opts := DefaultOptions()
	opts.Capabilities.GeometryShader = true
	opts.Capabilities.HighTier = true
	opts.Capabilities.HighTierShader = true
	opts.Max3DElements = intPtr(1)
	f := newFixture(t, opts)
	f.view.state.CurrentLayer = 2

	f.render(t)

	assert.Contains(t, f.shaders.created, ShaderConstrainedHigh3D)
	assert.Equal(t, int32(1), f.shaders.programs[ShaderConstrained2D].ints[UniformResolution])
}

func TestConstrainedUnderBudget(t *testing.T) {
	opts := DefaultOptions()
	opts.Capabilities.GeometryShader = true
	f := newFixture(t, opts)
	f.view.state.CurrentLayer = 2

	f.render(t)

	assert.Equal(t, Primary, f.pass.Variant())
	assert.Len(t, f.j.drawsOf(ShaderConstrained3D), 2)
	assert.Empty(t, f.j.drawsOf(ShaderConstrained2D))
}

func TestConstrainedZeroBudgetAlwaysFlat(t *testing.T) {
	opts := DefaultOptions()
	opts.Capabilities.GeometryShader = true
	opts.Max3DElements = intPtr(0)
	f := newFixture(t, opts)
	f.view.state.CurrentLayer = 1

	f.render(t)

	assert.Equal(t, Flat, f.pass.Variant())
	flat := f.j.drawsOf(ShaderConstrained2D)
	require.Len(t, flat, 1)
	assert.Equal(t, renderer.Range{Start: 0, End: 24}, *flat[0].rng)
}

func TestConstrainedShadowSkipsLowerLayers(t *testing.T) {
	opts := DefaultOptions()
	opts.Capabilities.GeometryShader = true
	f := newFixture(t, opts)
	f.view.state.CurrentPath = 3

	f.render(t)

	assert.Equal(t, Shadow, f.pass.Variant())
	assert.Empty(t, f.j.drawsOf(ShaderConstrained2DShadow))
	assert.Len(t, f.j.drawsOf(ShaderConstrained3D), 1)
}

func TestFollowCamera(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.scene.Cameras().Active().Perspective = false
	f.keys.alt = true
	f.view.state.CurrentPath = 3

	f.render(t)

	reg := f.scene.Cameras()
	cam := reg.Active()
	require.Equal(t, "nozzle_cam", cam.Name)
	assert.True(t, cam.Perspective)
	assert.False(t, reg.Find("3d").Perspective, "source camera untouched")

	// Head at (3, 0.2, 2) arriving from (2, 0.2, 2): 5mm behind, 1mm up.
	assert.InDelta(t, -2, cam.Position.X, 1e-5)
	assert.InDelta(t, 1.2, cam.Position.Y, 1e-5)
	assert.InDelta(t, 2, cam.Position.Z, 1e-5)
	assert.InDelta(t, 3, cam.Target.X, 1e-5)
	assert.InDelta(t, 1.2, cam.Target.Y, 1e-5)

	assert.Empty(t, f.j.drawsOf(ShaderNozzle), "camera would sit inside the nozzle")
	// Material colour ignores the shadow while riding.
	assert.Equal(t, Primary, f.pass.Variant())
	for _, d := range f.j.draws {
		assert.Equal(t, "nozzle_cam", d.camera)
	}

	// Path unchanged: back to the default camera.
	f.render(t)
	assert.Equal(t, "3d", reg.Active().Name)

	// Stepping again reuses the camera.
	f.view.state.CurrentPath = 4
	f.render(t)
	assert.Equal(t, "nozzle_cam", reg.Active().Name)
	assert.Equal(t, 2, reg.Len())
}

func TestFollowCameraKeepsShadowForLineTypes(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.keys.alt = true
	f.view.state.ViewType = LineTypeColor
	f.view.state.CurrentPath = 3

	f.render(t)

	assert.Equal(t, "nozzle_cam", f.scene.Cameras().Active().Name)
	assert.Equal(t, Shadow, f.pass.Variant())
}

func TestNoRideWithoutModifier(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.view.state.CurrentPath = 3

	f.render(t)

	assert.Equal(t, "3d", f.scene.Cameras().Active().Name)
	assert.Nil(t, f.scene.Cameras().Find("nozzle_cam"))
}

func TestOnSceneChanged(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.view.state.CurrentPath = 3
	f.render(t)
	require.False(t, f.pass.SwitchingLayers())

	f.pass.OnSceneChanged(f.handle)
	assert.False(t, f.pass.SwitchingLayers(), "nodes without layer data are ignored")

	f.pass.OnSceneChanged(f.print)
	assert.True(t, f.pass.SwitchingLayers())
	assert.Zero(t, f.pass.sw.oldLayer)
	assert.Zero(t, f.pass.sw.oldPath)
}

func TestSceneChangeNotification(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.scene.OnChanged(f.pass.OnSceneChanged)
	f.view.state.CurrentPath = 3
	f.render(t)

	f.scene.Changed(f.print)
	assert.True(t, f.pass.SwitchingLayers())
}

func TestNodesWithoutLayerDataSkipped(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.print.SetLayerData(nil)
	f.view.state.CurrentPath = 3

	f.render(t)

	assert.Equal(t, []string{"bind", "path info", "draw striped", "draw toolhandle", "release"}, f.j.entries)
}

func TestDisabledBatchFilter(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	hidden := scene.NewMesh("hidden", mesh.Box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}))
	hidden.SetDecorations(scene.Decorations{OutsideBuildArea: true})
	hidden.SetVisible(false)
	support := scene.NewMesh("support blocker", mesh.Box(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}))
	support.SetDecorations(scene.Decorations{OutsideBuildArea: true, NonPrinting: true})
	f.scene.Add(hidden)
	f.scene.Add(support)

	f.render(t)

	striped := f.j.drawsOf(ShaderDisabled)
	require.Len(t, striped, 1)
	assert.Equal(t, 1, striped[0].items)
}

func TestPrevLineTypesDerived(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.render(t)

	prev := f.data.PrevLineTypes()
	types := f.data.LineTypes()
	require.Len(t, prev, len(types))
	assert.Equal(t, float32(layer.MoveCombingType), prev[0])
	for i := 1; i < len(types); i++ {
		assert.Equal(t, types[i-1], prev[i])
	}
}

func TestRenderWithoutView(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.pass.deps.View = nil

	f.render(t)

	p := f.shaders.programs[ShaderLayers3D]
	assert.Equal(t, float32(1), p.floats[UniformMaxFeedrate])
	assert.Equal(t, int32(1), p.ints[UniformLayerViewType])
}
