// Package simulation implements the layer view render pass: range-limited
// drawing of sliced layers, shader tier selection, print head tracking and
// the nozzle follow camera.
package simulation

import (
	"github.com/Faultbox/layerview/internal/engine/camera"
	"github.com/Faultbox/layerview/internal/engine/mesh"
	"github.com/Faultbox/layerview/internal/engine/scene"
	"github.com/Faultbox/layerview/internal/engine/shader"
	"github.com/Faultbox/layerview/pkg/math"
)

// ViewType is the colour scheme of the layer shaders.
type ViewType int32

const (
	MaterialColor ViewType = iota
	LineTypeColor
	FeedrateColor
	ThicknessColor
	LineWidthColor
	FlowRateColor
)

// Bounds is a min/max range of a per-line quantity.
type Bounds struct {
	Min float64
	Max float64
}

// State is the playback state read from the view each frame.
type State struct {
	CurrentLayer int
	CurrentPath  int
	MinimumLayer int

	ViewType        ViewType
	ExtruderOpacity math.Mat4

	ShowTravelMoves bool
	ShowHelpers     bool
	ShowSkin        bool
	ShowInfill      bool
	ShowStarts      bool

	Feedrate  Bounds
	Thickness Bounds
	LineWidth Bounds
	FlowRate  Bounds

	OnlyShowTopLayers  bool
	Running            bool // auto-play
	Activity           bool // something was sliced and is being shown
	DisplayLineDetails bool

	// ActiveExtruder is -1 on single extrusion printers.
	ActiveExtruder int

	CurrentLayerMesh  mesh.Geometry
	CurrentLayerJumps mesh.Geometry
}

// View is the controller owning playback state.
type View interface {
	State() State
}

// PathInfoListener receives the description of the highlighted segment once
// per frame. The string is empty when nothing is highlighted.
type PathInfoListener interface {
	CurrentPathInfoChanged(info string)
}

// Scene is the scene graph and its cameras.
type Scene interface {
	Root() scene.Node
	Cameras() *camera.Registry
}

// Keyboard answers modifier queries.
type Keyboard interface {
	FollowModifierHeld() bool
}

// ShaderProvider creates shader programs by logical name.
type ShaderProvider interface {
	Program(name string) (shader.Program, error)
}

// Target is the render target the pass draws into.
type Target interface {
	Bind()
	Release()
}
