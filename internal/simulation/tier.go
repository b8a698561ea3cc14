package simulation

import (
	"github.com/Faultbox/layerview/internal/engine/camera"
)

// Tier is a hardware capability class.
type Tier int

const (
	TierCompatibility Tier = iota
	TierStandard
	TierConstrained
)

func (t Tier) String() string {
	switch t {
	case TierCompatibility:
		return "compatibility"
	case TierStandard:
		return "standard-3d"
	case TierConstrained:
		return "constrained-3d"
	}
	return "unknown"
}

// Capabilities describes the graphics device.
type Capabilities struct {
	Compatibility  bool // legacy GL, no 3D line shaders
	GeometryShader bool // GLES device with geometry shaders: use simplified shaders
	HighTier       bool // faster constrained device: triple element budget, full resolution
	HighTierShader bool // use the high tier primary shader
}

// SelectTier picks the shader tier.
func SelectTier(c Capabilities) Tier {
	switch {
	case c.Compatibility:
		return TierCompatibility
	case c.GeometryShader:
		return TierConstrained
	default:
		return TierStandard
	}
}

// Logical shader names. They name files shipped with the pass.
const (
	ShaderLayers              = "layers"
	ShaderLayersShadow        = "layers_shadow"
	ShaderLayers3D            = "layers3d"
	ShaderLayers3DShadow      = "layers3d_shadow"
	ShaderConstrained3D       = "pi4_layers3d"
	ShaderConstrainedHigh3D   = "pi5_layers3d"
	ShaderConstrained2D       = "pi4_layers2d"
	ShaderConstrained2DShadow = "pi4_layers2d_shadow"
	ShaderToolHandle          = "toolhandle"
	ShaderNozzle              = "color"
	ShaderDisabled            = "striped"
)

// ShaderNames lists the layer shaders of a tier. Flat is empty when the
// tier has no 2D fallback.
type ShaderNames struct {
	Primary string
	Shadow  string
	Flat    string
}

// ShadersFor returns the layer shader names for the device.
func ShadersFor(c Capabilities) ShaderNames {
	switch SelectTier(c) {
	case TierCompatibility:
		return ShaderNames{Primary: ShaderLayers, Shadow: ShaderLayersShadow}
	case TierConstrained:
		primary := ShaderConstrained3D
		if c.HighTierShader {
			primary = ShaderConstrainedHigh3D
		}
		return ShaderNames{
			Primary: primary,
			Shadow:  ShaderConstrained2DShadow,
			Flat:    ShaderConstrained2D,
		}
	default:
		return ShaderNames{Primary: ShaderLayers3D, Shadow: ShaderLayers3DShadow}
	}
}

// DefaultMax3DElements is the element budget of the 3D shader on
// constrained devices before falling back to 2D.
const DefaultMax3DElements = 500000

// Max3DElements resolves the element budget. Any explicit override wins;
// zero or less always selects the 2D shader.
func Max3DElements(override *int, c Capabilities) int {
	if override != nil {
		return *override
	}
	if c.HighTier {
		return DefaultMax3DElements * 3
	}
	return DefaultMax3DElements
}

// ResolutionOverride resolves the configured 2D fallback resolution. Nil
// means the camera heuristic decides.
func ResolutionOverride(override *int, c Capabilities) *int {
	if override != nil {
		v := *override
		return &v
	}
	if c.HighTier {
		v := 1
		return &v
	}
	return nil
}

const (
	farCameraDistance = 200.0
	farZoomFactor     = -0.45
)

// ResolutionFor returns the 2D fallback detail level for a camera: 0 when
// the camera is far away or zoomed out, otherwise 1.
func ResolutionFor(cam *camera.Camera) int {
	if cam == nil {
		return 1
	}
	if cam.Perspective {
		if cam.WorldPosition().Length() > farCameraDistance {
			return 0
		}
		return 1
	}
	if cam.ZoomFactor > farZoomFactor {
		return 0
	}
	return 1
}

// Variant is one of the layer shaders of a tier.
type Variant int

const (
	Primary Variant = iota
	Shadow
	Flat
)

func (v Variant) String() string {
	switch v {
	case Primary:
		return "primary"
	case Shadow:
		return "shadow"
	case Flat:
		return "flat"
	}
	return "unknown"
}

// switchState is the bookkeeping that survives between frames.
type switchState struct {
	oldLayer  int
	oldPath   int
	switching bool // moving across layers rather than paths
	current   Variant
}

func newSwitchState() switchState {
	return switchState{switching: true, current: Primary}
}

// reset forces a fresh full brightness draw.
func (s *switchState) reset() {
	s.switching = true
	s.oldLayer = 0
	s.oldPath = 0
}

// advance applies the layer/path change triggers. A path change dims the
// layers below; a layer change while not auto-playing restores them.
func (s *switchState) advance(layer, path int, running bool) {
	if s.oldPath != path {
		s.current = Shadow
		s.switching = false
	}
	if !running && s.oldLayer != layer {
		s.current = Primary
		s.switching = true
	}
}

// commit records the state drawn this frame.
func (s *switchState) commit(layer, path int) {
	s.oldLayer = layer
	s.oldPath = path
}

// flatInput decides between the 3D and 2D shader on constrained tiers.
type flatInput struct {
	hasFlat  bool
	elements int
	max      int
}

// selectFlat applies the element budget. The shadow variant is never replaced.
func selectFlat(cur Variant, in flatInput) Variant {
	if !in.hasFlat || cur == Shadow {
		return cur
	}
	if in.elements < in.max {
		return Primary
	}
	return Flat
}
