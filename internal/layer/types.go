// Package layer holds the per-layer toolpath geometry produced by the slicer
// and the flat attribute buffers the layer shaders read.
package layer

// LineType classifies a toolpath segment. Values match the shader contract.
type LineType int32

// Line types.
const (
	NoneType LineType = iota
	OuterWallType
	InnerWallType
	SkinType
	SupportType
	SkirtBrimType
	InfillType
	SupportInfillType
	MoveCombingType
	MoveRetractionType
	SupportInterfaceType
	PrimeTowerType
)

var lineTypeLabels = [...]string{
	"None",
	"Outer wall",
	"Inner wall",
	"Skin",
	"Support",
	"Skirt/Brim",
	"Infill",
	"Support infill",
	"Travel",
	"Travel (retracted)",
	"Support interface",
	"Prime tower",
}

// String returns the human readable label shown in path details.
func (t LineType) String() string {
	if t < 0 || int(t) >= len(lineTypeLabels) {
		return "Unknown"
	}
	return lineTypeLabels[t]
}

// IsTravel reports whether the type is a non-extruding move.
func (t LineType) IsTravel() bool {
	return t == MoveCombingType || t == MoveRetractionType
}
