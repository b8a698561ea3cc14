package scene

import (
	"github.com/Faultbox/layerview/internal/engine/mesh"
	"github.com/Faultbox/layerview/internal/layer"
	"github.com/Faultbox/layerview/pkg/math"
)

// Node is an element of the scene graph.
type Node interface {
	Name() string
	Visible() bool
	WorldTransform() math.Mat4
	WorldPosition() math.Vec3
	Children() []Node
}

// ToolHandle is a manipulation gizmo drawn on top of everything else.
type ToolHandle interface {
	Node
	SolidMesh() mesh.Geometry
}

// Nozzle is the print head marker. Its position is driven by the layer view.
type Nozzle interface {
	Node
	NozzleMesh() mesh.Geometry
	SetVisible(visible bool)
	SetPosition(p math.Vec3)
}

// Decorated is a mesh node carrying slicing decorations.
type Decorated interface {
	Node
	MeshData() mesh.Geometry
	Decorations() Decorations
}

// Decorations are the per-node flags set by the slicing pipeline.
type Decorations struct {
	OutsideBuildArea bool
	NonPrinting      bool
	BlockSlicing     bool
	LayerData        *layer.Data
}

type attachable interface {
	base() *Base
}

// Base implements the Node plumbing shared by every concrete node.
// Transforms are translations relative to the parent.
type Base struct {
	name     string
	visible  bool
	position math.Vec3
	parent   Node
	children []Node
}

func newBase(name string) *Base {
	return &Base{name: name, visible: true}
}

func (b *Base) base() *Base { return b }

// Name returns the node name.
func (b *Base) Name() string { return b.name }

// Visible reports whether the node is drawn.
func (b *Base) Visible() bool { return b.visible }

// SetVisible shows or hides the node.
func (b *Base) SetVisible(visible bool) { b.visible = visible }

// Position returns the local position.
func (b *Base) Position() math.Vec3 { return b.position }

// SetPosition sets the local position.
func (b *Base) SetPosition(p math.Vec3) { b.position = p }

// WorldPosition returns the position in scene coordinates.
func (b *Base) WorldPosition() math.Vec3 {
	if b.parent == nil {
		return b.position
	}
	return b.parent.WorldPosition().Add(b.position)
}

// WorldTransform returns the model matrix.
func (b *Base) WorldTransform() math.Mat4 {
	return math.Translate(b.WorldPosition())
}

// Children returns the direct children.
func (b *Base) Children() []Node { return b.children }

// AddChild attaches child. Nodes not built by this package are ignored.
func (b *Base) AddChild(child Node) {
	a, ok := child.(attachable)
	if !ok {
		return
	}
	a.base().parent = b
	b.children = append(b.children, child)
}

// Group is a node without geometry.
type Group struct {
	*Base
}

// NewGroup creates a group node.
func NewGroup(name string) *Group {
	return &Group{Base: newBase(name)}
}

// ToolHandleNode is a tool handle with a solid mesh.
type ToolHandleNode struct {
	*Base
	mesh mesh.Geometry
}

// NewToolHandle creates a tool handle.
func NewToolHandle(name string, m mesh.Geometry) *ToolHandleNode {
	return &ToolHandleNode{Base: newBase(name), mesh: m}
}

// SolidMesh implements ToolHandle.
func (n *ToolHandleNode) SolidMesh() mesh.Geometry { return n.mesh }

// NozzleNode marks the print head.
type NozzleNode struct {
	*Base
	mesh mesh.Geometry
}

// NewNozzle creates a nozzle marker.
func NewNozzle(name string, m mesh.Geometry) *NozzleNode {
	return &NozzleNode{Base: newBase(name), mesh: m}
}

// NozzleMesh implements Nozzle.
func (n *NozzleNode) NozzleMesh() mesh.Geometry { return n.mesh }

// MeshNode is a printable object.
type MeshNode struct {
	*Base
	mesh        mesh.Geometry
	decorations Decorations
}

// NewMesh creates a mesh node. m may be nil for block-slicing nodes.
func NewMesh(name string, m mesh.Geometry) *MeshNode {
	return &MeshNode{Base: newBase(name), mesh: m}
}

// MeshData implements Decorated.
func (n *MeshNode) MeshData() mesh.Geometry { return n.mesh }

// Decorations implements Decorated.
func (n *MeshNode) Decorations() Decorations { return n.decorations }

// SetDecorations replaces the decorations.
func (n *MeshNode) SetDecorations(d Decorations) { n.decorations = d }

// SetLayerData attaches sliced layers.
func (n *MeshNode) SetLayerData(d *layer.Data) { n.decorations.LayerData = d }
