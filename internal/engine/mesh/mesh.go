// Package mesh defines the geometry consumed by the batch renderer.
package mesh

import "github.com/Faultbox/layerview/pkg/math"

// Geometry is indexed vertex data. Positions holds xyz triplets.
type Geometry interface {
	Positions() []float32
	Indices() []uint32
}

// Attribute is an extra per-vertex float attribute bound by name.
// Revision changes whenever Values is rewritten so GPU copies can be refreshed.
type Attribute struct {
	Name     string // shader attribute name, e.g. "a_line_type"
	Size     int32  // components per vertex
	Values   []float32
	Revision uint64
}

// Attributed is implemented by geometry that carries extra attributes.
type Attributed interface {
	Attributes() []Attribute
}

// Mesh is a plain indexed triangle or line mesh.
type Mesh struct {
	positions []float32
	indices   []uint32
}

// New creates a mesh from raw buffers.
func New(positions []float32, indices []uint32) *Mesh {
	return &Mesh{positions: positions, indices: indices}
}

// Positions implements Geometry.
func (m *Mesh) Positions() []float32 { return m.positions }

// Indices implements Geometry.
func (m *Mesh) Indices() []uint32 { return m.indices }

// VertexCount returns the number of xyz vertices.
func (m *Mesh) VertexCount() int { return len(m.positions) / 3 }

// Box creates a solid axis-aligned box (12 triangles).
func Box(min, max math.Vec3) *Mesh {
	positions := []float32{
		min.X, min.Y, min.Z, // 0
		max.X, min.Y, min.Z, // 1
		max.X, min.Y, max.Z, // 2
		min.X, min.Y, max.Z, // 3
		min.X, max.Y, min.Z, // 4
		max.X, max.Y, min.Z, // 5
		max.X, max.Y, max.Z, // 6
		min.X, max.Y, max.Z, // 7
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // bottom
		4, 5, 6, 4, 6, 7, // top
		0, 1, 5, 0, 5, 4, // back
		3, 6, 2, 3, 7, 6, // front
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
	}
	return New(positions, indices)
}

// Nozzle creates an upside-down square pyramid with its tip at the origin,
// used as the print head marker.
func Nozzle(height, halfWidth float32) *Mesh {
	h, w := height, halfWidth
	positions := []float32{
		0, 0, 0, // tip
		-w, h, -w,
		w, h, -w,
		w, h, w,
		-w, h, w,
	}
	indices := []uint32{
		0, 2, 1,
		0, 3, 2,
		0, 4, 3,
		0, 1, 4,
		1, 2, 3, 1, 3, 4, // cap
	}
	return New(positions, indices)
}
