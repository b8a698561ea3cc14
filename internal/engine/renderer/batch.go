package renderer

import (
	"github.com/Faultbox/layerview/internal/engine/camera"
	"github.com/Faultbox/layerview/internal/engine/mesh"
	"github.com/Faultbox/layerview/internal/engine/shader"
	"github.com/Faultbox/layerview/pkg/math"
)

// RenderType orders batches and selects blend/depth state.
type RenderType int

const (
	Solid RenderType = iota
	Transparent
	Overlay
)

func (t RenderType) String() string {
	switch t {
	case Solid:
		return "solid"
	case Transparent:
		return "transparent"
	case Overlay:
		return "overlay"
	}
	return "unknown"
}

// Mode is the primitive type used to draw a batch.
type Mode int

const (
	Triangles Mode = iota
	Lines
)

// Range limits drawing to index buffer entries [Start, End).
type Range struct {
	Start int
	End   int
}

// Count returns the number of index entries covered, never negative.
func (r Range) Count() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Item is one geometry drawn with a model transform.
type Item struct {
	Geometry  mesh.Geometry
	Transform math.Mat4
}

// Batch is a list of geometries drawn with one shader and one state.
type Batch struct {
	Shader       shader.Program
	Type         RenderType
	Mode         Mode
	Range        *Range
	BackfaceCull bool
	Items        []Item
}

// NewBatch creates an empty batch.
func NewBatch(p shader.Program, t RenderType) *Batch {
	return &Batch{Shader: p, Type: t}
}

// WithRange limits every item to index entries [start, end).
func (b *Batch) WithRange(start, end int) *Batch {
	b.Range = &Range{Start: start, End: end}
	return b
}

// Add appends a geometry.
func (b *Batch) Add(g mesh.Geometry, transform math.Mat4) {
	if g == nil {
		return
	}
	b.Items = append(b.Items, Item{Geometry: g, Transform: transform})
}

// Empty reports whether the batch has nothing to draw.
func (b *Batch) Empty() bool {
	return len(b.Items) == 0
}

// Render submits the batch. Empty batches are skipped.
func (b *Batch) Render(d Drawer, cam *camera.Camera) error {
	if b.Empty() || b.Shader == nil {
		return nil
	}
	return d.Draw(b, cam)
}

// Drawer executes batches against a graphics backend.
type Drawer interface {
	Draw(b *Batch, cam *camera.Camera) error
}
