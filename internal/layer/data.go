package layer

import (
	"fmt"
	"slices"

	"github.com/Faultbox/layerview/internal/engine/mesh"
)

// Shader attribute names for the layer buffers.
const (
	AttrLineType     = "a_line_type"
	AttrPrevLineType = "a_prev_line_type"
	AttrFeedrate     = "a_feedrate"
	AttrLineWidth    = "a_line_width"
	AttrThickness    = "a_thickness"
)

// Data owns the layers of one printed object and the flat GPU buffers built
// from them. Vertices are laid out layer by layer in ascending layer order,
// polygons in their original order, so an index range selects whole lines.
// Data is immutable after NewData except for the derived previous line types.
type Data struct {
	layers  map[int]*Layer
	numbers []int
	counts  map[int]int
	total   int

	positions   []float32
	indices     []uint32
	lineTypes   []float32
	feedrates   []float32
	widths      []float32
	thicknesses []float32

	prevLineTypes []float32
	prevRevision  uint64
}

// NewData builds layer data. Layer numbers must be unique.
func NewData(layers []Layer) (*Data, error) {
	d := &Data{
		layers: make(map[int]*Layer, len(layers)),
		counts: make(map[int]int, len(layers)),
	}

	for i := range layers {
		l := &layers[i]
		if _, dup := d.layers[l.Number]; dup {
			return nil, fmt.Errorf("duplicate layer %d", l.Number)
		}
		for j := range l.Polygons {
			if err := l.Polygons[j].validate(); err != nil {
				return nil, fmt.Errorf("layer %d polygon %d: %w", l.Number, j, err)
			}
		}
		d.layers[l.Number] = l
		d.numbers = append(d.numbers, l.Number)
	}
	slices.Sort(d.numbers)

	for _, n := range d.numbers {
		d.appendLayer(d.layers[n])
	}
	d.UpdatePrevLineTypes()

	return d, nil
}

func (d *Data) appendLayer(l *Layer) {
	for i := range l.Polygons {
		p := &l.Polygons[i]
		base := uint32(len(d.positions) / 3)
		for j, pt := range p.Points {
			d.positions = append(d.positions, pt.X, pt.Y, pt.Z)
			d.lineTypes = append(d.lineTypes, float32(p.Types[j]))
			d.feedrates = append(d.feedrates, p.Feedrates[j])
			d.widths = append(d.widths, p.Widths[j])
			d.thicknesses = append(d.thicknesses, p.Thicknesses[j])
		}
		for j := 0; j < p.LineCount(); j++ {
			d.indices = append(d.indices, base+uint32(j), base+uint32(j)+1)
		}
	}
	count := l.ElementCount()
	d.counts[l.Number] = count
	d.total += count
}

// Layer returns the layer with the given number.
func (d *Data) Layer(number int) (*Layer, bool) {
	l, ok := d.layers[number]
	return l, ok
}

// LayerNumbers returns the layer numbers in ascending order.
func (d *Data) LayerNumbers() []int {
	return d.numbers
}

// ElementCounts maps each layer number to its index buffer entry count.
// The returned map must not be modified.
func (d *Data) ElementCounts() map[int]int {
	return d.counts
}

// TotalElements returns the size of the index buffer.
func (d *Data) TotalElements() int {
	return d.total
}

// LineTypes returns the per-vertex line type buffer.
func (d *Data) LineTypes() []float32 {
	return d.lineTypes
}

// PrevLineTypes returns the derived previous line type buffer.
func (d *Data) PrevLineTypes() []float32 {
	return d.prevLineTypes
}

// UpdatePrevLineTypes recomputes the previous line type buffer in place.
// Line types never change after NewData, so the attribute revision only
// advances when the buffer is first derived.
func (d *Data) UpdatePrevLineTypes() {
	fresh := d.prevRevision == 0
	d.prevLineTypes = DerivePrevLineTypes(d.prevLineTypes, d.lineTypes)
	if fresh {
		d.prevRevision++
	}
}

// Positions implements mesh.Geometry.
func (d *Data) Positions() []float32 { return d.positions }

// Indices implements mesh.Geometry.
func (d *Data) Indices() []uint32 { return d.indices }

// Attributes implements mesh.Attributed.
func (d *Data) Attributes() []mesh.Attribute {
	return []mesh.Attribute{
		{Name: AttrLineType, Size: 1, Values: d.lineTypes, Revision: 1},
		{Name: AttrPrevLineType, Size: 1, Values: d.prevLineTypes, Revision: d.prevRevision},
		{Name: AttrFeedrate, Size: 1, Values: d.feedrates, Revision: 1},
		{Name: AttrLineWidth, Size: 1, Values: d.widths, Revision: 1},
		{Name: AttrThickness, Size: 1, Values: d.thicknesses, Revision: 1},
	}
}
