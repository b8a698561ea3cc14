package layer

import (
	"fmt"

	"github.com/Faultbox/layerview/pkg/math"
)

// Polygon is one continuous toolpath within a layer. The per-point slices are
// parallel to Points; entry i describes the line that ends at point i+1.
type Polygon struct {
	Points      []math.Vec3
	Types       []LineType
	Feedrates   []float32 // mm/s
	Widths      []float32 // mm
	Thicknesses []float32 // mm
}

// PointCount returns the number of points.
func (p *Polygon) PointCount() int {
	return len(p.Points)
}

// LineCount returns the number of line segments joining consecutive points.
func (p *Polygon) LineCount() int {
	if len(p.Points) < 2 {
		return 0
	}
	return len(p.Points) - 1
}

// ElementCount returns the number of index buffer entries the polygon uses.
// Every line references two vertices.
func (p *Polygon) ElementCount() int {
	return p.LineCount() * 2
}

// Segment describes the line arriving at point i (i > 0).
type Segment struct {
	From, To  math.Vec3
	Type      LineType
	Feedrate  float32
	Width     float32
	Thickness float32
}

// Flow returns the volumetric flow of the segment: feedrate * width * thickness.
func (s Segment) Flow() float32 {
	return s.Feedrate * s.Width * s.Thickness
}

// SegmentTo returns the line that ends at point i.
func (p *Polygon) SegmentTo(i int) (Segment, bool) {
	if i <= 0 || i >= len(p.Points) {
		return Segment{}, false
	}
	return Segment{
		From:      p.Points[i-1],
		To:        p.Points[i],
		Type:      p.Types[i-1],
		Feedrate:  p.Feedrates[i-1],
		Width:     p.Widths[i-1],
		Thickness: p.Thicknesses[i-1],
	}, true
}

func (p *Polygon) validate() error {
	n := len(p.Points)
	switch {
	case len(p.Types) != n:
		return fmt.Errorf("types: got %d entries for %d points", len(p.Types), n)
	case len(p.Feedrates) != n:
		return fmt.Errorf("feedrates: got %d entries for %d points", len(p.Feedrates), n)
	case len(p.Widths) != n:
		return fmt.Errorf("widths: got %d entries for %d points", len(p.Widths), n)
	case len(p.Thicknesses) != n:
		return fmt.Errorf("thicknesses: got %d entries for %d points", len(p.Thicknesses), n)
	}
	return nil
}

// Layer is one horizontal slice.
type Layer struct {
	Number   int
	Polygons []Polygon
}

// ElementCount returns the index buffer entries used by the whole layer.
func (l *Layer) ElementCount() int {
	n := 0
	for i := range l.Polygons {
		n += l.Polygons[i].ElementCount()
	}
	return n
}
