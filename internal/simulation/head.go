package simulation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/layerview/internal/layer"
	"github.com/Faultbox/layerview/pkg/math"
)

// Head is the located print head position within a layer.
type Head struct {
	Polygon int // polygon index within the layer
	Index   int // path index remaining after earlier polygons were consumed
	Point   int // point index within the polygon

	Position math.Vec3 // world coordinates

	// Segment is the line arriving at the head. Only valid when HasSegment.
	Segment    layer.Segment
	HasSegment bool
}

// Previous returns the world position the head came from.
func (h Head) Previous(origin math.Vec3) (math.Vec3, bool) {
	if !h.HasSegment {
		return math.Vec3{}, false
	}
	return h.Segment.From.Add(origin), true
}

// LocateHead walks the polygons of l to find the point reached after path
// steps. The first point of every polygon but the first repeats the last
// point of the previous polygon and is skipped. origin is the world
// position of the node holding the layer.
func LocateHead(l *layer.Layer, path int, origin math.Vec3) (Head, bool) {
	if l == nil || path < 0 {
		return Head{}, false
	}

	index, offset := path, 0
	for i := range l.Polygons {
		p := &l.Polygons[i]
		n := p.PointCount() - offset
		if index >= n {
			index -= n
			offset = 1
			continue
		}

		point := index + offset
		h := Head{
			Polygon:  i,
			Index:    index,
			Point:    point,
			Position: p.Points[point].Add(origin),
		}
		h.Segment, h.HasSegment = p.SegmentTo(point)
		return h, true
	}
	return Head{}, false
}

// DescribeSegment renders the highlighted line as
// "type;x=..,y=..,z=..;x=..,y=..,z=..;length;feedrate;flow[;width;depth]".
// Displayed y and z are swapped since the scene is Y-up and printers are Z-up.
// Width and depth are omitted for zero-flow lines such as travels.
func DescribeSegment(s layer.Segment) string {
	flow := s.Flow()

	var b strings.Builder
	b.WriteString(s.Type.String())
	b.WriteByte(';')
	b.WriteString(formatPoint(s.From))
	b.WriteByte(';')
	b.WriteString(formatPoint(s.To))
	fmt.Fprintf(&b, ";%s;%s;%s",
		formatNumber(s.To.Distance(s.From)),
		formatNumber(s.Feedrate),
		formatNumber(flow),
	)
	if flow != 0 {
		fmt.Fprintf(&b, ";%s;%s", formatNumber(s.Width), formatNumber(s.Thickness))
	}
	return b.String()
}

func formatPoint(p math.Vec3) string {
	return fmt.Sprintf("x=%s, y=%s, z=%s", formatNumber(p.X), formatNumber(p.Z), formatNumber(p.Y))
}

// formatNumber prints integral values without a fraction, others with
// three decimals.
func formatNumber(x float32) string {
	if x == math32.Trunc(x) && !math32.IsInf(x, 0) {
		return strconv.FormatInt(int64(x), 10)
	}
	return strconv.FormatFloat(float64(x), 'f', 3, 32)
}
