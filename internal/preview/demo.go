package preview

import (
	"github.com/Faultbox/layerview/internal/layer"
	"github.com/Faultbox/layerview/pkg/math"
)

// DemoPrint describes the generated test print: a hollow square tower with
// a travel move, an outer wall and zigzag infill on every layer.
type DemoPrint struct {
	Layers      int
	Size        float32 // mm, side of the square
	LayerHeight float32 // mm
	LineWidth   float32 // mm
	InfillLines int
}

// DefaultDemoPrint returns a small tower.
func DefaultDemoPrint() DemoPrint {
	return DemoPrint{
		Layers:      40,
		Size:        20,
		LayerHeight: 0.2,
		LineWidth:   0.4,
		InfillLines: 8,
	}
}

const (
	wallFeedrate   = 30
	infillFeedrate = 60
	travelFeedrate = 150
)

// Build generates the layer data.
func (d DemoPrint) Build() (*layer.Data, error) {
	layers := make([]layer.Layer, 0, d.Layers)
	last := math.Vec3{}

	for n := 0; n < d.Layers; n++ {
		y := float32(n+1) * d.LayerHeight

		corners := []math.Vec3{
			{X: 0, Y: y, Z: 0},
			{X: d.Size, Y: y, Z: 0},
			{X: d.Size, Y: y, Z: d.Size},
			{X: 0, Y: y, Z: d.Size},
			{X: 0, Y: y, Z: 0},
		}

		travel := d.polygon([]math.Vec3{last, corners[0]}, layer.MoveCombingType, travelFeedrate, 0, 0)
		wall := d.polygon(corners, layer.OuterWallType, wallFeedrate, d.LineWidth, d.LayerHeight)

		infillPoints := []math.Vec3{corners[0]}
		step := d.Size / float32(d.InfillLines)
		for i := 0; i < d.InfillLines; i++ {
			x := float32(i) * step
			if i%2 == 0 {
				infillPoints = append(infillPoints, math.Vec3{X: x + step, Y: y, Z: d.Size})
			} else {
				infillPoints = append(infillPoints, math.Vec3{X: x + step, Y: y, Z: 0})
			}
		}
		infill := d.polygon(infillPoints, layer.InfillType, infillFeedrate, d.LineWidth, d.LayerHeight)

		layers = append(layers, layer.Layer{
			Number:   n,
			Polygons: []layer.Polygon{travel, wall, infill},
		})
		last = infillPoints[len(infillPoints)-1]
	}

	return layer.NewData(layers)
}

func (d DemoPrint) polygon(points []math.Vec3, typ layer.LineType, feedrate, width, thickness float32) layer.Polygon {
	p := layer.Polygon{Points: points}
	for range points {
		p.Types = append(p.Types, typ)
		p.Feedrates = append(p.Feedrates, feedrate)
		p.Widths = append(p.Widths, width)
		p.Thicknesses = append(p.Thicknesses, thickness)
	}
	return p
}

// Center returns the middle of the printed volume.
func (d DemoPrint) Center() math.Vec3 {
	half := d.Size / 2
	return math.Vec3{X: half, Y: float32(d.Layers) * d.LayerHeight / 2, Z: half}
}
