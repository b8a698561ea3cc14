package preview

import (
	"github.com/Faultbox/layerview/internal/layer"
	"github.com/Faultbox/layerview/internal/simulation"
	"github.com/Faultbox/layerview/pkg/math"
)

// Playback owns the simulation state of the preview: the selected layer and
// path, filters and auto-play. It implements simulation.View and
// simulation.PathInfoListener.
type Playback struct {
	data    *layer.Data
	numbers []int
	layer   int // index into numbers

	state simulation.State
	speed float64 // paths per second
	acc   float64
	info  string

	onInfo func(string)
}

// NewPlayback shows the whole print: top layer, last path.
func NewPlayback(data *layer.Data, pathsPerSecond float64) *Playback {
	p := &Playback{
		data:    data,
		numbers: data.LayerNumbers(),
		speed:   pathsPerSecond,
		state: simulation.State{
			ViewType:        simulation.LineTypeColor,
			ExtruderOpacity: math.Filled(1),
			ShowHelpers:     true,
			ShowSkin:        true,
			ShowInfill:      true,
			ShowStarts:      true,
			Activity:        len(data.LayerNumbers()) > 0,
			ActiveExtruder:  -1,
		},
	}
	p.state.Feedrate, p.state.Thickness, p.state.LineWidth, p.state.FlowRate = lineBounds(data)
	if n := len(p.numbers); n > 0 {
		p.state.MinimumLayer = p.numbers[0]
		p.selectLayer(n - 1)
		p.state.CurrentPath = p.maxPath()
	}
	return p
}

// State implements simulation.View.
func (p *Playback) State() simulation.State {
	return p.state
}

// CurrentPathInfoChanged implements simulation.PathInfoListener.
func (p *Playback) CurrentPathInfoChanged(info string) {
	if info == p.info {
		return
	}
	p.info = info
	if p.onInfo != nil {
		p.onInfo(info)
	}
}

// OnPathInfo registers a callback for path info changes.
func (p *Playback) OnPathInfo(fn func(string)) {
	p.onInfo = fn
}

// PathInfo returns the last published description.
func (p *Playback) PathInfo() string {
	return p.info
}

// SetDisplayLineDetails enables segment descriptions.
func (p *Playback) SetDisplayLineDetails(on bool) {
	p.state.DisplayLineDetails = on
}

// SetViewType changes the colour scheme.
func (p *Playback) SetViewType(v simulation.ViewType) {
	p.state.ViewType = v
}

// CycleViewType switches to the next colour scheme.
func (p *Playback) CycleViewType() {
	p.state.ViewType = (p.state.ViewType + 1) % (simulation.FlowRateColor + 1)
}

// ToggleTravelMoves shows or hides travel moves.
func (p *Playback) ToggleTravelMoves() {
	p.state.ShowTravelMoves = !p.state.ShowTravelMoves
}

// Running reports whether auto-play is on.
func (p *Playback) Running() bool {
	return p.state.Running
}

// Toggle starts or stops auto-play. Starting at the end of the print
// rewinds to the first layer.
func (p *Playback) Toggle() {
	if p.state.Running {
		p.state.Running = false
		return
	}
	if p.layer == len(p.numbers)-1 && p.state.CurrentPath >= p.maxPath() {
		p.selectLayer(0)
		p.state.CurrentPath = 0
	}
	p.acc = 0
	p.state.Running = len(p.numbers) > 0
}

// StepLayer moves delta layers and shows the whole layer.
func (p *Playback) StepLayer(delta int) {
	if len(p.numbers) == 0 {
		return
	}
	p.selectLayer(p.layer + delta)
	p.state.CurrentPath = p.maxPath()
}

// StepPath moves delta paths within the current layer.
func (p *Playback) StepPath(delta int) {
	p.state.CurrentPath = clampInt(p.state.CurrentPath+delta, 0, p.maxPath())
}

// Update advances auto-play by dt seconds.
func (p *Playback) Update(dt float64) {
	if !p.state.Running {
		return
	}
	p.acc += dt * p.speed
	for p.acc >= 1 && p.state.Running {
		p.acc--
		p.advance()
	}
}

func (p *Playback) advance() {
	if p.state.CurrentPath < p.maxPath() {
		p.state.CurrentPath++
		return
	}
	if p.layer == len(p.numbers)-1 {
		p.state.Running = false
		return
	}
	p.selectLayer(p.layer + 1)
	p.state.CurrentPath = 0
}

func (p *Playback) selectLayer(i int) {
	p.layer = clampInt(i, 0, len(p.numbers)-1)
	p.state.CurrentLayer = p.numbers[p.layer]
}

// maxPath is the number of path steps in the current layer. Polygons after
// the first share their first point with the previous polygon.
func (p *Playback) maxPath() int {
	l, ok := p.data.Layer(p.state.CurrentLayer)
	if !ok {
		return 0
	}
	points := 0
	for i := range l.Polygons {
		n := l.Polygons[i].PointCount()
		if i > 0 {
			n--
		}
		points += n
	}
	return max(points-1, 0)
}

// lineBounds returns feedrate, thickness, width and flow bounds over the
// extrusion lines of data.
func lineBounds(data *layer.Data) (feedrate, thickness, width, flow simulation.Bounds) {
	first := true
	include := func(b *simulation.Bounds, v float32) {
		f := float64(v)
		if first {
			*b = simulation.Bounds{Min: f, Max: f}
			return
		}
		b.Min = min(b.Min, f)
		b.Max = max(b.Max, f)
	}

	for _, n := range data.LayerNumbers() {
		l, _ := data.Layer(n)
		for i := range l.Polygons {
			poly := &l.Polygons[i]
			for j := 1; j < poly.PointCount(); j++ {
				s, _ := poly.SegmentTo(j)
				if s.Type.IsTravel() {
					continue
				}
				include(&feedrate, s.Feedrate)
				include(&thickness, s.Thickness)
				include(&width, s.Width)
				include(&flow, s.Flow())
				first = false
			}
		}
	}
	return feedrate, thickness, width, flow
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
