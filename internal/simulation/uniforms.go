package simulation

import (
	"github.com/Faultbox/layerview/internal/engine/shader"
	"github.com/Faultbox/layerview/pkg/math"
)

// Uniform names shared with the layer shader sources.
const (
	UniformActiveExtruder  = "u_active_extruder"
	UniformStartsColor     = "u_starts_color"
	UniformMaxFeedrate     = "u_max_feedrate"
	UniformMinFeedrate     = "u_min_feedrate"
	UniformMaxThickness    = "u_max_thickness"
	UniformMinThickness    = "u_min_thickness"
	UniformMaxLineWidth    = "u_max_line_width"
	UniformMinLineWidth    = "u_min_line_width"
	UniformMaxFlowRate     = "u_max_flow_rate"
	UniformMinFlowRate     = "u_min_flow_rate"
	UniformLayerViewType   = "u_layer_view_type"
	UniformExtruderOpacity = "u_extruder_opacity"
	UniformShowTravelMoves = "u_show_travel_moves"
	UniformShowHelpers     = "u_show_helpers"
	UniformShowSkin        = "u_show_skin"
	UniformShowInfill      = "u_show_infill"
	UniformShowStarts      = "u_show_starts"
	UniformResolution      = "u_resolution"

	UniformColor         = "u_color"
	UniformDiffuseColor1 = "u_diffuseColor1"
	UniformDiffuseColor2 = "u_diffuseColor2"
	UniformWidth         = "u_width"
	UniformOpacity       = "u_opacity"
)

// feedrateEpsilon keeps u_max_feedrate above u_min_feedrate so the shader
// never divides by zero.
const feedrateEpsilon = 0.01

// uniformSet holds the values synchronized across every layer shader.
type uniformSet struct {
	maxFeedrate  float32
	minFeedrate  float32
	maxThickness float32
	minThickness float32
	maxLineWidth float32
	minLineWidth float32
	maxFlowRate  float32
	minFlowRate  float32

	viewType        int32
	extruderOpacity math.Mat4

	showTravelMoves int32
	showHelpers     int32
	showSkin        int32
	showInfill      int32
	showStarts      int32
}

// defaultUniforms are used until a view state has been synchronized.
func defaultUniforms() uniformSet {
	return uniformSet{
		maxFeedrate:     1,
		maxThickness:    1,
		maxLineWidth:    1,
		maxFlowRate:     1,
		viewType:        1,
		extruderOpacity: math.Filled(1),
		showHelpers:     1,
		showSkin:        1,
		showInfill:      1,
		showStarts:      1,
	}
}

func uniformsFrom(st State) uniformSet {
	return uniformSet{
		maxFeedrate:     float32(st.Feedrate.Max + feedrateEpsilon),
		minFeedrate:     float32(st.Feedrate.Min),
		maxThickness:    float32(st.Thickness.Max),
		minThickness:    float32(st.Thickness.Min),
		maxLineWidth:    float32(st.LineWidth.Max),
		minLineWidth:    float32(st.LineWidth.Min),
		maxFlowRate:     float32(st.FlowRate.Max),
		minFlowRate:     float32(st.FlowRate.Min),
		viewType:        int32(st.ViewType),
		extruderOpacity: st.ExtruderOpacity,
		showTravelMoves: boolInt(st.ShowTravelMoves),
		showHelpers:     boolInt(st.ShowHelpers),
		showSkin:        boolInt(st.ShowSkin),
		showInfill:      boolInt(st.ShowInfill),
		showStarts:      boolInt(st.ShowStarts),
	}
}

// apply writes the set to p. The shadow shader has no travel moves uniform.
func (u uniformSet) apply(p shader.Program, shadow bool) {
	p.SetFloat(UniformMaxFeedrate, u.maxFeedrate)
	p.SetFloat(UniformMinFeedrate, u.minFeedrate)
	p.SetFloat(UniformMaxThickness, u.maxThickness)
	p.SetFloat(UniformMinThickness, u.minThickness)
	p.SetFloat(UniformMaxLineWidth, u.maxLineWidth)
	p.SetFloat(UniformMinLineWidth, u.minLineWidth)
	p.SetFloat(UniformMaxFlowRate, u.maxFlowRate)
	p.SetFloat(UniformMinFlowRate, u.minFlowRate)
	p.SetInt(UniformLayerViewType, u.viewType)
	p.SetMat4(UniformExtruderOpacity, u.extruderOpacity)
	if !shadow {
		p.SetInt(UniformShowTravelMoves, u.showTravelMoves)
	}
	p.SetInt(UniformShowHelpers, u.showHelpers)
	p.SetInt(UniformShowSkin, u.showSkin)
	p.SetInt(UniformShowInfill, u.showInfill)
	p.SetInt(UniformShowStarts, u.showStarts)
}

// activeExtruder maps "no extruder" (-1) to extruder 0.
func activeExtruder(idx int) float32 {
	return float32(max(0, idx))
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
