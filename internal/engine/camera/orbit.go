package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/layerview/pkg/math"
)

// Orbit drives a camera around a center point with mouse input.
type Orbit struct {
	Center math.Vec3

	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit creates an orbit controller looking at the build plate center.
func NewOrbit(center math.Vec3) *Orbit {
	return &Orbit{
		Center:          center,
		Distance:        400,
		RotationX:       0.6,
		MinDistance:     20,
		MaxDistance:     3000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the orbit position in world space.
func (o *Orbit) Position() math.Vec3 {
	cx := math32.Cos(o.RotationX)
	return math.Vec3{
		X: o.Center.X + o.Distance*cx*math32.Sin(o.RotationY),
		Y: o.Center.Y + o.Distance*math32.Sin(o.RotationX),
		Z: o.Center.Z + o.Distance*cx*math32.Cos(o.RotationY),
	}
}

// Apply writes the orbit pose into c.
func (o *Orbit) Apply(c *Camera) {
	c.SetPosition(o.Position())
	c.LookAt(o.Center)
}

// HandleDrag updates rotation based on mouse drag delta.
func (o *Orbit) HandleDrag(deltaX, deltaY float32) {
	o.RotationY -= deltaX * o.DragSensitivity
	o.RotationX += deltaY * o.DragSensitivity
	o.RotationX = clamp(o.RotationX, o.MinPitch, o.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (o *Orbit) HandleZoom(delta float32) {
	o.Distance -= delta * o.Distance * o.ZoomSensitivity
	o.Distance = clamp(o.Distance, o.MinDistance, o.MaxDistance)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
