// Package camera provides named viewpoints and the registry the scene uses to
// switch between them.
package camera

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/Faultbox/layerview/pkg/math"
)

// Camera is a viewpoint looking from Position towards Target.
type Camera struct {
	Name     string
	Position math.Vec3
	Target   math.Vec3

	Perspective bool
	FovY        float32 // radians
	Aspect      float32
	Near, Far   float32

	// ZoomFactor scales the orthographic view volume. Negative values zoom
	// out, positive values zoom in.
	ZoomFactor float32
	OrthoSize  float32 // half height of the orthographic view at zoom 0
}

// New creates a perspective camera with default settings.
func New(name string) *Camera {
	return &Camera{
		Name:        name,
		Position:    math.Vec3{X: 0, Y: 300, Z: 700},
		Perspective: true,
		FovY:        0.5236, // 30 degrees
		Aspect:      16.0 / 9.0,
		Near:        1,
		Far:         5000,
		OrthoSize:   200,
	}
}

// SetPosition moves the camera without changing its target.
func (c *Camera) SetPosition(p math.Vec3) {
	c.Position = p
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math.Vec3) {
	c.Target = target
}

// WorldPosition returns the camera position in world space.
func (c *Camera) WorldPosition() math.Vec3 {
	return c.Position
}

// ViewMatrix returns the view matrix for this camera.
func (c *Camera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Target, math.Up)
}

// ProjectionMatrix returns the perspective or orthographic projection.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	if c.Perspective {
		return math.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
	}
	h := c.OrthoSize * (1 - c.ZoomFactor)
	if h <= 0 {
		h = 1
	}
	w := h * c.Aspect
	return math.Ortho(-w, w, -h, h, -c.Far, c.Far)
}

// Clone returns an independent copy of c under a new name.
func (c *Camera) Clone(name string) (*Camera, error) {
	dup := &Camera{}
	if err := copier.CopyWithOption(dup, c, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("cloning camera %q: %w", c.Name, err)
	}
	dup.Name = name
	return dup, nil
}
