package simulation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/layerview/internal/engine/camera"
	"github.com/Faultbox/layerview/pkg/math"
)

// follower drives the camera that rides behind the nozzle.
type follower struct {
	defaultName string
	followName  string
	trail       float32 // mm behind the head
	elevation   float32 // mm above the head
	log         *zap.Logger
}

// trailPosition is the point trail mm behind head along the arriving line.
func trailPosition(head, prev math.Vec3, trail float32) math.Vec3 {
	return head.Sub(head.Sub(prev).Normalize().Scale(trail))
}

// restore returns to the default camera when not riding.
func (f *follower) restore(reg *camera.Registry) {
	active := reg.Active()
	if active != nil && active.Name == f.defaultName {
		return
	}
	if err := reg.SetActive(f.defaultName); err != nil {
		f.log.Warn("restore default camera", zap.Error(err))
	}
}

// ride moves the follow camera behind head, creating it from the active
// camera on first use.
func (f *follower) ride(reg *camera.Registry, head, position math.Vec3) error {
	active := reg.Active()
	if active == nil || active.Name != f.followName {
		if reg.Find(f.followName) == nil {
			if active == nil {
				return fmt.Errorf("no active camera to clone")
			}
			cam, err := active.Clone(f.followName)
			if err != nil {
				return fmt.Errorf("clone follow camera: %w", err)
			}
			cam.Perspective = true
			if err := reg.Add(cam); err != nil {
				return fmt.Errorf("add follow camera: %w", err)
			}
			f.log.Debug("follow camera created", zap.String("name", f.followName), zap.String("from", active.Name))
		}
		if err := reg.SetActive(f.followName); err != nil {
			return err
		}
	}

	up := math.Vec3{Y: f.elevation}
	cam := reg.Active()
	cam.SetPosition(position.Add(up))
	cam.LookAt(head.Add(up))
	return nil
}
