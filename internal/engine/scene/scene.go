// Package scene provides the scene graph walked by the layer view pass.
package scene

import (
	"github.com/Faultbox/layerview/internal/engine/camera"
)

// Scene owns the node tree and the camera registry.
type Scene struct {
	root      *Group
	cameras   *camera.Registry
	listeners []func(Node)
}

// New creates a scene whose active camera is def.
func New(def *camera.Camera) *Scene {
	return &Scene{
		root:    NewGroup("root"),
		cameras: camera.NewRegistry(def),
	}
}

// Root returns the root node.
func (s *Scene) Root() Node { return s.root }

// Cameras returns the camera registry.
func (s *Scene) Cameras() *camera.Registry { return s.cameras }

// Add attaches a node to the root.
func (s *Scene) Add(n Node) {
	s.root.AddChild(n)
	s.Changed(n)
}

// OnChanged registers a callback fired by Changed.
func (s *Scene) OnChanged(fn func(Node)) {
	s.listeners = append(s.listeners, fn)
}

// Changed notifies listeners that n was modified.
func (s *Scene) Changed(n Node) {
	for _, fn := range s.listeners {
		fn(n)
	}
}

// Find returns the first node named name in depth-first order.
func (s *Scene) Find(name string) Node {
	var found Node
	Walk(s.root, func(n Node) bool {
		if n.Name() == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits root and its descendants depth-first, parents before
// children. Returning false from fn stops the walk.
func Walk(root Node, fn func(Node) bool) {
	walk(root, fn)
}

func walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children() {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
