package camera

import "fmt"

// Registry holds the scene cameras by name and tracks the active one.
// Cameras added to a registry live as long as the registry.
type Registry struct {
	cameras map[string]*Camera
	active  string
}

// NewRegistry creates a registry with def as the active camera.
func NewRegistry(def *Camera) *Registry {
	r := &Registry{cameras: make(map[string]*Camera)}
	r.cameras[def.Name] = def
	r.active = def.Name
	return r
}

// Add registers a camera. Names must be unique.
func (r *Registry) Add(c *Camera) error {
	if c.Name == "" {
		return fmt.Errorf("camera has no name")
	}
	if _, ok := r.cameras[c.Name]; ok {
		return fmt.Errorf("camera %q already registered", c.Name)
	}
	r.cameras[c.Name] = c
	return nil
}

// Find returns the camera with the given name, or nil.
func (r *Registry) Find(name string) *Camera {
	return r.cameras[name]
}

// SetActive switches the active camera.
func (r *Registry) SetActive(name string) error {
	if _, ok := r.cameras[name]; !ok {
		return fmt.Errorf("camera %q not found", name)
	}
	r.active = name
	return nil
}

// Active returns the active camera.
func (r *Registry) Active() *Camera {
	return r.cameras[r.active]
}

// Len returns the number of registered cameras.
func (r *Registry) Len() int {
	return len(r.cameras)
}
