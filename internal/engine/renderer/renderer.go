// Package renderer provides batched OpenGL rendering.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/layerview/internal/engine/camera"
	"github.com/Faultbox/layerview/internal/engine/mesh"
	"github.com/Faultbox/layerview/internal/engine/shader"
	"github.com/Faultbox/layerview/internal/logger"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Capabilities describes what the GL context supports.
type Capabilities struct {
	Version        string
	Renderer       string
	Major, Minor   int32
	GeometryShader bool
}

// Buffer entry points used by upload. Tests replace them to run without a
// GL context.
var (
	genBuffers = gl.GenBuffers
	bindBuffer = gl.BindBuffer
	bufferData = gl.BufferData
)

// Renderer draws batches with OpenGL. It implements Drawer.
type Renderer struct {
	config Config
	caps   Capabilities

	buffers map[mesh.Geometry]*gpuMesh
	vaos    map[vaoKey]uint32
}

type gpuAttr struct {
	vbo      uint32
	revision uint64
}

type gpuMesh struct {
	vbo   uint32
	ebo   uint32
	count int32
	attrs map[string]*gpuAttr
}

// Attribute locations differ between programs, so vertex arrays are per pair.
type vaoKey struct {
	geometry mesh.Geometry
	program  uint32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{
		config:  cfg,
		buffers: make(map[mesh.Geometry]*gpuMesh),
		vaos:    make(map[vaoKey]uint32),
	}

	r.caps.Version = gl.GoStr(gl.GetString(gl.VERSION))
	r.caps.Renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	gl.GetIntegerv(gl.MAJOR_VERSION, &r.caps.Major)
	gl.GetIntegerv(gl.MINOR_VERSION, &r.caps.Minor)
	r.caps.GeometryShader = r.caps.Major > 3 || (r.caps.Major == 3 && r.caps.Minor >= 2)

	logger.Info("OpenGL initialized",
		zap.String("version", r.caps.Version),
		zap.String("renderer", r.caps.Renderer),
		zap.Bool("geometry_shader", r.caps.GeometryShader),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Capabilities returns what the context supports.
func (r *Renderer) Capabilities() Capabilities {
	return r.caps
}

// Close releases every uploaded buffer.
func (r *Renderer) Close() {
	logger.Info("closing renderer", zap.Int("meshes", len(r.buffers)))
	for k, vao := range r.vaos {
		gl.DeleteVertexArrays(1, &vao)
		delete(r.vaos, k)
	}
	for g, m := range r.buffers {
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		for _, a := range m.attrs {
			gl.DeleteBuffers(1, &a.vbo)
		}
		delete(r.buffers, g)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	gl.UseProgram(0)
}

// Draw implements Drawer.
func (r *Renderer) Draw(b *Batch, cam *camera.Camera) error {
	p, ok := b.Shader.(*shader.GLProgram)
	if !ok {
		return fmt.Errorf("batch shader %q is not a GL program", b.Shader.Name())
	}

	gl.UseProgram(p.ID())
	p.SetMat4("u_viewMatrix", cam.ViewMatrix())
	p.SetMat4("u_projectionMatrix", cam.ProjectionMatrix())
	eye := cam.WorldPosition()
	p.SetVec4("u_viewPosition", [4]float32{eye.X, eye.Y, eye.Z, 1})

	r.applyState(b)

	mode := uint32(gl.TRIANGLES)
	if b.Mode == Lines {
		mode = gl.LINES
	}

	for _, item := range b.Items {
		p.SetMat4("u_modelMatrix", item.Transform)

		m := r.upload(item.Geometry)
		vao := r.vertexArray(item.Geometry, m, p)

		start, count := 0, int(m.count)
		if b.Range != nil {
			start = min(b.Range.Start, count)
			count = min(b.Range.Count(), count-start)
		}
		if count <= 0 {
			continue
		}

		gl.BindVertexArray(vao)
		gl.DrawElements(mode, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(start*4))
	}
	gl.BindVertexArray(0)

	return nil
}

func (r *Renderer) applyState(b *Batch) {
	switch b.Type {
	case Transparent:
		gl.Enable(gl.DEPTH_TEST)
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
	case Overlay:
		gl.Disable(gl.DEPTH_TEST)
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(true)
	default:
		gl.Enable(gl.DEPTH_TEST)
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
	}

	if b.BackfaceCull {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
}

// upload creates GPU buffers for a geometry on first use and refreshes
// attributes whose revision moved.
func (r *Renderer) upload(g mesh.Geometry) *gpuMesh {
	m, ok := r.buffers[g]
	if !ok {
		m = &gpuMesh{attrs: make(map[string]*gpuAttr)}

		positions := g.Positions()
		genBuffers(1, &m.vbo)
		bindBuffer(gl.ARRAY_BUFFER, m.vbo)
		if len(positions) > 0 {
			bufferData(gl.ARRAY_BUFFER, len(positions)*4, gl.Ptr(positions), gl.STATIC_DRAW)
		}

		// The element binding is vertex array state and a vertex array may
		// still be bound here, so index data goes through ARRAY_BUFFER.
		// vertexArray attaches it as the element buffer.
		indices := g.Indices()
		genBuffers(1, &m.ebo)
		bindBuffer(gl.ARRAY_BUFFER, m.ebo)
		if len(indices) > 0 {
			bufferData(gl.ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
		}
		m.count = int32(len(indices))

		r.buffers[g] = m
		logger.Debug("mesh uploaded",
			zap.Int("vertices", len(positions)/3),
			zap.Int32("indices", m.count),
		)
	}

	if ag, ok := g.(mesh.Attributed); ok {
		for _, a := range ag.Attributes() {
			ga, ok := m.attrs[a.Name]
			if !ok {
				ga = &gpuAttr{}
				genBuffers(1, &ga.vbo)
				m.attrs[a.Name] = ga
			}
			if ok && ga.revision == a.Revision {
				continue
			}
			bindBuffer(gl.ARRAY_BUFFER, ga.vbo)
			if len(a.Values) > 0 {
				bufferData(gl.ARRAY_BUFFER, len(a.Values)*4, gl.Ptr(a.Values), gl.DYNAMIC_DRAW)
			}
			ga.revision = a.Revision
		}
	}
	bindBuffer(gl.ARRAY_BUFFER, 0)

	return m
}

func (r *Renderer) vertexArray(g mesh.Geometry, m *gpuMesh, p *shader.GLProgram) uint32 {
	key := vaoKey{geometry: g, program: p.ID()}
	if vao, ok := r.vaos[key]; ok {
		return vao
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	if loc := shader.GetAttrib(p.ID(), "a_vertex"); loc >= 0 {
		gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
		gl.EnableVertexAttribArray(uint32(loc))
		gl.VertexAttribPointerWithOffset(uint32(loc), 3, gl.FLOAT, false, 0, 0)
	}

	if ag, ok := g.(mesh.Attributed); ok {
		for _, a := range ag.Attributes() {
			loc := shader.GetAttrib(p.ID(), a.Name)
			if loc < 0 {
				continue
			}
			gl.BindBuffer(gl.ARRAY_BUFFER, m.attrs[a.Name].vbo)
			gl.EnableVertexAttribArray(uint32(loc))
			gl.VertexAttribPointerWithOffset(uint32(loc), a.Size, gl.FLOAT, false, 0, 0)
		}
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.vaos[key] = vao
	return vao
}
