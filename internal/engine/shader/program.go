package shader

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/layerview/pkg/math"
)

// Program is the uniform-binding surface of a shader program. Setting a
// uniform the program does not declare is a no-op.
type Program interface {
	Name() string
	SetFloat(name string, v float32)
	SetInt(name string, v int32)
	SetVec4(name string, v [4]float32)
	SetMat4(name string, m math.Mat4)
}

// GLProgram is a linked OpenGL program with cached uniform locations.
// Uniforms are written with glProgramUniform so the program need not be bound.
type GLProgram struct {
	id   uint32
	name string
	locs map[string]int32
}

// NewGLProgram compiles and links a program.
func NewGLProgram(name, vertexSrc, fragmentSrc string) (*GLProgram, error) {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	return &GLProgram{id: id, name: name, locs: make(map[string]int32)}, nil
}

// ID returns the GL program object.
func (p *GLProgram) ID() uint32 { return p.id }

// Name returns the logical shader name.
func (p *GLProgram) Name() string { return p.name }

// Uniform returns the cached location of a uniform, or -1.
func (p *GLProgram) Uniform(name string) int32 {
	loc, ok := p.locs[name]
	if !ok {
		loc = GetUniform(p.id, name)
		p.locs[name] = loc
	}
	return loc
}

// SetFloat implements Program.
func (p *GLProgram) SetFloat(name string, v float32) {
	if loc := p.Uniform(name); loc >= 0 {
		gl.ProgramUniform1f(p.id, loc, v)
	}
}

// SetInt implements Program.
func (p *GLProgram) SetInt(name string, v int32) {
	if loc := p.Uniform(name); loc >= 0 {
		gl.ProgramUniform1i(p.id, loc, v)
	}
}

// SetVec4 implements Program.
func (p *GLProgram) SetVec4(name string, v [4]float32) {
	if loc := p.Uniform(name); loc >= 0 {
		gl.ProgramUniform4f(p.id, loc, v[0], v[1], v[2], v[3])
	}
}

// SetMat4 implements Program.
func (p *GLProgram) SetMat4(name string, m math.Mat4) {
	if loc := p.Uniform(name); loc >= 0 {
		gl.ProgramUniformMatrix4fv(p.id, loc, 1, false, m.Ptr())
	}
}

// Delete releases the GL program.
func (p *GLProgram) Delete() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}
