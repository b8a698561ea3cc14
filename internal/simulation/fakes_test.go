package simulation

import (
	"fmt"

	"github.com/Faultbox/layerview/internal/engine/camera"
	"github.com/Faultbox/layerview/internal/engine/renderer"
	"github.com/Faultbox/layerview/internal/engine/shader"
	"github.com/Faultbox/layerview/pkg/math"
)

type fakeProgram struct {
	name   string
	floats map[string]float32
	ints   map[string]int32
	vecs   map[string][4]float32
	mats   map[string]math.Mat4
}

func newFakeProgram(name string) *fakeProgram {
	return &fakeProgram{
		name:   name,
		floats: make(map[string]float32),
		ints:   make(map[string]int32),
		vecs:   make(map[string][4]float32),
		mats:   make(map[string]math.Mat4),
	}
}

func (p *fakeProgram) Name() string                      { return p.name }
func (p *fakeProgram) SetFloat(name string, v float32)   { p.floats[name] = v }
func (p *fakeProgram) SetInt(name string, v int32)       { p.ints[name] = v }
func (p *fakeProgram) SetVec4(name string, v [4]float32) { p.vecs[name] = v }
func (p *fakeProgram) SetMat4(name string, m math.Mat4)  { p.mats[name] = m }

type fakeShaders struct {
	programs map[string]*fakeProgram
	created  []string
	fail     string
}

func newFakeShaders() *fakeShaders {
	return &fakeShaders{programs: make(map[string]*fakeProgram)}
}

func (s *fakeShaders) Program(name string) (shader.Program, error) {
	if name == s.fail {
		return nil, fmt.Errorf("no such shader")
	}
	if p, ok := s.programs[name]; ok {
		return p, nil
	}
	p := newFakeProgram(name)
	s.programs[name] = p
	s.created = append(s.created, name)
	return p, nil
}

// journal records bind/draw/notify calls in order.
type journal struct {
	entries []string
	draws   []draw
	infos   []string
}

type draw struct {
	shader string
	typ    renderer.RenderType
	mode   renderer.Mode
	rng    *renderer.Range
	cull   bool
	items  int
	camera string
}

func (j *journal) Draw(b *renderer.Batch, cam *camera.Camera) error {
	d := draw{
		shader: b.Shader.Name(),
		typ:    b.Type,
		mode:   b.Mode,
		cull:   b.BackfaceCull,
		items:  len(b.Items),
		camera: cam.Name,
	}
	if b.Range != nil {
		r := *b.Range
		d.rng = &r
	}
	j.draws = append(j.draws, d)
	j.entries = append(j.entries, "draw "+d.shader)
	return nil
}

func (j *journal) Bind()    { j.entries = append(j.entries, "bind") }
func (j *journal) Release() { j.entries = append(j.entries, "release") }

func (j *journal) CurrentPathInfoChanged(info string) {
	j.entries = append(j.entries, "path info")
	j.infos = append(j.infos, info)
}

func (j *journal) reset() {
	j.entries = nil
	j.draws = nil
}

func (j *journal) drawsOf(shader string) []draw {
	var out []draw
	for _, d := range j.draws {
		if d.shader == shader {
			out = append(out, d)
		}
	}
	return out
}

type fakeView struct {
	state State
}

func (v *fakeView) State() State { return v.state }

type fakeKeyboard struct {
	alt bool
}

func (k *fakeKeyboard) FollowModifierHeld() bool { return k.alt }
