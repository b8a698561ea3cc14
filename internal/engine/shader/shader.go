// Package shader provides OpenGL shader compilation and uniform binding.
package shader

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// stage is one programmable pipeline stage.
type stage struct {
	kind uint32
	name string
}

var (
	vertexStage   = stage{gl.VERTEX_SHADER, "vertex"}
	fragmentStage = stage{gl.FRAGMENT_SHADER, "fragment"}
)

// CompileProgram links a program from vertex and fragment sources.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	program := gl.CreateProgram()

	for _, s := range []struct {
		stage
		src string
	}{{vertexStage, vertexSrc}, {fragmentStage, fragmentSrc}} {
		id, err := compileShader(s.src, s.stage)
		if err != nil {
			gl.DeleteProgram(program)
			return 0, err
		}
		gl.AttachShader(program, id)
		// Flagged for deletion; freed together with the program.
		gl.DeleteShader(id)
	}

	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}
	return program, nil
}

func compileShader(source string, s stage) (uint32, error) {
	id := gl.CreateShader(s.kind)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, csource, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(id, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(id)
		return 0, fmt.Errorf("%s shader: %s", s.name, msg)
	}
	return id, nil
}

// infoLog reads the compile or link log of a shader or program object.
func infoLog(id uint32, param func(uint32, uint32, *int32), read func(uint32, int32, *int32, *uint8)) string {
	var n int32
	param(id, gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return "unknown error"
	}
	buf := make([]byte, n+1)
	read(id, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}

// GetUniform returns the uniform location for name, or -1.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// GetAttrib returns the vertex attribute location for name, or -1.
func GetAttrib(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}
