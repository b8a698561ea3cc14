package shader

import (
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/Faultbox/layerview/internal/logger"
)

// Library resolves logical shader names ("layers3d", "color", ...) to
// <name>.vert and <name>.frag in a file system and caches the linked programs.
type Library struct {
	fsys     fs.FS
	programs map[string]*GLProgram
}

// NewLibrary creates a library reading sources from fsys.
func NewLibrary(fsys fs.FS) *Library {
	return &Library{fsys: fsys, programs: make(map[string]*GLProgram)}
}

// Program returns the program for name, compiling it on first use.
func (l *Library) Program(name string) (Program, error) {
	if p, ok := l.programs[name]; ok {
		return p, nil
	}

	vert, frag, err := readSources(l.fsys, name)
	if err != nil {
		return nil, err
	}
	p, err := NewGLProgram(name, vert, frag)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}

	l.programs[name] = p
	logger.Debug("shader program created",
		zap.String("name", name),
		zap.Uint32("program", p.ID()),
	)
	return p, nil
}

// Destroy deletes every compiled program.
func (l *Library) Destroy() {
	for name, p := range l.programs {
		p.Delete()
		delete(l.programs, name)
	}
}

func readSources(fsys fs.FS, name string) (vert, frag string, err error) {
	v, err := fs.ReadFile(fsys, name+".vert")
	if err != nil {
		return "", "", fmt.Errorf("shader %q: %w", name, err)
	}
	f, err := fs.ReadFile(fsys, name+".frag")
	if err != nil {
		return "", "", fmt.Errorf("shader %q: %w", name, err)
	}
	return string(v), string(f), nil
}
