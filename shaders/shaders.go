// Package shaders embeds the GLSL sources used by the background renderer.
//
// Sources are grouped by dialect:
//
//	oes   GLSL ES 1.00 sampling a samplerExternalOES camera stream
//	es2d  GLSL ES 1.00 sampling a plain sampler2D (uploaded camera images)
//	core  GLSL 4.10 core profile for desktop GL
//
// Every vertex stage declares the attributes a_Position and a_TexCoord.
package shaders

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
)

//go:embed oes es2d core
var files embed.FS

// Kind is a shader stage.
type Kind int

const (
	Vertex Kind = iota
	Fragment
)

func (k Kind) ext() string {
	if k == Fragment {
		return ".frag"
	}
	return ".vert"
}

func (k Kind) String() string {
	if k == Fragment {
		return "fragment"
	}
	return "vertex"
}

// Dialect selects a source directory.
type Dialect string

const (
	OES  Dialect = "oes"
	ES2D Dialect = "es2d"
	Core Dialect = "core"
)

// ScreenQuad is the identifier of the camera background program.
const ScreenQuad = "screenquad"

// Loader resolves shader sources for one dialect.
type Loader struct {
	Dialect Dialect
	fsys    fs.FS
}

// NewLoader returns a Loader over the embedded sources.
func NewLoader(d Dialect) *Loader {
	return &Loader{Dialect: d, fsys: files}
}

// NewLoaderFS returns a Loader reading <dialect>/<id>.<ext> from fsys,
// for hosts that ship shaders as assets.
func NewLoaderFS(d Dialect, fsys fs.FS) *Loader {
	return &Loader{Dialect: d, fsys: fsys}
}

// LoadShaderSource returns the source text for one stage of a program.
func (l *Loader) LoadShaderSource(kind Kind, id string) (string, error) {
	name := path.Join(string(l.Dialect), id+kind.ext())
	b, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return "", fmt.Errorf("load %s shader %q: %w", kind, name, err)
	}
	return string(b), nil
}
