// Package glestest provides a recording gles.Context for tests.
package glestest

import (
	"fmt"
	"strings"
	"sync"

	"ar-viewer/internal/gles"
)

// Call is one recorded GL call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Recorder implements gles.Context by logging every call. It hands out
// increasing object names and lets tests inject compile, link and GL errors.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	next  uint32

	// FailCompile makes shaders of the given type fail compilation.
	FailCompile map[gles.Enum]bool
	// FailLink makes LinkProgram report failure.
	FailLink bool
	// MissingAttribs resolve to -1 in GetAttribLocation.
	MissingAttribs map[string]bool
	// Errors is drained by GetError, one entry per call.
	Errors []gles.Enum

	shaderTypes map[gles.Shader]gles.Enum
	live        map[string]int

	// Buffers holds the last data uploaded per buffer object.
	Buffers map[gles.Buffer][]float32
	bound   gles.Buffer
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{
		FailCompile:    make(map[gles.Enum]bool),
		MissingAttribs: make(map[string]bool),
		shaderTypes:    make(map[gles.Shader]gles.Enum),
		live:           make(map[string]int),
		Buffers:        make(map[gles.Buffer][]float32),
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.calls = append(r.calls, Call{Name: name, Args: args})
}

func (r *Recorder) alloc(kind string) uint32 {
	r.next++
	r.live[kind]++
	return r.next
}

func (r *Recorder) free(kind string) {
	r.live[kind]--
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Names returns the recorded call names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Name
	}
	return out
}

// Count returns how many times the named call was made.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Live reports how many objects of a kind ("shader", "program", "texture",
// "buffer") are currently allocated.
func (r *Recorder) Live(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live[kind]
}

// Reset forgets recorded calls but keeps allocated objects.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) CreateShader(ty gles.Enum) gles.Shader {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := gles.Shader(r.alloc("shader"))
	r.shaderTypes[s] = ty
	r.record("CreateShader", ty)
	return s
}

func (r *Recorder) ShaderSource(s gles.Shader, src string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ShaderSource", s)
}

func (r *Recorder) CompileShader(s gles.Shader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CompileShader", s)
}

func (r *Recorder) GetShaderi(s gles.Shader, pname gles.Enum) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetShaderi", s, pname)
	if pname == gles.COMPILE_STATUS && r.FailCompile[r.shaderTypes[s]] {
		return 0
	}
	return 1
}

func (r *Recorder) GetShaderInfoLog(s gles.Shader) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetShaderInfoLog", s)
	return "0:1: syntax error"
}

func (r *Recorder) DeleteShader(s gles.Shader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.free("shader")
	r.record("DeleteShader", s)
}

func (r *Recorder) CreateProgram() gles.Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := gles.Program(r.alloc("program"))
	r.record("CreateProgram")
	return p
}

func (r *Recorder) AttachShader(p gles.Program, s gles.Shader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("AttachShader", p, s)
}

func (r *Recorder) LinkProgram(p gles.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("LinkProgram", p)
}

func (r *Recorder) GetProgrami(p gles.Program, pname gles.Enum) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetProgrami", p, pname)
	if pname == gles.LINK_STATUS && r.FailLink {
		return 0
	}
	return 1
}

func (r *Recorder) GetProgramInfoLog(p gles.Program) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetProgramInfoLog", p)
	return "link error"
}

func (r *Recorder) UseProgram(p gles.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("UseProgram", p)
}

func (r *Recorder) DeleteProgram(p gles.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.free("program")
	r.record("DeleteProgram", p)
}

func (r *Recorder) GetAttribLocation(p gles.Program, name string) gles.Attrib {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetAttribLocation", p, name)
	if r.MissingAttribs[name] {
		return -1
	}
	switch name {
	case "a_Position":
		return 0
	case "a_TexCoord":
		return 1
	}
	return 2
}

func (r *Recorder) CreateTexture() gles.Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := gles.Texture(r.alloc("texture"))
	r.record("CreateTexture")
	return t
}

func (r *Recorder) ActiveTexture(unit gles.Enum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ActiveTexture", unit)
}

func (r *Recorder) BindTexture(target gles.Enum, t gles.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("BindTexture", target, t)
}

func (r *Recorder) TexParameteri(target, pname gles.Enum, param int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("TexParameteri", target, pname, param)
}

func (r *Recorder) TexImage2D(target gles.Enum, width, height int, format, ty gles.Enum, pix []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("TexImage2D", target, width, height)
}

func (r *Recorder) DeleteTexture(t gles.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.free("texture")
	r.record("DeleteTexture", t)
}

func (r *Recorder) CreateBuffer() gles.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := gles.Buffer(r.alloc("buffer"))
	r.record("CreateBuffer")
	return b
}

func (r *Recorder) BindBuffer(target gles.Enum, b gles.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound = b
	r.record("BindBuffer", target, b)
}

func (r *Recorder) BufferData(target gles.Enum, data []float32, usage gles.Enum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Buffers[r.bound] = append([]float32(nil), data...)
	r.record("BufferData", target, len(data), usage)
}

func (r *Recorder) DeleteBuffer(b gles.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.free("buffer")
	r.record("DeleteBuffer", b)
}

func (r *Recorder) VertexAttribPointer(a gles.Attrib, size int, ty gles.Enum, normalized bool, stride, offset int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("VertexAttribPointer", a, size)
}

func (r *Recorder) EnableVertexAttribArray(a gles.Attrib) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("EnableVertexAttribArray", a)
}

func (r *Recorder) DisableVertexAttribArray(a gles.Attrib) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DisableVertexAttribArray", a)
}

func (r *Recorder) DrawArrays(mode gles.Enum, first, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DrawArrays", mode, first, count)
}

func (r *Recorder) DepthMask(flag bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DepthMask", flag)
}

func (r *Recorder) Enable(cap gles.Enum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Enable", cap)
}

func (r *Recorder) Disable(cap gles.Enum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Disable", cap)
}

func (r *Recorder) Viewport(x, y, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Viewport", x, y, width, height)
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *Recorder) Clear(mask gles.Enum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Clear", mask)
}

func (r *Recorder) GetError() gles.Enum {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Errors) == 0 {
		return gles.NO_ERROR
	}
	e := r.Errors[0]
	r.Errors = r.Errors[1:]
	return e
}

var _ gles.Context = (*Recorder)(nil)
