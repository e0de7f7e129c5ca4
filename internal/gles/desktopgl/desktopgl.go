// Package desktopgl implements gles.Context on a desktop OpenGL 4.1 core
// profile through github.com/go-gl/gl.
//
// Core profile has no client-side defaults, so New binds one vertex array
// object for the lifetime of the context. External OES textures do not exist
// on desktop; use the "core" shader dialect, which samples TEXTURE_2D.
package desktopgl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"ar-viewer/internal/gles"
	"ar-viewer/internal/logging"
)

// Context is a gles.Context backed by the current desktop GL context.
type Context struct {
	vao uint32
}

// New loads GL function pointers and binds a VAO.
// Must be called with the window's GL context current on this goroutine.
func New() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logging.Logger().Info("opengl ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	c := &Context{}
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	return c, nil
}

// Release deletes the VAO created by New.
func (c *Context) Release() {
	if c.vao != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
}

func (c *Context) CreateShader(ty gles.Enum) gles.Shader {
	return gles.Shader(gl.CreateShader(uint32(ty)))
}

func (c *Context) ShaderSource(s gles.Shader, src string) {
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(uint32(s), 1, csrc, nil)
	free()
}

func (c *Context) CompileShader(s gles.Shader) { gl.CompileShader(uint32(s)) }

func (c *Context) GetShaderi(s gles.Shader, pname gles.Enum) int {
	var v int32
	gl.GetShaderiv(uint32(s), uint32(pname), &v)
	return int(v)
}

func (c *Context) GetShaderInfoLog(s gles.Shader) string {
	var logLen int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetShaderInfoLog(uint32(s), logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) DeleteShader(s gles.Shader) { gl.DeleteShader(uint32(s)) }

func (c *Context) CreateProgram() gles.Program { return gles.Program(gl.CreateProgram()) }

func (c *Context) AttachShader(p gles.Program, s gles.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (c *Context) LinkProgram(p gles.Program) { gl.LinkProgram(uint32(p)) }

func (c *Context) GetProgrami(p gles.Program, pname gles.Enum) int {
	var v int32
	gl.GetProgramiv(uint32(p), uint32(pname), &v)
	return int(v)
}

func (c *Context) GetProgramInfoLog(p gles.Program) string {
	var logLen int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetProgramInfoLog(uint32(p), logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) UseProgram(p gles.Program) { gl.UseProgram(uint32(p)) }

func (c *Context) DeleteProgram(p gles.Program) { gl.DeleteProgram(uint32(p)) }

func (c *Context) GetAttribLocation(p gles.Program, name string) gles.Attrib {
	return gles.Attrib(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (c *Context) CreateTexture() gles.Texture {
	var id uint32
	gl.GenTextures(1, &id)
	return gles.Texture(id)
}

func (c *Context) ActiveTexture(unit gles.Enum) { gl.ActiveTexture(uint32(unit)) }

func (c *Context) BindTexture(target gles.Enum, t gles.Texture) {
	gl.BindTexture(uint32(target), uint32(t))
}

func (c *Context) TexParameteri(target, pname gles.Enum, param int) {
	gl.TexParameteri(uint32(target), uint32(pname), int32(param))
}

func (c *Context) TexImage2D(target gles.Enum, width, height int, format, ty gles.Enum, pix []byte) {
	var ptr unsafe.Pointer
	if len(pix) > 0 {
		ptr = gl.Ptr(pix)
	}
	gl.TexImage2D(uint32(target), 0, int32(format), int32(width), int32(height), 0,
		uint32(format), uint32(ty), ptr)
}

func (c *Context) DeleteTexture(t gles.Texture) {
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

func (c *Context) CreateBuffer() gles.Buffer {
	var id uint32
	gl.GenBuffers(1, &id)
	return gles.Buffer(id)
}

func (c *Context) BindBuffer(target gles.Enum, b gles.Buffer) {
	gl.BindBuffer(uint32(target), uint32(b))
}

func (c *Context) BufferData(target gles.Enum, data []float32, usage gles.Enum) {
	if len(data) == 0 {
		gl.BufferData(uint32(target), 0, nil, uint32(usage))
		return
	}
	gl.BufferData(uint32(target), len(data)*4, gl.Ptr(data), uint32(usage))
}

func (c *Context) DeleteBuffer(b gles.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (c *Context) VertexAttribPointer(a gles.Attrib, size int, ty gles.Enum, normalized bool, stride, offset int) {
	gl.VertexAttribPointer(uint32(a), int32(size), uint32(ty), normalized, int32(stride), gl.PtrOffset(offset))
}

func (c *Context) EnableVertexAttribArray(a gles.Attrib) { gl.EnableVertexAttribArray(uint32(a)) }

func (c *Context) DisableVertexAttribArray(a gles.Attrib) { gl.DisableVertexAttribArray(uint32(a)) }

func (c *Context) DrawArrays(mode gles.Enum, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (c *Context) DepthMask(flag bool) { gl.DepthMask(flag) }

func (c *Context) Enable(cap gles.Enum) { gl.Enable(uint32(cap)) }

func (c *Context) Disable(cap gles.Enum) { gl.Disable(uint32(cap)) }

func (c *Context) Clear(mask gles.Enum) { gl.Clear(uint32(mask)) }

func (c *Context) GetError() gles.Enum { return gles.Enum(gl.GetError()) }

func (c *Context) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (c *Context) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

var _ gles.Context = (*Context)(nil)
