//go:build android

// Package mobilegl adapts golang.org/x/mobile/gl to gles.Context so the
// background renderer can draw through the Android GLES 2 binding.
package mobilegl

import (
	"encoding/binary"

	"golang.org/x/mobile/exp/f32"
	"golang.org/x/mobile/gl"

	"ar-viewer/internal/gles"
)

// Context wraps an x/mobile GL context.
type Context struct {
	glctx gl.Context
}

// Wrap returns a gles.Context issuing calls on glctx.
func Wrap(glctx gl.Context) *Context {
	return &Context{glctx: glctx}
}

func program(p gles.Program) gl.Program { return gl.Program{Init: p != 0, Value: uint32(p)} }

func (c *Context) CreateShader(ty gles.Enum) gles.Shader {
	return gles.Shader(c.glctx.CreateShader(gl.Enum(ty)).Value)
}

func (c *Context) ShaderSource(s gles.Shader, src string) {
	c.glctx.ShaderSource(gl.Shader{Value: uint32(s)}, src)
}

func (c *Context) CompileShader(s gles.Shader) {
	c.glctx.CompileShader(gl.Shader{Value: uint32(s)})
}

func (c *Context) GetShaderi(s gles.Shader, pname gles.Enum) int {
	return c.glctx.GetShaderi(gl.Shader{Value: uint32(s)}, gl.Enum(pname))
}

func (c *Context) GetShaderInfoLog(s gles.Shader) string {
	return c.glctx.GetShaderInfoLog(gl.Shader{Value: uint32(s)})
}

func (c *Context) DeleteShader(s gles.Shader) {
	c.glctx.DeleteShader(gl.Shader{Value: uint32(s)})
}

func (c *Context) CreateProgram() gles.Program {
	return gles.Program(c.glctx.CreateProgram().Value)
}

func (c *Context) AttachShader(p gles.Program, s gles.Shader) {
	c.glctx.AttachShader(program(p), gl.Shader{Value: uint32(s)})
}

func (c *Context) LinkProgram(p gles.Program) { c.glctx.LinkProgram(program(p)) }

func (c *Context) GetProgrami(p gles.Program, pname gles.Enum) int {
	return c.glctx.GetProgrami(program(p), gl.Enum(pname))
}

func (c *Context) GetProgramInfoLog(p gles.Program) string {
	return c.glctx.GetProgramInfoLog(program(p))
}

func (c *Context) UseProgram(p gles.Program) { c.glctx.UseProgram(program(p)) }

func (c *Context) DeleteProgram(p gles.Program) { c.glctx.DeleteProgram(program(p)) }

// GetAttribLocation keeps GL's -1 for unknown names; x/mobile stores the
// location as an unsigned value.
func (c *Context) GetAttribLocation(p gles.Program, name string) gles.Attrib {
	a := c.glctx.GetAttribLocation(program(p), name)
	return gles.Attrib(int32(a.Value))
}

func (c *Context) CreateTexture() gles.Texture {
	return gles.Texture(c.glctx.CreateTexture().Value)
}

func (c *Context) ActiveTexture(unit gles.Enum) { c.glctx.ActiveTexture(gl.Enum(unit)) }

func (c *Context) BindTexture(target gles.Enum, t gles.Texture) {
	c.glctx.BindTexture(gl.Enum(target), gl.Texture{Value: uint32(t)})
}

func (c *Context) TexParameteri(target, pname gles.Enum, param int) {
	c.glctx.TexParameteri(gl.Enum(target), gl.Enum(pname), param)
}

func (c *Context) TexImage2D(target gles.Enum, width, height int, format, ty gles.Enum, pix []byte) {
	c.glctx.TexImage2D(gl.Enum(target), 0, int(format), width, height, gl.Enum(format), gl.Enum(ty), pix)
}

func (c *Context) DeleteTexture(t gles.Texture) {
	c.glctx.DeleteTexture(gl.Texture{Value: uint32(t)})
}

func (c *Context) CreateBuffer() gles.Buffer {
	return gles.Buffer(c.glctx.CreateBuffer().Value)
}

func (c *Context) BindBuffer(target gles.Enum, b gles.Buffer) {
	c.glctx.BindBuffer(gl.Enum(target), gl.Buffer{Value: uint32(b)})
}

func (c *Context) BufferData(target gles.Enum, data []float32, usage gles.Enum) {
	c.glctx.BufferData(gl.Enum(target), f32.Bytes(binary.LittleEndian, data...), gl.Enum(usage))
}

func (c *Context) DeleteBuffer(b gles.Buffer) {
	c.glctx.DeleteBuffer(gl.Buffer{Value: uint32(b)})
}

func (c *Context) VertexAttribPointer(a gles.Attrib, size int, ty gles.Enum, normalized bool, stride, offset int) {
	c.glctx.VertexAttribPointer(gl.Attrib{Value: uint(a)}, size, gl.Enum(ty), normalized, stride, offset)
}

func (c *Context) EnableVertexAttribArray(a gles.Attrib) {
	c.glctx.EnableVertexAttribArray(gl.Attrib{Value: uint(a)})
}

func (c *Context) DisableVertexAttribArray(a gles.Attrib) {
	c.glctx.DisableVertexAttribArray(gl.Attrib{Value: uint(a)})
}

func (c *Context) DrawArrays(mode gles.Enum, first, count int) {
	c.glctx.DrawArrays(gl.Enum(mode), first, count)
}

func (c *Context) DepthMask(flag bool) { c.glctx.DepthMask(flag) }

func (c *Context) Enable(cap gles.Enum) { c.glctx.Enable(gl.Enum(cap)) }

func (c *Context) Disable(cap gles.Enum) { c.glctx.Disable(gl.Enum(cap)) }

func (c *Context) Viewport(x, y, width, height int) { c.glctx.Viewport(x, y, width, height) }

func (c *Context) ClearColor(r, g, b, a float32) { c.glctx.ClearColor(r, g, b, a) }

func (c *Context) Clear(mask gles.Enum) { c.glctx.Clear(gl.Enum(mask)) }

func (c *Context) GetError() gles.Enum { return gles.Enum(c.glctx.GetError()) }

var _ gles.Context = (*Context)(nil)
