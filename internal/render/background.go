// Package render draws the camera image as a full-screen background.
//
// All GL work happens on the render goroutine through a gles.Context; none
// of the types here are safe for concurrent use.
package render

import (
	"errors"
	"fmt"

	"ar-viewer/internal/ar"
	"ar-viewer/internal/gles"
	"ar-viewer/internal/logging"
	"ar-viewer/shaders"
)

// ShaderSource supplies GLSL text by stage and program id.
// *shaders.Loader is the usual implementation.
type ShaderSource interface {
	LoadShaderSource(kind shaders.Kind, id string) (string, error)
}

// Context is the GL state owned by a Background.
type Context struct {
	Program     gles.Program
	Position    gles.Attrib // a_Position
	TexCoord    gles.Attrib // a_TexCoord
	Texture     gles.Texture
	Target      gles.Enum
	QuadVBO     gles.Buffer
	TexCoordVBO gles.Buffer
}

// Background renders the camera texture behind everything else.
type Background struct {
	gl    gles.Context
	ctx   Context
	quad  Quad
	uvGen uint64
}

var errDestroyed = errors.New("background renderer destroyed")

// ── Setup ─────────────────────────────────────────────────────────────────────

// NewBackground builds the screen-quad program, the camera texture and the
// quad buffers. The camera texture is bound on TEXTURE_EXTERNAL_OES when src
// is an oes-dialect loader and on TEXTURE_2D otherwise.
//
// Every failure is an *ar.Error of kind GraphicsSetupFailure; objects
// created before the failure are released.
func NewBackground(gl gles.Context, src ShaderSource) (*Background, error) {
	target := gles.TEXTURE_EXTERNAL_OES
	if l, ok := src.(*shaders.Loader); ok {
		target = TextureTarget(l.Dialect)
	}
	return newBackground(gl, src, target)
}

func newBackground(gl gles.Context, src ShaderSource, target gles.Enum) (*Background, error) {
	const op = "render.NewBackground"
	setupErr := func(err error) error {
		return &ar.Error{Kind: ar.GraphicsSetupFailure, Op: op, Err: err}
	}

	vert, err := src.LoadShaderSource(shaders.Vertex, shaders.ScreenQuad)
	if err != nil {
		return nil, setupErr(err)
	}
	frag, err := src.LoadShaderSource(shaders.Fragment, shaders.ScreenQuad)
	if err != nil {
		return nil, setupErr(err)
	}

	b := &Background{gl: gl, quad: newQuad()}
	b.ctx.Target = target

	prog, err := newProgram(gl, vert, frag)
	if err != nil {
		return nil, setupErr(fmt.Errorf("screen quad shader: %w", err))
	}
	b.ctx.Program = prog

	b.ctx.Position = gl.GetAttribLocation(prog, "a_Position")
	b.ctx.TexCoord = gl.GetAttribLocation(prog, "a_TexCoord")
	if !b.ctx.Position.Valid() || !b.ctx.TexCoord.Valid() {
		b.Destroy()
		return nil, setupErr(fmt.Errorf("attribute locations a_Position=%d a_TexCoord=%d",
			b.ctx.Position, b.ctx.TexCoord))
	}

	tex, err := newCameraTexture(gl, target)
	if err != nil {
		b.Destroy()
		return nil, setupErr(err)
	}
	b.ctx.Texture = tex

	positions := b.quad.Positions()
	b.ctx.QuadVBO = gl.CreateBuffer()
	gl.BindBuffer(gles.ARRAY_BUFFER, b.ctx.QuadVBO)
	gl.BufferData(gles.ARRAY_BUFFER, positions[:], gles.STATIC_DRAW)

	uvs := b.quad.TexCoords()
	b.ctx.TexCoordVBO = gl.CreateBuffer()
	gl.BindBuffer(gles.ARRAY_BUFFER, b.ctx.TexCoordVBO)
	gl.BufferData(gles.ARRAY_BUFFER, uvs[:], gles.DYNAMIC_DRAW)
	gl.BindBuffer(gles.ARRAY_BUFFER, 0)

	if err := gles.CheckError(gl, "upload quad"); err != nil {
		b.Destroy()
		return nil, setupErr(err)
	}

	logging.Logger().Debug("background renderer ready",
		"program", prog, "texture", tex, "target", fmt.Sprintf("0x%04X", uint32(target)))
	return b, nil
}

// ── Accessors ─────────────────────────────────────────────────────────────────

// TextureID is the camera texture name the AR session writes into.
func (b *Background) TextureID() uint32 { return uint32(b.ctx.Texture) }

// GLContext returns a copy of the GL state owned by b.
func (b *Background) GLContext() Context { return b.ctx }

// UVGeneration counts texture-coordinate recomputations.
func (b *Background) UVGeneration() uint64 { return b.uvGen }

// TexCoords returns the texture coordinates used by the next draw.
func (b *Background) TexCoords() [8]float32 { return b.quad.TexCoords() }

// ── Draw ──────────────────────────────────────────────────────────────────────

// Draw renders frame's camera image. It reports false, with no GL draw
// calls, while the camera has not produced an image (timestamp 0).
//
// A GL error raised by the draw is returned with drawn=true; it concerns
// this tick only.
func (b *Background) Draw(frame ar.Frame) (bool, error) {
	if b.ctx.Program == 0 {
		return false, errDestroyed
	}

	// Recompute on every change; rotation and size both feed the mapping.
	if frame.HasDisplayGeometryChanged() {
		b.quad.remap(frame)
		b.uvGen++
	}

	if frame.Timestamp() == 0 {
		return false, nil
	}

	gl := b.gl
	gl.DepthMask(false)
	gl.Enable(gles.DEPTH_TEST)

	gl.UseProgram(b.ctx.Program)
	gl.ActiveTexture(gles.TEXTURE0)
	gl.BindTexture(b.ctx.Target, b.ctx.Texture)

	gl.BindBuffer(gles.ARRAY_BUFFER, b.ctx.QuadVBO)
	gl.VertexAttribPointer(b.ctx.Position, 2, gles.FLOAT, false, 0, 0)

	uvs := b.quad.TexCoords()
	gl.BindBuffer(gles.ARRAY_BUFFER, b.ctx.TexCoordVBO)
	gl.BufferData(gles.ARRAY_BUFFER, uvs[:], gles.DYNAMIC_DRAW)
	gl.VertexAttribPointer(b.ctx.TexCoord, 2, gles.FLOAT, false, 0, 0)
	gl.BindBuffer(gles.ARRAY_BUFFER, 0)

	gl.EnableVertexAttribArray(b.ctx.Position)
	gl.EnableVertexAttribArray(b.ctx.TexCoord)

	gl.DrawArrays(gles.TRIANGLE_STRIP, 0, quadVertexCount)

	gl.DisableVertexAttribArray(b.ctx.Position)
	gl.DisableVertexAttribArray(b.ctx.TexCoord)

	// Restore depth writes for anything drawn on top.
	gl.DepthMask(true)

	if err := gles.CheckError(gl, "draw background"); err != nil {
		return true, err
	}
	return true, nil
}

// Destroy frees all GL objects owned by the renderer. Safe to call twice.
func (b *Background) Destroy() {
	gl := b.gl
	if b.ctx.TexCoordVBO != 0 {
		gl.DeleteBuffer(b.ctx.TexCoordVBO)
	}
	if b.ctx.QuadVBO != 0 {
		gl.DeleteBuffer(b.ctx.QuadVBO)
	}
	if b.ctx.Texture != 0 {
		gl.DeleteTexture(b.ctx.Texture)
	}
	if b.ctx.Program != 0 {
		gl.DeleteProgram(b.ctx.Program)
	}
	b.ctx = Context{Target: b.ctx.Target, Position: -1, TexCoord: -1}
}
