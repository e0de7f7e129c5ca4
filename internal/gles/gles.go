// Package gles describes the slice of the OpenGL ES 2.0 API the viewer needs.
//
// Renderer code is written against Context so that it can run on top of the
// Android GLES binding (golang.org/x/mobile/gl), the desktop core-profile
// binding (github.com/go-gl/gl) or the recording fake in glestest. All calls
// on a Context must happen on the goroutine that owns the current GL context.
package gles

import "fmt"

// Enum is a GL enumerant. Values match the Khronos headers.
type Enum uint32

// Object handles. The zero value is never a valid object.
type (
	Program uint32
	Shader  uint32
	Texture uint32
	Buffer  uint32
)

// Attrib is a vertex attribute location. Negative means "not found".
type Attrib int32

// Valid reports whether the location was resolved by the linker.
func (a Attrib) Valid() bool { return a >= 0 }

const (
	NO_ERROR                      Enum = 0
	INVALID_ENUM                  Enum = 0x0500
	INVALID_VALUE                 Enum = 0x0501
	INVALID_OPERATION             Enum = 0x0502
	OUT_OF_MEMORY                 Enum = 0x0505
	INVALID_FRAMEBUFFER_OPERATION Enum = 0x0506

	DEPTH_BUFFER_BIT Enum = 0x00000100
	COLOR_BUFFER_BIT Enum = 0x00004000

	TRIANGLE_STRIP Enum = 0x0005

	DEPTH_TEST Enum = 0x0B71

	TEXTURE_2D           Enum = 0x0DE1
	TEXTURE_EXTERNAL_OES Enum = 0x8D65
	TEXTURE0             Enum = 0x84C0
	TEXTURE_MAG_FILTER   Enum = 0x2800
	TEXTURE_MIN_FILTER   Enum = 0x2801
	TEXTURE_WRAP_S       Enum = 0x2802
	TEXTURE_WRAP_T       Enum = 0x2803
	LINEAR               Enum = 0x2601
	CLAMP_TO_EDGE        Enum = 0x812F

	UNSIGNED_BYTE Enum = 0x1401
	FLOAT         Enum = 0x1406
	RGBA          Enum = 0x1908

	ARRAY_BUFFER Enum = 0x8892
	STATIC_DRAW  Enum = 0x88E4
	DYNAMIC_DRAW Enum = 0x88E8

	FRAGMENT_SHADER Enum = 0x8B30
	VERTEX_SHADER   Enum = 0x8B31
	COMPILE_STATUS  Enum = 0x8B81
	LINK_STATUS     Enum = 0x8B82
)

// Context is the GL call surface used by the background renderer and the
// simulated camera upload path.
type Context interface {
	CreateShader(ty Enum) Shader
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	GetShaderi(s Shader, pname Enum) int
	GetShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	GetProgrami(p Program, pname Enum) int
	GetProgramInfoLog(p Program) string
	UseProgram(p Program)
	DeleteProgram(p Program)
	GetAttribLocation(p Program, name string) Attrib

	CreateTexture() Texture
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t Texture)
	TexParameteri(target, pname Enum, param int)
	TexImage2D(target Enum, width, height int, format, ty Enum, pix []byte)
	DeleteTexture(t Texture)

	CreateBuffer() Buffer
	BindBuffer(target Enum, b Buffer)
	BufferData(target Enum, data []float32, usage Enum)
	DeleteBuffer(b Buffer)

	VertexAttribPointer(a Attrib, size int, ty Enum, normalized bool, stride, offset int)
	EnableVertexAttribArray(a Attrib)
	DisableVertexAttribArray(a Attrib)
	DrawArrays(mode Enum, first, count int)

	DepthMask(flag bool)
	Enable(cap Enum)
	Disable(cap Enum)
	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear(mask Enum)

	GetError() Enum
}

// ErrorString names a GetError code.
func ErrorString(e Enum) string {
	switch e {
	case NO_ERROR:
		return "GL_NO_ERROR"
	case INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return fmt.Sprintf("GL error 0x%04X", uint32(e))
}

// CheckError drains the GL error queue and returns the first error found,
// annotated with label. It returns nil when the queue was empty.
func CheckError(gl Context, label string) error {
	var first Enum
	// One flag per error class; a lost context may never clear.
	for i := 0; i < 8; i++ {
		e := gl.GetError()
		if e == NO_ERROR {
			break
		}
		if first == NO_ERROR {
			first = e
		}
	}
	if first != NO_ERROR {
		return fmt.Errorf("%s: %s", label, ErrorString(first))
	}
	return nil
}
