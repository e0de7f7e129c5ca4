package render

import (
	"fmt"

	"ar-viewer/internal/gles"
)

// newProgram compiles and links a vertex+fragment pair. Shader objects are
// deleted once linked; on failure nothing is left allocated.
func newProgram(gl gles.Context, vertSrc, fragSrc string) (gles.Program, error) {
	vert, err := compileShader(gl, vertSrc, gles.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(gl, fragSrc, gles.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	// Attached shaders are flagged for deletion and freed with the program.
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	if gl.GetProgrami(prog, gles.LINK_STATUS) == 0 {
		log := gl.GetProgramInfoLog(prog)
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(gl gles.Context, src string, shaderType gles.Enum) (gles.Shader, error) {
	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, src)
	gl.CompileShader(shader)

	if gl.GetShaderi(shader, gles.COMPILE_STATUS) == 0 {
		log := gl.GetShaderInfoLog(shader)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
