package render

import (
	"ar-viewer/internal/gles"
	"ar-viewer/shaders"
)

// TextureTarget returns the texture target the camera image is bound to for
// a shader dialect. Only the oes dialect samples an external stream.
func TextureTarget(d shaders.Dialect) gles.Enum {
	if d == shaders.OES {
		return gles.TEXTURE_EXTERNAL_OES
	}
	return gles.TEXTURE_2D
}

// newCameraTexture allocates the camera texture on target with
// clamp-to-edge wrapping and linear filtering. The texture stays bound.
func newCameraTexture(gl gles.Context, target gles.Enum) (gles.Texture, error) {
	tex := gl.CreateTexture()
	gl.BindTexture(target, tex)

	gl.TexParameteri(target, gles.TEXTURE_WRAP_S, int(gles.CLAMP_TO_EDGE))
	gl.TexParameteri(target, gles.TEXTURE_WRAP_T, int(gles.CLAMP_TO_EDGE))
	gl.TexParameteri(target, gles.TEXTURE_MIN_FILTER, int(gles.LINEAR))
	gl.TexParameteri(target, gles.TEXTURE_MAG_FILTER, int(gles.LINEAR))

	if err := gles.CheckError(gl, "create camera texture"); err != nil {
		gl.DeleteTexture(tex)
		return 0, err
	}
	return tex, nil
}
