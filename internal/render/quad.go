package render

import "ar-viewer/internal/ar"

// quadCoords are the four viewport corners in normalized device
// coordinates, ordered for a triangle strip. They never change.
var quadCoords = [8]float32{
	-1, -1,
	-1, +1,
	+1, -1,
	+1, +1,
}

const quadVertexCount = 4

// Quad is the background geometry: fixed positions plus texture
// coordinates that follow the display geometry.
type Quad struct {
	texCoords [8]float32
}

// newQuad starts with the unrotated full-image mapping; the first frame
// reporting a geometry change replaces it.
func newQuad() Quad {
	return Quad{texCoords: [8]float32{
		0, 1,
		0, 0,
		1, 1,
		1, 0,
	}}
}

// Positions returns a copy of the fixed NDC corners.
func (q *Quad) Positions() [8]float32 { return quadCoords }

// TexCoords returns a copy of the current texture coordinates.
func (q *Quad) TexCoords() [8]float32 { return q.texCoords }

// remap recomputes texture coordinates through the frame's
// device-to-texture mapping.
func (q *Quad) remap(frame ar.Frame) {
	in := quadCoords
	frame.TransformCoordinates2D(ar.OpenGLNormalizedDevice, in[:], ar.TextureNormalized, q.texCoords[:])
}
