package math

// Vec2 is a 2D point: a quad corner or a texture coordinate.
type Vec2 struct {
	X, Y float32
}
