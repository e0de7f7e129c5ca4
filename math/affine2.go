package math

// Affine2 is a 2D affine transform stored row-major as
//
//	| A B C |
//	| D E F |
//
// mapping (x, y) to (A*x + B*y + C, D*x + E*y + F).
type Affine2 struct {
	A, B, C float32
	D, E, F float32
}

func Affine2Identity() Affine2 {
	return Affine2{A: 1, E: 1}
}

func Affine2Translate(tx, ty float32) Affine2 {
	return Affine2{A: 1, C: tx, E: 1, F: ty}
}

func Affine2Scale(sx, sy float32) Affine2 {
	return Affine2{A: sx, E: sy}
}

// Affine2QuarterTurns rotates counter-clockwise by n*90 degrees about the
// origin. Exact: no trigonometry, so rotated unit corners stay on the grid.
func Affine2QuarterTurns(n int) Affine2 {
	switch ((n % 4) + 4) % 4 {
	case 1:
		return Affine2{B: -1, D: 1}
	case 2:
		return Affine2{A: -1, E: -1}
	case 3:
		return Affine2{B: 1, D: -1}
	}
	return Affine2Identity()
}

// Then returns the transform that applies t first and next second.
func (t Affine2) Then(next Affine2) Affine2 {
	return Affine2{
		A: next.A*t.A + next.B*t.D,
		B: next.A*t.B + next.B*t.E,
		C: next.A*t.C + next.B*t.F + next.C,
		D: next.D*t.A + next.E*t.D,
		E: next.D*t.B + next.E*t.E,
		F: next.D*t.C + next.E*t.F + next.F,
	}
}

// Apply transforms a single point.
func (t Affine2) Apply(p Vec2) Vec2 {
	return Vec2{
		X: t.A*p.X + t.B*p.Y + t.C,
		Y: t.D*p.X + t.E*p.Y + t.F,
	}
}

// ApplyFloats transforms interleaved x,y pairs from in into out.
// It writes min(len(in), len(out))/2 pairs and returns that count.
func (t Affine2) ApplyFloats(in, out []float32) int {
	n := min(len(in), len(out)) / 2
	for i := 0; i < n; i++ {
		p := t.Apply(Vec2{X: in[2*i], Y: in[2*i+1]})
		out[2*i], out[2*i+1] = p.X, p.Y
	}
	return n
}

// Inverse returns the inverse transform. ok is false when t is singular.
func (t Affine2) Inverse() (inv Affine2, ok bool) {
	det := t.A*t.E - t.B*t.D
	if det == 0 {
		return Affine2{}, false
	}
	a := t.E / det
	b := -t.B / det
	d := -t.D / det
	e := t.A / det
	return Affine2{
		A: a, B: b, C: -(a*t.C + b*t.F),
		D: d, E: e, F: -(d*t.C + e*t.F),
	}, true
}
