package math

import (
	"math"
	"testing"
)

func TestVec3Normalize(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	if got := v1.Dot(NewVec3(4, 5, 6)); got != 32 {
		t.Errorf("Dot: expected 32, got %v", got)
	}

	n := NewVec3(0, 3, 4).Normalize()
	if math.Abs(float64(n.Length()-1)) > 1e-5 {
		t.Errorf("Normalize: expected unit length, got %v", n.Length())
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("Normalize: zero vector must stay zero")
	}
}

func TestQuaternionRotation(t *testing.T) {
	// 90 degrees about Y takes +X to -Z
	right := NewVec3(1, 0, 0)
	q := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))
	got := q.RotateVector(right)

	const tol = 0.001
	if math.Abs(float64(got.X)) > tol || math.Abs(float64(got.Y)) > tol || math.Abs(float64(got.Z+1)) > tol {
		t.Errorf("RotateVector: expected approximately (0,0,-1), got %v", got)
	}
	if (Quaternion{W: 1}).RotateVector(right) != right {
		t.Error("identity rotation must not move vectors")
	}
}

func vec2(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

func TestAffine2QuarterTurns(t *testing.T) {
	p := vec2(1, 0)
	cases := []struct {
		turns int
		want  Vec2
	}{
		{0, vec2(1, 0)},
		{1, vec2(0, 1)},
		{2, vec2(-1, 0)},
		{3, vec2(0, -1)},
		{4, vec2(1, 0)},
		{-1, vec2(0, -1)},
	}
	for _, c := range cases {
		if got := Affine2QuarterTurns(c.turns).Apply(p); got != c.want {
			t.Errorf("QuarterTurns(%d): expected %v, got %v", c.turns, c.want, got)
		}
	}
}

func TestAffine2ThenOrder(t *testing.T) {
	// scale then translate differs from translate then scale
	st := Affine2Scale(2, 2).Then(Affine2Translate(1, 0))
	ts := Affine2Translate(1, 0).Then(Affine2Scale(2, 2))
	p := vec2(1, 1)

	if got := st.Apply(p); got != vec2(3, 2) {
		t.Errorf("scale→translate: expected (3,2), got %v", got)
	}
	if got := ts.Apply(p); got != vec2(4, 2) {
		t.Errorf("translate→scale: expected (4,2), got %v", got)
	}
}

func TestAffine2ApplyFloats(t *testing.T) {
	in := []float32{-1, -1, -1, 1, 1, -1, 1, 1}
	out := make([]float32, 8)
	// NDC to [0,1]
	ndcToUnit := Affine2Scale(0.5, 0.5).Then(Affine2Translate(0.5, 0.5))

	if n := ndcToUnit.ApplyFloats(in, out); n != 4 {
		t.Fatalf("ApplyFloats: expected 4 pairs, got %d", n)
	}
	want := []float32{0, 0, 0, 1, 1, 0, 1, 1}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("ApplyFloats[%d]: expected %v, got %v", i, want[i], out[i])
		}
	}
	if n := ndcToUnit.ApplyFloats(in, out[:3]); n != 1 {
		t.Errorf("ApplyFloats: short output must clamp, got %d pairs", n)
	}
}

func TestAffine2Inverse(t *testing.T) {
	m := Affine2QuarterTurns(1).Then(Affine2Scale(0.5, -0.5)).Then(Affine2Translate(0.5, 0.5))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse: expected invertible transform")
	}
	p := vec2(0.3, -0.7)
	got := inv.Apply(m.Apply(p))
	if math.Abs(float64(got.X-p.X)) > 1e-6 || math.Abs(float64(got.Y-p.Y)) > 1e-6 {
		t.Errorf("Inverse round trip: expected %v, got %v", p, got)
	}
	if _, ok := Affine2Scale(0, 1).Inverse(); ok {
		t.Error("Inverse: singular transform must report !ok")
	}
}

func BenchmarkAffine2ApplyFloats(b *testing.B) {
	in := []float32{-1, -1, -1, 1, 1, -1, 1, 1}
	out := make([]float32, 8)
	m := Affine2QuarterTurns(1).Then(Affine2Scale(0.5, -0.5)).Then(Affine2Translate(0.5, 0.5))
	for i := 0; i < b.N; i++ {
		m.ApplyFloats(in, out)
	}
}
