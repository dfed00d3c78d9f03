package math

import (
	gomath "math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}

	z := x.Cross(y)
	if !almostEqual(z.X, 0) || !almostEqual(z.Y, 0) || !almostEqual(z.Z, 1) {
		t.Errorf("expected (0,0,1), got (%f,%f,%f)", z.X, z.Y, z.Z)
	}

	// Anti-commutative
	nz := y.Cross(x)
	if !almostEqual(nz.Z, -1) {
		t.Errorf("expected Z=-1, got %f", nz.Z)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 0, 4}
	n := v.Normalize()
	if !almostEqual(n.Length(), 1) {
		t.Errorf("expected unit length, got %f", n.Length())
	}
	if !almostEqual(n.X, 0.6) || !almostEqual(n.Z, 0.8) {
		t.Errorf("unexpected direction (%f,%f,%f)", n.X, n.Y, n.Z)
	}

	// Zero vector stays zero instead of producing NaN
	zero := Vec3{}.Normalize()
	if zero.X != 0 || zero.Y != 0 || zero.Z != 0 {
		t.Errorf("expected zero vector, got (%f,%f,%f)", zero.X, zero.Y, zero.Z)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, 2, -4}

	lo := a.Min(b)
	hi := a.Max(b)

	if lo != (Vec3{1, 2, -4}) {
		t.Errorf("unexpected min: %+v", lo)
	}
	if hi != (Vec3{3, 5, -2}) {
		t.Errorf("unexpected max: %+v", hi)
	}
}
