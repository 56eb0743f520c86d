package bezray

import (
	"math"
	"testing"
)

func vecClose(a, b Vec3, epsilon float64) bool {
	return almostEqual(a.X, b.X, epsilon) &&
		almostEqual(a.Y, b.Y, epsilon) &&
		almostEqual(a.Z, b.Z, epsilon)
}

func TestVec3Arithmetic(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, -1, 0.5)

	if got := a.Add(b); !vecClose(got, V3(5, 1, 3.5), 1e-15) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); !vecClose(got, V3(-3, 3, 2.5), 1e-15) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Mul(2); !vecClose(got, V3(2, 4, 6), 1e-15) {
		t.Errorf("Mul = %v", got)
	}
	if got := a.Div(2); !vecClose(got, V3(0.5, 1, 1.5), 1e-15) {
		t.Errorf("Div = %v", got)
	}
	if got := a.Neg(); !vecClose(got, V3(-1, -2, -3), 1e-15) {
		t.Errorf("Neg = %v", got)
	}
	if got := a.Dot(b); !almostEqual(got, 4-2+1.5, 1e-15) {
		t.Errorf("Dot = %v", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := V3(1, 0, 0)
	y := V3(0, 1, 0)
	z := V3(0, 0, 1)

	if got := x.Cross(y); !vecClose(got, z, 1e-15) {
		t.Errorf("x cross y = %v, want z", got)
	}
	if got := y.Cross(x); !vecClose(got, z.Neg(), 1e-15) {
		t.Errorf("y cross x = %v, want -z", got)
	}

	// Cross product is orthogonal to both operands.
	a := V3(1.5, -2, 0.25)
	b := V3(0.3, 4, -1)
	c := a.Cross(b)
	if !almostEqual(c.Dot(a), 0, 1e-12) || !almostEqual(c.Dot(b), 0, 1e-12) {
		t.Errorf("cross product not orthogonal: %v", c)
	}
}

func TestVec3Length(t *testing.T) {
	v := V3(3, 4, 12)
	if got := v.Length(); !almostEqual(got, 13, 1e-15) {
		t.Errorf("Length = %v, want 13", got)
	}
	if got := v.LengthSq(); !almostEqual(got, 169, 1e-15) {
		t.Errorf("LengthSq = %v, want 169", got)
	}

	n := v.Normalize()
	if !almostEqual(n.Length(), 1, 1e-15) {
		t.Errorf("Normalize length = %v, want 1", n.Length())
	}
	if !vecClose(Vec3{}.Normalize(), Vec3{}, 0.0000001) {
		t.Error("Normalize of zero vector should stay zero")
	}
}

func TestVec3Lerp(t *testing.T) {
	a := V3(0, 0, 0)
	b := V3(2, 4, 8)
	if got := a.Lerp(b, 0); !vecClose(got, a, 1e-15) {
		t.Errorf("Lerp(0) = %v", got)
	}
	if got := a.Lerp(b, 1); !vecClose(got, b, 1e-15) {
		t.Errorf("Lerp(1) = %v", got)
	}
	if got := a.Lerp(b, 0.5); !vecClose(got, V3(1, 2, 4), 1e-15) {
		t.Errorf("Lerp(0.5) = %v", got)
	}
}

func TestVec3MinMaxElem(t *testing.T) {
	a := V3(1, 5, -2)
	b := V3(3, -1, 0)
	if got := a.MinElem(b); !vecClose(got, V3(1, -1, -2), 1e-15) {
		t.Errorf("MinElem = %v", got)
	}
	if got := a.MaxElem(b); !vecClose(got, V3(3, 5, 0), 1e-15) {
		t.Errorf("MaxElem = %v", got)
	}
	if d := V3(1, 1, 1).Distance(V3(1, 1, 1+math.Sqrt2)); !almostEqual(d, math.Sqrt2, 1e-15) {
		t.Errorf("Distance = %v", d)
	}
}
