package bezray

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyPatch is returned when a patch is built from an empty control net.
var ErrEmptyPatch = errors.New("bezray: empty control net")

// Patch is a tensor-product Bézier patch of arbitrary bidegree.
//
// The control net is indexed net[i][j] with i running along the u direction
// (degree = len(net)-1) and j along the v direction (degree = len(net[0])-1).
// The parameter domain is the unit square [0,1] x [0,1].
type Patch struct {
	net [][]Vec3
}

// NewPatch creates a patch from a control net.
// The net must be non-empty and rectangular.
func NewPatch(net [][]Vec3) (Patch, error) {
	if len(net) == 0 || len(net[0]) == 0 {
		return Patch{}, ErrEmptyPatch
	}
	cols := len(net[0])
	for i, row := range net {
		if len(row) != cols {
			return Patch{}, fmt.Errorf("bezray: ragged control net: row %d has %d points, want %d",
				i, len(row), cols)
		}
	}
	return Patch{net: net}, nil
}

// DegreeU returns the degree of the patch in the u direction.
func (p Patch) DegreeU() int {
	return len(p.net) - 1
}

// DegreeV returns the degree of the patch in the v direction.
func (p Patch) DegreeV() int {
	return len(p.net[0]) - 1
}

// Control returns the control point at net position (i, j).
func (p Patch) Control(i, j int) Vec3 {
	return p.net[i][j]
}

// Eval evaluates the patch at (u, v):
//
//	S(u, v) = sum_i sum_j B_i^n(u) * B_j^m(v) * P_ij
func (p Patch) Eval(u, v float64) Vec3 {
	n := p.DegreeU()
	m := p.DegreeV()

	var out Vec3
	for i := 0; i <= n; i++ {
		wu := Bernstein(i, n, u)
		if wu == 0 {
			continue
		}
		for j := 0; j <= m; j++ {
			w := wu * Bernstein(j, m, v)
			out = out.Add(p.net[i][j].Mul(w))
		}
	}
	return out
}

// Sample evaluates the patch on a uniform nu x nv grid over the unit square.
// The result is indexed [iu][iv].
func (p Patch) Sample(nu, nv int) [][]Vec3 {
	out := make([][]Vec3, nu)
	for iu := 0; iu < nu; iu++ {
		u := gridParam(iu, nu)
		out[iu] = make([]Vec3, nv)
		for iv := 0; iv < nv; iv++ {
			out[iu][iv] = p.Eval(u, gridParam(iv, nv))
		}
	}
	return out
}

// gridParam maps sample index i of n to [0, 1] inclusive of both endpoints.
func gridParam(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// Derivs returns the partial derivatives dS/du and dS/dv at (u, v).
func (p Patch) Derivs(u, v float64) (du, dv Vec3) {
	n := p.DegreeU()
	m := p.DegreeV()

	for i := 0; i <= n; i++ {
		bu := Bernstein(i, n, u)
		bdu := BernsteinDeriv(i, n, u)
		for j := 0; j <= m; j++ {
			bv := Bernstein(j, m, v)
			bdv := BernsteinDeriv(j, m, v)
			du = du.Add(p.net[i][j].Mul(bdu * bv))
			dv = dv.Add(p.net[i][j].Mul(bu * bdv))
		}
	}
	return du, dv
}

// Normal returns the unit surface normal at (u, v), oriented as
// dS/dv x dS/du. For BPT-ordered control nets this is the outward normal.
// At degenerate points (vanishing cross product) the zero vector is returned.
func (p Patch) Normal(u, v float64) Vec3 {
	du, dv := p.Derivs(u, v)
	return dv.Cross(du).Normalize()
}

// BoundingBox returns the axis-aligned bounding box of the control net.
// By the convex hull property of the Bernstein basis it bounds the surface.
func (p Patch) BoundingBox() Box {
	b := Box{Min: p.net[0][0], Max: p.net[0][0]}
	for _, row := range p.net {
		for _, pt := range row {
			b = b.Expand(pt)
		}
	}
	return b
}

// ClosestParams approximates the parameters (u, v) minimizing the distance
// from S(u, v) to pt by a coarse grid scan followed by Gauss-Newton
// refinement. It is the fallback preimage when the algebraic recovery of
// [MRep.Preimage] is unavailable (constant basis directions on low-bidegree
// patches).
func (p Patch) ClosestParams(pt Vec3) (u, v float64) {
	const grid = 16
	best := math.Inf(1)
	for iu := 0; iu <= grid; iu++ {
		gu := float64(iu) / grid
		for iv := 0; iv <= grid; iv++ {
			gv := float64(iv) / grid
			d := p.Eval(gu, gv).Sub(pt).LengthSq()
			if d < best {
				best, u, v = d, gu, gv
			}
		}
	}
	return p.RefinePreimage(pt, u, v, 12)
}

// RefinePreimage polishes an approximate preimage (u, v) of pt by
// Gauss-Newton iteration on |S(u,v) - pt|^2, clamped to the unit square.
func (p Patch) RefinePreimage(pt Vec3, u, v float64, iters int) (float64, float64) {
	for it := 0; it < iters; it++ {
		r := p.Eval(u, v).Sub(pt)
		du, dv := p.Derivs(u, v)

		// Normal equations of the 3x2 Jacobian [du dv].
		a := du.Dot(du)
		b := du.Dot(dv)
		c := dv.Dot(dv)
		det := a*c - b*b
		if det == 0 {
			break
		}
		g0 := du.Dot(r)
		g1 := dv.Dot(r)
		stepU := (c*g0 - b*g1) / det
		stepV := (a*g1 - b*g0) / det

		u = clamp01(u - stepU)
		v = clamp01(v - stepV)
		if stepU*stepU+stepV*stepV < 1e-30 {
			break
		}
	}
	return u, v
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
