package bezray

import (
	"gonum.org/v1/gonum/mat"
)

// preimageSlack is how far outside [0,1] a recovered parameter may fall
// and still be clamped in, absorbing the noise of the null-vector SVD.
const preimageSlack = 1e-8

// Degenerate reports whether the algebraic preimage is unavailable because
// one of the Bernstein index directions of M is constant (v0 or v1 zero,
// which happens for bilinear patches). Callers should fall back to
// [Patch.ClosestParams].
func (m *MRep) Degenerate() bool {
	return m.v0 < 1 || m.v1 < 1
}

// Preimage recovers the patch parameters (u, v) of a surface point p.
//
// At a surface point the left null vector n of M(p) is proportional to the
// Bernstein tensor B_k^{v0}(u) * B_l^{v1}(v) at flat index l + k*(v1+1).
// Each parameter then satisfies linear coefficient-ratio relations along
// its own index direction:
//
//	B_1/B_0:     c_1 = t * (deg*c_0 + c_1)
//	B_deg/B_deg-1: deg*c_deg = t * (deg*c_deg + c_deg-1)
//
// which are solved by scalar least squares over all rows of the other
// direction. u comes from the k ratios (stride v1+1) and v from the l
// ratios (adjacent entries); this matches the S_v column layout.
//
// ok is false when p is too far from the surface, the recovered parameters
// fall outside the unit square, or the representation is [MRep.Degenerate].
func (m *MRep) Preimage(p Vec3) (u, v float64, ok bool) {
	if m.Degenerate() {
		return 0, 0, false
	}

	n := m.leftNullVector(p)
	if n == nil {
		return 0, 0, false
	}

	u, okU := ratioSolve(n, m.v0, m.v1+1, 1, m.v1+1)
	v, okV := ratioSolve(n, m.v1, 1, m.v1+1, m.v0+1)
	if !okU || !okV {
		return 0, 0, false
	}
	if u < -preimageSlack || u > 1+preimageSlack ||
		v < -preimageSlack || v > 1+preimageSlack {
		return 0, 0, false
	}
	return clamp01(u), clamp01(v), true
}

// leftNullVector returns the left singular vector of M(p) with the
// smallest singular value, approximating the left null space at a
// surface point.
func (m *MRep) leftNullVector(p Vec3) []float64 {
	var svd mat.SVD
	if !svd.Factorize(m.Eval(p), mat.SVDFull) {
		return nil
	}
	var u mat.Dense
	svd.UTo(&u)

	stride := m.Stride()
	return mat.Col(nil, stride-1, &u)
}

// ratioSolve recovers the parameter of one index direction of the
// Bernstein tensor n.
//
// deg is the Bernstein degree of the direction, step the flat-index stride
// between consecutive indices of it, crossStep the stride of the other
// direction, and crossCount the number of rows in the other direction.
// Both boundary ratio families contribute one equation a*t = b per cross
// row; t is the closed-form scalar least-squares solution.
func ratioSolve(n []float64, deg, step, crossStep, crossCount int) (float64, bool) {
	fd := float64(deg)
	var num, den float64
	for r := 0; r < crossCount; r++ {
		base := r * crossStep

		// c_1 = t * (deg*c_0 + c_1)
		c0 := n[base]
		c1 := n[base+step]
		a := fd*c0 + c1
		num += a * c1
		den += a * a

		// deg*c_deg = t * (deg*c_deg + c_deg-1)
		cd := n[base+deg*step]
		cd1 := n[base+(deg-1)*step]
		a = fd*cd + cd1
		num += a * fd * cd
		den += a * a
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}
