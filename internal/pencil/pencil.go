// Package pencil reduces singular matrix pencils and extracts their finite
// generalized eigenvalues.
//
// The M-rep of a Bézier patch restricted to a ray is a pencil A + t*B whose
// singular parameters t are the ray/surface intersections. Because the
// representation is usually non-minimal, the raw pencil is rectangular and
// singular; Reduce peels off the singular structure with a staircase of SVD
// rotations until a square regular pencil remains, and Eigenvalues solves
// that regular part.
package pencil

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
)

// nopHandler discards all log records; Enabled returns false so disabled
// logging costs nothing in the reduction loop.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger for the pencil package. The parent
// package propagates its logger here so diagnostics share one sink.
// Pass nil to silence.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

func logger() *slog.Logger {
	return loggerPtr.Load()
}

const (
	// machEps is the double-precision machine epsilon.
	machEps = 2.220446049250313e-16

	// zeroTol screens entries that the SVD rotations should have
	// annihilated exactly.
	zeroTol = 1e-8

	// imagTol is the largest imaginary part an eigenvalue may carry and
	// still count as a real intersection.
	imagTol = 1e-8

	// maxSteps bounds the staircase loop. Each step strictly shrinks the
	// pencil, so well-formed inputs finish far earlier; the cap turns a
	// numerically stuck reduction into a clean failure.
	maxSteps = 256
)

// Reduce brings the pencil A + t*B to an equivalent square pencil with B of
// full rank, by the staircase of orthogonal rotations: while B is column
// rank deficient, rotate both matrices into B's right singular basis,
// rotate rows into the left singular basis of A's columns over B's null
// directions, and crop at the first annihilated entry of A. A non-square
// result recurses on the transposed pencil.
//
// ok is false when the pencil degenerates to nothing (the ray misses every
// finite eigenvalue) or the staircase cannot make progress.
func Reduce(a, b *mat.Dense) (ra, rb *mat.Dense, ok bool) {
	a = mat.DenseCopyOf(a)
	b = mat.DenseCopyOf(b)

	for step := 0; step < maxSteps; step++ {
		rows, cols := b.Dims()
		if rows == 0 || cols == 0 {
			return nil, nil, false
		}

		var svd mat.SVD
		if !svd.Factorize(b, mat.SVDFull) {
			return nil, nil, false
		}
		sigma := svd.Values(nil)
		tol := sigma[0] * float64(max(rows, cols)) * machEps
		rank := 0
		for _, s := range sigma {
			if s > tol {
				rank++
			}
		}
		if rank == cols {
			// B regular: done, up to squaring.
			if rows == cols {
				return a, b, true
			}
			logger().Debug("pencil: transposing non-square regular pencil",
				"rows", rows, "cols", cols)
			ta := mat.DenseCopyOf(a.T())
			tb := mat.DenseCopyOf(b.T())
			return Reduce(ta, tb)
		}

		var v mat.Dense
		svd.VTo(&v)

		// Rotate columns into B's right singular basis; the trailing
		// columns of B*V are (numerically) zero.
		var av, bv mat.Dense
		av.Mul(a, &v)
		bv.Mul(b, &v)

		null := firstZeroColumn(&bv)
		if null < 0 || null >= cols {
			return nil, nil, false
		}
		logger().Debug("pencil: staircase step",
			"step", step, "rows", rows, "cols", cols, "rank", rank)

		// Left-rotate by the singular basis of A over B's null directions.
		var asvd mat.SVD
		if !asvd.Factorize(av.Slice(0, rows, null, cols), mat.SVDFull) {
			return nil, nil, false
		}
		var u mat.Dense
		asvd.UTo(&u)

		var a2, b2 mat.Dense
		a2.Mul(u.T(), &av)
		b2.Mul(u.T(), &bv)

		// Crop at the first annihilated entry of the rotated A.
		ci, cj, found := firstZeroEntry(&a2)
		if !found {
			return nil, nil, false
		}
		if cj == 0 || ci >= rows {
			return nil, nil, false
		}
		a = mat.DenseCopyOf(a2.Slice(ci, rows, 0, cj))
		b = mat.DenseCopyOf(b2.Slice(ci, rows, 0, cj))
	}
	return nil, nil, false
}

// firstZeroColumn returns the index of the first column of m whose largest
// absolute entry is below zeroTol, or -1.
func firstZeroColumn(m *mat.Dense) int {
	rows, cols := m.Dims()
	for j := 0; j < cols; j++ {
		maxAbs := 0.0
		for i := 0; i < rows; i++ {
			if v := math.Abs(m.At(i, j)); v > maxAbs {
				maxAbs = v
			}
		}
		if maxAbs < zeroTol {
			return j
		}
	}
	return -1
}

// firstZeroEntry returns the row-major-first entry of m below zeroTol.
func firstZeroEntry(m *mat.Dense) (i, j int, found bool) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.Abs(m.At(i, j)) < zeroTol {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// Eigenvalues returns the generalized eigenvalues lambda of the pencil,
// det(A - lambda*B) = 0, after reduction to a regular part. After Reduce,
// B is square with full rank, so lambda are the standard eigenvalues of
// B^-1 * A. A nil result means the pencil carries no finite eigenvalues.
func Eigenvalues(a, b *mat.Dense) []complex128 {
	ra, rb, ok := Reduce(a, b)
	if !ok {
		return nil
	}
	n, _ := ra.Dims()
	if n == 0 {
		return nil
	}

	var x mat.Dense
	if err := x.Solve(rb, ra); err != nil {
		return nil
	}
	var eig mat.Eigen
	if !eig.Factorize(&x, mat.EigenNone) {
		return nil
	}
	return eig.Values(nil)
}

// HitParameters returns the real ray parameters t at which the pencil
// A + t*B becomes singular, ascending. A + t*B singular means -t is a
// generalized eigenvalue of (A, B), hence the negation; eigenvalues with
// more than imagTol of imaginary part are complex intersections and are
// dropped.
func HitParameters(a, b *mat.Dense) []float64 {
	eigs := Eigenvalues(a, b)
	if len(eigs) == 0 {
		return nil
	}
	out := make([]float64, 0, len(eigs))
	for _, e := range eigs {
		if math.Abs(imag(e)) > imagTol {
			continue
		}
		out = append(out, -real(e))
	}
	if len(out) == 0 {
		return nil
	}
	sortFloats(out)
	return out
}

// sortFloats is an insertion sort; hit lists are tiny.
func sortFloats(x []float64) {
	for i := 1; i < len(x); i++ {
		for j := i; j > 0 && x[j] < x[j-1]; j-- {
			x[j], x[j-1] = x[j-1], x[j]
		}
	}
}
