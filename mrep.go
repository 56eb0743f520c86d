package bezray

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// machEps is the double-precision machine epsilon.
const machEps = 2.220446049250313e-16

// ErrDegeneratePatch is returned when implicitization finds no null space,
// which only happens for degenerate control nets.
var ErrDegeneratePatch = errors.New("bezray: degenerate patch: empty null space")

// MRep is the implicit matrix representation of a Bézier patch.
//
// It packs four coefficient blocks N0..N3 of equal shape such that
//
//	M(x, y, z) = N0 + x*N1 + y*N2 + z*N3
//
// drops rank exactly at points (x, y, z) on the surface. The blocks come
// from the null space of the S_v elimination matrix: each row of M is
// indexed by a Bernstein product B_k^{v0}(u) * B_l^{v1}(v) at flat index
// l + k*(v1+1), which is also what makes preimage recovery possible
// (see [MRep.Preimage]).
type MRep struct {
	n0, n1, n2, n3 *mat.Dense
	v0, v1         int
}

// defaultBlockDegrees picks the bidegree (v0, v1) of the S_v column blocks.
// This is the smallest choice guaranteeing the drop-of-rank property for a
// patch of bidegree (d1, d2) (Busé, Section 3.2).
func defaultBlockDegrees(d1, d2 int) (v0, v1 int) {
	return 2*min(d1, d2) - 1, max(d1, d2) - 1
}

// svMatrix assembles the S_v elimination matrix of the patch for column
// blocks of bidegree (v0, v1).
//
// Column (k, l) of axis block a holds the Bernstein coefficients, in the
// raised basis of bidegree (d1+v0, d2+v1), of the function
// c_a(u,v) * B_k^{v0}(u) * B_l^{v1}(v), where c_0 = 1 and c_1..c_3 are the
// x, y, z coordinate functions of the patch. The product-of-bases identity
//
//	B_i^d * B_k^v = [C(d,i)*C(v,k) / C(d+v,i+k)] * B_{i+k}^{d+v}
//
// supplies the coefficients.
func svMatrix(p Patch, v0, v1 int) *mat.Dense {
	d1 := p.DegreeU()
	d2 := p.DegreeV()
	stride := (v0 + 1) * (v1 + 1)
	rows := (d1 + v0 + 1) * (d2 + v1 + 1)

	out := mat.NewDense(rows, 4*stride, nil)
	for axis := 0; axis < 4; axis++ {
		for k := 0; k <= v0; k++ {
			vk := float64(binomial(v0, k))
			for l := 0; l <= v1; l++ {
				vl := float64(binomial(v1, l))
				for i := 0; i <= d1; i++ {
					for j := 0; j <= d2; j++ {
						c := 1.0
						switch axis {
						case 1:
							c = p.Control(i, j).X
						case 2:
							c = p.Control(i, j).Y
						case 3:
							c = p.Control(i, j).Z
						}
						row := (j + l) + (i+k)*(v1+d2+1)
						col := l + k*(v1+1) + axis*stride
						w := vk * vl *
							float64(binomial(d1, i)) * float64(binomial(d2, j)) /
							(float64(binomial(v0+d1, i+k)) * float64(binomial(v1+d2, j+l)))
						out.Set(row, col, out.At(row, col)+w*c)
					}
				}
			}
		}
	}
	return out
}

// nullSpace returns an orthonormal basis of the right null space of a as
// columns, or nil when a has full column rank. Rank is decided by the
// usual tolerance max(sigma) * max(rows, cols) * eps.
func nullSpace(a *mat.Dense) *mat.Dense {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return nil
	}
	rows, cols := a.Dims()
	sigma := svd.Values(nil)

	tol := 0.0
	if len(sigma) > 0 {
		tol = sigma[0] * float64(max(rows, cols)) * machEps
	}
	rank := 0
	for _, s := range sigma {
		if s > tol {
			rank++
		}
	}
	if rank == cols {
		return nil
	}

	var v mat.Dense
	svd.VTo(&v)
	return mat.DenseCopyOf(v.Slice(0, cols, rank, cols))
}

// BuildMRep implicitizes a patch into its matrix representation.
// This is the expensive step (one large SVD per patch); the result is
// reusable across any number of ray queries.
func BuildMRep(p Patch) (*MRep, error) {
	v0, v1 := defaultBlockDegrees(p.DegreeU(), p.DegreeV())

	sv := svMatrix(p, v0, v1)
	null := nullSpace(sv)
	if null == nil {
		return nil, ErrDegeneratePatch
	}

	rows, k := null.Dims()
	stride := (v0 + 1) * (v1 + 1)
	if rows != 4*stride {
		return nil, fmt.Errorf("bezray: null space has %d rows, want %d", rows, 4*stride)
	}

	block := func(i int) *mat.Dense {
		return mat.DenseCopyOf(null.Slice(i*stride, (i+1)*stride, 0, k))
	}
	m := &MRep{
		n0: block(0),
		n1: block(1),
		n2: block(2),
		n3: block(3),
		v0: v0,
		v1: v1,
	}
	srows, scols := m.n0.Dims()
	Logger().Debug("bezray: built mrep",
		"degreeU", p.DegreeU(), "degreeV", p.DegreeV(),
		"blockU", v0, "blockV", v1,
		"rows", srows, "cols", scols)
	return m, nil
}

// BlockDegrees returns the bidegree (v0, v1) of the Bernstein row index of M.
func (m *MRep) BlockDegrees() (v0, v1 int) {
	return m.v0, m.v1
}

// Stride returns the number of rows of M, (v0+1)*(v1+1).
func (m *MRep) Stride() int {
	return (m.v0 + 1) * (m.v1 + 1)
}

// Eval returns M(p) = N0 + x*N1 + y*N2 + z*N3.
func (m *MRep) Eval(p Vec3) *mat.Dense {
	r, c := m.n0.Dims()
	out := mat.NewDense(r, c, nil)
	out.Copy(m.n0)

	var t mat.Dense
	t.Scale(p.X, m.n1)
	out.Add(out, &t)
	t.Scale(p.Y, m.n2)
	out.Add(out, &t)
	t.Scale(p.Z, m.n3)
	out.Add(out, &t)
	return out
}

// Pencil restricts M to the ray: with A = M(origin) and
// B = M(origin+dir) - M(origin), M(r.At(t)) = A + t*B. Intersections are
// the parameters t making the pencil singular; see pencil.HitParameters.
func (m *MRep) Pencil(r Ray) (a, b *mat.Dense) {
	a = m.Eval(r.Origin)
	b = m.Eval(r.Origin.Add(r.Dir))
	b.Sub(b, a)
	return a, b
}
