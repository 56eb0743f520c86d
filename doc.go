// Package bezray raytraces tensor-product Bézier surfaces through their
// implicit matrix representations (M-reps).
//
// Instead of subdividing patches or marching along rays, bezray converts
// each patch once into a matrix M(x, y, z) whose rank drops exactly on the
// surface. Restricting M to a ray turns intersection into a generalized
// eigenvalue problem on a matrix pencil: the real eigenvalues are the ray
// parameters of the intersection points. Patch-domain membership is decided
// by recovering the (u, v) preimage from the null vector at the hit.
//
// The package provides the full pipeline:
//
//   - Bernstein bases and arbitrary-bidegree Bézier patches ([Patch])
//   - BPT model parsing ([ParseBPT], [LoadBPT])
//   - implicitization ([BuildMRep], [MRep])
//   - scene assembly and nearest-hit queries ([BuildScene], [Scene])
//   - a small CPU renderer ([Renderer]) producing PNG images
//
// The M-rep construction follows Busé's implicit matrix representation of
// rational surfaces; the pencil reduction handles the singular pencils that
// arise when the representation is non-minimal.
//
// bezray is silent by default. Call [SetLogger] to receive diagnostics.
package bezray
