package bezray

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/bezray/internal/pencil"
)

// boxSlack is the tolerance used when checking candidate hit points
// against patch bounding boxes.
const boxSlack = 1e-8

// degenerateSlack is the acceptance distance, relative to patch size, for
// fallback preimages. The staircase reduction of a degenerate
// representation works on very small blocks and its hit parameters carry
// noticeably more error than the full-rank case, so candidate points can
// sit around 1e-3 off the surface.
const degenerateSlack = 1e-3

// ImplicitPatch pairs a patch with its implicit matrix representation and
// bounding box, ready for ray queries.
type ImplicitPatch struct {
	Patch  Patch
	MRep   *MRep
	Bounds Box
}

// Scene is a set of implicitized patches supporting nearest-hit ray queries.
// A Scene is immutable after BuildScene and safe for concurrent tracing.
type Scene struct {
	patches []ImplicitPatch
}

// BuildOptions controls scene construction.
type BuildOptions struct {
	// Workers bounds the number of patches implicitized concurrently.
	// Zero or negative means GOMAXPROCS.
	Workers int
}

// BuildScene implicitizes every patch, in parallel. Implicitization is the
// costly half of the pipeline (one large SVD per patch), so it runs once
// here and the Scene is then queried per ray.
//
// The context cancels the build; the first patch error aborts it.
func BuildScene(ctx context.Context, patches []Patch, opts BuildOptions) (*Scene, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	out := make([]ImplicitPatch, len(patches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range patches {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			m, err := BuildMRep(p)
			if err != nil {
				return fmt.Errorf("patch %d: %w", i, err)
			}
			out[i] = ImplicitPatch{Patch: p, MRep: m, Bounds: p.BoundingBox()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("bezray: build scene: %w", err)
	}

	Logger().Info("bezray: scene built",
		"patches", len(patches), "workers", workers, "elapsed", time.Since(start))
	return &Scene{patches: out}, nil
}

// Patches returns the implicitized patches of the scene.
func (s *Scene) Patches() []ImplicitPatch {
	return s.patches
}

// Bounds returns the bounding box of the whole scene.
// The zero box is returned for an empty scene.
func (s *Scene) Bounds() Box {
	if len(s.patches) == 0 {
		return Box{}
	}
	b := s.patches[0].Bounds
	for _, ip := range s.patches[1:] {
		b = b.Union(ip.Bounds)
	}
	return b
}

// Hit describes the nearest ray/surface intersection.
type Hit struct {
	// T is the ray parameter of the hit, in multiples of Ray.Dir.
	T float64
	// Point is the hit position.
	Point Vec3
	// Patch indexes the hit patch within the scene.
	Patch int
	// U, V are the patch parameters of the hit.
	U, V float64
}

// TraceStats counts the work of a single trace.
type TraceStats struct {
	// Candidates is the number of patches whose bounding box the ray hit.
	Candidates int
	// Searched is the number of candidates whose pencil was actually solved;
	// the rest were pruned by a nearer confirmed hit.
	Searched int
}

// Raytrace returns the nearest intersection of the ray with the scene.
func (s *Scene) Raytrace(r Ray) (Hit, bool) {
	hit, _, ok := s.RaytraceStats(r)
	return hit, ok
}

// RaytraceStats is Raytrace with per-trace work counters.
//
// Candidates are gathered by slab tests against patch bounds, sorted by box
// entry distance, and solved front to back. Solving a candidate means
// restricting its M-rep to the ray, extracting the pencil's real hit
// parameters, and keeping the nearest one whose point lies in the patch
// bounds with a valid (u, v) preimage. Candidates whose box entry is
// already beyond the best hit are skipped.
func (s *Scene) RaytraceStats(r Ray) (Hit, TraceStats, bool) {
	type candidate struct {
		boxDist float64
		index   int
	}
	var stats TraceStats

	candidates := make([]candidate, 0, len(s.patches))
	for i, ip := range s.patches {
		if d, ok := ip.Bounds.IntersectRay(r); ok {
			candidates = append(candidates, candidate{boxDist: d, index: i})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].boxDist < candidates[j].boxDist
	})
	stats.Candidates = len(candidates)

	best := Hit{T: math.Inf(1)}
	found := false
	for _, c := range candidates {
		if c.boxDist > best.T {
			continue
		}
		stats.Searched++

		ip := s.patches[c.index]
		a, b := ip.MRep.Pencil(r)
		for _, t := range pencil.HitParameters(a, b) {
			if t < 0 || t > best.T {
				continue
			}
			pt := r.At(t)
			if !ip.Bounds.Contains(pt, boxSlack) {
				continue
			}
			u, v, sp, ok := s.preimage(ip, pt)
			if !ok {
				continue
			}
			// Re-parameterize along the ray from the recovered surface
			// point. For the fallback path this absorbs the pencil's
			// parameter error; for the algebraic path sp is the candidate
			// itself and t is unchanged.
			t = r.Dir.Dot(sp.Sub(r.Origin)) / r.Dir.LengthSq()
			if t < 0 || t > best.T {
				continue
			}
			best = Hit{T: t, Point: sp, Patch: c.index, U: u, V: v}
			found = true
		}
	}
	return best, stats, found
}

// preimage resolves the patch parameters of a candidate hit point and
// decides domain membership, returning the surface point S(u, v) the hit
// snaps to. The algebraic recovery handles everything the default block
// degrees support; bilinear patches fall back to projection, accepting
// candidates at the accuracy the degenerate pencil actually delivers.
func (s *Scene) preimage(ip ImplicitPatch, pt Vec3) (u, v float64, sp Vec3, ok bool) {
	if !ip.MRep.Degenerate() {
		u, v, ok = ip.MRep.Preimage(pt)
		return u, v, pt, ok
	}

	u, v = ip.Patch.ClosestParams(pt)
	sp = ip.Patch.Eval(u, v)
	scale := 1 + ip.Bounds.Diagonal()
	if sp.Distance(pt) > degenerateSlack*scale {
		return 0, 0, Vec3{}, false
	}
	return u, v, sp, true
}
