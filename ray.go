package bezray

import "math"

// Ray is a half-line with an origin and a direction.
// The direction is not required to be unit length; intersection parameters
// are expressed in multiples of Dir.
type Ray struct {
	Origin, Dir Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec3
}

// NewBox creates a box from two corner points.
// The corners are normalized so Min <= Max componentwise.
func NewBox(p, q Vec3) Box {
	return Box{Min: p.MinElem(q), Max: p.MaxElem(q)}
}

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	return Box{
		Min: b.Min.MinElem(other.Min),
		Max: b.Max.MaxElem(other.Max),
	}
}

// Expand grows the box to include the point p.
func (b Box) Expand(p Vec3) Box {
	return Box{Min: b.Min.MinElem(p), Max: b.Max.MaxElem(p)}
}

// Contains reports whether p lies inside the box, with eps slack on every
// face. A small positive eps keeps surface points on a box face from being
// rejected by floating-point noise.
func (b Box) Contains(p Vec3, eps float64) bool {
	return p.X >= b.Min.X-eps && p.X <= b.Max.X+eps &&
		p.Y >= b.Min.Y-eps && p.Y <= b.Max.Y+eps &&
		p.Z >= b.Min.Z-eps && p.Z <= b.Max.Z+eps
}

// Diagonal returns the length of the box diagonal.
func (b Box) Diagonal() float64 {
	return b.Max.Sub(b.Min).Length()
}

// IntersectRay performs a slab test of the ray against the box.
// On a hit it returns the entry parameter along the ray (0 when the origin
// is already inside) and true. Intersections entirely behind the origin
// report a miss.
func (b Box) IntersectRay(r Ray) (float64, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			// Ray parallel to this slab: inside or miss.
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / d[i]
		t0 := (lo[i] - o[i]) * inv
		t1 := (hi[i] - o[i]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmax < tmin {
			return 0, false
		}
	}

	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, true
}
