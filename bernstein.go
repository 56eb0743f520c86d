package bezray

import "math"

// Bernstein bases for tensor-product Bézier patches.
//
// Conventions follow the usual Bernstein form:
//
//	B_i^n(u) = C(n, i) * u^i * (1-u)^(n-i)
//
// Note that math.Pow(0, 0) == 1, so the endpoint values B_0^n(0) and
// B_n^n(1) come out exactly 1 without special casing.

// binomial returns the binomial coefficient C(n, k).
// Evaluated multiplicatively; exact for the patch degrees in scope
// (well below int64 overflow).
func binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	var c int64 = 1
	for i := 0; i < k; i++ {
		c = c * int64(n-i) / int64(i+1)
	}
	return c
}

// Bernstein evaluates the i-th Bernstein polynomial of the given degree at u.
func Bernstein(i, degree int, u float64) float64 {
	if i < 0 || i > degree {
		return 0
	}
	return float64(binomial(degree, i)) *
		math.Pow(u, float64(i)) *
		math.Pow(1-u, float64(degree-i))
}

// BernsteinDeriv evaluates the first derivative of the i-th Bernstein
// polynomial of the given degree at u.
func BernsteinDeriv(i, degree int, u float64) float64 {
	if i < 0 || i > degree {
		return 0
	}
	var a, b float64
	if i > 0 {
		a = float64(i) * math.Pow(u, float64(i-1)) * math.Pow(1-u, float64(degree-i))
	}
	if degree-i > 0 {
		b = -math.Pow(u, float64(i)) * float64(degree-i) * math.Pow(1-u, float64(degree-i-1))
	}
	return float64(binomial(degree, i)) * (a + b)
}
