// Package vec3 implements the fixed 3-element vector kernel used by the
// dynamic relaxation solver's beam-shear computation.
// Every function writes through caller-supplied destinations and performs
// no allocation, mirroring the pointer-based vector routines of a
// BLOCK Research Group dynamic relaxation kernel (vector_from_pointer,
// scale_vector, cross_vectors, ...).
package vec3

import "math"

// Length returns the Euclidean norm of u.
func Length(u []float64) float64 {
	return math.Sqrt(u[0]*u[0] + u[1]*u[1] + u[2]*u[2])
}

// LengthSquared returns u . u without the square root.
func LengthSquared(u []float64) float64 {
	return u[0]*u[0] + u[1]*u[1] + u[2]*u[2]
}

// Scale sets u <- a*u in place.
func Scale(u []float64, a float64) {
	u[0] *= a
	u[1] *= a
	u[2] *= a
}

// Normalize sets u <- u/|u| in place. Undefined (produces non-finite
// values) if |u| is zero; callers that cannot guarantee a nonzero length
// should check before calling.
func Normalize(u []float64) {
	Scale(u, 1/Length(u))
}

// Add sets w <- u+v. Aliasing w with u or v is permitted.
func Add(u, v, w []float64) {
	w[0] = u[0] + v[0]
	w[1] = u[1] + v[1]
	w[2] = u[2] + v[2]
}

// Subtract sets w <- u-v. Aliasing w with u or v is permitted.
func Subtract(u, v, w []float64) {
	w[0] = u[0] - v[0]
	w[1] = u[1] - v[1]
	w[2] = u[2] - v[2]
}

// Dot returns u . v.
func Dot(u, v []float64) float64 {
	return u[0]*v[0] + u[1]*v[1] + u[2]*v[2]
}

// Cross sets w <- u x v using the standard right-handed formula. w must
// not alias u or v: doing so is a programmer error, not a data error, and
// panics rather than silently producing a wrong result.
func Cross(u, v, w []float64) {
	if sameVector(w, u) || sameVector(w, v) {
		panic("vec3: Cross destination must not alias an input")
	}
	w[0] = u[1]*v[2] - u[2]*v[1]
	w[1] = u[2]*v[0] - u[0]*v[2]
	w[2] = u[0]*v[1] - u[1]*v[0]
}

func sameVector(a, b []float64) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}

// IsFinite reports whether all three components of u are neither NaN nor
// infinite.
func IsFinite(u []float64) bool {
	for _, c := range u {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
