/*
package shape holds the per-shape tables of a spherical-harmonic particle
and the surface queries evaluated against them.

A Shape is built once from its parsed coefficients, is immutable afterward,
and is shared read-only by every particle referencing it.
*/
package shape

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/granular-dem/spherharm/quad"
)

// Shape is the immutable derived data of one spherical-harmonic surface.
type Shape struct {
	// Coeffs is the flat real/imag coefficient array, addressed through
	// CoeffIndex.
	Coeffs    []float64
	MaxDegree int

	// ExpFacts[n] bounds how much the degree-n partial radius can still
	// grow by the top degree. Non-increasing, ExpFacts[MaxDegree] = 1.
	ExpFacts []float64

	// Inertia holds the three principal moments; InitQuat orients the
	// right-handed inertia eigenframe.
	Inertia  [3]float64
	InitQuat quat.Number

	// MaxRad is the largest surface radius over all directions; Volume is
	// the quadrature estimate used to normalize the inertia tensor.
	MaxRad float64
	Volume float64

	// GridRads caches the body-frame radius at every point of the setup
	// quadrature grid.
	GridRads []float64
}

// RadiusDeriv bundles a surface radius with its angular gradients.
type RadiusDeriv struct {
	R, DTheta, DPhi float64
}

// New computes all derived tables for a coefficient set truncated at
// maxDegree, evaluating setup integrals on the given grid.
func New(coeffs []float64, maxDegree int, grid *quad.SphereGrid) (*Shape, error) {
	if len(coeffs) < NumCoeffs(maxDegree) {
		return nil, fmt.Errorf(
			"shape: %d coefficients supplied, %d needed for degree %d",
			len(coeffs), NumCoeffs(maxDegree), maxDegree,
		)
	}

	s := &Shape{
		Coeffs:    coeffs,
		MaxDegree: maxDegree,
		GridRads:  make([]float64, grid.Len()),
	}
	for k := 0; k < grid.Len(); k++ {
		theta, phi := grid.At(k)
		s.GridRads[k] = RadiusCoeffs(coeffs, maxDegree, theta, phi)
	}

	if err := s.setInertia(grid); err != nil {
		return nil, err
	}
	s.ExpFacts, s.MaxRad = expansionFactors(coeffs, maxDegree, grid)
	return s, nil
}

// Radius returns the surface radius at the given body-frame angles,
// evaluated at the full expansion degree.
func (s *Shape) Radius(theta, phi float64) float64 {
	return RadiusCoeffs(s.Coeffs, s.MaxDegree, theta, phi)
}

// RadiusCoeffs is the raw-coefficient variant of Radius, used where a
// rotated coefficient set exists without a backing Shape.
func RadiusCoeffs(coeffs []float64, maxDegree int, theta, phi float64) float64 {
	sw := newSweep(coeffs, maxDegree, theta, phi, false)
	for n := 1; n <= maxDegree; n++ {
		sw.advance(n)
	}
	return sw.r
}

// RadiusAndGradients returns the radius together with its derivatives with
// respect to the polar and azimuthal angle.
func (s *Shape) RadiusAndGradients(theta, phi float64) RadiusDeriv {
	return radiusDerivCoeffs(s.Coeffs, s.MaxDegree, theta, phi)
}

func radiusDerivCoeffs(coeffs []float64, maxDegree int, theta, phi float64) RadiusDeriv {
	sw := newSweep(coeffs, maxDegree, theta, phi, true)
	for n := 1; n <= maxDegree; n++ {
		sw.advance(n)
	}
	return RadiusDeriv{R: sw.r, DTheta: sw.dt, DPhi: sw.dp}
}

// RadiusAndNormal returns the radius and the unnormalized outward surface
// normal in the body frame. Angles whose sine is exactly zero are nudged
// by a small epsilon before evaluation, so the result carries a small bias
// at the poles.
func (s *Shape) RadiusAndNormal(theta, phi float64) (float64, r3.Vec) {
	return RadiusAndNormalCoeffs(s.Coeffs, s.MaxDegree, theta, phi)
}

// RadiusAndNormalCoeffs is the raw-coefficient variant of RadiusAndNormal.
func RadiusAndNormalCoeffs(coeffs []float64, maxDegree int, theta, phi float64) (float64, r3.Vec) {
	sw := newSweep(coeffs, maxDegree, theta, phi, true)
	for n := 1; n <= maxDegree; n++ {
		sw.advance(n)
	}
	// The nudged angles must feed the normal too, or the parametric
	// cross product is inconsistent with the gradients.
	return sw.r, surfaceNormal(sw.theta, sw.phi, sw.r, sw.dp, sw.dt)
}

// surfaceNormal converts (r, dr/dphi, dr/dtheta) into the unnormalized
// outward normal via the parametric-surface cross product.
func surfaceNormal(theta, phi, r, rp, rt float64) r3.Vec {
	st, ct := math.Sin(theta), math.Cos(theta)
	sp, cp := math.Sin(phi), math.Cos(phi)
	return r3.Vec{
		X: r * (cp*r*st*st + sp*rp - cp*ct*st*rt),
		Y: r * (r*sp*st*st - cp*rp - ct*sp*st*rt),
		Z: r * st * (ct*r + st*rt),
	}
}

// CheckContact reports whether the surface radius at (theta, phi) reaches
// testDist. The expansion is evaluated degree by degree and abandoned as
// soon as the expansion-factor bound falls below testDist, which rejects
// the vast majority of candidate directions after a few degrees. On
// contact the exact top-degree radius is returned.
func (s *Shape) CheckContact(phi, theta, testDist float64) (bool, float64) {
	if testDist > s.ExpFacts[0]*s.Coeffs[0]*math.Sqrt(1/(4*math.Pi)) {
		return false, 0
	}

	sw := newSweep(s.Coeffs, s.MaxDegree, theta, phi, false)
	for n := 1; n <= s.MaxDegree; n++ {
		sw.advance(n)
		if testDist > s.ExpFacts[n]*sw.r {
			return false, 0
		}
	}
	return true, sw.r
}

// Coefficients returns a copy of the flat coefficient array.
func (s *Shape) Coefficients() []float64 {
	out := make([]float64, NumCoeffs(s.MaxDegree))
	copy(out, s.Coeffs[:len(out)])
	return out
}
