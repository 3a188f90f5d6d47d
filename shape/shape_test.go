package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/num/quat"

	"github.com/granular-dem/spherharm/quad"
)

const gridOrder = 20

// sphereCoeffs expands a sphere of the given radius: only a(0,0) is set,
// to rad * sqrt(4 pi).
func sphereCoeffs(rad float64, maxDegree int) []float64 {
	coeffs := make([]float64, NumCoeffs(maxDegree))
	coeffs[0] = rad * math.Sqrt(4*math.Pi)
	return coeffs
}

// bumpyCoeffs adds a degree-2 zonal perturbation to a unit sphere, so
// r(theta) = 1 + eps * sqrt(5/4pi) * (3 cos^2 theta - 1)/2.
func bumpyCoeffs(eps float64, maxDegree int) []float64 {
	coeffs := sphereCoeffs(1, maxDegree)
	coeffs[CoeffIndex(2, 0)] = eps
	return coeffs
}

func bumpyRadius(eps, theta float64) float64 {
	x := math.Cos(theta)
	return 1 + eps*math.Sqrt(5/(4*math.Pi))*(3*x*x-1)/2
}

var testAngles = [][2]float64{
	{0.1, 0.3}, {math.Pi / 2, 1.0}, {1.2, 4.5}, {2.8, 6.1}, {1.9, 0.0},
}

func TestUnitSphere(t *testing.T) {
	grid := quad.NewSphereGrid(gridOrder)
	s, err := New(sphereCoeffs(1, 4), 4, grid)
	assert.NoError(t, err, "setup")

	for _, a := range testAngles {
		assert.InDelta(t, 1.0, s.Radius(a[0], a[1]), 1e-12, "radius")
	}
	assert.InDelta(t, 1.0, s.MaxRad, 1e-12, "max radius")
	assert.InDelta(t, 4*math.Pi/3, s.Volume, 1e-6, "volume")

	// All principal moments of a unit sphere are 2/5 after the volume
	// normalization.
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0.4, s.Inertia[i], 1e-6, "principal moment")
	}
	assert.InDelta(t, 1.0, quat.Abs(s.InitQuat), 1e-12, "unit quaternion")

	// Nothing above degree 0 contributes, so every bound collapses to 1.
	for n := 0; n <= 4; n++ {
		assert.InDelta(t, 1.0, s.ExpFacts[n], 1e-12, "expansion factor")
	}
}

func TestUnitSphereGradients(t *testing.T) {
	grid := quad.NewSphereGrid(gridOrder)
	s, err := New(sphereCoeffs(1, 4), 4, grid)
	assert.NoError(t, err, "setup")

	for _, a := range testAngles {
		rd := s.RadiusAndGradients(a[0], a[1])
		assert.InDelta(t, 1.0, rd.R, 1e-12, "radius")
		assert.InDelta(t, 0.0, rd.DTheta, 1e-10, "polar gradient")
		assert.InDelta(t, 0.0, rd.DPhi, 1e-10, "azimuthal gradient")
	}
}

func TestUnitSphereNormal(t *testing.T) {
	grid := quad.NewSphereGrid(gridOrder)
	s, err := New(sphereCoeffs(1, 4), 4, grid)
	assert.NoError(t, err, "setup")

	for _, a := range testAngles {
		theta, phi := a[0], a[1]
		r, norm := s.RadiusAndNormal(theta, phi)
		assert.InDelta(t, 1.0, r, 1e-12, "radius")

		// The normal of a sphere is radial; only its direction matters.
		// Angles whose sine is exactly zero are nudged by 1e-5 before
		// evaluation, so those directions carry a bias of the same size.
		tol := 1e-8
		if math.Sin(theta) == 0 || math.Sin(phi) == 0 {
			tol = 1e-4
		}
		mag := math.Sqrt(norm.X*norm.X + norm.Y*norm.Y + norm.Z*norm.Z)
		assert.InDelta(t, math.Sin(theta)*math.Cos(phi), norm.X/mag, tol, "x")
		assert.InDelta(t, math.Sin(theta)*math.Sin(phi), norm.Y/mag, tol, "y")
		assert.InDelta(t, math.Cos(theta), norm.Z/mag, tol, "z")
	}
}

func TestBumpyRadius(t *testing.T) {
	eps := 0.3
	grid := quad.NewSphereGrid(gridOrder)
	s, err := New(bumpyCoeffs(eps, 4), 4, grid)
	assert.NoError(t, err, "setup")

	for _, a := range testAngles {
		assert.InDelta(t, bumpyRadius(eps, a[0]), s.Radius(a[0], a[1]), 1e-12,
			"zonal radius")
	}

	// d/dtheta of the zonal term is -3 eps sqrt(5/4pi) cos sin.
	for _, a := range testAngles {
		want := -3 * eps * math.Sqrt(5/(4*math.Pi)) *
			math.Cos(a[0]) * math.Sin(a[0])
		rd := s.RadiusAndGradients(a[0], a[1])
		assert.InDelta(t, want, rd.DTheta, 1e-9, "polar gradient")
		assert.InDelta(t, 0.0, rd.DPhi, 1e-10, "azimuthal gradient")
	}
}

func TestBumpyInertiaFrame(t *testing.T) {
	grid := quad.NewSphereGrid(gridOrder)
	s, err := New(bumpyCoeffs(0.3, 4), 4, grid)
	assert.NoError(t, err, "setup")

	// Zonal shapes are axisymmetric about z: two moments coincide.
	assert.InDelta(t, 1.0, quat.Abs(s.InitQuat), 1e-12, "unit quaternion")
	assert.True(t, s.Inertia[0] <= s.Inertia[1] && s.Inertia[1] <= s.Inertia[2],
		"moments ascend")
	assert.InDelta(t, s.Inertia[1], s.Inertia[2], 1e-6, "degenerate pair")
}

func TestExpansionFactorsMonotonic(t *testing.T) {
	grid := quad.NewSphereGrid(gridOrder)
	coeffs := bumpyCoeffs(0.3, 6)
	coeffs[CoeffIndex(4, 2)] = 0.05
	coeffs[CoeffIndex(4, 2)+1] = -0.02
	s, err := New(coeffs, 6, grid)
	assert.NoError(t, err, "setup")

	assert.Equal(t, 1.0, s.ExpFacts[6], "top factor")
	for n := 0; n < 6; n++ {
		assert.True(t, s.ExpFacts[n] >= s.ExpFacts[n+1],
			"factors must not increase with degree")
		assert.True(t, s.ExpFacts[n] >= 1, "factors bound growth from above")
	}

	// The bound property itself: at any direction, the final radius never
	// exceeds factor * partial radius.
	parts := make([]float64, 7)
	for _, a := range testAngles {
		partialRadii(coeffs, 6, a[0], a[1], parts)
		for n := 0; n <= 6; n++ {
			assert.True(t, parts[6] <= s.ExpFacts[n]*parts[n]+1e-12,
				"bound violated")
		}
	}
}

func TestCheckContactMatchesRadius(t *testing.T) {
	grid := quad.NewSphereGrid(gridOrder)
	s, err := New(bumpyCoeffs(0.3, 4), 4, grid)
	assert.NoError(t, err, "setup")

	for _, a := range testAngles {
		theta, phi := a[0], a[1]
		r := s.Radius(theta, phi)

		ok, rad := s.CheckContact(phi, theta, 0.9*r)
		assert.True(t, ok, "inside point must touch")
		assert.InDelta(t, r, rad, 1e-12, "contact radius")

		ok, _ = s.CheckContact(phi, theta, 1.01*s.MaxRad)
		assert.False(t, ok, "point beyond max radius can never touch")
	}
}

func TestVolumeTrapezoidAgrees(t *testing.T) {
	grid := quad.NewSphereGrid(gridOrder)
	s, err := New(bumpyCoeffs(0.2, 4), 4, grid)
	assert.NoError(t, err, "setup")

	assert.InDelta(t, s.Volume, s.VolumeTrapezoid(40), 1e-4*s.Volume,
		"volume estimates disagree")
}

func TestNewRejectsShortCoeffs(t *testing.T) {
	grid := quad.NewSphereGrid(gridOrder)
	_, err := New(make([]float64, 4), 3, grid)
	assert.Error(t, err, "too few coefficients")
}

func TestNewRejectsNegativeVolume(t *testing.T) {
	grid := quad.NewSphereGrid(gridOrder)
	_, err := New(sphereCoeffs(-1, 2), 2, grid)
	assert.Error(t, err, "negative volume")
}
