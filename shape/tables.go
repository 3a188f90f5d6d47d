package shape

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/granular-dem/spherharm/quad"
)

// Principal moments smaller than this fraction of the largest are zeroed.
const inertiaEps = 1e-7

// Multiplier applied on top of the expansion-factor ratios and the maximum
// radius. Kept at 1 in the canonical path.
const safetyFactor = 1.0

// setInertia integrates the second-moment tensor and the volume over the
// setup grid, eigendecomposes the tensor and derives the principal moments
// and the initial orientation quaternion.
func (s *Shape) setInertia(g *quad.SphereGrid) error {
	var i11, i22, i33, i12, i13, i23, vol float64

	k := 0
	for i := 0; i < g.Order; i++ {
		for j := 0; j < g.Order; j++ {
			theta, phi := g.At(k)
			st, ct := math.Sin(theta), math.Cos(theta)
			sp, cp := math.Sin(phi), math.Cos(phi)
			r := s.GridRads[k]
			fact := 0.2 * g.W[i] * g.W[j] * math.Pow(r, 5) * st
			vol += g.W[i] * g.W[j] * r * r * r * st / 3
			i11 += fact * (1 - cp*st*cp*st)
			i22 += fact * (1 - sp*st*sp*st)
			i33 += fact * (1 - ct*ct)
			i12 -= fact * cp * sp * st * st
			i13 -= fact * cp * ct * st
			i23 -= fact * sp * ct * st
			k++
		}
	}

	// The grid maps both Gauss rules onto angles, so the measure of the
	// (theta, phi) box is pi^2/2 per unit weight product.
	measure := 0.5 * math.Pi * math.Pi
	vol *= measure
	if vol <= 0 {
		return fmt.Errorf("shape: computed volume %g is not positive", vol)
	}
	s.Volume = vol

	norm := measure / vol
	i11 *= norm
	i22 *= norm
	i33 *= norm
	i12 *= norm
	i13 *= norm
	i23 *= norm

	tensor := mat.NewSymDense(3, []float64{
		i11, i12, i13,
		i12, i22, i23,
		i13, i23, i33,
	})
	var es mat.EigenSym
	if !es.Factorize(tensor, true) {
		return fmt.Errorf("shape: inertia tensor eigendecomposition did not converge")
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	ex := r3.Vec{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)}
	ey := r3.Vec{X: vecs.At(0, 1), Y: vecs.At(1, 1), Z: vecs.At(2, 1)}
	ez := r3.Vec{X: vecs.At(0, 2), Y: vecs.At(1, 2), Z: vecs.At(2, 2)}

	max := math.Max(vals[0], math.Max(vals[1], vals[2]))
	for i := range vals {
		if vals[i] < inertiaEps*max {
			vals[i] = 0
		}
	}
	s.Inertia = [3]float64{vals[0], vals[1], vals[2]}

	// Force a right-handed eigenvector triple before building the
	// orientation quaternion.
	if r3.Dot(r3.Cross(ex, ey), ez) < 0 {
		ez = r3.Scale(-1, ez)
	}
	s.InitQuat = frameToQuat(ex, ey, ez)
	return nil
}

// frameToQuat converts a right-handed orthonormal frame, given as the
// space-frame directions of the body axes, into a unit quaternion.
func frameToQuat(ex, ey, ez r3.Vec) quat.Number {
	var q quat.Number

	q0sq := 0.25 * (ex.X + ey.Y + ez.Z + 1)
	q1sq := q0sq - 0.5*(ey.Y+ez.Z)
	q2sq := q0sq - 0.5*(ex.X+ez.Z)
	q3sq := q0sq - 0.5*(ex.X+ey.Y)

	// Some component must be at least 1/4 since the squares sum to 1.
	switch {
	case q0sq >= 0.25:
		q.Real = math.Sqrt(q0sq)
		q.Imag = (ey.Z - ez.Y) / (4 * q.Real)
		q.Jmag = (ez.X - ex.Z) / (4 * q.Real)
		q.Kmag = (ex.Y - ey.X) / (4 * q.Real)
	case q1sq >= 0.25:
		q.Imag = math.Sqrt(q1sq)
		q.Real = (ey.Z - ez.Y) / (4 * q.Imag)
		q.Jmag = (ey.X + ex.Y) / (4 * q.Imag)
		q.Kmag = (ex.Z + ez.X) / (4 * q.Imag)
	case q2sq >= 0.25:
		q.Jmag = math.Sqrt(q2sq)
		q.Real = (ez.X - ex.Z) / (4 * q.Jmag)
		q.Imag = (ey.X + ex.Y) / (4 * q.Jmag)
		q.Kmag = (ez.Y + ey.Z) / (4 * q.Jmag)
	default:
		q.Kmag = math.Sqrt(q3sq)
		q.Real = (ex.Y - ey.X) / (4 * q.Kmag)
		q.Imag = (ez.X + ex.Z) / (4 * q.Kmag)
		q.Jmag = (ez.Y + ey.Z) / (4 * q.Kmag)
	}
	return quat.Scale(1/quat.Abs(q), q)
}

// partialRadii evaluates, for one direction, the running partial radius of
// every truncation degree 0..maxDegree.
func partialRadii(coeffs []float64, maxDegree int, theta, phi float64, out []float64) {
	sw := newSweep(coeffs, maxDegree, theta, phi, false)
	out[0] = sw.r
	for n := 1; n <= maxDegree; n++ {
		sw.advance(n)
		out[n] = sw.r
	}
}

// expansionFactors computes the per-degree radius growth bounds and the
// maximum radius over the canonical Gauss grid. For each degree the
// worst-case ratio of the next partial radius to the current one is taken
// over the grid, clamped to at least 1, and the factors are accumulated as
// a non-increasing product from the top degree down.
func expansionFactors(coeffs []float64, maxDegree int, g *quad.SphereGrid) ([]float64, float64) {
	parts := make([]float64, maxDegree+1)
	facts := make([]float64, maxDegree+1)
	ratios := make([]float64, maxDegree)
	maxRad := 0.0

	for k := 0; k < g.Len(); k++ {
		theta, phi := g.At(k)
		partialRadii(coeffs, maxDegree, theta, phi, parts)
		for n := 0; n < maxDegree; n++ {
			if r := parts[n+1] / parts[n]; r > ratios[n] {
				ratios[n] = r
			}
		}
		if parts[maxDegree] > maxRad {
			maxRad = parts[maxDegree]
		}
	}

	facts[maxDegree] = 1
	factor := 1.0
	for n := maxDegree - 1; n >= 0; n-- {
		r := ratios[n]
		if r < 1 {
			r = 1
		}
		factor *= r * safetyFactor
		facts[n] = factor
	}
	return facts, maxRad * safetyFactor
}

// ExpansionFactorsUniform is the coarse variant of the expansion-factor
// pass, sampling a uniform theta/phi grid that clusters at the poles. The
// polar rows are pulled slightly inward to dodge the exact poles.
func ExpansionFactorsUniform(coeffs []float64, maxDegree, order int) ([]float64, float64) {
	parts := make([]float64, maxDegree+1)
	facts := make([]float64, maxDegree+1)
	ratios := make([]float64, maxDegree)
	maxRad := 0.0

	for i := 0; i < order; i++ {
		theta := float64(i) * math.Pi / float64(order)
		if i == 0 {
			theta = 0.001 * math.Pi
		}
		if i == order-1 {
			theta = 0.999 * math.Pi
		}
		for j := 0; j < order; j++ {
			phi := 2 * math.Pi * float64(j) / float64(order)
			partialRadii(coeffs, maxDegree, theta, phi, parts)
			for n := 0; n < maxDegree; n++ {
				if r := parts[n+1] / parts[n]; r > ratios[n] {
					ratios[n] = r
				}
			}
			if parts[maxDegree] > maxRad {
				maxRad = parts[maxDegree]
			}
		}
	}

	facts[maxDegree] = 1
	factor := 1.0
	for n := maxDegree - 1; n >= 0; n-- {
		r := ratios[n]
		if r < 1 {
			r = 1
		}
		factor *= r * safetyFactor
		facts[n] = factor
	}
	return facts, maxRad * safetyFactor
}

// VolumeTrapezoid is a secondary volume estimate on the polar cap grid
// (Gauss nodes in theta, trapezoidal division in phi), used as a setup
// cross-check of the canonical product-grid volume.
func (s *Shape) VolumeTrapezoid(order int) float64 {
	ps := quad.GaussLegendre(order)
	phis := quad.TrapezoidPhis(order)

	vol := 0.0
	for _, phi := range phis {
		for _, p := range ps {
			theta := math.Pi*0.5*p.X() + math.Pi*0.5
			r := s.Radius(theta, phi)
			vol += p.Weight * r * r * r * math.Sin(theta)
		}
	}
	return vol * (math.Pi * math.Pi / float64(len(phis))) / 3
}
