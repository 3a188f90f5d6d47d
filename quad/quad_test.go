package quad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Both generation paths are covered: orders up to 100 come from gonum,
// larger ones from the Bessel-seeded Newton iteration.
var testOrders = []int{1, 2, 5, 10, 50, 100, 101, 150, 301}

func TestGaussLegendreWeightSum(t *testing.T) {
	for _, order := range testOrders {
		ps := GaussLegendre(order)
		assert.Equal(t, order, len(ps), "rule length")

		sum := 0.0
		for _, p := range ps {
			sum += p.Weight
		}
		assert.InDelta(t, 2.0, sum, 1e-12, "weights must sum to the measure")
	}
}

func TestGaussLegendreNodeLayout(t *testing.T) {
	for _, order := range testOrders {
		ps := GaussLegendre(order)
		for i := 1; i < len(ps); i++ {
			assert.Less(t, ps[i-1].Theta, ps[i].Theta, "theta must ascend")
		}
		// The rule is symmetric about the equator.
		for i := 0; i < len(ps)/2; i++ {
			j := len(ps) - 1 - i
			assert.InDelta(t, math.Pi, ps[i].Theta+ps[j].Theta, 1e-12,
				"node symmetry")
			assert.InDelta(t, ps[i].Weight, ps[j].Weight, 1e-13,
				"weight symmetry")
		}
	}
}

// An order-k rule integrates polynomials up to degree 2k-1 exactly.
func TestGaussLegendrePolynomialExactness(t *testing.T) {
	for _, order := range []int{2, 5, 10, 50, 150} {
		ps := GaussLegendre(order)
		var i2, i3 float64
		for _, p := range ps {
			x := p.X()
			i2 += p.Weight * x * x
			i3 += p.Weight * x * x * x
		}
		assert.InDelta(t, 2.0/3.0, i2, 1e-12, "integral of x^2")
		assert.InDelta(t, 0.0, i3, 1e-12, "integral of x^3")
	}
}

func TestGaussLegendreSmoothIntegrand(t *testing.T) {
	for _, order := range []int{20, 150, 301} {
		ps := GaussLegendre(order)
		sum := 0.0
		for _, p := range ps {
			sum += p.Weight * math.Cos(p.X())
		}
		assert.InDelta(t, 2*math.Sin(1), sum, 1e-12, "integral of cos")
	}
}

func TestGaussLegendrePanicsOnBadOrder(t *testing.T) {
	assert.Panics(t, func() { GaussLegendre(0) }, "zero order")
	assert.Panics(t, func() { GaussLegendre(-3) }, "negative order")
}

func TestSphereGrid(t *testing.T) {
	order := 12
	g := NewSphereGrid(order)
	assert.Equal(t, order*order, g.Len(), "grid size")
	assert.Equal(t, order, len(g.W), "ring weight count")

	for k := 0; k < g.Len(); k++ {
		theta, phi := g.At(k)
		assert.True(t, theta > 0 && theta < math.Pi, "theta in range")
		assert.True(t, phi > 0 && phi < 2*math.Pi, "phi in range")
	}

	// Rows share theta: the grid is theta-major.
	theta0, _ := g.At(0)
	theta1, _ := g.At(order - 1)
	assert.Equal(t, theta0, theta1, "first row at fixed theta")

	// The surface measure of the unit sphere comes out of the product
	// weights with the pi^2/2 interval factor.
	area := 0.0
	k := 0
	for i := 0; i < order; i++ {
		for j := 0; j < order; j++ {
			theta, _ := g.At(k)
			area += g.W[i] * g.W[j] * math.Sin(theta)
			k++
		}
	}
	area *= 0.5 * math.Pi * math.Pi
	assert.InDelta(t, 4*math.Pi, area, 1e-10, "unit sphere area")
}

func TestTrapezoidPhis(t *testing.T) {
	order := 10
	phis := TrapezoidPhis(order)
	assert.Equal(t, 2*(order-1)+1, len(phis), "azimuth count")
	assert.Equal(t, 0.0, phis[0], "first azimuth")

	step := 2 * math.Pi / float64(len(phis))
	for i := 1; i < len(phis); i++ {
		assert.InDelta(t, step, phis[i]-phis[i-1], 1e-14, "even spacing")
	}
}
