package quad

import (
	"math"
)

// SphereGrid is the order^2 product grid of quadrature points on the unit
// sphere used by shape setup, with theta mapped onto [0, pi] and phi onto
// [0, 2 pi] from the same 1D Gauss rule. Built once and shared read-only.
type SphereGrid struct {
	Order      int
	Theta, Phi []float64 // len Order^2, theta-major
	W          []float64 // len Order, 1D ring weights
}

// NewSphereGrid builds the product grid for the given 1D rule order.
func NewSphereGrid(order int) *SphereGrid {
	ps := GaussLegendre(order)

	g := &SphereGrid{
		Order: order,
		Theta: make([]float64, order*order),
		Phi:   make([]float64, order*order),
		W:     make([]float64, order),
	}
	for i := range ps {
		g.W[i] = ps[i].Weight
	}

	k := 0
	for i := 0; i < order; i++ {
		theta := 0.5 * math.Pi * (ps[i].X() + 1)
		for j := 0; j < order; j++ {
			g.Theta[k] = theta
			g.Phi[k] = math.Pi * (ps[j].X() + 1)
			k++
		}
	}
	return g
}

// At returns the angles of grid point k.
func (g *SphereGrid) At(k int) (theta, phi float64) {
	return g.Theta[k], g.Phi[k]
}

// Len returns the number of grid points.
func (g *SphereGrid) Len() int { return len(g.Theta) }

// TrapezoidPhis returns the 2(order-1)+1 evenly spaced azimuths used for
// polar cap integration, where phi carries a trapezoidal division instead
// of Gauss nodes.
func TrapezoidPhis(order int) []float64 {
	n := 2 * (order - 1)
	phis := make([]float64, n+1)
	for l := 0; l <= n; l++ {
		phis[l] = 2 * math.Pi * float64(l) / float64(n+1)
	}
	return phis
}
