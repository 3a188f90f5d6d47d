/*
package quad computes Gauss-Legendre quadrature rules and the spherical
product grids built from them.

Rules of order at most 100 are generated through gonum's integrate/quad
fast path. Larger orders seed every node from a zero of the Bessel function
J0 and polish it with Newton iterations on the Legendre recurrence, which
reaches machine precision in a handful of steps.
*/
package quad

import (
	"fmt"
	"math"
	"sort"

	gquad "gonum.org/v1/gonum/integrate/quad"
)

// Pair is a single quadrature node/weight pair. The node is stored as the
// polar angle theta in [0, pi].
type Pair struct {
	Theta, Weight float64
}

// X returns the node as an abscissa on [-1, 1].
func (p Pair) X() float64 { return math.Cos(p.Theta) }

// asymptoticOrder is the largest order served by the gonum fast path.
// Above it the Bessel-zero seeded evaluation takes over.
const asymptoticOrder = 100

// GaussLegendre returns the order-point Gauss-Legendre rule, sorted by
// strictly increasing theta. The weights sum to 2, the measure of [-1, 1].
// It panics if order < 1.
func GaussLegendre(order int) []Pair {
	if order < 1 {
		panic(fmt.Sprintf("quad: order %d is not positive", order))
	}

	ps := make([]Pair, order)
	if order <= asymptoticOrder {
		xs, ws := make([]float64, order), make([]float64, order)
		gquad.Legendre{}.FixedLocations(xs, ws, -1, 1)
		// gonum's tabulated rules interleave the two half-intervals, so
		// the nodes come back in neither abscissa nor angle order.
		for i := 0; i < order; i++ {
			ps[i] = Pair{math.Acos(xs[i]), ws[i]}
		}
		sort.Slice(ps, func(i, j int) bool { return ps[i].Theta < ps[j].Theta })
		return ps
	}

	// Only the lower half is computed directly; the rest follows from the
	// reflection theta -> pi - theta.
	nu := float64(order) + 0.5
	half := order / 2
	for k := 1; k <= half; k++ {
		x, w := newtonNode(order, besselJ0Zero(k)/nu)
		ps[k-1] = Pair{math.Acos(x), w}
		ps[order-k] = Pair{math.Pi - ps[k-1].Theta, w}
	}
	if order&1 == 1 {
		_, w := newtonNode(order, math.Pi/2)
		ps[half] = Pair{math.Pi / 2, w}
	}
	return ps
}

// newtonNode polishes the node seeded at cos(theta0) and returns the
// converged abscissa and its weight.
func newtonNode(order int, theta0 float64) (x, w float64) {
	x = math.Cos(theta0)
	var dp float64
	for it := 0; it < 16; it++ {
		p, pm1 := legendrePoly(order, x)
		dp = float64(order) * (x*p - pm1) / (x*x - 1)
		dx := p / dp
		x -= dx
		if math.Abs(dx) <= 1e-15*math.Abs(x)+1e-300 {
			break
		}
	}
	return x, 2 / ((1 - x*x) * dp * dp)
}

// legendrePoly evaluates the Legendre polynomials P_n(x) and P_{n-1}(x) by
// the three-term recurrence.
func legendrePoly(n int, x float64) (pn, pnm1 float64) {
	pnm1, pn = 1, x
	for k := 2; k <= n; k++ {
		pnm1, pn = pn, (float64(2*k-1)*x*pn-float64(k-1)*pnm1)/float64(k)
	}
	return pn, pnm1
}

// The first zeros of the Bessel function J0. Beyond the table McMahon's
// expansion is already accurate to machine precision.
var besselJ0Zeros = [...]float64{
	2.404825557695773, 5.520078110286311, 8.653727912911013,
	11.791534439014281, 14.930917708487787, 18.071063967910924,
	21.211636629879260, 24.352471530749302, 27.493479132040253,
	30.634606468431976, 33.775820213573570, 36.917098353664045,
	40.058425764628240, 43.199791713176730, 46.341188371661815,
	49.482609897397815, 52.624051841114996, 55.765510755019980,
	58.906983926080940, 62.048469190227170,
}

func besselJ0Zero(k int) float64 {
	if k <= len(besselJ0Zeros) {
		return besselJ0Zeros[k-1]
	}
	b := (float64(k) - 0.25) * math.Pi
	b2 := b * b
	return b + 1/(8*b) - 31/(384*b*b2) + 3779/(15360*b*b2*b2)
}
