package shape

import (
	"math"

	"github.com/granular-dem/spherharm/legendre"
)

// angleEps is the nudge applied to theta and phi when their sine is exactly
// zero before gradient evaluation. Dividing by sin(theta) is otherwise
// impossible; the nudge introduces a small bias near the poles which
// callers must tolerate. It is a consistency hack, not true pole handling.
const angleEps = 1e-5

// sweep accumulates a truncated expansion degree by degree at a fixed
// angular direction, recycling the Legendre recursions across degrees. It
// backs every radius, gradient and contact-check evaluation so the
// recursion bookkeeping exists exactly once.
type sweep struct {
	coeffs     []float64
	theta, phi float64
	x, st      float64

	pm1, pm2 []float64 // P(n-1,m), P(n-2,m) by order m
	pnn      float64   // running diagonal P(n,n)

	grad      bool
	r, dt, dp float64
}

func newSweep(coeffs []float64, maxDegree int, theta, phi float64, grad bool) *sweep {
	if grad {
		if math.Sin(theta) == 0 {
			theta += angleEps
		}
		if math.Sin(phi) == 0 {
			phi += angleEps
		}
	}
	s := &sweep{
		coeffs: coeffs,
		theta:  theta,
		phi:    phi,
		x:      math.Cos(theta),
		st:     math.Sin(theta),
		pm1:    make([]float64, maxDegree+1),
		pm2:    make([]float64, maxDegree+1),
		grad:   grad,
		r:      coeffs[0] * math.Sqrt(1/(4*math.Pi)),
	}
	return s
}

// term folds the order-m contribution of degree n into the accumulators,
// given the normalized Legendre value p = P(n,m,x).
func (s *sweep) term(n, m int, p float64) {
	loc := CoeffIndex(n, m)
	a, b := s.coeffs[loc], s.coeffs[loc+1]

	if m == 0 {
		s.r += a * p
		if s.grad {
			fnm := math.Sqrt(float64(2*n+1) / (4 * math.Pi))
			s.dt -= (a * fnm / s.st) *
				(float64(n+1)*s.x*legendre.Plgndr(n, 0, s.x) -
					float64(n+1)*legendre.Plgndr(n+1, 0, s.x))
		}
		return
	}

	mphi := float64(m) * s.phi
	cmp, smp := math.Cos(mphi), math.Sin(mphi)
	s.r += (a*cmp - b*smp) * 2 * p
	if s.grad {
		s.dp -= (a*smp + b*cmp) * 2 * p * float64(m)
		fnm := math.Sqrt(float64(2*n+1) * legendre.Factorial(n-m) /
			(4 * math.Pi * legendre.Factorial(n+m)))
		s.dt += 2 * (fnm / s.st) *
			(float64(n+1)*s.x*legendre.Plgndr(n, m, s.x) -
				float64(n-m+1)*legendre.Plgndr(n+1, m, s.x)) *
			(b*smp - a*cmp)
	}
}

// advance folds in every order of degree n. Degrees must be visited in
// order starting from 1: the first two degrees seed the recursion buffers,
// later degrees recycle them. The top two orders of each degree use the
// diagonal recursions since the two-previous-value recursion is undefined
// there.
func (s *sweep) advance(n int) {
	switch {
	case n == 1:
		p := legendre.Plegendre(1, 0, s.x)
		s.pm2[0] = p
		s.term(1, 0, p)
		p = legendre.Plegendre(1, 1, s.x)
		s.pm2[1] = p
		s.term(1, 1, p)
	case n == 2:
		p := legendre.Plegendre(2, 0, s.x)
		s.pm1[0] = p
		s.term(2, 0, p)
		for m := 2; m >= 1; m-- {
			p = legendre.Plegendre(2, m, s.x)
			s.pm1[m] = p
			s.term(2, m, p)
		}
		s.pnn = s.pm1[2]
	default:
		for m := 0; m < n-1; m++ {
			p := legendre.PlegendreRecycle(n, m, s.x, s.pm1[m], s.pm2[m])
			s.pm2[m] = s.pm1[m]
			s.pm1[m] = p
			s.term(n, m, p)
		}
		p := s.x * math.Sqrt(2*float64(n-1)+3) * s.pnn
		s.pm2[n-1] = s.pm1[n-1]
		s.pm1[n-1] = p
		s.term(n, n-1, p)
		p = legendre.PlegendreNN(n, s.x, s.pnn)
		s.pnn = p
		s.pm1[n] = p
		s.term(n, n, p)
	}
}
