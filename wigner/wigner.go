// Package wigner rotates spherical harmonic expansions through Euler
// angles by building the Wigner small-d matrices with a degree recursion.
package wigner

import (
	"math"
	"math/cmplx"

	"github.com/granular-dem/spherharm/legendre"
	"github.com/granular-dem/spherharm/shape"
)

// betaEps keeps the half-angle sines and cosines away from exact zeros,
// where the edge recursions divide by zero.
const betaEps = 1e-10

// Rotate applies the rigid z-y-z rotation (alpha, beta, gamma) to an
// expansion in the packed m >= 0 layout and returns the rotated
// coefficients in the same layout. The input is never modified.
//
// Each output coefficient sums over the input orders:
//
//	a'(n,m) = sum_mp exp(-i m alpha) d[n][m][mp](beta) exp(-i mp gamma) a(n,mp)
//
// with a(n,-m) supplied by conjugate symmetry. The inverse sequence
// (-gamma, -beta, -alpha) undoes the rotation exactly.
func Rotate(coeffs []float64, maxDegree int, alpha, beta, gamma float64) []float64 {
	cosb := math.Cos(beta / 2)
	sinb := math.Sin(beta / 2)
	if sinb == 0 || cosb == 0 {
		beta += betaEps
		cosb = math.Cos(beta / 2)
		sinb = math.Sin(beta / 2)
	}

	d := smallD(maxDegree, cosb, sinb)

	out := make([]float64, shape.NumCoeffs(maxDegree))
	for n := 0; n <= maxDegree; n++ {
		for m := 0; m <= n; m++ {
			var sum complex128
			for mp := -n; mp <= n; mp++ {
				ma := mp
				if ma < 0 {
					ma = -ma
				}
				k := shape.CoeffIndex(n, ma)
				anm := complex(coeffs[k], coeffs[k+1])
				if mp < 0 {
					anm = cmplx.Conj(anm)
					if ma&1 == 1 {
						anm = -anm
					}
				}
				phase := cmplx.Exp(complex(0, -float64(m)*alpha-float64(mp)*gamma))
				sum += phase * complex(d[n][n+m][n+mp], 0) * anm
			}
			idx := shape.CoeffIndex(n, m)
			out[idx] = real(sum)
			out[idx+1] = imag(sum)
		}
	}
	return out
}

// smallD fills d[n][n+mp][n+m] = d^n_{mp,m}(beta) for every degree up to
// maxDegree. Degrees 0 and 1 come from the explicit factorial sum, higher
// degrees from the three-term recursion on the previous degree with
// separate branches for the mp = -n and mp = +n edges.
func smallD(maxDegree int, cosb, sinb float64) [][][]float64 {
	d := make([][][]float64, maxDegree+1)
	for n := range d {
		d[n] = make([][]float64, 2*n+1)
		for i := range d[n] {
			d[n][i] = make([]float64, 2*n+1)
		}
	}

	top := maxDegree
	if top > 1 {
		top = 1
	}
	for n := 0; n <= top; n++ {
		for mp := -n; mp <= n; mp++ {
			for m := -n; m <= n; m++ {
				d[n][n+mp][n+m] = smallDDirect(n, mp, m, cosb, sinb)
			}
		}
	}

	ss := sinb * sinb
	cc := cosb * cosb
	sc := sinb * cosb
	cms := cc - ss

	for n := 2; n <= maxDegree; n++ {
		rn := float64(n)
		for mp := -n; mp <= n; mp++ {
			rmp := float64(mp)
			for m := -n; m <= n; m++ {
				rm := float64(m)
				var term float64
				switch {
				case mp > -n && mp < n:
					a := cms * math.Sqrt(((rn+rm)*(rn-rm))/((rn+rmp)*(rn-rmp)))
					b := sc * math.Sqrt(((rn+rm)*(rn+rm-1))/((rn+rmp)*(rn-rmp)))
					nb := -sc * math.Sqrt(((rn-rm)*(rn-rm-1))/((rn+rmp)*(rn-rmp)))
					term = a*dAt(d, n-1, mp, m) +
						b*dAt(d, n-1, mp, m-1) +
						nb*dAt(d, n-1, mp, m+1)
				case mp == -n:
					c := 2 * sc * math.Sqrt(((rn+rm)*(rn-rm))/((rn-rmp)*(rn-rmp-1)))
					cd := ss * math.Sqrt(((rn+rm)*(rn+rm-1))/((rn-rmp)*(rn-rmp-1)))
					nd := cc * math.Sqrt(((rn-rm)*(rn-rm-1))/((rn-rmp)*(rn-rmp-1)))
					term = c*dAt(d, n-1, mp+1, m) +
						cd*dAt(d, n-1, mp+1, m-1) +
						nd*dAt(d, n-1, mp+1, m+1)
				default: // mp == n
					c := -2 * sc * math.Sqrt(((rn+rm)*(rn-rm))/((rn+rmp)*(rn+rmp-1)))
					cd := cc * math.Sqrt(((rn+rm)*(rn+rm-1))/((rn+rmp)*(rn+rmp-1)))
					nd := ss * math.Sqrt(((rn-rm)*(rn-rm-1))/((rn+rmp)*(rn+rmp-1)))
					term = c*dAt(d, n-1, mp-1, m) +
						cd*dAt(d, n-1, mp-1, m-1) +
						nd*dAt(d, n-1, mp-1, m+1)
				}
				d[n][n+mp][n+m] = term
			}
		}
	}
	return d
}

// smallDDirect is the factorial sum for d^n_{mp,m}(beta). Only used for
// the recursion seeds, so the factorials stay tiny.
func smallDDirect(n, mp, m int, cosb, sinb float64) float64 {
	norm := math.Sqrt(
		legendre.Factorial(n+mp) * legendre.Factorial(n-mp) /
			(legendre.Factorial(n+m) * legendre.Factorial(n-m)),
	)
	klow, khigh := 0, n-mp
	if m-mp > klow {
		klow = m - mp
	}
	if n+m < khigh {
		khigh = n + m
	}
	total := 0.0
	for k := klow; k <= khigh; k++ {
		term := legendre.Factorial(n+m) /
			(legendre.Factorial(k) * legendre.Factorial(n+m-k))
		term *= legendre.Factorial(n-m) /
			(legendre.Factorial(n-mp-k) * legendre.Factorial(mp+k-m))
		if (k+mp-m)&1 == 1 {
			term = -term
		}
		total += term *
			math.Pow(cosb, float64(2*n+m-mp-2*k)) *
			math.Pow(sinb, float64(2*k+mp-m))
	}
	return total * norm
}

// dAt reads d^n_{mp,m}, treating orders outside [-n, n] as zero so the
// recursion can reference neighbors past the edge of the previous degree.
func dAt(d [][][]float64, n, mp, m int) float64 {
	if mp < -n || mp > n || m < -n || m > n {
		return 0
	}
	return d[n][n+mp][n+m]
}
