/*
package legendre evaluates associated Legendre functions.

The normalized functions follow the orthonormal spherical harmonic
convention, i.e. the integral of |P(n,m,cos theta) e^(i m phi)|^2 over the
unit sphere is 1. The Condon-Shortley phase is included.
*/
package legendre

import (
	"fmt"
	"math"
)

const maxFactorial = 170

var factTable [maxFactorial + 1]float64

func init() {
	factTable[0] = 1
	for i := 1; i <= maxFactorial; i++ {
		factTable[i] = factTable[i-1] * float64(i)
	}
}

// Factorial returns n! as a float64. It panics if n is negative or larger
// than 170, the largest factorial representable as a float64.
func Factorial(n int) float64 {
	if n < 0 || n > maxFactorial {
		panic(fmt.Sprintf("legendre: factorial of %d out of range", n))
	}
	return factTable[n]
}

func checkDomain(n, m int, x float64) {
	if m < 0 || m > n || math.Abs(x) > 1 {
		panic(fmt.Sprintf(
			"legendre: invalid arguments n=%d m=%d x=%g", n, m, x,
		))
	}
}

// Plegendre returns the normalized associated Legendre function P(n,m,x)
// for 0 <= m <= n and |x| <= 1. P(m,m) is computed by the closed product
// formula, then the degree is raised one step at a time by the standard
// three-term recursion across degree at fixed order.
func Plegendre(n, m int, x float64) float64 {
	checkDomain(n, m, x)

	pmm := 1.0
	if m > 0 {
		omx2 := (1 - x) * (1 + x)
		fact := 1.0
		for i := 1; i <= m; i++ {
			pmm *= omx2 * fact / (fact + 1)
			fact += 2
		}
	}
	pmm = math.Sqrt(float64(2*m+1) * pmm / (4 * math.Pi))
	if m&1 == 1 {
		pmm = -pmm
	}
	if n == m {
		return pmm
	}

	pmmp1 := x * math.Sqrt(float64(2*m)+3) * pmm
	if n == m+1 {
		return pmmp1
	}

	oldFact := math.Sqrt(float64(2*m) + 3)
	pnn := 0.0
	for nn := m + 2; nn <= n; nn++ {
		fact := math.Sqrt(
			(4*float64(nn)*float64(nn) - 1) /
				(float64(nn)*float64(nn) - float64(m)*float64(m)),
		)
		pnn = fact * (x*pmmp1 - pmm/oldFact)
		oldFact = fact
		pmm = pmmp1
		pmmp1 = pnn
	}
	return pnn
}

// PlegendreNN advances the diagonal of the triangle: it returns P(n,n,x)
// given pnn = P(n-1,n-1,x).
func PlegendreNN(n int, x, pnn float64) float64 {
	somx2 := math.Sqrt((1 - x) * (1 + x))
	return -math.Sqrt(1+0.5/float64(n)) * somx2 * pnn
}

// PlegendreRecycle returns P(n,m,x) in O(1) given the two previously
// computed values at the same order, pm1 = P(n-1,m,x) and pm2 = P(n-2,m,x).
// This is the entry point used when sweeping all degrees at a fixed angle.
func PlegendreRecycle(n, m int, x, pm1, pm2 float64) float64 {
	rn, rm := float64(n), float64(m)
	fact := math.Sqrt((4*rn*rn - 1) / (rn*rn - rm*rm))
	oldFact := math.Sqrt((4*(rn-1)*(rn-1) - 1) / ((rn-1)*(rn-1) - rm*rm))
	return fact * (x*pm1 - pm2/oldFact)
}

// Plgndr returns the unnormalized associated Legendre function, used by the
// analytic gradient terms which carry their own normalization factors.
func Plgndr(n, m int, x float64) float64 {
	checkDomain(n, m, x)

	pmm := 1.0
	if m > 0 {
		somx2 := math.Sqrt((1 - x) * (1 + x))
		fact := 1.0
		for i := 1; i <= m; i++ {
			pmm *= -fact * somx2
			fact += 2
		}
	}
	if n == m {
		return pmm
	}

	pmmp1 := x * float64(2*m+1) * pmm
	if n == m+1 {
		return pmmp1
	}

	pnn := 0.0
	for nn := m + 2; nn <= n; nn++ {
		pnn = (x*float64(2*nn-1)*pmmp1 - float64(nn+m-1)*pmm) /
			float64(nn-m)
		pmm = pmmp1
		pmmp1 = pnn
	}
	return pnn
}
