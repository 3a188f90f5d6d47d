// Package contact resolves the overlap between pairs of spherical
// harmonic particles by quadrature over a spherical cap and integrates
// the contact volume, force direction, and torque for each pair.
package contact

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/granular-dem/spherharm/quad"
)

// DefaultPoleOrder is the cap quadrature order used when none is
// configured. 30 rings resolves overlap volumes of smooth shapes to a
// few tenths of a percent.
const DefaultPoleOrder = 30

// DefaultRadiusTol is the bisection stopping width as a fraction of the
// near particle's maximum radius.
const DefaultRadiusTol = 1e-3

// Resolver holds the fixed cap quadrature rule shared by every pair
// evaluation. The rings are Gauss-Legendre nodes ordered from the cap
// axis outward, remapped onto [cos(iang), 1] per pair.
type Resolver struct {
	// RadiusTol scales the near particle's maximum radius into the
	// bisection stopping width.
	RadiusTol float64

	// OnSample, when set, receives every cap sample the integrator
	// evaluates: its space-frame position and normal, and whether it
	// landed inside the far particle. Used for surface dumps.
	OnSample func(pos, norm r3.Vec, inside bool)

	order int
	rings []quad.Pair
}

// NewResolver builds a resolver with an order-point rule per cap ring
// and 2(order-1)+1 azimuthal samples per ring.
func NewResolver(order int) *Resolver {
	if order < 1 {
		order = DefaultPoleOrder
	}
	return &Resolver{
		RadiusTol: DefaultRadiusTol,
		order:     order,
		rings:     quad.GaussLegendre(order),
	}
}

// Order returns the number of quadrature rings in the cap rule.
func (res *Resolver) Order() int { return res.order }

// pairContext carries the per-pair rotations and accumulators between
// the cap refinement and the volume integration.
type pairContext struct {
	near, far *Particle

	// rotCapSpace takes cap-frame vectors to the space frame, rotCapBody
	// to the near particle's body frame. rotBodySpace is the near
	// particle's own orientation, rotSpaceFar maps space vectors into
	// the far particle's body frame.
	rotCapSpace  r3.Rotation
	rotCapBody   r3.Rotation
	rotBodySpace r3.Rotation
	rotSpaceFar  r3.Rotation

	iang   float64
	capIdx int

	vol    float64
	force  r3.Vec
	torque r3.Vec
}

// contactQuat is the quaternion rotating +z onto v, built from the
// half-angle form (|v| + z.v, z x v) and normalized.
func contactQuat(v r3.Vec) quat.Number {
	z := r3.Vec{Z: 1}
	c := r3.Cross(z, v)
	q := quat.Number{
		Real: r3.Norm(v) + r3.Dot(z, v),
		Imag: c.X,
		Jmag: c.Y,
		Kmag: c.Z,
	}
	return quat.Scale(1/quat.Abs(q), q)
}

// azimuth maps atan2 output onto (0, 2pi].
func azimuth(y, x float64) float64 {
	phi := math.Atan2(y, x)
	if phi <= 0 {
		phi += 2 * math.Pi
	}
	return phi
}

func sphToCart(r, theta, phi float64) r3.Vec {
	st := math.Sin(theta)
	return r3.Vec{
		X: r * st * math.Cos(phi),
		Y: r * st * math.Sin(phi),
		Z: r * math.Cos(theta),
	}
}

// ringAngle remaps the kk-th Gauss node from [-1, 1] onto the polar
// angles of a cap of half-angle iang around +z.
func (res *Resolver) ringAngle(kk int, cosang float64) float64 {
	return math.Acos(res.rings[kk].X()*(1-cosang)/2 + (1+cosang)/2)
}

// refineCap sweeps the candidate cap from the widest ring inward and
// returns the index of the ring just above the first ring with a sample
// inside the far particle. A false return means no sample of the cap
// surface lies inside the far particle and the pair does not touch.
func (res *Resolver) refineCap(ctx *pairContext) (int, bool) {
	nAz := 2 * (res.order - 1)
	cosang := math.Cos(ctx.iang)
	farRad := ctx.far.Shape.MaxRad

	for kk := res.order - 1; kk >= 0; kk-- {
		thetaPole := res.ringAngle(kk, cosang)
		for ll := 0; ll <= nAz; ll++ {
			phiPole := 2 * math.Pi * float64(ll) / float64(nAz+1)
			gp := sphToCart(1, thetaPole, phiPole)

			gbf := ctx.rotCapBody.Rotate(gp)
			radBody := ctx.near.Shape.Radius(math.Acos(gbf.Z), azimuth(gbf.Y, gbf.X))

			gsf := ctx.rotCapSpace.Rotate(gp)
			surf := sphToCart(radBody, math.Acos(gsf.Z), azimuth(gsf.Y, gsf.X))
			surf = r3.Add(surf, ctx.near.Pos)

			xTest := r3.Sub(surf, ctx.far.Pos)
			dist := r3.Norm(xTest)
			if dist > farRad {
				continue
			}
			proj := ctx.rotSpaceFar.Rotate(xTest)
			ok, _ := ctx.far.Shape.CheckContact(
				azimuth(proj.Y, proj.X), math.Acos(proj.Z/dist), dist)
			if ok {
				// The ring above the hit brackets the contact edge.
				refined := kk + 1
				if refined > res.order-1 {
					refined = res.order - 1
				}
				return refined, true
			}
		}
	}
	return 0, false
}

// forceTorque integrates the overlap volume, the surface normal sum, and
// the torque about the near particle's center over the refined cap. Each
// sample inside the far particle is pushed back to the far surface by
// radial bisection; the retreat distance feeds the volume integral.
func (res *Resolver) forceTorque(ctx *pairContext) {
	nAz := 2 * (res.order - 1)
	radTol := res.RadiusTol * ctx.near.Shape.MaxRad
	farRad := ctx.far.Shape.MaxRad

	// Shrink the cap to the refined ring before integrating.
	cosang := math.Cos(ctx.iang)
	cosang = math.Cos(res.ringAngle(ctx.capIdx, cosang))
	fac := ((1 - cosang) / 2) * (2 * math.Pi / float64(nAz+1))

	for kk := res.order - 1; kk >= 0; kk-- {
		thetaPole := res.ringAngle(kk, cosang)
		w := res.rings[kk].Weight
		for ll := 0; ll <= nAz; ll++ {
			phiPole := 2 * math.Pi * float64(ll) / float64(nAz+1)
			gp := sphToCart(1, thetaPole, phiPole)

			gbf := ctx.rotCapBody.Rotate(gp)
			thetaBF := math.Acos(gbf.Z)
			if math.Sin(thetaBF) == 0 {
				thetaBF += 1e-5
			}
			phiBF := azimuth(gbf.Y, gbf.X)
			radBody, normBF := ctx.near.Shape.RadiusAndNormal(thetaBF, phiBF)

			gsf := ctx.rotCapSpace.Rotate(gp)
			thetaSF := math.Acos(gsf.Z)
			phiSF := azimuth(gsf.Y, gsf.X)
			surf := r3.Add(sphToCart(radBody, thetaSF, phiSF), ctx.near.Pos)

			xTest := r3.Sub(surf, ctx.far.Pos)
			dist := r3.Norm(xTest)
			inside := dist <= farRad
			if inside {
				proj := ctx.rotSpaceFar.Rotate(xTest)
				inside, _ = ctx.far.Shape.CheckContact(
					azimuth(proj.Y, proj.X), math.Acos(proj.Z/dist), dist)
			}
			if res.OnSample != nil {
				res.OnSample(surf, ctx.rotBodySpace.Rotate(normBF), inside)
			}
			if !inside {
				continue
			}

			// Bisect along the near ray for the far surface crossing.
			lb, ub := 0.0, radBody
			radSample := (ub + lb) / 2
			for ub-lb > radTol {
				x := r3.Add(sphToCart(radSample, thetaSF, phiSF), ctx.near.Pos)
				xt := r3.Sub(x, ctx.far.Pos)
				dt := r3.Norm(xt)
				if dt > farRad {
					lb = radSample
				} else {
					pj := ctx.rotSpaceFar.Rotate(xt)
					in, _ := ctx.far.Shape.CheckContact(
						azimuth(pj.Y, pj.X), math.Acos(pj.Z/dt), dt)
					if in {
						ub = radSample
					} else {
						lb = radSample
					}
				}
				radSample = (ub + lb) / 2
			}

			ctx.vol += w * (math.Pow(radBody, 3) - math.Pow(radSample, 3))

			// sin(theta) converts the cap measure to the body-frame
			// surface measure before rotating the normal to space.
			scaled := r3.Scale(w/math.Sin(thetaBF), normBF)
			nSF := ctx.rotBodySpace.Rotate(scaled)
			ctx.force = r3.Add(ctx.force, nSF)
			ctx.torque = r3.Add(ctx.torque, r3.Cross(r3.Sub(surf, ctx.near.Pos), nSF))
		}
	}

	ctx.vol *= fac / 3
	ctx.force = r3.Scale(fac, ctx.force)
	ctx.torque = r3.Scale(fac, ctx.torque)
}
