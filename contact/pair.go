package contact

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/granular-dem/spherharm/shape"
)

// Particle is one rigid body in the simulation. Shape tables are shared
// between particles of the same type; Pos and Quat are the per-particle
// state, Force and Torque are accumulated in the space frame.
type Particle struct {
	Pos  r3.Vec
	Quat quat.Number

	Shape *shape.Shape

	Force  r3.Vec
	Torque r3.Vec

	Omega  r3.Vec
	AngMom r3.Vec
}

// Orientation returns the particle's body-to-space rotation, normalized
// so drift in the quaternion never scales rotated vectors.
func (p *Particle) Orientation() r3.Rotation {
	return r3.Rotation(quat.Scale(1/quat.Abs(p.Quat), p.Quat))
}

// Driver evaluates the volume-overlap contact law over a neighbor list.
// The normal force on a touching pair is
//
//	F = -exponent * stiffness * vol^(exponent-1) * S
//
// where S is the integrated outward surface normal of the near particle
// over the contact patch and vol the overlap volume.
type Driver struct {
	Res       *Resolver
	Stiffness float64
	Exponent  float64

	// NewtonPair mirrors forces onto neighbors that another process
	// owns. When false only locally owned neighbors receive reactions.
	NewtonPair bool
}

// NewDriver wires a driver to a resolver with the given contact law
// parameters.
func NewDriver(res *Resolver, stiffness, exponent float64) *Driver {
	return &Driver{Res: res, Stiffness: stiffness, Exponent: exponent, NewtonPair: true}
}

// Cutoff returns the center distance below which two shapes can
// possibly touch.
func Cutoff(si, sj *shape.Shape) float64 {
	return si.MaxRad + sj.MaxRad
}

// Compute accumulates contact forces and torques for every pair in the
// neighbor list. neigh[i] lists the candidate partners of particle i;
// indices at nlocal and above are ghosts owned elsewhere. Particle i is
// always the near particle of its pairs.
//
// An error means two centers came close enough that one center sits
// inside the other's bounding sphere, which the cap construction cannot
// represent; the step size or stiffness needs revisiting, not the pair.
func (d *Driver) Compute(parts []*Particle, neigh [][]int, nlocal int) error {
	for i := range neigh {
		pi := parts[i]

		for _, j := range neigh[i] {
			pj := parts[j]
			force, torque, touching, err := d.evalPair(pi, pj)
			if err != nil {
				return err
			}
			if !touching {
				continue
			}

			pi.Force = r3.Add(pi.Force, force)
			pi.Torque = r3.Add(pi.Torque, torque)

			if !d.NewtonPair && j >= nlocal {
				continue
			}
			pj.Force = r3.Sub(pj.Force, force)

			fn2 := r3.Norm2(force)
			if fn2 == 0 {
				// A zero net force leaves the contact point undefined.
				log.Printf("contact: zero net force on touching pair, skipping reaction torque")
				continue
			}
			// Recover the effective contact point from M = (xc - xi) x F,
			// then take moments about j's center.
			xc := r3.Add(r3.Scale(-1/fn2, r3.Cross(torque, force)), pi.Pos)
			pj.Torque = r3.Add(pj.Torque, r3.Cross(force, r3.Sub(xc, pj.Pos)))
		}
	}
	return nil
}

// evalPair resolves a single pair with i as the near particle and
// returns the contact force and torque on i. touching is false when the
// pair misses. An error means j's bounding sphere swallowed i's center.
func (d *Driver) evalPair(pi, pj *Particle) (force, torque r3.Vec, touching bool, err error) {
	delta := r3.Sub(pi.Pos, pj.Pos)
	r := r3.Norm(delta)
	radj := pj.Shape.MaxRad
	if r >= pi.Shape.MaxRad+radj {
		return r3.Vec{}, r3.Vec{}, false, nil
	}
	if r <= radj {
		return r3.Vec{}, r3.Vec{}, false, fmt.Errorf(
			"contact: center distance %g inside bounding radius %g", r, radj)
	}

	irot := pi.Orientation()

	// Cap axis points from i toward j.
	capQ := contactQuat(r3.Scale(-1, delta))
	capBody := quat.Mul(quat.Conj(quat.Number(irot)), capQ)
	capBody = quat.Scale(1/quat.Abs(capBody), capBody)

	ctx := &pairContext{
		near:         pi,
		far:          pj,
		rotCapSpace:  r3.Rotation(capQ),
		rotCapBody:   r3.Rotation(capBody),
		rotBodySpace: irot,
		rotSpaceFar:  r3.Rotation(quat.Conj(quat.Number(pj.Orientation()))),
		iang:         math.Asin(radj / r),
	}

	capIdx, touching := d.Res.refineCap(ctx)
	if !touching {
		return r3.Vec{}, r3.Vec{}, false, nil
	}
	ctx.capIdx = capIdx
	d.Res.forceTorque(ctx)

	pn := d.Exponent * d.Stiffness * math.Pow(ctx.vol, d.Exponent-1)
	return r3.Scale(-pn, ctx.force), r3.Scale(-pn, ctx.torque), true, nil
}
