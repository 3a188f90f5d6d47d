package io

import (
	"bufio"
	"fmt"
	goio "io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/granular-dem/spherharm/quad"
	"github.com/granular-dem/spherharm/shape"
)

// WriteSurfacePLY dumps the surface of a shape as an ASCII PLY point
// cloud, sampled on an order x order sphere grid, rotated by rot and
// shifted to pos. Useful for eyeballing a coefficient file in any mesh
// viewer.
func WriteSurfacePLY(
	w goio.Writer, s *shape.Shape, order int, rot r3.Rotation, pos r3.Vec,
) error {
	grid := quad.NewSphereGrid(order)
	buf := bufio.NewWriter(w)

	fmt.Fprintf(buf, "ply\n")
	fmt.Fprintf(buf, "format ascii 1.0\n")
	fmt.Fprintf(buf, "element vertex %d\n", grid.Len())
	fmt.Fprintf(buf, "property double x\n")
	fmt.Fprintf(buf, "property double y\n")
	fmt.Fprintf(buf, "property double z\n")
	fmt.Fprintf(buf, "end_header\n")

	for k := 0; k < grid.Len(); k++ {
		theta, phi := grid.At(k)
		r := s.Radius(theta, phi)
		p := r3.Add(rot.Rotate(sphToCart(r, theta, phi)), pos)
		fmt.Fprintf(buf, "%g %g %g\n", p.X, p.Y, p.Z)
	}
	return buf.Flush()
}

// SurfPoint is one quadrature sample of a contact cap: its space-frame
// position and normal, and whether it landed inside the other particle.
type SurfPoint struct {
	Pos     r3.Vec
	Norm    r3.Vec
	Contact bool
}

// WriteSurfPoints dumps contact cap samples as whitespace-separated
// columns with a comment header, readable back with a table reader.
func WriteSurfPoints(w goio.Writer, pts []SurfPoint) error {
	buf := bufio.NewWriter(w)
	fmt.Fprintf(buf, "# x y z contact nx ny nz\n")
	for i := range pts {
		c := 0
		if pts[i].Contact {
			c = 1
		}
		fmt.Fprintf(buf, "%g %g %g %d %g %g %g\n",
			pts[i].Pos.X, pts[i].Pos.Y, pts[i].Pos.Z, c,
			pts[i].Norm.X, pts[i].Norm.Y, pts[i].Norm.Z)
	}
	return buf.Flush()
}

func sphToCart(r, theta, phi float64) r3.Vec {
	st := math.Sin(theta)
	return r3.Vec{
		X: r * st * math.Cos(phi),
		Y: r * st * math.Sin(phi),
		Z: r * math.Cos(theta),
	}
}
