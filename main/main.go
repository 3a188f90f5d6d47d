package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"sort"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/granular-dem/spherharm/contact"
	"github.com/granular-dem/spherharm/io"
	"github.com/granular-dem/spherharm/quad"
	"github.com/granular-dem/spherharm/shape"
	"github.com/granular-dem/spherharm/share"
)

func main() {
	var (
		setup     string
		tablesOut string
		plyDir    string
		plyOrder  int
	)

	flag.StringVar(
		&setup, "Setup", "",
		"Configuration file with [Quadrature], [Contact], and [Shape] sections.",
	)
	flag.StringVar(
		&tablesOut, "Tables", "",
		"File the derived shape tables are written to for broadcast.",
	)
	flag.StringVar(
		&plyDir, "PlyDir", "",
		"Directory each shape's surface is dumped into as a .ply point cloud.",
	)
	flag.IntVar(
		&plyOrder, "PlyOrder", 100,
		"Grid order of the .ply surface dumps.",
	)
	demoSep := flag.Float64(
		"PairSep", 0,
		"When positive, evaluates one contact between the first two shapes "+
			"(or the first shape twice) at this center separation along x "+
			"and logs the resulting force and torque.",
	)
	exampleConfig := flag.Bool(
		"ExampleConfig", false,
		"Prints an example configuration file to stdout.",
	)

	flag.Parse()

	if *exampleConfig {
		fmt.Println(io.ExampleSetupFile)
		return
	}
	if setup == "" {
		log.Fatal("Must supply a -Setup configuration file.")
	}

	cfg, err := io.ReadSetupConfig(setup)
	if err != nil {
		log.Fatal(err.Error())
	}

	grid := quad.NewSphereGrid(cfg.Quadrature.Order)
	log.Printf(
		"Built %d x %d sphere grid.", cfg.Quadrature.Order, cfg.Quadrature.Order,
	)

	names := make([]string, 0, len(cfg.Shape))
	for name := range cfg.Shape {
		names = append(names, name)
	}
	sort.Strings(names)

	shapes := make([]*shape.Shape, len(names))
	for i, name := range names {
		sc := cfg.Shape[name]
		coeffs, err := shape.ReadCoeffs(sc.File, sc.MaxDegree)
		if err != nil {
			log.Fatal(err.Error())
		}
		s, err := shape.New(coeffs, sc.MaxDegree, grid)
		if err != nil {
			log.Fatalf("Shape '%s': %s", name, err.Error())
		}
		shapes[i] = s

		log.Printf(
			"Shape '%s': degree %d, volume %.6g, max radius %.6g,",
			name, s.MaxDegree, s.Volume, s.MaxRad,
		)
		log.Printf(
			"    principal moments (%.6g, %.6g, %.6g).",
			s.Inertia[0], s.Inertia[1], s.Inertia[2],
		)
	}

	res := contact.NewResolver(cfg.Quadrature.PoleOrder)
	res.RadiusTol = cfg.Quadrature.RadiusTol
	driver := contact.NewDriver(res, cfg.Contact.Stiffness, cfg.Contact.Exponent)
	log.Printf(
		"Contact law: stiffness %g, exponent %g, %d cap rings.",
		driver.Stiffness, driver.Exponent, res.Order(),
	)

	if *demoSep > 0 {
		pairDemo(driver, shapes, *demoSep)
	}
	if tablesOut != "" {
		writeTables(tablesOut, grid, shapes)
	}
	if plyDir != "" {
		for i, name := range names {
			writePly(plyDir, name, shapes[i], plyOrder)
		}
	}
}

// pairDemo runs one force evaluation between the first two shapes placed
// at the given separation, in their inertia-frame orientations.
func pairDemo(d *contact.Driver, shapes []*shape.Shape, sep float64) {
	si, sj := shapes[0], shapes[0]
	if len(shapes) > 1 {
		sj = shapes[1]
	}
	if sep >= contact.Cutoff(si, sj) {
		log.Printf(
			"Pair demo: separation %g is beyond the cutoff %g, no contact.",
			sep, contact.Cutoff(si, sj),
		)
		return
	}

	parts := []*contact.Particle{
		{Quat: si.InitQuat, Shape: si},
		{Pos: r3.Vec{X: sep}, Quat: sj.InitQuat, Shape: sj},
	}
	if err := d.Compute(parts, [][]int{{1}}, len(parts)); err != nil {
		log.Fatal(err.Error())
	}

	log.Printf(
		"Pair demo at separation %g: force (%.6g, %.6g, %.6g),",
		sep, parts[0].Force.X, parts[0].Force.Y, parts[0].Force.Z,
	)
	log.Printf(
		"    torque (%.6g, %.6g, %.6g).",
		parts[0].Torque.X, parts[0].Torque.Y, parts[0].Torque.Z,
	)
}

func writeTables(fname string, grid *quad.SphereGrid, shapes []*shape.Shape) {
	f, err := os.Create(fname)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer f.Close()

	t := share.Gather(grid, shapes)
	if err := t.Encode(f); err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Wrote shape tables to %s.", fname)
}

func writePly(dir, name string, s *shape.Shape, order int) {
	fname := path.Join(dir, name+".ply")
	f, err := os.Create(fname)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer f.Close()

	rot := r3.Rotation(quat.Scale(1/quat.Abs(s.InitQuat), s.InitQuat))
	err = io.WriteSurfacePLY(f, s, order, rot, r3.Vec{})
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Wrote %s.", fname)
}
