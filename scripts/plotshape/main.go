package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path"
	"strconv"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/granular-dem/spherharm/shape"
)

const profileSamples = 512

func main() {
	if len(os.Args) != 4 {
		log.Fatalf("Usage: $ %s coeff_file max_degree plot_dir", os.Args[0])
	}

	coeffFile := os.Args[1]
	maxDegree, err := strconv.Atoi(os.Args[2])
	if err != nil {
		log.Fatal(err.Error())
	}
	plotDir := os.Args[3]

	coeffs, err := shape.ReadCoeffs(coeffFile, maxDegree)
	if err != nil {
		log.Fatal(err.Error())
	}

	plotProfiles(coeffs, maxDegree, path.Join(plotDir, "radius_profiles.png"))
	plotExpFacts(coeffs, maxDegree, path.Join(plotDir, "expansion_factors.png"))

	plt.Execute()
}

// plotProfiles draws the radius along the equator and along two
// orthogonal meridians.
func plotProfiles(coeffs []float64, maxDegree int, fname string) {
	angles := make([]float64, profileSamples)
	equator := make([]float64, profileSamples)
	meridian0 := make([]float64, profileSamples)
	meridian90 := make([]float64, profileSamples)
	for i := range angles {
		a := 2 * math.Pi * float64(i) / float64(profileSamples-1)
		angles[i] = a
		equator[i] = shape.RadiusCoeffs(coeffs, maxDegree, math.Pi/2, a)

		theta := math.Mod(a, math.Pi)
		if theta == 0 {
			theta = 1e-5
		}
		phi := 0.0
		if a >= math.Pi {
			phi = math.Pi
		}
		meridian0[i] = shape.RadiusCoeffs(coeffs, maxDegree, theta, phi)
		meridian90[i] = shape.RadiusCoeffs(coeffs, maxDegree, theta, phi+math.Pi/2)
	}

	plt.Figure()
	plt.Plot(angles, equator, plt.LW(2), plt.C("DarkSlateBlue"))
	plt.Plot(angles, meridian0, plt.LW(2), plt.C("DarkTurquoise"))
	plt.Plot(angles, meridian90, plt.LW(2), plt.C("DeepPink"))
	plt.Title(fmt.Sprintf("Radius profiles, degree %d", maxDegree))
	plt.XLabel(`Angle [rad]`, plt.FontSize(16))
	plt.YLabel(`$r$`, plt.FontSize(16))
	plt.Grid(plt.Axis("both"))
	plt.SaveFig(fname)
}

// plotExpFacts draws the per-degree bounding factors that gate the
// truncated contact checks.
func plotExpFacts(coeffs []float64, maxDegree int, fname string) {
	facts, maxRad := shape.ExpansionFactorsUniform(coeffs, maxDegree, 100)

	degrees := make([]float64, len(facts))
	for i := range degrees {
		degrees[i] = float64(i)
	}

	plt.Figure()
	plt.Plot(degrees, facts, "ok", plt.LW(2))
	plt.Title(fmt.Sprintf("Expansion factors, max radius %.4g", maxRad))
	plt.XLabel(`Degree`, plt.FontSize(16))
	plt.YLabel(`Factor`, plt.FontSize(16))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}
