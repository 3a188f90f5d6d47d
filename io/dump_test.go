package io

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/granular-dem/spherharm/quad"
	"github.com/granular-dem/spherharm/shape"
)

func unitSphere(t *testing.T) *shape.Shape {
	coeffs := make([]float64, shape.NumCoeffs(2))
	coeffs[0] = math.Sqrt(4 * math.Pi)
	s, err := shape.New(coeffs, 2, quad.NewSphereGrid(12))
	assert.NoError(t, err, "sphere setup")
	return s
}

func TestWriteSurfacePLY(t *testing.T) {
	s := unitSphere(t)
	buf := &bytes.Buffer{}

	order := 10
	rot := r3.Rotation(quat.Number{Real: 1})
	err := WriteSurfacePLY(buf, s, order, rot, r3.Vec{X: 2})
	assert.NoError(t, err, "write")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "ply", lines[0], "magic")
	assert.Equal(t, fmt.Sprintf("element vertex %d", order*order), lines[2],
		"vertex count")
	assert.Equal(t, "end_header", lines[6], "header end")
	assert.Equal(t, 7+order*order, len(lines), "total line count")

	// Every vertex of the shifted unit sphere is at distance 1 from (2,0,0).
	for _, line := range lines[7:] {
		var x, y, z float64
		_, err := fmt.Sscan(line, &x, &y, &z)
		assert.NoError(t, err, "vertex parse")
		d := math.Sqrt((x-2)*(x-2) + y*y + z*z)
		assert.InDelta(t, 1.0, d, 1e-12, "vertex off the surface")
	}
}

func TestWriteSurfPoints(t *testing.T) {
	pts := []SurfPoint{
		{Pos: r3.Vec{X: 1, Y: 2, Z: 3}, Norm: r3.Vec{Z: 1}, Contact: true},
		{Pos: r3.Vec{X: -1}, Norm: r3.Vec{X: 0.5}, Contact: false},
	}
	buf := &bytes.Buffer{}
	assert.NoError(t, WriteSurfPoints(buf, pts), "write")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 3, len(lines), "header plus one line per point")
	assert.True(t, strings.HasPrefix(lines[0], "#"), "comment header")
	assert.Equal(t, "1 2 3 1 0 0 1", lines[1], "contact row")
	assert.Equal(t, "-1 0 0 0 0.5 0 0", lines[2], "free row")
}
