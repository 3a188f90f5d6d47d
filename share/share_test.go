package share

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/granular-dem/spherharm/quad"
	"github.com/granular-dem/spherharm/shape"
)

func testTables(t *testing.T) (*Tables, *quad.SphereGrid, *shape.Shape) {
	grid := quad.NewSphereGrid(12)

	coeffs := make([]float64, shape.NumCoeffs(3))
	coeffs[0] = math.Sqrt(4 * math.Pi)
	coeffs[shape.CoeffIndex(2, 0)] = 0.2
	s, err := shape.New(coeffs, 3, grid)
	assert.NoError(t, err, "shape setup")

	return Gather(grid, []*shape.Shape{s}), grid, s
}

func TestRoundTrip(t *testing.T) {
	tab, grid, s := testTables(t)

	buf := &bytes.Buffer{}
	assert.NoError(t, tab.Encode(buf), "write")

	got := &Tables{}
	assert.NoError(t, got.Decode(buf), "read")

	assert.Equal(t, grid.Order, got.Order, "order")
	assert.Equal(t, grid.Theta, got.Theta, "theta")
	assert.Equal(t, grid.Phi, got.Phi, "phi")
	assert.Equal(t, grid.W, got.W, "weights")

	assert.Equal(t, 1, len(got.Shapes), "shape count")
	st := got.Shapes[0]
	assert.Equal(t, s.MaxDegree, st.MaxDegree, "degree")
	assert.Equal(t, s.Coeffs, st.Coeffs, "coefficients")
	assert.Equal(t, s.GridRads, st.GridRads, "grid radii")
	assert.Equal(t, s.ExpFacts, st.ExpFacts, "expansion factors")
	assert.Equal(t, s.Inertia, st.Inertia, "moments")
	assert.Equal(t, s.InitQuat, st.InitQuat, "orientation")
	assert.Equal(t, s.MaxRad, st.MaxRad, "max radius")
	assert.Equal(t, s.Volume, st.Volume, "volume")
}

func TestUnpackMatchesOriginal(t *testing.T) {
	tab, grid, s := testTables(t)

	g := tab.Grid()
	assert.Equal(t, grid.Len(), g.Len(), "grid size")

	shapes := tab.Unpack()
	assert.Equal(t, 1, len(shapes), "shape count")
	got := shapes[0]

	// The rebuilt shape must answer queries identically without rerunning
	// any setup integral.
	angles := [][2]float64{{0.3, 1.0}, {1.6, 4.2}, {2.9, 0.1}}
	for _, a := range angles {
		assert.Equal(t, s.Radius(a[0], a[1]), got.Radius(a[0], a[1]), "radius")
	}
	ok, rad := got.CheckContact(1.0, 0.8, 0.5)
	wantOk, wantRad := s.CheckContact(1.0, 0.8, 0.5)
	assert.Equal(t, wantOk, ok, "contact check")
	assert.Equal(t, wantRad, rad, "contact radius")
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	got := &Tables{}
	err := got.Decode(bytes.NewReader(make([]byte, 64)))
	assert.Error(t, err, "zero stream must be rejected")
}

// loopback fakes a two-process broadcast through a shared buffer.
type loopback struct {
	rank int
	blob *[]byte
}

func (l *loopback) Rank() int { return l.rank }

func (l *loopback) Bcast(root int, data []byte) ([]byte, error) {
	if l.rank == root {
		*l.blob = data
		return data, nil
	}
	return *l.blob, nil
}

func TestBroadcast(t *testing.T) {
	tab, _, s := testTables(t)

	var blob []byte
	rootSide := &loopback{rank: 0, blob: &blob}
	peerSide := &loopback{rank: 1, blob: &blob}

	sent, err := Broadcast(rootSide, 0, tab)
	assert.NoError(t, err, "root broadcast")
	assert.Equal(t, tab, sent, "root keeps its own tables")
	assert.True(t, len(blob) > 0, "payload must be produced")

	got, err := Broadcast(peerSide, 0, nil)
	assert.NoError(t, err, "peer broadcast")
	assert.Equal(t, s.Coeffs, got.Shapes[0].Coeffs, "received coefficients")
	assert.Equal(t, s.MaxRad, got.Shapes[0].MaxRad, "received max radius")
}
