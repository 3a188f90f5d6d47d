// Package share packages the per-type shape tables computed by the root
// process into a flat byte stream so a coordination layer can broadcast
// them instead of recomputing the quadrature and eigendecomposition on
// every process.
package share

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"gonum.org/v1/gonum/num/quat"

	"github.com/granular-dem/spherharm/quad"
	"github.com/granular-dem/spherharm/shape"
)

var end = binary.LittleEndian

// shareMagic guards against feeding an unrelated stream to ReadTables.
const shareMagic = int64(0x53504852) // "SPHR"

// Tables is everything derived from the coefficient files that every
// process needs: the sphere grid and one entry per particle type.
type Tables struct {
	Order  int
	Theta  []float64
	Phi    []float64
	W      []float64
	Shapes []ShapeTable
}

// ShapeTable is the broadcastable form of a shape.Shape.
type ShapeTable struct {
	MaxDegree int
	Coeffs    []float64
	GridRads  []float64
	ExpFacts  []float64
	Inertia   [3]float64
	InitQuat  quat.Number
	MaxRad    float64
	Volume    float64
}

// Gather packs the grid and shapes into a Tables value for transport.
func Gather(grid *quad.SphereGrid, shapes []*shape.Shape) *Tables {
	t := &Tables{
		Order:  grid.Order,
		Theta:  grid.Theta,
		Phi:    grid.Phi,
		W:      grid.W,
		Shapes: make([]ShapeTable, len(shapes)),
	}
	for i, s := range shapes {
		t.Shapes[i] = ShapeTable{
			MaxDegree: s.MaxDegree,
			Coeffs:    s.Coeffs,
			GridRads:  s.GridRads,
			ExpFacts:  s.ExpFacts,
			Inertia:   s.Inertia,
			InitQuat:  s.InitQuat,
			MaxRad:    s.MaxRad,
			Volume:    s.Volume,
		}
	}
	return t
}

// Grid rebuilds the sphere grid on a receiving process.
func (t *Tables) Grid() *quad.SphereGrid {
	return &quad.SphereGrid{Order: t.Order, Theta: t.Theta, Phi: t.Phi, W: t.W}
}

// Unpack rebuilds the shapes on a receiving process. No quadrature or
// eigendecomposition runs; the tables are used as sent.
func (t *Tables) Unpack() []*shape.Shape {
	shapes := make([]*shape.Shape, len(t.Shapes))
	for i := range t.Shapes {
		st := &t.Shapes[i]
		shapes[i] = &shape.Shape{
			Coeffs:    st.Coeffs,
			MaxDegree: st.MaxDegree,
			ExpFacts:  st.ExpFacts,
			Inertia:   st.Inertia,
			InitQuat:  st.InitQuat,
			MaxRad:    st.MaxRad,
			Volume:    st.Volume,
			GridRads:  st.GridRads,
		}
	}
	return shapes
}

// Encode serializes the tables in little endian order.
func (t *Tables) Encode(w io.Writer) error {
	if err := binary.Write(w, end, shareMagic); err != nil {
		return err
	}
	ints := []int64{int64(t.Order), int64(len(t.Shapes))}
	if err := binary.Write(w, end, ints); err != nil {
		return err
	}
	for _, xs := range [][]float64{t.Theta, t.Phi, t.W} {
		if err := writeFloats(w, xs); err != nil {
			return err
		}
	}
	for i := range t.Shapes {
		st := &t.Shapes[i]
		if err := binary.Write(w, end, int64(st.MaxDegree)); err != nil {
			return err
		}
		for _, xs := range [][]float64{st.Coeffs, st.GridRads, st.ExpFacts} {
			if err := writeFloats(w, xs); err != nil {
				return err
			}
		}
		tail := []float64{
			st.Inertia[0], st.Inertia[1], st.Inertia[2],
			st.InitQuat.Real, st.InitQuat.Imag, st.InitQuat.Jmag, st.InitQuat.Kmag,
			st.MaxRad, st.Volume,
		}
		if err := binary.Write(w, end, tail); err != nil {
			return err
		}
	}
	return nil
}

// Decode deserializes tables written by Encode.
func (t *Tables) Decode(r io.Reader) error {
	var magic int64
	if err := binary.Read(r, end, &magic); err != nil {
		return err
	}
	if magic != shareMagic {
		return fmt.Errorf("share: bad magic %x in table stream", magic)
	}
	ints := make([]int64, 2)
	if err := binary.Read(r, end, ints); err != nil {
		return err
	}
	t.Order = int(ints[0])
	t.Shapes = make([]ShapeTable, ints[1])

	var err error
	if t.Theta, err = readFloats(r); err != nil {
		return err
	}
	if t.Phi, err = readFloats(r); err != nil {
		return err
	}
	if t.W, err = readFloats(r); err != nil {
		return err
	}

	for i := range t.Shapes {
		st := &t.Shapes[i]
		var deg int64
		if err := binary.Read(r, end, &deg); err != nil {
			return err
		}
		st.MaxDegree = int(deg)
		if st.Coeffs, err = readFloats(r); err != nil {
			return err
		}
		if st.GridRads, err = readFloats(r); err != nil {
			return err
		}
		if st.ExpFacts, err = readFloats(r); err != nil {
			return err
		}
		tail := make([]float64, 9)
		if err := binary.Read(r, end, tail); err != nil {
			return err
		}
		st.Inertia = [3]float64{tail[0], tail[1], tail[2]}
		st.InitQuat = quat.Number{Real: tail[3], Imag: tail[4], Jmag: tail[5], Kmag: tail[6]}
		st.MaxRad, st.Volume = tail[7], tail[8]
	}
	return nil
}

func writeFloats(w io.Writer, xs []float64) error {
	if err := binary.Write(w, end, int64(len(xs))); err != nil {
		return err
	}
	return binary.Write(w, end, xs)
}

func readFloats(r io.Reader) ([]float64, error) {
	var n int64
	if err := binary.Read(r, end, &n); err != nil {
		return nil, err
	}
	xs := make([]float64, n)
	if err := binary.Read(r, end, xs); err != nil {
		return nil, err
	}
	return xs, nil
}

// Broadcaster hands a byte blob from the root process to every other
// process. The host's coordination layer (MPI or otherwise) implements
// it; on the root the data argument is the payload, elsewhere it is nil
// and the return carries the root's bytes.
type Broadcaster interface {
	Rank() int
	Bcast(root int, data []byte) ([]byte, error)
}

// Broadcast ships the tables from root to every process and returns the
// local copy. Non-root callers pass t == nil.
func Broadcast(b Broadcaster, root int, t *Tables) (*Tables, error) {
	if b.Rank() == root {
		buf := &bytes.Buffer{}
		if err := t.Encode(buf); err != nil {
			return nil, err
		}
		if _, err := b.Bcast(root, buf.Bytes()); err != nil {
			return nil, err
		}
		return t, nil
	}

	data, err := b.Bcast(root, nil)
	if err != nil {
		return nil, err
	}
	out := &Tables{}
	if err := out.Decode(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return out, nil
}
