package shape

import (
	"fmt"

	"github.com/phil-mansfield/table"
)

// readTable reads columns 0-3 of a whitespace-separated text file as
// float64s. The table package reports failures by panicking, so recover
// converts them back into the error return ReadCoeffs expects.
func readTable(path string) (cols [][]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	cols = table.TextFile(path).ReadFloat64s([]int{0, 1, 2, 3})
	return cols, nil
}

// ReadCoeffs reads a coefficient file with one "<n> <m> <re> <im>" row per
// stored term. Rows with m < 0 are skipped: those coefficients are
// reconstructed from conjugate symmetry, never stored. Rows with a degree
// beyond maxDegree truncate reading early. Anything malformed is a fatal
// configuration error.
func ReadCoeffs(path string, maxDegree int) ([]float64, error) {
	cols, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("shape: reading %s: %s", path, err.Error())
	}
	ns, ms, res, ims := cols[0], cols[1], cols[2], cols[3]

	coeffs := make([]float64, NumCoeffs(maxDegree))
	for i := range ns {
		n, m := int(ns[i]), int(ms[i])
		if float64(n) != ns[i] || float64(m) != ms[i] || n < 0 || m > n || -m > n {
			return nil, fmt.Errorf(
				"shape: %s row %d: invalid degree/order pair (%g, %g)",
				path, i+1, ns[i], ms[i],
			)
		}
		if n > maxDegree {
			break
		}
		if m < 0 {
			continue
		}
		idx := CoeffIndex(n, m)
		coeffs[idx] = res[i]
		coeffs[idx+1] = ims[i]
	}
	return coeffs, nil
}
