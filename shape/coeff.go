package shape

// Coefficients for order m >= 0 are stored as adjacent real/imaginary pairs
// in a flat array. Negative orders are never stored: they follow from the
// conjugate symmetry a(n,-m) = (-1)^m * conj(a(n,m)).

// CoeffIndex returns the offset of the real part of the coefficient a(n,m)
// within a flat coefficient array, for 0 <= m <= n. The imaginary part is
// at CoeffIndex(n,m)+1.
func CoeffIndex(n, m int) int {
	return n*(n+1) + 2*(n-m)
}

// NumCoeffs returns the length of the flat coefficient array needed for an
// expansion truncated at maxDegree.
func NumCoeffs(maxDegree int) int {
	return (maxDegree + 1) * (maxDegree + 2)
}

// TermSeq walks the (degree, order) pairs of an expansion in storage order:
// ascending degree, descending order within each degree. It replaces the
// hand-maintained offsets the coefficient packing loops would otherwise
// carry.
type TermSeq struct {
	maxDegree int
	n, m      int
}

// Terms returns a sequence over all stored terms of an expansion truncated
// at maxDegree.
func Terms(maxDegree int) TermSeq {
	return TermSeq{maxDegree: maxDegree, n: 0, m: 0}
}

// Next returns the next (degree, order) pair and the coefficient offset of
// its real part. ok is false once the sequence is exhausted.
func (t *TermSeq) Next() (n, m, idx int, ok bool) {
	if t.n > t.maxDegree {
		return 0, 0, 0, false
	}
	n, m = t.n, t.m
	idx = CoeffIndex(n, m)
	if t.m == 0 {
		t.n++
		t.m = t.n
	} else {
		t.m--
	}
	return n, m, idx, true
}
