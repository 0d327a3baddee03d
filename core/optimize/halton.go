package optimize

// haltonBases are the first prime bases; one per supported dimension.
var haltonBases = []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}

// haltonPopulation spreads size points over the bounded box using the Halton
// low-discrepancy sequence, giving the initial population better coverage
// than uniform random draws. Dimensions beyond the prepared base list fall
// back to base 2 offset by the dimension index, which keeps the sequence
// deterministic for any dimensionality.
func haltonPopulation(size int, bounds []Bound) [][]float64 {
	pop := make([][]float64, size)
	for i := 0; i < size; i++ {
		x := make([]float64, len(bounds))
		for j, b := range bounds {
			u := radicalInverse(i+1, baseFor(j))
			x[j] = b.Min + u*(b.Max-b.Min)
		}
		pop[i] = x
	}
	return pop
}

func baseFor(dim int) int {
	if dim < len(haltonBases) {
		return haltonBases[dim]
	}
	return haltonBases[0] + dim
}

// radicalInverse reflects the base-b digits of i around the radix point,
// producing the i-th element of the van der Corput sequence in base b.
func radicalInverse(i, b int) float64 {
	f := 1.0
	r := 0.0
	for i > 0 {
		f /= float64(b)
		r += f * float64(i%b)
		i /= b
	}
	return r
}
