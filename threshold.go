package phash

import "sort"

// Keeps the Crop x Crop block starting at (1, 1), dropping the DC term and
// everything above the lowest frequencies.
func selectBlock(coeffs []float32) []float32 {
	block := make([]float32, Crop*Crop)
	for y := 0; y < Crop; y++ {
		for x := 0; x < Crop; x++ {
			block[x+y*Crop] = coeffs[(1+x)+(1+y)*Size]
		}
	}
	return block
}

// Crop*Crop is always even, so this is the mean of the two middle values.
func median(block []float32) float32 {
	sorted := make([]float32, len(block))
	copy(sorted, block)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted) / 2
	return (sorted[n] + sorted[n-1]) / 2
}

// Packs one bit per coefficient, set when it is strictly above the median.
// The block is walked backwards while shifting left, so block[0] lands in the
// lowest bit. Existing hashes depend on this order.
func threshold(block []float32) Hash {
	m := median(block)

	n := len(block)
	if n > 64 {
		n = 64
	}

	var h Hash
	for i := n - 1; i >= 0; i-- {
		h <<= 1
		if block[i] > m {
			h |= 1
		}
	}
	return h
}
