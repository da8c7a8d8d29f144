package phash

import "math"

// Fills basis with the orthonormal Size x Size DCT-II matrix and transpose with its transpose.
// Row 0 is the constant 1/sqrt(N) row, row y is sqrt(2/N) * cos(pi*y*(2x+1) / 2N).
func buildBasis(basis, transpose []float32) {
	dc := float32(1) / float32(math.Sqrt(float64(Size)))
	for i := range basis {
		basis[i] = dc
		transpose[i] = dc
	}

	c1 := float32(math.Sqrt(2.0 / float64(Size)))
	m := math.Pi / 2 / float64(Size)
	for y := 1; y < Size; y++ {
		for x := 0; x < Size; x++ {
			v := c1 * float32(math.Cos(m*float64(y)*float64(2*x+1)))
			basis[x+y*Size] = v
			transpose[y+x*Size] = v
		}
	}
}

// dst = left x right for Size x Size row-major matrices. Every product is
// rounded to float32 and accumulated in float64 in ascending order; the
// explicit conversions keep the compiler from fusing them, which would change
// the low bits of the result on some architectures.
func multiply(dst, left, right []float32) {
	p := 0
	for y := 0; y < Size; y++ {
		row := left[y*Size : (y+1)*Size]
		for x := 0; x < Size; x++ {
			var accum float64
			for i, l := range row {
				prod := float32(l * right[x+i*Size])
				accum += float64(prod)
			}
			dst[p] = float32(accum)
			p++
		}
	}
}

// Forward 2D DCT of the resampled square: basis x square x transpose(basis).
func (h *Hasher) dct2d(square []float32) ([]float32, error) {
	tmp, err := alloc(Size * Size)
	if err != nil {
		return nil, err
	}

	out, err := alloc(Size * Size)
	if err != nil {
		return nil, err
	}

	multiply(tmp, h.basis, square)
	multiply(out, tmp, h.transpose)
	return out, nil
}
