package phash

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	} else if v > hi {
		return hi
	}
	return v
}

// Reduces the bitmap to a Size x Size square of box-blurred samples.
// Values are unnormalised 7x7 sums; only their order matters later on.
func resample(pix []byte, width, height int) ([]float32, error) {
	if width >= FastPathMin && height >= FastPathMin {
		return smearAndShrink(pix, width, height)
	}

	full, err := alloc(width * height)
	if err != nil {
		return nil, err
	}

	for i := range full {
		full[i] = float32(pix[i])
	}

	blurred, err := alloc(width * height)
	if err != nil {
		return nil, err
	}

	// Separable blur: rows into blurred, then columns back into full.
	boxBlur(blurred, full, width, height, 1, width)
	boxBlur(full, blurred, height, width, width, 1)

	return shrink(full, width, height)
}

// Blurs n lines of length count. step is the distance between neighbouring
// samples of a line, pitch the distance between the start of two lines.
func boxBlur(dst, src []float32, count, n, step, pitch int) {
	for line := 0; line < n; line++ {
		off := line * pitch
		for i := 0; i < count; i++ {
			var accum float32
			for j := -SmearRadius; j <= SmearRadius; j++ {
				accum += src[off+clamp(i+j, count-1)*step]
			}
			dst[off+i*step] = accum
		}
	}
}

// Nearest sample of an already blurred full resolution image.
func shrink(img []float32, width, height int) ([]float32, error) {
	square, err := alloc(Size * Size)
	if err != nil {
		return nil, err
	}

	for y := 0; y < Size; y++ {
		y0 := height * y / Size
		for x := 0; x < Size; x++ {
			x0 := width * x / Size
			square[x+y*Size] = img[x0+y0*width]
		}
	}
	return square, nil
}

// When both dimensions are at least FastPathMin, each destination sample only
// depends on the 7x7 neighbourhood around its source position, so blurring the
// whole image is unnecessary and the cost no longer depends on its size.
func smearAndShrink(pix []byte, width, height int) ([]float32, error) {
	square, err := alloc(Size * Size)
	if err != nil {
		return nil, err
	}

	for y := 0; y < Size; y++ {
		y1 := height * y / Size
		for x := 0; x < Size; x++ {
			x1 := width * x / Size

			var accum float32
			for i := -SmearRadius; i <= SmearRadius; i++ {
				row := pix[clamp(y1+i, height-1)*width:]
				for j := -SmearRadius; j <= SmearRadius; j++ {
					accum += float32(row[clamp(x1+j, width-1)])
				}
			}
			square[x+y*Size] = accum
		}
	}
	return square, nil
}
