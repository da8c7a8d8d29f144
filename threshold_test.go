package phash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdBitOrder(t *testing.T) {
	block := make([]float32, Crop*Crop)
	for i := range block {
		block[i] = float32(i)
	}

	// Median is 31.5, so only the values 32..63 are set, and block[i] is bit i.
	assert.Equal(t, float32(31.5), median(block))
	assert.Equal(t, Hash(0xffffffff00000000), threshold(block))
}

func TestThresholdReversed(t *testing.T) {
	block := make([]float32, Crop*Crop)
	for i := range block {
		block[i] = float32(63 - i)
	}
	assert.Equal(t, Hash(0x00000000ffffffff), threshold(block))
}

func TestThresholdSingleBit(t *testing.T) {
	for i := 0; i < Crop*Crop; i++ {
		block := make([]float32, Crop*Crop)
		block[i] = 1
		assert.Equal(t, Hash(1)<<i, threshold(block), "index %d", i)
	}
}

func TestThresholdTies(t *testing.T) {
	block := make([]float32, Crop*Crop)
	for i := range block {
		block[i] = 7
	}
	assert.Equal(t, Hash(0), threshold(block))

	// Half 0 and half 1 puts the median at 0.5.
	for i := range block {
		block[i] = float32(i % 2)
	}
	assert.Equal(t, float32(0.5), median(block))
	assert.Equal(t, Hash(0xaaaaaaaaaaaaaaaa), threshold(block))
}

func TestMedianLeavesBlock(t *testing.T) {
	block := []float32{5, 1, 4, 2, 3, 0}
	assert.Equal(t, float32(2.5), median(block))
	assert.Equal(t, []float32{5, 1, 4, 2, 3, 0}, block)
}

func TestSelectBlock(t *testing.T) {
	coeffs := make([]float32, Size*Size)
	for i := range coeffs {
		coeffs[i] = float32(i)
	}

	block := selectBlock(coeffs)
	assert.Len(t, block, Crop*Crop)
	assert.Equal(t, float32(Size+1), block[0])
	assert.Equal(t, float32(Size+Crop), block[Crop-1])
	assert.Equal(t, float32(2*Size+1), block[Crop])
	assert.Equal(t, float32(Crop*Size+Crop), block[Crop*Crop-1])
}
