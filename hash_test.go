package phash

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A busy but fully deterministic bitmap.
func pattern(w, h int) []byte {
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = byte((x*7 + y*13 + (x*y)%31) & 0xff)
		}
	}
	return pix
}

// A 16x16 grid of pseudo random grey levels scaled up by pixel replication, so
// the same picture can be produced at any multiple of 16.
func grid(size int) []byte {
	var cells [256]byte
	s := uint32(1)
	for i := range cells {
		s = (s*1103515245 + 12345) & 0x7fffffff
		cells[i] = byte(s >> 16)
	}

	b := size / 16
	pix := make([]byte, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			pix[y*size+x] = cells[(y/b)*16+x/b]
		}
	}
	return pix
}

func uniform(w, h int, v byte) []byte {
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = v
	}
	return pix
}

func TestGolden(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		expect Hash
	}{
		{"slow_64x48", 64, 48, 0x2d99adf85285d287},
		{"fast_320x240", 320, 240, 0xfe808a26ff90c2ea},
	}

	h := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Hash(pattern(tt.w, tt.h), tt.w, tt.h)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got, "got %s, want %s", got, tt.expect)
		})
	}
}

func TestDeterministic(t *testing.T) {
	h := New()
	for _, size := range [][2]int{{1, 1}, {7, 3}, {64, 48}, {224, 224}, {300, 257}} {
		pix := pattern(size[0], size[1])

		h1, err := h.Hash(pix, size[0], size[1])
		require.NoError(t, err)
		h2, err := h.Hash(pix, size[0], size[1])
		require.NoError(t, err)
		h3, err := Compute(pix, size[0], size[1])
		require.NoError(t, err)

		assert.Equal(t, h1, h2, "%dx%d", size[0], size[1])
		assert.Equal(t, h1, h3, "%dx%d transient hasher", size[0], size[1])
		assert.Zero(t, Distance(h1, h2))
	}
}

func TestUniform(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {8, 8}, {64, 64}, {224, 224}, {500, 300}} {
		for _, v := range []byte{0, 1, 128, 255} {
			got, err := Compute(uniform(size[0], size[1], v), size[0], size[1])
			require.NoError(t, err)
			assert.Equal(t, Hash(0), got, "%dx%d filled with %d", size[0], size[1], v)
		}
	}
}

func TestScaleInvariance(t *testing.T) {
	small, err := Compute(grid(256), 256, 256)
	require.NoError(t, err)
	large, err := Compute(grid(512), 512, 512)
	require.NoError(t, err)

	assert.LessOrEqual(t, small.Distance(large), 8, "%s vs %s", small, large)
}

func TestFastSlowPaths(t *testing.T) {
	fast, err := Compute(grid(FastPathMin), FastPathMin, FastPathMin)
	require.NoError(t, err)
	slow, err := Compute(grid(64), 64, 64)
	require.NoError(t, err)

	again, err := Compute(grid(FastPathMin), FastPathMin, FastPathMin)
	require.NoError(t, err)
	assert.Equal(t, fast, again)

	again, err = Compute(grid(64), 64, 64)
	require.NoError(t, err)
	assert.Equal(t, slow, again)

	assert.LessOrEqual(t, fast.Distance(slow), 8, "%s vs %s", fast, slow)
}

func TestInvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		pix  []byte
		w, h int
	}{
		{"zero width", make([]byte, 16), 0, 4},
		{"zero height", make([]byte, 16), 4, 0},
		{"negative", make([]byte, 16), -4, -4},
		{"short buffer", make([]byte, 15), 4, 4},
		{"nil buffer", nil, 1, 1},
		{"overflow", make([]byte, 16), math.MaxInt, 2},
	}

	h := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Hash(tt.pix, tt.w, tt.h)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDimensions), "unexpected error %v", err)
		})
	}
}

func TestAllocRejected(t *testing.T) {
	buf, err := alloc(-1)
	assert.Nil(t, buf)
	assert.True(t, errors.Is(err, ErrAllocation), "unexpected error %v", err)

	buf, err = alloc(Size * Size)
	require.NoError(t, err)
	assert.Len(t, buf, Size*Size)
}

func TestLongerBufferIgnoresTail(t *testing.T) {
	pix := pattern(64, 48)
	want, err := Compute(pix, 64, 48)
	require.NoError(t, err)

	got, err := Compute(append(pix, uniform(100, 1, 255)...), 64, 48)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConcurrentHasher(t *testing.T) {
	h := New()
	pix := pattern(320, 240)
	want, err := h.Hash(pix, 320, 240)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Hash, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = h.Hash(pix, 320, 240)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, want, got, "goroutine %d", i)
	}
}

func TestDistance(t *testing.T) {
	values := []Hash{0, 1, 0x8000000000000000, 0xfe808a26ff90c2ea, 0x2d99adf85285d287, math.MaxUint64}
	for _, a := range values {
		assert.Zero(t, Distance(a, a))
		assert.Equal(t, 64, Distance(a, ^a))

		for _, b := range values {
			d := Distance(a, b)
			assert.GreaterOrEqual(t, d, 0)
			assert.LessOrEqual(t, d, 64)
			assert.Equal(t, d, Distance(b, a), "%s %s", a, b)
		}
	}

	assert.Equal(t, 1, Distance(0, 1))
	assert.Equal(t, 4, Hash(0xf0).Distance(0xff))
}

func TestParseHash(t *testing.T) {
	for _, h := range []Hash{0, 1, 0xfe808a26ff90c2ea, math.MaxUint64} {
		got, err := ParseHash(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, got)
	}

	assert.Equal(t, "00000000000000ff", Hash(0xff).String())

	for _, s := range []string{"", "ff", "zz808a26ff90c2ea", "fe808a26ff90c2ea00"} {
		_, err := ParseHash(s)
		assert.Error(t, err, s)
	}
}

func TestHashJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Hash{"a": 0xfe808a26ff90c2ea})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "fe808a26ff90c2ea"}`, string(data))

	var out map[string]Hash
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, Hash(0xfe808a26ff90c2ea), out["a"])

	assert.Error(t, json.Unmarshal([]byte(`{"a": "nope"}`), &out))
}

func BenchmarkHashSlow(b *testing.B) {
	h := New()
	pix := pattern(200, 150)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Hash(pix, 200, 150)
	}
}

func BenchmarkHashFast(b *testing.B) {
	h := New()
	pix := pattern(1920, 1080)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Hash(pix, 1920, 1080)
	}
}

func BenchmarkNew(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = New()
	}
}
