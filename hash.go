package phash

import (
	"fmt"
	"math"
	"math/bits"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
)

var (
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrAllocation        = errors.New("allocation failed")
)

const (
	// Side length of the working square every bitmap is reduced to.
	Size int = 32

	// Side length of the coefficient block the hash bits are taken from.
	Crop int = 8

	// Radius of the box blur applied before shrinking.
	SmearRadius int = 3

	// Images at least this large in both dimensions take the smear-and-shrink path.
	FastPathMin int = Size * (2*SmearRadius + 1)
)

// Hash is a 64 bit DCT perceptual hash. Bit i is set when the i-th coefficient
// of the cropped block (row-major) is above the block median.
type Hash uint64

// Returns the number of differing bits between the two hashes, between 0 and 64
func (i Hash) Distance(o Hash) int {
	return bits.OnesCount64(uint64(i ^ o))
}

func (i Hash) String() string {
	return fmt.Sprintf("%016x", uint64(i))
}

// Parses the 16 digit hexadecimal form returned by String.
func ParseHash(s string) (Hash, error) {
	if len(s) != 16 {
		return 0, errors.Errorf("hash %q must be 16 hex digits", s)
	}

	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing hash %q", s)
	}
	return Hash(v), nil
}

func (i Hash) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Hash) UnmarshalText(b []byte) error {
	h, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*i = h
	return nil
}

// Distance is the Hamming distance between a and b.
func Distance(a, b Hash) int {
	return a.Distance(b)
}

// Hasher holds the DCT basis matrix and its transpose. It is never modified
// after New returns, so a single Hasher can be shared between goroutines.
type Hasher struct {
	basis     []float32
	transpose []float32
}

// Builds a hasher, precomputing the Size x Size DCT-II basis.
func New() *Hasher {
	h := &Hasher{
		basis:     make([]float32, Size*Size),
		transpose: make([]float32, Size*Size),
	}
	buildBasis(h.basis, h.transpose)
	return h
}

// Hash computes the perceptual hash of a width x height 8 bit luma bitmap,
// stored row-major from the top. pix must hold at least width*height samples.
func (h *Hasher) Hash(pix []byte, width, height int) (Hash, error) {
	if err := checkDimensions(pix, width, height); err != nil {
		return 0, err
	}

	square, err := resample(pix, width, height)
	if err != nil {
		return 0, errors.Wrap(err, "resampling")
	}

	coeffs, err := h.dct2d(square)
	if err != nil {
		return 0, errors.Wrap(err, "transforming")
	}

	return threshold(selectBlock(coeffs)), nil
}

// Compute hashes a bitmap with a transient Hasher. Use New and Hasher.Hash
// when hashing many bitmaps to avoid rebuilding the basis every call.
func Compute(pix []byte, width, height int) (Hash, error) {
	return New().Hash(pix, width, height)
}

func checkDimensions(pix []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidDimensions, "%dx%d", width, height)
	}

	if width > math.MaxInt/height {
		return errors.Wrapf(ErrInvalidDimensions, "%dx%d overflows the pixel count", width, height)
	}

	if n := width * height; len(pix) < n {
		return errors.Wrapf(ErrInvalidDimensions, "%dx%d needs %d samples, got %d", width, height, n, len(pix))
	}
	return nil
}

// All working buffers come from here so a rejected allocation surfaces as
// ErrAllocation rather than a panic. Exhausting memory outright is still fatal.
func alloc(n int) (buf []float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); !ok {
				panic(r)
			}
			buf, err = nil, errors.Wrapf(ErrAllocation, "%d floats", n)
		}
	}()

	return make([]float32, n), nil
}
