// Package luma decodes image files into the 8 bit luma bitmaps phash works on.
//
// The conversion premultiplies colour by alpha and applies the studio swing
// (16-235) BT.601 weights, matching the bitmaps other pHash implementations
// are fed, so hashes stay comparable across them.
package luma

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecode            = errors.New("decoding failed")
)

// Matches ErrDecode while keeping the decoder's own error as the cause.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string        { return ErrDecode.Error() + ": " + e.err.Error() }
func (e *decodeError) Unwrap() error        { return e.err }
func (e *decodeError) Is(target error) bool { return target == ErrDecode }

// Bitmap is a single channel image, row-major from the top, one byte per pixel.
type Bitmap struct {
	Pix    []byte
	Width  int
	Height int
}

// Loader decodes files into bitmaps. The zero value is ready to use.
type Loader struct {
	// Apply the EXIF orientation tag of JPEG files before converting.
	AutoOrient bool

	// Receives debug output, nothing is logged when nil.
	Log logrus.Ext1FieldLogger
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (l *Loader) logger() logrus.Ext1FieldLogger {
	if l.Log == nil {
		return discard
	}
	return l.Log
}

// Reads and converts the image at path.
func (l *Loader) Load(path string) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening image")
	}
	defer f.Close()

	b, err := l.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	l.logger().WithField("path", path).Debugf("loaded %dx%d bitmap", b.Width, b.Height)
	return b, nil
}

// Decodes any registered format (jpeg, png, gif, bmp, tiff, webp) from r.
func (l *Loader) Decode(r io.Reader) (*Bitmap, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(l.AutoOrient))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, errors.WithStack(&decodeError{err})
	}

	l.logger().Tracef("decoded %T with bounds %v", img, img.Bounds())
	return FromImage(img), nil
}

var defaultLoader Loader

// Load reads the image at path with the default Loader.
func Load(path string) (*Bitmap, error) {
	return defaultLoader.Load(path)
}

// Converts an already decoded image.
func FromImage(img image.Image) *Bitmap {
	src, ok := img.(*image.NRGBA)
	if !ok || src.Rect.Min != (image.Point{}) {
		src = imaging.Clone(img)
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	b := &Bitmap{Pix: make([]byte, w*h), Width: w, Height: h}

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := b.Pix[y*w : (y+1)*w]
		for x := range out {
			p := row[x*4 : x*4+4]
			out[x] = rgbaToLuma(p[0], p[1], p[2], p[3])
		}
	}
	return b
}

// Premultiplies by alpha, then (66R + 129G + 25B + 128) / 256 + 16, truncated.
// Done in float32 step by step; the conversions stop the products from being
// fused into the sums so every platform rounds the same way.
func rgbaToLuma(r, g, b, a uint8) uint8 {
	fa := float32(a)
	fr := float32(r) * fa / 255
	fg := float32(g) * fa / 255
	fb := float32(b) * fa / 255

	l := (float32(66*fr)+float32(129*fg)+float32(25*fb)+128)/256 + 16
	if l < 0 {
		return 0
	} else if l > 255 {
		return 255
	}
	return uint8(l)
}
