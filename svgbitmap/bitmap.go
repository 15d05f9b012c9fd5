// Package svgbitmap owns the pixel buffers produced by the rasterizer,
// and converts them to PNG.
package svgbitmap

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/benoitkugler/svgdoc/svgerr"
	"golang.org/x/image/draw"
)

// MaxPixels bounds the size of a bitmap.
const MaxPixels = 1 << 28

// Format is the memory layout of the pixels. In both cases,
// a pixel is stored as 4 bytes R, G, B, A.
type Format uint8

const (
	// RGBAPremultiplied has its color channels multiplied by alpha,
	// as used by the rasterizer.
	RGBAPremultiplied Format = iota
	// RGBA has straight (non premultiplied) color channels.
	RGBA
)

func (f Format) String() string {
	switch f {
	case RGBAPremultiplied:
		return "RGBAPremultiplied"
	case RGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("<unknown Format %d>", f)
	}
}

// Bitmap is a width x height buffer of RGBA pixels.
// Its dimensions are fixed at creation.
type Bitmap struct {
	pix    []byte
	width  int
	height int
	format Format
}

// New returns a transparent bitmap, using the RGBAPremultiplied format.
func New(width, height int) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, svgerr.New(svgerr.CodeInvalidArgument, "invalid bitmap size %dx%d", width, height)
	}
	if width > MaxPixels/height {
		return nil, svgerr.New(svgerr.CodeResourceLimit, "bitmap size %dx%d exceeds %d pixels", width, height, MaxPixels)
	}
	return &Bitmap{pix: make([]byte, 4*width*height), width: width, height: height}, nil
}

func (b *Bitmap) Width() int  { return b.width }
func (b *Bitmap) Height() int { return b.height }

// Stride is the number of bytes of one row.
func (b *Bitmap) Stride() int { return 4 * b.width }

func (b *Bitmap) Format() Format { return b.format }

// Data returns the pixel buffer, without copy.
func (b *Bitmap) Data() []byte { return b.pix }

func (b *Bitmap) String() string {
	return fmt.Sprintf("<Bitmap width=%d height=%d>", b.width, b.height)
}

// Image returns a view on the pixels, sharing the buffer: an
// *image.RGBA for the RGBAPremultiplied format, an *image.NRGBA otherwise.
func (b *Bitmap) Image() image.Image {
	if b.format == RGBA {
		return &image.NRGBA{Pix: b.pix, Stride: b.Stride(), Rect: image.Rect(0, 0, b.width, b.height)}
	}
	return b.RGBA()
}

// RGBA returns a premultiplied view on the pixels, sharing the buffer.
// It should only be used with the RGBAPremultiplied format.
func (b *Bitmap) RGBA() *image.RGBA {
	return &image.RGBA{Pix: b.pix, Stride: b.Stride(), Rect: image.Rect(0, 0, b.width, b.height)}
}

// ColorFromUint32 converts a 0xRRGGBBAA value.
func ColorFromUint32(c uint32) color.NRGBA {
	return color.NRGBA{R: uint8(c >> 24), G: uint8(c >> 16), B: uint8(c >> 8), A: uint8(c)}
}

// Fill sets every pixel to the 0xRRGGBBAA color c, replacing
// the current content.
func (b *Bitmap) Fill(c uint32) {
	col := ColorFromUint32(c)
	if b.format == RGBA {
		for i := 0; i < len(b.pix); i += 4 {
			b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3] = col.R, col.G, col.B, col.A
		}
		return
	}
	img := b.RGBA()
	draw.Draw(img, img.Rect, image.NewUniform(col), image.Point{}, draw.Src)
}

// ConvertToRGBA converts the pixels in place to the RGBA format,
// dividing the color channels by alpha. It is a no-op if the
// conversion has already been done.
func (b *Bitmap) ConvertToRGBA() {
	if b.format == RGBA {
		return
	}
	for i := 0; i < len(b.pix); i += 4 {
		a := uint32(b.pix[i+3])
		if a == 0 || a == 0xff {
			continue
		}
		for j := i; j < i+3; j++ {
			b.pix[j] = uint8((uint32(b.pix[j])*0xff + a/2) / a)
		}
	}
	b.format = RGBA
}

// WritePNG encodes the bitmap in PNG format.
func (b *Bitmap) WritePNG(w io.Writer) error {
	if err := png.Encode(w, b.Image()); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// PNG returns the PNG encoding of the bitmap.
func (b *Bitmap) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.WritePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteToPNG saves the bitmap in the PNG file at path.
func (b *Bitmap) WriteToPNG(path string) error {
	data, err := b.PNG()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// EncodePNG encodes straight RGBA pixels, stored row by row
// without padding, in PNG format.
func EncodePNG(width, height int, pixels []byte) ([]byte, error) {
	if width <= 0 || height <= 0 || len(pixels) != 4*width*height {
		return nil, svgerr.New(svgerr.CodeInvalidArgument, "%d bytes do not match a %dx%d RGBA image", len(pixels), width, height)
	}
	img := &image.NRGBA{Pix: pixels, Stride: 4 * width, Rect: image.Rect(0, 0, width, height)}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
