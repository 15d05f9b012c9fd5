// Package svgimage plugs SVG documents into the standard image package,
// and exposes the rasterized pixels to image processing code.
//
// Importing the package registers the "svg" format, so that
// image.Decode accepts SVG markup:
//
//	import _ "github.com/benoitkugler/svgdoc/svgimage"
//
// The markup is rendered at its natural size. Since the
// rasterization is not reversible, an Image may not be saved back as SVG.
package svgimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/svgdoc/svgdoc"
	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgraster"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// FormatName is the name of the format registered in the image package.
const FormatName = "svg"

// ModeRGBA is the only pixel mode produced: 4 bytes per
// pixel, with straight alpha.
const ModeRGBA = "RGBA"

func init() {
	image.RegisterFormat(FormatName, "<?xml", Decode, DecodeConfig)
	image.RegisterFormat(FormatName, "<svg", Decode, DecodeConfig)
}

// Decode renders the SVG markup read from r at its natural size.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	img, err := Open(data)
	if err != nil {
		return nil, err
	}
	return img.NRGBA(), nil
}

// DecodeConfig returns the natural size of the SVG markup read from r,
// without rasterizing it.
func DecodeConfig(r io.Reader) (image.Config, error) {
	doc, err := svgdoc.LoadReader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(math.Ceil(doc.Width())),
		Height:     int(math.Ceil(doc.Height())),
	}, nil
}

// Image is a rasterized SVG document.
type Image struct {
	// Pix stores the pixels row by row, in the format described by Mode.
	Pix    []byte
	Width  int
	Height int
	Mode   string
}

// Open loads and renders the SVG markup at its natural size.
func Open(data []byte) (*Image, error) {
	return OpenWith(data, svgraster.Options{})
}

// OpenWith loads and renders the SVG markup with the given options.
func OpenWith(data []byte, opts svgraster.Options) (*Image, error) {
	doc, err := svgdoc.Load(data)
	if err != nil {
		return nil, err
	}
	bitmap, err := svgraster.Render(doc, opts)
	if err != nil {
		return nil, err
	}
	bitmap.ConvertToRGBA()
	return &Image{Pix: bitmap.Data(), Width: bitmap.Width(), Height: bitmap.Height(), Mode: ModeRGBA}, nil
}

// OpenFile reads and renders the named file at its natural size.
func OpenFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Open(data)
}

// NRGBA returns a view on the pixels, sharing the buffer.
func (img *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{Pix: img.Pix, Stride: 4 * img.Width, Rect: image.Rect(0, 0, img.Width, img.Height)}
}

func (img *Image) String() string {
	return fmt.Sprintf("<Image mode=%s size=%dx%d>", img.Mode, img.Width, img.Height)
}

// Save encodes the image with the given format, one of
// "png", "jpeg" (or "jpg"), "bmp" and "tiff" (or "tif").
// Saving to "svg" is an UNSUPPORTED_OPERATION error.
func (img *Image) Save(w io.Writer, format string) error {
	im := img.NRGBA()
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case FormatName:
		return svgerr.New(svgerr.CodeUnsupportedOperation, "can't save a rasterized image back to svg")
	case "png":
		err = png.Encode(w, im)
	case "jpeg", "jpg":
		err = jpeg.Encode(w, im, &jpeg.Options{Quality: 90})
	case "bmp":
		err = bmp.Encode(w, im)
	case "tiff", "tif":
		err = tiff.Encode(w, im, nil)
	default:
		return svgerr.New(svgerr.CodeInvalidArgument, "unknown image format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	return nil
}

// SaveFile saves the image to the named file, with the
// format inferred from the file extension.
func (img *Image) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := img.Save(&buf, filepath.Ext(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Resize returns a copy of the image scaled to width x height,
// using Catmull-Rom interpolation.
func (img *Image) Resize(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, svgerr.New(svgerr.CodeInvalidArgument, "invalid image size %dx%d", width, height)
	}
	src := img.NRGBA()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return &Image{Pix: dst.Pix, Width: width, Height: height, Mode: img.Mode}, nil
}
