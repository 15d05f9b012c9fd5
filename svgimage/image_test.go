package svgimage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgraster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const square = `<svg width="10" height="8" xmlns="http://www.w3.org/2000/svg">
	<rect width="10" height="8" fill="red" fill-opacity="0.5"/>
</svg>`

func assertNRGBANear(t *testing.T, want color.NRGBA, got color.Color) {
	t.Helper()
	c := color.NRGBAModel.Convert(got).(color.NRGBA)
	assert.InDelta(t, want.R, c.R, 1)
	assert.InDelta(t, want.G, c.G, 1)
	assert.InDelta(t, want.B, c.B, 1)
	assert.InDelta(t, want.A, c.A, 1)
}

func TestOpen(t *testing.T) {
	img, err := Open([]byte(square))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Width)
	assert.Equal(t, 8, img.Height)
	assert.Equal(t, ModeRGBA, img.Mode)
	assert.Len(t, img.Pix, 4*10*8)
	assert.Equal(t, "<Image mode=RGBA size=10x8>", img.String())
	// straight alpha
	assertNRGBANear(t, color.NRGBA{0xff, 0, 0, 0x80}, img.NRGBA().At(4, 4))

	img, err = OpenWith([]byte(square), svgraster.Options{Width: 20})
	require.NoError(t, err)
	assert.Equal(t, 16, img.Height)

	_, err = Open([]byte("<svg><rect></svg>"))
	assert.True(t, svgerr.Is(err, svgerr.CodeParse))
}

func TestRegisteredFormat(t *testing.T) {
	for _, data := range []string{square, `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + square} {
		img, format, err := image.Decode(bytes.NewReader([]byte(data)))
		require.NoError(t, err)
		assert.Equal(t, FormatName, format)
		assert.Equal(t, image.Rect(0, 0, 10, 8), img.Bounds())

		config, format, err := image.DecodeConfig(bytes.NewReader([]byte(data)))
		require.NoError(t, err)
		assert.Equal(t, FormatName, format)
		assert.Equal(t, 10, config.Width)
		assert.Equal(t, 8, config.Height)
	}
}

func TestSave(t *testing.T) {
	img, err := Open([]byte(square))
	require.NoError(t, err)

	for _, format := range []string{"svg", "SVG", ".svg"} {
		err = img.Save(new(bytes.Buffer), format)
		assert.True(t, svgerr.Is(err, svgerr.CodeUnsupportedOperation))
	}
	err = img.Save(new(bytes.Buffer), "webp")
	assert.True(t, svgerr.Is(err, svgerr.CodeInvalidArgument))

	decoders := map[string]func(*bytes.Buffer) (image.Image, error){
		"png":  func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) },
		"bmp":  func(b *bytes.Buffer) (image.Image, error) { return bmp.Decode(b) },
		"tiff": func(b *bytes.Buffer) (image.Image, error) { return tiff.Decode(b) },
	}
	for format, decode := range decoders {
		var buf bytes.Buffer
		require.NoError(t, img.Save(&buf, format))
		decoded, err := decode(&buf)
		require.NoError(t, err, format)
		assert.Equal(t, image.Rect(0, 0, 10, 8), decoded.Bounds(), format)
	}

	var buf bytes.Buffer
	require.NoError(t, img.Save(&buf, "jpg"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xff, 0xd8}))

	path := filepath.Join(t.TempDir(), "square.png")
	require.NoError(t, img.SaveFile(path))
	err = img.SaveFile(filepath.Join(t.TempDir(), "square.svg"))
	assert.True(t, svgerr.Is(err, svgerr.CodeUnsupportedOperation))
}

func TestResize(t *testing.T) {
	img, err := Open([]byte(`<svg width="10" height="10"><rect width="10" height="10" fill="blue"/></svg>`))
	require.NoError(t, err)

	resized, err := img.Resize(20, 5)
	require.NoError(t, err)
	assert.Equal(t, 20, resized.Width)
	assert.Equal(t, 5, resized.Height)
	assert.Len(t, resized.Pix, 4*20*5)
	assertNRGBANear(t, color.NRGBA{0, 0, 0xff, 0xff}, resized.NRGBA().At(10, 2))

	// the source is left untouched
	assert.Equal(t, 10, img.Width)

	_, err = img.Resize(0, 5)
	assert.True(t, svgerr.Is(err, svgerr.CodeInvalidArgument))
}
