package svgbitmap

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	b, err := New(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Width())
	assert.Equal(t, 2, b.Height())
	assert.Equal(t, 12, b.Stride())
	assert.Len(t, b.Data(), 24)
	assert.Equal(t, RGBAPremultiplied, b.Format())
	assert.Equal(t, "<Bitmap width=3 height=2>", b.String())

	for _, size := range [][2]int{{0, 1}, {1, 0}, {-1, 10}} {
		_, err = New(size[0], size[1])
		assert.True(t, svgerr.Is(err, svgerr.CodeInvalidArgument))
	}
	for _, size := range [][2]int{{1 << 15, 1 << 14}, {1 << 32, 1 << 32}, {MaxPixels + 1, 1}, {1, MaxPixels + 1}} {
		_, err = New(size[0], size[1])
		assert.True(t, svgerr.Is(err, svgerr.CodeResourceLimit), "%v", size)
	}
}

func TestFillAndConvert(t *testing.T) {
	b, err := New(2, 2)
	require.NoError(t, err)

	b.Fill(0xFF0000FF)
	assert.Equal(t, []byte{0xff, 0, 0, 0xff}, b.Data()[:4])

	b.Fill(0x0000FF80)
	assert.Equal(t, color.RGBA{0, 0, 128, 128}, b.RGBA().RGBAAt(1, 1))

	b.ConvertToRGBA()
	assert.Equal(t, RGBA, b.Format())
	assert.Equal(t, []byte{0, 0, 0xff, 0x80}, b.Data()[12:])
	img, ok := b.Image().(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{0, 0, 0xff, 0x80}, img.NRGBAAt(0, 0))

	// idempotent
	b.ConvertToRGBA()
	assert.Equal(t, []byte{0, 0, 0xff, 0x80}, b.Data()[:4])
}

func TestPNG(t *testing.T) {
	b, err := New(4, 3)
	require.NoError(t, err)
	b.Fill(0x0000FF80)

	data, err := b.PNG()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.Equal(t, color.NRGBA{0, 0, 0xff, 0x80}, color.NRGBAModel.Convert(img.At(2, 1)))

	// the format does not change the encoding
	b.ConvertToRGBA()
	data2, err := b.PNG()
	require.NoError(t, err)
	assert.Equal(t, data, data2)

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, b.WriteToPNG(path))
}

func TestEncodePNG(t *testing.T) {
	pixels := []byte{
		0xff, 0, 0, 0xff, 0, 0xff, 0, 0xff,
		0, 0, 0xff, 0xff, 0, 0, 0, 0,
	}
	data, err := EncodePNG(2, 2, pixels)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 0xff, 0, 0xff}, color.NRGBAModel.Convert(img.At(1, 0)))

	_, err = EncodePNG(2, 2, pixels[:12])
	assert.True(t, svgerr.Is(err, svgerr.CodeInvalidArgument))
}

func TestColorFromUint32(t *testing.T) {
	assert.Equal(t, color.NRGBA{0x12, 0x34, 0x56, 0x78}, ColorFromUint32(0x12345678))
}
