// Package svgraster implements a raster backend to render SVG documents,
// by wrapping rasterx.
package svgraster

import (
	"image"
	"image/color"

	"github.com/benoitkugler/svgdoc/svgdoc"
	"github.com/benoitkugler/svgdoc/svgstyle"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

var _ svgdoc.Driver = (*Renderer)(nil) // assert interface conformance

// layer is one target image, with its own painters
type layer struct {
	img     *image.RGBA
	opacity float64
	dasher  *rasterx.Dasher // to avoid shared state
	filler  *rasterx.Filler // we use separated instance
}

func newLayer(img *image.RGBA, opacity float64) layer {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return layer{
		img:     img,
		opacity: opacity,
		dasher:  rasterx.NewDasher(w, h, scanner),
		filler:  rasterx.NewFiller(w, h, scanner),
	}
}

// Renderer draws into an RGBA image, using anti-aliased
// coverage and source-over compositing.
type Renderer struct {
	layers []layer // layers[0] is the destination image
}

// NewRenderer returns a renderer drawing into img, whose
// bounds must start at the origin.
func NewRenderer(img *image.RGBA) *Renderer {
	return &Renderer{layers: []layer{newLayer(img, 1)}}
}

func (rd *Renderer) top() *layer { return &rd.layers[len(rd.layers)-1] }

func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (svgdoc.Filler, svgdoc.Stroker) {
	var (
		f svgdoc.Filler
		s svgdoc.Stroker
	)
	l := rd.top()
	if willFill {
		f = filler{l.filler}
	}
	if willStroke {
		s = stroker{l.dasher}
	}
	return f, s
}

// PushGroup redirects the drawings to a new transparent layer.
func (rd *Renderer) PushGroup(opacity float64) {
	dst := rd.layers[0].img
	rd.layers = append(rd.layers, newLayer(image.NewRGBA(dst.Bounds()), opacity))
}

// PopGroup composites the current layer onto the previous one,
// using its opacity as a uniform mask.
func (rd *Renderer) PopGroup() {
	if len(rd.layers) == 1 {
		return
	}
	src := *rd.top()
	rd.layers = rd.layers[:len(rd.layers)-1]
	dst := rd.top().img
	mask := image.NewUniform(color.Alpha{A: uint8(src.opacity*0xff + 0.5)})
	draw.DrawMask(dst, dst.Bounds(), src.img, image.Point{}, mask, image.Point{}, draw.Over)
}

// filler adapts a rasterx.Filler
type filler struct {
	*rasterx.Filler
}

func (f filler) SetColor(c color.NRGBA) { f.Filler.SetColor(c) }

// stroker adapts a rasterx.Dasher
type stroker struct {
	*rasterx.Dasher
}

func (s stroker) SetColor(c color.NRGBA) { s.Dasher.SetColor(c) }

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgstyle.Round:     rasterx.Round,
		svgstyle.Bevel:     rasterx.Bevel,
		svgstyle.Miter:     rasterx.Miter,
		svgstyle.MiterClip: rasterx.MiterClip,
		svgstyle.Arc:       rasterx.Arc,
		svgstyle.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgstyle.ButtCap:   rasterx.ButtCap,
		svgstyle.SquareCap: rasterx.SquareCap,
		svgstyle.RoundCap:  rasterx.RoundCap,
	}
)

func (s stroker) SetStrokeOptions(options svgdoc.StrokeOptions) {
	lineCap := capToFunc[options.LineCap]
	s.Dasher.SetStroke(
		options.LineWidth, options.MiterLimit, lineCap, lineCap, rasterx.FlatGap,
		joinToJoin[options.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}
