package svgraster

import (
	"math"

	"github.com/benoitkugler/svgdoc/svgbitmap"
	"github.com/benoitkugler/svgdoc/svgdoc"
	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgpath"
)

// Intrinsic may be used as Width or Height to use the
// natural size of the document or element. Zero has the same meaning.
const Intrinsic = -1

// Options parametrize a rendering.
type Options struct {
	// Width and Height are the size of the bitmap, in pixels.
	// When only one of them is given, the other one is computed
	// to preserve the aspect ratio.
	Width, Height int
	// Background is the 0xRRGGBBAA color the bitmap is
	// initialized with. The default is transparent.
	Background uint32
}

func (opts Options) check() error {
	if opts.Width < Intrinsic || opts.Height < Intrinsic {
		return svgerr.New(svgerr.CodeInvalidArgument, "invalid render size %dx%d", opts.Width, opts.Height)
	}
	return nil
}

func isIntrinsic(v int) bool { return v == Intrinsic || v == 0 }

// resolveSize returns the size of the bitmap, for a content
// whose natural size is (nw, nh).
func (opts Options) resolveSize(nw, nh float64) (w, h int, err error) {
	w, h = opts.Width, opts.Height
	switch {
	case isIntrinsic(w) && isIntrinsic(h):
		w, h = int(math.Ceil(nw)), int(math.Ceil(nh))
	case isIntrinsic(w):
		if nh > 0 {
			w = int(math.Ceil(float64(h) * nw / nh))
		}
	case isIntrinsic(h):
		if nw > 0 {
			h = int(math.Ceil(float64(w) * nh / nw))
		}
	}
	if w <= 0 || h <= 0 {
		return 0, 0, svgerr.New(svgerr.CodeInvalidArgument, "can't render with size %dx%d (natural size is %gx%g)", w, h, nw, nh)
	}
	return w, h, nil
}

// newBitmap allocates the bitmap and paints the background
func newBitmap(w, h int, background uint32) (*svgbitmap.Bitmap, error) {
	bitmap, err := svgbitmap.New(w, h)
	if err != nil {
		return nil, err
	}
	if background != 0 {
		bitmap.Fill(background)
	}
	return bitmap, nil
}

// Render rasterizes the whole document. The document is fitted in the
// bitmap according to its viewBox and preserveAspectRatio attributes:
// by default it is scaled uniformly and centered.
//
// The returned bitmap uses the premultiplied format, and is owned
// by the caller. Rendering the same document with the same options
// always produces the same pixels.
func Render(doc *svgdoc.Document, opts Options) (*svgbitmap.Bitmap, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	w, h, err := opts.resolveSize(doc.Width(), doc.Height())
	if err != nil {
		return nil, err
	}
	bitmap, err := newBitmap(w, h, opts.Background)
	if err != nil {
		return nil, err
	}
	svgdoc.Logger().Debug("rendering document", "width", w, "height", h)

	m := doc.ViewportTransform(float64(w), float64(h))
	doc.Draw(NewRenderer(bitmap.RGBA()), m)
	return bitmap, nil
}

// naturalTransform maps the document user space to the pixels
// of a rendering at its intrinsic size
func naturalTransform(doc *svgdoc.Document) svgpath.Matrix2D {
	w, h := math.Ceil(doc.Width()), math.Ceil(doc.Height())
	if w <= 0 || h <= 0 {
		return svgpath.Identity
	}
	return doc.ViewportTransform(w, h)
}

// RenderElement rasterizes el and its descendants, placed as in the
// rendering of the whole document: its accumulated transform is used.
//
// With explicit dimensions, the document is mapped onto the bitmap as
// in Render. Otherwise, the natural size spans from the origin of the
// document to the far corner of the element bounding box.
func RenderElement(el svgdoc.Element, opts Options) (*svgbitmap.Bitmap, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	doc := el.OwnerDocument()

	var (
		w, h int
		m    svgpath.Matrix2D
	)
	if !isIntrinsic(opts.Width) && !isIntrinsic(opts.Height) {
		w, h = opts.Width, opts.Height
		m = doc.ViewportTransform(float64(w), float64(h))
	} else {
		base := naturalTransform(doc)
		box := el.GetGlobalBoundingBox().Transform(base)
		if box.IsEmpty() {
			return nil, svgerr.New(svgerr.CodeInvalidArgument, "element %s has no geometry: a size is required", el)
		}
		nw, nh := math.Max(box.MaxX(), 0), math.Max(box.MaxY(), 0)
		var err error
		w, h, err = opts.resolveSize(nw, nh)
		if err != nil {
			return nil, err
		}
		scale := 1.
		if !isIntrinsic(opts.Width) {
			scale = float64(w) / nw
		} else if !isIntrinsic(opts.Height) {
			scale = float64(h) / nh
		}
		m = svgpath.Identity.Scale(scale, scale).Mult(base)
	}

	bitmap, err := newBitmap(w, h, opts.Background)
	if err != nil {
		return nil, err
	}
	svgdoc.Logger().Debug("rendering element", "element", el, "width", w, "height", h)

	el.Draw(NewRenderer(bitmap.RGBA()), m)
	return bitmap, nil
}
