package svgdoc

import (
	"strings"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgpath"
	"github.com/benoitkugler/svgdoc/svgstyle"
)

// AspectRatio is the value of a preserveAspectRatio attribute.
type AspectRatio struct {
	// AlignX and AlignY are 0 for Min, 0.5 for Mid, 1 for Max
	AlignX, AlignY float64
	None           bool // non uniform scaling
	Slice          bool // cover the viewport instead of fitting in it
}

// DefaultAspectRatio is xMidYMid meet.
var DefaultAspectRatio = AspectRatio{AlignX: 0.5, AlignY: 0.5}

var alignValues = map[string]float64{"Min": 0, "Mid": 0.5, "Max": 1}

// ParseAspectRatio parses a preserveAspectRatio value,
// such as "xMinYMax slice".
func ParseAspectRatio(s string) (AspectRatio, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return DefaultAspectRatio, svgerr.New(svgerr.CodeInvalidArgument, "invalid preserveAspectRatio %q", s)
	}
	out := DefaultAspectRatio
	if len(fields) == 2 {
		switch fields[1] {
		case "meet":
		case "slice":
			out.Slice = true
		default:
			return DefaultAspectRatio, svgerr.New(svgerr.CodeInvalidArgument, "invalid preserveAspectRatio %q", s)
		}
	}
	align := fields[0]
	if align == "none" {
		out.None = true
		return out, nil
	}
	if len(align) != 8 || align[0] != 'x' || align[4] != 'Y' {
		return DefaultAspectRatio, svgerr.New(svgerr.CodeInvalidArgument, "invalid preserveAspectRatio %q", s)
	}
	ax, okX := alignValues[align[1:4]]
	ay, okY := alignValues[align[5:8]]
	if !okX || !okY {
		return DefaultAspectRatio, svgerr.New(svgerr.CodeInvalidArgument, "invalid preserveAspectRatio %q", s)
	}
	out.AlignX, out.AlignY = ax, ay
	return out, nil
}

// Fit returns the transform mapping the src rectangle onto dst.
func (ar AspectRatio) Fit(src, dst svgpath.Rect) svgpath.Matrix2D {
	if src.W <= 0 || src.H <= 0 {
		return svgpath.Identity.Translate(dst.X, dst.Y)
	}
	sx, sy := dst.W/src.W, dst.H/src.H
	if !ar.None {
		if ar.Slice {
			sx = max(sx, sy)
		} else {
			sx = min(sx, sy)
		}
		sy = sx
	}
	// remaining space, distributed according to the alignment
	tx := dst.X + (dst.W-src.W*sx)*ar.AlignX
	ty := dst.Y + (dst.H-src.H*sy)*ar.AlignY
	return svgpath.Identity.Translate(tx, ty).Scale(sx, sy).Translate(-src.X, -src.Y)
}

// viewBox returns the viewBox of the root, if any is valid
func (d *Document) viewBox() (svgpath.Rect, bool, error) {
	v, ok := d.root().attrs["viewBox"]
	if !ok {
		return svgpath.Rect{}, false, nil
	}
	nums, err := svgpath.ParseNumbers(v)
	if err == nil && len(nums) != 4 {
		err = svgerr.New(svgerr.CodeInvalidArgument, "expected 4 numbers, got %d", len(nums))
	}
	if err == nil && (nums[2] <= 0 || nums[3] <= 0) {
		err = svgerr.New(svgerr.CodeInvalidArgument, "non positive size")
	}
	if err != nil {
		return svgpath.Rect{}, false, svgerr.Wrap(svgerr.CodeInvalidArgument, err, "<svg> attribute viewBox %q", v)
	}
	return svgpath.Rect{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, true, nil
}

func (d *Document) aspectRatio() (AspectRatio, error) {
	v, ok := d.root().attrs["preserveAspectRatio"]
	if !ok {
		return DefaultAspectRatio, nil
	}
	ar, err := ParseAspectRatio(v)
	if err != nil {
		return ar, svgerr.Wrap(svgerr.CodeInvalidArgument, err, "<svg> attribute preserveAspectRatio")
	}
	return ar, nil
}

// rootLength returns the absolute value of the width or height
// attribute of the root. Percentages have no reference and are ignored.
func (d *Document) rootLength(name string) (float64, bool, error) {
	v, ok := d.root().attrs[name]
	if !ok {
		return 0, false, nil
	}
	l, err := svgstyle.ParseLength(v)
	if err != nil {
		return 0, false, svgerr.Wrap(svgerr.CodeInvalidArgument, err, "<svg> attribute %s", name)
	}
	if l.Unit == svgstyle.UnitPercent {
		return 0, false, nil
	}
	if l.Value < 0 {
		return 0, false, svgerr.New(svgerr.CodeInvalidArgument, "<svg> attribute %s: negative value %q", name, v)
	}
	return l.Resolve(svgstyle.Viewport{}, svgstyle.Horizontal), true, nil
}

// viewportErrors returns the problems found in the root attributes
func (d *Document) viewportErrors() []error {
	var errs []error
	if _, _, err := d.viewBox(); err != nil {
		errs = append(errs, err)
	}
	if _, err := d.aspectRatio(); err != nil {
		errs = append(errs, err)
	}
	for _, name := range [2]string{"width", "height"} {
		if _, _, err := d.rootLength(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// viewport returns the reference of percentages: the viewBox
// size, or the absolute size of the root, or zero.
func (d *Document) viewport() svgstyle.Viewport {
	if vb, ok, _ := d.viewBox(); ok {
		return svgstyle.Viewport{W: vb.W, H: vb.H}
	}
	w, _, _ := d.rootLength("width")
	h, _, _ := d.rootLength("height")
	return svgstyle.Viewport{W: w, H: h}
}

// intrinsicSize returns the size of the document, in pixels, using
// the width and height attributes, then the viewBox, then the extent
// of the content.
func (d *Document) intrinsicSize() svgpath.Point {
	w, hasW, _ := d.rootLength("width")
	h, hasH, _ := d.rootLength("height")
	if hasW && hasH {
		return svgpath.Point{X: w, Y: h}
	}
	if vb, ok, _ := d.viewBox(); ok {
		switch {
		case hasW:
			h = w * vb.H / vb.W
		case hasH:
			w = h * vb.W / vb.H
		default:
			w, h = vb.W, vb.H
		}
		return svgpath.Point{X: w, Y: h}
	}
	bbox := d.globalBoundingBox(0)
	if bbox.IsEmpty() {
		return svgpath.Point{X: w, Y: h}
	}
	if !hasW {
		w = max(bbox.MaxX(), 0)
	}
	if !hasH {
		h = max(bbox.MaxY(), 0)
	}
	return svgpath.Point{X: w, Y: h}
}

// ViewportTransform returns the transform mapping the user space of
// the root onto a width x height canvas. The viewBox, or the intrinsic
// size, is fitted according to preserveAspectRatio, which defaults
// to a uniform scaling, centered.
func (d *Document) ViewportTransform(width, height float64) svgpath.Matrix2D {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewportTransform(width, height)
}

func (d *Document) viewportTransform(width, height float64) svgpath.Matrix2D {
	src, ok, _ := d.viewBox()
	if !ok {
		size := d.intrinsicSize()
		src = svgpath.Rect{W: size.X, H: size.Y}
	}
	ar, _ := d.aspectRatio()
	return ar.Fit(src, svgpath.Rect{W: width, H: height})
}
