package svgdoc

import (
	"image/color"
	"math"

	"github.com/benoitkugler/svgdoc/svgpath"
	"github.com/benoitkugler/svgdoc/svgstyle"
	"golang.org/x/image/math/fixed"
)

// Given a parsed SVG document, implements how to
// draw it on screen.
// This requires a driver implementing the actual draw operations,
// such as a rasterizer to output .png images.

// Drawer knows how to do the actual draw operations
// but doesn't need any SVG knowledge.
// In particular, transformation matrices are already applied to the points
// before sending them to the Drawer.
type Drawer interface {
	// Clear must reset the internal state (used before starting a new path painting)
	Clear()

	// Start starts a new path at the given point.
	Start(a fixed.Point26_6)

	// Line adds a line from the current point to `b`
	Line(b fixed.Point26_6)

	// QuadBezier adds a quadratic bezier curve to the path
	QuadBezier(b, c fixed.Point26_6)

	// CubeBezier adds a cubic bezier curve to the path
	CubeBezier(b, c, d fixed.Point26_6)

	// Stop closes the path to the start point if `closeLoop` is true
	Stop(closeLoop bool)

	// SetColor sets the color for the current path,
	// with the opacity already applied
	SetColor(c color.NRGBA)

	// Draw fills or strokes the accumulated path using the current settings
	Draw()
}

type Filler interface {
	Drawer

	// SetWinding chooses between the non-zero (true) and
	// the even-odd (false) rule for the current path
	SetWinding(useNonZeroWinding bool)
}

type Stroker interface {
	Drawer

	// SetStrokeOptions parametrizes the stroking style for the current path
	SetStrokeOptions(options StrokeOptions)
}

type Driver interface {
	// SetupDrawers returns the backend painters, and
	// will be called at the beginning of every path.
	// If the `willXXX` boolean is false, the returned drawer should be nil
	// to avoid useless operations.
	// When both booleans are true, the path is filled first, then stroked.
	SetupDrawers(willFill, willStroke bool) (Filler, Stroker)

	// PushGroup starts a transparency group: the following drawings
	// are composited together, then painted with the given opacity
	// when the matching PopGroup is called.
	PushGroup(opacity float64)

	PopGroup()
}

// StrokeOptions are expressed in device space.
type StrokeOptions struct {
	LineWidth  fixed.Int26_6 // width of the line
	MiterLimit fixed.Int26_6 // the miter cutoff value for miter, arc, miterclip and arcClip joins
	LineJoin   svgstyle.JoinMode
	LineCap    svgstyle.CapMode
	Dash       svgstyle.DashOptions
}

// maxDevice bounds the device coordinates, so that
// they fit in 26.6 fixed point numbers
const maxDevice = 1 << 24

// toFixed26_6 converts a device length, clamping it to [-maxDevice, maxDevice]
func toFixed26_6(v float64) fixed.Int26_6 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > maxDevice:
		v = maxDevice
	case v < -maxDevice:
		v = -maxDevice
	}
	return fixed.Int26_6(v * 64)
}

func toFixed(p svgpath.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed26_6(p.X), Y: toFixed26_6(p.Y)}
}

// drawerAdapter sends the points of a path to a Drawer
type drawerAdapter struct {
	d Drawer
}

func (a drawerAdapter) Start(p svgpath.Point)            { a.d.Start(toFixed(p)) }
func (a drawerAdapter) Line(b svgpath.Point)             { a.d.Line(toFixed(b)) }
func (a drawerAdapter) QuadBezier(b, c svgpath.Point)    { a.d.QuadBezier(toFixed(b), toFixed(c)) }
func (a drawerAdapter) CubeBezier(b, c, d svgpath.Point) { a.d.CubeBezier(toFixed(b), toFixed(c), toFixed(d)) }
func (a drawerAdapter) Stop(closeLoop bool)              { a.d.Stop(closeLoop) }

// filler implements how a path is drawn when filling:
// every subpath is implicitly closed.
type filler struct {
	d        Drawer
	first, a fixed.Point26_6 // start of the subpath and current point
	inPath   bool
}

func (f *filler) line(b fixed.Point26_6) {
	f.d.Line(b)
	f.a = b
}

// stop sends a line to the first point if needed
func (f *filler) stop() {
	if f.inPath && f.first != f.a {
		f.line(f.first)
	}
}

func (f *filler) Start(p svgpath.Point) {
	f.stop() // implicit close if currently in path.
	f.a = toFixed(p)
	f.first = f.a
	f.inPath = true
	f.d.Start(f.a)
}

func (f *filler) Line(b svgpath.Point) { f.line(toFixed(b)) }

func (f *filler) QuadBezier(b, c svgpath.Point) {
	f.a = toFixed(c)
	f.d.QuadBezier(toFixed(b), f.a)
}

func (f *filler) CubeBezier(b, c, d svgpath.Point) {
	f.a = toFixed(d)
	f.d.CubeBezier(toFixed(b), toFixed(c), f.a)
}

func (f *filler) Stop(bool) {
	f.stop()
	f.inPath = false
	f.d.Stop(true)
}

// withOpacity returns c with its alpha multiplied by opacity
func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

// Draw paints the whole document into the driver, with m mapping the
// user space of the root to the device space. See ViewportTransform.
//
// Elements are painted in document order. The document is locked
// during the walk: the driver must not call back into it.
func (d *Document) Draw(driver Driver, m svgpath.Matrix2D) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawNode(driver, 0, m)
}

// Draw paints e and its descendants, using its accumulated transform,
// so that it is placed as when the whole document is drawn.
func (e Element) Draw(driver Driver, m svgpath.Matrix2D) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if p := e.node().parent; p != -1 {
		m = m.Mult(e.doc.globalMatrix(p))
	}
	e.doc.drawNode(driver, e.idx, m)
}

// drawNode draws idx, with parent mapping the user space of its parent
// to the device space
func (d *Document) drawNode(driver Driver, idx int, parent svgpath.Matrix2D) {
	n := &d.nodes[idx]
	if !n.kind.IsContainer() && !n.kind.IsShape() {
		return
	}
	style := d.style(idx)
	if !style.Display {
		return
	}
	if style.Opacity <= 0 {
		return
	}
	m := parent.Mult(d.localMatrix(idx))
	if style.Opacity < 1 {
		driver.PushGroup(style.Opacity)
		defer driver.PopGroup()
	}

	if n.kind.IsContainer() {
		for _, c := range n.children {
			d.drawNode(driver, c, m)
		}
		return
	}
	if style.Visible {
		d.drawShape(driver, idx, style, m)
	}
}

func (d *Document) drawShape(driver Driver, idx int, style *svgstyle.Style, m svgpath.Matrix2D) {
	path, _ := d.path(idx)
	if len(path) == 0 {
		return
	}

	fillColor, willFill := style.ResolvePaint(style.Fill)
	fillColor = withOpacity(fillColor, style.FillOpacity)
	willFill = willFill && fillColor.A != 0

	strokeColor, willStroke := style.ResolvePaint(style.Stroke)
	strokeColor = withOpacity(strokeColor, style.StrokeOpacity)
	lineWidth := style.StrokeWidthOn(m)
	willStroke = willStroke && strokeColor.A != 0 && lineWidth > 0

	fill, stroke := driver.SetupDrawers(willFill, willStroke)
	if fill != nil { // nil drawer disables filling
		fill.Clear()
		fill.SetWinding(style.FillRule == svgstyle.NonZero)
		path.AddTo(&filler{d: fill}, m)
		fill.SetColor(fillColor)
		fill.Draw()
		fill.SetWinding(true) // default is true
	}

	if stroke != nil { // nil drawer disables lining
		stroke.Clear()
		scale := m.ScaleFactor()
		dash := svgstyle.DashOptions{DashOffset: style.Dash.DashOffset * scale}
		for _, v := range style.Dash.Dash {
			dash.Dash = append(dash.Dash, v*scale)
		}
		stroke.SetStrokeOptions(StrokeOptions{
			LineWidth:  toFixed26_6(lineWidth),
			MiterLimit: toFixed26_6(style.MiterLimit),
			LineJoin:   style.LineJoin,
			LineCap:    style.LineCap,
			Dash:       dash,
		})
		path.AddTo(drawerAdapter{stroke}, m)
		stroke.SetColor(strokeColor)
		stroke.Draw()
	}
}
