// Package svgpath is the geometry kernel: an abstract representation
// of SVG paths in user space, the reduction of basic shapes to paths,
// affine transforms, and exact bounding boxes.
//
// Paths are consumed by painting drivers through the Adder interface.
package svgpath

import (
	"fmt"
	"strings"
)

// Adder is implemented by types that accumulate path commands,
// such as rasterizers.
type Adder interface {
	// Start starts a new curve at the given point.
	Start(a Point)
	// Line adds a line segment to the path
	Line(b Point)
	// QuadBezier adds a quadratic bezier curve to the path
	QuadBezier(b, c Point)
	// CubeBezier adds a cubic bezier curve to the path
	CubeBezier(b, c, d Point)
	// Closes the path to the start point if closeLoop is true
	Stop(closeLoop bool)
}

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathQuadTo
	pathCubicTo
	pathClose
)

// Operation groups the different SVG commands
type Operation interface {
	command() pathCommand
}

type MoveTo Point

type LineTo Point

type QuadTo [2]Point

type CubicTo [3]Point

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (QuadTo) command() pathCommand  { return pathQuadTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

// Path describes a sequence of basic SVG operations, in absolute coordinates.
// Higher-level shapes may be reduced to a path.
// A path is always started by a MoveTo, and every Close is followed
// either by the end of the path or by a MoveTo.
type Path []Operation

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%g,%g", op.X, op.Y)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%g,%g", op.X, op.Y)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%g,%g,%g,%g", op[0].X, op[0].Y, op[1].X, op[1].Y)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%g,%g,%g,%g,%g,%g", op[0].X, op[0].Y,
				op[1].X, op[1].Y, op[2].X, op[2].Y)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a Point) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b Point) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c Point) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d Point) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Transform returns a copy of the path with every point mapped through m.
func (p Path) Transform(m Matrix2D) Path {
	out := make(Path, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out[i] = MoveTo(m.TransformPoint(Point(op)))
		case LineTo:
			out[i] = LineTo(m.TransformPoint(Point(op)))
		case QuadTo:
			out[i] = QuadTo{m.TransformPoint(op[0]), m.TransformPoint(op[1])}
		case CubicTo:
			out[i] = CubicTo{m.TransformPoint(op[0]), m.TransformPoint(op[1]), m.TransformPoint(op[2])}
		case Close:
			out[i] = op
		}
	}
	return out
}

// AddTo adds the Path p to q, mapping every point through m.
func (p Path) AddTo(q Adder, m Matrix2D) {
	inPath := false
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			if inPath {
				q.Stop(false) // implicit end of the current subpath
			}
			q.Start(m.TransformPoint(Point(op)))
			inPath = true
		case LineTo:
			q.Line(m.TransformPoint(Point(op)))
		case QuadTo:
			q.QuadBezier(m.TransformPoint(op[0]), m.TransformPoint(op[1]))
		case CubicTo:
			q.CubeBezier(m.TransformPoint(op[0]), m.TransformPoint(op[1]), m.TransformPoint(op[2]))
		case Close:
			q.Stop(true)
			inPath = false
		}
	}
	if inPath {
		q.Stop(false)
	}
}
