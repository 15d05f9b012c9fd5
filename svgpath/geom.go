package svgpath

import (
	"fmt"
	"math"
)

// Point is a position in user space.
type Point struct{ X, Y float64 }

func (p Point) Add(q Point) Point        { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point        { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(f float64) Point      { return Point{p.X * f, p.Y * f} }
func (p Point) String() string           { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }
func (p Point) equals(q Point) bool      { return p.X == q.X && p.Y == q.Y }
func (p Point) reflect(ctrl Point) Point { return p.Mul(2).Sub(ctrl) }

// Rect is an axis aligned rectangle, such as a viewport
// or a path extent. A negative width or height marks an
// empty rectangle, see EmptyRect.
type Rect struct{ X, Y, W, H float64 }

// EmptyRect is the neutral element of Union.
var EmptyRect = Rect{W: -1, H: -1}

// IsEmpty reports whether r contains no point at all.
// A degenerate rectangle of zero size is not empty.
func (r Rect) IsEmpty() bool { return r.W < 0 || r.H < 0 }

func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Union returns the smallest rectangle containing r and s.
func (r Rect) Union(s Rect) Rect {
	if r.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return r
	}
	minX, minY := math.Min(r.X, s.X), math.Min(r.Y, s.Y)
	maxX, maxY := math.Max(r.MaxX(), s.MaxX()), math.Max(r.MaxY(), s.MaxY())
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Extend returns the smallest rectangle containing r and p.
func (r Rect) Extend(p Point) Rect {
	return r.Union(Rect{X: p.X, Y: p.Y})
}

// Transform returns the bounding box of r mapped through m.
func (r Rect) Transform(m Matrix2D) Rect {
	if r.IsEmpty() {
		return r
	}
	out := EmptyRect
	for _, c := range [4]Point{{r.X, r.Y}, {r.MaxX(), r.Y}, {r.MaxX(), r.MaxY()}, {r.X, r.MaxY()}} {
		out = out.Extend(m.TransformPoint(c))
	}
	return out
}

func (r Rect) String() string {
	if r.IsEmpty() {
		return "Rect{empty}"
	}
	return fmt.Sprintf("Rect{x=%g, y=%g, w=%g, h=%g}", r.X, r.Y, r.W, r.H)
}

// Matrix2D is an affine transform, using the SVG
// matrix(a, b, c, d, e, f) layout:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
//
// Composition is not commutative. m.Mult(n) applies n first, then m,
// so that a transform list "t1 t2" reads Identity.Mult(t1).Mult(t2):
// the right-most transform is the one applied first to a point.
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix2D{A: 1, D: 1}

// Mult returns the product m * n.
func (m Matrix2D) Mult(n Matrix2D) Matrix2D {
	return Matrix2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Translate post-multiplies m by a translation.
func (m Matrix2D) Translate(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, D: 1, E: x, F: y})
}

// Scale post-multiplies m by a scaling.
func (m Matrix2D) Scale(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{A: x, D: y})
}

// Rotate post-multiplies m by a rotation of theta radians.
func (m Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return m.Mult(Matrix2D{A: c, B: s, C: -s, D: c})
}

// SkewX post-multiplies m by a skew along the x axis of theta radians.
func (m Matrix2D) SkewX(theta float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, C: math.Tan(theta), D: 1})
}

// SkewY post-multiplies m by a skew along the y axis of theta radians.
func (m Matrix2D) SkewY(theta float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, B: math.Tan(theta), D: 1})
}

// Det returns the determinant of the linear part.
func (m Matrix2D) Det() float64 { return m.A*m.D - m.B*m.C }

// Invert returns the inverse of m, and false if m is singular.
func (m Matrix2D) Invert() (Matrix2D, bool) {
	det := m.Det()
	if det == 0 {
		return Matrix2D{}, false
	}
	return Matrix2D{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

// Transform maps (x, y) through m.
func (m Matrix2D) Transform(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

func (m Matrix2D) TransformPoint(p Point) Point {
	x, y := m.Transform(p.X, p.Y)
	return Point{x, y}
}

// ScaleFactor returns the geometric mean of the scalings applied by m,
// used to map lengths such as stroke widths to device space.
func (m Matrix2D) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.Det()))
}

func (m Matrix2D) IsIdentity() bool { return m == Identity }

func (m Matrix2D) String() string {
	return fmt.Sprintf("matrix(%g, %g, %g, %g, %g, %g)", m.A, m.B, m.C, m.D, m.E, m.F)
}
