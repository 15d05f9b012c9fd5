// Package svgstyle implements the style resolution of SVG elements:
// parsing of property values (colors, lengths, paints), a CSS subset
// (type, class and id selectors, with descendant and child combinators),
// the cascade and the inheritance of properties.
package svgstyle

import (
	"image/color"
	"sort"
	"strings"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgpath"
)

// FillRule is the algorithm used to determine the inside of a shape.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
const (
	Miter JoinMode = iota
	MiterClip
	Round
	Bevel
	Arc
	ArcClip // Like MiterClip applied to arcs, and is not part of the SVG2.0 standard.
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	ButtCap CapMode = iota
	SquareCap
	RoundCap
)

func (c CapMode) String() string {
	switch c {
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	default:
		return "<unknown CapMode>"
	}
}

type DashOptions struct {
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// Style is the resolved style of an element, with
// lengths expressed in user units.
type Style struct {
	Fill          Paint
	FillOpacity   float64
	FillRule      FillRule
	Stroke        Paint
	StrokeOpacity float64
	StrokeWidth   float64
	LineCap       CapMode
	LineJoin      JoinMode
	MiterLimit    float64
	Dash          DashOptions
	Color         color.NRGBA // value of the 'color' property, used by currentColor
	Visible       bool

	// not inherited
	Opacity float64
	Display bool // false for display:none
}

// Initial returns the style of the root, before any declaration
// is applied: black fill, no stroke.
func Initial() Style {
	return Style{
		Fill:          NewPaint(color.NRGBA{A: 0xff}),
		FillOpacity:   1,
		Stroke:        Paint{Kind: PaintNone},
		StrokeOpacity: 1,
		StrokeWidth:   1,
		LineCap:       ButtCap,
		LineJoin:      Miter,
		MiterLimit:    4,
		Color:         color.NRGBA{A: 0xff},
		Visible:       true,
		Opacity:       1,
		Display:       true,
	}
}

// ResolvePaint returns the concrete color of p, resolving currentColor.
// The boolean is false when nothing should be painted.
func (s *Style) ResolvePaint(p Paint) (color.NRGBA, bool) {
	switch p.Kind {
	case PaintColor:
		return p.Color, true
	case PaintCurrentColor:
		return s.Color, true
	default:
		return color.NRGBA{}, false
	}
}

// properties maps the supported properties to their parser.
// Every entry is also accepted as a presentation attribute.
var properties = map[string]func(s *Style, value string, vp Viewport) error{
	"fill": func(s *Style, value string, _ Viewport) (err error) {
		s.Fill, err = ParsePaint(value)
		return err
	},
	"fill-opacity": func(s *Style, value string, _ Viewport) (err error) {
		s.FillOpacity, err = parseOpacity(value)
		return err
	},
	"fill-rule": func(s *Style, value string, _ Viewport) error {
		switch value {
		case "nonzero":
			s.FillRule = NonZero
		case "evenodd":
			s.FillRule = EvenOdd
		default:
			return invalidKeyword(value)
		}
		return nil
	},
	"stroke": func(s *Style, value string, _ Viewport) (err error) {
		s.Stroke, err = ParsePaint(value)
		return err
	},
	"stroke-opacity": func(s *Style, value string, _ Viewport) (err error) {
		s.StrokeOpacity, err = parseOpacity(value)
		return err
	},
	"stroke-width": func(s *Style, value string, vp Viewport) error {
		w, err := parsePositiveLength(value, vp)
		if err != nil {
			return err
		}
		s.StrokeWidth = w
		return nil
	},
	"stroke-linecap": func(s *Style, value string, _ Viewport) error {
		switch value {
		case "butt":
			s.LineCap = ButtCap
		case "round":
			s.LineCap = RoundCap
		case "square":
			s.LineCap = SquareCap
		default:
			return invalidKeyword(value)
		}
		return nil
	},
	"stroke-linejoin": func(s *Style, value string, _ Viewport) error {
		switch value {
		case "miter":
			s.LineJoin = Miter
		case "miter-clip":
			s.LineJoin = MiterClip
		case "arc-clip":
			s.LineJoin = ArcClip
		case "round":
			s.LineJoin = Round
		case "arc":
			s.LineJoin = Arc
		case "bevel":
			s.LineJoin = Bevel
		default:
			return invalidKeyword(value)
		}
		return nil
	},
	"stroke-miterlimit": func(s *Style, value string, _ Viewport) error {
		mLimit, err := ParseNumber(value)
		if err != nil {
			return err
		}
		if mLimit < 1 {
			return svgerr.New(svgerr.CodeInvalidArgument, "miter limit %g lower than 1", mLimit)
		}
		s.MiterLimit = mLimit
		return nil
	},
	"stroke-dasharray": func(s *Style, value string, vp Viewport) error {
		dash, err := parseDashArray(value, vp)
		if err != nil {
			return err
		}
		s.Dash.Dash = dash
		return nil
	},
	"stroke-dashoffset": func(s *Style, value string, vp Viewport) error {
		l, err := ParseLength(value)
		if err != nil {
			return err
		}
		s.Dash.DashOffset = l.Resolve(vp, Diagonal)
		return nil
	},
	"color": func(s *Style, value string, _ Viewport) error {
		c, err := ParseColor(value)
		if err != nil {
			return err
		}
		s.Color = c
		return nil
	},
	"visibility": func(s *Style, value string, _ Viewport) error {
		switch value {
		case "visible":
			s.Visible = true
		case "hidden", "collapse":
			s.Visible = false
		default:
			return invalidKeyword(value)
		}
		return nil
	},
	"opacity": func(s *Style, value string, _ Viewport) (err error) {
		s.Opacity, err = parseOpacity(value)
		return err
	},
	"display": func(s *Style, value string, _ Viewport) error {
		s.Display = value != "none"
		return nil
	},
}

// IsProperty returns true if name is a supported style property,
// which may also be specified as a presentation attribute.
func IsProperty(name string) bool {
	_, ok := properties[name]
	return ok
}

func invalidKeyword(value string) error {
	return svgerr.New(svgerr.CodeInvalidArgument, "invalid keyword %q", value)
}

func parseOpacity(value string) (float64, error) {
	f, err := parseFraction(value)
	if err != nil {
		return 1, svgerr.New(svgerr.CodeInvalidArgument, "invalid opacity %q", value)
	}
	return clamp01(f), nil
}

func parsePositiveLength(value string, vp Viewport) (float64, error) {
	l, err := ParseLength(value)
	if err != nil {
		return 0, err
	}
	if l.Value < 0 {
		return 0, svgerr.New(svgerr.CodeInvalidArgument, "negative length %q", value)
	}
	return l.Resolve(vp, Diagonal), nil
}

// parseDashArray returns nil for "none" or an all-zero pattern.
// Odd patterns are repeated to get an even number of values.
func parseDashArray(value string, vp Viewport) ([]float64, error) {
	if value == "none" {
		return nil, nil
	}
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
	dash := make([]float64, 0, 2*len(fields))
	var total float64
	for _, f := range fields {
		l, err := parsePositiveLength(f, vp)
		if err != nil {
			return nil, err
		}
		dash = append(dash, l)
		total += l
	}
	if total == 0 {
		return nil, nil
	}
	if len(dash)%2 == 1 {
		dash = append(dash, dash...)
	}
	return dash, nil
}

// inherit returns the style an element without declaration
// gets from its parent.
func inherit(parent *Style) Style {
	if parent == nil {
		return Initial()
	}
	out := *parent
	out.Opacity = 1
	out.Display = true
	return out
}

// PropertyError is a declaration which could not be applied.
type PropertyError struct {
	Property, Value string
	Err             error
}

func (e *PropertyError) Error() string {
	return "property " + e.Property + ": " + e.Err.Error()
}

func (e *PropertyError) Unwrap() error { return e.Err }

// Resolve computes the style of an element from its specified values,
// as returned by Cascade, and the style of its parent (nil for the root).
// Percentages are relative to vp.
//
// Invalid or unsupported declarations are ignored, so that the inherited
// or initial value applies, and are reported in the returned errors,
// sorted by property name.
func Resolve(parent *Style, values map[string]string, vp Viewport) (Style, []error) {
	out := inherit(parent)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		value := strings.TrimSpace(values[name])
		parse, ok := properties[name]
		if !ok {
			errs = append(errs, &PropertyError{name, value, svgerr.New(svgerr.CodeUnsupportedFeature, "unsupported property")})
			continue
		}
		if value == "inherit" {
			ref := Initial()
			if parent != nil {
				ref = *parent
			}
			copyProperty(&out, &ref, name)
			continue
		}
		// parse into a scratch copy, so that errors leave the
		// inherited value untouched
		tmp := out
		if err := parse(&tmp, value, vp); err != nil {
			errs = append(errs, &PropertyError{name, value, err})
			continue
		}
		out = tmp
	}
	return out, errs
}

// copyProperty copies the field(s) storing the given property.
func copyProperty(dst, src *Style, name string) {
	switch name {
	case "fill":
		dst.Fill = src.Fill
	case "fill-opacity":
		dst.FillOpacity = src.FillOpacity
	case "fill-rule":
		dst.FillRule = src.FillRule
	case "stroke":
		dst.Stroke = src.Stroke
	case "stroke-opacity":
		dst.StrokeOpacity = src.StrokeOpacity
	case "stroke-width":
		dst.StrokeWidth = src.StrokeWidth
	case "stroke-linecap":
		dst.LineCap = src.LineCap
	case "stroke-linejoin":
		dst.LineJoin = src.LineJoin
	case "stroke-miterlimit":
		dst.MiterLimit = src.MiterLimit
	case "stroke-dasharray":
		dst.Dash.Dash = src.Dash.Dash
	case "stroke-dashoffset":
		dst.Dash.DashOffset = src.Dash.DashOffset
	case "color":
		dst.Color = src.Color
	case "visibility":
		dst.Visible = src.Visible
	case "opacity":
		dst.Opacity = src.Opacity
	case "display":
		dst.Display = src.Display
	}
}

// StrokeWidthOn returns the stroke width mapped to device space by m.
func (s *Style) StrokeWidthOn(m svgpath.Matrix2D) float64 {
	return s.StrokeWidth * m.ScaleFactor()
}
