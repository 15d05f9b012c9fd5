package svgdoc

import (
	"fmt"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgpath"
	"github.com/benoitkugler/svgdoc/svgstyle"
)

// Kind identifies the supported elements.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindRoot         // the outermost svg element
	KindGroup
	KindRect
	KindCircle
	KindEllipse
	KindLine
	KindPolyline
	KindPolygon
	KindPath
	KindStyle
	KindTitle
	KindDesc
)

var tagKinds = map[string]Kind{
	"svg":      KindRoot,
	"g":        KindGroup,
	"rect":     KindRect,
	"circle":   KindCircle,
	"ellipse":  KindEllipse,
	"line":     KindLine,
	"polyline": KindPolyline,
	"polygon":  KindPolygon,
	"path":     KindPath,
	"style":    KindStyle,
	"title":    KindTitle,
	"desc":     KindDesc,
}

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindGroup:
		return "Group"
	case KindRect:
		return "Rect"
	case KindCircle:
		return "Circle"
	case KindEllipse:
		return "Ellipse"
	case KindLine:
		return "Line"
	case KindPolyline:
		return "Polyline"
	case KindPolygon:
		return "Polygon"
	case KindPath:
		return "Path"
	case KindStyle:
		return "Style"
	case KindTitle:
		return "Title"
	case KindDesc:
		return "Desc"
	default:
		return "Unknown"
	}
}

// IsShape returns true for the kinds producing geometry.
func (k Kind) IsShape() bool {
	_, ok := shapeFuncs[k]
	return ok
}

// IsContainer returns true for the kinds whose children are painted.
func (k Kind) IsContainer() bool { return k == KindRoot || k == KindGroup }

// attributes accepted on every element, in addition to style properties
var coreAttributes = map[string]bool{"id": true, "class": true, "style": true, "transform": true}

// geometry attributes, per element kind
var kindAttributes = map[Kind][]string{
	KindRoot:     {"x", "y", "width", "height", "viewBox", "preserveAspectRatio", "version", "baseProfile"},
	KindRect:     {"x", "y", "width", "height", "rx", "ry"},
	KindCircle:   {"cx", "cy", "r"},
	KindEllipse:  {"cx", "cy", "rx", "ry"},
	KindLine:     {"x1", "y1", "x2", "y2"},
	KindPolyline: {"points"},
	KindPolygon:  {"points"},
	KindPath:     {"d", "pathLength"},
	KindStyle:    {"type", "media", "title"},
}

// isGeometryAttribute returns true if name is used to build the shape of k.
func isGeometryAttribute(k Kind, name string) bool {
	for _, a := range kindAttributes[k] {
		if a == name {
			return true
		}
	}
	return false
}

func isKnownAttribute(k Kind, name string) bool {
	return coreAttributes[name] || svgstyle.IsProperty(name) || isGeometryAttribute(k, name)
}

// geometryContext is used while building shapes
type geometryContext struct {
	n           *node
	vp          svgstyle.Viewport
	maxSegments int
	errs        []error
}

func (c *geometryContext) addError(attr string, err error) {
	c.errs = append(c.errs, fmt.Errorf("<%s> attribute %s: %w", c.n.tag, attr, err))
}

// length returns the resolved value of the attribute name, or 0 if
// it is absent or invalid
func (c *geometryContext) length(name string, axis svgstyle.Axis) (float64, bool) {
	v, ok := c.n.attrs[name]
	if !ok {
		return 0, false
	}
	l, err := svgstyle.ParseLength(v)
	if err != nil {
		c.addError(name, err)
		return 0, false
	}
	return l.Resolve(c.vp, axis), true
}

// positive is like length, but rejects negative values
func (c *geometryContext) positive(name string, axis svgstyle.Axis) (float64, bool) {
	f, ok := c.length(name, axis)
	if ok && f < 0 {
		c.addError(name, svgerr.New(svgerr.CodeInvalidArgument, "negative value %g", f))
		return 0, false
	}
	return f, ok
}

type shapeFunc func(c *geometryContext) svgpath.Path

var shapeFuncs = map[Kind]shapeFunc{
	KindRect:     rectF,
	KindCircle:   circleF,
	KindEllipse:  circleF, // circleF handles ellipse also
	KindLine:     lineF,
	KindPolyline: polylineF,
	KindPolygon:  polygonF,
	KindPath:     pathF,
}

func rectF(c *geometryContext) svgpath.Path {
	x, _ := c.length("x", svgstyle.Horizontal)
	y, _ := c.length("y", svgstyle.Vertical)
	w, _ := c.positive("width", svgstyle.Horizontal)
	h, _ := c.positive("height", svgstyle.Vertical)
	rx, hasRx := c.positive("rx", svgstyle.Horizontal)
	ry, hasRy := c.positive("ry", svgstyle.Vertical)
	if w == 0 || h == 0 { // not drawn, but not an error
		return nil
	}
	if hasRx && !hasRy {
		ry = rx
	} else if hasRy && !hasRx {
		rx = ry
	}
	var p svgpath.Path
	p.AddRoundRect(x, y, w, h, rx, ry)
	return p
}

func circleF(c *geometryContext) svgpath.Path {
	cx, _ := c.length("cx", svgstyle.Horizontal)
	cy, _ := c.length("cy", svgstyle.Vertical)
	var rx, ry float64
	if c.n.kind == KindCircle {
		rx, _ = c.positive("r", svgstyle.Diagonal)
		ry = rx
	} else {
		var hasRx, hasRy bool
		rx, hasRx = c.positive("rx", svgstyle.Horizontal)
		ry, hasRy = c.positive("ry", svgstyle.Vertical)
		if hasRx && !hasRy {
			ry = rx
		} else if hasRy && !hasRx {
			rx = ry
		}
	}
	if rx == 0 || ry == 0 { // not drawn, but not an error
		return nil
	}
	var p svgpath.Path
	p.AddEllipse(cx, cy, rx, ry)
	return p
}

func lineF(c *geometryContext) svgpath.Path {
	x1, _ := c.length("x1", svgstyle.Horizontal)
	y1, _ := c.length("y1", svgstyle.Vertical)
	x2, _ := c.length("x2", svgstyle.Horizontal)
	y2, _ := c.length("y2", svgstyle.Vertical)
	var p svgpath.Path
	p.AddLine(x1, y1, x2, y2)
	return p
}

func readPoints(c *geometryContext) []float64 {
	v, ok := c.n.attrs["points"]
	if !ok {
		return nil
	}
	points, err := svgpath.ParsePoints(v)
	if err != nil {
		// render up to the error
		c.addError("points", err)
	}
	return points
}

func polylineF(c *geometryContext) svgpath.Path {
	points := readPoints(c)
	if len(points) < 4 {
		return nil
	}
	var p svgpath.Path
	p.AddPolyline(points, false)
	return p
}

func polygonF(c *geometryContext) svgpath.Path {
	points := readPoints(c)
	if len(points) < 4 {
		return nil
	}
	var p svgpath.Path
	p.AddPolyline(points, true)
	return p
}

func pathF(c *geometryContext) svgpath.Path {
	d, ok := c.n.attrs["d"]
	if !ok {
		return nil
	}
	p, err := svgpath.ParsePath(d, c.maxSegments)
	if err != nil {
		c.addError("d", err)
	}
	return p
}
