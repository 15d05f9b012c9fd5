package svgstyle

import (
	"fmt"
	"math"
	"strings"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/tdewolff/parse/v2/strconv"
)

// Unit is a length unit.
type Unit uint8

const (
	UnitNone Unit = iota // user units
	UnitPx
	UnitPt
	UnitPc
	UnitMm
	UnitCm
	UnitIn
	UnitPercent
)

var unitNames = [...]string{
	UnitNone: "", UnitPx: "px", UnitPt: "pt", UnitPc: "pc",
	UnitMm: "mm", UnitCm: "cm", UnitIn: "in", UnitPercent: "%",
}

// pixels per unit, at 96 dpi
var unitFactors = [...]float64{
	UnitNone: 1, UnitPx: 1, UnitPt: 96. / 72, UnitPc: 96. / 6,
	UnitMm: 96. / 25.4, UnitCm: 96. / 2.54, UnitIn: 96,
}

// Length is a number with an optional unit.
type Length struct {
	Value float64
	Unit  Unit
}

func (l Length) String() string {
	return fmt.Sprintf("%g%s", l.Value, unitNames[l.Unit])
}

// Axis selects the viewport dimension percentages refer to.
type Axis uint8

const (
	Horizontal Axis = iota
	Vertical
	Diagonal // for lengths such as a radius or a stroke width
)

// Viewport is the size of the user space establishing
// the reference for percentages.
type Viewport struct {
	W, H float64
}

// Resolve returns the length in user units.
func (l Length) Resolve(vp Viewport, axis Axis) float64 {
	if l.Unit != UnitPercent {
		return l.Value * unitFactors[l.Unit]
	}
	var ref float64
	switch axis {
	case Horizontal:
		ref = vp.W
	case Vertical:
		ref = vp.H
	default:
		ref = math.Sqrt(vp.W*vp.W+vp.H*vp.H) / math.Sqrt2
	}
	return l.Value / 100 * ref
}

// ParseLength parses a number with an optional unit.
func ParseLength(s string) (Length, error) {
	b := []byte(strings.TrimSpace(s))
	f, n := strconv.ParseFloat(b)
	if n == 0 {
		return Length{}, svgerr.New(svgerr.CodeInvalidArgument, "invalid length %q", s)
	}
	suffix := strings.ToLower(string(b[n:]))
	for u, name := range unitNames {
		if name == suffix {
			return Length{Value: f, Unit: Unit(u)}, nil
		}
	}
	return Length{}, svgerr.New(svgerr.CodeInvalidArgument, "invalid length unit in %q", s)
}

// ParseNumber parses a unitless number.
func ParseNumber(s string) (float64, error) {
	b := []byte(strings.TrimSpace(s))
	f, n := strconv.ParseFloat(b)
	if n == 0 || n != len(b) {
		return 0, svgerr.New(svgerr.CodeInvalidArgument, "invalid number %q", s)
	}
	return f, nil
}
