package svgstyle

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/benoitkugler/svgdoc/svgerr"
	"golang.org/x/image/colornames"
)

// PaintKind distinguishes the values of the fill and stroke properties.
type PaintKind uint8

const (
	PaintNone PaintKind = iota
	PaintColor
	PaintCurrentColor // resolved against the 'color' property
)

// Paint is the value of the fill or stroke properties.
// Paint servers (gradients, patterns) are not supported.
type Paint struct {
	Kind  PaintKind
	Color color.NRGBA // valid for PaintColor
}

// NewPaint returns a plain color paint.
func NewPaint(c color.NRGBA) Paint { return Paint{Kind: PaintColor, Color: c} }

// IsNone returns true if nothing should be painted.
func (p Paint) IsNone() bool { return p.Kind == PaintNone }

func (p Paint) String() string {
	switch p.Kind {
	case PaintNone:
		return "none"
	case PaintCurrentColor:
		return "currentColor"
	default:
		return FormatColor(p.Color)
	}
}

// FormatColor returns the #rrggbb or #rrggbbaa notation of c.
func FormatColor(c color.NRGBA) string {
	const hex = "0123456789abcdef"
	b := []byte{'#', hex[c.R>>4], hex[c.R&15], hex[c.G>>4], hex[c.G&15], hex[c.B>>4], hex[c.B&15]}
	if c.A != 0xff {
		b = append(b, hex[c.A>>4], hex[c.A&15])
	}
	return string(b)
}

func colorError(s string) error {
	return svgerr.New(svgerr.CodeInvalidArgument, "invalid color %q", s)
}

// ParsePaint parses the value of the fill or stroke properties.
// A paint server reference url(...) falls back to the color which
// follows it, if any.
func ParsePaint(s string) (Paint, error) {
	s = strings.TrimSpace(s)
	v := strings.ToLower(s)
	if strings.HasPrefix(v, "url(") {
		end := strings.IndexByte(s, ')')
		if end == -1 {
			return Paint{}, colorError(s)
		}
		fallback := strings.TrimSpace(s[end+1:])
		if fallback == "" {
			return Paint{}, svgerr.New(svgerr.CodeUnsupportedFeature, "paint server %s", s[:end+1])
		}
		return ParsePaint(fallback)
	}
	switch v {
	case "none":
		return Paint{Kind: PaintNone}, nil
	case "currentcolor":
		return Paint{Kind: PaintCurrentColor}, nil
	}
	c, err := ParseColor(s)
	if err != nil {
		return Paint{}, err
	}
	return NewPaint(c), nil
}

// ParseColor parses an SVG color string in all forms
// including all SVG1.1 names, obtained from the colornames package,
// the #rgb, #rgba, #rrggbb and #rrggbbaa notations, and the
// rgb() and rgba() functions, with integer or percentage components.
func ParseColor(colorStr string) (color.NRGBA, error) {
	colorStr = strings.TrimSpace(colorStr)
	if colorStr == "" {
		return color.NRGBA{}, colorError(colorStr)
	}
	v := strings.ToLower(colorStr)
	if v == "transparent" {
		return color.NRGBA{}, nil
	}
	if cn, ok := colornames.Map[v]; ok {
		return color.NRGBA{cn.R, cn.G, cn.B, cn.A}, nil
	}
	if v[0] == '#' {
		return parseColorHex(v)
	}
	for _, prefix := range [...]string{"rgba(", "rgb("} {
		if args, ok := strings.CutPrefix(v, prefix); ok {
			args, ok = strings.CutSuffix(args, ")")
			if !ok {
				return color.NRGBA{}, colorError(colorStr)
			}
			return parseColorFunc(args, colorStr)
		}
	}
	return color.NRGBA{}, colorError(colorStr)
}

// parseColorHex reads the hexadecimal notations, e.g. #FBD9BD
func parseColorHex(colorStr string) (color.NRGBA, error) {
	hex := colorStr[1:]
	switch len(hex) {
	case 3, 4:
		// duplicate characters in case of short notation
		long := make([]byte, 0, 8)
		for i := 0; i < len(hex); i++ {
			long = append(long, hex[i], hex[i])
		}
		hex = string(long)
	case 6, 8:
	default:
		return color.NRGBA{}, colorError(colorStr)
	}
	out := color.NRGBA{A: 0xff}
	for i, c := range []*uint8{&out.R, &out.G, &out.B, &out.A}[:len(hex)/2] {
		t, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, colorError(colorStr)
		}
		*c = uint8(t)
	}
	return out, nil
}

func parseColorFunc(args, colorStr string) (color.NRGBA, error) {
	vals := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(vals) != 3 && len(vals) != 4 {
		return color.NRGBA{}, colorError(colorStr)
	}
	var out color.NRGBA
	for i, c := range []*uint8{&out.R, &out.G, &out.B} {
		n, err := parseColorValue(vals[i])
		if err != nil {
			return color.NRGBA{}, colorError(colorStr)
		}
		*c = n
	}
	out.A = 0xff
	if len(vals) == 4 {
		a, err := parseFraction(vals[3])
		if err != nil {
			return color.NRGBA{}, colorError(colorStr)
		}
		out.A = uint8(clamp01(a)*0xff + 0.5)
	}
	return out, nil
}

// parseColorValue reads one rgb() component, clamped to [0, 255]
func parseColorValue(v string) (uint8, error) {
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(v[:len(v)-1], 64)
		if err != nil {
			return 0, err
		}
		return uint8(clamp01(f/100)*0xff + 0.5), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return uint8(min(max(f, 0), 255) + 0.5), nil
}

func clamp01(f float64) float64 { return min(max(f, 0), 1) }

// parseFraction reads a number or a percentage
func parseFraction(v string) (float64, error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err := strconv.ParseFloat(v, 64)
	return f / d, err
}
