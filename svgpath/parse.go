package svgpath

import (
	"fmt"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/tdewolff/parse/v2/strconv"
)

// DefaultMaxSegments is the default bound on the number of
// operations of a parsed path.
const DefaultMaxSegments = 1 << 20

var cmdLens = [256]int{
	'M': 2, 'Z': 0, 'L': 2, 'H': 1, 'V': 1,
	'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7,
}

// pathCursor tracks the state needed to resolve
// relative and smooth commands while building a path.
type pathCursor struct {
	path        Path
	current     Point // current point
	subStart    Point // start of the current subpath
	lastCtrl    Point // last control point, for smooth curves
	needsMove   bool  // set after a close
	maxSegments int
}

// ensureStarted inserts the implicit MoveTo required when drawing
// commands follow a close path.
func (c *pathCursor) ensureStarted() {
	if c.needsMove {
		c.path.Start(c.subStart)
		c.needsMove = false
	}
}

func (c *pathCursor) checkLimit() error {
	if c.maxSegments > 0 && len(c.path) > c.maxSegments {
		return svgerr.New(svgerr.CodeResourceLimit, "path data exceeds %d segments", c.maxSegments)
	}
	return nil
}

// ParsePath parses an SVG path data string, such as found
// in the 'd' attribute, into a path in absolute coordinates.
//
// As required by SVG error handling, the path is rendered up to the
// first error: on a syntax error the valid prefix is returned along
// with an INVALID_ARGUMENT error. If the path has more than maxSegments
// operations (0 meaning DefaultMaxSegments), a nil path and a
// RESOURCE_LIMIT_EXCEEDED error are returned.
func ParsePath(d string, maxSegments int) (Path, error) {
	if maxSegments <= 0 {
		maxSegments = DefaultMaxSegments
	}
	c := pathCursor{maxSegments: maxSegments}
	err := c.compilePath(d)
	if svgerr.Is(err, svgerr.CodeResourceLimit) {
		return nil, err
	}
	return c.path, err
}

func badPath(format string, args ...any) error {
	return svgerr.New(svgerr.CodeInvalidArgument, "bad path: "+format, args...)
}

func (c *pathCursor) compilePath(s string) error {
	path := []byte(s)
	i := skipCommaWhitespace(path)
	if i == len(path) {
		return nil
	}
	if path[i] != 'M' && path[i] != 'm' {
		return badPath("path should start with a moveto command")
	}

	var f [7]float64
	prevCmd := byte('z')
	for {
		i += skipCommaWhitespace(path[i:])
		if len(path) <= i {
			break
		}

		cmd := prevCmd
		repeat := true
		if cmd == 'z' || cmd == 'Z' || !isNumberStart(path[i]) {
			cmd = path[i]
			repeat = false
			i++
			i += skipCommaWhitespace(path[i:])
		}

		CMD := cmd
		if 'a' <= cmd && cmd <= 'z' {
			CMD -= 'a' - 'A'
		}
		if CMD != 'Z' && cmdLens[CMD] == 0 {
			return badPath("unknown command '%c' at position %d", cmd, i)
		}
		for j := 0; j < cmdLens[CMD]; j++ {
			if CMD == 'A' && (j == 3 || j == 4) {
				// flags are single digits, possibly not separated
				if i < len(path) && (path[i] == '0' || path[i] == '1') {
					f[j] = float64(path[i] - '0')
				} else {
					return badPath("largeArc and sweep flags should be 0 or 1 in command '%c' at position %d", cmd, i+1)
				}
				i++
			} else {
				num, n := strconv.ParseFloat(path[i:])
				if n == 0 {
					if repeat && j == 0 && i < len(path) {
						return badPath("unknown command '%c' at position %d", path[i], i+1)
					}
					return badPath("%d numbers should follow command '%c' at position %d", cmdLens[CMD], cmd, i+1)
				}
				f[j] = num
				i += n
			}
			i += skipCommaWhitespace(path[i:])
		}

		if err := c.addSegment(cmd, prevCmd, f); err != nil {
			return err
		}
		switch cmd {
		case 'M':
			cmd = 'L' // subsequent pairs are implicit lineto
		case 'm':
			cmd = 'l'
		}
		prevCmd = cmd
	}
	return nil
}

func (c *pathCursor) addSegment(cmd, prevCmd byte, f [7]float64) error {
	p0 := c.current
	rel := 'a' <= cmd && cmd <= 'z'
	abs := func(p Point) Point {
		if rel {
			return p.Add(p0)
		}
		return p
	}

	switch cmd {
	case 'M', 'm':
		c.current = abs(Point{f[0], f[1]})
		c.subStart = c.current
		c.needsMove = false
		c.path.Start(c.current)
	case 'Z', 'z':
		c.ensureStarted()
		c.path.Stop(true)
		c.current = c.subStart
		c.needsMove = true
	case 'L', 'l':
		c.ensureStarted()
		c.current = abs(Point{f[0], f[1]})
		c.path.Line(c.current)
	case 'H', 'h':
		c.ensureStarted()
		c.current.X = f[0]
		if rel {
			c.current.X += p0.X
		}
		c.path.Line(c.current)
	case 'V', 'v':
		c.ensureStarted()
		c.current.Y = f[0]
		if rel {
			c.current.Y += p0.Y
		}
		c.path.Line(c.current)
	case 'C', 'c':
		c.ensureStarted()
		cp1, cp2 := abs(Point{f[0], f[1]}), abs(Point{f[2], f[3]})
		c.current = abs(Point{f[4], f[5]})
		c.path.CubeBezier(cp1, cp2, c.current)
		c.lastCtrl = cp2
	case 'S', 's':
		c.ensureStarted()
		cp1 := p0
		if isCubic(prevCmd) {
			cp1 = p0.reflect(c.lastCtrl)
		}
		cp2 := abs(Point{f[0], f[1]})
		c.current = abs(Point{f[2], f[3]})
		c.path.CubeBezier(cp1, cp2, c.current)
		c.lastCtrl = cp2
	case 'Q', 'q':
		c.ensureStarted()
		cp := abs(Point{f[0], f[1]})
		c.current = abs(Point{f[2], f[3]})
		c.path.QuadBezier(cp, c.current)
		c.lastCtrl = cp
	case 'T', 't':
		c.ensureStarted()
		cp := p0
		if isQuadratic(prevCmd) {
			cp = p0.reflect(c.lastCtrl)
		}
		c.current = abs(Point{f[0], f[1]})
		c.path.QuadBezier(cp, c.current)
		c.lastCtrl = cp
	case 'A', 'a':
		c.ensureStarted()
		end := abs(Point{f[5], f[6]})
		c.current = c.path.ArcTo(p0, f[0], f[1], f[2], f[3] == 1, f[4] == 1, end)
	default:
		return badPath("unknown command '%c'", cmd)
	}
	return c.checkLimit()
}

func isCubic(cmd byte) bool {
	return cmd == 'C' || cmd == 'c' || cmd == 'S' || cmd == 's'
}

func isQuadratic(cmd byte) bool {
	return cmd == 'Q' || cmd == 'q' || cmd == 'T' || cmd == 't'
}

func isNumberStart(b byte) bool {
	return '0' <= b && b <= '9' || b == '.' || b == '-' || b == '+'
}

func skipCommaWhitespace(path []byte) int {
	i := 0
	for i < len(path) && (path[i] == ' ' || path[i] == ',' || path[i] == '\n' || path[i] == '\r' || path[i] == '\t') {
		i++
	}
	return i
}

// ParseNumbers parses a list of numbers separated by
// whitespace and/or commas, as used by the 'points' and 'viewBox'
// attributes and by transform arguments.
func ParseNumbers(s string) ([]float64, error) {
	b := []byte(s)
	var out []float64
	i := skipCommaWhitespace(b)
	for i < len(b) {
		num, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return out, svgerr.New(svgerr.CodeInvalidArgument, "invalid number list %q at position %d", s, i+1)
		}
		out = append(out, num)
		i += n
		i += skipCommaWhitespace(b[i:])
	}
	return out, nil
}

// ParsePoints parses the 'points' attribute of polylines and polygons.
// An odd number of coordinates is an error, but the valid pairs are
// still returned.
func ParsePoints(s string) ([]float64, error) {
	coords, err := ParseNumbers(s)
	if err != nil {
		return coords[:len(coords)&^1], err
	}
	if len(coords)%2 != 0 {
		return coords[:len(coords)-1], svgerr.New(svgerr.CodeInvalidArgument, "odd number of coordinates in points %q", s)
	}
	return coords, nil
}

// MustParsePath is like ParsePath but panics on error.
// It is intended for tests and static data.
func MustParsePath(d string) Path {
	p, err := ParsePath(d, 0)
	if err != nil {
		panic(fmt.Sprintf("svgpath: %s", err))
	}
	return p
}
