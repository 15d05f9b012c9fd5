package svgpath

import (
	"math"
	"strings"

	"github.com/benoitkugler/svgdoc/svgerr"
)

func degrees(a float64) float64 { return a * math.Pi / 180 }

// transformFunc builds the matrix of one transform function,
// given a valid number of arguments
type transformFunc struct {
	arity []int // accepted argument counts
	build func(args []float64) Matrix2D
}

var transformFuncs = map[string]transformFunc{
	"matrix": {[]int{6}, func(a []float64) Matrix2D {
		return Matrix2D{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]}
	}},
	"translate": {[]int{1, 2}, func(a []float64) Matrix2D {
		ty := 0.
		if len(a) == 2 {
			ty = a[1]
		}
		return Identity.Translate(a[0], ty)
	}},
	"scale": {[]int{1, 2}, func(a []float64) Matrix2D {
		sy := a[0]
		if len(a) == 2 {
			sy = a[1]
		}
		return Identity.Scale(a[0], sy)
	}},
	"rotate": {[]int{1, 3}, func(a []float64) Matrix2D {
		if len(a) == 1 {
			return Identity.Rotate(degrees(a[0]))
		}
		// rotation around (cx, cy)
		return Identity.Translate(a[1], a[2]).Rotate(degrees(a[0])).Translate(-a[1], -a[2])
	}},
	"skewx": {[]int{1}, func(a []float64) Matrix2D { return Identity.SkewX(degrees(a[0])) }},
	"skewy": {[]int{1}, func(a []float64) Matrix2D { return Identity.SkewY(degrees(a[0])) }},
}

func badTransform(v, format string, args ...any) error {
	return svgerr.Wrap(svgerr.CodeInvalidArgument, svgerr.New(svgerr.CodeInvalidArgument, format, args...), "invalid transform %q", v)
}

// ParseTransform parses a transform list, such as
// "translate(10 20) rotate(45)". Transforms are composed left to right,
// so the right-most one is applied first to the coordinates.
// On error, the identity is returned.
func ParseTransform(v string) (Matrix2D, error) {
	out := Identity
	rest := v
	for {
		rest = strings.TrimLeft(rest, " ,\t\n\r")
		if rest == "" {
			return out, nil
		}
		name, after, ok := strings.Cut(rest, "(")
		if !ok {
			return Identity, badTransform(v, "missing opening parenthesis")
		}
		argsText, tail, ok := strings.Cut(after, ")")
		if !ok {
			return Identity, badTransform(v, "missing closing parenthesis")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		fn, known := transformFuncs[name]
		if !known {
			return Identity, badTransform(v, "unknown function %q", name)
		}
		args, err := ParseNumbers(argsText)
		if err != nil {
			return Identity, badTransform(v, "%s: %v", name, err)
		}
		valid := false
		for _, n := range fn.arity {
			valid = valid || n == len(args)
		}
		if !valid {
			return Identity, badTransform(v, "%s: expected %v arguments, got %d", name, fn.arity, len(args))
		}
		out = out.Mult(fn.build(args))
		rest = tail
	}
}
