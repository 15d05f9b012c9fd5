package svgdoc

import (
	"fmt"
	"image/color"
	"math"
	"testing"

	"github.com/benoitkugler/svgdoc/svgpath"
	"github.com/benoitkugler/svgdoc/svgstyle"
	"github.com/stretchr/testify/assert"
	"golang.org/x/image/math/fixed"
)

// recorder logs the drawing operations
type recorder struct {
	log []string
}

func (r *recorder) SetupDrawers(willFill, willStroke bool) (Filler, Stroker) {
	r.log = append(r.log, fmt.Sprintf("setup %v %v", willFill, willStroke))
	var (
		f Filler
		s Stroker
	)
	if willFill {
		f = &recordDrawer{r: r, name: "fill"}
	}
	if willStroke {
		s = &recordDrawer{r: r, name: "stroke"}
	}
	return f, s
}

func (r *recorder) PushGroup(opacity float64) { r.log = append(r.log, fmt.Sprintf("push %g", opacity)) }
func (r *recorder) PopGroup()                 { r.log = append(r.log, "pop") }

type recordDrawer struct {
	r    *recorder
	name string
}

func (d *recordDrawer) printf(format string, args ...any) {
	d.r.log = append(d.r.log, d.name+" "+fmt.Sprintf(format, args...))
}

func (d *recordDrawer) Clear() {}

func (d *recordDrawer) Start(a fixed.Point26_6) {
	d.printf("start %d,%d", a.X.Round(), a.Y.Round())
}

func (d *recordDrawer) Line(fixed.Point26_6) {}

func (d *recordDrawer) QuadBezier(_, _ fixed.Point26_6) {}

func (d *recordDrawer) CubeBezier(_, _, _ fixed.Point26_6) {}

func (d *recordDrawer) Stop(bool) {}

func (d *recordDrawer) SetColor(c color.NRGBA) { d.printf("color %s", svgstyle.FormatColor(c)) }

func (d *recordDrawer) Draw() { d.printf("draw") }

func (d *recordDrawer) SetWinding(bool) {}

func (d *recordDrawer) SetStrokeOptions(options StrokeOptions) {
	d.printf("width %d", options.LineWidth.Round())
}

func TestDrawOrder(t *testing.T) {
	doc := mustLoad(t, `<svg>
		<rect width="10" height="10" fill="red" stroke="blue" stroke-width="2"/>
		<g opacity="0.5">
			<circle r="1" fill="none"/>
		</g>
		<rect width="1" height="1" display="none"/>
		<rect width="1" height="1" visibility="hidden"/>
		<g fill-opacity="0.5" transform="translate(5, 5)"><rect id="r" width="1" height="1" fill="white"/></g>
		<title>ignored</title>
	</svg>`)

	var rec recorder
	doc.Draw(&rec, svgpath.Identity.Scale(2, 2))
	assert.Equal(t, []string{
		"setup true true",
		"fill start 0,0",
		"fill color #ff0000",
		"fill draw",
		"stroke width 4",
		"stroke start 0,0",
		"stroke color #0000ff",
		"stroke draw",
		"push 0.5",
		"setup false false",
		"pop",
		"setup true false",
		"fill start 10,10",
		"fill color #ffffff80",
		"fill draw",
	}, rec.log)

	// single element: its ancestors transform is used
	rec = recorder{}
	mustGet(t, doc, "r").Draw(&rec, svgpath.Identity)
	assert.Equal(t, []string{
		"setup true false",
		"fill start 5,5",
		"fill color #ffffff80",
		"fill draw",
	}, rec.log)
}

func TestDrawFillClosesSubpaths(t *testing.T) {
	doc := mustLoad(t, `<svg><path d="M0,0 L10,0 L10,10 M20,20 L30,20 L30,30"/></svg>`)

	var lines []fixed.Point26_6
	rec := &lineRecorder{lines: &lines}
	doc.Draw(rec, svgpath.Identity)

	// each open subpath gets a line back to its start
	assert.Equal(t, []fixed.Point26_6{
		{X: 10 * 64}, {X: 10 * 64, Y: 10 * 64}, {},
		{X: 30 * 64, Y: 20 * 64}, {X: 30 * 64, Y: 30 * 64}, {X: 20 * 64, Y: 20 * 64},
	}, lines)
}

type lineRecorder struct {
	recorder
	lines *[]fixed.Point26_6
}

type lineDrawer struct {
	recordDrawer
	lines *[]fixed.Point26_6
}

func (l *lineDrawer) Line(b fixed.Point26_6) { *l.lines = append(*l.lines, b) }

func (r *lineRecorder) SetupDrawers(willFill, willStroke bool) (Filler, Stroker) {
	if !willFill {
		return nil, nil
	}
	return &lineDrawer{recordDrawer: recordDrawer{r: &r.recorder, name: "fill"}, lines: r.lines}, nil
}

func TestWithOpacity(t *testing.T) {
	assert.Equal(t, color.NRGBA{1, 2, 3, 128}, withOpacity(color.NRGBA{1, 2, 3, 255}, 0.5))
	assert.Equal(t, color.NRGBA{1, 2, 3, 0}, withOpacity(color.NRGBA{1, 2, 3, 255}, 0))
}

func TestToFixedClamps(t *testing.T) {
	assert.Equal(t, fixed.Int26_6(10*64), toFixed26_6(10))
	assert.Equal(t, fixed.Int26_6(-10*64), toFixed26_6(-10))
	assert.Equal(t, fixed.Int26_6(maxDevice*64), toFixed26_6(1e8))
	assert.Equal(t, fixed.Int26_6(-maxDevice*64), toFixed26_6(-1e12))
	assert.Equal(t, fixed.Int26_6(0), toFixed26_6(math.NaN()))

	p := toFixed(svgpath.Point{X: -1e8, Y: 3})
	assert.Equal(t, fixed.Point26_6{X: -maxDevice * 64, Y: 3 * 64}, p)
}
