package svgdoc

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgpath"
	"github.com/benoitkugler/svgdoc/svgstyle"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func loadFile(t *testing.T, name string, opts ...Option) *Document {
	t.Helper()
	doc, err := LoadFile("testdata/"+name, opts...)
	require.NoError(t, err)
	return doc
}

func mustLoad(t *testing.T, content string, opts ...Option) *Document {
	t.Helper()
	doc, err := Load([]byte(content), opts...)
	require.NoError(t, err)
	return doc
}

func mustGet(t *testing.T, doc *Document, id string) Element {
	t.Helper()
	e, ok := doc.GetElementByID(id)
	require.True(t, ok, "missing element %s", id)
	return e
}

func assertRect(t *testing.T, want, got svgpath.Rect) {
	t.Helper()
	if !cmp.Equal(want, got, approx) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestElementExample(t *testing.T) {
	doc := loadFile(t, "element.svg")
	assert.Equal(t, 200., doc.Width())
	assert.Equal(t, 200., doc.Height())
	assert.Equal(t, "<Document width=200 height=200>", doc.String())
	assert.Equal(t, []string{"Shapes"}, doc.Titles())
	assert.Equal(t, []string{"A blue square behind a red disk"}, doc.Descriptions())
	assert.Empty(t, doc.Diagnostics())

	rect := mustGet(t, doc, "myrect")
	circle := mustGet(t, doc, "mycircle")
	root := doc.DocumentElement()
	assert.Equal(t, "svg", root.TagName())
	assert.Equal(t, KindRect, rect.Kind())

	assert.True(t, rect.HasAttribute("fill"))
	fill, ok := rect.GetAttribute("fill")
	assert.True(t, ok)
	assert.Equal(t, "blue", fill)
	_, ok = rect.GetAttribute("stroke")
	assert.False(t, ok)

	rect.SetAttribute("fill", "green")
	st := rect.Style()
	assert.Equal(t, "#008000", st.Fill.String())

	assertRect(t, svgpath.Rect{X: 60, Y: 60, W: 80, H: 80}, circle.GetBoundingBox())
	circle.SetAttribute("r", "50")
	assertRect(t, svgpath.Rect{X: 50, Y: 50, W: 100, H: 100}, circle.GetBoundingBox())

	assertRect(t, svgpath.Rect{X: 50, Y: 50, W: 100, H: 100}, rect.GetBoundingBox())
	assert.Equal(t, svgpath.Identity, rect.GetLocalMatrix())

	rect.SetAttribute("transform", "translate(10, 20)")
	assert.Equal(t, svgpath.Matrix2D{A: 1, D: 1, E: 10, F: 20}, rect.GetLocalMatrix())
	assertRect(t, svgpath.Rect{X: 50, Y: 50, W: 100, H: 100}, rect.GetBoundingBox())
	assertRect(t, svgpath.Rect{X: 60, Y: 70, W: 100, H: 100}, rect.GetGlobalBoundingBox())

	parent, ok := circle.ParentElement()
	assert.True(t, ok)
	assert.Equal(t, root, parent)
	_, ok = root.ParentElement()
	assert.False(t, ok)
	assert.Same(t, doc, circle.OwnerDocument())

	children := root.Children()
	require.Len(t, children, 4)
	assert.Equal(t, "title", children[0].TagName())
	assert.Equal(t, rect, children[2])
	assert.Equal(t, `<Element circle id="mycircle">`, circle.String())
}

func TestGetElementByID(t *testing.T) {
	doc := mustLoad(t, `<svg><rect id="a" width="1" height="1"/><circle id="a" r="1"/></svg>`)
	_, ok := doc.GetElementByID("missing")
	assert.False(t, ok)

	// last registration wins
	a := mustGet(t, doc, "a")
	assert.Equal(t, "circle", a.TagName())

	a.RemoveAttribute("id")
	rect := mustGet(t, doc, "a")
	assert.Equal(t, "rect", rect.TagName())

	rect.SetAttribute("id", "b")
	_, ok = doc.GetElementByID("a")
	assert.False(t, ok)
	assert.Equal(t, rect, mustGet(t, doc, "b"))

	a.SetAttribute("id", "b")
	assert.Equal(t, a, mustGet(t, doc, "b"))
}

func TestSetAttributeInvalidation(t *testing.T) {
	doc := mustLoad(t, `<svg><g id="g" fill="red"><rect id="r" width="10" height="10"/></g></svg>`)
	g, r := mustGet(t, doc, "g"), mustGet(t, doc, "r")

	assert.Equal(t, "#ff0000", r.Style().Fill.String())
	_ = r.GetBoundingBox()
	cache := &doc.nodes[r.idx].cache
	require.True(t, cache.hasStyle && cache.hasPath)

	// same value: nothing to do
	g.SetAttribute("fill", "red")
	assert.True(t, cache.hasStyle)

	// inherited property: the descendants are refreshed
	g.SetAttribute("fill", "blue")
	assert.False(t, cache.hasStyle)
	assert.True(t, cache.hasPath)
	assert.Equal(t, "#0000ff", r.Style().Fill.String())

	r.SetAttribute("width", "20")
	assert.True(t, cache.hasStyle)
	assert.False(t, cache.hasPath)
	assertRect(t, svgpath.Rect{W: 20, H: 10}, r.GetBoundingBox())

	r.RemoveAttribute("height")
	assert.True(t, r.GetBoundingBox().IsEmpty())
	assert.Equal(t, []string{"id", "width"}, r.AttributeNames())
}

func TestGroupBoundingBox(t *testing.T) {
	doc := mustLoad(t, `<svg><g id="g" transform="scale(2)"><rect x="1" y="1" width="2" height="2"/></g></svg>`)
	g := mustGet(t, doc, "g")
	assertRect(t, svgpath.Rect{X: 1, Y: 1, W: 2, H: 2}, g.GetBoundingBox())
	assertRect(t, svgpath.Rect{X: 2, Y: 2, W: 4, H: 4}, g.GetGlobalBoundingBox())
	assertRect(t, svgpath.Rect{X: 2, Y: 2, W: 4, H: 4}, doc.DocumentElement().GetBoundingBox())
	assert.Equal(t, svgpath.Matrix2D{A: 2, D: 2}, g.GetGlobalMatrix())

	// no size attribute: the extent of the content is used
	assert.Equal(t, 6., doc.Width())
	assert.Equal(t, 6., doc.Height())
}

func TestIntrinsicSize(t *testing.T) {
	for _, test := range []struct {
		content string
		w, h    float64
	}{
		{`<svg width="100" height="50"/>`, 100, 50},
		{`<svg width="1in" height="72pt"/>`, 96, 96},
		{`<svg viewBox="0 0 40 30"/>`, 40, 30},
		{`<svg viewBox="0 0 50 25" width="100"/>`, 100, 50},
		{`<svg viewBox="0 0 50 25" height="100%"/>`, 50, 25},
		{`<svg/>`, 0, 0},
	} {
		doc := mustLoad(t, test.content)
		assert.Equal(t, test.w, doc.Width(), test.content)
		assert.Equal(t, test.h, doc.Height(), test.content)
	}
}

func TestPercentages(t *testing.T) {
	doc := mustLoad(t, `<svg viewBox="0 0 200 100"><rect id="r" width="50%" height="50%"/></svg>`)
	r := mustGet(t, doc, "r")
	assertRect(t, svgpath.Rect{W: 100, H: 50}, r.GetBoundingBox())

	doc.DocumentElement().SetAttribute("viewBox", "0 0 400 100")
	assertRect(t, svgpath.Rect{W: 200, H: 50}, r.GetBoundingBox())
}

func TestViewportTransform(t *testing.T) {
	doc := mustLoad(t, `<svg viewBox="0 0 100 50"/>`)
	assert.Equal(t, svgpath.Matrix2D{A: 2, D: 2, F: 50}, doc.ViewportTransform(200, 200))

	doc.DocumentElement().SetAttribute("preserveAspectRatio", "none")
	assert.Equal(t, svgpath.Matrix2D{A: 2, D: 4}, doc.ViewportTransform(200, 200))

	doc = mustLoad(t, `<svg width="10" height="10"/>`)
	assert.Equal(t, svgpath.Matrix2D{A: 3, D: 3}, doc.ViewportTransform(30, 30))
}

func TestParseAspectRatio(t *testing.T) {
	ar, err := ParseAspectRatio("xMinYMax slice")
	require.NoError(t, err)
	assert.Equal(t, AspectRatio{AlignX: 0, AlignY: 1, Slice: true}, ar)

	ar, err = ParseAspectRatio("none")
	require.NoError(t, err)
	assert.True(t, ar.None)

	for _, s := range []string{"", "xMinYMid cover", "xMedYMid", "bogus"} {
		_, err = ParseAspectRatio(s)
		assert.True(t, svgerr.Is(err, svgerr.CodeInvalidArgument), s)
	}
}

func fillOf(t *testing.T, doc *Document, id string) string {
	st := mustGet(t, doc, id).Style()
	return st.Fill.String()
}

const (
	summerStyle = `
.sky { fill: #4A90E2; }
.sun { fill: #FF7F00; }
.mountain { fill: #2E3A59; }
.cloud { fill: #FFFFFF; opacity: 0.8; }
.ground { fill: #2E8B57; }`
	winterStyle = `
.sky { fill: #87CEEB; }
.sun { fill: #ADD8E6; }
.mountain { fill: #2F4F4F; }
.cloud { fill: #FFFFFF; opacity: 0.8; }
.ground { fill: #FFFAFA; }`
)

func TestApplyStyleSheetAccumulates(t *testing.T) {
	doc := loadFile(t, "landscape.svg")
	assert.Equal(t, "#000000", fillOf(t, doc, "sky"))

	require.NoError(t, doc.ApplyStyleSheet(summerStyle))
	assert.Equal(t, "#4a90e2", fillOf(t, doc, "sky"))
	assert.Equal(t, "#2e8b57", fillOf(t, doc, "ground"))

	// the later sheet wins on equal specificity
	require.NoError(t, doc.ApplyStyleSheet(winterStyle))
	assert.Equal(t, "#87ceeb", fillOf(t, doc, "sky"))
	assert.Equal(t, "#fffafa", fillOf(t, doc, "ground"))

	cloud := doc.DocumentElement().Children()[2]
	assert.Equal(t, "ellipse", cloud.TagName())
	assert.Equal(t, 0.8, cloud.Style().Opacity)

	doc.ClearStyleSheets()
	assert.Equal(t, "#000000", fillOf(t, doc, "sky"))
}

func TestCascadePrecedence(t *testing.T) {
	doc := mustLoad(t, `<svg>
		<rect id="r1" class="c" width="1" height="1"/>
		<rect id="r2" class="c" width="1" height="1" fill="yellow"/>
		<rect id="r3" class="c" width="1" height="1" fill="yellow" style="fill: purple"/>
		<rect id="r4" class="d" width="1" height="1" style="fill: purple"/>
		<rect id="r5" class="d" width="1" height="1" style="fill: purple !important"/>
	</svg>`)
	require.NoError(t, doc.ApplyStyleSheet(`
		#r1 { fill: red }
		.c { fill: blue }
		rect { fill: green }
		.d { fill: lime !important }
	`))
	assert.Equal(t, "#ff0000", fillOf(t, doc, "r1")) // id beats class and tag
	assert.Equal(t, "#ffff00", fillOf(t, doc, "r2")) // presentation beats sheets
	assert.Equal(t, "#800080", fillOf(t, doc, "r3")) // inline beats presentation
	assert.Equal(t, "#00ff00", fillOf(t, doc, "r4")) // important sheet beats inline
	assert.Equal(t, "#800080", fillOf(t, doc, "r5")) // important inline beats all
}

func TestStyleElement(t *testing.T) {
	doc := mustLoad(t, `<svg>
		<style type="text/css"><![CDATA[ g > rect { fill: red } ]]></style>
		<g><rect id="r" width="1" height="1"/></g>
	</svg>`)
	assert.Equal(t, "#ff0000", fillOf(t, doc, "r"))

	require.NoError(t, doc.ApplyStyleSheet(`g > rect { fill: blue }`))
	assert.Equal(t, "#0000ff", fillOf(t, doc, "r"))

	// markup sheets are kept
	doc.ClearStyleSheets()
	assert.Equal(t, "#ff0000", fillOf(t, doc, "r"))
}

func TestClassMutation(t *testing.T) {
	doc := mustLoad(t, `<svg><g id="g"><rect id="r" width="1" height="1"/></g></svg>`)
	require.NoError(t, doc.ApplyStyleSheet(`.on rect { fill: red }`))
	assert.Equal(t, "#000000", fillOf(t, doc, "r"))

	mustGet(t, doc, "g").SetAttribute("class", "on")
	assert.Equal(t, "#ff0000", fillOf(t, doc, "r"))
}

func TestDiagnostics(t *testing.T) {
	doc := loadFile(t, "unsupported.svg")
	diags := doc.Diagnostics()
	require.Len(t, diags, 3)

	var pe *svgerr.ParseError
	require.ErrorAs(t, diags[0], &pe)
	assert.Equal(t, svgerr.UnsupportedElement, pe.Kind) // defs
	assert.Equal(t, 4, pe.Pos.Line)
	require.ErrorAs(t, diags[1], &pe)
	assert.Equal(t, svgerr.UnsupportedElement, pe.Kind) // text
	require.ErrorAs(t, diags[2], &pe)
	assert.Equal(t, svgerr.UnsupportedAttribute, pe.Kind) // filter
	for _, d := range diags {
		assert.Equal(t, svgerr.CodeUnsupportedFeature, svgerr.GetCode(d))
	}

	// the skipped elements are not in the tree
	children := doc.DocumentElement().Children()
	require.Len(t, children, 2)
	assert.Equal(t, "rect", children[0].TagName())
	assert.Equal(t, "#008000", fillOf(t, doc, "target"))
	assert.Equal(t, "g", children[1].TagName())

	// resolution problems are reported once the element is resolved
	target := mustGet(t, doc, "target")
	target.SetAttribute("height", "-4")
	target.SetAttribute("stroke", "nocolor")
	_ = target.GetBoundingBox()
	_ = target.Style()
	diags = doc.Diagnostics()
	require.Len(t, diags, 5)
	for _, d := range diags[3:] {
		assert.Equal(t, svgerr.CodeInvalidArgument, svgerr.GetCode(d))
	}

	// fixing the attribute clears the diagnostic
	target.SetAttribute("height", "4")
	_ = target.GetBoundingBox()
	assert.Len(t, doc.Diagnostics(), 4)
}

func TestEvenOddDiagnostic(t *testing.T) {
	doc := mustLoad(t, `<svg>
		<g id="g" fill-rule="evenodd">
			<rect id="r" width="1" height="1"/>
		</g>
		<rect id="plain" width="1" height="1"/>
	</svg>`)
	assert.Equal(t, svgstyle.EvenOdd, mustGet(t, doc, "r").Style().FillRule)
	_ = mustGet(t, doc, "plain").Style()

	diags := doc.Diagnostics()
	require.Len(t, diags, 1) // only the shape is reported
	assert.True(t, svgerr.Is(diags[0], svgerr.CodeUnsupportedFeature))
	assert.ErrorContains(t, diags[0], "evenodd")

	mustGet(t, doc, "g").SetAttribute("fill-rule", "nonzero")
	_ = mustGet(t, doc, "r").Style()
	assert.Empty(t, doc.Diagnostics())
}

func TestStrictMode(t *testing.T) {
	data, err := os.ReadFile("testdata/unsupported.svg")
	require.NoError(t, err)
	_, err = Load(data, WithErrorMode(StrictErrorMode))
	var pe *svgerr.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, svgerr.UnsupportedElement, pe.Kind)

	doc, err := Load(data, WithErrorMode(WarnErrorMode))
	require.NoError(t, err)
	assert.Len(t, doc.Diagnostics(), 3)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(nil)
	assert.True(t, svgerr.Is(err, svgerr.CodeInvalidArgument))
	_, err = Load([]byte("  \n"))
	assert.True(t, svgerr.Is(err, svgerr.CodeInvalidArgument))

	for _, content := range []string{
		`<svg><rect></svg>`,
		`<svg>`,
		`<html/>`,
		`hello`,
		`<svg/><svg/>`,
		`<!-- only a comment -->`,
	} {
		_, err := Load([]byte(content))
		var pe *svgerr.ParseError
		require.True(t, errors.As(err, &pe), content)
		assert.Equal(t, svgerr.Malformed, pe.Kind, content)
		assert.Equal(t, svgerr.CodeParse, svgerr.GetCode(err), content)
	}

	_, err = Load([]byte("<svg>\n<g>\n<rect></g></svg>"))
	var pe *svgerr.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Pos.Line)

	_, err = LoadFile("testdata/missing.svg")
	assert.Error(t, err)
}

func TestMaxDepth(t *testing.T) {
	content := `<svg><g><g><g/></g></g></svg>`
	_, err := Load([]byte(content), WithMaxDepth(3))
	assert.True(t, svgerr.Is(err, svgerr.CodeResourceLimit))

	_, err = Load([]byte(content), WithMaxDepth(4))
	assert.NoError(t, err)
}

func TestMaxPathSegments(t *testing.T) {
	doc := mustLoad(t, `<svg><path id="p" d="M0,0 L1,1 L2,2 L3,3"/><rect id="r" width="1" height="1"/></svg>`,
		WithMaxPathSegments(2))
	assert.True(t, mustGet(t, doc, "p").GetBoundingBox().IsEmpty())
	assertRect(t, svgpath.Rect{W: 1, H: 1}, mustGet(t, doc, "r").GetBoundingBox())
	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.True(t, svgerr.Is(diags[0], svgerr.CodeResourceLimit))
}

func TestInvalidTransform(t *testing.T) {
	doc := mustLoad(t, `<svg><rect id="r" width="1" height="1" transform="rotate(1, 2)"/></svg>`)
	r := mustGet(t, doc, "r")
	assert.Equal(t, svgpath.Identity, r.GetLocalMatrix())
	require.Len(t, doc.Diagnostics(), 1)
}

func TestCyclicParentChainPanics(t *testing.T) {
	doc := mustLoad(t, `<svg><g><rect width="1" height="1"/></g></svg>`)
	doc.nodes[0].parent = 2 // corrupt the tree
	assert.Panics(t, func() { doc.globalMatrix(2) })
}

func TestConcurrentReads(t *testing.T) {
	doc := loadFile(t, "landscape.svg")
	require.NoError(t, doc.ApplyStyleSheet(summerStyle))
	sky := mustGet(t, doc, "sky")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := sky.Style()
			assert.Equal(t, svgstyle.PaintColor, st.Fill.Kind)
			assertRect(t, svgpath.Rect{W: 800, H: 600}, sky.GetBoundingBox())
		}()
	}
	wg.Wait()
}
