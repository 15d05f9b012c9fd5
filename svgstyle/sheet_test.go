package svgstyle

import (
	"testing"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNode is a minimal tree implementing Node.
type testNode struct {
	tag    string
	attrs  map[string]string
	parent *testNode
}

func (n *testNode) TagName() string { return n.tag }

func (n *testNode) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *testNode) ParentNode() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func newTree() (root, group, rect *testNode) {
	root = &testNode{tag: "svg"}
	group = &testNode{tag: "g", attrs: map[string]string{"class": "layer"}, parent: root}
	rect = &testNode{tag: "rect", attrs: map[string]string{"id": "r", "class": "sky big"}, parent: group}
	return
}

func TestSelectorMatch(t *testing.T) {
	root, group, rect := newTree()
	for _, tc := range []struct {
		sel  string
		node *testNode
		want bool
	}{
		{"rect", rect, true},
		{"*", root, true},
		{".sky", rect, true},
		{".sky.big", rect, true},
		{".sky.small", rect, false},
		{"#r", rect, true},
		{"rect#r.sky", rect, true},
		{"circle#r", rect, false},
		{"svg rect", rect, true},
		{"svg > rect", rect, false},
		{"g.layer > rect", rect, true},
		{"svg>g>rect", rect, true},
		{"svg g", group, true},
		{"g rect", group, false},
	} {
		s, err := ParseSelector(tc.sel)
		require.NoError(t, err, tc.sel)
		assert.Equal(t, tc.want, s.Matches(tc.node), tc.sel)
	}
}

func TestSelectorSpecificity(t *testing.T) {
	for sel, want := range map[string]Specificity{
		"rect":            {0, 0, 1},
		"*":               {0, 0, 0},
		".a.b":            {0, 2, 0},
		"#id":             {1, 0, 0},
		"g > rect#id.sky": {1, 1, 2},
	} {
		s, err := ParseSelector(sel)
		require.NoError(t, err)
		assert.Equal(t, want, s.Specificity(), sel)
	}
	assert.True(t, Specificity{0, 0, 5}.Less(Specificity{0, 1, 0}))
	assert.False(t, Specificity{1, 0, 0}.Less(Specificity{0, 9, 9}))
}

func TestSelectorErrors(t *testing.T) {
	_, err := ParseSelector("rect:hover")
	assert.True(t, svgerr.Is(err, svgerr.CodeUnsupportedFeature))
	_, err = ParseSelector("a[href]")
	assert.True(t, svgerr.Is(err, svgerr.CodeUnsupportedFeature))
	for _, s := range []string{"", "> rect", "g >", "g > > rect", "rect*", ".", "g rect#"} {
		_, err = ParseSelector(s)
		assert.True(t, svgerr.Is(err, svgerr.CodeInvalidArgument), s)
	}
}

func TestParseStyleSheet(t *testing.T) {
	sheet, diags, err := ParseStyleSheet(`
		rect, .sky { fill: red; stroke: blue !important }
		a:hover { fill: green }
		@media print { rect { fill: black } }
	`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, "rect", sheet.Rules[0].Selector.String())
	assert.Equal(t, ".sky", sheet.Rules[1].Selector.String())
	assert.Equal(t, []Declaration{
		{Property: "fill", Value: "red"},
		{Property: "stroke", Value: "blue", Important: true},
	}, sheet.Rules[0].Declarations)
	assert.Len(t, diags, 2)
}

func TestCascadePrecedence(t *testing.T) {
	_, _, rect := newTree()
	mustSheet := func(css string) *StyleSheet {
		s, _, err := ParseStyleSheet(css)
		require.NoError(t, err)
		return s
	}

	// specificity wins over order
	sheets := []*StyleSheet{mustSheet(`#r { fill: red } rect { fill: blue }`)}
	assert.Equal(t, "red", Cascade(sheets, rect, nil, nil)["fill"])

	// later sheet wins on equal specificity
	sheets = append(sheets, mustSheet(`#r { fill: green }`))
	assert.Equal(t, "green", Cascade(sheets, rect, nil, nil)["fill"])

	// presentation attribute outranks stylesheet rules
	pres := map[string]string{"fill": "yellow"}
	assert.Equal(t, "yellow", Cascade(sheets, rect, pres, nil)["fill"])

	// inline style outranks presentation attributes
	inline := []Declaration{{Property: "fill", Value: "purple"}}
	assert.Equal(t, "purple", Cascade(sheets, rect, pres, inline)["fill"])

	// !important in a sheet outranks the inline normal declaration
	sheets = append(sheets, mustSheet(`rect { fill: orange !important }`))
	assert.Equal(t, "orange", Cascade(sheets, rect, pres, inline)["fill"])

	// inline !important wins over everything
	inline = append(inline, Declaration{Property: "fill", Value: "black", Important: true})
	assert.Equal(t, "black", Cascade(sheets, rect, pres, inline)["fill"])
}

func TestParseDeclarations(t *testing.T) {
	decls, err := ParseDeclarations("fill: red; Stroke-Width : 2 ")
	require.NoError(t, err)
	assert.Equal(t, []Declaration{{Property: "fill", Value: "red"}, {Property: "stroke-width", Value: "2"}}, decls)

	// the last declaration does not need a terminating semicolon
	for _, tt := range []struct {
		in   string
		want []Declaration
	}{
		{"fill: purple", []Declaration{{Property: "fill", Value: "purple"}}},
		{"fill: purple;", []Declaration{{Property: "fill", Value: "purple"}}},
		{"fill:red;stroke:blue", []Declaration{{Property: "fill", Value: "red"}, {Property: "stroke", Value: "blue"}}},
		{"fill: purple !important", []Declaration{{Property: "fill", Value: "purple", Important: true}}},
	} {
		decls, err := ParseDeclarations(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, decls, tt.in)
	}

	decls, err = ParseDeclarations("  ")
	require.NoError(t, err)
	assert.Empty(t, decls)
}
