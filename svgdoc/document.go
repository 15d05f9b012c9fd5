// Package svgdoc parses SVG markup into a mutable document tree.
//
// Elements are stored in an arena owned by the Document and are addressed
// by integer handles: an Element is a lightweight value which may be
// compared with ==. Every element keeps its attributes as an open
// string map, together with cached resolved values (style, transform,
// geometry) which are invalidated when an attribute is mutated or a
// stylesheet is applied.
//
// Only a subset of SVG is supported: the svg root, g, rect, circle,
// ellipse, line, polyline, polygon and path elements, with style
// and title/desc metadata. Other elements are skipped, together with
// their content, and reported as diagnostics.
//
// All the methods of Document and Element are safe for concurrent use:
// they are serialized by a lock owned by the Document.
package svgdoc

import (
	"fmt"
	"sync"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgpath"
	"github.com/benoitkugler/svgdoc/svgstyle"
)

// ErrorMode is the strategy used when an unsupported element
// or attribute is found.
type ErrorMode uint8

const (
	// IgnoreErrorMode records the diagnostic only.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode records the diagnostic and logs it at warn level.
	WarnErrorMode
	// StrictErrorMode makes the load fail.
	StrictErrorMode
)

const (
	DefaultMaxDepth = 256
	// DefaultMaxPathSegments bounds the operations of one path.
	DefaultMaxPathSegments = svgpath.DefaultMaxSegments
)

type options struct {
	errorMode       ErrorMode
	maxDepth        int
	maxPathSegments int
}

// Option configures the loading of a document.
type Option func(*options)

// WithErrorMode sets how unsupported content is handled.
// The default is IgnoreErrorMode.
func WithErrorMode(mode ErrorMode) Option {
	return func(o *options) { o.errorMode = mode }
}

// WithMaxDepth bounds the nesting of elements. Deeper documents
// fail to load with a RESOURCE_LIMIT_EXCEEDED error.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithMaxPathSegments bounds the number of operations of each path.
// Longer paths are not rendered and reported as diagnostics.
func WithMaxPathSegments(n int) Option {
	return func(o *options) { o.maxPathSegments = n }
}

func newOptions(opts []Option) options {
	out := options{maxDepth: DefaultMaxDepth, maxPathSegments: DefaultMaxPathSegments}
	for _, o := range opts {
		o(&out)
	}
	return out
}

// node is one element stored in the document arena
type node struct {
	kind     Kind
	tag      string
	parent   int // -1 for the root
	children []int

	attrs map[string]string
	order []string // attribute names, in insertion order

	pos   svgerr.Position // start tag in the source
	text  string          // character data of style, title and desc elements
	cache nodeCache
}

// nodeCache stores the values derived from the attributes.
type nodeCache struct {
	hasStyle  bool
	style     svgstyle.Style
	styleErrs []error

	hasMatrix bool
	matrix    svgpath.Matrix2D
	matrixErr error

	hasPath  bool
	path     svgpath.Path
	bbox     svgpath.Rect
	pathErrs []error
}

// Document is a parsed SVG document.
type Document struct {
	mu sync.Mutex

	nodes []node // nodes[0] is the root
	ids   map[string]int

	docSheets  []*svgstyle.StyleSheet // from <style> elements
	userSheets []*svgstyle.StyleSheet // added by ApplyStyleSheet

	titles, descriptions []string
	diagnostics          []error

	opts options
}

func (d *Document) root() *node { return &d.nodes[0] }

// DocumentElement returns the root svg element.
func (d *Document) DocumentElement() Element { return Element{doc: d, idx: 0} }

// GetElementByID returns the element with the given id.
// When several elements share an id, the last one registered wins.
func (d *Document) GetElementByID(id string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.ids[id]
	if !ok {
		return Element{}, false
	}
	return Element{doc: d, idx: idx}, true
}

// Width returns the intrinsic width of the document, in pixels.
func (d *Document) Width() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.intrinsicSize().X
}

// Height returns the intrinsic height of the document, in pixels.
func (d *Document) Height() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.intrinsicSize().Y
}

func (d *Document) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	size := d.intrinsicSize()
	return fmt.Sprintf("<Document width=%g height=%g>", size.X, size.Y)
}

// Titles returns the text of the title elements, in document order.
func (d *Document) Titles() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.titles...)
}

// Descriptions returns the text of the desc elements, in document order.
func (d *Document) Descriptions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.descriptions...)
}

// Diagnostics returns the problems found while loading the document and
// applying stylesheets, followed by the problems found when resolving the
// current state of the elements (invalid attribute values, for instance).
// None of them prevents the document from being rendered.
func (d *Document) Diagnostics() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := append([]error(nil), d.diagnostics...)
	out = append(out, d.viewportErrors()...)
	for i := range d.nodes {
		c := &d.nodes[i].cache
		out = append(out, c.styleErrs...)
		if c.matrixErr != nil {
			out = append(out, c.matrixErr)
		}
		out = append(out, c.pathErrs...)
	}
	return out
}

// addDiagnostic records a recoverable problem and logs it
// according to the error mode.
func (d *Document) addDiagnostic(err error) {
	d.diagnostics = append(d.diagnostics, err)
	d.logDiagnostic(err)
}

func (d *Document) logDiagnostic(err error) {
	if d.opts.errorMode == WarnErrorMode {
		Logger().Warn("svg diagnostic", "err", err)
	} else {
		Logger().Debug("svg diagnostic", "err", err)
	}
}

// ApplyStyleSheet parses the given CSS and appends it to the sheets
// of the document. Sheets accumulate: on equal specificity, the rules of
// the last applied sheet win. Use ClearStyleSheets to start over.
//
// A syntax error leaves the document untouched. Unsupported rules are
// skipped and recorded as diagnostics.
func (d *Document) ApplyStyleSheet(css string) error {
	sheet, diags, err := svgstyle.ParseStyleSheet(css)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, diag := range diags {
		d.addDiagnostic(diag)
	}
	d.userSheets = append(d.userSheets, sheet)
	d.invalidateStyles(0)
	return nil
}

// ClearStyleSheets removes the sheets added by ApplyStyleSheet.
// Sheets defined in the markup are kept.
func (d *Document) ClearStyleSheets() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userSheets = nil
	d.invalidateStyles(0)
}

func (d *Document) sheets() []*svgstyle.StyleSheet {
	out := make([]*svgstyle.StyleSheet, 0, len(d.docSheets)+len(d.userSheets))
	out = append(out, d.docSheets...)
	return append(out, d.userSheets...)
}
