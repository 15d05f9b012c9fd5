package svgdoc

import (
	"fmt"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgpath"
	"github.com/benoitkugler/svgdoc/svgstyle"
)

// Element is a handle on one element of a Document.
// Handles are values: two handles on the same element are equal.
type Element struct {
	doc *Document
	idx int
}

func (e Element) node() *node { return &e.doc.nodes[e.idx] }

// OwnerDocument returns the document containing e.
func (e Element) OwnerDocument() *Document { return e.doc }

// TagName returns the local name of the element, such as "rect".
func (e Element) TagName() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.node().tag
}

// Kind returns the type of the element.
func (e Element) Kind() Kind {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.node().kind
}

func (e Element) String() string {
	if e.doc == nil {
		return "<Element nil>"
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	n := e.node()
	if id, ok := n.attrs["id"]; ok {
		return fmt.Sprintf("<Element %s id=%q>", n.tag, id)
	}
	return fmt.Sprintf("<Element %s>", n.tag)
}

// HasAttribute returns true if the attribute is specified on e.
func (e Element) HasAttribute(name string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	_, ok := e.node().attrs[name]
	return ok
}

// GetAttribute returns the value of the attribute, as written
// in the markup or set by SetAttribute.
func (e Element) GetAttribute(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	v, ok := e.node().attrs[name]
	return v, ok
}

// AttributeNames returns the names of the attributes
// specified on e, in insertion order.
func (e Element) AttributeNames() []string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return append([]string(nil), e.node().order...)
}

// SetAttribute sets the value of an attribute and invalidates the
// values derived from it, for e and, when the attribute may be
// inherited or matched by selectors, for its descendants.
// Setting the current value again is a no-op.
//
// Invalid values are not rejected here: they are reported by
// Document.Diagnostics once resolved, and the initial or inherited
// value is used instead.
func (e Element) SetAttribute(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	n := e.node()
	old, had := n.attrs[name]
	if had && old == value {
		return
	}
	if !had {
		n.order = append(n.order, name)
	}
	n.attrs[name] = value
	if name == "id" {
		if had {
			e.doc.unregisterID(old, e.idx)
		}
		e.doc.ids[value] = e.idx
	}
	e.doc.invalidateAttribute(e.idx, name)
}

// RemoveAttribute removes an attribute, if present.
func (e Element) RemoveAttribute(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	n := e.node()
	old, had := n.attrs[name]
	if !had {
		return
	}
	delete(n.attrs, name)
	for i, a := range n.order {
		if a == name {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	if name == "id" {
		e.doc.unregisterID(old, e.idx)
	}
	e.doc.invalidateAttribute(e.idx, name)
}

// ParentElement returns the parent of e,
// or false for the root element.
func (e Element) ParentElement() (Element, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	p := e.node().parent
	if p == -1 {
		return Element{}, false
	}
	return Element{doc: e.doc, idx: p}, true
}

// Children returns the child elements of e, in document order.
func (e Element) Children() []Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	children := e.node().children
	out := make([]Element, len(children))
	for i, c := range children {
		out[i] = Element{doc: e.doc, idx: c}
	}
	return out
}

// GetLocalMatrix returns the transform of e, mapping its user space
// to the one of its parent. An invalid transform attribute resolves
// to the identity.
func (e Element) GetLocalMatrix() svgpath.Matrix2D {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.localMatrix(e.idx)
}

// GetGlobalMatrix returns the accumulated transform of e, mapping its
// user space to the user space of the document (before the viewport
// transform of the root is applied).
func (e Element) GetGlobalMatrix() svgpath.Matrix2D {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.globalMatrix(e.idx)
}

// GetBoundingBox returns the extent of the geometry of e, in its own
// user space (that is, ignoring its transform attribute). The box of
// a container is the union of the boxes of its children, mapped
// through their transform. Stroking is not taken into account.
// Elements without geometry have an empty box.
func (e Element) GetBoundingBox() svgpath.Rect {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.boundingBox(e.idx)
}

// GetGlobalBoundingBox returns the bounding box of e mapped
// through its accumulated transform.
func (e Element) GetGlobalBoundingBox() svgpath.Rect {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.globalBoundingBox(e.idx)
}

// Style returns the resolved style of e, after the cascade
// and the inheritance of properties.
func (e Element) Style() svgstyle.Style {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return *e.doc.style(e.idx)
}

// The following methods expect the document lock to be held.

// unregisterID is called when the node idx loses the given id.
// Another element with the same id, if any, takes over.
func (d *Document) unregisterID(id string, idx int) {
	if d.ids[id] != idx {
		return
	}
	delete(d.ids, id)
	for i := len(d.nodes) - 1; i >= 0; i-- {
		if v, ok := d.nodes[i].attrs["id"]; ok && v == id {
			d.ids[id] = i
			return
		}
	}
}

// invalidateAttribute clears the cached values depending
// on the attribute name of the node idx
func (d *Document) invalidateAttribute(idx int, name string) {
	n := &d.nodes[idx]
	switch {
	case name == "transform":
		n.cache.hasMatrix = false
		n.cache.matrixErr = nil
	case n.kind == KindRoot && isGeometryAttribute(KindRoot, name):
		// percentages are resolved against the viewport
		d.invalidateAll()
	case isGeometryAttribute(n.kind, name):
		n.cache.hasPath = false
		n.cache.pathErrs = nil
	default: // id, class, style, presentation attributes
		d.invalidateStyles(idx)
	}
}

// invalidateStyles clears the resolved style of idx
// and all its descendants
func (d *Document) invalidateStyles(idx int) {
	stack := []int{idx}
	for len(stack) != 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := &d.nodes[i].cache
		c.hasStyle = false
		c.styleErrs = nil
		stack = append(stack, d.nodes[i].children...)
	}
}

func (d *Document) invalidateAll() {
	for i := range d.nodes {
		d.nodes[i].cache = nodeCache{}
	}
}

// ancestors returns idx followed by its ancestors, up to the root.
// It panics if the parent chain is cyclic.
func (d *Document) ancestors(idx int) []int {
	var out []int
	for i := idx; i != -1; i = d.nodes[i].parent {
		if len(out) > len(d.nodes) {
			panic(fmt.Sprintf("svgdoc: cyclic parent chain from element %d <%s>", idx, d.nodes[idx].tag))
		}
		out = append(out, i)
	}
	return out
}

// styleNode exposes a node to the selector matching
type styleNode struct {
	d   *Document
	idx int
}

func (s styleNode) TagName() string { return s.d.nodes[s.idx].tag }

func (s styleNode) Attr(name string) (string, bool) {
	v, ok := s.d.nodes[s.idx].attrs[name]
	return v, ok
}

func (s styleNode) ParentNode() svgstyle.Node {
	p := s.d.nodes[s.idx].parent
	if p == -1 {
		return nil
	}
	return styleNode{s.d, p}
}

// style returns the cached resolved style of idx,
// resolving its ancestors first if needed
func (d *Document) style(idx int) *svgstyle.Style {
	chain := d.ancestors(idx)
	// find the first ancestor with a valid cache
	start := len(chain)
	for i, a := range chain {
		if d.nodes[a].cache.hasStyle {
			start = i
			break
		}
	}
	vp := d.viewport()
	for i := start - 1; i >= 0; i-- {
		a := chain[i]
		var parent *svgstyle.Style
		if p := d.nodes[a].parent; p != -1 {
			parent = &d.nodes[p].cache.style
		}
		d.resolveStyle(a, parent, vp)
	}
	return &d.nodes[idx].cache.style
}

func (d *Document) resolveStyle(idx int, parent *svgstyle.Style, vp svgstyle.Viewport) {
	n := &d.nodes[idx]
	var errs []error
	presentation := make(map[string]string)
	for name, v := range n.attrs {
		if svgstyle.IsProperty(name) {
			presentation[name] = v
		}
	}
	var inline []svgstyle.Declaration
	if s, ok := n.attrs["style"]; ok {
		var err error
		inline, err = svgstyle.ParseDeclarations(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("<%s> attribute style: %w", n.tag, err))
		}
	}
	values := svgstyle.Cascade(d.sheets(), styleNode{d, idx}, presentation, inline)
	style, styleErrs := svgstyle.Resolve(parent, values, vp)
	for _, err := range styleErrs {
		errs = append(errs, fmt.Errorf("<%s>: %w", n.tag, err))
	}
	if n.kind.IsShape() && style.FillRule == svgstyle.EvenOdd {
		// the rasterizer only implements the nonzero rule
		errs = append(errs, svgerr.New(svgerr.CodeUnsupportedFeature, "<%s>: fill-rule evenodd is rendered as nonzero", n.tag))
	}
	for _, err := range errs {
		d.logDiagnostic(err)
	}
	n.cache.style, n.cache.styleErrs, n.cache.hasStyle = style, errs, true
}

func (d *Document) localMatrix(idx int) svgpath.Matrix2D {
	n := &d.nodes[idx]
	if n.cache.hasMatrix {
		return n.cache.matrix
	}
	n.cache.matrix, n.cache.matrixErr = svgpath.Identity, nil
	if v, ok := n.attrs["transform"]; ok {
		m, err := svgpath.ParseTransform(v)
		if err != nil {
			err = fmt.Errorf("<%s> attribute transform: %w", n.tag, err)
			d.logDiagnostic(err)
		}
		n.cache.matrix, n.cache.matrixErr = m, err
	}
	n.cache.hasMatrix = true
	return n.cache.matrix
}

// globalMatrix returns the product of the local matrices,
// from the root to idx
func (d *Document) globalMatrix(idx int) svgpath.Matrix2D {
	chain := d.ancestors(idx)
	m := svgpath.Identity
	for i := len(chain) - 1; i >= 0; i-- {
		m = m.Mult(d.localMatrix(chain[i]))
	}
	return m
}

// path returns the cached geometry of idx, and its bounding box
func (d *Document) path(idx int) (svgpath.Path, svgpath.Rect) {
	n := &d.nodes[idx]
	if n.cache.hasPath {
		return n.cache.path, n.cache.bbox
	}
	n.cache.path, n.cache.bbox, n.cache.pathErrs = nil, svgpath.EmptyRect, nil
	if fn := shapeFuncs[n.kind]; fn != nil {
		ctx := geometryContext{n: n, vp: d.viewport(), maxSegments: d.opts.maxPathSegments}
		n.cache.path = fn(&ctx)
		n.cache.bbox = n.cache.path.Bounds()
		n.cache.pathErrs = ctx.errs
		for _, err := range ctx.errs {
			d.logDiagnostic(err)
		}
	}
	n.cache.hasPath = true
	return n.cache.path, n.cache.bbox
}

func (d *Document) boundingBox(idx int) svgpath.Rect {
	d.ancestors(idx) // cycle check
	return d.boundingBoxRec(idx)
}

func (d *Document) boundingBoxRec(idx int) svgpath.Rect {
	n := &d.nodes[idx]
	if n.kind.IsShape() {
		_, bbox := d.path(idx)
		return bbox
	}
	out := svgpath.EmptyRect
	if !n.kind.IsContainer() {
		return out
	}
	for _, c := range n.children {
		child := d.boundingBoxRec(c)
		out = out.Union(child.Transform(d.localMatrix(c)))
	}
	return out
}

func (d *Document) globalBoundingBox(idx int) svgpath.Rect {
	return d.boundingBox(idx).Transform(d.globalMatrix(idx))
}
