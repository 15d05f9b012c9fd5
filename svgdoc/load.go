package svgdoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/benoitkugler/svgdoc/svgerr"
	"github.com/benoitkugler/svgdoc/svgstyle"
	"golang.org/x/net/html/charset"
)

// Load parses an SVG document from its markup.
// Malformed markup is reported as a *svgerr.ParseError, with the
// position of the problem. Unsupported elements and attributes are
// skipped and recorded as diagnostics, unless StrictErrorMode is used.
func Load(data []byte, opts ...Option) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, svgerr.New(svgerr.CodeInvalidArgument, "empty svg data")
	}
	return LoadReader(bytes.NewReader(data), opts...)
}

// LoadFile reads and parses the named file.
func LoadFile(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data, opts...)
}

// LoadReader parses an SVG document from the given stream.
func LoadReader(stream io.Reader, opts ...Option) (*Document, error) {
	doc := &Document{ids: make(map[string]int), opts: newOptions(opts)}
	cursor := &docCursor{doc: doc, decoder: xml.NewDecoder(stream)}
	cursor.decoder.CharsetReader = charset.NewReaderLabel
	if err := cursor.run(); err != nil {
		return nil, err
	}
	return doc, nil
}

// docCursor is used while parsing SVG files
type docCursor struct {
	doc     *Document
	decoder *xml.Decoder
	stack   []int // open elements
	seenTag bool
	closed  bool // the root has been closed
}

func (c *docCursor) position() svgerr.Position {
	line, col := c.decoder.InputPos()
	return svgerr.Position{Line: line, Column: col}
}

func (c *docCursor) malformed(msg string, cause error) error {
	pos := c.position()
	var syntax *xml.SyntaxError
	if errors.As(cause, &syntax) {
		pos = svgerr.Position{Line: syntax.Line}
		msg = syntax.Msg
		cause = nil
	}
	return &svgerr.ParseError{Kind: svgerr.Malformed, Pos: pos, Msg: msg, Cause: cause}
}

// unsupported records a diagnostic, or returns it in strict mode
func (c *docCursor) unsupported(kind svgerr.ParseKind, pos svgerr.Position, msg string) error {
	err := &svgerr.ParseError{Kind: kind, Pos: pos, Msg: msg}
	if c.doc.opts.errorMode == StrictErrorMode {
		return err
	}
	c.doc.addDiagnostic(err)
	return nil
}

func (c *docCursor) run() error {
	for {
		t, err := c.decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return c.malformed("invalid xml", err)
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			if err := c.readStartElement(se); err != nil {
				return err
			}
		case xml.EndElement:
			if err := c.readEndElement(); err != nil {
				return err
			}
		case xml.CharData:
			if len(c.stack) != 0 {
				n := &c.doc.nodes[c.stack[len(c.stack)-1]]
				switch n.kind {
				case KindStyle, KindTitle, KindDesc:
					n.text += string(se)
				}
			} else if !c.closed && len(bytes.TrimSpace(se)) != 0 {
				return c.malformed("text outside of the root element", nil)
			}
		}
	}
	if !c.seenTag {
		return c.malformed("no svg element found", nil)
	}
	if len(c.stack) != 0 {
		return c.malformed("unexpected EOF", nil)
	}
	return nil
}

func (c *docCursor) readStartElement(se xml.StartElement) error {
	pos := c.position()
	tag := se.Name.Local
	if !c.seenTag {
		if tag != "svg" {
			return &svgerr.ParseError{Kind: svgerr.Malformed, Pos: pos, Msg: "root element is <" + tag + ">, not <svg>"}
		}
		c.seenTag = true
	} else if c.closed {
		return &svgerr.ParseError{Kind: svgerr.Malformed, Pos: pos, Msg: "content after the root element"}
	}

	kind := tagKinds[tag]
	if len(c.stack) != 0 && kind == KindRoot {
		kind = KindUnknown // nested viewports are not supported
	}
	if kind == KindUnknown {
		if err := c.unsupported(svgerr.UnsupportedElement, pos, "element <"+tag+"> is not supported"); err != nil {
			return err
		}
		// skip the element and its content
		if err := c.decoder.Skip(); err != nil {
			return c.malformed("invalid xml", err)
		}
		return nil
	}

	if len(c.stack) >= c.doc.opts.maxDepth {
		return svgerr.New(svgerr.CodeResourceLimit, "elements nested deeper than %d at %s", c.doc.opts.maxDepth, pos)
	}

	parent := -1
	if len(c.stack) != 0 {
		parent = c.stack[len(c.stack)-1]
	}
	n := node{kind: kind, tag: tag, parent: parent, attrs: make(map[string]string, len(se.Attr)), pos: pos}
	for _, attr := range se.Attr {
		// namespace declarations and namespaced attributes (xlink:href, xml:space)
		if attr.Name.Space != "" || attr.Name.Local == "xmlns" {
			continue
		}
		name := attr.Name.Local
		if !isKnownAttribute(kind, name) {
			if err := c.unsupported(svgerr.UnsupportedAttribute, pos, "attribute "+name+" on <"+tag+"> is not supported"); err != nil {
				return err
			}
		}
		if _, dup := n.attrs[name]; !dup {
			n.order = append(n.order, name)
		}
		n.attrs[name] = attr.Value
	}

	idx := len(c.doc.nodes)
	c.doc.nodes = append(c.doc.nodes, n)
	if parent != -1 {
		p := &c.doc.nodes[parent]
		p.children = append(p.children, idx)
	}
	if id, ok := n.attrs["id"]; ok {
		c.doc.ids[id] = idx // last registration wins
	}
	c.stack = append(c.stack, idx)
	return nil
}

func (c *docCursor) readEndElement() error {
	if len(c.stack) == 0 {
		return c.malformed("unexpected end element", nil)
	}
	idx := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	if len(c.stack) == 0 {
		c.closed = true
	}

	n := &c.doc.nodes[idx]
	switch n.kind {
	case KindTitle:
		c.doc.titles = append(c.doc.titles, n.text)
	case KindDesc:
		c.doc.descriptions = append(c.doc.descriptions, n.text)
	case KindStyle:
		if t, ok := n.attrs["type"]; ok && t != "" && !strings.EqualFold(t, "text/css") {
			return c.unsupported(svgerr.UnsupportedElement, n.pos, "style of type "+t+" is not supported")
		}
		sheet, diags, err := svgstyle.ParseStyleSheet(n.text)
		if err != nil {
			// a broken sheet does not prevent rendering
			c.doc.addDiagnostic(err)
			return nil
		}
		for _, diag := range diags {
			c.doc.addDiagnostic(diag)
		}
		c.doc.docSheets = append(c.doc.docSheets, sheet)
	}
	return nil
}
