package svgstyle

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/svgdoc/svgerr"
)

// Node is the view of a document element needed to match selectors.
type Node interface {
	// TagName returns the local name of the element.
	TagName() string
	// Attr returns the value of the given attribute, if present.
	Attr(name string) (string, bool)
	// ParentNode returns the parent element, or nil for the root.
	ParentNode() Node
}

// Specificity ranks selectors as [ids, classes, types].
type Specificity [3]int

// Less compares specificities lexicographically.
func (s Specificity) Less(o Specificity) bool {
	for i := range s {
		if s[i] != o[i] {
			return s[i] < o[i]
		}
	}
	return false
}

// compound is a sequence of simple selectors with no combinator,
// like rect.sky#main
type compound struct {
	tag     string // empty or "*" for any
	id      string
	classes []string
}

func (c compound) matches(n Node) bool {
	if c.tag != "" && c.tag != "*" && c.tag != n.TagName() {
		return false
	}
	if c.id != "" {
		if id, _ := n.Attr("id"); id != c.id {
			return false
		}
	}
	if len(c.classes) != 0 {
		class, _ := n.Attr("class")
		for _, cl := range c.classes {
			if !hasToken(class, cl) {
				return false
			}
		}
	}
	return true
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if f == token {
			return true
		}
	}
	return false
}

// combinator joining two compound selectors
const (
	descendant = ' '
	child      = '>'
)

// Selector is a complex selector, made of compound selectors joined
// by descendant or child combinators.
type Selector struct {
	parts       []compound
	combinators []byte // len(parts) - 1
	text        string
}

func (s Selector) String() string { return s.text }

// Specificity returns the [ids, classes, types] counts of the selector.
func (s Selector) Specificity() Specificity {
	var out Specificity
	for _, p := range s.parts {
		if p.id != "" {
			out[0]++
		}
		out[1] += len(p.classes)
		if p.tag != "" && p.tag != "*" {
			out[2]++
		}
	}
	return out
}

// Matches reports whether the element n is selected.
func (s Selector) Matches(n Node) bool {
	return s.matchAt(len(s.parts)-1, n)
}

func (s Selector) matchAt(i int, n Node) bool {
	if !s.parts[i].matches(n) {
		return false
	}
	if i == 0 {
		return true
	}
	switch s.combinators[i-1] {
	case child:
		parent := n.ParentNode()
		return parent != nil && s.matchAt(i-1, parent)
	default:
		for anc := n.ParentNode(); anc != nil; anc = anc.ParentNode() {
			if s.matchAt(i-1, anc) {
				return true
			}
		}
		return false
	}
}

func isIdentChar(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
		c == '-' || c == '_' || c >= 0x80
}

func unsupportedSelector(s string, format string, args ...any) error {
	return svgerr.New(svgerr.CodeUnsupportedFeature, "selector %q: %s", s, fmt.Sprintf(format, args...))
}

// ParseSelector parses a single complex selector, such as
// "g.layer > rect#main". Pseudo-classes, attribute selectors
// and sibling combinators are not supported.
func ParseSelector(s string) (Selector, error) {
	text := strings.TrimSpace(s)
	out := Selector{text: text}
	var (
		current    compound
		hasCurrent bool
		pendingCmb byte
	)
	flush := func() {
		if !hasCurrent {
			return
		}
		if len(out.parts) != 0 {
			out.combinators = append(out.combinators, pendingCmb)
		}
		out.parts = append(out.parts, current)
		current, hasCurrent, pendingCmb = compound{}, false, 0
	}
	readIdent := func(i int) (string, int) {
		start := i
		for i < len(text) && isIdentChar(text[i]) {
			i++
		}
		return text[start:i], i
	}

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
			if pendingCmb == 0 && len(out.parts) != 0 {
				pendingCmb = descendant
			}
			i++
		case c == '>':
			flush()
			if len(out.parts) == 0 || pendingCmb == child {
				return Selector{}, svgerr.New(svgerr.CodeInvalidArgument, "selector %q: misplaced combinator", text)
			}
			pendingCmb = child
			i++
		case c == '*':
			if hasCurrent {
				return Selector{}, svgerr.New(svgerr.CodeInvalidArgument, "selector %q: misplaced *", text)
			}
			current.tag, hasCurrent = "*", true
			i++
		case c == '.' || c == '#':
			name, next := readIdent(i + 1)
			if name == "" {
				return Selector{}, svgerr.New(svgerr.CodeInvalidArgument, "selector %q: empty name after %c", text, c)
			}
			if c == '.' {
				current.classes = append(current.classes, name)
			} else {
				current.id = name
			}
			hasCurrent = true
			i = next
		case isIdentChar(c):
			if hasCurrent {
				return Selector{}, svgerr.New(svgerr.CodeInvalidArgument, "selector %q: misplaced type selector", text)
			}
			name, next := readIdent(i)
			current.tag, hasCurrent = name, true
			i = next
		case c == ':' || c == '[' || c == '+' || c == '~':
			return Selector{}, unsupportedSelector(text, "%q is not supported", c)
		default:
			return Selector{}, svgerr.New(svgerr.CodeInvalidArgument, "selector %q: unexpected %q", text, c)
		}
	}
	flush()
	if len(out.parts) == 0 {
		return Selector{}, svgerr.New(svgerr.CodeInvalidArgument, "empty selector")
	}
	if pendingCmb == child {
		return Selector{}, svgerr.New(svgerr.CodeInvalidArgument, "selector %q: dangling combinator", text)
	}
	return out, nil
}
