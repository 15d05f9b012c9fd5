package svgerr

import "fmt"

// ParseKind distinguishes markup errors.
type ParseKind uint8

const (
	Malformed ParseKind = iota
	UnsupportedElement
	UnsupportedAttribute
)

func (k ParseKind) String() string {
	switch k {
	case Malformed:
		return "Malformed"
	case UnsupportedElement:
		return "UnsupportedElement"
	case UnsupportedAttribute:
		return "UnsupportedAttribute"
	default:
		return "<unknown ParseKind>"
	}
}

// Position is a 1-based line and column in the source markup.
// The zero value means the position is unknown.
type Position struct {
	Line, Column int
}

func (p Position) String() string {
	if p.Line == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ParseError reports a problem found while reading markup.
// Malformed errors are fatal; the unsupported kinds are normally recorded as
// diagnostics and the offending node is skipped.
type ParseError struct {
	Kind  ParseKind
	Pos   Position
	Msg   string
	Cause error
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("svg parse (%s) at %s: %s", e.Kind, e.Pos, e.Msg)
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) code() Code {
	if e.Kind == Malformed {
		return CodeParse
	}
	return CodeUnsupportedFeature
}
