package svgerr

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("rendering: %w", New(CodeInvalidArgument, "negative width %d", -3))
	assert.True(t, Is(err, CodeInvalidArgument))
	assert.False(t, Is(err, CodeParse))
	assert.Equal(t, "rendering: INVALID_ARGUMENT: negative width -3", err.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(CodeUnsupportedOperation, io.EOF, "save")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, CodeUnsupportedOperation, GetCode(err))
}

func TestParseErrorCodes(t *testing.T) {
	malformed := &ParseError{Kind: Malformed, Pos: Position{Line: 3, Column: 7}, Msg: "unexpected EOF"}
	assert.True(t, Is(malformed, CodeParse))
	assert.Equal(t, "svg parse (Malformed) at 3:7: unexpected EOF", malformed.Error())

	skipped := fmt.Errorf("load: %w", &ParseError{Kind: UnsupportedElement, Msg: "text"})
	assert.True(t, Is(skipped, CodeUnsupportedFeature))
	assert.Equal(t, Code(""), GetCode(io.EOF))
}
