package svgdoc

import (
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var logger atomic.Pointer[log.Logger]

func init() {
	logger.Store(log.New(io.Discard))
}

// SetLogger sets the logger used to report diagnostics.
// The default logger discards everything.
// Passing nil restores the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger.Store(l)
}

// Logger returns the logger used to report diagnostics.
func Logger() *log.Logger { return logger.Load() }
