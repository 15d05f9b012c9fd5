package cli

import (
	"context"
	"io"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgdoc/svgdoc"
)

var version = "dev"

// SetVersion sets the version displayed by --version.
func SetVersion(v string) { version = v }

// Execute runs the svg2png command with the given arguments.
// Regular output goes to stdout, logs go to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	root := newConvertCmd()
	root.Version = version
	root.SilenceUsage = true
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := charmlog.InfoLevel
		if verbose {
			level = charmlog.DebugLevel
		}
		logger := newLogger(stderr, level)
		svgdoc.SetLogger(logger)
		cmd.SetContext(withLogger(cmd.Context(), logger))
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newInfoCmd())
	return root
}
