package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgdoc/svgdoc"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.svg>",
		Short: "Print the size, metadata and diagnostics of an SVG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := svgdoc.LoadFile(args[0])
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("loaded document", "file", args[0])
			printInfo(cmd.OutOrStdout(), doc)
			return nil
		},
	}
}

func printInfo(w io.Writer, doc *svgdoc.Document) {
	fmt.Fprintln(w, doc)
	for _, title := range doc.Titles() {
		fmt.Fprintf(w, "title: %s\n", title)
	}
	for _, desc := range doc.Descriptions() {
		fmt.Fprintf(w, "description: %s\n", desc)
	}
	// resolve the geometry, so that invalid attributes are reported
	box := doc.DocumentElement().GetBoundingBox()
	fmt.Fprintf(w, "content bounding box: %v\n", box)

	diags := doc.Diagnostics()
	fmt.Fprintf(w, "%d diagnostic(s)\n", len(diags))
	for _, err := range diags {
		fmt.Fprintf(w, "  %v\n", err)
	}
}
