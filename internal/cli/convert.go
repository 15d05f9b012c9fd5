package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgdoc/svgbitmap"
	"github.com/benoitkugler/svgdoc/svgdoc"
	"github.com/benoitkugler/svgdoc/svgraster"
)

// newConvertCmd creates the command rendering an SVG file to PNG.
// Values from the --config file are used for the flags
// which are not given explicitly.
func newConvertCmd() *cobra.Command {
	var (
		configPath string
		flags      config
	)

	cmd := &cobra.Command{
		Use:   "svg2png <file.svg>",
		Short: "Convert an SVG file to a PNG file",
		Long: `svg2png renders an SVG file to a PNG image.

By default the image has the natural size of the document. When only one of
--width and --height is given, the other one preserves the aspect ratio.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags
			if configPath != "" {
				fileCfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = mergeConfig(fileCfg, flags, cmd.Flags().Changed)
			}
			return convert(cmd.Context(), args[0], cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML file with default settings")
	cmd.Flags().IntVarP(&flags.Width, "width", "W", 0, "width of the output image (default: natural width)")
	cmd.Flags().IntVarP(&flags.Height, "height", "H", 0, "height of the output image (default: natural height)")
	cmd.Flags().StringVar(&flags.Background, "bg-color", "", "background color, as 0xRRGGBBAA or an SVG color (default: transparent)")
	cmd.Flags().StringArrayVarP(&flags.Stylesheets, "style", "s", nil, "CSS file applied to the document (repeatable)")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output file (default: the input file with a .png extension)")
	cmd.Flags().StringVarP(&flags.Element, "element", "e", "", "only render the element with this id")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "fail on unsupported elements and attributes")

	return cmd
}

// mergeConfig returns file, with the flags that have been explicitly set.
func mergeConfig(file, flags config, changed func(name string) bool) config {
	out := file
	if changed("width") {
		out.Width = flags.Width
	}
	if changed("height") {
		out.Height = flags.Height
	}
	if changed("bg-color") {
		out.Background = flags.Background
	}
	if changed("style") {
		out.Stylesheets = flags.Stylesheets
	}
	if changed("output") {
		out.Output = flags.Output
	}
	if changed("element") {
		out.Element = flags.Element
	}
	if changed("strict") {
		out.Strict = flags.Strict
	}
	return out
}

// outputPath returns the destination of the conversion of input.
func (cfg config) outputPath(input string) string {
	if cfg.Output != "" {
		return cfg.Output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
}

func (cfg config) renderOptions() (svgraster.Options, error) {
	bg, err := parseBackground(cfg.Background)
	if err != nil {
		return svgraster.Options{}, err
	}
	return svgraster.Options{Width: cfg.Width, Height: cfg.Height, Background: bg}, nil
}

func convert(ctx context.Context, input string, cfg config) error {
	logger := loggerFromContext(ctx)

	if !strings.EqualFold(filepath.Ext(input), ".svg") {
		return fmt.Errorf("input file must be an SVG file: %s", input)
	}
	opts, err := cfg.renderOptions()
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	mode := svgdoc.WarnErrorMode
	if cfg.Strict {
		mode = svgdoc.StrictErrorMode
	}
	doc, err := svgdoc.LoadFile(input, svgdoc.WithErrorMode(mode))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("SVG file %s does not exist", input)
		}
		return fmt.Errorf("loading %s: %w", input, err)
	}
	logger.Debug("loaded document", "file", input, "document", doc)

	for _, path := range cfg.Stylesheets {
		css, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := doc.ApplyStyleSheet(string(css)); err != nil {
			return fmt.Errorf("applying %s: %w", path, err)
		}
		logger.Debug("applied stylesheet", "file", path)
	}

	bitmap, err := render(doc, cfg.Element, opts)
	if err != nil {
		return err
	}

	output := cfg.outputPath(input)
	if err := bitmap.WriteToPNG(output); err != nil {
		return err
	}
	prog.done("converted", "input", input, "output", output, "bitmap", bitmap)
	return nil
}

func render(doc *svgdoc.Document, id string, opts svgraster.Options) (*svgbitmap.Bitmap, error) {
	if id == "" {
		return svgraster.Render(doc, opts)
	}
	el, ok := doc.GetElementByID(id)
	if !ok {
		return nil, fmt.Errorf("no element with id %q", id)
	}
	return svgraster.RenderElement(el, opts)
}
