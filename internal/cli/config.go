package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/benoitkugler/svgdoc/svgstyle"
)

// config holds the conversion settings, read from a TOML file
// and overridden by the command-line flags.
type config struct {
	Width       int      `toml:"width"`       // output width in pixels, 0 for the natural width
	Height      int      `toml:"height"`      // output height in pixels, 0 for the natural height
	Background  string   `toml:"background"`  // background color
	Stylesheets []string `toml:"stylesheets"` // CSS files applied in order
	Output      string   `toml:"output"`      // output file path
	Element     string   `toml:"element"`     // id of the element to render alone
	Strict      bool     `toml:"strict"`      // fail on unsupported content
}

// loadConfig reads the TOML file at path.
func loadConfig(path string) (config, error) {
	var cfg config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return cfg, fmt.Errorf("invalid config file %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// parseBackground accepts an hexadecimal 0xRRGGBBAA value (with
// an optional 0x prefix), or any SVG color.
func parseBackground(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	hex := strings.TrimPrefix(strings.ToLower(s), "0x")
	if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
		return uint32(v), nil
	}
	c, err := svgstyle.ParseColor(s)
	if err != nil {
		return 0, fmt.Errorf("invalid background color %q", s)
	}
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A), nil
}
