package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// RunConfig holds window and loop settings for Run.
type RunConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	// TPS is the logic tick rate. Zero keeps Ebitengine's default of 60.
	TPS   int  `toml:"tps" yaml:"tps"`
	Debug bool `toml:"debug" yaml:"debug"`
	// ClearColor is "#rrggbb" or "#rrggbbaa". Empty leaves the screen
	// uncleared.
	ClearColor string `toml:"clear_color" yaml:"clear_color"`
	// FixedDelta, when positive, is the seconds every tick advances by.
	FixedDelta float64 `toml:"fixed_delta" yaml:"fixed_delta"`
	ShowFPS    bool    `toml:"show_fps" yaml:"show_fps"`
	// Script is an optional test script path run against the scene.
	Script string `toml:"script" yaml:"script"`
}

const (
	defaultTitle  = "sapling"
	defaultWidth  = 640
	defaultHeight = 480
)

// LoadRunConfig reads a RunConfig from a .toml, .yaml or .yml file, fills
// defaults and validates it.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var cfg RunConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return RunConfig{}, fmt.Errorf("config load failed (%s): unsupported extension %q", path, ext)
	}
	if err != nil {
		return RunConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func (c *RunConfig) applyDefaults() {
	if strings.TrimSpace(c.Title) == "" {
		c.Title = defaultTitle
	}
	if c.Width == 0 {
		c.Width = defaultWidth
	}
	if c.Height == 0 {
		c.Height = defaultHeight
	}
}

// Validate reports the first invalid field.
func (c RunConfig) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("window size %dx%d is negative", c.Width, c.Height)
	}
	if c.TPS < 0 {
		return fmt.Errorf("tps %d is negative", c.TPS)
	}
	if c.FixedDelta < 0 {
		return fmt.Errorf("fixed_delta %g is negative", c.FixedDelta)
	}
	if c.ClearColor != "" {
		if _, err := ParseHexColor(c.ClearColor); err != nil {
			return err
		}
	}
	return nil
}

var errHexColor = errors.New("color must be #rrggbb or #rrggbbaa")

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (Color, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return Color{}, fmt.Errorf("%q: %w", s, errHexColor)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%q: %w", s, errHexColor)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
