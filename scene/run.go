package scene

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

// Run applies cfg to the window and the scene, then runs the game loop
// until the window closes. A scene built without WithSize takes its size
// from cfg.
func Run(s *Scene, cfg RunConfig) error {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.ClearColor != "" {
		c, err := ParseHexColor(cfg.ClearColor)
		if err != nil {
			return err
		}
		s.ClearColor = c
	}
	if cfg.Debug {
		s.SetDebugMode(true)
	}
	if cfg.FixedDelta > 0 {
		s.fixedDelta = cfg.FixedDelta
	}
	if cfg.ShowFPS {
		s.showFPS = true
	}
	if s.width == 0 && s.height == 0 {
		s.width, s.height = float64(cfg.Width), float64(cfg.Height)
		s.resizeRoot()
	}
	if cfg.Script != "" {
		data, err := os.ReadFile(cfg.Script)
		if err != nil {
			return fmt.Errorf("load test script: %w", err)
		}
		runner, err := LoadTestScript(data)
		if err != nil {
			return err
		}
		s.SetTestRunner(runner)
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	return ebiten.RunGame(s)
}
