package ebitenview

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// RunConfig configures Run. It can be loaded from a TOML file with
// LoadRunConfig; zero fields fall back to DefaultRunConfig.
type RunConfig struct {
	Title   string `toml:"title"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	ShowFPS bool   `toml:"show_fps"`

	// ClearColor is any color parseColor understands.
	ClearColor string `toml:"clear_color"`

	// StoreDir is where the editor persists its state. Empty keeps
	// everything in memory.
	StoreDir string `toml:"store_dir"`

	// ScreenshotDir receives PNGs queued by Editor.Screenshot.
	ScreenshotDir string `toml:"screenshot_dir"`

	// RefocusSeconds is the length of the refocus animation.
	RefocusSeconds float32 `toml:"refocus_seconds"`

	// ScriptPath, when set, names a JSON test script attached at startup.
	ScriptPath string `toml:"script_path"`

	Debug bool `toml:"debug"`
}

// DefaultRunConfig returns the configuration used for missing fields.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:          "stage3d",
		Width:          1280,
		Height:         800,
		ClearColor:     "#1e1e28",
		ScreenshotDir:  "screenshots",
		RefocusSeconds: 0.4,
	}
}

// LoadRunConfig reads a TOML file over DefaultRunConfig. Unknown keys are an
// error so typos do not go unnoticed.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read run config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse run config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

// withDefaults fills zero fields from DefaultRunConfig.
func (c RunConfig) withDefaults() RunConfig {
	def := DefaultRunConfig()
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.ClearColor == "" {
		c.ClearColor = def.ClearColor
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = def.ScreenshotDir
	}
	if c.RefocusSeconds <= 0 {
		c.RefocusSeconds = def.RefocusSeconds
	}
	return c
}
