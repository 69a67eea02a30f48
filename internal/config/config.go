package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"depth-band-renderer/internal/band"
	"depth-band-renderer/internal/encode"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	InputDir      string `json:"input_dir"`
	ConfidenceDir string `json:"confidence_dir"`
	OutputDir     string `json:"output_dir"`

	// Band settings
	// MinRangeMeters and ContourIntensity accept 0, so nil marks "unset".
	StepMeters       float64  `json:"step_m"`
	MinRangeMeters   *float64 `json:"min_range_m"`
	MaxRangeMeters   float64  `json:"max_range_m"`
	ShowContours     bool     `json:"show_contours"`
	ContourIntensity *float64 `json:"contour_intensity"`
	ColorMode        bool     `json:"color_mode"`
	MinConfidence    uint8    `json:"min_confidence"`
	AutoRange        bool     `json:"auto_range"`

	// Output settings
	Format  string `json:"format"` // webp, png or tiff
	Scale   int    `json:"scale"`
	Smooth  bool   `json:"smooth"`
	Workers int    `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values mean "not set"; for the pointer fields nil does.
type Flags struct {
	InputDir         string
	ConfidenceDir    string
	OutputDir        string
	StepMeters       float64
	MinRangeMeters   *float64
	MaxRangeMeters   float64
	ContourIntensity *float64
	Contours         bool
	Color            bool
	AutoRange        bool
	MinConfidence    int
	Format           string
	Scale            int
	Workers          int
}

// Resolve applies flag overrides and fills remaining fields with defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.ConfidenceDir != "" {
		c.ConfidenceDir = flags.ConfidenceDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.StepMeters > 0 {
		c.StepMeters = flags.StepMeters
	}
	if flags.MinRangeMeters != nil {
		c.MinRangeMeters = flags.MinRangeMeters
	}
	if flags.MaxRangeMeters > 0 {
		c.MaxRangeMeters = flags.MaxRangeMeters
	}
	if flags.ContourIntensity != nil {
		c.ContourIntensity = flags.ContourIntensity
	}
	if flags.MinConfidence > 0 {
		c.MinConfidence = uint8(min(flags.MinConfidence, 255))
	}
	c.ShowContours = c.ShowContours || flags.Contours
	c.ColorMode = c.ColorMode || flags.Color
	c.AutoRange = c.AutoRange || flags.AutoRange
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Output next to the input unless told otherwise
	if c.OutputDir == "" && c.InputDir != "" {
		c.OutputDir = filepath.Join(c.InputDir, "renders")
	}

	// Defaults for render settings
	def := band.DefaultConfig()
	if c.StepMeters <= 0 {
		c.StepMeters = def.StepMeters
	}
	if c.MinRangeMeters == nil {
		c.MinRangeMeters = &def.MinRangeMeters
	}
	if c.MaxRangeMeters <= 0 {
		c.MaxRangeMeters = def.MaxRangeMeters
	}
	if c.ContourIntensity == nil {
		c.ContourIntensity = &def.ContourIntensity
	}
	if c.Format == "" {
		c.Format = string(encode.WebP)
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports settings that cannot produce output.
func (c *Config) Validate() error {
	if _, err := encode.FormatFor("x." + c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if b := c.Band(); !b.Valid() {
		return fmt.Errorf("config: need step > 0 and min range < max range (got step=%g min=%g max=%g)",
			b.StepMeters, b.MinRangeMeters, b.MaxRangeMeters)
	}
	return nil
}

// Band returns the renderer settings. Unset optional fields take the
// renderer defaults.
func (c *Config) Band() band.Config {
	b := band.DefaultConfig()
	b.StepMeters = c.StepMeters
	b.MaxRangeMeters = c.MaxRangeMeters
	b.ShowContours = c.ShowContours
	b.UseColorMode = c.ColorMode
	b.MinConfidence = c.MinConfidence
	if c.MinRangeMeters != nil {
		b.MinRangeMeters = *c.MinRangeMeters
	}
	if c.ContourIntensity != nil {
		b.ContourIntensity = *c.ContourIntensity
	}
	return b
}
