package band

import "math"

// Config controls how depth is quantized and colorized.
// A Config is passed by value into every Render call; callers that let a
// UI change settings between frames snapshot it per frame.
type Config struct {
	StepMeters       float64 // band width
	MinRangeMeters   float64
	MaxRangeMeters   float64
	ShowContours     bool
	ContourIntensity float64 // 0..1, grayscale only
	UseColorMode     bool
	MinConfidence    uint8 // samples with lower confidence are invalid; 0 disables
}

// DefaultConfig returns the stock LiDAR settings: 5 cm bands over 0.1–3 m.
func DefaultConfig() Config {
	return Config{
		StepMeters:       0.05,
		MinRangeMeters:   0.10,
		MaxRangeMeters:   3.0,
		ContourIntensity: 0.8,
	}
}

// Valid reports whether the config can produce any visible pixel.
// Render treats an invalid config as "every sample is out of range".
func (c Config) Valid() bool {
	for _, v := range []float64{c.StepMeters, c.MinRangeMeters, c.MaxRangeMeters} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c.StepMeters > 0 && c.MinRangeMeters < c.MaxRangeMeters
}

func (c Config) contourBoost() float64 {
	k := c.ContourIntensity
	if math.IsNaN(k) || k < 0 {
		k = 0
	}
	if k > 1 {
		k = 1
	}
	return k * 255 / 2
}
