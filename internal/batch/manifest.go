package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one rendered frame in the output manifest.
type ManifestEntry struct {
	Source     string  `json:"source"`
	Image      string  `json:"image"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Mode       string  `json:"mode"`
	MinRangeM  float64 `json:"min_range_m"`
	MaxRangeM  float64 `json:"max_range_m"`
	ValidRatio float64 `json:"valid_ratio"`
}

// WriteManifest writes manifest.json describing successful results.
// Image paths are relative to the manifest's directory.
func WriteManifest(path string, results []Result) error {
	base := filepath.Dir(path)
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		img := r.Output
		if rel, err := filepath.Rel(base, r.Output); err == nil {
			img = filepath.ToSlash(rel)
		}
		entries = append(entries, ManifestEntry{
			Source:     filepath.Base(r.Source),
			Image:      img,
			Width:      r.Width,
			Height:     r.Height,
			Mode:       r.Mode.String(),
			MinRangeM:  r.MinRange,
			MaxRangeM:  r.MaxRange,
			ValidRatio: r.Stats.ValidRatio(),
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
