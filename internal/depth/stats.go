package depth

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the valid samples of a frame.
type Stats struct {
	Total  int
	Valid  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	P02    float64 // 2nd percentile
	P98    float64 // 98th percentile
}

// ComputeStats scans a readable frame. Percentiles use the empirical CDF.
func ComputeStats(f *Frame) Stats {
	s := Stats{Total: f.Width * f.Height}

	vals := make([]float64, 0, s.Total)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			d := f.At(x, y)
			if IsValidSample(d) {
				vals = append(vals, float64(d))
			}
		}
	}
	s.Valid = len(vals)
	if s.Valid == 0 {
		return s
	}

	sort.Float64s(vals)
	s.Min = floats.Min(vals)
	s.Max = floats.Max(vals)
	s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	if s.Valid == 1 {
		s.StdDev = 0
	}
	s.P02 = stat.Quantile(0.02, stat.Empirical, vals, nil)
	s.P98 = stat.Quantile(0.98, stat.Empirical, vals, nil)
	return s
}

// ValidRatio returns the fraction of samples that carry depth.
func (s Stats) ValidRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Valid) / float64(s.Total)
}

// AutoRange suggests a display range that ignores the outer 2% of samples
// on each side. ok is false when the frame has too little valid depth.
func (s Stats) AutoRange() (lo, hi float64, ok bool) {
	if s.Valid < 2 || s.P98 <= s.P02 {
		return 0, 0, false
	}
	return s.P02, s.P98, true
}
