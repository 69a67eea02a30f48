package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"depth-band-renderer/internal/band"
	"depth-band-renderer/internal/depth"
)

func main() {
	step := flag.Float64("step", 0.05, "Band width in metres for the histogram")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: depthinspect [-step m] frame.dbf ...")
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		if err := inspect(path, *step); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func inspect(path string, step float64) error {
	f, err := depth.Load(path)
	if err != nil {
		return err
	}
	if err := f.Check(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	s := depth.ComputeStats(f)
	fmt.Printf("%s\n", path)
	fmt.Printf("  Size: %dx%d, stride %d bytes (%d padding/row)\n",
		f.Width, f.Height, f.Stride, f.Stride-f.Width*depth.BytesPerSample)
	fmt.Printf("  Valid: %d/%d (%.1f%%)\n", s.Valid, s.Total, s.ValidRatio()*100)
	if s.Valid == 0 {
		return nil
	}
	fmt.Printf("  Depth: min %.3f  max %.3f  mean %.3f  sd %.3f m\n", s.Min, s.Max, s.Mean, s.StdDev)
	if lo, hi, ok := s.AutoRange(); ok {
		fmt.Printf("  Auto range: [%.3f, %.3f] m\n", lo, hi)
	}

	cfg := band.DefaultConfig()
	cfg.StepMeters = step
	img, err := band.Render(f, cfg)
	if err != nil {
		return err
	}
	hist := map[int32]int{}
	for _, b := range img.Bands {
		if b != band.Sentinel {
			hist[b]++
		}
	}
	keys := make([]int32, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	fmt.Printf("  Bands (%.3f m): %d distinct\n", step, len(keys))
	for _, k := range keys {
		lo := float64(k) * step
		fmt.Printf("    %4d  [%.2f, %.2f)  %d px\n", k, lo, lo+step, hist[k])
	}
	return nil
}
