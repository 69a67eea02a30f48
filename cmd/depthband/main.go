package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"depth-band-renderer/internal/batch"
	"depth-band-renderer/internal/config"
	"depth-band-renderer/internal/encode"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	in := flag.String("in", "", "Depth file (.dbf/.png/.tiff) or directory of depth files")
	out := flag.String("out", "", "Output file (single input) or directory (default: <in>/renders)")
	confDir := flag.String("conf", "", "Directory of confidence maps named like the depth files")
	step := flag.Float64("step", 0, "Band width in metres (default: 0.05)")
	minRange := flag.Float64("min", 0.10, "Near clamp in metres")
	maxRange := flag.Float64("max", 0, "Far clamp in metres (default: 3.0)")
	contours := flag.Bool("contours", false, "Draw contour lines between bands")
	intensity := flag.Float64("contour-intensity", 0.8, "Contour brightness 0..1 in gray mode")
	color := flag.Bool("color", false, "Hue-mapped output instead of grayscale")
	minConf := flag.Int("min-confidence", 0, "Discard samples below this confidence (ARKit: 1=medium, 2=high)")
	autoRange := flag.Bool("auto-range", false, "Derive min/max from each frame's 2nd/98th percentiles")
	format := flag.String("format", "", "Output format for directories: webp, png, tiff (default: webp)")
	scale := flag.Int("scale", 0, "Integer upscale factor for output (default: 1)")
	smooth := flag.Bool("smooth", false, "Use CatmullRom instead of nearest-neighbour upscaling")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	streamMode := flag.Bool("stream", false, "Replay the directory as a live feed through the throttled renderer")
	fps := flag.Int("fps", 15, "Target render rate in -stream mode")
	sourceFPS := flag.Int("source-fps", 60, "Rate at which frames are fed in -stream mode")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	singleFile := false
	if *in != "" {
		if info, err := os.Stat(*in); err == nil && !info.IsDir() {
			singleFile = true
		}
	}

	flags := config.Flags{
		ConfidenceDir:  *confDir,
		StepMeters:     *step,
		MaxRangeMeters: *maxRange,
		Contours:       *contours,
		Color:          *color,
		AutoRange:      *autoRange,
		MinConfidence:  *minConf,
		Format:         *format,
		Scale:          *scale,
		Workers:        *workers,
	}
	// 0 is a valid near clamp and intensity, so only flags given on the
	// command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min":
			flags.MinRangeMeters = minRange
		case "contour-intensity":
			flags.ContourIntensity = intensity
		}
	})

	var jobs []batch.Job
	if singleFile {
		// -out names the output file; its extension picks the format
		outPath := *out
		if outPath == "" {
			outPath = trimExt(*in) + ".webp"
		}
		f, err := encode.FormatFor(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		flags.InputDir = filepath.Dir(*in)
		flags.OutputDir = filepath.Dir(outPath)
		flags.Format = string(f)
		jobs = []batch.Job{{Source: *in, Name: trimExt(filepath.Base(outPath)), Dest: outPath}}
	} else {
		flags.InputDir = *in
		flags.OutputDir = *out
	}

	// CLI flags override config file
	cfg.Resolve(flags)
	cfg.Smooth = cfg.Smooth || *smooth

	if cfg.InputDir == "" {
		fmt.Fprintln(os.Stderr, "Error: no input. Use -in flag or config.json.")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !singleFile {
		var err error
		jobs, err = batch.Discover(cfg.InputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if len(jobs) == 0 {
		fmt.Println("No depth frames to render.")
		os.Exit(0)
	}

	batchCfg := batch.Config{
		OutputDir:     cfg.OutputDir,
		ConfidenceDir: cfg.ConfidenceDir,
		Band:          cfg.Band(),
		AutoRange:     cfg.AutoRange,
		Format:        encode.Format(cfg.Format),
		Scale:         cfg.Scale,
		Smooth:        cfg.Smooth,
		Workers:       cfg.Workers,
		Logger:        log,
	}

	if *streamMode {
		if err := replay(batchCfg, jobs, *sourceFPS, *fps, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Print summary
	b := batchCfg.Band
	fmt.Printf("Depth band renderer → %s\n", cfg.Format)
	fmt.Printf("Frames: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Bands: %.3f m over [%.2f, %.2f] m, mode=%s, contours=%v\n",
		b.StepMeters, b.MinRangeMeters, b.MaxRangeMeters, modeName(b.UseColorMode), b.ShowContours)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(batchCfg, jobs)
	elapsed := time.Since(start)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(20, len(errors))
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	if !singleFile {
		manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else if err := batch.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func modeName(color bool) string {
	if color {
		return "color"
	}
	return "gray"
}

func trimExt(p string) string {
	return p[:len(p)-len(filepath.Ext(p))]
}
