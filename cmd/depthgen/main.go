package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"depth-band-renderer/internal/depth"
)

// Writes synthetic .dbf frames for trying the renderer without a device.
func main() {
	outDir := flag.String("out", "frames", "Output directory")
	width := flag.Int("w", 256, "Frame width")
	height := flag.Int("h", 192, "Frame height")
	pad := flag.Int("pad", 64, "Row alignment in bytes (stride is rounded up to a multiple)")
	frames := flag.Int("n", 30, "Number of sphere frames (the sphere moves away each frame)")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stride := *width * depth.BytesPerSample
	if *pad > 0 && stride%*pad != 0 {
		stride += *pad - stride%*pad
	}

	write := func(name string, fn func(x, y int) float32) {
		samples := make([]float32, *width**height)
		for y := 0; y < *height; y++ {
			for x := 0; x < *width; x++ {
				samples[y**width+x] = fn(x, y)
			}
		}
		f := depth.NewPaddedFrame(*width, *height, stride, samples)
		path := filepath.Join(*outDir, name+".dbf")
		if err := depth.Write(path, f); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK  %s  (%dx%d, stride %d)\n", path, *width, *height, stride)
	}

	w, h := float64(*width), float64(*height)

	// Horizontal ramp 0.1 → 3.0 m
	write("ramp", func(x, y int) float32 {
		return float32(0.1 + 2.9*float64(x)/(w-1))
	})

	// Stairs with a NaN hole in the middle
	write("steps", func(x, y int) float32 {
		cx, cy := float64(x)-w/2, float64(y)-h/2
		if cx*cx+cy*cy < 100 {
			return float32(math.NaN())
		}
		return float32(0.5 + 0.25*math.Floor(float64(x)/(w/8)))
	})

	// Sphere in front of a wall
	for i := 0; i < *frames; i++ {
		dist := 0.6 + 0.05*float64(i)
		r := h / 3
		write(fmt.Sprintf("sphere_%03d", i), func(x, y int) float32 {
			dx, dy := float64(x)-w/2, float64(y)-h/2
			d2 := dx*dx + dy*dy
			if d2 >= r*r {
				return 2.5
			}
			// Scene units: r pixels ≈ 0.3 m
			z := math.Sqrt(r*r-d2) / r * 0.3
			return float32(dist - z)
		})
	}
}
