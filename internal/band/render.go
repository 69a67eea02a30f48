package band

import (
	"errors"
	"fmt"
	"math"

	"depth-band-renderer/internal/depth"
)

// ErrInvalidBuffer is returned when a frame cannot be read at all.
// Per-pixel problems (NaN, out of range) never produce an error.
var ErrInvalidBuffer = errors.New("band: invalid depth buffer")

// Sentinel marks a pixel with no usable depth.
const Sentinel int32 = -1

// Render converts one depth frame into a banded image.
// It reads only its inputs and is safe to call concurrently on
// independent frames. The caller must not mutate frame while Render runs.
func Render(frame *depth.Frame, cfg Config) (*Image, error) {
	if err := frame.Check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBuffer, err)
	}

	w, h := frame.Width, frame.Height
	mode := Gray
	if cfg.UseColorMode {
		mode = RGB
	}
	img := newImage(w, h, mode)

	// Pass 1: quantize + colorize
	usable := cfg.Valid()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			d := frame.At(x, y)
			if !usable || !depth.IsValidSample(d) || frame.ConfidenceAt(x, y) < cfg.MinConfidence {
				img.Bands[i] = Sentinel
				continue // Pix is already black
			}

			b, t := Quantize(float64(d), cfg)
			img.Bands[i] = b

			if mode == RGB {
				r, g, bl := HSLToRGB(t*240, 1, 0.5)
				p := i * 3
				img.Pix[p] = r
				img.Pix[p+1] = g
				img.Pix[p+2] = bl
			} else {
				img.Pix[i] = to8((1 - t) * 255)
			}
		}
	}

	if cfg.ShowContours {
		overlayContours(img, cfg)
	}

	return img, nil
}

// Quantize maps a valid depth sample to its band index and the
// normalized position t in [0,1] of the band's lower edge within the range.
func Quantize(d float64, cfg Config) (int32, float64) {
	lo, hi := cfg.MinRangeMeters, cfg.MaxRangeMeters
	if d < lo {
		d = lo
	}
	if d > hi {
		d = hi
	}
	b := math.Floor(d / cfg.StepMeters)
	if b < 0 {
		b = 0
	}
	t := (b*cfg.StepMeters - lo) / (hi - lo)
	return int32(b), clamp01(t)
}

// overlayContours marks interior pixels whose 4-neighbourhood contains a
// valid pixel from another band. Rows 0 and h-1 and columns 0 and w-1 are
// never marked. Band indices are not modified, so every lookup sees the
// pass-1 values.
func overlayContours(img *Image, cfg Config) {
	w, h := img.Width, img.Height
	boost := cfg.contourBoost()
	bands := img.Bands

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			b := bands[i]
			if b == Sentinel {
				continue
			}
			if !differs(b, bands[i-1]) && !differs(b, bands[i+1]) &&
				!differs(b, bands[i-w]) && !differs(b, bands[i+w]) {
				continue
			}

			if img.Mode == RGB {
				p := i * 3
				img.Pix[p], img.Pix[p+1], img.Pix[p+2] = 255, 255, 255
			} else {
				img.Pix[i] = to8(float64(img.Pix[i]) + boost)
			}
		}
	}
}

func differs(b, n int32) bool {
	return n != Sentinel && n != b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// to8 rounds and clamps v to a byte.
func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
