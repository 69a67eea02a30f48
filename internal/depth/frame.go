package depth

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
)

// BytesPerSample is the size of one float32 depth sample.
const BytesPerSample = 4

// Size limits for a readable frame. LiDAR buffers are a few hundred
// pixels on a side; anything past these is a corrupt header.
const (
	MaxDimension = 1 << 15
	MaxPixels    = 1 << 26
)

// Frame is one depth buffer as delivered by a LiDAR sensor.
// Samples are little-endian float32 metres. Stride is the byte distance
// between row starts and may exceed Width*4 when rows are padded.
type Frame struct {
	Width  int
	Height int
	Stride int
	Data   []byte

	// Confidence is optional per-pixel sensor confidence (ARKit uses
	// 0=low, 1=medium, 2=high). Must match Width x Height when set.
	Confidence *image.Gray
}

// NewFrame packs samples (row-major, len = w*h) into a tightly strided frame.
func NewFrame(w, h int, samples []float32) *Frame {
	f := &Frame{
		Width:  w,
		Height: h,
		Stride: w * BytesPerSample,
		Data:   make([]byte, w*h*BytesPerSample),
	}
	for i, s := range samples {
		if i >= w*h {
			break
		}
		binary.LittleEndian.PutUint32(f.Data[i*BytesPerSample:], math.Float32bits(s))
	}
	return f
}

// NewPaddedFrame is like NewFrame but pads every row to stride bytes.
func NewPaddedFrame(w, h, stride int, samples []float32) *Frame {
	f := &Frame{
		Width:  w,
		Height: h,
		Stride: stride,
		Data:   make([]byte, h*stride),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, samples[y*w+x])
		}
	}
	return f
}

// Check reports why the frame cannot be read, or nil.
func (f *Frame) Check() error {
	if f == nil || f.Data == nil {
		return errors.New("no backing storage")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("zero-sized frame %dx%d", f.Width, f.Height)
	}
	if f.Width > MaxDimension || f.Height > MaxDimension || f.Width*f.Height > MaxPixels {
		return fmt.Errorf("frame %dx%d exceeds size limit", f.Width, f.Height)
	}
	row := f.Width * BytesPerSample
	if f.Stride < row {
		return fmt.Errorf("stride %d < row size %d", f.Stride, row)
	}
	// Height*Stride must fit in int so the row offsets below cannot wrap.
	if f.Stride > math.MaxInt/f.Height {
		return fmt.Errorf("stride %d too large for %d rows", f.Stride, f.Height)
	}
	need := (f.Height-1)*f.Stride + row
	if len(f.Data) < need {
		return fmt.Errorf("buffer holds %d bytes, need %d", len(f.Data), need)
	}
	if f.Confidence != nil {
		b := f.Confidence.Bounds()
		if b.Dx() != f.Width || b.Dy() != f.Height {
			return fmt.Errorf("confidence map %dx%d does not match frame %dx%d",
				b.Dx(), b.Dy(), f.Width, f.Height)
		}
	}
	return nil
}

// At returns the raw sample at (x, y). The frame must pass Check.
func (f *Frame) At(x, y int) float32 {
	off := y*f.Stride + x*BytesPerSample
	return math.Float32frombits(binary.LittleEndian.Uint32(f.Data[off:]))
}

// Set writes the sample at (x, y).
func (f *Frame) Set(x, y int, d float32) {
	off := y*f.Stride + x*BytesPerSample
	binary.LittleEndian.PutUint32(f.Data[off:], math.Float32bits(d))
}

// ConfidenceAt returns the confidence at (x, y), or 255 when the frame
// carries no confidence map.
func (f *Frame) ConfidenceAt(x, y int) uint8 {
	if f.Confidence == nil {
		return 255
	}
	c := f.Confidence
	return c.Pix[c.PixOffset(c.Rect.Min.X+x, c.Rect.Min.Y+y)]
}

// Clone returns a deep copy. Callers that hand a frame to another
// goroutine while the sensor keeps writing into its buffer copy first.
func (f *Frame) Clone() *Frame {
	out := *f
	out.Data = append([]byte(nil), f.Data...)
	if f.Confidence != nil {
		c := *f.Confidence
		c.Pix = append([]uint8(nil), f.Confidence.Pix...)
		out.Confidence = &c
	}
	return &out
}

// IsValidSample reports whether d is a usable depth reading.
func IsValidSample(d float32) bool {
	v := float64(d)
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
