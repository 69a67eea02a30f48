package depth

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/tiff"
)

// DBF ("depth buffer file") layout:
//
//	[0:4]   magic "DBF1"
//	[4:8]   width  (uint32 LE)
//	[8:12]  height (uint32 LE)
//	[12:16] stride in bytes (uint32 LE)
//	[16:]   height*stride bytes of float32 LE samples
const (
	dbfMagic      = "DBF1"
	dbfHeaderSize = 16
)

// MillimetersPerMeter converts 16-bit millimetre depth images.
const MillimetersPerMeter = 1000.0

// Load reads a depth frame. The format is chosen by extension:
// .dbf raw float32 buffers, or .png/.tif/.tiff 16-bit millimetre images.
func Load(path string) (*Frame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("depth: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".dbf":
		f, err := ParseDBF(raw)
		if err != nil {
			return nil, fmt.Errorf("depth: %s: %w", path, err)
		}
		return f, nil
	case ".png", ".tif", ".tiff":
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("depth: decode %s: %w", path, err)
		}
		return FromMillimeters(img), nil
	default:
		return nil, fmt.Errorf("depth: unknown extension: %s", filepath.Ext(path))
	}
}

// ParseDBF decodes a DBF buffer. Sample data is referenced, not copied.
func ParseDBF(raw []byte) (*Frame, error) {
	if len(raw) < dbfHeaderSize || string(raw[:4]) != dbfMagic {
		return nil, fmt.Errorf("invalid DBF header")
	}
	w := int(binary.LittleEndian.Uint32(raw[4:8]))
	h := int(binary.LittleEndian.Uint32(raw[8:12]))
	stride := int(binary.LittleEndian.Uint32(raw[12:16]))

	f := &Frame{Width: w, Height: h, Stride: stride, Data: raw[dbfHeaderSize:]}
	if err := f.Check(); err != nil {
		return nil, fmt.Errorf("truncated DBF: %w", err)
	}
	return f, nil
}

// EncodeDBF serializes a frame, preserving its stride.
func EncodeDBF(f *Frame) ([]byte, error) {
	if err := f.Check(); err != nil {
		return nil, fmt.Errorf("depth: encode: %w", err)
	}
	n := f.Height * f.Stride
	out := make([]byte, dbfHeaderSize+n)
	copy(out, dbfMagic)
	binary.LittleEndian.PutUint32(out[4:8], uint32(f.Width))
	binary.LittleEndian.PutUint32(out[8:12], uint32(f.Height))
	binary.LittleEndian.PutUint32(out[12:16], uint32(f.Stride))
	// The last row may legitimately omit its padding.
	copy(out[dbfHeaderSize:], f.Data)
	return out, nil
}

// Write saves a frame as a .dbf file.
func Write(path string, f *Frame) error {
	data, err := EncodeDBF(f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("depth: write %s: %w", path, err)
	}
	return nil
}

// FromMillimeters converts a 16-bit depth image (0 = no reading) to metres.
// 8-bit images are accepted but are rarely meaningful.
func FromMillimeters(img image.Image) *Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	f := NewFrame(w, h, nil)

	g16, ok := img.(*image.Gray16)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var mm uint16
			if ok {
				mm = g16.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			} else {
				mm = color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16).Y
			}
			d := float32(math.NaN())
			if mm > 0 {
				d = float32(float64(mm) / MillimetersPerMeter)
			}
			f.Set(x, y, d)
		}
	}
	return f
}

// LoadConfidence decodes an 8-bit confidence map (PNG, TGA or TIFF).
func LoadConfidence(path string) (*image.Gray, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("depth: read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("depth: decode %s: %w", path, err)
	}
	return toGray(img), nil
}

// toGray converts any image to a zero-origin Gray image.
func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	if g, ok := src.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
