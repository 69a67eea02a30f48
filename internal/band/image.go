package band

import "image"

// Mode selects the output pixel format.
type Mode int

const (
	Gray Mode = iota // 1 byte per pixel
	RGB              // 3 bytes per pixel, R,G,B
)

func (m Mode) String() string {
	if m == RGB {
		return "rgb"
	}
	return "gray"
}

// BytesPerPixel returns the packed pixel size for the mode.
func (m Mode) BytesPerPixel() int {
	if m == RGB {
		return 3
	}
	return 1
}

// Image is a rendered depth visualization: tightly packed rows, top-left
// origin, no alpha. Bands holds the per-pixel band index (Sentinel for
// invalid pixels) from which the contour overlay was derived.
type Image struct {
	Width  int
	Height int
	Mode   Mode
	Pix    []uint8
	Bands  []int32
}

func newImage(w, h int, mode Mode) *Image {
	return &Image{
		Width:  w,
		Height: h,
		Mode:   mode,
		Pix:    make([]uint8, w*h*mode.BytesPerPixel()),
		Bands:  make([]int32, w*h),
	}
}

// RowBytes returns the length of one packed output row.
func (m *Image) RowBytes() int {
	return m.Width * m.Mode.BytesPerPixel()
}

// Band returns the band index at (x, y).
func (m *Image) Band(x, y int) int32 {
	return m.Bands[y*m.Width+x]
}

// ToImage wraps the pixels in a standard library image for encoding.
// Gray output shares Pix; RGB output is expanded to opaque NRGBA.
func (m *Image) ToImage() image.Image {
	rect := image.Rect(0, 0, m.Width, m.Height)
	if m.Mode == Gray {
		return &image.Gray{Pix: m.Pix, Stride: m.Width, Rect: rect}
	}

	dst := image.NewNRGBA(rect)
	n := m.Width * m.Height
	for i := 0; i < n; i++ {
		s, d := i*3, i*4
		dst.Pix[d] = m.Pix[s]
		dst.Pix[d+1] = m.Pix[s+1]
		dst.Pix[d+2] = m.Pix[s+2]
		dst.Pix[d+3] = 255
	}
	return dst
}
