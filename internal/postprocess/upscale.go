package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Upscale enlarges a rendered depth image for display. LiDAR buffers are
// small (256x192 on current phones), so previews are usually scaled 2-4x.
// Nearest-neighbour keeps band edges and contour lines one block wide;
// smooth uses CatmullRom.
func Upscale(img image.Image, factor int, smooth bool) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	rect := image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor)

	var dst draw.Image
	if _, ok := img.(*image.Gray); ok {
		dst = image.NewGray(rect)
	} else {
		dst = image.NewNRGBA(rect)
	}

	var s draw.Scaler = draw.NearestNeighbor
	if smooth {
		s = draw.CatmullRom
	}
	s.Scale(dst, rect, img, b, draw.Src, nil)
	return dst
}
