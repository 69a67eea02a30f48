package encode

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/tiff"
)

// Format is an output image container.
type Format string

const (
	WebP Format = "webp"
	PNG  Format = "png"
	TIFF Format = "tiff"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		return WebP, nil
	case ".png":
		return PNG, nil
	case ".tif", ".tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("encode: unsupported output extension %q", filepath.Ext(path))
}

// Encode writes img to w. WebP output is lossless so band edges survive.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encode: webp: %w", err)
		}
	case PNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode: png: %w", err)
		}
	case TIFF:
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return fmt.Errorf("encode: tiff: %w", err)
		}
	default:
		return fmt.Errorf("encode: unknown format %q", f)
	}
	return nil
}

// Save encodes img to path, creating parent directories.
func Save(path string, img image.Image) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
