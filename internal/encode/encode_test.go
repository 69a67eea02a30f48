package encode

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.webp":  WebP,
		"b.PNG":   PNG,
		"c/d.tif": TIFF,
		"e.TIFF":  TIFF,
	}
	for path, want := range tests {
		got, err := FormatFor(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFor("frame.jpg")
	assert.Error(t, err)
}

func TestSave_Lossless(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})

	dir := t.TempDir()
	for _, name := range []string{"out.webp", "out.png", "nested/out.tiff"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, src), name)

		f, err := os.Open(path)
		require.NoError(t, err)
		got, _, err := image.Decode(f)
		f.Close()
		require.NoError(t, err, name)

		r, g, b, _ := got.At(1, 0).RGBA()
		assert.Equal(t, [3]uint32{0, 0, 0xffff}, [3]uint32{r, g, b}, name)
	}
}
