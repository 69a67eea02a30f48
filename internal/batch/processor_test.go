package batch

import (
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depth-band-renderer/internal/band"
	"depth-band-renderer/internal/depth"
	"depth-band-renderer/internal/encode"
)

func writeFrames(t *testing.T, dir string) {
	t.Helper()
	ramp := make([]float32, 16)
	for i := range ramp {
		ramp[i] = 0.5 + float32(i)*0.1
	}
	require.NoError(t, depth.Write(filepath.Join(dir, "b.dbf"), depth.NewFrame(4, 4, ramp)))
	require.NoError(t, depth.Write(filepath.Join(dir, "a.dbf"), depth.NewFrame(2, 2, []float32{1, 1, 2, 2})))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.dbf"), []byte("DBF1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "renders"), 0755))

	jobs, err := Discover(dir)
	require.NoError(t, err)

	var names []string
	for _, j := range jobs {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"a", "b", "broken"}, names)
}

func TestRun(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFrames(t, in)
	jobs, err := Discover(in)
	require.NoError(t, err)

	cfg := Config{
		OutputDir: out,
		Band:      band.DefaultConfig(),
		Format:    encode.PNG,
		Scale:     2,
		Workers:   2,
	}
	results := Run(cfg, jobs)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success, results[0].Error)
	assert.True(t, results[1].Success, results[1].Error)
	assert.False(t, results[2].Success)
	assert.NotEmpty(t, results[2].Error)

	f, err := os.Open(filepath.Join(out, "b.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	manifest := filepath.Join(out, "manifest.json")
	require.NoError(t, WriteManifest(manifest, results))
	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "a.png", entries[0].Image)
	assert.Equal(t, "gray", entries[0].Mode)
	assert.Equal(t, 1.0, entries[1].ValidRatio)
}

func TestRun_AutoRangeAndConfidence(t *testing.T) {
	in := t.TempDir()
	conf := t.TempDir()
	out := t.TempDir()

	require.NoError(t, depth.Write(filepath.Join(in, "f.dbf"), depth.NewFrame(2, 1, []float32{1.2, 1.8})))
	mask := image.NewGray(image.Rect(0, 0, 2, 1))
	mask.Pix = []uint8{2, 0}
	cf, err := os.Create(filepath.Join(conf, "f.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(cf, mask))
	require.NoError(t, cf.Close())

	bc := band.DefaultConfig()
	bc.UseColorMode = true
	bc.MinConfidence = 1
	results := Run(Config{
		OutputDir:     out,
		ConfidenceDir: conf,
		Band:          bc,
		AutoRange:     true,
		Format:        encode.WebP,
		Workers:       1,
	}, []Job{{Source: filepath.Join(in, "f.dbf"), Name: "f"}})

	require.Len(t, results, 1)
	r := results[0]
	require.True(t, r.Success, r.Error)
	assert.Equal(t, band.RGB, r.Mode)
	assert.InDelta(t, 1.2, r.MinRange, 1e-6)
	assert.InDelta(t, 1.8, r.MaxRange, 1e-6)
	assert.FileExists(t, filepath.Join(out, "f.webp"))
}

func TestRun_DestKeepsRequestedPath(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	require.NoError(t, depth.Write(filepath.Join(in, "frame.dbf"), depth.NewFrame(2, 1, []float32{1, 2})))

	dest := filepath.Join(out, "frame.tif")
	results := Run(Config{
		OutputDir: out,
		Band:      band.DefaultConfig(),
		Format:    encode.TIFF,
		Workers:   1,
	}, []Job{{Source: filepath.Join(in, "frame.dbf"), Name: "frame", Dest: dest}})

	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, dest, results[0].Output)
	assert.FileExists(t, dest)
	assert.NoFileExists(t, filepath.Join(out, "frame.tiff"))
}

func TestConfig_OutputPath(t *testing.T) {
	cfg := Config{OutputDir: "renders", Format: encode.WebP}
	assert.Equal(t, filepath.Join("renders", "a.webp"), cfg.OutputPath(Job{Name: "a"}))
	assert.Equal(t, "x/b.PNG", cfg.OutputPath(Job{Name: "b", Dest: "x/b.PNG"}))
}
