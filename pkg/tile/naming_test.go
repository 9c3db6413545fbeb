package tile

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	dir, base, ext := SplitName(filepath.Join("out", "diagram.v2.png"))
	assert.Equal(t, "out", dir)
	assert.Equal(t, "diagram.v2", base)
	assert.Equal(t, ".png", ext)

	dir, base, ext = SplitName("noext")
	assert.Equal(t, ".", dir)
	assert.Equal(t, "noext", base)
	assert.Equal(t, "", ext)
}

func TestDirName(t *testing.T) {
	ts := time.Date(2024, 3, 1, 16, 5, 6, 0, time.Local)
	assert.Equal(t, "diagram (2024-03-01_04;05;06)", DirName("diagram", ts))
	assert.Equal(t, "diagram (2024-03-01_04;05;06) #2", DisambiguatedDirName(DirName("diagram", ts), 2))
	assert.Equal(t, "x", DisambiguatedDirName("x", 1))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "diagram-1.png", FileName("diagram", ".png", 1, 2))
	assert.Equal(t, "diagram-08.png", FileName("diagram", ".png", 8, 10))
	assert.Equal(t, "diagram-010.webp", FileName("diagram", ".webp", 10, 120))
	assert.Equal(t, "x-3", FileName("x", "", 3, 4))
}

func TestReadImage(t *testing.T) {
	fs := afero.NewMemMapFs()

	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.SetRGBA(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	require.NoError(t, afero.WriteFile(fs, "in.png", buf.Bytes(), 0o644))
	require.NoError(t, afero.WriteFile(fs, "junk.bin", []byte("nope"), 0o644))

	img, err := ReadImage(fs, "in.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(200), r>>8)

	_, err = ReadImage(fs, "junk.bin")
	assert.ErrorContains(t, err, "unrecognized image format")

	_, err = ReadImage(fs, "missing.png")
	assert.Error(t, err)
}

func TestRescale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 96, 48))

	assert.Same(t, image.Image(src), Rescale(src, 0))
	assert.Same(t, image.Image(src), Rescale(src, BaseDPI))

	dst := Rescale(src, 192)
	assert.Equal(t, 192, dst.Bounds().Dx())
	assert.Equal(t, 96, dst.Bounds().Dy())
}
