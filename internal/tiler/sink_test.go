package tiler

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/kiesman99/splitsave/internal/encode"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradient returns an image whose red channel is the column index
// relative to the bounds origin
func gradient(r image.Rectangle) *image.RGBA {
	img := image.NewRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x - r.Min.X), G: uint8(y), A: 255})
		}
	}
	return img
}

type failingEncoder struct{}

func (failingEncoder) Encode(image.Image) ([]byte, error) { return nil, errors.New("boom") }
func (failingEncoder) Format() string                     { return "png" }
func (failingEncoder) FileExtension() string              { return ".png" }
func (failingEncoder) MaxDimension() int                  { return 0 }

func TestFileSink_Limit(t *testing.T) {
	fs := afero.NewMemMapFs()

	s := NewFileSink(fs, &encode.WebPEncoder{})
	assert.Equal(t, encode.MaxDimensionWebP, s.Limit())

	s.MaxDimension = 1000
	assert.Equal(t, 1000, s.Limit())

	s.MaxDimension = 20000
	assert.Equal(t, encode.MaxDimensionWebP, s.Limit())
}

func TestFileSink_TooLarge(t *testing.T) {
	fs := afero.NewMemMapFs()

	tests := []struct {
		name    string
		sink    *FileSink
		size    image.Rectangle
		wantErr bool
	}{
		{"webp width", NewFileSink(fs, &encode.WebPEncoder{}), image.Rect(0, 0, encode.MaxDimensionWebP+1, 1), true},
		{"webp height", NewFileSink(fs, &encode.WebPEncoder{}), image.Rect(0, 0, 1, encode.MaxDimensionWebP+1), true},
		{"configured dimension", &FileSink{Fs: fs, Encoder: &encode.PNGEncoder{}, MaxDimension: 10}, image.Rect(0, 0, 11, 1), true},
		{"configured pixels", &FileSink{Fs: fs, Encoder: &encode.PNGEncoder{}, MaxPixels: 100}, image.Rect(0, 0, 11, 10), true},
		{"within limits", &FileSink{Fs: fs, Encoder: &encode.PNGEncoder{}, MaxDimension: 10, MaxPixels: 100}, image.Rect(0, 0, 10, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sink.Encode(image.NewGray(tt.size), "/img")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, ErrTooLarge)
			var tl *TooLargeError
			require.ErrorAs(t, err, &tl)
			assert.Equal(t, tt.size.Dx(), tl.Width)
			assert.Equal(t, tt.size.Dy(), tl.Height)
		})
	}
}

func TestFileSink_TooLargeMessage(t *testing.T) {
	err := &TooLargeError{Format: "png", Width: 20, Height: 10, MaxPixels: 100}
	assert.Equal(t, "png: image of 20*10 pixels exceeds the limit of 100 pixels", err.Error())

	err = &TooLargeError{Format: "webp", Width: 20000, Height: 10, MaxDimension: 16383}
	assert.Equal(t, "webp: image of 20000*10 pixels exceeds the maximum dimension of 16383 pixels", err.Error())
}

func TestFileSink_EncoderError(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFileSink(fs, failingEncoder{})

	err := s.Encode(image.NewGray(image.Rect(0, 0, 2, 2)), "/img.png")
	assert.ErrorContains(t, err, "boom")
	assert.NotErrorIs(t, err, ErrTooLarge)

	exists, _ := afero.Exists(fs, "/img.png")
	assert.False(t, exists)
}

func TestFileSink_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	s := NewFileSink(fs, &encode.PNGEncoder{})

	err := s.Encode(image.NewGray(image.Rect(0, 0, 2, 2)), "/img.png")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooLarge)
}

func TestSave_PNGTilesEndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0o755))

	for _, cropper := range []Cropper{SubImageCropper{}, CopyCropper{}} {
		sink := &FileSink{Fs: fs, Encoder: &encode.PNGEncoder{}, MaxDimension: 40}
		enc := newEncoder(fs, sink, Options{Cropper: cropper})

		// bounds deliberately do not start at the origin
		src := gradient(image.Rect(10, 5, 110, 15))

		out, err := enc.Save(context.Background(), src, "/out/diagram.png")
		require.NoError(t, err)
		require.Equal(t, TiledSaved, out.Kind)
		require.Equal(t, 4, out.Steps)

		wantWidths := []int{26, 26, 26, 25}
		for i, f := range out.Files {
			data, err := afero.ReadFile(fs, f)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)

			b := img.Bounds()
			assert.Equal(t, wantWidths[i], b.Dx(), "tile %d", i+1)
			assert.Equal(t, 10, b.Dy())

			// first column of tile i is source column 25*i
			r, _, _, _ := img.At(b.Min.X, b.Min.Y).RGBA()
			assert.Equal(t, uint32(25*i), r>>8, "tile %d", i+1)
		}
	}
}
