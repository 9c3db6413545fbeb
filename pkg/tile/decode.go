package tile

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/gift"
	"github.com/gen2brain/webp"
	"github.com/spf13/afero"
)

// BaseDPI is the resolution a bitmap is assumed to be rendered at
const BaseDPI = 96

// DecodeImage detects the image format from its magic bytes and decodes it
func DecodeImage(data []byte) (image.Image, error) {
	r := bytes.NewReader(data)

	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return png.Decode(r)
	case len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xD8}):
		return jpeg.Decode(r)
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return gif.Decode(r)
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return webp.Decode(r)
	}

	return nil, fmt.Errorf("unrecognized image format")
}

// ReadImage reads and decodes an image file
func ReadImage(fs afero.Fs, path string) (image.Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Rescale resamples img from BaseDPI to the given resolution.
// img is returned unchanged when dpi is zero or BaseDPI.
func Rescale(img image.Image, dpi int) image.Image {
	if dpi <= 0 || dpi == BaseDPI {
		return img
	}

	b := img.Bounds()
	width := b.Dx() * dpi / BaseDPI
	height := b.Dy() * dpi / BaseDPI
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	g := gift.New(gift.Resize(width, height, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(b))
	g.Draw(dst, img)
	return dst
}
