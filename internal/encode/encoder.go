package encode

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// Hard per-dimension limits of the formats
const (
	MaxDimensionPNG  = 1<<31 - 1
	MaxDimensionJPEG = 65535
	MaxDimensionWebP = 16383
)

// DefaultQuality is used for lossy formats when no quality is given
const DefaultQuality = 85

// Encoder encodes an image into file bytes.
type Encoder interface {
	// Encode encodes an image to bytes in the encoder's format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "jpeg", "png", "webp").
	Format() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string

	// MaxDimension returns the largest width or height the format can address.
	MaxDimension() int
}

// NewEncoder creates an encoder for the given format and quality.
func NewEncoder(format string, quality int) (Encoder, error) {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "png":
		return &PNGEncoder{}, nil
	case "png8":
		return &PalettedPNGEncoder{}, nil
	case "webp":
		return newWebPEncoder(quality)
	default:
		return nil, fmt.Errorf("unsupported image format: %q (supported: jpeg, png, png8, webp)", format)
	}
}

// ForPath picks the encoder matching the extension of path.
func ForPath(path string, quality int) (Encoder, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%s: no file extension to pick an image format from", path)
	}
	return NewEncoder(ext, quality)
}
