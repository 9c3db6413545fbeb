package tiler

import (
	"fmt"
	"image"
	"os"

	"github.com/kiesman99/splitsave/internal/encode"
	"github.com/spf13/afero"
)

// Sink writes one image as a single file. Implementations must return an
// error matching ErrTooLarge when the image exceeds what they can encode,
// and any other error for unrelated failures.
type Sink interface {
	Encode(img image.Image, path string) error
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(img image.Image, path string) error

func (f SinkFunc) Encode(img image.Image, path string) error {
	return f(img, path)
}

// FileSink encodes images with an encoder and writes them to a filesystem
type FileSink struct {
	Fs      afero.Fs
	Encoder encode.Encoder

	// MaxDimension lowers the encoder's own per-dimension limit when set
	MaxDimension int
	// MaxPixels limits the total pixel count when set
	MaxPixels int64
}

// NewFileSink creates a sink writing through fs
func NewFileSink(fs afero.Fs, enc encode.Encoder) *FileSink {
	return &FileSink{
		Fs:      fs,
		Encoder: enc,
	}
}

// Limit returns the effective per-dimension limit
func (s *FileSink) Limit() int {
	limit := s.Encoder.MaxDimension()
	if s.MaxDimension > 0 && (limit <= 0 || s.MaxDimension < limit) {
		limit = s.MaxDimension
	}
	return limit
}

func (s *FileSink) check(width, height int) error {
	limit := s.Limit()
	tooBig := limit > 0 && (width > limit || height > limit)
	if s.MaxPixels > 0 && int64(width)*int64(height) > s.MaxPixels {
		tooBig = true
	}
	if !tooBig {
		return nil
	}
	return &TooLargeError{
		Format:       s.Encoder.Format(),
		Width:        width,
		Height:       height,
		MaxDimension: limit,
		MaxPixels:    s.MaxPixels,
	}
}

func (s *FileSink) Encode(img image.Image, path string) error {
	b := img.Bounds()
	if err := s.check(b.Dx(), b.Dy()); err != nil {
		return err
	}

	data, err := s.Encoder.Encode(img)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.Encoder.Format(), err)
	}

	f, err := s.Fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
