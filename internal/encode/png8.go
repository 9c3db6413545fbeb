package encode

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/ericpauley/go-quantize/quantize"
)

// PalettedPNGEncoder encodes images as 8-bit paletted PNG, quantizing
// images that are not paletted already.
type PalettedPNGEncoder struct {
	// Colors is the palette size, 256 if zero
	Colors int
}

func (e *PalettedPNGEncoder) Encode(img image.Image) ([]byte, error) {
	colors := e.Colors
	if colors <= 0 || colors > 256 {
		colors = 256
	}

	pm, _ := img.(*image.Paletted)
	if pm == nil || len(pm.Palette) > colors {
		b := img.Bounds()
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), img))
		draw.Draw(pm, b, img, b.Min, draw.Src)
	}

	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, pm); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *PalettedPNGEncoder) Format() string        { return "png8" }
func (e *PalettedPNGEncoder) FileExtension() string { return ".png" }
func (e *PalettedPNGEncoder) MaxDimension() int     { return MaxDimensionPNG }
