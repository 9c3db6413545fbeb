package encode

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/gen2brain/webp"
)

// testImage creates a size x size RGBA image with a gradient pattern.
func testImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func TestNewEncoder(t *testing.T) {
	tests := []struct {
		format  string
		wantFmt string
		wantExt string
		wantMax int
		wantErr bool
	}{
		{"jpeg", "jpeg", ".jpg", MaxDimensionJPEG, false},
		{"JPG", "jpeg", ".jpg", MaxDimensionJPEG, false},
		{"png", "png", ".png", MaxDimensionPNG, false},
		{"png8", "png8", ".png", MaxDimensionPNG, false},
		{"webp", "webp", ".webp", MaxDimensionWebP, false},
		{"bmp", "", "", 0, true},
		{"", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			enc, err := NewEncoder(tt.format, 85)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enc.Format() != tt.wantFmt {
				t.Errorf("Format() = %q, want %q", enc.Format(), tt.wantFmt)
			}
			if enc.FileExtension() != tt.wantExt {
				t.Errorf("FileExtension() = %q, want %q", enc.FileExtension(), tt.wantExt)
			}
			if enc.MaxDimension() != tt.wantMax {
				t.Errorf("MaxDimension() = %d, want %d", enc.MaxDimension(), tt.wantMax)
			}
		})
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		wantFmt string
		wantErr bool
	}{
		{"out/diagram.png", "png", false},
		{"diagram.JPEG", "jpeg", false},
		{"diagram.webp", "webp", false},
		{"diagram", "", true},
		{"diagram.tiff", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			enc, err := ForPath(tt.path, 0)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enc.Format() != tt.wantFmt {
				t.Errorf("Format() = %q, want %q", enc.Format(), tt.wantFmt)
			}
		})
	}
}

func TestPNGEncoder_RoundTrip(t *testing.T) {
	enc := &PNGEncoder{}
	img := testImage(64)

	data, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}

	// PNG is lossless, pixels should be identical.
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			or, og, ob, oa := img.At(x, y).RGBA()
			dr, dg, db, da := decoded.At(x, y).RGBA()
			if or != dr || og != dg || ob != db || oa != da {
				t.Fatalf("pixel mismatch at (%d,%d)", x, y)
			}
		}
	}
}

func TestPNGEncoder_SubImage(t *testing.T) {
	// Tiles are usually sub-images whose bounds do not start at the origin.
	img := testImage(32)
	sub := img.SubImage(image.Rect(10, 0, 20, 32))

	data, err := (&PNGEncoder{}).Encode(sub)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 10 || b.Dy() != 32 {
		t.Errorf("decoded size = %dx%d, want 10x32", b.Dx(), b.Dy())
	}

	r, _, _, _ := decoded.At(0, 0).RGBA()
	if r>>8 != 10 {
		t.Errorf("first column red = %d, want 10", r>>8)
	}
}

func TestJPEGEncoder_Encode(t *testing.T) {
	enc := &JPEGEncoder{Quality: 85}
	img := testImage(64)

	data, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.Decode: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 64 {
		t.Errorf("decoded size = %dx%d, want 64x64", bounds.Dx(), bounds.Dy())
	}
}

func TestPalettedPNGEncoder_Encode(t *testing.T) {
	enc := &PalettedPNGEncoder{Colors: 16}
	img := testImage(32)

	data, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}

	pm, ok := decoded.(*image.Paletted)
	if !ok {
		t.Fatalf("decoded image is %T, want *image.Paletted", decoded)
	}
	if len(pm.Palette) > 16 {
		t.Errorf("palette has %d colors, want <= 16", len(pm.Palette))
	}
	if b := pm.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("decoded size = %dx%d, want 32x32", b.Dx(), b.Dy())
	}
}

func TestWebPEncoder_LosslessRoundTrip(t *testing.T) {
	enc := &WebPEncoder{Lossless: true}
	img := testImage(48)

	data, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("webp.Decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 48 || b.Dy() != 48 {
		t.Fatalf("decoded size = %dx%d, want 48x48", b.Dx(), b.Dy())
	}

	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			or, og, ob, oa := img.At(x, y).RGBA()
			dr, dg, db, da := decoded.At(x, y).RGBA()
			if or>>8 != dr>>8 || og>>8 != dg>>8 || ob>>8 != db>>8 || oa>>8 != da>>8 {
				t.Fatalf("pixel mismatch at (%d,%d)", x, y)
			}
		}
	}
}

func TestWebPEncoder_Lossy(t *testing.T) {
	enc, err := NewEncoder("webp", 75)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	// tiles are sub-images whose bounds do not start at the origin
	sub := testImage(64).SubImage(image.Rect(16, 8, 56, 32))

	data, err := enc.Encode(sub)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("webp.Decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 40 || b.Dy() != 24 {
		t.Errorf("decoded size = %dx%d, want 40x24", b.Dx(), b.Dy())
	}
}
