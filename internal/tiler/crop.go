package tiler

import (
	"image"

	"github.com/disintegration/gift"
)

// Cropper extracts a sub-rectangle of an image. It must not fail and must
// not modify src. r is given in src's coordinate space.
type Cropper interface {
	Crop(src image.Image, r image.Rectangle) image.Image
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// SubImageCropper shares the source pixels when the image supports it
// and copies otherwise.
type SubImageCropper struct{}

func (SubImageCropper) Crop(src image.Image, r image.Rectangle) image.Image {
	if s, ok := src.(subImager); ok {
		return s.SubImage(r)
	}
	return CopyCropper{}.Crop(src, r)
}

// CopyCropper copies the region into a new RGBA image with origin (0, 0)
type CopyCropper struct{}

func (CopyCropper) Crop(src image.Image, r image.Rectangle) image.Image {
	g := gift.New(gift.Crop(r))
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}
