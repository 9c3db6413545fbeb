package tile

import (
	"errors"
	"fmt"
	"image"
)

// Default split policy values
const (
	DefaultThreshold = 40000
	DefaultMinSteps  = 2
	DefaultStep      = 2
	DefaultAttempts  = 4
)

// ErrPlan is returned for plans that cannot cover the image width
var ErrPlan = errors.New("invalid split plan")

// SplitPolicy decides which tile counts are tried, and in which order
type SplitPolicy struct {
	// Threshold is a typical safe pixel count for one dimension of the target format
	Threshold int
	MinSteps  int
	Step      int
	Attempts  int
}

// DefaultPolicy returns the policy used when nothing is configured
func DefaultPolicy() SplitPolicy {
	return SplitPolicy{
		Threshold: DefaultThreshold,
		MinSteps:  DefaultMinSteps,
		Step:      DefaultStep,
		Attempts:  DefaultAttempts,
	}
}

// Plan is one candidate split of an image into vertical strips
type Plan struct {
	Width, Height int
	Steps         int
}

// Region is a rectangle of the source image covered by a single tile
type Region struct {
	Index         int
	Left, Top     int
	Width, Height int
}

// Rect returns the region as an image rectangle relative to (0, 0)
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Sequence returns the 1-based number used in the tile's file name
func (r Region) Sequence() int {
	return r.Index + 1
}

func (r Region) String() string {
	return fmt.Sprintf("tile %d [%d,%d %dx%d]", r.Sequence(), r.Left, r.Top, r.Width, r.Height)
}
