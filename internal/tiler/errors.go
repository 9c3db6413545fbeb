package tiler

import (
	"errors"
	"fmt"
)

// ErrTooLarge is matched by errors reporting that an image exceeds what the
// target format can address. It is the only error that triggers splitting.
var ErrTooLarge = errors.New("image dimensions exceed encoder limit")

// ErrAllCandidatesExhausted is matched by the error of a save that tried
// every tile count without finding one that could be encoded.
var ErrAllCandidatesExhausted = errors.New("image could not be split into encodable tiles")

// TooLargeError reports the dimensions that exceeded a sink's limits
type TooLargeError struct {
	Format        string
	Width, Height int
	MaxDimension  int
	MaxPixels     int64
}

func (e *TooLargeError) Error() string {
	if e.MaxPixels > 0 && int64(e.Width)*int64(e.Height) > e.MaxPixels {
		return fmt.Sprintf("%s: image of %d*%d pixels exceeds the limit of %d pixels",
			e.Format, e.Width, e.Height, e.MaxPixels)
	}
	return fmt.Sprintf("%s: image of %d*%d pixels exceeds the maximum dimension of %d pixels",
		e.Format, e.Width, e.Height, e.MaxDimension)
}

func (e *TooLargeError) Is(target error) bool {
	return target == ErrTooLarge
}

// CandidateError is the failure of one tile while trying a tile count.
// Index is -1 when the tile count itself could not be applied.
type CandidateError struct {
	Steps int
	Index int
	Err   error
}

func (e *CandidateError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%d tiles: %v", e.Steps, e.Err)
	}
	return fmt.Sprintf("%d tiles: tile %d: %v", e.Steps, e.Index+1, e.Err)
}

func (e *CandidateError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned once every candidate tile count failed.
// Its message carries the last underlying error.
type ExhaustedError struct {
	Candidates []int
	Last       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v (tried %v tiles): %v", ErrAllCandidatesExhausted, e.Candidates, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrAllCandidatesExhausted, e.Last}
}

// tooLarge reports whether err only means the current attempt was too big
func tooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}
