package tiler

import "fmt"

// Kind is the terminal state of a save
type Kind int

const (
	Failed Kind = iota
	SingleFileSaved
	TiledSaved
)

func (k Kind) String() string {
	switch k {
	case SingleFileSaved:
		return "single"
	case TiledSaved:
		return "tiled"
	default:
		return "failed"
	}
}

// Outcome is the result of one save operation
type Outcome struct {
	Kind Kind

	// Source dimensions
	Width, Height int

	// Path is the written file of a single-file save
	Path string

	// Directory and Files are set for tiled saves; Files are in tile order
	Directory string
	Files     []string
	Steps     int

	// Tried lists the tile counts attempted, in order
	Tried []int

	Err error
}

// FileCount returns the number of files written
func (o *Outcome) FileCount() int {
	switch o.Kind {
	case SingleFileSaved:
		return 1
	case TiledSaved:
		return len(o.Files)
	}
	return 0
}

// Message returns a human-readable description suitable for display
func (o *Outcome) Message() string {
	switch o.Kind {
	case SingleFileSaved:
		return fmt.Sprintf("Image saved to %s.", o.Path)
	case TiledSaved:
		return fmt.Sprintf("Image saved using %d tiles in %s.", o.Steps, o.Directory)
	}
	if o.Err == nil {
		return "Image could not be saved."
	}
	return o.Err.Error()
}
