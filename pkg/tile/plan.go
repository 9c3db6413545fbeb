package tile

import "fmt"

// withDefaults fills zero fields so a partially configured policy still terminates
func (p SplitPolicy) withDefaults() SplitPolicy {
	if p.Threshold <= 0 {
		p.Threshold = DefaultThreshold
	}
	if p.MinSteps <= 0 {
		p.MinSteps = DefaultMinSteps
	}
	if p.Step <= 0 {
		p.Step = DefaultStep
	}
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}
	return p
}

// StartSteps returns the first tile count tried for an image of the given width.
// Very wide images start with a higher guess.
func (p SplitPolicy) StartSteps(width int) int {
	p = p.withDefaults()
	steps := width / p.Threshold * 2
	if steps < p.MinSteps {
		steps = p.MinSteps
	}
	return steps
}

// Candidates returns the tile counts to try, in strictly increasing order
func (p SplitPolicy) Candidates(width int) []int {
	p = p.withDefaults()
	start := p.StartSteps(width)

	candidates := make([]int, p.Attempts)
	for i := range candidates {
		candidates[i] = start + i*p.Step
	}
	return candidates
}

// NewPlan validates and returns a plan splitting width into steps strips
func NewPlan(width, height, steps int) (Plan, error) {
	if width <= 0 || height <= 0 {
		return Plan{}, fmt.Errorf("%w: image size %dx%d", ErrPlan, width, height)
	}
	if steps <= 0 {
		return Plan{}, fmt.Errorf("%w: %d tiles", ErrPlan, steps)
	}
	if steps > width {
		return Plan{}, fmt.Errorf("%w: %d tiles for a width of %d pixels", ErrPlan, steps, width)
	}
	return Plan{Width: width, Height: height, Steps: steps}, nil
}

// TileWidth returns the nominal width of every tile
func (p Plan) TileWidth() int {
	return p.Width / p.Steps
}

// Region returns the i-th (0-based) region of the plan.
// All but the last region bleed one column into their right neighbour;
// the last one absorbs the remainder of the integer division.
func (p Plan) Region(i int) Region {
	tw := p.TileWidth()
	left := tw * i

	width := tw + 1
	if i == p.Steps-1 {
		width = p.Width - left
	}

	return Region{
		Index:  i,
		Left:   left,
		Top:    0,
		Width:  width,
		Height: p.Height,
	}
}

// Regions returns all regions of the plan in ascending order
func (p Plan) Regions() []Region {
	regions := make([]Region, p.Steps)
	for i := range regions {
		regions[i] = p.Region(i)
	}
	return regions
}
