package engine

import "math"

// Layout converts peg and disk indices into canvas coordinates for a profile.
// Peg anchors are spread evenly across the canvas width and disks rest on the
// canvas floor, one DiskHeight per stack position.
type Layout struct {
	PegX         []float64
	CanvasWidth  float64
	CanvasHeight float64
	PegWidth     float64
	PegHeight    float64
	DiskHeight   float64
	MinWidth     float64
	MaxWidth     float64
	Tolerance    float64
}

// NewLayout computes the peg anchors for the given profile
func NewLayout(config *GameConfig) *Layout {
	spacing := config.CanvasWidth / float64(config.PegCount+1)
	pegX := make([]float64, config.PegCount)
	for i := range pegX {
		pegX[i] = float64(i+1) * spacing
	}

	return &Layout{
		PegX:         pegX,
		CanvasWidth:  config.CanvasWidth,
		CanvasHeight: config.CanvasHeight,
		PegWidth:     config.PegWidth,
		PegHeight:    config.PegHeight,
		DiskHeight:   config.DiskHeight,
		MinWidth:     config.DiskMinWidth,
		MaxWidth:     config.DiskMaxWidth,
		Tolerance:    config.HitTolerance,
	}
}

// DiskWidth returns the drawn width of the disk ranked size in an n disk game.
// Widths grow linearly from MinWidth and are truncated to whole units.
func (l *Layout) DiskWidth(size, n int) float64 {
	spacing := 1.0
	if n > 1 {
		spacing = (l.MaxWidth - l.MinWidth) / float64(n-1)
	}
	return math.Trunc(l.MinWidth + float64(size)*spacing)
}

// RestingY returns the bottom edge of the disk at stack position index
func (l *Layout) RestingY(index int) float64 {
	return l.CanvasHeight - float64(index+1)*l.DiskHeight
}

// Arrange assigns widths to every disk and settles all pegs
func (l *Layout) Arrange(state *PuzzleState) {
	for _, peg := range state.Pegs {
		for _, d := range peg {
			d.Width = l.DiskWidth(d.Size, state.DiskCount)
		}
	}
	for i := range state.Pegs {
		l.Settle(state, i)
	}
}

// Settle moves every disk on peg to its resting position
func (l *Layout) Settle(state *PuzzleState, peg int) {
	if peg < 0 || peg >= len(state.Pegs) || peg >= len(l.PegX) {
		return
	}
	for i, d := range state.Pegs[peg] {
		d.X = l.PegX[peg]
		d.Y = l.RestingY(i)
	}
}

// NearestPeg returns the peg whose anchor is closest to x. Ties go to the lower index.
func (l *Layout) NearestPeg(x float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, px := range l.PegX {
		if dist := math.Abs(x - px); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// Hit reports whether the point (x, y) grabs disk d. The bounding box is
// widened by Tolerance on both sides and below the disk, not above it.
func (l *Layout) Hit(d *Disk, x, y float64) bool {
	if d == nil {
		return false
	}
	return x >= d.Left()-l.Tolerance && x <= d.Right()+l.Tolerance &&
		y >= d.Y-l.DiskHeight && y <= d.Y+l.Tolerance
}
