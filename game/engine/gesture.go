package engine

// GestureController turns pointer events into disk moves.
// It is Idle while session is nil and Dragging otherwise.
type GestureController struct {
	state   *PuzzleState
	layout  *Layout
	session *DragSession
}

// NewGestureController binds a controller to a puzzle and its layout
func NewGestureController(state *PuzzleState, layout *Layout) *GestureController {
	return &GestureController{state: state, layout: layout}
}

// Active reports whether a drag is in progress
func (g *GestureController) Active() bool {
	return g.session != nil
}

// Session returns the current drag session or nil
func (g *GestureController) Session() *DragSession {
	return g.session
}

// PointerDown starts a drag when (x, y) hits the top disk of a peg.
// It returns false when the pointer hit nothing or a drag is already active.
func (g *GestureController) PointerDown(x, y float64) (bool, error) {
	if g.session != nil {
		return false, nil
	}

	for peg := range g.state.Pegs {
		top := g.state.TopOf(peg)
		if top == nil || !g.layout.Hit(top, x, y) {
			continue
		}
		disk, err := g.state.Lift(peg)
		if err != nil {
			return false, err
		}
		g.session = &DragSession{
			Disk:    disk,
			Origin:  peg,
			OffsetX: x - disk.X,
			OffsetY: y - disk.Y,
		}
		return true, nil
	}
	return false, nil
}

// PointerMove makes the dragged disk follow the pointer. No legality check happens mid-drag.
func (g *GestureController) PointerMove(x, y float64) bool {
	if g.session == nil {
		return false
	}
	g.session.Disk.X = x - g.session.OffsetX
	g.session.Disk.Y = y - g.session.OffsetY
	return true
}

// PointerUp drops the dragged disk on the peg nearest to x. A legal drop counts
// as a move even when it lands back on the origin peg; an illegal one returns
// the disk to its origin uncounted.
func (g *GestureController) PointerUp(x, _ float64) (DropResult, error) {
	if g.session == nil {
		return DropResult{}, nil
	}
	session := g.session
	g.session = nil

	return drop(g.state, g.layout, session.Disk, session.Origin, g.layout.NearestPeg(x), OriginDrag)
}

// Cancel returns a dragged disk to its origin without counting a move
func (g *GestureController) Cancel() error {
	if g.session == nil {
		return nil
	}
	session := g.session
	g.session = nil

	if err := g.state.Place(session.Origin, session.Disk, Revert); err != nil {
		return err
	}
	g.layout.Settle(g.state, session.Origin)
	return nil
}

// drop commits disk onto target when legal and reverts it to origin otherwise
func drop(state *PuzzleState, layout *Layout, disk *Disk, origin, target int, source MoveOrigin) (DropResult, error) {
	result := DropResult{Handled: true, Disk: disk.Size, From: origin, To: target}

	if !CanPlace(state, disk, target) {
		result.To = origin
		if err := state.Place(origin, disk, Revert); err != nil {
			return result, err
		}
		layout.Settle(state, origin)
		return result, nil
	}

	if err := state.Place(target, disk, Commit); err != nil {
		return result, err
	}
	layout.Settle(state, target)
	state.Record(disk.Size, origin, target, source)

	result.Committed = true
	result.Solved = state.IsSolved(state.PegCount()-1, state.DiskCount)
	return result, nil
}
