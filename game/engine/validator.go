package engine

// CanPlace reports whether disk may rest on target: the peg is empty or its top disk is larger
func CanPlace(state *PuzzleState, disk *Disk, target int) bool {
	if disk == nil || target < 0 || target >= len(state.Pegs) {
		return false
	}
	top := state.TopOf(target)
	return top == nil || disk.Size < top.Size
}
