package engine

import (
	"fmt"
	"time"
)

// PuzzleState holds the pegs, the counters and the disk currently lifted off a peg.
// Each peg is ordered bottom to top and strictly decreasing in size.
type PuzzleState struct {
	Pegs      [][]*Disk    `json:"pegs"`
	DiskCount int          `json:"disk_count"`
	MoveCount int          `json:"move_count"`
	History   []MoveRecord `json:"history"`

	inFlight *Disk
}

// NewPuzzleState creates an empty puzzle with pegCount pegs
func NewPuzzleState(pegCount int) *PuzzleState {
	return &PuzzleState{
		Pegs:    make([][]*Disk, pegCount),
		History: []MoveRecord{},
	}
}

// Reset clears every peg and stacks n disks on peg 0, largest at the bottom.
// An invalid n leaves the state untouched.
func (s *PuzzleState) Reset(n int) error {
	if err := ValidateDiskCount(n); err != nil {
		return err
	}

	pegs := make([][]*Disk, len(s.Pegs))
	first := make([]*Disk, 0, n)
	for size := n - 1; size >= 0; size-- {
		first = append(first, &Disk{Size: size})
	}
	pegs[0] = first

	s.Pegs = pegs
	s.DiskCount = n
	s.MoveCount = 0
	s.History = []MoveRecord{}
	s.inFlight = nil
	return nil
}

// PegCount returns the number of pegs
func (s *PuzzleState) PegCount() int {
	return len(s.Pegs)
}

// TopOf returns the top disk of peg, or nil when the peg is empty or out of range
func (s *PuzzleState) TopOf(peg int) *Disk {
	if peg < 0 || peg >= len(s.Pegs) {
		return nil
	}
	stack := s.Pegs[peg]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// InFlight returns the disk lifted off its peg, if any
func (s *PuzzleState) InFlight() *Disk {
	return s.inFlight
}

// Lift removes the top disk of peg and holds it in flight
func (s *PuzzleState) Lift(peg int) (*Disk, error) {
	if s.inFlight != nil {
		return nil, ErrDiskInFlight
	}
	if peg < 0 || peg >= len(s.Pegs) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeg, peg)
	}
	stack := s.Pegs[peg]
	if len(stack) == 0 {
		return nil, fmt.Errorf("%w: peg %d", ErrEmptyPeg, peg)
	}

	disk := stack[len(stack)-1]
	s.Pegs[peg] = stack[:len(stack)-1]
	s.inFlight = disk
	return disk, nil
}

// Place drops the in-flight disk onto peg. Commit counts the move, Revert does not.
// Callers must consult CanPlace first; a violating placement is an invariant error.
func (s *PuzzleState) Place(peg int, disk *Disk, placement Placement) error {
	if peg < 0 || peg >= len(s.Pegs) {
		return fmt.Errorf("%w: %d", ErrInvalidPeg, peg)
	}
	if disk == nil || disk != s.inFlight {
		return fmt.Errorf("%w: disk is not the one in flight", ErrInvariant)
	}
	if !CanPlace(s, disk, peg) {
		top := s.TopOf(peg)
		return fmt.Errorf("%w: disk %d on top of disk %d at peg %d", ErrInvariant, disk.Size, top.Size, peg)
	}

	s.Pegs[peg] = append(s.Pegs[peg], disk)
	s.inFlight = nil
	if placement == Commit {
		s.MoveCount++
	}
	return nil
}

// Record appends a committed move to the history
func (s *PuzzleState) Record(disk, from, to int, origin MoveOrigin) MoveRecord {
	record := MoveRecord{
		MoveNumber: s.MoveCount,
		Disk:       disk,
		From:       from,
		To:         to,
		Origin:     origin,
		Timestamp:  time.Now().Unix(),
	}
	s.History = append(s.History, record)
	return record
}

// IsSolved reports whether peg 0 is empty and target holds all n disks
func (s *PuzzleState) IsSolved(target, n int) bool {
	if len(s.Pegs) == 0 || target < 0 || target >= len(s.Pegs) {
		return false
	}
	return len(s.Pegs[0]) == 0 && len(s.Pegs[target]) == n
}

// Validate checks the ordering and conservation invariants
func (s *PuzzleState) Validate() error {
	seen := make(map[int]bool, s.DiskCount)
	for i, peg := range s.Pegs {
		for j, d := range peg {
			if j > 0 && d.Size >= peg[j-1].Size {
				return fmt.Errorf("%w: peg %d holds disk %d above disk %d", ErrInvariant, i, d.Size, peg[j-1].Size)
			}
			if seen[d.Size] {
				return fmt.Errorf("%w: disk %d appears twice", ErrInvariant, d.Size)
			}
			seen[d.Size] = true
		}
	}
	if s.inFlight != nil {
		if seen[s.inFlight.Size] {
			return fmt.Errorf("%w: disk %d is both stacked and in flight", ErrInvariant, s.inFlight.Size)
		}
		seen[s.inFlight.Size] = true
	}
	if len(seen) != s.DiskCount {
		return fmt.Errorf("%w: found %d disks, expected %d", ErrInvariant, len(seen), s.DiskCount)
	}
	return nil
}

// Sizes returns the disk sizes of every peg, bottom to top
func (s *PuzzleState) Sizes() [][]int {
	out := make([][]int, len(s.Pegs))
	for i, peg := range s.Pegs {
		out[i] = make([]int, len(peg))
		for j, d := range peg {
			out[i][j] = d.Size
		}
	}
	return out
}
