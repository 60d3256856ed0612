package engine

import "errors"

var (
	ErrInvalidDiskCount = errors.New("invalid disk count")
	ErrInvalidPeg       = errors.New("invalid peg index")
	ErrEmptyPeg         = errors.New("peg is empty")
	ErrDiskInFlight     = errors.New("a disk is already lifted")
	ErrInvariant        = errors.New("peg ordering invariant violated")
	ErrDragInProgress   = errors.New("a drag is in progress")
	ErrSolveInProgress  = errors.New("auto-solve is in progress")
	ErrNoSolve          = errors.New("no auto-solve is running")
)
