package engine

import (
	"errors"
	"fmt"
)

// Engine provides the main interface for puzzle operations
type Engine interface {
	// Game lifecycle
	StartGame(n int) error
	IsSolved() bool
	TargetPeg() int

	// Manual play
	PointerDown(x, y float64) (bool, error)
	PointerMove(x, y float64) (bool, error)
	PointerUp(x, y float64) (DropResult, error)
	MoveDisk(from, to int) (DropResult, error)
	BulkMove(moves []Move) ([]DropResult, error)

	// Auto-solve
	StartSolve() error
	SolveStep() (Tick, error)
	CancelSolve() error
	Solving() bool
	Dragging() bool

	// Inspection
	GetState() *PuzzleState
	GetConfig() *GameConfig
	GetLayout() *Layout
	GetMoveHistory() []MoveRecord
	Frame() *Frame
	Message() string

	// Collaborators
	Bind(sink RenderSink, notifier Notifier)
}

// GameEngine owns one puzzle: its state, the gesture controller, the running
// animation and the collaborators that render and announce changes.
// It is not safe for concurrent use; callers serialize access.
type GameEngine struct {
	config   *GameConfig
	layout   *Layout
	state    *PuzzleState
	gesture  *GestureController
	solve    *Animation
	sink     RenderSink
	notifier Notifier
	message  string
}

// NewEngine creates a puzzle for the profile and starts a game with its default disk count.
// A nil sink or notifier discards output.
func NewEngine(config *GameConfig, sink RenderSink, notifier Notifier) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:  config,
		layout:  NewLayout(config),
		message: config.Messages.Welcome,
	}
	e.Bind(sink, notifier)
	if err := e.reset(config.DefaultDisks); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a puzzle with DefaultGameConfig and no collaborators
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), nil, nil)
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

// Bind replaces the render sink and notifier
func (e *GameEngine) Bind(sink RenderSink, notifier Notifier) {
	if sink == nil {
		sink = discardSink{}
	}
	if notifier == nil {
		notifier = discardSink{}
	}
	e.sink = sink
	e.notifier = notifier
}

// StartGame validates n, abandons any drag or solve and stacks n disks on peg 0.
// An invalid n is announced and leaves the current game untouched.
func (e *GameEngine) StartGame(n int) error {
	if err := ValidateDiskCount(n); err != nil {
		e.notify(fmt.Sprintf(e.config.Messages.InvalidDiskCount, MinDisks, MaxDisks))
		return err
	}

	if e.solve != nil {
		e.solve.finish()
		e.solve = nil
	}
	if err := e.reset(n); err != nil {
		return err
	}
	e.message = e.config.Messages.Welcome
	e.redraw()
	return nil
}

func (e *GameEngine) reset(n int) error {
	state := NewPuzzleState(e.config.PegCount)
	if err := state.Reset(n); err != nil {
		return err
	}
	e.layout.Arrange(state)
	e.state = state
	e.gesture = NewGestureController(state, e.layout)
	return nil
}

// TargetPeg returns the peg the tower has to reach
func (e *GameEngine) TargetPeg() int {
	return e.config.PegCount - 1
}

// IsSolved reports whether the whole tower rests on the target peg
func (e *GameEngine) IsSolved() bool {
	return e.state.IsSolved(e.TargetPeg(), e.state.DiskCount)
}

// Solving reports whether an auto-solve is playing
func (e *GameEngine) Solving() bool {
	return e.solve != nil
}

// Dragging reports whether the pointer holds a disk
func (e *GameEngine) Dragging() bool {
	return e.gesture.Active()
}

// PointerDown grabs the top disk under (x, y)
func (e *GameEngine) PointerDown(x, y float64) (bool, error) {
	if e.solve != nil {
		return false, ErrSolveInProgress
	}
	grabbed, err := e.gesture.PointerDown(x, y)
	if err != nil {
		return false, fmt.Errorf("pointer down: %w", err)
	}
	if grabbed {
		e.redraw()
	}
	return grabbed, nil
}

// PointerMove drags the held disk
func (e *GameEngine) PointerMove(x, y float64) (bool, error) {
	if e.solve != nil {
		return false, ErrSolveInProgress
	}
	moved := e.gesture.PointerMove(x, y)
	if moved {
		e.redraw()
	}
	return moved, nil
}

// PointerUp drops the held disk on the nearest peg
func (e *GameEngine) PointerUp(x, y float64) (DropResult, error) {
	if e.solve != nil {
		return DropResult{}, ErrSolveInProgress
	}
	result, err := e.gesture.PointerUp(x, y)
	if err != nil {
		e.redraw()
		return result, fmt.Errorf("pointer up: %w", err)
	}
	e.afterDrop(result)
	return result, nil
}

// MoveDisk moves the top disk of from onto to the way a drop would.
// An illegal target returns the disk to from without counting a move.
func (e *GameEngine) MoveDisk(from, to int) (DropResult, error) {
	if e.solve != nil {
		return DropResult{}, ErrSolveInProgress
	}
	if e.gesture.Active() {
		return DropResult{}, ErrDragInProgress
	}
	if to < 0 || to >= e.state.PegCount() {
		return DropResult{}, fmt.Errorf("move %d->%d: %w: %d", from, to, ErrInvalidPeg, to)
	}

	disk, err := e.state.Lift(from)
	if err != nil {
		return DropResult{}, fmt.Errorf("move %d->%d: %w", from, to, err)
	}
	result, err := drop(e.state, e.layout, disk, from, to, OriginAPI)
	if err != nil {
		e.redraw()
		return result, fmt.Errorf("move %d->%d: %w", from, to, err)
	}
	e.afterDrop(result)
	return result, nil
}

// BulkMove applies moves in order and stops at the first error or once solved
func (e *GameEngine) BulkMove(moves []Move) ([]DropResult, error) {
	results := make([]DropResult, 0, len(moves))
	for _, m := range moves {
		result, err := e.MoveDisk(m.From, m.To)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if result.Solved {
			break
		}
	}
	return results, nil
}

func (e *GameEngine) afterDrop(result DropResult) {
	if result.Committed && result.Solved {
		e.notify(fmt.Sprintf(e.config.Messages.Win, e.state.MoveCount))
	}
	if result.Handled {
		e.redraw()
	}
}

// StartSolve resets to the start layout and begins animating the canonical solution
func (e *GameEngine) StartSolve() error {
	if e.gesture.Active() {
		e.notify(e.config.Messages.DragBusy)
		return ErrDragInProgress
	}
	if e.solve != nil {
		e.notify(e.config.Messages.SolveBusy)
		return ErrSolveInProgress
	}

	if err := e.reset(e.state.DiskCount); err != nil {
		return err
	}
	moves := Moves(e.state.DiskCount, 0, e.TargetPeg(), 1)
	e.solve = NewAnimation(e.state, e.layout, moves, e.config.Animation)
	e.redraw()
	return nil
}

// SolveStep advances the running auto-solve by one step
func (e *GameEngine) SolveStep() (Tick, error) {
	if e.solve == nil {
		return Tick{}, ErrNoSolve
	}

	tick, err := e.solve.Step()
	if err != nil {
		e.solve = nil
		e.redraw()
		return tick, fmt.Errorf("auto-solve: %w", err)
	}
	if tick.Done {
		e.solve = nil
		e.notify(fmt.Sprintf(e.config.Messages.Solved, e.state.MoveCount))
	}
	e.redraw()
	return tick, nil
}

// CancelSolve stops a running auto-solve, returning a sliding disk to its source peg
func (e *GameEngine) CancelSolve() error {
	if e.solve == nil {
		return ErrNoSolve
	}
	err := e.solve.Abort()
	e.solve = nil
	e.redraw()
	if err != nil {
		return fmt.Errorf("cancel auto-solve: %w", err)
	}
	return nil
}

// GetState returns the live puzzle state
func (e *GameEngine) GetState() *PuzzleState {
	return e.state
}

// GetConfig returns the profile the puzzle was built from
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetLayout returns the canvas geometry
func (e *GameEngine) GetLayout() *Layout {
	return e.layout
}

// GetMoveHistory returns the committed moves of the current game
func (e *GameEngine) GetMoveHistory() []MoveRecord {
	return e.state.History
}

// Message returns the most recent notification
func (e *GameEngine) Message() string {
	return e.message
}

// Frame snapshots the puzzle for rendering
func (e *GameEngine) Frame() *Frame {
	frame := &Frame{
		Pegs:      make([][]Disk, len(e.state.Pegs)),
		PegX:      append([]float64(nil), e.layout.PegX...),
		MoveCount: e.state.MoveCount,
		DiskCount: e.state.DiskCount,
		Solved:    e.IsSolved(),
		Solving:   e.solve != nil,
		Dragging:  e.gesture.Active(),
	}
	for i, peg := range e.state.Pegs {
		frame.Pegs[i] = make([]Disk, len(peg))
		for j, d := range peg {
			frame.Pegs[i][j] = *d
		}
	}
	if d := e.state.InFlight(); d != nil {
		inFlight := *d
		frame.InFlight = &inFlight
	}
	return frame
}

func (e *GameEngine) redraw() {
	e.sink.Draw(e.Frame())
}

func (e *GameEngine) notify(message string) {
	e.message = message
	e.notifier.Notify(message)
}

// IsInvariantError reports whether err signals a corrupted puzzle rather than a rejected request
func IsInvariantError(err error) bool {
	return errors.Is(err, ErrInvariant) || errors.Is(err, ErrDiskInFlight)
}
