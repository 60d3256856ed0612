package engine

import (
	"fmt"
	"time"
)

const (
	// Validation constants
	MinDisks     = 1
	MaxDisks     = 10
	MinPegs      = 3
	MaxPegs      = 8
	MaxAnimSteps = 120
	MaxDelayMS   = 5000
	MaxBulkMoves = 64

	// Defaults taken by DefaultGameConfig
	DefaultPegCount       = 3
	DefaultDiskCount      = 3
	DefaultAnimationSteps = 12
	DefaultStepDelay      = 30 * time.Millisecond
	DefaultSettleDelay    = 80 * time.Millisecond

	WebSocketBufferSize = 256
)

// Disk is a single graduated disk. Size ranks the disk (0 is the smallest);
// X is the disk's horizontal center and Y its bottom edge in canvas units.
type Disk struct {
	Size  int     `json:"size"`
	Width float64 `json:"width"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Left returns the x coordinate of the disk's left edge
func (d *Disk) Left() float64 { return d.X - d.Width/2 }

// Right returns the x coordinate of the disk's right edge
func (d *Disk) Right() float64 { return d.X + d.Width/2 }

// Move transfers the top disk of peg From onto peg To
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (m Move) String() string {
	return fmt.Sprintf("%d->%d", m.From, m.To)
}

// Placement tells Place whether the drop is a counted move or a return to origin
type Placement int

const (
	Revert Placement = iota
	Commit
)

func (p Placement) String() string {
	if p == Commit {
		return "commit"
	}
	return "revert"
}

// MoveOrigin identifies what produced a committed move
type MoveOrigin string

const (
	OriginDrag   MoveOrigin = "drag"
	OriginAPI    MoveOrigin = "api"
	OriginSolver MoveOrigin = "solver"
)

// MoveRecord represents a single committed move in the history
type MoveRecord struct {
	MoveNumber int        `json:"move_number"`
	Disk       int        `json:"disk"`
	From       int        `json:"from"`
	To         int        `json:"to"`
	Origin     MoveOrigin `json:"origin"`
	Timestamp  int64      `json:"timestamp"`
}

// DragSession holds the disk being dragged by the pointer
type DragSession struct {
	Disk    *Disk
	Origin  int
	OffsetX float64
	OffsetY float64
}

// DropResult describes what a pointer-up or programmatic move did
type DropResult struct {
	Handled   bool `json:"handled"`
	Committed bool `json:"committed"`
	Disk      int  `json:"disk"`
	From      int  `json:"from"`
	To        int  `json:"to"`
	Solved    bool `json:"solved"`
}

// Frame is a read-only snapshot handed to a RenderSink
type Frame struct {
	Pegs      [][]Disk  `json:"pegs"`
	InFlight  *Disk     `json:"in_flight,omitempty"`
	PegX      []float64 `json:"peg_x"`
	MoveCount int       `json:"move_count"`
	DiskCount int       `json:"disk_count"`
	Solved    bool      `json:"solved"`
	Solving   bool      `json:"solving"`
	Dragging  bool      `json:"dragging"`
}

// RenderSink receives a frame whenever the puzzle changes
type RenderSink interface {
	Draw(frame *Frame)
}

// Notifier receives user-facing messages. Delivery is fire-and-forget.
type Notifier interface {
	Notify(message string)
}

// RenderFunc adapts a function to RenderSink
type RenderFunc func(frame *Frame)

func (f RenderFunc) Draw(frame *Frame) { f(frame) }

// NotifyFunc adapts a function to Notifier
type NotifyFunc func(message string)

func (f NotifyFunc) Notify(message string) { f(message) }

type discardSink struct{}

func (discardSink) Draw(*Frame)   {}
func (discardSink) Notify(string) {}
