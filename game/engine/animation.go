package engine

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// Tick is the outcome of one animation step
type Tick struct {
	// Delay is how long to pause before the next step
	Delay time.Duration
	// Placed is set when this step landed a disk
	Placed *Move
	// Done is set once every move has been applied
	Done bool
}

// Stepper advances an animation by one step
type Stepper interface {
	Step() (Tick, error)
}

// StepFunc adapts a function to Stepper
type StepFunc func() (Tick, error)

func (f StepFunc) Step() (Tick, error) { return f() }

// Sleeper suspends the caller between animation steps
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper sleeps on a real timer and wakes early on cancellation
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run drives s until it reports Done, sleeping between steps.
// Cancellation is observed before every step and during every pause.
func Run(ctx context.Context, s Stepper, sleeper Sleeper) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tick, err := s.Step()
		if err != nil {
			return err
		}
		if tick.Done {
			return nil
		}
		if err := sleeper.Sleep(ctx, tick.Delay); err != nil {
			return err
		}
	}
}

type transit struct {
	move   Move
	disk   *Disk
	startX float64
	endX   float64
	step   int
}

// Animation plays a move sequence one step at a time. Each move lifts the
// source's top disk, slides it horizontally in Steps increments and then
// lands it on the target peg.
type Animation struct {
	state       *PuzzleState
	layout      *Layout
	steps       int
	stepDelay   time.Duration
	settleDelay time.Duration

	next    func() (Move, bool)
	stop    func()
	current *transit
	applied int
	done    bool
}

// NewAnimation prepares moves for playback against state
func NewAnimation(state *PuzzleState, layout *Layout, moves iter.Seq[Move], config AnimationConfig) *Animation {
	next, stop := iter.Pull(moves)
	steps := config.Steps
	if steps < 1 {
		steps = 1
	}
	return &Animation{
		state:       state,
		layout:      layout,
		steps:       steps,
		stepDelay:   config.StepDelay(),
		settleDelay: config.SettleDelay(),
		next:        next,
		stop:        stop,
	}
}

// Applied returns the number of moves landed so far
func (a *Animation) Applied() int {
	return a.applied
}

// Done reports whether the animation has finished or been stopped
func (a *Animation) Done() bool {
	return a.done
}

// InTransit returns the move currently sliding, if any
func (a *Animation) InTransit() (Move, bool) {
	if a.current == nil {
		return Move{}, false
	}
	return a.current.move, true
}

// Step performs one interpolation step, or lands the moving disk once all
// steps of the current move have run.
func (a *Animation) Step() (Tick, error) {
	if a.done {
		return Tick{Done: true}, nil
	}

	if a.current == nil {
		move, ok := a.next()
		if !ok {
			a.finish()
			return Tick{Done: true}, nil
		}
		if move.To < 0 || move.To >= len(a.layout.PegX) {
			a.finish()
			return Tick{}, fmt.Errorf("move %s: %w", move, ErrInvalidPeg)
		}
		disk, err := a.state.Lift(move.From)
		if err != nil {
			a.finish()
			return Tick{}, fmt.Errorf("move %s: %w", move, err)
		}
		a.current = &transit{move: move, disk: disk, startX: disk.X, endX: a.layout.PegX[move.To]}
	}

	c := a.current
	if c.step < a.steps {
		c.step++
		c.disk.X = c.startX + (c.endX-c.startX)*float64(c.step)/float64(a.steps)
		return Tick{Delay: a.stepDelay}, nil
	}

	if !CanPlace(a.state, c.disk, c.move.To) {
		_ = a.Abort()
		return Tick{}, fmt.Errorf("move %s: %w", c.move, ErrInvariant)
	}
	if err := a.state.Place(c.move.To, c.disk, Commit); err != nil {
		_ = a.Abort()
		return Tick{}, fmt.Errorf("move %s: %w", c.move, err)
	}
	a.layout.Settle(a.state, c.move.To)
	a.state.Record(c.disk.Size, c.move.From, c.move.To, OriginSolver)

	a.current = nil
	a.applied++
	placed := c.move
	return Tick{Delay: a.settleDelay, Placed: &placed}, nil
}

// Abort stops playback and returns a sliding disk to its source peg
func (a *Animation) Abort() error {
	c := a.current
	a.finish()
	if c == nil {
		return nil
	}
	if err := a.state.Place(c.move.From, c.disk, Revert); err != nil {
		return err
	}
	a.layout.Settle(a.state, c.move.From)
	return nil
}

func (a *Animation) finish() {
	a.done = true
	a.current = nil
	if a.stop != nil {
		a.stop()
	}
}
