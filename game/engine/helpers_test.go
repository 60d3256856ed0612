package engine

import (
	"context"
	"time"
)

func createTestConfig() *GameConfig {
	config := DefaultGameConfig()
	config.Name = "Engine Test Config"
	config.Description = "Configuration for engine tests"
	return config
}

// recorder captures frames and notifications
type recorder struct {
	frames   []*Frame
	messages []string
}

func (r *recorder) Draw(frame *Frame)     { r.frames = append(r.frames, frame) }
func (r *recorder) Notify(message string) { r.messages = append(r.messages, message) }

func (r *recorder) lastMessage() string {
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

// fakeSleeper records requested delays without sleeping
type fakeSleeper struct {
	delays  []time.Duration
	onSleep func(count int)
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	if s.onSleep != nil {
		s.onSleep(len(s.delays))
	}
	return ctx.Err()
}

func newTestEngine(n int) (*GameEngine, *recorder) {
	rec := &recorder{}
	config := createTestConfig()
	config.DefaultDisks = n
	e, err := NewEngine(config, rec, rec)
	if err != nil {
		panic(err)
	}
	return e, rec
}

// copyState deep-copies the exported parts of a puzzle for later comparison
func copyState(s *PuzzleState) *PuzzleState {
	c := &PuzzleState{
		Pegs:      make([][]*Disk, len(s.Pegs)),
		DiskCount: s.DiskCount,
		MoveCount: s.MoveCount,
		History:   append([]MoveRecord(nil), s.History...),
	}
	for i, peg := range s.Pegs {
		for _, d := range peg {
			disk := *d
			c.Pegs[i] = append(c.Pegs[i], &disk)
		}
	}
	return c
}
