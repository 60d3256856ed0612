// Command bruteforcer plays a Tower of Hanoi session through the REST API.
// It restacks the session and then solves it with the cyclic strategy, one
// move per request or in bulk-move batches.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/hanoi/game/engine"
	"github.com/wricardo/mcp-training/hanoi/game/service"
)

// Bot drives one session to the solved state
type Bot struct {
	client *Client
	batch  int
	delay  time.Duration
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func pegSizes(frame *engine.Frame) [][]int {
	pegs := make([][]int, len(frame.Pegs))
	for i, peg := range frame.Pegs {
		pegs[i] = make([]int, len(peg))
		for j, d := range peg {
			pegs[i][j] = d.Size
		}
	}
	return pegs
}

// Play moves the tower from a fresh stack onto the target peg and returns
// the moves made
func (b *Bot) Play(ctx context.Context, state *service.GameState) (int, error) {
	if state == nil || state.Frame == nil {
		return 0, errors.New("no game state")
	}
	if state.MoveCount != 0 {
		return 0, fmt.Errorf("expected a fresh stack, %d moves already made", state.MoveCount)
	}

	strategy := NewCyclicStrategy(state.DiskCount, state.TargetPeg)
	for !state.Solved {
		if state.MoveCount > state.MinimumMoves {
			return state.MoveCount, fmt.Errorf("exceeded %d moves without solving", state.MinimumMoves)
		}

		pegs := pegSizes(state.Frame)
		if b.batch <= 1 {
			m, err := strategy.NextMove(pegs, state.MoveCount)
			if err != nil {
				return state.MoveCount, err
			}
			result, err := b.client.Move(ctx, m)
			if err != nil {
				return state.MoveCount, err
			}
			if !result.Success {
				return state.MoveCount, fmt.Errorf("move %s rejected: %s", m, result.Message)
			}
			b.logger.Debug("moved", "move", m.String(), "disk", result.Drop.Disk, "moves", result.GameState.MoveCount)
			state = result.GameState
		} else {
			moves, err := strategy.Plan(pegs, state.MoveCount, b.batch)
			if err != nil {
				return state.MoveCount, err
			}
			result, err := b.client.BulkMove(ctx, moves)
			if err != nil {
				return state.MoveCount, err
			}
			if !result.Success {
				return state.MoveCount, fmt.Errorf("batch stopped on move %d: %s", result.StoppedOnMove, result.StoppedReason)
			}
			b.logger.Debug("batch moved", "executed", result.MovesExecuted, "moves", result.GameState.MoveCount)
			state = result.GameState
		}

		if !state.Solved {
			if err := b.sleep(ctx, b.delay); err != nil {
				return state.MoveCount, err
			}
		}
	}
	return state.MoveCount, nil
}

// prepare joins or creates the session and restacks it
func prepare(ctx context.Context, client *Client, sessionID, configID string, disks int, logger *slog.Logger) (*service.GameState, error) {
	if sessionID != "" {
		client.sessionID = sessionID
		if _, err := client.GetState(ctx); err != nil {
			logger.Warn("failed to resume session, creating a new one", "session", sessionID, "error", err)
			client.sessionID = ""
		} else {
			logger.Info("resuming session", "session", sessionID)
		}
	}
	if client.sessionID == "" {
		if _, err := client.CreateSession(ctx, configID, disks); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		logger.Info("session created", "session", client.sessionID, "config", configID)
	}
	return client.Start(ctx, disks)
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bruteforcer",
		Usage: "Solve a Tower of Hanoi session through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Profile for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "Play an existing session by ID"},
			&cli.IntFlag{Name: "disks", Usage: "Disk count (current or profile default when 0)"},
			&cli.IntFlag{Name: "batch", Value: 1, Usage: "Moves per request; above 1 uses bulk-move"},
			&cli.DurationFlag{Name: "delay", Usage: "Pause between requests"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("v") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.Root().ErrWriter, &slog.HandlerOptions{Level: level}))

	client := NewClient(cmd.String("url"))
	logger.Info("connecting to game server", "url", cmd.String("url"))

	state, err := prepare(ctx, client, cmd.String("continue"), cmd.String("config"), cmd.Int("disks"), logger)
	if err != nil {
		return err
	}
	logger.Info("puzzle ready", "disks", state.DiskCount, "target", state.TargetPeg, "minimum", state.MinimumMoves)

	bot := &Bot{
		client: client,
		batch:  cmd.Int("batch"),
		delay:  cmd.Duration("delay"),
		logger: logger,
		sleep:  sleepContext,
	}
	moves, err := bot.Play(ctx, state)
	if err != nil {
		return fmt.Errorf("session %s: %w", client.sessionID, err)
	}
	logger.Info("puzzle solved", "session", client.sessionID, "moves", moves)
	return nil
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
