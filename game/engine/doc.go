// Package engine provides the core puzzle logic for the Tower of Hanoi game.
//
// The engine package implements the game mechanics including:
//   - Peg state with the strictly decreasing size ordering
//   - Move validation shared by every play path
//   - Drag-and-drop gesture resolution against canvas geometry
//   - The recursive solver and its step-by-step animation
//   - Profile loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for puzzle operations,
// implemented by GameEngine. PuzzleState holds the pegs and counters, Layout
// maps them onto a canvas, and GameConfig describes a profile loaded from
// JSON. Rendering and notifications leave the engine through the RenderSink
// and Notifier interfaces, so front-ends decide how frames and messages are
// shown.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewEngine(config, sink, notifier)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drag the smallest disk to the middle peg
//	top := game.GetState().TopOf(0)
//	game.PointerDown(top.X, top.Y)
//	game.PointerUp(game.GetLayout().PegX[1], top.Y)
//
//	// Or let the solver play it out
//	game.StartSolve()
//	engine.Run(ctx, engine.StepFunc(game.SolveStep), engine.TimerSleeper{})
//
// Game Rules:
//
// All disks start on peg 0, largest at the bottom. One disk moves at a time
// and a disk may never rest on a smaller one. The game is won when the whole
// tower stands on the last peg.
package engine
