// Package config provides puzzle profile management for the Tower of Hanoi game.
//
// The config package handles:
//   - Loading profiles from JSON files
//   - Profile validation through engine.ValidateGameConfig
//   - Default profile selection
//   - Profile discovery and listing
//
// Configuration Format:
//
// Profiles are stored as JSON files in the configs directory. Each profile
// defines:
//   - Peg count and default disk count
//   - Canvas, peg and disk geometry plus the pointer hit tolerance
//   - Auto-solve pacing (interpolation steps, step and settle delays)
//   - Message templates for invalid input, wins and solver completion
//
// Available Configurations:
//   - classic: browser canvas, 12 step slides
//   - desktop: compact window, solver moves jump with a half second pause
//   - terminal: character cells for the terminal front-end
//   - four_pegs: a spare fourth peg
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("desktop")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
