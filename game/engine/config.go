package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AnimationConfig controls the auto-solver's pacing
type AnimationConfig struct {
	Steps         int `json:"steps"`
	StepDelayMS   int `json:"step_delay_ms"`
	SettleDelayMS int `json:"settle_delay_ms"`
}

// StepDelay returns the pause after each interpolation step
func (a AnimationConfig) StepDelay() time.Duration {
	return time.Duration(a.StepDelayMS) * time.Millisecond
}

// SettleDelay returns the pause after a disk lands
func (a AnimationConfig) SettleDelay() time.Duration {
	return time.Duration(a.SettleDelayMS) * time.Millisecond
}

// MessageConfig holds the user-facing message templates
type MessageConfig struct {
	Welcome          string `json:"welcome"`
	InvalidDiskCount string `json:"invalid_disk_count"`
	Win              string `json:"win"`
	Solved           string `json:"solved"`
	SolveBusy        string `json:"solve_busy"`
	DragBusy         string `json:"drag_busy"`
}

// GameConfig represents a puzzle profile loaded from JSON
type GameConfig struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	PegCount     int             `json:"peg_count"`
	DefaultDisks int             `json:"default_disks"`
	CanvasWidth  float64         `json:"canvas_width"`
	CanvasHeight float64         `json:"canvas_height"`
	PegWidth     float64         `json:"peg_width"`
	PegHeight    float64         `json:"peg_height"`
	DiskHeight   float64         `json:"disk_height"`
	DiskMinWidth float64         `json:"disk_min_width"`
	DiskMaxWidth float64         `json:"disk_max_width"`
	HitTolerance float64         `json:"hit_tolerance"`
	Animation    AnimationConfig `json:"animation"`
	Messages     MessageConfig   `json:"messages"`
}

// ValidateDiskCount reports whether n is a playable disk count
func ValidateDiskCount(n int) error {
	if n < MinDisks || n > MaxDisks {
		return fmt.Errorf("%w: must be between %d and %d, got %d", ErrInvalidDiskCount, MinDisks, MaxDisks, n)
	}
	return nil
}

// ValidateGameConfig validates a puzzle profile for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.PegCount < MinPegs || config.PegCount > MaxPegs {
		return fmt.Errorf("config validation: peg_count must be between %d and %d, got %d", MinPegs, MaxPegs, config.PegCount)
	}
	if config.DefaultDisks < MinDisks || config.DefaultDisks > MaxDisks {
		return fmt.Errorf("config validation: default_disks must be between %d and %d, got %d", MinDisks, MaxDisks, config.DefaultDisks)
	}

	// Geometry
	if config.CanvasWidth <= 0 || config.CanvasHeight <= 0 {
		return fmt.Errorf("config validation: canvas must have positive size, got %gx%g", config.CanvasWidth, config.CanvasHeight)
	}
	if config.PegWidth <= 0 || config.PegHeight <= 0 {
		return fmt.Errorf("config validation: peg_width and peg_height must be positive")
	}
	if config.DiskHeight <= 0 {
		return fmt.Errorf("config validation: disk_height must be positive, got %g", config.DiskHeight)
	}
	if config.DiskMinWidth <= 0 || config.DiskMaxWidth < config.DiskMinWidth {
		return fmt.Errorf("config validation: disk widths must satisfy 0 < disk_min_width <= disk_max_width, got %g..%g",
			config.DiskMinWidth, config.DiskMaxWidth)
	}
	if config.HitTolerance < 0 {
		return fmt.Errorf("config validation: hit_tolerance must not be negative, got %g", config.HitTolerance)
	}
	if stack := float64(MaxDisks) * config.DiskHeight; stack > config.CanvasHeight {
		return fmt.Errorf("config validation: a %d disk stack is %g tall but canvas_height is %g",
			MaxDisks, stack, config.CanvasHeight)
	}

	// Animation
	if config.Animation.Steps < 1 || config.Animation.Steps > MaxAnimSteps {
		return fmt.Errorf("config validation: animation.steps must be between 1 and %d, got %d", MaxAnimSteps, config.Animation.Steps)
	}
	if config.Animation.StepDelayMS < 0 || config.Animation.StepDelayMS > MaxDelayMS {
		return fmt.Errorf("config validation: animation.step_delay_ms must be between 0 and %d, got %d", MaxDelayMS, config.Animation.StepDelayMS)
	}
	if config.Animation.SettleDelayMS < 0 || config.Animation.SettleDelayMS > MaxDelayMS {
		return fmt.Errorf("config validation: animation.settle_delay_ms must be between 0 and %d, got %d", MaxDelayMS, config.Animation.SettleDelayMS)
	}

	// Messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if !strings.Contains(config.Messages.Win, "%d") {
		return fmt.Errorf("config validation: messages.win must contain %%d for the move count")
	}
	if !strings.Contains(config.Messages.Solved, "%d") {
		return fmt.Errorf("config validation: messages.solved must contain %%d for the move count")
	}
	if strings.Count(config.Messages.InvalidDiskCount, "%d") != 2 {
		return fmt.Errorf("config validation: messages.invalid_disk_count must contain %%d twice for the bounds")
	}

	return nil
}

// DefaultGameConfig returns the browser profile used when no file is available
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:         "Classic",
		Description:  "Browser canvas geometry with a 12 step slide per solver move",
		PegCount:     DefaultPegCount,
		DefaultDisks: DefaultDiskCount,
		CanvasWidth:  800,
		CanvasHeight: 400,
		PegWidth:     10,
		PegHeight:    240,
		DiskHeight:   22,
		DiskMinWidth: 60,
		DiskMaxWidth: 240,
		HitTolerance: 30,
		Animation: AnimationConfig{
			Steps:         DefaultAnimationSteps,
			StepDelayMS:   int(DefaultStepDelay / time.Millisecond),
			SettleDelayMS: int(DefaultSettleDelay / time.Millisecond),
		},
		Messages: MessageConfig{
			Welcome:          "Drag the top disk of any peg. Move the whole tower to the last peg.",
			InvalidDiskCount: "Please enter a number between %d and %d",
			Win:              "Congratulations! You solved the puzzle in %d moves!",
			Solved:           "Tower solved by auto-solver in %d moves!",
			SolveBusy:        "Auto-solve is running, please wait",
			DragBusy:         "Drop the disk you are holding first",
		},
	}
}

// LoadGameConfig loads a puzzle profile from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
