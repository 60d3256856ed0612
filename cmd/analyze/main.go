// Command analyze validates the puzzle profiles in a configs directory and
// prints quick, human-readable heuristics about each one: peg spacing against
// the widest disk, whether a full stack fits on a peg, disk widths that
// collapse after truncation, and how long the animated solver takes.
// It exits non-zero when any profile fails validation.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/hanoi/game/engine"
)

// solverPegs is how many pegs the auto-solver moves disks between
const solverPegs = 3

// Report is the outcome of analyzing a single profile file. Err is set when
// the file cannot be loaded or fails validation.
type Report struct {
	File     string
	Config   *engine.GameConfig
	Err      error
	Warnings []string
	Notes    []string
}

// Valid reports whether the profile loaded and passed validation
func (r Report) Valid() bool {
	return r.Err == nil
}

// SolveDuration returns how long the animated solver takes for n disks
func SolveDuration(config *engine.GameConfig, n int) time.Duration {
	perMove := time.Duration(config.Animation.Steps)*config.Animation.StepDelay() + config.Animation.SettleDelay()
	return time.Duration(engine.MinimumMoves(n)) * perMove
}

func analyzeConfig(path string) Report {
	report := Report{File: filepath.Base(path)}

	config, err := engine.LoadGameConfig(path)
	if err != nil {
		report.Err = err
		return report
	}
	report.Config = config

	layout := engine.NewLayout(config)

	if len(layout.PegX) > 1 {
		spacing := layout.PegX[1] - layout.PegX[0]
		if layout.MaxWidth > spacing {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"Widest disks on neighbouring pegs overlap: disk_max_width %g exceeds peg spacing %g", layout.MaxWidth, spacing))
		}
	}
	if left := layout.PegX[0] - layout.MaxWidth/2; left < 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"Widest disk on peg 0 is clipped %g units past the left edge", -left))
	}
	if stack := float64(engine.MaxDisks) * layout.DiskHeight; stack > layout.PegHeight {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"A %d disk stack (%g) is taller than the peg (%g)", engine.MaxDisks, stack, layout.PegHeight))
	}

	var same []string
	for size := 1; size < engine.MaxDisks; size++ {
		if layout.DiskWidth(size, engine.MaxDisks) == layout.DiskWidth(size-1, engine.MaxDisks) {
			same = append(same, fmt.Sprintf("%d/%d", size-1, size))
		}
	}
	if len(same) > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"With %d disks these sizes share a width: %s", engine.MaxDisks, strings.Join(same, ", ")))
	}

	if config.PegCount > solverPegs {
		report.Notes = append(report.Notes, fmt.Sprintf(
			"%d pegs: the auto-solver only uses pegs 0, 1 and %d", config.PegCount, config.PegCount-1))
	}
	counts := []int{config.DefaultDisks}
	if config.DefaultDisks != engine.MaxDisks {
		counts = append(counts, engine.MaxDisks)
	}
	for _, n := range counts {
		report.Notes = append(report.Notes, fmt.Sprintf(
			"Auto-solve with %d disks: %d moves, about %s", n, engine.MinimumMoves(n), SolveDuration(config, n)))
	}
	return report
}

func printReport(w io.Writer, r Report) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), r.File)
	if !r.Valid() {
		fmt.Fprintln(w, "❌ INVALID")
		fmt.Fprintf(w, "  ❌ %v\n", r.Err)
		return
	}

	c := r.Config
	fmt.Fprintln(w, "✅ VALID")
	fmt.Fprintf(w, "  ✓ Name: %s\n", c.Name)
	fmt.Fprintf(w, "  ✓ Pegs: %d, default disks: %d\n", c.PegCount, c.DefaultDisks)
	fmt.Fprintf(w, "  ✓ Canvas: %gx%g, disks %g..%g wide, %g tall\n",
		c.CanvasWidth, c.CanvasHeight, c.DiskMinWidth, c.DiskMaxWidth, c.DiskHeight)
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	for _, note := range r.Notes {
		fmt.Fprintf(w, "  • %s\n", note)
	}
}

// analyzeDir reports on every profile in dir and returns whether all are valid
func analyzeDir(dir string, w io.Writer) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no profiles found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		report := analyzeConfig(file)
		printReport(w, report)
		allValid = allValid && report.Valid()
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All profiles are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some profiles have errors")
	}
	return allValid, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Validate puzzle profiles and report layout heuristics",
		ArgsUsage: "[configs-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			ok, err := analyzeDir(dir, cmd.Root().Writer)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("some profiles have errors")
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
