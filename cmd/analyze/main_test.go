package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/hanoi/game/engine"
)

func writeProfile(t *testing.T, dir, name string, mutate func(c *engine.GameConfig)) string {
	t.Helper()
	config := engine.DefaultGameConfig()
	if mutate != nil {
		mutate(config)
	}
	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Failed to marshal profile: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
	return path
}

func TestSolveDuration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *engine.GameConfig)
		disks  int
		want   time.Duration
	}{
		{name: "three disks", disks: 3, want: 7 * 440 * time.Millisecond},
		{name: "ten disks", disks: 10, want: 1023 * 440 * time.Millisecond},
		{
			name: "jump straight to target",
			mutate: func(c *engine.GameConfig) {
				c.Animation = engine.AnimationConfig{Steps: 1, StepDelayMS: 0, SettleDelayMS: 500}
			},
			disks: 3,
			want:  3500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := engine.DefaultGameConfig()
			if tt.mutate != nil {
				tt.mutate(config)
			}
			if got := SolveDuration(config, tt.disks); got != tt.want {
				t.Errorf("SolveDuration(%d) = %v, expected %v", tt.disks, got, tt.want)
			}
		})
	}
}

func TestAnalyzeConfig(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(c *engine.GameConfig)
		wantValid    bool
		wantWarnings []string
		wantNotes    []string
	}{
		{
			name:         "default geometry",
			wantValid:    true,
			wantWarnings: []string{"disk_max_width 240 exceeds peg spacing 200"},
			wantNotes:    []string{"Auto-solve with 3 disks: 7 moves, about 3.08s", "Auto-solve with 10 disks: 1023 moves"},
		},
		{
			name:      "roomy canvas",
			mutate:    func(c *engine.GameConfig) { c.CanvasWidth = 2000 },
			wantValid: true,
		},
		{
			name:      "narrow canvas",
			mutate:    func(c *engine.GameConfig) { c.CanvasWidth = 300 },
			wantValid: true,
			wantWarnings: []string{
				"exceeds peg spacing 75",
				"clipped 45 units past the left edge",
			},
		},
		{
			name: "short pegs",
			mutate: func(c *engine.GameConfig) {
				c.CanvasWidth = 2000
				c.PegHeight = 100
			},
			wantValid:    true,
			wantWarnings: []string{"A 10 disk stack (220) is taller than the peg (100)"},
		},
		{
			name: "collapsed widths",
			mutate: func(c *engine.GameConfig) {
				c.DiskMinWidth = 10
				c.DiskMaxWidth = 14
			},
			wantValid:    true,
			wantWarnings: []string{"these sizes share a width: 0/1, 1/2, 3/4"},
		},
		{
			name: "four pegs",
			mutate: func(c *engine.GameConfig) {
				c.PegCount = 4
				c.CanvasWidth = 2000
			},
			wantValid: true,
			wantNotes: []string{"4 pegs: the auto-solver only uses pegs 0, 1 and 3"},
		},
		{
			name: "default at the maximum",
			mutate: func(c *engine.GameConfig) {
				c.DefaultDisks = engine.MaxDisks
				c.CanvasWidth = 2000
			},
			wantValid: true,
			wantNotes: []string{"Auto-solve with 10 disks"},
		},
		{
			name:   "too few pegs",
			mutate: func(c *engine.GameConfig) { c.PegCount = 2 },
		},
		{
			name:   "win message without count",
			mutate: func(c *engine.GameConfig) { c.Messages.Win = "You won!" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, t.TempDir(), "profile.json", tt.mutate)
			report := analyzeConfig(path)

			if report.File != "profile.json" {
				t.Errorf("Expected file name profile.json, got %s", report.File)
			}
			if report.Valid() != tt.wantValid {
				t.Fatalf("Expected valid=%v, got error %v", tt.wantValid, report.Err)
			}
			if !tt.wantValid {
				return
			}

			warnings := strings.Join(report.Warnings, "\n")
			if len(tt.wantWarnings) == 0 && warnings != "" {
				t.Errorf("Expected no warnings, got:\n%s", warnings)
			}
			for _, want := range tt.wantWarnings {
				if !strings.Contains(warnings, want) {
					t.Errorf("Expected warning containing %q, got:\n%s", want, warnings)
				}
			}
			notes := strings.Join(report.Notes, "\n")
			for _, want := range tt.wantNotes {
				if !strings.Contains(notes, want) {
					t.Errorf("Expected note containing %q, got:\n%s", want, notes)
				}
			}
		})
	}
}

func TestAnalyzeConfig_DefaultAtMaximumHasOneSolveNote(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "max.json", func(c *engine.GameConfig) {
		c.DefaultDisks = engine.MaxDisks
	})
	report := analyzeConfig(path)
	if !report.Valid() {
		t.Fatalf("Unexpected error: %v", report.Err)
	}
	if len(report.Notes) != 1 {
		t.Errorf("Expected a single solve note, got %v", report.Notes)
	}
}

func TestAnalyzeConfig_UnreadableFiles(t *testing.T) {
	if report := analyzeConfig("/non/existent/file.json"); report.Valid() {
		t.Error("Expected error for non-existent file")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"name": "test", invalid json}`), 0644); err != nil {
		t.Fatal(err)
	}
	report := analyzeConfig(path)
	if report.Valid() {
		t.Fatal("Expected error for invalid JSON")
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	if !strings.Contains(buf.String(), "❌ INVALID") {
		t.Errorf("Expected INVALID in report, got:\n%s", buf.String())
	}
}

func TestAnalyzeDir_ShippedProfiles(t *testing.T) {
	var buf bytes.Buffer
	ok, err := analyzeDir(filepath.Join("..", "..", "configs"), &buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("Expected all shipped profiles to be valid:\n%s", buf.String())
	}

	out := buf.String()
	for _, want := range []string{"classic.json", "terminal.json", "four_pegs.json", "✓ Name: Four Pegs", "✅ All profiles are valid!"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestAnalyzeDir_Mixed(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "good.json", nil)
	writeProfile(t, dir, "bad.json", func(c *engine.GameConfig) { c.Name = "" })

	var buf bytes.Buffer
	ok, err := analyzeDir(dir, &buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok {
		t.Error("Expected a directory with an invalid profile to fail")
	}
	if !strings.Contains(buf.String(), "name is required") {
		t.Errorf("Expected validation error in output, got:\n%s", buf.String())
	}

	if _, err := analyzeDir(t.TempDir(), &buf); err == nil {
		t.Error("Expected error for a directory without profiles")
	}
}

func TestCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &buf
	if err := cmd.Run(context.Background(), []string{"analyze", filepath.Join("..", "..", "configs")}); err != nil {
		t.Fatalf("Unexpected error: %v\n%s", err, buf.String())
	}

	dir := t.TempDir()
	writeProfile(t, dir, "bad.json", func(c *engine.GameConfig) { c.DiskHeight = 0 })
	cmd = newCommand()
	cmd.Writer = &buf
	if err := cmd.Run(context.Background(), []string{"analyze", dir}); err == nil {
		t.Error("Expected error when a profile is invalid")
	}
}
