package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wricardo/mcp-training/hanoi/game/engine"
)

// headerLines is the number of rows drawn above the canvas
const headerLines = 2

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8A8A8"))
	winStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	pegStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))

	diskColors = []lipgloss.Color{"#FF5F87", "#FFAF00", "#FFFF5F", "#5FFF87", "#5FD7FF", "#5F87FF", "#AF87FF", "#FF87D7", "#D7AF87", "#AFAFAF"}
)

type solveTickMsg struct {
	gen int
}

// Model is a bubbletea model that plays one puzzle in the terminal.
// It is the engine's render sink and notifier, so every change lands in
// frame and message before View runs.
type Model struct {
	engine   *engine.GameEngine
	config   *engine.GameConfig
	frame    *engine.Frame
	message  string
	disks    int
	width    int
	height   int
	solveGen int
	quitting bool
	keys     keyMap
	help     help.Model
}

// New creates a model for the profile with the given disk count
func New(config *engine.GameConfig, disks int) (*Model, error) {
	m := &Model{config: config, keys: defaultKeyMap(), help: help.New()}
	e, err := engine.NewEngine(config, m, m)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	m.engine = e
	m.disks = e.GetState().DiskCount
	if disks != m.disks {
		if err := e.StartGame(disks); err != nil {
			return nil, err
		}
		m.disks = disks
	}
	m.frame = e.Frame()
	m.message = e.Message()
	return m, nil
}

// Run starts the program and blocks until the user quits or ctx is done
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// Draw stores the latest frame
func (m *Model) Draw(frame *engine.Frame) {
	m.frame = frame
}

// Notify stores the latest message
func (m *Model) Notify(message string) {
	m.message = message
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case solveTickMsg:
		return m, m.step(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Solve):
		if err := m.engine.StartSolve(); err != nil {
			return nil
		}
		m.solveGen++
		return m.tick(0)
	case key.Matches(msg, m.keys.Cancel):
		if err := m.engine.CancelSolve(); err == nil {
			m.solveGen++
		}
	case key.Matches(msg, m.keys.New):
		m.restart(m.disks)
	case key.Matches(msg, m.keys.More):
		m.restart(m.disks + 1)
	case key.Matches(msg, m.keys.Fewer):
		m.restart(m.disks - 1)
	}
	return nil
}

func (m *Model) restart(n int) {
	if err := m.engine.StartGame(n); err != nil {
		return
	}
	m.solveGen++
	m.disks = n
	m.message = m.engine.Message()
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x := float64(msg.X) + 0.5
	y := float64(msg.Y-headerLines) + 0.5

	var err error
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		_, err = m.engine.PointerDown(x, y)
	case tea.MouseActionMotion:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		_, err = m.engine.PointerMove(x, y)
	case tea.MouseActionRelease:
		_, err = m.engine.PointerUp(x, y)
	}

	switch {
	case errors.Is(err, engine.ErrSolveInProgress):
		m.message = m.config.Messages.SolveBusy
	case err != nil:
		m.message = err.Error()
	}
}

func (m *Model) tick(d time.Duration) tea.Cmd {
	gen := m.solveGen
	return tea.Tick(max(d, time.Millisecond), func(time.Time) tea.Msg {
		return solveTickMsg{gen: gen}
	})
}

func (m *Model) step(msg solveTickMsg) tea.Cmd {
	if msg.gen != m.solveGen || !m.engine.Solving() {
		return nil
	}
	t, err := m.engine.SolveStep()
	if err != nil {
		m.message = err.Error()
		return nil
	}
	if t.Done {
		return nil
	}
	return m.tick(t.Delay)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.canvas())
	b.WriteString("\n")
	b.WriteString(m.footer())

	view := b.String()
	if m.width > 0 && m.height > 0 {
		view = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

func (m *Model) header() string {
	f := m.frame
	title := titleStyle.Render(m.config.Name)
	info := infoStyle.Render(fmt.Sprintf("Disks: %d  Moves: %d (minimum %d)", f.DiskCount, f.MoveCount, engine.MinimumMoves(f.DiskCount)))

	status := "Playing"
	switch {
	case f.Solved:
		status = winStyle.Render("Solved")
	case f.Solving:
		status = "Auto-solving"
	case f.Dragging:
		status = "Dragging"
	}
	return title + " " + info + "\n" + status
}

func (m *Model) footer() string {
	msg := m.message
	if m.frame.Solved {
		msg = winStyle.Render(msg)
	}
	return msg + "\n" + helpStyle.Render("mouse drag disks") + m.help.ShortSeparator + m.help.View(m.keys)
}

// cell is one character of the canvas; size is -1 outside disks
type cell struct {
	ch   rune
	size int
}

func (m *Model) canvas() string {
	cols := int(m.config.CanvasWidth)
	rows := int(m.config.CanvasHeight)
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
		for c := range grid[r] {
			grid[r][c] = cell{ch: ' ', size: -1}
		}
	}

	floor := rows - 1
	for c := range cols {
		grid[floor][c].ch = '─'
	}
	for _, px := range m.frame.PegX {
		c := int(px)
		if c < 0 || c >= cols {
			continue
		}
		for r := range floor {
			if float64(floor-r) <= m.config.PegHeight {
				grid[r][c].ch = '|'
			}
		}
	}

	for _, peg := range m.frame.Pegs {
		for _, d := range peg {
			paintDisk(grid, d, floor)
		}
	}
	if m.frame.InFlight != nil {
		paintDisk(grid, *m.frame.InFlight, floor)
	}

	lines := make([]string, rows)
	for r, row := range grid {
		lines[r] = renderRow(row)
	}
	return strings.Join(lines, "\n")
}

// paintDisk fills the cells covered by d, labelled with its size in the middle
func paintDisk(grid [][]cell, d engine.Disk, floor int) {
	r := int(math.Round(d.Y)) - 1
	if r < 0 || r >= floor {
		return
	}
	width := int(d.Width)
	start := int(math.Round(d.Left()))
	label := []rune(strconv.Itoa(d.Size))
	mid := start + (width-len(label))/2

	row := grid[r]
	for c := start; c < start+width; c++ {
		if c < 0 || c >= len(row) {
			continue
		}
		ch := ' '
		if i := c - mid; i >= 0 && i < len(label) {
			ch = label[i]
		}
		row[c] = cell{ch: ch, size: d.Size}
	}
}

// renderRow styles runs of cells that share a disk, pegs one by one
func renderRow(row []cell) string {
	var b strings.Builder
	for i := 0; i < len(row); {
		j := i + 1
		for j < len(row) && row[j].size == row[i].size && row[j].ch != '|' {
			j++
		}
		var run strings.Builder
		for _, c := range row[i:j] {
			run.WriteRune(c.ch)
		}
		text := run.String()
		switch {
		case row[i].size >= 0:
			b.WriteString(diskStyle(row[i].size).Render(text))
		case row[i].ch == '|':
			b.WriteString(pegStyle.Render("|"))
			b.WriteString(text[1:])
		default:
			b.WriteString(text)
		}
		i = j
	}
	return strings.TrimRight(b.String(), " ")
}

func diskStyle(size int) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1A1A1A")).
		Background(diskColors[size%len(diskColors)])
}
