package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	headerHeight = 60
	footerHeight = 40
	pollInterval = 500 * time.Millisecond
	minDisks     = 1
	maxDisks     = 10
)

var (
	backgroundColor = color.RGBA{20, 20, 30, 255}
	pegColor        = color.RGBA{139, 69, 19, 255}
	baseColor       = color.RGBA{90, 60, 30, 255}
	diskColors      = []color.RGBA{
		{255, 100, 100, 255}, // Red
		{255, 165, 0, 255},   // Orange
		{255, 255, 100, 255}, // Yellow
		{100, 255, 100, 255}, // Green
		{100, 255, 255, 255}, // Cyan
		{100, 100, 255, 255}, // Blue
		{128, 0, 128, 255},   // Purple
		{255, 100, 255, 255}, // Magenta
		{255, 192, 203, 255}, // Pink
		{200, 200, 200, 255}, // Gray
	}
)

// Game renders one server session and forwards pointer input to it
type Game struct {
	api       *APIClient
	sessionID string
	profile   Profile

	stateMutex sync.RWMutex
	state      *GameState
	lastUpdate time.Time

	wsConn *websocket.Conn
	wsMu   sync.Mutex

	dragging bool
	lastX    float64
	lastY    float64
	errorMsg string
}

// NewGame joins sessionID, or creates a session with configID when it is empty
func NewGame(api *APIClient, sessionID, configID string, disks int) (*Game, error) {
	if sessionID == "" {
		created, err := api.CreateSession(configID, disks)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		sessionID = created.ID
		log.Printf("Created new session: %s (config: %s)", sessionID, configID)
	}

	session, err := api.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if session.GameConfig == nil {
		return nil, fmt.Errorf("session %s has no profile", sessionID)
	}

	g := &Game{
		api:        api,
		sessionID:  session.ID,
		profile:    *session.GameConfig,
		state:      session.GameState,
		lastUpdate: time.Now(),
	}

	if err := g.connectWebSocket(); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", g.sessionID, err)
	}
	return g, nil
}

// connectWebSocket opens the live stream and starts its listener
func (g *Game) connectWebSocket() error {
	conn, err := g.api.Dial(g.sessionID)
	if err != nil {
		return err
	}
	g.wsMu.Lock()
	g.wsConn = conn
	g.wsMu.Unlock()
	log.Printf("WebSocket connected for session %s", g.sessionID)

	go g.listenWebSocket(conn)
	return nil
}

// listenWebSocket applies frames and messages until the connection drops
func (g *Game) listenWebSocket(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		g.wsMu.Lock()
		if g.wsConn == conn {
			g.wsConn = nil
		}
		g.wsMu.Unlock()
	}()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("WebSocket read error for %s: %v", g.sessionID, err)
			return
		}

		g.stateMutex.Lock()
		if g.state == nil {
			g.state = &GameState{}
		}
		if msg.Frame != nil {
			g.state.Frame = *msg.Frame
		}
		switch msg.Event {
		case "notify":
			g.state.Message = msg.Message
		case "error":
			g.errorMsg = msg.Message
		}
		g.lastUpdate = time.Now()
		g.stateMutex.Unlock()
	}
}

func (g *Game) connected() bool {
	g.wsMu.Lock()
	defer g.wsMu.Unlock()
	return g.wsConn != nil
}

// fetchGameState polls the state when no WebSocket is connected
func (g *Game) fetchGameState() error {
	state, err := g.api.GetState(g.sessionID)
	if err != nil {
		return err
	}
	g.stateMutex.Lock()
	g.state = state
	g.lastUpdate = time.Now()
	g.stateMutex.Unlock()
	return nil
}

// sendPointer forwards a pointer event over the WebSocket, or the REST API without one
func (g *Game) sendPointer(ev PointerEvent) {
	g.wsMu.Lock()
	conn := g.wsConn
	if conn != nil {
		if err := conn.WriteJSON(ev); err == nil {
			g.wsMu.Unlock()
			return
		}
	}
	g.wsMu.Unlock()

	if err := g.api.Pointer(g.sessionID, ev); err != nil {
		g.setError(err)
		return
	}
	g.fetchGameState()
}

// sendAction runs a REST action and refreshes the state when polling
func (g *Game) sendAction(action func(id string) error) {
	if err := action(g.sessionID); err != nil {
		g.setError(err)
		return
	}
	g.setError(nil)
	if !g.connected() {
		g.fetchGameState()
	}
}

func (g *Game) setError(err error) {
	g.stateMutex.Lock()
	defer g.stateMutex.Unlock()
	if err == nil {
		g.errorMsg = ""
		return
	}
	g.errorMsg = err.Error()
}

func (g *Game) diskCount() int {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()
	if g.state == nil {
		return 0
	}
	return g.state.DiskCount
}

// canvasPoint converts the cursor position into canvas coordinates
func canvasPoint() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y - headerHeight)
}

// Update handles input
func (g *Game) Update() error {
	g.stateMutex.RLock()
	stale := time.Since(g.lastUpdate) > pollInterval
	g.stateMutex.RUnlock()
	if stale && !g.connected() {
		if err := g.fetchGameState(); err != nil {
			log.Printf("Error fetching state for %s: %v", g.sessionID, err)
		}
	}

	x, y := canvasPoint()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.dragging = true
		g.lastX, g.lastY = x, y
		g.sendPointer(PointerEvent{Type: "pointer_down", X: x, Y: y})
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.dragging = false
		g.sendPointer(PointerEvent{Type: "pointer_up", X: x, Y: y})
	case g.dragging && (x != g.lastX || y != g.lastY):
		g.lastX, g.lastY = x, y
		g.sendPointer(PointerEvent{Type: "pointer_move", X: x, Y: y})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.sendAction(g.api.Solve)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.sendAction(g.api.CancelSolve)
	}
	if n := g.diskCount(); n > 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			g.restart(n)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
			g.restart(min(n+1, maxDisks))
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
			g.restart(max(n-1, minDisks))
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) restart(n int) {
	g.sendAction(func(id string) error { return g.api.StartGame(id, n) })
}

// Draw renders the pegs, the disks and the status lines
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("=== TOWER OF HANOI - %s (session %s) ===", g.profile.Name, g.sessionID), 10, 10)
	if g.state == nil {
		ebitenutil.DebugPrintAt(screen, "Loading...", 10, 30)
		return
	}

	s := g.state
	status := "Playing"
	switch {
	case s.Solved:
		status = "SOLVED!"
	case s.Solving:
		status = "Auto-solving"
	case s.Dragging:
		status = "Dragging"
	}
	link := "live"
	if !g.connected() {
		link = "polling"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Disks: %d | Moves: %d (minimum %d) | %s | %s",
		s.DiskCount, s.MoveCount, 1<<s.DiskCount-1, status, link), 10, 30)

	p := g.profile
	floor := headerHeight + p.CanvasHeight - p.DiskHeight
	vector.DrawFilledRect(screen, 0, float32(floor), float32(p.CanvasWidth), float32(p.DiskHeight), baseColor, false)
	for _, px := range s.PegX {
		vector.DrawFilledRect(screen, float32(px-p.PegWidth/2), float32(floor-p.PegHeight),
			float32(p.PegWidth), float32(p.PegHeight), pegColor, false)
	}

	for _, peg := range s.Pegs {
		for _, d := range peg {
			g.drawDisk(screen, d)
		}
	}
	if s.InFlight != nil {
		g.drawDisk(screen, *s.InFlight)
	}

	footer := headerHeight + int(p.CanvasHeight) + 5
	ebitenutil.DebugPrintAt(screen, s.Message, 10, footer)
	help := "Drag disks | S: solve | C: cancel | R: restart | Up/Down: disks | Esc: quit"
	if g.errorMsg != "" {
		help = "Error: " + g.errorMsg
	}
	ebitenutil.DebugPrintAt(screen, help, 10, footer+18)
}

func (g *Game) drawDisk(screen *ebiten.Image, d Disk) {
	top := headerHeight + d.Y - g.profile.DiskHeight
	clr := diskColors[d.Size%len(diskColors)]
	vector.DrawFilledRect(screen, float32(d.X-d.Width/2), float32(top), float32(d.Width), float32(g.profile.DiskHeight), clr, true)
	ebitenutil.DebugPrintAt(screen, fmt.Sprint(d.Size), int(d.X)-3, int(top+g.profile.DiskHeight/2)-8)
}

// Layout sizes the window to the profile's canvas
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.profile.CanvasWidth), headerHeight + int(g.profile.CanvasHeight) + footerHeight
}

func main() {
	server := flag.String("server", "http://localhost:8080", "Server base URL")
	configID := flag.String("config", "desktop", "Profile for a new session")
	disks := flag.Int("disks", 0, "Disk count for a new session (profile default when 0)")
	flag.Parse()

	// An optional argument joins an existing session, e.g. one an agent is playing
	sessionID := flag.Arg(0)

	game, err := NewGame(NewAPIClient(*server), sessionID, *configID, *disks)
	if err != nil {
		log.Fatal(err)
	}

	width, height := game.Layout(0, 0)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("Tower of Hanoi - Desktop Client")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
