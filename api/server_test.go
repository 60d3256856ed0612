package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/hanoi/game/config"
	"github.com/wricardo/mcp-training/hanoi/game/engine"
	"github.com/wricardo/mcp-training/hanoi/game/service"
	"github.com/wricardo/mcp-training/hanoi/game/session"
	"github.com/wricardo/mcp-training/hanoi/transport/websocket"
)

type instantSleeper struct{}

func (instantSleeper) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

type blockingSleeper struct{}

func (blockingSleeper) Sleep(ctx context.Context, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

func setupTestServer(t *testing.T, sleeper engine.Sleeper, hub *websocket.Hub) *Server {
	t.Helper()
	configs, err := config.NewManager(filepath.Join("..", "configs"))
	if err != nil {
		t.Fatalf("Failed to load configs: %v", err)
	}
	opts := []service.Option{service.WithSleeper(sleeper)}
	if hub != nil {
		opts = append(opts, service.WithBroadcaster(hub))
	}
	gameService := service.NewGameService(session.NewManager(), configs, opts...)
	return NewServer(gameService, hub, WithStaticDir(t.TempDir()))
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(target); err != nil {
		t.Fatalf("Failed to parse response: %v (body: %s)", err, w.Body.String())
	}
}

func createSession(t *testing.T, s *Server, body interface{}) *service.SessionInfo {
	t.Helper()
	w := do(s, "POST", "/api/sessions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	return &info
}

func TestCreateSession(t *testing.T) {
	s := setupTestServer(t, instantSleeper{}, nil)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantDisks  int
		wantConfig string
	}{
		{name: "default profile", body: nil, wantStatus: http.StatusCreated, wantDisks: 3, wantConfig: "classic"},
		{name: "terminal profile", body: map[string]interface{}{"config_id": "terminal"}, wantStatus: http.StatusCreated, wantDisks: 4, wantConfig: "terminal"},
		{name: "explicit disks", body: map[string]interface{}{"disks": 7}, wantStatus: http.StatusCreated, wantDisks: 7, wantConfig: "classic"},
		{name: "too many disks", body: map[string]interface{}{"disks": 11}, wantStatus: http.StatusBadRequest},
		{name: "unknown profile", body: map[string]interface{}{"config_id": "missing"}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, "POST", "/api/sessions", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var info service.SessionInfo
			parseResponse(t, w, &info)
			if info.GameState.DiskCount != tt.wantDisks {
				t.Errorf("Expected %d disks, got %d", tt.wantDisks, info.GameState.DiskCount)
			}
			if info.ConfigName != tt.wantConfig {
				t.Errorf("Expected config %q, got %q", tt.wantConfig, info.ConfigName)
			}
		})
	}
}

func TestSessionEndpoints(t *testing.T) {
	s := setupTestServer(t, instantSleeper{}, nil)
	first := createSession(t, s, nil)
	createSession(t, s, nil)

	w := do(s, "GET", "/api/sessions?limit=1", nil)
	var list struct {
		Count int `json:"count"`
		Total int `json:"total"`
	}
	parseResponse(t, w, &list)
	if list.Count != 1 || list.Total != 2 {
		t.Errorf("Expected 1 of 2 sessions, got %+v", list)
	}

	if w := do(s, "GET", "/api/sessions/"+first.ID, nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := do(s, "DELETE", "/api/sessions/"+first.ID, nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := do(s, "GET", "/api/sessions/"+first.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
	if w := do(s, "GET", "/api/sessions/nope/state", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestMoveEndpoints(t *testing.T) {
	s := setupTestServer(t, instantSleeper{}, nil)
	info := createSession(t, s, map[string]interface{}{"disks": 2})
	base := "/api/sessions/" + info.ID

	w := do(s, "POST", base+"/move", engine.Move{From: 0, To: 1})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var move service.MoveResult
	parseResponse(t, w, &move)
	if !move.Success || move.GameState.MoveCount != 1 {
		t.Errorf("Expected committed move, got %+v", move)
	}

	w = do(s, "POST", base+"/move", engine.Move{From: 0, To: 1})
	parseResponse(t, w, &move)
	if move.Success {
		t.Error("Larger disk must not rest on a smaller one")
	}

	if w := do(s, "POST", base+"/move", engine.Move{From: 0, To: 9}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid peg, got %d", w.Code)
	}
	if w := do(s, "POST", base+"/move", "garbage"); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad body, got %d", w.Code)
	}

	w = do(s, "POST", base+"/bulk-move", map[string]interface{}{
		"moves": []engine.Move{{From: 0, To: 2}, {From: 1, To: 2}},
	})
	var bulk service.BulkMoveResult
	parseResponse(t, w, &bulk)
	if !bulk.Success || bulk.MovesExecuted != 2 || !bulk.GameState.Solved {
		t.Errorf("Expected solved puzzle, got %+v", bulk)
	}
	if bulk.GameState.Message != "Congratulations! You solved the puzzle in 3 moves!" {
		t.Errorf("Unexpected message %q", bulk.GameState.Message)
	}

	w = do(s, "GET", base+"/history?order=asc&limit=2", nil)
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	if history.TotalMoves != 3 || len(history.Moves) != 2 || !history.HasNext {
		t.Errorf("Unexpected history %+v", history)
	}
	if history.Moves[0].Origin != engine.OriginAPI {
		t.Errorf("Expected api origin, got %s", history.Moves[0].Origin)
	}
}

func TestPointerEndpoints(t *testing.T) {
	s := setupTestServer(t, instantSleeper{}, nil)
	info := createSession(t, s, map[string]interface{}{"disks": 3})
	base := "/api/sessions/" + info.ID + "/pointer/"

	top := info.GameState.Pegs[0][2]
	var result service.PointerResult
	parseResponse(t, do(s, "POST", base+"down", map[string]float64{"x": top.X, "y": top.Y - 2}), &result)
	if !result.Grabbed {
		t.Fatalf("Expected top disk grabbed, got %+v", result)
	}

	parseResponse(t, do(s, "POST", base+"move", map[string]float64{"x": 590, "y": 200}), &result)
	if !result.Moved || result.GameState.InFlight == nil || result.GameState.InFlight.X != 590 {
		t.Errorf("Expected disk following pointer, got %+v", result.GameState.InFlight)
	}

	// a programmatic move during a drag conflicts
	if w := do(s, "POST", "/api/sessions/"+info.ID+"/move", engine.Move{From: 0, To: 1}); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 during drag, got %d", w.Code)
	}

	parseResponse(t, do(s, "POST", base+"up", map[string]float64{"x": 590, "y": 200}), &result)
	if result.Drop == nil || !result.Drop.Committed || result.Drop.To != 2 {
		t.Errorf("Expected commit on peg 2, got %+v", result.Drop)
	}

	if w := do(s, "POST", base+"sideways", map[string]float64{}); w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected unknown pointer action to be unrouted, got %d", w.Code)
	}
}

func TestStartGame(t *testing.T) {
	s := setupTestServer(t, instantSleeper{}, nil)
	info := createSession(t, s, nil)
	base := "/api/sessions/" + info.ID

	w := do(s, "POST", base+"/start", map[string]int{"disks": 6})
	var state service.GameState
	parseResponse(t, w, &state)
	if state.DiskCount != 6 || state.MinimumMoves != 63 {
		t.Errorf("Expected 6 disk game, got %d/%d", state.DiskCount, state.MinimumMoves)
	}

	w = do(s, "POST", base+"/start", map[string]int{"disks": 0})
	if w.Code != http.StatusOK {
		t.Errorf("Expected restart with current count, got %d", w.Code)
	}

	w = do(s, "POST", base+"/start", map[string]int{"disks": -3})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestSolveEndpoints(t *testing.T) {
	t.Run("wait for completion", func(t *testing.T) {
		s := setupTestServer(t, instantSleeper{}, nil)
		info := createSession(t, s, map[string]int{"disks": 4})

		w := do(s, "POST", "/api/sessions/"+info.ID+"/solve?wait=true", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var result service.SolveResult
		parseResponse(t, w, &result)
		if !result.Completed || result.GameState.MoveCount != 15 || !result.GameState.Solved {
			t.Errorf("Expected solved in 15 moves, got %+v", result.GameState.Frame)
		}
	})

	t.Run("background and cancel", func(t *testing.T) {
		s := setupTestServer(t, blockingSleeper{}, nil)
		info := createSession(t, s, map[string]int{"disks": 4})
		base := "/api/sessions/" + info.ID

		w := do(s, "POST", base+"/solve", nil)
		if w.Code != http.StatusAccepted {
			t.Fatalf("Expected 202, got %d", w.Code)
		}
		if w := do(s, "POST", base+"/solve", nil); w.Code != http.StatusConflict {
			t.Errorf("Expected 409 for second solve, got %d", w.Code)
		}
		if w := do(s, "POST", base+"/move", engine.Move{From: 0, To: 1}); w.Code != http.StatusConflict {
			t.Errorf("Expected 409 for move during solve, got %d", w.Code)
		}

		w = do(s, "POST", base+"/solve/cancel", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var state service.GameState
		parseResponse(t, w, &state)
		if state.Solving {
			t.Error("Expected solve to be stopped")
		}

		if w := do(s, "POST", base+"/solve/cancel", nil); w.Code != http.StatusConflict {
			t.Errorf("Expected 409 with nothing to cancel, got %d", w.Code)
		}
	})
}

func TestSolution(t *testing.T) {
	s := setupTestServer(t, instantSleeper{}, nil)

	w := do(s, "GET", "/api/solution/3", nil)
	var solution service.SolutionResponse
	parseResponse(t, w, &solution)
	want := []engine.Move{{From: 0, To: 2}, {From: 0, To: 1}, {From: 2, To: 1}, {From: 0, To: 2}, {From: 1, To: 0}, {From: 1, To: 2}, {From: 0, To: 2}}
	if fmt.Sprint(solution.Moves) != fmt.Sprint(want) {
		t.Errorf("Expected %v, got %v", want, solution.Moves)
	}

	if w := do(s, "GET", "/api/solution/0", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestConfigEndpoints(t *testing.T) {
	dir := t.TempDir()
	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(service.NewGameService(session.NewManager(), configs), nil, WithStaticDir(dir))

	profile := engine.DefaultGameConfig()
	profile.Name = "Wide"
	profile.PegCount = 5
	body := map[string]interface{}{"config_id": "wide"}
	raw, _ := json.Marshal(profile)
	json.Unmarshal(raw, &body)

	if w := do(s, "POST", "/api/configs", body); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w := do(s, "GET", "/api/configs", nil)
	var list []service.ConfigInfo
	parseResponse(t, w, &list)
	if len(list) != 1 || list[0].ConfigID != "wide" || list[0].PegCount != 5 {
		t.Errorf("Unexpected list %+v", list)
	}

	w = do(s, "GET", "/api/configs/wide.json", nil)
	var loaded engine.GameConfig
	parseResponse(t, w, &loaded)
	if loaded.Name != "Wide" {
		t.Errorf("Expected Wide, got %q", loaded.Name)
	}

	if w := do(s, "GET", "/api/configs/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	profile.PegCount = 2
	raw, _ = json.Marshal(profile)
	body = map[string]interface{}{}
	json.Unmarshal(raw, &body)
	body["config_id"] = "broken"
	if w := do(s, "POST", "/api/configs", body); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid profile, got %d", w.Code)
	}
	delete(body, "config_id")
	if w := do(s, "POST", "/api/configs", body); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without config_id, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t, instantSleeper{}, nil)
	w := do(s, "GET", "/api/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("Unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrConfigNotFound, http.StatusNotFound},
		{engine.ErrInvalidDiskCount, http.StatusBadRequest},
		{engine.ErrInvalidPeg, http.StatusBadRequest},
		{engine.ErrEmptyPeg, http.StatusBadRequest},
		{engine.ErrSolveInProgress, http.StatusConflict},
		{engine.ErrDragInProgress, http.StatusConflict},
		{engine.ErrNoSolve, http.StatusConflict},
		{engine.ErrInvariant, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWebSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := websocket.NewHub()
	go hub.Run(ctx)

	s := setupTestServer(t, instantSleeper{}, hub)
	server := httptest.NewServer(s)
	defer server.Close()

	info := createSession(t, s, map[string]int{"disks": 1})
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session="

	if _, resp, err := gorillaws.DefaultDialer.Dial(wsURL+"nope", nil); err == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %v", err)
	}

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL+info.ID, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	read := func() websocket.Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg websocket.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		return msg
	}

	initial := read()
	if initial.Event != websocket.EventFrame || initial.Frame.DiskCount != 1 {
		t.Fatalf("Expected initial frame, got %+v", initial)
	}

	disk := initial.Frame.Pegs[0][0]
	for _, msg := range []websocket.Inbound{
		{Type: websocket.PointerDown, X: disk.X, Y: disk.Y - 1},
		{Type: websocket.PointerMove, X: 400, Y: 100},
		{Type: websocket.PointerUp, X: 400, Y: 100},
	} {
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatal(err)
		}
	}

	// drain until the drop lands on the middle peg
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msg := read()
		if msg.Event == websocket.EventFrame && msg.Frame.MoveCount == 1 {
			if len(msg.Frame.Pegs[1]) != 1 {
				t.Errorf("Expected disk on peg 1, got %+v", msg.Frame.Pegs)
			}
			return
		}
	}
	t.Fatal("No frame for the committed drop")
}
