package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/hanoi/api"
	"github.com/wricardo/mcp-training/hanoi/game/config"
	"github.com/wricardo/mcp-training/hanoi/game/engine"
	"github.com/wricardo/mcp-training/hanoi/game/service"
	"github.com/wricardo/mcp-training/hanoi/game/session"
)

type instantSleeper struct{}

func (instantSleeper) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestClient(t *testing.T) *Client {
	t.Helper()
	configs, err := config.NewManager(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("Failed to load configs: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), configs, service.WithSleeper(instantSleeper{}))
	server := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func callTool(t *testing.T, c *Client, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("Tool returned error: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("Tool returned no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text, result.IsError
}

func sessionIDFrom(t *testing.T, text string) string {
	t.Helper()
	first := strings.SplitN(text, "\n", 2)[0]
	id := strings.TrimPrefix(first, "Created session: ")
	if id == first || id == "" {
		t.Fatalf("No session id in %q", text)
	}
	return id
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestToolsList(t *testing.T) {
	client := NewClient("http://localhost:8080")

	request := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
	w := httptest.NewRecorder()
	client.HTTPHandler().ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(request)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, name := range []string{
		"create_session", "list_sessions", "get_session", "game_state", "start_game",
		"move_disk", "bulk_move", "auto_solve", "cancel_solve", "move_history",
		"solution", "list_configs", "game_instructions",
	} {
		if !strings.Contains(body, `"`+name+`"`) {
			t.Errorf("Tool %s not listed", name)
		}
	}

	w = httptest.NewRecorder()
	client.HTTPHandler().ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", w.Code)
	}
}

func TestPlayThroughTools(t *testing.T) {
	c := newTestClient(t)

	text, isErr := callTool(t, c, c.handleCreateSession, map[string]interface{}{"disks": float64(2)})
	if isErr {
		t.Fatalf("create_session failed: %s", text)
	}
	id := sessionIDFrom(t, text)

	text, _ = callTool(t, c, c.handleMoveDisk, map[string]interface{}{
		"session_id": id, "from": float64(0), "to": float64(1), "intent": "park the small disk",
	})
	if !strings.Contains(text, "✓ Moved disk 0 from peg 0 to peg 1") {
		t.Errorf("Unexpected move output:\n%s", text)
	}

	text, _ = callTool(t, c, c.handleMoveDisk, map[string]interface{}{
		"session_id": id, "from": float64(0), "to": float64(1),
	})
	if !strings.Contains(text, "✗ Move rejected") {
		t.Errorf("Expected rejection:\n%s", text)
	}

	text, _ = callTool(t, c, c.handleBulkMove, map[string]interface{}{
		"session_id": id,
		"moves":      []interface{}{"0->2", map[string]interface{}{"from": float64(1), "to": float64(2)}},
	})
	if !strings.Contains(text, "Executed 2/2 moves") || !strings.Contains(text, "Status: SOLVED") {
		t.Errorf("Expected solved puzzle:\n%s", text)
	}

	text, _ = callTool(t, c, c.handleMoveHistory, map[string]interface{}{"session_id": id, "order": "asc"})
	if !strings.Contains(text, "1. disk 0: 0->1 [api]") || !strings.Contains(text, "Total: 3") {
		t.Errorf("Unexpected history:\n%s", text)
	}

	text, isErr = callTool(t, c, c.handleGameState, map[string]interface{}{"session_id": "zzzz"})
	if !isErr {
		t.Errorf("Expected error for unknown session:\n%s", text)
	}
}

func TestSolveThroughTools(t *testing.T) {
	c := newTestClient(t)

	text, _ := callTool(t, c, c.handleCreateSession, map[string]interface{}{"config_id": "classic", "disks": float64(3)})
	id := sessionIDFrom(t, text)

	text, isErr := callTool(t, c, c.handleAutoSolve, map[string]interface{}{"session_id": id, "wait": true})
	if isErr || !strings.Contains(text, "Auto-solve finished: 3 disks in 7 moves") {
		t.Errorf("Unexpected auto_solve output:\n%s", text)
	}

	_, isErr = callTool(t, c, c.handleCancelSolve, map[string]interface{}{"session_id": id})
	if !isErr {
		t.Error("Expected cancel_solve to fail with nothing running")
	}

	text, _ = callTool(t, c, c.handleStartGame, map[string]interface{}{"session_id": id, "disks": float64(5)})
	if !strings.Contains(text, "Disks: 5 | Moves: 0 (minimum 31)") {
		t.Errorf("Unexpected start_game output:\n%s", text)
	}

	text, _ = callTool(t, c, c.handleSolution, map[string]interface{}{"disks": float64(2)})
	if !strings.Contains(text, "0->1, 0->2, 1->2") {
		t.Errorf("Unexpected solution output:\n%s", text)
	}

	text, _ = callTool(t, c, c.handleListConfigs, nil)
	if !strings.Contains(text, "config_id: terminal") {
		t.Errorf("Expected terminal profile listed:\n%s", text)
	}
}

func TestParseMoves(t *testing.T) {
	moves, err := parseMoves([]interface{}{"0->2", map[string]interface{}{"from": float64(1), "to": float64(0)}})
	if err != nil {
		t.Fatal(err)
	}
	want := []engine.Move{{From: 0, To: 2}, {From: 1, To: 0}}
	got, _ := json.Marshal(moves)
	exp, _ := json.Marshal(want)
	if string(got) != string(exp) {
		t.Errorf("Expected %s, got %s", exp, got)
	}

	for _, bad := range []interface{}{
		nil,
		[]interface{}{},
		[]interface{}{"up"},
		[]interface{}{map[string]interface{}{"from": float64(1)}},
		[]interface{}{true},
	} {
		if _, err := parseMoves(bad); err == nil {
			t.Errorf("Expected error for %v", bad)
		}
	}
}

func TestFormatPegs(t *testing.T) {
	frame := &engine.Frame{
		DiskCount: 2,
		Pegs: [][]engine.Disk{
			{{Size: 1}},
			{},
			{{Size: 0}},
		},
	}

	want := strings.Join([]string{
		"  |      |      |",
		"  |      |      |",
		" =1=     |      0",
		"-----  -----  -----",
		"  0      1      2",
		"",
	}, "\n")
	if got := formatPegs(frame); got != want {
		t.Errorf("formatPegs mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
}
