package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/hanoi/game/engine"
	"github.com/wricardo/mcp-training/hanoi/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tower of Hanoi",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tower of Hanoi - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Move the whole tower from peg 0 to the last peg. Only the top disk of a peg can move
and a disk may never rest on a smaller one.

AVAILABLE TOOLS:
- create_session: Create a new puzzle (optional profile and disk count)
- list_sessions / get_session: Inspect sessions
- game_state: Current pegs, move count and status
- start_game: Restack the tower with a new disk count (1-10)
- move_disk: Move the top disk of one peg to another - requires intent explanation
- bulk_move: Several moves at once - requires intent explanation
- auto_solve / cancel_solve: Let the solver animate the optimal solution
- move_history: View committed moves
- solution: The optimal move list for n disks
- list_configs: Available profiles
- game_instructions: Full rules

NOTE: The 'intent' parameter on move_disk/bulk_move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func pegProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"description": description,
	}
}

func disksProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     engine.MinDisks,
		"maximum":     engine.MaxDisks,
		"description": fmt.Sprintf("Number of disks (%d-%d)", engine.MinDisks, engine.MaxDisks),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new puzzle session with optional profile and disk count",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Profile to use (optional, see list_configs)",
				},
				"disks": disksProperty(),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active puzzle sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current pegs, move count and status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new game, stacking the disks on peg 0. Stops a running auto-solve.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"disks":      disksProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_disk",
		Description: "Move the top disk of one peg onto another",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"from":       pegProperty("Peg to take the top disk from"),
				"to":         pegProperty("Peg to place the disk on"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "from", "to"},
		},
	}, c.handleMoveDisk)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping at the first illegal one", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"from": pegProperty("Source peg"),
							"to":   pegProperty("Target peg"),
						},
						"required": []string{"from", "to"},
					},
					"description": "Moves to apply in order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "auto_solve",
		Description: "Reset the puzzle and let the solver animate the optimal solution",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "Block until the animation finishes",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAutoSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_solve",
		Description: "Stop a running auto-solve",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleCancelSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get committed moves with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Moves per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or most recent first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solution",
		Description: "Get the optimal move list for a disk count",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"disks": disksProperty(),
			},
			Required: []string{"disks"},
		},
	}, c.handleSolution)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available puzzle profiles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules and tips for playing",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves single JSON-RPC messages over POST
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}
	if disks := request.GetInt("disks", 0); disks != 0 {
		body["disks"] = disks
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil && s.GameState.Frame != nil {
			status = fmt.Sprintf(", Disks: %d, Moves: %d", s.GameState.DiskCount, s.GameState.MoveCount)
		}
		fmt.Fprintf(&b, "- %s (Config: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var state service.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	body := map[string]int{"disks": request.GetInt("disks", 0)}

	var state service.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/start"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("New game started.\n\n" + formatGameState(&state)), nil
}

func (c *Client) handleMoveDisk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	// intent is for the caller's benefit only
	_ = request.GetString("intent", "")

	body := engine.Move{
		From: request.GetInt("from", -1),
		To:   request.GetInt("to", -1),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	_ = request.GetString("intent", "")

	moves, err := parseMoves(request.GetArguments()["moves"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.BulkMoveResult
	body := map[string]interface{}{"moves": moves}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(&result)), nil
}

// parseMoves accepts [{"from":0,"to":2}] or ["0->2"]
func parseMoves(raw interface{}) ([]engine.Move, error) {
	items, ok := raw.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("moves must be a non-empty array")
	}

	moves := make([]engine.Move, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case map[string]interface{}:
			from, okFrom := v["from"].(float64)
			to, okTo := v["to"].(float64)
			if !okFrom || !okTo {
				return nil, fmt.Errorf("move %d: from and to are required", i+1)
			}
			moves = append(moves, engine.Move{From: int(from), To: int(to)})
		case string:
			var m engine.Move
			if _, err := fmt.Sscanf(v, "%d->%d", &m.From, &m.To); err != nil {
				return nil, fmt.Errorf("move %d: expected \"from->to\", got %q", i+1, v)
			}
			moves = append(moves, m)
		default:
			return nil, fmt.Errorf("move %d: unsupported value %v", i+1, item)
		}
	}
	return moves, nil
}

func (c *Client) handleAutoSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	wait := request.GetBool("wait", false)

	var result service.SolveResult
	path := sessionPath(sessionID, fmt.Sprintf("/solve?wait=%t", wait))
	if err := c.apiCall(ctx, "POST", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	if result.Completed {
		fmt.Fprintf(&b, "Auto-solve finished: %d disks in %d moves.\n\n", result.Disks, result.ExpectedMoves)
	} else {
		fmt.Fprintf(&b, "Auto-solve started: %d disks, %d moves. Poll game_state to follow it or cancel_solve to stop.\n\n",
			result.Disks, result.ExpectedMoves)
	}
	b.WriteString(formatGameState(result.GameState))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCancelSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var state service.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/solve/cancel"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Auto-solve cancelled.\n\n" + formatGameState(&state)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	disks := request.GetInt("disks", 0)

	var solution service.SolutionResponse
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/solution/%d", disks), nil, &solution); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	moves := make([]string, len(solution.Moves))
	for i, m := range solution.Moves {
		moves[i] = m.String()
	}
	result := fmt.Sprintf("Optimal solution for %d disks (%d moves):\n%s\n",
		solution.Disks, solution.MoveCount, strings.Join(moves, ", "))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Pegs: %d, Default disks: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.PegCount, config.DefaultDisks)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`Tower of Hanoi - Complete Instructions

GAME OBJECTIVE:
Move every disk from peg 0 to the last peg (peg 2 on the classic board).

RULES:
• Only the top disk of a peg can move
• A disk may only rest on an empty peg or on a larger disk
• An illegal move is rejected and the disk stays where it was; it does not count
• The minimum number of moves for n disks is 2^n - 1

DISK COUNTS:
• %d to %d disks; start_game changes the count and restacks the tower

AUTO-SOLVE:
• auto_solve resets the puzzle and animates the optimal solution
• Moves are rejected while the solver runs; cancel_solve stops it
• start_game also stops a running solve

READING THE BOARD:
Pegs are drawn bottom to top. Each disk shows its size, 0 being the smallest:

   |        |        |
   0        |        |
  =1=       |        |
 ==2==      |        |
-------  -------  -------
   0        1        2

STRATEGY:
• To move n disks from A to C: move n-1 disks to B, move the largest to C, then move
  the n-1 disks from B onto C
• With an odd disk count the smallest disk cycles 0 -> 2 -> 1 -> 0; with an even count
  it cycles 0 -> 1 -> 2 -> 0
• Every other move is the smallest disk; the move in between is the only legal move
  that does not touch it

TOOLS:
• move_disk {session_id, from, to, intent}
• bulk_move {session_id, moves: [{from, to}, ...], intent} - up to %d moves
• solution {disks} - returns the optimal sequence
`, engine.MinDisks, engine.MaxDisks, engine.MaxBulkMoves)

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *service.GameState) string {
	if state == nil || state.Frame == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Disks: %d | Moves: %d (minimum %d) | Target peg: %d\n",
		state.DiskCount, state.MoveCount, state.MinimumMoves, state.TargetPeg)

	switch {
	case state.Solved:
		b.WriteString("Status: SOLVED\n")
	case state.Solving:
		b.WriteString("Status: auto-solving\n")
	case state.Dragging:
		b.WriteString("Status: disk being dragged\n")
	default:
		b.WriteString("Status: in progress\n")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	if state.InFlight != nil {
		fmt.Fprintf(&b, "In flight: disk %d\n", state.InFlight.Size)
	}

	b.WriteString("\n")
	b.WriteString(formatPegs(state.Frame))
	return b.String()
}

// formatPegs draws the pegs as ASCII art, largest disks at the bottom
func formatPegs(frame *engine.Frame) string {
	height := frame.DiskCount
	for _, peg := range frame.Pegs {
		height = max(height, len(peg))
	}
	half := height
	width := 2*half + 1

	center := func(s string) string {
		pad := width - len(s)
		return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
	}

	var b strings.Builder
	for row := height; row >= 0; row-- {
		cells := make([]string, len(frame.Pegs))
		for i, peg := range frame.Pegs {
			if row < len(peg) {
				size := peg[row].Size
				label := fmt.Sprint(size)
				bar := strings.Repeat("=", size)
				cells[i] = center(bar + label + bar)
			} else {
				cells[i] = center("|")
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " ") + "\n")
	}

	bases := make([]string, len(frame.Pegs))
	labels := make([]string, len(frame.Pegs))
	for i := range frame.Pegs {
		bases[i] = strings.Repeat("-", width)
		labels[i] = center(fmt.Sprint(i))
	}
	b.WriteString(strings.Join(bases, "  ") + "\n")
	b.WriteString(strings.TrimRight(strings.Join(labels, "  "), " ") + "\n")
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Moved disk %d from peg %d to peg %d\n", result.Drop.Disk, result.Drop.From, result.Drop.To)
	} else {
		fmt.Fprintf(&b, "✗ Move rejected: %s\n", result.Message)
	}
	if result.Drop.Solved {
		b.WriteString("🎉 Puzzle solved!\n")
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d/%d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")

	for i, drop := range result.Results {
		status := "✓"
		if !drop.Committed {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. disk %d: %d->%d %s\n", i+1, drop.Disk, drop.From, drop.To, status)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		fmt.Fprintf(&b, "%d. disk %d: %d->%d [%s]\n",
			move.MoveNumber, move.Disk, move.From, move.To, move.Origin)
	}
	if len(history.Moves) == 0 {
		b.WriteString("(no moves)\n")
	}

	return b.String()
}
