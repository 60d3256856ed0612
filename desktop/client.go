package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Disk mirrors the server's disk snapshot
type Disk struct {
	Size  int     `json:"size"`
	Width float64 `json:"width"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Frame mirrors the server's render frame
type Frame struct {
	Pegs      [][]Disk  `json:"pegs"`
	InFlight  *Disk     `json:"in_flight,omitempty"`
	PegX      []float64 `json:"peg_x"`
	MoveCount int       `json:"move_count"`
	DiskCount int       `json:"disk_count"`
	Solved    bool      `json:"solved"`
	Solving   bool      `json:"solving"`
	Dragging  bool      `json:"dragging"`
}

// GameState is a frame plus the latest message
type GameState struct {
	Frame
	Message    string `json:"message"`
	ConfigName string `json:"config_name"`
}

// Profile holds the geometry the window is drawn with
type Profile struct {
	Name         string  `json:"name"`
	CanvasWidth  float64 `json:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height"`
	PegWidth     float64 `json:"peg_width"`
	PegHeight    float64 `json:"peg_height"`
	DiskHeight   float64 `json:"disk_height"`
}

// SessionData is the part of a session document the client uses
type SessionData struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
	GameConfig *Profile   `json:"game_config"`
}

// WSMessage is a frame or event pushed over the WebSocket
type WSMessage struct {
	SessionID string `json:"session_id"`
	Event     string `json:"event"`
	Frame     *Frame `json:"frame,omitempty"`
	Message   string `json:"message,omitempty"`
}

// PointerEvent is sent to the server in canvas coordinates
type PointerEvent struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// APIClient talks to the REST API
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the server at baseURL
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIClient) do(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to parse response: %v (body: %s)", err, string(data))
	}
	return nil
}

func sessionPath(id string, parts ...string) string {
	return "/api/sessions/" + url.PathEscape(id) + strings.Join(parts, "")
}

// CreateSession creates a session with the given profile
func (c *APIClient) CreateSession(configID string, disks int) (*SessionData, error) {
	body := map[string]interface{}{"config_id": configID}
	if disks > 0 {
		body["disks"] = disks
	}
	var session SessionData
	if err := c.do(http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession fetches a session with its profile
func (c *APIClient) GetSession(id string) (*SessionData, error) {
	var session SessionData
	if err := c.do(http.MethodGet, sessionPath(id), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetState fetches the current frame and message
func (c *APIClient) GetState(id string) (*GameState, error) {
	var state GameState
	if err := c.do(http.MethodGet, sessionPath(id, "/state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// StartGame restacks the puzzle with n disks
func (c *APIClient) StartGame(id string, disks int) error {
	return c.do(http.MethodPost, sessionPath(id, "/start"), map[string]int{"disks": disks}, nil)
}

// Solve starts the auto-solver without waiting for it
func (c *APIClient) Solve(id string) error {
	return c.do(http.MethodPost, sessionPath(id, "/solve"), nil, nil)
}

// CancelSolve stops the auto-solver
func (c *APIClient) CancelSolve(id string) error {
	return c.do(http.MethodPost, sessionPath(id, "/solve/cancel"), nil, nil)
}

// Pointer posts a pointer event when no WebSocket is connected
func (c *APIClient) Pointer(id string, ev PointerEvent) error {
	action := strings.TrimPrefix(ev.Type, "pointer_")
	return c.do(http.MethodPost, sessionPath(id, "/pointer/", action), map[string]float64{"x": ev.X, "y": ev.Y}, nil)
}

// Dial opens the session's WebSocket stream
func (c *APIClient) Dial(id string) (*websocket.Conn, error) {
	wsURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = "/ws"
	q := wsURL.Query()
	q.Set("session", id)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
