package service

import (
	"time"

	"github.com/wricardo/mcp-training/hanoi/game/engine"
)

// Event types pushed to live clients
const (
	EventNotify         = "notify"
	EventMove           = "move"
	EventGameStarted    = "game_started"
	EventSolveStarted   = "solve_started"
	EventSolveFinished  = "solve_finished"
	EventSolveCancelled = "solve_cancelled"
	EventSolveFailed    = "solve_failed"
)

// GameState is the client-facing view of a session's puzzle
type GameState struct {
	*engine.Frame
	Message      string `json:"message"`
	ConfigName   string `json:"config_name"`
	TargetPeg    int    `json:"target_peg"`
	MinimumMoves int    `json:"minimum_moves"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *GameState         `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// PointerResult contains the result of a pointer event
type PointerResult struct {
	Action    string             `json:"action"`
	Grabbed   bool               `json:"grabbed,omitempty"`
	Moved     bool               `json:"moved,omitempty"`
	Drop      *engine.DropResult `json:"drop,omitempty"`
	GameState *GameState         `json:"game_state"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	Drop      engine.DropResult `json:"drop"`
	Message   string            `json:"message"`
	GameState *GameState        `json:"game_state"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int                 `json:"moves_executed"`
	RequestedMoves int                 `json:"requested_moves"`
	Success        bool                `json:"success"`
	Results        []engine.DropResult `json:"results"`
	StoppedReason  string              `json:"stopped_reason,omitempty"`
	StoppedOnMove  int                 `json:"stopped_on_move,omitempty"` // 1-based index of the move that caused stop
	Truncated      bool                `json:"truncated,omitempty"`
	Limit          int                 `json:"limit,omitempty"`
	GameState      *GameState          `json:"game_state"`
}

// SolveResult describes an auto-solve request
type SolveResult struct {
	Started       bool       `json:"started"`
	Completed     bool       `json:"completed"`
	Disks         int        `json:"disks"`
	ExpectedMoves int        `json:"expected_moves"`
	GameState     *GameState `json:"game_state"`
}

// SolutionResponse lists the canonical solution for a disk count
type SolutionResponse struct {
	Disks     int           `json:"disks"`
	MoveCount int           `json:"move_count"`
	Moves     []engine.Move `json:"moves"`
}

// Event is a notification pushed to live clients of a session
type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveRecord `json:"moves"`
	TotalMoves  int                 `json:"total_moves"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a puzzle profile
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	PegCount     int    `json:"peg_count"`
	DefaultDisks int    `json:"default_disks"`
}
