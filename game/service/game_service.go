package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/hanoi/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, disks int) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Manual play
	StartGame(ctx context.Context, sessionID string, disks int) (*GameState, error)
	PointerDown(ctx context.Context, sessionID string, x, y float64) (*PointerResult, error)
	PointerMove(ctx context.Context, sessionID string, x, y float64) (*PointerResult, error)
	PointerUp(ctx context.Context, sessionID string, x, y float64) (*PointerResult, error)
	MoveDisk(ctx context.Context, sessionID string, from, to int) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []engine.Move) (*BulkMoveResult, error)

	// Auto-solve
	AutoSolve(ctx context.Context, sessionID string, wait bool) (*SolveResult, error)
	CancelSolve(ctx context.Context, sessionID string) (*GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	Solution(ctx context.Context, disks int) (*SolutionResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles puzzle profile loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Broadcaster pushes frames and events to the live clients of a session
type Broadcaster interface {
	BroadcastFrame(sessionID string, frame *engine.Frame)
	BroadcastEvent(sessionID string, event Event)
}

// Session represents an active game session. The engine is not safe for
// concurrent use; hold the session lock around every engine call.
// LastAccessedAt is guarded by the same lock.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu    sync.Mutex
	solve *solveRun
}

// Lock acquires exclusive access to the session's engine
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's engine
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastAccessedAt = t
}

// LastAccessed returns the time of the most recent access
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAccessedAt
}

// Solving reports whether a solve goroutine is attached. The caller holds the lock.
func (s *Session) Solving() bool { return s.solve != nil }

// CancelSolve stops an attached solve goroutine. The caller holds the lock.
func (s *Session) CancelSolve() bool {
	if s.solve == nil {
		return false
	}
	s.solve.cancel()
	s.solve = nil
	return true
}

// solveRun tracks one auto-solve goroutine
type solveRun struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}
