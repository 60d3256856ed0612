package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/wricardo/mcp-training/hanoi/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions    SessionManager
	configs     ConfigManager
	broadcaster Broadcaster
	sleeper     engine.Sleeper
	logger      *slog.Logger
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithBroadcaster routes frames and events to live clients
func WithBroadcaster(b Broadcaster) Option {
	return func(s *gameServiceImpl) { s.broadcaster = b }
}

// WithSleeper replaces the timer used between auto-solve steps
func WithSleeper(sleeper engine.Sleeper) Option {
	return func(s *gameServiceImpl) { s.sleeper = sleeper }
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = logger }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		sleeper:  engine.TimerSleeper{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// attach wires the session's engine to the broadcaster
func (s *gameServiceImpl) attach(sess *Session) {
	id := sess.ID
	sink := engine.RenderFunc(func(frame *engine.Frame) {
		if s.broadcaster != nil {
			s.broadcaster.BroadcastFrame(id, frame)
		}
	})
	notifier := engine.NotifyFunc(func(message string) {
		s.logger.Info("notification", "session", id, "message", message)
		s.broadcastEvent(id, EventNotify, message)
	})
	sess.Engine.Bind(sink, notifier)
}

func (s *gameServiceImpl) broadcastEvent(sessionID, eventType, message string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastEvent(sessionID, Event{Type: eventType, Message: message, Timestamp: time.Now()})
}

// snapshotLocked builds the client view. The caller holds the session lock.
func (s *gameServiceImpl) snapshotLocked(sess *Session) *GameState {
	e := sess.Engine
	return &GameState{
		Frame:        e.Frame(),
		Message:      e.Message(),
		ConfigName:   s.getConfigID(sess.Config.Name),
		TargetPeg:    e.TargetPeg(),
		MinimumMoves: engine.MinimumMoves(e.GetState().DiskCount),
	}
}

func (s *gameServiceImpl) snapshot(sess *Session) *GameState {
	sess.Lock()
	defer sess.Unlock()
	return s.snapshotLocked(sess)
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	sess.Lock()
	defer sess.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name), // Return config_id consistently
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      s.snapshotLocked(sess),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session. disks of 0 keeps the profile default.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, disks int) (*SessionInfo, error) {
	if disks != 0 {
		if err := engine.ValidateDiskCount(disks); err != nil {
			return nil, err
		}
	}

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.attach(sess)

	if disks != 0 && disks != config.DefaultDisks {
		sess.Lock()
		err := sess.Engine.StartGame(disks)
		sess.Unlock()
		if err != nil {
			_ = s.sessions.Delete(sess.ID)
			return nil, err
		}
	}

	s.logger.Info("session created", "session", sess.ID, "config", config.Name, "disks", sess.Engine.GetState().DiskCount)

	info := s.sessionInfo(sess)
	if configName != "" {
		info.ConfigName = configName
	}
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession stops any auto-solve and removes the session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}

	sess.Lock()
	sess.CancelSolve()
	sess.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", "session", sess.ID)
	return nil
}

// StartGame stops any auto-solve and restacks the puzzle with the given disk count.
// disks of 0 keeps the current count.
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID string, disks int) (*GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if disks == 0 {
		disks = sess.Engine.GetState().DiskCount
	}
	// the engine rejects and announces a bad count before touching the puzzle
	if err := sess.Engine.StartGame(disks); err != nil {
		return nil, err
	}
	// the solve goroutine checks its context under this lock before stepping again
	if sess.CancelSolve() {
		s.broadcastEvent(sess.ID, EventSolveCancelled, "")
	}

	s.logger.Info("game started", "session", sess.ID, "disks", disks)
	s.broadcastEvent(sess.ID, EventGameStarted, fmt.Sprintf("%d disks", disks))
	return s.snapshotLocked(sess), nil
}

// PointerDown forwards a pointer press to the session's gesture controller
func (s *gameServiceImpl) PointerDown(ctx context.Context, sessionID string, x, y float64) (*PointerResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	grabbed, err := sess.Engine.PointerDown(x, y)
	if err != nil {
		return nil, err
	}
	return &PointerResult{Action: "down", Grabbed: grabbed, GameState: s.snapshotLocked(sess)}, nil
}

// PointerMove forwards pointer motion to the session's gesture controller
func (s *gameServiceImpl) PointerMove(ctx context.Context, sessionID string, x, y float64) (*PointerResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	moved, err := sess.Engine.PointerMove(x, y)
	if err != nil {
		return nil, err
	}
	return &PointerResult{Action: "move", Moved: moved, GameState: s.snapshotLocked(sess)}, nil
}

// PointerUp forwards a pointer release to the session's gesture controller
func (s *gameServiceImpl) PointerUp(ctx context.Context, sessionID string, x, y float64) (*PointerResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	drop, err := sess.Engine.PointerUp(x, y)
	if err != nil {
		s.logInvariant(sess.ID, "pointer up", err)
		return nil, err
	}
	result := &PointerResult{Action: "up", GameState: s.snapshotLocked(sess)}
	if drop.Handled {
		result.Drop = &drop
		s.logDrop(sess, drop, engine.OriginDrag)
	}
	return result, nil
}

// MoveDisk moves the top disk of one peg to another
func (s *gameServiceImpl) MoveDisk(ctx context.Context, sessionID string, from, to int) (*MoveResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	drop, err := sess.Engine.MoveDisk(from, to)
	if err != nil {
		s.logInvariant(sess.ID, "move disk", err)
		return nil, err
	}
	s.logDrop(sess, drop, engine.OriginAPI)

	message := sess.Engine.Message()
	if !drop.Committed {
		message = fmt.Sprintf("disk %d cannot rest on peg %d", drop.Disk, to)
	}
	return &MoveResult{
		Success:   drop.Committed,
		Drop:      drop,
		Message:   message,
		GameState: s.snapshotLocked(sess),
	}, nil
}

// BulkMove applies several moves in order, stopping at the first rejected one
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []engine.Move) (*BulkMoveResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{RequestedMoves: len(moves), Results: []engine.DropResult{}}
	if len(moves) > engine.MaxBulkMoves {
		moves = moves[:engine.MaxBulkMoves]
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
	}

	sess.Lock()
	defer sess.Unlock()

	for i, m := range moves {
		drop, err := sess.Engine.MoveDisk(m.From, m.To)
		if err != nil {
			s.logInvariant(sess.ID, "bulk move", err)
			result.StoppedReason = err.Error()
			result.StoppedOnMove = i + 1
			break
		}
		result.Results = append(result.Results, drop)
		s.logDrop(sess, drop, engine.OriginAPI)
		if !drop.Committed {
			result.StoppedReason = fmt.Sprintf("disk %d cannot rest on peg %d", drop.Disk, m.To)
			result.StoppedOnMove = i + 1
			break
		}
		result.MovesExecuted++
		if drop.Solved {
			if i < len(moves)-1 {
				result.StoppedReason = "puzzle solved"
				result.StoppedOnMove = i + 1
			}
			break
		}
	}

	result.Success = result.StoppedReason == "" || result.StoppedReason == "puzzle solved"
	result.GameState = s.snapshotLocked(sess)
	return result, nil
}

// AutoSolve resets the puzzle and animates the canonical solution in the background.
// With wait set it returns once the animation ends or ctx is done.
func (s *gameServiceImpl) AutoSolve(ctx context.Context, sessionID string, wait bool) (*SolveResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	if err := sess.Engine.StartSolve(); err != nil {
		sess.Unlock()
		return nil, err
	}
	disks := sess.Engine.GetState().DiskCount
	run := s.startSolveLocked(sess)
	sess.Unlock()

	s.logger.Info("auto-solve started", "session", sess.ID, "disks", disks)
	s.broadcastEvent(sess.ID, EventSolveStarted, fmt.Sprintf("%d moves", engine.MinimumMoves(disks)))

	result := &SolveResult{Started: true, Disks: disks, ExpectedMoves: engine.MinimumMoves(disks)}
	if wait {
		select {
		case <-run.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if run.err != nil && !errors.Is(run.err, context.Canceled) {
			return nil, run.err
		}
		result.Completed = run.err == nil
	}
	result.GameState = s.snapshot(sess)
	return result, nil
}

func (s *gameServiceImpl) startSolveLocked(sess *Session) *solveRun {
	ctx, cancel := context.WithCancel(context.Background())
	run := &solveRun{cancel: cancel, done: make(chan struct{})}
	sess.solve = run
	go s.runSolve(ctx, sess, run)
	return run
}

// runSolve steps the animation under the session lock and sleeps outside it
func (s *gameServiceImpl) runSolve(ctx context.Context, sess *Session, run *solveRun) {
	defer close(run.done)
	defer run.cancel()

	step := engine.StepFunc(func() (engine.Tick, error) {
		sess.Lock()
		defer sess.Unlock()
		if err := ctx.Err(); err != nil {
			return engine.Tick{}, err
		}
		return sess.Engine.SolveStep()
	})
	err := engine.Run(ctx, step, s.sleeper)

	sess.Lock()
	if sess.solve == run {
		sess.solve = nil
	}
	moves := sess.Engine.GetState().MoveCount
	sess.Unlock()
	run.err = err

	switch {
	case err == nil:
		s.logger.Info("auto-solve finished", "session", sess.ID, "moves", moves)
		s.broadcastEvent(sess.ID, EventSolveFinished, fmt.Sprintf("%d moves", moves))
	case errors.Is(err, context.Canceled):
		s.logger.Info("auto-solve cancelled", "session", sess.ID, "moves", moves)
	default:
		s.logger.Error("auto-solve failed", "session", sess.ID, "error", err)
		s.broadcastEvent(sess.ID, EventSolveFailed, err.Error())
	}
}

// CancelSolve stops a running auto-solve and returns a sliding disk to its source peg
func (s *gameServiceImpl) CancelSolve(ctx context.Context, sessionID string) (*GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if !sess.CancelSolve() && !sess.Engine.Solving() {
		return nil, engine.ErrNoSolve
	}
	if sess.Engine.Solving() {
		if err := sess.Engine.CancelSolve(); err != nil {
			s.logInvariant(sess.ID, "cancel solve", err)
			return nil, err
		}
	}
	s.broadcastEvent(sess.ID, EventSolveCancelled, "")
	return s.snapshotLocked(sess), nil
}

// GetGameState retrieves the current puzzle view
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	history := append([]engine.MoveRecord(nil), sess.Engine.GetMoveHistory()...)
	sess.Unlock()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []engine.MoveRecord{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Solution returns the canonical move list for disks
func (s *gameServiceImpl) Solution(ctx context.Context, disks int) (*SolutionResponse, error) {
	if err := engine.ValidateDiskCount(disks); err != nil {
		return nil, err
	}
	moves := engine.Solution(disks)
	return &SolutionResponse{Disks: disks, MoveCount: len(moves), Moves: moves}, nil
}

// ListConfigs returns available puzzle profiles
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific puzzle profile
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a puzzle profile to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) logDrop(sess *Session, drop engine.DropResult, origin engine.MoveOrigin) {
	if !drop.Committed {
		s.logger.Debug("drop reverted", "session", sess.ID, "disk", drop.Disk, "peg", drop.From, "origin", origin)
		return
	}
	s.logger.Info("move",
		"session", sess.ID,
		"disk", drop.Disk,
		"from", drop.From,
		"to", drop.To,
		"origin", origin,
		"moves", sess.Engine.GetState().MoveCount,
		"solved", drop.Solved,
	)
	s.broadcastEvent(sess.ID, EventMove, fmt.Sprintf("disk %d: %d->%d", drop.Disk, drop.From, drop.To))
}

func (s *gameServiceImpl) logInvariant(sessionID, op string, err error) {
	if engine.IsInvariantError(err) {
		s.logger.Error("puzzle invariant violated", "session", sessionID, "op", op, "error", err)
	}
}
