// Package service provides the business logic layer for the Tower of Hanoi game.
//
// The service package implements:
//   - Multi-session puzzle management
//   - Pointer, programmatic and bulk moves
//   - Background auto-solve with cancellation
//   - Move history pagination
//   - Profile listing and loading
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and validates puzzle profiles.
// Broadcaster receives every frame and notification so transports can push
// them to live clients.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns one engine guarded by the session lock.
// An auto-solve runs in its own goroutine that takes the lock for a single
// animation step and sleeps outside it, so pointer events, state reads and
// cancellation interleave with the animation.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithBroadcaster(hub),
//		service.WithLogger(logger),
//	)
//
//	info, err := gameService.CreateSession(ctx, "classic", 4)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.MoveDisk(ctx, info.ID, 0, 1)
//	solve, err := gameService.AutoSolve(ctx, info.ID, true)
package service
