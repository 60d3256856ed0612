// Package session provides session management for the Tower of Hanoi game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own engine.GameEngine, so puzzles in
// different sessions never share state.
//
// Session Identifiers:
//
// Generated sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive. Custom IDs may contain letters, digits, '-' and '_'.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//
// Cleanup:
//
// Puzzles are not persisted. CleanupExpiredSessions drops sessions idle for
// longer than a given age, except those still playing an auto-solve.
package session
