// Package mcp provides a Model Context Protocol server for the Tower of Hanoi game.
//
// The server is a thin client: every tool call is proxied to the REST API, so
// agents, browsers and terminals all share the same sessions.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: pegs drawn as ASCII art plus move count and status
//   - start_game: restack the tower with a new disk count
//   - move_disk, bulk_move: programmatic moves, each with an intent note
//   - auto_solve, cancel_solve: drive the animated solver
//   - move_history: committed moves with pagination
//   - solution: optimal move list for n disks
//   - list_configs, game_instructions: profiles and rules
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: client.HTTPHandler() answers single JSON-RPC messages over POST
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	http.Handle("/mcp", client.HTTPHandler())
package mcp
