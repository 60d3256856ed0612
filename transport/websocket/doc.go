// Package websocket provides WebSocket transport for the Tower of Hanoi game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Frame and event broadcasting
//   - Pointer events from the browser canvas
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection has a read goroutine and a
// write goroutine. The Hub implements service.Broadcaster; broadcasts go
// through a bounded queue and are dropped when it is full, because the game
// service calls them while holding a session lock.
//
// Message Protocol:
//
// Messages are JSON-encoded:
//   - Incoming: {"type": "pointer_down", "x": 200, "y": 370}
//   - Outgoing: {"session_id": "abc1", "event": "frame", "frame": {...}}
//   - Outgoing: {"session_id": "abc1", "event": "notify", "message": "..."}
//
// A rejected inbound message is answered with an "error" event sent to that
// client only.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run(ctx)
//
//	hub.OnInbound(func(ctx context.Context, id string, msg websocket.Inbound) error {
//		...
//	})
//	hub.ServeWS(w, r, sessionID, frame)
package websocket
