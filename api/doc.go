// Package api provides HTTP REST API handlers for the Tower of Hanoi game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic", "disks": 4})
//   - GET /api/sessions - List sessions (sort, order, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current frame and message
//   - POST /api/sessions/{id}/start - Restack with {"disks": n}
//   - POST /api/sessions/{id}/pointer/{down|move|up} - Pointer event {"x": 200, "y": 370}
//   - POST /api/sessions/{id}/move - Move a top disk {"from": 0, "to": 2}
//   - POST /api/sessions/{id}/bulk-move - Several moves {"moves": [{"from": 0, "to": 2}]}
//   - POST /api/sessions/{id}/solve - Start the auto-solver (?wait=true blocks until done)
//   - POST /api/sessions/{id}/solve/cancel - Stop the auto-solver
//   - GET /api/sessions/{id}/history - Move history with pagination
//   - GET /api/solution/{n} - Canonical move list for n disks
//
// Configuration:
//   - GET /api/configs - List profiles
//   - POST /api/configs - Save a profile (body is a profile plus "config_id")
//   - GET /api/configs/{name} - Get a profile
//
// Live Updates:
//   - GET /ws?session={id} - WebSocket stream of frames and events, accepts pointer events
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code:
//
//	{
//	  "error": "error message",
//	  "code": 409
//	}
//
// Unknown sessions and profiles map to 404, invalid disk counts, pegs and
// profiles to 400, and requests that collide with a running drag or solve to 409.
package api
