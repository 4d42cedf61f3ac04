// Package api exposes the puzzle over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&config=ID)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Play:
//   - GET /api/sessions/{id}/state - Current board
//   - POST /api/sessions/{id}/move - Slide one tile ({"direction": "up"})
//   - POST /api/sessions/{id}/bulk-move - Slide a sequence ({"moves": ["left", "up"]})
//   - POST /api/sessions/{id}/reset - Restore the starting arrangement
//   - GET /api/sessions/{id}/history - Paginated moves (?page=1&limit=20&order=desc)
//
// Presets:
//   - GET /api/configs - List presets
//   - POST /api/configs - Save a preset (?id=name, otherwise derived from its name)
//   - GET /api/configs/{name} - Get one preset
//
// Other:
//   - GET /api/health - Liveness probe
//   - GET /ws?session=ID - Live board updates
//
// Missing sessions and presets answer 404, invalid presets and query strings 400.
// Every state change is pushed to websocket viewers of the session.
package api
