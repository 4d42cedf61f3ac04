// Package websocket pushes live puzzle updates to browser viewers.
//
// Clients connect to /ws?session=<id> and receive JSON messages:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//	{"session_id": "a1b2", "event": "victory", "data": {...}}
//
// A Hub owns every connection. Registration, removal and fan-out all run on
// the Run goroutine, so BroadcastToSession and BroadcastEvent only queue a
// message and never block the caller; when the queue is full the message is
// dropped and logged. Each client gets a UUID for log correlation and its own
// read and write pumps with ping/pong keepalive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
