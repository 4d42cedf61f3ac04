// Package mcp exposes the puzzle to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request to the REST API
// and the JSON answer is rendered as plain text for the agent.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: the board as right-aligned rows, "." for the blank
//   - move, bulk_move: slide tiles; a direction names where the tile goes
//   - reset_game: back to the starting arrangement
//   - move_history: paginated history plus the current segment
//   - list_configs: available presets
//   - game_instructions: rules and solving tips
//
// Serve GetMCPServer over stdio with server.ServeStdio or over HTTP with
// server.NewStreamableHTTPServer.
package mcp
