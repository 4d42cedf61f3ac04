// Package service provides the business logic layer for the Game of Fifteen server.
//
// GameService is the facade every transport (REST, websocket, MCP) talks to.
// It resolves presets through a ConfigManager, keeps sessions in a
// SessionManager and drives one engine.GameEngine per session.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left", false)
//
// Move results carry the slid tile, where it came from and where it went,
// plus events of type reset, slide, no_move and victory. BulkMove stops at
// the first move that cannot be applied or when the puzzle is solved.
//
// Every mutating call saves the session through SessionManager.Save;
// persistence failures are logged and do not fail the move.
package service
