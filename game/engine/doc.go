// Package engine provides the core game logic for the Game of Fifteen.
//
// The engine package implements:
//   - The sliding-tile state machine over a board.GameBoard
//   - Initial permutation sources (fixed presets and seeded shuffles)
//   - Win detection and blank-swapping move transitions
//   - Game state snapshots, move history and persistence restore
//   - Configuration loading and validation
//
// Core Types:
//
// Fifteen is the bare puzzle: it owns a width x width board of optional
// integers and an Initializer. GameEngine wraps a Fifteen with the session
// bookkeeping used by the service layer (history, messages, reset). GameConfig
// describes a preset loaded from JSON.
//
// Usage:
//
//	puzzle, err := engine.NewFifteen(engine.NewShuffleInitializer(0, true))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := puzzle.Initialize(); err != nil {
//		log.Fatal(err)
//	}
//
//	// Slide the tile below the blank up into it
//	puzzle.ProcessMove(board.Up)
//	won := puzzle.HasWon()
//
// Game Rules:
//
// A move names the direction a tile slides: the tile on the opposite side of
// the blank moves into it. A move with nothing to slide is ignored.
// The puzzle is solved when the tiles read 1, 2, 3, ... in row-major order.
package engine
