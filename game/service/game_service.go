package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/fifteen/game/engine"
)

// Sentinels shared by the session and config layers; the api package maps
// both to 404.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// GameService is the facade the REST, websocket and MCP surfaces talk to.
// Sessions are addressed by ID and presets by config ID (file name without
// .json).
type GameService interface {
	// CreateSession deals a new puzzle from a preset; "" uses the default preset.
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Move slides one tile. A refused move is reported in the result, not
	// as an error.
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	// BulkMove applies up to engine.MaxBulkMoves directions and stops at the
	// first refused move or at victory.
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager stores running puzzles; game/session implements it
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager loads and stores presets; game/config implements it
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session is one running puzzle. The preset travels with it so a stored
// session can be restored after its preset file changes or disappears.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
