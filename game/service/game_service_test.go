package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/wricardo/fifteen/game/board"
	"github.com/wricardo/fifteen/game/engine"
	"github.com/wricardo/fifteen/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("t%03d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

func tiles(values ...int) []board.Optional[int] {
	result := make([]board.Optional[int], len(values))
	for i, v := range values {
		if v != 0 {
			result[i] = board.Some(v)
		}
	}
	return result
}

// Blank at (2,2); "left" then "up" solves it
func newTestConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test",
		Description: "Test configuration",
		Width:       3,
		Initializer: engine.InitializerFixed,
		Permutation: tiles(
			1, 2, 3,
			4, 0, 5,
			7, 8, 6,
		),
	}
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := newTestConfig()
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    defaultConfig,
			"default": defaultConfig,
		},
		saved: map[string]*engine.GameConfig{},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Width:       config.Width,
			Initializer: config.Initializer,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ConfigID < result[j].ConfigID })
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.saved[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager, string) {
	t.Helper()
	sessions := NewMockSessionManager()
	svc := service.NewGameService(sessions, NewMockConfigManager())

	info, err := svc.CreateSession(context.Background(), "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return svc, sessions, info.ID
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	tests := []struct {
		name       string
		configName string
		wantConfig string
		wantErr    error
	}{
		{"named config", "test", "test", nil},
		{"default config", "", "default", nil},
		{"unknown config", "nope", "", service.ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.configName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession() error = %v", err)
			}
			if info.ID == "" || info.GameState == nil || info.GameConfig == nil {
				t.Errorf("Incomplete session info: %+v", info)
			}
			if info.ConfigName != tt.wantConfig {
				t.Errorf("Expected config %q, got %q", tt.wantConfig, info.ConfigName)
			}
		})
	}
}

func TestGameService_GetAndDeleteSession(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	info, err := svc.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if info.ID != id || info.GameState == nil {
		t.Errorf("Unexpected session info: %+v", info)
	}

	if _, err := svc.GetSession(ctx, "zzzz"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	if err := svc.DeleteSession(ctx, id); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if err := svc.DeleteSession(ctx, id); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	svc, sessions, id := newTestService(t)

	tests := []struct {
		name        string
		sessionID   string
		direction   string
		reset       bool
		wantErr     bool
		wantSuccess bool
	}{
		{"valid move up", id, "up", false, false, true},
		{"valid move with reset", id, "right", true, false, true},
		{"invalid session", "nonexistent", "up", false, true, false},
		{"invalid direction", id, "diagonal", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Move(ctx, tt.sessionID, tt.direction, tt.reset)
			if (err != nil) != tt.wantErr {
				t.Errorf("Move() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("Move() success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if tt.reset && result.Events[0].Type != service.EventReset {
				t.Errorf("Expected reset event first, got %+v", result.Events)
			}
		})
	}

	if sessions.saves == 0 {
		t.Error("Expected moves to persist the session")
	}
}

func TestGameService_MoveStepAndEvents(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	res, err := svc.Move(ctx, id, "left", false)
	if err != nil {
		t.Fatalf("Move left failed: %v", err)
	}
	if !res.Success || res.Step == nil {
		t.Fatalf("Expected success with step info, got %+v", res)
	}

	step := res.Step
	if step.Tile != 5 || step.Dir != "left" {
		t.Errorf("Unexpected step: %+v", step)
	}
	if step.From != (engine.Position{Row: 2, Col: 3}) || step.To != (engine.Position{Row: 2, Col: 2}) {
		t.Errorf("Unexpected step positions: %+v", step)
	}
	if len(res.Events) != 1 || res.Events[0].Type != service.EventSlide || res.Events[0].Tile != 5 {
		t.Errorf("Expected one slide event, got %+v", res.Events)
	}

	// Blank now at (2,3): nothing right of it to slide left
	res, _ = svc.Move(ctx, id, "left", false)
	if res.Success || res.Step != nil {
		t.Errorf("Expected failed move without step, got %+v", res)
	}
	if len(res.Events) != 1 || res.Events[0].Type != service.EventNoMove {
		t.Errorf("Expected no_move event, got %+v", res.Events)
	}

	res, _ = svc.Move(ctx, id, "up", false)
	if !res.Success || !res.Step.Victory || !res.GameState.Won {
		t.Fatalf("Expected winning move, got %+v", res)
	}
	if len(res.Events) != 2 || res.Events[1].Type != service.EventVictory {
		t.Errorf("Expected slide then victory events, got %+v", res.Events)
	}
}

func TestGameService_BulkMove(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		moves         []string
		wantExecuted  int
		wantSuccess   bool
		wantCode      string
		wantStoppedOn int
	}{
		{"solves exactly", []string{"left", "up"}, 2, true, service.StopVictory, 0},
		{"solves with moves left over", []string{"left", "up", "down"}, 2, true, service.StopVictory, 2},
		{"blocked at boundary", []string{"left", "left", "up"}, 1, false, service.StopNothingToSlide, 2},
		{"invalid direction", []string{"up", "sideways"}, 1, false, service.StopInvalidDirection, 2},
		{"partial", []string{"down", "up"}, 2, true, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, id := newTestService(t)

			result, err := svc.BulkMove(ctx, id, tt.moves, false)
			if err != nil {
				t.Fatalf("BulkMove failed: %v", err)
			}
			if result.MovesExecuted != tt.wantExecuted {
				t.Errorf("Expected %d moves executed, got %d", tt.wantExecuted, result.MovesExecuted)
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("Expected success %v, got %v (%s)", tt.wantSuccess, result.Success, result.StoppedReason)
			}
			if result.StopReasonCode != tt.wantCode {
				t.Errorf("Expected stop code %q, got %q", tt.wantCode, result.StopReasonCode)
			}
			if result.StoppedOnMove != tt.wantStoppedOn {
				t.Errorf("Expected stop on move %d, got %d", tt.wantStoppedOn, result.StoppedOnMove)
			}
			if len(result.Steps) != tt.wantExecuted {
				t.Errorf("Expected %d steps, got %d", tt.wantExecuted, len(result.Steps))
			}
			if result.RequestedMoves != len(tt.moves) {
				t.Errorf("Expected %d requested moves, got %d", len(tt.moves), result.RequestedMoves)
			}
			if result.StartBlank != (engine.Position{Row: 2, Col: 2}) {
				t.Errorf("Unexpected start blank %+v", result.StartBlank)
			}
		})
	}
}

func TestGameService_BulkMoveAfterVictory(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	svc.BulkMove(ctx, id, []string{"left", "up"}, false)

	result, err := svc.BulkMove(ctx, id, []string{"down"}, false)
	if err != nil {
		t.Fatalf("BulkMove failed: %v", err)
	}
	if result.Success || result.StopReasonCode != service.StopAlreadySolved {
		t.Errorf("Expected already_solved stop, got %+v", result)
	}

	// Reset lets the same moves run again
	result, _ = svc.BulkMove(ctx, id, []string{"left", "up"}, true)
	if !result.GameOver || result.MovesExecuted != 2 {
		t.Errorf("Expected victory after reset, got %+v", result)
	}
	if result.Events[0].Type != service.EventReset {
		t.Errorf("Expected reset event first, got %+v", result.Events[0])
	}
}

func TestGameService_BulkMoveTruncates(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	moves := make([]string, 0, engine.MaxBulkMoves+10)
	for len(moves) < engine.MaxBulkMoves+10 {
		moves = append(moves, "down", "up")
	}

	result, err := svc.BulkMove(ctx, id, moves, false)
	if err != nil {
		t.Fatalf("BulkMove failed: %v", err)
	}
	if !result.Truncated || result.Limit != engine.MaxBulkMoves {
		t.Errorf("Expected truncation at %d, got %+v", engine.MaxBulkMoves, result)
	}
	if result.MovesExecuted != engine.MaxBulkMoves {
		t.Errorf("Expected %d moves executed, got %d", engine.MaxBulkMoves, result.MovesExecuted)
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	// Five moves, blank oscillating between (2,2) and (1,2)
	svc.BulkMove(ctx, id, []string{"down", "up", "down", "up", "down"}, false)

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantCount int
		wantFirst int
		wantNext  bool
		wantPrev  bool
	}{
		{"defaults are newest first", service.HistoryOptions{}, 5, 5, false, false},
		{"ascending", service.HistoryOptions{Order: "asc"}, 5, 1, false, false},
		{"first page", service.HistoryOptions{Limit: 2, Order: "asc"}, 2, 1, true, false},
		{"middle page desc", service.HistoryOptions{Page: 2, Limit: 2}, 2, 3, true, true},
		{"last page", service.HistoryOptions{Page: 3, Limit: 2, Order: "ASC"}, 1, 5, false, true},
		{"beyond last page", service.HistoryOptions{Page: 9, Limit: 2}, 0, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := svc.GetMoveHistory(ctx, id, tt.opts)
			if err != nil {
				t.Fatalf("GetMoveHistory failed: %v", err)
			}
			if len(history.Moves) != tt.wantCount {
				t.Fatalf("Expected %d moves, got %d", tt.wantCount, len(history.Moves))
			}
			if tt.wantCount > 0 && history.Moves[0].MoveNumber != tt.wantFirst {
				t.Errorf("Expected first move number %d, got %d", tt.wantFirst, history.Moves[0].MoveNumber)
			}
			if history.HasNext != tt.wantNext || history.HasPrevious != tt.wantPrev {
				t.Errorf("Unexpected paging flags next=%v prev=%v", history.HasNext, history.HasPrevious)
			}
			if history.TotalMoves != 5 {
				t.Errorf("Expected 5 total moves, got %d", history.TotalMoves)
			}
		})
	}

	if _, err := svc.GetMoveHistory(ctx, "none", service.HistoryOptions{}); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSession(ctx, "test"); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(sessions))
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	svc.Move(ctx, id, "left", false)

	state, err := svc.Reset(ctx, id)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Moves != 0 || state.Blank != (engine.Position{Row: 2, Col: 2}) {
		t.Errorf("Expected initial arrangement after reset, got %+v", state)
	}
	if state.TotalMoves != 1 {
		t.Errorf("Expected cumulative history to survive reset, got %d", state.TotalMoves)
	}

	current, err := svc.GetGameState(ctx, id)
	if err != nil || current != state {
		t.Errorf("Expected GetGameState to return the reset state, got %v", err)
	}

	if _, err := svc.Reset(ctx, "none"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	configs := NewMockConfigManager()
	svc := service.NewGameService(NewMockSessionManager(), configs)

	list, err := svc.ListConfigs(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("Expected 2 configs, got %d (%v)", len(list), err)
	}

	if _, err := svc.LoadConfig(ctx, "test"); err != nil {
		t.Errorf("LoadConfig failed: %v", err)
	}

	if err := svc.SaveConfig(ctx, "new", newTestConfig()); err != nil {
		t.Errorf("SaveConfig failed: %v", err)
	}
	if configs.saved["new"] == nil {
		t.Error("Expected config to reach the config manager")
	}
}
