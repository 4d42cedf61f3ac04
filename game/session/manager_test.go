package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/fifteen/game/board"
	"github.com/wricardo/fifteen/game/engine"
	"github.com/wricardo/fifteen/game/service"
)

// createTestConfig is a 3x3 preset with the blank in the middle
func createTestConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Width:       3,
		Initializer: engine.InitializerFixed,
		Permutation: []board.Optional[int]{
			board.Some(1), board.Some(2), board.Some(3),
			board.Some(4), board.None[int](), board.Some(5),
			board.Some(7), board.Some(8), board.Some(6),
		},
	}
}

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "ab12", want: "ab12"},
		{in: "AB12", want: "ab12"},
		{in: "my_game-2", want: "my_game-2"},
		{in: "", wantErr: true},
		{in: "../escape", wantErr: true},
		{in: "a b", wantErr: true},
		{in: "key:suffix", wantErr: true},
		{in: fmt.Sprintf("%065d", 0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := canonicalID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSessionID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	sess, err := manager.Create("Puzzle-1", config)
	require.NoError(t, err)
	assert.Equal(t, "puzzle-1", sess.ID, "IDs are stored lowercase")
	require.NotNil(t, sess.Engine)
	assert.Equal(t, engine.Position{Row: 2, Col: 2}, sess.Engine.GetBlankPosition())
	assert.Equal(t, sess.CreatedAt, sess.LastAccessedAt)

	generated, err := manager.Create("", config)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{4}$`, generated.ID)

	_, err = manager.Create("PUZZLE-1", config)
	assert.ErrorIs(t, err, ErrSessionAlreadyExists)

	_, err = manager.Create("../escape", config)
	assert.ErrorIs(t, err, ErrInvalidSessionID)

	broken := createTestConfig()
	broken.Name = ""
	_, err = manager.Create("broken", broken)
	assert.Error(t, err)

	assert.Equal(t, 2, manager.Count())
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("get-test", createTestConfig())
	require.NoError(t, err)

	for _, id := range []string{"get-test", "GET-TEST", "Get-Test"} {
		got, err := manager.Get(id)
		require.NoError(t, err, id)
		assert.Same(t, created, got, id)
	}

	for _, id := range []string{"missing", "", "../get-test"} {
		_, err := manager.Get(id)
		assert.ErrorIs(t, err, service.ErrSessionNotFound, id)
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("shared", config)
	require.NoError(t, err)

	second, err := manager.GetOrCreate("SHARED", config)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, manager.Count())

	_, err = manager.GetOrCreate("not valid", config)
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	_, err := manager.Create("gone", createTestConfig())
	require.NoError(t, err)

	require.NoError(t, manager.Delete("GONE"))
	_, err = manager.Get("gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, manager.Delete("gone"), ErrSessionNotFound)
	assert.ErrorIs(t, manager.Delete("../gone"), ErrSessionNotFound)
	assert.ErrorIs(t, manager.DeleteFromMemory("gone"), ErrSessionNotFound)
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	assert.Empty(t, manager.List())

	want := map[string]bool{"l1": true, "l2": true, "l3": true}
	for id := range want {
		_, err := manager.Create(id, createTestConfig())
		require.NoError(t, err)
	}

	got := map[string]bool{}
	for _, s := range manager.List() {
		got[s.ID] = true
	}
	assert.Equal(t, want, got)
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	fresh, err := manager.Create("fresh", config)
	require.NoError(t, err)
	stale, err := manager.Create("stale", config)
	require.NoError(t, err)

	stale.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	fresh.LastAccessedAt = time.Now()

	assert.Equal(t, 1, manager.CleanupExpiredSessions(time.Hour))
	assert.Equal(t, 0, manager.CleanupExpiredSessions(time.Hour))

	_, err = manager.Get("stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get("fresh")
	assert.NoError(t, err)
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	sess, err := manager.Create("touch", createTestConfig())
	require.NoError(t, err)

	sess.LastAccessedAt = time.Now().Add(-time.Minute)
	before := sess.LastAccessedAt

	require.NoError(t, manager.UpdateLastAccessed("TOUCH"))
	assert.True(t, sess.LastAccessedAt.After(before))

	assert.ErrorIs(t, manager.UpdateLastAccessed("nobody"), ErrSessionNotFound)
}

func TestManager_SaveWithoutStore(t *testing.T) {
	manager := NewManager()
	assert.NoError(t, manager.Save("anything"), "no store means nothing to save")
	assert.NoError(t, manager.SaveAllSessions())
	assert.NoError(t, manager.LoadPersistedSessions())
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// two goroutines race for each ID
			id := fmt.Sprintf("race-%d", n/2)
			sess, err := manager.GetOrCreate(id, config)
			if err != nil {
				errs <- err
				return
			}
			if err := manager.UpdateLastAccessed(sess.ID); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	assert.Equal(t, 50, manager.Count())
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.Create("iso-1", config)
	require.NoError(t, err)
	second, err := manager.Create("iso-2", config)
	require.NoError(t, err)

	// tile 5 slides left in the first session only
	require.True(t, first.Engine.Move("left"))

	assert.Equal(t, engine.Position{Row: 2, Col: 3}, first.Engine.GetBlankPosition())
	assert.Equal(t, engine.Position{Row: 2, Col: 2}, second.Engine.GetBlankPosition())
	assert.Equal(t, 0, second.Engine.GetMoveCount())
}

func TestManager_GeneratedIDsAreUnique(t *testing.T) {
	manager := NewManager()
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		sess, err := manager.Create("", createTestConfig())
		require.NoError(t, err)
		require.False(t, seen[sess.ID], "duplicate ID %s", sess.ID)
		seen[sess.ID] = true
	}
}
