package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/fifteen/game/engine"
	"github.com/wricardo/fifteen/game/service"
)

// Client talks to the REST API of a running server
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateSession starts a session on the given preset; "" uses the server default
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}
	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// GetSession fetches an existing session
func (c *Client) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	var session service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// Reset restores the session's starting arrangement
func (c *Client) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(sessionID)+"/reset", nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

// BulkMove sends up to engine.MaxBulkMoves directions in one request
func (c *Client) BulkMove(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
	req := map[string][]string{"moves": moves}
	var result service.BulkMoveResult
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(sessionID)+"/bulk-move", req, &result); err != nil {
		return nil, fmt.Errorf("bulk move: %w", err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// RunOptions selects the session Run plays
type RunOptions struct {
	// ConfigID is the preset for a new session when SessionID is empty
	ConfigID  string
	SessionID string
	// Reset restarts an existing session before solving
	Reset bool
	Options
}

// RunResult summarizes a solved session
type RunResult struct {
	SessionID string
	Moves     []string
	Requests  int
	State     *engine.GameState
}

// Run solves a server-side session: it creates or resumes the session,
// searches for a solution locally and sends it in bulk-move batches.
func Run(ctx context.Context, c *Client, opts RunOptions) (*RunResult, error) {
	log := logrus.WithField("component", "solver")

	var session *service.SessionInfo
	var err error
	if opts.SessionID != "" {
		session, err = c.GetSession(ctx, opts.SessionID)
	} else {
		session, err = c.CreateSession(ctx, opts.ConfigID)
	}
	if err != nil {
		return nil, err
	}

	state := session.GameState
	if opts.SessionID != "" && opts.Reset {
		if state, err = c.Reset(ctx, session.ID); err != nil {
			return nil, err
		}
	}
	if state == nil {
		return nil, fmt.Errorf("session %s has no game state", session.ID)
	}

	log.WithFields(logrus.Fields{
		"session": session.ID,
		"config":  session.ConfigName,
		"width":   state.Width,
	}).Info("solving session")

	moves, err := Solve(ctx, state.Width, state.Tiles, opts.Options)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}

	result := &RunResult{SessionID: session.ID, Moves: Names(moves), State: state}
	for start := 0; start < len(result.Moves); start += engine.MaxBulkMoves {
		end := start + engine.MaxBulkMoves
		if end > len(result.Moves) {
			end = len(result.Moves)
		}
		batch := result.Moves[start:end]

		bulk, err := c.BulkMove(ctx, session.ID, batch)
		if err != nil {
			return nil, err
		}
		result.Requests++
		result.State = bulk.GameState

		log.WithFields(logrus.Fields{
			"session":  session.ID,
			"executed": bulk.MovesExecuted,
			"batch":    len(batch),
		}).Debug("batch sent")

		if bulk.MovesExecuted != len(batch) {
			return nil, fmt.Errorf("session %s: server stopped after %d of %d moves: %s",
				session.ID, start+bulk.MovesExecuted, len(result.Moves), bulk.StoppedReason)
		}
	}

	if result.State == nil || !result.State.Won {
		return nil, fmt.Errorf("session %s: moves sent but the puzzle is not solved", session.ID)
	}

	log.WithFields(logrus.Fields{
		"session": session.ID,
		"moves":   len(result.Moves),
	}).Info("session solved")
	return result, nil
}
