package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/fifteen/game/engine"
	"github.com/wricardo/fifteen/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const maxSessionIDLength = 64

// Manager keeps running puzzles in memory, keyed by lowercase ID, and
// mirrors every change to an optional store. It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*service.Session
	store    SessionPersistence
	log      *logrus.Entry
}

// NewManager creates a memory-only manager
func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence creates a manager backed by store. A nil store
// keeps sessions in memory only.
func NewManagerWithPersistence(store SessionPersistence) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		store:    store,
		log:      logrus.WithField("component", "sessions"),
	}
}

// canonicalID lowercases id and rejects anything that could not be used as
// a file name or key suffix
func canonicalID(id string) (string, error) {
	if id == "" || len(id) > maxSessionIDLength {
		return "", ErrInvalidSessionID
	}
	key := strings.ToLower(id)
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return "", ErrInvalidSessionID
		}
	}
	return key, nil
}

// Create starts a puzzle for config. An empty id picks a fresh 4-hex ID.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := id
	if key == "" {
		key = m.freshID()
	} else {
		var err error
		if key, err = canonicalID(id); err != nil {
			return nil, err
		}
	}
	if _, taken := m.sessions[key]; taken {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	sess := &service.Session{
		ID:             key,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key] = sess
	m.persist(sess, "create")

	return sess, nil
}

// Get returns the session with id, loading it from the store when it is
// not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	key, err := canonicalID(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	m.mu.RLock()
	sess, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if m.store == nil || !m.store.Exists(key) {
		return nil, ErrSessionNotFound
	}
	loaded, err := m.store.Load(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another caller may have loaded it meanwhile
	if cached, ok := m.sessions[key]; ok {
		return cached, nil
	}
	m.sessions[key] = loaded
	return loaded, nil
}

// GetOrCreate returns the session with id, creating it from config if missing
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		sess, err = m.Create(id, config)
		if errors.Is(err, ErrSessionAlreadyExists) {
			return m.Get(id)
		}
	}
	return sess, err
}

// List returns the sessions held in memory, in no particular order
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		list = append(list, sess)
	}
	return list
}

// Delete removes a session from memory and from the store
func (m *Manager) Delete(id string) error {
	key, err := canonicalID(id)
	if err != nil {
		return ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key]
	delete(m.sessions, key)

	if m.store != nil && m.store.Exists(key) {
		if err := m.store.Delete(key); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory drops a session from memory and keeps the stored copy
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, ok := m.sessions[key]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed marks a session as used now
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[strings.ToLower(id)]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	m.persist(sess, "access")
	return nil
}

// Save writes one session to the store. Without a store it does nothing.
func (m *Manager) Save(id string) error {
	if m.store == nil {
		return nil
	}

	m.mu.RLock()
	sess, ok := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.store.Save(sess)
}

// CleanupExpiredSessions drops sessions idle for longer than maxAge from
// memory and returns how many were dropped. Stored copies are kept.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions pulls every stored session into memory. Sessions
// that fail to load are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.store == nil {
		return nil
	}

	ids, err := m.store.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		key, err := canonicalID(id)
		if err != nil {
			m.log.WithField("session", id).Warn("skipping stored session with invalid ID")
			continue
		}
		if _, ok := m.sessions[key]; ok {
			continue
		}

		sess, err := m.store.Load(key)
		if err != nil {
			m.log.WithFields(logrus.Fields{"session": key, "error": err}).Warn("failed to load persisted session")
			continue
		}
		m.sessions[key] = sess
		loaded++
	}

	if loaded > 0 {
		m.log.WithField("count", loaded).Info("loaded persisted sessions")
	}
	return nil
}

// SaveAllSessions writes every in-memory session to the store
func (m *Manager) SaveAllSessions() error {
	if m.store == nil {
		return nil
	}

	failed := 0
	for _, sess := range m.List() {
		if err := m.store.Save(sess); err != nil {
			m.log.WithFields(logrus.Fields{"session": sess.ID, "error": err}).Warn("failed to save session")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}

// persist mirrors sess to the store. Store failures are logged, not returned:
// the in-memory session stays authoritative. Callers hold m.mu.
func (m *Manager) persist(sess *service.Session, reason string) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(sess); err != nil {
		m.log.WithFields(logrus.Fields{
			"session": sess.ID,
			"reason":  reason,
			"error":   err,
		}).Warn("failed to persist session")
	}
}

// freshID returns an unused random 4-hex ID. Callers hold m.mu.
func (m *Manager) freshID() string {
	buf := make([]byte, 2)
	for {
		_, _ = rand.Read(buf)
		id := hex.EncodeToString(buf)
		if _, taken := m.sessions[id]; !taken {
			return id
		}
	}
}
