package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/fifteen/game/service"
)

// DefaultRedisPrefix namespaces session keys
const DefaultRedisPrefix = "fifteen:session:"

// RedisPersistence implements SessionPersistence with one Redis key per session
type RedisPersistence struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	codec   codec
}

// NewRedisPersistence checks the connection and returns a Redis-backed store.
// A zero ttl keeps sessions until they are deleted.
func NewRedisPersistence(client *redis.Client, ttl time.Duration, configManager service.ConfigManager) (*RedisPersistence, error) {
	rp := &RedisPersistence{
		client:  client,
		prefix:  DefaultRedisPrefix,
		ttl:     ttl,
		timeout: 5 * time.Second,
		codec:   codec{configManager: configManager},
	}

	ctx, cancel := rp.context()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return rp, nil
}

// Save stores the session document, refreshing its TTL
func (rp *RedisPersistence) Save(session *service.Session) error {
	jsonData, err := rp.codec.encode(session)
	if err != nil {
		return err
	}

	ctx, cancel := rp.context()
	defer cancel()
	if err := rp.client.Set(ctx, rp.key(session.ID), jsonData, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Load retrieves a session document
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := rp.context()
	defer cancel()

	jsonData, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	return rp.codec.decode(jsonData)
}

// Delete removes a session document
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := rp.context()
	defer cancel()

	removed, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll scans the key space for session documents
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := rp.context()
	defer cancel()

	sessionIDs := []string{}
	iter := rp.client.Scan(ctx, 0, rp.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		sessionIDs = append(sessionIDs, strings.TrimPrefix(iter.Val(), rp.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessionIDs, nil
}

// Exists checks if a session document exists
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := rp.context()
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}

func (rp *RedisPersistence) key(id string) string {
	return rp.prefix + strings.ToLower(id)
}

func (rp *RedisPersistence) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rp.timeout)
}
