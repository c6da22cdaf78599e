package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "quiz:game_state"

// RedisMirror copies every snapshot to a Redis key so other processes can
// read the game without touching the file.
type RedisMirror struct {
	client *redis.Client
	key    string
}

func NewRedisMirror(client *redis.Client, key string) *RedisMirror {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisMirror{client: client, key: key}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr, key string) (*RedisMirror, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisMirror(client, key), nil
}

func (m *RedisMirror) Mirror(ctx context.Context, data []byte) error {
	if err := m.client.Set(ctx, m.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", m.key, err)
	}
	return nil
}

// HealthCheck verifies that Redis answers.
func (m *RedisMirror) HealthCheck(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

func (m *RedisMirror) Close() error {
	return m.client.Close()
}
