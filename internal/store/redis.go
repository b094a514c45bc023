package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ashureev/portfolio-assistant/internal/domain"
	"github.com/ashureev/portfolio-assistant/internal/shared"
)

const redisKeyPrefix = "portfolio:session:"

// RedisStore implements Repository on Redis lists. Each session is a list of
// JSON-encoded turns plus a creation marker key.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func turnsKey(sessionID string) string {
	return redisKeyPrefix + sessionID + ":turns"
}

func createdKey(sessionID string) string {
	return redisKeyPrefix + sessionID + ":created_at"
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}

// GetOrCreate records the session creation time once and returns a handle.
func (s *RedisStore) GetOrCreate(ctx context.Context, sessionID string) (Session, error) {
	if err := s.rdb.SetNX(ctx, createdKey(sessionID), time.Now().Unix(), 0).Err(); err != nil {
		return nil, shared.Dependency("get or create session", "storage failure", err)
	}
	return &redisSession{rdb: s.rdb, id: sessionID}, nil
}

type redisSession struct {
	rdb *redis.Client
	id  string
}

func (s *redisSession) ID() string {
	return s.id
}

// Append pushes all turns with a single RPUSH so they land contiguously.
func (s *redisSession) Append(ctx context.Context, turns ...domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		if !turn.Role.Valid() {
			return fmt.Errorf("append turns: unknown role %q", turn.Role)
		}
		if turn.Timestamp.IsZero() {
			turn.Timestamp = time.Now().UTC()
		}
		data, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("marshal turn: %w", err)
		}
		values = append(values, data)
	}
	if err := s.rdb.RPush(ctx, turnsKey(s.id), values...).Err(); err != nil {
		return shared.Dependency("append turns", "storage failure", err)
	}
	return nil
}

func (s *redisSession) History(ctx context.Context) ([]domain.Turn, error) {
	raw, err := s.rdb.LRange(ctx, turnsKey(s.id), 0, -1).Result()
	if err != nil {
		return nil, shared.Dependency("load history", "storage failure", err)
	}
	turns := make([]domain.Turn, 0, len(raw))
	for _, item := range raw {
		var turn domain.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
