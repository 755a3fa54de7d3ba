// Package redisstore keeps the expedition snapshot as a JSON string and the
// attempt journal as a Redis list.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/highway-to-peak/server/src/server/data"
)

// client is the subset of redis.Cmdable the store uses.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type RedisStore struct {
	rdb    client
	closer func() error
	prefix string
}

func New(cfg Config) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	s := newWithClient(rdb, cfg.Prefix)
	s.closer = rdb.Close
	return s, nil
}

func newWithClient(rdb client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "highway"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) snapshotKey() string { return s.prefix + ":snapshot" }
func (s *RedisStore) attemptsKey() string { return s.prefix + ":attempts" }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *RedisStore) LoadSnapshot(ctx context.Context) (data.Snapshot, bool, error) {
	raw, err := s.rdb.Get(ctx, s.snapshotKey()).Result()
	if errors.Is(err, redis.Nil) {
		return data.Snapshot{}, false, nil
	}
	if err != nil {
		return data.Snapshot{}, false, fmt.Errorf("loading snapshot: %w", err)
	}

	var snap data.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return data.Snapshot{}, false, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, snap data.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, s.snapshotKey(), raw, 0).Err(); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) AddAttempt(ctx context.Context, a data.AttemptRecord) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding attempt: %w", err)
	}
	if err := s.rdb.RPush(ctx, s.attemptsKey(), raw).Err(); err != nil {
		return fmt.Errorf("appending attempt: %w", err)
	}
	return nil
}

func (s *RedisStore) ListAttempts(ctx context.Context, climber string) ([]data.AttemptRecord, error) {
	items, err := s.rdb.LRange(ctx, s.attemptsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}

	out := make([]data.AttemptRecord, 0, len(items))
	for _, item := range items {
		var a data.AttemptRecord
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("decoding attempt: %w", err)
		}
		if climber != "" && a.Climber != climber {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
