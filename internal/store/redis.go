package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/username/workday-calendar/internal/calendar"
	"github.com/username/workday-calendar/internal/config"
)

const keyPrefix = "workday-calendar:year:"

// NewRedisClient returns a connected Redis client for cfg
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// RedisStore keeps year data sets in Redis so several processes share one
// upstream fetch. A nil client turns every call into a miss.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

// Key returns the Redis key holding year
func Key(year int) string {
	return keyPrefix + strconv.Itoa(year)
}

// Get returns the stored set for year; a missing key is (nil, false, nil)
func (s *RedisStore) Get(ctx context.Context, year int) (calendar.YearDataSet, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}

	key := Key(year)
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var data calendar.YearDataSet
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached year %s: %w", key, err)
	}

	s.logger.Debug("Loaded calendar year from redis",
		zap.Int("year", year),
		zap.Int("records", len(data)))

	return data, true, nil
}

// Set stores data for year with the configured TTL
func (s *RedisStore) Set(ctx context.Context, year int, data calendar.YearDataSet) error {
	if s.client == nil {
		return nil
	}

	key := Key(year)
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal year %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Close releases the underlying connection if present
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
