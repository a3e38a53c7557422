package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/workday-calendar/internal/calendar"
)

func TestRedisStore_NilClientIsMiss(t *testing.T) {
	s := NewRedisStore(nil, time.Hour, zap.NewNop())

	data, ok, err := s.Get(context.Background(), 2026)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, data)

	require.NoError(t, s.Set(context.Background(), 2026, calendar.YearDataSet{{Date: "20260101"}}))
	require.NoError(t, s.Close())
}

func TestRedisStore_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewRedisStore(client, time.Hour, zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })

	_, ok, err := s.Get(context.Background(), 2026)
	require.Error(t, err)
	require.False(t, ok)

	require.Error(t, s.Set(context.Background(), 2026, calendar.YearDataSet{{Date: "20260101"}}))
}

func TestKey(t *testing.T) {
	require.Equal(t, "workday-calendar:year:2026", Key(2026))
}

func TestRedisStore_CloseReleasesClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	s := NewRedisStore(client, time.Hour, zap.NewNop())

	require.NoError(t, s.Close())

	_, _, err := s.Get(context.Background(), 2026)
	require.ErrorIs(t, err, redis.ErrClosed)
}
