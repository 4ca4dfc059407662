package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient is a mock for Redis client
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	cmd := redis.NewStringCmd(ctx)
	if err := args.Error(1); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal(args.String(0))
	}
	return cmd
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	cmd := redis.NewStatusCmd(ctx)
	if err := args.Error(0); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal("OK")
	}
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	cmd := redis.NewIntCmd(ctx)
	if err := args.Error(0); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal(int64(len(keys)))
	}
	return cmd
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("get existing key applies prefix", func(t *testing.T) {
		client := new(MockRedisClient)
		client.On("Get", ctx, "user1:shoplens_wishlist").Return(`[{"id":"w1"}]`, nil)

		r := NewRedis(client, "user1:")
		v, ok, err := r.Get(ctx, "shoplens_wishlist")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"w1"}]`, v)
		client.AssertExpectations(t)
	})

	t.Run("redis.Nil means missing", func(t *testing.T) {
		client := new(MockRedisClient)
		client.On("Get", ctx, "shoplens_wishlist").Return("", redis.Nil)

		r := NewRedis(client, "")
		_, ok, err := r.Get(ctx, "shoplens_wishlist")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("connection error surfaces", func(t *testing.T) {
		client := new(MockRedisClient)
		client.On("Get", ctx, "shoplens_wishlist").Return("", errors.New("connection refused"))

		r := NewRedis(client, "")
		_, _, err := r.Get(ctx, "shoplens_wishlist")

		assert.Error(t, err)
	})

	t.Run("set without expiration", func(t *testing.T) {
		client := new(MockRedisClient)
		client.On("Set", ctx, "shoplens_wishlist", "[]", time.Duration(0)).Return(nil)

		r := NewRedis(client, "")
		require.NoError(t, r.Set(ctx, "shoplens_wishlist", "[]"))
		client.AssertExpectations(t)
	})

	t.Run("set failure is wrapped", func(t *testing.T) {
		client := new(MockRedisClient)
		writeErr := errors.New("OOM command not allowed")
		client.On("Set", ctx, "shoplens_wishlist", "[]", time.Duration(0)).Return(writeErr)

		r := NewRedis(client, "")
		err := r.Set(ctx, "shoplens_wishlist", "[]")
		assert.ErrorIs(t, err, writeErr)
	})

	t.Run("remove", func(t *testing.T) {
		client := new(MockRedisClient)
		client.On("Del", ctx, []string{"shoplens_wishlist"}).Return(nil)

		r := NewRedis(client, "")
		require.NoError(t, r.Remove(ctx, "shoplens_wishlist"))
		client.AssertExpectations(t)
	})
}
