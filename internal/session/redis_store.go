package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kapu/influencer-insight-go/internal/constants"
	apperrors "github.com/kapu/influencer-insight-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps sessions as JSON strings with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = constants.CacheTTL.Session
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		prefix: constants.RedisConfig.KeyPrefix + "session:",
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NewNotFoundError("session", id)
	}
	if err != nil {
		r.logger.Error("Session load failed", zap.String("session", id), zap.Error(err))
		return nil, apperrors.NewCacheError("session load failed", "get", id, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		r.logger.Error("Session decode failed", zap.String("session", id), zap.Error(err))
		return nil, apperrors.NewCacheError("session decode failed", "get", id, err)
	}
	return &state, nil
}

func (r *RedisStore) Save(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return apperrors.NewCacheError("session encode failed", "set", state.ID, err)
	}
	if err := r.client.Set(ctx, r.key(state.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Session save failed", zap.String("session", state.ID), zap.Error(err))
		return apperrors.NewCacheError("session save failed", "set", state.ID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return apperrors.NewCacheError("session delete failed", "del", id, err)
	}
	return nil
}
