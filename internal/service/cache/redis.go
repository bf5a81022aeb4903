package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/influencer-insight-go/internal/constants"
	"github.com/kapu/influencer-insight-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient connects and pings Redis. The client is shared by the
// translation cache and the Redis session store.
func NewRedisClient(cfg RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
	)
	return client, nil
}

type RedisService struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisService(client *redis.Client, logger *zap.Logger) *RedisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisService{
		client: client,
		prefix: constants.RedisConfig.KeyPrefix + "cache:",
		logger: logger,
	}
}

func (c *RedisService) key(key string) string {
	return c.prefix + key
}

func (c *RedisService) Get(ctx context.Context, key string, dest any) (bool, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return false, errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal(value, dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return true, nil
}

func (c *RedisService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(key), jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

func (c *RedisService) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}
