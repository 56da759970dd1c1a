package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
)

// redisBackend keeps session state in Redis. Expiry rides on key TTLs,
// so SweepExpired has nothing to do here.
type redisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to Redis and verifies the connection
func NewRedisBackend(cfg *config.RedisConfig) (Backend, error) {
	logger.Info("Initializing Redis session backend", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return &redisBackend{client: client}, nil
}

func sessionKey(id string) string { return "session:" + id }
func rememberKey(a string) string { return "remembered:" + a }
func failuresKey(a string) string { return "login_failures:" + a }

func (b *redisBackend) SaveSession(ctx context.Context, s *Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, sessionKey(s.ID), data, ttl).Err()
}

func (b *redisBackend) GetSession(ctx context.Context, id string) (*Session, error) {
	data, err := b.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *redisBackend) DeleteSession(ctx context.Context, id string) error {
	return b.client.Del(ctx, sessionKey(id)).Err()
}

func (b *redisBackend) SweepExpired(ctx context.Context) (int, error) {
	// Redis evicts expired session keys itself
	return 0, nil
}

func (b *redisBackend) RememberAccount(ctx context.Context, account string, ttl time.Duration) error {
	return b.client.Set(ctx, rememberKey(account), "1", ttl).Err()
}

func (b *redisBackend) IsRemembered(ctx context.Context, account string) (bool, error) {
	_, err := b.client.Get(ctx, rememberKey(account)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *redisBackend) ForgetAccount(ctx context.Context, account string) error {
	return b.client.Del(ctx, rememberKey(account)).Err()
}

// RecordFailure pushes a timestamp onto the account's failure list,
// trims it to the last ten entries and counts the ones still inside
// the window.
func (b *redisBackend) RecordFailure(ctx context.Context, account string, window time.Duration) (int, error) {
	key := failuresKey(account)
	now := time.Now()

	pipe := b.client.TxPipeline()
	pipe.LPush(ctx, key, strconv.FormatInt(now.UnixMilli(), 10))
	pipe.LTrim(ctx, key, 0, 9)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	entries, err := b.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-window).UnixMilli()
	count := 0
	for _, entry := range entries {
		ms, err := strconv.ParseInt(entry, 10, 64)
		if err != nil {
			continue
		}
		if ms >= cutoff {
			count++
		}
	}
	return count, nil
}

func (b *redisBackend) ClearFailures(ctx context.Context, account string) error {
	return b.client.Del(ctx, failuresKey(account)).Err()
}

func (b *redisBackend) Close() error {
	logger.Info("Closing Redis connection", nil)
	return b.client.Close()
}
