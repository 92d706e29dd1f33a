package utils

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cppla/commentbox/config"
)

// NewRedisClient returns a client for the configured Redis, or nil when Redis is
// disabled. Callers treat a nil client as "use the in-process fallback".
func NewRedisClient(cfg config.RedisSection, logger *zap.Logger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	// an unreachable Redis only degrades caching, so boot continues
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil && logger != nil {
		logger.Warn("redis ping failed", zap.String("addr", client.Options().Addr), zap.Error(err))
	}
	return client
}
