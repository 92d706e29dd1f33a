package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// TokenBlacklist remembers tokens revoked at logout until they would have expired
// anyway. It uses Redis when available and an in-process map otherwise.
type TokenBlacklist struct {
	rc  *redis.Client
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{
		rc:      rc,
		now:     time.Now,
		entries: map[string]time.Time{},
	}
}

// Revoke stores token until expiresAt. Already-expired tokens are ignored.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return b.rc.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err()
	}

	b.mu.Lock()
	b.entries[token] = expiresAt
	b.sweepLocked()
	b.mu.Unlock()
	return nil
}

// IsRevoked reports whether token was revoked. Redis errors fail open so a cache
// outage cannot lock every user out.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := b.rc.Exists(ctx, blacklistKeyPrefix+token).Result()
		return err == nil && n > 0
	}

	b.mu.RLock()
	expiresAt, ok := b.entries[token]
	b.mu.RUnlock()
	return ok && b.now().Before(expiresAt)
}

func (b *TokenBlacklist) sweepLocked() {
	now := b.now()
	for token, expiresAt := range b.entries {
		if !now.Before(expiresAt) {
			delete(b.entries, token)
		}
	}
}
