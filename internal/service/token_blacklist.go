package service

import (
	"context"
	"sync"
	"time"

	"thethought-backend/internal/util"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TokenBlacklist 记录已注销的访问令牌
type TokenBlacklist interface {
	Add(token string, ttl time.Duration)
	Contains(token string) bool
}

// memoryBlacklist 是单实例部署用的内存黑名单
type memoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

// NewMemoryBlacklist 创建内存令牌黑名单
func NewMemoryBlacklist() TokenBlacklist {
	return &memoryBlacklist{tokens: make(map[string]time.Time)}
}

func (b *memoryBlacklist) Add(token string, ttl time.Duration) {
	b.mu.Lock()
	b.tokens[token] = time.Now().Add(ttl)
	b.mu.Unlock()
}

func (b *memoryBlacklist) Contains(token string) bool {
	b.mu.RLock()
	expiry, exists := b.tokens[token]
	b.mu.RUnlock()
	if !exists {
		return false
	}
	if time.Now().After(expiry) {
		b.mu.Lock()
		delete(b.tokens, token)
		b.mu.Unlock()
		return false
	}
	return true
}

// redisBlacklist 用 Redis 保存黑名单，多实例部署时共享
type redisBlacklist struct {
	rdb *redis.Client
}

// NewRedisBlacklist 创建 Redis 令牌黑名单
func NewRedisBlacklist(rdb *redis.Client) TokenBlacklist {
	return &redisBlacklist{rdb: rdb}
}

func (b *redisBlacklist) key(token string) string {
	return "token_blacklist:" + token
}

func (b *redisBlacklist) Add(token string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := b.rdb.Set(ctx, b.key(token), "1", ttl).Err(); err != nil {
		util.Logger.Error("写入令牌黑名单失败", zap.Error(err))
	}
}

func (b *redisBlacklist) Contains(token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	n, err := b.rdb.Exists(ctx, b.key(token)).Result()
	if err != nil {
		util.Logger.Error("查询令牌黑名单失败", zap.Error(err))
		return false
	}
	return n > 0
}
