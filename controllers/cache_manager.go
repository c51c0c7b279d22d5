package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MazenAbdallaAbdelhadi/multi-vendor-ecommerce/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	orderListCachePrefix = "orders:v:"
	orderCacheVersionKey = "orders:version"

	DefaultCacheTTL = 5 * time.Minute
)

// CacheManager is a versioned read-through cache for order list responses.
// Invalidation bumps the version key so all cached pages expire at once.
// A nil manager or an unreachable Redis degrades to the database.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(rdb *redis.Client) *CacheManager {
	return &CacheManager{redis: rdb, ttl: DefaultCacheTTL}
}

// GetOrderList retrieves a cached order list for a scope ("all" or a user id).
func (cm *CacheManager) GetOrderList(ctx context.Context, scope string, page, limit int) (*services.OrderListResponse, bool) {
	if cm == nil || cm.redis == nil {
		return nil, false
	}

	version, err := cm.getCacheVersion(ctx)
	if err != nil || version == 0 {
		return nil, false
	}

	cachedData, err := cm.redis.Get(ctx, cm.listKey(version, scope, page, limit)).Result()
	if err != nil {
		return nil, false
	}

	var response services.OrderListResponse
	if err := json.Unmarshal([]byte(cachedData), &response); err != nil {
		zap.L().Warn("Failed to unmarshal cached order list", zap.Error(err))
		return nil, false
	}
	return &response, true
}

// SetOrderListAsync caches an order list response without blocking the request.
func (cm *CacheManager) SetOrderListAsync(scope string, page, limit int, response *services.OrderListResponse) {
	if cm == nil || cm.redis == nil {
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(bgCtx)
		if err != nil || version == 0 {
			return
		}

		jsonBytes, err := json.Marshal(response)
		if err != nil {
			zap.L().Warn("Failed to marshal order list for cache", zap.Error(err))
			return
		}

		if err := cm.redis.Set(bgCtx, cm.listKey(version, scope, page, limit), jsonBytes, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache order list", zap.Error(err))
		}
	}()
}

// Invalidate expires every cached order list by bumping the version key.
// Called after any order mutation.
func (cm *CacheManager) Invalidate(ctx context.Context) {
	if cm == nil || cm.redis == nil {
		return
	}
	if err := cm.redis.Incr(ctx, orderCacheVersionKey).Err(); err != nil {
		zap.L().Warn("Failed to bump order cache version", zap.Error(err))
	}
}

func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	version, err := cm.redis.Get(ctx, orderCacheVersionKey).Int64()
	if err == redis.Nil {
		return cm.redis.Incr(ctx, orderCacheVersionKey).Result()
	}
	return version, err
}

func (cm *CacheManager) listKey(version int64, scope string, page, limit int) string {
	return fmt.Sprintf("%s%d:%s:%d:%d", orderListCachePrefix, version, scope, page, limit)
}
