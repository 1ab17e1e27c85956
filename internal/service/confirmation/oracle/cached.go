// internal/service/confirmation/oracle/cached.go
package oracle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"ordex/internal/pkg/logger"
	"ordex/internal/pkg/redis"
)

// Fetcher 与 confirmation.PriceFetcher 对齐，装饰器以它为内层。
type Fetcher interface {
	FetchPrice(ctx context.Context, isin string) (float64, error)
}

// CachedClient 在价格源前面加一层 Redis 缓存。
// 只缓存成功结果；Redis 不可用时直接穿透到上游，不影响可用性。
type CachedClient struct {
	inner       Fetcher
	redisClient *redis.Client
	ttl         time.Duration
}

func NewCachedClient(inner Fetcher, redisClient *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, redisClient: redisClient, ttl: ttl}
}

func cacheKey(isin string) string {
	return fmt.Sprintf("price:isin:%s", isin)
}

func (c *CachedClient) FetchPrice(ctx context.Context, isin string) (float64, error) {
	key := cacheKey(isin)

	cached, err := c.redisClient.GetClient().Get(ctx, key).Result()
	if err == nil {
		if price, parseErr := strconv.ParseFloat(cached, 64); parseErr == nil {
			return price, nil
		}
		// 缓存里出现脏数据，当作未命中处理
	} else if err != goredis.Nil {
		logger.Ctx(ctx).Warn().Err(err).Str("isin", isin).Msg("price cache lookup failed, falling through to upstream")
	}

	price, err := c.inner.FetchPrice(ctx, isin)
	if err != nil {
		return 0, err
	}

	value := strconv.FormatFloat(price, 'f', -1, 64)
	if err := c.redisClient.GetClient().Set(ctx, key, value, c.ttl).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("isin", isin).Msg("failed to cache price")
	}
	return price, nil
}
