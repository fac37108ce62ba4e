package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// MarketCache mantém a odd corrente de cada mercado no Redis, consultada
// pelo validator na hora da aposta.
type MarketCache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *MarketCache {
	return &MarketCache{R: r, TTL: ttl}
}

func key(marketID string) string { return "odds:market:" + marketID }

// SetOdd grava a odd de um mercado; chamado na criação do mercado
func (c *MarketCache) SetOdd(ctx context.Context, marketID string, odd float64) error {
	return c.R.Set(ctx, key(marketID), strconv.FormatFloat(odd, 'f', -1, 64), c.TTL).Err()
}

// Invalidate remove a odd do cache (ex: mercado travado)
func (c *MarketCache) Invalidate(ctx context.Context, marketID string) error {
	return c.R.Del(ctx, key(marketID)).Err()
}
