package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	inboundKeyPrefix = "consultoras:webhook:msg:"
	DefaultDedupeTTL = 24 * time.Hour
)

// RedisDeduper marca ids de mensagens recebidas com SETNX para descartar
// reentregas do webhook.
type RedisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient devolve nil quando a URI está vazia ou é inválida; nesse
// caso o dedupe fica desligado.
func NewRedisClient(uri string) *redis.Client {
	if uri == "" {
		return nil
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		log.Printf("⚠️ [CACHE] REDIS_URI inválida, dedupe do webhook desligado: %v", err)
		return nil
	}
	return redis.NewClient(opts)
}

func NewRedisDeduper(rdb *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &RedisDeduper{rdb: rdb, ttl: ttl}
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, providerMessageID string) (bool, error) {
	return d.rdb.SetNX(ctx, inboundKeyPrefix+providerMessageID, 1, d.ttl).Result()
}

func (d *RedisDeduper) Forget(ctx context.Context, providerMessageID string) error {
	return d.rdb.Del(ctx, inboundKeyPrefix+providerMessageID).Err()
}
