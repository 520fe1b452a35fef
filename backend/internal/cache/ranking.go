package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itchan-dev/forum/shared/config"
	"github.com/itchan-dev/forum/shared/domain"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const rankingKey = "forum:ranking:active_posters"

// RankingCache keeps the msgpack encoded ranking under a single redis key.
type RankingCache struct {
	client redis.UniversalClient
}

func NewRankingCache(client redis.UniversalClient) *RankingCache {
	return &RankingCache{client: client}
}

// Connect opens a redis client and checks it responds.
func Connect(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Get returns nil, nil when nothing is cached.
func (c *RankingCache) Get(ctx context.Context) (*domain.Ranking, error) {
	data, err := c.client.Get(ctx, rankingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}

	var ranking domain.Ranking
	if err := msgpack.Unmarshal(data, &ranking); err != nil {
		return nil, fmt.Errorf("failed to decode ranking: %w", err)
	}
	return &ranking, nil
}

func (c *RankingCache) Set(ctx context.Context, ranking *domain.Ranking, ttl time.Duration) error {
	data, err := msgpack.Marshal(ranking)
	if err != nil {
		return fmt.Errorf("failed to encode ranking: %w", err)
	}
	if err := c.client.Set(ctx, rankingKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store ranking: %w", err)
	}
	return nil
}
