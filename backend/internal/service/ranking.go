package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/itchan-dev/forum/shared/domain"
	"github.com/itchan-dev/forum/shared/logger"
	"github.com/itchan-dev/forum/shared/middleware/metrics"
	"github.com/robfig/cron/v3"
)

type RankingStorage interface {
	// ActivePosters scores users by visible posts newer than since, best first.
	ActivePosters(ctx context.Context, since time.Time, limit int) ([]domain.RankedUser, error)
}

// RankingCache stores the last built ranking. Get returns nil, nil on a miss.
type RankingCache interface {
	Get(ctx context.Context) (*domain.Ranking, error)
	Set(ctx context.Context, ranking *domain.Ranking, ttl time.Duration) error
}

type RankingConfig struct {
	Length time.Duration // activity window
	Size   int
	TTL    time.Duration
}

// Ranking builds the active posters ranking and keeps it in an explicit cache.
type Ranking struct {
	storage RankingStorage
	cache   RankingCache
	cfg     RankingConfig
	now     func() time.Time
	log     *slog.Logger
}

func NewRanking(storage RankingStorage, cache RankingCache, cfg RankingConfig) *Ranking {
	return &Ranking{
		storage: storage,
		cache:   cache,
		cfg:     cfg,
		now:     time.Now,
		log:     logger.Component("ranking"),
	}
}

// Build scores users from storage and replaces the cached ranking.
func (r *Ranking) Build(ctx context.Context) (*domain.Ranking, error) {
	users, err := r.storage.ActivePosters(ctx, r.now().Add(-r.cfg.Length), r.cfg.Size)
	if err != nil {
		metrics.RankingBuilds.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to score active posters: %w", err)
	}

	ranking := &domain.Ranking{
		Users:      users,
		UsersCount: len(users),
		BuiltOn:    r.now().UTC(),
	}
	if err := r.cache.Set(ctx, ranking, r.cfg.TTL); err != nil {
		r.log.Warn("failed to cache ranking", "error", err)
	}

	metrics.RankingBuilds.WithLabelValues("ok").Inc()
	r.log.Info("ranking built", "users", ranking.UsersCount)
	return ranking, nil
}

// Get serves the cached ranking and builds it on a miss. A broken cache is
// treated as a miss.
func (r *Ranking) Get(ctx context.Context) (*domain.Ranking, error) {
	ranking, err := r.cache.Get(ctx)
	if err != nil {
		r.log.Warn("failed to read cached ranking", "error", err)
	}
	if ranking != nil {
		return ranking, nil
	}
	return r.Build(ctx)
}

// Schedule registers Build on c with the given cron spec.
func (r *Ranking) Schedule(c *cron.Cron, spec string, timeout time.Duration) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := r.Build(ctx); err != nil {
			r.log.Error("scheduled ranking build failed", "error", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid ranking schedule %q: %w", spec, err)
	}
	return id, nil
}
