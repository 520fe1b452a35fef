package setup

import (
	"context"
	"time"

	"github.com/itchan-dev/forum/backend/internal/cache"
	"github.com/itchan-dev/forum/backend/internal/handler"
	"github.com/itchan-dev/forum/backend/internal/markup"
	"github.com/itchan-dev/forum/backend/internal/service"
	"github.com/itchan-dev/forum/backend/internal/storage/pg"
	"github.com/itchan-dev/forum/backend/internal/utils"
	"github.com/itchan-dev/forum/shared/config"
	"github.com/itchan-dev/forum/shared/jwt"
	mw "github.com/itchan-dev/forum/shared/middleware"
	"github.com/itchan-dev/forum/shared/middleware/ratelimiter"
	"github.com/redis/go-redis/v9"
)

// rateLimiterIdle is how long an unused bucket is kept.
const rateLimiterIdle = time.Hour

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config  *config.Config
	Storage *pg.Storage
	Redis   *redis.Client
	Handler *handler.Handler
	Auth    *mw.Auth
	Users   *service.Users
	Ranking *service.Ranking
	Limiter *ratelimiter.Limiter
}

// SetupDependencies connects to postgres and redis and wires the services.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	redisClient, err := cache.Connect(ctx, cfg.Private.Redis)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	deps := Wire(cfg, storage, redisClient)
	deps.Redis = redisClient
	return deps, nil
}

// Wire builds every service on top of already opened connections.
func Wire(cfg *config.Config, storage *pg.Storage, redisClient redis.UniversalClient) *Dependencies {
	cutoff := service.NewCutoffPolicy(cfg.ReadTrackerCutoff())
	threadsTracker := service.NewThreadsTracker(storage, cutoff)
	categoriesTracker := service.NewCategoriesTracker(storage, cutoff)
	markers := service.NewReadMarkers(storage)

	users := service.NewUsers(storage)
	ranking := service.NewRanking(storage, cache.NewRankingCache(redisClient), service.RankingConfig{
		Length: cfg.RankingLength(),
		Size:   cfg.Public.Ranking.Size,
		TTL:    cfg.Public.Ranking.TTL,
	})

	h := handler.New(handler.Services{
		Categories: service.NewCategories(storage, categoriesTracker),
		Lists: service.NewThreadLists(storage, threadsTracker, cutoff, service.ThreadListsConfig{
			PerPage: cfg.Public.ThreadsPerPage,
			Orphans: cfg.Public.ThreadsTail,
		}),
		Threads: service.NewThreads(storage, threadsTracker, markers, cutoff, service.ThreadsConfig{
			PostsPerPage: cfg.Public.PostsPerPage,
			PostsTail:    cfg.Public.PostsTail,
		}),
		Markers: markers,
		Split:   service.NewSplit(storage, service.NewInvalidator(), &utils.ThreadTitleValidator{}, cfg.Public.SplitPostsLimit),
		Ranking: ranking,
		Markup:  markup.New(),
		Health:  storage,
	}, cfg)

	return &Dependencies{
		Config:  cfg,
		Storage: storage,
		Handler: h,
		Auth:    mw.NewAuth(jwt.New(cfg.JwtKey(), cfg.JwtTTL())),
		Users:   users,
		Ranking: ranking,
		Limiter: ratelimiter.New(cfg.Public.RateLimit.PerMinute, cfg.Public.RateLimit.Burst, rateLimiterIdle),
	}
}

func (d *Dependencies) Cleanup() {
	if d.Redis != nil {
		d.Redis.Close()
	}
	d.Storage.Cleanup()
}
