package pg

import (
	"context"
	"database/sql"

	"github.com/itchan-dev/forum/backend/internal/service"
	"github.com/itchan-dev/forum/shared/config"
	"github.com/itchan-dev/forum/shared/logger"
	sharedpg "github.com/itchan-dev/forum/shared/storage/pg"

	_ "github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

// Interface satisfaction checks - compile-time verification
var (
	_ service.UserStorage        = (*Storage)(nil)
	_ service.CategoryStorage    = (*Storage)(nil)
	_ service.ThreadStorage      = (*Storage)(nil)
	_ service.ThreadListStorage  = (*Storage)(nil)
	_ service.ReadTrackerStorage = (*Storage)(nil)
	_ service.ReadMarkerStorage  = (*Storage)(nil)
	_ service.SplitStorage       = (*Storage)(nil)
	_ service.RankingStorage     = (*Storage)(nil)
	_ service.InvalidationTx     = (*txStore)(nil)
)

func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	log := logger.Component("storage")
	log.Info("connecting to db", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := sharedpg.Connect(ctx, cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	log.Info("successfully connected to db")
	return &Storage{db: db}, nil
}

// NewWithDB wraps an already opened pool.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// Ping is used by the health endpoint.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return sharedpg.WithTx(ctx, s.db, fn)
}
