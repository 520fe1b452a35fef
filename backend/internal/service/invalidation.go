package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/itchan-dev/forum/shared/domain"
	"github.com/itchan-dev/forum/shared/logger"
	"github.com/itchan-dev/forum/shared/middleware/metrics"
)

// InvalidationTx is the part of a running move transaction the hook needs.
type InvalidationTx interface {
	ClearBestAnswer(ctx context.Context, threadId domain.ThreadId) error
	// PurgeReadMarkers must leave the transaction usable when it fails.
	PurgeReadMarkers(ctx context.Context, userId *domain.UserId, postIds []domain.PostId) (int64, error)
}

// Invalidator keeps derived state consistent after posts change thread.
type Invalidator struct {
	log *slog.Logger
}

func NewInvalidator() *Invalidator {
	return &Invalidator{log: logger.Component("invalidation")}
}

// PostsMoved runs inside the move transaction. A failed best answer update
// aborts the move; a failed marker purge is logged and the move goes on.
func (i *Invalidator) PostsMoved(ctx context.Context, tx InvalidationTx, move domain.PostsMove) error {
	if len(move.PostIds) == 0 {
		return nil
	}

	if move.SourceBestAnswerId != nil && move.Moves(*move.SourceBestAnswerId) {
		if err := tx.ClearBestAnswer(ctx, move.SourceThreadId); err != nil {
			return fmt.Errorf("failed to clear best answer of thread %d: %w", move.SourceThreadId, err)
		}
	}

	purged, err := tx.PurgeReadMarkers(ctx, nil, move.PostIds)
	if err != nil {
		metrics.ReadMarkerPurgeFailures.Inc()
		i.log.Error("read marker purge failed, markers of moved posts are stale",
			"source_thread", move.SourceThreadId,
			"target_thread", move.TargetThreadId,
			"posts", len(move.PostIds),
			"error", err,
		)
		return nil
	}

	metrics.ReadMarkersPurged.Add(float64(purged))
	i.log.Debug("purged read markers of moved posts",
		"source_thread", move.SourceThreadId,
		"target_thread", move.TargetThreadId,
		"markers", purged,
	)
	return nil
}
