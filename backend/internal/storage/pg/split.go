package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/forum/backend/internal/service"
	"github.com/itchan-dev/forum/backend/internal/utils"
	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
	sharedpg "github.com/itchan-dev/forum/shared/storage/pg"
	"github.com/lib/pq"
)

const purgeSavepoint = "purge_read_markers"

// SplitPosts moves data.PostIds into a new thread. Everything, including
// hook, runs in one transaction; any error from it rolls the move back.
func (s *Storage) SplitPosts(ctx context.Context, data domain.SplitData, hook service.MoveHook) (domain.ThreadId, error) {
	var newThreadId domain.ThreadId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		source, err := s.getThread(ctx, tx, data.ThreadId, true)
		if err != nil {
			return err
		}

		newThreadId, err = createSplitThread(ctx, tx, data)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE posts SET thread_id = $1, category_id = $2
			WHERE id = ANY($3) AND thread_id = $4
		`, newThreadId, data.CategoryId, pq.Array(data.PostIds), source.Id)
		if err != nil {
			return fmt.Errorf("failed to move posts: %w", err)
		}
		moved, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check moved posts: %w", err)
		}
		if moved != int64(len(data.PostIds)) {
			return internal_errors.BadRequest("One or more posts to split could not be found.")
		}

		for _, id := range []domain.ThreadId{source.Id, newThreadId} {
			if err := syncThread(ctx, tx, id); err != nil {
				return err
			}
		}

		return hook(ctx, &txStore{tx: tx}, domain.PostsMove{
			SourceThreadId:     source.Id,
			SourceCategoryId:   source.CategoryId,
			SourceBestAnswerId: source.BestAnswerId,
			TargetThreadId:     newThreadId,
			TargetCategoryId:   data.CategoryId,
			PostIds:            data.PostIds,
		})
	})
	if err != nil {
		return 0, err
	}
	return newThreadId, nil
}

// createSplitThread inserts the target thread started by the earliest moved post.
func createSplitThread(ctx context.Context, tx *sql.Tx, data domain.SplitData) (domain.ThreadId, error) {
	var id domain.ThreadId
	err := tx.QueryRowContext(ctx, `
		INSERT INTO threads (
			category_id, title, slug, weight, starter_id, starter_name, started_on,
			last_post_on, last_poster_name, is_hidden, is_closed
		)
		SELECT $1, $2, $3, $4, p.poster_id, p.poster_name, p.posted_on,
		       p.posted_on, p.poster_name, $5, $6
		FROM posts p
		WHERE p.id = ANY($7) AND p.thread_id = $8
		ORDER BY p.posted_on, p.id
		LIMIT 1
		RETURNING id
	`, data.CategoryId, data.Title, utils.Slugify(data.Title), int(data.Weight),
		data.IsHidden, data.IsClosed, pq.Array(data.PostIds), data.ThreadId).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, internal_errors.BadRequest("One or more posts to split could not be found.")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create thread: %w", err)
	}
	return id, nil
}

// syncThread recomputes the denormalized post data of a thread.
func syncThread(ctx context.Context, q sharedpg.Querier, id domain.ThreadId) error {
	_, err := q.ExecContext(ctx, `
		UPDATE threads t SET
			first_post_id = (SELECT p.id FROM posts p WHERE p.thread_id = t.id ORDER BY p.posted_on, p.id LIMIT 1),
			last_post_id = (SELECT p.id FROM posts p WHERE p.thread_id = t.id ORDER BY p.posted_on DESC, p.id DESC LIMIT 1),
			last_post_on = COALESCE((SELECT MAX(p.posted_on) FROM posts p WHERE p.thread_id = t.id), t.started_on),
			last_poster_name = COALESCE(
				(SELECT p.poster_name FROM posts p WHERE p.thread_id = t.id ORDER BY p.posted_on DESC, p.id DESC LIMIT 1),
				t.last_poster_name),
			replies = GREATEST(
				(SELECT COUNT(*) FROM posts p WHERE p.thread_id = t.id AND NOT p.is_event AND NOT p.is_unapproved) - 1, 0),
			has_unapproved_posts = EXISTS (SELECT 1 FROM posts p WHERE p.thread_id = t.id AND p.is_unapproved),
			has_reported_posts = EXISTS (SELECT 1 FROM posts p WHERE p.thread_id = t.id AND p.is_reported),
			has_hidden_posts = EXISTS (SELECT 1 FROM posts p WHERE p.thread_id = t.id AND p.is_hidden)
		WHERE t.id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to synchronize thread %d: %w", id, err)
	}
	return nil
}

// txStore exposes the running move transaction to the invalidation hook.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) ClearBestAnswer(ctx context.Context, threadId domain.ThreadId) error {
	if _, err := t.tx.ExecContext(ctx, "UPDATE threads SET best_answer_id = NULL WHERE id = $1", threadId); err != nil {
		return fmt.Errorf("failed to clear best answer: %w", err)
	}
	return nil
}

// PurgeReadMarkers runs in a savepoint so that a failed delete leaves the
// move transaction usable.
func (t *txStore) PurgeReadMarkers(ctx context.Context, userId *domain.UserId, postIds []domain.PostId) (int64, error) {
	var purged int64
	err := sharedpg.WithSavepoint(ctx, t.tx, purgeSavepoint, func() error {
		var err error
		purged, err = purgeReadMarkers(ctx, t.tx, userId, postIds)
		return err
	})
	return purged, err
}

// purgeReadMarkers deletes markers of postIds, for one user or for everyone.
func purgeReadMarkers(ctx context.Context, q sharedpg.Querier, userId *domain.UserId, postIds []domain.PostId) (int64, error) {
	var result sql.Result
	var err error
	if userId == nil {
		result, err = q.ExecContext(ctx, "DELETE FROM post_reads WHERE post_id = ANY($1)", pq.Array(postIds))
	} else {
		result, err = q.ExecContext(ctx, "DELETE FROM post_reads WHERE post_id = ANY($1) AND user_id = $2", pq.Array(postIds), *userId)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete read markers: %w", err)
	}
	return result.RowsAffected()
}
