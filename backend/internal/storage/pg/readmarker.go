package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	"github.com/lib/pq"
)

// HasRead reports whether the user has a marker for the post.
func (s *Storage) HasRead(ctx context.Context, userId domain.UserId, postId domain.PostId) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM post_reads WHERE user_id = $1 AND post_id = $2)",
		userId, postId).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check read marker: %w", err)
	}
	return exists, nil
}

// MarkRead stores a marker with thread and category copied from the post.
// A second call for the same pair changes nothing.
func (s *Storage) MarkRead(ctx context.Context, userId domain.UserId, postId domain.PostId) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_reads (user_id, post_id, thread_id, category_id, last_read_on)
		SELECT $1, p.id, p.thread_id, p.category_id, NOW()
		FROM posts p
		WHERE p.id = $2
		ON CONFLICT (user_id, post_id) DO NOTHING
	`, userId, postId)
	if err != nil {
		return fmt.Errorf("failed to insert read marker: %w", err)
	}
	return nil
}

// UnreadPostIds returns the candidates the user has no marker for, in id order.
func (s *Storage) UnreadPostIds(ctx context.Context, userId domain.UserId, candidates []domain.PostId) ([]domain.PostId, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id
		FROM unnest($2::BIGINT[]) AS c(id)
		WHERE NOT EXISTS (SELECT 1 FROM post_reads r WHERE r.user_id = $1 AND r.post_id = c.id)
		ORDER BY c.id
	`, userId, pq.Array(candidates))
	if err != nil {
		return nil, fmt.Errorf("failed to query read markers: %w", err)
	}
	return scanIds(rows)
}

// UnreadThreadIds returns the threads of q.ThreadIds that have a visible post
// newer than the cutoff without a marker.
func (s *Storage) UnreadThreadIds(ctx context.Context, q domain.UnreadQuery) ([]domain.ThreadId, error) {
	args := &queryArgs{}
	query := fmt.Sprintf(`
		SELECT DISTINCT p.thread_id
		FROM posts p
		WHERE p.thread_id = ANY(%s)
		  AND p.posted_on > %s
		  AND NOT EXISTS (SELECT 1 FROM post_reads r WHERE r.user_id = %s AND r.post_id = p.id)
		  AND %s`,
		args.add(pq.Array(q.ThreadIds)), args.add(q.Cutoff), args.add(q.UserId),
		postVisibilitySQL(args, q.Posts, "p"))

	rows, err := s.db.QueryContext(ctx, query, args.values...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread threads: %w", err)
	}
	return scanIds(rows)
}

// UnreadCategoryIds is UnreadThreadIds grouped by category, restricted to
// threads the user can see.
func (s *Storage) UnreadCategoryIds(ctx context.Context, q domain.UnreadQuery) ([]domain.CategoryId, error) {
	args := &queryArgs{}
	query := fmt.Sprintf(`
		SELECT DISTINCT t.category_id
		FROM posts p
		JOIN threads t ON t.id = p.thread_id
		WHERE t.category_id = ANY(%s)
		  AND p.posted_on > %s
		  AND NOT EXISTS (SELECT 1 FROM post_reads r WHERE r.user_id = %s AND r.post_id = p.id)
		  AND %s
		  AND %s`,
		args.add(pq.Array(q.CategoryIds)), args.add(q.Cutoff), args.add(q.UserId),
		threadVisibilitySQL(args, q.Threads, "t"),
		postVisibilitySQL(args, q.Posts, "p"))

	rows, err := s.db.QueryContext(ctx, query, args.values...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread categories: %w", err)
	}
	return scanIds(rows)
}

// PurgeReadMarkers deletes markers of posts outside of any transaction.
func (s *Storage) PurgeReadMarkers(ctx context.Context, userId *domain.UserId, postIds []domain.PostId) (int64, error) {
	return purgeReadMarkers(ctx, s.db, userId, postIds)
}

func scanIds(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ids: %w", err)
	}
	return ids, nil
}
