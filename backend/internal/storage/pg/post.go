package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
	"github.com/lib/pq"
)

const postColumns = `
	p.id, p.thread_id, p.category_id, p.poster_id, p.poster_name, p.posted_on,
	p.is_event, p.is_unapproved, p.is_hidden, p.content`

func scanPost(row rowScanner) (*domain.Post, error) {
	var p domain.Post
	var posterId sql.NullInt64
	err := row.Scan(
		&p.Id, &p.ThreadId, &p.CategoryId, &posterId, &p.PosterName, &p.PostedOn,
		&p.IsEvent, &p.IsUnapproved, &p.IsHidden, &p.Content,
	)
	if err != nil {
		return nil, err
	}
	p.PosterId = posterId.Int64
	return &p, nil
}

func (s *Storage) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	post, err := scanPost(s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts p WHERE p.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("Post not found")
		}
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	return post, nil
}

// GetPosts returns the posts of ids that belong to threadId. Missing ids are skipped.
func (s *Storage) GetPosts(ctx context.Context, threadId domain.ThreadId, ids []domain.PostId) ([]*domain.Post, error) {
	return s.queryPosts(ctx,
		"SELECT "+postColumns+" FROM posts p WHERE p.thread_id = $1 AND p.id = ANY($2) ORDER BY p.posted_on, p.id",
		threadId, pq.Array(ids))
}

func (s *Storage) CountPosts(ctx context.Context, threadId domain.ThreadId, visibility domain.PostVisibility) (int, error) {
	args := &queryArgs{}
	thread := args.add(threadId)
	where := postVisibilitySQL(args, visibility, "p")

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts p WHERE p.thread_id = "+thread+" AND "+where, args.values...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (s *Storage) ListPosts(ctx context.Context, threadId domain.ThreadId, visibility domain.PostVisibility, limit, offset int) ([]*domain.Post, error) {
	args := &queryArgs{}
	thread := args.add(threadId)
	where := postVisibilitySQL(args, visibility, "p")
	query := fmt.Sprintf("SELECT %s FROM posts p WHERE p.thread_id = %s AND %s ORDER BY p.posted_on, p.id LIMIT %s OFFSET %s",
		postColumns, thread, where, args.add(limit), args.add(offset))
	return s.queryPosts(ctx, query, args.values...)
}

func (s *Storage) queryPosts(ctx context.Context, query string, args ...any) ([]*domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}
