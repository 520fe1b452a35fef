package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
	sharedpg "github.com/itchan-dev/forum/shared/storage/pg"
	"github.com/lib/pq"
)

const threadColumns = `
	t.id, t.category_id, t.title, t.slug, t.weight, t.starter_id, t.starter_name, t.started_on,
	t.first_post_id, t.last_post_id, t.last_post_on, t.last_poster_name, t.replies,
	t.is_unapproved, t.is_hidden, t.is_closed,
	t.has_unapproved_posts, t.has_reported_posts, t.has_hidden_posts, t.best_answer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (*domain.Thread, error) {
	var t domain.Thread
	var starterId sql.NullInt64
	err := row.Scan(
		&t.Id, &t.CategoryId, &t.Title, &t.Slug, &t.Weight, &starterId, &t.StarterName, &t.StartedOn,
		&t.FirstPostId, &t.LastPostId, &t.LastPostOn, &t.LastPosterName, &t.Replies,
		&t.IsUnapproved, &t.IsHidden, &t.IsClosed,
		&t.HasUnapprovedPosts, &t.HasReportedPosts, &t.HasHiddenPosts, &t.BestAnswerId,
	)
	if err != nil {
		return nil, err
	}
	t.StarterId = starterId.Int64
	return &t, nil
}

// =========================================================================
// Public Methods
// =========================================================================

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	return s.getThread(ctx, s.db, id, false)
}

func (s *Storage) CountThreads(ctx context.Context, q domain.ThreadQuery) (int, error) {
	args := &queryArgs{}
	where := threadQuerySQL(args, q)

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM threads t WHERE "+where, args.values...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count threads: %w", err)
	}
	return count, nil
}

func (s *Storage) ListThreads(ctx context.Context, q domain.ThreadQuery, limit, offset int) ([]*domain.Thread, error) {
	args := &queryArgs{}
	var sb strings.Builder
	sb.WriteString("SELECT " + threadColumns + " FROM threads t WHERE ")
	sb.WriteString(threadQuerySQL(args, q))
	if q.PinnedFirst {
		sb.WriteString(" ORDER BY t.weight DESC, t.last_post_on DESC, t.id DESC")
	} else {
		sb.WriteString(" ORDER BY t.last_post_on DESC, t.id DESC")
	}
	if limit > 0 {
		sb.WriteString(" LIMIT " + args.add(limit) + " OFFSET " + args.add(offset))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args.values...)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	var threads []*domain.Thread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating threads: %w", err)
	}
	return threads, nil
}

func (s *Storage) GetSubscriptions(ctx context.Context, userId domain.UserId, threadIds []domain.ThreadId) (map[domain.ThreadId]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT thread_id, send_email
		FROM subscriptions
		WHERE user_id = $1 AND thread_id = ANY($2)
	`, userId, pq.Array(threadIds))
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	subscriptions := make(map[domain.ThreadId]domain.Subscription)
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.ThreadId, &sub.SendEmail); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subscriptions[sub.ThreadId] = sub
	}
	return subscriptions, rows.Err()
}

func (s *Storage) GetParticipants(ctx context.Context, threadIds []domain.ThreadId) (map[domain.ThreadId][]domain.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tp.thread_id, tp.user_id, u.name, tp.is_owner
		FROM thread_participants tp
		JOIN users u ON u.id = tp.user_id
		WHERE tp.thread_id = ANY($1)
		ORDER BY tp.thread_id, tp.is_owner DESC, u.name
	`, pq.Array(threadIds))
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := make(map[domain.ThreadId][]domain.Participant)
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ThreadId, &p.UserId, &p.Name, &p.IsOwner); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants[p.ThreadId] = append(participants[p.ThreadId], p)
	}
	return participants, rows.Err()
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) getThread(ctx context.Context, q sharedpg.Querier, id domain.ThreadId, forUpdate bool) (*domain.Thread, error) {
	query := "SELECT " + threadColumns + " FROM threads t WHERE t.id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	thread, err := scanThread(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("Thread not found")
		}
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return thread, nil
}

// threadQuerySQL renders every restriction of q as one WHERE expression.
func threadQuerySQL(a *queryArgs, q domain.ThreadQuery) string {
	conds := []string{threadVisibilitySQL(a, q.Visibility, "t")}

	if q.Categories != nil {
		conds = append(conds, "t.category_id = ANY("+a.add(pq.Array(q.Categories))+")")
	}
	if len(q.Weights) > 0 {
		weights := make([]int64, len(q.Weights))
		for i, w := range q.Weights {
			weights[i] = int64(w)
		}
		conds = append(conds, "t.weight = ANY("+a.add(pq.Array(weights))+")")
	}
	if q.StarterId != nil {
		conds = append(conds, "t.starter_id = "+a.add(*q.StarterId))
	}
	if q.SubscriberId != nil {
		conds = append(conds, "EXISTS (SELECT 1 FROM subscriptions s WHERE s.thread_id = t.id AND s.user_id = "+a.add(*q.SubscriberId)+")")
	}
	if q.HasUnapprovedPosts {
		conds = append(conds, "(t.is_unapproved OR t.has_unapproved_posts)")
	}
	if q.Participant != nil {
		participant := "EXISTS (SELECT 1 FROM thread_participants tp WHERE tp.thread_id = t.id AND tp.user_id = " + a.add(q.Participant.UserId) + ")"
		if q.Participant.OrReported {
			participant = "(" + participant + " OR t.has_reported_posts)"
		}
		conds = append(conds, participant)
	}
	if q.Read != nil {
		conds = append(conds, readFilterSQL(a, *q.Read))
	}
	return strings.Join(conds, " AND ")
}

// readFilterSQL keeps threads by their fresh visible posts:
// new threads have none of them read, unread threads have some read and some not.
func readFilterSQL(a *queryArgs, f domain.ReadFilter) string {
	cutoff := a.add(f.Cutoff)
	user := a.add(f.UserId)
	posts := postVisibilitySQL(a, f.Posts, "p")

	fresh := "SELECT 1 FROM posts p WHERE p.thread_id = t.id AND p.posted_on > " + cutoff + " AND " + posts
	read := "EXISTS (SELECT 1 FROM post_reads r WHERE r.post_id = p.id AND r.user_id = " + user + ")"

	if f.Kind == domain.ReadFilterUnread {
		return "EXISTS (" + fresh + " AND " + read + ") AND EXISTS (" + fresh + " AND NOT " + read + ")"
	}
	return "EXISTS (" + fresh + ") AND NOT EXISTS (" + fresh + " AND " + read + ")"
}
