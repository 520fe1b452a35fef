package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	"github.com/itchan-dev/forum/shared/middleware/metrics"
	"github.com/itchan-dev/forum/shared/tracing"
	"go.opentelemetry.io/otel/attribute"
)

type ReadTrackerStorage interface {
	UnreadThreadIds(ctx context.Context, q domain.UnreadQuery) ([]domain.ThreadId, error)
	UnreadCategoryIds(ctx context.Context, q domain.UnreadQuery) ([]domain.CategoryId, error)
}

// ThreadsTracker annotates threads with read state. A batch costs at most one
// storage round trip; guests and empty batches cost none.
type ThreadsTracker struct {
	storage    ReadTrackerStorage
	cutoff     *CutoffPolicy
	visibility Visibility
}

func NewThreadsTracker(storage ReadTrackerStorage, cutoff *CutoffPolicy) *ThreadsTracker {
	return &ThreadsTracker{storage: storage, cutoff: cutoff}
}

func (t *ThreadsTracker) AnnotateOne(ctx context.Context, user *domain.User, thread *domain.Thread) (domain.ReadState, error) {
	states, err := t.AnnotateMany(ctx, user, []*domain.Thread{thread})
	if err != nil {
		return domain.ReadState{}, err
	}
	return states[thread.Id], nil
}

// AnnotateMany returns a state for every given thread. Threads with visible
// posts newer than the cutoff and without the user's markers are unread.
func (t *ThreadsTracker) AnnotateMany(ctx context.Context, user *domain.User, threads []*domain.Thread) (_ domain.ThreadReadStates, err error) {
	states := make(domain.ThreadReadStates, len(threads))
	for _, thread := range threads {
		states[thread.Id] = domain.StateRead
	}
	if len(threads) == 0 || user.IsAnonymous() {
		return states, nil
	}

	ids := make([]domain.ThreadId, 0, len(threads))
	var categories []domain.CategoryId
	seen := make(map[domain.CategoryId]struct{})
	for _, thread := range threads {
		ids = append(ids, thread.Id)
		if _, ok := seen[thread.CategoryId]; !ok {
			seen[thread.CategoryId] = struct{}{}
			categories = append(categories, thread.CategoryId)
		}
	}

	posts := t.visibility.Posts(user, categories)
	if posts.IsEmpty() {
		return states, nil
	}

	ctx, span := tracing.Start(ctx, "readtracker.threads", attribute.Int("threads", len(ids)))
	defer func() { tracing.End(span, err) }()

	metrics.ReadTrackerQueries.WithLabelValues("thread").Inc()
	unread, err := t.storage.UnreadThreadIds(ctx, domain.UnreadQuery{
		UserId:    user.Id,
		Cutoff:    t.cutoff.Date(user),
		ThreadIds: ids,
		Posts:     posts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load unread threads: %w", err)
	}

	for _, id := range unread {
		if _, ok := states[id]; ok {
			states[id] = domain.StateUnread
		}
	}
	return states, nil
}

// CategoriesTracker annotates categories. A category is unread when any
// visible thread in it has unread visible posts.
type CategoriesTracker struct {
	storage    ReadTrackerStorage
	cutoff     *CutoffPolicy
	visibility Visibility
}

func NewCategoriesTracker(storage ReadTrackerStorage, cutoff *CutoffPolicy) *CategoriesTracker {
	return &CategoriesTracker{storage: storage, cutoff: cutoff}
}

func (c *CategoriesTracker) AnnotateOne(ctx context.Context, user *domain.User, category *domain.Category) (domain.ReadState, error) {
	states, err := c.AnnotateMany(ctx, user, []*domain.Category{category})
	if err != nil {
		return domain.ReadState{}, err
	}
	return states[category.Id], nil
}

func (c *CategoriesTracker) AnnotateMany(ctx context.Context, user *domain.User, categories []*domain.Category) (_ domain.CategoryReadStates, err error) {
	states := make(domain.CategoryReadStates, len(categories))
	for _, category := range categories {
		states[category.Id] = domain.StateRead
	}
	if len(categories) == 0 || user.IsAnonymous() {
		return states, nil
	}

	ids := domain.CategoryIds(categories)
	threads := c.visibility.Threads(user, ids)
	posts := c.visibility.Posts(user, ids)
	if threads.IsEmpty() || posts.IsEmpty() {
		return states, nil
	}

	ctx, span := tracing.Start(ctx, "readtracker.categories", attribute.Int("categories", len(ids)))
	defer func() { tracing.End(span, err) }()

	metrics.ReadTrackerQueries.WithLabelValues("category").Inc()
	unread, err := c.storage.UnreadCategoryIds(ctx, domain.UnreadQuery{
		UserId:      user.Id,
		Cutoff:      c.cutoff.Date(user),
		CategoryIds: ids,
		Threads:     threads,
		Posts:       posts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load unread categories: %w", err)
	}

	for _, id := range unread {
		if _, ok := states[id]; ok {
			states[id] = domain.StateUnread
		}
	}
	return states, nil
}
