package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
)

type ThreadStorage interface {
	GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error)
	GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	CountPosts(ctx context.Context, threadId domain.ThreadId, visibility domain.PostVisibility) (int, error)
	ListPosts(ctx context.Context, threadId domain.ThreadId, visibility domain.PostVisibility, limit, offset int) ([]*domain.Post, error)
}

type ThreadAnnotator interface {
	AnnotateOne(ctx context.Context, user *domain.User, thread *domain.Thread) (domain.ReadState, error)
}

type UnreadPostsFilter interface {
	UnreadPostIds(ctx context.Context, user *domain.User, candidates []domain.PostId) ([]domain.PostId, error)
}

type ThreadsConfig struct {
	PostsPerPage int
	PostsTail    int
}

// Threads serves a single thread with a page of its posts.
type Threads struct {
	storage    ThreadStorage
	tracker    ThreadAnnotator
	markers    UnreadPostsFilter
	cutoff     *CutoffPolicy
	visibility Visibility
	cfg        ThreadsConfig
}

func NewThreads(storage ThreadStorage, tracker ThreadAnnotator, markers UnreadPostsFilter, cutoff *CutoffPolicy, cfg ThreadsConfig) *Threads {
	return &Threads{storage: storage, tracker: tracker, markers: markers, cutoff: cutoff, cfg: cfg}
}

func (t *Threads) Get(ctx context.Context, user *domain.User, id domain.ThreadId, page int) (*domain.ThreadView, error) {
	thread, err := t.storage.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}
	categories := []domain.CategoryId{thread.CategoryId}
	if !t.visibility.Threads(user, categories).Allows(thread) {
		return nil, internal_errors.NotFound("Thread not found")
	}

	tree, err := t.storage.GetCategoryTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	category, _ := tree.Get(thread.CategoryId)

	state, err := t.tracker.AnnotateOne(ctx, user, thread)
	if err != nil {
		return nil, err
	}

	posts := t.visibility.Posts(user, categories)
	count, err := t.storage.CountPosts(ctx, thread.Id, posts)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if page == 0 {
		page = 1
	}
	pagination, err := domain.Paginate(count, page, t.cfg.PostsPerPage, t.cfg.PostsTail)
	if err != nil {
		return nil, err
	}

	view := &domain.ThreadView{
		Thread:     thread,
		Category:   category,
		ACL:        t.visibility.ThreadACL(user, thread, category),
		ReadState:  state,
		UnreadPost: map[domain.PostId]bool{},
		Pagination: pagination,
	}
	if pagination.Limit() == 0 {
		return view, nil
	}

	view.Posts, err = t.storage.ListPosts(ctx, thread.Id, posts, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	if err := t.markUnreadPosts(ctx, user, view); err != nil {
		return nil, err
	}
	return view, nil
}

// markUnreadPosts flags posts newer than the cutoff that have no marker.
// Guests see every post as read.
func (t *Threads) markUnreadPosts(ctx context.Context, user *domain.User, view *domain.ThreadView) error {
	if user.IsAnonymous() || view.ReadState.IsRead {
		return nil
	}

	cutoff := t.cutoff.Date(user)
	var fresh []domain.PostId
	for _, post := range view.Posts {
		if post.PostedOn.After(cutoff) {
			fresh = append(fresh, post.Id)
		}
	}

	unread, err := t.markers.UnreadPostIds(ctx, user, fresh)
	if err != nil {
		return fmt.Errorf("failed to load read markers: %w", err)
	}
	for _, id := range unread {
		view.UnreadPost[id] = true
	}
	return nil
}
