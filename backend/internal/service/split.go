package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
	"github.com/itchan-dev/forum/shared/logger"
	"github.com/itchan-dev/forum/shared/middleware/metrics"
	"github.com/itchan-dev/forum/shared/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// MoveHook runs inside the transaction that moved the posts.
type MoveHook func(ctx context.Context, tx InvalidationTx, move domain.PostsMove) error

type SplitStorage interface {
	GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error)
	GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	GetPosts(ctx context.Context, threadId domain.ThreadId, ids []domain.PostId) ([]*domain.Post, error)
	// SplitPosts creates the new thread, moves the posts, resyncs both threads
	// and calls hook, all in one transaction.
	SplitPosts(ctx context.Context, data domain.SplitData, hook MoveHook) (domain.ThreadId, error)
}

type ThreadTitleValidator interface {
	Title(title string) error
}

// Split moves posts of a thread into a new thread.
type Split struct {
	storage     SplitStorage
	invalidator *Invalidator
	validator   ThreadTitleValidator
	visibility  Visibility
	limit       int
}

func NewSplit(storage SplitStorage, invalidator *Invalidator, validator ThreadTitleValidator, limit int) *Split {
	return &Split{storage: storage, invalidator: invalidator, validator: validator, limit: limit}
}

// Split checks every precondition before anything is written, so a rejected
// request never reaches storage or the invalidation hook.
func (s *Split) Split(ctx context.Context, user *domain.User, data domain.SplitData) (_ domain.ThreadId, err error) {
	ctx, span := tracing.Start(ctx, "split.posts",
		attribute.Int64("thread", int64(data.ThreadId)),
		attribute.Int("posts", len(data.PostIds)),
	)
	defer func() { tracing.End(span, err) }()

	if user.IsAnonymous() {
		return 0, internal_errors.PermissionDenied("This action is not available to guests.")
	}

	tree, err := s.storage.GetCategoryTree(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load categories: %w", err)
	}
	thread, err := s.storage.GetThread(ctx, data.ThreadId)
	if err != nil {
		return 0, err
	}
	if !s.visibility.Threads(user, []domain.CategoryId{thread.CategoryId}).Allows(thread) {
		return 0, internal_errors.NotFound("Thread not found")
	}

	category, ok := tree.Get(thread.CategoryId)
	if !ok {
		return 0, internal_errors.NotFound("Thread not found")
	}
	if err := s.allowSplit(user, thread, category); err != nil {
		return 0, err
	}

	postIds, err := s.cleanPostIds(data.PostIds)
	if err != nil {
		return 0, err
	}
	if err := s.checkPosts(ctx, user, thread, postIds); err != nil {
		return 0, err
	}
	if err := s.checkTarget(user, tree, data); err != nil {
		return 0, err
	}

	data.PostIds = postIds
	data.Actor = *user
	newThreadId, err := s.storage.SplitPosts(ctx, data, s.invalidator.PostsMoved)
	if err != nil {
		return 0, err
	}

	metrics.PostsSplit.Add(float64(len(postIds)))
	logger.Component("moderation").Info("posts split into new thread",
		"user", user.Id,
		"source_thread", thread.Id,
		"target_thread", newThreadId,
		"posts", len(postIds),
	)
	return newThreadId, nil
}

func (s *Split) allowSplit(user *domain.User, thread *domain.Thread, category *domain.Category) error {
	acl := s.visibility.ACL(user, thread.CategoryId)
	if !acl.CanMovePosts {
		return internal_errors.PermissionDenied("You can't split posts from this thread.")
	}
	if category.IsClosed && !acl.CanCloseThreads {
		return internal_errors.PermissionDenied("This category is closed. You can't split posts in it.")
	}
	if thread.IsClosed && !acl.CanCloseThreads {
		return internal_errors.PermissionDenied("This thread is closed. You can't split posts in it.")
	}
	return nil
}

func (s *Split) cleanPostIds(ids []domain.PostId) ([]domain.PostId, error) {
	seen := make(map[domain.PostId]struct{}, len(ids))
	clean := make([]domain.PostId, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		clean = append(clean, id)
	}

	if len(clean) == 0 {
		return nil, internal_errors.BadRequest("You have to specify at least one post to split.")
	}
	if len(clean) > s.limit {
		return nil, internal_errors.BadRequest(fmt.Sprintf("No more than %d posts can be split at single time.", s.limit))
	}
	return clean, nil
}

func (s *Split) checkPosts(ctx context.Context, user *domain.User, thread *domain.Thread, ids []domain.PostId) error {
	posts, err := s.storage.GetPosts(ctx, thread.Id, ids)
	if err != nil {
		return err
	}

	visible := s.visibility.Posts(user, []domain.CategoryId{thread.CategoryId})
	acl := s.visibility.ACL(user, thread.CategoryId)
	found := 0
	for _, post := range posts {
		if !visible.Allows(post) {
			continue
		}
		found++
		if post.IsEvent {
			return internal_errors.BadRequest("Events can't be split.")
		}
		if thread.FirstPostId != nil && post.Id == *thread.FirstPostId {
			return internal_errors.BadRequest("You can't split thread's first post.")
		}
		if post.IsHidden && !acl.CanHidePosts {
			return internal_errors.BadRequest("You can't split posts the content you can't see.")
		}
	}
	if found != len(ids) {
		return internal_errors.BadRequest("One or more posts to split could not be found.")
	}
	return nil
}

func (s *Split) checkTarget(user *domain.User, tree *domain.CategoryTree, data domain.SplitData) error {
	if err := s.validator.Title(string(data.Title)); err != nil {
		return err
	}

	category, ok := tree.Get(data.CategoryId)
	if !ok || category.Special != domain.SpecialNone || !s.visibility.CanView(user, category.Id) {
		return internal_errors.BadRequest("Requested category could not be found.")
	}

	acl := s.visibility.ACL(user, category.Id)
	if !acl.CanStartThreads {
		return internal_errors.BadRequest("You can't create new threads in selected category.")
	}
	if category.IsClosed && !acl.CanCloseThreads {
		return internal_errors.BadRequest("This category is closed. You can't start new threads in it.")
	}
	switch {
	case data.Weight < domain.WeightDefault || data.Weight > domain.WeightPinnedGlobally:
		return internal_errors.BadRequest("Invalid thread weight.")
	case data.Weight > acl.CanPinThreads && data.Weight == domain.WeightPinnedGlobally:
		return internal_errors.BadRequest("You don't have permission to pin threads globally in this category.")
	case data.Weight > acl.CanPinThreads:
		return internal_errors.BadRequest("You don't have permission to pin threads in this category.")
	}
	if data.IsClosed && !acl.CanCloseThreads {
		return internal_errors.BadRequest("You don't have permission to close threads in this category.")
	}
	if data.IsHidden && !acl.CanHideThreads {
		return internal_errors.BadRequest("You don't have permission to hide threads in this category.")
	}
	return nil
}
