package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
)

type ReadMarkerStorage interface {
	GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error)
	GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	MarkRead(ctx context.Context, userId domain.UserId, postId domain.PostId) error
	HasRead(ctx context.Context, userId domain.UserId, postId domain.PostId) (bool, error)
	PurgeReadMarkers(ctx context.Context, userId *domain.UserId, postIds []domain.PostId) (int64, error)
	UnreadPostIds(ctx context.Context, userId domain.UserId, candidates []domain.PostId) ([]domain.PostId, error)
}

// ReadMarkers records which posts a user has read.
type ReadMarkers struct {
	storage    ReadMarkerStorage
	visibility Visibility
}

func NewReadMarkers(storage ReadMarkerStorage) *ReadMarkers {
	return &ReadMarkers{storage: storage}
}

// MarkRead stores a marker for a post the user can see. Marking twice is a no-op.
func (r *ReadMarkers) MarkRead(ctx context.Context, user *domain.User, threadId domain.ThreadId, postId domain.PostId) error {
	post, err := r.visiblePost(ctx, user, threadId, postId)
	if err != nil {
		return err
	}
	if err := r.storage.MarkRead(ctx, user.Id, post.Id); err != nil {
		return fmt.Errorf("failed to mark post %d read: %w", post.Id, err)
	}
	return nil
}

// MarkUnread removes the user's marker for a post. Other users keep theirs.
func (r *ReadMarkers) MarkUnread(ctx context.Context, user *domain.User, threadId domain.ThreadId, postId domain.PostId) error {
	post, err := r.visiblePost(ctx, user, threadId, postId)
	if err != nil {
		return err
	}
	read, err := r.storage.HasRead(ctx, user.Id, post.Id)
	if err != nil {
		return fmt.Errorf("failed to check post %d: %w", post.Id, err)
	}
	if !read {
		return nil
	}
	userId := user.Id
	if _, err := r.storage.PurgeReadMarkers(ctx, &userId, []domain.PostId{post.Id}); err != nil {
		return fmt.Errorf("failed to mark post %d unread: %w", post.Id, err)
	}
	return nil
}

func (r *ReadMarkers) visiblePost(ctx context.Context, user *domain.User, threadId domain.ThreadId, postId domain.PostId) (*domain.Post, error) {
	if user.IsAnonymous() {
		return nil, internal_errors.PermissionDenied("This action is not available to guests.")
	}

	post, err := r.storage.GetPost(ctx, postId)
	if err != nil {
		return nil, err
	}
	if post.ThreadId != threadId {
		return nil, internal_errors.NotFound("Post not found")
	}

	thread, err := r.storage.GetThread(ctx, threadId)
	if err != nil {
		return nil, err
	}
	categories := []domain.CategoryId{thread.CategoryId}
	if !r.visibility.Threads(user, categories).Allows(thread) || !r.visibility.Posts(user, categories).Allows(post) {
		return nil, internal_errors.NotFound("Post not found")
	}
	return post, nil
}

// UnreadPostIds filters candidates down to posts without the user's markers.
// Guests have no markers, so everything stays unread.
func (r *ReadMarkers) UnreadPostIds(ctx context.Context, user *domain.User, candidates []domain.PostId) ([]domain.PostId, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if user.IsAnonymous() {
		return candidates, nil
	}
	return r.storage.UnreadPostIds(ctx, user.Id, candidates)
}
