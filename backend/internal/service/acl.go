package service

import "github.com/itchan-dev/forum/shared/domain"

// ThreadACL derives what the user may do with a thread from the category permissions.
func (v Visibility) ThreadACL(user *domain.User, thread *domain.Thread, category *domain.Category) domain.ThreadACL {
	acl := v.categoryACL(user, thread.CategoryId)
	if user.IsAnonymous() {
		return domain.ThreadACL{}
	}

	locked := thread.IsClosed || (category != nil && category.IsClosed)
	return domain.ThreadACL{
		CanReply:     acl.CanReplyThreads && (!locked || acl.CanCloseThreads),
		CanPin:       acl.CanPinThreads,
		CanClose:     acl.CanCloseThreads,
		CanHide:      acl.CanHideThreads,
		CanApprove:   acl.CanApproveContent,
		CanMovePosts: acl.CanMovePosts,
	}
}
