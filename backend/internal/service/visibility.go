package service

import (
	"github.com/itchan-dev/forum/shared/domain"
)

type threadRuleKey struct {
	allThreads bool
	unapproved bool
	hidden     bool
}

// Visibility turns resolved permissions into thread and post filters.
// It is pure: the same user and categories always give the same rules.
type Visibility struct{}

func (Visibility) categoryACL(user *domain.User, id domain.CategoryId) domain.CategoryACL {
	if user != nil && user.Admin && !user.IsAnonymous() {
		return domain.FullCategoryACL()
	}
	if user == nil {
		return domain.CategoryACL{}
	}
	return user.ACL.Category(id)
}

// CanView reports whether the user may open the category at all.
func (v Visibility) CanView(user *domain.User, id domain.CategoryId) bool {
	return v.categoryACL(user, id).CanView()
}

// ACL exposes the effective permissions, admins included.
func (v Visibility) ACL(user *domain.User, id domain.CategoryId) domain.CategoryACL {
	return v.categoryACL(user, id)
}

// Threads builds one rule per distinct permission combination over the
// categories the user can view. Categories the user can't view are omitted,
// so an empty result matches nothing.
func (v Visibility) Threads(user *domain.User, categories []domain.CategoryId) domain.ThreadVisibility {
	result := domain.ThreadVisibility{ViewerId: viewerId(user)}
	index := make(map[threadRuleKey]int)

	for _, id := range categories {
		acl := v.categoryACL(user, id)
		if !acl.CanView() {
			continue
		}
		if !acl.CanSeeAllThreads && user.IsAnonymous() {
			continue
		}

		key := threadRuleKey{acl.CanSeeAllThreads, acl.CanApproveContent, acl.CanHideThreads}
		if i, ok := index[key]; ok {
			result.Rules[i].Categories = append(result.Rules[i].Categories, id)
			continue
		}
		index[key] = len(result.Rules)
		result.Rules = append(result.Rules, domain.ThreadVisibilityRule{
			Categories: []domain.CategoryId{id},
			AllThreads: key.allThreads,
			Unapproved: key.unapproved,
			Hidden:     key.hidden,
		})
	}
	return result
}

// Posts mirrors Threads for posts inside visible threads.
func (v Visibility) Posts(user *domain.User, categories []domain.CategoryId) domain.PostVisibility {
	result := domain.PostVisibility{ViewerId: viewerId(user)}
	index := make(map[bool]int)

	for _, id := range categories {
		acl := v.categoryACL(user, id)
		if !acl.CanView() {
			continue
		}
		if i, ok := index[acl.CanApproveContent]; ok {
			result.Rules[i].Categories = append(result.Rules[i].Categories, id)
			continue
		}
		index[acl.CanApproveContent] = len(result.Rules)
		result.Rules = append(result.Rules, domain.PostVisibilityRule{
			Categories: []domain.CategoryId{id},
			Unapproved: acl.CanApproveContent,
		})
	}
	return result
}

func viewerId(user *domain.User) domain.UserId {
	if user.IsAnonymous() {
		return 0
	}
	return user.Id
}
