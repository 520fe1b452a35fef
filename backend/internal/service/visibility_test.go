package service

import (
	"testing"

	"github.com/itchan-dev/forum/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibility_Threads(t *testing.T) {
	var v Visibility

	t.Run("groups categories with the same permissions", func(t *testing.T) {
		user := testMember()
		user.ACL.Categories[4] = moderatorACL()

		vis := v.Threads(user, []domain.CategoryId{1, 2, 3, 4})

		assert.Equal(t, domain.UserId(7), vis.ViewerId)
		require.Len(t, vis.Rules, 2)
		assert.Equal(t, domain.ThreadVisibilityRule{Categories: []domain.CategoryId{2, 3}, AllThreads: true}, vis.Rules[0])
		assert.Equal(t, domain.ThreadVisibilityRule{Categories: []domain.CategoryId{4}, AllThreads: true, Unapproved: true, Hidden: true}, vis.Rules[1])
	})

	t.Run("see without browse hides the category", func(t *testing.T) {
		user := testMember()
		user.ACL.Categories[2] = domain.CategoryACL{CanSee: true, CanSeeAllThreads: true}

		vis := v.Threads(user, []domain.CategoryId{2})
		assert.True(t, vis.IsEmpty())
	})

	t.Run("guest without see all threads sees nothing", func(t *testing.T) {
		guest := testGuest()
		guest.ACL.Categories[2] = domain.CategoryACL{CanSee: true, CanBrowse: true}

		vis := v.Threads(guest, []domain.CategoryId{2, 3})
		require.Len(t, vis.Rules, 1)
		assert.Equal(t, []domain.CategoryId{3}, vis.Rules[0].Categories)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		admin := &domain.User{Id: 1, Admin: true}
		vis := v.Threads(admin, []domain.CategoryId{2, 4})
		require.Len(t, vis.Rules, 1)
		assert.True(t, vis.Rules[0].Unapproved)
		assert.True(t, vis.Rules[0].Hidden)
	})

	t.Run("is monotonic over category supersets", func(t *testing.T) {
		user := testMember()
		narrow := v.Threads(user, []domain.CategoryId{2})
		wide := v.Threads(user, []domain.CategoryId{2, 3, 4})

		thread := &domain.Thread{Id: 1, CategoryId: 2}
		assert.True(t, narrow.Allows(thread))
		assert.True(t, wide.Allows(thread))
		assert.Equal(t, v.Threads(user, []domain.CategoryId{2, 3, 4}), wide)
	})
}

func TestThreadVisibility_Allows(t *testing.T) {
	var v Visibility
	user := testMember()
	user.ACL.Categories[3] = domain.CategoryACL{CanSee: true, CanBrowse: true}
	vis := v.Threads(user, []domain.CategoryId{2, 3})

	tests := []struct {
		name    string
		thread  domain.Thread
		allowed bool
	}{
		{"regular", domain.Thread{CategoryId: 2, StarterId: 9}, true},
		{"outside scope", domain.Thread{CategoryId: 4, StarterId: 9}, false},
		{"unapproved by other", domain.Thread{CategoryId: 2, StarterId: 9, IsUnapproved: true}, false},
		{"unapproved own", domain.Thread{CategoryId: 2, StarterId: 7, IsUnapproved: true}, true},
		{"hidden", domain.Thread{CategoryId: 2, StarterId: 7, IsHidden: true}, false},
		{"own only category, other starter", domain.Thread{CategoryId: 3, StarterId: 9}, false},
		{"own only category, own thread", domain.Thread{CategoryId: 3, StarterId: 7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, vis.Allows(&tt.thread))
		})
	}
}

func TestVisibility_Posts(t *testing.T) {
	var v Visibility
	user := testMember()
	user.ACL.Categories[4] = moderatorACL()

	vis := v.Posts(user, []domain.CategoryId{2, 3, 4})
	require.Len(t, vis.Rules, 2)

	assert.True(t, vis.Allows(&domain.Post{CategoryId: 2, PosterId: 9}))
	assert.False(t, vis.Allows(&domain.Post{CategoryId: 2, PosterId: 9, IsUnapproved: true}))
	assert.True(t, vis.Allows(&domain.Post{CategoryId: 2, PosterId: 7, IsUnapproved: true}))
	assert.True(t, vis.Allows(&domain.Post{CategoryId: 4, PosterId: 9, IsUnapproved: true}))
	assert.False(t, vis.Allows(&domain.Post{CategoryId: 5, PosterId: 9}))

	assert.True(t, v.Posts(domain.Anonymous(), []domain.CategoryId{2}).IsEmpty())
}

func TestVisibility_ThreadACL(t *testing.T) {
	var v Visibility
	user := testMember()
	category := &domain.Category{Id: 2}

	acl := v.ThreadACL(user, &domain.Thread{CategoryId: 2}, category)
	assert.True(t, acl.CanReply)
	assert.False(t, acl.CanMovePosts)

	closed := v.ThreadACL(user, &domain.Thread{CategoryId: 2, IsClosed: true}, category)
	assert.False(t, closed.CanReply)

	assert.Equal(t, domain.ThreadACL{}, v.ThreadACL(testGuest(), &domain.Thread{CategoryId: 2}, category))
}
