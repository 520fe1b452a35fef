package service

import (
	"context"
	"errors"
	"testing"

	"github.com/itchan-dev/forum/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_Resolve(t *testing.T) {
	ctx := context.Background()
	roleACL := func(role string) (domain.ACL, error) {
		if role == domain.RoleGuest {
			return domain.ACL{Categories: map[domain.CategoryId]domain.CategoryACL{2: {CanSee: true, CanBrowse: true}}}, nil
		}
		return domain.ACL{Categories: map[domain.CategoryId]domain.CategoryACL{2: memberACL()}}, nil
	}
	stored := func(active bool) func(domain.UserId) (*domain.User, error) {
		return func(id domain.UserId) (*domain.User, error) {
			return &domain.User{Id: id, Name: "member", Role: domain.RoleMember, IsActive: active}, nil
		}
	}

	t.Run("member", func(t *testing.T) {
		u := NewUsers(&MockUserStorage{getUserFunc: stored(true), getRoleACLFunc: roleACL})
		user, err := u.Resolve(ctx, &domain.User{Id: 7})

		require.NoError(t, err)
		assert.Equal(t, domain.UserId(7), user.Id)
		assert.True(t, user.ACL.Category(2).CanStartThreads)
	})

	t.Run("guest", func(t *testing.T) {
		u := NewUsers(&MockUserStorage{getRoleACLFunc: roleACL})
		user, err := u.Resolve(ctx, domain.Anonymous())

		require.NoError(t, err)
		assert.True(t, user.IsAnonymous())
		assert.True(t, user.ACL.Category(2).CanView())
		assert.False(t, user.ACL.Category(2).CanStartThreads)
	})

	t.Run("deleted user becomes guest", func(t *testing.T) {
		u := NewUsers(&MockUserStorage{getRoleACLFunc: roleACL})
		user, err := u.Resolve(ctx, &domain.User{Id: 7})

		require.NoError(t, err)
		assert.True(t, user.IsAnonymous())
		assert.Equal(t, domain.RoleGuest, user.Role)
	})

	t.Run("inactive user becomes guest", func(t *testing.T) {
		u := NewUsers(&MockUserStorage{getUserFunc: stored(false), getRoleACLFunc: roleACL})
		user, err := u.Resolve(ctx, &domain.User{Id: 7})

		require.NoError(t, err)
		assert.True(t, user.IsAnonymous())
	})

	t.Run("storage error", func(t *testing.T) {
		u := NewUsers(&MockUserStorage{getUserFunc: func(domain.UserId) (*domain.User, error) {
			return nil, errors.New("db down")
		}})
		_, err := u.Resolve(ctx, &domain.User{Id: 7})
		assert.Error(t, err)
	})

	t.Run("role error", func(t *testing.T) {
		u := NewUsers(&MockUserStorage{getRoleACLFunc: func(string) (domain.ACL, error) {
			return domain.ACL{}, errors.New("db down")
		}})
		_, err := u.Resolve(ctx, nil)
		assert.Error(t, err)
	})
}
