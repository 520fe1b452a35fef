package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
)

type UserStorage interface {
	GetUser(ctx context.Context, id domain.UserId) (*domain.User, error)
	GetRoleACL(ctx context.Context, role string) (domain.ACL, error)
}

// Users turns a token identity into a user with resolved permissions.
type Users struct {
	storage UserStorage
}

func NewUsers(storage UserStorage) *Users {
	return &Users{storage: storage}
}

// Resolve loads the user behind identity. Guests, unknown and deactivated
// users all get the guest role.
func (u *Users) Resolve(ctx context.Context, identity *domain.User) (*domain.User, error) {
	user := domain.Anonymous()
	if !identity.IsAnonymous() {
		stored, err := u.storage.GetUser(ctx, identity.Id)
		switch {
		case internal_errors.IsNotFound(err):
		case err != nil:
			return nil, err
		case stored.IsActive:
			user = stored
		}
	}

	acl, err := u.storage.GetRoleACL(ctx, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions for role %q: %w", user.Role, err)
	}
	user.ACL = acl
	return user, nil
}
