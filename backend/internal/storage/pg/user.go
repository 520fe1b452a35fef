package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
)

// GetUser loads the user row without permissions; those come from the role.
func (s *Storage) GetUser(ctx context.Context, id domain.UserId) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, is_admin, is_active, joined_on, read_cutoff
		FROM users
		WHERE id = $1
	`, id).Scan(&u.Id, &u.Name, &u.Role, &u.Admin, &u.IsActive, &u.JoinedOn, &u.ReadCutoff)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// GetRoleACL resolves the permissions granted to role.
func (s *Storage) GetRoleACL(ctx context.Context, role string) (domain.ACL, error) {
	acl := domain.ACL{Categories: map[domain.CategoryId]domain.CategoryACL{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT can_see_unapproved_content_lists, can_moderate_private_threads
		FROM roles
		WHERE name = $1
	`, role).Scan(&acl.CanSeeUnapprovedContentLists, &acl.CanModeratePrivateThreads)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ACL{}, internal_errors.NotFound("Role not found")
		}
		return domain.ACL{}, fmt.Errorf("failed to query role: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, can_see, can_browse, can_see_all_threads, can_start_threads,
		       can_reply_threads, can_approve_content, can_hide_threads, can_hide_posts,
		       can_pin_threads, can_close_threads, can_move_posts
		FROM category_permissions
		WHERE role = $1
	`, role)
	if err != nil {
		return domain.ACL{}, fmt.Errorf("failed to query category permissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id domain.CategoryId
		var c domain.CategoryACL
		err := rows.Scan(&id, &c.CanSee, &c.CanBrowse, &c.CanSeeAllThreads, &c.CanStartThreads,
			&c.CanReplyThreads, &c.CanApproveContent, &c.CanHideThreads, &c.CanHidePosts,
			&c.CanPinThreads, &c.CanCloseThreads, &c.CanMovePosts)
		if err != nil {
			return domain.ACL{}, fmt.Errorf("failed to scan category permissions: %w", err)
		}
		acl.Categories[id] = c
	}
	if err := rows.Err(); err != nil {
		return domain.ACL{}, fmt.Errorf("error iterating category permissions: %w", err)
	}
	return acl, nil
}
