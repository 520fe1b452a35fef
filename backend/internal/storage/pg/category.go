package pg

import (
	"context"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
)

// GetCategoryTree loads every category in pre-order, siblings sorted by ordering.
func (s *Storage) GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH RECURSIVE tree AS (
			SELECT c.id, c.parent_id, c.name, c.slug, c.level, c.is_closed, c.special,
			       ARRAY[c.ordering::BIGINT, c.id] AS path
			FROM categories c
			WHERE c.parent_id IS NULL
			UNION ALL
			SELECT c.id, c.parent_id, c.name, c.slug, c.level, c.is_closed, c.special,
			       tree.path || ARRAY[c.ordering::BIGINT, c.id]
			FROM categories c
			JOIN tree ON c.parent_id = tree.id
		)
		SELECT id, parent_id, name, slug, level, is_closed, special
		FROM tree
		ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Id, &c.ParentId, &c.Name, &c.Slug, &c.Level, &c.IsClosed, &c.Special); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return domain.NewCategoryTree(categories), nil
}
