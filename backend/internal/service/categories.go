package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
)

type CategoryStorage interface {
	GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error)
}

type CategoriesAnnotator interface {
	AnnotateMany(ctx context.Context, user *domain.User, categories []*domain.Category) (domain.CategoryReadStates, error)
}

type Categories struct {
	storage    CategoryStorage
	tracker    CategoriesAnnotator
	visibility Visibility
}

func NewCategories(storage CategoryStorage, tracker CategoriesAnnotator) *Categories {
	return &Categories{storage: storage, tracker: tracker}
}

// Index lists forum categories the user can view, in tree order.
func (c *Categories) Index(ctx context.Context, user *domain.User) (*domain.CategoryIndex, error) {
	tree, err := c.storage.GetCategoryTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	root, ok := tree.Root()
	if !ok {
		return nil, internal_errors.NotFound("Category not found")
	}

	var visible []*domain.Category
	var walk func(id domain.CategoryId)
	walk = func(id domain.CategoryId) {
		for _, child := range tree.Children(id) {
			if c.visibility.CanView(user, child.Id) {
				visible = append(visible, child)
				walk(child.Id)
			}
		}
	}
	walk(root.Id)

	states, err := c.tracker.AnnotateMany(ctx, user, visible)
	if err != nil {
		return nil, err
	}
	return &domain.CategoryIndex{Categories: visible, ReadStates: states}, nil
}
