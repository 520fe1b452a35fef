package api

import "github.com/itchan-dev/forum/shared/domain"

// Response DTOs

type CategoryResponse struct {
	Id       domain.CategoryId  `json:"id"`
	ParentId *domain.CategoryId `json:"parent,omitempty"`
	Name     string             `json:"name"`
	Slug     string             `json:"slug"`
	Level    int                `json:"level"`
	IsClosed bool               `json:"is_closed"`
	domain.ReadState
}

type CategoryIndexResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

func NewCategoryResponse(c *domain.Category, state domain.ReadState) CategoryResponse {
	return CategoryResponse{
		Id:        c.Id,
		ParentId:  c.ParentId,
		Name:      c.Name,
		Slug:      c.Slug,
		Level:     c.Level,
		IsClosed:  c.IsClosed,
		ReadState: state,
	}
}

func NewCategoryIndexResponse(index *domain.CategoryIndex) CategoryIndexResponse {
	categories := make([]CategoryResponse, len(index.Categories))
	for i, c := range index.Categories {
		categories[i] = NewCategoryResponse(c, index.ReadStates[c.Id])
	}
	return CategoryIndexResponse{Categories: categories}
}
