package domain

import (
	"fmt"

	internal_errors "github.com/itchan-dev/forum/shared/errors"
)

type Pagination struct {
	Page     int  `json:"page"`
	Pages    int  `json:"pages"`
	Count    int  `json:"count"`
	First    *int `json:"first"`
	Previous *int `json:"previous"`
	Next     *int `json:"next"`
	Last     *int `json:"last"`
	Before   int  `json:"before"`
	More     int  `json:"more"`

	offset int
	limit  int
}

// Paginate splits count items into pages of perPage, folding up to orphans
// trailing items into the last page. Pages outside of the list are not found.
func Paginate(count, page, perPage, orphans int) (Pagination, error) {
	if perPage <= 0 {
		perPage = 1
	}
	if orphans < 0 {
		orphans = 0
	}

	pages := 1
	if count > 0 {
		hits := max(1, count-orphans)
		pages = (hits + perPage - 1) / perPage
	}
	if page < 1 || page > pages {
		return Pagination{}, internal_errors.NotFound(fmt.Sprintf("Page %d does not exist", page))
	}

	bottom := (page - 1) * perPage
	top := bottom + perPage
	if top+orphans >= count {
		top = count
	}

	p := Pagination{
		Page:   page,
		Pages:  pages,
		Count:  count,
		offset: bottom,
		limit:  top - bottom,
	}
	if page > 1 {
		first := 1
		p.First = &first
		if page-1 > 1 {
			previous := page - 1
			p.Previous = &previous
		}
	}
	if page < pages {
		last := pages
		next := page + 1
		p.Last = &last
		p.Next = &next
	}
	if count > 0 {
		p.Before = bottom
	}
	p.More = count - top
	return p, nil
}

func (p Pagination) Offset() int {
	return p.offset
}

func (p Pagination) Limit() int {
	return p.limit
}
