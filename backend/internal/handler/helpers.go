package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
)

const defaultPage = 1

// parseIdParam parses a positive id from a path or query value.
func parseIdParam(param string, paramName string) (int64, error) {
	val, err := strconv.ParseInt(param, 10, 64)
	if err != nil || val <= 0 {
		return 0, internal_errors.BadRequest(fmt.Sprintf("invalid %s: must be a positive integer", paramName))
	}
	return val, nil
}

func urlId(r *http.Request, name string) (int64, error) {
	return parseIdParam(chi.URLParam(r, name), name)
}

// pageParam reads ?page=, defaulting to the first page.
func pageParam(r *http.Request) (int, error) {
	pageQuery := r.URL.Query().Get("page")
	if pageQuery == "" {
		return defaultPage, nil
	}
	page, err := parseIdParam(pageQuery, "page")
	if err != nil {
		return 0, err
	}
	return int(page), nil
}
