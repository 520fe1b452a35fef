package api

import "github.com/itchan-dev/forum/shared/domain"

// Request DTOs

type ParseMarkupRequest struct {
	Post string `json:"post"`
}

// Response DTOs

type ParseMarkupResponse struct {
	Parsed string `json:"parsed"`
}

// ActivePostersResponse is the cached ranking as built by the last job run.
type ActivePostersResponse struct {
	domain.Ranking
}
