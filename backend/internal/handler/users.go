package handler

import (
	"net/http"

	"github.com/itchan-dev/forum/shared/api"
	"github.com/itchan-dev/forum/shared/utils"
)

// GetActivePosters serves the last built ranking, building it on a cold cache.
func (h *Handler) GetActivePosters(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.ranking.Get(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.ActivePostersResponse{Ranking: *ranking})
}
