package handler

import (
	"net/http"

	"github.com/itchan-dev/forum/backend/internal/middleware"
	"github.com/itchan-dev/forum/shared/api"
	"github.com/itchan-dev/forum/shared/utils"
)

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	index, err := h.categories.Index(r.Context(), middleware.CurrentUser(r))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewCategoryIndexResponse(index))
}
