package handler

import (
	"net/http"

	"github.com/itchan-dev/forum/backend/internal/middleware"
	"github.com/itchan-dev/forum/shared/api"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
	"github.com/itchan-dev/forum/shared/utils"
)

// ParseMarkup previews how a post will render.
func (h *Handler) ParseMarkup(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r).IsAnonymous() {
		utils.WriteErrorAndStatusCode(w, internal_errors.PermissionDenied("This action is not available to guests."))
		return
	}

	var body api.ParseMarkupRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	parsed, err := h.markup.Parse(body.Post)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.ParseMarkupResponse{Parsed: parsed})
}
