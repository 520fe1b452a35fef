package handler

import (
	"context"
	"net/http"

	"github.com/itchan-dev/forum/backend/internal/middleware"
	"github.com/itchan-dev/forum/backend/internal/service"
	"github.com/itchan-dev/forum/shared/api"
	"github.com/itchan-dev/forum/shared/domain"
	"github.com/itchan-dev/forum/shared/utils"
)

// GetThreads serves forum thread lists: ?category=&list=&page=.
func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	req := service.ListRequest{Kind: service.ForumThreads}
	if category := r.URL.Query().Get("category"); category != "" {
		id, err := parseIdParam(category, "category")
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		req.CategoryId = &id
	}
	h.composeList(w, r, req)
}

// GetPrivateThreads serves private thread lists: ?list=&page=.
func (h *Handler) GetPrivateThreads(w http.ResponseWriter, r *http.Request) {
	h.composeList(w, r, service.ListRequest{Kind: service.PrivateThreads})
}

func (h *Handler) composeList(w http.ResponseWriter, r *http.Request, req service.ListRequest) {
	page, err := pageParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	req.Page = page
	req.Type = r.URL.Query().Get("list")

	list, err := h.lists.Compose(r.Context(), middleware.CurrentUser(r), req)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewThreadListResponse(list))
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := urlId(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	view, err := h.threads.Get(r.Context(), middleware.CurrentUser(r), threadId, page)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewThreadViewResponse(view))
}

func (h *Handler) MarkPostRead(w http.ResponseWriter, r *http.Request) {
	h.updateReadMarker(w, r, h.markers.MarkRead)
}

// MarkPostUnread drops the caller's marker so the post shows up as new again.
func (h *Handler) MarkPostUnread(w http.ResponseWriter, r *http.Request) {
	h.updateReadMarker(w, r, h.markers.MarkUnread)
}

func (h *Handler) updateReadMarker(w http.ResponseWriter, r *http.Request, update func(context.Context, *domain.User, domain.ThreadId, domain.PostId) error) {
	threadId, err := urlId(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	postId, err := urlId(r, "post")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := update(r.Context(), middleware.CurrentUser(r), threadId, postId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SplitPosts(w http.ResponseWriter, r *http.Request) {
	threadId, err := urlId(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.SplitPostsRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	newThreadId, err := h.split.Split(r.Context(), middleware.CurrentUser(r), domain.SplitData{
		ThreadId:   threadId,
		PostIds:    body.Posts,
		Title:      body.Title,
		CategoryId: body.Category,
		Weight:     domain.Weight(body.Weight),
		IsHidden:   body.IsHidden,
		IsClosed:   body.IsClosed,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.SplitPostsResponse{Id: newThreadId})
}
