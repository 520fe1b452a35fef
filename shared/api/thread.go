package api

import (
	"time"

	"github.com/itchan-dev/forum/shared/domain"
)

// Request DTOs

type SplitPostsRequest struct {
	Posts    []domain.PostId   `json:"posts" validate:"dive,gt=0"`
	Title    string            `json:"title"`
	Category domain.CategoryId `json:"category" validate:"required"`
	Weight   int               `json:"weight"`
	IsHidden bool              `json:"is_hidden"`
	IsClosed bool              `json:"is_closed"`
}

// Response DTOs

type ParticipantResponse struct {
	Id      domain.UserId `json:"id"`
	Name    string        `json:"username"`
	IsOwner bool          `json:"is_owner"`
}

type ThreadResponse struct {
	Id                 domain.ThreadId       `json:"id"`
	Category           domain.CategoryId     `json:"category"`
	Title              string                `json:"title"`
	Slug               string                `json:"slug"`
	Weight             domain.Weight         `json:"weight"`
	StarterName        string                `json:"starter_name"`
	StartedOn          time.Time             `json:"started_on"`
	LastPostOn         time.Time             `json:"last_post_on"`
	LastPosterName     string                `json:"last_poster_name"`
	Replies            int                   `json:"replies"`
	IsUnapproved       bool                  `json:"is_unapproved"`
	IsHidden           bool                  `json:"is_hidden"`
	IsClosed           bool                  `json:"is_closed"`
	HasUnapprovedPosts bool                  `json:"has_unapproved_posts"`
	BestAnswer         *domain.PostId        `json:"best_answer"`
	Subscription       *bool                 `json:"subscription"` // nil when not subscribed, else send email flag
	Participants       []ParticipantResponse `json:"participants,omitempty"`
	ACL                domain.ThreadACL      `json:"acl"`
	domain.ReadState
}

type ThreadListResponse struct {
	Type          domain.ListType     `json:"type"`
	Name          string              `json:"name"`
	Category      *CategoryResponse   `json:"category,omitempty"`
	Subcategories []domain.CategoryId `json:"subcategories"`
	Results       []ThreadResponse    `json:"results"`
	Pinned        int                 `json:"pinned"`
	domain.Pagination
}

type PostResponse struct {
	Id           domain.PostId `json:"id"`
	PosterId     domain.UserId `json:"poster"`
	PosterName   string        `json:"poster_name"`
	PostedOn     time.Time     `json:"posted_on"`
	Content      string        `json:"content"`
	IsEvent      bool          `json:"is_event"`
	IsUnapproved bool          `json:"is_unapproved"`
	IsHidden     bool          `json:"is_hidden"`
	IsRead       bool          `json:"is_read"`
	IsNew        bool          `json:"is_new"`
}

type ThreadViewResponse struct {
	Thread   ThreadResponse    `json:"thread"`
	Category *CategoryResponse `json:"category,omitempty"`
	Posts    []PostResponse    `json:"posts"`
	domain.Pagination
}

type SplitPostsResponse struct {
	Id domain.ThreadId `json:"id"`
}

func NewThreadResponse(t *domain.Thread, acl domain.ThreadACL, state domain.ReadState) ThreadResponse {
	return ThreadResponse{
		Id:                 t.Id,
		Category:           t.CategoryId,
		Title:              t.Title,
		Slug:               t.Slug,
		Weight:             t.Weight,
		StarterName:        t.StarterName,
		StartedOn:          t.StartedOn,
		LastPostOn:         t.LastPostOn,
		LastPosterName:     t.LastPosterName,
		Replies:            t.Replies,
		IsUnapproved:       t.IsUnapproved,
		IsHidden:           t.IsHidden,
		IsClosed:           t.IsClosed,
		HasUnapprovedPosts: t.HasUnapprovedPosts,
		BestAnswer:         t.BestAnswerId,
		ACL:                acl,
		ReadState:          state,
	}
}

func NewThreadListResponse(list *domain.ThreadList) ThreadListResponse {
	response := ThreadListResponse{
		Type:          list.Type,
		Name:          list.Name,
		Subcategories: list.Subcategories,
		Results:       make([]ThreadResponse, len(list.Threads)),
		Pinned:        list.PinnedCount,
		Pagination:    list.Pagination,
	}
	if response.Subcategories == nil {
		response.Subcategories = []domain.CategoryId{}
	}
	if list.Category != nil {
		category := NewCategoryResponse(list.Category, domain.ReadState{})
		response.Category = &category
	}

	for i, t := range list.Threads {
		thread := NewThreadResponse(t, list.ACL[t.Id], list.ReadStates[t.Id])
		if sub, ok := list.Subscriptions[t.Id]; ok {
			sendEmail := sub.SendEmail
			thread.Subscription = &sendEmail
		}
		for _, p := range list.Participants[t.Id] {
			thread.Participants = append(thread.Participants, ParticipantResponse{Id: p.UserId, Name: p.Name, IsOwner: p.IsOwner})
		}
		response.Results[i] = thread
	}
	return response
}

func NewThreadViewResponse(view *domain.ThreadView) ThreadViewResponse {
	response := ThreadViewResponse{
		Thread:     NewThreadResponse(view.Thread, view.ACL, view.ReadState),
		Posts:      make([]PostResponse, len(view.Posts)),
		Pagination: view.Pagination,
	}
	if view.Category != nil {
		category := NewCategoryResponse(view.Category, domain.ReadState{})
		response.Category = &category
	}
	for i, p := range view.Posts {
		unread := view.UnreadPost[p.Id]
		response.Posts[i] = PostResponse{
			Id:           p.Id,
			PosterId:     p.PosterId,
			PosterName:   p.PosterName,
			PostedOn:     p.PostedOn,
			Content:      p.Content,
			IsEvent:      p.IsEvent,
			IsUnapproved: p.IsUnapproved,
			IsHidden:     p.IsHidden,
			IsRead:       !unread,
			IsNew:        unread,
		}
	}
	return response
}
