package handler

import (
	"context"
	"net/http"

	"github.com/itchan-dev/forum/backend/internal/service"
	"github.com/itchan-dev/forum/shared/config"
	"github.com/itchan-dev/forum/shared/domain"
	"github.com/itchan-dev/forum/shared/utils"
)

type CategoriesService interface {
	Index(ctx context.Context, user *domain.User) (*domain.CategoryIndex, error)
}

type ThreadListService interface {
	Compose(ctx context.Context, user *domain.User, req service.ListRequest) (*domain.ThreadList, error)
}

type ThreadService interface {
	Get(ctx context.Context, user *domain.User, id domain.ThreadId, page int) (*domain.ThreadView, error)
}

type ReadMarkerService interface {
	MarkRead(ctx context.Context, user *domain.User, threadId domain.ThreadId, postId domain.PostId) error
	MarkUnread(ctx context.Context, user *domain.User, threadId domain.ThreadId, postId domain.PostId) error
}

type SplitService interface {
	Split(ctx context.Context, user *domain.User, data domain.SplitData) (domain.ThreadId, error)
}

type RankingService interface {
	Get(ctx context.Context) (*domain.Ranking, error)
}

type MarkupParser interface {
	Parse(text string) (string, error)
}

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	categories CategoriesService
	lists      ThreadListService
	threads    ThreadService
	markers    ReadMarkerService
	split      SplitService
	ranking    RankingService
	markup     MarkupParser
	health     HealthChecker
	cfg        *config.Config
}

type Services struct {
	Categories CategoriesService
	Lists      ThreadListService
	Threads    ThreadService
	Markers    ReadMarkerService
	Split      SplitService
	Ranking    RankingService
	Markup     MarkupParser
	Health     HealthChecker
}

func New(s Services, cfg *config.Config) *Handler {
	return &Handler{
		categories: s.Categories,
		lists:      s.Lists,
		threads:    s.Threads,
		markers:    s.Markers,
		split:      s.Split,
		ranking:    s.Ranking,
		markup:     s.Markup,
		health:     s.Health,
		cfg:        cfg,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	utils.WriteJSON(w, http.StatusOK, v)
}
