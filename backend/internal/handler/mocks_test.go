package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/itchan-dev/forum/backend/internal/middleware"
	"github.com/itchan-dev/forum/backend/internal/service"
	"github.com/itchan-dev/forum/shared/domain"
)

type MockCategoriesService struct {
	IndexFunc func(ctx context.Context, user *domain.User) (*domain.CategoryIndex, error)
}

func (m *MockCategoriesService) Index(ctx context.Context, user *domain.User) (*domain.CategoryIndex, error) {
	if m.IndexFunc != nil {
		return m.IndexFunc(ctx, user)
	}
	return &domain.CategoryIndex{}, nil
}

type MockThreadListService struct {
	ComposeFunc func(ctx context.Context, user *domain.User, req service.ListRequest) (*domain.ThreadList, error)

	mu       sync.Mutex
	requests []service.ListRequest
}

func (m *MockThreadListService) Compose(ctx context.Context, user *domain.User, req service.ListRequest) (*domain.ThreadList, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.ComposeFunc != nil {
		return m.ComposeFunc(ctx, user, req)
	}
	return &domain.ThreadList{Type: domain.ListType(req.Type)}, nil
}

type MockThreadService struct {
	GetFunc func(ctx context.Context, user *domain.User, id domain.ThreadId, page int) (*domain.ThreadView, error)
}

func (m *MockThreadService) Get(ctx context.Context, user *domain.User, id domain.ThreadId, page int) (*domain.ThreadView, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, user, id, page)
	}
	return &domain.ThreadView{Thread: &domain.Thread{Id: id}}, nil
}

type MockReadMarkerService struct {
	MarkReadFunc   func(ctx context.Context, user *domain.User, threadId domain.ThreadId, postId domain.PostId) error
	MarkUnreadFunc func(ctx context.Context, user *domain.User, threadId domain.ThreadId, postId domain.PostId) error
}

func (m *MockReadMarkerService) MarkUnread(ctx context.Context, user *domain.User, threadId domain.ThreadId, postId domain.PostId) error {
	if m.MarkUnreadFunc != nil {
		return m.MarkUnreadFunc(ctx, user, threadId, postId)
	}
	return nil
}

func (m *MockReadMarkerService) MarkRead(ctx context.Context, user *domain.User, threadId domain.ThreadId, postId domain.PostId) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, user, threadId, postId)
	}
	return nil
}

type MockSplitService struct {
	SplitFunc func(ctx context.Context, user *domain.User, data domain.SplitData) (domain.ThreadId, error)

	mu   sync.Mutex
	data []domain.SplitData
}

func (m *MockSplitService) Split(ctx context.Context, user *domain.User, data domain.SplitData) (domain.ThreadId, error) {
	m.mu.Lock()
	m.data = append(m.data, data)
	m.mu.Unlock()
	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, user, data)
	}
	return 0, nil
}

type MockRankingService struct {
	GetFunc func(ctx context.Context) (*domain.Ranking, error)
}

func (m *MockRankingService) Get(ctx context.Context) (*domain.Ranking, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return &domain.Ranking{}, nil
}

type MockMarkupParser struct {
	ParseFunc func(text string) (string, error)
}

func (m *MockMarkupParser) Parse(text string) (string, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(text)
	}
	return text, nil
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

var (
	member = &domain.User{Id: 3, Name: "member", Role: domain.RoleMember, IsActive: true}
	guest  = domain.Anonymous()
)

// createRequest builds a request as seen after the user was resolved.
func createRequest(t *testing.T, method, url string, body []byte, user *domain.User) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	return req.WithContext(middleware.WithUser(req.Context(), user))
}
