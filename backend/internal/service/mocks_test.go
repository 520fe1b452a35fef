package service

import (
	"context"
	"sync"
	"time"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
)

// --- Mocks ---

// MockReadTrackerStorage mocks ReadTrackerStorage and counts round trips.
type MockReadTrackerStorage struct {
	unreadThreadIdsFunc   func(q domain.UnreadQuery) ([]domain.ThreadId, error)
	unreadCategoryIdsFunc func(q domain.UnreadQuery) ([]domain.CategoryId, error)

	mu        sync.Mutex
	calls     int
	lastQuery domain.UnreadQuery
}

func (m *MockReadTrackerStorage) UnreadThreadIds(ctx context.Context, q domain.UnreadQuery) ([]domain.ThreadId, error) {
	m.mu.Lock()
	m.calls++
	m.lastQuery = q
	m.mu.Unlock()

	if m.unreadThreadIdsFunc != nil {
		return m.unreadThreadIdsFunc(q)
	}
	return nil, nil
}

func (m *MockReadTrackerStorage) UnreadCategoryIds(ctx context.Context, q domain.UnreadQuery) ([]domain.CategoryId, error) {
	m.mu.Lock()
	m.calls++
	m.lastQuery = q
	m.mu.Unlock()

	if m.unreadCategoryIdsFunc != nil {
		return m.unreadCategoryIdsFunc(q)
	}
	return nil, nil
}

func (m *MockReadTrackerStorage) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockThreadListStorage mocks ThreadListStorage. ListThreads records every query.
type MockThreadListStorage struct {
	tree                 *domain.CategoryTree
	countThreadsFunc     func(q domain.ThreadQuery) (int, error)
	listThreadsFunc      func(q domain.ThreadQuery, limit, offset int) ([]*domain.Thread, error)
	getSubscriptionsFunc func(userId domain.UserId, ids []domain.ThreadId) (map[domain.ThreadId]domain.Subscription, error)
	getParticipantsFunc  func(ids []domain.ThreadId) (map[domain.ThreadId][]domain.Participant, error)

	mu                  sync.Mutex
	countQueries        []domain.ThreadQuery
	listQueries         []domain.ThreadQuery
	subscriptionsCalled bool
	participantsCalled  bool
}

func (m *MockThreadListStorage) GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error) {
	return m.tree, nil
}

func (m *MockThreadListStorage) CountThreads(ctx context.Context, q domain.ThreadQuery) (int, error) {
	m.mu.Lock()
	m.countQueries = append(m.countQueries, q)
	m.mu.Unlock()

	if m.countThreadsFunc != nil {
		return m.countThreadsFunc(q)
	}
	return 0, nil
}

func (m *MockThreadListStorage) ListThreads(ctx context.Context, q domain.ThreadQuery, limit, offset int) ([]*domain.Thread, error) {
	m.mu.Lock()
	m.listQueries = append(m.listQueries, q)
	m.mu.Unlock()

	if m.listThreadsFunc != nil {
		return m.listThreadsFunc(q, limit, offset)
	}
	return nil, nil
}

func (m *MockThreadListStorage) GetSubscriptions(ctx context.Context, userId domain.UserId, ids []domain.ThreadId) (map[domain.ThreadId]domain.Subscription, error) {
	m.mu.Lock()
	m.subscriptionsCalled = true
	m.mu.Unlock()

	if m.getSubscriptionsFunc != nil {
		return m.getSubscriptionsFunc(userId, ids)
	}
	return map[domain.ThreadId]domain.Subscription{}, nil
}

func (m *MockThreadListStorage) GetParticipants(ctx context.Context, ids []domain.ThreadId) (map[domain.ThreadId][]domain.Participant, error) {
	m.mu.Lock()
	m.participantsCalled = true
	m.mu.Unlock()

	if m.getParticipantsFunc != nil {
		return m.getParticipantsFunc(ids)
	}
	return map[domain.ThreadId][]domain.Participant{}, nil
}

// MockThreadsAnnotator mocks the read-state annotator used by the composer.
type MockThreadsAnnotator struct {
	annotateManyFunc func(user *domain.User, threads []*domain.Thread) (domain.ThreadReadStates, error)

	mu     sync.Mutex
	called bool
}

func (m *MockThreadsAnnotator) AnnotateMany(ctx context.Context, user *domain.User, threads []*domain.Thread) (domain.ThreadReadStates, error) {
	m.mu.Lock()
	m.called = true
	m.mu.Unlock()

	if m.annotateManyFunc != nil {
		return m.annotateManyFunc(user, threads)
	}
	states := domain.ThreadReadStates{}
	for _, thread := range threads {
		states[thread.Id] = domain.StateRead
	}
	return states, nil
}

// MockInvalidationTx mocks the move transaction seen by the invalidation hook.
type MockInvalidationTx struct {
	clearBestAnswerFunc  func(threadId domain.ThreadId) error
	purgeReadMarkersFunc func(userId *domain.UserId, postIds []domain.PostId) (int64, error)

	mu                 sync.Mutex
	clearedBestAnswer  []domain.ThreadId
	purgedPosts        []domain.PostId
	purgedForUser      *domain.UserId
	purgeReadMarkerRun bool
}

func (m *MockInvalidationTx) ClearBestAnswer(ctx context.Context, threadId domain.ThreadId) error {
	m.mu.Lock()
	m.clearedBestAnswer = append(m.clearedBestAnswer, threadId)
	m.mu.Unlock()

	if m.clearBestAnswerFunc != nil {
		return m.clearBestAnswerFunc(threadId)
	}
	return nil
}

func (m *MockInvalidationTx) PurgeReadMarkers(ctx context.Context, userId *domain.UserId, postIds []domain.PostId) (int64, error) {
	m.mu.Lock()
	m.purgeReadMarkerRun = true
	m.purgedForUser = userId
	m.purgedPosts = postIds
	m.mu.Unlock()

	if m.purgeReadMarkersFunc != nil {
		return m.purgeReadMarkersFunc(userId, postIds)
	}
	return int64(len(postIds)), nil
}

// MockSplitStorage mocks SplitStorage. SplitPosts runs the hook against tx.
type MockSplitStorage struct {
	tree           *domain.CategoryTree
	getThreadFunc  func(id domain.ThreadId) (*domain.Thread, error)
	getPostsFunc   func(threadId domain.ThreadId, ids []domain.PostId) ([]*domain.Post, error)
	splitPostsFunc func(data domain.SplitData) (domain.ThreadId, error)
	tx             *MockInvalidationTx

	mu          sync.Mutex
	splitCalled bool
	splitArg    domain.SplitData
}

func (m *MockSplitStorage) GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error) {
	return m.tree, nil
}

func (m *MockSplitStorage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if m.getThreadFunc != nil {
		return m.getThreadFunc(id)
	}
	return nil, internal_errors.NotFound("Thread not found")
}

func (m *MockSplitStorage) GetPosts(ctx context.Context, threadId domain.ThreadId, ids []domain.PostId) ([]*domain.Post, error) {
	if m.getPostsFunc != nil {
		return m.getPostsFunc(threadId, ids)
	}
	return nil, nil
}

func (m *MockSplitStorage) SplitPosts(ctx context.Context, data domain.SplitData, hook MoveHook) (domain.ThreadId, error) {
	m.mu.Lock()
	m.splitCalled = true
	m.splitArg = data
	m.mu.Unlock()

	newId := domain.ThreadId(100)
	if m.splitPostsFunc != nil {
		var err error
		if newId, err = m.splitPostsFunc(data); err != nil {
			return 0, err
		}
	}
	if m.tx == nil {
		m.tx = &MockInvalidationTx{}
	}
	err := hook(ctx, m.tx, domain.PostsMove{
		SourceThreadId: data.ThreadId,
		TargetThreadId: newId,
		PostIds:        data.PostIds,
	})
	if err != nil {
		return 0, err
	}
	return newId, nil
}

// MockRankingStorage mocks RankingStorage.
type MockRankingStorage struct {
	activePostersFunc func(since time.Time, limit int) ([]domain.RankedUser, error)

	mu    sync.Mutex
	calls int
	since time.Time
	limit int
}

func (m *MockRankingStorage) ActivePosters(ctx context.Context, since time.Time, limit int) ([]domain.RankedUser, error) {
	m.mu.Lock()
	m.calls++
	m.since = since
	m.limit = limit
	m.mu.Unlock()

	if m.activePostersFunc != nil {
		return m.activePostersFunc(since, limit)
	}
	return nil, nil
}

// MockRankingCache is an in-memory RankingCache.
type MockRankingCache struct {
	getErr error
	setErr error

	mu      sync.Mutex
	ranking *domain.Ranking
	ttl     time.Duration
	sets    int
}

func (m *MockRankingCache) Get(ctx context.Context) (*domain.Ranking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.ranking, nil
}

func (m *MockRankingCache) Set(ctx context.Context, ranking *domain.Ranking, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.ranking = ranking
	m.ttl = ttl
	return nil
}

// MockUserStorage mocks UserStorage.
type MockUserStorage struct {
	getUserFunc    func(id domain.UserId) (*domain.User, error)
	getRoleACLFunc func(role string) (domain.ACL, error)
}

func (m *MockUserStorage) GetUser(ctx context.Context, id domain.UserId) (*domain.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(id)
	}
	return nil, internal_errors.NotFound("User not found")
}

func (m *MockUserStorage) GetRoleACL(ctx context.Context, role string) (domain.ACL, error) {
	if m.getRoleACLFunc != nil {
		return m.getRoleACLFunc(role)
	}
	return domain.ACL{}, nil
}

// MockThreadValidator mocks ThreadTitleValidator.
type MockThreadValidator struct {
	titleFunc func(title string) error
}

func (m *MockThreadValidator) Title(title string) error {
	if m.titleFunc != nil {
		return m.titleFunc(title)
	}
	return nil
}

// MockThreadStorage mocks ThreadStorage.
type MockThreadStorage struct {
	tree          *domain.CategoryTree
	thread        *domain.Thread
	posts         []*domain.Post
	listPostsFunc func(vis domain.PostVisibility, limit, offset int) ([]*domain.Post, error)

	mu          sync.Mutex
	listCalled  bool
	lastPostVis domain.PostVisibility
}

func (m *MockThreadStorage) GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error) {
	return m.tree, nil
}

func (m *MockThreadStorage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if m.thread == nil || m.thread.Id != id {
		return nil, internal_errors.NotFound("Thread not found")
	}
	return m.thread, nil
}

func (m *MockThreadStorage) CountPosts(ctx context.Context, threadId domain.ThreadId, vis domain.PostVisibility) (int, error) {
	m.mu.Lock()
	m.lastPostVis = vis
	m.mu.Unlock()
	return len(m.posts), nil
}

func (m *MockThreadStorage) ListPosts(ctx context.Context, threadId domain.ThreadId, vis domain.PostVisibility, limit, offset int) ([]*domain.Post, error) {
	m.mu.Lock()
	m.listCalled = true
	m.mu.Unlock()

	if m.listPostsFunc != nil {
		return m.listPostsFunc(vis, limit, offset)
	}
	end := min(offset+limit, len(m.posts))
	return m.posts[offset:end], nil
}

// MockThreadAnnotator returns a fixed read state.
type MockThreadAnnotator struct {
	state domain.ReadState
	err   error
}

func (m *MockThreadAnnotator) AnnotateOne(ctx context.Context, user *domain.User, thread *domain.Thread) (domain.ReadState, error) {
	return m.state, m.err
}

// MockCategoriesAnnotator marks every category read and remembers its input.
type MockCategoriesAnnotator struct {
	mu         sync.Mutex
	categories []*domain.Category
}

func (m *MockCategoriesAnnotator) AnnotateMany(ctx context.Context, user *domain.User, categories []*domain.Category) (domain.CategoryReadStates, error) {
	m.mu.Lock()
	m.categories = categories
	m.mu.Unlock()

	states := domain.CategoryReadStates{}
	for _, c := range categories {
		states[c.Id] = domain.StateRead
	}
	return states, nil
}

// MockReadMarkerStorage keeps markers in memory.
type MockReadMarkerStorage struct {
	posts   map[domain.PostId]*domain.Post
	threads map[domain.ThreadId]*domain.Thread
	markErr  error
	purgeErr error

	mu         sync.Mutex
	purges     int
	markers    map[domain.UserId]map[domain.PostId]bool
	candidates []domain.PostId
}

func (m *MockReadMarkerStorage) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	if post, ok := m.posts[id]; ok {
		return post, nil
	}
	return nil, internal_errors.NotFound("Post not found")
}

func (m *MockReadMarkerStorage) GetThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if thread, ok := m.threads[id]; ok {
		return thread, nil
	}
	return nil, internal_errors.NotFound("Thread not found")
}

func (m *MockReadMarkerStorage) MarkRead(ctx context.Context, userId domain.UserId, postId domain.PostId) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markers == nil {
		m.markers = map[domain.UserId]map[domain.PostId]bool{}
	}
	if m.markers[userId] == nil {
		m.markers[userId] = map[domain.PostId]bool{}
	}
	m.markers[userId][postId] = true
	return nil
}

func (m *MockReadMarkerStorage) HasRead(ctx context.Context, userId domain.UserId, postId domain.PostId) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markers[userId][postId], nil
}

func (m *MockReadMarkerStorage) PurgeReadMarkers(ctx context.Context, userId *domain.UserId, postIds []domain.PostId) (int64, error) {
	if m.purgeErr != nil {
		return 0, m.purgeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purges++
	var purged int64
	for user, markers := range m.markers {
		if userId != nil && user != *userId {
			continue
		}
		for _, id := range postIds {
			if markers[id] {
				delete(markers, id)
				purged++
			}
		}
	}
	return purged, nil
}

func (m *MockReadMarkerStorage) UnreadPostIds(ctx context.Context, userId domain.UserId, candidates []domain.PostId) ([]domain.PostId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = candidates

	var unread []domain.PostId
	for _, id := range candidates {
		if !m.markers[userId][id] {
			unread = append(unread, id)
		}
	}
	return unread, nil
}

// --- Helpers ---

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testCutoff(window time.Duration) *CutoffPolicy {
	p := NewCutoffPolicy(window)
	p.now = func() time.Time { return testNow }
	return p
}

func ptr[T any](v T) *T {
	return &v
}

// testTree builds root(1) -> general(2) -> sub(3), root(1) -> staff(4),
// and the private threads root(10).
func testTree() *domain.CategoryTree {
	return domain.NewCategoryTree([]domain.Category{
		{Id: 1, Name: "Root", Level: 0, Special: domain.SpecialRoot},
		{Id: 2, ParentId: ptr(domain.CategoryId(1)), Name: "General", Slug: "general", Level: 1},
		{Id: 3, ParentId: ptr(domain.CategoryId(2)), Name: "Sub", Slug: "sub", Level: 2},
		{Id: 4, ParentId: ptr(domain.CategoryId(1)), Name: "Staff", Slug: "staff", Level: 1},
		{Id: 10, Name: "Private", Level: 0, Special: domain.SpecialPrivateThreads},
	})
}

func memberACL() domain.CategoryACL {
	return domain.CategoryACL{
		CanSee:           true,
		CanBrowse:        true,
		CanSeeAllThreads: true,
		CanStartThreads:  true,
		CanReplyThreads:  true,
	}
}

func moderatorACL() domain.CategoryACL {
	return domain.FullCategoryACL()
}

// testMember can see general, sub and private threads but not staff.
func testMember() *domain.User {
	return &domain.User{
		Id:       7,
		Name:     "member",
		Role:     domain.RoleMember,
		IsActive: true,
		JoinedOn: testNow.AddDate(-1, 0, 0),
		ACL: domain.ACL{Categories: map[domain.CategoryId]domain.CategoryACL{
			2:  memberACL(),
			3:  memberACL(),
			10: memberACL(),
		}},
	}
}

func testGuest() *domain.User {
	guest := domain.Anonymous()
	guest.ACL = domain.ACL{Categories: map[domain.CategoryId]domain.CategoryACL{
		2: {CanSee: true, CanBrowse: true, CanSeeAllThreads: true},
		3: {CanSee: true, CanBrowse: true, CanSeeAllThreads: true},
	}}
	return guest
}
