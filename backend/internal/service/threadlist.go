package service

import (
	"context"
	"fmt"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
	"github.com/itchan-dev/forum/shared/logger"
	"github.com/itchan-dev/forum/shared/middleware/metrics"
	"github.com/itchan-dev/forum/shared/tracing"
	"go.opentelemetry.io/otel/attribute"
)

var listNames = map[domain.ListType]string{
	domain.ListAll:        "",
	domain.ListMy:         "Your threads",
	domain.ListNew:        "New threads",
	domain.ListUnread:     "Unread threads",
	domain.ListSubscribed: "Subscribed threads",
	domain.ListUnapproved: "Unapproved content",
}

var listDeniedMessages = map[domain.ListType]string{
	domain.ListMy:         "You have to sign in to see list of threads that you have started.",
	domain.ListNew:        "You have to sign in to see list of threads you haven't read.",
	domain.ListUnread:     "You have to sign in to see list of threads with new replies.",
	domain.ListSubscribed: "You have to sign in to see list of threads you are subscribing.",
	domain.ListUnapproved: "You have to sign in to see list of threads with unapproved posts.",
}

// listPrivate selects the private threads kind when passed as a list name.
const listPrivate = "private"

// ListKind is the closed set of thread list variants.
type ListKind int

const (
	ForumThreads ListKind = iota
	PrivateThreads
)

func (k ListKind) String() string {
	if k == PrivateThreads {
		return "private"
	}
	return "forum"
}

// listStrategy holds the steps that differ between list kinds.
type listStrategy struct {
	// category resolves the browsed category.
	category func(c *ThreadLists, user *domain.User, tree *domain.CategoryTree, id *domain.CategoryId) (*domain.Category, error)
	// baseScope narrows the visible threads further.
	baseScope func(user *domain.User, q domain.ThreadQuery) domain.ThreadQuery
	// pinned returns nil when the kind never pins.
	pinned    func(base domain.ThreadQuery, category *domain.Category, threadsCategories []domain.CategoryId) *domain.ThreadQuery
	remaining func(base domain.ThreadQuery, category *domain.Category, threadsCategories []domain.CategoryId) domain.ThreadQuery
	decorate  func(ctx context.Context, c *ThreadLists, user *domain.User, list *domain.ThreadList) error
}

func (k ListKind) strategy() listStrategy {
	if k == PrivateThreads {
		return listStrategy{
			category:  privateCategory,
			baseScope: privateBaseScope,
			pinned: func(domain.ThreadQuery, *domain.Category, []domain.CategoryId) *domain.ThreadQuery {
				return nil
			},
			remaining: func(base domain.ThreadQuery, _ *domain.Category, threadsCategories []domain.CategoryId) domain.ThreadQuery {
				return base.InCategories(threadsCategories)
			},
			decorate: decorateParticipants,
		}
	}
	return listStrategy{
		category:  forumCategory,
		baseScope: func(_ *domain.User, q domain.ThreadQuery) domain.ThreadQuery { return q },
		pinned:    forumPinned,
		remaining: forumRemaining,
		decorate:  func(context.Context, *ThreadLists, *domain.User, *domain.ThreadList) error { return nil },
	}
}

// ListRequest is one page of a named list. An empty Type means "all".
type ListRequest struct {
	Kind       ListKind
	CategoryId *domain.CategoryId
	Type       string
	Page       int
}

type ThreadListStorage interface {
	GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error)
	CountThreads(ctx context.Context, q domain.ThreadQuery) (int, error)
	// ListThreads returns every match when limit is 0.
	ListThreads(ctx context.Context, q domain.ThreadQuery, limit, offset int) ([]*domain.Thread, error)
	GetSubscriptions(ctx context.Context, userId domain.UserId, threadIds []domain.ThreadId) (map[domain.ThreadId]domain.Subscription, error)
	GetParticipants(ctx context.Context, threadIds []domain.ThreadId) (map[domain.ThreadId][]domain.Participant, error)
}

type ThreadsAnnotator interface {
	AnnotateMany(ctx context.Context, user *domain.User, threads []*domain.Thread) (domain.ThreadReadStates, error)
}

type ThreadListsConfig struct {
	PerPage int
	Orphans int
}

// ThreadLists composes paginated thread lists.
type ThreadLists struct {
	storage    ThreadListStorage
	tracker    ThreadsAnnotator
	cutoff     *CutoffPolicy
	visibility Visibility
	cfg        ThreadListsConfig
}

func NewThreadLists(storage ThreadListStorage, tracker ThreadsAnnotator, cutoff *CutoffPolicy, cfg ThreadListsConfig) *ThreadLists {
	return &ThreadLists{storage: storage, tracker: tracker, cutoff: cutoff, cfg: cfg}
}

// Compose builds the requested page. Pinned threads are only added to page one
// and are never counted towards pagination.
func (c *ThreadLists) Compose(ctx context.Context, user *domain.User, req ListRequest) (_ *domain.ThreadList, err error) {
	kind := req.Kind
	listType := domain.ListType(req.Type)
	switch req.Type {
	case "":
		listType = domain.ListAll
	case listPrivate:
		kind, listType = PrivateThreads, domain.ListAll
	}

	ctx, span := tracing.Start(ctx, "threadlist.compose",
		attribute.String("kind", kind.String()),
		attribute.String("list", string(listType)),
		attribute.Int("page", req.Page),
	)
	defer func() { tracing.End(span, err) }()

	if err := allowSeeList(user, listType); err != nil {
		return nil, err
	}

	strategy := kind.strategy()
	tree, err := c.storage.GetCategoryTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	category, err := strategy.category(c, user, tree, req.CategoryId)
	if err != nil {
		return nil, err
	}

	categories := c.visibleSubtree(user, tree, category)
	categoryIds := domain.CategoryIds(categories)

	base := domain.ThreadQuery{Visibility: c.visibility.Threads(user, categoryIds)}
	base = strategy.baseScope(user, base)
	base = c.filterByListType(user, listType, categoryIds, base)

	remaining := strategy.remaining(base, category, categoryIds)
	count, err := c.storage.CountThreads(ctx, remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to count threads: %w", err)
	}

	page := req.Page
	if page == 0 {
		page = 1
	}
	pagination, err := domain.Paginate(count, page, c.cfg.PerPage, c.cfg.Orphans)
	if err != nil {
		return nil, err
	}

	var threads []*domain.Thread
	pinnedCount := 0
	if pinned := strategy.pinned(base, category, categoryIds); pinned != nil && pagination.Page == 1 {
		threads, err = c.storage.ListThreads(ctx, *pinned, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to load pinned threads: %w", err)
		}
		pinnedCount = len(threads)
	}
	if pagination.Limit() > 0 {
		pageThreads, err := c.storage.ListThreads(ctx, remaining, pagination.Limit(), pagination.Offset())
		if err != nil {
			return nil, fmt.Errorf("failed to load threads: %w", err)
		}
		threads = append(threads, pageThreads...)
	}

	list := &domain.ThreadList{
		Type:        listType,
		Name:        listNames[listType],
		Category:    category,
		Threads:     threads,
		PinnedCount: pinnedCount,
		Pagination:  pagination,
	}
	for _, child := range tree.Children(category.Id) {
		if c.visibility.CanView(user, child.Id) {
			list.Subcategories = append(list.Subcategories, child.Id)
		}
	}

	if err := c.decorate(ctx, user, tree, list); err != nil {
		return nil, err
	}
	if err := strategy.decorate(ctx, c, user, list); err != nil {
		return nil, err
	}

	metrics.ThreadListsComposed.WithLabelValues(kind.String(), string(listType)).Inc()
	logger.Component("threadlist").Debug("composed thread list",
		"kind", kind.String(),
		"list", listType,
		"category", category.Id,
		"page", pagination.Page,
		"threads", len(threads),
	)
	return list, nil
}

func allowSeeList(user *domain.User, listType domain.ListType) error {
	if _, ok := listNames[listType]; !ok {
		return internal_errors.NotFound("List not found")
	}
	if user.IsAnonymous() {
		if message, gated := listDeniedMessages[listType]; gated {
			return internal_errors.PermissionDenied(message)
		}
		return nil
	}
	if listType == domain.ListUnapproved && !user.Admin && !user.ACL.CanSeeUnapprovedContentLists {
		return internal_errors.PermissionDenied("You don't have permission to see unapproved content lists.")
	}
	return nil
}

func (c *ThreadLists) filterByListType(user *domain.User, listType domain.ListType, categories []domain.CategoryId, q domain.ThreadQuery) domain.ThreadQuery {
	switch listType {
	case domain.ListMy:
		q.StarterId = &user.Id
	case domain.ListSubscribed:
		q.SubscriberId = &user.Id
	case domain.ListUnapproved:
		q.HasUnapprovedPosts = true
	case domain.ListNew, domain.ListUnread:
		kind := domain.ReadFilterNew
		if listType == domain.ListUnread {
			kind = domain.ReadFilterUnread
		}
		q.Read = &domain.ReadFilter{
			Kind:   kind,
			UserId: user.Id,
			Cutoff: c.cutoff.Date(user),
			Posts:  c.visibility.Posts(user, categories),
		}
	}
	return q
}

// visibleSubtree is the category itself plus every descendant reachable
// through categories the user can view.
func (c *ThreadLists) visibleSubtree(user *domain.User, tree *domain.CategoryTree, category *domain.Category) []*domain.Category {
	result := []*domain.Category{category}
	var walk func(id domain.CategoryId)
	walk = func(id domain.CategoryId) {
		for _, child := range tree.Children(id) {
			if c.visibility.CanView(user, child.Id) {
				result = append(result, child)
				walk(child.Id)
			}
		}
	}
	walk(category.Id)
	return result
}

func (c *ThreadLists) decorate(ctx context.Context, user *domain.User, tree *domain.CategoryTree, list *domain.ThreadList) error {
	list.Categories = make(map[domain.CategoryId]*domain.Category)
	list.ACL = make(map[domain.ThreadId]domain.ThreadACL, len(list.Threads))
	for _, thread := range list.Threads {
		category, _ := tree.Get(thread.CategoryId)
		if category != nil {
			list.Categories[category.Id] = category
		}
		list.ACL[thread.Id] = c.visibility.ThreadACL(user, thread, category)
	}

	list.Subscriptions = map[domain.ThreadId]domain.Subscription{}
	if len(list.Threads) == 0 {
		list.ReadStates = domain.ThreadReadStates{}
		return nil
	}
	if !user.IsAnonymous() {
		subscriptions, err := c.storage.GetSubscriptions(ctx, user.Id, list.ThreadIds())
		if err != nil {
			return fmt.Errorf("failed to load subscriptions: %w", err)
		}
		list.Subscriptions = subscriptions
	}

	if list.Type == domain.ListNew || list.Type == domain.ListUnread {
		// membership in these lists already proves the threads are unread
		list.ReadStates = make(domain.ThreadReadStates, len(list.Threads))
		for _, thread := range list.Threads {
			list.ReadStates[thread.Id] = domain.StateUnread
		}
		return nil
	}

	states, err := c.tracker.AnnotateMany(ctx, user, list.Threads)
	if err != nil {
		return err
	}
	list.ReadStates = states
	return nil
}

func forumCategory(c *ThreadLists, user *domain.User, tree *domain.CategoryTree, id *domain.CategoryId) (*domain.Category, error) {
	if id == nil {
		root, ok := tree.Root()
		if !ok {
			return nil, internal_errors.NotFound("Category not found")
		}
		return root, nil
	}

	category, ok := tree.Get(*id)
	if !ok || category.Special != domain.SpecialNone || !c.inForum(tree, category) {
		return nil, internal_errors.NotFound("Category not found")
	}
	if !c.visibility.CanView(user, category.Id) {
		return nil, internal_errors.NotFound("Category not found")
	}
	return category, nil
}

// inForum rejects categories that live under the private threads root.
func (c *ThreadLists) inForum(tree *domain.CategoryTree, category *domain.Category) bool {
	root, ok := tree.Root()
	if !ok {
		return false
	}
	for _, node := range tree.Subtree(root.Id) {
		if node.Id == category.Id {
			return true
		}
	}
	return false
}

// forumPinned selects page-one pins. The root list shows global pins from every
// visible category; a category list shows global and local pins of its visible
// subtree only, so global pins outside the browsed subtree are not shown.
func forumPinned(base domain.ThreadQuery, category *domain.Category, threadsCategories []domain.CategoryId) *domain.ThreadQuery {
	var pinned domain.ThreadQuery
	if category.IsRoot() {
		pinned = base.WithWeights(domain.WeightPinnedGlobally)
	} else {
		pinned = base.InCategories(threadsCategories).WithWeights(domain.WeightPinnedGlobally, domain.WeightPinnedLocally)
	}
	pinned.PinnedFirst = true
	return &pinned
}

func forumRemaining(base domain.ThreadQuery, category *domain.Category, threadsCategories []domain.CategoryId) domain.ThreadQuery {
	if category.IsRoot() {
		return base.InCategories(threadsCategories).WithWeights(domain.WeightDefault, domain.WeightPinnedLocally)
	}
	return base.InCategories(threadsCategories).WithWeights(domain.WeightDefault)
}

func privateCategory(c *ThreadLists, user *domain.User, tree *domain.CategoryTree, _ *domain.CategoryId) (*domain.Category, error) {
	if user.IsAnonymous() {
		return nil, internal_errors.PermissionDenied("You have to sign in to use private threads.")
	}
	category, ok := tree.PrivateRoot()
	if !ok {
		return nil, internal_errors.NotFound("Category not found")
	}
	if !c.visibility.CanView(user, category.Id) {
		return nil, internal_errors.PermissionDenied("You can't use private threads.")
	}
	return category, nil
}

func privateBaseScope(user *domain.User, q domain.ThreadQuery) domain.ThreadQuery {
	q.Participant = &domain.ParticipantFilter{
		UserId:     user.Id,
		OrReported: user.Admin || user.ACL.CanModeratePrivateThreads,
	}
	return q
}

func decorateParticipants(ctx context.Context, c *ThreadLists, _ *domain.User, list *domain.ThreadList) error {
	list.Participants = map[domain.ThreadId][]domain.Participant{}
	if len(list.Threads) == 0 {
		return nil
	}
	participants, err := c.storage.GetParticipants(ctx, list.ThreadIds())
	if err != nil {
		return fmt.Errorf("failed to load participants: %w", err)
	}
	list.Participants = participants
	return nil
}
