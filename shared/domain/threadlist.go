package domain

import "time"

type ListType string

const (
	ListAll        ListType = "all"
	ListMy         ListType = "my"
	ListNew        ListType = "new"
	ListUnread     ListType = "unread"
	ListSubscribed ListType = "subscribed"
	ListUnapproved ListType = "unapproved"
)

type ReadFilterKind int

const (
	// ReadFilterNew keeps threads with fresh visible posts and no read markers among them.
	ReadFilterNew ReadFilterKind = iota + 1
	// ReadFilterUnread keeps threads with both read and unread fresh visible posts.
	ReadFilterUnread
)

type ReadFilter struct {
	Kind   ReadFilterKind
	UserId UserId
	Cutoff time.Time // exclusive lower bound on posted_on
	Posts  PostVisibility
}

type ParticipantFilter struct {
	UserId     UserId
	OrReported bool // moderators also see threads with reported posts
}

// ThreadQuery describes a selection of threads, ordered by last post descending.
// Zero-valued fields add no restriction.
type ThreadQuery struct {
	Visibility         ThreadVisibility
	Categories         []CategoryId
	Weights            []Weight
	StarterId          *UserId
	SubscriberId       *UserId
	HasUnapprovedPosts bool
	Participant        *ParticipantFilter
	Read               *ReadFilter
	PinnedFirst        bool // order by weight before last post
}

func (q ThreadQuery) InCategories(ids []CategoryId) ThreadQuery {
	q.Categories = ids
	return q
}

func (q ThreadQuery) WithWeights(weights ...Weight) ThreadQuery {
	q.Weights = weights
	return q
}

// ThreadList is a composed page of threads. Read state is kept beside the threads.
type ThreadList struct {
	Type          ListType
	Name          string
	Category      *Category
	Subcategories []CategoryId
	Threads       []*Thread
	PinnedCount   int
	Categories    map[CategoryId]*Category
	ACL           map[ThreadId]ThreadACL
	Subscriptions map[ThreadId]Subscription
	Participants  map[ThreadId][]Participant
	ReadStates    ThreadReadStates
	Pagination    Pagination
}

func (l *ThreadList) ThreadIds() []ThreadId {
	ids := make([]ThreadId, len(l.Threads))
	for i, t := range l.Threads {
		ids[i] = t.Id
	}
	return ids
}
