package domain

import "time"

// Weight decides where a thread is placed on lists. It never affects read state.
type Weight int

const (
	WeightDefault        Weight = 0
	WeightPinnedLocally  Weight = 1
	WeightPinnedGlobally Weight = 2
)

type Thread struct {
	Id                 ThreadId
	CategoryId         CategoryId
	Title              ThreadTitle
	Slug               string
	Weight             Weight
	StarterId          UserId
	StarterName        string
	StartedOn          time.Time
	FirstPostId        *PostId
	LastPostId         *PostId
	LastPostOn         time.Time
	LastPosterName     string
	Replies            int
	IsUnapproved       bool
	IsHidden           bool
	IsClosed           bool
	HasUnapprovedPosts bool
	HasReportedPosts   bool
	HasHiddenPosts     bool
	BestAnswerId       *PostId
}

func (t *Thread) IsPinned() bool {
	return t.Weight > WeightDefault
}

// ThreadACL is what the viewer may do with a thread on a list.
type ThreadACL struct {
	CanReply     bool   `json:"can_reply"`
	CanPin       Weight `json:"can_pin"`
	CanClose     bool   `json:"can_close"`
	CanHide      bool   `json:"can_hide"`
	CanApprove   bool   `json:"can_approve"`
	CanMovePosts bool   `json:"can_move_posts"`
}

type Subscription struct {
	ThreadId  ThreadId
	SendEmail bool
}

type Participant struct {
	ThreadId ThreadId
	UserId   UserId
	Name     string
	IsOwner  bool
}
