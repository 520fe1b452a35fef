package domain

import "time"

const (
	RoleGuest  = "guest"
	RoleMember = "member"
)

type User struct {
	Id         UserId
	Name       string
	Role       string
	Admin      bool
	IsActive   bool
	JoinedOn   time.Time
	ReadCutoff *time.Time // "mark everything before X as read" preference
	ACL        ACL
}

// Anonymous returns the guest user. Guests never have persisted read state.
func Anonymous() *User {
	return &User{Role: RoleGuest}
}

func (u *User) IsAnonymous() bool {
	return u == nil || u.Id == 0
}

// ACL is the permission set resolved for a user before any engine runs.
type ACL struct {
	Categories                   map[CategoryId]CategoryACL
	CanSeeUnapprovedContentLists bool
	CanModeratePrivateThreads    bool
}

type CategoryACL struct {
	CanSee            bool
	CanBrowse         bool
	CanSeeAllThreads  bool
	CanStartThreads   bool
	CanReplyThreads   bool
	CanApproveContent bool
	CanHideThreads    bool
	CanHidePosts      bool
	CanPinThreads     Weight // highest weight the user may set
	CanCloseThreads   bool
	CanMovePosts      bool
}

// FullCategoryACL is what administrators get in every category.
func FullCategoryACL() CategoryACL {
	return CategoryACL{
		CanSee:            true,
		CanBrowse:         true,
		CanSeeAllThreads:  true,
		CanStartThreads:   true,
		CanReplyThreads:   true,
		CanApproveContent: true,
		CanHideThreads:    true,
		CanHidePosts:      true,
		CanPinThreads:     WeightPinnedGlobally,
		CanCloseThreads:   true,
		CanMovePosts:      true,
	}
}

// Category returns the user's permissions in a category; missing entries deny everything.
func (a ACL) Category(id CategoryId) CategoryACL {
	if a.Categories == nil {
		return CategoryACL{}
	}
	return a.Categories[id]
}

func (a CategoryACL) CanView() bool {
	return a.CanSee && a.CanBrowse
}
