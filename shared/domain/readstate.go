package domain

import "time"

// ReadState is derived per render and never persisted.
type ReadState struct {
	IsRead bool `json:"is_read"`
	IsNew  bool `json:"is_new"`
}

var (
	StateRead   = ReadState{IsRead: true, IsNew: false}
	StateUnread = ReadState{IsRead: false, IsNew: true}
)

type ThreadReadStates map[ThreadId]ReadState

type CategoryReadStates map[CategoryId]ReadState

// UnreadQuery selects items that have fresh visible posts the user has no markers for.
// ThreadIds scopes by thread, CategoryIds by category (then Threads applies too).
type UnreadQuery struct {
	UserId      UserId
	Cutoff      time.Time // exclusive
	ThreadIds   []ThreadId
	CategoryIds []CategoryId
	Threads     ThreadVisibility
	Posts       PostVisibility
}
