package domain

import "time"

type Post struct {
	Id           PostId
	ThreadId     ThreadId
	CategoryId   CategoryId
	PosterId     UserId
	PosterName   string
	PostedOn     time.Time
	IsEvent      bool // non-content marker such as "thread was closed"
	IsUnapproved bool
	IsHidden     bool
	Content      PostText
}

// ReadMarker is the persisted fact that a user has read a post.
// Thread and category are denormalized at creation time.
type ReadMarker struct {
	UserId     UserId
	PostId     PostId
	ThreadId   ThreadId
	CategoryId CategoryId
	ReadOn     time.Time
}
