package domain

type (
	UserId     = int64
	CategoryId = int64
	ThreadId   = int64
	PostId     = int64

	ThreadTitle = string
	PostText    = string
)
