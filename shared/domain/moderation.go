package domain

// SplitData is a validated request to move posts into a new thread.
type SplitData struct {
	ThreadId   ThreadId
	PostIds    []PostId
	Title      ThreadTitle
	CategoryId CategoryId
	Weight     Weight
	IsClosed   bool
	IsHidden   bool
	Actor      User
}

// PostsMove describes posts that changed owning thread.
type PostsMove struct {
	SourceThreadId     ThreadId
	SourceCategoryId   CategoryId
	SourceBestAnswerId *PostId
	TargetThreadId     ThreadId
	TargetCategoryId   CategoryId
	PostIds            []PostId
}

func (m PostsMove) Moves(postId PostId) bool {
	for _, id := range m.PostIds {
		if id == postId {
			return true
		}
	}
	return false
}
