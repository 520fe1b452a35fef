package domain

// ThreadView is a thread page as seen by one user.
type ThreadView struct {
	Thread     *Thread
	Category   *Category
	ACL        ThreadACL
	ReadState  ReadState
	Posts      []*Post
	UnreadPost map[PostId]bool
	Pagination Pagination
}

// CategoryIndex is the visible category tree without the root.
type CategoryIndex struct {
	Categories []*Category
	ReadStates CategoryReadStates
}
