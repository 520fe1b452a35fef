package domain

// ThreadVisibilityRule describes which threads of a group of categories a viewer may see.
type ThreadVisibilityRule struct {
	Categories []CategoryId
	AllThreads bool // false: only threads started by the viewer
	Unapproved bool // unapproved threads started by others
	Hidden     bool
}

// ThreadVisibility with no rules matches nothing.
type ThreadVisibility struct {
	ViewerId UserId
	Rules    []ThreadVisibilityRule
}

type PostVisibilityRule struct {
	Categories []CategoryId
	Unapproved bool // unapproved posts of other users
}

type PostVisibility struct {
	ViewerId UserId
	Rules    []PostVisibilityRule
}

func (v ThreadVisibility) IsEmpty() bool {
	return len(v.Rules) == 0
}

func (v PostVisibility) IsEmpty() bool {
	return len(v.Rules) == 0
}

func containsCategory(ids []CategoryId, id CategoryId) bool {
	for _, c := range ids {
		if c == id {
			return true
		}
	}
	return false
}

// Allows evaluates the rules against a single loaded thread.
func (v ThreadVisibility) Allows(t *Thread) bool {
	own := v.ViewerId != 0 && t.StarterId == v.ViewerId
	for _, r := range v.Rules {
		if !containsCategory(r.Categories, t.CategoryId) {
			continue
		}
		if !r.AllThreads && !own {
			return false
		}
		if t.IsUnapproved && !r.Unapproved && !own {
			return false
		}
		if t.IsHidden && !r.Hidden {
			return false
		}
		return true
	}
	return false
}

// Allows evaluates the rules against a single loaded post.
func (v PostVisibility) Allows(p *Post) bool {
	own := v.ViewerId != 0 && p.PosterId == v.ViewerId
	for _, r := range v.Rules {
		if !containsCategory(r.Categories, p.CategoryId) {
			continue
		}
		return !p.IsUnapproved || r.Unapproved || own
	}
	return false
}
