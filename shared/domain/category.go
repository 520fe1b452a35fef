package domain

// Special marks categories that are not regular forum categories.
type Special string

const (
	SpecialNone           Special = ""
	SpecialRoot           Special = "root_category"
	SpecialPrivateThreads Special = "private_threads"
)

type Category struct {
	Id       CategoryId
	ParentId *CategoryId
	Name     string
	Slug     string
	Level    int // 0 for tree roots
	IsClosed bool
	Special  Special
}

func (c *Category) IsRoot() bool {
	return c.Level == 0
}

// CategoryTree is an in-memory copy of the categories table kept in pre-order.
type CategoryTree struct {
	ordered  []*Category
	byId     map[CategoryId]*Category
	children map[CategoryId][]CategoryId
}

// NewCategoryTree expects parents to come before their children.
func NewCategoryTree(categories []Category) *CategoryTree {
	t := &CategoryTree{
		byId:     make(map[CategoryId]*Category, len(categories)),
		children: make(map[CategoryId][]CategoryId),
	}
	for i := range categories {
		c := categories[i]
		t.byId[c.Id] = &c
		t.ordered = append(t.ordered, &c)
		if c.ParentId != nil {
			t.children[*c.ParentId] = append(t.children[*c.ParentId], c.Id)
		}
	}
	return t
}

func (t *CategoryTree) Get(id CategoryId) (*Category, bool) {
	c, ok := t.byId[id]
	return c, ok
}

func (t *CategoryTree) All() []*Category {
	return t.ordered
}

func (t *CategoryTree) Children(id CategoryId) []*Category {
	ids := t.children[id]
	out := make([]*Category, 0, len(ids))
	for _, childId := range ids {
		out = append(out, t.byId[childId])
	}
	return out
}

// Subtree returns the category followed by all of its descendants.
func (t *CategoryTree) Subtree(id CategoryId) []*Category {
	root, ok := t.byId[id]
	if !ok {
		return nil
	}
	out := []*Category{root}
	for _, child := range t.Children(id) {
		out = append(out, t.Subtree(child.Id)...)
	}
	return out
}

func (t *CategoryTree) special(kind Special) (*Category, bool) {
	for _, c := range t.ordered {
		if c.Special == kind {
			return c, true
		}
	}
	return nil, false
}

// Root is the forum root category.
func (t *CategoryTree) Root() (*Category, bool) {
	return t.special(SpecialRoot)
}

// PrivateRoot is the category holding private threads.
func (t *CategoryTree) PrivateRoot() (*Category, bool) {
	return t.special(SpecialPrivateThreads)
}

func CategoryIds(categories []*Category) []CategoryId {
	ids := make([]CategoryId, len(categories))
	for i, c := range categories {
		ids[i] = c.Id
	}
	return ids
}
