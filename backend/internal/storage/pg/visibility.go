package pg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/itchan-dev/forum/shared/domain"
	"github.com/lib/pq"
)

// queryArgs collects positional parameters while a statement is assembled.
type queryArgs struct {
	values []any
	viewer string
}

func (a *queryArgs) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// viewerParam binds the viewer id on first use only: Postgres can't infer
// the type of a parameter that no expression references.
func (a *queryArgs) viewerParam(id domain.UserId) string {
	if a.viewer == "" {
		a.viewer = a.add(id)
	}
	return a.viewer
}

// threadVisibilitySQL renders thread rules against alias. Rules are OR-ed,
// conditions inside a rule are AND-ed, and no rules match nothing.
func threadVisibilitySQL(a *queryArgs, vis domain.ThreadVisibility, alias string) string {
	if vis.IsEmpty() {
		return "FALSE"
	}

	clauses := make([]string, 0, len(vis.Rules))
	for _, rule := range vis.Rules {
		conds := []string{fmt.Sprintf("%s.category_id = ANY(%s)", alias, a.add(pq.Array(rule.Categories)))}
		switch {
		case !rule.AllThreads && vis.ViewerId == 0:
			conds = append(conds, "FALSE")
		case !rule.AllThreads:
			conds = append(conds, fmt.Sprintf("%s.starter_id = %s", alias, a.viewerParam(vis.ViewerId)))
		case !rule.Unapproved && vis.ViewerId == 0:
			conds = append(conds, fmt.Sprintf("NOT %s.is_unapproved", alias))
		case !rule.Unapproved:
			conds = append(conds, fmt.Sprintf("(NOT %s.is_unapproved OR %s.starter_id = %s)", alias, alias, a.viewerParam(vis.ViewerId)))
		}
		if !rule.Hidden {
			conds = append(conds, fmt.Sprintf("NOT %s.is_hidden", alias))
		}
		clauses = append(clauses, "("+strings.Join(conds, " AND ")+")")
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

// postVisibilitySQL renders post rules against alias the same way.
func postVisibilitySQL(a *queryArgs, vis domain.PostVisibility, alias string) string {
	if vis.IsEmpty() {
		return "FALSE"
	}

	clauses := make([]string, 0, len(vis.Rules))
	for _, rule := range vis.Rules {
		clause := fmt.Sprintf("%s.category_id = ANY(%s)", alias, a.add(pq.Array(rule.Categories)))
		if !rule.Unapproved {
			if vis.ViewerId == 0 {
				clause += fmt.Sprintf(" AND NOT %s.is_unapproved", alias)
			} else {
				clause += fmt.Sprintf(" AND (NOT %s.is_unapproved OR %s.poster_id = %s)", alias, alias, a.viewerParam(vis.ViewerId))
			}
		}
		clauses = append(clauses, "("+clause+")")
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}
