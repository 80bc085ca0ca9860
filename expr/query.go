package expr

import "github.com/quillsql/quill/schema"

// Ordering is one ORDER BY term.
type Ordering struct {
	Column string
	Desc   bool
}

// QuerySpec is a full query description: source table, optional predicate,
// optional projection, ordering and paging. Specs are transient and owned by
// the call that builds them.
type QuerySpec struct {
	From       *schema.TableContext
	Where      Node
	Projection []string
	OrderBy    []Ordering
	Skip       *int
	Take       *int
}

// Query starts a spec for a table context.
func Query(from *schema.TableContext) *QuerySpec {
	return &QuerySpec{From: from}
}

func (q *QuerySpec) Filter(pred Node) *QuerySpec {
	q.Where = pred
	return q
}

func (q *QuerySpec) Select(columns ...string) *QuerySpec {
	q.Projection = columns
	return q
}

func (q *QuerySpec) OrderAsc(column string) *QuerySpec {
	q.OrderBy = append(q.OrderBy, Ordering{Column: column})
	return q
}

func (q *QuerySpec) OrderDesc(column string) *QuerySpec {
	q.OrderBy = append(q.OrderBy, Ordering{Column: column, Desc: true})
	return q
}

func (q *QuerySpec) Offset(n int) *QuerySpec {
	q.Skip = &n
	return q
}

func (q *QuerySpec) Limit(n int) *QuerySpec {
	q.Take = &n
	return q
}
