package database

import (
	"fmt"
	"strings"
)

type Op string

const (
	OpEq    Op = "="
	OpILike Op = "ILIKE"
	OpGte   Op = ">="
	OpLte   Op = "<="
)

type Filter struct {
	Column string
	Op     Op
	Value  interface{}
}

// Query builds a single-table SELECT with AND-ed predicates. Table and
// column names come from code, never from request input; values are always
// bound as parameters.
type Query struct {
	table   string
	columns []string
	filters []Filter
	orderBy string
	desc    bool
}

func Select(table string, columns ...string) *Query {
	return &Query{table: table, columns: columns}
}

func (q *Query) Eq(column string, value interface{}) *Query {
	q.filters = append(q.filters, Filter{Column: column, Op: OpEq, Value: value})
	return q
}

// ILike matches rows whose column contains substr, case-insensitively.
func (q *Query) ILike(column, substr string) *Query {
	q.filters = append(q.filters, Filter{Column: column, Op: OpILike, Value: "%" + escapeLike(substr) + "%"})
	return q
}

func (q *Query) Gte(column string, value interface{}) *Query {
	q.filters = append(q.filters, Filter{Column: column, Op: OpGte, Value: value})
	return q
}

func (q *Query) Lte(column string, value interface{}) *Query {
	q.filters = append(q.filters, Filter{Column: column, Op: OpLte, Value: value})
	return q
}

func (q *Query) Order(column string, desc bool) *Query {
	q.orderBy = column
	q.desc = desc
	return q
}

func (q *Query) Filters() []Filter {
	return q.filters
}

func (q *Query) Build() (string, []interface{}) {
	cols := "*"
	if len(q.columns) > 0 {
		cols = strings.Join(q.columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, q.table)
	args := q.writeWhere(&sb)

	if q.orderBy != "" {
		dir := "ASC"
		if q.desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", q.orderBy, dir)
	}

	return sb.String(), args
}

// BuildCount is the count-only mode: same predicates, no rows returned.
func (q *Query) BuildCount() (string, []interface{}) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT COUNT(*) FROM %s", q.table)
	args := q.writeWhere(&sb)
	return sb.String(), args
}

func (q *Query) writeWhere(sb *strings.Builder) []interface{} {
	args := make([]interface{}, 0, len(q.filters))
	for i, f := range q.filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(sb, "%s %s $%d", f.Column, f.Op, len(args))
	}
	return args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
