package query

import (
	"fmt"
	"math"
	"strconv"
)

// maxOffset caps the computed row offset so a huge page number cannot
// overflow the multiplication into a negative offset.
const maxOffset = math.MaxInt32

// Dialect identifies the SQL dialect a plan targets. It decides placeholder
// style, identifier quoting, and whether contains/search matches can use a
// natively case-insensitive operator.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
	DialectMariaDB  Dialect = "mariadb"
)

func (d Dialect) valid() bool {
	switch d {
	case DialectPostgres, DialectMySQL, DialectSQLite, DialectMariaDB:
		return true
	}
	return false
}

// caseInsensitiveLike reports whether the dialect has a dedicated
// case-insensitive match operator. Only Postgres has ILIKE; the others get
// plain LIKE (which is case-insensitive by default on MySQL/MariaDB anyway).
func (d Dialect) caseInsensitiveLike() bool {
	return d == DialectPostgres
}

// Options configures compilation for one endpoint.
type Options struct {
	Dialect Dialect

	// DefaultOrder applies when the intent requests no sort, commonly
	// [{created_at desc}]. It also supplies the default cursor field.
	DefaultOrder []OrderBy
}

// Compile deterministically translates a validated intent into a QueryPlan.
// It never fails on validated input; passing an unvalidated intent or an
// unknown dialect is a programming error (the latter panics).
func Compile(intent QueryIntent, opts Options) QueryPlan {
	if !opts.Dialect.valid() {
		panic(fmt.Sprintf("query: unknown dialect %q", opts.Dialect))
	}

	likeOp := OpLike
	if opts.Dialect.caseInsensitiveLike() {
		likeOp = OpILike
	}

	var nodes []Node

	for _, f := range intent.Filters.Equals {
		if len(f.Values) == 1 {
			nodes = append(nodes, Condition{Field: f.Field, Op: OpEq, Value: coerceScalar(f.Values[0])})
			continue
		}
		vals := make([]any, len(f.Values))
		for i, v := range f.Values {
			vals[i] = coerceScalar(v)
		}
		nodes = append(nodes, Condition{Field: f.Field, Op: OpIn, Value: vals})
	}

	for _, f := range intent.Filters.Contains {
		if len(f.Values) == 1 {
			nodes = append(nodes, containsLeaf(f.Field, f.Values[0], likeOp))
			continue
		}
		group := Group{Logic: LogicalOr}
		for _, v := range f.Values {
			group.Nodes = append(group.Nodes, containsLeaf(f.Field, v, likeOp))
		}
		nodes = append(nodes, group)
	}

	for _, f := range intent.Filters.Range {
		nodes = append(nodes, rangeLeaf(f))
	}

	if intent.Search.Term != "" && len(intent.Search.Columns) > 0 {
		group := Group{Logic: LogicalOr}
		for _, col := range intent.Search.Columns {
			group.Nodes = append(group.Nodes, containsLeaf(col, intent.Search.Term, likeOp))
		}
		nodes = append(nodes, group)
	}

	plan := QueryPlan{
		Dialect:   opts.Dialect,
		Predicate: nodes,
		Order:     compileOrder(intent.Sort, opts.DefaultOrder),
		Limit:     intent.Pagination.PageSize,
		Mode:      intent.Pagination.Mode,
	}

	switch intent.Pagination.Mode {
	case ModeCursor:
		plan.CursorField = effectiveCursorField(intent.Pagination, plan.Order)
		plan.CursorPredicate = cursorPredicate(intent.Pagination, plan.CursorField, plan.Order)
	default:
		page, size := intent.Pagination.Page, intent.Pagination.PageSize
		if size > 0 && page-1 > maxOffset/size {
			plan.Offset = maxOffset
		} else {
			plan.Offset = (page - 1) * size
		}
	}

	return plan
}

func containsLeaf(field, value string, likeOp Op) Condition {
	return Condition{Field: field, Op: likeOp, Value: "%" + value + "%"}
}

func rangeLeaf(f RangeFilter) Condition {
	if f.Op == RangeBetween {
		// Arity was enforced by the validator.
		return Condition{Field: f.Field, Op: OpBetween, Value: []any{
			coerceScalar(f.Values[0]),
			coerceScalar(f.Values[1]),
		}}
	}
	ops := map[RangeOp]Op{RangeGte: OpGte, RangeLte: OpLte, RangeGt: OpGt, RangeLt: OpLt}
	return Condition{Field: f.Field, Op: ops[f.Op], Value: coerceScalar(f.Values[0])}
}

func compileOrder(s Sort, fallback []OrderBy) []OrderBy {
	if s.SortBy == "" {
		return append([]OrderBy(nil), fallback...)
	}
	dir := s.SortDir
	if dir == "" {
		dir = "asc"
	}
	return []OrderBy{{Field: s.SortBy, Direction: dir}}
}

// effectiveCursorField picks the cursor key: the requested field, else the
// first order column, else "id".
func effectiveCursorField(p Pagination, order []OrderBy) string {
	if p.CursorField != "" {
		return p.CursorField
	}
	if len(order) > 0 {
		return order[0].Field
	}
	return "id"
}

// cursorPredicate builds the comparison against the last-seen key value.
// "Next" means greater-than under ascending order and less-than under
// descending; "prev" inverts the comparison. No predicate is emitted for the
// first page (empty cursor).
func cursorPredicate(p Pagination, field string, order []OrderBy) *Condition {
	if p.Cursor == "" {
		return nil
	}

	ascending := true
	if len(order) > 0 {
		ascending = order[0].Direction != "desc"
	}

	op := OpGt
	if ascending != (p.Direction == DirectionNext) {
		op = OpLt
	}
	return &Condition{Field: field, Op: op, Value: coerceScalar(p.Cursor)}
}

// coerceScalar maps a raw string value to the narrowest useful Go type so it
// binds with a sensible SQL type: int64, then float64, then bool, else string.
func coerceScalar(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}
