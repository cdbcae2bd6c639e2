package query

// Op is a comparison operator in a compiled plan.
type Op string

const (
	OpEq      Op = "eq"
	OpIn      Op = "in"
	OpLike    Op = "like"
	OpILike   Op = "ilike"
	OpGte     Op = "gte"
	OpLte     Op = "lte"
	OpGt      Op = "gt"
	OpLt      Op = "lt"
	OpBetween Op = "between"
)

// Logical combines child nodes of a Group.
type Logical string

const (
	LogicalAnd Logical = "and"
	LogicalOr  Logical = "or"
)

// Node is a predicate tree node: either a Condition leaf or a Group.
type Node interface {
	node()
}

// Condition is a single field-operator-value leaf. For OpIn the value is a
// slice; for OpBetween it is a two-element slice; otherwise a scalar.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Group combines child nodes with a logical operator.
type Group struct {
	Logic Logical
	Nodes []Node
}

func (Condition) node() {}
func (Group) node()     {}

// OrderBy is one ordering term.
type OrderBy struct {
	Field     string
	Direction string // "asc" or "desc"
}

// QueryPlan is the backend-agnostic output of Compile. Predicate is an
// implicit AND list; an empty list means no WHERE clause. CursorPredicate,
// when set, is logically ANDed into the predicate by the renderer but kept
// separate so counting queries can ignore it.
type QueryPlan struct {
	Dialect         Dialect
	Predicate       []Node
	Order           []OrderBy
	Limit           int
	Offset          int // meaningful only in offset mode
	Mode            PaginationMode
	CursorPredicate *Condition

	// CursorField is the key column cursor pagination compares against. Set in
	// cursor mode even on the first page, so executors can derive the next
	// cursor from the last row.
	CursorField string
}
