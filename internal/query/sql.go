package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// BuildSelect renders a plan into one parameterized SELECT statement. Every
// value is a bound parameter; identifiers are quoted for the plan's dialect.
// Field names in the plan are trusted because compilation only runs on
// validated intents.
func BuildSelect(table string, columns []string, plan QueryPlan) (string, []any, error) {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col, plan.Dialect)
	}
	if len(quoted) == 0 {
		quoted = []string{"*"}
	}

	builder := statementBuilder(plan.Dialect).
		Select(quoted...).
		From(quoteIdent(table, plan.Dialect))

	where := whereConjunction(plan, true)
	if len(where) > 0 {
		builder = builder.Where(where)
	}

	for _, o := range plan.Order {
		dir := "ASC"
		if strings.EqualFold(o.Direction, "desc") {
			dir = "DESC"
		}
		builder = builder.OrderBy(quoteIdent(o.Field, plan.Dialect) + " " + dir)
	}

	if plan.Limit > 0 {
		builder = builder.Limit(uint64(plan.Limit))
	}
	if plan.Mode == ModeOffset && plan.Offset > 0 {
		builder = builder.Offset(uint64(plan.Offset))
	}

	return builder.ToSql()
}

// BuildCount renders the count query for the same filtered set. Ordering,
// limit/offset and the cursor predicate are dropped: the total is the size of
// the whole filtered set, not the remaining window.
func BuildCount(table string, plan QueryPlan) (string, []any, error) {
	builder := statementBuilder(plan.Dialect).
		Select("count(*)").
		From(quoteIdent(table, plan.Dialect))

	where := whereConjunction(plan, false)
	if len(where) > 0 {
		builder = builder.Where(where)
	}
	return builder.ToSql()
}

func statementBuilder(d Dialect) sq.StatementBuilderType {
	if d == DialectPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func whereConjunction(plan QueryPlan, withCursor bool) sq.And {
	var conj sq.And
	for _, node := range plan.Predicate {
		conj = append(conj, toSqlizer(node, plan.Dialect))
	}
	if withCursor && plan.CursorPredicate != nil {
		conj = append(conj, toSqlizer(*plan.CursorPredicate, plan.Dialect))
	}
	return conj
}

func toSqlizer(node Node, d Dialect) sq.Sqlizer {
	switch n := node.(type) {
	case Condition:
		return conditionSqlizer(n, d)
	case Group:
		if n.Logic == LogicalOr {
			var or sq.Or
			for _, child := range n.Nodes {
				or = append(or, toSqlizer(child, d))
			}
			return or
		}
		var and sq.And
		for _, child := range n.Nodes {
			and = append(and, toSqlizer(child, d))
		}
		return and
	default:
		panic(fmt.Sprintf("query: unknown plan node %T", node))
	}
}

func conditionSqlizer(c Condition, d Dialect) sq.Sqlizer {
	field := quoteIdent(c.Field, d)
	switch c.Op {
	case OpEq, OpIn:
		return sq.Eq{field: c.Value}
	case OpLike:
		return sq.Like{field: c.Value}
	case OpILike:
		return sq.ILike{field: c.Value}
	case OpGte:
		return sq.GtOrEq{field: c.Value}
	case OpLte:
		return sq.LtOrEq{field: c.Value}
	case OpGt:
		return sq.Gt{field: c.Value}
	case OpLt:
		return sq.Lt{field: c.Value}
	case OpBetween:
		vals := c.Value.([]any)
		return sq.Expr(field+" BETWEEN ? AND ?", vals[0], vals[1])
	default:
		panic(fmt.Sprintf("query: unknown operator %q", c.Op))
	}
}

// quoteIdent quotes a column or table name for the dialect, stripping any
// embedded quote characters.
func quoteIdent(ident string, d Dialect) string {
	switch d {
	case DialectMySQL, DialectMariaDB:
		return "`" + strings.ReplaceAll(ident, "`", "") + "`"
	default:
		return `"` + strings.ReplaceAll(ident, `"`, "") + `"`
	}
}
