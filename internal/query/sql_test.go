package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelectPostgres(t *testing.T) {
	plan := QueryPlan{
		Dialect:   DialectPostgres,
		Predicate: []Node{Condition{Field: "user_id", Op: OpEq, Value: int64(3)}},
		Order:     []OrderBy{{Field: "title", Direction: "desc"}},
		Limit:     25,
		Offset:    50,
		Mode:      ModeOffset,
	}

	sql, args, err := BuildSelect("posts", []string{"id", "title"}, plan)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "title" FROM "posts" WHERE ("user_id" = $1) ORDER BY "title" DESC LIMIT 25 OFFSET 50`,
		sql)
	assert.Equal(t, []any{int64(3)}, args)
}

func TestBuildSelectNoColumnsNoPredicate(t *testing.T) {
	plan := QueryPlan{Dialect: DialectPostgres, Limit: 20}

	sql, args, err := BuildSelect("users", nil, plan)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" LIMIT 20`, sql)
	assert.Empty(t, args)
}

func TestBuildSelectInAndSearchGroup(t *testing.T) {
	plan := QueryPlan{
		Dialect: DialectPostgres,
		Predicate: []Node{
			Condition{Field: "status", Op: OpIn, Value: []any{"draft", "published"}},
			Group{Logic: LogicalOr, Nodes: []Node{
				Condition{Field: "title", Op: OpILike, Value: "%go%"},
				Condition{Field: "body", Op: OpILike, Value: "%go%"},
			}},
		},
	}

	sql, args, err := BuildSelect("posts", nil, plan)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT * FROM "posts" WHERE ("status" IN ($1,$2) AND ("title" ILIKE $3 OR "body" ILIKE $4))`,
		sql)
	assert.Equal(t, []any{"draft", "published", "%go%", "%go%"}, args)
}

func TestBuildSelectBetween(t *testing.T) {
	plan := QueryPlan{
		Dialect: DialectPostgres,
		Predicate: []Node{
			Condition{Field: "created_at", Op: OpBetween, Value: []any{"2024-01-01", "2024-12-31"}},
		},
	}

	sql, args, err := BuildSelect("posts", nil, plan)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "posts" WHERE ("created_at" BETWEEN $1 AND $2)`, sql)
	assert.Equal(t, []any{"2024-01-01", "2024-12-31"}, args)
}

func TestBuildSelectCursorPredicate(t *testing.T) {
	cursor := Condition{Field: "id", Op: OpLt, Value: int64(50)}
	plan := QueryPlan{
		Dialect:         DialectPostgres,
		Order:           []OrderBy{{Field: "id", Direction: "desc"}},
		Limit:           10,
		Offset:          50, // ignored in cursor mode
		Mode:            ModeCursor,
		CursorPredicate: &cursor,
		CursorField:     "id",
	}

	sql, args, err := BuildSelect("posts", []string{"id"}, plan)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id" FROM "posts" WHERE ("id" < $1) ORDER BY "id" DESC LIMIT 10`, sql)
	assert.Equal(t, []any{int64(50)}, args)
}

func TestBuildSelectMySQL(t *testing.T) {
	plan := QueryPlan{
		Dialect:   DialectMySQL,
		Predicate: []Node{Condition{Field: "title", Op: OpLike, Value: "%go%"}},
	}

	sql, args, err := BuildSelect("posts", []string{"id"}, plan)
	require.NoError(t, err)
	assert.Equal(t, "SELECT `id` FROM `posts` WHERE (`title` LIKE ?)", sql)
	assert.Equal(t, []any{"%go%"}, args)
}

func TestBuildSelectRangeOperators(t *testing.T) {
	plan := QueryPlan{
		Dialect: DialectSQLite,
		Predicate: []Node{
			Condition{Field: "a", Op: OpGte, Value: int64(1)},
			Condition{Field: "b", Op: OpLte, Value: int64(2)},
			Condition{Field: "c", Op: OpGt, Value: int64(3)},
			Condition{Field: "d", Op: OpLt, Value: int64(4)},
		},
	}

	sql, args, err := BuildSelect("t", nil, plan)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "t" WHERE ("a" >= ? AND "b" <= ? AND "c" > ? AND "d" < ?)`, sql)
	assert.Equal(t, []any{int64(1), int64(2), int64(3), int64(4)}, args)
}

func TestBuildCountDropsWindowing(t *testing.T) {
	cursor := Condition{Field: "id", Op: OpGt, Value: int64(10)}
	plan := QueryPlan{
		Dialect:         DialectPostgres,
		Predicate:       []Node{Condition{Field: "status", Op: OpEq, Value: "published"}},
		Order:           []OrderBy{{Field: "created_at", Direction: "desc"}},
		Limit:           20,
		Offset:          40,
		Mode:            ModeCursor,
		CursorPredicate: &cursor,
	}

	sql, args, err := BuildCount("posts", plan)
	require.NoError(t, err)
	assert.Equal(t, `SELECT count(*) FROM "posts" WHERE ("status" = $1)`, sql)
	assert.Equal(t, []any{"published"}, args)
}

func TestBuildCountNoPredicate(t *testing.T) {
	sql, args, err := BuildCount("users", QueryPlan{Dialect: DialectPostgres})
	require.NoError(t, err)
	assert.Equal(t, `SELECT count(*) FROM "users"`, sql)
	assert.Empty(t, args)
}

func TestQuoteIdentStripsQuotes(t *testing.T) {
	assert.Equal(t, `"ti tle"`, quoteIdent(`ti" tle`, DialectPostgres))
	assert.Equal(t, "`na me`", quoteIdent("na` me", DialectMySQL))
}
