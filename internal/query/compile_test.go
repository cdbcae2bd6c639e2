package query

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pgOptions() Options {
	return Options{
		Dialect:      DialectPostgres,
		DefaultOrder: []OrderBy{{Field: "created_at", Direction: "desc"}},
	}
}

func TestCompileEqualsAndSort(t *testing.T) {
	values, _ := url.ParseQuery("sortBy=title&sortDir=desc&user_id[equals]=3")
	sanitized, err := Validate(Parse(values), postPolicy())
	require.NoError(t, err)

	plan := Compile(sanitized, pgOptions())

	assert.Equal(t, []OrderBy{{Field: "title", Direction: "desc"}}, plan.Order)
	require.Len(t, plan.Predicate, 1)
	assert.Equal(t, Condition{Field: "user_id", Op: OpEq, Value: int64(3)}, plan.Predicate[0])
}

func TestCompileEqualsListBecomesIn(t *testing.T) {
	intent := QueryIntent{
		Filters: Filters{Equals: []EqualsFilter{{Field: "status", Values: []string{"draft", "published"}}}},
	}
	plan := Compile(intent, pgOptions())

	require.Len(t, plan.Predicate, 1)
	assert.Equal(t, Condition{Field: "status", Op: OpIn, Value: []any{"draft", "published"}}, plan.Predicate[0])
}

func TestCompileContainsWrapsWildcards(t *testing.T) {
	intent := QueryIntent{
		Filters: Filters{Contains: []ContainsFilter{{Field: "title", Values: []string{"go"}}}},
	}

	plan := Compile(intent, pgOptions())
	require.Len(t, plan.Predicate, 1)
	assert.Equal(t, Condition{Field: "title", Op: OpILike, Value: "%go%"}, plan.Predicate[0])

	// Non-postgres dialects have no native case-insensitive operator.
	plan = Compile(intent, Options{Dialect: DialectMySQL})
	assert.Equal(t, Condition{Field: "title", Op: OpLike, Value: "%go%"}, plan.Predicate[0])
}

func TestCompileContainsListBecomesOrGroup(t *testing.T) {
	intent := QueryIntent{
		Filters: Filters{Contains: []ContainsFilter{{Field: "title", Values: []string{"go", "rust"}}}},
	}
	plan := Compile(intent, pgOptions())

	require.Len(t, plan.Predicate, 1)
	group, ok := plan.Predicate[0].(Group)
	require.True(t, ok)
	assert.Equal(t, LogicalOr, group.Logic)
	assert.Equal(t, []Node{
		Condition{Field: "title", Op: OpILike, Value: "%go%"},
		Condition{Field: "title", Op: OpILike, Value: "%rust%"},
	}, group.Nodes)
}

func TestCompileRangeFilters(t *testing.T) {
	intent := QueryIntent{
		Filters: Filters{Range: []RangeFilter{
			{Field: "created_at", Op: RangeGte, Values: []string{"2024-01-01"}},
			{Field: "created_at", Op: RangeLte, Values: []string{"2024-12-31"}},
			{Field: "score", Op: RangeBetween, Values: []string{"1", "10"}},
		}},
	}
	plan := Compile(intent, pgOptions())

	require.Len(t, plan.Predicate, 3)
	assert.Equal(t, Condition{Field: "created_at", Op: OpGte, Value: "2024-01-01"}, plan.Predicate[0])
	assert.Equal(t, Condition{Field: "created_at", Op: OpLte, Value: "2024-12-31"}, plan.Predicate[1])
	assert.Equal(t, Condition{Field: "score", Op: OpBetween, Value: []any{int64(1), int64(10)}}, plan.Predicate[2])
}

func TestCompileSearchOrGroup(t *testing.T) {
	intent := QueryIntent{
		Search: Search{Term: "hello", Columns: []string{"title", "body"}},
	}
	plan := Compile(intent, pgOptions())

	require.Len(t, plan.Predicate, 1)
	group, ok := plan.Predicate[0].(Group)
	require.True(t, ok)
	assert.Equal(t, LogicalOr, group.Logic)
	assert.Equal(t, []Node{
		Condition{Field: "title", Op: OpILike, Value: "%hello%"},
		Condition{Field: "body", Op: OpILike, Value: "%hello%"},
	}, group.Nodes)

	// A term with no columns compiles to nothing.
	plan = Compile(QueryIntent{Search: Search{Term: "hello"}}, pgOptions())
	assert.Empty(t, plan.Predicate)
}

func TestCompileDefaultOrder(t *testing.T) {
	plan := Compile(QueryIntent{}, pgOptions())
	assert.Equal(t, []OrderBy{{Field: "created_at", Direction: "desc"}}, plan.Order)

	plan = Compile(QueryIntent{Sort: Sort{SortBy: "title"}}, pgOptions())
	assert.Equal(t, []OrderBy{{Field: "title", Direction: "asc"}}, plan.Order)
}

func TestCompileOffsetPagination(t *testing.T) {
	intent := QueryIntent{Pagination: Pagination{Mode: ModeOffset, Page: 3, PageSize: 25}}
	plan := Compile(intent, pgOptions())

	assert.Equal(t, ModeOffset, plan.Mode)
	assert.Equal(t, 25, plan.Limit)
	assert.Equal(t, 50, plan.Offset)
	assert.Nil(t, plan.CursorPredicate)
}

func TestCompileOffsetClampedOnHugePage(t *testing.T) {
	intent := QueryIntent{Pagination: Pagination{Mode: ModeOffset, Page: math.MaxInt, PageSize: 100}}
	plan := Compile(intent, pgOptions())

	assert.Equal(t, math.MaxInt32, plan.Offset)
	assert.GreaterOrEqual(t, plan.Offset, 0)
}

func TestCompileCursorDirections(t *testing.T) {
	tests := []struct {
		name      string
		order     string
		direction Direction
		wantOp    Op
	}{
		{"asc next", "asc", DirectionNext, OpGt},
		{"asc prev", "asc", DirectionPrev, OpLt},
		{"desc next", "desc", DirectionNext, OpLt},
		{"desc prev", "desc", DirectionPrev, OpGt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := QueryIntent{
				Sort: Sort{SortBy: "id", SortDir: tt.order},
				Pagination: Pagination{
					Mode:      ModeCursor,
					PageSize:  10,
					Cursor:    "50",
					Direction: tt.direction,
				},
			}
			plan := Compile(intent, pgOptions())
			require.NotNil(t, plan.CursorPredicate)
			assert.Equal(t, Condition{Field: "id", Op: tt.wantOp, Value: int64(50)}, *plan.CursorPredicate)
			assert.Equal(t, 0, plan.Offset)
		})
	}
}

func TestCompileCursorDefaults(t *testing.T) {
	// First page: no cursor predicate, but the cursor field is still resolved.
	intent := QueryIntent{Pagination: Pagination{Mode: ModeCursor, PageSize: 10}}
	plan := Compile(intent, pgOptions())
	assert.Nil(t, plan.CursorPredicate)
	assert.Equal(t, "created_at", plan.CursorField) // from default order

	// Without any order the key falls back to "id".
	plan = Compile(intent, Options{Dialect: DialectPostgres})
	assert.Equal(t, "id", plan.CursorField)

	// Cursor over the default order: next under desc compares less-than.
	intent.Pagination.Cursor = "2024-06-01T00:00:00Z"
	intent.Pagination.Direction = DirectionNext
	plan = Compile(intent, pgOptions())
	require.NotNil(t, plan.CursorPredicate)
	assert.Equal(t, OpLt, plan.CursorPredicate.Op)
	assert.Equal(t, "created_at", plan.CursorPredicate.Field)
}

func TestCompileCursorEndToEnd(t *testing.T) {
	values, _ := url.ParseQuery("mode=cursor&cursor=10&direction=next")
	sanitized, err := Validate(Parse(values), postPolicy())
	require.NoError(t, err)

	plan := Compile(sanitized, Options{
		Dialect:      DialectPostgres,
		DefaultOrder: []OrderBy{{Field: "id", Direction: "asc"}},
	})

	require.NotNil(t, plan.CursorPredicate)
	assert.Equal(t, Condition{Field: "id", Op: OpGt, Value: int64(10)}, *plan.CursorPredicate)
	assert.Equal(t, 0, plan.Offset)
	assert.Equal(t, ModeCursor, plan.Mode)
}

func TestCompileScalarCoercion(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"true", true},
		{"false", false},
		{"hello", "hello"},
		{"2024-01-01", "2024-01-01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerceScalar(tt.in), "coerceScalar(%q)", tt.in)
	}
}

func TestCompileUnknownDialectPanics(t *testing.T) {
	assert.Panics(t, func() {
		Compile(QueryIntent{}, Options{Dialect: "oracle"})
	})
}
