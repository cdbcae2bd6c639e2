package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaults(t *testing.T) {
	intent := Parse(url.Values{})

	assert.Equal(t, ModeOffset, intent.Pagination.Mode)
	assert.Equal(t, 1, intent.Pagination.Page)
	assert.Equal(t, DefaultPageSize, intent.Pagination.PageSize)
	assert.Equal(t, DirectionNext, intent.Pagination.Direction)
	assert.Empty(t, intent.Sort.SortBy)
	assert.Empty(t, intent.Search.Term)
	assert.Empty(t, intent.Filters.Equals)
	assert.Empty(t, intent.Filters.Contains)
	assert.Empty(t, intent.Filters.Range)
}

func TestParsePaginationLeniency(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
	}{
		{"numeric", "page=3&pageSize=25", 3, 25},
		{"zero falls back", "page=0&pageSize=0", 1, DefaultPageSize},
		{"negative falls back", "page=-2&pageSize=-5", 1, DefaultPageSize},
		{"garbage falls back", "page=abc&pageSize=xyz", 1, DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			intent := Parse(values)
			assert.Equal(t, tt.page, intent.Pagination.Page)
			assert.Equal(t, tt.pageSize, intent.Pagination.PageSize)
		})
	}
}

func TestParseMode(t *testing.T) {
	intent := Parse(url.Values{"mode": {"cursor"}, "cursor": {"50"}, "direction": {"prev"}, "cursorField": {"id"}})
	assert.Equal(t, ModeCursor, intent.Pagination.Mode)
	assert.Equal(t, "50", intent.Pagination.Cursor)
	assert.Equal(t, "id", intent.Pagination.CursorField)
	assert.Equal(t, DirectionPrev, intent.Pagination.Direction)

	// Anything other than "cursor" is offset, anything other than "prev" is next.
	intent = Parse(url.Values{"mode": {"keyset"}, "direction": {"backwards"}})
	assert.Equal(t, ModeOffset, intent.Pagination.Mode)
	assert.Equal(t, DirectionNext, intent.Pagination.Direction)
}

func TestParseSortAndSearch(t *testing.T) {
	values, _ := url.ParseQuery("sortBy=title&sortDir=DESC&q=hello&searchColumns=title,%20body")
	intent := Parse(values)

	assert.Equal(t, "title", intent.Sort.SortBy)
	assert.Equal(t, "DESC", intent.Sort.SortDir) // canonicalized later, by Validate
	assert.Equal(t, "hello", intent.Search.Term)
	assert.Equal(t, []string{"title", "body"}, intent.Search.Columns)
}

func TestParseFilterBuckets(t *testing.T) {
	values := url.Values{
		"user_id":             {"3"},
		"status[equals]":      {"published", "draft"},
		"title[contains]":     {"go"},
		"created_at[gte]":     {"2024-01-01"},
		"created_at[between]": {"2024-01-01,2024-12-31"},
		"price[unknownop]":    {"9"},
		"[equals]":            {"broken"},
		"weird[unterminated":  {"x"},
	}
	intent := Parse(values)

	// Bare key is an equals filter; explicit [equals] keeps the value list.
	assert.Equal(t, []EqualsFilter{
		{Field: "status", Values: []string{"published", "draft"}},
		{Field: "user_id", Values: []string{"3"}},
	}, intent.Filters.Equals)

	assert.Equal(t, []ContainsFilter{
		{Field: "title", Values: []string{"go"}},
	}, intent.Filters.Contains)

	assert.Equal(t, []RangeFilter{
		{Field: "created_at", Op: RangeBetween, Values: []string{"2024-01-01", "2024-12-31"}},
		{Field: "created_at", Op: RangeGte, Values: []string{"2024-01-01"}},
	}, intent.Filters.Range)
}

func TestParseDropsUnknownOperatorTokens(t *testing.T) {
	intent := Parse(url.Values{"price[foo]": {"1"}})
	assert.Empty(t, intent.Filters.Equals)
	assert.Empty(t, intent.Filters.Contains)
	assert.Empty(t, intent.Filters.Range)
}

func TestParseReservedKeysAreNotFilters(t *testing.T) {
	values, _ := url.ParseQuery("page=2&pageSize=10&sortBy=title&q=x&mode=cursor&cursor=5&cursorField=id&direction=next&sortDir=asc&searchColumns=title")
	intent := Parse(values)
	assert.Empty(t, intent.Filters.Equals)
	assert.Empty(t, intent.Filters.Contains)
	assert.Empty(t, intent.Filters.Range)
}

func TestParseFilterOrderIsStable(t *testing.T) {
	values := url.Values{
		"b": {"2"},
		"a": {"1"},
		"c": {"3"},
	}
	for i := 0; i < 10; i++ {
		intent := Parse(values)
		assert.Equal(t, []EqualsFilter{
			{Field: "a", Values: []string{"1"}},
			{Field: "b", Values: []string{"2"}},
			{Field: "c", Values: []string{"3"}},
		}, intent.Filters.Equals)
	}
}
