// Package query turns untrusted HTTP query parameters into safe, parameterized
// list queries. Raw parameters are parsed into a QueryIntent, validated against
// a per-endpoint FieldPolicy allowlist, and compiled into a QueryPlan that is
// rendered to SQL with bound parameters only.
package query

// PaginationMode selects how a list query is windowed.
type PaginationMode string

const (
	ModeOffset PaginationMode = "offset"
	ModeCursor PaginationMode = "cursor"
)

// Direction is the traversal direction for cursor pagination.
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// RangeOp is a range sub-operator on a filter field.
type RangeOp string

const (
	RangeGte     RangeOp = "gte"
	RangeLte     RangeOp = "lte"
	RangeGt      RangeOp = "gt"
	RangeLt      RangeOp = "lt"
	RangeBetween RangeOp = "between"
)

// Pagination holds the requested windowing. Page and PageSize are used in
// offset mode; Cursor, CursorField and Direction in cursor mode.
type Pagination struct {
	Mode        PaginationMode
	Page        int
	PageSize    int
	Cursor      string // raw cursor value; empty means first page
	CursorField string
	Direction   Direction
}

// Sort holds the requested ordering. SortBy empty means no sort was requested.
type Sort struct {
	SortBy  string
	SortDir string
}

// Search holds a free-text search term and the columns it should match against.
type Search struct {
	Term    string
	Columns []string
}

// EqualsFilter matches a field against one value, or any of several values.
type EqualsFilter struct {
	Field  string
	Values []string
}

// ContainsFilter substring-matches a field; multiple values match if any does.
type ContainsFilter struct {
	Field  string
	Values []string
}

// RangeFilter is a single range sub-operator applied to a field. Between
// carries two values; every other operator carries one.
type RangeFilter struct {
	Field  string
	Op     RangeOp
	Values []string
}

// Filters groups the requested filters by kind, in the order they appeared.
type Filters struct {
	Equals   []EqualsFilter
	Contains []ContainsFilter
	Range    []RangeFilter

	// Raw is an escape hatch for pre-built backend predicates. It must never
	// originate from a request; Validate strips it unconditionally.
	Raw any
}

// QueryIntent is the untrusted, structured form of a client's list request.
// It must pass through Validate before it is compiled or executed.
type QueryIntent struct {
	Pagination Pagination
	Sort       Sort
	Search     Search
	Filters    Filters
}

// Clone returns a deep copy of the intent. Validate works on a clone so the
// caller's intent is never mutated.
func (i QueryIntent) Clone() QueryIntent {
	out := i
	out.Search.Columns = append([]string(nil), i.Search.Columns...)
	out.Filters.Equals = make([]EqualsFilter, len(i.Filters.Equals))
	for k, f := range i.Filters.Equals {
		f.Values = append([]string(nil), f.Values...)
		out.Filters.Equals[k] = f
	}
	out.Filters.Contains = make([]ContainsFilter, len(i.Filters.Contains))
	for k, f := range i.Filters.Contains {
		f.Values = append([]string(nil), f.Values...)
		out.Filters.Contains[k] = f
	}
	out.Filters.Range = make([]RangeFilter, len(i.Filters.Range))
	for k, f := range i.Filters.Range {
		f.Values = append([]string(nil), f.Values...)
		out.Filters.Range[k] = f
	}
	return out
}
