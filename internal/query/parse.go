package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultPageSize is used when the request does not carry a usable pageSize.
const DefaultPageSize = 20

// reservedKeys are interpreted as pagination/sort/search controls. Every other
// key is a filter expression.
var reservedKeys = map[string]bool{
	"page":          true,
	"pageSize":      true,
	"sortBy":        true,
	"sortDir":       true,
	"q":             true,
	"searchColumns": true,
	"cursor":        true,
	"cursorField":   true,
	"direction":     true,
	"mode":          true,
}

// filterOps is the closed set of bracket operator tokens. Keys carrying an
// unrecognized token are dropped rather than misread as an equals filter on a
// field with brackets in its name.
var filterOps = map[string]bool{
	"equals":   true,
	"contains": true,
	"gte":      true,
	"lte":      true,
	"gt":       true,
	"lt":       true,
	"between":  true,
}

// Parse decodes raw query parameters into a QueryIntent. It is a pure
// syntactic translation: no trust decisions are made here and it never fails.
// Malformed numeric input falls back to defaults, unknown modes fall back to
// offset, and unrecognized filter operator tokens are dropped.
func Parse(values url.Values) QueryIntent {
	intent := QueryIntent{
		Pagination: Pagination{
			Mode:        ModeOffset,
			Page:        intOr(values.Get("page"), 1),
			PageSize:    intOr(values.Get("pageSize"), DefaultPageSize),
			Cursor:      values.Get("cursor"),
			CursorField: values.Get("cursorField"),
			Direction:   DirectionNext,
		},
		Sort: Sort{
			SortBy:  values.Get("sortBy"),
			SortDir: values.Get("sortDir"),
		},
		Search: Search{
			Term:    values.Get("q"),
			Columns: splitList(values.Get("searchColumns")),
		},
	}

	if values.Get("mode") == string(ModeCursor) {
		intent.Pagination.Mode = ModeCursor
	}
	if values.Get("direction") == string(DirectionPrev) {
		intent.Pagination.Direction = DirectionPrev
	}

	// Map iteration order is random; sort keys so filter order is stable.
	keys := make([]string, 0, len(values))
	for key := range values {
		if !reservedKeys[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		vals := values[key]
		if len(vals) == 0 {
			continue
		}
		field, op, ok := splitFilterKey(key)
		if !ok {
			continue
		}
		switch op {
		case "equals":
			intent.Filters.Equals = append(intent.Filters.Equals, EqualsFilter{
				Field:  field,
				Values: append([]string(nil), vals...),
			})
		case "contains":
			intent.Filters.Contains = append(intent.Filters.Contains, ContainsFilter{
				Field:  field,
				Values: append([]string(nil), vals...),
			})
		case "between":
			// Comma-split into raw parts; arity is checked by the validator.
			intent.Filters.Range = append(intent.Filters.Range, RangeFilter{
				Field:  field,
				Op:     RangeBetween,
				Values: splitList(vals[0]),
			})
		default:
			intent.Filters.Range = append(intent.Filters.Range, RangeFilter{
				Field:  field,
				Op:     RangeOp(op),
				Values: []string{vals[0]},
			})
		}
	}

	return intent
}

// splitFilterKey parses `field[op]` or a bare field name. A bare name is an
// equals filter. A bracketed key with an unknown operator token reports !ok.
func splitFilterKey(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, "equals", key != ""
	}
	if open == 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	field = key[:open]
	op = key[open+1 : len(key)-1]
	if !filterOps[op] {
		return "", "", false
	}
	return field, op, true
}

// intOr mirrors the leniency of Number(x) || fallback: non-numeric, negative
// or zero input yields the fallback instead of an error.
func intOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
