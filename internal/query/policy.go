package query

import (
	"fmt"
	"strings"
)

// Bounds is an inclusive page-size range.
type Bounds struct {
	Min int
	Max int
}

// defaultPageSizeBounds applies when an endpoint does not set bounds.
var defaultPageSizeBounds = Bounds{Min: 1, Max: 100}

// FilterRule declares which operators an endpoint permits on one field.
type FilterRule struct {
	Field    string
	Equals   bool
	Contains bool
	Range    []RangeOp

	// Validate, when set, is an extra per-field check run after the operator
	// allowlist. It receives the raw values and rejects the filter on false.
	Validate func(values []string) bool
}

// FieldPolicy is an endpoint's allowlist. Anything a QueryIntent references
// that is not explicitly permitted here is stripped or reported as a
// violation; there is no way to opt a field in implicitly.
type FieldPolicy struct {
	SortColumns    []string
	SortDirections []string // empty means both "asc" and "desc"
	SearchColumns  []string
	FilterRules    []FilterRule
	PageSizeBounds Bounds // zero value means defaultPageSizeBounds
}

func (p FieldPolicy) rule(field string) *FilterRule {
	for i := range p.FilterRules {
		if p.FilterRules[i].Field == field {
			return &p.FilterRules[i]
		}
	}
	return nil
}

func (r *FilterRule) allowsRange(op RangeOp) bool {
	for _, allowed := range r.Range {
		if allowed == op {
			return true
		}
	}
	return false
}

// ValidationError aggregates every policy violation found in one pass, so a
// client can fix all of them in a single round trip. It maps to HTTP 400.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + strings.Join(e.Violations, "; ")
}

// Validate checks an untrusted intent against an endpoint's policy and returns
// a sanitized copy. The input intent is never mutated. When any violation is
// found, the sanitized copy is returned alongside a *ValidationError listing
// every violation; callers must treat the error as a client error and must not
// execute the intent.
//
// Page and pageSize are clamped rather than rejected. Filters.Raw is always
// stripped regardless of policy. A nil or empty FilterRules set is
// default-deny: all filters are silently removed.
func Validate(intent QueryIntent, policy FieldPolicy) (QueryIntent, error) {
	out := intent.Clone()
	var violations []string

	// Sort.
	if out.Sort.SortBy != "" && !member(policy.SortColumns, out.Sort.SortBy) {
		violations = append(violations, fmt.Sprintf("sorting not allowed on field %q", out.Sort.SortBy))
		out.Sort.SortBy = ""
	}
	out.Sort.SortDir = strings.ToLower(out.Sort.SortDir)
	if out.Sort.SortDir != "" {
		dirs := policy.SortDirections
		if len(dirs) == 0 {
			dirs = []string{"asc", "desc"}
		}
		if !member(dirs, out.Sort.SortDir) {
			violations = append(violations, fmt.Sprintf("sort direction %q not allowed", out.Sort.SortDir))
			out.Sort.SortDir = ""
		}
	}

	// Search. An empty requested column set means "all permitted columns".
	// A non-empty set is strict: every column outside the policy is its own
	// violation, while permitted columns are retained.
	if out.Search.Term != "" {
		if len(out.Search.Columns) == 0 {
			out.Search.Columns = append([]string(nil), policy.SearchColumns...)
		} else {
			kept := out.Search.Columns[:0]
			for _, col := range out.Search.Columns {
				if member(policy.SearchColumns, col) {
					kept = append(kept, col)
					continue
				}
				violations = append(violations, fmt.Sprintf("search not allowed on column %q", col))
			}
			out.Search.Columns = kept
		}
	} else {
		out.Search.Columns = nil
	}

	// Filters.
	if len(policy.FilterRules) == 0 {
		out.Filters = Filters{}
	} else {
		violations = append(violations, validateFilters(&out.Filters, policy)...)
	}
	out.Filters.Raw = nil

	// Pagination: clamp, never reject.
	if out.Pagination.Mode != ModeCursor {
		out.Pagination.Mode = ModeOffset
	}
	if out.Pagination.Direction != DirectionPrev {
		out.Pagination.Direction = DirectionNext
	}
	if out.Pagination.Page < 1 {
		out.Pagination.Page = 1
	}
	bounds := policy.PageSizeBounds
	if bounds == (Bounds{}) {
		bounds = defaultPageSizeBounds
	}
	if out.Pagination.PageSize < bounds.Min {
		out.Pagination.PageSize = bounds.Min
	}
	if out.Pagination.PageSize > bounds.Max {
		out.Pagination.PageSize = bounds.Max
	}

	// The cursor field names a column in the compiled predicate, so it is held
	// to the sort allowlist ("id" is always acceptable as the fallback key).
	if cf := out.Pagination.CursorField; cf != "" && cf != "id" && !member(policy.SortColumns, cf) {
		violations = append(violations, fmt.Sprintf("cursor field %q not allowed", cf))
		out.Pagination.CursorField = ""
	}

	if len(violations) > 0 {
		return out, &ValidationError{Violations: violations}
	}
	return out, nil
}

func validateFilters(filters *Filters, policy FieldPolicy) []string {
	var violations []string

	keptEq := filters.Equals[:0]
	for _, f := range filters.Equals {
		rule := policy.rule(f.Field)
		if rule == nil || !rule.Equals {
			violations = append(violations, disallowed(f.Field, "equals"))
			continue
		}
		if rule.Validate != nil && !rule.Validate(f.Values) {
			violations = append(violations, customFailed(f.Field, "equals"))
			continue
		}
		keptEq = append(keptEq, f)
	}
	filters.Equals = keptEq

	keptCo := filters.Contains[:0]
	for _, f := range filters.Contains {
		rule := policy.rule(f.Field)
		if rule == nil || !rule.Contains {
			violations = append(violations, disallowed(f.Field, "contains"))
			continue
		}
		if rule.Validate != nil && !rule.Validate(f.Values) {
			violations = append(violations, customFailed(f.Field, "contains"))
			continue
		}
		keptCo = append(keptCo, f)
	}
	filters.Contains = keptCo

	keptRa := filters.Range[:0]
	for _, f := range filters.Range {
		rule := policy.rule(f.Field)
		if rule == nil || !rule.allowsRange(f.Op) {
			violations = append(violations, disallowed(f.Field, string(f.Op)))
			continue
		}
		if f.Op == RangeBetween && len(f.Values) != 2 {
			violations = append(violations, fmt.Sprintf("between filter on field %q requires exactly two values", f.Field))
			continue
		}
		if rule.Validate != nil && !rule.Validate(f.Values) {
			violations = append(violations, customFailed(f.Field, string(f.Op)))
			continue
		}
		keptRa = append(keptRa, f)
	}
	filters.Range = keptRa

	return violations
}

func disallowed(field, op string) string {
	return fmt.Sprintf("filtering not allowed on field %q with operator %q", field, op)
}

func customFailed(field, op string) string {
	return fmt.Sprintf("custom validation failed for %s(%s)", op, field)
}

func member(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
