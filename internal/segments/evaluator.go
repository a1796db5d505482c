package segments

import (
	"strings"

	"github.com/oakmart/storefront/internal/domain"
)

// The evaluator is pure and synchronous: it never performs I/O, never
// returns an error for well-formed input, and preserves the relative order
// of the input slice (a stable filter, not a sort).
//
// Evaluation is table-driven: field names resolve to tagged Values through
// fieldResolvers, operators map to comparison functions through operatorFns.
// A condition whose field or operator has no table entry is NOT APPLIED —
// it does not constrain the result under either conjunction. This fail-open
// policy is deliberate and pinned by tests; tightening it to an error would
// change filtering behavior for callers relying on permissive matching.

// opFn compares a resolved field value against the criterion value.
type opFn func(field, want Value) bool

var operatorFns = map[Operator]opFn{
	OpEquals:      opEquals,
	OpNotEquals:   opNotEquals,
	OpContains:    opContains,
	OpNotContains: opNotContains,
	OpGreaterThan: opGreaterThan,
	OpLessThan:    opLessThan,
	OpIn:          opIn,
	OpNotIn:       opNotIn,
	OpIsNull:      func(field, _ Value) bool { return field.IsAbsent() },
	OpIsNotNull:   func(field, _ Value) bool { return !field.IsAbsent() },
}

var fieldResolvers = map[string]func(*domain.UserRecord) Value{
	"id":            func(u *domain.UserRecord) Value { return StringValue(u.ID) },
	"email":         optionalString(func(u *domain.UserRecord) string { return u.Email }),
	"first_name":    optionalString(func(u *domain.UserRecord) string { return u.FirstName }),
	"last_name":     optionalString(func(u *domain.UserRecord) string { return u.LastName }),
	"company":       optionalString(func(u *domain.UserRecord) string { return u.Company }),
	"location":      optionalString(func(u *domain.UserRecord) string { return u.Location }),
	"signup_source": optionalString(func(u *domain.UserRecord) string { return u.SignupSource }),
	"status":        optionalString(func(u *domain.UserRecord) string { return string(u.Status) }),
	"roles":         func(u *domain.UserRecord) Value { return StringListValue(u.Roles...) },
	"spend": func(u *domain.UserRecord) Value {
		if u.Spend == nil {
			return AbsentValue()
		}
		return NumberValue(*u.Spend)
	},
}

// searchTargets are the attributes scanned by the free-text "search" field.
var searchTargets = []func(*domain.UserRecord) string{
	func(u *domain.UserRecord) string { return u.Email },
	func(u *domain.UserRecord) string { return u.FirstName },
	func(u *domain.UserRecord) string { return u.LastName },
	func(u *domain.UserRecord) string { return u.Company },
}

func optionalString(get func(*domain.UserRecord) string) func(*domain.UserRecord) Value {
	return func(u *domain.UserRecord) Value {
		s := get(u)
		if s == "" {
			return AbsentValue()
		}
		return StringValue(s)
	}
}

// ==========================================
// PATH B — FILTER CRITERIA EVALUATION
// ==========================================

// ApplyFilterCriteria returns the users matching the criteria, preserving
// input order. An empty condition list matches all users under both
// conjunctions.
func ApplyFilterCriteria(users []domain.UserRecord, fc FilterCriteria) []domain.UserRecord {
	out := make([]domain.UserRecord, 0, len(users))
	for i := range users {
		if MatchesCriteria(&users[i], fc) {
			out = append(out, users[i])
		}
	}
	return out
}

// MatchesCriteria evaluates every applicable condition and combines the
// results by the conjunction. Conditions that are not applied (unknown field
// or operator) are skipped; if nothing applies the user matches.
func MatchesCriteria(u *domain.UserRecord, fc FilterCriteria) bool {
	applied := 0
	anyMatched := false
	for _, c := range fc.Conditions {
		matched, ok := evaluateCriterion(u, c)
		if !ok {
			continue
		}
		applied++
		if fc.Conjunction == ConjunctionOr {
			if matched {
				anyMatched = true
			}
		} else if !matched {
			return false
		}
	}
	if applied == 0 {
		return true
	}
	if fc.Conjunction == ConjunctionOr {
		return anyMatched
	}
	return true
}

// evaluateCriterion resolves the field and applies the operator. The second
// return value is false when the condition is not applied (fail-open).
func evaluateCriterion(u *domain.UserRecord, c FilterCriterion) (matched, applied bool) {
	if c.Field == "search" {
		switch c.Operator {
		case OpContains:
			return searchMatches(u, c.Value), true
		case OpNotContains:
			return !searchMatches(u, c.Value), true
		default:
			return false, false
		}
	}
	resolve, ok := fieldResolvers[c.Field]
	if !ok {
		return false, false
	}
	fn, ok := operatorFns[c.Operator]
	if !ok {
		return false, false
	}
	return fn(resolve(u), c.Value), true
}

func searchMatches(u *domain.UserRecord, want Value) bool {
	needle, ok := want.AsString()
	if !ok {
		return false
	}
	for _, get := range searchTargets {
		if containsFold(get(u), needle) {
			return true
		}
	}
	return false
}

// ==========================================
// OPERATOR IMPLEMENTATIONS
// ==========================================

func opEquals(field, want Value) bool {
	if field.IsAbsent() {
		return false
	}
	return field.Equal(want)
}

func opNotEquals(field, want Value) bool {
	return !opEquals(field, want)
}

// opContains is a case-insensitive substring test. A non-string field value
// is non-matching rather than an error.
func opContains(field, want Value) bool {
	haystack, ok := field.AsString()
	if !ok {
		return false
	}
	needle, ok := want.AsString()
	if !ok {
		return false
	}
	return containsFold(haystack, needle)
}

func opNotContains(field, want Value) bool {
	return !opContains(field, want)
}

// Numeric comparisons are false when the field is absent: an undefined
// quantity is neither greater nor less than anything.
func opGreaterThan(field, want Value) bool {
	fn, ok := field.AsNumber()
	if !ok {
		return false
	}
	wn, ok := want.AsNumber()
	if !ok {
		return false
	}
	return fn > wn
}

func opLessThan(field, want Value) bool {
	fn, ok := field.AsNumber()
	if !ok {
		return false
	}
	wn, ok := want.AsNumber()
	if !ok {
		return false
	}
	return fn < wn
}

// opIn tests membership for scalar fields and non-empty intersection for
// list fields (e.g. roles).
func opIn(field, want Value) bool {
	if ws, ok := want.AsStringList(); ok {
		if fs, ok := field.AsString(); ok {
			for _, w := range ws {
				if fs == w {
					return true
				}
			}
			return false
		}
		if fl, ok := field.AsStringList(); ok {
			for _, f := range fl {
				for _, w := range ws {
					if f == w {
						return true
					}
				}
			}
			return false
		}
		return false
	}
	if wn, ok := want.AsNumberList(); ok {
		if fn, ok := field.AsNumber(); ok {
			for _, w := range wn {
				if fn == w {
					return true
				}
			}
			return false
		}
		if fl, ok := field.AsNumberList(); ok {
			for _, f := range fl {
				for _, w := range wn {
					if f == w {
						return true
					}
				}
			}
			return false
		}
	}
	return false
}

func opNotIn(field, want Value) bool {
	return !opIn(field, want)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ==========================================
// PATH A — AD-HOC FILTER EVALUATION
// ==========================================

// ApplyUserFilters returns the users matching the ad-hoc filters, preserving
// input order. Absent fields are vacuously true; present fields are ANDed.
func ApplyUserFilters(users []domain.UserRecord, f UserFilters) []domain.UserRecord {
	out := make([]domain.UserRecord, 0, len(users))
	for i := range users {
		if MatchesFilters(&users[i], f) {
			out = append(out, users[i])
		}
	}
	return out
}

// MatchesFilters evaluates every present field as an independent predicate
// and ANDs them together.
func MatchesFilters(u *domain.UserRecord, f UserFilters) bool {
	if len(f.Roles) > 0 && !intersects(u.Roles, f.Roles) {
		return false
	}
	if len(f.Status) > 0 && !containsString(f.Status, string(u.Status)) {
		return false
	}
	if len(f.SignupSource) > 0 && !containsString(f.SignupSource, u.SignupSource) {
		return false
	}
	if f.Location != "" && !containsFold(u.Location, f.Location) {
		return false
	}
	if f.Search != "" {
		if !containsFold(u.Email, f.Search) &&
			!containsFold(u.FirstName, f.Search) &&
			!containsFold(u.LastName, f.Search) &&
			!containsFold(u.Company, f.Search) {
			return false
		}
	}
	return true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
