// Package segments provides the user segmentation subsystem for the admin
// panel: the serializable filter criteria model, the in-memory predicate
// evaluator, the filter panel state, and Postgres persistence for saved
// segments.
package segments

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ==========================================
// OPERATORS
// ==========================================

// Operator represents a comparison operator.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
	OpIsNull      Operator = "is_null"
	OpIsNotNull   Operator = "is_not_null"
)

// OperatorMetadata describes an operator for the filter panel UI.
type OperatorMetadata struct {
	Operator      Operator `json:"operator"`
	Label         string   `json:"label"`
	Description   string   `json:"description"`
	RequiresValue bool     `json:"requires_value"`
	RequiresList  bool     `json:"requires_list"`
}

// GetOperatorMetadata returns metadata for all operators.
func GetOperatorMetadata() []OperatorMetadata {
	return []OperatorMetadata{
		{OpEquals, "Equals", "Exact match (case-sensitive)", true, false},
		{OpNotEquals, "Does not equal", "Not an exact match", true, false},
		{OpContains, "Contains", "Contains the text (case-insensitive)", true, false},
		{OpNotContains, "Does not contain", "Does not contain the text", true, false},
		{OpGreaterThan, "Greater than", "Numeric value is greater than", true, false},
		{OpLessThan, "Less than", "Numeric value is less than", true, false},
		{OpIn, "Is any of", "Value is one of the listed values", true, true},
		{OpNotIn, "Is none of", "Value is none of the listed values", true, true},
		{OpIsNull, "Is empty", "Attribute is missing", false, false},
		{OpIsNotNull, "Is not empty", "Attribute has a value", false, false},
	}
}

func getOperatorMeta(op Operator) *OperatorMetadata {
	for _, meta := range GetOperatorMetadata() {
		if meta.Operator == op {
			return &meta
		}
	}
	return nil
}

// ==========================================
// CONJUNCTIONS
// ==========================================

// Conjunction is the boolean combinator applied across a condition list.
type Conjunction string

const (
	ConjunctionAnd Conjunction = "and"
	ConjunctionOr  Conjunction = "or"
)

// ==========================================
// FILTER CRITERIA
// ==========================================

// FilterCriterion is a single persisted predicate condition.
type FilterCriterion struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    Value    `json:"value"`
}

// FilterCriteria is the serializable filter shape stored in saved segments:
// a flat, ordered condition list combined by a single conjunction. There is
// no per-pair nesting or grouping.
type FilterCriteria struct {
	Conditions  []FilterCriterion `json:"conditions"`
	Conjunction Conjunction       `json:"conjunction"`
}

// Validate checks operator/value-shape agreement for every condition. It
// rejects shapes the evaluator could never match, so that bad criteria are
// caught when a segment is built rather than when it is activated.
func (fc FilterCriteria) Validate() error {
	if fc.Conjunction != ConjunctionAnd && fc.Conjunction != ConjunctionOr {
		return &ValidationError{Field: "conjunction", Reason: "must be \"and\" or \"or\""}
	}
	for _, c := range fc.Conditions {
		if c.Field == "" {
			return &ValidationError{Field: "field", Reason: "must not be empty"}
		}
		meta := getOperatorMeta(c.Operator)
		if meta == nil {
			return &ValidationError{Field: "operator", Reason: "unknown operator " + string(c.Operator)}
		}
		if meta.RequiresValue && c.Value.IsAbsent() {
			return &ValidationError{Field: c.Field, Reason: "operator " + string(c.Operator) + " requires a value"}
		}
		if meta.RequiresList && !c.Value.IsList() {
			return &ValidationError{Field: c.Field, Reason: "operator " + string(c.Operator) + " requires a list value"}
		}
	}
	return nil
}

// ==========================================
// AD-HOC FILTERS
// ==========================================

// UserFilters is the transient, non-persisted filter input from the admin
// user table. Absent/empty fields impose no constraint; across fields the
// combination is always logical AND.
type UserFilters struct {
	Roles        []string `json:"roles,omitempty"`
	Status       []string `json:"status,omitempty"`
	SignupSource []string `json:"signup_source,omitempty"`
	Location     string   `json:"location,omitempty"`
	Search       string   `json:"search,omitempty"`
}

// IsEmpty reports whether the filters impose no constraint at all.
func (f UserFilters) IsEmpty() bool {
	return len(f.Roles) == 0 && len(f.Status) == 0 && len(f.SignupSource) == 0 &&
		strings.TrimSpace(f.Location) == "" && strings.TrimSpace(f.Search) == ""
}

// ToFilterCriteria converts ad-hoc filters into the persistable criteria
// shape. The function is pure and total: each non-empty field emits exactly
// one condition, in a fixed order (roles, status, signup_source, location,
// search), and the conjunction is always "and".
func ToFilterCriteria(f UserFilters) FilterCriteria {
	fc := FilterCriteria{Conjunction: ConjunctionAnd}
	if len(f.Roles) > 0 {
		fc.Conditions = append(fc.Conditions, FilterCriterion{
			Field: "roles", Operator: OpIn, Value: StringListValue(f.Roles...),
		})
	}
	if len(f.Status) > 0 {
		fc.Conditions = append(fc.Conditions, FilterCriterion{
			Field: "status", Operator: OpIn, Value: StringListValue(f.Status...),
		})
	}
	if len(f.SignupSource) > 0 {
		fc.Conditions = append(fc.Conditions, FilterCriterion{
			Field: "signup_source", Operator: OpIn, Value: StringListValue(f.SignupSource...),
		})
	}
	if f.Location != "" {
		fc.Conditions = append(fc.Conditions, FilterCriterion{
			Field: "location", Operator: OpContains, Value: StringValue(f.Location),
		})
	}
	if f.Search != "" {
		fc.Conditions = append(fc.Conditions, FilterCriterion{
			Field: "search", Operator: OpContains, Value: StringValue(f.Search),
		})
	}
	return fc
}

// ==========================================
// SAVED SEGMENTS
// ==========================================

// SavedSegment is a persisted, named FilterCriteria that can be re-activated
// later. Segments are append-only: there is no update or delete.
type SavedSegment struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	Name           string         `json:"name" db:"name"`
	Description    string         `json:"description,omitempty" db:"description"`
	FilterCriteria FilterCriteria `json:"filter_criteria" db:"filter_criteria"`
	CreatedBy      string         `json:"created_by,omitempty" db:"created_by"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateSegmentInput is the request shape for saving a segment.
type CreateSegmentInput struct {
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	FilterCriteria FilterCriteria `json:"filter_criteria"`
	CreatedBy      string         `json:"created_by,omitempty"`
}

// Validate rejects input before it ever reaches the store.
func (in CreateSegmentInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return in.FilterCriteria.Validate()
}
