package query

import "strings"

// Filter operators.
const (
	OpEq        = "$eq"
	OpContainsI = "$containsi"
)

// RelationImage is the only relation records carry.
const RelationImage = "image"

// Query is a decoded request. Every part is optional; a nil or empty part
// leaves the matching stage as the identity.
type Query struct {
	Filters    FilterSpec
	Fields     []string
	Populate   []Populate
	Sort       []string
	Pagination *Pagination
}

// FilterSpec lists field filters in the order the client sent them.
type FilterSpec []FieldFilter

// FieldFilter holds the operator conditions for one field, in client order.
type FieldFilter struct {
	Field      string
	Conditions []Condition
}

// Condition is a single operator applied to a field.
type Condition struct {
	Op    string
	Value any
}

// Populate requests the expansion of one relation.
type Populate struct {
	Relation string
	Fields   []string
}

// Pagination selects one fixed-size page. Page 0 means the first page.
// WithCount is accepted for client compatibility and has no effect.
type Pagination struct {
	PageSize  int
	Page      int
	WithCount bool
}

// SortKey is a parsed sort entry.
type SortKey struct {
	Field string
	Desc  bool
}

// ParseSortKey splits "field" or "field:direction". Any direction other than
// "asc" sorts descending.
func ParseSortKey(s string) SortKey {
	field, dir, ok := strings.Cut(s, ":")
	if !ok {
		return SortKey{Field: field}
	}
	return SortKey{Field: field, Desc: dir != "asc"}
}

// Where appends a condition for field, reusing the field's entry if present.
func (f FilterSpec) Where(field, op string, value any) FilterSpec {
	for i := range f {
		if f[i].Field == field {
			out := append(FilterSpec(nil), f...)
			out[i].Conditions = append(append([]Condition(nil), f[i].Conditions...), Condition{Op: op, Value: value})
			return out
		}
	}
	return append(f, FieldFilter{Field: field, Conditions: []Condition{{Op: op, Value: value}}})
}
