// Package rowgroup folds the flat rows of a one-to-many LEFT JOIN into parent
// records that carry an ordered list of their children.
package rowgroup

import (
	"fmt"
	"strings"
)

// DefaultChildrenField is the output field children are stored under when
// Spec.As is empty.
const DefaultChildrenField = "children"

// Row is a single result row keyed by column name.
type Row = map[string]any

// Record is a grouped parent. Children live under Spec.As.
type Record map[string]any

// Spec declares which columns identify and describe the parent and the child.
type Spec struct {
	// ParentKey identifies a parent. Rows missing any of these are skipped.
	ParentKey []string
	// ParentFields are copied from the first row seen for each parent.
	ParentFields []string
	// ChildKey identifies a child. A row contributes a child only when the
	// first ChildKey column is present and non-null.
	ChildKey []string
	// ChildFields are copied into each child record.
	ChildFields []string
	// As names the output field holding the children.
	As string
	// Scalar stores each child as the value of its first child field
	// instead of as a record.
	Scalar bool
}

func (s Spec) childrenField() string {
	if s.As == "" {
		return DefaultChildrenField
	}
	return s.As
}

// Group folds rows into parents in the order each parent first appears.
// Children keep their row order and are never de-duplicated; a parent whose
// rows carry no child still appears with an empty child list.
func Group(rows []Row, spec Spec) []Record {
	out := make([]Record, 0)
	byKey := make(map[string]Record)
	as := spec.childrenField()

	for _, row := range rows {
		key, ok := parentKey(row, spec.ParentKey)
		if !ok {
			continue
		}

		parent, seen := byKey[key]
		if !seen {
			parent = newParent(row, spec)
			byKey[key] = parent
			out = append(out, parent)
		}

		if !hasChild(row, spec.ChildKey) {
			continue
		}

		if spec.Scalar {
			parent[as] = append(parent[as].([]any), scalarChild(row, spec))
		} else {
			parent[as] = append(parent[as].([]Record), childRecord(row, spec))
		}
	}

	return out
}

func newParent(row Row, spec Spec) Record {
	parent := make(Record, len(spec.ParentKey)+len(spec.ParentFields)+1)
	for _, field := range spec.ParentKey {
		parent[field] = row[field]
	}
	for _, field := range spec.ParentFields {
		parent[field] = row[field]
	}

	if spec.Scalar {
		parent[spec.childrenField()] = []any{}
	} else {
		parent[spec.childrenField()] = []Record{}
	}
	return parent
}

func childRecord(row Row, spec Spec) Record {
	child := make(Record, len(spec.ChildKey)+len(spec.ChildFields))
	for _, field := range spec.ChildKey {
		child[field] = row[field]
	}
	for _, field := range spec.ChildFields {
		child[field] = row[field]
	}
	return child
}

func scalarChild(row Row, spec Spec) any {
	if len(spec.ChildFields) > 0 {
		return row[spec.ChildFields[0]]
	}
	return row[spec.ChildKey[0]]
}

func hasChild(row Row, childKey []string) bool {
	if len(childKey) == 0 {
		return false
	}
	value, ok := row[childKey[0]]
	return ok && value != nil
}

// parentKey encodes the parent key columns of row. Values are tagged with
// their type so 1 and "1" stay distinct, and quoted so no value can run into
// the next one.
func parentKey(row Row, fields []string) (string, bool) {
	if len(fields) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		value, ok := row[field]
		if !ok || value == nil {
			return "", false
		}
		parts = append(parts, fmt.Sprintf("%T:%q", value, fmt.Sprint(value)))
	}
	return strings.Join(parts, ","), true
}
