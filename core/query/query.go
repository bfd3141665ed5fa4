// Package query defines the condition-set query model used by collection
// reads. A Query carries a mutable mapping from field path to filter value;
// lifecycle hooks may rewrite that mapping before the query executes.
package query

// Query describes a document lookup.
type Query struct {
	// Conditions maps a field path to its filter value. A plain value is an
	// equality condition. A map[string]any value is an operator document
	// (range, regex and similar) whose interpretation is left to the store.
	Conditions map[string]any
	// Fields lists paths to include in results even when their definition
	// excludes them from the default projection.
	Fields []string
	// Limit caps the number of returned documents. Zero means no limit.
	Limit int
}

// New creates an empty query.
func New() *Query {
	return &Query{
		Conditions: make(map[string]any),
	}
}

// Where adds an equality condition on a field and returns the query for
// chaining.
func (q *Query) Where(field string, value any) *Query {
	if q.Conditions == nil {
		q.Conditions = make(map[string]any)
	}
	q.Conditions[field] = value
	return q
}

// Select adds fields to the explicit projection include-list.
func (q *Query) Select(fields ...string) *Query {
	q.Fields = append(q.Fields, fields...)
	return q
}

// WithLimit caps the number of returned documents.
func (q *Query) WithLimit(n int) *Query {
	q.Limit = n
	return q
}
