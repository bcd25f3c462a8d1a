// Package engine implements the JQL executor (spec §4.4): dispatch on
// action, schema coercion, primary/unique-key and link integrity,
// row-id/link-id maintenance, and filtering, producing either a mutation
// or a result set. It mirrors the teacher's data/queries.go (one function
// per action, sharing a validate-then-build-then-execute shape), adapted
// from building SQL text to mutating an in-memory schema.TableDoc.
package engine

import "github.com/na2axl/jsondb-go/value"

// Cell is one output column's value. Linked is non-nil only when the
// column came from an on()/link() projection, whose result is a nested
// object rather than a scalar Value (value.Value has no object kind).
type Cell struct {
	Value  value.Value
	Linked map[string]value.Value
}

// Row is one output row, keyed in output-column order.
type Row struct {
	Keys []string
	Vals map[string]Cell
}

// Get returns the cell stored for key.
func (r Row) Get(key string) Cell { return r.Vals[key] }

func newRow() Row { return Row{Vals: map[string]Cell{}} }

func (r *Row) set(key string, v value.Value) {
	if _, ok := r.Vals[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Vals[key] = Cell{Value: v}
}

func (r *Row) setLinked(key string, linked map[string]value.Value) {
	if _, ok := r.Vals[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Vals[key] = Cell{Linked: linked}
}

// Result is the outcome of one Execute call: either a row set (select,
// count) or a mutation acknowledgement (insert, replace, update, delete,
// truncate), matching spec §6.4's "QueryResult | bool" contract.
type Result struct {
	Rows         []Row
	Mutated      bool
	LastInsertID int64
}
