package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/na2axl/jsondb-go/value"
)

// RowIDColumn is the synthetic column every table carries as prototype[0]
// and as the first key of every row.
const RowIDColumn = "#rowid"

// Row is one data row. Column order follows the table's prototype, which is
// fixed at row-creation time and reproduced verbatim on marshal so that the
// "column order inside a row matches prototype order" guarantee holds even
// if a map were used internally.
type Row struct {
	order []string
	vals  map[string]value.Value
}

// NewRow creates a row whose key order is prototype (prototype[0] must be
// "#rowid"). All values start Null; callers set the ones they need.
func NewRow(prototype []string) *Row {
	r := &Row{
		order: append([]string(nil), prototype...),
		vals:  make(map[string]value.Value, len(prototype)),
	}
	for _, c := range prototype {
		r.vals[c] = value.Null
	}
	return r
}

// Columns returns the row's columns in prototype order.
func (r *Row) Columns() []string { return append([]string(nil), r.order...) }

// Get returns the value stored for col (Null if col is absent).
func (r *Row) Get(col string) value.Value { return r.vals[col] }

// Has reports whether col is a column of this row.
func (r *Row) Has(col string) bool {
	_, ok := r.vals[col]
	return ok
}

// Set stores v under col; col must already be part of the row's prototype.
func (r *Row) Set(col string, v value.Value) {
	r.vals[col] = v
}

// RowID returns the row's #rowid.
func (r *Row) RowID() int64 { return r.vals[RowIDColumn].Int }

// SetRowID sets #rowid.
func (r *Row) SetRowID(id int64) { r.vals[RowIDColumn] = value.Int(id) }

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	c := &Row{order: append([]string(nil), r.order...), vals: make(map[string]value.Value, len(r.vals))}
	for k, v := range r.vals {
		c.vals[k] = v
	}
	return c
}

// MarshalJSON writes the row's columns in prototype order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := r.vals[col].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON records both the values and the on-disk key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object for row")
	}

	r.order = nil
	r.vals = map[string]value.Value{}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key in row")
		}

		var v value.Value
		if err := dec.Decode(&v); err != nil {
			return err
		}

		r.order = append(r.order, key)
		r.vals[key] = v
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
