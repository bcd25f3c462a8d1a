package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/na2axl/jsondb-go/value"
)

// TableDoc is the full contents of a table's JSON document: the column
// order (prototype), the schema and bookkeeping fields (properties), and
// the rows themselves (data), keyed by "#<linkId>".
type TableDoc struct {
	Prototype      []string
	Columns        []Column // in prototype order, excluding #rowid
	LastInsertID   int64
	LastValidRowID int64
	LastLinkID     int64
	PrimaryKeys    []string
	UniqueKeys     []string
	Data           map[string]*Row // key: "#<linkId>"
}

// NewTableDoc builds an empty table document from a column list. Prototype
// is synthesized as "#rowid" followed by each column's name in order.
func NewTableDoc(cols []Column) *TableDoc {
	proto := make([]string, 0, len(cols)+1)
	proto = append(proto, RowIDColumn)
	var pk, uk []string
	for i := range cols {
		cols[i].Normalize()
		proto = append(proto, cols[i].Name)
		if cols[i].PrimaryKey {
			pk = append(pk, cols[i].Name)
		}
		if cols[i].UniqueKey {
			uk = append(uk, cols[i].Name)
		}
	}
	return &TableDoc{
		Prototype:   proto,
		Columns:     cols,
		PrimaryKeys: pk,
		UniqueKeys:  uk,
		Data:        map[string]*Row{},
	}
}

// Clone returns a deep copy of the document, safe to mutate without
// disturbing a cached original: every row is copied via Row.Clone rather
// than shared by pointer.
func (t *TableDoc) Clone() *TableDoc {
	c := &TableDoc{
		Prototype:      append([]string(nil), t.Prototype...),
		Columns:        append([]Column(nil), t.Columns...),
		LastInsertID:   t.LastInsertID,
		LastValidRowID: t.LastValidRowID,
		LastLinkID:     t.LastLinkID,
		PrimaryKeys:    append([]string(nil), t.PrimaryKeys...),
		UniqueKeys:     append([]string(nil), t.UniqueKeys...),
		Data:           make(map[string]*Row, len(t.Data)),
	}
	for k, r := range t.Data {
		c.Data[k] = r.Clone()
	}
	return c
}

// Column looks up a column's schema by name.
func (t *TableDoc) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// AutoIncrementColumn returns the table's single auto_increment column, if any.
func (t *TableDoc) AutoIncrementColumn() (Column, bool) {
	for _, c := range t.Columns {
		if c.AutoIncrement {
			return c, true
		}
	}
	return Column{}, false
}

// SortedLinkIDs returns the "#<linkId>" keys of Data ordered ascending by
// #rowid, the order the table document invariant requires on disk.
func (t *TableDoc) SortedLinkIDs() []string {
	keys := make([]string, 0, len(t.Data))
	for k := range t.Data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return t.Data[keys[i]].RowID() < t.Data[keys[j]].RowID()
	})
	return keys
}

// Rows returns the table's rows ordered ascending by #rowid.
func (t *TableDoc) Rows() []*Row {
	keys := t.SortedLinkIDs()
	rows := make([]*Row, len(keys))
	for i, k := range keys {
		rows[i] = t.Data[k]
	}
	return rows
}

// RecomputeLastValidRowID sets LastValidRowID to the max #rowid present, or
// 0 if Data is empty, per the row-id monotonicity invariant.
func (t *TableDoc) RecomputeLastValidRowID() {
	var max int64
	for _, r := range t.Data {
		if id := r.RowID(); id > max {
			max = id
		}
	}
	t.LastValidRowID = max
}

// RecomputeLastInsertID sets LastInsertID to the max value observed in the
// auto-increment column, or leaves it at 0 if there is none or no rows.
func (t *TableDoc) RecomputeLastInsertID() {
	ai, ok := t.AutoIncrementColumn()
	if !ok {
		return
	}
	var max int64
	for _, r := range t.Data {
		if v := r.Get(ai.Name); v.Kind == value.KindInt && v.Int > max {
			max = v.Int
		}
	}
	t.LastInsertID = max
}

// --- JSON wire format -------------------------------------------------

type wireColumn struct {
	Type          string       `json:"type"`
	Default       *value.Value `json:"default,omitempty"`
	MaxLength     *int         `json:"max_length,omitempty"`
	NotNull       bool         `json:"not_null,omitempty"`
	AutoIncrement bool         `json:"auto_increment,omitempty"`
	PrimaryKey    bool         `json:"primary_key,omitempty"`
	UniqueKey     bool         `json:"unique_key,omitempty"`
}

func columnTypeString(c Column) string {
	if c.Type == TypeLink {
		return fmt.Sprintf("link(%s.%s)", c.LinkTable, c.LinkColumn)
	}
	return c.Type.String()
}

// MarshalJSON writes {prototype, properties, data} in that order, matching
// the documented table document shape byte-for-byte in key order.
func (t *TableDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString(`"prototype":`)
	protoJSON, err := json.Marshal(t.Prototype)
	if err != nil {
		return nil, err
	}
	buf.Write(protoJSON)

	buf.WriteString(`,"properties":{`)
	buf.WriteString(fmt.Sprintf(`"last_insert_id":%d,"last_valid_row_id":%d,"last_link_id":%d,`,
		t.LastInsertID, t.LastValidRowID, t.LastLinkID))

	pkJSON, _ := json.Marshal(t.PrimaryKeys)
	ukJSON, _ := json.Marshal(t.UniqueKeys)
	buf.WriteString(`"primary_keys":`)
	buf.Write(pkJSON)
	buf.WriteString(`,"unique_keys":`)
	buf.Write(ukJSON)

	for _, c := range t.Columns {
		wc := wireColumn{
			Type:          columnTypeString(c),
			Default:       c.Default,
			NotNull:       c.NotNull,
			AutoIncrement: c.AutoIncrement,
			PrimaryKey:    c.PrimaryKey,
			UniqueKey:     c.UniqueKey,
		}
		if c.HasMaxLength {
			ml := c.MaxLength
			wc.MaxLength = &ml
		}
		colJSON, err := json.Marshal(wc)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		nameJSON, _ := json.Marshal(c.Name)
		buf.Write(nameJSON)
		buf.WriteByte(':')
		buf.Write(colJSON)
	}
	buf.WriteByte('}')

	buf.WriteString(`,"data":{`)
	keys := t.SortedLinkIDs()
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		buf.Write(keyJSON)
		buf.WriteByte(':')
		rowJSON, err := t.Data[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(rowJSON)
	}
	buf.WriteByte('}')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type wireTableDoc struct {
	Prototype  []string        `json:"prototype"`
	Properties OrderedMap      `json:"properties"`
	Data       map[string]*Row `json:"data"`
}

// UnmarshalJSON reconstructs a TableDoc from its on-disk JSON form. The
// properties block decodes through OrderedMap since, unlike a row or the
// top-level document, its key set is arbitrary (control fields plus one
// entry per column). The on-disk order of that block is not kept:
// Columns is rebuilt in Prototype order, and MarshalJSON writes the
// properties in its own fixed order.
func (t *TableDoc) UnmarshalJSON(data []byte) error {
	var wire wireTableDoc
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	t.Prototype = wire.Prototype
	t.Data = wire.Data
	if t.Data == nil {
		t.Data = map[string]*Row{}
	}

	wire.Properties.GetInto("last_insert_id", &t.LastInsertID)
	wire.Properties.GetInto("last_valid_row_id", &t.LastValidRowID)
	wire.Properties.GetInto("last_link_id", &t.LastLinkID)
	wire.Properties.GetInto("primary_keys", &t.PrimaryKeys)
	wire.Properties.GetInto("unique_keys", &t.UniqueKeys)

	t.Columns = t.Columns[:0]
	for _, name := range t.Prototype {
		if name == RowIDColumn {
			continue
		}
		raw, ok := wire.Properties.Get(name)
		if !ok {
			continue
		}
		var wc wireColumn
		if err := json.Unmarshal(raw, &wc); err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		col := Column{
			Name:          name,
			Default:       wc.Default,
			NotNull:       wc.NotNull,
			AutoIncrement: wc.AutoIncrement,
			PrimaryKey:    wc.PrimaryKey,
			UniqueKey:     wc.UniqueKey,
		}
		if wc.MaxLength != nil {
			col.HasMaxLength = true
			col.MaxLength = *wc.MaxLength
		}
		typ, linkTable, linkCol, err := ParseColType(wc.Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		col.Type = typ
		col.LinkTable = linkTable
		col.LinkColumn = linkCol
		t.Columns = append(t.Columns, col)
	}

	return nil
}
