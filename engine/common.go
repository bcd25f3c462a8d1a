package engine

import (
	"sort"

	"github.com/na2axl/jsondb-go/config"
	"github.com/na2axl/jsondb-go/filter"
	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/tools"
	"github.com/na2axl/jsondb-go/value"
)

// targetColumns resolves the column list a write targets: in(...) if
// present, else every non-#rowid column in schema order (spec §4.4.2).
func targetColumns(doc *schema.TableDoc, q *jql.ParsedQuery) ([]string, error) {
	if in := q.Ext("in"); in != nil {
		cols := make([]string, 0, len(in.Args))
		for _, a := range in.Args {
			name := argIdent(a)
			if _, ok := doc.Column(name); !ok {
				return nil, tools.UnknownFieldErr(q.Table, name)
			}
			cols = append(cols, name)
		}
		return cols, nil
	}
	cols := make([]string, 0, len(doc.Columns))
	for _, c := range doc.Columns {
		cols = append(cols, c.Name)
	}
	return cols, nil
}

// argIdent extracts the textual name from an Arg regardless of how the
// parser classified it (insert/replace/update column lists parse as
// identifiers, but a bare word that happens to look numeric or boolean
// would otherwise misclassify as a literal).
func argIdent(a jql.Arg) string {
	switch a.Kind {
	case jql.ArgIdent:
		return a.Ident
	case jql.ArgValue:
		return a.Value.Text()
	}
	return ""
}

// valueTuples builds one tuple of value.Value per row to write: the action
// params are the first tuple, each and(...) call contributes one more
// (spec §4.2 "and(v,...): Additional row(s) for multi-insert/multi-replace").
func valueTuples(q *jql.ParsedQuery) [][]value.Value {
	tuples := [][]value.Value{argValues(q.Params)}
	for _, call := range q.ExtCalls("and") {
		tuples = append(tuples, argValues(call.Args))
	}
	return tuples
}

func argValues(args []jql.Arg) []value.Value {
	out := make([]value.Value, len(args))
	for i, a := range args {
		switch a.Kind {
		case jql.ArgValue:
			out[i] = a.Value
		case jql.ArgIdent:
			out[i] = value.Str(a.Ident)
		case jql.ArgFunc:
			out[i] = value.Null
		}
	}
	return out
}

// coerceTuple coerces one value tuple against cols, in order.
func coerceTuple(cols []string, vals []value.Value, doc *schema.TableDoc, resolver schema.LinkResolver) (map[string]value.Value, error) {
	if len(cols) != len(vals) {
		return nil, tools.ArityErr(len(cols), len(vals))
	}
	out := make(map[string]value.Value, len(cols))
	for i, name := range cols {
		col, ok := doc.Column(name)
		if !ok {
			return nil, tools.UnknownFieldErr("", name)
		}
		// An explicit null for the auto-increment column means "assign the
		// next value"; it must not trip the not_null check auto_increment
		// otherwise implies (spec §4.1 note on auto_increment, §4.4.2).
		if col.AutoIncrement && vals[i].IsNull() {
			out[name] = value.Null
			continue
		}
		v, err := schema.Coerce(vals[i], col, resolver)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// checkIntegrity enforces the primary-key and unique-key invariants
// (spec §4.4.2) across doc's rows, optionally excluding one row from the
// comparison. insert, replace and update all pass "" and check the whole
// document after applying their changes, so each row is counted once and
// a row is never flagged against itself.
func checkIntegrity(table string, doc *schema.TableDoc, excludeLinkID string) error {
	if len(doc.PrimaryKeys) > 0 {
		seen := map[string]bool{}
		for linkID, row := range doc.Data {
			if linkID == excludeLinkID {
				continue
			}
			key := pkTuple(row, doc.PrimaryKeys)
			if key == "" {
				continue
			}
			if seen[key] {
				return tools.DupPrimaryErr(table)
			}
			seen[key] = true
		}
	}
	for _, uk := range doc.UniqueKeys {
		seen := map[string]bool{}
		for linkID, row := range doc.Data {
			if linkID == excludeLinkID {
				continue
			}
			v := row.Get(uk)
			if v.IsNull() {
				continue
			}
			if seen[v.Text()] {
				return tools.DupUniqueErr(table, uk)
			}
			seen[v.Text()] = true
		}
	}
	return nil
}

func pkTuple(row *schema.Row, pk []string) string {
	nonNull := false
	parts := make([]string, len(pk))
	for i, col := range pk {
		v := row.Get(col)
		if !v.IsNull() {
			nonNull = true
		}
		parts[i] = v.Text()
	}
	if !nonNull {
		return ""
	}
	joined := ""
	for _, p := range parts {
		joined += p + "\x00"
	}
	return joined
}

// sortedRows returns doc's rows ordered ascending by #rowid.
func sortedRows(doc *schema.TableDoc) []*schema.Row { return doc.Rows() }

// filteredRows returns doc's rows (in #rowid order) that satisfy q's where
// groups, or every row if q has none.
func filteredRows(doc *schema.TableDoc, q *jql.ParsedQuery, table string) ([]*schema.Row, error) {
	var out []*schema.Row
	for _, row := range doc.Rows() {
		ok, err := filter.Match(row, q.Where, table, doc)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// applyOrder sorts rows stably per an order(col, asc|desc) extension.
func applyOrder(rows []*schema.Row, q *jql.ParsedQuery) []*schema.Row {
	ext := q.Ext("order")
	if ext == nil {
		return rows
	}
	col := argIdent(ext.Args[0])
	desc := len(ext.Args) > 1 && argIdent(ext.Args[1]) == "desc"

	out := append([]*schema.Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		c := value.Compare(out[i].Get(col), out[j].Get(col))
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// applyLimit slices rows per a limit(off, n) extension. Without one, it
// keeps the first config.Cfg.DefaultLimit rows when that is positive.
func applyLimit(rows []*schema.Row, q *jql.ParsedQuery) []*schema.Row {
	ext := q.Ext("limit")
	if ext == nil {
		if n := config.Cfg.DefaultLimit; n > 0 && len(rows) > n {
			return rows[:n]
		}
		return rows
	}
	offset, count := 0, len(rows)
	if len(ext.Args) == 1 {
		count = int(argInt(ext.Args[0]))
	} else {
		offset = int(argInt(ext.Args[0]))
		count = int(argInt(ext.Args[1]))
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	end := offset + count
	if end > len(rows) || count < 0 {
		end = len(rows)
	}
	return rows[offset:end]
}

func argInt(a jql.Arg) int64 {
	if a.Kind == jql.ArgValue {
		i, _ := a.Value.AsFloat()
		return int64(i)
	}
	return 0
}

// aliasNames resolves an as(...) extension into an output name per
// position; "null" literal aliases leave the original name unchanged
// (spec §4.2 as() row).
func aliasNames(original []string, q *jql.ParsedQuery) []string {
	ext := q.Ext("as")
	if ext == nil {
		return original
	}
	out := append([]string(nil), original...)
	for i := range out {
		if i >= len(ext.Args) {
			break
		}
		a := ext.Args[i]
		if a.Kind == jql.ArgValue && a.Value.IsNull() {
			continue
		}
		out[i] = argIdent(a)
	}
	return out
}
