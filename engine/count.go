package engine

import (
	"strings"

	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/value"
)

// execCount implements spec §4.4.7.
func execCount(table string, doc *schema.TableDoc, q *jql.ParsedQuery) (*Result, error) {
	cols, err := countTargetColumns(doc, q)
	if err != nil {
		return nil, err
	}

	rows, err := filteredRows(doc, q, table)
	if err != nil {
		return nil, err
	}

	label := countLabel(q)
	if groupExt := q.Ext("group"); groupExt != nil {
		return countGrouped(rows, argIdent(groupExt.Args[0]), label), nil
	}

	var max int
	for _, col := range cols {
		n := 0
		for _, r := range rows {
			if !r.Get(col).IsNull() {
				n++
			}
		}
		if n > max {
			max = n
		}
	}
	if len(cols) == 0 {
		max = len(rows)
	}

	row := newRow()
	row.set(label, value.Int(int64(max)))
	return &Result{Rows: []Row{row}}, nil
}

func countTargetColumns(doc *schema.TableDoc, q *jql.ParsedQuery) ([]string, error) {
	if len(q.Params) == 1 && argIdent(q.Params[0]) == "*" {
		cols := make([]string, 0, len(doc.Columns))
		for _, c := range doc.Columns {
			cols = append(cols, c.Name)
		}
		return cols, nil
	}
	cols := make([]string, 0, len(q.Params))
	for _, p := range q.Params {
		cols = append(cols, argIdent(p))
	}
	return cols, nil
}

func countLabel(q *jql.ParsedQuery) string {
	if asExt := q.Ext("as"); asExt != nil && len(asExt.Args) > 0 {
		if name := argIdent(asExt.Args[0]); name != "" {
			return name
		}
	}
	parts := make([]string, len(q.Params))
	for i, p := range q.Params {
		parts[i] = argIdent(p)
	}
	return "count(" + strings.Join(parts, ",") + ")"
}

func countGrouped(rows []*schema.Row, groupCol, label string) *Result {
	var order []string
	counts := map[string]int{}
	values := map[string]value.Value{}
	for _, r := range rows {
		v := r.Get(groupCol)
		key := v.Text()
		if _, ok := counts[key]; !ok {
			order = append(order, key)
			values[key] = v
		}
		counts[key]++
	}

	out := make([]Row, 0, len(order))
	for _, key := range order {
		row := newRow()
		row.set(label, value.Int(int64(counts[key])))
		row.set(groupCol, values[key])
		out = append(out, row)
	}
	return &Result{Rows: out}
}
