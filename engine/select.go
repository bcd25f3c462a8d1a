package engine

import (
	"github.com/na2axl/jsondb-go/fn"
	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/tools"
	"github.com/na2axl/jsondb-go/value"
)

// linkLoader loads another table in the same database, for on()/link()
// projection (spec §4.4.1 step 4). Implemented by the store package.
type linkLoader func(table string) (*schema.TableDoc, error)

// execSelect implements spec §4.4.1.
func execSelect(table string, doc *schema.TableDoc, q *jql.ParsedQuery, load linkLoader) (*Result, error) {
	rows, err := filteredRows(doc, q, table)
	if err != nil {
		return nil, err
	}
	rows = applyOrder(rows, q)
	rows = applyLimit(rows, q)

	if len(q.Params) == 1 && argIdent(q.Params[0]) == "last_insert_id" {
		row := newRow()
		row.set("last_insert_id", value.Int(doc.LastInsertID))
		return &Result{Rows: []Row{row}}, nil
	}

	fields, outNames, err := selectFields(doc, q)
	if err != nil {
		return nil, err
	}
	outNames = aliasNames(outNames, q)

	links, err := linkSpecs(doc, q)
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		row := newRow()
		for i, field := range fields {
			v, err := projectField(r, field, links, load)
			if err != nil {
				return nil, err
			}
			name := outNames[i]
			if v.linked != nil {
				row.setLinked(name, v.linked)
			} else {
				row.set(name, v.scalar)
			}
		}
		out = append(out, row)
	}
	return &Result{Rows: out}, nil
}

// selectFields resolves the output fields: "*" expands to every
// non-#rowid column (as plain idents); otherwise each param is kept as-is
// (a column ident or an fn(col) call), alongside its default output name.
func selectFields(doc *schema.TableDoc, q *jql.ParsedQuery) ([]jql.Arg, []string, error) {
	if len(q.Params) == 1 && argIdent(q.Params[0]) == "*" {
		fields := make([]jql.Arg, 0, len(doc.Columns))
		names := make([]string, 0, len(doc.Columns))
		for _, c := range doc.Columns {
			fields = append(fields, jql.Ident(c.Name))
			names = append(names, c.Name)
		}
		return fields, names, nil
	}
	names := make([]string, len(q.Params))
	for i, p := range q.Params {
		if p.Kind == jql.ArgFunc {
			names[i] = p.Func.Name + "(" + fieldArgName(p.Func) + ")"
		} else {
			names[i] = argIdent(p)
		}
	}
	return q.Params, names, nil
}

func fieldArgName(f *jql.FuncCall) string {
	if len(f.Args) == 0 {
		return ""
	}
	return argIdent(f.Args[0])
}

type fieldValue struct {
	scalar value.Value
	linked map[string]value.Value
}

// linkSpec is one on(field)/link(cols...) pairing, resolved against the
// field's schema so projectLink knows which table to load.
type linkSpec struct {
	table string
	cols  []string
}

// projectField evaluates one select() parameter against a row: a plain
// column ident (expanded to its on()/link() projection if applicable), or
// an fn(col) scalar function call (spec §4.4.1 step 5).
func projectField(r *schema.Row, field jql.Arg, links map[string]linkSpec, load linkLoader) (fieldValue, error) {
	switch field.Kind {
	case jql.ArgFunc:
		args := make([]value.Value, len(field.Func.Args))
		for i, a := range field.Func.Args {
			args[i] = r.Get(argIdent(a))
		}
		v, err := fn.Call(field.Func.Name, args)
		if err != nil {
			return fieldValue{}, err
		}
		return fieldValue{scalar: v}, nil
	case jql.ArgIdent:
		if spec, ok := links[field.Ident]; ok {
			return projectLink(r, field.Ident, spec, load)
		}
		return fieldValue{scalar: r.Get(field.Ident)}, nil
	}
	return fieldValue{scalar: field.Value}, nil
}

func projectLink(r *schema.Row, field string, spec linkSpec, load linkLoader) (fieldValue, error) {
	linkID := r.Get(field).Text()
	target, err := load(spec.table)
	if err != nil {
		return fieldValue{}, err
	}
	targetRow, ok := target.Data[linkID]
	if !ok {
		return fieldValue{}, tools.LinkMissErr(spec.table, schema.RowIDColumn, linkID)
	}

	projected := map[string]value.Value{}
	if len(spec.cols) == 1 && spec.cols[0] == "*" {
		for _, c := range target.Columns {
			projected[c.Name] = targetRow.Get(c.Name)
		}
	} else {
		for _, c := range spec.cols {
			projected[c] = targetRow.Get(c)
		}
	}
	return fieldValue{linked: projected}, nil
}

// linkSpecs pairs each on(col) with its matching link(col1,...) call by
// position (spec §4.4.1 step 4); arity is already validated by the parser.
// The on() field must itself be a link-typed column so its target table
// is known.
func linkSpecs(doc *schema.TableDoc, q *jql.ParsedQuery) (map[string]linkSpec, error) {
	ons := q.ExtCalls("on")
	links := q.ExtCalls("link")
	if len(ons) != len(links) {
		return nil, tools.LinkArityErr(len(ons), len(links))
	}
	out := map[string]linkSpec{}
	for i, on := range ons {
		field := argIdent(on.Args[0])
		col, ok := doc.Column(field)
		if !ok {
			return nil, tools.UnknownFieldErr(q.Table, field)
		}
		if col.Type != schema.TypeLink {
			continue
		}
		cols := make([]string, len(links[i].Args))
		for j, a := range links[i].Args {
			cols[j] = argIdent(a)
		}
		out[field] = linkSpec{table: col.LinkTable, cols: cols}
	}
	return out, nil
}
