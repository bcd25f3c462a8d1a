package engine

import (
	"github.com/na2axl/jsondb-go/filter"
	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/tools"
)

// execUpdate implements spec §4.4.4. params names the columns to change;
// with() supplies their new values positionally.
func execUpdate(table string, doc *schema.TableDoc, q *jql.ParsedQuery, resolver schema.LinkResolver) (*Result, error) {
	withExt := q.Ext("with")
	if withExt == nil {
		return nil, tools.ErrMissingWith
	}
	if len(q.Params) != len(withExt.Args) {
		return nil, tools.ArityErr(len(q.Params), len(withExt.Args))
	}

	cols := make([]string, len(q.Params))
	for i, p := range q.Params {
		cols[i] = argIdent(p)
	}
	newVals, err := coerceTuple(cols, argValues(withExt.Args), doc, resolver)
	if err != nil {
		return nil, err
	}

	targets, err := matchingLinkIDs(doc, q, table)
	if err != nil {
		return nil, err
	}

	for _, linkID := range targets {
		row := doc.Data[linkID]
		for _, name := range cols {
			row.Set(name, newVals[name])
		}
	}

	if err := checkIntegrity(table, doc, ""); err != nil {
		return nil, err
	}

	doc.RecomputeLastInsertID()
	doc.RecomputeLastValidRowID()

	return &Result{Mutated: true, LastInsertID: doc.LastInsertID}, nil
}

// matchingLinkIDs returns the link ids of rows matched by q's where groups
// (spec §4.5), or every row if there is no where().
func matchingLinkIDs(doc *schema.TableDoc, q *jql.ParsedQuery, table string) ([]string, error) {
	var out []string
	for _, linkID := range doc.SortedLinkIDs() {
		row := doc.Data[linkID]
		ok, err := filter.Match(row, q.Where, table, doc)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, linkID)
		}
	}
	return out, nil
}
