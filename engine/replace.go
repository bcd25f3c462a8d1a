package engine

import (
	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/tools"
)

// execReplace implements spec §4.4.3: positional overwrite of existing
// rows in #rowid order.
func execReplace(table string, doc *schema.TableDoc, q *jql.ParsedQuery, resolver schema.LinkResolver) (*Result, error) {
	cols, err := targetColumns(doc, q)
	if err != nil {
		return nil, err
	}

	tuples := valueTuples(q)
	rows := sortedRows(doc)
	aiCol, hasAI := doc.AutoIncrementColumn()

	for k, vals := range tuples {
		if k >= len(rows) {
			return nil, tools.ArityErr(len(rows), len(tuples))
		}
		supplied, err := coerceTuple(cols, vals, doc, resolver)
		if err != nil {
			return nil, err
		}

		row := rows[k]
		for _, name := range cols {
			v := supplied[name]
			if hasAI && name == aiCol.Name && v.IsNull() {
				continue
			}
			row.Set(name, v)
		}
	}

	if err := checkIntegrity(table, doc, ""); err != nil {
		return nil, err
	}

	doc.RecomputeLastValidRowID()
	doc.RecomputeLastInsertID()

	return &Result{Mutated: true, LastInsertID: doc.LastInsertID}, nil
}
