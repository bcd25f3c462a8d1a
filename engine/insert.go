package engine

import (
	"fmt"

	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/value"
)

// execInsert implements spec §4.4.2.
func execInsert(table string, doc *schema.TableDoc, q *jql.ParsedQuery, resolver schema.LinkResolver) (*Result, error) {
	cols, err := targetColumns(doc, q)
	if err != nil {
		return nil, err
	}

	tuples := valueTuples(q)
	aiCol, hasAI := doc.AutoIncrementColumn()

	baseLinkID, baseRowID, nextAI := doc.LastLinkID, doc.LastValidRowID, doc.LastInsertID
	for k, vals := range tuples {
		supplied, err := coerceTuple(cols, vals, doc, resolver)
		if err != nil {
			return nil, err
		}

		row := schema.NewRow(doc.Prototype)
		row.SetRowID(baseRowID + int64(k) + 1)

		for _, c := range doc.Columns {
			if v, ok := supplied[c.Name]; ok {
				row.Set(c.Name, v)
				continue
			}
			if hasAI && c.Name == aiCol.Name {
				row.Set(c.Name, value.Null) // assigned below
				continue
			}
			v, err := schema.Coerce(value.Null, c, resolver)
			if err != nil {
				return nil, err
			}
			row.Set(c.Name, v)
		}

		if hasAI {
			if v := row.Get(aiCol.Name); v.IsNull() {
				nextAI++
				row.Set(aiCol.Name, value.Int(nextAI))
			} else if v.Kind == value.KindInt && v.Int > nextAI {
				nextAI = v.Int
			}
		}

		linkID := fmt.Sprintf("#%d", baseLinkID+int64(k)+1)
		doc.Data[linkID] = row
	}

	if err := checkIntegrity(table, doc, ""); err != nil {
		return nil, err
	}

	doc.LastLinkID = baseLinkID + int64(len(tuples))
	doc.RecomputeLastValidRowID()
	doc.RecomputeLastInsertID()

	return &Result{Mutated: true, LastInsertID: doc.LastInsertID}, nil
}
