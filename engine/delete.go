package engine

import (
	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
)

// execDelete implements spec §4.4.5.
func execDelete(table string, doc *schema.TableDoc, q *jql.ParsedQuery) (*Result, error) {
	targets, err := matchingLinkIDs(doc, q, table)
	if err != nil {
		return nil, err
	}
	for _, linkID := range targets {
		delete(doc.Data, linkID)
	}
	if len(targets) > 0 {
		doc.RecomputeLastValidRowID()
	}
	return &Result{Mutated: true}, nil
}

// execTruncate implements spec §4.4.6: clears data, resets last_insert_id
// and last_valid_row_id, preserves last_link_id so link ids stay globally
// increasing.
func execTruncate(doc *schema.TableDoc) (*Result, error) {
	doc.Data = map[string]*schema.Row{}
	doc.LastInsertID = 0
	doc.LastValidRowID = 0
	return &Result{Mutated: true}, nil
}
