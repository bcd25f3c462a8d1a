package store

import (
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/tools"
	"github.com/na2axl/jsondb-go/value"
)

// Resolver implements schema.LinkResolver for one (root, server, database)
// scope: a link(t.c) column always targets a table in the same database as
// the column it lives on (spec §3.2).
type Resolver struct {
	Store    *Store
	Root     string
	Server   string
	Database string
}

// ResolveLink coerces v through targetColumn's own type, then searches
// targetTable for a row whose column equals that coerced value, returning
// its link id ("#<n>"). Fails with LinkMiss if no row matches, per spec
// §4.1's link coercion rule.
func (r Resolver) ResolveLink(targetTable, targetColumn string, v value.Value) (string, error) {
	path := TablePath(r.Root, r.Server, r.Database, targetTable)
	doc, err := r.Store.Load(path)
	if err != nil {
		return "", err
	}

	col, ok := doc.Column(targetColumn)
	if !ok && targetColumn != schema.RowIDColumn {
		return "", tools.UnknownFieldErr(targetTable, targetColumn)
	}

	var want value.Value
	if targetColumn == schema.RowIDColumn {
		want = v
	} else {
		want, err = schema.Coerce(v, col, r)
		if err != nil {
			return "", err
		}
	}

	for linkID, row := range doc.Data {
		if value.Equal(row.Get(targetColumn), want) {
			return linkID, nil
		}
	}
	return "", tools.LinkMissErr(targetTable, targetColumn, v.Text())
}
