package engine

import (
	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/store"
	"github.com/na2axl/jsondb-go/tools"
)

// Execute runs a parsed query against (root, server, database) through the
// table store: load the document, dispatch per action, write back if the
// action mutated. The whole load/validate/write window runs under the
// table's lock (spec §4.4 prelude, §5 ordering guarantees).
func Execute(st *store.Store, root, server, database string, q *jql.ParsedQuery) (*Result, error) {
	path := store.TablePath(root, server, database, q.Table)
	resolver := store.Resolver{Store: st, Root: root, Server: server, Database: database}
	load := func(table string) (*schema.TableDoc, error) {
		return st.Load(store.TablePath(root, server, database, table))
	}

	var result *Result
	err := st.WithLock(path, func() error {
		doc, err := st.Load(path)
		if err != nil {
			return err
		}

		switch q.Action {
		case jql.ActionSelect:
			result, err = execSelect(q.Table, doc, q, load)
			return err
		case jql.ActionCount:
			result, err = execCount(q.Table, doc, q)
			return err
		}

		// Mutating actions validate against a clone so a failed insert/
		// replace/update/delete/truncate never leaves a half-applied
		// document sitting in the process-wide cache (spec §7: "Abort
		// query; no write" means no observable mutation at all).
		work := doc.Clone()
		var execErr error
		switch q.Action {
		case jql.ActionInsert:
			result, execErr = execInsert(q.Table, work, q, resolver)
		case jql.ActionReplace:
			result, execErr = execReplace(q.Table, work, q, resolver)
		case jql.ActionUpdate:
			result, execErr = execUpdate(q.Table, work, q, resolver)
		case jql.ActionDelete:
			result, execErr = execDelete(q.Table, work, q)
		case jql.ActionTruncate:
			result, execErr = execTruncate(work)
		default:
			return tools.ParseErr("unsupported action")
		}
		if execErr != nil {
			return execErr
		}
		return st.Save(path, work)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
