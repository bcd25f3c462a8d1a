// Package filter evaluates JQL where() groups (§4.5) against an
// in-memory row. It mirrors the teacher's query_json.go filter-clause
// builder (BuildWhereFromJSON/buildFilterClause), adapted from building a
// SQL WHERE clause to evaluating one directly against a schema.Row.
package filter

import (
	"math"

	"github.com/na2axl/jsondb-go/fn"
	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/tools"
	"github.com/na2axl/jsondb-go/value"
)

// Match reports whether row satisfies the OR-of-AND groups in where: groups
// is an OR over each group of AND-ed terms, matching ParsedQuery.Where.
// doc.LastInsertID resolves the literal "last_insert_id" on either side.
// Literal values are compared as parsed; they are not coerced to the
// field's column type.
func Match(row *schema.Row, groups [][]jql.WhereTerm, table string, doc *schema.TableDoc) (bool, error) {
	if len(groups) == 0 {
		return true, nil
	}
	for _, group := range groups {
		all := true
		for _, term := range group {
			ok, err := evalTerm(row, term, table, doc)
			if err != nil {
				return false, err
			}
			if !ok {
				all = false
				break
			}
		}
		if all {
			return true, nil
		}
	}
	return false, nil
}

func evalTerm(row *schema.Row, term jql.WhereTerm, table string, doc *schema.TableDoc) (bool, error) {
	left, err := evalArg(row, term.Field, table, doc)
	if err != nil {
		return false, err
	}
	right, err := evalArg(row, term.Value, table, doc)
	if err != nil {
		return false, err
	}

	switch term.Op {
	case "=":
		return value.Equal(left, right), nil
	case "!=", "<>":
		return !value.Equal(left, right), nil
	case "<":
		return value.Compare(left, right) < 0, nil
	case "<=":
		return value.Compare(left, right) <= 0, nil
	case ">":
		return value.Compare(left, right) > 0, nil
	case ">=":
		return value.Compare(left, right) >= 0, nil
	case "%=", "%!":
		lf, lerr := left.AsFloat()
		rf, rerr := right.AsFloat()
		if lerr != nil || rerr != nil || rf == 0 {
			return false, nil
		}
		divisible := math.Mod(lf, rf) == 0
		if term.Op == "%!" {
			return !divisible, nil
		}
		return divisible, nil
	}
	return false, tools.BadOperatorErr(term.Op)
}

// evalArg resolves one side of a where term: a field identifier (column
// name, the "last_insert_id" literal, or a nested scalar function), or a
// bare value literal.
func evalArg(row *schema.Row, arg jql.Arg, table string, doc *schema.TableDoc) (value.Value, error) {
	switch arg.Kind {
	case jql.ArgValue:
		return arg.Value, nil
	case jql.ArgIdent:
		if arg.Ident == "last_insert_id" {
			return value.Int(doc.LastInsertID), nil
		}
		if !row.Has(arg.Ident) {
			return value.Null, tools.UnknownFieldErr(table, arg.Ident)
		}
		return row.Get(arg.Ident), nil
	case jql.ArgFunc:
		args := make([]value.Value, 0, len(arg.Func.Args))
		for _, a := range arg.Func.Args {
			v, err := evalArg(row, a, table, doc)
			if err != nil {
				return value.Null, err
			}
			args = append(args, v)
		}
		return fn.Call(arg.Func.Name, args)
	}
	return value.Null, tools.BadOperatorErr("")
}
