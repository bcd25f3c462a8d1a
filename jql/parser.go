package jql

import (
	"fmt"
	"strings"

	"github.com/na2axl/jsondb-go/tools"
)

// operators in longest-match-first order, per §4.2.
var operators = []string{"%!", "%=", "!=", "<>", "<=", ">=", "=", "<", ">"}

// repeatable extensions accumulate every call, in order; the rest may
// appear at most once.
var repeatableExts = map[string]bool{"where": true, "and": true, "on": true, "link": true}

var extArity = map[string][2]int{
	"order": {1, 2},
	"and":   {1, -1},
	"limit": {1, 2},
	"in":    {1, -1},
	"with":  {1, -1},
	"as":    {1, -1},
	"group": {1, 1},
	"on":    {1, 1},
	"link":  {1, -1},
}

// Parse tokenizes and validates a JQL query string, returning its AST.
func Parse(raw string) (*ParsedQuery, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, tools.ParseErr("empty query")
	}

	segments := splitTopLevel(raw, '.')
	if len(segments) < 2 {
		return nil, tools.ParseErr("query must be table.action(...)")
	}

	table := strings.TrimSpace(segments[0])
	if !isIdent(table) {
		return nil, tools.ParseErr(fmt.Sprintf("invalid table name %q", table))
	}

	actionName, actionArgs, ok := callHead(segments[1])
	if !ok {
		return nil, tools.ParseErr(fmt.Sprintf("invalid action segment %q", segments[1]))
	}
	action := Action(actionName)
	if !ValidActions[action] {
		return nil, tools.ParseErr(fmt.Sprintf("unsupported action %q", actionName))
	}

	q := &ParsedQuery{
		Table:  table,
		Action: action,
		Exts:   map[string][]ExtCall{},
	}
	for _, raw := range splitArgs(actionArgs) {
		q.Params = append(q.Params, classifyArg(raw))
	}

	for _, seg := range segments[2:] {
		if seg == "" {
			return nil, tools.ParseErr("empty extension segment")
		}
		name, argStr, ok := callHead(seg)
		if !ok {
			return nil, tools.ParseErr(fmt.Sprintf("invalid extension segment %q", seg))
		}
		rawArgs := splitArgs(argStr)

		if name == "where" {
			group, err := parseWhereGroup(rawArgs)
			if err != nil {
				return nil, err
			}
			q.Where = append(q.Where, group)
			continue
		}

		bounds, known := extArity[name]
		if !known {
			return nil, tools.ParseErr(fmt.Sprintf("unknown extension %q", name))
		}
		if len(rawArgs) < bounds[0] || (bounds[1] >= 0 && len(rawArgs) > bounds[1]) {
			return nil, tools.ParseErr(fmt.Sprintf("%s() takes %s argument(s), got %d", name, arityText(bounds), len(rawArgs)))
		}
		if !repeatableExts[name] && len(q.Exts[name]) > 0 {
			return nil, tools.ParseErr(fmt.Sprintf("%s() may only appear once", name))
		}

		call := ExtCall{Name: name}
		for _, a := range rawArgs {
			call.Args = append(call.Args, classifyArg(a))
		}
		q.Exts[name] = append(q.Exts[name], call)
	}

	if len(q.Exts["on"]) != len(q.Exts["link"]) {
		return nil, tools.LinkArityErr(len(q.Exts["on"]), len(q.Exts["link"]))
	}

	return q, nil
}

func arityText(bounds [2]int) string {
	if bounds[1] < 0 {
		return fmt.Sprintf("at least %d", bounds[0])
	}
	if bounds[0] == bounds[1] {
		return fmt.Sprintf("exactly %d", bounds[0])
	}
	return fmt.Sprintf("%d-%d", bounds[0], bounds[1])
}

func parseWhereGroup(rawArgs []string) ([]WhereTerm, error) {
	if len(rawArgs) == 0 {
		return nil, tools.ParseErr("where() requires at least one term")
	}
	group := make([]WhereTerm, 0, len(rawArgs))
	for _, term := range rawArgs {
		wt, err := parseWhereTerm(term)
		if err != nil {
			return nil, err
		}
		group = append(group, wt)
	}
	return group, nil
}

// parseWhereTerm splits "field OP value" at the first depth-0 occurrence of
// a recognized operator, trying operators longest-match first.
func parseWhereTerm(term string) (WhereTerm, error) {
	depth := 0
	for i := 0; i < len(term); i++ {
		switch term[i] {
		case '(':
			depth++
			continue
		case ')':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth != 0 {
			continue
		}
		for _, op := range operators {
			if strings.HasPrefix(term[i:], op) {
				field := classifyArg(term[:i])
				val := classifyArg(term[i+len(op):])
				return WhereTerm{Field: field, Op: op, Value: val}, nil
			}
		}
	}
	return WhereTerm{}, tools.ParseErr(fmt.Sprintf("no operator found in where term %q", term))
}
