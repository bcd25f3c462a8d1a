// Package bind implements the prepared-statement binder described in §4.3:
// capture ":name" placeholders in a JQL query, substitute typed literals,
// and re-parse on execute.
package bind

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/tools"
	"github.com/na2axl/jsondb-go/value"
)

// Kind selects how a bound value is rendered back into query text.
type Kind int

const (
	STRING Kind = iota
	INT
	FLOAT
	BOOL
	NULL
	ARRAY
)

var placeholderRe = regexp.MustCompile(`:\w+`)

// Statement is a query string with named placeholders, plus the bindings
// accumulated so far. Rebinding a key replaces its previous value.
type Statement struct {
	raw    string
	keys   map[string]bool
	bound  map[string]string
}

// Prepare captures every ":name" placeholder in query.
func Prepare(query string) *Statement {
	keys := map[string]bool{}
	for _, m := range placeholderRe.FindAllString(query, -1) {
		keys[m] = true
	}
	return &Statement{raw: query, keys: keys, bound: map[string]string{}}
}

// Bind substitutes v, rendered per kind, for key. key must be one of the
// placeholders captured by Prepare, and may be rebound any number of times.
func (s *Statement) Bind(key string, v value.Value, kind Kind) error {
	if !s.keys[key] {
		return tools.ParseErr(fmt.Sprintf("unknown placeholder %q", key))
	}
	literal, err := render(v, kind)
	if err != nil {
		return err
	}
	s.bound[key] = literal
	return nil
}

// Execute resolves every placeholder and parses the resulting query text.
// All captured placeholders must have been bound. Substitution runs as a
// single regex pass over exact ":name" tokens rather than per-key
// strings.ReplaceAll, so a placeholder that is a prefix of another (":id"
// vs ":identifier") can't have its substring rewritten out from under it.
func (s *Statement) Execute() (*jql.ParsedQuery, error) {
	var missing string
	text := placeholderRe.ReplaceAllStringFunc(s.raw, func(key string) string {
		literal, ok := s.bound[key]
		if !ok {
			missing = key
			return key
		}
		return literal
	})
	if missing != "" {
		return nil, tools.ParseErr(fmt.Sprintf("placeholder %q was never bound", missing))
	}
	return jql.Parse(text)
}

// render renders v as the literal text form for kind, matching §4.3's
// substitution rules exactly (quoted string, decimal int/float, or a
// bind-forced-type marker for bool/null/array).
func render(v value.Value, kind Kind) (string, error) {
	switch kind {
	case STRING:
		return jql.Quote(v.Text()), nil
	case INT:
		i, err := v.AsFloat()
		if err != nil {
			return "", tools.ParseErr("INT bind value is not numeric")
		}
		return strconv.FormatInt(int64(i), 10), nil
	case FLOAT:
		f, err := v.AsFloat()
		if err != nil {
			return "", tools.ParseErr("FLOAT bind value is not numeric")
		}
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s, nil
	case BOOL:
		digit := "0"
		if v.Truthy() {
			digit = "1"
		}
		return digit + jql.MarkerToBool, nil
	case NULL:
		return v.Text() + jql.MarkerToNull, nil
	case ARRAY:
		return jql.Quote(v.Text()) + jql.MarkerToArray, nil
	}
	return "", tools.ParseErr("unknown bind kind")
}
