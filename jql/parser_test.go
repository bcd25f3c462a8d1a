package jql

import (
	"testing"

	"github.com/na2axl/jsondb-go/value"
)

func TestParseBasicSelect(t *testing.T) {
	q, err := Parse("users.select(*)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Table != "users" {
		t.Errorf("table = %q, want users", q.Table)
	}
	if q.Action != ActionSelect {
		t.Errorf("action = %q, want select", q.Action)
	}
	if len(q.Params) != 1 || q.Params[0].Kind != ArgIdent || q.Params[0].Ident != "*" {
		t.Fatalf("params = %+v, want single * identifier", q.Params)
	}
}

func TestParseInsertValues(t *testing.T) {
	q, err := Parse("users.insert('na2axl').in(name)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Params) != 1 || q.Params[0].Kind != ArgValue || q.Params[0].Value.Text() != "na2axl" {
		t.Fatalf("params = %+v", q.Params)
	}
	in := q.Ext("in")
	if in == nil || len(in.Args) != 1 || in.Args[0].Ident != "name" {
		t.Fatalf("in() = %+v", in)
	}
}

func TestParseWhereGroupsAreOred(t *testing.T) {
	q, err := Parse("users.select(*).where(id=1,active=true).where(id=2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Where) != 2 {
		t.Fatalf("want 2 where groups, got %d", len(q.Where))
	}
	if len(q.Where[0]) != 2 {
		t.Fatalf("want 2 anded terms in first group, got %d", len(q.Where[0]))
	}
	if q.Where[0][0].Op != "=" || q.Where[0][0].Field.Ident != "id" {
		t.Errorf("term0 = %+v", q.Where[0][0])
	}
	if q.Where[0][1].Value.Value.Kind != value.KindBool || !q.Where[0][1].Value.Value.Bool {
		t.Errorf("term1 value = %+v", q.Where[0][1].Value)
	}
}

func TestParseOperatorLongestMatchFirst(t *testing.T) {
	cases := map[string]string{
		"id=1":  "=",
		"id!=1": "!=",
		"id<>1": "<>",
		"id<=1": "<=",
		"id>=1": ">=",
		"id<1":  "<",
		"id>1":  ">",
		"id%=2": "%=",
		"id%!2": "%!",
	}
	for term, wantOp := range cases {
		wt, err := parseWhereTerm(term)
		if err != nil {
			t.Fatalf("term %q: %v", term, err)
		}
		if wt.Op != wantOp {
			t.Errorf("term %q: op = %q, want %q", term, wt.Op, wantOp)
		}
	}
}

func TestParseOrderLimit(t *testing.T) {
	q, err := Parse("users.select(name).order(name,desc).limit(0,2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order := q.Ext("order")
	if order == nil || order.Args[0].Ident != "name" || order.Args[1].Ident != "desc" {
		t.Fatalf("order() = %+v", order)
	}
	limit := q.Ext("limit")
	if limit == nil || limit.Args[0].Value.Int != 0 || limit.Args[1].Value.Int != 2 {
		t.Fatalf("limit() = %+v", limit)
	}
}

func TestParseNestedFunctionCall(t *testing.T) {
	q, err := Parse("users.select(*).where(sha1(name)=md5(" + Quote("a,b.c") + "))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term := q.Where[0][0]
	if term.Field.Kind != ArgFunc || term.Field.Func.Name != "sha1" {
		t.Fatalf("field = %+v", term.Field)
	}
	if term.Value.Kind != ArgFunc || term.Value.Func.Name != "md5" {
		t.Fatalf("value = %+v", term.Value)
	}
	inner := term.Value.Func.Args[0]
	if inner.Kind != ArgValue || inner.Value.Text() != "a,b.c" {
		t.Fatalf("inner arg = %+v", inner)
	}
}

func TestParseOnLinkArityMustMatch(t *testing.T) {
	_, err := Parse("posts.select(*).on(author).on(editor).link(name)")
	if err == nil {
		t.Fatal("expected error for mismatched on()/link() counts")
	}
}

func TestParseRejectsUnknownAction(t *testing.T) {
	if _, err := Parse("users.destroy()"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestParseRejectsDuplicateNonRepeatableExtension(t *testing.T) {
	if _, err := Parse("users.select(*).group(a).group(b)"); err == nil {
		t.Fatal("expected error for duplicate group()")
	}
}

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	cases := []string{"plain", "with,comma", "with.dot", "with(parens)", "with;semi", "with'quote"}
	for _, s := range cases {
		quoted := Quote(s)
		arg := classifyArg(quoted)
		if arg.Kind != ArgValue || arg.Value.Text() != s {
			t.Errorf("Quote(%q) round trip = %+v, want %q", s, arg, s)
		}
	}
}

func TestClassifyArgBindMarkers(t *testing.T) {
	b := classifyArg("1" + markerToBool)
	if b.Value.Kind != value.KindBool || !b.Value.Bool {
		t.Errorf("bool marker = %+v", b)
	}
	n := classifyArg("anything" + markerToNull)
	if n.Value.Kind != value.KindNull {
		t.Errorf("null marker = %+v", n)
	}
	a := classifyArg("'[array][x:||:y]'" + markerToArray)
	if a.Value.Kind != value.KindArray || len(a.Value.Array) != 2 {
		t.Errorf("array marker = %+v", a)
	}
}
