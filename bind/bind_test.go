package bind

import (
	"testing"

	"github.com/na2axl/jsondb-go/value"
)

func TestBindStringMatchesLiteralInsert(t *testing.T) {
	stmt := Prepare("users.insert(:n).in(name)")
	if err := stmt.Bind(":n", value.Str("na2axl"), STRING); err != nil {
		t.Fatalf("bind: %v", err)
	}
	q, err := stmt.Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(q.Params) != 1 || q.Params[0].Value.Text() != "na2axl" {
		t.Fatalf("params = %+v", q.Params)
	}
}

func TestBindIntThenRebindReplaces(t *testing.T) {
	stmt := Prepare("users.update(name).with(:v).where(id=1)")
	if err := stmt.Bind(":v", value.Int(1), INT); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := stmt.Bind(":v", value.Str("other"), STRING); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	q, err := stmt.Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	with := q.Ext("with")
	if with == nil || with.Args[0].Value.Text() != "other" {
		t.Fatalf("with() = %+v, want last bind to win", with)
	}
}

func TestBindRejectsUnknownKey(t *testing.T) {
	stmt := Prepare("users.select(*)")
	if err := stmt.Bind(":missing", value.Str("x"), STRING); err == nil {
		t.Fatal("expected error for unbound placeholder name")
	}
}

func TestBindRejectsExecuteBeforeAllBound(t *testing.T) {
	stmt := Prepare("users.insert(:a,:b).in(name,active)")
	stmt.Bind(":a", value.Str("x"), STRING)
	if _, err := stmt.Execute(); err == nil {
		t.Fatal("expected error: :b never bound")
	}
}

func TestBindBoolAndNull(t *testing.T) {
	stmt := Prepare("users.insert(:a,:b).in(active,nickname)")
	stmt.Bind(":a", value.Bool(true), BOOL)
	stmt.Bind(":b", value.Null, NULL)
	q, err := stmt.Execute()
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if q.Params[0].Value.Kind != value.KindBool || !q.Params[0].Value.Bool {
		t.Errorf("bool param = %+v", q.Params[0])
	}
	if q.Params[1].Value.Kind != value.KindNull {
		t.Errorf("null param = %+v", q.Params[1])
	}
}
