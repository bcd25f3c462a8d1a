package filter

import (
	"testing"

	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/value"
)

func newRow(id int64, name string, age int64) *schema.Row {
	r := schema.NewRow([]string{"#rowid", "name", "age"})
	r.SetRowID(id)
	r.Set("name", value.Str(name))
	r.Set("age", value.Int(age))
	return r
}

func parseWhere(t *testing.T, query string) [][]jql.WhereTerm {
	t.Helper()
	q, err := jql.Parse(query)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return q.Where
}

func TestMatchEquality(t *testing.T) {
	row := newRow(1, "ken", 30)
	groups := parseWhere(t, "users.select(*).where(name='ken')")
	ok, err := Match(row, groups, "users", schema.NewTableDoc(nil))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v, want match", ok, err)
	}
}

func TestMatchOrAcrossGroups(t *testing.T) {
	row := newRow(1, "ken", 30)
	groups := parseWhere(t, "users.select(*).where(name='bob').where(name='ken')")
	ok, err := Match(row, groups, "users", schema.NewTableDoc(nil))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v, want OR match on second group", ok, err)
	}
}

func TestMatchAndWithinGroup(t *testing.T) {
	row := newRow(1, "ken", 30)
	groups := parseWhere(t, "users.select(*).where(name='ken',age=99)")
	ok, err := Match(row, groups, "users", schema.NewTableDoc(nil))
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v, want no match (age mismatch)", ok, err)
	}
}

func TestMatchDivisibleOperator(t *testing.T) {
	row := newRow(1, "ken", 30)
	groups := parseWhere(t, "users.select(*).where(age%=10)")
	ok, err := Match(row, groups, "users", schema.NewTableDoc(nil))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v, want 30 divisible by 10", ok, err)
	}
}

func TestMatchUnknownFieldError(t *testing.T) {
	row := newRow(1, "ken", 30)
	groups := parseWhere(t, "users.select(*).where(missing=1)")
	if _, err := Match(row, groups, "users", schema.NewTableDoc(nil)); err == nil {
		t.Fatal("expected UnknownField error")
	}
}

func TestMatchLastInsertID(t *testing.T) {
	row := newRow(7, "ken", 30)
	doc := schema.NewTableDoc(nil)
	doc.LastInsertID = 7
	groups := parseWhere(t, "users.select(*).where(#rowid=last_insert_id)")
	ok, err := Match(row, groups, "users", doc)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v, want rowid to match last_insert_id", ok, err)
	}
}

func TestMatchScalarFunctionField(t *testing.T) {
	row := newRow(1, "ken", 30)
	groups := parseWhere(t, "users.select(*).where(uppercase(name)='KEN')")
	ok, err := Match(row, groups, "users", schema.NewTableDoc(nil))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v, want uppercase(name) to equal KEN", ok, err)
	}
}
