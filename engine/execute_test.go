package engine

import (
	"testing"
	"time"

	"github.com/na2axl/jsondb-go/config"
	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/store"
)

func testConfig(t *testing.T) {
	t.Helper()
	config.Cfg = config.Config{
		RootDir:         t.TempDir(),
		LockPollEvery:   5 * time.Millisecond,
		LockTimeout:     200 * time.Millisecond,
		CacheEnabled:    true,
		DirPermissions:  0o777,
		FilePermissions: 0o666,
	}
}

// seedTable writes an initial, empty table document at
// <root>/servers/<server>/<database>/<table>.json, the way the session
// layer's create-table path will (spec §4.1).
func seedTable(t *testing.T, s *store.Store, server, database, table string, cols []schema.Column) string {
	t.Helper()
	path := store.TablePath(config.Cfg.RootDir, server, database, table)
	doc := schema.NewTableDoc(cols)
	if err := s.Save(path, doc); err != nil {
		t.Fatalf("seed %s: %v", table, err)
	}
	return path
}

func mustParse(t *testing.T, q string) *jql.ParsedQuery {
	t.Helper()
	parsed, err := jql.Parse(q)
	if err != nil {
		t.Fatalf("parse %q: %v", q, err)
	}
	return parsed
}

func mustExec(t *testing.T, s *store.Store, server, database, q string) *Result {
	t.Helper()
	res, err := Execute(s, config.Cfg.RootDir, server, database, mustParse(t, q))
	if err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
	return res
}

func usersColumns() []schema.Column {
	return []schema.Column{
		{Name: "name", Type: schema.TypeString, PrimaryKey: true},
		{Name: "age", Type: schema.TypeInt},
		{Name: "email", Type: schema.TypeString, UniqueKey: true},
	}
}

func TestInsertThenSelectStar(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1", `users.insert('alice',30,'alice@example.com')`)

	res := mustExec(t, s, "s1", "db1", `users.select(*)`)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row.Get("name").Value.Text() != "alice" {
		t.Errorf("name = %q, want alice", row.Get("name").Value.Text())
	}
	if row.Get("age").Value.Int != 30 {
		t.Errorf("age = %v, want 30", row.Get("age").Value.Int)
	}
}

func TestInsertMultiWithAnd(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1",
		`users.insert('bob',25,'bob@example.com').and('carol',40,'carol@example.com')`)

	res := mustExec(t, s, "s1", "db1", `users.select(*)`)
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
}

func TestInsertDuplicatePrimaryKeyFails(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1", `users.insert('alice',30,'alice@example.com')`)

	_, err := Execute(s, config.Cfg.RootDir, "s1", "db1",
		mustParse(t, `users.insert('alice',31,'other@example.com')`))
	if err == nil {
		t.Fatal("expected duplicate primary key error")
	}
}

func TestSelectWhereOrderAndLimit(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1", `users.insert('alice',30,'alice@example.com')`+
		`.and('bob',25,'bob@example.com').and('carol',40,'carol@example.com')`)

	res := mustExec(t, s, "s1", "db1",
		`users.select(name).where(age>=30).order(age,desc).limit(1)`)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	if got := res.Rows[0].Get("name").Value.Text(); got != "carol" {
		t.Errorf("name = %q, want carol (highest age >= 30)", got)
	}
}

func TestUpdateWithWhere(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1", `users.insert('bob',25,'bob@example.com')`)
	mustExec(t, s, "s1", "db1", `users.update(age).where(name='bob').with(26)`)

	res := mustExec(t, s, "s1", "db1", `users.select(age).where(name='bob')`)
	if len(res.Rows) != 1 || res.Rows[0].Get("age").Value.Int != 26 {
		t.Fatalf("expected updated age 26, got %+v", res.Rows)
	}
}

func TestUpdateDuplicateUniqueKeyFails(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1", `users.insert('bob',25,'bob@example.com')`+
		`.and('carol',40,'carol@example.com')`)

	_, err := Execute(s, config.Cfg.RootDir, "s1", "db1",
		mustParse(t, `users.update(email).where(name='bob').with('carol@example.com')`))
	if err == nil {
		t.Fatal("expected duplicate unique key error")
	}
}

func TestDeleteRecomputesLastValidRowID(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1", `users.insert('bob',25,'bob@example.com')`+
		`.and('carol',40,'carol@example.com')`)
	mustExec(t, s, "s1", "db1", `users.delete().where(name='carol')`)

	path := store.TablePath(config.Cfg.RootDir, "s1", "db1", "users")
	doc, err := s.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.LastValidRowID != 1 {
		t.Errorf("last_valid_row_id = %d, want 1", doc.LastValidRowID)
	}
	if len(doc.Data) != 1 {
		t.Errorf("expected 1 remaining row, got %d", len(doc.Data))
	}
}

func TestTruncateResetsRowIDsButKeepsLinkID(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1", `users.insert('bob',25,'bob@example.com')`)
	mustExec(t, s, "s1", "db1", `users.truncate()`)

	path := store.TablePath(config.Cfg.RootDir, "s1", "db1", "users")
	doc, err := s.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Data) != 0 || doc.LastValidRowID != 0 || doc.LastInsertID != 0 {
		t.Fatalf("truncate did not reset doc: %+v", doc)
	}
	if doc.LastLinkID != 1 {
		t.Errorf("last_link_id = %d, want preserved at 1", doc.LastLinkID)
	}
}

func TestCountGrouped(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1", `users.insert('alice',30,'a@example.com')`+
		`.and('bob',30,'b@example.com').and('carol',40,'c@example.com')`)

	res := mustExec(t, s, "s1", "db1", `users.count(name).group(age)`)
	counts := map[int64]int64{}
	for _, row := range res.Rows {
		age := row.Get("age").Value.Int
		counts[age] = row.Get("count(name)").Value.Int
	}
	if counts[30] != 2 || counts[40] != 1 {
		t.Fatalf("unexpected grouped counts: %+v", counts)
	}
}

func TestSelectLastInsertID(t *testing.T) {
	testConfig(t)
	s := store.New()
	cols := []schema.Column{
		{Name: "name", Type: schema.TypeString},
		{Name: "id", Type: schema.TypeInt, AutoIncrement: true},
	}
	seedTable(t, s, "s1", "db1", "events", cols)

	mustExec(t, s, "s1", "db1", `events.insert('signup',null)`)

	res := mustExec(t, s, "s1", "db1", `events.select(last_insert_id)`)
	if len(res.Rows) != 1 {
		t.Fatalf("expected a single row for last_insert_id, got %d", len(res.Rows))
	}
	if res.Rows[0].Get("last_insert_id").Value.Int != 1 {
		t.Errorf("last_insert_id = %v, want 1", res.Rows[0].Get("last_insert_id").Value.Int)
	}
}

func TestSelectLinkProjection(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())
	mustExec(t, s, "s1", "db1", `users.insert('alice',30,'alice@example.com')`)

	orderCols := []schema.Column{
		{Name: "item", Type: schema.TypeString},
		{Name: "buyer", Type: schema.TypeLink, LinkTable: "users", LinkColumn: "name"},
	}
	seedTable(t, s, "s1", "db1", "orders", orderCols)
	mustExec(t, s, "s1", "db1", `orders.insert('widget','alice')`)

	res := mustExec(t, s, "s1", "db1",
		`orders.select(item,buyer).on(buyer).link(name,email)`)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	linked := res.Rows[0].Get("buyer").Linked
	if linked == nil {
		t.Fatal("expected buyer to carry a linked projection")
	}
	if linked["name"].Text() != "alice" || linked["email"].Text() != "alice@example.com" {
		t.Errorf("unexpected linked projection: %+v", linked)
	}
}

func TestInsertUnknownColumnFails(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	_, err := Execute(s, config.Cfg.RootDir, "s1", "db1",
		mustParse(t, `users.insert('x',1,'x@example.com').in(name,age,nickname)`))
	if err == nil {
		t.Fatal("expected unknown-field error for nickname")
	}
}

func TestReplacePositional(t *testing.T) {
	testConfig(t)
	s := store.New()
	seedTable(t, s, "s1", "db1", "users", usersColumns())

	mustExec(t, s, "s1", "db1", `users.insert('bob',25,'bob@example.com')`)
	mustExec(t, s, "s1", "db1", `users.replace('bobby',26,'bobby@example.com')`)

	res := mustExec(t, s, "s1", "db1", `users.select(*)`)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row after replace, got %d", len(res.Rows))
	}
	if got := res.Rows[0].Get("name").Value.Text(); got != "bobby" {
		t.Errorf("name = %q, want bobby", got)
	}
}
