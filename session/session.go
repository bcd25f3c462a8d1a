// Package session implements the minimal connection façade spec.md §6.4
// describes and §1 otherwise places out of scope: enough of
// connect/query/prepare to make the engine reachable from a caller that
// only knows a server and database name, with no authentication.
package session

import (
	"os"
	"path/filepath"

	"github.com/na2axl/jsondb-go/bind"
	"github.com/na2axl/jsondb-go/config"
	"github.com/na2axl/jsondb-go/engine"
	"github.com/na2axl/jsondb-go/jql"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/store"
	"github.com/na2axl/jsondb-go/tools"
)

// Session routes query text for one (server, database) pair into the
// engine, sharing one table store so its cache and locks are coherent
// across every query run through it.
type Session struct {
	store    *store.Store
	root     string
	server   string
	database string
}

// Open binds a session to (server, database) under cfg's root directory.
func Open(cfg config.Config, server, database string) *Session {
	return &Session{store: store.New(), root: cfg.RootDir, server: server, database: database}
}

// Query parses and executes text against the session's database.
func (s *Session) Query(text string) (*engine.Result, error) {
	q, err := jql.Parse(text)
	if err != nil {
		return nil, err
	}
	return engine.Execute(s.store, s.root, s.server, s.database, q)
}

// Prepare returns a statement whose ":name" placeholders can be bound and
// re-executed against this session any number of times (spec.md §4.3).
func (s *Session) Prepare(text string) *bind.Statement {
	return bind.Prepare(text)
}

// Execute runs a prepared statement's current bindings against this
// session, re-parsing the substituted text.
func (s *Session) Execute(stmt *bind.Statement) (*engine.Result, error) {
	q, err := stmt.Execute()
	if err != nil {
		return nil, err
	}
	return engine.Execute(s.store, s.root, s.server, s.database, q)
}

func (s *Session) databaseDir() string {
	return filepath.Join(s.root, "servers", s.server, s.database)
}

// CreateDatabase makes the session's database directory if it does not
// already exist.
func (s *Session) CreateDatabase() error {
	return store.EnsureDir(s.databaseDir())
}

// DatabaseExists reports whether the session's database directory exists.
func (s *Session) DatabaseExists() bool {
	info, err := os.Stat(s.databaseDir())
	return err == nil && info.IsDir()
}

// TableExists reports whether table has a document in the session's
// database.
func (s *Session) TableExists(table string) bool {
	_, err := os.Stat(store.TablePath(s.root, s.server, s.database, table))
	return err == nil
}

// CreateTable writes a new, empty table document with the given columns.
// It fails with IoErr if the table already exists, since insert/replace
// assume the document and its lock file are exclusively theirs to manage.
func (s *Session) CreateTable(table string, cols []schema.Column) error {
	if err := tools.ValidateTableName(table); err != nil {
		return err
	}
	for _, c := range cols {
		if err := tools.ValidateColumnName(c.Name); err != nil {
			return err
		}
	}
	if s.TableExists(table) {
		return tools.IoErr("create", table, os.ErrExist)
	}
	if err := s.CreateDatabase(); err != nil {
		return err
	}
	doc := schema.NewTableDoc(cols)
	return s.store.Save(store.TablePath(s.root, s.server, s.database, table), doc)
}
