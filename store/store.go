// Package store implements the table storage layer (spec §4.7, §5, §6.1):
// a process-wide read-through cache, per-table lock-file mutual exclusion
// with bounded polling, and atomic whole-file rewrite. It mirrors the
// teacher's data/schema_cache.go (sync.RWMutex-guarded process cache) and
// data/db_retry.go (bounded retry/backoff while a resource is locked),
// adapted from SQLite busy-retries to JQL's own ".lock" companion file.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/na2axl/jsondb-go/config"
	"github.com/na2axl/jsondb-go/schema"
	"github.com/na2axl/jsondb-go/tools"
)

// ProcessID identifies this process in lock-file diagnostics. Generated
// once at package init, grounded on the teacher's stack via google/uuid.
var ProcessID = uuid.New().String()

// lockBody is the JSON content written into a table's companion .lock file.
type lockBody struct {
	PID         int       `json:"pid"`
	ProcessID   string    `json:"process_id"`
	AcquiredAt  time.Time `json:"acquired_at"`
}

// Store is a process-wide cache of loaded table documents, keyed by
// absolute table file path, guarded the way the teacher guards its
// primarySchema/schemaMu pair.
type Store struct {
	mu    sync.RWMutex
	cache map[string]*schema.TableDoc
}

// New returns an empty Store.
func New() *Store {
	return &Store{cache: map[string]*schema.TableDoc{}}
}

// TablePath builds the on-disk path for server/database/table under root.
func TablePath(root, server, database, table string) string {
	return filepath.Join(root, "servers", server, database, table+".json")
}

func lockPath(tablePath string) string { return tablePath + ".lock" }

// Load returns the table document at path, reading through the cache. A
// cache hit returns the cached pointer directly: callers that intend to
// mutate must go through Save under a held lock, per the lifecycle in
// spec §3.4.
func (s *Store) Load(path string) (*schema.TableDoc, error) {
	if config.Cfg.CacheEnabled {
		s.mu.RLock()
		doc, ok := s.cache[path]
		s.mu.RUnlock()
		if ok {
			return doc, nil
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tools.TableNotFoundErr(path)
		}
		return nil, tools.IoErr("read", path, err)
	}

	doc := &schema.TableDoc{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, tools.IoErr("decode", path, err)
	}

	if config.Cfg.CacheEnabled {
		s.mu.Lock()
		s.cache[path] = doc
		s.mu.Unlock()
	}
	return doc, nil
}

// Save atomically rewrites path with doc (write-to-temp-then-rename) and
// updates the cache to stay coherent with this process's own writes
// (spec §5 "Shared state").
func (s *Store) Save(path string, doc *schema.TableDoc) error {
	if err := os.MkdirAll(filepath.Dir(path), config.Cfg.DirPermissions); err != nil {
		return tools.IoErr("mkdir", filepath.Dir(path), err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return tools.IoErr("encode", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, config.Cfg.FilePermissions); err != nil {
		s.Invalidate(path)
		return tools.IoErr("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		s.Invalidate(path)
		return tools.IoErr("rename", path, err)
	}

	if config.Cfg.CacheEnabled {
		s.mu.Lock()
		s.cache[path] = doc
		s.mu.Unlock()
	}
	return nil
}

// Invalidate drops path from the cache, forcing the next Load to hit disk.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	delete(s.cache, path)
	s.mu.Unlock()
}

// Reset empties the entire cache, for callers needing to see writes made
// by other processes (spec §5 "Shared state").
func (s *Store) Reset() {
	s.mu.Lock()
	s.cache = map[string]*schema.TableDoc{}
	s.mu.Unlock()
}

// Lock acquires path's companion .lock file, bounded-polling at
// config.Cfg.LockPollEvery until config.Cfg.LockTimeout elapses. It
// returns an Unlock func that must be called exactly once to release it.
func (s *Store) Lock(path string) (unlock func(), err error) {
	lp := lockPath(path)
	deadline := time.Now().Add(config.Cfg.LockTimeout)

	for {
		f, err := os.OpenFile(lp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.Cfg.FilePermissions)
		if err == nil {
			body, _ := json.Marshal(lockBody{
				PID: os.Getpid(), ProcessID: ProcessID, AcquiredAt: time.Now(),
			})
			f.Write(body)
			f.Close()
			return func() { os.Remove(lp) }, nil
		}
		if !os.IsExist(err) {
			return nil, tools.IoErr("lock", lp, err)
		}
		if time.Now().After(deadline) {
			return nil, tools.LockTimeoutErr(lp)
		}
		time.Sleep(config.Cfg.LockPollEvery)
	}
}

// WithLock runs fn while holding path's lock, always releasing it
// afterward even if fn panics or errors (spec §5: "the window
// lock/validate/write is atomic against other processes").
func (s *Store) WithLock(path string, fn func() error) error {
	unlock, err := s.Lock(path)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// EnsureDir creates the server/database directory path if missing.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, config.Cfg.DirPermissions); err != nil {
		return tools.IoErr("mkdir", path, err)
	}
	return nil
}
