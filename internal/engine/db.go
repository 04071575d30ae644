// Package engine is the top-level facade over the storage kernel: it owns
// a database directory, keeps a catalog of the tables inside it, and
// tracks which ones are currently open so repeated OpenTable calls reuse
// the same buffer pool instead of racing two pools over one file.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/tuannm99/novasql/internal/bufferpool/replacement"
	"github.com/tuannm99/novasql/internal/catalog"
	"github.com/tuannm99/novasql/internal/record"
)

var (
	ErrDatabaseClosed = errors.New("novasql: database is closed")
	ErrTableNotFound  = errors.New("novasql: table not found")
	ErrTableExists    = errors.New("novasql: table already exists")
)

// Database is a directory on disk holding one catalog registry and zero
// or more table files.
type Database struct {
	DataDir string

	// TableOptions sizes and policies the buffer pool every CreateTable /
	// OpenTable call attaches to its table.
	TableOptions record.Options

	mu      sync.Mutex
	closed  bool
	catalog *catalog.Registry
	open    map[string]*record.Table
}

// Open loads (or initializes) the database rooted at dataDir, with every
// table's buffer pool sized at record.DefaultBufferPoolFrames frames under
// LRU replacement.
func Open(dataDir string) (*Database, error) {
	return OpenWithOptions(dataDir, record.Options{
		NumFrames: record.DefaultBufferPoolFrames,
		Strategy:  replacement.LRU,
	})
}

// OpenWithOptions loads (or initializes) the database rooted at dataDir,
// with every table's buffer pool sized and policied per opts.
func OpenWithOptions(dataDir string, opts record.Options) (*Database, error) {
	reg, err := catalog.Open(dataDir)
	if err != nil {
		return nil, err
	}
	return &Database{
		DataDir:      dataDir,
		TableOptions: opts,
		catalog:      reg,
		open:         make(map[string]*record.Table),
	}, nil
}

func (db *Database) tablePath(name string) string {
	return filepath.Join(db.DataDir, name+".tbl")
}

// CreateTable creates a new table file, registers it in the catalog, and
// opens it.
func (db *Database) CreateTable(name string, schema *record.Schema) (*record.Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, ErrDatabaseClosed
	}
	if _, exists := db.catalog.Lookup(name); exists {
		return nil, fmt.Errorf("create table %q: %w", name, ErrTableExists)
	}

	path := db.tablePath(name)
	if err := record.CreateTable(path, schema); err != nil {
		return nil, err
	}
	if err := db.catalog.Add(name, path); err != nil {
		return nil, err
	}

	tbl, err := record.OpenTableWithOptions(path, db.TableOptions)
	if err != nil {
		return nil, err
	}
	db.open[name] = tbl

	slog.Debug("engine: created table", "name", name, "file", path)
	return tbl, nil
}

// OpenTable opens a previously created table, or returns the already-open
// handle if one exists.
func (db *Database) OpenTable(name string) (*record.Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, ErrDatabaseClosed
	}
	if tbl, ok := db.open[name]; ok {
		return tbl, nil
	}

	path, ok := db.catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("open table %q: %w", name, ErrTableNotFound)
	}

	tbl, err := record.OpenTableWithOptions(path, db.TableOptions)
	if err != nil {
		return nil, err
	}
	db.open[name] = tbl
	return tbl, nil
}

// CloseTable flushes and closes one open table. Closing a table that is
// not open is a no-op.
func (db *Database) CloseTable(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tbl, ok := db.open[name]
	if !ok {
		return nil
	}
	delete(db.open, name)
	return record.CloseTable(tbl)
}

// DeleteTable closes a table if open, removes its file, and deregisters
// it from the catalog.
func (db *Database) DeleteTable(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if tbl, ok := db.open[name]; ok {
		delete(db.open, name)
		if err := record.CloseTable(tbl); err != nil {
			slog.Warn("engine: close before delete failed", "table", name, "err", err)
		}
	}

	path, ok := db.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("delete table %q: %w", name, ErrTableNotFound)
	}
	if err := record.DeleteTable(path); err != nil {
		return err
	}
	return db.catalog.Remove(name)
}

// ListTables returns the catalog entry for every table registered in this
// database, open or not.
func (db *Database) ListTables() []catalog.TableMeta {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.catalog.List()
}

// Close flushes and shuts down every open table's buffer pool. It is safe
// to call more than once.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}

	var firstErr error
	for name, tbl := range db.open {
		if err := record.CloseTable(tbl); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(db.open, name)
	}
	db.closed = true
	return firstErr
}
