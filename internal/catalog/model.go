// Package catalog is the thin registry layer on top of the record
// manager: it remembers which table files exist inside a database
// directory so Database.OpenTable does not need the caller to already
// know a table's file name. The record manager's own header page remains
// the single source of truth for a table's schema and layout; this
// package only indexes table name -> file name.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TableMeta is the catalog's view of one table: enough to find its file
// and report when it was created, but not its schema (the record manager
// header page owns that).
type TableMeta struct {
	Name      string    `json:"name"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry is a JSON-backed index of the tables in one database directory.
type Registry struct {
	path   string
	tables map[string]TableMeta
}

const registryFile = "catalog.json"

// Open loads (or initializes) the registry for dataDir.
func Open(dataDir string) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("catalog: create data dir %q: %w", dataDir, err)
	}

	r := &Registry{
		path:   filepath.Join(dataDir, registryFile),
		tables: make(map[string]TableMeta),
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("catalog: read %q: %w", r.path, err)
	}

	var entries []TableMeta
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("catalog: parse %q: %w", r.path, err)
	}
	for _, e := range entries {
		r.tables[e.Name] = e
	}
	return r, nil
}

// Add registers a new table and persists the registry.
func (r *Registry) Add(name, fileName string) error {
	if _, exists := r.tables[name]; exists {
		return fmt.Errorf("catalog: table %q already registered", name)
	}
	r.tables[name] = TableMeta{Name: name, FileName: fileName, CreatedAt: time.Now()}
	return r.save()
}

// Remove deregisters a table and persists the registry.
func (r *Registry) Remove(name string) error {
	delete(r.tables, name)
	return r.save()
}

// Lookup returns the file name registered for name.
func (r *Registry) Lookup(name string) (string, bool) {
	meta, ok := r.tables[name]
	return meta.FileName, ok
}

// List returns every registered table, in no particular order.
func (r *Registry) List() []TableMeta {
	out := make([]TableMeta, 0, len(r.tables))
	for _, m := range r.tables {
		out = append(out, m)
	}
	return out
}

func (r *Registry) save() error {
	entries := r.List()
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: marshal registry: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("catalog: write %q: %w", r.path, err)
	}
	return nil
}
