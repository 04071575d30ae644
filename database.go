// Package novasql is the top-level facade for the NovaSQL storage kernel.
package novasql

import (
	"github.com/tuannm99/novasql/internal"
	"github.com/tuannm99/novasql/internal/engine"
	"github.com/tuannm99/novasql/internal/record"
)

// Open loads (or initializes) the database rooted at dataDir, with every
// table's buffer pool sized at record.DefaultBufferPoolFrames frames under
// LRU replacement.
func Open(dataDir string) (*Database, error) {
	return engine.Open(dataDir)
}

// OpenWithConfig loads (or initializes) the database rooted at dataDir,
// sizing and policying every table's buffer pool from cfg's BufferPool
// section instead of the built-in defaults.
func OpenWithConfig(dataDir string, cfg *internal.NovaSqlConfig) (*Database, error) {
	return engine.OpenWithOptions(dataDir, record.Options{
		NumFrames: cfg.BufferPool.NumFrames,
		Strategy:  cfg.ReplacementStrategy(),
	})
}
