package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novasql/internal/bufferpool/replacement"
	"github.com/tuannm99/novasql/internal/engine"
	"github.com/tuannm99/novasql/internal/record"
)

func testSchema() *record.Schema {
	return &record.Schema{
		Attrs: []record.Attribute{
			{Name: "id", Type: record.TypeInt},
			{Name: "name", Type: record.TypeString, Length: 16},
		},
	}
}

func TestOpenTableReusesAlreadyOpenHandle(t *testing.T) {
	db, err := engine.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	first, err := db.CreateTable("users", testSchema())
	require.NoError(t, err)

	second, err := db.OpenTable("users")
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestOpenTableUnknownNameFails(t *testing.T) {
	db, err := engine.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.OpenTable("missing")
	require.ErrorIs(t, err, engine.ErrTableNotFound)
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	db, err := engine.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.CreateTable("users", testSchema())
	require.NoError(t, err)

	_, err = db.CreateTable("users", testSchema())
	require.ErrorIs(t, err, engine.ErrTableExists)
}

func TestDeleteTableRemovesFromCatalog(t *testing.T) {
	db, err := engine.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.CreateTable("users", testSchema())
	require.NoError(t, err)
	require.NoError(t, db.DeleteTable("users"))

	require.Empty(t, db.ListTables())
	_, err = db.OpenTable("users")
	require.Error(t, err)
}

func TestCloseIsIdempotentAndBlocksFurtherUse(t *testing.T) {
	db, err := engine.Open(t.TempDir())
	require.NoError(t, err)

	_, err = db.CreateTable("users", testSchema())
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.CreateTable("orders", testSchema())
	require.ErrorIs(t, err, engine.ErrDatabaseClosed)
}

func TestOpenWithOptionsThreadsStrategyToTables(t *testing.T) {
	db, err := engine.OpenWithOptions(t.TempDir(), record.Options{
		NumFrames: 5,
		Strategy:  replacement.CLOCK,
	})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	tbl, err := db.CreateTable("users", testSchema())
	require.NoError(t, err)
	require.Equal(t, replacement.CLOCK, tbl.PoolStrategy())
}
