package novasql_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	novasql "github.com/tuannm99/novasql"
	"github.com/tuannm99/novasql/internal/record"
)

func TestDatabaseCreateOpenInsertRoundTrip(t *testing.T) {
	db, err := novasql.Open(t.TempDir())
	require.NoError(t, err)

	schema := &record.Schema{
		Attrs: []record.Attribute{
			{Name: "id", Type: record.TypeInt},
			{Name: "name", Type: record.TypeString, Length: 16},
		},
	}

	tbl, err := db.CreateTable("users", schema)
	require.NoError(t, err)

	rec := record.NewRecord(int(schema.RecordSize()))
	require.NoError(t, record.SetAttr(rec, schema, 0, record.IntValue(7)))
	require.NoError(t, record.SetAttr(rec, schema, 1, record.StringValue("dana")))
	require.NoError(t, tbl.InsertRecord(rec))

	require.NoError(t, db.CloseTable("users"))

	reopened, err := db.OpenTable("users")
	require.NoError(t, err)
	require.Equal(t, 1, reopened.GetNumTuples())

	var fetched record.Record
	require.NoError(t, reopened.GetRecord(rec.ID, &fetched))
	v, err := record.GetAttr(&fetched, schema, 1)
	require.NoError(t, err)
	require.Equal(t, "dana", v.S)

	require.NoError(t, db.Close())
}

func TestDatabaseDeleteTable(t *testing.T) {
	db, err := novasql.Open(t.TempDir())
	require.NoError(t, err)

	schema := &record.Schema{
		Attrs: []record.Attribute{{Name: "id", Type: record.TypeInt}},
	}
	_, err = db.CreateTable("scratch", schema)
	require.NoError(t, err)

	require.NoError(t, db.DeleteTable("scratch"))

	_, err = db.OpenTable("scratch")
	require.Error(t, err)

	require.NoError(t, db.Close())
}

func TestDatabaseRejectsDuplicateTable(t *testing.T) {
	db, err := novasql.Open(t.TempDir())
	require.NoError(t, err)

	schema := &record.Schema{
		Attrs: []record.Attribute{{Name: "id", Type: record.TypeInt}},
	}
	_, err = db.CreateTable("dup", schema)
	require.NoError(t, err)

	_, err = db.CreateTable("dup", schema)
	require.Error(t, err)

	require.NoError(t, db.Close())
}
