package record_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novasql/internal/record"
)

func testSchema() *record.Schema {
	return &record.Schema{
		Attrs: []record.Attribute{
			{Name: "id", Type: record.TypeInt},
			{Name: "name", Type: record.TypeString, Length: 10},
		},
		KeyAttrs: []int{0},
	}
}

func newTestTable(t *testing.T, schema *record.Schema) (*record.Table, string) {
	t.Helper()
	name := filepath.Join(t.TempDir(), "people.tbl")
	require.NoError(t, record.CreateTable(name, schema))
	tbl, err := record.OpenTable(name)
	require.NoError(t, err)
	return tbl, name
}

func makeRecord(t *testing.T, schema *record.Schema, id int64, name string) *record.Record {
	t.Helper()
	rec := record.NewRecord(int(schema.RecordSize()))
	require.NoError(t, record.SetAttr(rec, schema, 0, record.IntValue(id)))
	require.NoError(t, record.SetAttr(rec, schema, 1, record.StringValue(name)))
	return rec
}

func TestInsertDeleteReinsert(t *testing.T) {
	schema := testSchema()
	tbl, _ := newTestTable(t, schema)

	alice := makeRecord(t, schema, 1, "alice")
	require.NoError(t, tbl.InsertRecord(alice))
	require.Equal(t, record.RID{Page: 1, Slot: 0}, alice.ID)

	bob := makeRecord(t, schema, 2, "bob")
	require.NoError(t, tbl.InsertRecord(bob))
	require.Equal(t, record.RID{Page: 1, Slot: 1}, bob.ID)

	require.NoError(t, tbl.DeleteRecord(alice.ID))

	carl := makeRecord(t, schema, 3, "carl")
	require.NoError(t, tbl.InsertRecord(carl))
	require.Equal(t, record.RID{Page: 1, Slot: 0}, carl.ID)

	require.Equal(t, 2, tbl.GetNumTuples())

	require.NoError(t, record.CloseTable(tbl))
}

func TestScanWithPredicate(t *testing.T) {
	schema := testSchema()
	tbl, _ := newTestTable(t, schema)

	alice := makeRecord(t, schema, 1, "alice")
	require.NoError(t, tbl.InsertRecord(alice))
	bob := makeRecord(t, schema, 2, "bob")
	require.NoError(t, tbl.InsertRecord(bob))
	require.NoError(t, tbl.DeleteRecord(alice.ID))
	carl := makeRecord(t, schema, 3, "carl")
	require.NoError(t, tbl.InsertRecord(carl))

	atLeastTwo := func(rec *record.Record, s *record.Schema) bool {
		v, err := record.GetAttr(rec, s, 0)
		require.NoError(t, err)
		return v.I >= 2
	}

	scan := record.StartScan(tbl, atLeastTwo)
	var got []string
	for {
		var out record.Record
		err := scan.Next(&out)
		if err != nil {
			break
		}
		v, err := record.GetAttr(&out, schema, 1)
		require.NoError(t, err)
		got = append(got, v.S)
	}
	require.NoError(t, record.CloseScan(scan))
	// carl reuses alice's freed slot 0, which a lexicographic (page, slot)
	// scan visits before bob's slot 1.
	require.Equal(t, []string{"carl", "bob"}, got)

	require.NoError(t, record.CloseTable(tbl))
}

func TestGetAndUpdateRecord(t *testing.T) {
	schema := testSchema()
	tbl, _ := newTestTable(t, schema)

	alice := makeRecord(t, schema, 1, "alice")
	require.NoError(t, tbl.InsertRecord(alice))

	var fetched record.Record
	require.NoError(t, tbl.GetRecord(alice.ID, &fetched))
	require.Equal(t, alice.Data, fetched.Data)

	fetched.ID = alice.ID
	require.NoError(t, record.SetAttr(&fetched, schema, 1, record.StringValue("alicia")))
	require.NoError(t, tbl.UpdateRecord(&fetched))

	var reread record.Record
	require.NoError(t, tbl.GetRecord(alice.ID, &reread))
	v, err := record.GetAttr(&reread, schema, 1)
	require.NoError(t, err)
	require.Equal(t, "alicia", v.S)
	require.Equal(t, 1, tbl.GetNumTuples())

	require.NoError(t, record.CloseTable(tbl))
}

func TestFreeListWrap(t *testing.T) {
	schema := &record.Schema{
		Attrs: []record.Attribute{
			{Name: "blob", Type: record.TypeString, Length: 2000},
		},
	}
	tbl, _ := newTestTable(t, schema)
	require.Equal(t, 2, tbl.NumSlotsPerPage)

	var ids []record.RID
	for i := 0; i < 5; i++ {
		rec := record.NewRecord(int(schema.RecordSize()))
		require.NoError(t, tbl.InsertRecord(rec))
		ids = append(ids, rec.ID)
	}

	require.Equal(t, record.RID{Page: 1, Slot: 0}, ids[0])
	require.Equal(t, record.RID{Page: 1, Slot: 1}, ids[1])
	require.Equal(t, record.RID{Page: 2, Slot: 0}, ids[2])
	require.Equal(t, record.RID{Page: 2, Slot: 1}, ids[3])
	require.Equal(t, record.RID{Page: 3, Slot: 0}, ids[4])

	require.NoError(t, tbl.DeleteRecord(ids[0]))

	require.NoError(t, record.CloseTable(tbl))
}

func TestGetAttrSetAttrRoundTrip(t *testing.T) {
	schema := &record.Schema{
		Attrs: []record.Attribute{
			{Name: "a", Type: record.TypeInt},
			{Name: "b", Type: record.TypeFloat},
			{Name: "c", Type: record.TypeBool},
			{Name: "d", Type: record.TypeString, Length: 5},
		},
	}
	rec := record.NewRecord(int(schema.RecordSize()))

	require.NoError(t, record.SetAttr(rec, schema, 0, record.IntValue(42)))
	require.NoError(t, record.SetAttr(rec, schema, 1, record.FloatValue(3.5)))
	require.NoError(t, record.SetAttr(rec, schema, 2, record.BoolValue(true)))
	require.NoError(t, record.SetAttr(rec, schema, 3, record.StringValue("hi")))

	a, err := record.GetAttr(rec, schema, 0)
	require.NoError(t, err)
	require.EqualValues(t, 42, a.I)

	b, err := record.GetAttr(rec, schema, 1)
	require.NoError(t, err)
	require.InDelta(t, 3.5, b.F, 0.0001)

	c, err := record.GetAttr(rec, schema, 2)
	require.NoError(t, err)
	require.True(t, c.B)

	d, err := record.GetAttr(rec, schema, 3)
	require.NoError(t, err)
	require.Equal(t, "hi", d.S)
}

func TestCreateTableRefusesExisting(t *testing.T) {
	schema := testSchema()
	_, name := newTestTable(t, schema)

	err := record.CreateTable(name, schema)
	require.Error(t, err)
}

func TestDeleteRecordNotFound(t *testing.T) {
	schema := testSchema()
	tbl, _ := newTestTable(t, schema)

	err := tbl.DeleteRecord(record.RID{Page: 1, Slot: 0})
	require.ErrorIs(t, err, record.ErrRecordNotFound)

	require.NoError(t, record.CloseTable(tbl))
}
