// Command record-smoketest creates a table, inserts ten rows, updates one
// and deletes one, then scans what remains and prints the rows whose
// active flag is set, followed by the remaining tuple count.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tuannm99/novasql/internal/record"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	path := filepath.Join(os.TempDir(), "novasql-record-smoketest.tbl")
	_ = os.Remove(path)

	schema := &record.Schema{
		Attrs: []record.Attribute{
			{Name: "id", Type: record.TypeInt},
			{Name: "name", Type: record.TypeString, Length: 16},
			{Name: "active", Type: record.TypeBool},
		},
	}

	if err := record.CreateTable(path, schema); err != nil {
		log.Fatalf("create table: %v", err)
	}

	tbl, err := record.OpenTable(path)
	if err != nil {
		log.Fatalf("open table: %v", err)
	}
	defer func() {
		if err := record.CloseTable(tbl); err != nil {
			log.Printf("close table: %v", err)
		}
	}()

	var ids []record.RID
	fmt.Println("inserting rows...")
	for i := 1; i <= 10; i++ {
		rec := record.NewRecord(int(schema.RecordSize()))
		_ = record.SetAttr(rec, schema, 0, record.IntValue(int64(i)))
		_ = record.SetAttr(rec, schema, 1, record.StringValue(fmt.Sprintf("user-%d", i)))
		_ = record.SetAttr(rec, schema, 2, record.BoolValue(i%2 == 0))
		if err := tbl.InsertRecord(rec); err != nil {
			log.Fatalf("insert row %d: %v", i, err)
		}
		ids = append(ids, rec.ID)
	}

	fmt.Println("updating row 1...")
	updated := record.NewRecord(int(schema.RecordSize()))
	updated.ID = ids[0]
	_ = record.SetAttr(updated, schema, 0, record.IntValue(1))
	_ = record.SetAttr(updated, schema, 1, record.StringValue("user-1-updated"))
	_ = record.SetAttr(updated, schema, 2, record.BoolValue(true))
	if err := tbl.UpdateRecord(updated); err != nil {
		log.Fatalf("update row 1: %v", err)
	}

	fmt.Println("deleting row with id=5...")
	if err := tbl.DeleteRecord(ids[4]); err != nil {
		log.Fatalf("delete row 5: %v", err)
	}

	fmt.Println("scan after CRUD:")
	scan := record.StartScan(tbl, func(rec *record.Record, s *record.Schema) bool {
		active, err := record.GetAttr(rec, s, 2)
		return err == nil && active.B
	})
	defer func() { _ = record.CloseScan(scan) }()

	for {
		var rec record.Record
		if err := scan.Next(&rec); err != nil {
			break
		}
		id, _ := record.GetAttr(&rec, schema, 0)
		name, _ := record.GetAttr(&rec, schema, 1)
		fmt.Printf("RID=%s id=%d name=%q\n", rec.ID, id.I, name.S)
	}

	fmt.Printf("tuples remaining: %d\n", tbl.GetNumTuples())
	fmt.Println("record smoketest finished")
}
