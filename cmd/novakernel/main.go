// novakernel is an interactive shell over the storage kernel: it drives a
// single local novasql.Database directly, with no network hop and no SQL
// parser. Commands operate on tables and raw records so the buffer pool
// and record manager can be exercised and inspected by hand.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	novasql "github.com/tuannm99/novasql"
	"github.com/tuannm99/novasql/internal"
	"github.com/tuannm99/novasql/internal/record"
)

// ---- History (own file, independent of readline's in-memory ring) ----

type History struct {
	path  string
	lines []string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

func (h *History) Load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		h.lines = append(h.lines, s)
		if max > 0 && len(h.lines) > max {
			h.lines = h.lines[len(h.lines)-max:]
		}
	}
	return sc.Err()
}

func (h *History) Append(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return err
	}
	h.lines = append(h.lines, line)
	return nil
}

func (h *History) Print(last int) {
	if last <= 0 || last > len(h.lines) {
		last = len(h.lines)
	}
	start := len(h.lines) - last
	if start < 0 {
		start = 0
	}
	for i := start; i < len(h.lines); i++ {
		fmt.Printf("%5d  %s\n", i+1, h.lines[i])
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novakernel_history"
	}
	return filepath.Join(home, ".novakernel_history")
}

// ---- schema mini-syntax: name:type[:length] name:type[:length] ... ----

func parseSchema(tokens []string) (*record.Schema, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("create requires at least one attribute, e.g. id:int name:string:16")
	}
	schema := &record.Schema{}
	for _, tok := range tokens {
		parts := strings.Split(tok, ":")
		attr := record.Attribute{Name: parts[0]}
		if len(parts) < 2 {
			return nil, fmt.Errorf("attribute %q needs a type", tok)
		}
		switch strings.ToLower(parts[1]) {
		case "int":
			attr.Type = record.TypeInt
		case "float":
			attr.Type = record.TypeFloat
		case "bool":
			attr.Type = record.TypeBool
		case "string":
			attr.Type = record.TypeString
			if len(parts) < 3 {
				return nil, fmt.Errorf("attribute %q: string type requires a length", tok)
			}
			length, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("attribute %q: invalid length: %w", tok, err)
			}
			attr.Length = uint16(length)
		default:
			return nil, fmt.Errorf("attribute %q: unknown type %q", tok, parts[1])
		}
		schema.Attrs = append(schema.Attrs, attr)
	}
	return schema, nil
}

func parseValues(schema *record.Schema, tokens []string) (*record.Record, error) {
	if len(tokens) != len(schema.Attrs) {
		return nil, fmt.Errorf("expected %d values, got %d", len(schema.Attrs), len(tokens))
	}
	rec := record.NewRecord(int(schema.RecordSize()))
	for i, attr := range schema.Attrs {
		var val record.Value
		switch attr.Type {
		case record.TypeInt:
			n, err := strconv.ParseInt(tokens[i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
			}
			val = record.IntValue(n)
		case record.TypeFloat:
			f, err := strconv.ParseFloat(tokens[i], 64)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
			}
			val = record.FloatValue(f)
		case record.TypeBool:
			b, err := strconv.ParseBool(tokens[i])
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
			}
			val = record.BoolValue(b)
		case record.TypeString:
			val = record.StringValue(tokens[i])
		}
		if err := record.SetAttr(rec, schema, i, val); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func printRecord(rec *record.Record, schema *record.Schema) {
	fmt.Printf("%s:", rec.ID)
	for i, attr := range schema.Attrs {
		v, err := record.GetAttr(rec, schema, i)
		if err != nil {
			fmt.Printf(" %s=<err>", attr.Name)
			continue
		}
		switch attr.Type {
		case record.TypeInt:
			fmt.Printf(" %s=%d", attr.Name, v.I)
		case record.TypeFloat:
			fmt.Printf(" %s=%g", attr.Name, v.F)
		case record.TypeBool:
			fmt.Printf(" %s=%t", attr.Name, v.B)
		case record.TypeString:
			fmt.Printf(" %s=%q", attr.Name, v.S)
		}
	}
	fmt.Println()
}

const helpText = `meta commands:
  \q | quit | exit      quit
  \history               print command history
  \help                  show this help

table commands:
  create <table> <attr:type[:len]>...   e.g. create users id:int name:string:16
  tables                                  list known tables
  open <table>                            open an existing table
  close <table>                           flush and close a table
  delete-table <table>                    remove a table file entirely
  insert <table> <v1> <v2> ...            insert one record
  get <table> <page> <slot>               fetch one record by rid
  delete <table> <page> <slot>            delete one record by rid
  scan <table>                            print every live record
  count <table>                           print the table's live tuple count`

// openDatabase opens dataDir directly when cfgPath is empty, or loads
// cfgPath and uses its buffer pool frame count and replacement strategy
// instead of the package defaults.
func openDatabase(dataDir, cfgPath string) (*novasql.Database, error) {
	if cfgPath == "" {
		return novasql.Open(dataDir)
	}
	cfg, err := internal.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", cfgPath, err)
	}
	return novasql.OpenWithConfig(dataDir, cfg)
}

func main() {
	var (
		dataDir  = flag.String("datadir", "./novakernel-data", "database directory")
		cfgPath  = flag.String("config", "", "path to a novasql yaml config (buffer pool frame count and replacement strategy)")
		histPath = flag.String("history", defaultHistoryPath(), "history file path")
		histMax  = flag.Int("history-max", 2000, "max history lines loaded into memory")
	)
	flag.Parse()

	db, err := openDatabase(*dataDir, *cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	schemas := make(map[string]*record.Schema)

	h := NewHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "novakernel> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	fmt.Printf("novakernel on %s\n", *dataDir)
	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "\\q" || line == "quit" || line == "exit" {
			return
		}
		if line == "\\help" {
			fmt.Println(helpText)
			continue
		}
		if line == "\\history" {
			h.Print(50)
			continue
		}

		_ = h.Append(line)
		_ = rl.SaveHistory(line)

		if err := dispatch(db, schemas, line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func dispatch(db *novasql.Database, schemas map[string]*record.Schema, line string) error {
	tokens := strings.Fields(line)
	cmd, args := tokens[0], tokens[1:]

	switch cmd {
	case "create":
		if len(args) < 1 {
			return fmt.Errorf("usage: create <table> <attr:type[:len]>...")
		}
		schema, err := parseSchema(args[1:])
		if err != nil {
			return err
		}
		if _, err := db.CreateTable(args[0], schema); err != nil {
			return err
		}
		schemas[args[0]] = schema
		fmt.Printf("created table %q\n", args[0])
		return nil

	case "tables":
		for _, meta := range db.ListTables() {
			fmt.Printf("%s\t%s\n", meta.Name, meta.FileName)
		}
		return nil

	case "open":
		if len(args) != 1 {
			return fmt.Errorf("usage: open <table>")
		}
		tbl, err := db.OpenTable(args[0])
		if err != nil {
			return err
		}
		schemas[args[0]] = tbl.Schema
		fmt.Printf("opened %q (%d tuples)\n", args[0], tbl.GetNumTuples())
		return nil

	case "close":
		if len(args) != 1 {
			return fmt.Errorf("usage: close <table>")
		}
		return db.CloseTable(args[0])

	case "delete-table":
		if len(args) != 1 {
			return fmt.Errorf("usage: delete-table <table>")
		}
		delete(schemas, args[0])
		return db.DeleteTable(args[0])

	case "insert":
		if len(args) < 1 {
			return fmt.Errorf("usage: insert <table> <values...>")
		}
		tbl, schema, err := resolve(db, schemas, args[0])
		if err != nil {
			return err
		}
		rec, err := parseValues(schema, args[1:])
		if err != nil {
			return err
		}
		if err := tbl.InsertRecord(rec); err != nil {
			return err
		}
		fmt.Printf("inserted %s\n", rec.ID)
		return nil

	case "get":
		if len(args) != 3 {
			return fmt.Errorf("usage: get <table> <page> <slot>")
		}
		tbl, schema, err := resolve(db, schemas, args[0])
		if err != nil {
			return err
		}
		rid, err := parseRID(args[1], args[2])
		if err != nil {
			return err
		}
		var rec record.Record
		if err := tbl.GetRecord(rid, &rec); err != nil {
			return err
		}
		printRecord(&rec, schema)
		return nil

	case "delete":
		if len(args) != 3 {
			return fmt.Errorf("usage: delete <table> <page> <slot>")
		}
		tbl, _, err := resolve(db, schemas, args[0])
		if err != nil {
			return err
		}
		rid, err := parseRID(args[1], args[2])
		if err != nil {
			return err
		}
		return tbl.DeleteRecord(rid)

	case "scan":
		if len(args) != 1 {
			return fmt.Errorf("usage: scan <table>")
		}
		tbl, schema, err := resolve(db, schemas, args[0])
		if err != nil {
			return err
		}
		scan := record.StartScan(tbl, nil)
		defer func() { _ = record.CloseScan(scan) }()
		for {
			var rec record.Record
			if err := scan.Next(&rec); err != nil {
				break
			}
			printRecord(&rec, schema)
		}
		return nil

	case "count":
		if len(args) != 1 {
			return fmt.Errorf("usage: count <table>")
		}
		tbl, _, err := resolve(db, schemas, args[0])
		if err != nil {
			return err
		}
		fmt.Println(tbl.GetNumTuples())
		return nil

	default:
		return fmt.Errorf("unknown command %q (try \\help)", cmd)
	}
}

func resolve(db *novasql.Database, schemas map[string]*record.Schema, name string) (*record.Table, *record.Schema, error) {
	tbl, err := db.OpenTable(name)
	if err != nil {
		return nil, nil, err
	}
	schema, ok := schemas[name]
	if !ok {
		schema = tbl.Schema
		schemas[name] = schema
	}
	return tbl, schema, nil
}

func parseRID(pageStr, slotStr string) (record.RID, error) {
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return record.RID{}, fmt.Errorf("invalid page %q: %w", pageStr, err)
	}
	slot, err := strconv.Atoi(slotStr)
	if err != nil {
		return record.RID{}, fmt.Errorf("invalid slot %q: %w", slotStr, err)
	}
	return record.RID{Page: int32(page), Slot: int32(slot)}, nil
}
