// Package record is the record manager: it lays fixed-length records into
// bitmap-slotted data pages behind a buffer pool, maintains a doubly
// linked free-page list rooted at the table header, and serves
// predicate-filtered table scans.
package record

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tuannm99/novasql/internal/bufferpool"
	"github.com/tuannm99/novasql/internal/bufferpool/replacement"
	"github.com/tuannm99/novasql/internal/dberror"
	"github.com/tuannm99/novasql/internal/storage"
)

const logPrefix = "record: "

// DefaultBufferPoolFrames is the frame count OpenTable allocates when the
// caller does not override it.
const DefaultBufferPoolFrames = 1000

// Table is an open handle onto a fixed-length-record table: its schema,
// its derived page layout, and the buffer pool caching its pages.
type Table struct {
	FileName        string
	Schema          *Schema
	RecordSize      int
	NumSlotsPerPage int

	pool         *bufferpool.Pool
	numTuples    uint32
	nextFreePage uint32
	nextNewPage  int32
}

// CreateTable creates a new one-page table file: the header page encodes
// recordSize, numSlotsPerPage, and the schema blob; no data pages exist
// yet. It fails if a file of that name already exists.
func CreateTable(name string, schema *Schema) error {
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("create table %q: %w", name, dberror.ErrFileAlreadyExists)
	}

	recordSize := schema.RecordSize()
	numSlots := computeNumSlotsPerPage(recordSize, storage.PageSize)
	if numSlots < 1 {
		return fmt.Errorf("create table %q: %w", name, ErrRecordTooLarge)
	}

	if err := storage.CreatePageFile(name); err != nil {
		return err
	}

	fh, err := storage.OpenPageFile(name)
	if err != nil {
		return err
	}
	defer func() { _ = storage.ClosePageFile(fh) }()

	buf := make([]byte, storage.PageSize)
	h := &tableHeader{
		RecordSize:      recordSize,
		NumTuples:       0,
		NextFreePage:    0,
		NumSlotsPerPage: uint16(numSlots),
		Schema:          schema,
	}
	if err := encodeHeader(buf, h); err != nil {
		return err
	}

	if err := storage.WriteBlock(0, fh, buf); err != nil {
		return err
	}

	slog.Debug(logPrefix+"created table", "file", name, "recordSize", recordSize, "numSlotsPerPage", numSlots)
	return nil
}

// Options configures the buffer pool OpenTableWithOptions attaches to a
// table: how many frames it gets and which replacement policy it runs.
type Options struct {
	NumFrames int
	Strategy  replacement.Strategy
}

// defaultOptions returns the pool sizing OpenTable uses when the caller
// does not care: DefaultBufferPoolFrames frames under LRU replacement.
func defaultOptions() Options {
	return Options{NumFrames: DefaultBufferPoolFrames, Strategy: replacement.LRU}
}

// OpenTable opens an existing table file, attaching a buffer pool of
// DefaultBufferPoolFrames frames using LRU replacement, and materializes
// the schema from the header page.
func OpenTable(name string) (*Table, error) {
	return OpenTableWithOptions(name, defaultOptions())
}

// OpenTableWithOptions opens an existing table file the same way OpenTable
// does, but sizes and policies its buffer pool per opts instead of the
// package defaults. A non-positive opts.NumFrames falls back to
// DefaultBufferPoolFrames.
func OpenTableWithOptions(name string, opts Options) (*Table, error) {
	numFrames := opts.NumFrames
	if numFrames < 1 {
		numFrames = DefaultBufferPoolFrames
	}

	pool, err := bufferpool.InitBufferPool(name, numFrames, opts.Strategy)
	if err != nil {
		return nil, err
	}

	var ph bufferpool.PageHandle
	if err := pool.PinPage(&ph, 0); err != nil {
		return nil, err
	}
	h, err := decodeHeader(ph.Data)
	if err != nil {
		_ = pool.UnpinPage(&ph)
		return nil, err
	}
	if err := pool.UnpinPage(&ph); err != nil {
		return nil, err
	}

	t := &Table{
		FileName:        name,
		Schema:          h.Schema,
		RecordSize:      int(h.RecordSize),
		NumSlotsPerPage: int(h.NumSlotsPerPage),
		pool:            pool,
		numTuples:       h.NumTuples,
		nextFreePage:    h.NextFreePage,
		nextNewPage:     int32(pool.TotalPages()),
	}
	slog.Debug(logPrefix+"opened table", "file", name, "numTuples", t.numTuples)
	return t, nil
}

// CloseTable flushes and tears down the table's buffer pool.
func CloseTable(t *Table) error {
	return t.pool.ShutdownBufferPool()
}

// DeleteTable removes the table's file from disk. The table must already
// be closed.
func DeleteTable(name string) error {
	return storage.DestroyPageFile(name)
}

// GetNumTuples returns the table's live record count.
func (t *Table) GetNumTuples() int {
	return int(t.numTuples)
}

// GetRecordSize returns the fixed byte size of one record in this table.
func (t *Table) GetRecordSize() int {
	return t.RecordSize
}

// PoolStrategy returns the replacement policy backing this table's buffer
// pool.
func (t *Table) PoolStrategy() replacement.Strategy {
	return t.pool.Strategy
}

func (t *Table) flushHeader() error {
	var ph bufferpool.PageHandle
	if err := t.pool.PinPage(&ph, 0); err != nil {
		return err
	}
	setHeaderNumTuples(ph.Data, t.numTuples)
	setHeaderNextFreePage(ph.Data, t.nextFreePage)
	if err := t.pool.MarkDirty(&ph); err != nil {
		_ = t.pool.UnpinPage(&ph)
		return err
	}
	return t.pool.UnpinPage(&ph)
}

// allocateFreePage takes the next never-used page number, stages it in a
// frame as an all-empty, dirty data page with no free-list links, and
// returns it. It does not touch the list head; the caller makes the page
// the head of the (empty) free-page list.
func (t *Table) allocateFreePage() (int32, error) {
	p := t.nextNewPage
	t.nextNewPage++

	var ph bufferpool.PageHandle
	if err := t.pool.PinPage(&ph, p); err != nil {
		return 0, err
	}
	initDataPage(ph.Data, t.NumSlotsPerPage)
	setPrevFreePage(ph.Data, 0)
	setNextFreePage(ph.Data, 0)
	if err := t.pool.MarkDirty(&ph); err != nil {
		_ = t.pool.UnpinPage(&ph)
		return 0, err
	}
	if err := t.pool.UnpinPage(&ph); err != nil {
		return 0, err
	}

	return p, nil
}

// detachFromFreeList removes page p, whose free-list pointers are prev and
// next, from the list.
func (t *Table) detachFromFreeList(p, prev, next int32) error {
	if prev == 0 {
		t.nextFreePage = uint32(next)
	} else {
		var ph bufferpool.PageHandle
		if err := t.pool.PinPage(&ph, prev); err != nil {
			return err
		}
		setNextFreePage(ph.Data, uint32(next))
		if err := t.pool.MarkDirty(&ph); err != nil {
			_ = t.pool.UnpinPage(&ph)
			return err
		}
		if err := t.pool.UnpinPage(&ph); err != nil {
			return err
		}
	}

	if next != 0 {
		var ph bufferpool.PageHandle
		if err := t.pool.PinPage(&ph, next); err != nil {
			return err
		}
		setPrevFreePage(ph.Data, uint32(prev))
		if err := t.pool.MarkDirty(&ph); err != nil {
			_ = t.pool.UnpinPage(&ph)
			return err
		}
		if err := t.pool.UnpinPage(&ph); err != nil {
			return err
		}
	}

	return nil
}

// pushFreeList makes page p the new head of the free-page list, whose
// previous head was oldHead.
func (t *Table) pushFreeList(p int32, oldHead uint32) error {
	if oldHead != 0 {
		var ph bufferpool.PageHandle
		if err := t.pool.PinPage(&ph, int32(oldHead)); err != nil {
			return err
		}
		setPrevFreePage(ph.Data, uint32(p))
		if err := t.pool.MarkDirty(&ph); err != nil {
			_ = t.pool.UnpinPage(&ph)
			return err
		}
		if err := t.pool.UnpinPage(&ph); err != nil {
			return err
		}
	}
	t.nextFreePage = uint32(p)
	return nil
}

// InsertRecord writes rec.Data into the first available slot of the head
// of the free-page list (allocating a new page if the list is empty),
// sets rec.ID to the chosen (page, slot), and updates numTuples.
func (t *Table) InsertRecord(rec *Record) error {
	p := int32(t.nextFreePage)
	if p == 0 {
		newPage, err := t.allocateFreePage()
		if err != nil {
			return err
		}
		p = newPage
		t.nextFreePage = uint32(p)
	}

	var ph bufferpool.PageHandle
	if err := t.pool.PinPage(&ph, p); err != nil {
		return err
	}

	slot := firstClearBit(ph.Data, t.NumSlotsPerPage)
	if slot == -1 {
		_ = t.pool.UnpinPage(&ph)
		return fmt.Errorf("insert into %q: %w", t.FileName, dberror.ErrNoFreePages)
	}

	off := slotOffset(t.NumSlotsPerPage, t.RecordSize, slot)
	copy(ph.Data[off:off+t.RecordSize], rec.Data)
	setBit(ph.Data, slot)
	rec.ID = RID{Page: p, Slot: int32(slot)}

	full := isFull(ph.Data, t.NumSlotsPerPage)
	var prev, next uint32
	if full {
		prev = getPrevFreePage(ph.Data)
		next = getNextFreePage(ph.Data)
	}

	if err := t.pool.MarkDirty(&ph); err != nil {
		_ = t.pool.UnpinPage(&ph)
		return err
	}
	if err := t.pool.UnpinPage(&ph); err != nil {
		return err
	}

	if full {
		if err := t.detachFromFreeList(p, int32(prev), int32(next)); err != nil {
			return err
		}
	}

	t.numTuples++
	if err := t.flushHeader(); err != nil {
		return err
	}

	slog.Debug(logPrefix+"inserted", "file", t.FileName, "rid", rec.ID)
	return nil
}

// DeleteRecord clears the slot at id, zeroing its bytes, re-linking the
// page into the free list if it was previously full, and decrementing
// numTuples.
func (t *Table) DeleteRecord(id RID) error {
	var ph bufferpool.PageHandle
	if err := t.pool.PinPage(&ph, id.Page); err != nil {
		return err
	}

	if !bitSet(ph.Data, int(id.Slot)) {
		_ = t.pool.UnpinPage(&ph)
		return fmt.Errorf("delete %v from %q: %w", id, t.FileName, ErrRecordNotFound)
	}

	wasFull := isFull(ph.Data, t.NumSlotsPerPage)

	off := slotOffset(t.NumSlotsPerPage, t.RecordSize, int(id.Slot))
	for i := off; i < off+t.RecordSize; i++ {
		ph.Data[i] = 0
	}
	clearBit(ph.Data, int(id.Slot))

	if err := t.pool.MarkDirty(&ph); err != nil {
		_ = t.pool.UnpinPage(&ph)
		return err
	}
	if err := t.pool.UnpinPage(&ph); err != nil {
		return err
	}

	if wasFull {
		oldHead := t.nextFreePage
		var phLinks bufferpool.PageHandle
		if err := t.pool.PinPage(&phLinks, id.Page); err != nil {
			return err
		}
		setPrevFreePage(phLinks.Data, 0)
		setNextFreePage(phLinks.Data, oldHead)
		if err := t.pool.MarkDirty(&phLinks); err != nil {
			_ = t.pool.UnpinPage(&phLinks)
			return err
		}
		if err := t.pool.UnpinPage(&phLinks); err != nil {
			return err
		}
		if err := t.pushFreeList(id.Page, oldHead); err != nil {
			return err
		}
	}

	t.numTuples--
	if err := t.flushHeader(); err != nil {
		return err
	}

	slog.Debug(logPrefix+"deleted", "file", t.FileName, "rid", id)
	return nil
}

// GetRecord reads the slot at id into rec.Data and sets rec.ID to id.
func (t *Table) GetRecord(id RID, rec *Record) error {
	var ph bufferpool.PageHandle
	if err := t.pool.PinPage(&ph, id.Page); err != nil {
		return err
	}
	defer func() { _ = t.pool.UnpinPage(&ph) }()

	if !bitSet(ph.Data, int(id.Slot)) {
		return fmt.Errorf("get %v from %q: %w", id, t.FileName, ErrRecordNotFound)
	}

	off := slotOffset(t.NumSlotsPerPage, t.RecordSize, int(id.Slot))
	if len(rec.Data) != t.RecordSize {
		rec.Data = make([]byte, t.RecordSize)
	}
	copy(rec.Data, ph.Data[off:off+t.RecordSize])
	rec.ID = id
	return nil
}

// UpdateRecord overwrites the slot at rec.ID with rec.Data in place.
func (t *Table) UpdateRecord(rec *Record) error {
	var ph bufferpool.PageHandle
	if err := t.pool.PinPage(&ph, rec.ID.Page); err != nil {
		return err
	}
	defer func() { _ = t.pool.UnpinPage(&ph) }()

	if !bitSet(ph.Data, int(rec.ID.Slot)) {
		return fmt.Errorf("update %v in %q: %w", rec.ID, t.FileName, ErrRecordNotFound)
	}

	off := slotOffset(t.NumSlotsPerPage, t.RecordSize, int(rec.ID.Slot))
	copy(ph.Data[off:off+t.RecordSize], rec.Data)
	return t.pool.MarkDirty(&ph)
}
