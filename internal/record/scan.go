package record

import (
	"github.com/tuannm99/novasql/internal/bufferpool"
	"github.com/tuannm99/novasql/internal/dberror"
)

// Predicate is the opaque boolean test a scan applies to each live record.
// The record manager never builds or evaluates expressions itself; a
// predicate is supplied by whatever layer understands the query. A nil
// predicate matches every live record.
type Predicate func(rec *Record, schema *Schema) bool

// Scan is a cursor over a table's live records, advancing in
// (pageNum, slotNum) lexicographic order starting at page 1, slot 0 (page
// 0 is the header and is never scanned).
type Scan struct {
	table   *Table
	pred    Predicate
	pageNum int32
	slotNum int32
}

// StartScan positions a new scan cursor at the start of the table's data
// pages.
func StartScan(t *Table, pred Predicate) *Scan {
	return &Scan{table: t, pred: pred, pageNum: 1, slotNum: 0}
}

// Next advances the cursor to the next record matching the scan's
// predicate and copies it into rec. It returns dberror.ErrNoMoreTuples
// once the cursor walks past the last page the table has ever allocated.
func (s *Scan) Next(rec *Record) error {
	t := s.table
	for {
		if s.pageNum >= t.nextNewPage {
			return dberror.ErrNoMoreTuples
		}
		if int(s.slotNum) >= t.NumSlotsPerPage {
			s.pageNum++
			s.slotNum = 0
			continue
		}

		var ph bufferpool.PageHandle
		if err := t.pool.PinPage(&ph, s.pageNum); err != nil {
			return err
		}

		slot := s.slotNum
		s.slotNum++

		if !bitSet(ph.Data, int(slot)) {
			if err := t.pool.UnpinPage(&ph); err != nil {
				return err
			}
			continue
		}

		off := slotOffset(t.NumSlotsPerPage, t.RecordSize, int(slot))
		candidate := &Record{
			ID:   RID{Page: s.pageNum, Slot: slot},
			Data: make([]byte, t.RecordSize),
		}
		copy(candidate.Data, ph.Data[off:off+t.RecordSize])

		if err := t.pool.UnpinPage(&ph); err != nil {
			return err
		}

		if s.pred != nil && !s.pred(candidate, t.Schema) {
			continue
		}

		rec.ID = candidate.ID
		rec.Data = candidate.Data
		return nil
	}
}

// CloseScan releases the scan. It holds no resources of its own beyond the
// cursor, so this is a no-op besides making the intent explicit at call
// sites.
func CloseScan(s *Scan) error {
	return nil
}
