package record

import "errors"

// ErrRecordNotFound is returned by GetRecord/UpdateRecord/DeleteRecord when
// the given RID's slot bit is not set: either it was never inserted, or it
// was already deleted.
var ErrRecordNotFound = errors.New("record: no record at given rid")

// ErrRecordTooLarge is returned by CreateTable when a single record of the
// schema's size cannot fit in a page alongside its bitmap and free-list
// pointers.
var ErrRecordTooLarge = errors.New("record: record size too large for one page")
