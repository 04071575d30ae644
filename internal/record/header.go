package record

import (
	"fmt"

	"github.com/tuannm99/novasql/internal/alias/bx"
)

// tableHeader is the binary layout of page 0 of a table file:
//
//	recordSize      u16
//	numTuples       u32
//	nextFreePage    u32
//	numSlotsPerPage u16
//	schemaSize      u16
//	schema blob     (schemaSize bytes, see encodeSchema)
type tableHeader struct {
	RecordSize      uint16
	NumTuples       uint32
	NextFreePage    uint32
	NumSlotsPerPage uint16
	SchemaSize      uint16
	Schema          *Schema
}

const headerFixedSize = 2 + 4 + 4 + 2 + 2

const (
	headerRecordSizeOff      = 0
	headerNumTuplesOff       = 2
	headerNextFreePageOff    = 6
	headerNumSlotsPerPageOff = 10
	headerSchemaSizeOff      = 12
)

// getHeaderNumTuples and the sibling accessors below read or write a single
// scalar header field in place, without decoding the trailing schema blob.
// Table uses these on every insert/delete so that a mutation only costs one
// pin of the header frame instead of a full schema re-parse.
func getHeaderNumTuples(page []byte) uint32 { return bx.U32At(page, headerNumTuplesOff) }

func setHeaderNumTuples(page []byte, v uint32) { bx.PutU32At(page, headerNumTuplesOff, v) }

func getHeaderNextFreePage(page []byte) uint32 { return bx.U32At(page, headerNextFreePageOff) }

func setHeaderNextFreePage(page []byte, v uint32) { bx.PutU32At(page, headerNextFreePageOff, v) }

func encodeSchema(s *Schema) []byte {
	size := 2 + len(s.Attrs)*4 + 2 + len(s.KeyAttrs)*2
	for _, a := range s.Attrs {
		size += 2 + len(a.Name)
	}
	buf := make([]byte, size)
	off := 0

	bx.PutU16At(buf, off, uint16(len(s.Attrs)))
	off += 2
	for _, a := range s.Attrs {
		bx.PutU16At(buf, off, uint16(a.Type))
		off += 2
		bx.PutU16At(buf, off, a.Length)
		off += 2
	}

	bx.PutU16At(buf, off, uint16(len(s.KeyAttrs)))
	off += 2
	for _, k := range s.KeyAttrs {
		bx.PutU16At(buf, off, uint16(k))
		off += 2
	}

	for _, a := range s.Attrs {
		bx.PutU16At(buf, off, uint16(len(a.Name)))
		off += 2
		copy(buf[off:], a.Name)
		off += len(a.Name)
	}

	return buf
}

func decodeSchema(buf []byte) (*Schema, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("record: schema blob too short")
	}
	off := 0
	numAttr := int(bx.U16At(buf, off))
	off += 2

	types := make([]DataType, numAttr)
	lengths := make([]uint16, numAttr)
	for i := 0; i < numAttr; i++ {
		types[i] = DataType(bx.U16At(buf, off))
		off += 2
		lengths[i] = bx.U16At(buf, off)
		off += 2
	}

	keySize := int(bx.U16At(buf, off))
	off += 2
	keyAttrs := make([]int, keySize)
	for i := 0; i < keySize; i++ {
		keyAttrs[i] = int(bx.U16At(buf, off))
		off += 2
	}

	attrs := make([]Attribute, numAttr)
	for i := 0; i < numAttr; i++ {
		nameLen := int(bx.U16At(buf, off))
		off += 2
		name := string(buf[off : off+nameLen])
		off += nameLen
		attrs[i] = Attribute{Name: name, Type: types[i], Length: lengths[i]}
	}

	return &Schema{Attrs: attrs, KeyAttrs: keyAttrs}, nil
}

func encodeHeader(page []byte, h *tableHeader) error {
	blob := encodeSchema(h.Schema)
	if headerFixedSize+len(blob) > len(page) {
		return fmt.Errorf("record: header does not fit in one page")
	}

	off := 0
	bx.PutU16At(page, off, h.RecordSize)
	off += 2
	bx.PutU32At(page, off, h.NumTuples)
	off += 4
	bx.PutU32At(page, off, h.NextFreePage)
	off += 4
	bx.PutU16At(page, off, h.NumSlotsPerPage)
	off += 2
	bx.PutU16At(page, off, uint16(len(blob)))
	off += 2
	copy(page[off:], blob)

	return nil
}

func decodeHeader(page []byte) (*tableHeader, error) {
	off := 0
	h := &tableHeader{}
	h.RecordSize = bx.U16At(page, off)
	off += 2
	h.NumTuples = bx.U32At(page, off)
	off += 4
	h.NextFreePage = bx.U32At(page, off)
	off += 4
	h.NumSlotsPerPage = bx.U16At(page, off)
	off += 2
	h.SchemaSize = bx.U16At(page, off)
	off += 2

	schema, err := decodeSchema(page[off : off+int(h.SchemaSize)])
	if err != nil {
		return nil, err
	}
	h.Schema = schema
	return h, nil
}
