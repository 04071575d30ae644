package record

import "fmt"

// DataType names an attribute's fixed-width storage type.
type DataType int

const (
	TypeInt DataType = iota
	TypeFloat
	TypeBool
	TypeString
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeBool:
		return "BOOL"
	case TypeString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Fixed byte widths for the non-string types. A string attribute carries
// its own length, fixed at schema-creation time.
const (
	intWidth   = 8
	floatWidth = 8
	boolWidth  = 1
)

// Attribute is one column of a schema: a name, a data type, and the byte
// width that type occupies inside a record buffer.
type Attribute struct {
	Name   string
	Type   DataType
	Length uint16 // only meaningful for TypeString; others are fixed width
}

// Width returns the number of bytes this attribute occupies in a record.
func (a Attribute) Width() uint16 {
	switch a.Type {
	case TypeInt:
		return intWidth
	case TypeFloat:
		return floatWidth
	case TypeBool:
		return boolWidth
	case TypeString:
		return a.Length
	default:
		return 0
	}
}

// Schema is the ordered attribute description of a table, fixed after
// CreateTable. KeyAttrs holds the indexes, into Attrs, of the attributes
// that make up the table's key.
type Schema struct {
	Attrs   []Attribute
	KeyAttrs []int
}

// RecordSize is the sum of every attribute's byte width: the fixed size of
// one record for this schema.
func (s *Schema) RecordSize() uint16 {
	var size uint16
	for _, a := range s.Attrs {
		size += a.Width()
	}
	return size
}

// AttrOffset returns the byte offset of attribute attrNum inside a record
// buffer: the sum of the widths of every attribute before it.
func (s *Schema) AttrOffset(attrNum int) (uint16, error) {
	if attrNum < 0 || attrNum >= len(s.Attrs) {
		return 0, fmt.Errorf("record: attribute index %d out of range [0,%d)", attrNum, len(s.Attrs))
	}
	var off uint16
	for i := 0; i < attrNum; i++ {
		off += s.Attrs[i].Width()
	}
	return off, nil
}

// FindAttr returns the index of the attribute named name.
func (s *Schema) FindAttr(name string) (int, error) {
	for i, a := range s.Attrs {
		if a.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("record: no attribute named %q", name)
}
