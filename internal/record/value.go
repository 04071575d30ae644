package record

import (
	"fmt"
	"math"

	"github.com/tuannm99/novasql/internal/alias/bx"
)

// Value is the in-memory form of one attribute value, tagged by the same
// DataType enum used in Schema. Exactly one of the fields is meaningful,
// selected by Type.
type Value struct {
	Type DataType
	I    int64
	F    float64
	B    bool
	S    string
}

func IntValue(v int64) Value    { return Value{Type: TypeInt, I: v} }
func FloatValue(v float64) Value { return Value{Type: TypeFloat, F: v} }
func BoolValue(v bool) Value    { return Value{Type: TypeBool, B: v} }
func StringValue(v string) Value { return Value{Type: TypeString, S: v} }

// GetAttr reads attribute attrNum out of rec according to schema and
// returns its value.
func GetAttr(rec *Record, schema *Schema, attrNum int) (Value, error) {
	if attrNum < 0 || attrNum >= len(schema.Attrs) {
		return Value{}, fmt.Errorf("record: attribute index %d out of range", attrNum)
	}
	attr := schema.Attrs[attrNum]
	off, err := schema.AttrOffset(attrNum)
	if err != nil {
		return Value{}, err
	}
	buf := rec.Data[off : off+attr.Width()]

	switch attr.Type {
	case TypeInt:
		return IntValue(int64(bx.U64(buf))), nil
	case TypeFloat:
		return FloatValue(math.Float64frombits(bx.U64(buf))), nil
	case TypeBool:
		return BoolValue(buf[0] != 0), nil
	case TypeString:
		end := 0
		for end < len(buf) && buf[end] != 0 {
			end++
		}
		return StringValue(string(buf[:end])), nil
	default:
		return Value{}, fmt.Errorf("record: unknown attribute type %v", attr.Type)
	}
}

// SetAttr writes val into rec at attribute attrNum's position, per schema.
func SetAttr(rec *Record, schema *Schema, attrNum int, val Value) error {
	if attrNum < 0 || attrNum >= len(schema.Attrs) {
		return fmt.Errorf("record: attribute index %d out of range", attrNum)
	}
	attr := schema.Attrs[attrNum]
	off, err := schema.AttrOffset(attrNum)
	if err != nil {
		return err
	}
	width := attr.Width()
	buf := rec.Data[off : off+width]
	for i := range buf {
		buf[i] = 0
	}

	switch attr.Type {
	case TypeInt:
		bx.PutU64(buf, uint64(val.I))
	case TypeFloat:
		bx.PutU64(buf, math.Float64bits(val.F))
	case TypeBool:
		if val.B {
			buf[0] = 1
		} else {
			buf[0] = 0
		}
	case TypeString:
		n := copy(buf, val.S)
		_ = n
	default:
		return fmt.Errorf("record: unknown attribute type %v", attr.Type)
	}
	return nil
}
