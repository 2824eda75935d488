// Package coltype provides the minimal column/data-type surface the index
// and table-creation engine consumes. It is intentionally narrow: the full
// column-builder API (expression defaults, validators, display formats) is
// an external collaborator out of scope for this module.
package coltype

import "encoding/binary"

// DataType is the closed enumeration of column types jetdb understands.
type DataType int

const (
	Unknown DataType = iota
	Text
	Memo
	Int
	Short
	Long
	Byte
	Float
	Double
	DateTime
	Money
	Boolean
	GUID
	Numeric
	OLE
	Binary
)

func (t DataType) String() string {
	switch t {
	case Text:
		return "TEXT"
	case Memo:
		return "MEMO"
	case Int:
		return "INT"
	case Short:
		return "SHORT"
	case Long:
		return "LONG"
	case Byte:
		return "BYTE"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case DateTime:
		return "DATETIME"
	case Money:
		return "MONEY"
	case Boolean:
		return "BOOLEAN"
	case GUID:
		return "GUID"
	case Numeric:
		return "NUMERIC"
	case OLE:
		return "OLE"
	case Binary:
		return "BINARY"
	default:
		return "UNKNOWN"
	}
}

// fixedSizes holds the on-disk fixed width, in bytes, of every type that
// isn't variable length. Variable-length types (Text, Memo, OLE, Binary)
// have no entry here.
var fixedSizes = map[DataType]int{
	Int:      4,
	Short:    2,
	Long:     4,
	Byte:     1,
	Float:    4,
	Double:   8,
	DateTime: 8,
	Money:    8,
	Boolean:  1,
	GUID:     16,
	Numeric:  17,
}

// FixedSize reports the fixed byte width for types that have one, and
// whether the type has a fixed width at all.
func (t DataType) FixedSize() (int, bool) {
	n, ok := fixedSizes[t]
	return n, ok
}

// IsLongValue reports whether values of this type are stored out-of-row in
// long-value (overflow) pages.
func (t DataType) IsLongValue() bool {
	switch t {
	case Memo, OLE, Binary:
		return true
	default:
		return false
	}
}

// IsVariableLength reports whether values of this type vary in length.
func (t DataType) IsVariableLength() bool {
	_, fixed := t.FixedSize()
	return !fixed
}

// Column is the subset of a table's column definition the index engine and
// table creator need: identity, type, and the three flags that drive
// layout and validation decisions.
type Column struct {
	name         string
	number       int16
	dataType     DataType
	isAutoNumber bool
}

// NewColumn constructs a Column. number is assigned later by the table
// creator via SetNumber; pass -1 until then.
func NewColumn(name string, dataType DataType, isAutoNumber bool) *Column {
	return &Column{name: name, number: -1, dataType: dataType, isAutoNumber: isAutoNumber}
}

func (c *Column) Name() string            { return c.name }
func (c *Column) Type() DataType          { return c.dataType }
func (c *Column) IsAutoNumber() bool      { return c.isAutoNumber }
func (c *Column) Number() int16           { return c.number }
func (c *Column) SetNumber(number int16)  { c.number = number }
func (c *Column) IsLongValue() bool       { return c.dataType.IsLongValue() }
func (c *Column) IsVariableLength() bool  { return c.dataType.IsVariableLength() }

// FixedSize returns the fixed byte width of this column's type, or 0 if it
// has none.
func (c *Column) FixedSize() int {
	n, _ := c.dataType.FixedSize()
	return n
}

// ReadFixed decodes a big-endian, fixed-width raw value into a uint64 for
// the subset of types the index codec handles (integer-family and byte
// types). Other fixed types round-trip as opaque big-endian integers of
// their declared width, which is sufficient for index-key comparison.
func (c *Column) ReadFixed(data []byte) uint64 {
	switch len(data) {
	case 1:
		return uint64(data[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(data))
	case 4:
		return uint64(binary.BigEndian.Uint32(data))
	case 8:
		return binary.BigEndian.Uint64(data)
	default:
		var v uint64
		for _, b := range data {
			v = v<<8 | uint64(b)
		}
		return v
	}
}

// WriteFixed encodes v as a big-endian value of this column's fixed width.
func (c *Column) WriteFixed(v uint64) []byte {
	size := c.FixedSize()
	out := make([]byte, size)
	switch size {
	case 1:
		out[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(out, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(out, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(out, v)
	default:
		for i := size - 1; i >= 0; i-- {
			out[i] = byte(v)
			v >>= 8
		}
	}
	return out
}
