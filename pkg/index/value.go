package index

// Value is one column's contribution to a row being indexed. Exactly one
// of the payload fields is meaningful, selected by the target column's
// type: Str for TEXT/MEMO, Int for the integer family and other small
// fixed types that fit a signed 64-bit range, Raw as a pass-through for
// fixed types this module has no semantic encoding for (already in final
// on-disk big-endian form, caller's responsibility to size it correctly).
type Value struct {
	Null bool
	Int  int64
	Str  string
	Raw  []byte
}

// Row is a set of column values indexed by column number, mirroring
// §4.D's "row[] indexed by column number."
type Row []Value

// At returns the value for columnNumber, or the zero Value (null) if the
// row doesn't carry one.
func (r Row) At(columnNumber int16) Value {
	if int(columnNumber) < 0 || int(columnNumber) >= len(r) {
		return Value{Null: true}
	}
	return r[columnNumber]
}
