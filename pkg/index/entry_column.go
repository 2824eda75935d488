package index

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jetdb/jetdb/pkg/codec"
	"github.com/jetdb/jetdb/pkg/coltype"
)

// entryColumn is the polymorphic {Fixed, Text} variant described in
// §4.D.i/§4.D.ii. size()==0 iff the value is absent.
type entryColumn interface {
	size() int
	write(buf *bytes.Buffer) error
	compareTo(other entryColumn) (int, error)
}

const presenceByte = 0x7F

// fixedEntryColumn holds a fixed-width column's already-biased,
// already-big-endian on-disk form. Folding the bias (for INT/SHORT) into
// this single byte slice at construction time means compareTo is a plain
// byte comparison. For INT the bias turns signed numeric order into
// unsigned lexicographic order; for SHORT it truncates to a no-op (see
// codec/integer.go), so negative SHORT values compare greater than
// non-negative ones.
type fixedEntryColumn struct {
	column  *coltype.Column
	encoded []byte // nil = absent
}

func newFixedEntryColumnFromValue(col *coltype.Column, v Value) (*fixedEntryColumn, error) {
	if v.Null {
		return &fixedEntryColumn{column: col}, nil
	}
	size := col.FixedSize()
	if len(v.Raw) != 0 {
		if len(v.Raw) != size {
			return nil, fmt.Errorf("%w: column %s expects %d raw bytes, got %d",
				ErrFormatViolation, col.Name(), size, len(v.Raw))
		}
		return &fixedEntryColumn{column: col, encoded: append([]byte{}, v.Raw...)}, nil
	}

	var encoded []byte
	switch col.Type() {
	case coltype.Int:
		encoded = col.WriteFixed(uint64(codec.EncodeInt32(int32(v.Int))))
	case coltype.Short:
		encoded = col.WriteFixed(uint64(codec.EncodeInt16(int16(v.Int))))
	default:
		encoded = col.WriteFixed(uint64(v.Int))
	}
	return &fixedEntryColumn{column: col, encoded: encoded}, nil
}

func newFixedEntryColumnFromBuffer(col *coltype.Column, r *bytes.Reader) (*fixedEntryColumn, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading presence byte: %v", ErrStorageFailure, err)
	}
	if flag == 0 {
		return &fixedEntryColumn{column: col}, nil
	}
	data := make([]byte, col.FixedSize())
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: reading fixed value for %s: %v", ErrFormatViolation, col.Name(), err)
	}
	return &fixedEntryColumn{column: col, encoded: data}, nil
}

// naturalInt decodes the bias back out, for callers that want the
// original row value rather than the raw on-disk form.
func (f *fixedEntryColumn) naturalInt() int64 {
	raw := f.column.ReadFixed(f.encoded)
	switch f.column.Type() {
	case coltype.Int:
		return int64(codec.DecodeInt32(uint32(raw)))
	case coltype.Short:
		return int64(codec.DecodeInt16(uint16(raw)))
	default:
		return int64(raw)
	}
}

func (f *fixedEntryColumn) size() int {
	if f.encoded == nil {
		return 0
	}
	return 1 + len(f.encoded) // presence byte folded in; see entry.go for why
}

func (f *fixedEntryColumn) write(buf *bytes.Buffer) error {
	if f.encoded == nil {
		return nil
	}
	buf.WriteByte(presenceByte)
	buf.Write(f.encoded)
	return nil
}

func (f *fixedEntryColumn) compareTo(other entryColumn) (int, error) {
	o, ok := other.(*fixedEntryColumn)
	if !ok {
		return 0, fmt.Errorf("%w: comparing fixed column against %T", ErrIncompatibleEntryShape, other)
	}
	switch {
	case f.encoded == nil && o.encoded == nil:
		return 0, nil
	case f.encoded == nil:
		return -1, nil
	case o.encoded == nil:
		return 1, nil
	default:
		return bytes.Compare(f.encoded, o.encoded), nil
	}
}

// textEntryColumn holds the coded ("index") form of a string plus the
// verbatim trailing bytes read from the source. actualValue is a
// best-effort cache of the uppercased pre-code form (§9's "soft
// reference" approximated by an explicit droppable pointer); once
// dropped it is regenerated from the lossy index form.
type textEntryColumn struct {
	value      *string // index form; nil = absent
	actual     *string // cached actual form, may be nil even when present
	extraBytes []byte
	origIndex  int // -1 if not read from disk
}

func newTextEntryColumnFromValue(v Value) (*textEntryColumn, error) {
	if v.Null {
		return &textEntryColumn{origIndex: -1}, nil
	}
	actual := codec.ActualValue(v.Str)
	indexForm := codec.IndexValue(actual)
	return &textEntryColumn{value: &indexForm, actual: &actual, origIndex: -1}, nil
}

func newTextEntryColumnFromBuffer(r *bytes.Reader, nextEntryIndex int) (*textEntryColumn, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading presence byte: %v", ErrStorageFailure, err)
	}
	if flag == 0 {
		return &textEntryColumn{origIndex: nextEntryIndex}, nil
	}

	decoded, err := codec.DecodeString(r)
	if err != nil {
		return nil, err
	}

	trailing, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading trailing byte: %v", ErrStorageFailure, err)
	}
	var extra []byte
	if trailing != 0 {
		var buf bytes.Buffer
		buf.WriteByte(trailing)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: reading extra bytes: %v", ErrFormatViolation, err)
			}
			if b == 0 {
				break
			}
			buf.WriteByte(b)
		}
		extra = buf.Bytes()
	}

	return &textEntryColumn{value: &decoded, extraBytes: extra, origIndex: nextEntryIndex}, nil
}

// GetActualValue returns the cached actual (uppercased, dots intact)
// form if present, or regenerates it from the lossy index form if the
// cache has been dropped. Reconstructions of strings that originally
// contained '.' are only accurate up to that projection — see §9.
func (t *textEntryColumn) GetActualValue() string {
	if t.actual != nil {
		return *t.actual
	}
	if t.value == nil {
		return ""
	}
	return *t.value
}

// DropActualValueCache discards the cached actual form, simulating the
// soft reference being reclaimed under memory pressure.
func (t *textEntryColumn) DropActualValueCache() {
	t.actual = nil
}

func (t *textEntryColumn) size() int {
	if t.value == nil {
		return 0
	}
	return 3 + codec.EncodedSize(*t.value) + len(t.extraBytes)
}

func (t *textEntryColumn) write(buf *bytes.Buffer) error {
	if t.value == nil {
		return nil
	}
	buf.WriteByte(presenceByte)
	encoded, err := codec.EncodeString(*t.value)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	buf.WriteByte(0x01)
	if len(t.extraBytes) > 0 {
		buf.Write(t.extraBytes)
	}
	buf.WriteByte(0x00)
	return nil
}

func (t *textEntryColumn) compareTo(other entryColumn) (int, error) {
	o, ok := other.(*textEntryColumn)
	if !ok {
		return 0, fmt.Errorf("%w: comparing text column against %T", ErrIncompatibleEntryShape, other)
	}
	if t.origIndex >= 0 && o.origIndex >= 0 {
		switch {
		case t.origIndex < o.origIndex:
			return -1, nil
		case t.origIndex > o.origIndex:
			return 1, nil
		default:
			return 0, nil
		}
	}
	a, b := t.GetActualValue(), o.GetActualValue()
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}
