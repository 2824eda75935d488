package index

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jetdb/jetdb/pkg/coltype"
)

// Entry is one row-pointer plus its per-column coded values (§4.D). It is
// never mutated after construction.
type Entry struct {
	page    uint32 // fits in 3 bytes on the wire
	row     byte
	columns []entryColumn
}

// entryFraming is the page(3 bytes)+row(1 byte) trailer every entry
// carries, independent of its key columns.
const entryFraming = 4

// NewEntryFromRow builds an Entry from row values in the order of cols,
// per §4.D's "Construction from values." A null key-column value, or one
// the row does not carry, becomes an absent entry column, which has size
// 0 and writes no bytes (see DESIGN.md).
func NewEntryFromRow(cols []ColumnDef, row Row, pageNumber uint32, rowNumber byte) (*Entry, error) {
	entry := &Entry{page: pageNumber, row: rowNumber, columns: make([]entryColumn, len(cols))}
	for i, col := range cols {
		v := row.At(col.Column.Number())
		ec, err := newEntryColumnFromValue(col.Column, v)
		if err != nil {
			return nil, err
		}
		entry.columns[i] = ec
	}
	return entry, nil
}

func newEntryColumnFromValue(col *coltype.Column, v Value) (entryColumn, error) {
	if col.IsVariableLength() {
		return newTextEntryColumnFromValue(v)
	}
	return newFixedEntryColumnFromValue(col, v)
}

// NewEntryFromBuffer reads one EntryColumn per key column from r, then a
// 3-byte big-endian page and a 1-byte row. nextEntryIndex becomes each
// text column's origIndex, preserving on-disk physical order for the
// comparator.
func NewEntryFromBuffer(cols []ColumnDef, r *bytes.Reader, nextEntryIndex int) (*Entry, error) {
	columns := make([]entryColumn, len(cols))
	for i, col := range cols {
		var ec entryColumn
		var err error
		if col.Column.IsVariableLength() {
			ec, err = newTextEntryColumnFromBuffer(r, nextEntryIndex)
		} else {
			ec, err = newFixedEntryColumnFromBuffer(col.Column, r)
		}
		if err != nil {
			return nil, err
		}
		columns[i] = ec
	}

	pageBytes := make([]byte, 3)
	if _, err := io.ReadFull(r, pageBytes); err != nil {
		return nil, fmt.Errorf("%w: reading entry page number: %v", ErrStorageFailure, err)
	}
	page := uint32(pageBytes[0])<<16 | uint32(pageBytes[1])<<8 | uint32(pageBytes[2])
	row, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading entry row number: %v", ErrStorageFailure, err)
	}

	return &Entry{page: page, row: row, columns: columns}, nil
}

// Size is the number of bytes Write emits: the page/row trailer plus
// each column's own size, each of which already folds in its own
// presence byte. (The distilled formula "5 + sum(size)" double-counts
// the presence byte for text columns and under-counts it for fixed
// columns — see DESIGN.md for the worked-example check that caught
// this.)
func (e *Entry) Size() int {
	total := entryFraming
	for _, c := range e.columns {
		total += c.size()
	}
	return total
}

// Write serializes the entry: each key column's coded bytes, in column
// order, followed by the 3-byte big-endian page and 1-byte row.
func (e *Entry) Write(buf *bytes.Buffer) error {
	for _, c := range e.columns {
		if err := c.write(buf); err != nil {
			return err
		}
	}
	buf.WriteByte(byte(e.page >> 16))
	buf.WriteByte(byte(e.page >> 8))
	buf.WriteByte(byte(e.page))
	buf.WriteByte(e.row)
	return nil
}

// Page returns the entry's row-pointer page number.
func (e *Entry) Page() uint32 { return e.page }

// Row returns the entry's row-pointer row number.
func (e *Entry) Row() byte { return e.row }

// CompareTo implements the §4.D ordering: lexicographic comparison of
// entry columns, tie-broken by (page, row).
func (e *Entry) CompareTo(other *Entry) (int, error) {
	if len(e.columns) != len(other.columns) {
		return 0, fmt.Errorf("%w: %d columns vs %d", ErrIncompatibleEntryShape, len(e.columns), len(other.columns))
	}
	for i, c := range e.columns {
		cmp, err := c.compareTo(other.columns[i])
		if err != nil {
			return 0, err
		}
		if cmp != 0 {
			return cmp, nil
		}
	}
	if e.page != other.page {
		if e.page < other.page {
			return -1, nil
		}
		return 1, nil
	}
	switch {
	case e.row < other.row:
		return -1, nil
	case e.row > other.row:
		return 1, nil
	default:
		return 0, nil
	}
}
