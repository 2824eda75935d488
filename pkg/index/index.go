package index

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jetdb/jetdb/pkg/coltype"
	"github.com/jetdb/jetdb/pkg/common/log"
	"github.com/jetdb/jetdb/pkg/jetfmt"
	"github.com/jetdb/jetdb/pkg/pagestore"
	"github.com/jetdb/jetdb/pkg/telemetry"
)

const (
	pageTypeIndex = 0x04
	headerUnknown = 0x01

	offsetPageType           = 0
	offsetUnknown            = 1
	offsetFreeSpace          = 2
	offsetParentPageNumber   = 4
	offsetPrevPage           = 8
	offsetNextPage           = 12
	offsetLeafPage           = 16
	offsetHeaderUnknownWords = 20
	headerFixedSize          = 27 // ends at OffsetIndexEntryMask == 0x1B for every registered format
)

// descriptorSlotCount and descriptorSlotSize describe the ten-slot
// column/order table embedded in the table-definition area (§6).
const (
	descriptorSlotCount     = 10
	descriptorSlotSize      = 3 // u16 columnNumber + u8 order
	descriptorUnknownBefore = 4
	descriptorUnknownAfter  = 10
	descriptorTotalSize     = descriptorSlotCount*descriptorSlotSize + descriptorUnknownBefore + 4 + descriptorUnknownAfter
)

// Index owns one index's ordered set of entries and knows how to
// serialize itself to and from a single storage page (§4.E).
type Index struct {
	format jetfmt.Format
	store  pagestore.PageStore
	log    log.Logger
	tel    telemetry.Telemetry

	pageNumber       int32
	parentPageNumber int32
	indexNumber      int
	name             string
	primaryKey       bool
	columns          []ColumnDef
	entries          []*Entry
}

// Opt configures an Index at construction time.
type Opt func(*Index)

func WithLogger(l log.Logger) Opt      { return func(i *Index) { i.log = l } }
func WithTelemetry(t telemetry.Telemetry) Opt { return func(i *Index) { i.tel = t } }

// New creates an Index for the write path: a brand-new index with no
// page number yet (assigned by the table creator via SetPageNumber once
// it reserves one).
func New(name string, primaryKey bool, indexNumber int, parentPageNumber int32, columns []ColumnDef, store pagestore.PageStore, format jetfmt.Format, opts ...Opt) *Index {
	idx := &Index{
		format:           format,
		store:            store,
		log:              log.Nop(),
		tel:              telemetry.NewNoop(),
		pageNumber:       pagestore.InvalidPageNumber,
		parentPageNumber: parentPageNumber,
		indexNumber:      indexNumber,
		name:             name,
		primaryKey:       primaryKey,
		columns:          columns,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

func (idx *Index) Name() string       { return idx.name }
func (idx *Index) PrimaryKey() bool   { return idx.primaryKey }
func (idx *Index) IndexNumber() int   { return idx.indexNumber }
func (idx *Index) PageNumber() int32  { return idx.pageNumber }
func (idx *Index) RowCount() int      { return len(idx.entries) }

// SetPageNumber records the page reserved to hold this index's entries.
func (idx *Index) SetPageNumber(pn int32) { idx.pageNumber = pn }

// Columns exposes an unmodifiable view of the index's key columns, per
// §5's "external readers see only an unmodifiable view."
func (idx *Index) Columns() []coltype.Column {
	out := make([]coltype.Column, len(idx.columns))
	for i, c := range idx.columns {
		out[i] = *c.Column
	}
	return out
}

// Load constructs an Index for pageNumber and parses its current
// contents from store, without going through the table-definition area's
// ten-slot descriptor. Use this when the caller already knows the
// index's page number and columns (e.g. it just wrote them, or the
// descriptor was parsed separately).
func Load(pageNumber int32, name string, primaryKey bool, indexNumber int, parentPageNumber int32, columns []ColumnDef, store pagestore.PageStore, format jetfmt.Format, opts ...Opt) (*Index, error) {
	idx := New(name, primaryKey, indexNumber, parentPageNumber, columns, store, format, opts...)
	idx.pageNumber = pageNumber
	if err := idx.readPage(); err != nil {
		return nil, err
	}
	return idx, nil
}

// ReadDescriptor parses the ten-slot column/order table plus the index's
// own page pointer from r (a cursor positioned within the owning table's
// definition page, per §4.E's read contract), then reads the index's own
// page through store to populate entries.
func ReadDescriptor(r *bytes.Reader, availableColumns []*coltype.Column, store pagestore.PageStore, format jetfmt.Format, name string, primaryKey bool, indexNumber int, parentPageNumber int32, opts ...Opt) (*Index, error) {
	type slot struct {
		columnNumber int16
		order        byte
	}
	if r.Len() < descriptorTotalSize {
		return nil, fmt.Errorf("%w: index descriptor needs %d bytes, have %d", ErrFormatViolation, descriptorTotalSize, r.Len())
	}

	slots := make([]slot, 0, descriptorSlotCount)
	for i := 0; i < descriptorSlotCount; i++ {
		raw := make([]byte, descriptorSlotSize)
		if _, err := readFull(r, raw); err != nil {
			return nil, err
		}
		colNum := int16(binary.LittleEndian.Uint16(raw[0:2]))
		if colNum == unusedColumnSlot {
			continue
		}
		slots = append(slots, slot{columnNumber: colNum, order: raw[2]})
	}
	if len(slots) > maxIndexColumns {
		return nil, fmt.Errorf("%w: index descriptor has more than %d used column slots", ErrFormatViolation, maxIndexColumns)
	}

	if _, err := readFull(r, make([]byte, descriptorUnknownBefore)); err != nil {
		return nil, err
	}
	pnBytes := make([]byte, 4)
	if _, err := readFull(r, pnBytes); err != nil {
		return nil, err
	}
	pageNumber := int32(binary.LittleEndian.Uint32(pnBytes))
	if _, err := readFull(r, make([]byte, descriptorUnknownAfter)); err != nil {
		return nil, err
	}

	columns := make([]ColumnDef, 0, len(slots))
	for _, s := range slots {
		if int(s.columnNumber) < 0 || int(s.columnNumber) >= len(availableColumns) {
			return nil, fmt.Errorf("%w: index descriptor references unknown column %d", ErrFormatViolation, s.columnNumber)
		}
		columns = append(columns, ColumnDef{Column: availableColumns[s.columnNumber], Order: s.order})
	}

	idx := New(name, primaryKey, indexNumber, parentPageNumber, columns, store, format, opts...)
	idx.pageNumber = pageNumber

	if err := idx.readPage(); err != nil {
		return nil, err
	}
	return idx, nil
}

// WriteDescriptor emits the ten-slot column/order table and this index's
// own page number, for embedding in the owning table's definition page.
func (idx *Index) WriteDescriptor(buf *bytes.Buffer) error {
	for i := 0; i < descriptorSlotCount; i++ {
		slot := make([]byte, descriptorSlotSize)
		if i < len(idx.columns) {
			binary.LittleEndian.PutUint16(slot[0:2], uint16(idx.columns[i].Column.Number()))
			slot[2] = idx.columns[i].Order
		} else {
			sentinel := int16(unusedColumnSlot)
			binary.LittleEndian.PutUint16(slot[0:2], uint16(sentinel))
		}
		buf.Write(slot)
	}
	buf.Write(make([]byte, descriptorUnknownBefore))
	pn := make([]byte, 4)
	binary.LittleEndian.PutUint32(pn, uint32(idx.pageNumber))
	buf.Write(pn)
	buf.Write(make([]byte, descriptorUnknownAfter))
	return nil
}

func (idx *Index) readPage() error {
	buf := idx.store.CreatePageBuffer()
	if err := idx.store.ReadPage(buf, idx.pageNumber); err != nil {
		return err
	}
	if buf[offsetPageType] != pageTypeIndex {
		return fmt.Errorf("%w: page %d has type %#x, want %#x", ErrFormatViolation, idx.pageNumber, buf[offsetPageType], pageTypeIndex)
	}
	idx.parentPageNumber = int32(binary.LittleEndian.Uint32(buf[offsetParentPageNumber:]))

	maskOffset := idx.format.OffsetIndexEntryMask
	if maskOffset < headerFixedSize {
		return fmt.Errorf("%w: format's entry-mask offset %d precedes the fixed header end at %d", ErrFormatViolation, maskOffset, headerFixedSize)
	}
	maskSize := idx.format.SizeIndexEntryMask
	mask := buf[maskOffset : maskOffset+maskSize]

	r := bytes.NewReader(buf[maskOffset+maskSize:])
	entries := make([]*Entry, 0)
	prevEnd := 0
	nextEntryIndex := 0
	for byteIdx := 0; byteIdx < maskSize; byteIdx++ {
		b := mask[byteIdx]
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) == 0 {
				continue
			}
			end := byteIdx*8 + bit
			size := end - prevEnd
			if size <= 0 {
				return fmt.Errorf("%w: non-positive entry size at mask bit %d", ErrFormatViolation, end)
			}
			entryBytes := make([]byte, size)
			if _, err := readFull(r, entryBytes); err != nil {
				return err
			}
			entry, err := NewEntryFromBuffer(idx.columns, bytes.NewReader(entryBytes), nextEntryIndex)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			nextEntryIndex++
			prevEnd = end
		}
	}
	idx.entries = entries

	idx.tel.RecordHistogram(context.Background(), "jetdb.index.page_entries", float64(len(entries)),
		attribute.String("index", idx.name))
	idx.log.Debug("index page read", "index", idx.name, "page", idx.pageNumber, "entries", len(entries))
	return nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n, err := r.Read(buf)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if n != len(buf) {
		return n, fmt.Errorf("%w: short read, got %d of %d bytes", ErrFormatViolation, n, len(buf))
	}
	return n, nil
}

// Write serializes the index's current entries into a fresh page buffer,
// per §4.E. It does not touch the paged storage; call Update to persist.
func (idx *Index) Write() ([]byte, error) {
	start := time.Now()
	buf := idx.store.CreatePageBuffer()

	buf[offsetPageType] = pageTypeIndex
	buf[offsetUnknown] = headerUnknown
	binary.LittleEndian.PutUint32(buf[offsetParentPageNumber:], uint32(idx.parentPageNumber))
	// prev/next/leaf/unknown words and the 3 trailing unknown bytes are
	// already zero from CreatePageBuffer.

	entries := idx.sortedEntries()
	maskOffset := idx.format.OffsetIndexEntryMask
	maskSize := idx.format.SizeIndexEntryMask
	if maskOffset+maskSize > len(buf) {
		return nil, fmt.Errorf("%w: entry mask does not fit in page", ErrFormatViolation)
	}

	var body bytes.Buffer
	totalSize := 0
	mask := make([]byte, maskSize)
	for _, e := range entries {
		if err := e.Write(&body); err != nil {
			return nil, err
		}
		totalSize += e.Size()
		bytePos := totalSize / 8
		bitPos := totalSize % 8
		if bytePos >= maskSize {
			return nil, fmt.Errorf("%w: entries overflow the %d-byte entry mask", ErrFormatViolation, maskSize)
		}
		mask[bytePos] |= 1 << bitPos
	}
	copy(buf[maskOffset:maskOffset+maskSize], mask)

	end := maskOffset + maskSize + body.Len()
	if end > len(buf) {
		return nil, fmt.Errorf("%w: index page overflow: %d bytes of entries, %d available",
			ErrFormatViolation, body.Len(), len(buf)-maskOffset-maskSize)
	}
	copy(buf[maskOffset+maskSize:], body.Bytes())

	freeSpace := uint16(len(buf) - end)
	binary.LittleEndian.PutUint16(buf[offsetFreeSpace:], freeSpace)

	idx.tel.RecordHistogram(context.Background(), "jetdb.index.write_seconds", time.Since(start).Seconds(),
		attribute.String("index", idx.name))
	idx.tel.RecordHistogram(context.Background(), "jetdb.index.page_bytes", float64(end),
		attribute.String("index", idx.name))
	return buf, nil
}

func (idx *Index) sortedEntries() []*Entry {
	out := make([]*Entry, len(idx.entries))
	copy(out, idx.entries)
	sort.SliceStable(out, func(i, j int) bool {
		cmp, err := out[i].CompareTo(out[j])
		if err != nil {
			idx.log.Warn("entry comparison failed during sort", "err", err)
			return false
		}
		return cmp < 0
	})
	return out
}

// AddRow inserts a new Entry into the ordered set, preserving the §4.D
// comparator's total order.
func (idx *Index) AddRow(row Row, pageNumber uint32, rowNumber byte) error {
	entry, err := NewEntryFromRow(idx.columns, row, pageNumber, rowNumber)
	if err != nil {
		return err
	}
	pos := sort.Search(len(idx.entries), func(i int) bool {
		cmp, cerr := idx.entries[i].CompareTo(entry)
		if cerr != nil {
			return false
		}
		return cmp >= 0
	})
	idx.entries = append(idx.entries, nil)
	copy(idx.entries[pos+1:], idx.entries[pos:])
	idx.entries[pos] = entry
	idx.log.Debug("row added to index", "index", idx.name, "entries", len(idx.entries))
	return nil
}

// Update reserializes the index via Write and persists it to the paged
// storage at PageNumber.
func (idx *Index) Update() error {
	buf, err := idx.Write()
	if err != nil {
		return err
	}
	return idx.store.WritePage(buf, idx.pageNumber)
}
