package table

import (
	"github.com/jetdb/jetdb/pkg/coltype"
	"github.com/jetdb/jetdb/pkg/pagestore"
)

// IndexState is the Table Creator's per-index bookkeeping (§3). Foreign-
// key indexes aren't supported yet, so indexNumber and indexDataNumber
// always advance together off one running counter.
type IndexState struct {
	Descriptor      *Descriptor
	IndexNumber     int
	IndexDataNumber int
	UmapRowNumber   byte
	UmapPageNumber  int32
	RootPageNumber  int32
}

// ColumnState is the Table Creator's per-long-value-column bookkeeping:
// a usage-map page number for that column's overflow chain, a running
// count of pages assigned to it so far, and (domain-stack enrichment) an
// optional compression codec tag for the row writer to use on that
// column's overflow payloads. CreateTable reserves no page for it:
// UsageMapPageNumber starts as pagestore.InvalidPageNumber.
type ColumnState struct {
	Column            *coltype.Column
	UsageMapPageNumber int32
	PagesAssigned      int
	Compressed         bool
}

func newColumnState(col *coltype.Column, umapPage int32, compressed bool) *ColumnState {
	return &ColumnState{Column: col, UsageMapPageNumber: umapPage, Compressed: compressed}
}

// reservePageNumberOrZero centralizes the "reserve a page" pattern used
// throughout createTable. On failure it returns InvalidPageNumber and the
// store's error unchanged.
func reservePageNumberOrZero(store pagestore.PageStore) (int32, error) {
	pn, err := store.ReservePageNumber()
	if err != nil {
		return pagestore.InvalidPageNumber, err
	}
	return pn, nil
}
