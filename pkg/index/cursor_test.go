package index

import (
	"testing"

	"github.com/jetdb/jetdb/pkg/jetfmt"
	"github.com/jetdb/jetdb/pkg/pagestore"
)

func TestCursorWalksEntriesInSortedOrder(t *testing.T) {
	format := jetfmt.MustLookup(jetfmt.Version2000)
	store := openStore(t, format)
	pn, _ := store.ReservePageNumber()

	col := intColumn("ID")
	cols := []ColumnDef{{Column: col, Order: orderByte(true)}}
	idx := New("idx_id", true, 0, pagestore.InvalidPageNumber, cols, store, format)
	idx.SetPageNumber(pn)

	for _, v := range []int64{30, 10, 20} {
		if err := idx.AddRow(Row{{Int: v}}, 1, byte(v)); err != nil {
			t.Fatalf("AddRow(%d): %v", v, err)
		}
	}

	cur := idx.Cursor()
	var rows []byte
	for ok := cur.SeekToFirst(); ok; ok = cur.Next() {
		rows = append(rows, cur.Entry().Row)
	}
	want := []byte{10, 20, 30}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("rows = %v, want %v", rows, want)
		}
	}
}

func TestCursorOnEmptyIndexIsNeverValid(t *testing.T) {
	format := jetfmt.MustLookup(jetfmt.Version2000)
	store := openStore(t, format)
	pn, _ := store.ReservePageNumber()

	col := intColumn("ID")
	cols := []ColumnDef{{Column: col, Order: orderByte(true)}}
	idx := New("idx_id", true, 0, pagestore.InvalidPageNumber, cols, store, format)
	idx.SetPageNumber(pn)

	cur := idx.Cursor()
	if cur.SeekToFirst() {
		t.Fatalf("SeekToFirst on empty index returned true")
	}
	if cur.Valid() {
		t.Fatalf("cursor on empty index should not be valid")
	}
}
