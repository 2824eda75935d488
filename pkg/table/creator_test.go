package table

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jetdb/jetdb/pkg/coltype"
	"github.com/jetdb/jetdb/pkg/jetfmt"
	"github.com/jetdb/jetdb/pkg/pagestore"
)

type fakeCatalog struct {
	added []string
}

func (c *fakeCatalog) AddNewTable(name string, tdefPageNumber int32, tableType TableType) error {
	c.added = append(c.added, name)
	return nil
}

func idColumn() *coltype.Column {
	return coltype.NewColumn("ID", coltype.Int, false)
}

func nameColumn() *coltype.Column {
	return coltype.NewColumn("NAME", coltype.Text, false)
}

func openStore(t *testing.T, format jetfmt.Format) *pagestore.FilePageStore {
	t.Helper()
	store, err := pagestore.Open(filepath.Join(t.TempDir(), "t.accdb"), format.PageSize)
	if err != nil {
		t.Fatalf("pagestore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDuplicateIndexNameRejection(t *testing.T) {
	format := jetfmt.MustLookup(jetfmt.Version2000)
	store := openStore(t, format)
	catalog := &fakeCatalog{}

	tc := New(CatalogAndStorage{Store: store, Catalog: catalog}, "T",
		[]*coltype.Column{idColumn(), nameColumn()},
		[]*Descriptor{
			{Name: "idx", Columns: []IndexColumnSpec{{ColumnName: "ID", Ascending: true}}},
			{Name: "IDX", Columns: []IndexColumnSpec{{ColumnName: "NAME", Ascending: true}}},
		},
		format, Options{})

	_, err := tc.Validate()
	if !errors.Is(err, ErrInvalidTableDefinition) {
		t.Fatalf("Validate() err = %v, want ErrInvalidTableDefinition", err)
	}
	if err := tc.CreateTable(); !errors.Is(err, ErrInvalidTableDefinition) {
		t.Fatalf("CreateTable() err = %v, want ErrInvalidTableDefinition", err)
	}
	if len(catalog.added) != 0 {
		t.Fatalf("catalog should not have been touched, got %v", catalog.added)
	}
}

func TestCreateTableRoundTrip(t *testing.T) {
	format := jetfmt.MustLookup(jetfmt.Version2000)
	store := openStore(t, format)
	catalog := &fakeCatalog{}

	tc := New(CatalogAndStorage{Store: store, Catalog: catalog}, "T",
		[]*coltype.Column{idColumn(), nameColumn()},
		[]*Descriptor{
			{Name: "idx_id", PrimaryKey: true, Columns: []IndexColumnSpec{{ColumnName: "ID", Ascending: true}}},
		},
		format, Options{})

	if err := tc.CreateTable(); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if len(catalog.added) != 1 || catalog.added[0] != "T" {
		t.Fatalf("catalog.added = %v, want [T]", catalog.added)
	}
}

// failingStore wraps a real PageStore but fails every WritePage call
// after a configured number of successes, so tests can exercise the
// write-epoch's error path without a fake journal implementation.
type failingStore struct {
	pagestore.PageStore
	failAfter      int
	writes         int
	finishWriteCalls int
}

var errInjected = errors.New("injected storage failure")

func (f *failingStore) WritePage(buf []byte, pageNumber int32) error {
	f.writes++
	if f.writes > f.failAfter {
		return errInjected
	}
	return f.PageStore.WritePage(buf, pageNumber)
}

func (f *failingStore) FinishWrite() error {
	f.finishWriteCalls++
	return f.PageStore.FinishWrite()
}

func TestWriteEpochFinishesOnStorageFailure(t *testing.T) {
	format := jetfmt.MustLookup(jetfmt.Version2000)
	real := openStore(t, format)
	store := &failingStore{PageStore: real, failAfter: 0}
	catalog := &fakeCatalog{}

	tc := New(CatalogAndStorage{Store: store, Catalog: catalog}, "T",
		[]*coltype.Column{idColumn()},
		nil, format, Options{})

	err := tc.CreateTable()
	if !errors.Is(err, errInjected) {
		t.Fatalf("CreateTable() err = %v, want errInjected", err)
	}
	if store.finishWriteCalls != 1 {
		t.Fatalf("FinishWrite called %d times, want exactly 1", store.finishWriteCalls)
	}
	if len(catalog.added) != 0 {
		t.Fatalf("catalog should not have been updated after a failed write epoch, got %v", catalog.added)
	}
}
