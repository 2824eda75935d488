package table

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jetdb/jetdb/pkg/coltype"
	"github.com/jetdb/jetdb/pkg/common/log"
	"github.com/jetdb/jetdb/pkg/index"
	"github.com/jetdb/jetdb/pkg/jetfmt"
	"github.com/jetdb/jetdb/pkg/pagestore"
	"github.com/jetdb/jetdb/pkg/telemetry"
)

// Descriptor is an index descriptor scoped to table creation: it bundles
// index.Descriptor, which the index package validates against the
// column name set independently of the table's own rules.
type Descriptor = index.Descriptor

// IndexColumnSpec is an index column specification scoped to table
// creation; it bundles index.IndexColumnSpec, which the index package
// validates against the column name set independently of the table's
// own rules.
type IndexColumnSpec = index.IndexColumnSpec

// Options are create-time choices that don't come from the database
// format itself.
type Options struct {
	// CompressLongValues opts every long-value column in this table into
	// zstd-compressed overflow pages. The Table Creator only stamps the
	// choice onto each column's ColumnState; it never compresses bytes
	// itself, since no row data exists yet at createTable time.
	CompressLongValues bool
}

// TableCreator validates a proposed table and drives the write epoch
// that emits its definition page and any index pages (§4.F).
type TableCreator struct {
	database CatalogAndStorage
	name     string
	columns  []*coltype.Column
	indexes  []*Descriptor
	options  Options

	format jetfmt.Format
	writer TableDefinitionWriter

	log log.Logger
	tel telemetry.Telemetry
}

// CatalogAndStorage is what the Table Creator needs from the owning
// database object: its paged-storage handle and its catalog.
type CatalogAndStorage struct {
	Store   pagestore.PageStore
	Catalog Catalog
}

// Opt configures a TableCreator at construction time.
type Opt func(*TableCreator)

func WithLogger(l log.Logger) Opt              { return func(c *TableCreator) { c.log = l } }
func WithTelemetry(t telemetry.Telemetry) Opt  { return func(c *TableCreator) { c.tel = t } }
func WithDefinitionWriter(w TableDefinitionWriter) Opt {
	return func(c *TableCreator) { c.writer = w }
}

// New constructs a TableCreator for one createTable call. It is
// ephemeral: discard it once CreateTable returns, per §3's lifecycle
// note.
func New(database CatalogAndStorage, name string, columns []*coltype.Column, indexes []*Descriptor,
	format jetfmt.Format, options Options, opts ...Opt) *TableCreator {
	tc := &TableCreator{
		database: database,
		name:     name,
		columns:  columns,
		indexes:  indexes,
		options:  options,
		format:   format,
		writer:   DefaultTableDefinitionWriter{},
		log:      log.Nop(),
		tel:      telemetry.NewNoop(),
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// Validate implements §4.F's validate(): name and column-list shape,
// column name uniqueness, auto-number cardinality, and index-list
// shape/uniqueness. It does not touch storage.
func (tc *TableCreator) Validate() (map[string]*coltype.Column, error) {
	if len(tc.name) == 0 || len(tc.name) > tc.format.MaxTableNameLength {
		return nil, fmt.Errorf("%w: table name %q has invalid length", ErrInvalidTableDefinition, tc.name)
	}
	if len(tc.columns) == 0 {
		return nil, fmt.Errorf("%w: table %q has no columns", ErrInvalidTableDefinition, tc.name)
	}
	if len(tc.columns) > tc.format.MaxColumnsPerTable {
		return nil, fmt.Errorf("%w: table %q has %d columns, max %d",
			ErrInvalidTableDefinition, tc.name, len(tc.columns), tc.format.MaxColumnsPerTable)
	}

	byName := make(map[string]*coltype.Column, len(tc.columns))
	autoNumberCounts := make(map[coltype.DataType]int)
	for _, col := range tc.columns {
		if len(col.Name()) == 0 || len(col.Name()) > tc.format.MaxColumnNameLength {
			return nil, fmt.Errorf("%w: column %q has invalid length", ErrInvalidTableDefinition, col.Name())
		}
		key := strings.ToUpper(col.Name())
		if _, dup := byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate column name %q", ErrInvalidTableDefinition, col.Name())
		}
		byName[key] = col
		if col.IsAutoNumber() {
			autoNumberCounts[col.Type()]++
		}
	}
	for dt, count := range autoNumberCounts {
		if count > 1 {
			return nil, fmt.Errorf("%w: table %q has %d auto-number columns of type %s, max 1",
				ErrInvalidTableDefinition, tc.name, count, dt)
		}
	}

	if len(tc.indexes) > tc.format.MaxIndexesPerTable {
		return nil, fmt.Errorf("%w: table %q has %d indexes, max %d",
			ErrInvalidTableDefinition, tc.name, len(tc.indexes), tc.format.MaxIndexesPerTable)
	}
	seenIndexNames := make(map[string]bool, len(tc.indexes))
	primaryKeyCount := 0
	for _, d := range tc.indexes {
		key := strings.ToUpper(d.Name)
		if seenIndexNames[key] {
			return nil, fmt.Errorf("%w: duplicate index name %q", ErrInvalidTableDefinition, d.Name)
		}
		seenIndexNames[key] = true
		if d.PrimaryKey {
			primaryKeyCount++
		}
		if _, err := d.Validate(byName, tc.format); err != nil {
			return nil, err
		}
	}
	if primaryKeyCount > 1 {
		return nil, fmt.Errorf("%w: table %q declares %d primary-key indexes, max 1",
			ErrInvalidTableDefinition, tc.name, primaryKeyCount)
	}

	return byName, nil
}

// CreateTable implements §4.F's createTable(): assign numbers, open a
// write epoch, reserve pages, emit the table-definition and index
// pages, and register the table with the catalog. finishWrite is
// guaranteed on every exit path via pagestore.WithWriteEpoch.
func (tc *TableCreator) CreateTable() error {
	start := time.Now()
	byName, err := tc.Validate()
	if err != nil {
		return err
	}

	for i, col := range tc.columns {
		col.SetNumber(int16(i))
	}
	columnStates := tc.buildColumnStates()

	indexStates, indexDescs, err := tc.buildIndexStates(byName)
	if err != nil {
		return err
	}

	var tdefPageNumber int32
	err = pagestore.WithWriteEpoch(tc.database.Store, func() error {
		tdefPageNumber, err = reservePageNumberOrZero(tc.database.Store)
		if err != nil {
			return err
		}
		umapPageNumber, err := reservePageNumberOrZero(tc.database.Store)
		if err != nil {
			return err
		}

		indexDescriptorBytes, err := tc.writeIndexPages(indexStates, indexDescs, tdefPageNumber)
		if err != nil {
			return err
		}

		def := TableDefinition{
			Name:                 tc.name,
			Columns:              tc.columns,
			ColumnStates:         columnStates,
			Indexes:              indexStates,
			IndexDescriptorBytes: indexDescriptorBytes,
			UsageMapPageNumber:   umapPageNumber,
			TdefPageNumber:       tdefPageNumber,
			PageSize:             tc.format.PageSize,
		}
		buf, err := tc.writer.WriteTableDefinition(def)
		if err != nil {
			return err
		}
		if err := tc.database.Store.WritePage(buf, tdefPageNumber); err != nil {
			return err
		}

		return tc.database.Catalog.AddNewTable(tc.name, tdefPageNumber, TypeTable)
	})

	tc.tel.RecordHistogram(context.Background(), "jetdb.table.create_seconds", time.Since(start).Seconds(),
		attribute.String("table", tc.name))
	if err != nil {
		tc.log.Error("table creation failed", "table", tc.name, "err", err)
		return err
	}
	tc.log.Info("table created", "table", tc.name, "tdefPage", tdefPageNumber)
	return nil
}

func (tc *TableCreator) buildColumnStates() []*ColumnState {
	var states []*ColumnState
	for _, col := range tc.columns {
		if col.IsLongValue() {
			states = append(states, newColumnState(col, pagestore.InvalidPageNumber, tc.options.CompressLongValues))
		}
	}
	return states
}

func (tc *TableCreator) buildIndexStates(byName map[string]*coltype.Column) ([]*IndexState, []*Descriptor, error) {
	states := make([]*IndexState, 0, len(tc.indexes))
	for i, d := range tc.indexes {
		if _, err := d.Validate(byName, tc.format); err != nil {
			return nil, nil, err
		}
		states = append(states, &IndexState{
			Descriptor:      d,
			IndexNumber:     i,
			IndexDataNumber: i,
			RootPageNumber:  pagestore.InvalidPageNumber,
		})
	}
	return states, tc.indexes, nil
}

// writeIndexPages reserves a page for and writes each index's own data
// page, and returns each index's embedded ten-slot descriptor bytes in
// index-number order for the table-definition writer to place.
func (tc *TableCreator) writeIndexPages(states []*IndexState, descs []*Descriptor, tdefPageNumber int32) ([][]byte, error) {
	out := make([][]byte, len(states))
	for i, state := range states {
		cols, err := state.Descriptor.Validate(tc.availableColumnsByName(), tc.format)
		if err != nil {
			return nil, err
		}

		pn, err := reservePageNumberOrZero(tc.database.Store)
		if err != nil {
			return nil, err
		}
		state.RootPageNumber = pn

		idx := index.New(descs[i].Name, descs[i].PrimaryKey, state.IndexNumber, tdefPageNumber,
			cols, tc.database.Store, tc.format,
			index.WithLogger(tc.log), index.WithTelemetry(tc.tel))
		idx.SetPageNumber(pn)

		if err := idx.Update(); err != nil {
			return nil, err
		}

		var descBuf bytes.Buffer
		if err := idx.WriteDescriptor(&descBuf); err != nil {
			return nil, err
		}
		out[i] = descBuf.Bytes()
	}
	return out, nil
}

func (tc *TableCreator) availableColumnsByName() map[string]*coltype.Column {
	byName := make(map[string]*coltype.Column, len(tc.columns))
	for _, col := range tc.columns {
		byName[strings.ToUpper(col.Name())] = col
	}
	return byName
}
