package index

import (
	"errors"
	"testing"

	"github.com/jetdb/jetdb/pkg/coltype"
	"github.com/jetdb/jetdb/pkg/jetfmt"
)

func availableCols(cols ...*coltype.Column) map[string]*coltype.Column {
	out := make(map[string]*coltype.Column, len(cols))
	for i, c := range cols {
		c.SetNumber(int16(i))
		out[c.Name()] = c
	}
	return out
}

func TestDescriptorValidateAcceptsSimpleIndex(t *testing.T) {
	format := jetfmt.MustLookup(jetfmt.Version2000)
	id := coltype.NewColumn("ID", coltype.Int, false)
	cols := availableCols(id)

	d := &Descriptor{Name: "idx", Columns: []IndexColumnSpec{{ColumnName: "ID", Ascending: true}}}
	defs, err := d.Validate(cols, format)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(defs) != 1 || defs[0].Column.Name() != "ID" {
		t.Fatalf("unexpected defs: %+v", defs)
	}
}

func TestDescriptorValidateRejectsTooManyColumns(t *testing.T) {
	format := jetfmt.MustLookup(jetfmt.Version2000)
	var allCols []*coltype.Column
	var specs []IndexColumnSpec
	for i := 0; i < 11; i++ {
		name := string(rune('A' + i))
		allCols = append(allCols, coltype.NewColumn(name, coltype.Int, false))
		specs = append(specs, IndexColumnSpec{ColumnName: name, Ascending: true})
	}
	cols := availableCols(allCols...)
	d := &Descriptor{Name: "idx", Columns: specs}
	if _, err := d.Validate(cols, format); !errors.Is(err, ErrInvalidTableDefinition) {
		t.Fatalf("expected ErrInvalidTableDefinition, got %v", err)
	}
}

func TestDescriptorValidateRejectsUnindexableColumn(t *testing.T) {
	format := jetfmt.MustLookup(jetfmt.Version2000)
	ole := coltype.NewColumn("BLOB", coltype.OLE, false)
	cols := availableCols(ole)
	d := &Descriptor{Name: "idx", Columns: []IndexColumnSpec{{ColumnName: "BLOB", Ascending: true}}}
	if _, err := d.Validate(cols, format); !errors.Is(err, ErrUnsupportedIndexColumnType) {
		t.Fatalf("expected ErrUnsupportedIndexColumnType, got %v", err)
	}
}

func TestDescriptorValidateRejectsUnknownColumn(t *testing.T) {
	format := jetfmt.MustLookup(jetfmt.Version2000)
	id := coltype.NewColumn("ID", coltype.Int, false)
	cols := availableCols(id)
	d := &Descriptor{Name: "idx", Columns: []IndexColumnSpec{{ColumnName: "MISSING", Ascending: true}}}
	if _, err := d.Validate(cols, format); !errors.Is(err, ErrInvalidTableDefinition) {
		t.Fatalf("expected ErrInvalidTableDefinition, got %v", err)
	}
}
