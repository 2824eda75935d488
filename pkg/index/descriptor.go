package index

import (
	"fmt"
	"strings"

	"github.com/jetdb/jetdb/pkg/codec"
	"github.com/jetdb/jetdb/pkg/coltype"
	"github.com/jetdb/jetdb/pkg/jetfmt"
)

// maxIndexColumns is the ten-slot limit the table-definition area's
// index-descriptor block imposes (§6).
const maxIndexColumns = 10

// unusedColumnSlot is the on-disk sentinel for an unused column slot.
const unusedColumnSlot = -1

// IndexColumnSpec names one key column and its sort direction.
type IndexColumnSpec struct {
	ColumnName string
	Ascending  bool
}

// Descriptor is the external IndexDescriptor (§3): a name, a primary-key
// flag, and an ordered list of key columns, at most ten of them.
type Descriptor struct {
	Name       string
	PrimaryKey bool
	Columns    []IndexColumnSpec
}

// ColumnDef pairs a resolved Column with its order byte, preserving
// the insertion order of the index's key columns.
type ColumnDef struct {
	Column *coltype.Column
	Order  byte
}

// orderByte encodes ascending/descending the way the original format
// does: 0x01 ascending, 0x00 descending. Only the low bit is meaningful;
// the rest of the byte is reserved and always zero on write.
func orderByte(ascending bool) byte {
	if ascending {
		return 0x01
	}
	return 0x00
}

// Validate checks d against §4.F's per-index rules: at most ten columns,
// every column name resolvable against availableColumns, and every
// referenced column indexable per the codec's rules.
func (d *Descriptor) Validate(availableColumns map[string]*coltype.Column, format jetfmt.Format) ([]ColumnDef, error) {
	if len(d.Columns) == 0 {
		return nil, fmt.Errorf("%w: index %q has no columns", ErrInvalidTableDefinition, d.Name)
	}
	if len(d.Columns) > maxIndexColumns {
		return nil, fmt.Errorf("%w: index %q references %d columns, max %d",
			ErrInvalidTableDefinition, d.Name, len(d.Columns), maxIndexColumns)
	}
	if len(d.Name) == 0 || len(d.Name) > format.MaxColumnNameLength {
		return nil, fmt.Errorf("%w: index name %q invalid length", ErrInvalidTableDefinition, d.Name)
	}

	defs := make([]ColumnDef, 0, len(d.Columns))
	seen := make(map[string]bool, len(d.Columns))
	for _, spec := range d.Columns {
		key := strings.ToUpper(spec.ColumnName)
		if seen[key] {
			return nil, fmt.Errorf("%w: index %q references column %q twice",
				ErrInvalidTableDefinition, d.Name, spec.ColumnName)
		}
		seen[key] = true

		col, ok := availableColumns[key]
		if !ok {
			return nil, fmt.Errorf("%w: index %q references unknown column %q",
				ErrInvalidTableDefinition, d.Name, spec.ColumnName)
		}
		if err := codec.CheckIndexable(col); err != nil {
			return nil, err
		}
		defs = append(defs, ColumnDef{Column: col, Order: orderByte(spec.Ascending)})
	}
	return defs, nil
}
