package table

import (
	"bytes"
	"fmt"

	"github.com/jetdb/jetdb/pkg/coltype"
)

// TableDefinition bundles everything the Table Creator has assembled
// once validation and page reservation succeed: the table's own shape
// plus the pre-serialized index-descriptor bytes for each declared
// index, in index-number order.
type TableDefinition struct {
	Name                 string
	Columns              []*coltype.Column
	ColumnStates         []*ColumnState
	Indexes              []*IndexState
	IndexDescriptorBytes [][]byte
	UsageMapPageNumber   int32
	TdefPageNumber       int32
	PageSize             int
}

// TableDefinitionWriter is the external collaborator named in §6: the
// byte-level layout of the table-definition page (column descriptors,
// long-value usage-map bookkeeping, and the rest of the format's
// catalog-entry area) is explicitly out of this module's core scope.
// The Table Creator only supplies the metadata; it never lays out the
// page itself.
type TableDefinitionWriter interface {
	WriteTableDefinition(def TableDefinition) ([]byte, error)
}

// DefaultTableDefinitionWriter is a minimal stand-in for the real
// table-definition page writer. It emits just enough — the table name
// and each index's descriptor bytes, length-prefixed — to make
// CreateTable's write epoch exercisable without a full column/catalog
// page layout, which §1 places outside this module's core. Callers
// that need the real on-disk catalog-entry format supply their own
// TableDefinitionWriter via WithDefinitionWriter.
type DefaultTableDefinitionWriter struct{}

func (DefaultTableDefinitionWriter) WriteTableDefinition(def TableDefinition) ([]byte, error) {
	var body bytes.Buffer
	body.WriteByte(byte(len(def.Name)))
	body.WriteString(def.Name)
	body.WriteByte(byte(len(def.IndexDescriptorBytes)))
	for _, b := range def.IndexDescriptorBytes {
		body.Write(b)
	}
	if body.Len() > def.PageSize {
		return nil, fmt.Errorf("%w: table definition for %q needs %d bytes, page holds %d",
			ErrStorageFailure, def.Name, body.Len(), def.PageSize)
	}
	page := make([]byte, def.PageSize)
	copy(page, body.Bytes())
	return page, nil
}
