package codec

import (
	"errors"
	"fmt"

	"github.com/jetdb/jetdb/pkg/coltype"
)

// ErrUnsupportedIndexColumnType is returned when a column cannot
// participate in an index: it is variable-length but neither TEXT nor
// MEMO.
var ErrUnsupportedIndexColumnType = errors.New("unsupported index column type")

// CheckIndexable validates that col may be used as an index key column:
// it must be fixed-length, or textual (TEXT/MEMO).
func CheckIndexable(col *coltype.Column) error {
	if col.IsVariableLength() && !IsTextual(col.Type()) {
		return fmt.Errorf("%w: %s", ErrUnsupportedIndexColumnType, col.Type())
	}
	return nil
}

// IsTextual reports whether dt is one of the textual types.
func IsTextual(dt coltype.DataType) bool {
	return dt == coltype.Text || dt == coltype.Memo
}
