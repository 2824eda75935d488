package codec

import (
	"errors"
	"testing"

	"github.com/jetdb/jetdb/pkg/coltype"
)

func TestCheckIndexableAcceptsFixedAndTextual(t *testing.T) {
	for _, dt := range []coltype.DataType{coltype.Int, coltype.Short, coltype.Text, coltype.Memo} {
		c := coltype.NewColumn("c", dt, false)
		if err := CheckIndexable(c); err != nil {
			t.Fatalf("%s: expected indexable, got %v", dt, err)
		}
	}
}

func TestCheckIndexableRejectsOtherVariableLength(t *testing.T) {
	for _, dt := range []coltype.DataType{coltype.OLE, coltype.Binary} {
		c := coltype.NewColumn("c", dt, false)
		if err := CheckIndexable(c); !errors.Is(err, ErrUnsupportedIndexColumnType) {
			t.Fatalf("%s: expected ErrUnsupportedIndexColumnType, got %v", dt, err)
		}
	}
}
