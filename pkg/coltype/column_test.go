package coltype

import "testing"

func TestFixedSizeKnownTypes(t *testing.T) {
	cases := map[DataType]int{
		Int:   4,
		Short: 2,
		Byte:  1,
		GUID:  16,
	}
	for dt, want := range cases {
		got, ok := dt.FixedSize()
		if !ok || got != want {
			t.Fatalf("%s: FixedSize() = (%d, %v), want (%d, true)", dt, got, ok, want)
		}
	}
}

func TestVariableLengthTypes(t *testing.T) {
	for _, dt := range []DataType{Text, Memo, OLE, Binary} {
		if !dt.IsVariableLength() {
			t.Fatalf("%s: expected variable length", dt)
		}
	}
	if Int.IsVariableLength() {
		t.Fatalf("INT: expected fixed length")
	}
}

func TestLongValueTypes(t *testing.T) {
	for _, dt := range []DataType{Memo, OLE, Binary} {
		if !dt.IsLongValue() {
			t.Fatalf("%s: expected long value", dt)
		}
	}
	if Text.IsLongValue() {
		t.Fatalf("TEXT: expected not long value")
	}
}

func TestReadWriteFixedRoundTrip(t *testing.T) {
	c := NewColumn("id", Int, false)
	encoded := c.WriteFixed(0x12345678)
	if len(encoded) != 4 {
		t.Fatalf("expected 4-byte encoding, got %d", len(encoded))
	}
	decoded := c.ReadFixed(encoded)
	if decoded != 0x12345678 {
		t.Fatalf("ReadFixed(WriteFixed(v)) = %x, want %x", decoded, 0x12345678)
	}
}

func TestColumnNumberAssignment(t *testing.T) {
	c := NewColumn("name", Text, false)
	if c.Number() != -1 {
		t.Fatalf("expected unassigned column number -1, got %d", c.Number())
	}
	c.SetNumber(3)
	if c.Number() != 3 {
		t.Fatalf("expected column number 3, got %d", c.Number())
	}
}
