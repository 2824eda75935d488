package table

import (
	"bytes"
	"io"
	"testing"
)

func TestLongValueEncoderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewLongValueEncoder(&buf)
	if err != nil {
		t.Fatalf("NewLongValueEncoder: %v", err)
	}
	payload := []byte("overflow payload bytes for a MEMO column, repeated, repeated, repeated")
	if _, err := enc.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	dec, err := NewLongValueDecoder(&buf)
	if err != nil {
		t.Fatalf("NewLongValueDecoder: %v", err)
	}
	defer dec.Close()
	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}
