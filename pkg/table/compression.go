package table

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// NewLongValueEncoder returns the zstd encoder a long-value row writer
// should use for a column whose ColumnState.Compressed is true. The Table
// Creator itself never calls this — no row payload exists yet at
// createTable time — but it owns the choice of codec, so it owns the
// constructor too.
func NewLongValueEncoder(w io.Writer) (*zstd.Encoder, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("%w: creating long-value encoder: %v", ErrStorageFailure, err)
	}
	return enc, nil
}

// NewLongValueDecoder returns the matching zstd decoder for a long-value
// overflow chain written by NewLongValueEncoder.
func NewLongValueDecoder(r io.Reader) (*zstd.Decoder, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: creating long-value decoder: %v", ErrStorageFailure, err)
	}
	return dec, nil
}
