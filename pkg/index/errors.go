package index

import (
	"errors"

	"github.com/jetdb/jetdb/pkg/codec"
)

var (
	// ErrInvalidTableDefinition is raised by index-descriptor validation
	// (shared with pkg/table, which raises it for the rest of §4.F's
	// rules too).
	ErrInvalidTableDefinition = errors.New("invalid table definition")

	// ErrUnsupportedIndexColumnType is re-exported from pkg/codec under the
	// index package's own sentinel so callers of this package don't need
	// to import codec just to use errors.Is.
	ErrUnsupportedIndexColumnType = codec.ErrUnsupportedIndexColumnType

	// ErrUnmappedIndexCharacter mirrors codec.ErrUnmappedIndexCharacter.
	ErrUnmappedIndexCharacter = codec.ErrUnmappedIndexCharacter

	// ErrIncompatibleEntryShape is returned when comparing two entries
	// with a different number of entry columns.
	ErrIncompatibleEntryShape = errors.New("incompatible entry shape")

	// ErrFormatViolation is returned when a parsed page disagrees with
	// the expected layout or limits.
	ErrFormatViolation = errors.New("format violation")

	// ErrStorageFailure marks failures reading this package's own buffers
	// (e.g. a short read out of a page's entry bytes). Failures from the
	// underlying PageStore itself propagate as pagestore.ErrStorageFailure
	// unchanged, since this package never wraps errors it didn't generate.
	ErrStorageFailure = errors.New("storage failure")
)
