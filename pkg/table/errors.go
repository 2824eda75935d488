// Package table implements the table-creation orchestrator (§4.F):
// validating a proposed table, assigning column and index numbers,
// laying out long-value columns, and driving the write epoch that emits
// the table-definition page and any index pages.
package table

import "github.com/jetdb/jetdb/pkg/index"

// Error sentinels are shared with pkg/index, which raises
// ErrInvalidTableDefinition for index-descriptor-level violations; this
// package raises it for the rest of §4.F's rules so callers only ever
// need one errors.Is target.
var (
	ErrInvalidTableDefinition = index.ErrInvalidTableDefinition
	ErrStorageFailure         = index.ErrStorageFailure
)
