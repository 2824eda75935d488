package table

// Catalog is the narrow collaborator §1 calls out: the database object's
// registry of tables. The Table Creator interacts with it only through
// this one call.
type Catalog interface {
	AddNewTable(name string, tdefPageNumber int32, tableType TableType) error
}

// TableType distinguishes regular tables from system tables in the
// catalog registration call; the core only ever registers TypeTable.
type TableType int

const TypeTable TableType = 1
