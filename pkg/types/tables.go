package types

// Standard table names managed by the backup engine.
const (
	GrantBodiesTable        = "grant_bodies"
	GrantSpendStatusesTable = "grant_spend_statuses"
)

// StandardTableNames lists the managed tables in restore order. Bodies are
// rewritten before spend statuses.
var StandardTableNames = []string{
	GrantBodiesTable,
	GrantSpendStatusesTable,
}

// IsStandardTable reports whether name is one of the managed tables.
func IsStandardTable(name string) bool {
	for _, n := range StandardTableNames {
		if n == name {
			return true
		}
	}
	return false
}
