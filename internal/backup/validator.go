package backup

import "github.com/mesh-intelligence/vgs/pkg/types"

// IsAllAbsent reports whether every value in row is NULL. Present but falsy
// values such as "" or 0 count as present. A row without columns is all
// absent.
func IsAllAbsent(row types.RawRow) bool {
	for _, v := range row.Values {
		if v != nil {
			return false
		}
	}
	return true
}
