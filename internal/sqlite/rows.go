package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// scanRows drains rows into RawRows. Column names are shared between rows of
// the same result set; values are scanned into interface slots so NULL
// arrives as nil.
func scanRows(rows *sql.Rows) ([]types.RawRow, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var out []types.RawRow
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, types.RawRow{Columns: cols, Values: vals})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
