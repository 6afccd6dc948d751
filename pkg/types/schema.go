package types

// TableSchema is a table name and the CREATE TABLE statement currently stored
// for it.
type TableSchema struct {
	Name string `json:"name" yaml:"name"`
	SQL  string `json:"sql" yaml:"sql"`
}

// IndexSchema is an index name, the table it belongs to, and its CREATE INDEX
// statement.
type IndexSchema struct {
	Name  string `json:"name" yaml:"name"`
	Table string `json:"table" yaml:"table"`
	SQL   string `json:"sql" yaml:"sql"`
}

// RawRow is one row as returned by the store: column names in select order
// and their nullable scalar values. A nil value is SQL NULL.
type RawRow struct {
	Columns []string
	Values  []any
}

// Get returns the value for the named column. The second result is false
// when the row has no such column.
func (r RawRow) Get(column string) (any, bool) {
	for i, c := range r.Columns {
		if c == column {
			if i >= len(r.Values) {
				return nil, true
			}
			return r.Values[i], true
		}
	}
	return nil, false
}
