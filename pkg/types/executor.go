package types

import "context"

// StatementKind tells the executor whether a statement returns rows.
type StatementKind int

// Statement kinds.
const (
	StatementExecute StatementKind = iota // DDL or DML, no rows.
	StatementRead                         // SELECT, rows collected into the Response.
)

// String returns the kind name used in logs and golden files.
func (k StatementKind) String() string {
	switch k {
	case StatementExecute:
		return "execute"
	case StatementRead:
		return "read"
	default:
		return "unknown"
	}
}

// Statement is one SQL statement with positional arguments.
type Statement struct {
	Kind StatementKind
	SQL  string
	Args []any
}

// Transaction is an ordered list of statements applied as one atomic unit.
type Transaction struct {
	Statements []Statement
}

// Execute appends a statement that returns no rows.
func (t *Transaction) Execute(sql string, args ...any) {
	t.Statements = append(t.Statements, Statement{Kind: StatementExecute, SQL: sql, Args: args})
}

// Read appends a statement whose rows are returned in the Response.
func (t *Transaction) Read(sql string, args ...any) {
	t.Statements = append(t.Statements, Statement{Kind: StatementRead, SQL: sql, Args: args})
}

// Len returns the number of statements.
func (t Transaction) Len() int {
	return len(t.Statements)
}

// Response carries the rows produced by the Read statements of a transaction,
// in statement order then store order.
type Response struct {
	Rows []RawRow
}

// Executor is the store collaborator the backup engine runs against.
// Implementations must apply a Transaction atomically: every statement or
// none of them.
type Executor interface {
	// ExecuteTransaction runs every statement in one store transaction.
	// Returns an error wrapping ErrDatabase when any statement fails; in that
	// case nothing is applied.
	ExecuteTransaction(ctx context.Context, tx Transaction) (Response, error)

	// QueryTableSchema returns the CREATE TABLE text currently in effect for
	// name. Returns ErrSchemaNotFound when the table does not exist.
	QueryTableSchema(ctx context.Context, name string) (TableSchema, error)

	// QueryIndexSchemas returns the explicit indices defined on table, ordered
	// by name. A missing table yields an empty list.
	QueryIndexSchemas(ctx context.Context, table string) ([]IndexSchema, error)
}
